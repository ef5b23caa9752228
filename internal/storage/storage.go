package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ObjectStore is the subset of object storage the service needs.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

var extensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// ProofKey returns a fresh object key for a proof of payment, namespaced by
// merchant: {merchantID}/{uuid}{ext}.
func ProofKey(merchantID uuid.UUID, filename, contentType string) string {
	ext, ok := extensions[contentType]
	if !ok {
		ext = strings.ToLower(path.Ext(filename))
	}
	return fmt.Sprintf("%s/%s%s", merchantID, uuid.New(), ext)
}
