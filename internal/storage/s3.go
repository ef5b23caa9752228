package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store keeps objects in a single private bucket. It works against AWS and
// S3-compatible endpoints such as LocalStack or MinIO.
type S3Store struct {
	client    *s3.Client
	uploader  *manager.Uploader
	presigner *s3.PresignClient
	bucket    string
}

func NewS3Store(cfg sdkaws.Config, endpoint, bucket string) *S3Store {
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = sdkaws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client:    client,
		uploader:  manager.NewUploader(client),
		presigner: s3.NewPresignClient(client),
		bucket:    bucket,
	}
}

func (s *S3Store) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	input := &s3.PutObjectInput{
		Bucket:      sdkaws.String(s.bucket),
		Key:         sdkaws.String(key),
		Body:        body,
		ContentType: sdkaws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = sdkaws.Int64(size)
	}

	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return fmt.Errorf("upload %s/%s: %w", s.bucket, key, err)
	}
	return nil
}

func (s *S3Store) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	presigned, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: sdkaws.String(s.bucket),
		Key:    sdkaws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign get object: %w", err)
	}
	return presigned.URL, nil
}
