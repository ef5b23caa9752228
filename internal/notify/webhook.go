package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"pxv-pay/internal/config"
)

const (
	defaultTimeoutMs = 10_000
)

// WebhookNotifier posts notifications as JSON to a mail relay or CRM hook.
type WebhookNotifier struct {
	client *http.Client
	url    string
	logger *slog.Logger
}

func NewWebhookNotifier(url string, timeoutMs int, logger *slog.Logger) *WebhookNotifier {
	if timeoutMs <= 0 {
		timeoutMs = config.GetInt("NOTIFY_TIMEOUT_MS", defaultTimeoutMs)
	}
	return &WebhookNotifier{
		client: &http.Client{Timeout: time.Duration(timeoutMs) * time.Millisecond},
		url:    url,
		logger: logger,
	}
}

func (s *WebhookNotifier) Notify(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Sending notification", "url", s.url, "paymentId", n.PaymentID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewBuffer(payload))
	if err != nil {
		s.logger.ErrorContext(ctx, "Error creating request", "error", err)
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error sending notification", "error", err)
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error reading response body", "error", err)
		return err
	}

	if resp.StatusCode >= 400 {
		s.logger.ErrorContext(ctx, "Received error response", "status", resp.Status, "body", string(respBody))
		return fmt.Errorf("error response: %s", resp.Status)
	}

	s.logger.InfoContext(ctx, "Notification delivered", "paymentId", n.PaymentID)
	return nil
}
