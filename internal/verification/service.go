package verification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pxv-pay/internal/auth"
	"pxv-pay/internal/db"
	"pxv-pay/internal/logcontext"
	"pxv-pay/internal/message"
	"pxv-pay/internal/model"
	"pxv-pay/internal/notify"

	"github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"
)

var (
	verificationApprovedCounter   = metrics.GetOrCreateCounter(`verification_total{result="approved"}`)
	verificationRejectedCounter   = metrics.GetOrCreateCounter(`verification_total{result="rejected"}`)
	verificationReverifiedCounter = metrics.GetOrCreateCounter(`verification_total{result="reverified"}`)
	verificationDeniedCounter     = metrics.GetOrCreateCounter(`verification_total{result="denied"}`)
	notificationFailedCounter     = metrics.GetOrCreateCounter(`verification_total{result="notify_failed"}`)
)

type PaymentStore interface {
	SelectByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus, note *string, verifiedBy uuid.UUID,
		verifiedAt time.Time) (*model.Payment, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, eventType message.EventType, payment *model.Payment)
}

type Decision struct {
	Status model.PaymentStatus
	Note   string
	Notify bool
}

type Result struct {
	Payment    *model.Payment
	Reverified bool
	Notified   bool
}

// Service records merchant verdicts on submitted payments.
type Service struct {
	payments PaymentStore
	events   EventPublisher
	notifier notify.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewService builds the verifier. notifier may be nil, which disables
// customer notifications.
func NewService(payments PaymentStore, events EventPublisher, notifier notify.Notifier, logger *slog.Logger) *Service {
	return &Service{
		payments: payments,
		events:   events,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Verify moves a payment to approved or rejected on behalf of caller. Rows the
// caller may not access are reported as not found. Verifying a payment that
// already left pending_verification is allowed and flagged.
func (s *Service) Verify(ctx context.Context, caller auth.Caller, paymentID uuid.UUID, d Decision) (*Result, error) {
	ctx = logcontext.AppendCtx(ctx, slog.String("paymentId", paymentID.String()))

	if !d.Status.IsVerdict() {
		return nil, model.Invalidf(fmt.Sprintf("status must be %q or %q", model.PaymentApproved, model.PaymentRejected))
	}

	current, err := s.payments.SelectByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if !auth.CanAccess(caller, current.MerchantID) {
		s.logger.WarnContext(ctx, "Verification denied", "callerId", caller.UserID, "role", caller.Role)
		verificationDeniedCounter.Inc()
		return nil, fmt.Errorf("payment %s: %w", paymentID, db.ErrNotFound)
	}

	reverified := current.Status != model.PaymentPendingVerification
	if reverified {
		s.logger.WarnContext(ctx, "Payment verified more than once", "previousStatus", current.Status, "status", d.Status)
		verificationReverifiedCounter.Inc()
	}

	var note *string
	if trimmed := strings.TrimSpace(d.Note); trimmed != "" {
		note = &trimmed
	}

	updated, err := s.payments.UpdateStatus(ctx, paymentID, d.Status, note, caller.UserID, s.now())
	if err != nil {
		s.logger.ErrorContext(ctx, "Error updating payment status", "error", err)
		return nil, err
	}

	if d.Status == model.PaymentApproved {
		verificationApprovedCounter.Inc()
	} else {
		verificationRejectedCounter.Inc()
	}
	s.logger.InfoContext(ctx, "Payment verified", "status", d.Status, "verifiedBy", caller.UserID)

	s.events.Publish(ctx, message.EventUpdate, updated)

	result := &Result{Payment: updated, Reverified: reverified}
	if d.Notify && s.notifier != nil {
		if err := s.notifier.Notify(ctx, notify.FromPayment(updated)); err != nil {
			s.logger.ErrorContext(ctx, "Error notifying customer", "error", err)
			notificationFailedCounter.Inc()
		} else {
			result.Notified = true
		}
	}

	return result, nil
}
