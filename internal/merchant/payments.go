package merchant

import (
	"context"
	"fmt"
	"time"

	"pxv-pay/internal/auth"
	"pxv-pay/internal/model"

	"github.com/google/uuid"
)

const maxPageSize = 200

type ProofLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ListPayments returns the caller's payments newest first. The filter's
// merchant is always replaced by the caller's scope.
func (s *Service) ListPayments(ctx context.Context, caller auth.Caller, filter model.PaymentFilter) ([]*model.Payment, error) {
	if filter.Status != "" {
		if err := model.ValidateVar(filter.Status, "oneof=pending_verification approved rejected expired"); err != nil {
			return nil, model.Invalidf(fmt.Sprintf("unknown payment status %q", filter.Status))
		}
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, model.Invalidf("limit and offset cannot be negative")
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}

	filter.MerchantID = auth.Scope(caller)
	return s.stores.Payments.List(ctx, filter)
}

func (s *Service) GetPayment(ctx context.Context, caller auth.Caller, id uuid.UUID) (*model.Payment, error) {
	p, err := s.stores.Payments.SelectByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanAccess(caller, p.MerchantID) {
		return nil, hidden("payment", id)
	}
	return p, nil
}

// ProofURL returns a short lived download link for the payment's proof.
func (s *Service) ProofURL(ctx context.Context, caller auth.Caller, id uuid.UUID) (*ProofLink, error) {
	p, err := s.GetPayment(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	url, err := s.objects.PresignGet(ctx, p.PaymentProofURL, s.presignTTL)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error presigning proof", "paymentId", id, "error", err)
		return nil, fmt.Errorf("presign proof: %w", err)
	}
	return &ProofLink{URL: url, ExpiresAt: time.Now().Add(s.presignTTL)}, nil
}
