package merchant

import (
	"context"
	"time"

	"pxv-pay/internal/auth"
	"pxv-pay/internal/model"

	"github.com/google/uuid"
)

func (s *Service) CreateMethod(ctx context.Context, caller auth.Caller, m *model.PaymentMethod) (*model.PaymentMethod, error) {
	m.ID = uuid.Nil
	m.CreatedAt, m.UpdatedAt = time.Time{}, time.Time{}
	m.MerchantID = ownerFor(caller, m.MerchantID)
	if m.Status == "" {
		m.Status = model.MethodPending
	}
	if err := model.ValidateMethod(m); err != nil {
		return nil, model.Invalid(err)
	}

	created, err := s.stores.Methods.Create(ctx, m)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Payment method created", "methodId", created.ID, "type", created.Type)
	return created, nil
}

func (s *Service) ListMethods(ctx context.Context, caller auth.Caller) ([]*model.PaymentMethod, error) {
	return s.stores.Methods.ListByMerchant(ctx, auth.Scope(caller))
}

func (s *Service) SetMethodStatus(ctx context.Context, caller auth.Caller, id uuid.UUID, status model.MethodStatus) (*model.PaymentMethod, error) {
	if err := model.ValidateVar(status, "required,oneof=active pending inactive"); err != nil {
		return nil, model.Invalidf("status must be one of active, pending, inactive")
	}

	method, err := s.stores.Methods.SelectByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanAccess(caller, method.MerchantID) {
		return nil, hidden("payment method", id)
	}

	return s.stores.Methods.UpdateStatus(ctx, id, status)
}
