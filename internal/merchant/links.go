package merchant

import (
	"context"
	"time"

	"pxv-pay/internal/auth"
	"pxv-pay/internal/model"

	"github.com/google/uuid"
)

func (s *Service) CreateLink(ctx context.Context, caller auth.Caller, l *model.CheckoutLink) (*model.CheckoutLink, error) {
	l.ID = uuid.Nil
	l.CreatedAt, l.UpdatedAt = time.Time{}, time.Time{}
	l.MerchantID = ownerFor(caller, l.MerchantID)
	if l.Status == "" {
		l.Status = model.LinkDraft
	}
	if err := model.ValidateLink(l); err != nil {
		return nil, model.Invalid(err)
	}

	created, err := s.stores.Links.Create(ctx, l)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Checkout link created", "linkId", created.ID, "slug", created.Slug)
	return created, nil
}

func (s *Service) ListLinks(ctx context.Context, caller auth.Caller) ([]*model.CheckoutLink, error) {
	return s.stores.Links.ListByMerchant(ctx, auth.Scope(caller))
}

// SetLinkStatus changes a link's status and evicts it from the resolver cache.
func (s *Service) SetLinkStatus(ctx context.Context, caller auth.Caller, id uuid.UUID, status model.LinkStatus) (*model.CheckoutLink, error) {
	if err := model.ValidateVar(status, "required,oneof=active inactive expired draft"); err != nil {
		return nil, model.Invalidf("status must be one of active, inactive, expired, draft")
	}

	link, err := s.stores.Links.SelectByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanAccess(caller, link.MerchantID) {
		return nil, hidden("checkout link", id)
	}

	updated, err := s.stores.Links.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, updated.Slug)
	}
	s.logger.InfoContext(ctx, "Checkout link status changed", "linkId", id, "from", link.Status, "to", status)
	return updated, nil
}
