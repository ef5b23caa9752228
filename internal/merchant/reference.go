package merchant

import (
	"context"
	"strings"
	"time"

	"pxv-pay/internal/auth"
	"pxv-pay/internal/model"

	"github.com/google/uuid"
)

func (s *Service) CreateCountry(ctx context.Context, caller auth.Caller, c *model.Country) (*model.Country, error) {
	c.ID = uuid.Nil
	c.CreatedAt = time.Time{}
	c.OwnerID = ownerFor(caller, c.OwnerID)
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	c.Name = strings.TrimSpace(c.Name)
	if err := model.Validate(c); err != nil {
		return nil, model.Invalid(err)
	}
	return s.stores.References.CreateCountry(ctx, c)
}

func (s *Service) ListCountries(ctx context.Context, caller auth.Caller) ([]*model.Country, error) {
	return s.stores.References.ListCountries(ctx, auth.Scope(caller))
}

func (s *Service) DeleteCountry(ctx context.Context, caller auth.Caller, id uuid.UUID) error {
	c, err := s.stores.References.SelectCountryByID(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CanAccess(caller, c.OwnerID) {
		return hidden("country", id)
	}
	return s.stores.References.DeleteCountry(ctx, id)
}

func (s *Service) CreateCurrency(ctx context.Context, caller auth.Caller, c *model.Currency) (*model.Currency, error) {
	c.ID = uuid.Nil
	c.CreatedAt = time.Time{}
	c.OwnerID = ownerFor(caller, c.OwnerID)
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	c.Name = strings.TrimSpace(c.Name)
	if err := model.Validate(c); err != nil {
		return nil, model.Invalid(err)
	}
	return s.stores.References.CreateCurrency(ctx, c)
}

func (s *Service) ListCurrencies(ctx context.Context, caller auth.Caller) ([]*model.Currency, error) {
	return s.stores.References.ListCurrencies(ctx, auth.Scope(caller))
}

func (s *Service) DeleteCurrency(ctx context.Context, caller auth.Caller, id uuid.UUID) error {
	c, err := s.stores.References.SelectCurrencyByID(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CanAccess(caller, c.OwnerID) {
		return hidden("currency", id)
	}
	return s.stores.References.DeleteCurrency(ctx, id)
}
