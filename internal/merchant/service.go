package merchant

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pxv-pay/internal/auth"
	"pxv-pay/internal/db"
	"pxv-pay/internal/model"
	"pxv-pay/internal/storage"

	"github.com/google/uuid"
)

type LinkStore interface {
	Create(ctx context.Context, l *model.CheckoutLink) (*model.CheckoutLink, error)
	SelectByID(ctx context.Context, id uuid.UUID) (*model.CheckoutLink, error)
	ListByMerchant(ctx context.Context, merchantID *uuid.UUID) ([]*model.CheckoutLink, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.LinkStatus) (*model.CheckoutLink, error)
}

// LinkInvalidator drops cached copies of a checkout link.
type LinkInvalidator interface {
	Invalidate(ctx context.Context, slug string)
}

type MethodStore interface {
	Create(ctx context.Context, m *model.PaymentMethod) (*model.PaymentMethod, error)
	SelectByID(ctx context.Context, id uuid.UUID) (*model.PaymentMethod, error)
	ListByMerchant(ctx context.Context, merchantID *uuid.UUID) ([]*model.PaymentMethod, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.MethodStatus) (*model.PaymentMethod, error)
}

type ReferenceStore interface {
	CreateCountry(ctx context.Context, c *model.Country) (*model.Country, error)
	SelectCountryByID(ctx context.Context, id uuid.UUID) (*model.Country, error)
	ListCountries(ctx context.Context, ownerID *uuid.UUID) ([]*model.Country, error)
	DeleteCountry(ctx context.Context, id uuid.UUID) error
	CreateCurrency(ctx context.Context, c *model.Currency) (*model.Currency, error)
	SelectCurrencyByID(ctx context.Context, id uuid.UUID) (*model.Currency, error)
	ListCurrencies(ctx context.Context, ownerID *uuid.UUID) ([]*model.Currency, error)
	DeleteCurrency(ctx context.Context, id uuid.UUID) error
}

type PaymentStore interface {
	SelectByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	List(ctx context.Context, filter model.PaymentFilter) ([]*model.Payment, error)
}

type Stores struct {
	Links      LinkStore
	Methods    MethodStore
	References ReferenceStore
	Payments   PaymentStore
}

// Service is the merchant dashboard back end. Every operation is scoped to
// the rows the caller owns, except for super admins who see everything.
type Service struct {
	stores     Stores
	cache      LinkInvalidator
	objects    storage.ObjectStore
	presignTTL time.Duration
	logger     *slog.Logger
}

// NewService wires the stores. cache may be nil when link caching is off.
func NewService(stores Stores, cache LinkInvalidator, objects storage.ObjectStore, presignTTL time.Duration,
	logger *slog.Logger) *Service {
	return &Service{
		stores:     stores,
		cache:      cache,
		objects:    objects,
		presignTTL: presignTTL,
		logger:     logger,
	}
}

// ownerFor picks the owner of a new row. Super admins may create on behalf of
// another merchant; everybody else owns what they create.
func ownerFor(caller auth.Caller, requested uuid.UUID) uuid.UUID {
	if caller.Role == auth.RoleSuperAdmin && requested != uuid.Nil {
		return requested
	}
	return caller.UserID
}

func hidden(kind string, id uuid.UUID) error {
	return fmt.Errorf("%s %s: %w", kind, id, db.ErrNotFound)
}
