package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AmountType string

const (
	AmountFixed    AmountType = "fixed"
	AmountFlexible AmountType = "flexible"
)

type LinkStatus string

const (
	LinkActive   LinkStatus = "active"
	LinkInactive LinkStatus = "inactive"
	LinkExpired  LinkStatus = "expired"
	LinkDraft    LinkStatus = "draft"
)

type MethodType string

const (
	MethodBank        MethodType = "bank"
	MethodMobile      MethodType = "mobile"
	MethodCrypto      MethodType = "crypto"
	MethodPaymentLink MethodType = "payment-link"
	MethodManual      MethodType = "manual"
)

type MethodStatus string

const (
	MethodActive   MethodStatus = "active"
	MethodPending  MethodStatus = "pending"
	MethodInactive MethodStatus = "inactive"
)

type PaymentStatus string

const (
	PaymentPendingVerification PaymentStatus = "pending_verification"
	PaymentApproved            PaymentStatus = "approved"
	PaymentRejected            PaymentStatus = "rejected"
	PaymentExpired             PaymentStatus = "expired"
)

// IsVerdict reports whether s is a status a merchant may set when verifying.
func (s PaymentStatus) IsVerdict() bool {
	return s == PaymentApproved || s == PaymentRejected
}

type CheckoutLink struct {
	ID                 uuid.UUID           `json:"id"`
	MerchantID         uuid.UUID           `json:"merchantId"`
	Slug               string              `json:"slug" validate:"required,slug"`
	Title              string              `json:"title" validate:"required,max=200"`
	Description        string              `json:"description,omitempty" validate:"max=2000"`
	AmountType         AmountType          `json:"amountType" validate:"required,oneof=fixed flexible"`
	Amount             decimal.NullDecimal `json:"amount"`
	MinAmount          decimal.NullDecimal `json:"minAmount"`
	MaxAmount          decimal.NullDecimal `json:"maxAmount"`
	Currency           string              `json:"currency" validate:"required,len=3,uppercase"`
	ActiveCountryCodes []string            `json:"activeCountryCodes" validate:"required,min=1,dive,len=2,uppercase"`
	Status             LinkStatus          `json:"status" validate:"required,oneof=active inactive expired draft"`
	ExpiresAt          *time.Time          `json:"expiresAt,omitempty"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

// IsOpen reports whether the link accepts customers at instant now.
func (l *CheckoutLink) IsOpen(now time.Time) bool {
	if l.Status != LinkActive {
		return false
	}
	return l.ExpiresAt == nil || l.ExpiresAt.After(now)
}

// AllowsCountry reports whether code is in the link's active set.
func (l *CheckoutLink) AllowsCountry(code string) bool {
	for _, c := range l.ActiveCountryCodes {
		if c == code {
			return true
		}
	}
	return false
}

type PaymentMethod struct {
	ID           uuid.UUID         `json:"id"`
	MerchantID   uuid.UUID         `json:"merchantId"`
	Name         string            `json:"name" validate:"required,max=120"`
	Type         MethodType        `json:"type" validate:"required,oneof=bank mobile crypto payment-link manual"`
	Countries    []string          `json:"countries" validate:"required,min=1,dive,len=2,uppercase"`
	Status       MethodStatus      `json:"status" validate:"required,oneof=active pending inactive"`
	URL          string            `json:"url,omitempty" validate:"required_if=Type payment-link"`
	Instructions string            `json:"instructions,omitempty"`
	Details      map[string]string `json:"details,omitempty"`
	IconURL      string            `json:"iconUrl,omitempty"`
	DisplayOrder int               `json:"displayOrder"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// Supports reports whether the method is active and offered in country.
func (m *PaymentMethod) Supports(country string) bool {
	if m.Status != MethodActive {
		return false
	}
	for _, c := range m.Countries {
		if c == country {
			return true
		}
	}
	return false
}

type Payment struct {
	ID               uuid.UUID       `json:"id"`
	CheckoutLinkID   uuid.UUID       `json:"checkoutLinkId"`
	MerchantID       uuid.UUID       `json:"merchantId"`
	CustomerName     string          `json:"customerName"`
	CustomerEmail    string          `json:"customerEmail"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	Country          string          `json:"country"`
	PaymentMethodID  uuid.UUID       `json:"paymentMethodId"`
	PaymentMethod    string          `json:"paymentMethod"`
	PaymentProofURL  string          `json:"paymentProofUrl"`
	Status           PaymentStatus   `json:"status"`
	VerificationNote *string         `json:"verificationNote,omitempty"`
	VerifiedBy       *uuid.UUID      `json:"verifiedBy,omitempty"`
	VerifiedAt       *time.Time      `json:"verifiedAt,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

type Country struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"ownerId"`
	Code      string    `json:"code" validate:"required,len=2,uppercase"`
	Name      string    `json:"name" validate:"required,max=100"`
	CreatedAt time.Time `json:"createdAt"`
}

type Currency struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"ownerId"`
	Code      string    `json:"code" validate:"required,len=3,uppercase"`
	Name      string    `json:"name" validate:"required,max=100"`
	Symbol    string    `json:"symbol,omitempty" validate:"max=8"`
	CreatedAt time.Time `json:"createdAt"`
}

type PaymentFilter struct {
	MerchantID *uuid.UUID
	Status     PaymentStatus
	Limit      int
	Offset     int
}
