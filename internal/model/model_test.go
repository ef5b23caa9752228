package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func nd(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func fixedLink(amount string) *CheckoutLink {
	return &CheckoutLink{
		MerchantID:         uuid.New(),
		Slug:               "spring-sale",
		Title:              "Spring sale",
		AmountType:         AmountFixed,
		Amount:             nd(amount),
		Currency:           "USD",
		ActiveCountryCodes: []string{"US"},
		Status:             LinkActive,
	}
}

func flexibleLink(min, max string) *CheckoutLink {
	l := fixedLink("1")
	l.AmountType = AmountFlexible
	l.Amount = decimal.NullDecimal{}
	if min != "" {
		l.MinAmount = nd(min)
	}
	if max != "" {
		l.MaxAmount = nd(max)
	}
	return l
}

func TestCheckAmount_Fixed(t *testing.T) {
	link := fixedLink("99.99")

	assert.NoError(t, link.CheckAmount(decimal.RequireFromString("99.99")))
	assert.NoError(t, link.CheckAmount(decimal.RequireFromString("99.990")))
	assert.ErrorIs(t, link.CheckAmount(decimal.RequireFromString("50.00")), ErrAmountMismatch)
	assert.ErrorIs(t, link.CheckAmount(decimal.RequireFromString("100")), ErrAmountMismatch)
	assert.ErrorIs(t, link.CheckAmount(decimal.Zero), ErrAmountNotPositive)
	assert.ErrorIs(t, link.CheckAmount(decimal.RequireFromString("99.991")), ErrAmountScale)
}

func TestCheckAmount_Flexible(t *testing.T) {
	tests := []struct {
		name     string
		min, max string
		amount   string
		wantErr  error
	}{
		{name: "inside", min: "10", max: "100", amount: "55.50"},
		{name: "at min", min: "10", max: "100", amount: "10"},
		{name: "at max", min: "10", max: "100", amount: "100.00"},
		{name: "below min", min: "10", max: "100", amount: "9.99", wantErr: ErrAmountBelowMin},
		{name: "above max", min: "10", max: "100", amount: "100.01", wantErr: ErrAmountAboveMax},
		{name: "open max", min: "10", amount: "1000000"},
		{name: "open min", max: "100", amount: "0.01"},
		{name: "negative", amount: "-1", wantErr: ErrAmountNotPositive},
		{name: "sub-cent", amount: "0.001", wantErr: ErrAmountScale},
		{name: "half cent", min: "10", amount: "10.005", wantErr: ErrAmountScale},
		{name: "trailing zeros", min: "10", amount: "10.500"},
		{name: "overflow", amount: "123456789012345678901234.00", wantErr: ErrAmountTooLarge},
		{name: "largest storable", amount: "9999999999999999.99"},
		{name: "smallest over", amount: "10000000000000000", wantErr: ErrAmountTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := flexibleLink(tt.min, tt.max)
			err := link.CheckAmount(decimal.RequireFromString(tt.amount))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckoutLink_IsOpen(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	link := fixedLink("10")
	assert.True(t, link.IsOpen(now))

	link.ExpiresAt = &future
	assert.True(t, link.IsOpen(now))

	link.ExpiresAt = &past
	assert.False(t, link.IsOpen(now))

	for _, status := range []LinkStatus{LinkInactive, LinkExpired, LinkDraft} {
		l := fixedLink("10")
		l.Status = status
		assert.False(t, l.IsOpen(now), status)
	}
}

func TestPaymentMethod_Supports(t *testing.T) {
	m := PaymentMethod{Status: MethodActive, Countries: []string{"US", "CA"}}
	assert.True(t, m.Supports("US"))
	assert.False(t, m.Supports("GB"))

	m.Status = MethodPending
	assert.False(t, m.Supports("US"))
}

func TestValidateMethod_PaymentLinkNeedsURL(t *testing.T) {
	m := &PaymentMethod{
		Name:      "Stripe link",
		Type:      MethodPaymentLink,
		Countries: []string{"US"},
		Status:    MethodActive,
	}
	assert.Error(t, ValidateMethod(m))

	m.URL = "not a url"
	assert.Error(t, ValidateMethod(m))

	m.URL = "https://pay.example.com/abc"
	assert.NoError(t, ValidateMethod(m))

	bank := &PaymentMethod{Name: "Bank", Type: MethodBank, Countries: []string{"US"}, Status: MethodActive}
	assert.NoError(t, ValidateMethod(bank))
}

func TestValidateMethod_RejectsUnknownType(t *testing.T) {
	m := &PaymentMethod{Name: "Cash", Type: "cash", Countries: []string{"US"}, Status: MethodActive}
	assert.Error(t, ValidateMethod(m))
}

func TestValidateLink(t *testing.T) {
	assert.NoError(t, ValidateLink(fixedLink("99.99")))
	assert.NoError(t, ValidateLink(flexibleLink("1", "10")))

	noAmount := fixedLink("1")
	noAmount.Amount = decimal.NullDecimal{}
	assert.Error(t, ValidateLink(noAmount))

	assert.Error(t, ValidateLink(flexibleLink("10", "1")))

	badSlug := fixedLink("1")
	badSlug.Slug = "Bad Slug!"
	assert.Error(t, ValidateLink(badSlug))

	for _, l := range []*CheckoutLink{fixedLink("99.999"), flexibleLink("0.001", "10"), flexibleLink("1", "10.005")} {
		assert.ErrorIs(t, ValidateLink(l), ErrAmountScale)
	}
	assert.ErrorIs(t, ValidateLink(fixedLink("10000000000000000")), ErrAmountTooLarge)
	assert.ErrorIs(t, ValidateLink(flexibleLink("1", "123456789012345678901234")), ErrAmountTooLarge)
	assert.NoError(t, ValidateLink(fixedLink("99.990")))

	badCountry := fixedLink("1")
	badCountry.ActiveCountryCodes = []string{"usa"}
	assert.Error(t, ValidateLink(badCountry))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("jane@example.com"))
	assert.Error(t, ValidateEmail("jane"))
	assert.Error(t, ValidateEmail(""))
}

func TestPaymentStatus_IsVerdict(t *testing.T) {
	assert.True(t, PaymentApproved.IsVerdict())
	assert.True(t, PaymentRejected.IsVerdict())
	assert.False(t, PaymentPendingVerification.IsVerdict())
	assert.False(t, PaymentExpired.IsVerdict())
}
