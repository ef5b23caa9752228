package testhelpers

import (
	"pxv-pay/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MigrationsDir is relative to a package directory under internal/.
const MigrationsDir = "../../migrations"

func FixedLink(merchantID uuid.UUID, slug, amount string, countries ...string) *model.CheckoutLink {
	return &model.CheckoutLink{
		MerchantID:         merchantID,
		Slug:               slug,
		Title:              "Checkout " + slug,
		AmountType:         model.AmountFixed,
		Amount:             decimal.NewNullDecimal(decimal.RequireFromString(amount)),
		Currency:           "USD",
		ActiveCountryCodes: countries,
		Status:             model.LinkActive,
	}
}

func FlexibleLink(merchantID uuid.UUID, slug, min, max string, countries ...string) *model.CheckoutLink {
	l := FixedLink(merchantID, slug, "1", countries...)
	l.AmountType = model.AmountFlexible
	l.Amount = decimal.NullDecimal{}
	l.MinAmount = decimal.NewNullDecimal(decimal.RequireFromString(min))
	l.MaxAmount = decimal.NewNullDecimal(decimal.RequireFromString(max))
	return l
}

func BankMethod(merchantID uuid.UUID, name string, countries ...string) *model.PaymentMethod {
	return &model.PaymentMethod{
		MerchantID: merchantID,
		Name:       name,
		Type:       model.MethodBank,
		Countries:  countries,
		Status:     model.MethodActive,
		Details:    map[string]string{"iban": "US00 0000 0000"},
	}
}
