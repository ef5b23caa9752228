package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	ErrAmountNotPositive = errors.New("amount must be greater than zero")
	ErrAmountMismatch    = errors.New("amount must equal the fixed checkout amount")
	ErrAmountBelowMin    = errors.New("amount is below the minimum")
	ErrAmountAboveMax    = errors.New("amount is above the maximum")
	ErrAmountScale       = errors.New("amount cannot have more than 2 decimal places")
	ErrAmountTooLarge    = errors.New("amount is too large")
)

// Amounts are stored as NUMERIC(18,2).
const amountScale = 2

var maxAmount = decimal.New(1, 16)

// CheckStorable reports whether amount fits the amount columns without
// rounding or overflow.
func CheckStorable(amount decimal.Decimal) error {
	if !amount.Equal(amount.Round(amountScale)) {
		return ErrAmountScale
	}
	if amount.Abs().GreaterThanOrEqual(maxAmount) {
		return ErrAmountTooLarge
	}
	return nil
}

var slugPattern = regexp.MustCompile(`^[a-z0-9-]{3,64}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	return v
}

// Validate runs the struct tags of v and returns a flattened, readable error.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// ValidateVar checks a single value against a validator tag string.
func ValidateVar(v any, tag string) error {
	return validate.Var(v, tag)
}

// ValidateEmail checks a single address with the same rules as struct tags.
func ValidateEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return fmt.Errorf("invalid email %q", email)
	}
	return nil
}

// ValidateLink checks tags plus the amount rules that depend on amount_type.
func ValidateLink(l *CheckoutLink) error {
	if err := Validate(l); err != nil {
		return err
	}

	for name, v := range map[string]decimal.NullDecimal{"amount": l.Amount, "minimum amount": l.MinAmount,
		"maximum amount": l.MaxAmount} {
		if !v.Valid {
			continue
		}
		if err := CheckStorable(v.Decimal); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	switch l.AmountType {
	case AmountFixed:
		if !l.Amount.Valid || !l.Amount.Decimal.IsPositive() {
			return errors.New("fixed checkout links need a positive amount")
		}
	case AmountFlexible:
		if l.MinAmount.Valid && l.MinAmount.Decimal.IsNegative() {
			return errors.New("minimum amount cannot be negative")
		}
		if l.MinAmount.Valid && l.MaxAmount.Valid && l.MinAmount.Decimal.GreaterThan(l.MaxAmount.Decimal) {
			return errors.New("minimum amount is greater than maximum amount")
		}
	}
	return nil
}

// ValidateMethod checks tags plus the payment-link URL invariant.
func ValidateMethod(m *PaymentMethod) error {
	if err := Validate(m); err != nil {
		return err
	}
	if m.URL != "" {
		if err := validate.Var(m.URL, "url"); err != nil {
			return fmt.Errorf("invalid url %q", m.URL)
		}
	}
	return nil
}

// CheckAmount applies the link's amount rule to a submitted amount.
func (l *CheckoutLink) CheckAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrAmountNotPositive
	}
	if err := CheckStorable(amount); err != nil {
		return err
	}

	if l.AmountType == AmountFixed {
		if !l.Amount.Valid || !amount.Equal(l.Amount.Decimal) {
			return ErrAmountMismatch
		}
		return nil
	}

	if l.MinAmount.Valid && amount.LessThan(l.MinAmount.Decimal) {
		return fmt.Errorf("%w of %s", ErrAmountBelowMin, l.MinAmount.Decimal.StringFixed(2))
	}
	if l.MaxAmount.Valid && amount.GreaterThan(l.MaxAmount.Decimal) {
		return fmt.Errorf("%w of %s", ErrAmountAboveMax, l.MaxAmount.Decimal.StringFixed(2))
	}
	return nil
}
