package notify

import (
	"context"

	"pxv-pay/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Notification tells a customer the outcome of their payment verification.
type Notification struct {
	PaymentID uuid.UUID           `json:"paymentId"`
	Email     string              `json:"email"`
	Name      string              `json:"name"`
	Status    model.PaymentStatus `json:"status"`
	Note      string              `json:"note,omitempty"`
	Amount    decimal.Decimal     `json:"amount"`
	Currency  string              `json:"currency"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

func FromPayment(p *model.Payment) Notification {
	n := Notification{
		PaymentID: p.ID,
		Email:     p.CustomerEmail,
		Name:      p.CustomerName,
		Status:    p.Status,
		Amount:    p.Amount,
		Currency:  p.Currency,
	}
	if p.VerificationNote != nil {
		n.Note = *p.VerificationNote
	}
	return n
}
