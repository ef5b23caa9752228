package message

import (
	"time"

	"pxv-pay/internal/model"

	"github.com/google/uuid"
)

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
)

// PaymentEvent is a payment row change pushed to dashboards.
type PaymentEvent struct {
	ID         uuid.UUID     `json:"id"`
	Type       EventType     `json:"type"`
	MerchantID uuid.UUID     `json:"merchantId"`
	Payment    model.Payment `json:"payment"`
	OccurredAt time.Time     `json:"occurredAt"`
}
