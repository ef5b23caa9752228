package event

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"pxv-pay/internal/logcontext"
	"pxv-pay/internal/message"
	"pxv-pay/internal/model"

	"github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

var (
	publishedCounter         = metrics.GetOrCreateCounter(`payment_events_total{result="published"}`)
	publishFailedCounter     = metrics.GetOrCreateCounter(`payment_events_total{result="publish_failed"}`)
	publishDurationHistogram = metrics.GetOrCreateHistogram(`payment_events_publish_duration_milliseconds`)
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Publisher pushes payment row changes to the event topic. Delivery is
// fire-and-forget: failures are logged and counted, never returned.
type Publisher struct {
	writer MessageWriter
	logger *slog.Logger
	now    func() time.Time
}

func NewPublisher(writer MessageWriter, logger *slog.Logger) *Publisher {
	return &Publisher{writer: writer, logger: logger, now: time.Now}
}

func (p *Publisher) Publish(ctx context.Context, eventType message.EventType, payment *model.Payment) {
	startTime := p.now()
	event := message.PaymentEvent{
		ID:         uuid.New(),
		Type:       eventType,
		MerchantID: payment.MerchantID,
		Payment:    *payment,
		OccurredAt: startTime.UTC(),
	}
	ctx = logcontext.AppendCtx(ctx, slog.String("eventId", event.ID.String()))

	msg, err := toKafkaMessage(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "Error marshalling payment event", "error", err)
		publishFailedCounter.Inc()
		return
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.ErrorContext(ctx, "Error writing payment event to Kafka", "error", err, "paymentId", payment.ID)
		publishFailedCounter.Inc()
		return
	}

	publishedCounter.Inc()
	publishDurationHistogram.Update(float64(time.Since(startTime).Milliseconds()))
	p.logger.InfoContext(ctx, "Published payment event", "type", eventType, "paymentId", payment.ID)
}

func toKafkaMessage(event message.PaymentEvent) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(event.MerchantID.String()), // keeps a merchant's events ordered
		Value: value,
	}, nil
}
