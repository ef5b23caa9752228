package event

import (
	"context"
	"log/slog"

	"pxv-pay/internal/kafka"
	"pxv-pay/internal/message"

	kafkago "github.com/segmentio/kafka-go"
)

// Subscriber opens one reader per dashboard connection. Each subscription
// starts at the tail of the topic and ends with its context.
type Subscriber struct {
	brokers   string
	topic     string
	logger    *slog.Logger
	newReader func(brokers, topic string) *kafkago.Reader
}

func NewSubscriber(brokers, topic string, logger *slog.Logger) *Subscriber {
	return &Subscriber{
		brokers:   brokers,
		topic:     topic,
		logger:    logger,
		newReader: kafka.NewStreamReader,
	}
}

// Subscribe delivers every event accepted by visible until ctx is cancelled
// or deliver fails.
func (s *Subscriber) Subscribe(ctx context.Context, visible func(message.PaymentEvent) bool, deliver func(message.PaymentEvent) error) error {
	reader := s.newReader(s.brokers, s.topic)
	defer reader.Close()

	s.logger.InfoContext(ctx, "Payment stream subscribed")
	defer s.logger.InfoContext(ctx, "Payment stream unsubscribed")

	return kafka.ReadPaymentEvents(ctx, reader, s.logger, func(ctx context.Context, e message.PaymentEvent) error {
		if !visible(e) {
			return nil
		}
		return deliver(e)
	})
}
