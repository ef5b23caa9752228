package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"pxv-pay/internal/message"

	"github.com/VictoriaMetrics/metrics"
	"github.com/segmentio/kafka-go"
)

type Metrics struct {
	ReadErrorCounter      *metrics.Counter
	UnmarshalErrorCounter *metrics.Counter
	ProcessErrorCounter   *metrics.Counter
	SuccessCounter        *metrics.Counter
}

var paymentEventMetrics = Metrics{
	ReadErrorCounter:      metrics.GetOrCreateCounter(`kafka_reader_total{result="read_error",type="payment_event"}`),
	UnmarshalErrorCounter: metrics.GetOrCreateCounter(`kafka_reader_total{result="unmarshal_error",type="payment_event"}`),
	ProcessErrorCounter:   metrics.GetOrCreateCounter(`kafka_reader_total{result="process_error",type="payment_event"}`),
	SuccessCounter:        metrics.GetOrCreateCounter(`kafka_reader_total{result="success",type="payment_event"}`),
}

// MessageReader is the part of *kafka.Reader used by the stream loop.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// NewStreamReader returns a group-less reader positioned at the end of the
// topic, so a subscriber only sees events produced after it connected.
func NewStreamReader(kafkaURL, topic string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     strings.Split(kafkaURL, ","),
		Topic:       topic,
		StartOffset: kafka.LastOffset,
		MaxWait:     500 * time.Millisecond,
	})
}

// ReadPaymentEvents feeds decoded events to process until ctx is done. Bad
// messages are counted and skipped; nothing is redelivered.
func ReadPaymentEvents(ctx context.Context, reader MessageReader, logger *slog.Logger, process func(context.Context, message.PaymentEvent) error) error {
	return readMessages(ctx, reader, logger, func(ctx context.Context, value []byte) error {
		var e message.PaymentEvent
		if err := json.Unmarshal(value, &e); err != nil {
			logger.ErrorContext(ctx, "Error unmarshalling message", "error", err)
			paymentEventMetrics.UnmarshalErrorCounter.Inc()
			return nil
		}
		return process(ctx, e)
	}, paymentEventMetrics)
}

func readMessages(ctx context.Context, reader MessageReader, logger *slog.Logger, process func(context.Context, []byte) error, kafkaMetrics Metrics) error {
	for {
		m, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			logger.ErrorContext(ctx, "Error reading message", "error", err)
			kafkaMetrics.ReadErrorCounter.Inc()
			return err
		}
		logger.DebugContext(ctx, "Received message", "topic", m.Topic, "offset", m.Offset)

		if err := process(ctx, m.Value); err != nil {
			logger.ErrorContext(ctx, "Error processing message", "error", err)
			kafkaMetrics.ProcessErrorCounter.Inc()
			return err
		}
		kafkaMetrics.SuccessCounter.Inc()
	}
}
