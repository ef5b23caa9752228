package kafka

import (
	"strings"
	"time"

	"pxv-pay/internal/config"

	"github.com/segmentio/kafka-go"
)

const (
	DefaultBatchSize    = 1
	DefaultBatchTimeout = 10
)

func NewWriter(cfg config.Kafka) *kafka.Writer {
	batchSize := cfg.Writer.BatchSize
	if batchSize <= 0 {
		batchSize = config.GetEnvInt("KAFKA_WRITER_BATCH_SIZE", DefaultBatchSize)
	}
	batchTimeout := cfg.Writer.BatchTimeoutMs
	if batchTimeout <= 0 {
		batchTimeout = config.GetEnvInt("KAFKA_WRITER_BATCH_TIMEOUT", DefaultBatchTimeout)
	}

	return &kafka.Writer{
		Addr:                   kafka.TCP(strings.Split(cfg.Broker.URL, ",")...),
		Topic:                  cfg.Topic.PaymentEvents,
		Balancer:               &kafka.ReferenceHash{},
		BatchSize:              batchSize,
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           time.Duration(batchTimeout) * time.Millisecond,
		Async:                  false,
		AllowAutoTopicCreation: false,
	}
}
