package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"pxv-pay/internal/message"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	messages []kafka.Message
	cancel   context.CancelFunc
	err      error
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.messages) == 0 {
		if r.err != nil {
			return kafka.Message{}, r.err
		}
		r.cancel()
		return kafka.Message{}, ctx.Err()
	}
	m := r.messages[0]
	r.messages = r.messages[1:]
	return m, nil
}

func encode(t *testing.T, e message.PaymentEvent) kafka.Message {
	t.Helper()
	value, err := json.Marshal(e)
	require.NoError(t, err)
	return kafka.Message{Key: []byte(e.MerchantID.String()), Value: value}
}

func TestReadPaymentEvents_SkipsUndecodableAndStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := message.PaymentEvent{ID: uuid.New(), Type: message.EventInsert, MerchantID: uuid.New()}
	second := message.PaymentEvent{ID: uuid.New(), Type: message.EventUpdate, MerchantID: uuid.New()}

	reader := &fakeReader{
		messages: []kafka.Message{encode(t, first), {Value: []byte("{not json")}, encode(t, second)},
		cancel:   cancel,
	}

	var got []uuid.UUID
	err := ReadPaymentEvents(ctx, reader, slog.Default(), func(ctx context.Context, e message.PaymentEvent) error {
		got = append(got, e.ID)
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, []uuid.UUID{first.ID, second.ID}, got)
}

func TestReadPaymentEvents_StopsOnProcessError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	event := message.PaymentEvent{ID: uuid.New(), MerchantID: uuid.New()}
	reader := &fakeReader{messages: []kafka.Message{encode(t, event), encode(t, event)}, cancel: cancel}

	calls := 0
	boom := errors.New("client gone")
	err := ReadPaymentEvents(ctx, reader, slog.Default(), func(ctx context.Context, e message.PaymentEvent) error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestReadPaymentEvents_ReturnsReadError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broken := errors.New("broker unavailable")
	reader := &fakeReader{err: broken, cancel: cancel}

	err := ReadPaymentEvents(ctx, reader, slog.Default(), func(ctx context.Context, e message.PaymentEvent) error {
		return nil
	})
	assert.ErrorIs(t, err, broken)
}
