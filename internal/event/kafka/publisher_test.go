package kafka

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/inventory-allocation/internal/service"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestReservationEventPublisher_Publish(t *testing.T) {
	writer := &fakeWriter{}
	p := &ReservationEventPublisher{logger: zap.NewNop(), writer: writer, topic: "inventory.reservations"}

	occurredAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	err := p.PublishReservationEvent(context.Background(), service.ReservationEvent{
		EventType:  service.EventReservationCreated,
		OccurredAt: occurredAt,
		Mode:       service.ModeLedger,
		LineItemID: "li-1",
		VariantID:  "v-1",
		LocationID: "loc-1",
		Quantity:   3,
	})
	require.NoError(t, err)
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, "li-1", string(msg.Key))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.NotEmpty(t, payload["event_id"])
	assert.Equal(t, service.EventReservationCreated, payload["event_type"])
	assert.Equal(t, occurredAt.Format(time.RFC3339), payload["occurred_at"])
	assert.Equal(t, service.ModeLedger.String(), payload["mode"])
	assert.Equal(t, "v-1", payload["variant_id"])
	assert.Equal(t, "loc-1", payload["location_id"])
	assert.EqualValues(t, 3, payload["quantity"])

	require.NoError(t, p.Close())
	assert.True(t, writer.closed)
}

func TestReservationEventPublisher_WriteError(t *testing.T) {
	writeErr := errors.New("broker unavailable")
	p := &ReservationEventPublisher{logger: zap.NewNop(), writer: &fakeWriter{err: writeErr}, topic: "inventory.reservations"}

	err := p.PublishReservationEvent(context.Background(), service.ReservationEvent{
		EventType:  service.EventReservationReleased,
		LineItemID: "li-1",
	})
	require.ErrorIs(t, err, writeErr)
}

func TestDLQPublisher_Publish(t *testing.T) {
	writer := &fakeWriter{}
	p := &DLQPublisher{logger: zap.NewNop(), writer: writer, topic: "order.events.dlq"}

	original := kafka.Message{
		Topic:     "order.events",
		Partition: 2,
		Offset:    42,
		Key:       []byte("o-key"),
		Value:     []byte(`{"broken":`),
	}
	require.NoError(t, p.Publish(context.Background(), original, errors.New("parse failed"), "order.placed", "e-1", "o-1"))
	require.Len(t, writer.messages, 1)
	assert.Equal(t, "o-1", string(writer.messages[0].Key))

	var dlq DLQMessage
	require.NoError(t, json.Unmarshal(writer.messages[0].Value, &dlq))
	assert.Equal(t, "order.events", dlq.OriginalTopic)
	assert.Equal(t, 2, dlq.OriginalPartition)
	assert.Equal(t, int64(42), dlq.OriginalOffset)
	assert.Equal(t, "parse failed", dlq.ErrorMessage)
	assert.Equal(t, "e-1", dlq.EventID)

	value, err := base64.StdEncoding.DecodeString(dlq.OriginalValue)
	require.NoError(t, err)
	assert.Equal(t, original.Value, value)

	_, err = time.Parse(time.RFC3339, dlq.FailedAt)
	require.NoError(t, err)
}

func TestDLQPublisher_KeepsOriginalKeyWithoutOrder(t *testing.T) {
	writer := &fakeWriter{}
	p := &DLQPublisher{logger: zap.NewNop(), writer: writer, topic: "order.events.dlq"}

	require.NoError(t, p.Publish(context.Background(), kafka.Message{Key: []byte("raw")}, nil, "", "", ""))
	require.Len(t, writer.messages, 1)
	assert.Equal(t, "raw", string(writer.messages[0].Key))

	var dlq DLQMessage
	require.NoError(t, json.Unmarshal(writer.messages[0].Value, &dlq))
	assert.Equal(t, "unknown error", dlq.ErrorMessage)
}
