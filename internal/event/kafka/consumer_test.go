package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/inventory-allocation/internal/repository/memory"
	"github.com/shestoi/inventory-allocation/internal/service"
	"github.com/shestoi/inventory-allocation/internal/service/mocks"
)

// fakeReader отдаёт сообщения из очереди, затем io.EOF
type fakeReader struct {
	mu        sync.Mutex
	messages  []kafka.Message
	committed []kafka.Message
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return kafka.Message{}, io.EOF
	}
	m := r.messages[0]
	r.messages = r.messages[1:]
	return m, nil
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Config() kafka.ReaderConfig {
	return kafka.ReaderConfig{Topic: "order.events", GroupID: "inventory"}
}

func (r *fakeReader) Close() error { return nil }

type mockOrderEventHandler struct {
	mock.Mock
}

func (m *mockOrderEventHandler) HandleOrderEvent(ctx context.Context, event service.OrderEvent) error {
	return m.Called(ctx, event).Error(0)
}

type dlqRecord struct {
	msg     kafka.Message
	cause   error
	eventID string
}

type fakeDLQ struct {
	records []dlqRecord
	err     error
}

func (d *fakeDLQ) Publish(ctx context.Context, msg kafka.Message, cause error, eventType, eventID, orderID string) error {
	if d.err != nil {
		return d.err
	}
	d.records = append(d.records, dlqRecord{msg: msg, cause: cause, eventID: eventID})
	return nil
}

func orderEventMessageValue(t *testing.T, eventID, eventType string) []byte {
	t.Helper()
	b, err := json.Marshal(orderEventMessage{
		EventID:      eventID,
		EventType:    eventType,
		EventVersion: 1,
		OrderID:      "o-1",
		LocationID:   "loc-1",
		Items:        []orderEventItemMessage{{LineItemID: "li-1", VariantID: "v-1", Quantity: 2}},
	})
	require.NoError(t, err)
	return b
}

func newTestConsumer(reader *fakeReader, handler OrderEventHandler, processed service.ProcessedEventsStore, dlq deadLetterPublisher) *OrderEventsConsumer {
	return newOrderEventsConsumer(zap.NewNop(), reader, handler, processed, dlq, ConsumerConfig{
		MaxAttempts: 3,
		BackoffBase: time.Millisecond,
	})
}

func TestConsumer_ProcessesAndCommits(t *testing.T) {
	reader := &fakeReader{messages: []kafka.Message{
		{Topic: "order.events", Offset: 1, Value: orderEventMessageValue(t, "e-1", service.OrderEventPlaced)},
	}}
	handler := &mockOrderEventHandler{}
	handler.On("HandleOrderEvent", mock.Anything, mock.MatchedBy(func(e service.OrderEvent) bool {
		return e.EventID == "e-1" && e.OrderID == "o-1" && len(e.Items) == 1 && e.Items[0].Quantity == 2
	})).Return(nil).Once()

	c := newTestConsumer(reader, handler, memory.NewProcessedEventsStore(), &fakeDLQ{})
	require.NoError(t, c.Start(context.Background()))

	handler.AssertExpectations(t)
	require.Len(t, reader.committed, 1)
	assert.Equal(t, int64(1), reader.committed[0].Offset)
}

func TestConsumer_DuplicateEventSkipped(t *testing.T) {
	value := orderEventMessageValue(t, "e-dup", service.OrderEventCanceled)
	reader := &fakeReader{messages: []kafka.Message{
		{Offset: 1, Value: value},
		{Offset: 2, Value: value},
	}}
	handler := &mockOrderEventHandler{}
	handler.On("HandleOrderEvent", mock.Anything, mock.Anything).Return(nil).Once()

	c := newTestConsumer(reader, handler, memory.NewProcessedEventsStore(), &fakeDLQ{})
	require.NoError(t, c.Start(context.Background()))

	handler.AssertNumberOfCalls(t, "HandleOrderEvent", 1)
	assert.Len(t, reader.committed, 2)
}

func TestConsumer_ProcessMessage(t *testing.T) {
	infraErr := errors.New("ledger unavailable")

	tests := []struct {
		name          string
		eventType     string
		handlerErrs   []error
		dlqErr        error
		wantCommit    bool
		wantCalls     int
		wantDLQ       bool
		wantReprocess bool
	}{
		{
			name:        "success on first attempt",
			eventType:   service.OrderEventPlaced,
			handlerErrs: []error{nil},
			wantCommit:  true,
			wantCalls:   1,
		},
		{
			name:        "transient error then success",
			eventType:   service.OrderEventPlaced,
			handlerErrs: []error{infraErr, nil},
			wantCommit:  true,
			wantCalls:   2,
		},
		{
			name:        "business error is committed without retry",
			eventType:   service.OrderEventPlaced,
			handlerErrs: []error{&service.InsufficientStockError{LineItemID: "li-1"}},
			wantCommit:  true,
			wantCalls:   1,
		},
		{
			name:          "retries exhausted go to DLQ",
			eventType:     service.OrderEventCanceled,
			handlerErrs:   []error{infraErr, infraErr, infraErr},
			wantCommit:    true,
			wantCalls:     3,
			wantDLQ:       true,
			wantReprocess: true,
		},
		{
			name:          "adjusted event is not retried",
			eventType:     service.OrderEventLineItemAdjusted,
			handlerErrs:   []error{infraErr},
			wantCommit:    true,
			wantCalls:     1,
			wantDLQ:       true,
			wantReprocess: true,
		},
		{
			name:          "DLQ failure keeps offset",
			eventType:     service.OrderEventCanceled,
			handlerErrs:   []error{infraErr, infraErr, infraErr},
			dlqErr:        errors.New("dlq down"),
			wantCommit:    false,
			wantCalls:     3,
			wantReprocess: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := &mockOrderEventHandler{}
			for _, err := range tt.handlerErrs {
				handler.On("HandleOrderEvent", mock.Anything, mock.Anything).Return(err).Once()
			}
			processed := memory.NewProcessedEventsStore()
			dlq := &fakeDLQ{err: tt.dlqErr}
			c := newTestConsumer(&fakeReader{}, handler, processed, dlq)

			msg := kafka.Message{Topic: "order.events", Offset: 7, Value: orderEventMessageValue(t, "e-1", tt.eventType)}
			assert.Equal(t, tt.wantCommit, c.processMessage(context.Background(), msg))

			handler.AssertNumberOfCalls(t, "HandleOrderEvent", tt.wantCalls)
			if tt.wantDLQ {
				require.Len(t, dlq.records, 1)
				assert.Equal(t, "e-1", dlq.records[0].eventID)
				assert.ErrorIs(t, dlq.records[0].cause, infraErr)
			} else {
				assert.Empty(t, dlq.records)
			}

			// отметка снята - событие можно обработать повторно
			first, err := processed.MarkProcessed(context.Background(), "e-1", time.Hour)
			require.NoError(t, err)
			assert.Equal(t, tt.wantReprocess, first)
		})
	}
}

func TestConsumer_PoisonPill(t *testing.T) {
	tests := []struct {
		name  string
		value []byte
		field string
	}{
		{name: "invalid JSON", value: []byte(`{"event_id":`)},
		{name: "missing event_id", value: []byte(`{"event_type":"order.placed"}`), field: "event_id"},
		{name: "missing event_type", value: []byte(`{"event_id":"e-1"}`), field: "event_type"},
		{
			name:  "item without line_item_id",
			value: []byte(`{"event_id":"e-1","event_type":"order.placed","items":[{"variant_id":"v-1","quantity":1}]}`),
			field: "items[0].line_item_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := &mockOrderEventHandler{}
			dlq := &fakeDLQ{}
			c := newTestConsumer(&fakeReader{}, handler, memory.NewProcessedEventsStore(), dlq)

			require.True(t, c.processMessage(context.Background(), kafka.Message{Value: tt.value}))
			handler.AssertNotCalled(t, "HandleOrderEvent", mock.Anything, mock.Anything)
			require.Len(t, dlq.records, 1)

			if tt.field != "" {
				var parseErr *ParseError
				require.ErrorAs(t, dlq.records[0].cause, &parseErr)
				assert.Equal(t, tt.field, parseErr.Field)
			}
		})
	}
}

func TestConsumer_ProcessedStoreError(t *testing.T) {
	processed := mocks.NewProcessedEventsStore(t)
	processed.On("MarkProcessed", mock.Anything, "e-1", 24*time.Hour).Return(false, errors.New("redis down")).Once()

	handler := &mockOrderEventHandler{}
	c := newTestConsumer(&fakeReader{}, handler, processed, &fakeDLQ{})

	msg := kafka.Message{Value: orderEventMessageValue(t, "e-1", service.OrderEventPlaced)}
	assert.False(t, c.processMessage(context.Background(), msg))
	handler.AssertNotCalled(t, "HandleOrderEvent", mock.Anything, mock.Anything)
}

func TestConsumer_CancelledDuringRetryUnmarks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	processed := mocks.NewProcessedEventsStore(t)
	processed.On("MarkProcessed", mock.Anything, "e-1", mock.Anything).Return(true, nil).Once()
	processed.On("Unmark", mock.Anything, "e-1").Return(nil).Once()

	handler := &mockOrderEventHandler{}
	handler.On("HandleOrderEvent", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(errors.New("timeout")).Once()

	dlq := &fakeDLQ{}
	c := newOrderEventsConsumer(zap.NewNop(), &fakeReader{}, handler, processed, dlq, ConsumerConfig{
		MaxAttempts: 3,
		BackoffBase: time.Hour,
	})

	msg := kafka.Message{Value: orderEventMessageValue(t, "e-1", service.OrderEventPlaced)}
	assert.False(t, c.processMessage(ctx, msg))
	assert.Empty(t, dlq.records)
	handler.AssertNumberOfCalls(t, "HandleOrderEvent", 1)
}

func TestConsumer_WithoutDLQCommitsFailedMessage(t *testing.T) {
	c := newTestConsumer(&fakeReader{}, &mockOrderEventHandler{}, memory.NewProcessedEventsStore(), nil)
	assert.True(t, c.processMessage(context.Background(), kafka.Message{Value: []byte("not json")}))
}

func TestParseOrderEvent(t *testing.T) {
	event, err := parseOrderEvent([]byte(`{
		"event_id": "e-1",
		"event_type": "order.line_item.adjusted",
		"event_version": 1,
		"order_id": "o-1",
		"sales_channel_id": "web",
		"location_id": "loc-1",
		"items": [{"line_item_id": "li-1", "variant_id": "v-1", "delta": -2}]
	}`))
	require.NoError(t, err)
	assert.Equal(t, service.OrderEvent{
		EventID:        "e-1",
		EventType:      service.OrderEventLineItemAdjusted,
		OrderID:        "o-1",
		SalesChannelID: "web",
		LocationID:     "loc-1",
		Items:          []service.OrderEventItem{{LineItemID: "li-1", VariantID: "v-1", Delta: -2}},
	}, event)

	// при ошибке валидации извлечённые поля сохраняются для DLQ
	event, err = parseOrderEvent([]byte(`{"event_type":"order.placed","order_id":"o-2"}`))
	require.Error(t, err)
	assert.Equal(t, "o-2", event.OrderID)
}
