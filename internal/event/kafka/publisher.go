package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shestoi/inventory-allocation/internal/service"
	platformobservability "github.com/shestoi/inventory-allocation/platform/observability"
)

// messageWriter - часть kafka.Writer, нужная publisher-ам
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ReservationEventPublisher реализует service.ReservationEventPublisher используя Kafka
type ReservationEventPublisher struct {
	logger *zap.Logger
	writer messageWriter
	topic  string
}

// NewReservationEventPublisher создаёт новый Kafka publisher для событий резервов
func NewReservationEventPublisher(logger *zap.Logger, brokers []string, topic string) *ReservationEventPublisher {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}

	return &ReservationEventPublisher{
		logger: logger,
		writer: writer,
		topic:  topic,
	}
}

// Close закрывает Kafka writer
func (p *ReservationEventPublisher) Close() error {
	return p.writer.Close()
}

// PublishReservationEvent публикует событие изменения резерва.
// Ключ сообщения - ID позиции заказа, чтобы события одной позиции шли в одну партицию.
func (p *ReservationEventPublisher) PublishReservationEvent(ctx context.Context, event service.ReservationEvent) error {
	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	payload := map[string]any{
		"event_id":      uuid.NewString(),
		"event_type":    event.EventType,
		"event_version": 1,
		"occurred_at":   occurredAt.UTC().Format(time.RFC3339),
		"mode":          event.Mode.String(),
		"line_item_id":  event.LineItemID,
		"variant_id":    event.VariantID,
		"location_id":   event.LocationID,
		"quantity":      event.Quantity,
	}

	valueBytes, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("failed to marshal reservation event",
			zap.Error(err),
			zap.String("line_item_id", event.LineItemID),
		)
		return err
	}

	message := kafka.Message{
		Key:   []byte(event.LineItemID),
		Value: valueBytes,
	}
	platformobservability.InjectKafkaHeaders(ctx, &message)

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		p.logger.Error("failed to publish reservation event",
			zap.Error(err),
			zap.String("topic", p.topic),
			zap.String("event_type", event.EventType),
			zap.String("line_item_id", event.LineItemID),
		)
		return err
	}

	p.logger.Debug("reservation event published",
		zap.String("topic", p.topic),
		zap.String("event_type", event.EventType),
		zap.String("line_item_id", event.LineItemID),
		zap.String("variant_id", event.VariantID),
		zap.Int64("quantity", event.Quantity),
	)

	return nil
}
