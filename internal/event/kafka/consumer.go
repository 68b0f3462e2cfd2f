package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/shestoi/inventory-allocation/internal/service"
	platformobservability "github.com/shestoi/inventory-allocation/platform/observability"
)

// OrderEventHandler применяет событие заказа к резервам (реализует service.InventoryService)
type OrderEventHandler interface {
	HandleOrderEvent(ctx context.Context, event service.OrderEvent) error
}

// messageReader - часть kafka.Reader, нужная consumer-у
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Config() kafka.ReaderConfig
	Close() error
}

// deadLetterPublisher - публикация необработанных сообщений (реализует DLQPublisher)
type deadLetterPublisher interface {
	Publish(ctx context.Context, msg kafka.Message, cause error, eventType, eventID, orderID string) error
}

// ConsumerConfig - параметры обработки событий заказа
type ConsumerConfig struct {
	Brokers      []string
	GroupID      string
	Topic        string
	MaxAttempts  int
	BackoffBase  time.Duration
	ProcessedTTL time.Duration
}

// orderEventMessage - JSON конверт события заказа
type orderEventMessage struct {
	EventID        string                 `json:"event_id"`
	EventType      string                 `json:"event_type"`
	EventVersion   int                    `json:"event_version"`
	OrderID        string                 `json:"order_id"`
	SalesChannelID string                 `json:"sales_channel_id"`
	LocationID     string                 `json:"location_id"`
	Items          []orderEventItemMessage `json:"items"`
}

type orderEventItemMessage struct {
	LineItemID string `json:"line_item_id"`
	VariantID  string `json:"variant_id"`
	Quantity   int64  `json:"quantity"`
	Delta      int64  `json:"delta"`
}

// OrderEventsConsumer обрабатывает события заказов из Kafka
type OrderEventsConsumer struct {
	logger    *zap.Logger
	reader    messageReader
	handler   OrderEventHandler
	processed service.ProcessedEventsStore
	dlq       deadLetterPublisher
	tracer    trace.Tracer

	maxAttempts  int
	backoffBase  time.Duration
	processedTTL time.Duration
}

// NewOrderEventsConsumer создаёт новый consumer событий заказа
func NewOrderEventsConsumer(
	logger *zap.Logger,
	cfg ConsumerConfig,
	handler OrderEventHandler,
	processed service.ProcessedEventsStore,
	dlq *DLQPublisher,
) *OrderEventsConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})

	var dl deadLetterPublisher
	if dlq != nil {
		dl = dlq
	}
	return newOrderEventsConsumer(logger, reader, handler, processed, dl, cfg)
}

func newOrderEventsConsumer(
	logger *zap.Logger,
	reader messageReader,
	handler OrderEventHandler,
	processed service.ProcessedEventsStore,
	dlq deadLetterPublisher,
	cfg ConsumerConfig,
) *OrderEventsConsumer {
	// Safety defaults (на случай кривого env/config)
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = time.Second
	}
	if cfg.ProcessedTTL <= 0 {
		cfg.ProcessedTTL = 24 * time.Hour
	}

	return &OrderEventsConsumer{
		logger:       logger,
		reader:       reader,
		handler:      handler,
		processed:    processed,
		dlq:          dlq,
		tracer:       otel.Tracer("inventory"),
		maxAttempts:  cfg.MaxAttempts,
		backoffBase:  cfg.BackoffBase,
		processedTTL: cfg.ProcessedTTL,
	}
}

// Start читает сообщения до отмены ctx.
// At-least-once: FetchMessage + CommitMessages после обработки, дубли отсекает ProcessedEventsStore.
func (c *OrderEventsConsumer) Start(ctx context.Context) error {
	c.logger.Info("starting kafka consumer",
		zap.String("topic", c.reader.Config().Topic),
		zap.String("group_id", c.reader.Config().GroupID),
		zap.Int("max_retry_attempts", c.maxAttempts),
	)

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer context cancelled, stopping")
				return nil
			}
			// reader закрыт
			if errors.Is(err, io.EOF) {
				c.logger.Info("kafka reader closed, stopping")
				return nil
			}
			c.logger.Error("failed to fetch message from kafka", zap.Error(err))
			continue
		}

		if !c.processMessage(ctx, m) {
			continue
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.Error("failed to commit message offset",
				zap.Error(err),
				zap.String("topic", m.Topic),
				zap.Int("partition", m.Partition),
				zap.Int64("offset", m.Offset),
			)
			continue
		}

		c.logger.Debug("message offset committed",
			zap.String("topic", m.Topic),
			zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset),
		)
	}
}

// processMessage обрабатывает одно сообщение.
// Возвращает true, если offset нужно закоммитить.
func (c *OrderEventsConsumer) processMessage(ctx context.Context, m kafka.Message) bool {
	ctx = platformobservability.ExtractKafkaHeaders(ctx, m)

	event, err := parseOrderEvent(m.Value)
	if err != nil {
		c.logger.Error("failed to parse order event - sending to DLQ",
			zap.Error(err),
			zap.String("topic", m.Topic),
			zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset),
		)
		// poison pill
		return c.deadLetter(ctx, m, err, event)
	}

	ctx, span := c.tracer.Start(ctx, "kafka.consume "+event.EventType,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", m.Topic),
			attribute.String("event_id", event.EventID),
			attribute.String("order_id", event.OrderID),
		),
	)
	defer span.End()

	logger := platformobservability.L(ctx, c.logger).With(
		zap.String("event_id", event.EventID),
		zap.String("event_type", event.EventType),
		zap.String("order_id", event.OrderID),
		zap.Int("partition", m.Partition),
		zap.Int64("offset", m.Offset),
	)

	first, err := c.processed.MarkProcessed(ctx, event.EventID, c.processedTTL)
	if err != nil {
		logger.Error("failed to check processed event, offset not committed", zap.Error(err))
		return false
	}
	if !first {
		logger.Info("duplicate order event skipped")
		return true
	}

	err = c.handleWithRetry(ctx, logger, event)
	switch {
	case err == nil:
		logger.Info("order event processed successfully")
		return true

	case ctx.Err() != nil:
		// остановка сервиса: событие будет доставлено повторно
		if unmarkErr := c.processed.Unmark(context.WithoutCancel(ctx), event.EventID); unmarkErr != nil {
			logger.Error("failed to unmark order event", zap.Error(unmarkErr))
		}
		return false

	case service.IsBusinessError(err):
		// повтор не изменит результат: фиксируем отказ и идём дальше
		logger.Warn("order event rejected", zap.Error(err))
		return true

	default:
		span.RecordError(err)
		// снимаем отметку, чтобы событие можно было переиграть из DLQ
		if unmarkErr := c.processed.Unmark(context.WithoutCancel(ctx), event.EventID); unmarkErr != nil {
			logger.Error("failed to unmark order event", zap.Error(unmarkErr))
		}
		logger.Error("failed to handle order event after all retries - sending to DLQ", zap.Error(err))
		return c.deadLetter(ctx, m, err, event)
	}
}

// handleWithRetry повторяет обработку с экспоненциальным backoff: base, 2*base, 4*base...
// Бизнес-ошибки не повторяются. order.line_item.adjusted не повторяется: delta не идемпотентна.
func (c *OrderEventsConsumer) handleWithRetry(ctx context.Context, logger *zap.Logger, event service.OrderEvent) error {
	attempts := c.maxAttempts
	if event.EventType == service.OrderEventLineItemAdjusted {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			backoff := c.backoffBase * time.Duration(1<<uint(attempt-2))
			logger.Info("retrying order event",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", attempts),
				zap.Duration("backoff", backoff),
			)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		err := c.handler.HandleOrderEvent(ctx, event)
		if err == nil {
			return nil
		}
		if service.IsBusinessError(err) {
			return err
		}

		lastErr = err
		logger.Warn("failed to handle order event",
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
		)
	}
	return lastErr
}

// deadLetter отправляет сообщение в DLQ; без DLQ сообщение только логируется и коммитится
func (c *OrderEventsConsumer) deadLetter(ctx context.Context, m kafka.Message, cause error, event service.OrderEvent) bool {
	if c.dlq == nil {
		return true
	}
	if err := c.dlq.Publish(ctx, m, cause, event.EventType, event.EventID, event.OrderID); err != nil {
		// не коммитим, если не удалось отправить в DLQ
		return false
	}
	return true
}

// parseOrderEvent разбирает JSON конверт. При ошибке возвращает то, что удалось извлечь (для DLQ).
func parseOrderEvent(value []byte) (service.OrderEvent, error) {
	var msg orderEventMessage
	if err := json.Unmarshal(value, &msg); err != nil {
		return service.OrderEvent{}, fmt.Errorf("unmarshal order event: %w", err)
	}

	event := service.OrderEvent{
		EventID:        msg.EventID,
		EventType:      msg.EventType,
		OrderID:        msg.OrderID,
		SalesChannelID: msg.SalesChannelID,
		LocationID:     msg.LocationID,
		Items:          make([]service.OrderEventItem, 0, len(msg.Items)),
	}
	for _, item := range msg.Items {
		event.Items = append(event.Items, service.OrderEventItem{
			LineItemID: item.LineItemID,
			VariantID:  item.VariantID,
			Quantity:   item.Quantity,
			Delta:      item.Delta,
		})
	}

	if msg.EventID == "" {
		return event, &ParseError{Field: "event_id", Message: "event_id is required"}
	}
	if msg.EventType == "" {
		return event, &ParseError{Field: "event_type", Message: "event_type is required"}
	}
	for i, item := range msg.Items {
		if item.LineItemID == "" {
			return event, &ParseError{Field: fmt.Sprintf("items[%d].line_item_id", i), Message: "line_item_id is required"}
		}
	}

	return event, nil
}

// ParseError представляет ошибку разбора события заказа
type ParseError struct {
	Field   string
	Message string
}

func (e *ParseError) Error() string {
	return e.Message
}

// Close закрывает Kafka reader
func (c *OrderEventsConsumer) Close() error {
	c.logger.Info("closing kafka consumer")
	return c.reader.Close()
}
