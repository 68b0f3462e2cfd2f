package kafka

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// DLQMessage - сообщение о событии заказа, которое inventory не смог обработать
type DLQMessage struct {
	OriginalTopic     string `json:"original_topic"`
	OriginalPartition int    `json:"original_partition"`
	OriginalOffset    int64  `json:"original_offset"`
	OriginalKey       string `json:"original_key"`   // base64
	OriginalValue     string `json:"original_value"` // base64
	ErrorMessage      string `json:"error_message"`
	FailedAt          string `json:"failed_at"` // RFC3339
	EventType         string `json:"event_type,omitempty"`
	EventID           string `json:"event_id,omitempty"`
	OrderID           string `json:"order_id,omitempty"`
}

// DLQPublisher публикует необработанные события заказа в Dead Letter Queue
type DLQPublisher struct {
	logger *zap.Logger
	writer messageWriter
	topic  string
}

// NewDLQPublisher создаёт новый publisher для DLQ
func NewDLQPublisher(logger *zap.Logger, brokers []string, topic string) *DLQPublisher {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}

	return &DLQPublisher{
		logger: logger,
		writer: writer,
		topic:  topic,
	}
}

// Publish отправляет исходное сообщение с причиной ошибки в DLQ
func (p *DLQPublisher) Publish(ctx context.Context, msg kafka.Message, cause error, eventType, eventID, orderID string) error {
	errorMsg := "unknown error"
	if cause != nil {
		errorMsg = cause.Error()
	}

	dlqMsg := DLQMessage{
		OriginalTopic:     msg.Topic,
		OriginalPartition: msg.Partition,
		OriginalOffset:    msg.Offset,
		OriginalKey:       base64.StdEncoding.EncodeToString(msg.Key),
		OriginalValue:     base64.StdEncoding.EncodeToString(msg.Value),
		ErrorMessage:      errorMsg,
		FailedAt:          time.Now().UTC().Format(time.RFC3339),
		EventType:         eventType,
		EventID:           eventID,
		OrderID:           orderID,
	}

	valueBytes, err := json.Marshal(dlqMsg)
	if err != nil {
		return err
	}

	// ключ DLQ: order_id если есть, иначе исходный ключ
	key := msg.Key
	if orderID != "" {
		key = []byte(orderID)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: key, Value: valueBytes}); err != nil {
		p.logger.Error("failed to publish message to DLQ",
			zap.Error(err),
			zap.String("dlq_topic", p.topic),
			zap.String("original_topic", msg.Topic),
			zap.Int("original_partition", msg.Partition),
			zap.Int64("original_offset", msg.Offset),
		)
		return err
	}

	p.logger.Warn("message sent to DLQ",
		zap.String("dlq_topic", p.topic),
		zap.String("original_topic", msg.Topic),
		zap.Int64("original_offset", msg.Offset),
		zap.String("error", errorMsg),
	)
	return nil
}

// Close закрывает Kafka writer
func (p *DLQPublisher) Close() error {
	return p.writer.Close()
}
