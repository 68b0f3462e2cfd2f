package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ProcessedEventsStore хранит ID обработанных событий заказа в Redis (SET NX + TTL)
type ProcessedEventsStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewProcessedEventsStore создаёт новый Redis store обработанных событий
func NewProcessedEventsStore(client *redis.Client, logger *zap.Logger) *ProcessedEventsStore {
	return &ProcessedEventsStore{
		client: client,
		logger: logger,
	}
}

func processedEventKey(eventID string) string {
	return fmt.Sprintf("inventory:processed_event:%s", eventID)
}

// MarkProcessed атомарно помечает событие. false - событие уже обработано.
func (s *ProcessedEventsStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	key := processedEventKey(eventID)

	ok, err := s.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		s.logger.Error("failed to mark event as processed in redis",
			zap.Error(err),
			zap.String("event_id", eventID),
		)
		return false, fmt.Errorf("failed to mark event processed: %w", err)
	}

	if !ok {
		s.logger.Debug("event already processed",
			zap.String("event_id", eventID),
		)
	}
	return ok, nil
}

// Unmark снимает отметку, чтобы событие можно было обработать повторно
func (s *ProcessedEventsStore) Unmark(ctx context.Context, eventID string) error {
	key := processedEventKey(eventID)

	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.logger.Error("failed to unmark event in redis",
			zap.Error(err),
			zap.String("event_id", eventID),
		)
		return fmt.Errorf("failed to unmark event: %w", err)
	}
	return nil
}

// Ping проверяет соединение с Redis
func (s *ProcessedEventsStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
