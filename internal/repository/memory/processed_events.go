package memory

import (
	"context"
	"sync"
	"time"
)

// ProcessedEventsStore хранит ID обработанных событий в памяти.
// Используется для dev/test окружений, в docker используется Redis.
type ProcessedEventsStore struct {
	mu     sync.Mutex
	events map[string]time.Time // eventID -> expiresAt
	now    func() time.Time
}

// NewProcessedEventsStore создаёт in-memory store
func NewProcessedEventsStore() *ProcessedEventsStore {
	return &ProcessedEventsStore{
		events: make(map[string]time.Time),
		now:    time.Now,
	}
}

// MarkProcessed помечает событие. Возвращает false, если оно уже помечено и ttl не истёк.
func (s *ProcessedEventsStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.cleanupExpiredLocked(now)

	if _, exists := s.events[eventID]; exists {
		return false, nil
	}
	s.events[eventID] = now.Add(ttl)
	return true, nil
}

// Unmark снимает отметку с события
func (s *ProcessedEventsStore) Unmark(ctx context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.events, eventID)
	return nil
}

// cleanupExpiredLocked удаляет протухшие записи (вызывается с уже захваченным lock)
func (s *ProcessedEventsStore) cleanupExpiredLocked(now time.Time) {
	for eventID, expiresAt := range s.events {
		if now.After(expiresAt) {
			delete(s.events, eventID)
		}
	}
}
