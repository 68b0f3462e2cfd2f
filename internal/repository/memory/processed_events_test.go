package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProcessedEventsStore_MarkProcessed(t *testing.T) {
	ctx := context.Background()
	store := NewProcessedEventsStore()

	// Первая отметка проходит
	first, err := store.MarkProcessed(ctx, "evt-1", time.Minute)
	assert.NoError(t, err)
	assert.True(t, first)

	// Повторная - дубль
	first, err = store.MarkProcessed(ctx, "evt-1", time.Minute)
	assert.NoError(t, err)
	assert.False(t, first)

	// Другое событие независимо
	first, err = store.MarkProcessed(ctx, "evt-2", time.Minute)
	assert.NoError(t, err)
	assert.True(t, first)
}

func TestProcessedEventsStore_TTLExpiration(t *testing.T) {
	ctx := context.Background()
	store := NewProcessedEventsStore()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	first, err := store.MarkProcessed(ctx, "evt-1", 10*time.Second)
	assert.NoError(t, err)
	assert.True(t, first)

	now = now.Add(5 * time.Second)
	first, err = store.MarkProcessed(ctx, "evt-1", 10*time.Second)
	assert.NoError(t, err)
	assert.False(t, first, "ttl has not expired yet")

	// ttl истёк: событие можно обработать снова
	now = now.Add(6 * time.Second)
	first, err = store.MarkProcessed(ctx, "evt-1", 10*time.Second)
	assert.NoError(t, err)
	assert.True(t, first)
}

func TestProcessedEventsStore_Unmark(t *testing.T) {
	ctx := context.Background()
	store := NewProcessedEventsStore()

	_, err := store.MarkProcessed(ctx, "evt-1", time.Minute)
	assert.NoError(t, err)

	assert.NoError(t, store.Unmark(ctx, "evt-1"))

	first, err := store.MarkProcessed(ctx, "evt-1", time.Minute)
	assert.NoError(t, err)
	assert.True(t, first)

	// снятие несуществующей отметки не ошибка
	assert.NoError(t, store.Unmark(ctx, "evt-unknown"))
}
