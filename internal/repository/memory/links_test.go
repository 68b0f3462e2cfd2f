package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shestoi/inventory-allocation/internal/repository"
)

func link(id, variantID, itemID string, required int64) repository.VariantInventoryLink {
	return repository.VariantInventoryLink{
		ID:               id,
		VariantID:        variantID,
		InventoryItemID:  itemID,
		RequiredQuantity: required,
	}
}

func TestLinkRepository_CreateIfAbsent(t *testing.T) {
	ctx := context.Background()
	repo := NewLinkRepository()

	created, err := repo.CreateIfAbsent(ctx, link("l-1", "v-1", "i-1", 2))
	require.NoError(t, err)
	require.Equal(t, "l-1", created.ID)

	// повторная пара возвращает существующую связь без изменений
	existing, err := repo.CreateIfAbsent(ctx, link("l-2", "v-1", "i-1", 7))
	require.NoError(t, err)
	require.Equal(t, "l-1", existing.ID)
	require.Equal(t, int64(2), existing.RequiredQuantity)
	require.Equal(t, 1, repo.Len())
}

func TestLinkRepository_GetDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewLinkRepository()

	_, err := repo.CreateIfAbsent(ctx, link("l-1", "v-1", "i-1", 1))
	require.NoError(t, err)

	got, err := repo.Get(ctx, "v-1", "i-1")
	require.NoError(t, err)
	require.Equal(t, "l-1", got.ID)

	require.NoError(t, repo.Delete(ctx, "v-1", "i-1"))
	_, err = repo.Get(ctx, "v-1", "i-1")
	require.ErrorIs(t, err, repository.ErrNotFound)

	// удаление отсутствующей связи не ошибка
	require.NoError(t, repo.Delete(ctx, "v-1", "i-1"))

	byVariant, err := repo.ListByVariants(ctx, []string{"v-1"})
	require.NoError(t, err)
	require.Empty(t, byVariant)

	byItem, err := repo.ListByItems(ctx, []string{"i-1"})
	require.NoError(t, err)
	require.Empty(t, byItem)
}

func TestLinkRepository_ListPreservesCreationOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewLinkRepository()

	for _, l := range []repository.VariantInventoryLink{
		link("l-1", "v-1", "i-3", 1),
		link("l-2", "v-2", "i-1", 1),
		link("l-3", "v-1", "i-1", 2),
		link("l-4", "v-1", "i-2", 1),
	} {
		_, err := repo.CreateIfAbsent(ctx, l)
		require.NoError(t, err)
	}

	byVariant, err := repo.ListByVariants(ctx, []string{"v-1"})
	require.NoError(t, err)
	require.Equal(t, []string{"l-1", "l-3", "l-4"}, ids(byVariant))

	// повтор ID в запросе не дублирует связи
	byVariants, err := repo.ListByVariants(ctx, []string{"v-2", "v-1", "v-2"})
	require.NoError(t, err)
	require.Equal(t, []string{"l-1", "l-2", "l-3", "l-4"}, ids(byVariants))

	byItem, err := repo.ListByItems(ctx, []string{"i-1"})
	require.NoError(t, err)
	require.Equal(t, []string{"l-2", "l-3"}, ids(byItem))
}

func TestLinkRepository_ConcurrentCreateKeepsOneLink(t *testing.T) {
	ctx := context.Background()
	repo := NewLinkRepository()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.CreateIfAbsent(ctx, link("l", "v-1", "i-1", 1))
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Equal(t, 1, repo.Len())
}

func ids(links []repository.VariantInventoryLink) []string {
	out := make([]string, 0, len(links))
	for _, l := range links {
		out = append(out, l.ID)
	}
	return out
}
