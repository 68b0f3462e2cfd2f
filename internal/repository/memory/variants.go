package memory

import (
	"context"
	"sync"

	"github.com/shestoi/inventory-allocation/internal/repository"
)

// VariantRepository хранит варианты в памяти.
// Защищён мьютексом для безопасного доступа из разных горутин.
type VariantRepository struct {
	mu       sync.RWMutex
	variants map[string]repository.Variant
}

// NewVariantRepository создаёт репозиторий с начальным набором вариантов (может быть nil)
func NewVariantRepository(initial []repository.Variant) *VariantRepository {
	variants := make(map[string]repository.Variant, len(initial))
	for _, v := range initial {
		variants[v.ID] = v
	}
	return &VariantRepository{variants: variants}
}

// Save добавляет или заменяет вариант
func (r *VariantRepository) Save(ctx context.Context, v repository.Variant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variants[v.ID] = v
	return nil
}

// Retrieve возвращает вариант или repository.ErrNotFound
func (r *VariantRepository) Retrieve(ctx context.Context, variantID string) (repository.Variant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.variants[variantID]
	if !ok {
		return repository.Variant{}, repository.ErrNotFound
	}
	return v, nil
}

// AdjustInventoryQuantity атомарно прибавляет delta к inventory_quantity
func (r *VariantRepository) AdjustInventoryQuantity(ctx context.Context, variantID string, delta int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.variants[variantID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	v.InventoryQuantity += delta
	r.variants[variantID] = v
	return v.InventoryQuantity, nil
}
