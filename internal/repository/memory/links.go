package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shestoi/inventory-allocation/internal/repository"
)

// linkKey - ключ связи: пара (variant, item) уникальна
type linkKey struct {
	variantID string
	itemID    string
}

type linkEntry struct {
	seq  uint64
	link repository.VariantInventoryLink
}

// LinkRepository реализует repository.LinkRepository в памяти.
// Связи лежат в одной таблице по ключу (variant, item), по вариантам и позициям
// построены вторичные индексы.
// Используется для разработки и тестирования.
type LinkRepository struct {
	mu        sync.RWMutex
	seq       uint64
	links     map[linkKey]linkEntry
	byVariant map[string]map[string]struct{}
	byItem    map[string]map[string]struct{}
}

// NewLinkRepository создаёт пустую таблицу связей
func NewLinkRepository() *LinkRepository {
	return &LinkRepository{
		links:     make(map[linkKey]linkEntry),
		byVariant: make(map[string]map[string]struct{}),
		byItem:    make(map[string]map[string]struct{}),
	}
}

// CreateIfAbsent сохраняет связь, если пары ещё нет, иначе возвращает существующую
func (r *LinkRepository) CreateIfAbsent(ctx context.Context, link repository.VariantInventoryLink) (repository.VariantInventoryLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := linkKey{variantID: link.VariantID, itemID: link.InventoryItemID}
	if existing, ok := r.links[key]; ok {
		return existing.link, nil
	}

	r.seq++
	r.links[key] = linkEntry{seq: r.seq, link: link}
	addIndex(r.byVariant, link.VariantID, link.InventoryItemID)
	addIndex(r.byItem, link.InventoryItemID, link.VariantID)
	return link, nil
}

// Get возвращает связь по паре или repository.ErrNotFound
func (r *LinkRepository) Get(ctx context.Context, variantID, inventoryItemID string) (repository.VariantInventoryLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.links[linkKey{variantID: variantID, itemID: inventoryItemID}]
	if !ok {
		return repository.VariantInventoryLink{}, repository.ErrNotFound
	}
	return entry.link, nil
}

// Delete удаляет связь, если она есть
func (r *LinkRepository) Delete(ctx context.Context, variantID, inventoryItemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := linkKey{variantID: variantID, itemID: inventoryItemID}
	if _, ok := r.links[key]; !ok {
		return nil
	}
	delete(r.links, key)
	removeIndex(r.byVariant, variantID, inventoryItemID)
	removeIndex(r.byItem, inventoryItemID, variantID)
	return nil
}

// ListByVariants возвращает связи вариантов в порядке создания
func (r *LinkRepository) ListByVariants(ctx context.Context, variantIDs []string) ([]repository.VariantInventoryLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]linkEntry, 0)
	for _, variantID := range variantIDs {
		for itemID := range r.byVariant[variantID] {
			entries = append(entries, r.links[linkKey{variantID: variantID, itemID: itemID}])
		}
	}
	return sortedLinks(entries), nil
}

// ListByItems возвращает связи позиций в порядке создания
func (r *LinkRepository) ListByItems(ctx context.Context, inventoryItemIDs []string) ([]repository.VariantInventoryLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]linkEntry, 0)
	for _, itemID := range inventoryItemIDs {
		for variantID := range r.byItem[itemID] {
			entries = append(entries, r.links[linkKey{variantID: variantID, itemID: itemID}])
		}
	}
	return sortedLinks(entries), nil
}

// Len возвращает количество связей (для тестов)
func (r *LinkRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.links)
}

func sortedLinks(entries []linkEntry) []repository.VariantInventoryLink {
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	// один и тот же ID мог быть передан дважды
	out := make([]repository.VariantInventoryLink, 0, len(entries))
	var last uint64
	for _, e := range entries {
		if e.seq == last {
			continue
		}
		last = e.seq
		out = append(out, e.link)
	}
	return out
}

func addIndex(idx map[string]map[string]struct{}, key, value string) {
	set, ok := idx[key]
	if !ok {
		set = make(map[string]struct{})
		idx[key] = set
	}
	set[value] = struct{}{}
}

func removeIndex(idx map[string]map[string]struct{}, key, value string) {
	set, ok := idx[key]
	if !ok {
		return
	}
	delete(set, value)
	if len(set) == 0 {
		delete(idx, key)
	}
}
