package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shestoi/inventory-allocation/internal/repository"
)

type levelKey struct {
	itemID     string
	locationID string
}

type reservationEntry struct {
	seq uint64
	r   repository.Reservation
}

// Ledger - учёт позиций, остатков по локациям и резервов в памяти.
// Все изменения остатков выполняются под одним мьютексом, поэтому проверка
// доступности и увеличение reserved атомарны.
type Ledger struct {
	mu           sync.RWMutex
	seq          uint64
	items        map[string]repository.InventoryItem
	levels       map[levelKey]repository.StockLevel
	reservations map[string]reservationEntry
}

// NewLedger создаёт пустой ledger
func NewLedger() *Ledger {
	return &Ledger{
		items:        make(map[string]repository.InventoryItem),
		levels:       make(map[levelKey]repository.StockLevel),
		reservations: make(map[string]reservationEntry),
	}
}

// UpsertItem добавляет или заменяет складскую позицию
func (l *Ledger) UpsertItem(ctx context.Context, item repository.InventoryItem) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items[item.ID] = item
	return nil
}

// SetStockedQuantity задаёт физический остаток позиции на локации. Reserved не меняется.
func (l *Ledger) SetStockedQuantity(ctx context.Context, itemID, locationID string, stocked int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := levelKey{itemID: itemID, locationID: locationID}
	level := l.levels[key]
	level.InventoryItemID = itemID
	level.LocationID = locationID
	level.StockedQuantity = stocked
	l.levels[key] = level
	return nil
}

// StockLevel возвращает остаток позиции на локации
func (l *Ledger) StockLevel(itemID, locationID string) (repository.StockLevel, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	level, ok := l.levels[levelKey{itemID: itemID, locationID: locationID}]
	return level, ok
}

// RetrieveItem возвращает позицию или repository.ErrNotFound
func (l *Ledger) RetrieveItem(ctx context.Context, itemID string) (repository.InventoryItem, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	item, ok := l.items[itemID]
	if !ok {
		return repository.InventoryItem{}, repository.ErrNotFound
	}
	return item, nil
}

// ConfirmAvailability проверяет суммарную доступность по локациям
func (l *Ledger) ConfirmAvailability(ctx context.Context, itemID string, locationIDs []string, quantity int64) (bool, error) {
	available, err := l.AvailableQuantity(ctx, itemID, locationIDs)
	if err != nil {
		return false, err
	}
	return available >= quantity, nil
}

// AvailableQuantity возвращает сумму stocked - reserved по локациям
func (l *Ledger) AvailableQuantity(ctx context.Context, itemID string, locationIDs []string) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var total int64
	for _, locationID := range locationIDs {
		if level, ok := l.levels[levelKey{itemID: itemID, locationID: locationID}]; ok {
			total += level.Available()
		}
	}
	return total, nil
}

// CreateReservation резервирует количество на локации, если его хватает
func (l *Ledger) CreateReservation(ctx context.Context, r repository.Reservation) (repository.Reservation, error) {
	if r.Quantity <= 0 {
		return repository.Reservation{}, fmt.Errorf("reservation quantity must be positive, got %d", r.Quantity)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.items[r.InventoryItemID]; !ok {
		return repository.Reservation{}, repository.ErrNotFound
	}

	key := levelKey{itemID: r.InventoryItemID, locationID: r.LocationID}
	level, ok := l.levels[key]
	if !ok || level.Available() < r.Quantity {
		return repository.Reservation{}, repository.ErrInsufficientStock
	}
	level.ReservedQuantity += r.Quantity
	l.levels[key] = level

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	l.seq++
	l.reservations[r.ID] = reservationEntry{seq: l.seq, r: r}
	return r, nil
}

// ListReservations возвращает резервы по фильтру в заданном порядке
func (l *Ledger) ListReservations(ctx context.Context, filter repository.ReservationFilter, order repository.ReservationOrder) ([]repository.Reservation, int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := make([]reservationEntry, 0)
	for _, e := range l.reservations {
		if matchReservation(e.r, filter) {
			entries = append(entries, e)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if order == repository.OrderCreatedAtDesc {
			return entries[i].seq > entries[j].seq
		}
		return entries[i].seq < entries[j].seq
	})

	out := make([]repository.Reservation, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.r)
	}
	return out, len(out), nil
}

// UpdateReservation меняет количество резерва; рост проверяется по доступному остатку
func (l *Ledger) UpdateReservation(ctx context.Context, reservationID string, quantity int64) (repository.Reservation, error) {
	if quantity <= 0 {
		return repository.Reservation{}, fmt.Errorf("reservation quantity must be positive, got %d", quantity)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.reservations[reservationID]
	if !ok {
		return repository.Reservation{}, repository.ErrNotFound
	}

	key := levelKey{itemID: entry.r.InventoryItemID, locationID: entry.r.LocationID}
	level := l.levels[key]
	diff := quantity - entry.r.Quantity
	if diff > 0 && level.Available() < diff {
		return repository.Reservation{}, repository.ErrInsufficientStock
	}
	level.ReservedQuantity += diff
	l.levels[key] = level

	entry.r.Quantity = quantity
	l.reservations[reservationID] = entry
	return entry.r, nil
}

// DeleteReservation удаляет резерв и освобождает количество
func (l *Ledger) DeleteReservation(ctx context.Context, reservationID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.reservations[reservationID]; !ok {
		return repository.ErrNotFound
	}
	l.deleteLocked(reservationID)
	return nil
}

// DeleteReservationsByLineItem удаляет все резервы позиции заказа
func (l *Ledger) DeleteReservationsByLineItem(ctx context.Context, lineItemID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for id, e := range l.reservations {
		if e.r.LineItemID == lineItemID {
			l.deleteLocked(id)
		}
	}
	return nil
}

// ListStockLevels возвращает остатки позиций на локации (отсутствующие уровни пропускаются)
func (l *Ledger) ListStockLevels(ctx context.Context, itemIDs []string, locationID string) ([]repository.StockLevel, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]repository.StockLevel, 0, len(itemIDs))
	for _, itemID := range itemIDs {
		if level, ok := l.levels[levelKey{itemID: itemID, locationID: locationID}]; ok {
			out = append(out, level)
		}
	}
	return out, nil
}

// deleteLocked вызывается только под захваченным мьютексом
func (l *Ledger) deleteLocked(reservationID string) {
	entry := l.reservations[reservationID]
	key := levelKey{itemID: entry.r.InventoryItemID, locationID: entry.r.LocationID}
	if level, ok := l.levels[key]; ok {
		level.ReservedQuantity -= entry.r.Quantity
		l.levels[key] = level
	}
	delete(l.reservations, reservationID)
}

func matchReservation(r repository.Reservation, f repository.ReservationFilter) bool {
	if len(f.LineItemIDs) > 0 && !slices.Contains(f.LineItemIDs, r.LineItemID) {
		return false
	}
	if len(f.InventoryItemIDs) > 0 && !slices.Contains(f.InventoryItemIDs, r.InventoryItemID) {
		return false
	}
	if len(f.LocationIDs) > 0 && !slices.Contains(f.LocationIDs, r.LocationID) {
		return false
	}
	return true
}
