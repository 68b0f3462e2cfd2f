package service

import (
	"context"

	"github.com/shestoi/inventory-allocation/internal/repository"
)

// Mode - режим согласованности учёта остатков.
// Определяется один раз при создании сервиса и не меняется между вызовами.
type Mode int

const (
	// ModeSimple - один счётчик inventory_quantity на варианте, без локаций и резервов
	ModeSimple Mode = iota
	// ModeLedger - резервы по локациям через InventoryLedger и таблицу связей вариант -> позиция
	ModeLedger
)

func (m Mode) String() string {
	switch m {
	case ModeSimple:
		return "simple"
	case ModeLedger:
		return "ledger"
	default:
		return "unknown"
	}
}

// allocator - стратегия режима. Вызывается фасадом InventoryService после
// общих проверок (пустой вариант, количество, backorder/manage_inventory).
type allocator interface {
	confirm(ctx context.Context, variant repository.Variant, quantity int64, lc LocationContext) (bool, error)
	availability(ctx context.Context, variant repository.Variant, lc LocationContext) (Availability, error)
	reserve(ctx context.Context, variantID string, quantity int64, in ReserveInput) error
	adjust(ctx context.Context, in AdjustInput) error
	// release сообщает, было ли что-то снято
	release(ctx context.Context, lineItemID, variantID string, quantity int64) (bool, error)
	validate(ctx context.Context, items []LineItem, locationID string) error
}
