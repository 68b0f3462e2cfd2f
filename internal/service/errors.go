package service

import (
	"errors"
	"fmt"

	"github.com/shestoi/inventory-allocation/internal/repository"
)

var (
	// ErrNotFound - вариант, позиция или связь не найдены
	ErrNotFound = repository.ErrNotFound
	// ErrInsufficientStock - на локации не хватает остатка
	ErrInsufficientStock = repository.ErrInsufficientStock

	// ErrInvalidQuantity - недопустимое количество (отрицательное, нулевое там, где нужно > 0, или уход резерва в минус)
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrNoLocationForChannel - у канала продаж нет ни одной локации
	ErrNoLocationForChannel = errors.New("sales channel has no stock locations")
	// ErrLocationRequired - не удалось однозначно выбрать локацию для резерва
	ErrLocationRequired = errors.New("stock location is required")
	// ErrLedgerNotConfigured - операция требует учёта по локациям, а сервис работает в простом режиме
	ErrLedgerNotConfigured = errors.New("inventory ledger is not configured")
)

// InsufficientStockError описывает, какая позиция заказа не проходит проверку остатка на локации
type InsufficientStockError struct {
	LineItemID      string
	InventoryItemID string
	LocationID      string
	Required        int64
	Stocked         int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for line item %s: item %s at location %s requires %d, stocked %d",
		e.LineItemID, e.InventoryItemID, e.LocationID, e.Required, e.Stocked)
}

// Is позволяет сравнивать через errors.Is(err, ErrInsufficientStock)
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// IsBusinessError сообщает, что операция отклонена по бизнес-правилам.
// Повтор такой операции с теми же данными даст тот же результат.
func IsBusinessError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrNoLocationForChannel) ||
		errors.Is(err, ErrLocationRequired) ||
		errors.Is(err, ErrLedgerNotConfigured)
}
