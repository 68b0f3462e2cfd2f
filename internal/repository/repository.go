package repository

import (
	"context"
	"errors"
	"time"
)

// VariantInventoryLink связывает вариант товара со складской позицией.
// RequiredQuantity - сколько единиц позиции расходуется на одну единицу варианта (всегда >= 1).
// Пара (VariantID, InventoryItemID) уникальна.
type VariantInventoryLink struct {
	ID               string
	VariantID        string
	InventoryItemID  string
	RequiredQuantity int64
	CreatedAt        time.Time
}

// Variant - продаваемая единица каталога (в части, нужной для учёта остатков)
type Variant struct {
	ID                string
	AllowBackorder    bool
	ManageInventory   bool
	InventoryQuantity int64
}

// InventoryItem - складская позиция (SKU)
type InventoryItem struct {
	ID  string
	SKU string
}

// StockLevel - остаток позиции на конкретной локации
type StockLevel struct {
	InventoryItemID  string
	LocationID       string
	StockedQuantity  int64
	ReservedQuantity int64
}

// Available возвращает количество, доступное для новых резервов
func (l StockLevel) Available() int64 {
	return l.StockedQuantity - l.ReservedQuantity
}

// StockLocation - склад/точка хранения
type StockLocation struct {
	ID   string
	Name string
}

// LocationFilter фильтр для выборки локаций. Пустой IDs - все локации.
type LocationFilter struct {
	IDs []string
}

// ReservationTypeOrder - тип резерва, создаваемого под позицию заказа
const ReservationTypeOrder = "order"

// Reservation - резерв количества позиции на локации под позицию заказа (line item)
type Reservation struct {
	ID              string
	LineItemID      string
	InventoryItemID string
	LocationID      string
	Quantity        int64
	Type            string
	Description     string
	CreatedAt       time.Time
}

// ReservationFilter фильтр для выборки резервов. Пустые поля не ограничивают выборку.
type ReservationFilter struct {
	LineItemIDs      []string
	InventoryItemIDs []string
	LocationIDs      []string
}

// ReservationOrder порядок сортировки резервов
type ReservationOrder int

const (
	// OrderCreatedAtAsc - сначала старые
	OrderCreatedAtAsc ReservationOrder = iota
	// OrderCreatedAtDesc - сначала новые
	OrderCreatedAtDesc
)

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=LinkRepository --dir=. --output=./mocks --outpkg=mocks

// LinkRepository хранит связи вариант -> складская позиция.
// Service слой зависит от этого интерфейса, а не от конкретной реализации.
type LinkRepository interface {
	// CreateIfAbsent сохраняет связь, если пары (variant, item) ещё нет.
	// Возвращает сохранённую связь: новую или уже существующую (без изменений).
	CreateIfAbsent(ctx context.Context, link VariantInventoryLink) (VariantInventoryLink, error)

	// Get возвращает связь по паре (variant, item)
	// Возвращает ErrNotFound, если связи нет
	Get(ctx context.Context, variantID, inventoryItemID string) (VariantInventoryLink, error)

	// Delete удаляет связь. Отсутствие связи не является ошибкой.
	Delete(ctx context.Context, variantID, inventoryItemID string) error

	// ListByVariants возвращает связи всех указанных вариантов
	ListByVariants(ctx context.Context, variantIDs []string) ([]VariantInventoryLink, error)

	// ListByItems возвращает связи всех указанных позиций
	ListByItems(ctx context.Context, inventoryItemIDs []string) ([]VariantInventoryLink, error)
}

// ErrNotFound возвращается, когда сущность не найдена в хранилище
var ErrNotFound = errors.New("not found")

// ErrInsufficientStock возвращается хранилищем остатков, когда на локации не хватает доступного количества
var ErrInsufficientStock = errors.New("insufficient stock")
