package service

import (
	"context"
	"time"

	"github.com/shestoi/inventory-allocation/internal/repository"
)

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=VariantStore --dir=. --output=./mocks --outpkg=mocks

// VariantStore предоставляет доступ к вариантам каталога
type VariantStore interface {
	// Retrieve возвращает вариант по ID
	// Возвращает repository.ErrNotFound, если варианта нет
	Retrieve(ctx context.Context, variantID string) (repository.Variant, error)

	// AdjustInventoryQuantity атомарно прибавляет delta к счётчику inventory_quantity
	// и возвращает новое значение
	AdjustInventoryQuantity(ctx context.Context, variantID string, delta int64) (int64, error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=SalesChannelLocations --dir=. --output=./mocks --outpkg=mocks

// SalesChannelLocations отвечает, с каких локаций торгует канал продаж
type SalesChannelLocations interface {
	// ListLocationIDs возвращает ID локаций канала (порядок стабилен)
	ListLocationIDs(ctx context.Context, salesChannelID string) ([]string, error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=StockLocationDirectory --dir=. --output=./mocks --outpkg=mocks

// StockLocationDirectory - справочник складских локаций
type StockLocationDirectory interface {
	List(ctx context.Context, filter repository.LocationFilter) ([]repository.StockLocation, error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=InventoryLedger --dir=. --output=./mocks --outpkg=mocks

// InventoryLedger - учёт остатков и резервов по локациям.
// Единственный арбитр "последней единицы": CreateReservation и UpdateReservation
// атомарно проверяют доступность на уровне (позиция, локация).
type InventoryLedger interface {
	// RetrieveItem возвращает складскую позицию
	// Возвращает repository.ErrNotFound, если позиции нет
	RetrieveItem(ctx context.Context, itemID string) (repository.InventoryItem, error)

	// ConfirmAvailability проверяет, что суммарно по локациям доступно не меньше quantity
	ConfirmAvailability(ctx context.Context, itemID string, locationIDs []string, quantity int64) (bool, error)

	// AvailableQuantity возвращает суммарное доступное количество по локациям
	AvailableQuantity(ctx context.Context, itemID string, locationIDs []string) (int64, error)

	// CreateReservation создаёт резерв и увеличивает reserved на локации.
	// Возвращает repository.ErrInsufficientStock, если доступного количества не хватает.
	CreateReservation(ctx context.Context, r repository.Reservation) (repository.Reservation, error)

	// ListReservations возвращает резервы по фильтру и их общее количество
	ListReservations(ctx context.Context, filter repository.ReservationFilter, order repository.ReservationOrder) ([]repository.Reservation, int, error)

	// UpdateReservation меняет количество резерва
	UpdateReservation(ctx context.Context, reservationID string, quantity int64) (repository.Reservation, error)

	// DeleteReservation удаляет резерв и возвращает количество в доступное
	DeleteReservation(ctx context.Context, reservationID string) error

	// DeleteReservationsByLineItem удаляет все резервы позиции заказа
	DeleteReservationsByLineItem(ctx context.Context, lineItemID string) error

	// ListStockLevels возвращает остатки указанных позиций на локации
	ListStockLevels(ctx context.Context, itemIDs []string, locationID string) ([]repository.StockLevel, error)
}

// ReservationEventPublisher публикует события жизненного цикла резервов
type ReservationEventPublisher interface {
	PublishReservationEvent(ctx context.Context, event ReservationEvent) error
}

// ProcessedEventsStore хранит информацию об обработанных событиях для обеспечения idempotency
//
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=ProcessedEventsStore --dir=. --output=./mocks --outpkg=mocks
type ProcessedEventsStore interface {
	// MarkProcessed атомарно помечает eventID как обработанный.
	// Возвращает false, если событие уже было помечено и ttl ещё не истёк.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// Unmark снимает отметку (используется, если обработка не удалась и событие нужно повторить)
	Unmark(ctx context.Context, eventID string) error
}
