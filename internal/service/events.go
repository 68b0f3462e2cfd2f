package service

import "time"

// Типы событий резервов
const (
	EventReservationCreated  = "inventory.reservation.created"
	EventReservationAdjusted = "inventory.reservation.adjusted"
	EventReservationReleased = "inventory.reservation.released"
)

// ReservationEvent - событие изменения резерва (доменная модель, без привязки к Kafka)
type ReservationEvent struct {
	EventType  string
	OccurredAt time.Time
	Mode       Mode
	LineItemID string
	VariantID  string
	LocationID string
	// Quantity - количество в единицах варианта (для adjusted - delta)
	Quantity int64
}

// Типы входящих событий заказа
const (
	OrderEventPlaced           = "order.placed"
	OrderEventLineItemAdjusted = "order.line_item.adjusted"
	OrderEventCanceled         = "order.canceled"
)

// OrderEvent - событие заказа, на которое реагирует сервис
type OrderEvent struct {
	EventID        string
	EventType      string
	OrderID        string
	SalesChannelID string
	LocationID     string
	Items          []OrderEventItem
}

// OrderEventItem - позиция заказа внутри события
type OrderEventItem struct {
	LineItemID string
	VariantID  string
	Quantity   int64
	Delta      int64
}
