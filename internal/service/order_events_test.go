package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shestoi/inventory-allocation/internal/repository"
)

func TestInventoryService_HandleOrderEvent_Placed(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "loc-1", "loc-2")

	f.variant(t, managed("v-1"))
	f.variant(t, managed("v-2"))
	f.item(t, "i-1", map[string]int64{"loc-1": 10})
	f.item(t, "i-2", map[string]int64{"loc-1": 10})
	f.attach(t, "v-1", "i-1", 1)
	f.attach(t, "v-2", "i-2", 2)

	err := f.svc.HandleOrderEvent(ctx, OrderEvent{
		EventID:    "evt-1",
		EventType:  OrderEventPlaced,
		OrderID:    "order-1",
		LocationID: "loc-1",
		Items: []OrderEventItem{
			{LineItemID: "li-1", VariantID: "v-1", Quantity: 2},
			{LineItemID: "li-2", VariantID: "v-2", Quantity: 3},
		},
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), f.reserved(t, "i-1", "loc-1"))
	require.Equal(t, int64(6), f.reserved(t, "i-2", "loc-1"))

	res, _, err := f.ledger.ListReservations(ctx,
		repository.ReservationFilter{LineItemIDs: []string{"li-1"}}, repository.OrderCreatedAtAsc)
	require.NoError(t, err)
	require.Len(t, res, 1)
	require.Equal(t, "order order-1", res[0].Description)
}

func TestInventoryService_HandleOrderEvent_PlacedPartialFailureReleases(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "loc-1")

	f.variant(t, managed("v-1"))
	f.variant(t, managed("v-2"))
	f.item(t, "i-1", map[string]int64{"loc-1": 10})
	f.item(t, "i-2", map[string]int64{"loc-1": 1})
	f.attach(t, "v-1", "i-1", 1)
	f.attach(t, "v-2", "i-2", 1)

	event := OrderEvent{
		EventID:   "evt-1",
		EventType: OrderEventPlaced,
		OrderID:   "order-1",
		Items: []OrderEventItem{
			{LineItemID: "li-1", VariantID: "v-1", Quantity: 4},
			{LineItemID: "li-2", VariantID: "v-2", Quantity: 5},
		},
	}

	err := f.svc.HandleOrderEvent(ctx, event)
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.True(t, IsBusinessError(err))

	// первая позиция снята, чтобы повторная доставка не задвоила резерв
	require.Equal(t, int64(0), f.reserved(t, "i-1", "loc-1"))
	require.Equal(t, int64(0), f.reserved(t, "i-2", "loc-1"))
}

func TestInventoryService_HandleOrderEvent_AdjustedAndCanceled(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, "loc-1")

	f.variant(t, managed("v-1"))
	f.item(t, "i-1", map[string]int64{"loc-1": 10})
	f.attach(t, "v-1", "i-1", 1)

	require.NoError(t, f.svc.HandleOrderEvent(ctx, OrderEvent{
		EventID:   "evt-1",
		EventType: OrderEventPlaced,
		OrderID:   "order-1",
		Items:     []OrderEventItem{{LineItemID: "li-1", VariantID: "v-1", Quantity: 3}},
	}))

	require.NoError(t, f.svc.HandleOrderEvent(ctx, OrderEvent{
		EventID:   "evt-2",
		EventType: OrderEventLineItemAdjusted,
		OrderID:   "order-1",
		Items:     []OrderEventItem{{LineItemID: "li-1", VariantID: "v-1", Delta: 2}},
	}))
	require.Equal(t, int64(5), f.reserved(t, "i-1", "loc-1"))

	require.NoError(t, f.svc.HandleOrderEvent(ctx, OrderEvent{
		EventID:   "evt-3",
		EventType: OrderEventCanceled,
		OrderID:   "order-1",
		Items:     []OrderEventItem{{LineItemID: "li-1", VariantID: "v-1", Quantity: 5}},
	}))
	require.Equal(t, int64(0), f.reserved(t, "i-1", "loc-1"))

	types := make([]string, 0, len(f.publisher.events))
	for _, e := range f.publisher.events {
		types = append(types, e.EventType)
	}
	require.Equal(t, []string{EventReservationCreated, EventReservationAdjusted, EventReservationReleased}, types)
}

func TestInventoryService_HandleOrderEvent_AdjustedPartialFailureReverts(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		items    []OrderEventItem
		checkErr func(t *testing.T, err error)
	}{
		{
			name: "second item goes below zero",
			items: []OrderEventItem{
				{LineItemID: "li-1", VariantID: "v-1", Delta: 3},
				{LineItemID: "li-2", VariantID: "v-2", Delta: -5},
			},
			checkErr: func(t *testing.T, err error) {
				require.ErrorIs(t, err, ErrInvalidQuantity)
			},
		},
		{
			name: "second item out of stock",
			items: []OrderEventItem{
				{LineItemID: "li-1", VariantID: "v-1", Delta: -1},
				{LineItemID: "li-2", VariantID: "v-2", Delta: 50},
			},
			checkErr: func(t *testing.T, err error) {
				require.ErrorIs(t, err, ErrInsufficientStock)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLedgerFixture(t, "loc-1")
			f.variant(t, managed("v-1"))
			f.variant(t, managed("v-2"))
			f.item(t, "i-1", map[string]int64{"loc-1": 10})
			f.item(t, "i-2", map[string]int64{"loc-1": 10})
			f.attach(t, "v-1", "i-1", 1)
			f.attach(t, "v-2", "i-2", 1)

			require.NoError(t, f.svc.HandleOrderEvent(ctx, OrderEvent{
				EventID:    "evt-1",
				EventType:  OrderEventPlaced,
				OrderID:    "order-1",
				LocationID: "loc-1",
				Items: []OrderEventItem{
					{LineItemID: "li-1", VariantID: "v-1", Quantity: 2},
					{LineItemID: "li-2", VariantID: "v-2", Quantity: 2},
				},
			}))

			err := f.svc.HandleOrderEvent(ctx, OrderEvent{
				EventID:    "evt-2",
				EventType:  OrderEventLineItemAdjusted,
				OrderID:    "order-1",
				LocationID: "loc-1",
				Items:      tt.items,
			})
			require.Error(t, err)
			require.True(t, IsBusinessError(err))
			tt.checkErr(t, err)

			// событие отклонено целиком
			require.Equal(t, int64(2), f.reserved(t, "i-1", "loc-1"))
			require.Equal(t, int64(2), f.reserved(t, "i-2", "loc-1"))
		})
	}
}

func TestInventoryService_HandleOrderEvent_UnknownTypeIgnored(t *testing.T) {
	f := newLedgerFixture(t, "loc-1")

	err := f.svc.HandleOrderEvent(context.Background(), OrderEvent{
		EventID:   "evt-1",
		EventType: "order.shipped",
		Items:     []OrderEventItem{{LineItemID: "li-1", VariantID: "v-1", Quantity: 1}},
	})
	require.NoError(t, err)
	require.Empty(t, f.publisher.events)
}
