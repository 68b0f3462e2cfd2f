package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shestoi/inventory-allocation/internal/repository"
)

func newSeededLedger(t *testing.T) *Ledger {
	t.Helper()
	ctx := context.Background()
	l := NewLedger()
	require.NoError(t, l.UpsertItem(ctx, repository.InventoryItem{ID: "i-1", SKU: "SKU-1"}))
	require.NoError(t, l.SetStockedQuantity(ctx, "i-1", "loc-1", 10))
	require.NoError(t, l.SetStockedQuantity(ctx, "i-1", "loc-2", 5))
	return l
}

func TestLedger_AvailableQuantity(t *testing.T) {
	ctx := context.Background()
	l := newSeededLedger(t)

	_, err := l.CreateReservation(ctx, repository.Reservation{LineItemID: "li-1", InventoryItemID: "i-1", LocationID: "loc-1", Quantity: 3})
	require.NoError(t, err)

	tests := []struct {
		name      string
		locations []string
		expected  int64
	}{
		{name: "single location", locations: []string{"loc-1"}, expected: 7},
		{name: "sum across locations", locations: []string{"loc-1", "loc-2"}, expected: 12},
		{name: "unknown location", locations: []string{"loc-x"}, expected: 0},
		{name: "no locations", locations: nil, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := l.AvailableQuantity(ctx, "i-1", tt.locations)
			require.NoError(t, err)
			require.Equal(t, tt.expected, got)
		})
	}

	ok, err := l.ConfirmAvailability(ctx, "i-1", []string{"loc-1", "loc-2"}, 12)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = l.ConfirmAvailability(ctx, "i-1", []string{"loc-1", "loc-2"}, 13)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLedger_CreateReservation(t *testing.T) {
	ctx := context.Background()
	l := newSeededLedger(t)

	r, err := l.CreateReservation(ctx, repository.Reservation{LineItemID: "li-1", InventoryItemID: "i-1", LocationID: "loc-2", Quantity: 5})
	require.NoError(t, err)
	require.NotEmpty(t, r.ID)
	require.False(t, r.CreatedAt.IsZero())

	level, ok := l.StockLevel("i-1", "loc-2")
	require.True(t, ok)
	require.Equal(t, int64(5), level.ReservedQuantity)
	require.Zero(t, level.Available())

	// последняя единица уже занята
	_, err = l.CreateReservation(ctx, repository.Reservation{LineItemID: "li-2", InventoryItemID: "i-1", LocationID: "loc-2", Quantity: 1})
	require.ErrorIs(t, err, repository.ErrInsufficientStock)

	_, err = l.CreateReservation(ctx, repository.Reservation{LineItemID: "li-2", InventoryItemID: "i-missing", LocationID: "loc-1", Quantity: 1})
	require.ErrorIs(t, err, repository.ErrNotFound)

	_, err = l.CreateReservation(ctx, repository.Reservation{LineItemID: "li-2", InventoryItemID: "i-1", LocationID: "loc-1", Quantity: 0})
	require.Error(t, err)
}

func TestLedger_ConcurrentReservationsNeverOversell(t *testing.T) {
	ctx := context.Background()
	l := newSeededLedger(t)

	var (
		wg      sync.WaitGroup
		success atomic.Int64
	)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.CreateReservation(ctx, repository.Reservation{
				LineItemID: "li", InventoryItemID: "i-1", LocationID: "loc-1", Quantity: 1,
			})
			if err == nil {
				success.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int64(10), success.Load())
	level, _ := l.StockLevel("i-1", "loc-1")
	require.Equal(t, int64(10), level.ReservedQuantity)
}

func TestLedger_UpdateAndDeleteReservation(t *testing.T) {
	ctx := context.Background()
	l := newSeededLedger(t)

	r, err := l.CreateReservation(ctx, repository.Reservation{LineItemID: "li-1", InventoryItemID: "i-1", LocationID: "loc-1", Quantity: 4})
	require.NoError(t, err)

	updated, err := l.UpdateReservation(ctx, r.ID, 10)
	require.NoError(t, err)
	require.Equal(t, int64(10), updated.Quantity)

	_, err = l.UpdateReservation(ctx, r.ID, 11)
	require.ErrorIs(t, err, repository.ErrInsufficientStock)

	_, err = l.UpdateReservation(ctx, r.ID, 2)
	require.NoError(t, err)
	level, _ := l.StockLevel("i-1", "loc-1")
	require.Equal(t, int64(2), level.ReservedQuantity)

	_, err = l.UpdateReservation(ctx, "r-missing", 1)
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, l.DeleteReservation(ctx, r.ID))
	level, _ = l.StockLevel("i-1", "loc-1")
	require.Zero(t, level.ReservedQuantity)

	require.ErrorIs(t, l.DeleteReservation(ctx, r.ID), repository.ErrNotFound)
}

func TestLedger_ListAndDeleteByLineItem(t *testing.T) {
	ctx := context.Background()
	l := newSeededLedger(t)

	first, err := l.CreateReservation(ctx, repository.Reservation{LineItemID: "li-1", InventoryItemID: "i-1", LocationID: "loc-1", Quantity: 1})
	require.NoError(t, err)
	second, err := l.CreateReservation(ctx, repository.Reservation{LineItemID: "li-1", InventoryItemID: "i-1", LocationID: "loc-2", Quantity: 2})
	require.NoError(t, err)
	_, err = l.CreateReservation(ctx, repository.Reservation{LineItemID: "li-2", InventoryItemID: "i-1", LocationID: "loc-1", Quantity: 3})
	require.NoError(t, err)

	filter := repository.ReservationFilter{LineItemIDs: []string{"li-1"}}

	asc, count, err := l.ListReservations(ctx, filter, repository.OrderCreatedAtAsc)
	require.NoError(t, err)
	require.Equal(t, 2, count)
	require.Equal(t, []string{first.ID, second.ID}, []string{asc[0].ID, asc[1].ID})

	desc, _, err := l.ListReservations(ctx, filter, repository.OrderCreatedAtDesc)
	require.NoError(t, err)
	require.Equal(t, []string{second.ID, first.ID}, []string{desc[0].ID, desc[1].ID})

	atLoc2, count, err := l.ListReservations(ctx, repository.ReservationFilter{LocationIDs: []string{"loc-2"}}, repository.OrderCreatedAtAsc)
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.Equal(t, second.ID, atLoc2[0].ID)

	require.NoError(t, l.DeleteReservationsByLineItem(ctx, "li-1"))
	_, count, err = l.ListReservations(ctx, filter, repository.OrderCreatedAtAsc)
	require.NoError(t, err)
	require.Zero(t, count)

	level, _ := l.StockLevel("i-1", "loc-1")
	require.Equal(t, int64(3), level.ReservedQuantity)
	level, _ = l.StockLevel("i-1", "loc-2")
	require.Zero(t, level.ReservedQuantity)

	// повторное удаление безопасно
	require.NoError(t, l.DeleteReservationsByLineItem(ctx, "li-1"))
}

func TestLedger_ListStockLevels(t *testing.T) {
	ctx := context.Background()
	l := newSeededLedger(t)
	require.NoError(t, l.UpsertItem(ctx, repository.InventoryItem{ID: "i-2"}))

	levels, err := l.ListStockLevels(ctx, []string{"i-1", "i-2"}, "loc-1")
	require.NoError(t, err)
	require.Len(t, levels, 1)
	require.Equal(t, "i-1", levels[0].InventoryItemID)
	require.Equal(t, int64(10), levels[0].StockedQuantity)

	// SetStockedQuantity не трогает reserved
	_, err = l.CreateReservation(ctx, repository.Reservation{LineItemID: "li-1", InventoryItemID: "i-1", LocationID: "loc-1", Quantity: 4})
	require.NoError(t, err)
	require.NoError(t, l.SetStockedQuantity(ctx, "i-1", "loc-1", 20))
	level, _ := l.StockLevel("i-1", "loc-1")
	require.Equal(t, int64(20), level.StockedQuantity)
	require.Equal(t, int64(4), level.ReservedQuantity)
}
