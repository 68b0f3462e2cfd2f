package service

import (
	"context"
	"fmt"

	"github.com/shestoi/inventory-allocation/internal/repository"
)

// simpleAllocator ведёт один счётчик inventory_quantity на варианте.
// Счётчик меняется только атомарным инкрементом в VariantStore.
type simpleAllocator struct {
	variants VariantStore
}

func (a *simpleAllocator) confirm(_ context.Context, variant repository.Variant, quantity int64, _ LocationContext) (bool, error) {
	return variant.InventoryQuantity >= quantity, nil
}

func (a *simpleAllocator) availability(_ context.Context, variant repository.Variant, _ LocationContext) (Availability, error) {
	return Availability{Quantity: max(variant.InventoryQuantity, 0)}, nil
}

func (a *simpleAllocator) reserve(ctx context.Context, variantID string, quantity int64, _ ReserveInput) error {
	if _, err := a.variants.AdjustInventoryQuantity(ctx, variantID, -quantity); err != nil {
		return fmt.Errorf("decrement inventory of variant %s: %w", variantID, err)
	}
	return nil
}

func (a *simpleAllocator) adjust(ctx context.Context, in AdjustInput) error {
	variant, err := a.variants.Retrieve(ctx, in.VariantID)
	if err != nil {
		return fmt.Errorf("retrieve variant %s: %w", in.VariantID, err)
	}
	if !variant.ManageInventory {
		return nil
	}

	// рост резерва уменьшает свободный остаток
	if _, err := a.variants.AdjustInventoryQuantity(ctx, in.VariantID, -in.Delta); err != nil {
		return fmt.Errorf("adjust inventory of variant %s: %w", in.VariantID, err)
	}
	return nil
}

func (a *simpleAllocator) release(ctx context.Context, _ string, variantID string, quantity int64) (bool, error) {
	if variantID == "" || quantity == 0 {
		return false, nil
	}

	variant, err := a.variants.Retrieve(ctx, variantID)
	if err != nil {
		return false, fmt.Errorf("retrieve variant %s: %w", variantID, err)
	}
	if !variant.ManageInventory {
		return false, nil
	}

	if _, err := a.variants.AdjustInventoryQuantity(ctx, variantID, quantity); err != nil {
		return false, fmt.Errorf("increment inventory of variant %s: %w", variantID, err)
	}
	return true, nil
}

// validate: в простом режиме нет локаций, проверять нечего
func (a *simpleAllocator) validate(context.Context, []LineItem, string) error {
	return nil
}
