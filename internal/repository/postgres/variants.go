package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shestoi/inventory-allocation/internal/repository"
)

// VariantRepository читает варианты и ведёт счётчик inventory_quantity в PostgreSQL
type VariantRepository struct {
	pool *pgxpool.Pool
}

// NewVariantRepository создаёт новый PostgreSQL репозиторий вариантов
func NewVariantRepository(pool *pgxpool.Pool) *VariantRepository {
	return &VariantRepository{pool: pool}
}

// Save добавляет или обновляет вариант
func (r *VariantRepository) Save(ctx context.Context, v repository.Variant) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO product_variants (id, allow_backorder, manage_inventory, inventory_quantity)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET
		   allow_backorder = EXCLUDED.allow_backorder,
		   manage_inventory = EXCLUDED.manage_inventory,
		   inventory_quantity = EXCLUDED.inventory_quantity,
		   updated_at = now()`,
		v.ID, v.AllowBackorder, v.ManageInventory, v.InventoryQuantity)
	return err
}

// Retrieve возвращает вариант или repository.ErrNotFound
func (r *VariantRepository) Retrieve(ctx context.Context, variantID string) (repository.Variant, error) {
	var v repository.Variant
	err := r.pool.QueryRow(ctx,
		`SELECT id, allow_backorder, manage_inventory, inventory_quantity
		 FROM product_variants
		 WHERE id = $1`,
		variantID).Scan(&v.ID, &v.AllowBackorder, &v.ManageInventory, &v.InventoryQuantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.Variant{}, repository.ErrNotFound
		}
		return repository.Variant{}, err
	}
	return v, nil
}

// AdjustInventoryQuantity атомарно прибавляет delta одним UPDATE ... RETURNING
func (r *VariantRepository) AdjustInventoryQuantity(ctx context.Context, variantID string, delta int64) (int64, error) {
	var quantity int64
	err := r.pool.QueryRow(ctx,
		`UPDATE product_variants
		 SET inventory_quantity = inventory_quantity + $2, updated_at = now()
		 WHERE id = $1
		 RETURNING inventory_quantity`,
		variantID, delta).Scan(&quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, repository.ErrNotFound
		}
		return 0, err
	}
	return quantity, nil
}
