package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shestoi/inventory-allocation/internal/repository"
)

// LinkRepository реализует repository.LinkRepository используя PostgreSQL.
// Уникальность пары (variant_id, inventory_item_id) обеспечивает constraint в БД.
type LinkRepository struct {
	pool *pgxpool.Pool
}

// NewLinkRepository создаёт новый PostgreSQL репозиторий связей
func NewLinkRepository(pool *pgxpool.Pool) *LinkRepository {
	return &LinkRepository{pool: pool}
}

const linkColumns = `id, variant_id, inventory_item_id, required_quantity, created_at`

// CreateIfAbsent вставляет связь; при конфликте по паре возвращает существующую строку
func (r *LinkRepository) CreateIfAbsent(ctx context.Context, link repository.VariantInventoryLink) (repository.VariantInventoryLink, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO variant_inventory_items (id, variant_id, inventory_item_id, required_quantity, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (variant_id, inventory_item_id) DO NOTHING`,
		link.ID, link.VariantID, link.InventoryItemID, link.RequiredQuantity, link.CreatedAt)
	if err != nil {
		return repository.VariantInventoryLink{}, err
	}

	return r.Get(ctx, link.VariantID, link.InventoryItemID)
}

// Get возвращает связь по паре или repository.ErrNotFound
func (r *LinkRepository) Get(ctx context.Context, variantID, inventoryItemID string) (repository.VariantInventoryLink, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+linkColumns+`
		 FROM variant_inventory_items
		 WHERE variant_id = $1 AND inventory_item_id = $2`,
		variantID, inventoryItemID)

	link, err := scanLink(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.VariantInventoryLink{}, repository.ErrNotFound
		}
		return repository.VariantInventoryLink{}, err
	}
	return link, nil
}

// Delete удаляет связь; отсутствие строки не является ошибкой
func (r *LinkRepository) Delete(ctx context.Context, variantID, inventoryItemID string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM variant_inventory_items WHERE variant_id = $1 AND inventory_item_id = $2`,
		variantID, inventoryItemID)
	return err
}

// ListByVariants возвращает связи вариантов одним запросом
func (r *LinkRepository) ListByVariants(ctx context.Context, variantIDs []string) ([]repository.VariantInventoryLink, error) {
	return r.list(ctx,
		`SELECT `+linkColumns+`
		 FROM variant_inventory_items
		 WHERE variant_id = ANY($1)
		 ORDER BY created_at, id`,
		variantIDs)
}

// ListByItems возвращает связи позиций одним запросом
func (r *LinkRepository) ListByItems(ctx context.Context, inventoryItemIDs []string) ([]repository.VariantInventoryLink, error) {
	return r.list(ctx,
		`SELECT `+linkColumns+`
		 FROM variant_inventory_items
		 WHERE inventory_item_id = ANY($1)
		 ORDER BY created_at, id`,
		inventoryItemIDs)
}

func (r *LinkRepository) list(ctx context.Context, query string, ids []string) ([]repository.VariantInventoryLink, error) {
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make([]repository.VariantInventoryLink, 0)
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return links, nil
}

func scanLink(row pgx.Row) (repository.VariantInventoryLink, error) {
	var link repository.VariantInventoryLink
	err := row.Scan(&link.ID, &link.VariantID, &link.InventoryItemID, &link.RequiredQuantity, &link.CreatedAt)
	return link, err
}
