package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shestoi/inventory-allocation/internal/repository"
)

// LocationRepository - справочник складских локаций и привязок каналов продаж в PostgreSQL
type LocationRepository struct {
	pool *pgxpool.Pool
}

// NewLocationRepository создаёт новый PostgreSQL репозиторий локаций
func NewLocationRepository(pool *pgxpool.Pool) *LocationRepository {
	return &LocationRepository{pool: pool}
}

// Save добавляет или переименовывает локацию
func (r *LocationRepository) Save(ctx context.Context, l repository.StockLocation) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO stock_locations (id, name)
		 VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`,
		l.ID, l.Name)
	return err
}

// AssignToChannel привязывает локацию к каналу продаж (повторная привязка игнорируется)
func (r *LocationRepository) AssignToChannel(ctx context.Context, salesChannelID, locationID string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sales_channel_stock_locations (sales_channel_id, stock_location_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		salesChannelID, locationID)
	return err
}

// List возвращает локации; пустой filter.IDs - все локации
func (r *LocationRepository) List(ctx context.Context, filter repository.LocationFilter) ([]repository.StockLocation, error) {
	query := `SELECT id, name FROM stock_locations ORDER BY created_at, id`
	args := []any{}
	if len(filter.IDs) > 0 {
		query = `SELECT id, name FROM stock_locations WHERE id = ANY($1) ORDER BY created_at, id`
		args = append(args, filter.IDs)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations := make([]repository.StockLocation, 0)
	for rows.Next() {
		var l repository.StockLocation
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return locations, nil
}

// ListLocationIDs возвращает локации канала в порядке привязки
func (r *LocationRepository) ListLocationIDs(ctx context.Context, salesChannelID string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT stock_location_id
		 FROM sales_channel_stock_locations
		 WHERE sales_channel_id = $1
		 ORDER BY created_at, stock_location_id`,
		salesChannelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
