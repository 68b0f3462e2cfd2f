package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/shestoi/inventory-allocation/internal/repository"
)

// LocationRepository - справочник локаций и привязок каналов продаж в памяти
type LocationRepository struct {
	mu        sync.RWMutex
	locations []repository.StockLocation
	channels  map[string][]string
}

// NewLocationRepository создаёт справочник с начальным списком локаций
func NewLocationRepository(locations ...repository.StockLocation) *LocationRepository {
	return &LocationRepository{
		locations: slices.Clone(locations),
		channels:  make(map[string][]string),
	}
}

// Save добавляет локацию (повторное сохранение обновляет имя)
func (r *LocationRepository) Save(ctx context.Context, l repository.StockLocation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.locations {
		if r.locations[i].ID == l.ID {
			r.locations[i] = l
			return nil
		}
	}
	r.locations = append(r.locations, l)
	return nil
}

// AssignToChannel привязывает локацию к каналу продаж
func (r *LocationRepository) AssignToChannel(ctx context.Context, salesChannelID, locationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if slices.Contains(r.channels[salesChannelID], locationID) {
		return nil
	}
	r.channels[salesChannelID] = append(r.channels[salesChannelID], locationID)
	return nil
}

// List возвращает локации по фильтру
func (r *LocationRepository) List(ctx context.Context, filter repository.LocationFilter) ([]repository.StockLocation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]repository.StockLocation, 0, len(r.locations))
	for _, l := range r.locations {
		if len(filter.IDs) > 0 && !slices.Contains(filter.IDs, l.ID) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// ListLocationIDs возвращает локации канала в порядке привязки
func (r *LocationRepository) ListLocationIDs(ctx context.Context, salesChannelID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.channels[salesChannelID]), nil
}
