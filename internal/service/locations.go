package service

import (
	"context"
	"fmt"

	"github.com/shestoi/inventory-allocation/internal/repository"
)

// LocationContext - откуда брать остатки: явная локация, канал продаж или (если ничего не задано) все локации
type LocationContext struct {
	LocationID     string
	SalesChannelID string
}

// locationResolver превращает LocationContext в набор ID локаций
type locationResolver struct {
	channels  SalesChannelLocations
	directory StockLocationDirectory
}

// resolve возвращает локации для проверки доступности.
// Явная локация важнее канала, канал важнее "все локации".
func (r locationResolver) resolve(ctx context.Context, lc LocationContext) ([]string, error) {
	if lc.LocationID != "" {
		return []string{lc.LocationID}, nil
	}

	if lc.SalesChannelID != "" {
		ids, err := r.channels.ListLocationIDs(ctx, lc.SalesChannelID)
		if err != nil {
			return nil, fmt.Errorf("list locations of sales channel %s: %w", lc.SalesChannelID, err)
		}
		if len(ids) == 0 {
			return nil, fmt.Errorf("sales channel %s: %w", lc.SalesChannelID, ErrNoLocationForChannel)
		}
		return ids, nil
	}

	locations, err := r.directory.List(ctx, repository.LocationFilter{})
	if err != nil {
		return nil, fmt.Errorf("list stock locations: %w", err)
	}
	ids := make([]string, 0, len(locations))
	for _, l := range locations {
		ids = append(ids, l.ID)
	}
	return ids, nil
}

// resolveOne выбирает единственную локацию для резерва:
// явная локация, иначе первая локация канала, иначе единственная известная локация.
func (r locationResolver) resolveOne(ctx context.Context, lc LocationContext) (string, error) {
	if lc.LocationID != "" || lc.SalesChannelID != "" {
		ids, err := r.resolve(ctx, lc)
		if err != nil {
			return "", err
		}
		return ids[0], nil
	}

	locations, err := r.directory.List(ctx, repository.LocationFilter{})
	if err != nil {
		return "", fmt.Errorf("list stock locations: %w", err)
	}
	if len(locations) != 1 {
		return "", fmt.Errorf("%d stock locations known: %w", len(locations), ErrLocationRequired)
	}
	return locations[0].ID, nil
}
