package service

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shestoi/inventory-allocation/internal/repository"
	platformobservability "github.com/shestoi/inventory-allocation/platform/observability"
)

// ledgerAllocator раскладывает вариант на складские позиции по таблице связей
// и работает с резервами через InventoryLedger.
type ledgerAllocator struct {
	logger    *zap.Logger
	links     repository.LinkRepository
	ledger    InventoryLedger
	locations locationResolver
}

func (a *ledgerAllocator) variantLinks(ctx context.Context, variantID string) ([]repository.VariantInventoryLink, error) {
	links, err := a.links.ListByVariants(ctx, []string{variantID})
	if err != nil {
		return nil, fmt.Errorf("list links of variant %s: %w", variantID, err)
	}
	return links, nil
}

// confirm: каждая позиция должна покрывать quantity * required_quantity на выбранных локациях
func (a *ledgerAllocator) confirm(ctx context.Context, variant repository.Variant, quantity int64, lc LocationContext) (bool, error) {
	links, err := a.variantLinks(ctx, variant.ID)
	if err != nil {
		return false, err
	}
	if len(links) == 0 {
		return true, nil
	}

	locationIDs, err := a.locations.resolve(ctx, lc)
	if err != nil {
		return false, err
	}

	needs := make([]int64, len(links))
	for i, link := range links {
		if needs[i], err = itemQuantity(quantity, link); err != nil {
			return false, err
		}
	}

	results := make([]bool, len(links))
	g, gctx := errgroup.WithContext(ctx)
	for i, link := range links {
		g.Go(func() error {
			need := needs[i]
			ok, err := a.ledger.ConfirmAvailability(gctx, link.InventoryItemID, locationIDs, need)
			if err != nil {
				return fmt.Errorf("confirm %d of item %s: %w", need, link.InventoryItemID, err)
			}
			results[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}

	for _, ok := range results {
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// availability: минимум по позициям floor(available / required_quantity)
func (a *ledgerAllocator) availability(ctx context.Context, variant repository.Variant, lc LocationContext) (Availability, error) {
	links, err := a.variantLinks(ctx, variant.ID)
	if err != nil {
		return Availability{}, err
	}
	if len(links) == 0 {
		return Availability{Unlimited: true}, nil
	}

	locationIDs, err := a.locations.resolve(ctx, lc)
	if err != nil {
		return Availability{}, err
	}

	units := make([]int64, len(links))
	g, gctx := errgroup.WithContext(ctx)
	for i, link := range links {
		g.Go(func() error {
			available, err := a.ledger.AvailableQuantity(gctx, link.InventoryItemID, locationIDs)
			if err != nil {
				return fmt.Errorf("available quantity of item %s: %w", link.InventoryItemID, err)
			}
			units[i] = max(available, 0) / link.RequiredQuantity
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Availability{}, err
	}

	return Availability{Quantity: slices.Min(units)}, nil
}

// reserve создаёт по резерву на каждую позицию варианта на одной локации.
// Позиции резервируются параллельно; если хотя бы одна не прошла,
// успешно созданные резервы удаляются, и возвращается первая ошибка.
func (a *ledgerAllocator) reserve(ctx context.Context, variantID string, quantity int64, in ReserveInput) error {
	links, err := a.variantLinks(ctx, variantID)
	if err != nil {
		return err
	}
	if len(links) == 0 {
		return nil
	}

	needs := make([]int64, len(links))
	for i, link := range links {
		if needs[i], err = itemQuantity(quantity, link); err != nil {
			return err
		}
	}

	locationID, err := a.locations.resolveOne(ctx, LocationContext{
		LocationID:     in.LocationID,
		SalesChannelID: in.SalesChannelID,
	})
	if err != nil {
		return err
	}

	var (
		mu      sync.Mutex
		created []repository.Reservation
		g       errgroup.Group
	)
	for i, link := range links {
		g.Go(func() error {
			r, err := a.ledger.CreateReservation(ctx, repository.Reservation{
				LineItemID:      in.LineItemID,
				InventoryItemID: link.InventoryItemID,
				LocationID:      locationID,
				Quantity:        needs[i],
				Type:            repository.ReservationTypeOrder,
				Description:     in.Description,
			})
			if err != nil {
				return fmt.Errorf("reserve %d of item %s at location %s: %w",
					needs[i], link.InventoryItemID, locationID, err)
			}
			mu.Lock()
			created = append(created, r)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		a.compensate(ctx, created)
		return err
	}
	return nil
}

// compensate удаляет резервы, созданные до ошибки. Ошибки компенсации только логируются.
func (a *ledgerAllocator) compensate(ctx context.Context, created []repository.Reservation) {
	ctx = context.WithoutCancel(ctx)
	logger := platformobservability.L(ctx, a.logger)
	for _, r := range created {
		if err := a.ledger.DeleteReservation(ctx, r.ID); err != nil {
			logger.Error("failed to compensate reservation",
				zap.Error(err),
				zap.String("reservation_id", r.ID),
				zap.String("line_item_id", r.LineItemID),
				zap.String("inventory_item_id", r.InventoryItemID),
			)
			continue
		}
		logger.Warn("reservation compensated",
			zap.String("reservation_id", r.ID),
			zap.String("inventory_item_id", r.InventoryItemID),
			zap.Int64("quantity", r.Quantity),
		)
	}
}

// adjustStep - запланированное изменение одного резерва
type adjustStep struct {
	original    repository.Reservation
	newQuantity int64
}

// adjust меняет резервы позиции заказа на Delta * required_quantity по каждой позиции варианта.
// Для каждой позиции выбирается самый свежий резерв, с предпочтением резерва на
// in.LocationID, которого хватает на |delta|. Все новые количества проверяются до
// первого изменения; при сбое посередине уже применённые шаги откатываются.
func (a *ledgerAllocator) adjust(ctx context.Context, in AdjustInput) error {
	links, err := a.variantLinks(ctx, in.VariantID)
	if err != nil {
		return err
	}
	if len(links) == 0 || in.LineItemID == "" {
		return nil
	}

	reservations, _, err := a.ledger.ListReservations(ctx,
		repository.ReservationFilter{LineItemIDs: []string{in.LineItemID}},
		repository.OrderCreatedAtDesc,
	)
	if err != nil {
		return fmt.Errorf("list reservations of line item %s: %w", in.LineItemID, err)
	}
	if len(reservations) == 0 {
		return nil
	}

	steps := make([]adjustStep, 0, len(links))
	for _, link := range links {
		delta, err := itemQuantity(in.Delta, link)
		if err != nil {
			return err
		}
		target, ok := pickReservation(reservations, link.InventoryItemID, in.LocationID, abs(delta))
		if !ok {
			platformobservability.L(ctx, a.logger).Debug("no reservation to adjust for item",
				zap.String("line_item_id", in.LineItemID),
				zap.String("inventory_item_id", link.InventoryItemID),
			)
			continue
		}
		if delta > 0 && target.Quantity > math.MaxInt64-delta {
			return fmt.Errorf("reservation %s of item %s cannot grow by %d: %w",
				target.ID, link.InventoryItemID, delta, ErrInvalidQuantity)
		}
		newQuantity := target.Quantity + delta
		if newQuantity < 0 {
			return fmt.Errorf("reservation %s of item %s would become %d: %w",
				target.ID, link.InventoryItemID, newQuantity, ErrInvalidQuantity)
		}
		steps = append(steps, adjustStep{original: target, newQuantity: newQuantity})
	}

	for i, step := range steps {
		if err := a.applyAdjust(ctx, step); err != nil {
			a.rollbackAdjust(ctx, steps[:i])
			return err
		}
	}
	return nil
}

func (a *ledgerAllocator) applyAdjust(ctx context.Context, step adjustStep) error {
	if step.newQuantity == 0 {
		if err := a.ledger.DeleteReservation(ctx, step.original.ID); err != nil {
			return fmt.Errorf("delete reservation %s: %w", step.original.ID, err)
		}
		return nil
	}
	if _, err := a.ledger.UpdateReservation(ctx, step.original.ID, step.newQuantity); err != nil {
		return fmt.Errorf("update reservation %s to %d: %w", step.original.ID, step.newQuantity, err)
	}
	return nil
}

func (a *ledgerAllocator) rollbackAdjust(ctx context.Context, applied []adjustStep) {
	ctx = context.WithoutCancel(ctx)
	logger := platformobservability.L(ctx, a.logger)
	for _, step := range applied {
		var err error
		if step.newQuantity == 0 {
			restored := step.original
			restored.ID = ""
			_, err = a.ledger.CreateReservation(ctx, restored)
		} else {
			_, err = a.ledger.UpdateReservation(ctx, step.original.ID, step.original.Quantity)
		}
		if err != nil {
			logger.Error("failed to roll back reservation adjustment",
				zap.Error(err),
				zap.String("reservation_id", step.original.ID),
				zap.Int64("quantity", step.original.Quantity),
			)
		}
	}
}

// pickReservation выбирает резерв позиции itemID из списка, отсортированного от новых к старым
func pickReservation(reservations []repository.Reservation, itemID, locationID string, need int64) (repository.Reservation, bool) {
	var (
		latest repository.Reservation
		found  bool
	)
	for _, r := range reservations {
		if r.InventoryItemID != itemID {
			continue
		}
		if locationID != "" && r.LocationID == locationID && r.Quantity >= need {
			return r, true
		}
		if !found {
			latest, found = r, true
		}
	}
	return latest, found
}

// release удаляет все резервы позиции заказа. Если резервов нет, ничего не удаляется.
func (a *ledgerAllocator) release(ctx context.Context, lineItemID, _ string, _ int64) (bool, error) {
	if lineItemID == "" {
		return false, nil
	}

	_, count, err := a.ledger.ListReservations(ctx,
		repository.ReservationFilter{LineItemIDs: []string{lineItemID}},
		repository.OrderCreatedAtAsc,
	)
	if err != nil {
		return false, fmt.Errorf("list reservations of line item %s: %w", lineItemID, err)
	}
	if count == 0 {
		return false, nil
	}

	if err := a.ledger.DeleteReservationsByLineItem(ctx, lineItemID); err != nil {
		return false, fmt.Errorf("delete reservations of line item %s: %w", lineItemID, err)
	}
	return true, nil
}

// validate сравнивает required_quantity * quantity с физическим остатком (stocked) на локации
func (a *ledgerAllocator) validate(ctx context.Context, items []LineItem, locationID string) error {
	variantIDs := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, li := range items {
		if li.VariantID == "" {
			continue
		}
		if _, ok := seen[li.VariantID]; ok {
			continue
		}
		seen[li.VariantID] = struct{}{}
		variantIDs = append(variantIDs, li.VariantID)
	}
	if len(variantIDs) == 0 {
		return nil
	}

	links, err := a.links.ListByVariants(ctx, variantIDs)
	if err != nil {
		return fmt.Errorf("list links of %d variants: %w", len(variantIDs), err)
	}
	if len(links) == 0 {
		return nil
	}

	byVariant := make(map[string][]repository.VariantInventoryLink, len(variantIDs))
	itemIDs := make([]string, 0, len(links))
	seenItems := make(map[string]struct{}, len(links))
	for _, l := range links {
		byVariant[l.VariantID] = append(byVariant[l.VariantID], l)
		if _, ok := seenItems[l.InventoryItemID]; !ok {
			seenItems[l.InventoryItemID] = struct{}{}
			itemIDs = append(itemIDs, l.InventoryItemID)
		}
	}

	levels, err := a.ledger.ListStockLevels(ctx, itemIDs, locationID)
	if err != nil {
		return fmt.Errorf("list stock levels at location %s: %w", locationID, err)
	}
	stocked := make(map[string]repository.StockLevel, len(levels))
	for _, l := range levels {
		stocked[l.InventoryItemID] = l
	}

	for _, li := range items {
		for _, link := range byVariant[li.VariantID] {
			required, err := itemQuantity(li.Quantity, link)
			if err != nil {
				return fmt.Errorf("line item %s: %w", li.ID, err)
			}
			level, ok := stocked[link.InventoryItemID]
			if !ok || required > level.StockedQuantity {
				return &InsufficientStockError{
					LineItemID:      li.ID,
					InventoryItemID: link.InventoryItemID,
					LocationID:      locationID,
					Required:        required,
					Stocked:         level.StockedQuantity,
				}
			}
		}
	}
	return nil
}

// itemQuantity переводит количество варианта в количество позиции: quantity * required_quantity.
// Результат, не помещающийся в int64, считается недопустимым количеством.
func itemQuantity(quantity int64, link repository.VariantInventoryLink) (int64, error) {
	if quantity == math.MinInt64 ||
		(link.RequiredQuantity > 0 && abs(quantity) > math.MaxInt64/link.RequiredQuantity) {
		return 0, fmt.Errorf("%d x %d units of item %s overflow: %w",
			quantity, link.RequiredQuantity, link.InventoryItemID, ErrInvalidQuantity)
	}
	return quantity * link.RequiredQuantity, nil
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
