package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/shestoi/inventory-allocation/internal/repository"
	platformobservability "github.com/shestoi/inventory-allocation/platform/observability"
)

// AttachInput - параметры привязки складской позиции к варианту.
// RequiredQuantity == nil означает 1.
type AttachInput struct {
	VariantID        string
	InventoryItemID  string
	RequiredQuantity *int64
}

// Attach привязывает складскую позицию к варианту. Идемпотентна:
// если связь уже есть, возвращается существующая без изменения количества.
func (s *InventoryService) Attach(ctx context.Context, in AttachInput) (link repository.VariantInventoryLink, err error) {
	ctx, span := s.start(ctx, "Attach",
		attribute.String("variant_id", in.VariantID),
		attribute.String("inventory_item_id", in.InventoryItemID),
	)
	defer func() { s.end(ctx, span, "attach", err) }()

	if s.ledger == nil {
		return repository.VariantInventoryLink{}, ErrLedgerNotConfigured
	}

	required := int64(1)
	if in.RequiredQuantity != nil {
		required = *in.RequiredQuantity
	}
	if required < 1 {
		return repository.VariantInventoryLink{}, fmt.Errorf("required quantity %d: %w", required, ErrInvalidQuantity)
	}

	if _, err := s.variants.Retrieve(ctx, in.VariantID); err != nil {
		return repository.VariantInventoryLink{}, fmt.Errorf("retrieve variant %s: %w", in.VariantID, err)
	}
	if _, err := s.ledger.RetrieveItem(ctx, in.InventoryItemID); err != nil {
		return repository.VariantInventoryLink{}, fmt.Errorf("retrieve inventory item %s: %w", in.InventoryItemID, err)
	}

	link, err = s.links.CreateIfAbsent(ctx, repository.VariantInventoryLink{
		ID:               uuid.NewString(),
		VariantID:        in.VariantID,
		InventoryItemID:  in.InventoryItemID,
		RequiredQuantity: required,
		CreatedAt:        time.Now().UTC(),
	})
	if err != nil {
		return repository.VariantInventoryLink{}, fmt.Errorf("attach item %s to variant %s: %w", in.InventoryItemID, in.VariantID, err)
	}

	platformobservability.L(ctx, s.logger).Info("inventory item attached",
		zap.String("variant_id", link.VariantID),
		zap.String("inventory_item_id", link.InventoryItemID),
		zap.Int64("required_quantity", link.RequiredQuantity),
	)
	return link, nil
}

// Detach отвязывает позицию от варианта. Отсутствие связи не является ошибкой.
func (s *InventoryService) Detach(ctx context.Context, variantID, inventoryItemID string) (err error) {
	ctx, span := s.start(ctx, "Detach",
		attribute.String("variant_id", variantID),
		attribute.String("inventory_item_id", inventoryItemID),
	)
	defer func() { s.end(ctx, span, "detach", err) }()

	if err := s.links.Delete(ctx, variantID, inventoryItemID); err != nil {
		return fmt.Errorf("detach item %s from variant %s: %w", inventoryItemID, variantID, err)
	}
	return nil
}

// RetrieveLink возвращает связь пары (variant, item) или ErrNotFound
func (s *InventoryService) RetrieveLink(ctx context.Context, variantID, inventoryItemID string) (repository.VariantInventoryLink, error) {
	link, err := s.links.Get(ctx, variantID, inventoryItemID)
	if err != nil {
		return repository.VariantInventoryLink{}, fmt.Errorf("retrieve link %s/%s: %w", variantID, inventoryItemID, err)
	}
	return link, nil
}

// ListByVariant возвращает связи указанных вариантов
func (s *InventoryService) ListByVariant(ctx context.Context, variantIDs ...string) ([]repository.VariantInventoryLink, error) {
	if len(variantIDs) == 0 {
		return []repository.VariantInventoryLink{}, nil
	}
	links, err := s.links.ListByVariants(ctx, variantIDs)
	if err != nil {
		return nil, fmt.Errorf("list links by variants: %w", err)
	}
	return links, nil
}

// ListByItem возвращает связи указанных складских позиций
func (s *InventoryService) ListByItem(ctx context.Context, inventoryItemIDs ...string) ([]repository.VariantInventoryLink, error) {
	if len(inventoryItemIDs) == 0 {
		return []repository.VariantInventoryLink{}, nil
	}
	links, err := s.links.ListByItems(ctx, inventoryItemIDs)
	if err != nil {
		return nil, fmt.Errorf("list links by items: %w", err)
	}
	return links, nil
}

// ListVariantsByItem возвращает варианты, которые расходуют складскую позицию.
// Связи на удалённые варианты пропускаются.
func (s *InventoryService) ListVariantsByItem(ctx context.Context, inventoryItemID string) ([]repository.Variant, error) {
	links, err := s.ListByItem(ctx, inventoryItemID)
	if err != nil {
		return nil, err
	}

	variants := make([]repository.Variant, 0, len(links))
	for _, link := range links {
		v, err := s.variants.Retrieve(ctx, link.VariantID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("retrieve variant %s: %w", link.VariantID, err)
		}
		variants = append(variants, v)
	}
	return variants, nil
}
