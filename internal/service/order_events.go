package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	platformobservability "github.com/shestoi/inventory-allocation/platform/observability"
)

// HandleOrderEvent применяет событие заказа к резервам.
// order.placed и order.line_item.adjusted применяются целиком: если одна позиция не прошла,
// уже применённые позиции этого события откатываются, и событие не меняет резервы.
func (s *InventoryService) HandleOrderEvent(ctx context.Context, event OrderEvent) error {
	logger := platformobservability.L(ctx, s.logger).With(
		zap.String("event_id", event.EventID),
		zap.String("event_type", event.EventType),
		zap.String("order_id", event.OrderID),
	)

	switch event.EventType {
	case OrderEventPlaced:
		reserved := make([]OrderEventItem, 0, len(event.Items))
		for _, item := range event.Items {
			err := s.Reserve(ctx, item.VariantID, item.Quantity, ReserveInput{
				LineItemID:     item.LineItemID,
				LocationID:     event.LocationID,
				SalesChannelID: event.SalesChannelID,
				Description:    "order " + event.OrderID,
			})
			if err != nil {
				s.releaseItems(ctx, logger, reserved)
				return fmt.Errorf("reserve line item %s: %w", item.LineItemID, err)
			}
			reserved = append(reserved, item)
		}

	case OrderEventLineItemAdjusted:
		applied := make([]AdjustInput, 0, len(event.Items))
		for _, item := range event.Items {
			in := AdjustInput{
				LineItemID: item.LineItemID,
				VariantID:  item.VariantID,
				LocationID: event.LocationID,
				Delta:      item.Delta,
			}
			if err := s.AdjustByLineItem(ctx, in); err != nil {
				s.revertAdjustments(ctx, logger, applied)
				return fmt.Errorf("adjust line item %s: %w", item.LineItemID, err)
			}
			applied = append(applied, in)
		}

	case OrderEventCanceled:
		for _, item := range event.Items {
			if err := s.Release(ctx, item.LineItemID, item.VariantID, item.Quantity); err != nil {
				return fmt.Errorf("release line item %s: %w", item.LineItemID, err)
			}
		}

	default:
		logger.Debug("order event ignored")
		return nil
	}

	logger.Info("order event applied", zap.Int("items", len(event.Items)))
	return nil
}

func (s *InventoryService) releaseItems(ctx context.Context, logger *zap.Logger, items []OrderEventItem) {
	ctx = context.WithoutCancel(ctx)
	for _, item := range items {
		if err := s.Release(ctx, item.LineItemID, item.VariantID, item.Quantity); err != nil {
			logger.Error("failed to release line item after partial reserve",
				zap.Error(err),
				zap.String("line_item_id", item.LineItemID),
			)
		}
	}
}

// revertAdjustments применяет обратные дельты в обратном порядке
func (s *InventoryService) revertAdjustments(ctx context.Context, logger *zap.Logger, applied []AdjustInput) {
	ctx = context.WithoutCancel(ctx)
	for i := len(applied) - 1; i >= 0; i-- {
		in := applied[i]
		in.Delta = -in.Delta
		if err := s.AdjustByLineItem(ctx, in); err != nil {
			logger.Error("failed to revert line item adjustment",
				zap.Error(err),
				zap.String("line_item_id", in.LineItemID),
				zap.Int64("delta", in.Delta),
			)
		}
	}
}
