package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/shestoi/inventory-allocation/internal/repository"
	platformobservability "github.com/shestoi/inventory-allocation/platform/observability"
)

const instrumentationName = "inventory"

// Deps - зависимости InventoryService.
// Если Ledger == nil, сервис работает в ModeSimple.
type Deps struct {
	Links     repository.LinkRepository
	Variants  VariantStore
	Channels  SalesChannelLocations
	Locations StockLocationDirectory
	Ledger    InventoryLedger
	// Publisher опционален: без него события резервов не публикуются
	Publisher ReservationEventPublisher
}

// InventoryService - движок резервирования и распределения остатков.
// Отвечает на вопрос "можно ли продать", создаёт резервы по локациям и
// поддерживает их в согласованном состоянии при изменении и отмене заказов.
type InventoryService struct {
	logger    *zap.Logger
	mode      Mode
	links     repository.LinkRepository
	variants  VariantStore
	ledger    InventoryLedger
	alloc     allocator
	publisher ReservationEventPublisher
	tracer    trace.Tracer
	ops       metric.Int64Counter
}

// ReserveInput - параметры резерва под позицию заказа
type ReserveInput struct {
	LineItemID     string
	LocationID     string
	SalesChannelID string
	Description    string
}

// AdjustInput - изменение резерва позиции заказа.
// Delta > 0 увеличивает резерв, Delta < 0 уменьшает (в единицах варианта).
type AdjustInput struct {
	LineItemID string
	VariantID  string
	LocationID string
	Delta      int64
}

// LineItem - позиция заказа для проверки перед отгрузкой
type LineItem struct {
	ID        string
	VariantID string
	Quantity  int64
}

// Availability - сколько целых единиц варианта можно продать прямо сейчас
type Availability struct {
	Quantity int64
	// Unlimited - вариант не ограничен остатком (backorder, не учитывается, нет связей)
	Unlimited bool
}

// NewInventoryService создаёт сервис. Режим выбирается один раз: есть ledger - ModeLedger.
func NewInventoryService(deps Deps, logger *zap.Logger) *InventoryService {
	if logger == nil {
		logger = zap.NewNop()
	}

	meter := otel.Meter(instrumentationName)
	ops, err := meter.Int64Counter("inventory.operations",
		metric.WithDescription("Inventory engine operations by outcome"),
	)
	if err != nil {
		logger.Warn("failed to create operations counter, metrics disabled", zap.Error(err))
		ops = metricnoop.Int64Counter{}
	}

	s := &InventoryService{
		logger:    logger,
		links:     deps.Links,
		variants:  deps.Variants,
		ledger:    deps.Ledger,
		publisher: deps.Publisher,
		tracer:    otel.Tracer(instrumentationName),
		ops:       ops,
	}

	if deps.Ledger != nil {
		s.mode = ModeLedger
		s.alloc = &ledgerAllocator{
			logger: logger,
			links:  deps.Links,
			ledger: deps.Ledger,
			locations: locationResolver{
				channels:  deps.Channels,
				directory: deps.Locations,
			},
		}
	} else {
		s.mode = ModeSimple
		s.alloc = &simpleAllocator{variants: deps.Variants}
	}

	logger.Info("inventory service created", zap.Stringer("mode", s.mode))
	return s
}

// Mode возвращает режим, выбранный при создании
func (s *InventoryService) Mode() Mode {
	return s.mode
}

// ConfirmInventory проверяет, можно ли выполнить quantity единиц варианта.
// Пустой variantID, backorder и неучитываемые варианты всегда проходят.
func (s *InventoryService) ConfirmInventory(ctx context.Context, variantID string, quantity int64, lc LocationContext) (ok bool, err error) {
	ctx, span := s.start(ctx, "ConfirmInventory",
		attribute.String("variant_id", variantID),
		attribute.Int64("quantity", quantity),
	)
	defer func() { s.end(ctx, span, "confirm", err) }()

	if variantID == "" {
		return true, nil
	}
	if quantity < 0 {
		return false, fmt.Errorf("confirm %d units: %w", quantity, ErrInvalidQuantity)
	}

	variant, err := s.variants.Retrieve(ctx, variantID)
	if err != nil {
		return false, fmt.Errorf("retrieve variant %s: %w", variantID, err)
	}
	if variant.AllowBackorder || !variant.ManageInventory {
		return true, nil
	}

	ok, err = s.alloc.confirm(ctx, variant, quantity, lc)
	if err != nil {
		return false, err
	}

	platformobservability.L(ctx, s.logger).Debug("inventory confirmed",
		zap.String("variant_id", variantID),
		zap.Int64("quantity", quantity),
		zap.Bool("available", ok),
	)
	return ok, nil
}

// VariantAvailability возвращает количество единиц варианта, доступных для продажи
func (s *InventoryService) VariantAvailability(ctx context.Context, variantID string, lc LocationContext) (a Availability, err error) {
	ctx, span := s.start(ctx, "VariantAvailability", attribute.String("variant_id", variantID))
	defer func() { s.end(ctx, span, "availability", err) }()

	if variantID == "" {
		return Availability{Unlimited: true}, nil
	}

	variant, err := s.variants.Retrieve(ctx, variantID)
	if err != nil {
		return Availability{}, fmt.Errorf("retrieve variant %s: %w", variantID, err)
	}
	if variant.AllowBackorder || !variant.ManageInventory {
		return Availability{Unlimited: true}, nil
	}

	return s.alloc.availability(ctx, variant, lc)
}

// Reserve резервирует quantity единиц варианта под позицию заказа.
// В ModeLedger при ошибке по одной из позиций уже созданные резервы удаляются.
func (s *InventoryService) Reserve(ctx context.Context, variantID string, quantity int64, in ReserveInput) (err error) {
	ctx, span := s.start(ctx, "Reserve",
		attribute.String("variant_id", variantID),
		attribute.String("line_item_id", in.LineItemID),
		attribute.Int64("quantity", quantity),
	)
	defer func() { s.end(ctx, span, "reserve", err) }()

	if quantity <= 0 {
		return fmt.Errorf("reserve %d units: %w", quantity, ErrInvalidQuantity)
	}
	if variantID == "" {
		return nil
	}

	if err := s.alloc.reserve(ctx, variantID, quantity, in); err != nil {
		return err
	}

	platformobservability.L(ctx, s.logger).Info("inventory reserved",
		zap.String("variant_id", variantID),
		zap.String("line_item_id", in.LineItemID),
		zap.Int64("quantity", quantity),
	)
	s.publish(ctx, ReservationEvent{
		EventType:  EventReservationCreated,
		LineItemID: in.LineItemID,
		VariantID:  variantID,
		LocationID: in.LocationID,
		Quantity:   quantity,
	})
	return nil
}

// AdjustByLineItem изменяет резерв позиции заказа на Delta единиц варианта
func (s *InventoryService) AdjustByLineItem(ctx context.Context, in AdjustInput) (err error) {
	ctx, span := s.start(ctx, "AdjustByLineItem",
		attribute.String("variant_id", in.VariantID),
		attribute.String("line_item_id", in.LineItemID),
		attribute.Int64("delta", in.Delta),
	)
	defer func() { s.end(ctx, span, "adjust", err) }()

	if in.Delta == math.MinInt64 {
		return fmt.Errorf("adjust by %d units: %w", in.Delta, ErrInvalidQuantity)
	}
	if in.Delta == 0 || in.VariantID == "" {
		return nil
	}

	if err := s.alloc.adjust(ctx, in); err != nil {
		return err
	}

	platformobservability.L(ctx, s.logger).Info("inventory reservation adjusted",
		zap.String("variant_id", in.VariantID),
		zap.String("line_item_id", in.LineItemID),
		zap.Int64("delta", in.Delta),
	)
	s.publish(ctx, ReservationEvent{
		EventType:  EventReservationAdjusted,
		LineItemID: in.LineItemID,
		VariantID:  in.VariantID,
		LocationID: in.LocationID,
		Quantity:   in.Delta,
	})
	return nil
}

// Release снимает резервы позиции заказа. Повторный вызов безопасен.
func (s *InventoryService) Release(ctx context.Context, lineItemID, variantID string, quantity int64) (err error) {
	ctx, span := s.start(ctx, "Release",
		attribute.String("variant_id", variantID),
		attribute.String("line_item_id", lineItemID),
		attribute.Int64("quantity", quantity),
	)
	defer func() { s.end(ctx, span, "release", err) }()

	if quantity < 0 {
		return fmt.Errorf("release %d units: %w", quantity, ErrInvalidQuantity)
	}

	released, err := s.alloc.release(ctx, lineItemID, variantID, quantity)
	if err != nil {
		return err
	}
	if !released {
		platformobservability.L(ctx, s.logger).Debug("nothing to release",
			zap.String("variant_id", variantID),
			zap.String("line_item_id", lineItemID),
		)
		return nil
	}

	platformobservability.L(ctx, s.logger).Info("inventory released",
		zap.String("variant_id", variantID),
		zap.String("line_item_id", lineItemID),
		zap.Int64("quantity", quantity),
	)
	s.publish(ctx, ReservationEvent{
		EventType:  EventReservationReleased,
		LineItemID: lineItemID,
		VariantID:  variantID,
		Quantity:   quantity,
	})
	return nil
}

// ValidateAtLocation проверяет, что локация физически держит достаточно остатка
// для всех позиций отгрузки. Ничего не изменяет.
func (s *InventoryService) ValidateAtLocation(ctx context.Context, items []LineItem, locationID string) (err error) {
	ctx, span := s.start(ctx, "ValidateAtLocation",
		attribute.String("location_id", locationID),
		attribute.Int("line_items", len(items)),
	)
	defer func() { s.end(ctx, span, "validate", err) }()

	if locationID == "" {
		return fmt.Errorf("validate fulfillment: %w", ErrLocationRequired)
	}
	for _, li := range items {
		if li.Quantity <= 0 {
			return fmt.Errorf("line item %s quantity %d: %w", li.ID, li.Quantity, ErrInvalidQuantity)
		}
	}

	return s.alloc.validate(ctx, items, locationID)
}

func (s *InventoryService) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("inventory.mode", s.mode.String()))
	return s.tracer.Start(ctx, "InventoryService."+name, trace.WithAttributes(attrs...))
}

func (s *InventoryService) end(ctx context.Context, span trace.Span, op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.ops.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("mode", s.mode.String()),
		attribute.String("outcome", outcome),
	))
	span.End()
}

// publish отправляет событие резерва. Ошибка публикации не откатывает уже выполненную операцию.
func (s *InventoryService) publish(ctx context.Context, event ReservationEvent) {
	if s.publisher == nil {
		return
	}
	event.Mode = s.mode
	event.OccurredAt = time.Now().UTC()
	if err := s.publisher.PublishReservationEvent(ctx, event); err != nil {
		platformobservability.L(ctx, s.logger).Warn("failed to publish reservation event",
			zap.Error(err),
			zap.String("event_type", event.EventType),
			zap.String("line_item_id", event.LineItemID),
		)
	}
}
