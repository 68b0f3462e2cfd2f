package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/shestoi/inventory-allocation/internal/repository"
)

// ItemDocument - складская позиция
type ItemDocument struct {
	ItemID    string    `bson:"item_id"`
	SKU       string    `bson:"sku"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// StockLevelDocument - остаток позиции на локации
type StockLevelDocument struct {
	InventoryItemID  string    `bson:"inventory_item_id"`
	LocationID       string    `bson:"location_id"`
	StockedQuantity  int64     `bson:"stocked_quantity"`
	ReservedQuantity int64     `bson:"reserved_quantity"`
	UpdatedAt        time.Time `bson:"updated_at"`
}

// ReservationDocument - резерв под позицию заказа
type ReservationDocument struct {
	ReservationID   string    `bson:"reservation_id"`
	LineItemID      string    `bson:"line_item_id"`
	InventoryItemID string    `bson:"inventory_item_id"`
	LocationID      string    `bson:"location_id"`
	Quantity        int64     `bson:"quantity"`
	Type            string    `bson:"type"`
	Description     string    `bson:"description,omitempty"`
	CreatedAt       time.Time `bson:"created_at"`
}

// Ledger реализует учёт остатков и резервов в MongoDB.
// Резерв увеличивает reserved_quantity через FindOneAndUpdate с условием
// stocked - reserved >= quantity, поэтому проверка и списание атомарны.
type Ledger struct {
	logger       *zap.Logger
	client       *mongo.Client
	db           *mongo.Database
	items        *mongo.Collection
	levels       *mongo.Collection
	reservations *mongo.Collection
}

// NewLedger создаёт MongoDB ledger и индексы коллекций
func NewLedger(client *mongo.Client, dbName string, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	db := client.Database(dbName)
	l := &Ledger{
		logger:       logger,
		client:       client,
		db:           db,
		items:        db.Collection("inventory_items"),
		levels:       db.Collection("stock_levels"),
		reservations: db.Collection("reservations"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Создаём индексы (если уже существуют - игнорируем ошибку)
	_, _ = l.items.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "item_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	_, _ = l.levels.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "inventory_item_id", Value: 1}, {Key: "location_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	_, _ = l.reservations.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "reservation_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "line_item_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	})

	return l
}

// UpsertItem добавляет или обновляет складскую позицию
func (l *Ledger) UpsertItem(ctx context.Context, item repository.InventoryItem) error {
	_, err := l.items.UpdateOne(ctx,
		bson.M{"item_id": item.ID},
		bson.M{"$set": bson.M{"sku": item.SKU, "updated_at": time.Now()}},
		options.Update().SetUpsert(true),
	)
	return err
}

// SetStockedQuantity задаёт физический остаток позиции на локации, reserved сохраняется
func (l *Ledger) SetStockedQuantity(ctx context.Context, itemID, locationID string, stocked int64) error {
	_, err := l.levels.UpdateOne(ctx,
		bson.M{"inventory_item_id": itemID, "location_id": locationID},
		bson.M{
			"$set":         bson.M{"stocked_quantity": stocked, "updated_at": time.Now()},
			"$setOnInsert": bson.M{"reserved_quantity": int64(0)},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// RetrieveItem возвращает позицию или repository.ErrNotFound
func (l *Ledger) RetrieveItem(ctx context.Context, itemID string) (repository.InventoryItem, error) {
	var doc ItemDocument
	err := l.items.FindOne(ctx, bson.M{"item_id": itemID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return repository.InventoryItem{}, repository.ErrNotFound
		}
		return repository.InventoryItem{}, err
	}
	return repository.InventoryItem{ID: doc.ItemID, SKU: doc.SKU}, nil
}

// ConfirmAvailability проверяет суммарную доступность по локациям
func (l *Ledger) ConfirmAvailability(ctx context.Context, itemID string, locationIDs []string, quantity int64) (bool, error) {
	available, err := l.AvailableQuantity(ctx, itemID, locationIDs)
	if err != nil {
		return false, err
	}
	return available >= quantity, nil
}

// AvailableQuantity возвращает сумму stocked - reserved по локациям
func (l *Ledger) AvailableQuantity(ctx context.Context, itemID string, locationIDs []string) (int64, error) {
	if len(locationIDs) == 0 {
		return 0, nil
	}

	cursor, err := l.levels.Find(ctx, bson.M{
		"inventory_item_id": itemID,
		"location_id":       bson.M{"$in": locationIDs},
	})
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var total int64
	for cursor.Next(ctx) {
		var doc StockLevelDocument
		if err := cursor.Decode(&doc); err != nil {
			return 0, err
		}
		total += doc.StockedQuantity - doc.ReservedQuantity
	}
	return total, cursor.Err()
}

// CreateReservation атомарно увеличивает reserved на локации и сохраняет резерв.
// Если документ резерва сохранить не удалось, reserved возвращается обратно.
func (l *Ledger) CreateReservation(ctx context.Context, r repository.Reservation) (repository.Reservation, error) {
	if r.Quantity <= 0 {
		return repository.Reservation{}, fmt.Errorf("reservation quantity must be positive, got %d", r.Quantity)
	}

	if err := l.takeStock(ctx, r.InventoryItemID, r.LocationID, r.Quantity); err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			if _, itemErr := l.RetrieveItem(ctx, r.InventoryItemID); errors.Is(itemErr, repository.ErrNotFound) {
				return repository.Reservation{}, repository.ErrNotFound
			}
		}
		return repository.Reservation{}, err
	}

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	if _, err := l.reservations.InsertOne(ctx, toReservationDocument(r)); err != nil {
		if undoErr := l.returnStock(context.WithoutCancel(ctx), r.InventoryItemID, r.LocationID, r.Quantity); undoErr != nil {
			l.logger.Error("failed to return stock after reservation insert error",
				zap.Error(undoErr),
				zap.String("inventory_item_id", r.InventoryItemID),
				zap.String("location_id", r.LocationID),
				zap.Int64("quantity", r.Quantity),
			)
			return repository.Reservation{}, errors.Join(err, undoErr)
		}
		return repository.Reservation{}, err
	}
	return r, nil
}

// ListReservations возвращает резервы по фильтру, отсортированные по created_at
func (l *Ledger) ListReservations(ctx context.Context, filter repository.ReservationFilter, order repository.ReservationOrder) ([]repository.Reservation, int, error) {
	q := bson.M{}
	if len(filter.LineItemIDs) > 0 {
		q["line_item_id"] = bson.M{"$in": filter.LineItemIDs}
	}
	if len(filter.InventoryItemIDs) > 0 {
		q["inventory_item_id"] = bson.M{"$in": filter.InventoryItemIDs}
	}
	if len(filter.LocationIDs) > 0 {
		q["location_id"] = bson.M{"$in": filter.LocationIDs}
	}

	direction := 1
	if order == repository.OrderCreatedAtDesc {
		direction = -1
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: direction},
		{Key: "_id", Value: direction},
	})

	cursor, err := l.reservations.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	out := make([]repository.Reservation, 0)
	for cursor.Next(ctx) {
		var doc ReservationDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, err
		}
		out = append(out, fromReservationDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, err
	}
	return out, len(out), nil
}

// UpdateReservation меняет количество резерва.
// Документ обновляется только если количество не изменилось с момента чтения.
func (l *Ledger) UpdateReservation(ctx context.Context, reservationID string, quantity int64) (repository.Reservation, error) {
	if quantity <= 0 {
		return repository.Reservation{}, fmt.Errorf("reservation quantity must be positive, got %d", quantity)
	}

	var doc ReservationDocument
	if err := l.reservations.FindOne(ctx, bson.M{"reservation_id": reservationID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return repository.Reservation{}, repository.ErrNotFound
		}
		return repository.Reservation{}, err
	}

	diff := quantity - doc.Quantity
	if diff > 0 {
		if err := l.takeStock(ctx, doc.InventoryItemID, doc.LocationID, diff); err != nil {
			return repository.Reservation{}, err
		}
	} else if diff < 0 {
		if err := l.returnStock(ctx, doc.InventoryItemID, doc.LocationID, -diff); err != nil {
			return repository.Reservation{}, err
		}
	}

	res, err := l.reservations.UpdateOne(ctx,
		bson.M{"reservation_id": reservationID, "quantity": doc.Quantity},
		bson.M{"$set": bson.M{"quantity": quantity}},
	)
	if err == nil && res.MatchedCount == 0 {
		err = fmt.Errorf("reservation %s was modified concurrently", reservationID)
	}
	if err != nil {
		// откатываем изменение остатка
		undo := context.WithoutCancel(ctx)
		var undoErr error
		if diff > 0 {
			undoErr = l.returnStock(undo, doc.InventoryItemID, doc.LocationID, diff)
		} else if diff < 0 {
			undoErr = l.forceTakeStock(undo, doc.InventoryItemID, doc.LocationID, -diff)
		}
		if undoErr != nil {
			l.logger.Error("failed to undo reserved quantity change",
				zap.Error(undoErr),
				zap.String("reservation_id", reservationID),
				zap.Int64("diff", diff),
			)
			return repository.Reservation{}, errors.Join(err, undoErr)
		}
		return repository.Reservation{}, err
	}

	doc.Quantity = quantity
	return fromReservationDocument(doc), nil
}

// DeleteReservation удаляет резерв и возвращает количество в доступное.
// Если reserved вернуть не удалось, документ резерва восстанавливается.
func (l *Ledger) DeleteReservation(ctx context.Context, reservationID string) error {
	var doc ReservationDocument
	err := l.reservations.FindOneAndDelete(ctx, bson.M{"reservation_id": reservationID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return repository.ErrNotFound
		}
		return err
	}

	err = l.returnStock(ctx, doc.InventoryItemID, doc.LocationID, doc.Quantity)
	if err == nil {
		return nil
	}

	logger := l.logger.With(
		zap.String("reservation_id", reservationID),
		zap.String("inventory_item_id", doc.InventoryItemID),
		zap.String("location_id", doc.LocationID),
		zap.Int64("quantity", doc.Quantity),
	)
	if _, restoreErr := l.reservations.InsertOne(context.WithoutCancel(ctx), doc); restoreErr != nil {
		logger.Error("reservation deleted but reserved quantity not returned",
			zap.Error(err),
			zap.NamedError("restore_error", restoreErr),
		)
		return errors.Join(err, restoreErr)
	}
	logger.Warn("reservation restored after failed stock return", zap.Error(err))
	return fmt.Errorf("return stock of reservation %s: %w", reservationID, err)
}

// DeleteReservationsByLineItem удаляет все резервы позиции заказа
func (l *Ledger) DeleteReservationsByLineItem(ctx context.Context, lineItemID string) error {
	reservations, _, err := l.ListReservations(ctx,
		repository.ReservationFilter{LineItemIDs: []string{lineItemID}},
		repository.OrderCreatedAtAsc,
	)
	if err != nil {
		return err
	}

	for _, r := range reservations {
		// резерв мог быть удалён параллельно
		if err := l.DeleteReservation(ctx, r.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
	}
	return nil
}

// ListStockLevels возвращает остатки позиций на локации
func (l *Ledger) ListStockLevels(ctx context.Context, itemIDs []string, locationID string) ([]repository.StockLevel, error) {
	cursor, err := l.levels.Find(ctx, bson.M{
		"inventory_item_id": bson.M{"$in": itemIDs},
		"location_id":       locationID,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]repository.StockLevel, 0, len(itemIDs))
	for cursor.Next(ctx) {
		var doc StockLevelDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, repository.StockLevel{
			InventoryItemID:  doc.InventoryItemID,
			LocationID:       doc.LocationID,
			StockedQuantity:  doc.StockedQuantity,
			ReservedQuantity: doc.ReservedQuantity,
		})
	}
	return out, cursor.Err()
}

// takeStock увеличивает reserved, если stocked - reserved >= quantity
func (l *Ledger) takeStock(ctx context.Context, itemID, locationID string, quantity int64) error {
	filter := bson.M{
		"inventory_item_id": itemID,
		"location_id":       locationID,
		"$expr": bson.M{"$gte": bson.A{
			bson.M{"$subtract": bson.A{"$stocked_quantity", "$reserved_quantity"}},
			quantity,
		}},
	}
	update := bson.M{
		"$inc": bson.M{"reserved_quantity": quantity},
		"$set": bson.M{"updated_at": time.Now()},
	}

	err := l.levels.FindOneAndUpdate(ctx, filter, update).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// уровня нет или не хватает доступного количества
			return repository.ErrInsufficientStock
		}
		return err
	}
	return nil
}

// returnStock уменьшает reserved без условий
func (l *Ledger) returnStock(ctx context.Context, itemID, locationID string, quantity int64) error {
	return l.incReserved(ctx, itemID, locationID, -quantity)
}

// forceTakeStock увеличивает reserved без проверки доступности (только для отката)
func (l *Ledger) forceTakeStock(ctx context.Context, itemID, locationID string, quantity int64) error {
	return l.incReserved(ctx, itemID, locationID, quantity)
}

func (l *Ledger) incReserved(ctx context.Context, itemID, locationID string, delta int64) error {
	_, err := l.levels.UpdateOne(ctx,
		bson.M{"inventory_item_id": itemID, "location_id": locationID},
		bson.M{
			"$inc": bson.M{"reserved_quantity": delta},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	return err
}

// Ping проверяет соединение с MongoDB
func (l *Ledger) Ping(ctx context.Context) error {
	return l.client.Ping(ctx, nil)
}

func toReservationDocument(r repository.Reservation) ReservationDocument {
	return ReservationDocument{
		ReservationID:   r.ID,
		LineItemID:      r.LineItemID,
		InventoryItemID: r.InventoryItemID,
		LocationID:      r.LocationID,
		Quantity:        r.Quantity,
		Type:            r.Type,
		Description:     r.Description,
		CreatedAt:       r.CreatedAt,
	}
}

func fromReservationDocument(doc ReservationDocument) repository.Reservation {
	return repository.Reservation{
		ID:              doc.ReservationID,
		LineItemID:      doc.LineItemID,
		InventoryItemID: doc.InventoryItemID,
		LocationID:      doc.LocationID,
		Quantity:        doc.Quantity,
		Type:            doc.Type,
		Description:     doc.Description,
		CreatedAt:       doc.CreatedAt,
	}
}
