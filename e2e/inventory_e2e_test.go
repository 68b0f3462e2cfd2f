//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	httpapi "github.com/shestoi/inventory-allocation/internal/api/http"
	"github.com/shestoi/inventory-allocation/internal/repository"
	mongorepo "github.com/shestoi/inventory-allocation/internal/repository/mongo"
	pgrepo "github.com/shestoi/inventory-allocation/internal/repository/postgres"
	"github.com/shestoi/inventory-allocation/internal/service"
)

func TestInventory_E2E_LedgerReservation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	// 1) PostgreSQL: варианты, связи, локации
	pgC, err := postgres.RunContainer(ctx,
		tc.WithImage("postgres:15-alpine"),
		postgres.WithDatabase("inventory"),
		postgres.WithUsername("inventory_user"),
		postgres.WithPassword("inventory_password"),
	)
	require.NoError(t, err)
	defer func() { require.NoError(t, pgC.Terminate(context.Background())) }()

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	defer db.Close()

	var pingErr error
	for i := 0; i < 10; i++ {
		if pingErr = db.PingContext(ctx); pingErr == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, pingErr, "PostgreSQL did not become ready in time")

	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok)
	require.NoError(t, goose.UpContext(ctx, db, filepath.Join(filepath.Dir(filename), "..", "migrations")))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	// 2) MongoDB: ledger
	mongoC, err := mongodb.RunContainer(ctx, tc.WithImage("mongo:6"))
	require.NoError(t, err)
	defer func() { require.NoError(t, mongoC.Terminate(context.Background())) }()

	mongoURI, err := mongoC.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	require.NoError(t, err)
	defer func() { _ = client.Disconnect(context.Background()) }()

	for i := 0; i < 20; i++ {
		if pingErr = client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); pingErr == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	require.NoError(t, pingErr, "MongoDB did not become ready in time")

	// 3) данные
	variants := pgrepo.NewVariantRepository(pool)
	locations := pgrepo.NewLocationRepository(pool)
	ledger := mongorepo.NewLedger(client, "inventory_e2e", zap.NewNop())

	require.NoError(t, variants.Save(ctx, repository.Variant{ID: "v-1", ManageInventory: true}))
	require.NoError(t, locations.Save(ctx, repository.StockLocation{ID: "loc-1", Name: "Main"}))
	require.NoError(t, locations.Save(ctx, repository.StockLocation{ID: "loc-2", Name: "Backup"}))
	require.NoError(t, locations.AssignToChannel(ctx, "web", "loc-1"))
	require.NoError(t, ledger.UpsertItem(ctx, repository.InventoryItem{ID: "i-1", SKU: "SKU-1"}))
	require.NoError(t, ledger.UpsertItem(ctx, repository.InventoryItem{ID: "i-2", SKU: "SKU-2"}))
	require.NoError(t, ledger.SetStockedQuantity(ctx, "i-1", "loc-1", 10))
	require.NoError(t, ledger.SetStockedQuantity(ctx, "i-2", "loc-1", 3))

	// 4) HTTP сервер внутри теста (реальные repo+service+handler)
	svc := service.NewInventoryService(service.Deps{
		Links:     pgrepo.NewLinkRepository(pool),
		Variants:  variants,
		Channels:  locations,
		Locations: locations,
		Ledger:    ledger,
	}, zap.NewNop())
	srv := httptest.NewServer(httpapi.NewRouter(httpapi.NewHandler(svc, zap.NewNop()), nil, zap.NewNop()))
	defer srv.Close()

	call := func(method, path string, body any) *http.Response {
		t.Helper()
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req, err := http.NewRequestWithContext(ctx, method, srv.URL+path, &buf)
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}

	reserved := func(itemID string) int64 {
		t.Helper()
		levels, err := ledger.ListStockLevels(ctx, []string{itemID}, "loc-1")
		require.NoError(t, err)
		require.Len(t, levels, 1)
		return levels[0].ReservedQuantity
	}

	// 5) связи: V1 = 2 x I1 + 1 x I2
	require.Equal(t, http.StatusOK, call(http.MethodPost, "/v1/variants/v-1/items",
		map[string]any{"inventory_item_id": "i-1", "required_quantity": 2}).StatusCode)
	require.Equal(t, http.StatusOK, call(http.MethodPost, "/v1/variants/v-1/items",
		map[string]any{"inventory_item_id": "i-2"}).StatusCode)

	// 6) success: резерв 3 шт. через канал web (единственная локация loc-1)
	resp := call(http.MethodPost, "/v1/reservations/", map[string]any{
		"line_item_id": "li-1", "variant_id": "v-1", "quantity": 3, "sales_channel_id": "web",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, int64(6), reserved("i-1"))
	require.Equal(t, int64(3), reserved("i-2"))

	// 7) fail кейс: I2 закончился, I1 не должен остаться зарезервированным
	resp = call(http.MethodPost, "/v1/reservations/", map[string]any{
		"line_item_id": "li-2", "variant_id": "v-1", "quantity": 1, "location_id": "loc-1",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, int64(6), reserved("i-1"))

	// 8) release освобождает оба item
	require.Equal(t, http.StatusNoContent, call(http.MethodDelete, "/v1/reservations/line-items/li-1",
		map[string]any{"variant_id": "v-1", "quantity": 3}).StatusCode)
	require.Zero(t, reserved("i-1"))
	require.Zero(t, reserved("i-2"))
}
