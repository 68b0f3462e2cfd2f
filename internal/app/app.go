package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // драйвер "pgx" для goose
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	httpapi "github.com/shestoi/inventory-allocation/internal/api/http"
	"github.com/shestoi/inventory-allocation/internal/config"
	kafkaevent "github.com/shestoi/inventory-allocation/internal/event/kafka"
	"github.com/shestoi/inventory-allocation/internal/repository/memory"
	mongorepo "github.com/shestoi/inventory-allocation/internal/repository/mongo"
	"github.com/shestoi/inventory-allocation/internal/repository/postgres"
	redisrepo "github.com/shestoi/inventory-allocation/internal/repository/redis"
	"github.com/shestoi/inventory-allocation/internal/service"
	platformhealthgrpc "github.com/shestoi/inventory-allocation/platform/health/grpc"
	platformhealthhttp "github.com/shestoi/inventory-allocation/platform/health/http"
	platformlogging "github.com/shestoi/inventory-allocation/platform/logging"
	platformobservability "github.com/shestoi/inventory-allocation/platform/observability"
	platformshutdown "github.com/shestoi/inventory-allocation/platform/shutdown"
)

const readinessTimeout = 2 * time.Second

// App содержит все зависимости для запуска и корректного shutdown Inventory Service
type App struct {
	logger      *zap.Logger
	httpServer  *http.Server
	grpcServer  *grpc.Server
	listener    net.Listener
	consumer    *kafkaevent.OrderEventsConsumer
	health      *platformhealthgrpc.Health
	pings       []func(context.Context) error
	shutdownMgr *platformshutdown.Manager
	wg          sync.WaitGroup
}

// Build создаёт и настраивает все зависимости Inventory Service.
// При ошибке уже открытые ресурсы закрываются через shutdown manager.
func Build(cfg config.Config) (*App, error) {
	const op = "app.Build"

	logger, err := platformlogging.New(platformlogging.Config{
		ServiceName: "inventory",
		Env:         string(cfg.AppEnv),
		Level:       cfg.LogLevel,
	})
	if err != nil {
		return nil, err
	}

	cfg.Log(logger)
	logger = logger.With(zap.String("op", op))
	logger.Info("Building Inventory service",
		zap.String("http_addr", cfg.HTTPAddr),
		zap.String("grpc_addr", cfg.GRPCAddr),
		zap.Bool("ledger_enabled", cfg.LedgerEnabled),
		zap.Bool("kafka_enabled", cfg.Kafka.Enabled),
	)

	shutdownMgr := platformshutdown.New(cfg.ShutdownTimeout, logger)
	fail := func(err error) (*App, error) {
		shutdownMgr.Shutdown()
		return nil, err
	}

	// OpenTelemetry
	otelShutdown, err := platformobservability.Init(context.Background(), platformobservability.Config{
		Enabled:               cfg.OTelEnabled,
		OTLPEndpoint:          cfg.OTelEndpoint,
		SamplingRatio:         cfg.OTelSamplingRatio,
		ServiceName:           "inventory",
		DeploymentEnvironment: string(cfg.AppEnv),
	})
	if err != nil {
		return fail(err)
	}
	shutdownMgr.Add("otel", otelShutdown)

	// PostgreSQL: варианты, связи, локации
	logger.Info("Connecting to PostgreSQL")
	pool, err := pgxpool.New(context.Background(), cfg.PostgresDSN)
	if err != nil {
		return fail(err)
	}
	shutdownMgr.Add("postgres", platformshutdown.ClosePool(pool))

	if err := pool.Ping(context.Background()); err != nil {
		return fail(err)
	}
	logger.Info("PostgreSQL connection established")

	if err := applyMigrations(cfg.PostgresDSN, cfg.MigrationsDir); err != nil {
		return fail(err)
	}
	logger.Info("Database migrations applied successfully", zap.String("dir", cfg.MigrationsDir))

	pings := []func(context.Context) error{pool.Ping}

	locations := postgres.NewLocationRepository(pool)
	deps := service.Deps{
		Links:     postgres.NewLinkRepository(pool),
		Variants:  postgres.NewVariantRepository(pool),
		Channels:  locations,
		Locations: locations,
	}

	// MongoDB ledger включает учёт по локациям
	if cfg.LedgerEnabled {
		logger.Info("Connecting to MongoDB")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return fail(err)
		}
		shutdownMgr.Add("mongodb", platformshutdown.DisconnectMongo(client))

		if err := client.Ping(ctx, nil); err != nil {
			return fail(err)
		}
		logger.Info("MongoDB connection established")

		ledger := mongorepo.NewLedger(client, cfg.MongoDBName, logger)
		deps.Ledger = ledger
		pings = append(pings, ledger.Ping)
	}

	var (
		consumer  *kafkaevent.OrderEventsConsumer
		processed service.ProcessedEventsStore = memory.NewProcessedEventsStore()
	)
	if cfg.Kafka.Enabled {
		logger.Info("Connecting to Redis", zap.String("addr", cfg.RedisAddr))
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		shutdownMgr.Add("redis", platformshutdown.Close(redisClient))

		ctxRedis, cancelRedis := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelRedis()
		if err := redisClient.Ping(ctxRedis).Err(); err != nil {
			return fail(err)
		}
		logger.Info("Redis connection established")

		store := redisrepo.NewProcessedEventsStore(redisClient, logger)
		processed = store
		pings = append(pings, store.Ping)

		publisher := kafkaevent.NewReservationEventPublisher(logger, cfg.Kafka.Brokers, cfg.Kafka.ReservationEventsTopic)
		shutdownMgr.Add("kafka_publisher", platformshutdown.Close(publisher))
		deps.Publisher = publisher
	}

	inventoryService := service.NewInventoryService(deps, logger)
	logger.Info("Inventory service mode", zap.String("mode", inventoryService.Mode().String()))

	if cfg.Kafka.Enabled {
		dlq := kafkaevent.NewDLQPublisher(logger, cfg.Kafka.Brokers, cfg.Kafka.OrderEventsDLQTopic)
		shutdownMgr.Add("kafka_dlq_publisher", platformshutdown.Close(dlq))

		consumer = kafkaevent.NewOrderEventsConsumer(logger, kafkaevent.ConsumerConfig{
			Brokers:      cfg.Kafka.Brokers,
			GroupID:      cfg.Kafka.ConsumerGroupID,
			Topic:        cfg.Kafka.OrderEventsTopic,
			MaxAttempts:  cfg.Kafka.MaxRetryAttempts,
			BackoffBase:  cfg.Kafka.RetryBackoffBase,
			ProcessedTTL: cfg.ProcessedEventTTL,
		}, inventoryService, processed, dlq)
		shutdownMgr.Add("kafka_consumer", platformshutdown.Close(consumer))
	}

	// HTTP API
	handler := httpapi.NewHandler(inventoryService, logger)
	healthChecks := []platformhealthhttp.Check{{Name: "postgres", Ping: pool.Ping}}
	if ledger, ok := deps.Ledger.(*mongorepo.Ledger); ok {
		healthChecks = append(healthChecks, platformhealthhttp.Check{Name: "mongodb", Ping: ledger.Ping})
	}
	if store, ok := processed.(*redisrepo.ProcessedEventsStore); ok {
		healthChecks = append(healthChecks, platformhealthhttp.Check{Name: "redis", Ping: store.Ping})
	}
	router := httpapi.NewRouter(handler, platformhealthhttp.Handler(readinessTimeout, healthChecks...), logger)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// gRPC: health + reflection
	health := platformhealthgrpc.New(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	listener, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fail(err)
	}
	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(platformobservability.GRPCUnaryServerInterceptor("inventory")),
	)
	if cfg.EnableGRPCReflection {
		reflection.Register(grpcServer)
		logger.Info("gRPC reflection enabled")
	}
	health.Register(grpcServer)

	// Регистрируем shutdown функции: выполняются в обратном порядке
	shutdownMgr.Add("grpc_server", platformshutdown.ShutdownGRPCServer(grpcServer))
	shutdownMgr.Add("http_server", platformshutdown.ShutdownHTTPServer(httpServer))
	shutdownMgr.Add("health_readiness", platformshutdown.SetHealthNotServing(health))

	return &App{
		logger:      logger,
		httpServer:  httpServer,
		grpcServer:  grpcServer,
		listener:    listener,
		consumer:    consumer,
		health:      health,
		pings:       pings,
		shutdownMgr: shutdownMgr,
	}, nil
}

// applyMigrations применяет goose миграции через database/sql драйвер pgx
func applyMigrations(dsn, dir string) error {
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	return goose.Up(db, dir)
}

// Run запускает серверы и consumer и блокируется до сигнала shutdown
func (a *App) Run() error {
	defer platformlogging.Sync(a.logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.health.Probe(ctx, readinessTimeout, a.pings...); err != nil {
		a.logger.Warn("Dependencies are not ready, readiness stays NOT_SERVING", zap.Error(err))
	} else {
		a.logger.Info("Readiness status set to SERVING")
	}

	a.logger.Info("Starting Inventory service",
		zap.String("http_addr", a.httpServer.Addr),
		zap.String("grpc_addr", a.listener.Addr().String()),
	)

	a.wg.Add(2)
	go func() {
		defer a.wg.Done()
		if err := a.grpcServer.Serve(a.listener); err != nil {
			a.logger.Error("gRPC server error", zap.Error(err))
		}
	}()
	go func() {
		defer a.wg.Done()
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server error", zap.Error(err))
			cancel()
		}
	}()

	if a.consumer != nil {
		// регистрируется последней, поэтому выполняется первой: consumer перестаёт брать сообщения
		a.shutdownMgr.Add("kafka_consumer_stop", func(context.Context) error {
			cancel()
			return nil
		})

		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if err := a.consumer.Start(ctx); err != nil {
				a.logger.Error("Kafka consumer stopped", zap.Error(err))
			}
		}()
	}

	// Ожидаем сигнал (или падение HTTP сервера) и выполняем shutdown
	a.shutdownMgr.Wait(ctx)
	cancel()

	a.wg.Wait()
	a.logger.Info("Inventory service stopped")
	return nil
}
