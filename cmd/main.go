package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/YelzhanWeb/restaurant/internal/adapter/logger"
	"github.com/YelzhanWeb/restaurant/internal/adapter/memory"
	"github.com/YelzhanWeb/restaurant/internal/adapter/postgres"
	"github.com/YelzhanWeb/restaurant/internal/adapter/rabbitmq"
	"github.com/YelzhanWeb/restaurant/internal/app/catalog"
	"github.com/YelzhanWeb/restaurant/internal/app/floorplan"
	"github.com/YelzhanWeb/restaurant/internal/app/kitchen"
	"github.com/YelzhanWeb/restaurant/internal/app/ledger"
	"github.com/YelzhanWeb/restaurant/internal/app/sales"
	"github.com/YelzhanWeb/restaurant/internal/config"
	"github.com/YelzhanWeb/restaurant/internal/interfaces"

	amqpAdapter "github.com/YelzhanWeb/restaurant/internal/adapter/amqp"
	httpAdapter "github.com/YelzhanWeb/restaurant/internal/adapter/http"

	"github.com/gin-gonic/gin"
)

func main() {
	mode := flag.String("mode", "", "Service mode: floor-service, kitchen-worker, notification-subscriber, migrate")
	configPath := flag.String("config", "config.yaml", "Path to the YAML config file")
	port := flag.Int("port", 0, "HTTP port (overrides server.port)")
	prefetch := flag.Int("prefetch", 0, "RabbitMQ prefetch count (overrides kitchen.prefetch)")
	prepTime := flag.Duration("prep-time", 0, "Preparation time per order (overrides kitchen.prep_time)")
	flag.Parse()

	if *mode == "" {
		log.Fatal("--mode flag is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *prefetch > 0 {
		cfg.Kitchen.Prefetch = *prefetch
	}
	if *prepTime > 0 {
		cfg.Kitchen.PrepTime = *prepTime
	}
	if err := cfg.ValidateMode(*mode); err != nil {
		log.Fatalf("Invalid config for %s: %v", *mode, err)
	}

	lgr := logger.New(*mode, logger.WithLevel(cfg.Log.Level))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "floor-service":
		err = runFloorService(ctx, cfg, lgr)
	case "kitchen-worker":
		err = runKitchenWorker(ctx, cfg, lgr)
	case "notification-subscriber":
		err = runNotificationSubscriber(ctx, cfg, lgr)
	case "migrate":
		err = runMigrate(ctx, cfg, lgr)
	default:
		log.Fatalf("Invalid mode: %s", *mode)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		lgr.Error("service_failed", "Service stopped with error", "runtime", nil, err)
		os.Exit(1)
	}
}

// openStore returns the configured store and a cleanup func.
func openStore(ctx context.Context, cfg *config.Config, lgr logger.Logger) (interfaces.Store, func(), error) {
	if cfg.Storage == config.StorageMemory {
		lgr.Info("store_ready", "Using in-memory store", "startup", nil)
		return memory.NewStore(), func() {}, nil
	}

	db, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	lgr.Info("db_connected", "Connected to PostgreSQL database", "startup", map[string]interface{}{
		"host": cfg.Database.Host,
		"db":   cfg.Database.Database,
	})

	if err := postgres.Migrate(ctx, db, lgr); err != nil {
		db.Close()
		return nil, nil, err
	}
	return postgres.NewStore(db), db.Close, nil
}

// openPublisher connects to RabbitMQ when messaging is enabled.
func openPublisher(cfg *config.Config, lgr logger.Logger) (interfaces.EventPublisher, func(), error) {
	if !cfg.RabbitMQ.Enabled {
		lgr.Info("messaging_disabled", "RabbitMQ disabled, events are dropped", "startup", nil)
		return interfaces.NopPublisher{}, func() {}, nil
	}

	mqConn, err := rabbitmq.Connect(cfg)
	if err != nil {
		return nil, nil, err
	}
	lgr.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", map[string]interface{}{
		"host": cfg.RabbitMQ.Host,
	})
	return rabbitmq.NewPublisher(mqConn), func() { _ = mqConn.Close() }, nil
}

func newLedger(cfg *config.Config, store interfaces.Store, publisher interfaces.EventPublisher, lgr logger.Logger) *ledger.Service {
	return ledger.NewService(store, lgr,
		ledger.WithPublisher(publisher),
		ledger.WithStrictTransitions(cfg.Ledger.StrictTransitions),
	)
}

func runFloorService(ctx context.Context, cfg *config.Config, lgr logger.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg, lgr)
	if err != nil {
		return err
	}
	defer closeStore()

	publisher, closePublisher, err := openPublisher(cfg, lgr)
	if err != nil {
		return err
	}
	defer closePublisher()

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := httpAdapter.NewRouter(httpAdapter.Services{
		Catalog:   catalog.NewService(store, lgr),
		FloorPlan: floorplan.NewService(store, lgr),
		Ledger:    newLedger(cfg, store, publisher, lgr),
		Sales:     sales.NewService(store, lgr, loc),
		Store:     store,
	}, httpAdapter.RouterConfig{
		CORSOrigins: cfg.Server.CORSOrigins,
		Location:    loc,
	}, lgr)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lgr.Info("service_started", fmt.Sprintf("Floor Service started on port %d", cfg.Server.Port), "startup", map[string]interface{}{
		"port":               cfg.Server.Port,
		"storage":            cfg.Storage,
		"strict_transitions": cfg.Ledger.StrictTransitions,
		"timezone":           loc.String(),
	})

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	lgr.Info("shutdown_initiated", "Shutting down Floor Service", "shutdown", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func runKitchenWorker(ctx context.Context, cfg *config.Config, lgr logger.Logger) error {
	store, closeStore, err := openStore(ctx, cfg, lgr)
	if err != nil {
		return err
	}
	defer closeStore()

	mqConn, err := rabbitmq.Connect(cfg)
	if err != nil {
		return err
	}
	defer mqConn.Close()

	publisher := rabbitmq.NewPublisher(mqConn)
	consumer := rabbitmq.NewConsumer(mqConn, cfg.Kitchen.Prefetch, lgr)

	kitchenService := kitchen.NewService(newLedger(cfg, store, publisher, lgr), lgr, cfg.Kitchen.WorkerName, cfg.Kitchen.PrepTime)
	orderHandler := amqpAdapter.NewOrderHandler(kitchenService, lgr)

	lgr.Info("service_started", fmt.Sprintf("Kitchen Worker %s started", cfg.Kitchen.WorkerName), "startup", map[string]interface{}{
		"worker_name": cfg.Kitchen.WorkerName,
		"prefetch":    cfg.Kitchen.Prefetch,
		"prep_time":   cfg.Kitchen.PrepTime.String(),
	})

	err = consumer.ConsumeOrders(ctx, orderHandler.HandleOrder)
	lgr.Info("graceful_shutdown", "Shutting down Kitchen Worker", "shutdown", nil)
	return err
}

func runNotificationSubscriber(ctx context.Context, cfg *config.Config, lgr logger.Logger) error {
	mqConn, err := rabbitmq.Connect(cfg)
	if err != nil {
		return err
	}
	defer mqConn.Close()

	consumer := rabbitmq.NewConsumer(mqConn, 1, lgr)
	notificationHandler := amqpAdapter.NewNotificationHandler(lgr)

	lgr.Info("service_started", "Notification Subscriber started", "startup", nil)

	err = consumer.ConsumeNotifications(ctx, notificationHandler.HandleNotification)
	lgr.Info("shutdown_initiated", "Shutting down Notification Subscriber", "shutdown", nil)
	return err
}

func runMigrate(ctx context.Context, cfg *config.Config, lgr logger.Logger) error {
	db, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db, lgr); err != nil {
		return err
	}
	lgr.Info("migrations_done", "Schema is up to date", "startup", nil)
	return nil
}
