package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"restaurant-floor-backend/config"
	"restaurant-floor-backend/internal/api"
	"restaurant-floor-backend/internal/audit"
	"restaurant-floor-backend/internal/catalog"
	"restaurant-floor-backend/internal/db"
	"restaurant-floor-backend/internal/lifecycle"
	"restaurant-floor-backend/internal/logging"
	"restaurant-floor-backend/internal/notification"
	"restaurant-floor-backend/internal/reconcile"
	"restaurant-floor-backend/internal/store"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()
	logger.Info("configuration loaded", zap.String("path", configPath))

	gormDB, err := db.Init(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	appStore := store.NewGormStore(gormDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var relay notification.Relay
	if cfg.Relay.Enabled {
		amqpRelay, err := notification.DialAMQP(cfg.Relay.URL, cfg.Relay.Exchange, logger)
		if err != nil {
			logger.Fatal("failed to connect event relay", zap.Error(err))
		}
		relay = amqpRelay
		logger.Info("event relay connected", zap.String("exchange", cfg.Relay.Exchange))
	} else {
		logger.Warn("event relay disabled, events are only logged")
		relay = notification.NewLogRelay(logger)
	}
	defer relay.Close()

	// Push delivery is optional; without VAPID keys item-ready events still reach the relay.
	var (
		pusher         notification.Dispatcher
		webpushOptions *webpush.Options
	)
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.Queue, appStore, webpushOptions, logger)
		pool.Start(ctx)
		pusher = pool
	} else {
		logger.Warn("VAPID keys are not configured, push notifications disabled")
	}

	hub := notification.NewHub(relay, pusher, cfg.Relay.PublishTimeout, logger)
	recorder := audit.NewRecorder(appStore, logger)
	orders := lifecycle.NewService(appStore, recorder, hub, cfg.Billing.TaxRate, logger)
	days := reconcile.NewService(appStore, recorder, cfg.Business.Location, logger)

	go catalog.NewPoller(cfg.Catalog, appStore, logger).Run(ctx)

	router := api.NewRouter(api.Deps{
		Orders:     orders,
		Days:       days,
		Audit:      recorder,
		Store:      appStore,
		WebPush:    webpushOptions,
		TipPresets: cfg.Billing.TipPresets,
		Log:        logger,
	}, cfg)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server ListenAndServe", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info("shutdown signal received, stopping services")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server Shutdown", zap.Error(err))
	}
	cancel()
	hub.Wait()
	recorder.Wait()

	logger.Info("server gracefully stopped")
}
