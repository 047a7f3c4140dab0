package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mirrorops/storesync-worker/internal/config"
	"github.com/mirrorops/storesync-worker/internal/database"
	"github.com/mirrorops/storesync-worker/internal/metrics"
	"github.com/mirrorops/storesync-worker/internal/models"
	"github.com/mirrorops/storesync-worker/internal/repository"
	"github.com/mirrorops/storesync-worker/internal/service"
	"github.com/mirrorops/storesync-worker/internal/storefront"
	"github.com/mirrorops/storesync-worker/internal/watcher"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	log.Println("Database connected successfully")

	// Run migrations
	log.Println("Running database migrations...")
	if err := database.RunMigrations(sqlDB); err != nil {
		return err
	}
	log.Println("Migrations completed successfully")

	// Initialize repositories
	shopRepo := repository.NewShopRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	discountRepo := repository.NewDiscountRepository(db)
	runRepo := repository.NewSyncRunRepository(sqlDB)

	// Initialize storefront client and metrics
	client := storefront.NewClient()
	syncMetrics := metrics.NewSyncMetrics()

	// One engine per mirrored entity kind
	engineCfg := service.EngineConfig{
		WriteBatchSize:   cfg.WriteBatchSize,
		BatchConcurrency: cfg.BatchConcurrency,
		InterBatchPause:  time.Duration(cfg.InterBatchPauseMs) * time.Millisecond,
	}
	fanOut := service.NewFanOut(shopRepo,
		service.NewEngine[models.Product](service.NewProductAdapter(client, productRepo), runRepo, syncMetrics, engineCfg),
		service.NewEngine[models.Order](service.NewOrderAdapter(client, orderRepo), runRepo, syncMetrics, engineCfg),
		service.NewEngine[models.Discount](service.NewDiscountAdapter(client, discountRepo), runRepo, syncMetrics, engineCfg),
	)

	// Initialize watcher
	w := watcher.New(cfg, fanOut)

	// Expose Prometheus metrics
	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: promhttp.Handler()}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Metrics server error: %v", err)
		}
	}()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start watcher in goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- w.Start(ctx)
	}()

	// Wait for shutdown signal or error
	select {
	case <-sigChan:
		log.Println("Shutdown signal received")
		cancel()

		// Wait for graceful shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeout)*time.Second)
		defer shutdownCancel()

		_ = metricsSrv.Shutdown(shutdownCtx)

		select {
		case <-shutdownCtx.Done():
			log.Println("Shutdown timeout exceeded")
		case err := <-errChan:
			if err != nil && err != context.Canceled {
				log.Printf("Watcher error: %v", err)
			}
		}

		log.Println("Application stopped")
		return nil

	case err := <-errChan:
		return err
	}
}
