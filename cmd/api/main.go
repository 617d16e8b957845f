package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/events"
	"storefront/internal/httpserver"
	contactrepo "storefront/internal/repository/contact"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
	catalogsvc "storefront/internal/service/catalog"
	checkoutsvc "storefront/internal/service/checkout"
	contactsvc "storefront/internal/service/contact"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	productCache := cache.New(ctx, cfg.RedisAddr)
	defer productCache.Close()
	if productCache == nil && cfg.RedisAddr != "" {
		logger.Printf("redis at %s unreachable, continuing without cache", cfg.RedisAddr)
	}

	producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	producer.Start(ctx)

	productRepo := productrepo.NewPostgres(dbpool, logger)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	contactRepo := contactrepo.NewPostgres(dbpool, logger)

	catalogService := catalogsvc.New(productRepo, productCache)
	contactService := contactsvc.New(contactRepo)

	var publisher checkoutsvc.EventPublisher
	if producer != nil {
		publisher = producer
	}
	checkoutService := checkoutsvc.New(productRepo, orderRepo, publisher, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Catalog:        catalogService,
		Checkout:       checkoutService,
		Contact:        contactService,
		Orders:         orderRepo,
		Uploader:       httpserver.NewUploader(cfg.CloudinaryCloudName, cfg.CloudinaryUploadPreset),
		AdminTokenHash: cfg.AdminTokenHash,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}

	cancel()
	producer.WaitClosed()
}
