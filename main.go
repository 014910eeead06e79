package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/observability"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/internal/upload"
	"storefront/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

const (
	connectTimeout  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	app, cleanup, err := NewApp(ctx, cfg, log)
	cancel()
	if err != nil {
		log.Error("failed to build app", "err", err)
		os.Exit(1)
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("starting server", "addr", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver)
		if err := app.Listen(cfg.Port); err != nil {
			log.Error("server failed", "err", err)
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	log.Info("shutting down server")

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Error("error during fiber shutdown", "err", err)
	}

	ctx, cancel = context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	cleanup(ctx)

	log.Info("server gracefully stopped")
}

// NewApp wires the store, image backend, broker, services and routes. The
// returned cleanup releases the store and broker connections.
func NewApp(ctx context.Context, cfg config.Config, log *slog.Logger) (*fiber.App, func(context.Context), error) {
	store, err := repositories.Open(ctx, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	closers := []func(context.Context){
		func(ctx context.Context) {
			if err := store.Close(ctx); err != nil {
				log.Error("failed to close store", "err", err)
			}
		},
	}
	cleanup := func(ctx context.Context) {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i](ctx)
		}
	}

	images, err := upload.NewImageStore(ctx, cfg)
	if err != nil {
		cleanup(ctx)
		return nil, nil, fmt.Errorf("image store: %w", err)
	}
	uploader := upload.NewUploader(upload.Policy{
		MaxBytes:     cfg.MaxUploadBytes,
		AllowedTypes: upload.DefaultAllowedTypes,
	}, images, log)

	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.OrderEventsQueue}, log)
		if err != nil {
			cleanup(ctx)
			return nil, nil, err
		}
		publisher = mq
		closers = append(closers, func(context.Context) {
			if err := mq.Close(); err != nil {
				log.Error("failed to close rabbitmq client", "err", err)
			}
		})
	} else {
		log.Info("RABBITMQ_URL not set, order events are not published")
	}

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics()
	}

	authService := services.NewAuthService(store.Users, cfg.JWTSecret, cfg.TokenTTL, log)
	productService := services.NewProductService(store.Products, log)
	orderService := services.NewOrderService(store.Orders, publisher, log)

	opts := handlers.Options{
		Logger:         log,
		Metrics:        metrics,
		Paginator:      services.Paginator{DefaultLimit: cfg.DefaultPageLimit, MaxLimit: cfg.MaxPageLimit},
		RequestTimeout: cfg.RequestTimeout,
		UploadField:    cfg.UploadField,
	}

	app := fiber.New(fiber.Config{
		AppName:      "storefront",
		ErrorHandler: handlers.ErrorHandler(log),
		// room for the form fields around a maximum size image
		BodyLimit: int(cfg.MaxUploadBytes) + 1<<20,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(metrics.Middleware())

	if cfg.ImageBackend != config.ImageBackendS3 {
		app.Static(cfg.UploadURLPrefix, cfg.UploadDir)
	}

	handlers.NewHealthHandler(store, opts).RegisterRoutes(app)
	if metrics != nil {
		app.Get("/metrics", metrics.Handler())
	}

	api := app.Group("/api")
	protect := middleware.Optional(cfg.AuthRequireWrites, authService, log)

	handlers.NewAuthHandler(authService, opts).RegisterRoutes(api)
	handlers.NewProductHandler(productService, uploader, opts).RegisterRoutes(api, protect)
	handlers.NewOrderHandler(orderService, opts).RegisterRoutes(api, protect)

	return app, cleanup, nil
}
