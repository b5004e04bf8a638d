package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"southern-night/internal/catalog"
	"southern-night/internal/config"
	"southern-night/internal/database"
	"southern-night/internal/logger"
	"southern-night/internal/messaging"
	"southern-night/internal/services/booking"
	"southern-night/internal/services/notification"
	"southern-night/internal/services/order"
	"southern-night/internal/services/site"
	"southern-night/internal/session"
)

const notificationBuffer = 256

func main() {
	var (
		mode       = flag.String("mode", "", "Service mode (site-service, notification-subscriber)")
		configPath = flag.String("config", "config.yaml", "Path to config file")
		port       = flag.Int("port", 0, "HTTP port (overrides server.port)")
		prefetch   = flag.Int("prefetch", 10, "RabbitMQ prefetch count")
	)
	flag.Parse()

	if *mode == "" {
		fmt.Fprintf(os.Stderr, "Error: --mode flag is required\n")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	log := logger.New(*mode)
	requestID := logger.GenerateRequestID()

	log.Info("service_started", fmt.Sprintf("Starting %s", *mode), requestID, map[string]interface{}{
		"mode":           *mode,
		"port":           cfg.Server.Port,
		"catalog_source": cfg.Catalog.Source,
		"rabbitmq":       cfg.RabbitMQ.Enabled,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "site-service":
		err = runSiteService(ctx, cfg, log)
	case "notification-subscriber":
		err = runNotificationSubscriber(ctx, cfg, log, *prefetch)
	default:
		log.Error("validation_failed", fmt.Sprintf("Unknown mode: %s", *mode), requestID, nil, nil)
		os.Exit(1)
	}
	if err != nil {
		log.Error("service_failed", fmt.Sprintf("%s failed", *mode), requestID, err, nil)
		os.Exit(1)
	}

	log.Info("service_stopped", "Service stopped gracefully", requestID, nil)
}

// runSiteService serves the menu, cart and checkout API
func runSiteService(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	requestID := logger.GenerateRequestID()
	checks := map[string]site.HealthCheck{}

	cat := catalog.Default()
	if cfg.Catalog.Source == config.CatalogSourcePostgres {
		db, err := database.New(ctx, cfg, log)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()

		if err := db.RunMigrations(ctx, database.Migrations, "migrations"); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		cat, err = catalog.LoadFromDB(ctx, db)
		if err != nil {
			return fmt.Errorf("failed to load menu: %w", err)
		}
		checks["database"] = db.Ping
	}

	log.Info("catalog_loaded", "Menu loaded", requestID, map[string]interface{}{
		"source":  cfg.Catalog.Source,
		"entries": cat.Len(),
	})

	// remote sinks are fed through a queue so a slow broker or Bot API
	// never holds a session lock
	var remote notification.Fanout

	if cfg.RabbitMQ.Enabled {
		conn, err := messaging.New(cfg, log)
		if err != nil {
			return fmt.Errorf("failed to initialize messaging: %w", err)
		}
		defer conn.Close()

		remote = append(remote, notification.NewPublisherSink(messaging.NewPublisher(conn, log)))
		checks["rabbitmq"] = func(ctx context.Context) error {
			if conn.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		}
	}

	if cfg.Telegram.Token != "" {
		tg, err := notification.NewTelegramSink(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			return fmt.Errorf("failed to initialize telegram: %w", err)
		}
		remote = append(remote, tg)
	}

	sinks := notification.Fanout{notification.NewLogSink(log)}
	if len(remote) > 0 {
		queue := notification.NewQueue(remote, notificationBuffer, log)
		defer queue.Close()
		sinks = append(sinks, queue)
	}

	sink := notification.SessionTagger{Next: sinks}
	store, err := session.NewStore(cfg.Server.SessionCapacity, &session.Services{
		Catalog:  cat,
		Sink:     sink,
		Orders:   order.NewService(sink, log),
		Bookings: booking.NewService(sink, log),
		Logger:   log,
	})
	if err != nil {
		return err
	}

	handler := site.NewHandler(cat, store, checks, cfg.Server.AllowedOrigins, log)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("service_started", fmt.Sprintf("Site service started on port %d", cfg.Server.Port), requestID, map[string]interface{}{
			"port":             cfg.Server.Port,
			"session_capacity": cfg.Server.SessionCapacity,
			"remote_sinks":     len(remote),
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
	case err := <-serverErr:
		return fmt.Errorf("http server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

// runNotificationSubscriber prints every notification published by the site
func runNotificationSubscriber(ctx context.Context, cfg *config.Config, log *logger.Logger, prefetch int) error {
	conn, err := messaging.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}
	defer conn.Close()

	consumer := messaging.NewConsumer(conn, log, messaging.NotificationsQueue, "notification-subscriber", prefetch)
	return notification.NewSubscriber(consumer, log).Start(ctx)
}
