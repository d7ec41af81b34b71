package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/splitbook/backend/internal/auth"
	"github.com/splitbook/backend/internal/config"
	"github.com/splitbook/backend/internal/handlers"
	"github.com/splitbook/backend/internal/notify"
	"github.com/splitbook/backend/internal/service"
	"github.com/splitbook/backend/internal/storage/sqlite"
	"github.com/splitbook/backend/pkg/logging"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Log.Level)

	if err := run(cfg); err != nil {
		slog.Error("Server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()
	slog.Info("Database ready", "path", cfg.Database.Path)

	var publisher notify.Publisher
	if cfg.AMQP.URL != "" {
		amqpPublisher, err := notify.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue)
		if err != nil {
			return fmt.Errorf("failed to connect to AMQP broker: %w", err)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
		slog.Info("AMQP publisher connected", "exchange", cfg.AMQP.Exchange, "queue", cfg.AMQP.Queue)
	}
	sink := notify.NewDispatcher(store, publisher)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)
	reconciler := service.NewReconciler(store)

	h := handlers.Handlers{
		Auth:          handlers.NewAuthHandler(service.NewUserService(store, authenticator, jwtManager, reconciler)),
		Groups:        handlers.NewGroupHandler(service.NewGroupService(store, sink)),
		Records:       handlers.NewRecordHandler(service.NewLedgerService(store, sink)),
		Notifications: handlers.NewNotificationHandler(service.NewNotificationService(store)),
		Categories:    handlers.NewCategoryHandler(service.NewCategoryService(store)),
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handlers.NewRouter(h, jwtManager, cfg.Server.CORSOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		slog.Info("Shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
