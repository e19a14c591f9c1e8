package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"reschedule-service/internal/config"
	"reschedule-service/internal/events"
	"reschedule-service/internal/http-server/router"
	"reschedule-service/internal/identity"
	"reschedule-service/internal/jobs"
	"reschedule-service/internal/lock"
	svc "reschedule-service/internal/service"
	"reschedule-service/internal/storage/postgres"
	slogpretty "reschedule-service/pkg/handlers/slogPretty"
	"reschedule-service/pkg/sl"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {

	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting API", slog.String("env", cfg.Env))
	log.Debug("Debug messages are enabled")

	storage, err := postgres.New(cfg.StoragePath)
	if err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	if err := storage.Migrate(context.Background()); err != nil {
		log.Error("Failed to apply migrations", sl.Err(err))
		os.Exit(1)
	}

	locker, err := lock.NewRedisLock(cfg.RedisAddr)
	if err != nil {
		log.Error("Failed to init redis lock", sl.Err(err))
		os.Exit(1)
	}

	publisher := setupPublisher(cfg.AMQPURL, log)

	service := svc.NewService(storage, locker, publisher, log, svc.WithLockTTL(cfg.LockTTL))

	expirer, err := jobs.NewExpirer(service, cfg.Expirer.Schedule, log)
	if err != nil {
		log.Error("Failed to init expirer", sl.Err(err))
		os.Exit(1)
	}
	expirer.Start()

	auth := identity.NewAuthenticator(cfg.JWTSecret)

	serv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router.New(log, service, auth),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErrCh := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", slog.String("addr", cfg.Address))
		if err := serv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			log.Error("HTTP server stopped unexpectedly", sl.Err(err))
		} else {
			log.Info("HTTP server stopped gracefully")
		}
	}

	shutdownTimeout := cfg.HTTPServer.ShutdownTimeout

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down HTTP server", slog.String("timeout", shutdownTimeout.String()))

	if err := serv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", sl.Err(err))
	} else {
		log.Info("Server shutdown complete")
	}

	expirer.Stop(ctx)

	if err := publisher.Close(); err != nil {
		log.Error("Failed to close publisher", sl.Err(err))
	}

	if err := storage.Close(); err != nil {
		log.Error("Failed to close storage", sl.Err(err))
	} else {
		log.Info("Storage closed")
	}

	if err := locker.Close(); err != nil {
		log.Error("Failed to close locker", sl.Err(err))
	} else {
		log.Info("Locker closed")
	}

	log.Info("Shutdown finished, server stopped")

}

// setupPublisher connects to RabbitMQ behind a circuit breaker. Without a
// broker URL, or when the broker is down at start-up, events are dropped.
func setupPublisher(url string, log *slog.Logger) events.Publisher {
	if url == "" {
		log.Warn("AMQP url is empty, events will not be published")
		return events.NewNoopPublisher(log)
	}

	rabbit, err := events.NewRabbitMQPublisher(url, log)
	if err != nil {
		log.Error("Failed to connect to RabbitMQ, events will not be published", sl.Err(err))
		return events.NewNoopPublisher(log)
	}

	return events.NewBreakerPublisher(rabbit, events.DefaultBreakerSettings(), log)
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
