package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/content-alchemist/internal/bootstrap"
	"github.com/kirillkom/content-alchemist/internal/config"
	"github.com/kirillkom/content-alchemist/internal/observability/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.NewJSONLogger("alchemistd", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      app.Router.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	watchErr := make(chan error, 1)
	go func() { watchErr <- app.Watcher.Run(ctx) }()

	logger.Info("watching", "drop_dir", cfg.DropDir, "archive_root", cfg.ArchiveRoot, "workers", cfg.Workers)
	app.Dispatcher.Run(ctx)

	// Dispatcher returns once the watcher closes its stream, either on
	// shutdown or on a fatal watch failure.
	if err := <-watchErr; err != nil {
		log.Fatalf("watcher error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api_shutdown_error", "error", err)
	}
}
