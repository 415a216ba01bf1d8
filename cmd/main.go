package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"glucosedash/internal/adapters"
	"glucosedash/internal/api"
	"glucosedash/internal/config"

	"go.uber.org/zap"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger, _ := zap.NewProduction()
	defer logger.Sync()
	log := logger.Sugar()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalw("failed to load config", "error", err)
	}

	source, closeSource, err := adapters.NewReadingSource(ctx, log, cfg)
	if err != nil {
		log.Fatalw("failed to set up reading source", "error", err)
	}
	defer closeSource(context.Background())

	mainAPI := api.NewAPI(log, source, cfg.Analysis, nil)

	// Start server with context-aware logic
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      mainAPI.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Listen for syscall signals for process to interrupt/quit
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit")
			}
		}()

		// Trigger graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Fatal(err)
		}
		cancel()
	}()

	log.Infow("starting server", "port", cfg.Server.Port, "source", cfg.Source.Type)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}

	// Wait for server context to be stopped
	<-ctx.Done()
}
