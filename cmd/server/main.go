package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/M1noa/DocuCheat/internal/answer"
	"github.com/M1noa/DocuCheat/internal/api"
	"github.com/M1noa/DocuCheat/internal/config"
	"github.com/M1noa/DocuCheat/internal/pipeline"
	"github.com/M1noa/DocuCheat/internal/ws"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	client := answer.NewClient(cfg.AnswerAPIURL, cfg.AnswerAPIKey, cfg.AnswerModel, cfg.RequestTimeout)
	client.Stats = answer.NewCallStats(time.Hour)

	// Initialize event fan-out and pipeline.
	hub := ws.NewHub(log)
	orch := pipeline.NewOrchestrator(cfg, client, hub, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	wsHandler := ws.NewHandler(hub, cfg.APIKey, log)
	srv := api.NewServer(orch, client, wsHandler, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		client.Close()
	}()

	log.Info("starting docucheat", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
