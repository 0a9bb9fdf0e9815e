package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/davargas/facturex/internal/api"
	"github.com/davargas/facturex/internal/chart"
	"github.com/davargas/facturex/internal/config"
	"github.com/davargas/facturex/internal/document"
	"github.com/davargas/facturex/internal/export"
	"github.com/davargas/facturex/internal/invoiceapi"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize clients and the document pipeline.
	dataClient := invoiceapi.NewClient(cfg.DataAPIURL, cfg.DataAPIKey)
	assembler := document.NewAssembler(&chart.Rasterizer{}, log)

	ctrl := export.NewController(dataClient, assembler, &export.LogNotifier{Log: log}, log, export.Options{
		OutputDir:   cfg.OutputDir,
		MaxAttempts: cfg.MaxAttempts,
		JobTTL:      cfg.JobTTL,
		ChartWidth:  cfg.ChartWidth,
		ChartHeight: cfg.ChartHeight,
	})
	ctrl.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(ctrl, log, cfg)

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

		ctrl.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting facturex", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
