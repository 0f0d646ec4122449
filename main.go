package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ai-mapper/backend/analyzer"
	"github.com/ai-mapper/backend/config"
	"github.com/ai-mapper/backend/logging"
	"github.com/ai-mapper/backend/monitoring"
	"github.com/ai-mapper/backend/stats"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	envFile := config.LoadEnv()

	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.New(logging.Config{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		File:       cfg.LogFile,
		MaxSizeMB:  50,
		MaxBackups: 5,
		MaxAgeDays: 30,
		Compress:   true,
	})
	defer func() { _ = logger.Sync() }()

	if envFile == "" {
		logger.Info("No .env file found, using environment variables")
	} else {
		logger.Info("Loaded environment file", zap.String("file", envFile))
	}

	gin.SetMode(cfg.GinMode)

	usage, err := stats.NewStorage(cfg.DataDir, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize usage storage: %w", err)
	}
	usage.Cleanup(cfg.RetainMonths)

	var prom *monitoring.Metrics
	if cfg.MetricsEnabled {
		prom = monitoring.New(monitoring.DefaultNamespace, logger)
	}

	opts := analyzer.Options{
		FetchTimeout:  cfg.FetchTimeout,
		SignalTimeout: cfg.SignalTimeout,
		Logger:        logger,
		Usage:         usage,
	}
	if prom != nil {
		opts.Recorder = prom
	}
	svc := analyzer.New(opts)
	defer svc.Close()

	srv := &server{
		cfg:      cfg,
		analyzer: svc,
		usage:    usage,
		metrics:  prom,
		logger:   logger,
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", zap.String("addr", "http://localhost:"+cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
	if err := usage.Shutdown(); err != nil {
		return fmt.Errorf("failed to save usage statistics: %w", err)
	}
	return nil
}
