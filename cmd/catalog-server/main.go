// Package main provides the SGCI resource catalog server.
//
// This is the entrypoint for the catalog-server binary. Without arguments it
// serves the read-only catalog API; "catalog-server util <subcommand>" runs
// maintenance tasks such as loading resource data.
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

	"sgci.io/catalog/cmd/catalog-server/cmd"
	"sgci.io/catalog/internal/api"
	"sgci.io/catalog/internal/api/middleware"
	"sgci.io/catalog/internal/config"
	"sgci.io/catalog/internal/logging"
	"sgci.io/catalog/internal/metrics"
	"sgci.io/catalog/internal/service"
	"sgci.io/catalog/internal/store"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

const poolStatsInterval = 15 * time.Second

func main() {
	if len(os.Args) > 1 && os.Args[1] == "util" {
		if err := cmd.ExecuteUtil(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}
	defer logger.Sync()

	logger = logger.With(zap.String(logging.FieldInstanceID, cfg.InstanceID))
	logger.Info("starting catalog-server",
		zap.String("version", version),
		zap.String("listen_addr", cfg.ListenAddr),
		zap.String("database", cfg.DatabasePath),
		zap.String("config_file", cfg.ConfigFile()),
		zap.String(logging.FieldRecordPolicy, cfg.RecordPolicy),
		zap.Duration("store_timeout", cfg.StoreTimeout),
	)

	if err := metrics.Init(); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.DatabasePath, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	go st.ReportPoolStats(ctx, poolStatsInterval)

	var limiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 5*time.Minute)
		go limiter.Run(ctx.Done(), time.Minute)
	}

	svc := service.NewResourceService(st, logger,
		service.WithTimeout(cfg.StoreTimeout),
		service.WithRecordPolicy(cfg.Policy()),
	)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.SetupRouter(&api.RouterConfig{
		Service:      svc,
		Store:        st,
		Logger:       logger,
		InstanceID:   cfg.InstanceID,
		AllowOrigins: cfg.AllowOrigins,
		RateLimiter:  limiter,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
