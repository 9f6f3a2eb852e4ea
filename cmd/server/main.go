/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the bookkeeping engine server.
  Handles configuration, wiring, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse configuration from the environment
  2. Build the zap logger
  3. Open the SQLite event log
  4. Build the event registry and transaction registry once
  5. Register the ledger command chains
  6. Apply the chart of accounts seed, if configured
  7. Start the HTTP server with graceful shutdown

ENVIRONMENT:
  BOOKKEEPING_PORT               HTTP server port (default: 8080)
  BOOKKEEPING_DB_PATH            SQLite database path (default: bookkeeping.db)
                                 Use ":memory:" for an in-memory database
  BOOKKEEPING_LOG_LEVEL          debug, info, warn, error (default: info)
  BOOKKEEPING_CHART_OF_ACCOUNTS  Optional YAML chart of accounts seed
  BOOKKEEPING_CORS_ORIGINS       Comma separated allowed origins

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - ledger/handlers.go: Command registration
  - store/sqlite/sqlite.go: Event log
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/warp/bookkeeping-engine/api"
	"github.com/warp/bookkeeping-engine/factory"
	"github.com/warp/bookkeeping-engine/generic"
	"github.com/warp/bookkeeping-engine/ledger"
	"github.com/warp/bookkeeping-engine/purchaseorders"
	"github.com/warp/bookkeeping-engine/store/sqlite"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	logger, err := NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	// Initialize event log
	log, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer log.Close()

	// Registries are built once and passed explicitly
	events := generic.NewRegistry()
	ledger.RegisterEvents(events)
	purchaseorders.RegisterEvents(events)
	logger.Debug("event registry ready", zap.Strings("types", events.Types()))

	transactions := factory.NewTransactionRegistry()
	purchaseorders.RegisterTransaction(transactions)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := generic.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	dispatcher := generic.NewDispatcher()
	ledger.RegisterModule(dispatcher, ledger.Module{
		Log:      log,
		Registry: events,
		Logger:   logger.Named("commands"),
		Metrics:  metrics,
	})

	if cfg.ChartOfAccounts != "" {
		seed, err := api.LoadChartOfAccountsSeed(cfg.ChartOfAccounts)
		if err != nil {
			return err
		}
		added, err := api.Seed(context.Background(), dispatcher, seed, logger)
		if err != nil {
			return err
		}
		logger.Info("chart of accounts seeded", zap.Int("added", added), zap.String("file", cfg.ChartOfAccounts))
	}

	handler := api.NewHandler(dispatcher, ledger.Queries{Log: log, Registry: events}, transactions, logger.Named("http"))
	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins: cfg.CORSOrigins,
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port), zap.String("db", cfg.DBPath))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
