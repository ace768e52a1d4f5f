/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the fertilizer stock server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load environment configuration (.env via godotenv)
  3. Initialize SQLite store
  4. Wire ledger, aggregator, monitor, report service
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides APP_PORT)
  -db      SQLite database path (overrides DB_PATH)
           Use ":memory:" for in-memory database
  -env     Path to an env file (default: .env in the working directory)

ENVIRONMENT:
  APP_PORT             HTTP server port (default: 8080)
  DB_PATH              SQLite database path (default: fertistock.db)
  LOW_STOCK_THRESHOLD  Low-stock alert threshold in units (default: 50)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/fertistock.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Run on different port
  ./server -port=3000

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/agrostock/fertistock/api"
	"github.com/agrostock/fertistock/config"
	"github.com/agrostock/fertistock/ledger"
	"github.com/agrostock/fertistock/logger"
	"github.com/agrostock/fertistock/notify"
	"github.com/agrostock/fertistock/report"
	"github.com/agrostock/fertistock/store/sqlite"
)

func main() {
	// Flags override environment configuration
	port := flag.String("port", "", "HTTP server port (overrides APP_PORT)")
	dbPath := flag.String("db", "", "SQLite database path (overrides DB_PATH)")
	envFile := flag.String("env", "", "path to env file")
	flag.Parse()

	log := logger.Must(logger.New())
	defer log.Sync()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Storage.DBPath = *dbPath
	}

	// Initialize store
	store, err := sqlite.New(cfg.Storage.DBPath)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	// Wire domain components
	stockLedger := ledger.NewLedger(store)
	aggregates := ledger.NewAggregator(store)
	reports := report.NewService(stockLedger)
	monitor := notify.NewMonitor(store, aggregates, cfg.Alerts.LowStockThreshold, logger.Named(log, "monitor"))

	handler := api.NewHandler(stockLedger, aggregates, reports, store, monitor, logger.Named(log, "api"))
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server starting",
			zap.String("addr", server.Addr),
			zap.String("db", cfg.Storage.DBPath),
			zap.String("lowStockThreshold", cfg.Alerts.LowStockThreshold.String()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
