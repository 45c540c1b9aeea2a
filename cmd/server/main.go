// Package main serves the backtest results API:
// - Analytics over stored trade series (/api/{strategy}/{period}/...)
// - Market data behind each strategy (/api/data/{strategy}/{period})
// - Health and Prometheus metrics
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"backtest-results-api/internal/api"
	"backtest-results-api/internal/app"
	"backtest-results-api/internal/ingest"
	"backtest-results-api/internal/reporting"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Load .env file if exists
	if err := app.LoadEnv(); err != nil {
		logger.Fatalf("Failed to load environment: %v", err)
	}

	// Parse flags (env vars as defaults)
	addr := flag.String("addr", ":"+app.EnvOr("PORT", "8080"), "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (optional, stores market bars)")
	useMemory := flag.Bool("use-memory", app.EnvBool("USE_MEMORY", false), "Use in-memory storage instead of PostgreSQL")
	seedDir := flag.String("seed-dir", os.Getenv("SEED_DIR"), "Directory of CSV exports to import at startup")
	catalogPath := flag.String("catalog", os.Getenv("CATALOG_PATH"), "Strategy catalog YAML (built-in catalog if empty)")
	corsOrigins := flag.String("cors-origins", app.EnvOr("CORS_ORIGINS", "http://localhost:3000"), "Comma-separated allowed CORS origins, * for any")
	migrate := flag.Bool("migrate", false, "Apply database migrations before serving")

	flag.Parse()

	// Create context with cancellation
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cat, err := app.LoadCatalog(*catalogPath)
	if err != nil {
		logger.Fatalf("Failed to load catalog: %v", err)
	}

	// Create stores
	stores, cleanup, err := app.OpenStores(ctx, app.StoreConfig{
		PostgresDSN:   *postgresDSN,
		ClickhouseDSN: *clickhouseDSN,
		UseMemory:     *useMemory,
		Migrate:       *migrate,
	}, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()
	logger.Printf("Using %s storage", stores.Backend)

	// Seed from CSV exports
	if *seedDir != "" {
		importer := ingest.NewImporter(stores.Trades, stores.Markets, cat,
			log.New(os.Stdout, "[ingest] ", log.LstdFlags|log.Lshortfile))
		result, err := importer.ImportDir(ctx, *seedDir, ingest.DefaultPattern)
		if err != nil {
			logger.Printf("Seeding finished with errors: %v", err)
		}
		logger.Printf("Seeded %d files (%d rows), skipped %d, failed %d",
			result.Files, result.Rows, result.Skipped, result.Failed)
	}

	svc := reporting.NewService(stores.Trades, stores.Markets, cat)
	handler := api.NewServer(svc, api.Options{
		CORSOrigins: splitList(*corsOrigins),
		Logger:      log.New(os.Stdout, "[api] ", log.LstdFlags|log.Lshortfile),
	}).Handler()

	srv := &http.Server{
		Addr:              *addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start HTTP server
	errCh := make(chan error, 1)
	go func() {
		logger.Printf("Starting HTTP server on %s", *addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Println("Received shutdown signal, initiating graceful shutdown...")
	case err := <-errCh:
		if err != nil {
			logger.Fatalf("HTTP server error: %v", err)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("Graceful shutdown timed out after %v: %v", shutdownTimeout, err)
	}

	logger.Println("Shutdown complete")
}

// splitList splits a comma-separated flag value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
