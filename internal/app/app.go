// Package app wires configuration, catalog and stores for the binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"backtest-results-api/internal/catalog"
	"backtest-results-api/internal/storage"
	chstore "backtest-results-api/internal/storage/clickhouse"
	"backtest-results-api/internal/storage/memory"
	"backtest-results-api/internal/storage/migrations"
	pgstore "backtest-results-api/internal/storage/postgres"
)

// LoadEnv loads .env files into the environment without overriding
// variables that are already set. Missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// EnvOr returns the value of key, or def when unset or empty.
func EnvOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// EnvBool parses key as a bool, or returns def when unset or unparsable.
func EnvBool(key string, def bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return b
}

// LoadCatalog reads the catalog at path, or returns the built-in one.
func LoadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(path)
}

// StoreConfig selects the storage backend.
type StoreConfig struct {
	PostgresDSN   string
	ClickhouseDSN string // optional; market bars go to ClickHouse when set
	UseMemory     bool
	Migrate       bool // apply embedded migrations before use
}

// Stores holds the opened stores.
type Stores struct {
	Trades  storage.TradeStore
	Markets storage.MarketStore
	Backend string
}

// OpenStores opens the configured backend. The returned cleanup closes
// every connection that was opened.
func OpenStores(ctx context.Context, cfg StoreConfig, logger *log.Logger) (*Stores, func(), error) {
	if cfg.UseMemory {
		return &Stores{
			Trades:  memory.NewTradeStore(),
			Markets: memory.NewMarketStore(),
			Backend: "memory",
		}, func() {}, nil
	}

	if cfg.PostgresDSN == "" {
		return nil, nil, errors.New("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if cfg.Migrate {
		applied, err := migrations.RunPostgresMigrations(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		logger.Printf("PostgreSQL migrations applied: %v", applied)
	}

	stores := &Stores{
		Trades:  pgstore.NewTradeStore(pool),
		Markets: pgstore.NewMarketStore(pool),
		Backend: "postgres",
	}
	if cfg.ClickhouseDSN == "" {
		return stores, pool.Close, nil
	}

	// ClickHouse
	var chConn *chstore.Conn
	if cfg.Migrate {
		chConn, err = migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err == nil {
			logger.Println("ClickHouse migrations applied")
		}
	} else {
		chConn, err = chstore.NewConn(ctx, cfg.ClickhouseDSN)
	}
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}

	stores.Markets = chstore.NewMarketStore(chConn)
	stores.Backend = "postgres+clickhouse"

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}
	return stores, cleanup, nil
}
