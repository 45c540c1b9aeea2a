package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"backtest-results-api/internal/catalog"
	"backtest-results-api/internal/observability"
	"backtest-results-api/internal/storage"
)

// Importer loads export files into the trade and market stores.
type Importer struct {
	trades  storage.TradeStore
	markets storage.MarketStore
	catalog *catalog.Catalog
	logger  *log.Logger
}

// ImportResult summarizes an ImportDir run.
type ImportResult struct {
	Files   int
	Rows    int
	Skipped int // series already loaded
	Failed  int
}

// NewImporter creates an importer. A nil logger discards output.
func NewImporter(trades storage.TradeStore, markets storage.MarketStore, cat *catalog.Catalog, logger *log.Logger) *Importer {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Importer{
		trades:  trades,
		markets: markets,
		catalog: cat,
		logger:  logger,
	}
}

// ImportFile loads one export. A series that already holds rows is refused
// with storage.ErrDuplicateKey since stores are append-only.
func (im *Importer) ImportFile(ctx context.Context, f File) (int, error) {
	n, err := im.importFile(ctx, f)
	observability.RecordImport(string(f.Kind), n, err)
	return n, err
}

func (im *Importer) importFile(ctx context.Context, f File) (int, error) {
	if _, ok := im.catalog.Strategy(f.Series.StrategyID); !ok || !im.catalog.HasPeriod(f.Series.PeriodID) {
		return 0, fmt.Errorf("%s: series %s not in catalog: %w", f.Path, f.Series, ErrInvalidFile)
	}

	loaded, err := im.hasRows(ctx, f)
	if err != nil {
		return 0, err
	}
	if loaded {
		return 0, fmt.Errorf("%s: series %s already loaded: %w", f.Path, f.Series, storage.ErrDuplicateKey)
	}

	file, err := os.Open(f.Path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	switch f.Kind {
	case KindTrades:
		trades, err := LoadTrades(file, f.Series)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", f.Path, err)
		}
		if err := im.trades.InsertBulk(ctx, trades); err != nil {
			return 0, fmt.Errorf("%s: insert trades: %w", f.Path, err)
		}
		return len(trades), nil
	case KindData:
		bars, err := LoadMarketBars(file, f.Series)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", f.Path, err)
		}
		if err := im.markets.InsertBulk(ctx, bars); err != nil {
			return 0, fmt.Errorf("%s: insert market bars: %w", f.Path, err)
		}
		return len(bars), nil
	default:
		return 0, fmt.Errorf("%s: unknown kind %q: %w", f.Path, f.Kind, ErrInvalidFile)
	}
}

func (im *Importer) hasRows(ctx context.Context, f File) (bool, error) {
	var err error
	switch f.Kind {
	case KindTrades:
		_, err = im.trades.FindFirst(ctx, storage.TradeQuery{Series: f.Series})
	case KindData:
		_, err = im.markets.FindFirst(ctx, storage.MarketQuery{Series: f.Series})
	default:
		return false, nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check %s: %w", f.Series, err)
	}
	return true, nil
}

// ImportDir imports every export below root matching pattern. Already
// loaded series are skipped. Other failures are logged, counted and
// returned joined once all files have been tried.
func (im *Importer) ImportDir(ctx context.Context, root, pattern string) (ImportResult, error) {
	var result ImportResult

	files, err := DiscoverFiles(root, pattern)
	if err != nil {
		return result, err
	}

	var errs []error
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		n, err := im.ImportFile(ctx, f)
		switch {
		case errors.Is(err, storage.ErrDuplicateKey):
			im.logger.Printf("Skipping %s: %v", f.Path, err)
			result.Skipped++
		case err != nil:
			im.logger.Printf("Import failed: %v", err)
			result.Failed++
			errs = append(errs, err)
		default:
			im.logger.Printf("Imported %d %s rows for %s from %s", n, f.Kind, f.Series, f.Path)
			result.Files++
			result.Rows += n
		}
	}

	return result, errors.Join(errs...)
}
