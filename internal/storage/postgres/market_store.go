package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"backtest-results-api/internal/domain"
	"backtest-results-api/internal/observability"
	"backtest-results-api/internal/storage"
)

// MarketStore implements storage.MarketStore using PostgreSQL.
type MarketStore struct {
	pool *Pool
}

// NewMarketStore creates a new MarketStore.
func NewMarketStore(pool *Pool) *MarketStore {
	return &MarketStore{pool: pool}
}

// Compile-time interface check.
var _ storage.MarketStore = (*MarketStore)(nil)

const barColumns = `
	seq, strategy_id, period_id, bar_at, date_text, time_text,
	open, high, low, close, volume, initial_balance, profit
`

// InsertBulk appends bars in one transaction using COPY.
func (s *MarketStore) InsertBulk(ctx context.Context, bars []*domain.MarketBar) (err error) {
	if len(bars) == 0 {
		return nil
	}
	for _, b := range bars {
		if err := storage.ValidateBar(b); err != nil {
			return err
		}
	}

	start := time.Now()
	defer func() { observe("insert_bars", start, err) }()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	columns := []string{
		"strategy_id", "period_id", "bar_at", "date_text", "time_text",
		"open", "high", "low", "close", "volume", "initial_balance", "profit",
	}
	// COPY preserves row order, so seq follows slice order.
	_, err = tx.CopyFrom(ctx, pgx.Identifier{"market_bars"}, columns,
		pgx.CopyFromSlice(len(bars), func(i int) ([]any, error) {
			b := bars[i]
			return []any{
				b.Series.StrategyID, b.Series.PeriodID, b.Timestamp, b.Date, b.Time,
				b.OHLC.Open, b.OHLC.High, b.OHLC.Low, b.OHLC.Close, b.Volume,
				b.InitialBalance, b.Profit,
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy market bars: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Find returns all bars of the series in q.Sort order.
func (s *MarketStore) Find(ctx context.Context, q storage.MarketQuery) (result []*domain.MarketBar, err error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { observe("find_bars", start, err) }()

	rows, err := s.pool.Query(ctx, buildBarQuery(q, false), q.Series.StrategyID, q.Series.PeriodID)
	if err != nil {
		return nil, fmt.Errorf("query market bars: %w", err)
	}
	defer rows.Close()

	result = make([]*domain.MarketBar, 0)
	for rows.Next() {
		b, err := scanMarketBar(rows)
		if err != nil {
			return nil, fmt.Errorf("scan market bar: %w", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate market bars: %w", err)
	}

	observability.RecordRowsLoaded("postgres", "market_bars", len(result))
	return result, nil
}

// FindFirst returns the first bar in q.Sort order. Returns ErrNotFound if the series is empty.
func (s *MarketStore) FindFirst(ctx context.Context, q storage.MarketQuery) (b *domain.MarketBar, err error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { observe("find_first_bar", start, err) }()

	row := s.pool.QueryRow(ctx, buildBarQuery(q, true), q.Series.StrategyID, q.Series.PeriodID)
	b, err = scanMarketBar(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get first market bar: %w", err)
	}
	return b, nil
}

func buildBarQuery(q storage.MarketQuery, first bool) string {
	query := `SELECT ` + barColumns + `
		FROM market_bars
		WHERE strategy_id = $1 AND period_id = $2
		ORDER BY ` + storage.OrderByClause(q.Sort, "bar_at")
	if first {
		query += ` LIMIT 1`
	}
	return query
}

func scanMarketBar(row pgx.Row) (*domain.MarketBar, error) {
	var b domain.MarketBar
	err := row.Scan(
		&b.Seq, &b.Series.StrategyID, &b.Series.PeriodID, &b.Timestamp, &b.Date, &b.Time,
		&b.OHLC.Open, &b.OHLC.High, &b.OHLC.Low, &b.OHLC.Close, &b.Volume,
		&b.InitialBalance, &b.Profit,
	)
	if err != nil {
		return nil, err
	}
	b.Timestamp = b.Timestamp.UTC()
	return &b, nil
}
