package clickhouse

import (
	"context"
	"fmt"
	"sync"
	"time"

	"backtest-results-api/internal/domain"
	"backtest-results-api/internal/observability"
	"backtest-results-api/internal/storage"
)

// MarketStore implements storage.MarketStore using ClickHouse.
//
// MergeTree has no sequences, so InsertBulk numbers rows itself from
// max(seq). Inserts are serialized per store; run a single writer per table.
type MarketStore struct {
	conn    *Conn
	writeMu sync.Mutex
}

// NewMarketStore creates a new MarketStore.
func NewMarketStore(conn *Conn) *MarketStore {
	return &MarketStore{conn: conn}
}

// Compile-time interface check.
var _ storage.MarketStore = (*MarketStore)(nil)

// InsertBulk appends bars as one batch. Seq continues from the series' current maximum.
func (s *MarketStore) InsertBulk(ctx context.Context, bars []*domain.MarketBar) (err error) {
	if len(bars) == 0 {
		return nil
	}
	for _, b := range bars {
		if err := storage.ValidateBar(b); err != nil {
			return err
		}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	start := time.Now()
	defer func() { observe("insert_bars", start, err) }()

	next := make(map[domain.SeriesKey]uint64)
	for _, b := range bars {
		if _, ok := next[b.Series]; ok {
			continue
		}
		maxSeq, err := s.maxSeq(ctx, b.Series)
		if err != nil {
			return fmt.Errorf("read max seq: %w", err)
		}
		next[b.Series] = maxSeq
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO market_bars (
			strategy_id, period_id, seq, bar_at, date_text, time_text,
			open, high, low, close, volume, initial_balance, profit
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, b := range bars {
		next[b.Series]++
		err = batch.Append(
			b.Series.StrategyID, b.Series.PeriodID, next[b.Series], b.Timestamp.UTC(), b.Date, b.Time,
			b.OHLC.Open, b.OHLC.High, b.OHLC.Low, b.OHLC.Close, b.Volume,
			b.InitialBalance, b.Profit,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
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

	rows, err := s.conn.Query(ctx, buildBarQuery(q, false), q.Series.StrategyID, q.Series.PeriodID)
	if err != nil {
		return nil, fmt.Errorf("query market bars: %w", err)
	}
	defer rows.Close()

	result, err = scanMarketBars(rows, q.Series)
	if err != nil {
		return nil, err
	}
	observability.RecordRowsLoaded("clickhouse", "market_bars", len(result))
	return result, nil
}

// FindFirst returns the first bar in q.Sort order. Returns ErrNotFound if the series is empty.
func (s *MarketStore) FindFirst(ctx context.Context, q storage.MarketQuery) (*domain.MarketBar, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := s.conn.Query(ctx, buildBarQuery(q, true), q.Series.StrategyID, q.Series.PeriodID)
	observe("find_first_bar", start, err)
	if err != nil {
		return nil, fmt.Errorf("query first market bar: %w", err)
	}
	defer rows.Close()

	result, err := scanMarketBars(rows, q.Series)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, storage.ErrNotFound
	}
	return result[0], nil
}

// maxSeq returns the highest seq stored for the series, 0 when empty.
func (s *MarketStore) maxSeq(ctx context.Context, series domain.SeriesKey) (uint64, error) {
	query := `
		SELECT max(seq) FROM market_bars
		WHERE strategy_id = ? AND period_id = ?
	`

	var maxSeq uint64
	if err := s.conn.QueryRow(ctx, query, series.StrategyID, series.PeriodID).Scan(&maxSeq); err != nil {
		return 0, err
	}
	return maxSeq, nil
}

func buildBarQuery(q storage.MarketQuery, first bool) string {
	query := `
		SELECT seq, bar_at, date_text, time_text,
			open, high, low, close, volume, initial_balance, profit
		FROM market_bars
		WHERE strategy_id = ? AND period_id = ?
		ORDER BY ` + storage.OrderByClause(q.Sort, "bar_at")
	if first {
		query += ` LIMIT 1`
	}
	return query
}

// scanMarketBars scans multiple rows of one series.
func scanMarketBars(rows chRows, series domain.SeriesKey) ([]*domain.MarketBar, error) {
	bars := make([]*domain.MarketBar, 0)

	for rows.Next() {
		var (
			b   domain.MarketBar
			seq uint64
		)
		err := rows.Scan(
			&seq, &b.Timestamp, &b.Date, &b.Time,
			&b.OHLC.Open, &b.OHLC.High, &b.OHLC.Low, &b.OHLC.Close, &b.Volume,
			&b.InitialBalance, &b.Profit,
		)
		if err != nil {
			return nil, fmt.Errorf("scan market bar row: %w", err)
		}

		b.Seq = int64(seq)
		b.Series = series
		b.Timestamp = b.Timestamp.UTC()
		bars = append(bars, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate market bar rows: %w", err)
	}

	return bars, nil
}
