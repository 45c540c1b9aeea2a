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

// TradeStore implements storage.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

const tradeColumns = `
	seq, strategy_id, period_id, unix_ms, traded_at, date_text, trade_type,
	price, open, high, low, close, balance, position_size
`

// InsertBulk appends trades in one transaction. Seq comes from the BIGSERIAL.
func (s *TradeStore) InsertBulk(ctx context.Context, trades []*domain.TradeRecord) (err error) {
	if len(trades) == 0 {
		return nil
	}
	for _, t := range trades {
		if err := storage.ValidateTrade(t); err != nil {
			return err
		}
	}

	start := time.Now()
	defer func() { observe("insert_trades", start, err) }()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO trade_records (
			strategy_id, period_id, unix_ms, traded_at, date_text, trade_type,
			price, open, high, low, close, balance, position_size
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12, $13
		)
	`

	batch := &pgx.Batch{}
	for _, t := range trades {
		batch.Queue(query,
			t.Series.StrategyID, t.Series.PeriodID, t.Unix, t.Timestamp, t.Date, string(t.Type),
			t.Price, t.OHLC.Open, t.OHLC.High, t.OHLC.Low, t.OHLC.Close, t.Balance, t.PositionSize,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("insert trade records: %w", storage.ErrInvalidInput)
		}
		return fmt.Errorf("insert trade records: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Find returns matching trades in q.Sort order.
func (s *TradeStore) Find(ctx context.Context, q storage.TradeQuery) (result []*domain.TradeRecord, err error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { observe("find_trades", start, err) }()

	query, args := buildTradeQuery(q, false)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query trade records: %w", err)
	}
	defer rows.Close()

	result, err = scanTradeRecords(rows)
	if err != nil {
		return nil, err
	}
	observability.RecordRowsLoaded("postgres", "trade_records", len(result))
	return result, nil
}

// FindFirst returns the first trade in q.Sort order. Returns ErrNotFound if none match.
func (s *TradeStore) FindFirst(ctx context.Context, q storage.TradeQuery) (t *domain.TradeRecord, err error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { observe("find_first_trade", start, err) }()

	query, args := buildTradeQuery(q, true)
	t, err = scanTradeRecord(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get first trade record: %w", err)
	}
	return t, nil
}

// buildTradeQuery renders the SELECT for q with positional args.
func buildTradeQuery(q storage.TradeQuery, first bool) (string, []any) {
	query := `SELECT ` + tradeColumns + `
		FROM trade_records
		WHERE strategy_id = $1 AND period_id = $2`
	args := []any{q.Series.StrategyID, q.Series.PeriodID}

	if len(q.Types) > 0 {
		query += ` AND trade_type = ANY($3)`
		args = append(args, q.TypeStrings())
	}

	query += ` ORDER BY ` + storage.OrderByClause(q.Sort, "traded_at")
	if first {
		query += ` LIMIT 1`
	}
	return query, args
}

// scanTradeRecord scans a single row into TradeRecord.
func scanTradeRecord(row pgx.Row) (*domain.TradeRecord, error) {
	var (
		t         domain.TradeRecord
		tradeType string
	)
	err := row.Scan(
		&t.Seq, &t.Series.StrategyID, &t.Series.PeriodID, &t.Unix, &t.Timestamp, &t.Date, &tradeType,
		&t.Price, &t.OHLC.Open, &t.OHLC.High, &t.OHLC.Low, &t.OHLC.Close, &t.Balance, &t.PositionSize,
	)
	if err != nil {
		return nil, err
	}
	t.Type = domain.TradeType(tradeType)
	t.Timestamp = t.Timestamp.UTC()
	return &t, nil
}

// scanTradeRecords scans multiple rows.
func scanTradeRecords(rows pgx.Rows) ([]*domain.TradeRecord, error) {
	result := make([]*domain.TradeRecord, 0)
	for rows.Next() {
		t, err := scanTradeRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade record: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade records: %w", err)
	}
	return result, nil
}
