package storage

import (
	"context"

	"backtest-results-api/internal/domain"
)

// TradeStore provides access to trade_records storage.
type TradeStore interface {
	// InsertBulk appends trades atomically and assigns their Seq.
	// Fails the entire batch with ErrInvalidInput on any malformed record.
	InsertBulk(ctx context.Context, trades []*domain.TradeRecord) error

	// Find returns all trades of a series matching the query, in q.Sort order.
	Find(ctx context.Context, q TradeQuery) ([]*domain.TradeRecord, error)

	// FindFirst returns the first trade in q.Sort order. Returns ErrNotFound if none match.
	FindFirst(ctx context.Context, q TradeQuery) (*domain.TradeRecord, error)
}

// MarketStore provides access to market_bars storage.
type MarketStore interface {
	// InsertBulk appends bars atomically and assigns their Seq.
	InsertBulk(ctx context.Context, bars []*domain.MarketBar) error

	// Find returns all bars of a series in q.Sort order.
	Find(ctx context.Context, q MarketQuery) ([]*domain.MarketBar, error)

	// FindFirst returns the first bar in q.Sort order. Returns ErrNotFound if the series is empty.
	FindFirst(ctx context.Context, q MarketQuery) (*domain.MarketBar, error)
}
