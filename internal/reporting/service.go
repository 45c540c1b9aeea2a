package reporting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backtest-results-api/internal/analytics"
	"backtest-results-api/internal/catalog"
	"backtest-results-api/internal/domain"
	"backtest-results-api/internal/observability"
	"backtest-results-api/internal/storage"
)

// ErrUnknownSeries is returned for a strategy or period missing from the catalog.
var ErrUnknownSeries = errors.New("unknown strategy or period")

// Service loads series from the stores and runs the analytics over them.
// Every method takes the strategy and period ids as they appear in routes.
type Service struct {
	trades  storage.TradeStore
	markets storage.MarketStore
	catalog *catalog.Catalog
	now     func() time.Time // Injectable clock for deterministic output
}

// NewService creates a reporting service.
func NewService(trades storage.TradeStore, markets storage.MarketStore, cat *catalog.Catalog) *Service {
	return &Service{
		trades:  trades,
		markets: markets,
		catalog: cat,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Catalog returns the catalog the service resolves ids against.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// BalanceSeries returns the balance after every closing trade, by date.
func (s *Service) BalanceSeries(ctx context.Context, strategyID, periodID string) (_ []analytics.BalancePoint, err error) {
	defer func() { record("balance_series", err) }()

	strategy, key, err := s.resolve(strategyID, periodID)
	if err != nil {
		return nil, err
	}
	closeTypes := strategy.CloseTypes()
	trades, err := s.loadTrades(ctx, key, closeTypes...)
	if err != nil {
		return nil, err
	}
	return analytics.BalanceSeries(closeTypes, trades), nil
}

// Drawdown returns the maximum drawdown over closing trades.
func (s *Service) Drawdown(ctx context.Context, strategyID, periodID string) (_ analytics.Drawdown, err error) {
	defer func() { record("drawdown", err) }()

	strategy, key, err := s.resolve(strategyID, periodID)
	if err != nil {
		return analytics.Drawdown{}, err
	}
	closeTypes := strategy.CloseTypes()
	trades, err := s.loadTrades(ctx, key, closeTypes...)
	if err != nil {
		return analytics.Drawdown{}, err
	}
	return analytics.MaxDrawdown(closeTypes, trades)
}

// LongestTrades returns the longest position of each direction that has one.
func (s *Service) LongestTrades(ctx context.Context, strategyID, periodID string) (_ []analytics.TradeSpan, err error) {
	defer func() { record("longest_trades", err) }()

	strategy, key, err := s.resolve(strategyID, periodID)
	if err != nil {
		return nil, err
	}
	trades, err := s.loadTrades(ctx, key)
	if err != nil {
		return nil, err
	}
	return analytics.LongestTrades(strategy.Directions, trades), nil
}

// UniqueTrades counts trades per type.
func (s *Service) UniqueTrades(ctx context.Context, strategyID, periodID string) (_ []analytics.TradeCount, err error) {
	defer func() { record("unique_trades", err) }()

	_, key, err := s.resolve(strategyID, periodID)
	if err != nil {
		return nil, err
	}
	trades, err := s.loadTrades(ctx, key)
	if err != nil {
		return nil, err
	}
	return analytics.UniqueTradeCounts(trades), nil
}

// Earnings compares buy-and-hold on the strategy's market with its trading result.
func (s *Service) Earnings(ctx context.Context, strategyID, periodID string) (_ analytics.Earnings, err error) {
	defer func() { record("earnings", err) }()

	strategy, key, err := s.resolve(strategyID, periodID)
	if err != nil {
		return analytics.Earnings{}, err
	}
	trades, err := s.loadTrades(ctx, key)
	if err != nil {
		return analytics.Earnings{}, err
	}
	bars, err := s.loadBars(ctx, strategy, periodID)
	if err != nil {
		return analytics.Earnings{}, err
	}
	return analytics.TradesEarnings(bars, trades)
}

// LastBalance returns the balance of the most recent trade.
func (s *Service) LastBalance(ctx context.Context, strategyID, periodID string) (_ float64, err error) {
	defer func() { record("last_balance", err) }()

	_, key, err := s.resolve(strategyID, periodID)
	if err != nil {
		return 0, err
	}
	last, err := s.trades.FindFirst(ctx, storage.TradeQuery{Series: key, Sort: storage.SortInsertionDesc})
	if err != nil {
		return 0, fmt.Errorf("last trade of %s: %w", key, err)
	}
	return analytics.LastBalance([]*domain.TradeRecord{last})
}

// MaximumGain returns the best position across all directions.
func (s *Service) MaximumGain(ctx context.Context, strategyID, periodID string) (_ analytics.Gain, err error) {
	defer func() { record("maximum_gain", err) }()

	strategy, key, err := s.resolve(strategyID, periodID)
	if err != nil {
		return analytics.Gain{}, err
	}
	trades, err := s.loadTrades(ctx, key)
	if err != nil {
		return analytics.Gain{}, err
	}
	return analytics.MaxGainAcross(strategy.Directions, trades), nil
}

// MaximumLoss returns the worst position across all directions.
func (s *Service) MaximumLoss(ctx context.Context, strategyID, periodID string) (_ analytics.Loss, err error) {
	defer func() { record("maximum_loss", err) }()

	strategy, key, err := s.resolve(strategyID, periodID)
	if err != nil {
		return analytics.Loss{}, err
	}
	trades, err := s.loadTrades(ctx, key)
	if err != nil {
		return analytics.Loss{}, err
	}
	return analytics.MaxLossAcross(strategy.Directions, trades), nil
}

// Profit returns the whole-percent return on the initial balance.
func (s *Service) Profit(ctx context.Context, strategyID, periodID string) (_ int64, err error) {
	defer func() { record("profit", err) }()

	strategy, key, err := s.resolve(strategyID, periodID)
	if err != nil {
		return 0, err
	}
	trades, err := s.loadTrades(ctx, key)
	if err != nil {
		return 0, err
	}
	bars, err := s.loadBars(ctx, strategy, periodID)
	if err != nil {
		return 0, err
	}
	return analytics.PercentageProfit(bars, trades)
}

// MarketData returns the OHLC quotes the strategy traded on.
func (s *Service) MarketData(ctx context.Context, strategyID, periodID string) (_ []analytics.Quote, err error) {
	defer func() { record("market_data", err) }()

	strategy, _, err := s.resolve(strategyID, periodID)
	if err != nil {
		return nil, err
	}
	bars, err := s.loadBars(ctx, strategy, periodID)
	if err != nil {
		return nil, err
	}
	return analytics.MarketData(bars), nil
}

// MarketPeriod returns the first and last market dates, or nil without data.
func (s *Service) MarketPeriod(ctx context.Context, strategyID, periodID string) (_ *domain.Period, err error) {
	defer func() { record("market_period", err) }()

	strategy, _, err := s.resolve(strategyID, periodID)
	if err != nil {
		return nil, err
	}
	key := domain.SeriesKey{StrategyID: strategy.Market, PeriodID: periodID}

	first, err := s.markets.FindFirst(ctx, storage.MarketQuery{Series: key, Sort: storage.SortInsertionAsc})
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("first bar of %s: %w", key, err)
	}
	last, err := s.markets.FindFirst(ctx, storage.MarketQuery{Series: key, Sort: storage.SortInsertionDesc})
	if err != nil {
		return nil, fmt.Errorf("last bar of %s: %w", key, err)
	}
	return analytics.MarketPeriod([]*domain.MarketBar{first, last}), nil
}

// InitialBalance returns the starting capital recorded with the market data.
func (s *Service) InitialBalance(ctx context.Context, strategyID, periodID string) (_ float64, err error) {
	defer func() { record("initial_balance", err) }()

	strategy, _, err := s.resolve(strategyID, periodID)
	if err != nil {
		return 0, err
	}
	bars, err := s.loadBars(ctx, strategy, periodID)
	if err != nil {
		return 0, err
	}
	return analytics.InitialBalance(bars)
}

// resolve maps route ids to a catalog strategy and the trade series key.
func (s *Service) resolve(strategyID, periodID string) (catalog.Strategy, domain.SeriesKey, error) {
	strategy, ok := s.catalog.Strategy(strategyID)
	if !ok || !s.catalog.HasPeriod(periodID) {
		return catalog.Strategy{}, domain.SeriesKey{}, fmt.Errorf("%s/%s: %w", strategyID, periodID, ErrUnknownSeries)
	}
	return strategy, domain.SeriesKey{StrategyID: strategyID, PeriodID: periodID}, nil
}

// loadTrades loads trades of the series in date order.
func (s *Service) loadTrades(ctx context.Context, key domain.SeriesKey, types ...domain.TradeType) ([]*domain.TradeRecord, error) {
	trades, err := s.trades.Find(ctx, storage.TradeQuery{Series: key, Types: types, Sort: storage.SortDateAsc})
	if err != nil {
		return nil, fmt.Errorf("load trades of %s: %w", key, err)
	}
	return trades, nil
}

// loadBars loads the bars of the strategy's market series for the period.
func (s *Service) loadBars(ctx context.Context, strategy catalog.Strategy, periodID string) ([]*domain.MarketBar, error) {
	key := domain.SeriesKey{StrategyID: strategy.Market, PeriodID: periodID}
	bars, err := s.markets.Find(ctx, storage.MarketQuery{Series: key, Sort: storage.SortInsertionAsc})
	if err != nil {
		return nil, fmt.Errorf("load market bars of %s: %w", key, err)
	}
	return bars, nil
}

// IsNotFound reports whether err means the requested data does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUnknownSeries) ||
		errors.Is(err, storage.ErrNotFound) ||
		errors.Is(err, analytics.ErrMissingAnchor)
}

func record(operation string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case IsNotFound(err):
		outcome = "not_found"
	default:
		outcome = "error"
	}
	observability.RecordComputation(operation, outcome)
}
