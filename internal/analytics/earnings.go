package analytics

import (
	"fmt"
	"sort"

	"backtest-results-api/internal/domain"
)

// Earnings compares buy-and-hold with active trading over a period.
// All values are whole currency units except the percentage.
type Earnings struct {
	HoldingEarn             int64 `json:"holdingEarn"`
	TradingEarn             int64 `json:"tradingEarn"`
	HoldTradeDiff           int64 `json:"holdTradeDiff"`
	HoldTradePercentageDiff int64 `json:"holdTradePercentageDiff"`
}

// TradesEarnings values the first nonzero position (insertion order) at the
// close of the last market bar and compares it with the balance of the last
// trade. Both are rounded before the difference is taken.
func TradesEarnings(bars []*domain.MarketBar, trades []*domain.TradeRecord) (Earnings, error) {
	ordered := byInsertion(trades)
	if len(ordered) == 0 {
		return Earnings{}, fmt.Errorf("earnings: no trades: %w", ErrMissingAnchor)
	}

	var first *domain.TradeRecord
	for _, t := range ordered {
		if t.PositionSize != 0 {
			first = t
			break
		}
	}
	if first == nil {
		return Earnings{}, fmt.Errorf("earnings: no trade with a position: %w", ErrMissingAnchor)
	}
	last := ordered[len(ordered)-1]

	lastBar, err := LastBar(bars)
	if err != nil {
		return Earnings{}, fmt.Errorf("earnings: %w", err)
	}

	holding := roundHalfUp(first.PositionSize * lastBar.OHLC.Close)
	trading := roundHalfUp(last.Balance)
	if holding == 0 {
		return Earnings{}, fmt.Errorf("earnings: holding value rounds to zero: %w", ErrDegenerateInput)
	}

	diff := trading - holding
	return Earnings{
		HoldingEarn:             int64(holding),
		TradingEarn:             int64(trading),
		HoldTradeDiff:           int64(diff),
		HoldTradePercentageDiff: int64(roundHalfUp(diff / holding * 100)),
	}, nil
}

// LastBar returns the chronologically last market bar. Bars sharing the
// latest date resolve to the one inserted last.
func LastBar(bars []*domain.MarketBar) (*domain.MarketBar, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("no market bars: %w", ErrMissingAnchor)
	}
	sorted := make([]*domain.MarketBar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].Timestamp.After(sorted[j].Timestamp)
		}
		return sorted[i].Seq > sorted[j].Seq
	})
	return sorted[0], nil
}
