package analytics

import (
	"fmt"
	"sort"
	"time"

	"backtest-results-api/internal/domain"
)

// BalancePoint is the balance recorded on one trade.
type BalancePoint struct {
	Date    string `json:"date"`
	Balance string `json:"balance"` // two decimals

	at  time.Time
	seq int64
}

// LastTrade returns the most recently inserted trade.
func LastTrade(trades []*domain.TradeRecord) (*domain.TradeRecord, error) {
	var last *domain.TradeRecord
	for _, t := range trades {
		if last == nil || t.Seq > last.Seq {
			last = t
		}
	}
	if last == nil {
		return nil, fmt.Errorf("no trades: %w", ErrMissingAnchor)
	}
	return last, nil
}

// LastBalance returns the balance of the most recently inserted trade,
// rounded to cents.
func LastBalance(trades []*domain.TradeRecord) (float64, error) {
	last, err := LastTrade(trades)
	if err != nil {
		return 0, fmt.Errorf("last balance: %w", err)
	}
	return round2(last.Balance), nil
}

// FinalBalanceSeries lists the balances recorded on one trade type in date
// order. The result is never nil.
func FinalBalanceSeries(tradeType domain.TradeType, trades []*domain.TradeRecord) []BalancePoint {
	rows := byDate(filterTypes(trades, tradeType))
	out := make([]BalancePoint, 0, len(rows))
	for _, t := range rows {
		out = append(out, BalancePoint{
			Date:    t.Date,
			Balance: fixed2(t.Balance),
			at:      t.Timestamp,
			seq:     t.Seq,
		})
	}
	return out
}

// MergeBalanceSeries concatenates series and re-sorts the result by date.
// Points on the same date keep their concatenation order.
func MergeBalanceSeries(series ...[]BalancePoint) []BalancePoint {
	out := make([]BalancePoint, 0)
	for _, s := range series {
		out = append(out, s...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].at.Before(out[j].at)
	})
	return out
}

// BalanceSeries builds the merged balance series of all the given types.
func BalanceSeries(types []domain.TradeType, trades []*domain.TradeRecord) []BalancePoint {
	series := make([][]BalancePoint, 0, len(types))
	for _, t := range types {
		series = append(series, FinalBalanceSeries(t, trades))
	}
	return MergeBalanceSeries(series...)
}
