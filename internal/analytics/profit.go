package analytics

import (
	"fmt"

	"backtest-results-api/internal/domain"
)

// PercentageProfit returns the whole-percent change from the initial
// balance carried by the market data to the balance of the last trade.
func PercentageProfit(bars []*domain.MarketBar, trades []*domain.TradeRecord) (int64, error) {
	initial, err := InitialBalance(bars)
	if err != nil {
		return 0, fmt.Errorf("profit: %w", err)
	}
	last, err := LastTrade(trades)
	if err != nil {
		return 0, fmt.Errorf("profit: %w", err)
	}
	if initial == 0 {
		return 0, fmt.Errorf("profit: initial balance is zero: %w", ErrDegenerateInput)
	}

	return int64(roundHalfUp((last.Balance - initial) / initial * 100)), nil
}

// InitialBalance returns the starting capital: the InitialBalance of the
// first bar, in insertion order, that carries one.
func InitialBalance(bars []*domain.MarketBar) (float64, error) {
	for _, b := range barsByInsertion(bars) {
		if b.InitialBalance != nil {
			return *b.InitialBalance, nil
		}
	}
	return 0, fmt.Errorf("no initial balance in market data: %w", ErrMissingAnchor)
}
