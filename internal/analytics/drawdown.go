package analytics

import (
	"fmt"
	"math"

	"backtest-results-api/internal/domain"
)

// Drawdown is the maximum peak-to-trough decline of the account balance.
// Both values are formatted with exactly two decimals.
type Drawdown struct {
	MaxDrawdown     string `json:"maxDrawdown"`     // percent of peak
	MaxMonetaryLoss string `json:"maxMonetaryLoss"` // peak - trough
}

// MaxDrawdown computes the drawdown over the balances recorded on the given
// (closing) trade types, in date order. The running peak starts at the
// first balance. An empty selection yields "0.00"/"0.00". A negative
// balance would push the percentage past 100 and is rejected.
func MaxDrawdown(types []domain.TradeType, trades []*domain.TradeRecord) (Drawdown, error) {
	rows := byDate(filterTypes(trades, types...))

	var peak, maxDrawdown, maxMonetaryLoss float64
	if len(rows) > 0 {
		peak = rows[0].Balance
	}

	for _, t := range rows {
		if t.Balance < 0 {
			return Drawdown{}, fmt.Errorf("max drawdown: negative balance on %s: %w", t.Date, ErrDegenerateInput)
		}
		peak = math.Max(peak, t.Balance)
		if peak == 0 {
			if t.Balance == 0 {
				continue
			}
			return Drawdown{}, fmt.Errorf("max drawdown: zero peak before %s: %w", t.Date, ErrDegenerateInput)
		}

		drawdown := (peak - t.Balance) / peak * 100
		if drawdown > maxDrawdown {
			maxDrawdown = drawdown
			maxMonetaryLoss = peak - t.Balance
		}
	}

	return Drawdown{
		MaxDrawdown:     fixed2(maxDrawdown),
		MaxMonetaryLoss: fixed2(maxMonetaryLoss),
	}, nil
}
