package analytics

import "backtest-results-api/internal/domain"

// TradeSpan describes the longest position of one direction.
type TradeSpan struct {
	TradeType domain.TradeType `json:"tradeType"`
	Start     string           `json:"start"`
	End       string           `json:"end"`
	Duration  int64            `json:"duration"` // whole days
}

// LongestTrade returns the open/close pair with the greatest duration.
// Durations are compared unrounded; only the winner is rounded to whole
// days. On equal durations the earlier pair is kept. Returns nil when no
// pair with a positive duration exists.
func LongestTrade(openType, closeType domain.TradeType, trades []*domain.TradeRecord) *TradeSpan {
	var (
		best    *position
		longest float64
	)
	pairs := pairPositions(domain.Direction{Open: openType, Close: closeType}, trades)
	for i := range pairs {
		p := &pairs[i]
		days := float64(p.exit.Timestamp.Sub(p.entry.Timestamp).Milliseconds()) / msPerDay
		if days > longest {
			longest = days
			best = p
		}
	}
	if best == nil {
		return nil
	}

	return &TradeSpan{
		TradeType: openType,
		Start:     best.entry.Date,
		End:       best.exit.Date,
		Duration:  int64(roundHalfUp(longest)),
	}
}

// LongestTrades runs LongestTrade for each direction and keeps the non-nil
// results in direction order.
func LongestTrades(dirs []domain.Direction, trades []*domain.TradeRecord) []TradeSpan {
	out := make([]TradeSpan, 0, len(dirs))
	for _, d := range dirs {
		if span := LongestTrade(d.Open, d.Close, trades); span != nil {
			out = append(out, *span)
		}
	}
	return out
}
