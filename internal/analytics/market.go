package analytics

import "backtest-results-api/internal/domain"

// Quote is the OHLC view of a market bar.
type Quote struct {
	Date  string  `json:"date"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// MarketData returns the bars as quotes in insertion order. Never nil.
func MarketData(bars []*domain.MarketBar) []Quote {
	ordered := barsByInsertion(bars)
	out := make([]Quote, 0, len(ordered))
	for _, b := range ordered {
		out = append(out, Quote{
			Date:  b.Date,
			Open:  b.OHLC.Open,
			High:  b.OHLC.High,
			Low:   b.OHLC.Low,
			Close: b.OHLC.Close,
		})
	}
	return out
}

// MarketPeriod returns the dates of the first and last bar by insertion
// order, or nil for an empty series.
func MarketPeriod(bars []*domain.MarketBar) *domain.Period {
	if len(bars) == 0 {
		return nil
	}
	ordered := barsByInsertion(bars)
	return &domain.Period{
		From: ordered[0].Date,
		To:   ordered[len(ordered)-1].Date,
	}
}
