package domain

import "fmt"

// SeriesKey identifies one backtest run: a strategy evaluated on a period.
type SeriesKey struct {
	StrategyID string // tb1..tb4
	PeriodID   string // asc | dsc | stg | com
}

func (k SeriesKey) String() string {
	return fmt.Sprintf("%s/%s", k.StrategyID, k.PeriodID)
}

// Period is the inclusive date range covered by a market bar series.
type Period struct {
	From string `json:"from"`
	To   string `json:"to"`
}
