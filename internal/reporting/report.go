package reporting

import "time"

// Report is the cross-series summary of every catalogued backtest.
type Report struct {
	// Metadata
	GeneratedAt   time.Time
	StrategyCount int
	PeriodCount   int

	// Data Summary
	DataSummary DataSummary

	// Data Quality (skipped series and partial rows)
	DataQuality DataQualitySection

	// Rows (catalog order: strategy, then period)
	Rows []SummaryRow
}

// DataSummary describes the data the report was computed from.
type DataSummary struct {
	SeriesTotal    int
	SeriesWithData int
	TotalTrades    int
	TotalBars      int
}

// DataQualitySection lists series that were skipped or only partly computed.
type DataQualitySection struct {
	Notes         []string
	AllSeriesUsed bool
}

// SummaryRow holds the headline metrics of one strategy × period series.
type SummaryRow struct {
	StrategyID       string
	StrategyName     string
	PeriodID         string
	TotalTrades      int
	LastBalance      float64
	ProfitPct        int64
	MaxDrawdown      string // percent, two decimals
	MaxMonetaryLoss  string
	MaxGain          int64
	MaxLoss          int64
	LongestTradeDays int64
	HoldTradeDiffPct int64
}
