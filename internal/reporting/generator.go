package reporting

import (
	"context"
	"fmt"

	"backtest-results-api/internal/analytics"
	"backtest-results-api/internal/catalog"
	"backtest-results-api/internal/domain"
	"backtest-results-api/internal/observability"
)

const notAvailable = "n/a"

// Summary computes one row per catalogued strategy × period.
// Series without trades are skipped and listed in the data quality notes.
// Metrics that cannot be computed for a series are reported as zero or n/a
// with a note naming the cause.
func (s *Service) Summary(ctx context.Context) (*Report, error) {
	series := s.catalog.Series()

	report := &Report{
		GeneratedAt:   s.now(),
		StrategyCount: len(s.catalog.Strategies),
		PeriodCount:   len(s.catalog.Periods),
		DataSummary:   DataSummary{SeriesTotal: len(series)},
	}

	barsCounted := make(map[domain.SeriesKey]struct{})

	for _, key := range series {
		strategy, _ := s.catalog.Strategy(key.StrategyID)

		trades, err := s.loadTrades(ctx, key)
		if err != nil {
			return nil, err
		}
		if len(trades) == 0 {
			report.DataQuality.Notes = append(report.DataQuality.Notes, fmt.Sprintf("%s: no trades, skipped", key))
			continue
		}

		bars, err := s.loadBars(ctx, strategy, key.PeriodID)
		if err != nil {
			return nil, err
		}
		marketKey := domain.SeriesKey{StrategyID: strategy.Market, PeriodID: key.PeriodID}
		if _, ok := barsCounted[marketKey]; !ok {
			barsCounted[marketKey] = struct{}{}
			report.DataSummary.TotalBars += len(bars)
		}

		row, notes := summarizeSeries(strategy, key, trades, bars)
		report.Rows = append(report.Rows, row)
		report.DataQuality.Notes = append(report.DataQuality.Notes, notes...)
		report.DataSummary.SeriesWithData++
		report.DataSummary.TotalTrades += len(trades)
	}

	report.DataQuality.AllSeriesUsed = len(report.DataQuality.Notes) == 0
	observability.RecordReportGenerated()
	return report, nil
}

// summarizeSeries computes a row from already loaded data.
// Analytics errors never abort the report; they become notes.
func summarizeSeries(strategy catalog.Strategy, key domain.SeriesKey, trades []*domain.TradeRecord, bars []*domain.MarketBar) (SummaryRow, []string) {
	var notes []string
	note := func(metric string, err error) {
		notes = append(notes, fmt.Sprintf("%s: %s unavailable: %v", key, metric, err))
	}

	row := SummaryRow{
		StrategyID:   strategy.ID,
		StrategyName: strategy.Name,
		PeriodID:     key.PeriodID,
		TotalTrades:  len(trades),
	}

	if balance, err := analytics.LastBalance(trades); err != nil {
		note("last balance", err)
	} else {
		row.LastBalance = balance
	}

	if dd, err := analytics.MaxDrawdown(strategy.CloseTypes(), trades); err != nil {
		note("drawdown", err)
		row.MaxDrawdown = notAvailable
		row.MaxMonetaryLoss = notAvailable
	} else {
		row.MaxDrawdown = dd.MaxDrawdown
		row.MaxMonetaryLoss = dd.MaxMonetaryLoss
	}

	row.MaxGain = analytics.MaxGainAcross(strategy.Directions, trades).MaxGain
	row.MaxLoss = analytics.MaxLossAcross(strategy.Directions, trades).MaxLoss

	for _, span := range analytics.LongestTrades(strategy.Directions, trades) {
		if span.Duration > row.LongestTradeDays {
			row.LongestTradeDays = span.Duration
		}
	}

	if profit, err := analytics.PercentageProfit(bars, trades); err != nil {
		note("profit", err)
	} else {
		row.ProfitPct = profit
	}

	if earn, err := analytics.TradesEarnings(bars, trades); err != nil {
		note("earnings", err)
	} else {
		row.HoldTradeDiffPct = earn.HoldTradePercentageDiff
	}

	return row, notes
}
