package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Backtest Summary\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Strategies: %d | Periods: %d\n\n", r.StrategyCount, r.PeriodCount))

	// Data Summary
	sb.WriteString("## Data Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Series | %d |\n", r.DataSummary.SeriesTotal))
	sb.WriteString(fmt.Sprintf("| Series With Trades | %d |\n", r.DataSummary.SeriesWithData))
	sb.WriteString(fmt.Sprintf("| Total Trades | %d |\n", r.DataSummary.TotalTrades))
	sb.WriteString(fmt.Sprintf("| Total Market Bars | %d |\n", r.DataSummary.TotalBars))
	sb.WriteString("\n")

	// Data Quality
	sb.WriteString("## Data Quality\n\n")
	if r.DataQuality.AllSeriesUsed {
		sb.WriteString("**All series computed.**\n\n")
	} else {
		for _, note := range r.DataQuality.Notes {
			sb.WriteString(fmt.Sprintf("- %s\n", note))
		}
		sb.WriteString("\n")
	}

	// Series Metrics
	sb.WriteString("## Series Metrics\n\n")
	if len(r.Rows) > 0 {
		sb.WriteString("| Strategy | Name | Period | Trades | Last Balance | Profit% | MDD% | MDD $ | Max Gain | Max Loss | Longest (days) | Hold-Trade% |\n")
		sb.WriteString("|----------|------|--------|--------|--------------|---------|------|-------|----------|----------|----------------|-------------|\n")
		for _, m := range r.Rows {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %d | %.2f | %d | %s | %s | %d | %d | %d | %d |\n",
				m.StrategyID, m.StrategyName, m.PeriodID,
				m.TotalTrades, m.LastBalance, m.ProfitPct,
				m.MaxDrawdown, m.MaxMonetaryLoss,
				m.MaxGain, m.MaxLoss, m.LongestTradeDays, m.HoldTradeDiffPct))
		}
	} else {
		sb.WriteString("No series metrics available.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
