package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders summary rows as CSV string.
func RenderCSV(rows []SummaryRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("strategy_id,strategy_name,period_id,total_trades,last_balance,profit_pct,")
	sb.WriteString("max_drawdown,max_monetary_loss,max_gain,max_loss,")
	sb.WriteString("longest_trade_days,hold_trade_diff_pct\n")

	// Rows
	for _, m := range rows {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%d,%.2f,%d,%s,%s,%d,%d,%d,%d\n",
			m.StrategyID,
			m.StrategyName,
			m.PeriodID,
			m.TotalTrades,
			m.LastBalance,
			m.ProfitPct,
			m.MaxDrawdown,
			m.MaxMonetaryLoss,
			m.MaxGain,
			m.MaxLoss,
			m.LongestTradeDays,
			m.HoldTradeDiffPct,
		))
	}

	return sb.String()
}
