package analytics

import (
	"sort"

	"backtest-results-api/internal/domain"
)

// TradeCount is the number of records of one trade type.
type TradeCount struct {
	Trade domain.TradeType `json:"trade"`
	Count int              `json:"count"`
}

// countPriority fixes the presentation order of trade types.
var countPriority = []domain.TradeType{
	domain.TradeLong,
	domain.TradeBuy,
	domain.TradeShort,
	domain.TradeSell,
}

func priorityOf(t domain.TradeType) int {
	for i, p := range countPriority {
		if p == t {
			return i
		}
	}
	return len(countPriority)
}

// UniqueTradeCounts counts records per trade type. The result is ordered
// LONG, BUY, SHORT, SELL, then every other type by count DESC, name ASC.
func UniqueTradeCounts(trades []*domain.TradeRecord) []TradeCount {
	counts := make(map[domain.TradeType]int)
	for _, t := range trades {
		counts[t.Type]++
	}

	out := make([]TradeCount, 0, len(counts))
	for tradeType, n := range counts {
		out = append(out, TradeCount{Trade: tradeType, Count: n})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Trade < out[j].Trade
	})
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := priorityOf(out[i].Trade), priorityOf(out[j].Trade)
		if pi != pj {
			return pi < pj
		}
		return out[i].Count > out[j].Count
	})

	return out
}
