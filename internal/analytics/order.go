package analytics

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"backtest-results-api/internal/domain"
)

const msPerDay = 1000 * 60 * 60 * 24

// filterTypes returns the records whose type is one of types, in input order.
func filterTypes(trades []*domain.TradeRecord, types ...domain.TradeType) []*domain.TradeRecord {
	out := make([]*domain.TradeRecord, 0, len(trades))
	for _, t := range trades {
		for _, want := range types {
			if t.Type == want {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

// byDate returns a copy sorted by Timestamp ASC, Seq ASC.
func byDate(trades []*domain.TradeRecord) []*domain.TradeRecord {
	sorted := make([]*domain.TradeRecord, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		}
		return sorted[i].Seq < sorted[j].Seq
	})
	return sorted
}

// byInsertion returns a copy sorted by Seq ASC.
func byInsertion(trades []*domain.TradeRecord) []*domain.TradeRecord {
	sorted := make([]*domain.TradeRecord, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Seq < sorted[j].Seq
	})
	return sorted
}

// barsByInsertion returns a copy sorted by Seq ASC.
func barsByInsertion(bars []*domain.MarketBar) []*domain.MarketBar {
	sorted := make([]*domain.MarketBar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Seq < sorted[j].Seq
	})
	return sorted
}

// roundHalfUp rounds to the nearest integer with halves going towards +Inf,
// so -2.5 rounds to -2.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

// roundHalfUp2 rounds to two decimals with the same half rule.
func roundHalfUp2(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}

// minFloatExponent is the smallest binary exponent of a float64. Passing it
// to NewFromFloatWithExponent keeps every fractional digit.
const minFloatExponent = -1074

// exactDecimal returns the exact binary value of x. Rounding it to cents
// follows the stored value, so 1.005 (stored as 1.00499...) gives 1.00.
func exactDecimal(x float64) decimal.Decimal {
	return decimal.NewFromFloatWithExponent(x, minFloatExponent)
}

// fixed2 formats x with exactly two decimals, keeping trailing zeros.
// Exact halves round away from zero.
func fixed2(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return decimal.Zero.StringFixed(2)
	}
	return exactDecimal(x).StringFixed(2)
}

// round2 rounds a money amount to cents.
func round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	return exactDecimal(x).Round(2).InexactFloat64()
}
