package analytics

import (
	"fmt"
	"testing"

	"backtest-results-api/internal/domain"
)

func tradesOfTypes(t *testing.T, types ...domain.TradeType) []*domain.TradeRecord {
	t.Helper()
	out := make([]*domain.TradeRecord, 0, len(types))
	for i, typ := range types {
		out = append(out, makeTrade(t, int64(i+1), fmt.Sprintf("2020-02-%02d", i%28+1), typ, 100))
	}
	return out
}

func TestUniqueTradeCounts_BuySell(t *testing.T) {
	var types []domain.TradeType
	for i := 0; i < 5; i++ {
		types = append(types, domain.TradeSell)
	}
	for i := 0; i < 5; i++ {
		types = append(types, domain.TradeBuy)
	}

	got := UniqueTradeCounts(tradesOfTypes(t, types...))
	want := []TradeCount{
		{Trade: domain.TradeBuy, Count: 5},
		{Trade: domain.TradeSell, Count: 5},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestUniqueTradeCounts_PriorityThenCount(t *testing.T) {
	trades := tradesOfTypes(t,
		domain.TradeCover, domain.TradeCover,
		domain.TradeNoSignal, domain.TradeNoSignal, domain.TradeNoSignal, domain.TradeNoSignal,
		domain.TradeClose, domain.TradeClose,
		domain.TradeShort, domain.TradeShort,
		domain.TradeLong,
	)

	got := UniqueTradeCounts(trades)
	want := []TradeCount{
		{Trade: domain.TradeLong, Count: 1},
		{Trade: domain.TradeShort, Count: 2},
		{Trade: domain.TradeNoSignal, Count: 4},
		{Trade: domain.TradeClose, Count: 2},
		{Trade: domain.TradeCover, Count: 2},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}

	total := 0
	for _, c := range got {
		total += c.Count
	}
	if total != len(trades) {
		t.Errorf("expected counts to sum to %d, got %d", len(trades), total)
	}
}

func TestUniqueTradeCounts_Empty(t *testing.T) {
	got := UniqueTradeCounts(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}
