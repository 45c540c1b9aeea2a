package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"backtest-results-api/internal/domain"
	"backtest-results-api/internal/storage"
)

var seriesA = domain.SeriesKey{StrategyID: "tb3", PeriodID: "asc"}

func makeTrade(series domain.SeriesKey, day int, tradeType domain.TradeType, balance float64) *domain.TradeRecord {
	ts := time.Date(2020, 1, day, 0, 0, 0, 0, time.UTC)
	return &domain.TradeRecord{
		Series:    series,
		Timestamp: ts,
		Date:      ts.Format("2006-01-02"),
		Type:      tradeType,
		Balance:   balance,
	}
}

func TestTradeStore_InsertAndFind(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	trades := []*domain.TradeRecord{
		makeTrade(seriesA, 5, domain.TradeLong, 100),
		makeTrade(seriesA, 2, domain.TradeClose, 110),
		makeTrade(seriesA, 9, domain.TradeShort, 110),
	}
	if err := store.InsertBulk(ctx, trades); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.Find(ctx, storage.TradeQuery{Series: seriesA})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 trades, got %d", len(got))
	}
	for i, tr := range got {
		if tr.Seq != int64(i+1) {
			t.Errorf("expected seq %d, got %d", i+1, tr.Seq)
		}
	}

	byDate, err := store.Find(ctx, storage.TradeQuery{Series: seriesA, Sort: storage.SortDateAsc})
	if err != nil {
		t.Fatalf("Find by date failed: %v", err)
	}
	if byDate[0].Type != domain.TradeClose {
		t.Errorf("expected CLOSE first by date, got %s", byDate[0].Type)
	}
}

func TestTradeStore_FilterByType(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	_ = store.InsertBulk(ctx, []*domain.TradeRecord{
		makeTrade(seriesA, 1, domain.TradeLong, 100),
		makeTrade(seriesA, 2, domain.TradeClose, 110),
		makeTrade(seriesA, 3, domain.TradeShort, 110),
		makeTrade(seriesA, 4, domain.TradeCover, 120),
		makeTrade(domain.SeriesKey{StrategyID: "tb3", PeriodID: "dsc"}, 1, domain.TradeClose, 50),
	})

	got, err := store.Find(ctx, storage.TradeQuery{
		Series: seriesA,
		Types:  []domain.TradeType{domain.TradeClose, domain.TradeCover},
	})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(got))
	}
}

func TestTradeStore_FindFirst(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	_, err := store.FindFirst(ctx, storage.TradeQuery{Series: seriesA})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	_ = store.InsertBulk(ctx, []*domain.TradeRecord{
		makeTrade(seriesA, 1, domain.TradeBuy, 100),
		makeTrade(seriesA, 2, domain.TradeSell, 120),
	})

	last, err := store.FindFirst(ctx, storage.TradeQuery{Series: seriesA, Sort: storage.SortInsertionDesc})
	if err != nil {
		t.Fatalf("FindFirst failed: %v", err)
	}
	if last.Balance != 120 {
		t.Errorf("expected last balance 120, got %v", last.Balance)
	}
}

func TestTradeStore_InsertBulkAtomic(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.TradeRecord{
		makeTrade(seriesA, 1, domain.TradeBuy, 100),
		makeTrade(seriesA, 2, "HOLD", 100),
	})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	got, _ := store.Find(ctx, storage.TradeQuery{Series: seriesA})
	if len(got) != 0 {
		t.Errorf("expected no trades after failed batch, got %d", len(got))
	}
}

func TestTradeStore_ReturnsCopies(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	in := makeTrade(seriesA, 1, domain.TradeBuy, 100)
	_ = store.InsertBulk(ctx, []*domain.TradeRecord{in})
	in.Balance = 999

	got, _ := store.FindFirst(ctx, storage.TradeQuery{Series: seriesA})
	got.Balance = 555

	again, _ := store.FindFirst(ctx, storage.TradeQuery{Series: seriesA})
	if again.Balance != 100 {
		t.Errorf("stored trade was mutated: %v", again.Balance)
	}
}
