package analytics

import (
	"errors"
	"testing"

	"backtest-results-api/internal/domain"
)

func TestPercentageProfit(t *testing.T) {
	bars := []*domain.MarketBar{
		makeBar(t, 1, "2020-01-01", 10),
		makeBar(t, 2, "2020-01-02", 11),
	}
	bars[0].InitialBalance = ptr(1000)

	tests := []struct {
		name    string
		balance float64
		want    int64
	}{
		{"gain", 1250, 25},
		{"loss", 800, -20},
		{"half rounds up", 875, -12},
		{"flat", 1000, 0},
	}
	for _, tc := range tests {
		trades := []*domain.TradeRecord{
			makeTrade(t, 1, "2020-01-01", domain.TradeBuy, 1000),
			makeTrade(t, 2, "2020-01-02", domain.TradeSell, tc.balance),
		}
		got, err := PercentageProfit(bars, trades)
		if err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%s: expected %d, got %d", tc.name, tc.want, got)
		}
	}
}

func TestPercentageProfit_Errors(t *testing.T) {
	trades := []*domain.TradeRecord{makeTrade(t, 1, "2020-01-01", domain.TradeBuy, 1000)}

	plain := []*domain.MarketBar{makeBar(t, 1, "2020-01-01", 10)}
	if _, err := PercentageProfit(plain, trades); !errors.Is(err, ErrMissingAnchor) {
		t.Errorf("no initial balance: expected ErrMissingAnchor, got %v", err)
	}

	funded := []*domain.MarketBar{makeBar(t, 1, "2020-01-01", 10)}
	funded[0].InitialBalance = ptr(1000)
	if _, err := PercentageProfit(funded, nil); !errors.Is(err, ErrMissingAnchor) {
		t.Errorf("no trades: expected ErrMissingAnchor, got %v", err)
	}

	broke := []*domain.MarketBar{makeBar(t, 1, "2020-01-01", 10)}
	broke[0].InitialBalance = ptr(0)
	if _, err := PercentageProfit(broke, trades); !errors.Is(err, ErrDegenerateInput) {
		t.Errorf("zero initial balance: expected ErrDegenerateInput, got %v", err)
	}
}

func TestInitialBalance_FirstCarrierByInsertion(t *testing.T) {
	bars := []*domain.MarketBar{
		makeBar(t, 3, "2020-01-03", 10),
		makeBar(t, 2, "2020-01-02", 10),
		makeBar(t, 1, "2020-01-01", 10),
	}
	bars[0].InitialBalance = ptr(300)
	bars[1].InitialBalance = ptr(200)

	got, err := InitialBalance(bars)
	if err != nil {
		t.Fatalf("InitialBalance failed: %v", err)
	}
	if got != 200 {
		t.Errorf("expected 200, got %v", got)
	}
}
