package analytics

import (
	"testing"

	"backtest-results-api/internal/domain"
)

// makeTrade builds a trade with the next sequence number.
func makeTrade(t *testing.T, seq int64, date string, tradeType domain.TradeType, balance float64) *domain.TradeRecord {
	t.Helper()
	ts, err := domain.ParseDate(date)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", date, err)
	}
	return &domain.TradeRecord{
		Seq:       seq,
		Timestamp: ts,
		Date:      date,
		Type:      tradeType,
		Balance:   balance,
	}
}

// makeBar builds a market bar with the given close price.
func makeBar(t *testing.T, seq int64, date string, closePrice float64) *domain.MarketBar {
	t.Helper()
	ts, err := domain.ParseDate(date)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", date, err)
	}
	return &domain.MarketBar{
		Seq:       seq,
		Timestamp: ts,
		Date:      date,
		OHLC:      domain.OHLC{Open: closePrice, High: closePrice, Low: closePrice, Close: closePrice},
	}
}

func ptr(f float64) *float64 { return &f }
