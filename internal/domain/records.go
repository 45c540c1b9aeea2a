package domain

import (
	"fmt"
	"strings"
	"time"
)

// OHLC holds the open/high/low/close prices of a bar.
type OHLC struct {
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// TradeRecord is one row of a backtest trade log.
// Records are written once by the offline backtest and never updated.
type TradeRecord struct {
	Seq    int64     // insertion order within the series, assigned by the store
	Series SeriesKey // strategy/period the row belongs to

	Unix      int64     // source unix timestamp (ms), informational
	Timestamp time.Time // parsed Date, ordering key
	Date      string    // date as written by the backtest

	Type         TradeType
	Price        float64
	OHLC         OHLC
	Balance      float64 // account balance after the signal
	PositionSize float64 // units held after the signal
}

// MarketBar is one OHLC+volume bar of the market data a backtest ran on.
type MarketBar struct {
	Seq    int64
	Series SeriesKey

	Timestamp time.Time
	Date      string
	Time      string

	OHLC   OHLC
	Volume float64

	// Set on exactly one bar per series: the simulation's starting capital.
	InitialBalance *float64
	Profit         *float64
}

// Layouts accepted for the Date column.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate parses a backtest date string as UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
