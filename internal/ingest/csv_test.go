package ingest

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backtest-results-api/internal/domain"
	"backtest-results-api/internal/storage"
)

var testSeries = domain.SeriesKey{StrategyID: "tb2", PeriodID: "asc"}

const tradesCSV = `unix,date,trade,price,open,high,low,close,balance,position_size
1577836800000,2020-01-01,LONG,7200.5,7195,7250,7150,7200.5,10000,1.38
1578182400000,2020-01-05,CLOSE,7400,7390,7450,7380,7400,10275.3,0
1578268800000,2020-01-06,NO SIGNAL,7410,7400,7420,7390,7410,10275.3,0
`

func TestLoadTrades(t *testing.T) {
	trades, err := LoadTrades(strings.NewReader(tradesCSV), testSeries)
	require.NoError(t, err)
	require.Len(t, trades, 3)

	first := trades[0]
	assert.Equal(t, testSeries, first.Series)
	assert.Equal(t, int64(1577836800000), first.Unix)
	assert.Equal(t, "2020-01-01", first.Date)
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), first.Timestamp)
	assert.Equal(t, domain.TradeLong, first.Type)
	assert.Equal(t, 7200.5, first.Price)
	assert.Equal(t, domain.OHLC{Open: 7195, High: 7250, Low: 7150, Close: 7200.5}, first.OHLC)
	assert.Equal(t, 10000.0, first.Balance)
	assert.Equal(t, 1.38, first.PositionSize)

	assert.Equal(t, domain.TradeNoSignal, trades[2].Type)
}

func TestLoadTrades_ColumnOrderAndCase(t *testing.T) {
	data := "Balance,Trade,Date\n1500,buy,2021-06-01 12:00:00\n"

	trades, err := LoadTrades(strings.NewReader(data), testSeries)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, domain.TradeBuy, trades[0].Type)
	assert.Equal(t, 1500.0, trades[0].Balance)
	assert.Equal(t, time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC), trades[0].Timestamp)
	assert.Zero(t, trades[0].PositionSize)
}

func TestLoadTrades_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantMsg string
	}{
		{"empty file", "", "empty file"},
		{"missing column", "date,trade\n2020-01-01,BUY\n", `missing column "balance"`},
		{"unknown trade type", "date,trade,balance\n2020-01-01,BUY,1\n2020-01-02,HOLD,1\n", "line 3"},
		{"bad date", "date,trade,balance\nyesterday,BUY,1\n", "line 2"},
		{"bad number", "date,trade,balance\n2020-01-01,BUY,lots\n", "column balance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTrades(strings.NewReader(tt.data), testSeries)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidFile), "expected ErrInvalidFile, got %v", err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoadTrades_UnknownTradeTypeCause(t *testing.T) {
	data := "date,trade,balance\n2020-01-01,HOLD,1\n"

	_, err := LoadTrades(strings.NewReader(data), testSeries)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidFile)
	assert.ErrorIs(t, err, domain.ErrUnknownTradeType)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
	assert.Contains(t, err.Error(), `line 2: unknown trade type "HOLD"`)
}

func TestLoadTrades_SkipsBlankRows(t *testing.T) {
	data := "date,trade,balance\n2020-01-01,BUY,1\n,,\n2020-01-02,SELL,2\n"

	trades, err := LoadTrades(strings.NewReader(data), testSeries)
	require.NoError(t, err)
	assert.Len(t, trades, 2)
}

func TestLoadMarketBars(t *testing.T) {
	data := "\ufeffdate,time,open,high,low,close,volume,initial_balance,profit\n" +
		"2020-01-01,00:00:00,7195,7250,7150,7200,1200.5,10000,\n" +
		"2020-01-02,00:00:00,7200,7300,7100,7250,900,,2.5\n"

	bars, err := LoadMarketBars(strings.NewReader(data), testSeries)
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, "2020-01-01", bars[0].Date)
	assert.Equal(t, "00:00:00", bars[0].Time)
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), bars[0].Timestamp)
	assert.Equal(t, 7200.0, bars[0].OHLC.Close)
	assert.Equal(t, 1200.5, bars[0].Volume)
	require.NotNil(t, bars[0].InitialBalance)
	assert.Equal(t, 10000.0, *bars[0].InitialBalance)
	assert.Nil(t, bars[0].Profit)

	assert.Nil(t, bars[1].InitialBalance)
	require.NotNil(t, bars[1].Profit)
	assert.Equal(t, 2.5, *bars[1].Profit)
}

func TestLoadMarketBars_TimeOutsideDate(t *testing.T) {
	data := "date,time,close\n2020-01-01T00:00:00Z,10:30,100\n"

	bars, err := LoadMarketBars(strings.NewReader(data), testSeries)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), bars[0].Timestamp)
}

func TestLoadMarketBars_MissingClose(t *testing.T) {
	_, err := LoadMarketBars(strings.NewReader("date,open\n2020-01-01,1\n"), testSeries)
	assert.True(t, errors.Is(err, ErrInvalidFile))
}
