package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backtest-results-api/internal/domain"
)

var testSeries = domain.SeriesKey{StrategyID: "tb1", PeriodID: "asc"}

func TestTradeQuery_Validate(t *testing.T) {
	assert.NoError(t, TradeQuery{Series: testSeries}.Validate())
	assert.NoError(t, TradeQuery{Series: testSeries, Types: []domain.TradeType{domain.TradeSell}, Sort: SortDateDesc}.Validate())

	err := TradeQuery{Series: domain.SeriesKey{StrategyID: "tb1"}}.Validate()
	assert.True(t, errors.Is(err, ErrInvalidInput))

	err = TradeQuery{Series: testSeries, Types: []domain.TradeType{"HOLD"}}.Validate()
	assert.True(t, errors.Is(err, ErrInvalidInput))

	err = MarketQuery{Series: testSeries, Sort: SortOrder(42)}.Validate()
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestTradeQuery_Matches(t *testing.T) {
	sell := &domain.TradeRecord{Series: testSeries, Type: domain.TradeSell}
	other := &domain.TradeRecord{Series: domain.SeriesKey{StrategyID: "tb2", PeriodID: "asc"}, Type: domain.TradeSell}

	assert.True(t, TradeQuery{Series: testSeries}.Matches(sell))
	assert.True(t, TradeQuery{Series: testSeries, Types: []domain.TradeType{domain.TradeBuy, domain.TradeSell}}.Matches(sell))
	assert.False(t, TradeQuery{Series: testSeries, Types: []domain.TradeType{domain.TradeBuy}}.Matches(sell))
	assert.False(t, TradeQuery{Series: testSeries}.Matches(other))
}

func TestSortTrades(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2020, 1, d, 0, 0, 0, 0, time.UTC) }
	trades := []*domain.TradeRecord{
		{Seq: 1, Timestamp: day(3)},
		{Seq: 2, Timestamp: day(1)},
		{Seq: 3, Timestamp: day(3)},
	}

	SortTrades(trades, SortDateAsc)
	require.Equal(t, []int64{2, 1, 3}, seqs(trades))

	SortTrades(trades, SortDateDesc)
	require.Equal(t, []int64{3, 1, 2}, seqs(trades))

	SortTrades(trades, SortInsertionDesc)
	require.Equal(t, []int64{3, 2, 1}, seqs(trades))

	SortTrades(trades, SortInsertionAsc)
	require.Equal(t, []int64{1, 2, 3}, seqs(trades))
}

func TestOrderByClause(t *testing.T) {
	assert.Equal(t, "seq ASC", OrderByClause(SortInsertionAsc, "ts"))
	assert.Equal(t, "seq DESC", OrderByClause(SortInsertionDesc, "ts"))
	assert.Equal(t, "ts ASC, seq ASC", OrderByClause(SortDateAsc, "ts"))
	assert.Equal(t, "ts DESC, seq DESC", OrderByClause(SortDateDesc, "ts"))
}

func TestValidateTrade(t *testing.T) {
	ok := &domain.TradeRecord{Series: testSeries, Type: domain.TradeBuy, Timestamp: time.Unix(0, 0).Add(time.Hour)}
	assert.NoError(t, ValidateTrade(ok))

	assert.ErrorIs(t, ValidateTrade(nil), ErrInvalidInput)
	assert.ErrorIs(t, ValidateTrade(&domain.TradeRecord{Series: testSeries, Type: "HOLD", Timestamp: ok.Timestamp}), ErrInvalidInput)
	assert.ErrorIs(t, ValidateTrade(&domain.TradeRecord{Series: testSeries, Type: "HOLD", Timestamp: ok.Timestamp}), domain.ErrUnknownTradeType)
	assert.ErrorIs(t, ValidateTrade(&domain.TradeRecord{Series: testSeries, Type: domain.TradeBuy}), ErrInvalidInput)
}

func seqs(trades []*domain.TradeRecord) []int64 {
	out := make([]int64, len(trades))
	for i, t := range trades {
		out[i] = t.Seq
	}
	return out
}
