package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backtest-results-api/internal/domain"
	"backtest-results-api/internal/storage"
)

var testSeries = domain.SeriesKey{StrategyID: "tb1", PeriodID: "com"}

func createTestBar(series domain.SeriesKey, day int, closePrice float64) *domain.MarketBar {
	ts := time.Date(2022, 2, day, 0, 0, 0, 0, time.UTC)
	return &domain.MarketBar{
		Series:    series,
		Timestamp: ts,
		Date:      ts.Format("2006-01-02"),
		Time:      "00:00:00",
		OHLC:      domain.OHLC{Open: closePrice, High: closePrice + 1, Low: closePrice - 1, Close: closePrice},
		Volume:    42,
	}
}

func TestMarketStore_InsertBulk(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewMarketStore(conn)
	ctx := context.Background()

	assert.NoError(t, store.InsertBulk(ctx, nil))

	first := createTestBar(testSeries, 1, 100)
	first.InitialBalance = ptr(1000.0)
	require.NoError(t, store.InsertBulk(ctx, []*domain.MarketBar{first, createTestBar(testSeries, 2, 105)}))

	got, err := store.Find(ctx, storage.MarketQuery{Series: testSeries})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].Seq)
	assert.Equal(t, int64(2), got[1].Seq)
	require.NotNil(t, got[0].InitialBalance)
	assert.Equal(t, 1000.0, *got[0].InitialBalance)
	assert.Nil(t, got[1].InitialBalance)
	assert.Equal(t, testSeries, got[0].Series)
	assert.True(t, got[0].Timestamp.Equal(first.Timestamp))
}

func TestMarketStore_SeqContinuesAcrossBatches(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewMarketStore(conn)
	ctx := context.Background()
	other := domain.SeriesKey{StrategyID: "tb1", PeriodID: "asc"}

	require.NoError(t, store.InsertBulk(ctx, []*domain.MarketBar{createTestBar(testSeries, 1, 100)}))
	require.NoError(t, store.InsertBulk(ctx, []*domain.MarketBar{
		createTestBar(testSeries, 2, 101),
		createTestBar(other, 1, 50),
	}))

	got, err := store.Find(ctx, storage.MarketQuery{Series: testSeries, Sort: storage.SortInsertionDesc})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].Seq)

	otherBars, err := store.Find(ctx, storage.MarketQuery{Series: other})
	require.NoError(t, err)
	require.Len(t, otherBars, 1)
	assert.Equal(t, int64(1), otherBars[0].Seq)
}

func TestMarketStore_FindFirst(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewMarketStore(conn)
	ctx := context.Background()

	_, err := store.FindFirst(ctx, storage.MarketQuery{Series: testSeries})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.InsertBulk(ctx, []*domain.MarketBar{
		createTestBar(testSeries, 5, 120),
		createTestBar(testSeries, 1, 100),
	}))

	latest, err := store.FindFirst(ctx, storage.MarketQuery{Series: testSeries, Sort: storage.SortDateDesc})
	require.NoError(t, err)
	assert.Equal(t, 120.0, latest.OHLC.Close)
}
