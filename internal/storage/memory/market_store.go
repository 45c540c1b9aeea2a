package memory

import (
	"context"
	"sync"

	"backtest-results-api/internal/domain"
	"backtest-results-api/internal/storage"
)

// MarketStore is an in-memory implementation of storage.MarketStore.
type MarketStore struct {
	mu      sync.RWMutex
	data    map[domain.SeriesKey][]*domain.MarketBar
	nextSeq int64
}

// NewMarketStore creates a new in-memory market bar store.
func NewMarketStore() *MarketStore {
	return &MarketStore{
		data: make(map[domain.SeriesKey][]*domain.MarketBar),
	}
}

// InsertBulk appends bars atomically. Fails entire batch on any invalid bar.
func (s *MarketStore) InsertBulk(_ context.Context, bars []*domain.MarketBar) error {
	if len(bars) == 0 {
		return nil
	}

	for _, b := range bars {
		if err := storage.ValidateBar(b); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range bars {
		s.nextSeq++
		s.data[b.Series] = append(s.data[b.Series], cloneBar(b, s.nextSeq))
	}

	return nil
}

// Find returns all bars of the series in q.Sort order.
func (s *MarketStore) Find(_ context.Context, q storage.MarketQuery) ([]*domain.MarketBar, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.data[q.Series]
	result := make([]*domain.MarketBar, 0, len(stored))
	for _, b := range stored {
		result = append(result, cloneBar(b, b.Seq))
	}

	storage.SortBars(result, q.Sort)
	return result, nil
}

// FindFirst returns the first bar in q.Sort order. Returns ErrNotFound if the series is empty.
func (s *MarketStore) FindFirst(ctx context.Context, q storage.MarketQuery) (*domain.MarketBar, error) {
	result, err := s.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, storage.ErrNotFound
	}
	return result[0], nil
}

// cloneBar deep-copies b, including its optional fields.
func cloneBar(b *domain.MarketBar, seq int64) *domain.MarketBar {
	copy := *b
	copy.Seq = seq
	if b.InitialBalance != nil {
		v := *b.InitialBalance
		copy.InitialBalance = &v
	}
	if b.Profit != nil {
		v := *b.Profit
		copy.Profit = &v
	}
	return &copy
}

var _ storage.MarketStore = (*MarketStore)(nil)
