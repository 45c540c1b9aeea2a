package memory

import (
	"context"
	"sync"

	"backtest-results-api/internal/domain"
	"backtest-results-api/internal/storage"
)

// TradeStore is an in-memory implementation of storage.TradeStore.
type TradeStore struct {
	mu      sync.RWMutex
	data    map[domain.SeriesKey][]*domain.TradeRecord
	nextSeq int64
}

// NewTradeStore creates a new in-memory trade store.
func NewTradeStore() *TradeStore {
	return &TradeStore{
		data: make(map[domain.SeriesKey][]*domain.TradeRecord),
	}
}

// InsertBulk appends trades atomically. Fails entire batch on any invalid record.
func (s *TradeStore) InsertBulk(_ context.Context, trades []*domain.TradeRecord) error {
	if len(trades) == 0 {
		return nil
	}

	// First pass: validate everything before touching state
	for _, t := range trades {
		if err := storage.ValidateTrade(t); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Second pass: assign seq and insert copies
	for _, t := range trades {
		s.nextSeq++
		copy := *t
		copy.Seq = s.nextSeq
		s.data[t.Series] = append(s.data[t.Series], &copy)
	}

	return nil
}

// Find returns matching trades in q.Sort order.
func (s *TradeStore) Find(_ context.Context, q storage.TradeQuery) ([]*domain.TradeRecord, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.TradeRecord, 0)
	for _, t := range s.data[q.Series] {
		if q.Matches(t) {
			copy := *t
			result = append(result, &copy)
		}
	}

	storage.SortTrades(result, q.Sort)
	return result, nil
}

// FindFirst returns the first matching trade. Returns ErrNotFound if none match.
func (s *TradeStore) FindFirst(ctx context.Context, q storage.TradeQuery) (*domain.TradeRecord, error) {
	result, err := s.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, storage.ErrNotFound
	}
	return result[0], nil
}

var _ storage.TradeStore = (*TradeStore)(nil)
