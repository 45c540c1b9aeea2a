package storage

import (
	"fmt"
	"sort"

	"backtest-results-api/internal/domain"
)

// SortOrder selects the order of query results.
type SortOrder int

const (
	// SortInsertionAsc orders by Seq, oldest row first. It is the zero value.
	SortInsertionAsc SortOrder = iota
	// SortInsertionDesc orders by Seq, newest row first.
	SortInsertionDesc
	// SortDateAsc orders by Timestamp, then Seq.
	SortDateAsc
	// SortDateDesc orders by Timestamp descending, then Seq descending.
	SortDateDesc
)

func (o SortOrder) String() string {
	switch o {
	case SortInsertionAsc:
		return "insertion_asc"
	case SortInsertionDesc:
		return "insertion_desc"
	case SortDateAsc:
		return "date_asc"
	case SortDateDesc:
		return "date_desc"
	default:
		return fmt.Sprintf("SortOrder(%d)", int(o))
	}
}

// TradeQuery selects trades of one series.
type TradeQuery struct {
	Series domain.SeriesKey
	Types  []domain.TradeType // empty means all types
	Sort   SortOrder
}

// MarketQuery selects market bars of one series.
type MarketQuery struct {
	Series domain.SeriesKey
	Sort   SortOrder
}

// Validate checks the query before it reaches a backend.
func (q TradeQuery) Validate() error {
	if err := validateSeries(q.Series); err != nil {
		return err
	}
	for _, t := range q.Types {
		if !t.Valid() {
			return fmt.Errorf("trade type %q: %w", t, ErrInvalidInput)
		}
	}
	return validateSort(q.Sort)
}

// Validate checks the query before it reaches a backend.
func (q MarketQuery) Validate() error {
	if err := validateSeries(q.Series); err != nil {
		return err
	}
	return validateSort(q.Sort)
}

// Matches reports whether t belongs to the query's series and types.
func (q TradeQuery) Matches(t *domain.TradeRecord) bool {
	if t.Series != q.Series {
		return false
	}
	if len(q.Types) == 0 {
		return true
	}
	for _, want := range q.Types {
		if t.Type == want {
			return true
		}
	}
	return false
}

// TypeStrings returns the query types as plain strings for SQL parameters.
func (q TradeQuery) TypeStrings() []string {
	out := make([]string, len(q.Types))
	for i, t := range q.Types {
		out[i] = string(t)
	}
	return out
}

// ValidateTrade checks a trade before insert.
func ValidateTrade(t *domain.TradeRecord) error {
	if t == nil {
		return fmt.Errorf("nil trade: %w", ErrInvalidInput)
	}
	if err := validateSeries(t.Series); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return fmt.Errorf("%w %q: %w", domain.ErrUnknownTradeType, t.Type, ErrInvalidInput)
	}
	if t.Timestamp.IsZero() {
		return fmt.Errorf("trade %s missing timestamp: %w", t.Date, ErrInvalidInput)
	}
	return nil
}

// ValidateBar checks a market bar before insert.
func ValidateBar(b *domain.MarketBar) error {
	if b == nil {
		return fmt.Errorf("nil bar: %w", ErrInvalidInput)
	}
	if err := validateSeries(b.Series); err != nil {
		return err
	}
	if b.Timestamp.IsZero() {
		return fmt.Errorf("bar %s missing timestamp: %w", b.Date, ErrInvalidInput)
	}
	return nil
}

// SortTrades sorts trades in place by the given order.
func SortTrades(trades []*domain.TradeRecord, order SortOrder) {
	sort.SliceStable(trades, func(i, j int) bool {
		a, b := trades[i], trades[j]
		switch order {
		case SortInsertionDesc:
			return a.Seq > b.Seq
		case SortDateAsc:
			if !a.Timestamp.Equal(b.Timestamp) {
				return a.Timestamp.Before(b.Timestamp)
			}
			return a.Seq < b.Seq
		case SortDateDesc:
			if !a.Timestamp.Equal(b.Timestamp) {
				return a.Timestamp.After(b.Timestamp)
			}
			return a.Seq > b.Seq
		default:
			return a.Seq < b.Seq
		}
	})
}

// SortBars sorts bars in place by the given order.
func SortBars(bars []*domain.MarketBar, order SortOrder) {
	sort.SliceStable(bars, func(i, j int) bool {
		a, b := bars[i], bars[j]
		switch order {
		case SortInsertionDesc:
			return a.Seq > b.Seq
		case SortDateAsc:
			if !a.Timestamp.Equal(b.Timestamp) {
				return a.Timestamp.Before(b.Timestamp)
			}
			return a.Seq < b.Seq
		case SortDateDesc:
			if !a.Timestamp.Equal(b.Timestamp) {
				return a.Timestamp.After(b.Timestamp)
			}
			return a.Seq > b.Seq
		default:
			return a.Seq < b.Seq
		}
	})
}

// OrderByClause returns the SQL ORDER BY expression for a sort order.
// dateColumn names the timestamp column of the target table.
func OrderByClause(order SortOrder, dateColumn string) string {
	switch order {
	case SortInsertionDesc:
		return "seq DESC"
	case SortDateAsc:
		return dateColumn + " ASC, seq ASC"
	case SortDateDesc:
		return dateColumn + " DESC, seq DESC"
	default:
		return "seq ASC"
	}
}

func validateSeries(k domain.SeriesKey) error {
	if k.StrategyID == "" || k.PeriodID == "" {
		return fmt.Errorf("series %q: %w", k.String(), ErrInvalidInput)
	}
	return nil
}

func validateSort(o SortOrder) error {
	if o < SortInsertionAsc || o > SortDateDesc {
		return fmt.Errorf("sort order %s: %w", o, ErrInvalidInput)
	}
	return nil
}
