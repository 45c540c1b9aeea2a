// Package ingest loads backtest CSV exports into the stores.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"backtest-results-api/internal/domain"
	"backtest-results-api/internal/storage"
)

// ErrInvalidFile is returned for CSV content that cannot be loaded.
var ErrInvalidFile = errors.New("invalid csv file")

// Columns of the trade export. Unlisted columns are ignored.
var (
	tradeRequired = []string{"date", "trade", "balance"}
	barRequired   = []string{"date", "close"}
)

// header maps lower-cased column names to their index.
type header map[string]int

func readHeader(r *csv.Reader, required []string) (header, error) {
	names, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file: %w", ErrInvalidFile)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	h := make(header, len(names))
	for i, name := range names {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		h[name] = i
	}
	for _, col := range required {
		if _, ok := h[col]; !ok {
			return nil, fmt.Errorf("missing column %q: %w", col, ErrInvalidFile)
		}
	}
	return h, nil
}

// value returns the trimmed cell of col, or "" when the column is absent.
func (h header) value(rec []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// float parses col; an empty cell reads as zero.
func (h header) float(rec []string, col string) (float64, error) {
	v := h.value(rec, col)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", col, err)
	}
	return f, nil
}

// optional parses col into a pointer; an empty cell reads as nil.
func (h header) optional(rec []string, col string) (*float64, error) {
	if h.value(rec, col) == "" {
		return nil, nil
	}
	f, err := h.float(rec, col)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (h header) ohlc(rec []string) (domain.OHLC, error) {
	var (
		o   domain.OHLC
		err error
	)
	if o.Open, err = h.float(rec, "open"); err != nil {
		return o, err
	}
	if o.High, err = h.float(rec, "high"); err != nil {
		return o, err
	}
	if o.Low, err = h.float(rec, "low"); err != nil {
		return o, err
	}
	if o.Close, err = h.float(rec, "close"); err != nil {
		return o, err
	}
	return o, nil
}

// LoadTrades parses a trade export. Rows keep file order, which becomes
// their insertion order once stored.
func LoadTrades(r io.Reader, series domain.SeriesKey) ([]*domain.TradeRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	h, err := readHeader(cr, tradeRequired)
	if err != nil {
		return nil, err
	}

	var trades []*domain.TradeRecord
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if isBlank(rec) {
			continue
		}
		line, _ := cr.FieldPos(0)

		t, err := parseTrade(h, rec, series)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w: %w", line, err, ErrInvalidFile)
		}
		trades = append(trades, t)
	}
	return trades, nil
}

func parseTrade(h header, rec []string, series domain.SeriesKey) (*domain.TradeRecord, error) {
	date := h.value(rec, "date")
	ts, err := domain.ParseDate(date)
	if err != nil {
		return nil, err
	}
	tradeType, err := domain.ParseTradeType(h.value(rec, "trade"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", err, storage.ErrInvalidInput)
	}

	t := &domain.TradeRecord{
		Series:    series,
		Timestamp: ts,
		Date:      date,
		Type:      tradeType,
	}
	if v := h.value(rec, "unix"); v != "" {
		if t.Unix, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, fmt.Errorf("column unix: %w", err)
		}
	}
	if t.Price, err = h.float(rec, "price"); err != nil {
		return nil, err
	}
	if t.OHLC, err = h.ohlc(rec); err != nil {
		return nil, err
	}
	if t.Balance, err = h.float(rec, "balance"); err != nil {
		return nil, err
	}
	if t.PositionSize, err = h.float(rec, "position_size"); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadMarketBars parses a market data export.
func LoadMarketBars(r io.Reader, series domain.SeriesKey) ([]*domain.MarketBar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	h, err := readHeader(cr, barRequired)
	if err != nil {
		return nil, err
	}

	var bars []*domain.MarketBar
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if isBlank(rec) {
			continue
		}
		line, _ := cr.FieldPos(0)

		b, err := parseBar(h, rec, series)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w: %w", line, err, ErrInvalidFile)
		}
		bars = append(bars, b)
	}
	return bars, nil
}

func parseBar(h header, rec []string, series domain.SeriesKey) (*domain.MarketBar, error) {
	date, clock := h.value(rec, "date"), h.value(rec, "time")

	// Prefer date and time together when they combine into a known layout.
	ts, err := domain.ParseDate(date + " " + clock)
	if clock == "" || err != nil {
		if ts, err = domain.ParseDate(date); err != nil {
			return nil, err
		}
	}

	b := &domain.MarketBar{
		Series:    series,
		Timestamp: ts,
		Date:      date,
		Time:      clock,
	}
	if b.OHLC, err = h.ohlc(rec); err != nil {
		return nil, err
	}
	if b.Volume, err = h.float(rec, "volume"); err != nil {
		return nil, err
	}
	if b.InitialBalance, err = h.optional(rec, "initial_balance"); err != nil {
		return nil, err
	}
	if b.Profit, err = h.optional(rec, "profit"); err != nil {
		return nil, err
	}
	return b, nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
