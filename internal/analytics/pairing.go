package analytics

import "backtest-results-api/internal/domain"

// position is one open/close pair.
type position struct {
	entry *domain.TradeRecord
	exit  *domain.TradeRecord
}

// pairPositions walks the open and close signals of dir in date order and
// pairs each close with the earliest still-unclosed open.
//
// An open seen while a position is already open is ignored, and so is a
// close seen while flat. The same rule is used for trade durations and for
// gain/loss so both describe the same positions.
func pairPositions(dir domain.Direction, trades []*domain.TradeRecord) []position {
	var (
		out  []position
		open *domain.TradeRecord
	)
	for _, t := range byDate(filterTypes(trades, dir.Open, dir.Close)) {
		switch {
		case t.Type == dir.Open && open == nil:
			open = t
		case t.Type == dir.Close && open != nil:
			out = append(out, position{entry: open, exit: t})
			open = nil
		}
	}
	return out
}
