package analytics

import "errors"

var (
	// ErrMissingAnchor is returned when a record the computation depends on
	// (the last trade, the first open position, the last market bar, the
	// initial balance) does not exist.
	ErrMissingAnchor = errors.New("missing reference record")

	// ErrDegenerateInput is returned when a computation would divide by a
	// zero baseline (initial balance, holding value, drawdown peak).
	ErrDegenerateInput = errors.New("degenerate input: zero baseline")
)
