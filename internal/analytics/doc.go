// Package analytics computes summary statistics over backtest trade logs
// and their market data: longest trade, gain/loss extremes, maximum
// drawdown, trade counts, hold-vs-trade earnings and overall profit.
//
// Every function is pure. Inputs are never mutated; functions that need a
// particular order copy and sort the slice themselves, so callers may pass
// records in any order the store returned them.
package analytics
