package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTradeType is returned for a trade type outside the known set.
var ErrUnknownTradeType = errors.New("unknown trade type")

// TradeType is the signal recorded by the backtest engine for a trade row.
type TradeType string

// Trade types produced by the backtest engines.
// BUY/SELL come from the long-only bot; the trend/indicator bots emit
// LONG/CLOSE and SHORT/COVER pairs plus NO SIGNAL markers.
const (
	TradeBuy      TradeType = "BUY"
	TradeSell     TradeType = "SELL"
	TradeLong     TradeType = "LONG"
	TradeShort    TradeType = "SHORT"
	TradeCover    TradeType = "COVER"
	TradeClose    TradeType = "CLOSE"
	TradeNoSignal TradeType = "NO SIGNAL"
)

var knownTradeTypes = map[TradeType]struct{}{
	TradeBuy:      {},
	TradeSell:     {},
	TradeLong:     {},
	TradeShort:    {},
	TradeCover:    {},
	TradeClose:    {},
	TradeNoSignal: {},
}

// ParseTradeType validates a raw trade type string.
// Surrounding whitespace is ignored; the match is case-sensitive upper case
// after normalization.
func ParseTradeType(s string) (TradeType, error) {
	t := TradeType(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := knownTradeTypes[t]; !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownTradeType, s)
	}
	return t, nil
}

// Valid reports whether t is one of the known trade types.
func (t TradeType) Valid() bool {
	_, ok := knownTradeTypes[t]
	return ok
}

// Direction is an open/close signal pair bracketing one position.
type Direction struct {
	Open  TradeType `json:"open" yaml:"open"`
	Close TradeType `json:"close" yaml:"close"`
}

// Common directions.
var (
	DirectionBuySell    = Direction{Open: TradeBuy, Close: TradeSell}
	DirectionLongClose  = Direction{Open: TradeLong, Close: TradeClose}
	DirectionShortCover = Direction{Open: TradeShort, Close: TradeCover}
)
