package domain

import (
	"errors"
	"testing"
)

func TestParseTradeType(t *testing.T) {
	tests := []struct {
		in      string
		want    TradeType
		wantErr bool
	}{
		{"BUY", TradeBuy, false},
		{" sell ", TradeSell, false},
		{"no signal", TradeNoSignal, false},
		{"Cover", TradeCover, false},
		{"HOLD", "", true},
		{"", "", true},
	}
	for _, tc := range tests {
		got, err := ParseTradeType(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrUnknownTradeType) {
				t.Errorf("ParseTradeType(%q): expected ErrUnknownTradeType, got %q (err %v)", tc.in, got, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTradeType(%q): unexpected error %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseTradeType(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestTradeTypeValid(t *testing.T) {
	if !TradeLong.Valid() {
		t.Error("LONG should be valid")
	}
	if TradeType("long").Valid() {
		t.Error("lower case types are not valid without parsing")
	}
}
