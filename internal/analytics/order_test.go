package analytics

import "testing"

func TestFixed2_FollowsStoredValue(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1.005, "1.00"}, // stored as 1.00499...
		{2.675, "2.67"}, // stored as 2.67499...
		{0.125, "0.13"}, // exact half
		{-0.125, "-0.13"},
		{1.255, "1.25"},
		{10, "10.00"},
		{0, "0.00"},
	}
	for _, tc := range tests {
		if got := fixed2(tc.in); got != tc.want {
			t.Errorf("fixed2(%v): expected %s, got %s", tc.in, tc.want, got)
		}
	}
}

func TestRound2_FollowsStoredValue(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.005, 1.0},
		{2.675, 2.67},
		{1234.567, 1234.57},
		{0.125, 0.13},
	}
	for _, tc := range tests {
		if got := round2(tc.in); got != tc.want {
			t.Errorf("round2(%v): expected %v, got %v", tc.in, tc.want, got)
		}
	}
}
