package domain

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2020, 10, 1, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2020-10-01", "2020-10-01 00:00:00", "2020-10-01T00:00:00", "2020-10-01T00:00:00Z"} {
		got, err := ParseDate(in)
		if err != nil {
			t.Errorf("ParseDate(%q): %v", in, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseDate(%q): expected %v, got %v", in, want, got)
		}
	}

	if _, err := ParseDate("01/10/2020"); err == nil {
		t.Error("expected error for unsupported layout")
	}
}

func TestSeriesKeyString(t *testing.T) {
	k := SeriesKey{StrategyID: "tb2", PeriodID: "dsc"}
	if k.String() != "tb2/dsc" {
		t.Errorf("expected tb2/dsc, got %s", k.String())
	}
}
