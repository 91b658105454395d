package scoring

import (
	"testing"

	"github.com/abhisek/ieltsprep/internal/question"
)

func TestDefaultTablesValid(t *testing.T) {
	for _, kind := range question.Kinds {
		if err := DefaultBandTable(kind).Validate(); err != nil {
			t.Errorf("%s table: %v", kind, err)
		}
	}
}

func TestCalculateBandScore_RawConversion(t *testing.T) {
	tests := []struct {
		kind    question.Kind
		correct int
		want    float64
	}{
		{question.KindReading, 40, 9},
		{question.KindReading, 39, 9},
		{question.KindReading, 35, 8},
		{question.KindReading, 30, 7},
		{question.KindReading, 29, 6.5},
		{question.KindReading, 23, 6},
		{question.KindReading, 0, 0},
		{question.KindListening, 32, 7.5},
		{question.KindListening, 26, 6.5},
		{question.KindListening, 18, 5.5},
		{question.KindListening, 16, 5},
	}
	for _, tt := range tests {
		if got := CalculateBandScore(tt.correct, 40, tt.kind); got != tt.want {
			t.Errorf("%s %d/40 = %v, want %v", tt.kind, tt.correct, got, tt.want)
		}
	}
	if got := CalculateBandScore(0, 0, question.KindReading); got != 0 {
		t.Errorf("0/0 = %v, want 0", got)
	}
}

func TestBand_MonotonicInPercentage(t *testing.T) {
	for _, kind := range question.Kinds {
		table := DefaultBandTable(kind)
		prev := -1.0
		for pct := 0.0; pct <= 100; pct += 0.5 {
			band := table.Band(pct)
			if band < prev {
				t.Fatalf("%s: band dropped from %v to %v at %v%%", kind, prev, band, pct)
			}
			prev = band
		}
	}
}

func TestValidate_RejectsBadTables(t *testing.T) {
	tests := map[string]BandTable{
		"empty":         {},
		"ascending":     {{50, 5}, {60, 6}},
		"band rises":    {{90, 8}, {80, 9}},
		"quarter band":  {{90, 8.25}},
		"out of scale":  {{90, 10}},
		"bad threshold": {{120, 9}},
	}
	for name, table := range tests {
		if err := table.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestRoundHalfBand(t *testing.T) {
	tests := map[float64]float64{6.125: 6, 6.25: 6.5, 6.625: 6.5, 6.75: 7, 7: 7}
	for in, want := range tests {
		if got := RoundHalfBand(in); got != want {
			t.Errorf("RoundHalfBand(%v) = %v, want %v", in, got, want)
		}
	}
}
