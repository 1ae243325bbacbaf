package indicators

import "testing"

func TestVWAPDegradesToMeanWhenVolumeIsZero(t *testing.T) {
	cs := []Candle{
		{Open: 10, High: 10, Low: 10, Close: 10, Volume: 0},
		{Open: 20, High: 20, Low: 20, Close: 20, Volume: 0},
	}
	result := VWAP(cs)
	if !result.Valid {
		t.Fatalf("expected valid")
	}
	if result.Value != 15 {
		t.Fatalf("expected arithmetic mean fallback of 15, got %v", result.Value)
	}
}

func TestVWAPWeightsByVolume(t *testing.T) {
	cs := []Candle{
		{Open: 10, High: 10, Low: 10, Close: 10, Volume: 1},
		{Open: 100, High: 100, Low: 100, Close: 100, Volume: 9},
	}
	result := VWAP(cs)
	if !result.Valid {
		t.Fatalf("expected valid")
	}
	want := (10*1.0 + 100*9.0) / 10.0
	if diff := result.Value - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("want %v, got %v", want, result.Value)
	}
}

func TestVWAPEmptyIsNone(t *testing.T) {
	result := VWAP(nil)
	if result.Valid {
		t.Fatalf("expected None for empty input")
	}
}
