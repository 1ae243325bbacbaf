package indicators

import (
	"math"
	"testing"
)

func makeCandles(closesNewestFirst []float64) []Candle {
	out := make([]Candle, len(closesNewestFirst))
	for i, c := range closesNewestFirst {
		out[i] = Candle{Open: c, High: c, Low: c, Close: c, TimestampMs: int64(len(closesNewestFirst)-i) * 1000}
	}
	return out
}

func TestRSIMonotoneRisingIsExactly100(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = float64(len(closes) - i)
	}
	result := RSI(makeCandles(closes), 14)
	if !result.Valid {
		t.Fatalf("expected valid RSI")
	}
	if result.Value.Value != 100 {
		t.Fatalf("expected RSI == 100 for a monotone rising series, got %v", result.Value.Value)
	}
	if result.Value.Zone != RSIOverbought {
		t.Fatalf("expected overbought zone, got %v", result.Value.Zone)
	}
}

func TestRSIConstantPriceIsExactly100(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100
	}
	result := RSI(makeCandles(closes), 14)
	if !result.Valid {
		t.Fatalf("expected valid RSI")
	}
	if result.Value.Value != 100 {
		t.Fatalf("expected RSI == 100 when avgLoss is exactly zero, got %v", result.Value.Value)
	}
}

func TestRSIInsufficientDataIsNone(t *testing.T) {
	closes := []float64{1, 2, 3}
	result := RSI(makeCandles(closes), 14)
	if result.Valid {
		t.Fatalf("expected None for insufficient data")
	}
}

func TestRSIBoundedRange(t *testing.T) {
	closes := []float64{10, 12, 11, 13, 9, 15, 14, 16, 13, 18, 17, 20, 19, 22, 21}
	result := RSI(makeCandles(closes), 14)
	if !result.Valid {
		t.Fatalf("expected valid RSI")
	}
	if result.Value.Value < 0 || result.Value.Value > 100 {
		t.Fatalf("RSI out of [0,100]: %v", result.Value.Value)
	}
	if math.IsNaN(result.Value.Value) {
		t.Fatalf("RSI is NaN")
	}
}
