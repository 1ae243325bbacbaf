package indicators

import "testing"

func TestBollingerMiddleEqualsSMA(t *testing.T) {
	closes := []float64{10, 11, 9, 12, 8, 13, 7, 14, 6, 15, 10, 11, 9, 12, 8, 13, 7, 14, 6, 15}
	candles := makeCandles(closes)
	bb := BollingerBands(candles, 20, 2)
	sma := SMA(candles, 20)
	if !bb.Valid || !sma.Valid {
		t.Fatalf("expected both valid")
	}
	if bb.Value.Middle != sma.Value {
		t.Fatalf("middle band (%v) != SMA(20) (%v)", bb.Value.Middle, sma.Value)
	}
}

func TestBollingerFlatSeriesHasZeroWidthAndHalfPercentB(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100
	}
	bb := BollingerBands(makeCandles(closes), 20, 2)
	if !bb.Valid {
		t.Fatalf("expected valid")
	}
	if bb.Value.Upper != bb.Value.Lower {
		t.Fatalf("expected zero-width bands on a flat series")
	}
	if bb.Value.PercentB != 0.5 {
		t.Fatalf("expected %%B == 0.5 when upper == lower, got %v", bb.Value.PercentB)
	}
}

func TestBollingerInsufficientDataIsNone(t *testing.T) {
	result := BollingerBands(makeCandles([]float64{1, 2, 3}), 20, 2)
	if result.Valid {
		t.Fatalf("expected None for insufficient data")
	}
}
