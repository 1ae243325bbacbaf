package indicators

import "testing"

func TestEMASeedIsSMAOfOldestPeriod(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5} // oldest-first
	series, ok := emaSeries(closes, 5)
	if !ok {
		t.Fatalf("expected ok")
	}
	if len(series) != 1 {
		t.Fatalf("expected single seed value, got %d", len(series))
	}
	want := 3.0 // mean(1..5)
	if series[0] != want {
		t.Fatalf("want seed %v, got %v", want, series[0])
	}
}

func TestEMAInsufficientDataIsNone(t *testing.T) {
	closes := makeCandles([]float64{1, 2, 3})
	result := EMA(closes, 9)
	if result.Valid {
		t.Fatalf("expected None for insufficient data")
	}
}

func TestEMACollectionNotStrongWhenOnlyShortEMAsPresent(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = float64(25 - i)
	}
	result := EMACollection(makeCandles(closes))
	if !result.EMA9.Valid || !result.EMA21.Valid {
		t.Fatalf("expected EMA9/EMA21 to be present with 25 candles")
	}
	if result.EMA50.Valid || result.EMA200.Valid {
		t.Fatalf("expected EMA50/EMA200 absent with only 25 candles")
	}
	if result.Trend != EMABullish && result.Trend != EMABearish && result.Trend != EMANeutral {
		t.Fatalf("unexpected trend %v", result.Trend)
	}
}

func TestEMACollectionStrongBullishRequiresFullStack(t *testing.T) {
	closes := make([]float64, 250)
	for i := range closes {
		// price rising over time; index 0 here is newest in makeCandles input order
		closes[i] = float64(250-i) * 1.01
	}
	result := EMACollection(makeCandles(closes))
	if !result.EMA9.Valid || !result.EMA21.Valid || !result.EMA50.Valid || !result.EMA200.Valid {
		t.Fatalf("expected full EMA stack with 250 candles")
	}
	if result.Trend != EMAStrongBullish {
		t.Fatalf("expected strong_bullish with a full rising EMA stack, got %v", result.Trend)
	}
}
