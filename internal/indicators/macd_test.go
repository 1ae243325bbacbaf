package indicators

import "testing"

func TestMACDHistogramEqualsLineMinusSignal(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = float64(60-i) + 0.3*float64(i%5)
	}
	result := MACD(makeCandles(closes), 12, 26, 9)
	if !result.Valid {
		t.Fatalf("expected valid MACD with 60 candles")
	}
	if !result.Value.Signal.Valid || !result.Value.Histogram.Valid {
		t.Fatalf("expected signal/histogram present with 60 candles")
	}
	want := result.Value.MACD - result.Value.Signal.Value
	got := result.Value.Histogram.Value
	if diff := want - got; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("histogram (%v) != macd-signal (%v)", got, want)
	}
}

func TestMACDInsufficientDataIsNone(t *testing.T) {
	closes := []float64{1, 2, 3}
	result := MACD(makeCandles(closes), 12, 26, 9)
	if result.Valid {
		t.Fatalf("expected None for insufficient data")
	}
}

func TestMACDPresentWithoutSignalWhenTooShortForSignalLine(t *testing.T) {
	closes := make([]float64, 27)
	for i := range closes {
		closes[i] = float64(27 - i)
	}
	result := MACD(makeCandles(closes), 12, 26, 9)
	if !result.Valid {
		t.Fatalf("expected MACD line present once slow EMA has data")
	}
	if result.Value.Signal.Valid {
		t.Fatalf("expected signal absent: only 2 macd points exist, need 9 for the signal EMA")
	}
}
