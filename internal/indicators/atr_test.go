package indicators

import "testing"

type ohlc struct {
	open, high, low, close float64
}

func makeOHLCCandles(barsNewestFirst []ohlc) []Candle {
	out := make([]Candle, len(barsNewestFirst))
	for i, b := range barsNewestFirst {
		out[i] = Candle{
			Open:        b.open,
			High:        b.high,
			Low:         b.low,
			Close:       b.close,
			TimestampMs: int64(len(barsNewestFirst)-i) * 1000,
		}
	}
	return out
}

func flatRangeBars(n int, price, halfRange float64) []ohlc {
	bars := make([]ohlc, n)
	for i := range bars {
		bars[i] = ohlc{open: price, high: price + halfRange, low: price - halfRange, close: price}
	}
	return bars
}

func TestATRInsufficientDataIsNone(t *testing.T) {
	result := ATR(makeOHLCCandles(flatRangeBars(5, 100, 1)), 14, 0.3, 0.8, 1.5)
	if result.Valid {
		t.Fatalf("expected None for insufficient data")
	}
}

func TestATRConstantRangeConverges(t *testing.T) {
	bars := flatRangeBars(40, 100, 1)
	result := ATR(makeOHLCCandles(bars), 14, 0.3, 0.8, 1.5)
	if !result.Valid {
		t.Fatalf("expected valid ATR")
	}
	if result.Value.Value <= 0 {
		t.Fatalf("expected positive ATR for nonzero range bars, got %v", result.Value.Value)
	}
	if diff := result.Value.Value - 2.0; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("expected ATR to converge to the constant true range of 2.0, got %v", result.Value.Value)
	}
}

func TestATRLevelBucketing(t *testing.T) {
	bars := flatRangeBars(40, 100, 0.05)
	result := ATR(makeOHLCCandles(bars), 14, 0.3, 0.8, 1.5)
	if !result.Valid {
		t.Fatalf("expected valid ATR")
	}
	if result.Value.Level != ATRLow {
		t.Fatalf("expected low volatility bucket, got %v (valuePercent=%v)", result.Value.Level, result.Value.ValuePercent)
	}
}
