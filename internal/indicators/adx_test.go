package indicators

import "testing"

func trendingBars(n int, start, step float64) []ohlc {
	bars := make([]ohlc, n)
	price := start
	for i := n - 1; i >= 0; i-- {
		bars[i] = ohlc{open: price, high: price + 0.5, low: price - 0.5, close: price}
		price += step
	}
	return bars
}

func TestADXInsufficientDataIsNone(t *testing.T) {
	result := ADX(makeOHLCCandles(flatRangeBars(10, 100, 1)), 14)
	if result.Valid {
		t.Fatalf("expected None: need at least 2*period+1 candles")
	}
}

func TestADXStrongUptrendIsBullish(t *testing.T) {
	bars := trendingBars(40, 100, 1)
	result := ADX(makeOHLCCandles(bars), 14)
	if !result.Valid {
		t.Fatalf("expected valid ADX with 40 candles")
	}
	if result.Value.Direction != ADXDirectionBullish {
		t.Fatalf("expected bullish direction for a steady uptrend, got %v", result.Value.Direction)
	}
	if result.Value.PlusDI <= result.Value.MinusDI {
		t.Fatalf("expected +DI > -DI in an uptrend")
	}
}

func TestADXFlatMarketHasLowStrength(t *testing.T) {
	bars := flatRangeBars(40, 100, 0.5)
	result := ADX(makeOHLCCandles(bars), 14)
	if !result.Valid {
		t.Fatalf("expected valid ADX")
	}
	if result.Value.ADX > 15 {
		t.Fatalf("expected near-zero ADX on a flat market, got %v", result.Value.ADX)
	}
}
