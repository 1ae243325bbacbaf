package indicators

import "testing"

func TestOBVRisingTrendOnUptrend(t *testing.T) {
	bars := trendingBars(30, 100, 1)
	cs := makeOHLCCandles(bars)
	for i := range cs {
		cs[i].Volume = 1
	}
	result := OBVTrend(cs)
	if !result.Valid {
		t.Fatalf("expected valid")
	}
	if result.Value.Trend != OBVRising {
		t.Fatalf("expected rising OBV trend on a steady uptrend, got %v", result.Value.Trend)
	}
}

func TestOBVBullishDivergenceOnFallingPriceRisingOBV(t *testing.T) {
	// Net price change is negative, but the occasional up-tick trades 20x the
	// volume of the surrounding down-ticks, so OBV nets positive: a textbook
	// bullish divergence (price makes a lower low, OBV makes a higher low).
	closesNewestFirst := []float64{95, 102, 96, 103, 97, 104, 98, 105, 99, 100}
	volumesNewestFirst := []float64{1, 20, 1, 20, 1, 20, 1, 20, 1, 1}

	cs := make([]Candle, len(closesNewestFirst))
	for i := range cs {
		cs[i] = Candle{Open: closesNewestFirst[i], High: closesNewestFirst[i], Low: closesNewestFirst[i], Close: closesNewestFirst[i], Volume: volumesNewestFirst[i]}
	}

	result := OBVTrend(cs)
	if !result.Valid {
		t.Fatalf("expected valid")
	}
	if result.Value.Trend != OBVRising {
		t.Fatalf("expected OBV to rise despite falling price, got %v", result.Value.Trend)
	}
	if result.Value.Divergence != OBVDivergenceBullish {
		t.Fatalf("expected bullish divergence, got %v", result.Value.Divergence)
	}
}

func TestOBVInsufficientDataIsNone(t *testing.T) {
	result := OBVTrend([]Candle{{Close: 100, Volume: 1}})
	if result.Valid {
		t.Fatalf("expected None with a single candle")
	}
}
