package indicators

import "testing"

func TestCompositeAllBullishInputsYieldStrongBuy(t *testing.T) {
	rsi := Some(RSIResult{Value: 20, Zone: RSIOversold})
	macd := Some(MACDResult{Crossover: MACDBullishCross})
	emas := Some(EMACollectionResult{Trend: EMAStrongBullish, EMA21: Some(100.0)})
	bb := Some(BollingerResult{PercentB: 0})
	vol := Some(VolumePressureResult{BuyRatio: 1, Dominance: VolumeBuyers})
	vwap := Some(99.0)
	momentum := Some(1.0)
	obv := Some(OBVResult{Divergence: OBVDivergenceBullish})

	composite := BuildComposite(rsi, macd, emas, bb, vol, vwap, momentum, obv, 100)

	if composite.Score <= strongThreshold {
		t.Fatalf("expected score above the strong threshold, got %v", composite.Score)
	}
	if composite.Recommendation != RecommendStrongBuy {
		t.Fatalf("expected strong buy, got %v", composite.Recommendation)
	}
	if composite.Confidence != 100 {
		t.Fatalf("expected full agreement confidence capped at 100, got %v", composite.Confidence)
	}
}

func TestCompositeAllMissingIndicatorsIsNeutralZero(t *testing.T) {
	composite := BuildComposite(None[RSIResult](), None[MACDResult](), None[EMACollectionResult](), None[BollingerResult](), None[VolumePressureResult](), None[float64](), None[float64](), None[OBVResult](), 0)
	if composite.Score != 0 {
		t.Fatalf("expected zero score when every indicator is missing, got %v", composite.Score)
	}
	if composite.Recommendation != RecommendNeutral {
		t.Fatalf("expected neutral recommendation, got %v", composite.Recommendation)
	}
	for name, v := range composite.Components {
		if v != 0 {
			t.Fatalf("expected zero contribution for missing indicator %s, got %v", name, v)
		}
	}
}

func TestCompositeComponentsSumToScore(t *testing.T) {
	rsi := Some(RSIResult{Value: 65, Zone: RSINeutral})
	macd := Some(MACDResult{Crossover: MACDNoCross, Histogram: Some(0.2)})
	emas := Some(EMACollectionResult{Trend: EMABearish, EMA21: Some(100.0)})
	bb := Some(BollingerResult{PercentB: 0.9})
	vol := Some(VolumePressureResult{BuyRatio: 0.3, Dominance: VolumeSellers})
	vwap := Some(101.0)
	momentum := Some(-0.5)
	obv := Some(OBVResult{Divergence: OBVDivergenceNone})

	composite := BuildComposite(rsi, macd, emas, bb, vol, vwap, momentum, obv, 100)

	sum := 0.0
	for _, v := range composite.Components {
		sum += v
	}
	if diff := sum - composite.Score; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("component contributions (%v) should sum to the score (%v)", sum, composite.Score)
	}
}
