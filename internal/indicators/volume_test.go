package indicators

import "testing"

func TestVolumePressureAllBuyersIsBuyerDominant(t *testing.T) {
	cs := make([]Candle, 20)
	for i := range cs {
		cs[i] = Candle{Open: 100, High: 101, Low: 99, Close: 101, Volume: 5}
	}
	result := VolumePressure(cs)
	if !result.Valid {
		t.Fatalf("expected valid")
	}
	if result.Value.BuyRatio != 1 {
		t.Fatalf("expected buyRatio == 1, got %v", result.Value.BuyRatio)
	}
	if result.Value.Dominance != VolumeBuyers {
		t.Fatalf("expected buyer dominance, got %v", result.Value.Dominance)
	}
}

func TestVolumePressureFlatCandlesSplitEvenly(t *testing.T) {
	cs := make([]Candle, 5)
	for i := range cs {
		cs[i] = Candle{Open: 100, High: 100, Low: 100, Close: 100, Volume: 4}
	}
	result := VolumePressure(cs)
	if !result.Valid {
		t.Fatalf("expected valid")
	}
	if result.Value.BuyRatio != 0.5 {
		t.Fatalf("expected 50/50 split for flat candles, got %v", result.Value.BuyRatio)
	}
	if result.Value.Dominance != VolumeNeutral {
		t.Fatalf("expected neutral dominance, got %v", result.Value.Dominance)
	}
}

func TestVolumeSpikeDetectsSurge(t *testing.T) {
	cs := make([]Candle, 21)
	for i := range cs {
		cs[i] = Candle{Open: 100, High: 100, Low: 100, Close: 100, Volume: 1}
	}
	cs[0].Volume = 10 // latest candle, 10x the trailing average
	result := VolumeSpike(cs)
	if !result.Valid {
		t.Fatalf("expected valid")
	}
	if !result.Value.Spike {
		t.Fatalf("expected spike flagged, ratio=%v", result.Value.Ratio)
	}
}

func TestVolumeSpikeNoSurgeWhenUniform(t *testing.T) {
	cs := make([]Candle, 21)
	for i := range cs {
		cs[i] = Candle{Open: 100, High: 100, Low: 100, Close: 100, Volume: 1}
	}
	result := VolumeSpike(cs)
	if !result.Valid {
		t.Fatalf("expected valid")
	}
	if result.Value.Spike {
		t.Fatalf("expected no spike for uniform volume")
	}
}

func TestVolumeWeightedMomentumInsufficientDataIsNone(t *testing.T) {
	result := VolumeWeightedMomentum([]Candle{{Close: 100, Volume: 1}})
	if result.Valid {
		t.Fatalf("expected None with a single candle")
	}
}
