package strategy

import (
	"testing"

	"solcore/internal/indicators"
	"solcore/internal/regime"
)

func TestEntryRiskFloorEnforced(t *testing.T) {
	snap := indicators.Snapshot{
		Price: 200,
		ATR:   indicators.Some(indicators.ATRResult{Value: 0.2, ValuePercent: 0.1, Level: indicators.ATRNormal}),
		Composite: indicators.CompositeSignal{
			Score:      50,
			Confidence: 80,
		},
	}
	cfg := DefaultConfig()
	cfg.ATRStopLossMultiplier = 2.0
	cfg.ATRTakeProfitMultiplier = 4.0

	params := regime.Parameters{StopLossMultiplier: 1.0, TakeProfitMultiplier: 1.0, SizeMultiplier: 1.0}
	reg := regime.Reading{State: regime.StateTrendingBullish, Confidence: 80}

	signal := BuildEntrySignal(snap, reg, params, 200, cfg)

	if signal.Direction != DirectionLong {
		t.Fatalf("expected LONG, got %v", signal.Direction)
	}
	// atrStopLossMultiplier*ATR = 2.0*0.2 = 0.4, floor is 0.5% of 200 = 1.0
	if diff := signal.StopLoss - 199.0; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected SL=199, got %v", signal.StopLoss)
	}
	// atrTakeProfitMultiplier*ATR = 4.0*0.2 = 0.8, floor is 1.2% of 200 = 2.4
	if diff := signal.TakeProfit - 202.4; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected TP=202.4, got %v", signal.TakeProfit)
	}
}

func TestEntryBelowMinConfidenceForcesNone(t *testing.T) {
	snap := indicators.Snapshot{
		Price: 100,
		Composite: indicators.CompositeSignal{
			Score:      50,
			Confidence: 10,
		},
	}
	cfg := DefaultConfig()
	reg := regime.Reading{State: regime.StateTrendingBullish}
	params := regime.Parameters{SizeMultiplier: 1.0}

	signal := BuildEntrySignal(snap, reg, params, 100, cfg)
	if signal.Direction != DirectionNone {
		t.Fatalf("expected no entry below minConfidenceToEnter, got %v", signal.Direction)
	}
}

func TestEntryRegimeFilterBlocksUnfavourableRegime(t *testing.T) {
	snap := indicators.Snapshot{
		Price:     100,
		Composite: indicators.CompositeSignal{Score: 50, Confidence: 90},
	}
	cfg := DefaultConfig()
	cfg.EnableRegimeFilter = true
	cfg.AllowTradingInRanging = false
	reg := regime.Reading{State: regime.StateRanging}
	params := regime.Parameters{SizeMultiplier: 1.0}

	signal := BuildEntrySignal(snap, reg, params, 100, cfg)
	if signal.Direction != DirectionNone || signal.ShouldEnter {
		t.Fatalf("expected no entry when regime filter blocks ranging, got %+v", signal)
	}
}

func TestEntryScoreBelowThresholdIsNone(t *testing.T) {
	snap := indicators.Snapshot{
		Price:     100,
		Composite: indicators.CompositeSignal{Score: 5, Confidence: 90},
	}
	cfg := DefaultConfig()
	reg := regime.Reading{State: regime.StateTrendingBullish}
	params := regime.Parameters{SizeMultiplier: 1.0}

	signal := BuildEntrySignal(snap, reg, params, 100, cfg)
	if signal.Direction != DirectionNone {
		t.Fatalf("expected NONE direction below minScoreToEnter, got %v", signal.Direction)
	}
}
