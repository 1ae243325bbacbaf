package strategy

import (
	"testing"

	"solcore/internal/candles"
	"solcore/internal/indicators"
	"solcore/internal/regime"
)

type fakeSource struct {
	snapshots map[candles.Timeframe]indicators.Snapshot
}

func (f *fakeSource) Snapshot(tf candles.Timeframe) (indicators.Snapshot, bool) {
	snap, ok := f.snapshots[tf]
	return snap, ok
}

func TestPipelineReturnsFalseWithoutAnalysisSnapshot(t *testing.T) {
	p := &Pipeline{
		Source:             &fakeSource{snapshots: map[candles.Timeframe]indicators.Snapshot{}},
		Regime:             regime.New(),
		Throttle:           NewThrottle(DefaultThrottleConfig()),
		Config:             DefaultConfig(),
		AnalysisTimeframe:  candles.TF5m,
	}
	_, ok := p.Run(0, nil)
	if ok {
		t.Fatalf("expected false when the analysis timeframe has no snapshot yet")
	}
}

func TestPipelineBlocksEntryWhenNotTradable(t *testing.T) {
	goodSnap := indicators.Snapshot{
		Price:     100,
		Composite: indicators.CompositeSignal{Score: 50, Confidence: 90},
	}
	untradable := indicators.Snapshot{} // no ATR/ADX/BB data at all

	p := &Pipeline{
		Source: &fakeSource{snapshots: map[candles.Timeframe]indicators.Snapshot{
			candles.TF5m:  goodSnap,
			candles.TF15m: untradable,
		}},
		Regime:                regime.New(),
		Throttle:              NewThrottle(DefaultThrottleConfig()),
		Config:                DefaultConfig(),
		AnalysisTimeframe:     candles.TF5m,
		TradabilityTimeframe:  candles.TF15m,
		ConfirmationTimeframe: candles.TF1m,
	}

	analysis, ok := p.Run(0, nil)
	if !ok {
		t.Fatalf("expected analysis to run")
	}
	if analysis.Tradability.Tradable {
		t.Fatalf("expected untradable market")
	}
	if analysis.Entry.Direction != DirectionNone {
		t.Fatalf("expected entry forced to NONE when market not tradable, got %v", analysis.Entry.Direction)
	}
}

func TestPipelineBuildsExitWhenPositionSupplied(t *testing.T) {
	snap := indicators.Snapshot{Price: 100}
	p := &Pipeline{
		Source: &fakeSource{snapshots: map[candles.Timeframe]indicators.Snapshot{
			candles.TF5m:  snap,
			candles.TF15m: snap,
		}},
		Regime:               regime.New(),
		Throttle:             NewThrottle(DefaultThrottleConfig()),
		Config:               DefaultConfig(),
		AnalysisTimeframe:    candles.TF5m,
		TradabilityTimeframe: candles.TF15m,
	}

	pos := ActivePosition{Direction: DirectionLong, EntryPrice: 100, CurrentStopLoss: 90, TakeProfit: 120}
	analysis, ok := p.Run(0, &pos)
	if !ok {
		t.Fatalf("expected analysis to run")
	}
	if analysis.Exit == nil {
		t.Fatalf("expected an exit signal when a position is supplied")
	}
}
