package strategy

import (
	"testing"

	"solcore/internal/indicators"
	"solcore/internal/regime"
)

func TestExitLongStopLoss(t *testing.T) {
	pos := ActivePosition{
		Direction:       DirectionLong,
		EntryPrice:      200,
		CurrentStopLoss: 198,
		TakeProfit:      206,
		EntryTimeMs:     -60_000,
	}
	cfg := DefaultConfig()
	reg := regime.Reading{State: regime.StateRanging}

	signal := BuildExitSignal(pos, indicators.Snapshot{}, reg, 197, 0, cfg)

	if !signal.ShouldExit || signal.Reason != ExitStopLoss {
		t.Fatalf("expected STOP_LOSS exit, got %+v", signal)
	}
	if signal.Urgency != UrgencyCritical {
		t.Fatalf("expected critical urgency, got %v", signal.Urgency)
	}
	if diff := signal.CurrentPnLPercent - (-1.5); diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected pnl%% ~= -1.5, got %v", signal.CurrentPnLPercent)
	}
}

func TestExitTakeProfitTakesPriorityOverTrailing(t *testing.T) {
	pos := ActivePosition{
		Direction:       DirectionLong,
		EntryPrice:      100,
		CurrentStopLoss: 95,
		TakeProfit:      110,
		MaxPrice:        109,
		MaxPnLPercent:    9,
	}
	cfg := DefaultConfig()
	reg := regime.Reading{State: regime.StateRanging}

	signal := BuildExitSignal(pos, indicators.Snapshot{}, reg, 110, 0, cfg)
	if signal.Reason != ExitTakeProfit {
		t.Fatalf("expected TAKE_PROFIT, got %v", signal.Reason)
	}
}

func TestExitTimeStop(t *testing.T) {
	pos := ActivePosition{
		Direction:       DirectionLong,
		EntryPrice:      100,
		CurrentStopLoss: 50,
		TakeProfit:      500,
		EntryTimeMs:     0,
	}
	cfg := DefaultConfig()
	cfg.EnableTrailingStop = false
	reg := regime.Reading{State: regime.StateRanging}

	signal := BuildExitSignal(pos, indicators.Snapshot{}, reg, 101, cfg.MaxHoldTimeSeconds*1000, cfg)
	if signal.Reason != ExitTimeStop {
		t.Fatalf("expected TIME_STOP, got %+v", signal)
	}
}

func TestUpdatePositionTrackingIdempotent(t *testing.T) {
	pos := ActivePosition{Direction: DirectionLong, EntryPrice: 100}
	UpdatePositionTracking(&pos, 105)
	first := pos

	UpdatePositionTracking(&pos, 105)
	if pos != first {
		t.Fatalf("expected idempotent update for an unchanging price, got %+v vs %+v", pos, first)
	}
}

func TestNoExitWhenNothingTriggers(t *testing.T) {
	pos := ActivePosition{
		Direction:       DirectionLong,
		EntryPrice:      100,
		CurrentStopLoss: 90,
		TakeProfit:      120,
		EntryTimeMs:     0,
	}
	cfg := DefaultConfig()
	reg := regime.Reading{State: regime.StateRanging}

	signal := BuildExitSignal(pos, indicators.Snapshot{}, reg, 101, 1000, cfg)
	if signal.ShouldExit {
		t.Fatalf("expected no exit, got %+v", signal)
	}
}
