package cost

import "testing"

func TestFillPriceDirectionAwareAgainstTrader(t *testing.T) {
	cfg := DefaultConfig()

	longEntry := CalculateExecution(100, DirectionLong, 1, 0.5, 0, cfg, SideEntry)
	if longEntry.FillPrice <= 100 {
		t.Fatalf("expected LONG entry fill above signal price, got %v", longEntry.FillPrice)
	}

	longExit := CalculateExecution(100, DirectionLong, 1, 0.5, 0, cfg, SideExit)
	if longExit.FillPrice >= 100 {
		t.Fatalf("expected LONG exit fill below signal price, got %v", longExit.FillPrice)
	}

	shortEntry := CalculateExecution(100, DirectionShort, 1, 0.5, 0, cfg, SideEntry)
	if shortEntry.FillPrice >= 100 {
		t.Fatalf("expected SHORT entry fill below signal price, got %v", shortEntry.FillPrice)
	}

	shortExit := CalculateExecution(100, DirectionShort, 1, 0.5, 0, cfg, SideExit)
	if shortExit.FillPrice <= 100 {
		t.Fatalf("expected SHORT exit fill above signal price, got %v", shortExit.FillPrice)
	}
}

func TestDelayIncreasesImpact(t *testing.T) {
	cfg := DefaultConfig()
	noDelay := CalculateExecution(100, DirectionLong, 1, 0.5, 0, cfg, SideEntry)
	withDelay := CalculateExecution(100, DirectionLong, 1, 0.5, 5000, cfg, SideEntry)

	if withDelay.TotalImpactPercent <= noDelay.TotalImpactPercent {
		t.Fatalf("expected delay to increase total impact, got %v vs %v", withDelay.TotalImpactPercent, noDelay.TotalImpactPercent)
	}
}

func TestRoundTripBreakEvenMoveSumsBothLegs(t *testing.T) {
	cfg := DefaultConfig()
	entry := CalculateExecution(100, DirectionLong, 1, 0.5, 0, cfg, SideEntry)
	exit := CalculateExecution(100, DirectionLong, 1, 0.5, 0, cfg, SideExit)

	want := entry.TotalImpactPercent + exit.TotalImpactPercent
	got := RoundTripBreakEvenMove(entry, exit)
	if got != want {
		t.Fatalf("want %v, got %v", want, got)
	}
}
