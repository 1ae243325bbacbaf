package strategy

import (
	"solcore/internal/candles"
	"solcore/internal/indicators"
	"solcore/internal/regime"
)

// SnapshotSource is the narrow collaborator interface the pipeline needs
// from the indicator engine: one snapshot per timeframe, built fresh over
// whatever candle window is currently retained.
type SnapshotSource interface {
	Snapshot(tf candles.Timeframe) (indicators.Snapshot, bool)
}

// Analysis is the combined output of one pipeline run (spec.md §4.9).
type Analysis struct {
	Tradability   TradabilityResult
	Throttle      ThrottleResult
	Confirmation  *ConfirmationResult
	Regime        regime.Reading
	Entry         EntrySignal
	Exit          *ExitSignal
	CurrentPrice  float64
	TimestampMs   int64
	Config        Config
}

// Pipeline composes tradability, throttle, regime, entry, confirmation and
// exit into one Analysis, grounded on
// multi_timeframe_coordinator.go's role as an orchestrator over
// already-built services behind one Process-style entry point.
type Pipeline struct {
	Source   SnapshotSource
	Regime   *regime.Detector
	Throttle *Throttle
	Config   Config

	AnalysisTimeframe  candles.Timeframe
	TradabilityTimeframe candles.Timeframe
	ConfirmationTimeframe candles.Timeframe
}

// Run executes one pipeline pass at nowMs, optionally against an open
// position for exit evaluation.
func (p *Pipeline) Run(nowMs int64, position *ActivePosition) (Analysis, bool) {
	snap, ok := p.Source.Snapshot(p.AnalysisTimeframe)
	if !ok {
		return Analysis{}, false
	}

	tradabilitySnap, tradabilityOK := p.Source.Snapshot(p.TradabilityTimeframe)
	tradability := TradabilityResult{Tradable: false, Reason: "tradability data unavailable"}
	if tradabilityOK {
		tradability = EvaluateTradability(tradabilitySnap)
	}

	throttleResult := p.Throttle.Check(nowMs)
	regimeReading := p.Regime.Classify(tradabilitySnapOrSelf(tradabilitySnap, tradabilityOK, snap))
	params := p.Regime.Parameters()

	entry := BuildEntrySignal(snap, regimeReading, params, snap.Price, p.Config)

	var confirmation *ConfirmationResult
	if !tradability.Tradable && entry.Direction != DirectionNone {
		entry.Direction = DirectionNone
		entry.ShouldEnter = false
		entry.Warnings = append(entry.Warnings, "blocked: market not tradable")
	}
	if !throttleResult.Allowed && entry.Direction != DirectionNone {
		entry.Direction = DirectionNone
		entry.ShouldEnter = false
		entry.Warnings = append(entry.Warnings, "blocked: throttle active ("+throttleResult.Reason+")")
	}

	if entry.Direction != DirectionNone {
		confirmSnap, confirmOK := p.Source.Snapshot(p.ConfirmationTimeframe)
		if confirmOK {
			result := Confirm(confirmSnap, entry.Direction)
			confirmation = &result
			if !result.Confirmed {
				entry.Direction = DirectionNone
				entry.ShouldEnter = false
				entry.Warnings = append(entry.Warnings, "blocked: entry not confirmed ("+result.Reason+")")
			}
		}
	}

	var exit *ExitSignal
	if position != nil {
		result := BuildExitSignal(*position, snap, regimeReading, snap.Price, nowMs, p.Config)
		exit = &result
	}

	return Analysis{
		Tradability:  tradability,
		Throttle:     throttleResult,
		Confirmation: confirmation,
		Regime:       regimeReading,
		Entry:        entry,
		Exit:         exit,
		CurrentPrice: snap.Price,
		TimestampMs:  nowMs,
		Config:       p.Config,
	}, true
}

func tradabilitySnapOrSelf(tradabilitySnap indicators.Snapshot, ok bool, fallback indicators.Snapshot) indicators.Snapshot {
	if ok {
		return tradabilitySnap
	}
	return fallback
}

// MultiTimeframeConfirm re-evaluates the composite score on each of
// cfg.TimeframesToCheck and cancels the entry when any timeframe disagrees
// beyond a +-15 score threshold; unanimous agreement appends a confirmation
// reason and boosts confidence by +10 (capped at 95).
func MultiTimeframeConfirm(entry *EntrySignal, source SnapshotSource, timeframes []candles.Timeframe, require bool) {
	if !require || entry.Direction == DirectionNone || len(timeframes) == 0 {
		return
	}

	const disagreementThreshold = 15.0
	unanimous := true

	for _, tf := range timeframes {
		snap, ok := source.Snapshot(tf)
		if !ok {
			continue
		}
		score := snap.Composite.Score
		if entry.Direction == DirectionLong && score < -disagreementThreshold {
			entry.Direction = DirectionNone
			entry.ShouldEnter = false
			entry.Warnings = append(entry.Warnings, "multi-timeframe disagreement")
			return
		}
		if entry.Direction == DirectionShort && score > disagreementThreshold {
			entry.Direction = DirectionNone
			entry.ShouldEnter = false
			entry.Warnings = append(entry.Warnings, "multi-timeframe disagreement")
			return
		}
		agrees := (entry.Direction == DirectionLong && score >= 0) || (entry.Direction == DirectionShort && score <= 0)
		if !agrees {
			unanimous = false
		}
	}

	if unanimous {
		entry.Reasons = append(entry.Reasons, "multi-timeframe confirmation")
		entry.Confidence += 10
		if entry.Confidence > 95 {
			entry.Confidence = 95
		}
	}
}
