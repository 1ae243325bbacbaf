// Package diagnostics samples excursion against entry price for every open
// trade and, on close, derives MFE/MAE-at-horizon, execution quality and an
// outcome classification.
//
// Grounded on detectors/momentum.go's bounded sample ring (priceHistory
// trimmed by time) for the 15-minute sample log, and
// periodic_snapshot_generator.go's bounded-cache-plus-periodic-emit shape
// for the <=500-entry completed-diagnostics cache.
package diagnostics

import "sync"

const (
	sampleWindowMs       = 15 * 60 * 1000
	sampleHardCap        = 900
	significantMovePct   = 0.1
	completedCacheCap    = 500
)

// MoveKind classifies the first significant excursion.
type MoveKind string

const (
	MoveFavorable MoveKind = "favorable"
	MoveAdverse   MoveKind = "adverse"
	MoveNone      MoveKind = "none"
)

// Outcome classifies a closed trade's final PnL.
type Outcome string

const (
	OutcomeWin       Outcome = "win"
	OutcomeLoss      Outcome = "loss"
	OutcomeBreakeven Outcome = "breakeven"
)

// Sample is one excursion reading in a tracker's sample log.
type Sample struct {
	TimestampMs      int64
	ExcursionPercent float64
}

// StartParams are the inputs to startTrackingTrade.
type StartParams struct {
	TradeID           string
	Direction         string
	EntryPrice        float64
	EntryTimeMs       int64
	SignalScore       float64
	SignalConfidence  float64
	StopLossPercent   float64
	EntryRegimeState  string
}

// ActiveTracker is the live state for one open trade.
type ActiveTracker struct {
	StartParams

	Samples []Sample

	MFE       float64
	MFETimeMs int64
	MAE       float64
	MAETimeMs int64

	HasFirstFavorable    bool
	TimeToFirstFavorableMs int64
	FirstFavorablePercent  float64

	FirstSignificantMove MoveKind
}

// ExitData is the caller-supplied close-time data for stopTrackingTrade.
type ExitData struct {
	ExitPrice             float64
	ExitTimeMs             int64
	ExitReason             string
	TheoreticalExitPrice   float64
	ActualExitPrice        float64
	ExitSlippageBps        float64
	ExitSlippageUsd        float64
	TotalFeesUsd           float64
	FeesPercent            float64
	FinalPnlPercent        float64
	ExitRegimeState        string
}

// MFEHorizon is the max-favorable-excursion measured within a bounded
// window after entry.
type MFEHorizon struct {
	Minutes int
	Value   float64
	Valid   bool
}

// TradeDiagnostics is the finalized per-trade diagnostics record.
type TradeDiagnostics struct {
	StartParams
	ExitData

	MFE float64
	MAE float64

	MFEHorizons []MFEHorizon

	MFEBeforeMAE      bool
	MFEBeforeMAEValid bool

	ExecutionQualityPercent float64
	ExecutionDragPercent    float64

	RegimeShiftedAfterEntry bool

	RMultiple      float64
	RMultipleValid bool
	MFEReachedTwoR bool

	Outcome Outcome
}

// Tracker owns the active and completed diagnostics state. One RWMutex
// guards both maps, matching the core's single-lock-per-subsystem rule.
type Tracker struct {
	mu sync.RWMutex

	active map[string]*ActiveTracker

	completedOrder []string
	completed      map[string]TradeDiagnostics
}

// New returns an empty Tracker.
func New() *Tracker {
	return &Tracker{
		active:    make(map[string]*ActiveTracker),
		completed: make(map[string]TradeDiagnostics),
	}
}

// StartTrackingTrade snapshots entry-time state and begins sampling.
func (t *Tracker) StartTrackingTrade(params StartParams) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active[params.TradeID] = &ActiveTracker{StartParams: params, FirstSignificantMove: MoveNone}
}

// UpdateTracker folds one price observation into every active tracker's
// state that matches tradeID; called from the price-update hook.
func (t *Tracker) UpdateTracker(tradeID string, price float64, nowMs int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tr, ok := t.active[tradeID]
	if !ok {
		return
	}

	excursion := excursionPercent(tr.Direction, tr.EntryPrice, price)

	tr.Samples = append(tr.Samples, Sample{TimestampMs: nowMs, ExcursionPercent: excursion})
	tr.Samples = pruneSamples(tr.Samples, nowMs)

	if len(tr.Samples) == 1 || excursion > tr.MFE {
		tr.MFE = excursion
		tr.MFETimeMs = nowMs
	}
	if len(tr.Samples) == 1 || excursion < tr.MAE {
		tr.MAE = excursion
		tr.MAETimeMs = nowMs
	}

	if !tr.HasFirstFavorable && excursion > 0 {
		tr.HasFirstFavorable = true
		tr.TimeToFirstFavorableMs = nowMs - tr.EntryTimeMs
		tr.FirstFavorablePercent = excursion
	}

	if tr.FirstSignificantMove == MoveNone {
		switch {
		case excursion >= significantMovePct:
			tr.FirstSignificantMove = MoveFavorable
		case excursion <= -significantMovePct:
			tr.FirstSignificantMove = MoveAdverse
		}
	}
}

func excursionPercent(direction string, entry, price float64) float64 {
	if entry == 0 {
		return 0
	}
	pct := (price - entry) / entry * 100
	if direction == "SHORT" {
		pct = -pct
	}
	return pct
}

func pruneSamples(samples []Sample, nowMs int64) []Sample {
	cutoff := nowMs - sampleWindowMs
	start := 0
	for start < len(samples) && samples[start].TimestampMs < cutoff {
		start++
	}
	samples = samples[start:]
	if len(samples) > sampleHardCap {
		samples = samples[len(samples)-sampleHardCap:]
	}
	return samples
}

// StopTrackingTrade finalizes a trade's diagnostics, writes it to the
// bounded completed cache and removes the live tracker. It returns
// (diagnostics, false) if no active tracker exists for id.
func (t *Tracker) StopTrackingTrade(id string, exit ExitData, currentRegimeState string, regimeTrendDirectionChanged bool) (TradeDiagnostics, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tr, ok := t.active[id]
	if !ok {
		return TradeDiagnostics{}, false
	}
	delete(t.active, id)

	diag := TradeDiagnostics{
		StartParams: tr.StartParams,
		ExitData:    exit,
		MFE:         tr.MFE,
		MAE:         tr.MAE,
	}

	diag.MFEHorizons = mfeHorizons(tr)
	diag.MFEBeforeMAE, diag.MFEBeforeMAEValid = mfeBeforeMae(tr.Samples)

	idealPnL := excursionPercent(tr.Direction, tr.EntryPrice, exit.TheoreticalExitPrice)
	diag.ExecutionQualityPercent = idealPnL
	diag.ExecutionDragPercent = idealPnL - exit.FinalPnlPercent

	diag.RegimeShiftedAfterEntry = exit.ExitRegimeState != "" && tr.EntryRegimeState != "" && (exit.ExitRegimeState != tr.EntryRegimeState || regimeTrendDirectionChanged)

	if tr.StopLossPercent > 0 {
		diag.RMultiple = exit.FinalPnlPercent / tr.StopLossPercent
		diag.RMultipleValid = true
		diag.MFEReachedTwoR = tr.MFE >= 2*tr.StopLossPercent
	}

	switch {
	case exit.FinalPnlPercent > 0.05:
		diag.Outcome = OutcomeWin
	case exit.FinalPnlPercent < -0.05:
		diag.Outcome = OutcomeLoss
	default:
		diag.Outcome = OutcomeBreakeven
	}

	t.storeCompletedLocked(id, diag)
	return diag, true
}

func (t *Tracker) storeCompletedLocked(id string, diag TradeDiagnostics) {
	if _, exists := t.completed[id]; !exists {
		t.completedOrder = append(t.completedOrder, id)
	}
	t.completed[id] = diag

	for len(t.completedOrder) > completedCacheCap {
		oldest := t.completedOrder[0]
		t.completedOrder = t.completedOrder[1:]
		delete(t.completed, oldest)
	}
}

// Completed returns a snapshot of all completed diagnostics currently held.
func (t *Tracker) Completed() []TradeDiagnostics {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]TradeDiagnostics, 0, len(t.completedOrder))
	for _, id := range t.completedOrder {
		out = append(out, t.completed[id])
	}
	return out
}

func mfeHorizons(tr *ActiveTracker) []MFEHorizon {
	horizons := []int{1, 3, 5, 10}
	results := make([]MFEHorizon, 0, len(horizons))
	for _, minutes := range horizons {
		cutoff := tr.EntryTimeMs + int64(minutes)*60_000
		if len(tr.Samples) == 0 || tr.Samples[len(tr.Samples)-1].TimestampMs < cutoff {
			results = append(results, MFEHorizon{Minutes: minutes, Valid: false})
			continue
		}
		max := 0.0
		found := false
		for _, s := range tr.Samples {
			if s.TimestampMs > cutoff {
				break
			}
			if !found || s.ExcursionPercent > max {
				max = s.ExcursionPercent
				found = true
			}
		}
		results = append(results, MFEHorizon{Minutes: minutes, Value: max, Valid: found})
	}
	return results
}

// mfeBeforeMae walks the sample log in index order: iF is the first index
// with excursion >= +0.1%, iA the first with <= -0.1%. true if iF < iA;
// true if only iF exists; false if only iA exists; (false, false) if
// neither exists.
func mfeBeforeMae(samples []Sample) (value bool, valid bool) {
	iF, iA := -1, -1
	for i, s := range samples {
		if iF == -1 && s.ExcursionPercent >= significantMovePct {
			iF = i
		}
		if iA == -1 && s.ExcursionPercent <= -significantMovePct {
			iA = i
		}
	}

	switch {
	case iF == -1 && iA == -1:
		return false, false
	case iF != -1 && iA == -1:
		return true, true
	case iF == -1 && iA != -1:
		return false, true
	default:
		return iF < iA, true
	}
}
