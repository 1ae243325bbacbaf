// Package regime classifies the current market state from an indicator
// snapshot and stabilizes the reading with hysteresis, so a flickering raw
// classification doesn't whipsaw downstream strategy decisions.
//
// Grounded on internal/supervisor's explicit status-transition shape
// (StatusStopped -> StatusStarting -> StatusRunning -> ...), generalized
// here from lifecycle states to market states, and on htf_bias_analyzer.go
// for the ATR/ADX-driven raw bias read. The (confirmed, pending,
// pendingCount) hysteresis record is a small tagged struct, not a class
// hierarchy, per spec.md §9.
package regime

import (
	"sync"

	"solcore/internal/indicators"
)

// State is the classified market regime.
type State string

const (
	StateVolatile        State = "volatile"
	StateTrendingBullish State = "trending_bullish"
	StateTrendingBearish State = "trending_bearish"
	StateRanging         State = "ranging"
	StateUnknown         State = "unknown"
)

const stabilityRequired = 5

// Reading is one classification result, raw or confirmed.
type Reading struct {
	State      State
	Confidence float64
}

// Parameters are the regime-adjusted risk multipliers read off the
// confirmed state.
type Parameters struct {
	StopLossMultiplier   float64
	TakeProfitMultiplier float64
	SizeMultiplier       float64
}

var parameterTable = map[State]Parameters{
	StateVolatile:        {StopLossMultiplier: 2.0, TakeProfitMultiplier: 3.0, SizeMultiplier: 0.5},
	StateTrendingBullish: {StopLossMultiplier: 1.5, TakeProfitMultiplier: 2.5, SizeMultiplier: 1.0},
	StateTrendingBearish: {StopLossMultiplier: 1.5, TakeProfitMultiplier: 2.5, SizeMultiplier: 1.0},
	StateRanging:         {StopLossMultiplier: 1.0, TakeProfitMultiplier: 1.5, SizeMultiplier: 0.8},
	StateUnknown:         {StopLossMultiplier: 1.5, TakeProfitMultiplier: 2.0, SizeMultiplier: 0.5},
}

// Detector holds the confirmed regime plus the pending-switch candidate.
// One RWMutex guards the whole record, matching the aggregator's
// single-lock-per-subsystem discipline (spec.md §5).
type Detector struct {
	mu sync.RWMutex

	initialized bool
	confirmed   Reading

	pending      State
	pendingConf  float64
	pendingCount int

	adxTrending bool
}

// New returns a Detector with no confirmed regime yet; the first
// non-unknown raw reading initializes it.
func New() *Detector {
	return &Detector{}
}

// Classify computes the raw regime off a 15-minute-class snapshot and folds
// it through the hysteresis state machine, returning the (possibly
// unchanged) confirmed reading.
func (d *Detector) Classify(snap indicators.Snapshot) Reading {
	d.mu.Lock()
	defer d.mu.Unlock()

	raw := classifyRaw(snap, d.adxTrending)
	d.adxTrending = raw.adxTrending
	d.advance(raw.Reading)
	return d.confirmed
}

// Current returns the last confirmed reading without computing a new one.
func (d *Detector) Current() Reading {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.confirmed
}

// Parameters returns the regime-adjusted SL/TP/size multipliers for the
// confirmed state, reading the trending bracket's size multiplier boost at
// confidence >= 70 per spec.md §4.3.
func (d *Detector) Parameters() Parameters {
	d.mu.RLock()
	confirmed := d.confirmed
	d.mu.RUnlock()

	params := parameterTable[confirmed.State]
	if (confirmed.State == StateTrendingBullish || confirmed.State == StateTrendingBearish) && confirmed.Confidence >= 70 {
		params.SizeMultiplier = 1.2
	}
	return params
}

// Reset clears all hysteresis state, leaving the Detector as New returns it.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	*d = Detector{}
}

// advance runs the pure hysteresis transition given the new raw reading.
// volatile always wins immediately; any other raw state must repeat
// stabilityRequired times in a row before it replaces the confirmed regime.
func (d *Detector) advance(raw Reading) {
	if raw.State == StateVolatile {
		d.confirmed = raw
		d.pending = ""
		d.pendingCount = 0
		d.initialized = true
		return
	}

	if !d.initialized {
		if raw.State == StateUnknown {
			return
		}
		d.confirmed = raw
		d.initialized = true
		return
	}

	if raw.State == d.confirmed.State {
		d.pending = ""
		d.pendingCount = 0
		// Refresh confidence on the already-confirmed state.
		d.confirmed.Confidence = raw.Confidence
		return
	}

	if raw.State == d.pending {
		d.pendingCount++
		d.pendingConf = raw.Confidence
	} else {
		d.pending = raw.State
		d.pendingConf = raw.Confidence
		d.pendingCount = 1
	}

	if d.pendingCount >= stabilityRequired {
		d.confirmed = Reading{State: d.pending, Confidence: d.pendingConf}
		d.pending = ""
		d.pendingCount = 0
	}
}

// rawReading carries the classification plus the updated ADX
// trending-hysteresis flag (enter=25, exit=18: once trending, ADX only has
// to hold at 18 to stay classified trending; spec.md §4.3).
type rawReading struct {
	Reading
	adxTrending bool
}

// classifyRaw is the ATR/ADX-driven regime read for one snapshot. It takes
// the previous call's ADX trending flag as its only external state, so the
// enter/exit hysteresis on "is ADX trending" can be applied without
// reaching into the Detector's confirmed-regime hysteresis.
func classifyRaw(snap indicators.Snapshot, wasTrending bool) rawReading {
	if snap.ATR.Valid {
		switch snap.ATR.Value.Level {
		case indicators.ATRExtreme:
			return rawReading{Reading: Reading{State: StateVolatile, Confidence: 85}, adxTrending: wasTrending}
		case indicators.ATRHigh:
			return rawReading{Reading: Reading{State: StateVolatile, Confidence: 70}, adxTrending: wasTrending}
		}
	}

	if snap.ADX.Valid {
		adx := snap.ADX.Value

		var trending bool
		switch {
		case adx.ADX >= 25:
			trending = true
		case wasTrending && adx.ADX >= 18:
			trending = true
		default:
			trending = false
		}

		if trending {
			directionBullish := adx.Direction == indicators.ADXDirectionBullish
			if snap.EMAs.Valid {
				switch snap.EMAs.Value.Trend {
				case indicators.EMAStrongBullish, indicators.EMABullish:
					directionBullish = true
				case indicators.EMAStrongBearish, indicators.EMABearish:
					directionBullish = false
				}
			}

			confidence := trendingConfidence(adx.ADX, snap.EMAs)
			state := StateTrendingBearish
			if directionBullish {
				state = StateTrendingBullish
			}
			return rawReading{Reading: Reading{State: state, Confidence: confidence}, adxTrending: true}
		}

		if adx.ADX >= 18 {
			return rawReading{Reading: Reading{State: StateRanging, Confidence: 50}, adxTrending: false}
		}

		confidence := 75.0
		if adx.ADX >= 20 {
			confidence = 60
		}
		return rawReading{Reading: Reading{State: StateRanging, Confidence: confidence}, adxTrending: false}
	}

	return rawReading{Reading: Reading{State: StateUnknown, Confidence: 0}, adxTrending: wasTrending}
}

func trendingConfidence(adx float64, emas indicators.Optional[indicators.EMACollectionResult]) float64 {
	confidence := 50.0
	switch {
	case adx >= 50:
		confidence += 25
	case adx >= 35:
		confidence += 15
	case adx >= 25:
		confidence += 5
	}

	if emas.Valid {
		switch emas.Value.Trend {
		case indicators.EMAStrongBullish, indicators.EMAStrongBearish:
			confidence += 25
		case indicators.EMABullish, indicators.EMABearish:
			confidence += 20
		}
	}

	if confidence > 95 {
		confidence = 95
	}
	return confidence
}
