package strategy

import (
	"fmt"
	"sync"
)

// ThrottleConfig bounds how often the pipeline is willing to fire a new
// entry, process-wide.
type ThrottleConfig struct {
	StopLossCooldownMs   int64
	MinTradingGapMs      int64
	MaxTradesPerHour     int
	MaxConsecutiveLosses int
}

// DefaultThrottleConfig matches spec.md §4.5's stated defaults.
func DefaultThrottleConfig() ThrottleConfig {
	return ThrottleConfig{
		StopLossCooldownMs:   300_000,
		MinTradingGapMs:      120_000,
		MaxTradesPerHour:     3,
		MaxConsecutiveLosses: 3,
	}
}

// TradeOutcome classifies a closed trade for throttle bookkeeping.
type TradeOutcome string

const (
	OutcomeWin       TradeOutcome = "win"
	OutcomeLoss      TradeOutcome = "loss"
	OutcomeBreakeven TradeOutcome = "breakeven"
)

const exitReasonStopLoss = "STOP_LOSS"

type tradeRecord struct {
	timestampMs int64
}

// ThrottleResult reports whether a new entry is currently allowed.
type ThrottleResult struct {
	Allowed          bool
	Reason           string
	RemainingCooldownMs int64
}

// Throttle is a process-wide guard over how often new entries may fire.
// Bounded trade-record window, single RWMutex, grounded on
// detectors/momentum.go's bounded priceHistory/alerts ring shape.
type Throttle struct {
	mu sync.RWMutex

	cfg ThrottleConfig

	trades            []tradeRecord
	lastTradeTimeMs   int64
	lastStopLossTimeMs int64
	hasTrade          bool
	hasStopLoss       bool
	consecutiveLosses int
}

// NewThrottle constructs a Throttle with the given config.
func NewThrottle(cfg ThrottleConfig) *Throttle {
	return &Throttle{cfg: cfg}
}

// Check evaluates the four ordered checks at time nowMs and returns the
// first-failing reason, or Allowed=true if none block.
func (t *Throttle) Check(nowMs int64) ThrottleResult {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.hasStopLoss {
		elapsed := nowMs - t.lastStopLossTimeMs
		if elapsed < t.cfg.StopLossCooldownMs {
			remaining := t.cfg.StopLossCooldownMs - elapsed
			return ThrottleResult{Allowed: false, Reason: fmt.Sprintf("Stop-loss cooldown active (%dms remaining)", remaining), RemainingCooldownMs: remaining}
		}
	}

	if t.hasTrade {
		elapsed := nowMs - t.lastTradeTimeMs
		if elapsed < t.cfg.MinTradingGapMs {
			remaining := t.cfg.MinTradingGapMs - elapsed
			return ThrottleResult{Allowed: false, Reason: fmt.Sprintf("Minimum trading gap not elapsed (%dms remaining)", remaining), RemainingCooldownMs: remaining}
		}
	}

	if t.cfg.MaxConsecutiveLosses > 0 && t.consecutiveLosses >= t.cfg.MaxConsecutiveLosses {
		return ThrottleResult{Allowed: false, Reason: fmt.Sprintf("Paused after %d consecutive losses", t.consecutiveLosses)}
	}

	windowStart := nowMs - 3_600_000
	count := 0
	for _, rec := range t.trades {
		if rec.timestampMs > windowStart {
			count++
		}
	}
	if t.cfg.MaxTradesPerHour > 0 && count >= t.cfg.MaxTradesPerHour {
		return ThrottleResult{Allowed: false, Reason: fmt.Sprintf("Max trades per hour reached (%d)", t.cfg.MaxTradesPerHour)}
	}

	return ThrottleResult{Allowed: true, Reason: "allowed"}
}

// RecordTrade appends a closed trade to the rolling window, updates the
// consecutive-loss counter and latches the stop-loss cooldown timer when
// exitReason is STOP_LOSS.
func (t *Throttle) RecordTrade(nowMs int64, outcome TradeOutcome, exitReason string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.trades = append(t.trades, tradeRecord{timestampMs: nowMs})
	t.pruneLocked(nowMs)

	t.lastTradeTimeMs = nowMs
	t.hasTrade = true

	if outcome == OutcomeLoss {
		t.consecutiveLosses++
	} else {
		t.consecutiveLosses = 0
	}

	if exitReason == exitReasonStopLoss {
		t.lastStopLossTimeMs = nowMs
		t.hasStopLoss = true
	}
}

func (t *Throttle) pruneLocked(nowMs int64) {
	windowStart := nowMs - 3_600_000
	kept := t.trades[:0]
	for _, rec := range t.trades {
		if rec.timestampMs > windowStart {
			kept = append(kept, rec)
		}
	}
	t.trades = kept
}

// Prune drops trade records that have fallen out of the one-hour window.
// RecordTrade already does this on every close; exported so a housekeeping
// worker can bound memory during long stretches with no closed trades.
func (t *Throttle) Prune(nowMs int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pruneLocked(nowMs)
}

// Reset clears all throttle state.
func (t *Throttle) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.trades = nil
	t.lastTradeTimeMs = 0
	t.lastStopLossTimeMs = 0
	t.hasTrade = false
	t.hasStopLoss = false
	t.consecutiveLosses = 0
}
