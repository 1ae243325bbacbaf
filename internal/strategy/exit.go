package strategy

import (
	"solcore/internal/indicators"
	"solcore/internal/regime"
)

// ExitReason is the wire-visible exit reason enumeration (spec.md §6).
type ExitReason string

const (
	ExitTakeProfit     ExitReason = "TAKE_PROFIT"
	ExitStopLoss       ExitReason = "STOP_LOSS"
	ExitTrailingStop   ExitReason = "TRAILING_STOP"
	ExitSignalReversal ExitReason = "SIGNAL_REVERSAL"
	ExitRegimeChange   ExitReason = "REGIME_CHANGE"
	ExitTimeStop       ExitReason = "TIME_STOP"
	ExitVolatilitySpike ExitReason = "VOLATILITY_SPIKE"
	ExitManual         ExitReason = "MANUAL"
	ExitNone           ExitReason = "NONE"
)

// Urgency ranks how quickly an exit should be actioned.
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyMedium   Urgency = "medium"
	UrgencyLow      Urgency = "low"
)

// ActivePosition is the open-position state the exit generator tracks.
type ActivePosition struct {
	Direction Direction

	EntryPrice     float64
	CurrentStopLoss float64
	TakeProfit     float64

	EntryTimeMs int64

	MaxPrice float64
	MinPrice float64
	MaxPnLPercent float64
}

// ExitSignal is the output of the exit signal generator (spec.md §4.8).
type ExitSignal struct {
	ShouldExit bool
	Reason     ExitReason
	Urgency    Urgency

	CurrentPnLPercent float64
	TrailingStopPrice float64
}

// UpdatePositionTracking keeps max/min price and maxPnL% monotone as new
// prices arrive. Idempotent given an unchanging price.
func UpdatePositionTracking(pos *ActivePosition, price float64) {
	if pos.MaxPrice == 0 || price > pos.MaxPrice {
		pos.MaxPrice = price
	}
	if pos.MinPrice == 0 || price < pos.MinPrice {
		pos.MinPrice = price
	}

	pnl := pnlPercent(pos.Direction, pos.EntryPrice, price)
	if pnl > pos.MaxPnLPercent {
		pos.MaxPnLPercent = pnl
	}
}

func pnlPercent(direction Direction, entry, price float64) float64 {
	if entry == 0 {
		return 0
	}
	pct := (price - entry) / entry * 100
	if direction == DirectionShort {
		pct = -pct
	}
	return pct
}

// BuildExitSignal runs the priority-ordered exit checks against an active
// position, in order: STOP_LOSS, TAKE_PROFIT, TRAILING_STOP,
// SIGNAL_REVERSAL, REGIME_CHANGE, TIME_STOP, VOLATILITY_SPIKE.
func BuildExitSignal(pos ActivePosition, snap indicators.Snapshot, reg regime.Reading, price float64, nowMs int64, cfg Config) ExitSignal {
	currentPnL := pnlPercent(pos.Direction, pos.EntryPrice, price)

	if stopLossHit(pos, price) {
		return ExitSignal{ShouldExit: true, Reason: ExitStopLoss, Urgency: UrgencyCritical, CurrentPnLPercent: currentPnL}
	}
	if takeProfitHit(pos, price) {
		return ExitSignal{ShouldExit: true, Reason: ExitTakeProfit, Urgency: UrgencyHigh, CurrentPnLPercent: currentPnL}
	}

	trailingPrice, trailingArmed := trailingStopPrice(pos, price, cfg)
	if cfg.EnableTrailingStop && trailingArmed {
		if trailingStopHit(pos.Direction, price, trailingPrice) {
			return ExitSignal{ShouldExit: true, Reason: ExitTrailingStop, Urgency: UrgencyHigh, CurrentPnLPercent: currentPnL, TrailingStopPrice: trailingPrice}
		}
	}

	if signalReversal(pos.Direction, snap) {
		return ExitSignal{ShouldExit: true, Reason: ExitSignalReversal, Urgency: UrgencyMedium, CurrentPnLPercent: currentPnL}
	}

	if cfg.EnableRegimeFilter && reg.State == regime.StateVolatile {
		return ExitSignal{ShouldExit: true, Reason: ExitRegimeChange, Urgency: UrgencyMedium, CurrentPnLPercent: currentPnL}
	}

	holdSeconds := (nowMs - pos.EntryTimeMs) / 1000
	if cfg.MaxHoldTimeSeconds > 0 && holdSeconds >= cfg.MaxHoldTimeSeconds {
		return ExitSignal{ShouldExit: true, Reason: ExitTimeStop, Urgency: UrgencyLow, CurrentPnLPercent: currentPnL}
	}

	if snap.ATR.Valid && snap.ATR.Value.Level == indicators.ATRExtreme && currentPnL > 0 {
		return ExitSignal{ShouldExit: true, Reason: ExitVolatilitySpike, Urgency: UrgencyMedium, CurrentPnLPercent: currentPnL}
	}

	signal := ExitSignal{ShouldExit: false, Reason: ExitNone, CurrentPnLPercent: currentPnL}
	if trailingArmed {
		signal.TrailingStopPrice = trailingPrice
	}
	return signal
}

func stopLossHit(pos ActivePosition, price float64) bool {
	if pos.Direction == DirectionLong {
		return price <= pos.CurrentStopLoss
	}
	return price >= pos.CurrentStopLoss
}

func takeProfitHit(pos ActivePosition, price float64) bool {
	if pos.Direction == DirectionLong {
		return price >= pos.TakeProfit
	}
	return price <= pos.TakeProfit
}

func trailingStopPrice(pos ActivePosition, price float64, cfg Config) (float64, bool) {
	if pos.MaxPnLPercent < cfg.TrailingStopActivationPercent {
		return 0, false
	}
	distance := cfg.TrailingStopDistancePercent / 100
	if pos.Direction == DirectionLong {
		extreme := pos.MaxPrice
		if price > extreme {
			extreme = price
		}
		return extreme * (1 - distance), true
	}
	extreme := pos.MinPrice
	if pos.MinPrice == 0 || price < extreme {
		extreme = price
	}
	return extreme * (1 + distance), true
}

func trailingStopHit(direction Direction, price, trail float64) bool {
	if direction == DirectionLong {
		return price <= trail
	}
	return price >= trail
}

func signalReversal(direction Direction, snap indicators.Snapshot) bool {
	score := snap.Composite.Score
	rsi, hasRSI := snap.RSI.Get()

	if direction == DirectionLong {
		if score <= -40 {
			return true
		}
		return hasRSI && rsi.Value >= 85
	}
	if score >= 40 {
		return true
	}
	return hasRSI && rsi.Value <= 15
}
