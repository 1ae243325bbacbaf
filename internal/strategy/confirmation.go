package strategy

import "solcore/internal/indicators"

// Direction is a trade direction used throughout the strategy package.
type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
	DirectionNone  Direction = "NONE"
)

// ConfirmationResult is the outcome of the 1-minute entry confirmation.
type ConfirmationResult struct {
	Confirmed bool
	Reason    string
}

// Confirm runs the range/momentum/exhaustion checks against a 1-minute
// snapshot for a candidate direction. Missing data passes each check
// (spec.md §4.6) so thin 1-minute history never blocks an otherwise-good
// setup on a longer timeframe.
func Confirm(snap indicators.Snapshot, direction Direction) ConfirmationResult {
	if ok, reason := confirmRange(snap); !ok {
		return ConfirmationResult{Confirmed: false, Reason: reason}
	}
	if ok, reason := confirmMomentum(snap, direction); !ok {
		return ConfirmationResult{Confirmed: false, Reason: reason}
	}
	if ok, reason := confirmExhaustion(snap, direction); !ok {
		return ConfirmationResult{Confirmed: false, Reason: reason}
	}
	return ConfirmationResult{Confirmed: true, Reason: "confirmed"}
}

func confirmRange(snap indicators.Snapshot) (bool, string) {
	if !snap.ATR.Valid {
		return true, ""
	}
	if snap.ATR.Value.Level == indicators.ATRExtreme {
		return false, "1m range extreme"
	}
	if snap.ATR.Value.Level == indicators.ATRHigh && snap.ATR.Value.ValuePercent > 1.5 {
		return false, "1m range too wide"
	}
	return true, ""
}

func confirmMomentum(snap indicators.Snapshot, direction Direction) (bool, string) {
	if direction == DirectionLong {
		if snap.EMAs.Valid && snap.EMAs.Value.Trend == indicators.EMAStrongBearish {
			return false, "1m momentum strongly bearish"
		}
		if snap.MACD.Valid && snap.MACD.Value.Histogram.Valid && snap.MACD.Value.Histogram.Value < -0.5 {
			return false, "1m MACD histogram against LONG"
		}
		return true, ""
	}
	if direction == DirectionShort {
		if snap.EMAs.Valid && snap.EMAs.Value.Trend == indicators.EMAStrongBullish {
			return false, "1m momentum strongly bullish"
		}
		if snap.MACD.Valid && snap.MACD.Value.Histogram.Valid && snap.MACD.Value.Histogram.Value > 0.5 {
			return false, "1m MACD histogram against SHORT"
		}
		return true, ""
	}
	return true, ""
}

func confirmExhaustion(snap indicators.Snapshot, direction Direction) (bool, string) {
	if !snap.RSI.Valid {
		return true, ""
	}
	if direction == DirectionLong && snap.RSI.Value.Value > 80 {
		return false, "1m RSI exhausted for LONG"
	}
	if direction == DirectionShort && snap.RSI.Value.Value < 20 {
		return false, "1m RSI exhausted for SHORT"
	}
	return true, ""
}
