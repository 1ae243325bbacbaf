package strategy

import (
	"solcore/internal/indicators"
	"solcore/internal/regime"
)

// EntrySignal is the output of the entry signal generator (spec.md §4.7).
type EntrySignal struct {
	Direction  Direction
	Score      float64
	Confidence float64

	ShouldEnter bool

	Reasons  []string
	Warnings []string

	StopLoss        float64
	TakeProfit      float64
	SizeMultiplier  float64
}

const (
	maxWarningsAllowed = 4
	tpFloorPercent     = 1.2
	slFloorPercent     = 0.5
)

// BuildEntrySignal generates an entry signal from the decision-timeframe
// snapshot, the confirmed regime and the current price.
func BuildEntrySignal(snap indicators.Snapshot, reg regime.Reading, params regime.Parameters, price float64, cfg Config) EntrySignal {
	if cfg.EnableRegimeFilter && !regimeFavourable(reg.State, cfg.AllowTradingInRanging) {
		return EntrySignal{Direction: DirectionNone, Reasons: nil, Warnings: []string{"regime not favourable for entry"}}
	}

	composite := snap.Composite
	direction := DirectionNone
	switch {
	case composite.Score >= cfg.MinScoreToEnter:
		direction = DirectionLong
	case composite.Score <= -cfg.MinScoreToEnter:
		direction = DirectionShort
	}

	var reasons, warnings []string
	if direction != DirectionNone {
		reasons, warnings = accumulateReasons(snap, direction, reg.State)
	}

	confidence := composite.Confidence
	if confidence < cfg.MinConfidenceToEnter {
		direction = DirectionNone
	}

	shouldEnter := direction != DirectionNone && len(warnings) <= maxWarningsAllowed
	if len(warnings) >= 5 {
		shouldEnter = false
	}
	if !shouldEnter {
		direction = DirectionNone
	}

	signal := EntrySignal{
		Direction:   direction,
		Score:       composite.Score,
		Confidence:  confidence,
		ShouldEnter: shouldEnter,
		Reasons:     reasons,
		Warnings:    warnings,
	}

	if direction == DirectionNone {
		return signal
	}

	atrValue := price * 0.005
	if snap.ATR.Valid {
		atrValue = snap.ATR.Value.Value
	}

	slMove := atrValue * cfg.ATRStopLossMultiplier * params.StopLossMultiplier
	tpMove := atrValue * cfg.ATRTakeProfitMultiplier * params.TakeProfitMultiplier

	slFloor := price * slFloorPercent / 100
	tpFloor := price * tpFloorPercent / 100
	if slMove < slFloor {
		slMove = slFloor
	}
	if tpMove < tpFloor {
		tpMove = tpFloor
	}

	if direction == DirectionLong {
		signal.StopLoss = price - slMove
		signal.TakeProfit = price + tpMove
	} else {
		signal.StopLoss = price + slMove
		signal.TakeProfit = price - tpMove
	}

	signal.SizeMultiplier = sizeMultiplier(params.SizeMultiplier, confidence, cfg)

	return signal
}

func regimeFavourable(state regime.State, allowRanging bool) bool {
	switch state {
	case regime.StateTrendingBullish, regime.StateTrendingBearish:
		return true
	case regime.StateRanging:
		return allowRanging
	default:
		return false
	}
}

func accumulateReasons(snap indicators.Snapshot, direction Direction, state regime.State) (reasons, warnings []string) {
	bullish := direction == DirectionLong

	if snap.RSI.Valid {
		if bullish && snap.RSI.Value.Zone == indicators.RSIOversold {
			reasons = append(reasons, "RSI oversold supports LONG")
		}
		if !bullish && snap.RSI.Value.Zone == indicators.RSIOverbought {
			reasons = append(reasons, "RSI overbought supports SHORT")
		}
		if bullish && snap.RSI.Value.Value > 75 {
			warnings = append(warnings, "RSI approaching exhaustion against LONG")
		}
		if !bullish && snap.RSI.Value.Value < 25 {
			warnings = append(warnings, "RSI approaching exhaustion against SHORT")
		}
	}

	if snap.MACD.Valid {
		if bullish && snap.MACD.Value.Crossover == indicators.MACDBullishCross {
			reasons = append(reasons, "MACD bullish crossover")
		}
		if !bullish && snap.MACD.Value.Crossover == indicators.MACDBearishCross {
			reasons = append(reasons, "MACD bearish crossover")
		}
	}

	if snap.EMAs.Valid {
		trend := snap.EMAs.Value.Trend
		switch {
		case bullish && (trend == indicators.EMABullish || trend == indicators.EMAStrongBullish):
			reasons = append(reasons, "EMA trend aligned bullish")
		case !bullish && (trend == indicators.EMABearish || trend == indicators.EMAStrongBearish):
			reasons = append(reasons, "EMA trend aligned bearish")
		case bullish && (trend == indicators.EMABearish || trend == indicators.EMAStrongBearish):
			warnings = append(warnings, "EMA trend contra-trend against LONG")
		case !bullish && (trend == indicators.EMABullish || trend == indicators.EMAStrongBullish):
			warnings = append(warnings, "EMA trend contra-trend against SHORT")
		}
	}

	if snap.ADX.Valid {
		if snap.ADX.Value.Strength == indicators.ADXStrong || snap.ADX.Value.Strength == indicators.ADXExtreme {
			reasons = append(reasons, "ADX confirms strong trend")
		} else if snap.ADX.Value.Strength == indicators.ADXWeak && state != regime.StateRanging {
			warnings = append(warnings, "ADX weak outside of a ranging regime")
		}
	}

	if snap.BB.Valid {
		if bullish && snap.BB.Value.PercentB <= 0.2 {
			reasons = append(reasons, "price near lower Bollinger band supports LONG")
		}
		if !bullish && snap.BB.Value.PercentB >= 0.8 {
			reasons = append(reasons, "price near upper Bollinger band supports SHORT")
		}
	}

	if snap.VolumePressure.Valid {
		if bullish && snap.VolumePressure.Value.Dominance == indicators.VolumeBuyers {
			reasons = append(reasons, "buyer volume dominance")
		}
		if !bullish && snap.VolumePressure.Value.Dominance == indicators.VolumeSellers {
			reasons = append(reasons, "seller volume dominance")
		}
		if bullish && snap.VolumePressure.Value.Dominance == indicators.VolumeSellers {
			warnings = append(warnings, "seller volume dominance against LONG")
		}
		if !bullish && snap.VolumePressure.Value.Dominance == indicators.VolumeBuyers {
			warnings = append(warnings, "buyer volume dominance against SHORT")
		}
	}

	return reasons, warnings
}

func sizeMultiplier(base, confidence float64, cfg Config) float64 {
	mult := base
	switch {
	case confidence >= 75:
		mult *= 1.2
	case confidence >= 60:
		mult *= 1.0
	case confidence >= 45:
		mult *= 0.8
	default:
		mult *= 0.5
	}
	if mult < cfg.MinPositionSizeMultiplier {
		mult = cfg.MinPositionSizeMultiplier
	}
	if mult > cfg.MaxPositionSizeMultiplier {
		mult = cfg.MaxPositionSizeMultiplier
	}
	return mult
}
