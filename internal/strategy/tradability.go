// Package strategy composes the gates, signal generators and throttle into
// one decision pipeline over an indicator snapshot.
//
// Grounded on detectors/mean_reversion.go's threshold-banding style for the
// gate reason strings, and detectors/momentum.go's bounded state/RWMutex
// shape for Throttle's trade-record window.
package strategy

import (
	"fmt"

	"solcore/internal/indicators"
)

const (
	tradabilityATRMinPct  = 0.15
	tradabilityATRMaxPct  = 2.0
	tradabilityADXMin     = 18.0
	tradabilityBBMinWidth = 0.8
)

// TradabilityResult is the outcome of the three-check gate over a
// 15-minute-class snapshot.
type TradabilityResult struct {
	Tradable bool
	Reason   string
}

// EvaluateTradability runs the volatility, trend-strength and
// range-compression checks per spec.md §4.4. Missing ATR or ADX data fails
// its own check unconditionally; missing BB data is never fatal.
func EvaluateTradability(snap indicators.Snapshot) TradabilityResult {
	volatilityOK, volatilityReason := checkVolatility(snap)
	trendOK, _ := checkTrend(snap)
	compressionOK, _ := checkCompression(snap)

	if !volatilityOK {
		return TradabilityResult{Tradable: false, Reason: volatilityReason}
	}

	adxWeakButCompressed := snap.ADX.Valid && !trendOK && compressionOK
	if trendOK || adxWeakButCompressed {
		return TradabilityResult{Tradable: true, Reason: "tradable"}
	}

	if !snap.ADX.Valid {
		return TradabilityResult{Tradable: false, Reason: "trend strength unavailable"}
	}
	return TradabilityResult{Tradable: false, Reason: fmt.Sprintf("trend strength too weak (ADX %.1f < %.1f)", snap.ADX.Value.ADX, tradabilityADXMin)}
}

func checkVolatility(snap indicators.Snapshot) (bool, string) {
	if !snap.ATR.Valid {
		return false, "volatility data unavailable"
	}
	pct := snap.ATR.Value.ValuePercent
	if pct < tradabilityATRMinPct {
		return false, fmt.Sprintf("volatility too low (ATR%% %.3f < %.3f)", pct, tradabilityATRMinPct)
	}
	if pct > tradabilityATRMaxPct {
		return false, fmt.Sprintf("volatility too extreme (ATR%% %.3f > %.3f)", pct, tradabilityATRMaxPct)
	}
	return true, ""
}

func checkTrend(snap indicators.Snapshot) (bool, string) {
	if !snap.ADX.Valid {
		return false, "trend strength unavailable"
	}
	if snap.ADX.Value.ADX < tradabilityADXMin {
		return false, fmt.Sprintf("trend strength too weak (ADX %.1f < %.1f)", snap.ADX.Value.ADX, tradabilityADXMin)
	}
	return true, ""
}

func checkCompression(snap indicators.Snapshot) (bool, string) {
	if !snap.BB.Valid {
		return true, ""
	}
	if snap.BB.Value.Bandwidth <= tradabilityBBMinWidth {
		return false, fmt.Sprintf("range too compressed (bandwidth %.3f <= %.3f)", snap.BB.Value.Bandwidth, tradabilityBBMinWidth)
	}
	return true, ""
}
