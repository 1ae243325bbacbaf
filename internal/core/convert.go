package core

import (
	"solcore/internal/config"
	"solcore/internal/cost"
	"solcore/internal/strategy"
)

// StrategyConfigFrom converts the YAML-facing config.StrategyConfig into the
// strategy package's own Config, keeping internal/config free of a
// dependency on internal/strategy.
func StrategyConfigFrom(c config.StrategyConfig) strategy.Config {
	return strategy.Config{
		MinConfidenceToEnter:              c.MinConfidenceToEnter,
		MinScoreToEnter:                   c.MinScoreToEnter,
		ATRStopLossMultiplier:             c.ATRStopLossMultiplier,
		ATRTakeProfitMultiplier:           c.ATRTakeProfitMultiplier,
		EnableTrailingStop:                c.EnableTrailingStop,
		TrailingStopActivationPercent:     c.TrailingStopActivationPercent,
		TrailingStopDistancePercent:       c.TrailingStopDistancePercent,
		MaxHoldTimeSeconds:                c.MaxHoldTimeSeconds,
		BasePositionSize:                  c.BasePositionSize,
		MinPositionSizeMultiplier:         c.MinPositionSizeMultiplier,
		MaxPositionSizeMultiplier:         c.MaxPositionSizeMultiplier,
		EnableRegimeFilter:                c.EnableRegimeFilter,
		AllowTradingInRanging:             c.AllowTradingInRanging,
		RequireMultiTimeframeConfirmation: c.RequireMultiTimeframeConfirmation,
		TimeframesToCheck:                 c.TimeframesToCheck,
	}
}

// ThrottleConfigFrom converts config.ThrottleConfig into strategy.ThrottleConfig.
func ThrottleConfigFrom(c config.ThrottleConfig) strategy.ThrottleConfig {
	return strategy.ThrottleConfig{
		StopLossCooldownMs:   c.StopLossCooldownMs,
		MinTradingGapMs:      c.MinTradingGapMs,
		MaxTradesPerHour:     c.MaxTradesPerHour,
		MaxConsecutiveLosses: c.MaxConsecutiveLosses,
	}
}

// CostConfigFrom converts config.CostConfig into cost.Config.
func CostConfigFrom(c config.CostConfig) cost.Config {
	return cost.Config{
		BaseSlippagePercent:    c.BaseSlippagePercent,
		VolatilitySlippageMult: c.VolatilitySlippageMult,
		SizeSlippageMult:       c.SizeSlippageMult,
		PricePerSecondPercent:  c.PricePerSecondPercent,
		FeePercent:             c.FeePercent,
		FixedNetworkFeeUSD:     c.FixedNetworkFeeUSD,
	}
}
