// Package cost models the execution cost of a simulated fill: slippage,
// delay impact and DEX fees, direction-aware so the impact always works
// against the trader.
//
// Has no equivalent elsewhere in this codebase's lineage — nothing else here
// executes trades — so ExecutionResult is shaped after publisher/redis.go's
// PublishMetrics: a plain data aggregation struct, built by
// CalculateExecution and read through its exported fields.
package cost

// Side identifies which leg of a round trip is being costed.
type Side string

const (
	SideEntry Side = "entry"
	SideExit  Side = "exit"
)

// Direction mirrors strategy.Direction without importing it, to keep this
// package dependency-free.
type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

// Config holds the tunable cost-model coefficients.
type Config struct {
	BaseSlippagePercent    float64
	VolatilitySlippageMult float64
	SizeSlippageMult       float64
	PricePerSecondPercent  float64
	FeePercent             float64
	FixedNetworkFeeUSD     float64
}

// DefaultConfig matches the cost defaults referenced in spec.md §4.10.
func DefaultConfig() Config {
	return Config{
		BaseSlippagePercent:    0.02,
		VolatilitySlippageMult: 0.1,
		SizeSlippageMult:       0.01,
		PricePerSecondPercent:  0.001,
		FeePercent:             0.3,
		FixedNetworkFeeUSD:     0.01,
	}
}

// ExecutionResult is the computed execution cost for one leg of a trade.
type ExecutionResult struct {
	SlippagePercent  float64
	DelayPercent     float64
	TotalImpactPercent float64

	FillPrice float64

	DexFeeUSD      float64
	SlippageUSD    float64
	NetworkFeeUSD  float64
}

// CalculateExecution is the pure cost function per spec.md §4.10.
func CalculateExecution(signalPrice float64, direction Direction, sizeInSol, atrPercent float64, delayMs int64, cfg Config, side Side) ExecutionResult {
	slippagePercent := cfg.BaseSlippagePercent + atrPercent*cfg.VolatilitySlippageMult + sizeInSol*cfg.SizeSlippageMult
	delayPercent := (float64(delayMs) / 1000) * cfg.PricePerSecondPercent
	totalImpact := slippagePercent + delayPercent

	fillPrice := fillPrice(signalPrice, direction, side, totalImpact)

	tradeValueUSD := signalPrice * sizeInSol
	dexFeeUSD := tradeValueUSD * cfg.FeePercent / 100
	slippageUSD := absFloat(fillPrice-signalPrice) * sizeInSol

	return ExecutionResult{
		SlippagePercent:    slippagePercent,
		DelayPercent:       delayPercent,
		TotalImpactPercent: totalImpact,
		FillPrice:          fillPrice,
		DexFeeUSD:          dexFeeUSD,
		SlippageUSD:        slippageUSD,
		NetworkFeeUSD:      cfg.FixedNetworkFeeUSD,
	}
}

func fillPrice(signalPrice float64, direction Direction, side Side, totalImpactPercent float64) float64 {
	impact := totalImpactPercent / 100

	longEntry := direction == DirectionLong && side == SideEntry
	shortExit := direction == DirectionShort && side == SideExit
	if longEntry || shortExit {
		return signalPrice * (1 + impact)
	}
	// LONG exit or SHORT entry: impact still works against the trader.
	return signalPrice * (1 - impact)
}

// RoundTripBreakEvenMove sums the entry and exit total impact% so callers
// can tell how far price must move just to cover execution cost.
func RoundTripBreakEvenMove(entry, exit ExecutionResult) float64 {
	return entry.TotalImpactPercent + exit.TotalImpactPercent
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
