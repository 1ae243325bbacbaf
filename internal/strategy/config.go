package strategy

// Config is the user-tunable surface for entry/exit signal generation,
// spec.md §6's "Configuration surface (StrategyConfig)" table.
type Config struct {
	MinConfidenceToEnter float64
	MinScoreToEnter      float64

	ATRStopLossMultiplier   float64
	ATRTakeProfitMultiplier float64

	EnableTrailingStop             bool
	TrailingStopActivationPercent  float64
	TrailingStopDistancePercent    float64

	MaxHoldTimeSeconds int64

	BasePositionSize          float64
	MinPositionSizeMultiplier float64
	MaxPositionSizeMultiplier float64

	EnableRegimeFilter   bool
	AllowTradingInRanging bool

	RequireMultiTimeframeConfirmation bool
	TimeframesToCheck                 []string
}

// DefaultConfig matches the defaults stated in spec.md §6.
func DefaultConfig() Config {
	return Config{
		MinConfidenceToEnter:              60,
		MinScoreToEnter:                   20,
		ATRStopLossMultiplier:             2.0,
		ATRTakeProfitMultiplier:           4.0,
		EnableTrailingStop:                true,
		TrailingStopActivationPercent:     0.8,
		TrailingStopDistancePercent:       0.4,
		MaxHoldTimeSeconds:                1800,
		BasePositionSize:                  0.1,
		MinPositionSizeMultiplier:         0.5,
		MaxPositionSizeMultiplier:         1.5,
		EnableRegimeFilter:                false,
		AllowTradingInRanging:             true,
		RequireMultiTimeframeConfirmation: false,
	}
}
