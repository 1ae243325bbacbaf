// Package config defines the decision core's configuration tree and loads it
// from YAML via loader.go's read-file/unmarshal/default-fill shape.
package config

import "time"

// Config is the complete application configuration.
type Config struct {
	Symbol     string           `yaml:"symbol"`
	Redis      RedisConfig      `yaml:"redis"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Strategy   StrategyConfig   `yaml:"strategy"`
	Throttle   ThrottleConfig   `yaml:"throttle"`
	Cost       CostConfig       `yaml:"cost"`
	Candle     CandleConfig     `yaml:"candle"`
}

// RedisConfig is the Redis connection configuration.
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
	Timeout  string `yaml:"timeout"`
}

// MonitoringConfig configures health checks and the Prometheus exporter.
type MonitoringConfig struct {
	HealthCheckInterval int  `yaml:"health_check_interval"`
	MetricsEnabled      bool `yaml:"metrics_enabled"`
	PrometheusPort      int  `yaml:"prometheus_port"`
}

// StrategyConfig is the YAML-facing mirror of strategy.Config (spec.md §6's
// configuration-surface table). A separate type keeps internal/config free
// of a dependency on internal/strategy; internal/core (convert.go) converts
// one into the other.
type StrategyConfig struct {
	MinConfidenceToEnter float64 `yaml:"min_confidence_to_enter"`
	MinScoreToEnter      float64 `yaml:"min_score_to_enter"`

	ATRStopLossMultiplier   float64 `yaml:"atr_stop_loss_multiplier"`
	ATRTakeProfitMultiplier float64 `yaml:"atr_take_profit_multiplier"`

	EnableTrailingStop            bool    `yaml:"enable_trailing_stop"`
	TrailingStopActivationPercent float64 `yaml:"trailing_stop_activation_percent"`
	TrailingStopDistancePercent   float64 `yaml:"trailing_stop_distance_percent"`

	MaxHoldTimeSeconds int64 `yaml:"max_hold_time_seconds"`

	BasePositionSize          float64 `yaml:"base_position_size"`
	MinPositionSizeMultiplier float64 `yaml:"min_position_size_multiplier"`
	MaxPositionSizeMultiplier float64 `yaml:"max_position_size_multiplier"`

	EnableRegimeFilter    bool `yaml:"enable_regime_filter"`
	AllowTradingInRanging bool `yaml:"allow_trading_in_ranging"`

	RequireMultiTimeframeConfirmation bool     `yaml:"require_multi_timeframe_confirmation"`
	TimeframesToCheck                 []string `yaml:"timeframes_to_check"`
}

// ThrottleConfig is the YAML-facing mirror of strategy.ThrottleConfig.
type ThrottleConfig struct {
	StopLossCooldownMs   int64 `yaml:"stop_loss_cooldown_ms"`
	MinTradingGapMs      int64 `yaml:"min_trading_gap_ms"`
	MaxTradesPerHour     int   `yaml:"max_trades_per_hour"`
	MaxConsecutiveLosses int   `yaml:"max_consecutive_losses"`
}

// CostConfig is the YAML-facing mirror of cost.Config.
type CostConfig struct {
	BaseSlippagePercent    float64 `yaml:"base_slippage_percent"`
	VolatilitySlippageMult float64 `yaml:"volatility_slippage_mult"`
	SizeSlippageMult       float64 `yaml:"size_slippage_mult"`
	PricePerSecondPercent  float64 `yaml:"price_per_second_percent"`
	FeePercent             float64 `yaml:"fee_percent"`
	FixedNetworkFeeUSD     float64 `yaml:"fixed_network_fee_usd"`
}

// CandleConfig tunes the aggregator's bootstrap behaviour.
type CandleConfig struct {
	SeedOnStartup bool `yaml:"seed_on_startup"`
}

// GetTimeframeDuration converts a timeframe string into a time.Duration.
func GetTimeframeDuration(timeframe string) time.Duration {
	switch timeframe {
	case "1s":
		return time.Second
	case "1m":
		return time.Minute
	case "2m":
		return 2 * time.Minute
	case "5m":
		return 5 * time.Minute
	case "10m":
		return 10 * time.Minute
	case "15m":
		return 15 * time.Minute
	case "30m":
		return 30 * time.Minute
	case "1h":
		return time.Hour
	default:
		return time.Minute
	}
}

// Validate fills in the default symbol "SOLUSDC" when none is set. It
// rejects no value and always returns nil.
func (c *Config) Validate() error {
	if c.Symbol == "" {
		c.Symbol = "SOLUSDC"
	}
	return nil
}
