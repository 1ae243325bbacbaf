package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ConfigLoader reads and default-fills the application configuration from a
// YAML file: read file, unmarshal, fill defaults for anything left zero.
type ConfigLoader struct{}

// NewConfigLoader returns a ConfigLoader.
func NewConfigLoader() *ConfigLoader {
	return &ConfigLoader{}
}

// LoadConfig reads filename and unmarshals it into a Config, filling in
// defaults for anything the file leaves zero-valued. enable_trailing_stop
// and allow_trading_in_ranging default to true when the file omits them;
// the other boolean options and timeframes_to_check keep their zero value.
func (cl *ConfigLoader) LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	var cfg Config
	// yaml.Unmarshal leaves keys absent from the file untouched, so these
	// pre-set defaults survive unless the file sets them explicitly.
	cfg.Strategy.EnableTrailingStop = true
	cfg.Strategy.AllowTradingInRanging = true
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = 10
	}
	if cfg.Redis.Timeout == "" {
		cfg.Redis.Timeout = "5s"
	}

	if cfg.Monitoring.PrometheusPort == 0 {
		cfg.Monitoring.PrometheusPort = 9090
	}
	if cfg.Monitoring.HealthCheckInterval == 0 {
		cfg.Monitoring.HealthCheckInterval = 30
	}

	s := &cfg.Strategy
	if s.MinConfidenceToEnter == 0 {
		s.MinConfidenceToEnter = 60
	}
	if s.MinScoreToEnter == 0 {
		s.MinScoreToEnter = 20
	}
	if s.ATRStopLossMultiplier == 0 {
		s.ATRStopLossMultiplier = 2.0
	}
	if s.ATRTakeProfitMultiplier == 0 {
		s.ATRTakeProfitMultiplier = 4.0
	}
	if s.TrailingStopActivationPercent == 0 {
		s.TrailingStopActivationPercent = 0.8
	}
	if s.TrailingStopDistancePercent == 0 {
		s.TrailingStopDistancePercent = 0.4
	}
	if s.MaxHoldTimeSeconds == 0 {
		s.MaxHoldTimeSeconds = 1800
	}
	if s.BasePositionSize == 0 {
		s.BasePositionSize = 0.1
	}
	if s.MinPositionSizeMultiplier == 0 {
		s.MinPositionSizeMultiplier = 0.5
	}
	if s.MaxPositionSizeMultiplier == 0 {
		s.MaxPositionSizeMultiplier = 1.5
	}

	t := &cfg.Throttle
	if t.StopLossCooldownMs == 0 {
		t.StopLossCooldownMs = 300_000
	}
	if t.MinTradingGapMs == 0 {
		t.MinTradingGapMs = 120_000
	}
	if t.MaxTradesPerHour == 0 {
		t.MaxTradesPerHour = 3
	}
	if t.MaxConsecutiveLosses == 0 {
		t.MaxConsecutiveLosses = 3
	}

	c := &cfg.Cost
	if c.BaseSlippagePercent == 0 {
		c.BaseSlippagePercent = 0.02
	}
	if c.VolatilitySlippageMult == 0 {
		c.VolatilitySlippageMult = 0.1
	}
	if c.SizeSlippageMult == 0 {
		c.SizeSlippageMult = 0.01
	}
	if c.PricePerSecondPercent == 0 {
		c.PricePerSecondPercent = 0.001
	}
	if c.FeePercent == 0 {
		c.FeePercent = 0.3
	}
	if c.FixedNetworkFeeUSD == 0 {
		c.FixedNetworkFeeUSD = 0.01
	}
}

// GetRedisAddress returns the "host:port" Redis address.
func (c *Config) GetRedisAddress() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// GetRedisDatabase returns the Redis logical database index.
func (c *Config) GetRedisDatabase() int {
	return c.Redis.DB
}
