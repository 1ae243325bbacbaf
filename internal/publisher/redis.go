// Package publisher fans decision-core output out to Redis pub/sub channels,
// with publish attempts throttled by one messages-per-second limit shared by
// all channels to bound fan-out under load.
// Channel names follow a "<subject>:<symbol>" convention
// (e.g. "candles:%s:%s"/"%s:htf_bias" elsewhere in this codebase) adapted to
// this domain's outbound events (spec.md §6): "decisions:SOLUSDC",
// "diagnostics:SOLUSDC", "expectancy:SOLUSDC", "stream:SOLUSDC:stats".
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DecisionEvent is the outbound payload for one strategy pipeline decision.
type DecisionEvent struct {
	Symbol      string  `json:"symbol"`
	Timeframe   string  `json:"timeframe"`
	TimestampMs int64   `json:"timestamp_ms"`
	Price       float64 `json:"price"`

	RegimeState      string  `json:"regime_state"`
	RegimeConfidence float64 `json:"regime_confidence"`

	Tradable        bool   `json:"tradable"`
	TradabilityNote string `json:"tradability_note"`

	ThrottleAllowed bool   `json:"throttle_allowed"`
	ThrottleNote    string `json:"throttle_note"`

	Direction   string  `json:"direction"`
	Score       float64 `json:"score"`
	Confidence  float64 `json:"confidence"`
	ShouldEnter bool    `json:"should_enter"`

	ExitShouldExit bool   `json:"exit_should_exit,omitempty"`
	ExitReason     string `json:"exit_reason,omitempty"`
}

// DiagnosticsEvent is the outbound payload for one finalized trade's
// diagnostics record.
type DiagnosticsEvent struct {
	Symbol      string  `json:"symbol"`
	TradeID     string  `json:"trade_id"`
	Outcome     string  `json:"outcome"`
	MFE         float64 `json:"mfe"`
	MAE         float64 `json:"mae"`
	RMultiple   float64 `json:"r_multiple"`
	FinalPnl    float64 `json:"final_pnl_percent"`
	ExitReason  string  `json:"exit_reason"`
	TimestampMs int64   `json:"timestamp_ms"`
}

// ExpectancyEvent is the outbound payload for a periodic expectancy snapshot.
type ExpectancyEvent struct {
	Symbol              string  `json:"symbol"`
	TimestampMs         int64   `json:"timestamp_ms"`
	TotalTrades         int     `json:"total_trades"`
	WinRate             float64 `json:"win_rate"`
	Expectancy          float64 `json:"expectancy"`
	ExpectancyAfterFees float64 `json:"expectancy_after_fees"`
}

// StreamStatsEvent is the outbound payload for the periodic stream-status
// view (spec.md §3/§6's supplemented stream status feature).
type StreamStatsEvent struct {
	Symbol         string         `json:"symbol"`
	TimestampMs    int64          `json:"timestamp_ms"`
	LastPrice      float64        `json:"last_price"`
	TicksProcessed int64          `json:"ticks_processed"`
	TicksRejected  int64          `json:"ticks_rejected"`
	ClosedPerTf    map[string]int `json:"closed_candles_per_timeframe"`
}

// PublishMetrics tracks publishing statistics
type PublishMetrics struct {
	TotalEvents      int64         `json:"total_events"`
	SuccessfulEvents int64         `json:"successful_events"`
	FailedEvents     int64         `json:"failed_events"`
	ThrottledEvents  int64         `json:"throttled_events"`
	AverageLatency   time.Duration `json:"average_latency"`
	LastPublish      time.Time     `json:"last_publish"`
}

// RedisPublisher handles publishing events to Redis PubSub with throttling
type RedisPublisher struct {
	client  *redis.Client
	logger  *zap.Logger
	metrics PublishMetrics
	mu      sync.RWMutex
	ctx     context.Context
	cancel  context.CancelFunc

	// Throttling controls
	maxMessagesPerSecond int
	messageCount         int
	lastResetTime        time.Time
	throttleMutex        sync.Mutex
}

// NewRedisPublisher creates a new Redis publisher instance with throttling
func NewRedisPublisher(client *redis.Client, logger *zap.Logger) *RedisPublisher {
	ctx, cancel := context.WithCancel(context.Background())

	return &RedisPublisher{
		client:               client,
		logger:               logger,
		ctx:                  ctx,
		cancel:               cancel,
		maxMessagesPerSecond: 1000, // Increased limit to 1000 messages per second for high-frequency data
		lastResetTime:        time.Now(),
	}
}

// Publish publishes a single event to Redis with throttling
func (rp *RedisPublisher) Publish(channel string, data interface{}) error {
	// Check throttling first
	if !rp.checkThrottle() {
		rp.updateMetrics(false, 0, true) // Mark as throttled
		rp.logger.Debug("Message throttled",
			zap.String("channel", channel))
		return fmt.Errorf("message throttled - rate limit exceeded")
	}

	start := time.Now()

	// Handle different data types - NO DOUBLE JSON ENCODING
	var message string
	switch v := data.(type) {
	case string:
		message = v
	case []byte:
		message = string(v)
	default:
		rp.logger.Error("Unsupported data type for Redis publish",
			zap.String("channel", channel),
			zap.String("type", fmt.Sprintf("%T", data)))
		rp.updateMetrics(false, time.Since(start), false)
		return fmt.Errorf("unsupported data type: %T", data)
	}

	// Publish DIRECTLY to Redis - NO EXTRA PROCESSING
	err := rp.client.Publish(rp.ctx, channel, message).Err()
	if err != nil {
		rp.updateMetrics(false, time.Since(start), false)
		rp.logger.Error("❌ Failed to publish to Redis",
			zap.String("channel", channel),
			zap.Error(err))
		return fmt.Errorf("failed to publish to Redis: %w", err)
	}

	rp.updateMetrics(true, time.Since(start), false)
	rp.logger.Info("✅ REAL DATA PUBLISHED TO REDIS",
		zap.String("channel", channel),
		zap.Duration("latency", time.Since(start)))

	return nil
}

// checkThrottle checks if we can publish based on rate limiting
func (rp *RedisPublisher) checkThrottle() bool {
	rp.throttleMutex.Lock()
	defer rp.throttleMutex.Unlock()

	now := time.Now()

	// Reset counter every second
	if now.Sub(rp.lastResetTime) >= time.Second {
		rp.messageCount = 0
		rp.lastResetTime = now
	}

	// Check if we're under the limit
	if rp.messageCount >= rp.maxMessagesPerSecond {
		return false
	}

	rp.messageCount++
	return true
}

// SetThrottleLimit sets the maximum messages per second
func (rp *RedisPublisher) SetThrottleLimit(limit int) {
	rp.throttleMutex.Lock()
	defer rp.throttleMutex.Unlock()
	rp.maxMessagesPerSecond = limit
	rp.logger.Info("Throttle limit updated", zap.Int("messages_per_second", limit))
}

// updateMetrics updates publishing metrics
func (rp *RedisPublisher) updateMetrics(success bool, latency time.Duration, throttled bool) {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	rp.metrics.TotalEvents++
	if throttled {
		rp.metrics.ThrottledEvents++
		return
	}

	if success {
		rp.metrics.SuccessfulEvents++
	} else {
		rp.metrics.FailedEvents++
	}

	// Update average latency over the non-throttled events
	n := rp.metrics.SuccessfulEvents + rp.metrics.FailedEvents
	rp.metrics.AverageLatency = time.Duration(
		(int64(rp.metrics.AverageLatency)*(n-1) + int64(latency)) / n,
	)

	rp.metrics.LastPublish = time.Now()
}

// GetMetrics returns current publishing metrics
func (rp *RedisPublisher) GetMetrics() PublishMetrics {
	rp.mu.RLock()
	defer rp.mu.RUnlock()
	return rp.metrics
}

// Health checks if the Redis publisher is healthy
func (rp *RedisPublisher) Health() bool {
	// Check Redis connectivity
	err := rp.client.Ping(rp.ctx).Err()
	if err != nil {
		rp.logger.Error("Redis health check failed", zap.Error(err))
		return false
	}

	// Check if we've published recently (within last 5 minutes)
	rp.mu.RLock()
	lastPublish := rp.metrics.LastPublish
	rp.mu.RUnlock()

	if time.Since(lastPublish) > 5*time.Minute && rp.metrics.TotalEvents > 0 {
		rp.logger.Warn("No recent publishes detected")
		return false
	}

	return true
}

// Close closes the Redis publisher
func (rp *RedisPublisher) Close() error {
	rp.cancel()
	rp.logger.Info("Redis publisher closed")
	return nil
}

// PublishDecision publishes a strategy-pipeline decision. Failures are
// logged by Publish and swallowed here, matching spec.md §7's "persistence
// failures belong to the collaborator; core remains live" policy.
func (rp *RedisPublisher) PublishDecision(symbol string, ev DecisionEvent) {
	rp.publishJSON(fmt.Sprintf("decisions:%s", symbol), ev)
}

// PublishDiagnostics publishes a finalized trade's diagnostics record.
func (rp *RedisPublisher) PublishDiagnostics(symbol string, ev DiagnosticsEvent) {
	rp.publishJSON(fmt.Sprintf("diagnostics:%s", symbol), ev)
}

// PublishExpectancy publishes a periodic expectancy snapshot.
func (rp *RedisPublisher) PublishExpectancy(symbol string, ev ExpectancyEvent) {
	rp.publishJSON(fmt.Sprintf("expectancy:%s", symbol), ev)
}

// PublishStreamStats publishes a periodic stream-status snapshot.
func (rp *RedisPublisher) PublishStreamStats(symbol string, ev StreamStatsEvent) {
	rp.publishJSON(fmt.Sprintf("stream:%s:stats", symbol), ev)
}

func (rp *RedisPublisher) publishJSON(channel string, ev interface{}) {
	data, err := json.Marshal(ev)
	if err != nil {
		rp.logger.Error("failed to marshal outbound event", zap.String("channel", channel), zap.Error(err))
		return
	}
	if err := rp.Publish(channel, data); err != nil {
		rp.logger.Debug("outbound publish did not complete", zap.String("channel", channel), zap.Error(err))
	}
}
