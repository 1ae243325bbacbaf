// Package metrics exposes the decision core's counters/histograms/gauges
// over a /metrics HTTP endpoint, grounded on PrometheusMetrics: same
// NewCounterVec/NewHistogramVec construction idiom, MustRegister-on-construct
// and Start/Stop HTTP-server shape, with metric names and label sets
// rewritten for this domain.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// PrometheusMetrics holds every metric the decision core exports.
type PrometheusMetrics struct {
	TicksProcessed *prometheus.CounterVec
	TicksRejected  *prometheus.CounterVec
	CandlesClosed  *prometheus.CounterVec

	TradabilityChecks *prometheus.CounterVec
	ThrottleChecks    *prometheus.CounterVec
	RegimeState       *prometheus.GaugeVec

	EntriesGenerated *prometheus.CounterVec
	ExitsGenerated   *prometheus.CounterVec

	PipelineLatency *prometheus.HistogramVec

	ExpectancyScore *prometheus.GaugeVec
	TradesClosed    *prometheus.CounterVec

	logger *zap.Logger
	server *http.Server
}

// New creates a PrometheusMetrics instance and registers every vector.
func New(logger *zap.Logger) *PrometheusMetrics {
	m := &PrometheusMetrics{
		logger: logger,

		TicksProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solcore_ticks_processed_total",
				Help: "Total number of accepted price ticks",
			},
			[]string{"symbol"},
		),
		TicksRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solcore_ticks_rejected_total",
				Help: "Total number of rejected (non-positive) price ticks",
			},
			[]string{"symbol"},
		),
		CandlesClosed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solcore_candles_closed_total",
				Help: "Total number of candles closed, by timeframe",
			},
			[]string{"symbol", "timeframe"},
		),

		TradabilityChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solcore_tradability_checks_total",
				Help: "Tradability gate outcomes",
			},
			[]string{"symbol", "result"},
		),
		ThrottleChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solcore_throttle_checks_total",
				Help: "Throttle gate outcomes",
			},
			[]string{"symbol", "result"},
		),
		RegimeState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "solcore_regime_state",
				Help: "1 for the currently confirmed regime state, 0 otherwise",
			},
			[]string{"symbol", "state"},
		),

		EntriesGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solcore_entries_generated_total",
				Help: "Entry signals generated, by direction and shouldEnter",
			},
			[]string{"symbol", "direction", "should_enter"},
		),
		ExitsGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solcore_exits_generated_total",
				Help: "Exit signals generated, by reason",
			},
			[]string{"symbol", "reason"},
		),

		PipelineLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "solcore_pipeline_latency_seconds",
				Help:    "Strategy pipeline run latency in seconds",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
			},
			[]string{"symbol"},
		),

		ExpectancyScore: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "solcore_expectancy_percent",
				Help: "Latest expectancy-per-trade snapshot, percent",
			},
			[]string{"symbol"},
		),
		TradesClosed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solcore_trades_closed_total",
				Help: "Trades closed, by outcome",
			},
			[]string{"symbol", "outcome"},
		),
	}

	prometheus.MustRegister(
		m.TicksProcessed,
		m.TicksRejected,
		m.CandlesClosed,
		m.TradabilityChecks,
		m.ThrottleChecks,
		m.RegimeState,
		m.EntriesGenerated,
		m.ExitsGenerated,
		m.PipelineLatency,
		m.ExpectancyScore,
		m.TradesClosed,
	)

	return m
}

// Start starts the Prometheus metrics HTTP server.
func (m *PrometheusMetrics) Start(port string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	m.server = &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	m.logger.Info("starting prometheus metrics server",
		zap.String("metrics_url", "http://localhost:"+port+"/metrics"),
		zap.String("health_url", "http://localhost:"+port+"/health"),
	)

	go func() {
		if err := m.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			m.logger.Error("prometheus server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the Prometheus metrics HTTP server.
func (m *PrometheusMetrics) Stop() error {
	if m.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	m.logger.Info("stopping prometheus metrics server")
	return m.server.Shutdown(ctx)
}

// RecordTick records one accepted or rejected price tick.
func (m *PrometheusMetrics) RecordTick(symbol string, accepted bool) {
	if accepted {
		m.TicksProcessed.WithLabelValues(symbol).Inc()
		return
	}
	m.TicksRejected.WithLabelValues(symbol).Inc()
}

// RecordCandleClosed records one candle closing on a timeframe.
func (m *PrometheusMetrics) RecordCandleClosed(symbol, timeframe string) {
	m.CandlesClosed.WithLabelValues(symbol, timeframe).Inc()
}

// RecordTradability records one tradability gate outcome.
func (m *PrometheusMetrics) RecordTradability(symbol string, tradable bool) {
	m.TradabilityChecks.WithLabelValues(symbol, resultLabel(tradable)).Inc()
}

// RecordThrottle records one throttle gate outcome.
func (m *PrometheusMetrics) RecordThrottle(symbol string, allowed bool) {
	m.ThrottleChecks.WithLabelValues(symbol, resultLabel(allowed)).Inc()
}

// SetRegimeState marks state as the currently confirmed regime, zeroing
// every other known state label so only one gauge reads 1 at a time.
func (m *PrometheusMetrics) SetRegimeState(symbol, state string, allStates []string) {
	for _, s := range allStates {
		value := 0.0
		if s == state {
			value = 1.0
		}
		m.RegimeState.WithLabelValues(symbol, s).Set(value)
	}
}

// RecordEntry records one generated entry signal.
func (m *PrometheusMetrics) RecordEntry(symbol, direction string, shouldEnter bool) {
	m.EntriesGenerated.WithLabelValues(symbol, direction, resultLabel(shouldEnter)).Inc()
}

// RecordExit records one generated exit signal.
func (m *PrometheusMetrics) RecordExit(symbol, reason string) {
	m.ExitsGenerated.WithLabelValues(symbol, reason).Inc()
}

// ObservePipelineLatency records one strategy pipeline run's wall time.
func (m *PrometheusMetrics) ObservePipelineLatency(symbol string, d time.Duration) {
	m.PipelineLatency.WithLabelValues(symbol).Observe(d.Seconds())
}

// SetExpectancy publishes the latest expectancy-per-trade snapshot.
func (m *PrometheusMetrics) SetExpectancy(symbol string, expectancyPercent float64) {
	m.ExpectancyScore.WithLabelValues(symbol).Set(expectancyPercent)
}

// RecordTradeClosed records one closed trade's outcome.
func (m *PrometheusMetrics) RecordTradeClosed(symbol, outcome string) {
	m.TradesClosed.WithLabelValues(symbol, outcome).Inc()
}

func resultLabel(ok bool) string {
	if ok {
		return "pass"
	}
	return "fail"
}
