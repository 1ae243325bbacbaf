// Package core wires the candle aggregator, indicator engine, regime
// detector, strategy pipeline, diagnostics tracker and expectancy aggregator
// behind the single composition root described in spec.md §6: one owned
// Core value created at boot, never re-created mid-run.
//
// Grounded on cmd/main.go's app struct: a single struct holding every
// subsystem plus a logger, constructed once in initialize() and handed to
// every worker by reference. Core plays the same role here, without the
// WebSocket-worker machinery a multi-exchange ingest path would need
// (spec.md §1 places the price source itself out of scope).
package core

import (
	"sync"

	"go.uber.org/zap"

	"solcore/internal/candles"
	"solcore/internal/clock"
	"solcore/internal/diagnostics"
	"solcore/internal/expectancy"
	"solcore/internal/indicators"
	"solcore/internal/regime"
	"solcore/internal/strategy"
)

// TradeOpen is the inbound payload for OpenTrade (spec.md §6).
type TradeOpen struct {
	ID               string
	Direction        strategy.Direction
	EntryPrice       float64
	SignalScore      float64
	SignalConfidence float64
	StopLossPercent  float64
	TakeProfitPercent float64
}

// TradeClose is the inbound payload for CloseTrade (spec.md §6). It mirrors
// the wire ExitData shape; Core fills in the regime-context and fee-percent
// fields diagnostics.ExitData additionally needs.
type TradeClose struct {
	ExitPrice            float64
	ExitReason           string
	TheoreticalExitPrice float64
	ActualExitPrice      float64
	ExitSlippageBps      float64
	ExitSlippageUsd      float64
	TotalFeesUsd         float64
	FinalPnlPercent      float64
}

// Core owns every process-wide subsystem for one trading pair.
type Core struct {
	logger *zap.Logger
	clock  clock.Clock

	aggregator  *candles.Aggregator
	regime      *regime.Detector
	throttle    *strategy.Throttle
	diagnostics *diagnostics.Tracker

	mu        sync.RWMutex
	cfg       strategy.Config
	positions map[string]*strategy.ActivePosition
}

// New constructs a Core with empty subsystem state.
func New(logger *zap.Logger, clk clock.Clock, cfg strategy.Config, throttleCfg strategy.ThrottleConfig) *Core {
	return &Core{
		logger:      logger,
		clock:       clk,
		aggregator:  candles.New(clk, logger),
		regime:      regime.New(),
		throttle:    strategy.NewThrottle(throttleCfg),
		diagnostics: diagnostics.New(),
		cfg:         cfg,
		positions:   make(map[string]*strategy.ActivePosition),
	}
}

// OnPrice is the authoritative tick entry point. It updates the candle
// aggregator first, then fans the same tick out to every active trade's
// diagnostics tracker, preserving the ordering spec.md §9 requires.
func (c *Core) OnPrice(price float64, tsMs int64) {
	c.aggregator.Update(price, tsMs)

	c.mu.RLock()
	ids := make([]string, 0, len(c.positions))
	for id, pos := range c.positions {
		strategy.UpdatePositionTracking(pos, price)
		ids = append(ids, id)
	}
	c.mu.RUnlock()

	for _, id := range ids {
		c.diagnostics.UpdateTracker(id, price, tsMs)
	}
}

// SeedHistoricalCandles replaces the closed-candle ring for tf, for
// bootstrapping indicator history before live ticks arrive.
func (c *Core) SeedHistoricalCandles(tf candles.Timeframe, list []candles.Candle) {
	c.aggregator.LoadHistorical(tf, list)
}

// Snapshot implements strategy.SnapshotSource over this Core's aggregator.
func (c *Core) Snapshot(tf candles.Timeframe) (indicators.Snapshot, bool) {
	list := c.aggregator.Candles(tf, candles.Capacity(tf)+1)
	if len(list) == 0 {
		return indicators.Snapshot{}, false
	}
	return indicators.BuildSnapshot(tf, list, c.clock.NowMs()), true
}

// OpenTrade begins tracking a new position: diagnostics sampling starts, and
// an ActivePosition is retained for future exit-signal evaluation.
func (c *Core) OpenTrade(params TradeOpen) {
	entryRegime := string(c.regime.Current().State)

	c.mu.Lock()
	c.positions[params.ID] = &strategy.ActivePosition{
		Direction:       params.Direction,
		EntryPrice:      params.EntryPrice,
		CurrentStopLoss: priceAtPercent(params.Direction, params.EntryPrice, -params.StopLossPercent),
		TakeProfit:      priceAtPercent(params.Direction, params.EntryPrice, params.TakeProfitPercent),
		EntryTimeMs:     c.clock.NowMs(),
	}
	c.mu.Unlock()

	c.diagnostics.StartTrackingTrade(diagnostics.StartParams{
		TradeID:          params.ID,
		Direction:        string(params.Direction),
		EntryPrice:       params.EntryPrice,
		EntryTimeMs:      c.clock.NowMs(),
		SignalScore:      params.SignalScore,
		SignalConfidence: params.SignalConfidence,
		StopLossPercent:  params.StopLossPercent,
		EntryRegimeState: entryRegime,
	})

	c.logger.Info("trade opened",
		zap.String("trade_id", params.ID),
		zap.String("direction", string(params.Direction)),
		zap.Float64("entry_price", params.EntryPrice),
		zap.String("entry_regime", entryRegime),
	)
}

// CloseTrade finalizes a position's diagnostics and throttle bookkeeping.
// An id with no active tracker is the UnknownTrade case from spec.md §7: it
// is logged, the position (if any) is still dropped, and a zero
// TradeDiagnostics with ok=false is returned — the caller's trade close
// still proceeds regardless.
func (c *Core) CloseTrade(id string, in TradeClose) (diagnostics.TradeDiagnostics, bool) {
	exitRegime := string(c.regime.Current().State)

	c.mu.Lock()
	pos, hadPosition := c.positions[id]
	delete(c.positions, id)
	c.mu.Unlock()

	feesPercent := 0.0
	if hadPosition && pos.EntryPrice > 0 {
		notional := pos.EntryPrice * c.currentBasePositionSize()
		if notional > 0 {
			feesPercent = in.TotalFeesUsd / notional * 100
		}
	}

	exit := diagnostics.ExitData{
		ExitPrice:            in.ExitPrice,
		ExitTimeMs:           c.clock.NowMs(),
		ExitReason:           in.ExitReason,
		TheoreticalExitPrice: in.TheoreticalExitPrice,
		ActualExitPrice:      in.ActualExitPrice,
		ExitSlippageBps:      in.ExitSlippageBps,
		ExitSlippageUsd:      in.ExitSlippageUsd,
		TotalFeesUsd:         in.TotalFeesUsd,
		FeesPercent:          feesPercent,
		FinalPnlPercent:      in.FinalPnlPercent,
		ExitRegimeState:      exitRegime,
	}

	diag, ok := c.diagnostics.StopTrackingTrade(id, exit, exitRegime, false)
	if !ok {
		c.logger.Warn("close referenced unknown trade", zap.String("trade_id", id))
		return diagnostics.TradeDiagnostics{}, false
	}

	c.throttle.RecordTrade(c.clock.NowMs(), throttleOutcome(diag.Outcome), in.ExitReason)

	c.logger.Info("trade closed",
		zap.String("trade_id", id),
		zap.String("outcome", string(diag.Outcome)),
		zap.Float64("final_pnl_percent", in.FinalPnlPercent),
	)
	return diag, true
}

// QueryStrategy runs one pipeline pass over the given timeframes. cfgOverride
// replaces the Core's default strategy configuration for this call only when
// non-nil, matching spec.md §6's optional StrategyConfig? parameter.
func (c *Core) QueryStrategy(tf candles.Timeframe, position *strategy.ActivePosition, cfgOverride *strategy.Config) (strategy.Analysis, bool) {
	cfg := c.currentConfig()
	if cfgOverride != nil {
		cfg = *cfgOverride
	}

	pipeline := strategy.Pipeline{
		Source:                c,
		Regime:                c.regime,
		Throttle:              c.throttle,
		Config:                cfg,
		AnalysisTimeframe:     tf,
		TradabilityTimeframe:  candles.TF15m,
		ConfirmationTimeframe: candles.TF1m,
	}

	analysis, ok := pipeline.Run(c.clock.NowMs(), position)
	if !ok {
		return analysis, false
	}

	if cfg.RequireMultiTimeframeConfirmation {
		strategy.MultiTimeframeConfirm(&analysis.Entry, c, parseTimeframes(cfg.TimeframesToCheck), true)
	}

	return analysis, true
}

// QueryDiagnostics returns the completed diagnostics records matching filters.
func (c *Core) QueryDiagnostics(filters expectancy.Filters) []diagnostics.TradeDiagnostics {
	return expectancy.ApplyFilters(c.diagnostics.Completed(), filters)
}

// QueryExpectancy reduces the completed diagnostics matching filters into an
// expectancy report.
func (c *Core) QueryExpectancy(filters expectancy.Filters) expectancy.Report {
	return expectancy.Aggregate(c.diagnostics.Completed(), filters)
}

// Stats exposes the aggregator's observable counters for the stream-status
// view (spec.md §3/§6).
func (c *Core) Stats() candles.Stats {
	return c.aggregator.Stats()
}

// Housekeep runs the periodic background maintenance spec.md §9 assigns to
// a supervisor worker rather than the hot tick path: bounding the throttle's
// trade-record window during stretches with no closed trades.
func (c *Core) Housekeep(nowMs int64) {
	c.throttle.Prune(nowMs)
}

// RegimeReading returns the currently confirmed market regime.
func (c *Core) RegimeReading() regime.Reading {
	return c.regime.Current()
}

func (c *Core) currentConfig() strategy.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}

func (c *Core) currentBasePositionSize() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cfg.BasePositionSize <= 0 {
		return 1
	}
	return c.cfg.BasePositionSize
}

func priceAtPercent(direction strategy.Direction, entry, percent float64) float64 {
	if direction == strategy.DirectionShort {
		percent = -percent
	}
	return entry * (1 + percent/100)
}

func throttleOutcome(o diagnostics.Outcome) strategy.TradeOutcome {
	switch o {
	case diagnostics.OutcomeWin:
		return strategy.OutcomeWin
	case diagnostics.OutcomeLoss:
		return strategy.OutcomeLoss
	default:
		return strategy.OutcomeBreakeven
	}
}

func parseTimeframes(names []string) []candles.Timeframe {
	out := make([]candles.Timeframe, 0, len(names))
	for _, name := range names {
		out = append(out, candles.Timeframe(name))
	}
	return out
}
