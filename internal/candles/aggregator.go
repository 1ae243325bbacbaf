// Package candles turns a stream of (price, timestamp) ticks into eight
// parallel timeframes of OHLCV candles.
//
// Grounded on internal/analytics/ohlcv_candle_generator.go: the
// CandleBuilder / per-key-map / finalize-on-rollover shape is kept,
// generalized from a multi-symbol Redis-publishing generator down to the
// single-pair bounded ring of spec.md §3/§4.1. Volume here is synthetic (one
// unit per price-changing tick, spec.md §9) rather than real trade
// quantity — this is documented, not silently repaired.
package candles

import (
	"sync"

	"go.uber.org/zap"

	"solcore/internal/clock"
)

// Timeframe identifies one of the eight supported candle periods.
type Timeframe string

const (
	TF1s  Timeframe = "1s"
	TF1m  Timeframe = "1m"
	TF2m  Timeframe = "2m"
	TF5m  Timeframe = "5m"
	TF10m Timeframe = "10m"
	TF15m Timeframe = "15m"
	TF30m Timeframe = "30m"
	TF1h  Timeframe = "1h"
)

// Timeframes lists all supported timeframes in ascending period order.
var Timeframes = []Timeframe{TF1s, TF1m, TF2m, TF5m, TF10m, TF15m, TF30m, TF1h}

var periodMs = map[Timeframe]int64{
	TF1s:  1_000,
	TF1m:  60_000,
	TF2m:  120_000,
	TF5m:  300_000,
	TF10m: 600_000,
	TF15m: 900_000,
	TF30m: 1_800_000,
	TF1h:  3_600_000,
}

var capacities = map[Timeframe]int{
	TF1s:  120,
	TF1m:  100,
	TF2m:  100,
	TF5m:  100,
	TF10m: 60,
	TF15m: 60,
	TF30m: 60,
	TF1h:  60,
}

// PeriodMs returns the period length of a timeframe in milliseconds, or 0 if
// the timeframe is unknown.
func PeriodMs(tf Timeframe) int64 { return periodMs[tf] }

// Capacity returns the bounded ring length for a timeframe.
func Capacity(tf Timeframe) int { return capacities[tf] }

// Candle is a single OHLCV bar. TimestampMs is the period-start time.
type Candle struct {
	Open        float64 `json:"open"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Close       float64 `json:"close"`
	Volume      float64 `json:"volume"`
	Trades      int64   `json:"trades"`
	TimestampMs int64   `json:"timestamp_ms"`
}

type ring struct {
	open   *Candle
	closed []Candle // newest-first, bounded to Capacity(tf)
}

// Stats is the observable aggregator state exposed to JSON views (spec.md §6).
type Stats struct {
	LastPrice       float64         `json:"last_price"`
	TicksProcessed  int64           `json:"ticks_processed"`
	TicksRejected   int64           `json:"ticks_rejected"`
	ClosedPerTf     map[string]int  `json:"closed_candles_per_timeframe"`
}

// Aggregator is the process-singleton candle ring holder for one pair.
type Aggregator struct {
	mu     sync.RWMutex
	clock  clock.Clock
	logger *zap.Logger

	rings map[Timeframe]*ring

	lastPrice      float64
	ticksProcessed int64
	ticksRejected  int64
}

// New creates an Aggregator with empty rings for every supported timeframe.
func New(clk clock.Clock, logger *zap.Logger) *Aggregator {
	a := &Aggregator{
		clock:  clk,
		logger: logger,
		rings:  make(map[Timeframe]*ring, len(Timeframes)),
	}
	for _, tf := range Timeframes {
		a.rings[tf] = &ring{closed: make([]Candle, 0, Capacity(tf))}
	}
	return a
}

// Update ingests one (price, ts) tick. Non-positive prices are dropped
// silently (spec.md §4.1/§7 — the aggregator never surfaces a failure, only
// a rejected-tick counter).
func (a *Aggregator) Update(price float64, tsMs int64) {
	if price <= 0 {
		a.mu.Lock()
		a.ticksRejected++
		a.mu.Unlock()
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	priceChanged := price != a.lastPrice

	for _, tf := range Timeframes {
		a.applyTick(a.rings[tf], tf, price, tsMs, priceChanged)
	}

	a.lastPrice = price
	a.ticksProcessed++
}

func (a *Aggregator) applyTick(r *ring, tf Timeframe, price float64, tsMs int64, priceChanged bool) {
	period := periodMs[tf]
	periodStart := floorDiv(tsMs, period) * period

	if r.open == nil || r.open.TimestampMs != periodStart {
		if r.open != nil {
			a.freeze(r, tf)
		}
		r.open = &Candle{
			Open:        price,
			High:        price,
			Low:         price,
			Close:       price,
			TimestampMs: periodStart,
		}
	} else {
		if price > r.open.High {
			r.open.High = price
		}
		if price < r.open.Low {
			r.open.Low = price
		}
		r.open.Close = price
	}

	if priceChanged {
		r.open.Volume++
		r.open.Trades++
	}
}

// freeze pushes the current open candle to the front of the closed ring and
// truncates to capacity. Caller holds a.mu.
func (a *Aggregator) freeze(r *ring, tf Timeframe) {
	closed := *r.open
	r.closed = append([]Candle{closed}, r.closed...)
	if capacity := Capacity(tf); len(r.closed) > capacity {
		r.closed = r.closed[:capacity]
	}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Candles returns up to limit candles newest-first, with the open candle (if
// any) at position 0.
func (a *Aggregator) Candles(tf Timeframe, limit int) []Candle {
	a.mu.RLock()
	defer a.mu.RUnlock()

	r, ok := a.rings[tf]
	if !ok || limit <= 0 {
		return nil
	}

	out := make([]Candle, 0, limit)
	if r.open != nil && len(out) < limit {
		out = append(out, *r.open)
	}
	for _, c := range r.closed {
		if len(out) >= limit {
			break
		}
		out = append(out, c)
	}
	return out
}

// CurrentCandle returns a copy of the still-open candle for tf, or nil if
// none is open yet.
func (a *Aggregator) CurrentCandle(tf Timeframe) *Candle {
	a.mu.RLock()
	defer a.mu.RUnlock()

	r, ok := a.rings[tf]
	if !ok || r.open == nil {
		return nil
	}
	c := *r.open
	return &c
}

// LastPrice returns the most recently observed valid price.
func (a *Aggregator) LastPrice() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastPrice
}

// PriceChange returns the percentage change between the oldest and newest
// candle close currently retained for tf (open candle included), or 0 if
// fewer than two candles are available.
func (a *Aggregator) PriceChange(tf Timeframe) float64 {
	candles := a.Candles(tf, Capacity(tf)+1)
	if len(candles) < 2 {
		return 0
	}
	newest := candles[0].Close
	oldest := candles[len(candles)-1].Close
	if oldest == 0 {
		return 0
	}
	return (newest - oldest) / oldest * 100
}

// Stats returns aggregator-wide observation counters.
func (a *Aggregator) Stats() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	closedPerTf := make(map[string]int, len(Timeframes))
	for _, tf := range Timeframes {
		closedPerTf[string(tf)] = len(a.rings[tf].closed)
	}

	return Stats{
		LastPrice:      a.lastPrice,
		TicksProcessed: a.ticksProcessed,
		TicksRejected:  a.ticksRejected,
		ClosedPerTf:    closedPerTf,
	}
}

// Reset clears all ring state. Intended for test fixtures.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, tf := range Timeframes {
		a.rings[tf] = &ring{closed: make([]Candle, 0, Capacity(tf))}
	}
	a.lastPrice = 0
	a.ticksProcessed = 0
	a.ticksRejected = 0
}

// LoadHistorical replaces the closed-candle ring for tf with the newest
// Capacity(tf) elements of list, which must already be ordered newest-first.
// It never creates an open candle — seeding only ever populates closed
// history (spec.md §4.1).
func (a *Aggregator) LoadHistorical(tf Timeframe, list []Candle) {
	a.mu.Lock()
	defer a.mu.Unlock()

	r, ok := a.rings[tf]
	if !ok {
		return
	}

	capacity := Capacity(tf)
	n := len(list)
	if n > capacity {
		n = capacity
	}
	r.closed = append([]Candle(nil), list[:n]...)

	if a.lastPrice == 0 && len(r.closed) > 0 {
		a.lastPrice = r.closed[0].Close
	}
}
