// Command solcore runs the SOL/USDC decision core as a long-lived process:
// load config, wire the composition root, seed historical candles, expose
// the inbound contract over a thin HTTP surface, and run periodic
// housekeeping under a supervisor until a shutdown signal arrives.
//
// Carries forward the initialize/start/waitForShutdown/shutdown skeleton and
// zap logger setup from a market-data pipeline's entrypoint, with
// signal-based graceful shutdown. None of the per-exchange WebSocket worker
// logic survives — the price source is an external collaborator per
// spec.md §1.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"solcore/internal/candles"
	"solcore/internal/clock"
	"solcore/internal/config"
	"solcore/internal/core"
	"solcore/internal/cost"
	"solcore/internal/expectancy"
	"solcore/internal/metrics"
	"solcore/internal/publisher"
	"solcore/internal/seed"
	"solcore/internal/regime"
	"solcore/internal/strategy"
	"solcore/internal/supervisor"
	"solcore/internal/utils"
	pkgredis "solcore/pkg/redis"
)

var allRegimeStates = []string{
	string(regime.StateVolatile),
	string(regime.StateTrendingBullish),
	string(regime.StateTrendingBearish),
	string(regime.StateRanging),
	string(regime.StateUnknown),
}

// App is the process composition root: every subsystem held once,
// constructed in initialize and threaded through every worker and HTTP
// handler by reference.
type App struct {
	config     *config.Config
	logger     *zap.Logger
	supervisor *supervisor.Supervisor

	redisRaw   *goredis.Client
	redisUtil  *pkgredis.Client
	publisher  *publisher.RedisPublisher
	seeder     seed.Seeder
	metrics    *metrics.PrometheusMetrics
	core       *core.Core
	costConfig cost.Config
	httpServer *http.Server

	ctx    context.Context
	cancel context.CancelFunc
}

func main() {
	app := &App{}

	if err := app.initialize(); err != nil {
		fmt.Printf("failed to initialize solcore: %v\n", err)
		os.Exit(1)
	}

	if err := app.start(); err != nil {
		fmt.Printf("failed to start solcore: %v\n", err)
		os.Exit(1)
	}

	app.waitForShutdown()

	if err := app.shutdown(); err != nil {
		fmt.Printf("error during shutdown: %v\n", err)
		os.Exit(1)
	}
}

func (app *App) initialize() error {
	var err error

	app.ctx, app.cancel = context.WithCancel(context.Background())

	app.logger, err = app.setupLogger()
	if err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}

	app.logger.Info("initializing solcore")

	execPath, _ := os.Executable()
	execDir := filepath.Dir(execPath)
	configPath := filepath.Join(execDir, "configs", "config.yaml")
	if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
		configPath = "configs/config.yaml"
	}

	loader := config.NewConfigLoader()
	app.config, err = loader.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app.logger.Info("configuration loaded",
		zap.String("symbol", app.config.Symbol),
		zap.String("redis_addr", app.config.GetRedisAddress()),
	)

	app.redisRaw = goredis.NewClient(&goredis.Options{
		Addr:     app.config.GetRedisAddress(),
		Password: app.config.Redis.Password,
		DB:       app.config.GetRedisDatabase(),
		PoolSize: app.config.Redis.PoolSize,
	})

	app.redisUtil, err = pkgredis.NewClient(pkgredis.ClientConfig{
		URL:      "redis://" + app.config.GetRedisAddress(),
		DB:       app.config.GetRedisDatabase(),
		Password: app.config.Redis.Password,
		PoolSize: app.config.Redis.PoolSize,
	}, app.logger)
	if err != nil {
		return fmt.Errorf("failed to connect Redis utility client: %w", err)
	}

	app.publisher = publisher.NewRedisPublisher(app.redisRaw, app.logger)
	app.seeder = seed.NewRedisSeeder(app.redisRaw, app.config.Symbol)
	app.metrics = metrics.New(app.logger)

	app.core = core.New(
		app.logger,
		clock.System{},
		core.StrategyConfigFrom(app.config.Strategy),
		core.ThrottleConfigFrom(app.config.Throttle),
	)
	app.costConfig = core.CostConfigFrom(app.config.Cost)

	app.supervisor = supervisor.NewSupervisor(app.logger)

	app.logger.Info("core components initialized")
	return nil
}

func (app *App) setupLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	cfg.OutputPaths = []string{"stdout"}
	return cfg.Build()
}

func (app *App) start() error {
	app.logger.Info("starting solcore")

	if app.config.Candle.SeedOnStartup {
		app.seedHistoricalCandles()
	}

	if app.config.Monitoring.MetricsEnabled {
		if err := app.metrics.Start(strconv.Itoa(app.config.Monitoring.PrometheusPort)); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
	}

	if err := app.registerHousekeepingWorkers(); err != nil {
		return fmt.Errorf("failed to register housekeeping workers: %w", err)
	}

	if err := app.supervisor.Start(); err != nil {
		return fmt.Errorf("failed to start supervisor: %w", err)
	}

	go app.startHTTPServer()

	app.logger.Info("solcore started", zap.String("symbol", app.config.Symbol))
	return nil
}

// seedHistoricalCandles loads each timeframe's previously cached candles out
// of Redis and replaces the aggregator's ring with them before any live tick
// arrives, per spec.md §4.1's bootstrap contract.
func (app *App) seedHistoricalCandles() {
	for _, tf := range candles.Timeframes {
		list, err := app.seeder.LoadHistorical(app.ctx, tf)
		if err != nil {
			app.logger.Warn("historical seed unavailable", zap.String("timeframe", string(tf)), zap.Error(err))
			continue
		}
		if len(list) == 0 {
			continue
		}
		app.core.SeedHistoricalCandles(tf, list)
		app.logger.Info("seeded historical candles", zap.String("timeframe", string(tf)), zap.Int("count", len(list)))
	}
}

// registerHousekeepingWorkers repurposes the supervisor's retry/backoff
// worker model (spec.md §9) to run the core's own background maintenance —
// throttle-window pruning and periodic expectancy/stream-stats publishing —
// in place of per-exchange WebSocket ingest workers.
func (app *App) registerHousekeepingWorkers() error {
	if err := app.supervisor.AddWorker(supervisor.WorkerConfig{
		Name:           "throttle-pruner",
		Symbol:         app.config.Symbol,
		MaxRetries:     0,
		InitialBackoff: time.Second,
		MaxBackoff:     30 * time.Second,
		BackoffFactor:  2.0,
	}, app.runThrottlePruner); err != nil {
		return err
	}

	if err := app.supervisor.AddWorker(supervisor.WorkerConfig{
		Name:           "expectancy-publisher",
		Symbol:         app.config.Symbol,
		MaxRetries:     0,
		InitialBackoff: time.Second,
		MaxBackoff:     30 * time.Second,
		BackoffFactor:  2.0,
	}, app.runExpectancyPublisher); err != nil {
		return err
	}

	return app.supervisor.AddWorker(supervisor.WorkerConfig{
		Name:           "stream-stats-publisher",
		Symbol:         app.config.Symbol,
		MaxRetries:     0,
		InitialBackoff: time.Second,
		MaxBackoff:     30 * time.Second,
		BackoffFactor:  2.0,
	}, app.runStreamStatsPublisher)
}

func (app *App) runThrottlePruner(ctx context.Context) error {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			app.core.Housekeep(time.Now().UnixMilli())
			reading := app.core.RegimeReading()
			app.metrics.SetRegimeState(app.config.Symbol, string(reading.State), allRegimeStates)
		}
	}
}

func (app *App) runExpectancyPublisher(ctx context.Context) error {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			report := app.core.QueryExpectancy(expectancy.Filters{})
			app.metrics.SetExpectancy(app.config.Symbol, report.ExpectancyAfterFees)
			app.publisher.PublishExpectancy(app.config.Symbol, publisher.ExpectancyEvent{
				Symbol:              app.config.Symbol,
				TimestampMs:         time.Now().UnixMilli(),
				TotalTrades:         report.TotalTrades,
				WinRate:             report.WinRate,
				Expectancy:          report.Expectancy,
				ExpectancyAfterFees: report.ExpectancyAfterFees,
			})
		}
	}
}

func (app *App) runStreamStatsPublisher(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			stats := app.core.Stats()
			closedPerTf := make(map[string]int, len(stats.ClosedPerTf))
			for tf, n := range stats.ClosedPerTf {
				closedPerTf[tf] = n
			}
			app.publisher.PublishStreamStats(app.config.Symbol, publisher.StreamStatsEvent{
				Symbol:         app.config.Symbol,
				TimestampMs:    time.Now().UnixMilli(),
				LastPrice:      stats.LastPrice,
				TicksProcessed: stats.TicksProcessed,
				TicksRejected:  stats.TicksRejected,
				ClosedPerTf:    closedPerTf,
			})
		}
	}
}

func (app *App) waitForShutdown() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	app.logger.Info("received shutdown signal", zap.String("signal", sig.String()))
}

func (app *App) shutdown() error {
	app.logger.Info("shutting down solcore")

	app.cancel()

	if app.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.httpServer.Shutdown(ctx); err != nil {
			app.logger.Error("error shutting down http server", zap.Error(err))
		}
	}

	if err := app.supervisor.Stop(); err != nil {
		app.logger.Error("error stopping supervisor", zap.Error(err))
	}

	if err := app.metrics.Stop(); err != nil {
		app.logger.Error("error stopping metrics server", zap.Error(err))
	}

	if err := app.publisher.Close(); err != nil {
		app.logger.Error("error closing publisher", zap.Error(err))
	}

	if err := app.redisUtil.Close(); err != nil {
		app.logger.Error("error closing redis utility client", zap.Error(err))
	}
	if err := app.redisRaw.Close(); err != nil {
		app.logger.Error("error closing redis client", zap.Error(err))
	}

	app.logger.Info("solcore shutdown complete")
	return nil
}

// --- HTTP surface: the thin realization of spec.md §6's inbound contract.
// The REST surface itself is an out-of-scope external collaborator; this is
// the minimal wiring a running binary needs to exercise the core.

type priceTickRequest struct {
	Price       float64 `json:"price"`
	TimestampMs int64   `json:"timestamp_ms"`
}

type openTradeRequest struct {
	ID                string  `json:"id"`
	Direction         string  `json:"direction"`
	EntryPrice        float64 `json:"entry_price"`
	SignalScore       float64 `json:"signal_score"`
	SignalConfidence  float64 `json:"signal_confidence"`
	StopLossPercent   float64 `json:"stop_loss_percent"`
	TakeProfitPercent float64 `json:"take_profit_percent"`
}

type closeTradeRequest struct {
	ExitPrice            float64 `json:"exit_price"`
	ExitReason           string  `json:"exit_reason"`
	TheoreticalExitPrice float64 `json:"theoretical_exit_price"`
	ActualExitPrice      float64 `json:"actual_exit_price"`
	ExitSlippageBps      float64 `json:"exit_slippage_bps"`
	ExitSlippageUsd      float64 `json:"exit_slippage_usd"`
	TotalFeesUsd         float64 `json:"total_fees_usd"`
	FinalPnlPercent      float64 `json:"final_pnl_percent"`
}

type costRequest struct {
	SignalPrice float64 `json:"signal_price"`
	Direction   string  `json:"direction"`
	SizeInSol   float64 `json:"size_in_sol"`
	ATRPercent  float64 `json:"atr_percent"`
	DelayMs     int64   `json:"delay_ms"`
	Side        string  `json:"side"`
}

// handleCostEstimate exposes the pure execution-cost model (spec.md §4.10)
// so the order-flow collaborator can price a fill before calling
// /trades/open or /trades/close with the resulting theoretical/actual prices.
func (app *App) handleCostEstimate(w http.ResponseWriter, r *http.Request) {
	var req costRequest
	if !app.decodeJSONBody(w, r, &req) {
		return
	}

	result := cost.CalculateExecution(
		req.SignalPrice,
		cost.Direction(req.Direction),
		req.SizeInSol,
		req.ATRPercent,
		req.DelayMs,
		app.costConfig,
		cost.Side(req.Side),
	)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (app *App) startHTTPServer() {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		status := "healthy"
		if err := app.redisUtil.HealthCheck(r.Context()); err != nil {
			status = "degraded"
			app.logger.Warn("redis health check failed", zap.Error(err))
		}
		json.NewEncoder(w).Encode(map[string]string{"status": status, "service": "solcore"})
	})

	mux.HandleFunc("/cost/estimate", app.handleCostEstimate)
	mux.HandleFunc("/price", app.handlePrice)
	mux.HandleFunc("/trades/open", app.handleOpenTrade)
	mux.HandleFunc("/trades/close", app.handleCloseTrade)
	mux.HandleFunc("/strategy", app.handleQueryStrategy)
	mux.HandleFunc("/diagnostics", app.handleQueryDiagnostics)
	mux.HandleFunc("/expectancy", app.handleQueryExpectancy)
	mux.HandleFunc("/stats", app.handleStats)
	mux.HandleFunc("/workers", app.handleWorkerStats)

	app.httpServer = &http.Server{Addr: ":8090", Handler: mux}

	app.logger.Info("starting http server", zap.String("addr", app.httpServer.Addr))
	if err := app.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		app.logger.Error("http server error", zap.Error(err))
	}
}

func (app *App) handlePrice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req priceTickRequest
	if !app.decodeJSONBody(w, r, &req) {
		return
	}

	accepted := req.Price > 0
	app.metrics.RecordTick(app.config.Symbol, accepted)
	if !accepted {
		http.Error(w, "price must be positive", http.StatusBadRequest)
		return
	}

	app.core.OnPrice(req.Price, req.TimestampMs)

	if err := app.redisUtil.Set(r.Context(), lastPriceKey(app.config.Symbol), req.Price, time.Hour); err != nil {
		app.logger.Debug("last-price cache write did not complete", zap.Error(err))
	}

	w.WriteHeader(http.StatusNoContent)
}

func lastPriceKey(symbol string) string {
	return pkgredis.BuildChannelName(symbol, "lastprice")
}

// decodeJSONBody decodes r's JSON body into dest, writing a 400 and logging a
// truncated snippet of the offending payload on failure. Returns false when
// the caller should stop handling the request.
func (app *App) decodeJSONBody(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		app.logger.Debug("invalid request body",
			zap.String("path", r.URL.Path),
			zap.String("body", string(raw[:utils.MinInt(200, len(raw))])),
			zap.Error(err))
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func (app *App) handleOpenTrade(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req openTradeRequest
	if !app.decodeJSONBody(w, r, &req) {
		return
	}

	app.core.OpenTrade(core.TradeOpen{
		ID:                req.ID,
		Direction:         strategy.Direction(req.Direction),
		EntryPrice:        req.EntryPrice,
		SignalScore:       req.SignalScore,
		SignalConfidence:  req.SignalConfidence,
		StopLossPercent:   req.StopLossPercent,
		TakeProfitPercent: req.TakeProfitPercent,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (app *App) handleCloseTrade(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "missing id query parameter", http.StatusBadRequest)
		return
	}
	var req closeTradeRequest
	if !app.decodeJSONBody(w, r, &req) {
		return
	}

	diag, ok := app.core.CloseTrade(id, core.TradeClose{
		ExitPrice:            req.ExitPrice,
		ExitReason:           req.ExitReason,
		TheoreticalExitPrice: req.TheoreticalExitPrice,
		ActualExitPrice:      req.ActualExitPrice,
		ExitSlippageBps:      req.ExitSlippageBps,
		ExitSlippageUsd:      req.ExitSlippageUsd,
		TotalFeesUsd:         req.TotalFeesUsd,
		FinalPnlPercent:      req.FinalPnlPercent,
	})

	app.metrics.RecordExit(app.config.Symbol, req.ExitReason)
	if !ok {
		app.publisher.PublishDiagnostics(app.config.Symbol, publisher.DiagnosticsEvent{
			Symbol: app.config.Symbol, TradeID: id, ExitReason: req.ExitReason, TimestampMs: time.Now().UnixMilli(),
		})
		http.Error(w, "unknown trade id", http.StatusNotFound)
		return
	}

	app.metrics.RecordTradeClosed(app.config.Symbol, string(diag.Outcome))
	app.publisher.PublishDiagnostics(app.config.Symbol, publisher.DiagnosticsEvent{
		Symbol:      app.config.Symbol,
		TradeID:     diag.TradeID,
		Outcome:     string(diag.Outcome),
		MFE:         diag.MFE,
		MAE:         diag.MAE,
		RMultiple:   diag.RMultiple,
		FinalPnl:    req.FinalPnlPercent,
		ExitReason:  req.ExitReason,
		TimestampMs: time.Now().UnixMilli(),
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(diag)
}

func (app *App) handleQueryStrategy(w http.ResponseWriter, r *http.Request) {
	tf := candles.Timeframe(r.URL.Query().Get("timeframe"))
	if tf == "" {
		tf = candles.TF5m
	}

	analysis, ok := app.core.QueryStrategy(tf, nil, nil)
	app.metrics.RecordTradability(app.config.Symbol, analysis.Tradability.Tradable)
	app.metrics.RecordThrottle(app.config.Symbol, analysis.Throttle.Allowed)
	if !ok {
		http.Error(w, "insufficient candle history for requested timeframe", http.StatusServiceUnavailable)
		return
	}

	app.metrics.RecordEntry(app.config.Symbol, string(analysis.Entry.Direction), analysis.Entry.ShouldEnter)

	app.publisher.PublishDecision(app.config.Symbol, publisher.DecisionEvent{
		Symbol:           app.config.Symbol,
		Timeframe:        string(tf),
		TimestampMs:      analysis.TimestampMs,
		Price:            analysis.CurrentPrice,
		RegimeState:      string(analysis.Regime.State),
		RegimeConfidence: analysis.Regime.Confidence,
		Tradable:         analysis.Tradability.Tradable,
		TradabilityNote:  analysis.Tradability.Reason,
		ThrottleAllowed:  analysis.Throttle.Allowed,
		ThrottleNote:     analysis.Throttle.Reason,
		Direction:        string(analysis.Entry.Direction),
		Score:            analysis.Entry.Score,
		Confidence:       analysis.Entry.Confidence,
		ShouldEnter:      analysis.Entry.ShouldEnter,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(analysis)
}

func (app *App) handleQueryDiagnostics(w http.ResponseWriter, r *http.Request) {
	filters := expectancy.Filters{}
	if regimeState := r.URL.Query().Get("regime_state"); regimeState != "" {
		filters.RegimeState = regimeState
		filters.HasRegimeState = true
	}

	results := app.core.QueryDiagnostics(filters)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

func (app *App) handleQueryExpectancy(w http.ResponseWriter, r *http.Request) {
	filters := expectancy.Filters{}
	if regimeState := r.URL.Query().Get("regime_state"); regimeState != "" {
		filters.RegimeState = regimeState
		filters.HasRegimeState = true
	}

	report := app.core.QueryExpectancy(filters)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

func (app *App) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := app.core.Stats()
	regime := app.core.RegimeReading()

	var lastPrice float64
	if err := app.redisUtil.Get(r.Context(), lastPriceKey(app.config.Symbol), &lastPrice); err != nil {
		app.logger.Debug("last-price cache read did not complete", zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		candles.Stats
		RegimeState      string                 `json:"regime_state"`
		RegimeConfidence float64                `json:"regime_confidence"`
		LastPrice        float64                `json:"last_price"`
		RedisPool        map[string]interface{} `json:"redis_pool"`
	}{
		Stats:            stats,
		RegimeState:      string(regime.State),
		RegimeConfidence: regime.Confidence,
		LastPrice:        lastPrice,
		RedisPool:        app.redisUtil.GetStats(),
	})
}

// handleWorkerStats exposes the housekeeping supervisor's own bookkeeping:
// per-worker status/retry counts plus the aggregate view by status.
func (app *App) handleWorkerStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(app.supervisor.GetSupervisorStats())
}
