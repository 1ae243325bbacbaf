// Package expectancy reduces a list of closed-trade diagnostics into an
// expectancy report: win/loss statistics, MFE/MAE behaviour, slippage
// percentiles and a score-bucket breakdown.
//
// Grounded on vpin_analyzer.go's fixed-width bucket accumulation (toxicity
// buckets there map onto the |score| decile buckets here); otherwise a pure
// reducer package with no external dependency, same texture as
// internal/cost.
package expectancy

import (
	"math"
	"sort"

	"solcore/internal/diagnostics"
)

const (
	minTradesForBreakEven = 10
	fixedFeeUSD           = 0.01
	scoreBucketWidth       = 10.0
)

// Filters narrows the input population before reduction.
type Filters struct {
	RegimeState       string
	HasRegimeState     bool
	MFEBeforeMAE       bool
	HasMFEBeforeMAE    bool
	RegimeShifted      bool
	HasRegimeShifted   bool
	HourOfDayStart     int
	HourOfDayEnd       int
	HasHourOfDay       bool
}

// ScoreBucket is one |signalScore| decile band's aggregate stats.
type ScoreBucket struct {
	RangeLow, RangeHigh float64
	Count               int
	WinRate             float64
	AvgPnLPercent       float64
	AvgMFEPercent       float64
}

// Report is the full expectancy reduction over a trade population.
type Report struct {
	TotalTrades int
	WinCount    int
	LossCount   int
	WinRate     float64
	LossRate    float64
	AvgWinPercent  float64
	AvgLossPercent float64

	Expectancy           float64
	ExpectancyAfterFees  float64

	AvgMFEPercent    float64
	AvgAbsMAEPercent float64
	MFEToMAERatio    float64

	AvgRMultiple float64

	PercentTradesMFEReachedTwoR float64

	SlippageMeanBps   float64
	SlippageMedianBps float64
	SlippageP90Bps    float64
	SlippageWorstBps  float64

	ScoreBuckets []ScoreBucket

	BreakEvenPositionSizeSOL      float64
	BreakEvenPositionSizeValid    bool
}

// Aggregate computes the Report over trades after applying filters. The
// result is invariant to the order of trades.
func Aggregate(trades []diagnostics.TradeDiagnostics, filters Filters) Report {
	filtered := applyFilters(trades, filters)

	var report Report
	report.TotalTrades = len(filtered)
	if report.TotalTrades == 0 {
		return report
	}

	var winSum, lossSum, mfeSum, maeSum, feesPercentSum float64
	var rMultipleSum float64
	rMultipleCount := 0
	twoRCount := 0
	slippages := make([]float64, 0, len(filtered))

	for _, tr := range filtered {
		switch tr.Outcome {
		case diagnostics.OutcomeWin:
			report.WinCount++
			winSum += tr.FinalPnlPercent
		case diagnostics.OutcomeLoss:
			report.LossCount++
			lossSum += tr.FinalPnlPercent
		}

		mfeSum += tr.MFE
		maeSum += math.Abs(tr.MAE)
		feesPercentSum += tr.FeesPercent

		if tr.RMultipleValid {
			rMultipleSum += tr.RMultiple
			rMultipleCount++
		}
		if tr.MFEReachedTwoR {
			twoRCount++
		}

		slippages = append(slippages, tr.ExitSlippageBps)
	}

	n := float64(report.TotalTrades)
	report.WinRate = float64(report.WinCount) / n
	report.LossRate = float64(report.LossCount) / n
	if report.WinCount > 0 {
		report.AvgWinPercent = winSum / float64(report.WinCount)
	}
	if report.LossCount > 0 {
		report.AvgLossPercent = lossSum / float64(report.LossCount)
	}

	report.Expectancy = report.WinRate*report.AvgWinPercent + report.LossRate*report.AvgLossPercent
	avgFeesPercent := feesPercentSum / n
	report.ExpectancyAfterFees = report.Expectancy - avgFeesPercent

	report.AvgMFEPercent = mfeSum / n
	report.AvgAbsMAEPercent = maeSum / n
	if report.AvgAbsMAEPercent != 0 {
		report.MFEToMAERatio = report.AvgMFEPercent / report.AvgAbsMAEPercent
	}

	if rMultipleCount > 0 {
		report.AvgRMultiple = rMultipleSum / float64(rMultipleCount)
	}
	report.PercentTradesMFEReachedTwoR = float64(twoRCount) / n * 100

	report.SlippageMeanBps, report.SlippageMedianBps, report.SlippageP90Bps, report.SlippageWorstBps = slippageStats(slippages)

	report.ScoreBuckets = scoreBuckets(filtered)

	if report.Expectancy > avgFeesPercent && report.TotalTrades >= minTradesForBreakEven {
		report.BreakEvenPositionSizeSOL = fixedFeeUSD / report.Expectancy
		report.BreakEvenPositionSizeValid = true
	}

	return report
}

func slippageStats(values []float64) (mean, median, p90, worst float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	mean = sum / float64(len(sorted))

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		median = sorted[mid]
	}

	p90Rank := int(math.Ceil(0.9*float64(len(sorted)))) - 1
	if p90Rank < 0 {
		p90Rank = 0
	}
	if p90Rank >= len(sorted) {
		p90Rank = len(sorted) - 1
	}
	p90 = sorted[p90Rank]
	worst = sorted[len(sorted)-1]
	return mean, median, p90, worst
}

func scoreBuckets(trades []diagnostics.TradeDiagnostics) []ScoreBucket {
	buckets := make([]ScoreBucket, 10)
	sums := make([]float64, 10)
	mfeSums := make([]float64, 10)
	wins := make([]int, 10)

	for i := range buckets {
		buckets[i].RangeLow = float64(i) * scoreBucketWidth
		buckets[i].RangeHigh = float64(i+1) * scoreBucketWidth
	}

	for _, tr := range trades {
		score := math.Abs(tr.SignalScore)
		idx := int(score / scoreBucketWidth)
		if idx > 9 {
			idx = 9
		}
		if idx < 0 {
			idx = 0
		}
		buckets[idx].Count++
		sums[idx] += tr.FinalPnlPercent
		mfeSums[idx] += tr.MFE
		if tr.Outcome == diagnostics.OutcomeWin {
			wins[idx]++
		}
	}

	for i := range buckets {
		if buckets[i].Count == 0 {
			continue
		}
		buckets[i].WinRate = float64(wins[i]) / float64(buckets[i].Count)
		buckets[i].AvgPnLPercent = sums[i] / float64(buckets[i].Count)
		buckets[i].AvgMFEPercent = mfeSums[i] / float64(buckets[i].Count)
	}

	return buckets
}

// ApplyFilters narrows trades to the population Aggregate would reduce,
// without running the reduction. Used by queryDiagnostics, which returns the
// filtered records themselves rather than their aggregate statistics.
func ApplyFilters(trades []diagnostics.TradeDiagnostics, f Filters) []diagnostics.TradeDiagnostics {
	return applyFilters(trades, f)
}

func applyFilters(trades []diagnostics.TradeDiagnostics, f Filters) []diagnostics.TradeDiagnostics {
	out := make([]diagnostics.TradeDiagnostics, 0, len(trades))
	for _, tr := range trades {
		if tr.Outcome == "" {
			continue
		}
		if f.HasRegimeState && tr.EntryRegimeState != f.RegimeState {
			continue
		}
		if f.HasMFEBeforeMAE && (!tr.MFEBeforeMAEValid || tr.MFEBeforeMAE != f.MFEBeforeMAE) {
			continue
		}
		if f.HasRegimeShifted && tr.RegimeShiftedAfterEntry != f.RegimeShifted {
			continue
		}
		if f.HasHourOfDay && !hourInRange(tr.EntryTimeMs, f.HourOfDayStart, f.HourOfDayEnd) {
			continue
		}
		out = append(out, tr)
	}
	return out
}

func hourInRange(entryTimeMs int64, start, end int) bool {
	hour := int((entryTimeMs / 3_600_000) % 24)
	if hour < 0 {
		hour += 24
	}
	if start <= end {
		return hour >= start && hour < end
	}
	// Wrap-around window, e.g. [22, 4).
	return hour >= start || hour < end
}
