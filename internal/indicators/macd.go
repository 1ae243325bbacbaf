package indicators

// MACD computes the MACD line (fast EMA - slow EMA), its signal line
// (EMA of the MACD line) and histogram, plus crossover detection comparing
// the current and prior (MACD, signal) sign-of-difference.
func MACD(candlesNewestFirst []Candle, fastPeriod, slowPeriod, signalPeriod int) Optional[MACDResult] {
	closes := closesOldestFirst(candlesNewestFirst)

	fastSeries, fastOK := emaSeries(closes, fastPeriod)
	slowSeries, slowOK := emaSeries(closes, slowPeriod)
	if !fastOK || !slowOK {
		return None[MACDResult]()
	}

	// fastSeries[0] aligns to closes[fastPeriod-1]; slowSeries[0] aligns to
	// closes[slowPeriod-1]. Build the MACD line over the overlapping range,
	// anchored at slowSeries's start.
	macdLine := make([]float64, len(slowSeries))
	offset := slowPeriod - fastPeriod
	for i := range slowSeries {
		macdLine[i] = fastSeries[i+offset] - slowSeries[i]
	}

	latest := macdLine[len(macdLine)-1]
	result := MACDResult{MACD: latest, Crossover: MACDNoCross}

	signalSeries, signalOK := emaSeries(macdLine, signalPeriod)
	if !signalOK {
		return Some(result)
	}

	latestSignal := signalSeries[len(signalSeries)-1]
	result.Signal = Some(latestSignal)
	result.Histogram = Some(latest - latestSignal)

	if len(signalSeries) >= 2 {
		// signalSeries[i] aligns to macdLine[i + signalPeriod - 1].
		priorSignalIdx := len(signalSeries) - 2
		priorMacdIdx := priorSignalIdx + signalPeriod - 1
		priorDiff := macdLine[priorMacdIdx] - signalSeries[priorSignalIdx]
		currentDiff := latest - latestSignal

		switch {
		case priorDiff <= 0 && currentDiff > 0:
			result.Crossover = MACDBullishCross
		case priorDiff >= 0 && currentDiff < 0:
			result.Crossover = MACDBearishCross
		}
	}

	return Some(result)
}
