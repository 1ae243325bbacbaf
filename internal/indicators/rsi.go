package indicators

// RSI computes Wilder's Relative Strength Index. The first smoothed gain/loss
// pair is seeded from the SMA of the first `period` deltas, matching
// technical_indicator_service_v3.go's Wilder-smoothing convention. If
// avgLoss is exactly zero, RSI is defined to be 100 (spec.md §4.2/§8).
func RSI(candlesNewestFirst []Candle, period int) Optional[RSIResult] {
	closes := closesOldestFirst(candlesNewestFirst)
	if period <= 0 || len(closes) < period+1 {
		return None[RSIResult]()
	}

	gains := make([]float64, 0, period)
	losses := make([]float64, 0, period)
	for i := 1; i <= period; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains = append(gains, delta)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -delta)
		}
	}
	avgGain := mean(gains)
	avgLoss := mean(losses)

	for i := period + 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	var value float64
	if avgLoss == 0 {
		value = 100
	} else {
		rs := avgGain / avgLoss
		value = 100 - 100/(1+rs)
	}

	zone := RSINeutral
	switch {
	case value >= 70:
		zone = RSIOverbought
	case value <= 30:
		zone = RSIOversold
	}

	return Some(RSIResult{Value: value, Zone: zone})
}
