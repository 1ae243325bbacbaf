package indicators

// emaSeries computes the EMA series (oldest-first) for values (oldest-first).
// The seed is the SMA of the oldest `period` values; subsequent values are
// smoothed with k = 2/(period+1). Returns ok=false if len(values) < period.
func emaSeries(values []float64, period int) (series []float64, ok bool) {
	if period <= 0 || len(values) < period {
		return nil, false
	}

	k := 2.0 / (float64(period) + 1.0)
	seed := mean(values[:period])
	series = make([]float64, 0, len(values)-period+1)
	series = append(series, seed)

	ema := seed
	for i := period; i < len(values); i++ {
		ema = values[i]*k + ema*(1-k)
		series = append(series, ema)
	}
	return series, true
}

// EMA computes the exponential moving average over the closes of
// candlesNewestFirst, returning the most recent value plus the full series
// (oldest-first) for charting.
func EMA(candlesNewestFirst []Candle, period int) Optional[EMAResult] {
	closes := closesOldestFirst(candlesNewestFirst)
	series, ok := emaSeries(closes, period)
	if !ok {
		return None[EMAResult]()
	}
	return Some(EMAResult{Value: series[len(series)-1], Series: series})
}

// EMACollection computes the standard 9/21/50/200 EMA stack, its cross
// states and trend bucket. Only the 9/21 pair is required for a non-neutral
// trend; absent longer EMAs simply leave the higher tiers unconfirmed.
func EMACollection(candlesNewestFirst []Candle) EMACollectionResult {
	ema9 := EMA(candlesNewestFirst, 9)
	ema21 := EMA(candlesNewestFirst, 21)
	ema50 := EMA(candlesNewestFirst, 50)
	ema200 := EMA(candlesNewestFirst, 200)

	result := EMACollectionResult{
		EMA9:   optionalValue(ema9),
		EMA21:  optionalValue(ema21),
		EMA50:  optionalValue(ema50),
		EMA200: optionalValue(ema200),
		Trend:  EMANeutral,
	}

	if ema9.Valid && ema21.Valid {
		result.Cross9Over21 = ema9.Value.Value > ema21.Value.Value
	}
	if ema21.Valid && ema50.Valid {
		result.Cross21Over50 = ema21.Value.Value > ema50.Value.Value
	}
	if ema50.Valid && ema200.Valid {
		result.Cross50Over200 = ema50.Value.Value > ema200.Value.Value
	}

	if !ema9.Valid || !ema21.Valid {
		return result
	}

	e9, e21 := ema9.Value.Value, ema21.Value.Value
	switch {
	case e9 > e21:
		strong := ema50.Valid && ema200.Valid && e21 > ema50.Value.Value && ema50.Value.Value > ema200.Value.Value
		if strong {
			result.Trend = EMAStrongBullish
		} else {
			result.Trend = EMABullish
		}
	case e9 < e21:
		strong := ema50.Valid && ema200.Valid && e21 < ema50.Value.Value && ema50.Value.Value < ema200.Value.Value
		if strong {
			result.Trend = EMAStrongBearish
		} else {
			result.Trend = EMABearish
		}
	default:
		result.Trend = EMANeutral
	}

	return result
}

func optionalValue(r Optional[EMAResult]) Optional[float64] {
	if !r.Valid {
		return None[float64]()
	}
	return Some(r.Value.Value)
}
