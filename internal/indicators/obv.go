package indicators

const obvDivergencePriceThresholdPct = 1.0
const obvTrendRelativeThreshold = 0.10
const obvLookback = 14

// OBVTrend computes the classic On-Balance-Volume series (running sum of
// signed synthetic volume) over the trailing obvLookback candles and reads a
// trend direction plus a price/OBV divergence flag from it.
func OBVTrend(candlesNewestFirst []Candle) Optional[OBVResult] {
	oc := oldestFirst(candlesNewestFirst)
	if len(oc) < 2 {
		return None[OBVResult]()
	}
	if len(oc) > obvLookback {
		oc = oc[len(oc)-obvLookback:]
	}

	obv := make([]float64, len(oc))
	for i := 1; i < len(oc); i++ {
		switch {
		case oc[i].Close > oc[i-1].Close:
			obv[i] = obv[i-1] + oc[i].Volume
		case oc[i].Close < oc[i-1].Close:
			obv[i] = obv[i-1] - oc[i].Volume
		default:
			obv[i] = obv[i-1]
		}
	}

	half := len(obv) / 2
	if half == 0 {
		half = 1
	}
	firstHalfMean := mean(obv[:half])
	secondHalfMean := mean(obv[half:])

	trend := OBVFlat
	if firstHalfMean != 0 {
		delta := (secondHalfMean - firstHalfMean) / abs(firstHalfMean)
		switch {
		case delta >= obvTrendRelativeThreshold:
			trend = OBVRising
		case delta <= -obvTrendRelativeThreshold:
			trend = OBVFalling
		}
	} else if secondHalfMean != firstHalfMean {
		if secondHalfMean > firstHalfMean {
			trend = OBVRising
		} else {
			trend = OBVFalling
		}
	}

	divergence := OBVDivergenceNone
	priceFirst := oc[0].Close
	priceLast := oc[len(oc)-1].Close
	if priceFirst != 0 {
		priceChangePct := (priceLast - priceFirst) / priceFirst * 100
		obvRising := trend == OBVRising
		obvFalling := trend == OBVFalling
		switch {
		case priceChangePct <= -obvDivergencePriceThresholdPct && obvRising:
			divergence = OBVDivergenceBullish
		case priceChangePct >= obvDivergencePriceThresholdPct && obvFalling:
			divergence = OBVDivergenceBearish
		}
	}

	return Some(OBVResult{Trend: trend, Divergence: divergence})
}
