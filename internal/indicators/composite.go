package indicators

// Sub-signal weights, summing to 100 points across the composite score.
const (
	weightRSI    = 20.0
	weightMACD   = 25.0
	weightEMA    = 25.0
	weightBB     = 15.0
	weightVolume = 15.0

	strongThreshold = 40.0
	weakThreshold   = 15.0

	agreementThreshold = 0.2

	macdSubSignalCap      = 0.6
	macdHistogramScale    = 10.0
	emaPriceDeviationPct  = 2.0
	emaPriceDeviationBump = 0.2
	volumeMomentumFloor   = 0.1
)

// BuildComposite combines the five weighted sub-signals into one score in
// [-100, 100], a recommendation bucket and a confidence read. A missing
// indicator contributes a zero sub-signal (and a zero entry in Components)
// rather than skipping the weight entirely (spec.md §9).
func BuildComposite(rsi Optional[RSIResult], macd Optional[MACDResult], emas Optional[EMACollectionResult], bb Optional[BollingerResult], volumePressure Optional[VolumePressureResult], vwap Optional[float64], volumeMomentum Optional[float64], obv Optional[OBVResult], price float64) CompositeSignal {
	rsiSig := rsiSubSignal(rsi)
	macdSig := macdSubSignal(macd)
	emaSig := emaSubSignal(emas, price)
	bbSig := bbSubSignal(bb)
	volSig := volumeSubSignal(volumePressure, vwap, volumeMomentum, obv, price)

	components := map[string]float64{
		"rsi":    rsiSig * weightRSI,
		"macd":   macdSig * weightMACD,
		"ema":    emaSig * weightEMA,
		"bb":     bbSig * weightBB,
		"volume": volSig * weightVolume,
	}

	score := components["rsi"] + components["macd"] + components["ema"] + components["bb"] + components["volume"]

	positive, negative := 0, 0
	for _, sig := range []float64{rsiSig, macdSig, emaSig, bbSig, volSig} {
		switch {
		case sig > agreementThreshold:
			positive++
		case sig < -agreementThreshold:
			negative++
		}
	}
	agreement := positive
	if negative > agreement {
		agreement = negative
	}

	confidence := float64(agreement)*20 + abs(score)
	if confidence > 100 {
		confidence = 100
	}

	recommendation := RecommendNeutral
	switch {
	case score >= strongThreshold:
		recommendation = RecommendStrongBuy
	case score >= weakThreshold:
		recommendation = RecommendWeakBuy
	case score <= -strongThreshold:
		recommendation = RecommendStrongSell
	case score <= -weakThreshold:
		recommendation = RecommendWeakSell
	}

	return CompositeSignal{
		Score:          score,
		Recommendation: recommendation,
		Confidence:     confidence,
		Components:     components,
	}
}

// rsiSubSignal bands RSI into a stepped ±1.0 scale, symmetric around the 50
// midpoint: extreme oversold (≤20) scores +1.0, tapering through ≤30/≤40,
// neutral in 40-60, then mirrored on the overbought side.
func rsiSubSignal(r Optional[RSIResult]) float64 {
	if !r.Valid {
		return 0
	}
	v := r.Value.Value
	switch {
	case v <= 20:
		return 1.0
	case v <= 30:
		return 0.7
	case v <= 40:
		return 0.3
	case v >= 80:
		return -1.0
	case v >= 70:
		return -0.7
	case v >= 60:
		return -0.3
	default:
		return 0
	}
}

// macdSubSignal treats a fresh crossover as a strong directional read
// (±0.8); absent a crossover, the histogram's sign and magnitude (scaled,
// capped at 0.6) carries the signal.
func macdSubSignal(m Optional[MACDResult]) float64 {
	if !m.Valid {
		return 0
	}
	switch m.Value.Crossover {
	case MACDBullishCross:
		return 0.8
	case MACDBearishCross:
		return -0.8
	}
	if !m.Value.Histogram.Valid {
		return 0
	}
	hist := m.Value.Histogram.Value
	magnitude := abs(hist) * macdHistogramScale
	if magnitude > macdSubSignalCap {
		magnitude = macdSubSignalCap
	}
	if hist < 0 {
		return -magnitude
	}
	return magnitude
}

// emaSubSignal starts from the trend bucket, then nudges against price
// extended too far from EMA21 (a stretched move is less trustworthy than a
// fresh one).
func emaSubSignal(e Optional[EMACollectionResult], price float64) float64 {
	if !e.Valid {
		return 0
	}
	base := 0.0
	switch e.Value.Trend {
	case EMAStrongBullish:
		base = 0.8
	case EMABullish:
		base = 0.5
	case EMABearish:
		base = -0.5
	case EMAStrongBearish:
		base = -0.8
	}

	if ema21, ok := e.Value.EMA21.Get(); ok && ema21 != 0 {
		deviationPct := (price - ema21) / ema21 * 100
		switch {
		case deviationPct > emaPriceDeviationPct:
			base -= emaPriceDeviationBump
		case deviationPct < -emaPriceDeviationPct:
			base += emaPriceDeviationBump
		}
	}

	return clamp(base, -1, 1)
}

// bbSubSignal reads %B as a mean-reversion signal: pinned at or below the
// lower band scores bullish, pinned at or above the upper band scores
// bearish.
func bbSubSignal(b Optional[BollingerResult]) float64 {
	if !b.Valid {
		return 0
	}
	p := b.Value.PercentB
	switch {
	case p <= 0:
		return 0.7
	case p <= 0.2:
		return 0.4
	case p >= 1:
		return -0.7
	case p >= 0.8:
		return -0.4
	default:
		return 0
	}
}

// volumeSubSignal folds together the four components spec.md §4.2 names for
// volume: price vs VWAP, buy/sell dominance, volume-weighted momentum, and
// OBV/price divergence.
func volumeSubSignal(vp Optional[VolumePressureResult], vwap Optional[float64], momentum Optional[float64], obv Optional[OBVResult], price float64) float64 {
	sig := 0.0

	if vw, ok := vwap.Get(); ok {
		switch {
		case price > vw:
			sig += 0.3
		case price < vw:
			sig -= 0.3
		}
	}

	if v, ok := vp.Get(); ok {
		switch v.Dominance {
		case VolumeBuyers:
			sig += 0.3
		case VolumeSellers:
			sig -= 0.3
		}
	}

	if m, ok := momentum.Get(); ok && abs(m) > volumeMomentumFloor {
		if m > 0 {
			sig += 0.2
		} else {
			sig -= 0.2
		}
	}

	if o, ok := obv.Get(); ok {
		switch o.Divergence {
		case OBVDivergenceBullish:
			sig += 0.3
		case OBVDivergenceBearish:
			sig -= 0.3
		}
	}

	return clamp(sig, -1, 1)
}
