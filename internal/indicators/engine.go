package indicators

import "solcore/internal/candles"

// Standard periods for the indicator stack, matching
// technical_indicator_service_v3.go's defaults.
const (
	rsiPeriod        = 14
	macdFastPeriod   = 12
	macdSlowPeriod   = 26
	macdSignalPeriod = 9
	bbPeriod         = 20
	bbStdDevs        = 2.0
	atrPeriod        = 14
	adxPeriod        = 14

	atrLowThresholdPct     = 0.3
	atrHighThresholdPct    = 0.8
	atrExtremeThresholdPct = 1.5
)

// BuildSnapshot computes every indicator over a single timeframe's candle
// window and folds the five weighted sub-signals into one composite read.
// candlesNewestFirst[0] is the latest (possibly still-open) candle.
func BuildSnapshot(tf candles.Timeframe, candlesNewestFirst []Candle, nowMs int64) Snapshot {
	snap := Snapshot{
		Timeframe:   tf,
		TimestampMs: nowMs,
	}
	if len(candlesNewestFirst) == 0 {
		snap.Composite = BuildComposite(None[RSIResult](), None[MACDResult](), None[EMACollectionResult](), None[BollingerResult](), None[VolumePressureResult](), None[float64](), None[float64](), None[OBVResult](), 0)
		return snap
	}

	snap.Price = candlesNewestFirst[0].Close

	emas := EMACollection(candlesNewestFirst)
	snap.EMAs = Some(emas)
	snap.RSI = RSI(candlesNewestFirst, rsiPeriod)
	snap.MACD = MACD(candlesNewestFirst, macdFastPeriod, macdSlowPeriod, macdSignalPeriod)
	snap.BB = BollingerBands(candlesNewestFirst, bbPeriod, bbStdDevs)
	snap.ATR = ATR(candlesNewestFirst, atrPeriod, atrLowThresholdPct, atrHighThresholdPct, atrExtremeThresholdPct)
	snap.ADX = ADX(candlesNewestFirst, adxPeriod)
	snap.VWAP = VWAP(candlesNewestFirst)
	snap.VolumePressure = VolumePressure(candlesNewestFirst)
	snap.VolumeSpike = VolumeSpike(candlesNewestFirst)
	snap.VolumeMomentum = VolumeWeightedMomentum(candlesNewestFirst)
	snap.OBV = OBVTrend(candlesNewestFirst)

	snap.Composite = BuildComposite(snap.RSI, snap.MACD, snap.EMAs, snap.BB, snap.VolumePressure, snap.VWAP, snap.VolumeMomentum, snap.OBV, snap.Price)

	return snap
}
