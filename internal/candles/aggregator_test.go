package candles

import (
	"testing"

	"go.uber.org/zap"
)

func newTestAggregator() *Aggregator {
	return New(&fakeClock{}, zap.NewNop())
}

type fakeClock struct{}

func (fakeClock) NowMs() int64 { return 0 }

func TestAggregatorBoundaryScenario(t *testing.T) {
	// spec.md §8 scenario 1
	a := newTestAggregator()
	a.Update(100, 0)
	a.Update(101, 59_999)
	a.Update(102, 60_000)

	closed := a.Candles(TF1m, 10)
	if len(closed) != 2 {
		t.Fatalf("expected 1 closed + 1 open candle, got %d: %+v", len(closed), closed)
	}

	open := closed[0]
	if open.Open != 102 || open.High != 102 || open.Low != 102 || open.Close != 102 || open.TimestampMs != 60_000 {
		t.Fatalf("unexpected open candle: %+v", open)
	}

	frozen := closed[1]
	if frozen.Open != 100 || frozen.High != 101 || frozen.Low != 100 || frozen.Close != 101 || frozen.TimestampMs != 0 {
		t.Fatalf("unexpected frozen candle: %+v", frozen)
	}

	if a.LastPrice() != 102 {
		t.Fatalf("expected lastPrice 102, got %v", a.LastPrice())
	}
}

func TestAggregatorRejectsNonPositivePrice(t *testing.T) {
	a := newTestAggregator()
	a.Update(0, 0)
	a.Update(-5, 0)

	if a.LastPrice() != 0 {
		t.Fatalf("expected lastPrice unaffected by rejected ticks, got %v", a.LastPrice())
	}
	if stats := a.Stats(); stats.TicksRejected != 2 {
		t.Fatalf("expected 2 rejected ticks, got %d", stats.TicksRejected)
	}
}

func TestAggregatorSyntheticVolume(t *testing.T) {
	a := newTestAggregator()
	a.Update(100, 0)
	a.Update(100, 100) // unchanged price: no volume, high/low/close still update
	a.Update(105, 200) // changed price: +1 volume

	c := a.CurrentCandle(TF1s)
	if c == nil {
		t.Fatal("expected open 1s candle")
	}
	if c.Volume != 2 {
		t.Fatalf("expected volume 2 (initial tick + one price change), got %v", c.Volume)
	}
	if c.Trades != 2 {
		t.Fatalf("expected trades 2, got %v", c.Trades)
	}
}

func TestRingInvariants(t *testing.T) {
	a := newTestAggregator()
	for i := int64(0); i < 500; i++ {
		a.Update(float64(100+i), i*1_000)
	}

	closed := a.Candles(TF1s, 1000)
	for i := 0; i < len(closed)-1; i++ {
		if closed[i].TimestampMs <= closed[i+1].TimestampMs {
			t.Fatalf("ring not strictly monotonic at index %d: %+v vs %+v", i, closed[i], closed[i+1])
		}
		c := closed[i]
		if !(c.Low <= c.Open && c.Open <= c.High && c.Low <= c.Close && c.Close <= c.High) {
			t.Fatalf("OHLC invariant violated: %+v", c)
		}
		if c.TimestampMs%PeriodMs(TF1s) != 0 {
			t.Fatalf("timestamp not period-aligned: %+v", c)
		}
	}

	if len(closed) > Capacity(TF1s)+1 {
		t.Fatalf("ring exceeded capacity+open: got %d", len(closed))
	}
}

func TestLoadHistoricalNeverForgesOpenCandle(t *testing.T) {
	a := newTestAggregator()
	seed := []Candle{
		{Open: 10, High: 12, Low: 9, Close: 11, TimestampMs: 120_000},
		{Open: 9, High: 10, Low: 8, Close: 10, TimestampMs: 60_000},
	}
	a.LoadHistorical(TF1m, seed)

	if a.CurrentCandle(TF1m) != nil {
		t.Fatal("loadHistorical must not create an open candle")
	}
	if a.LastPrice() != 11 {
		t.Fatalf("expected lastPrice seeded from newest closed candle close, got %v", a.LastPrice())
	}

	candlesOut := a.Candles(TF1m, 10)
	if len(candlesOut) != 2 || candlesOut[0].Close != 11 {
		t.Fatalf("unexpected seeded candles: %+v", candlesOut)
	}
}

func TestLoadHistoricalTruncatesToCapacity(t *testing.T) {
	a := newTestAggregator()
	seed := make([]Candle, Capacity(TF1h)+10)
	for i := range seed {
		seed[i] = Candle{Open: 1, High: 1, Low: 1, Close: 1, TimestampMs: int64(len(seed)-i) * PeriodMs(TF1h)}
	}
	a.LoadHistorical(TF1h, seed)

	if got := len(a.Candles(TF1h, 1000)); got != Capacity(TF1h) {
		t.Fatalf("expected truncation to capacity %d, got %d", Capacity(TF1h), got)
	}
}
