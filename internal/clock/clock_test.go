package clock

import "testing"

func TestManualStartsAtGivenTime(t *testing.T) {
	c := NewManual(1000)
	if got := c.NowMs(); got != 1000 {
		t.Fatalf("NowMs() = %d, want 1000", got)
	}
}

func TestManualAdvance(t *testing.T) {
	c := NewManual(1000)
	c.Advance(500)
	if got := c.NowMs(); got != 1500 {
		t.Fatalf("NowMs() after Advance(500) = %d, want 1500", got)
	}
	c.Advance(-200)
	if got := c.NowMs(); got != 1300 {
		t.Fatalf("NowMs() after Advance(-200) = %d, want 1300", got)
	}
}

func TestManualSet(t *testing.T) {
	c := NewManual(0)
	c.Set(42)
	if got := c.NowMs(); got != 42 {
		t.Fatalf("NowMs() after Set(42) = %d, want 42", got)
	}
}

func TestSystemReturnsPositiveMs(t *testing.T) {
	if got := (System{}).NowMs(); got <= 0 {
		t.Fatalf("System{}.NowMs() = %d, want > 0", got)
	}
}
