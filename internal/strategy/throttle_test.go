package strategy

import "testing"

func TestThrottleStopLossCooldown(t *testing.T) {
	th := NewThrottle(DefaultThrottleConfig())
	th.RecordTrade(0, OutcomeLoss, exitReasonStopLoss)

	result := th.Check(299_999)
	if result.Allowed {
		t.Fatalf("expected blocked at t=299999")
	}
	if !contains(result.Reason, "Stop-loss") {
		t.Fatalf("expected reason to mention stop-loss, got %q", result.Reason)
	}

	result = th.Check(300_001)
	if !result.Allowed {
		t.Fatalf("expected allowed at t=300001, got reason %q", result.Reason)
	}
}

func TestThrottleMinTradingGap(t *testing.T) {
	th := NewThrottle(DefaultThrottleConfig())
	th.RecordTrade(0, OutcomeWin, "TAKE_PROFIT")

	result := th.Check(119_999)
	if result.Allowed {
		t.Fatalf("expected blocked by minimum trading gap")
	}

	result = th.Check(120_001)
	if !result.Allowed {
		t.Fatalf("expected allowed after the minimum gap, got %q", result.Reason)
	}
}

func TestThrottleConsecutiveLossesPause(t *testing.T) {
	cfg := DefaultThrottleConfig()
	cfg.MinTradingGapMs = 0
	th := NewThrottle(cfg)

	th.RecordTrade(0, OutcomeLoss, "TAKE_PROFIT")
	th.RecordTrade(1_000_000, OutcomeLoss, "TAKE_PROFIT")
	th.RecordTrade(2_000_000, OutcomeLoss, "TAKE_PROFIT")

	result := th.Check(2_000_001)
	if result.Allowed {
		t.Fatalf("expected paused after 3 consecutive losses")
	}

	th.RecordTrade(3_000_000, OutcomeWin, "TAKE_PROFIT")
	result = th.Check(3_000_001)
	if !result.Allowed {
		t.Fatalf("expected a win to reset the consecutive-loss counter, got %q", result.Reason)
	}
}

func TestThrottleMaxTradesPerHour(t *testing.T) {
	cfg := DefaultThrottleConfig()
	cfg.MinTradingGapMs = 0
	th := NewThrottle(cfg)

	th.RecordTrade(0, OutcomeWin, "TAKE_PROFIT")
	th.RecordTrade(10_000, OutcomeWin, "TAKE_PROFIT")
	th.RecordTrade(20_000, OutcomeWin, "TAKE_PROFIT")

	result := th.Check(30_000)
	if result.Allowed {
		t.Fatalf("expected blocked at the 3-trades-per-hour cap")
	}

	result = th.Check(3_600_001)
	if !result.Allowed {
		t.Fatalf("expected allowed once the oldest trade rolls out of the 60-minute window, got %q", result.Reason)
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
