package redis

import "testing"

func TestBuildChannelName(t *testing.T) {
	cases := []struct {
		symbol, eventType, want string
	}{
		{"SOLUSDC", "lastprice", "SOLUSDC:lastprice"},
		{"SOLUSDC", "decisions", "SOLUSDC:decisions"},
		{"", "stats", ":stats"},
	}
	for _, c := range cases {
		if got := BuildChannelName(c.symbol, c.eventType); got != c.want {
			t.Errorf("BuildChannelName(%q, %q) = %q, want %q", c.symbol, c.eventType, got, c.want)
		}
	}
}
