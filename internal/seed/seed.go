// Package seed provides the thin historical-candle-loading collaborator
// named in spec.md §6's inbound contract (`seedHistoricalCandles`).
//
// Grounded on analytics/historical_data_fetcher.go's fetch-then-replace-ring
// shape: that file fetches candles from three exchange REST APIs and writes
// them into a Redis sorted set (`history:candles:%s:%s:%s`, score =
// open-time) before trimming to a rolling window. The REST-fetching half is
// out of scope (spec.md §1 places the price source itself out of scope);
// this package keeps only the Redis-side half — read the cached sorted set
// back out, newest members first by score, and hand the result to the
// aggregator via Core.SeedHistoricalCandles.
package seed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"solcore/internal/candles"
)

// Seeder loads previously-cached historical candles for one timeframe.
type Seeder interface {
	LoadHistorical(ctx context.Context, tf candles.Timeframe) ([]candles.Candle, error)
}

// RedisSeeder reads a `history:candles:<symbol>:<timeframe>` sorted set
// written by an out-of-process backfill job, in the same key shape
// historical_data_fetcher.go uses.
type RedisSeeder struct {
	client *redis.Client
	symbol string
}

// NewRedisSeeder builds a RedisSeeder for the given pair symbol, e.g. "SOLUSDC".
func NewRedisSeeder(client *redis.Client, symbol string) *RedisSeeder {
	return &RedisSeeder{client: client, symbol: symbol}
}

// LoadHistorical reads the cached sorted set for tf and returns candles
// newest-first, matching the convention candles.Aggregator.LoadHistorical
// expects.
func (s *RedisSeeder) LoadHistorical(ctx context.Context, tf candles.Timeframe) ([]candles.Candle, error) {
	key := s.historyKey(tf)

	members, err := s.client.ZRevRange(ctx, key, 0, int64(candles.Capacity(tf)-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("seed: read history set %s: %w", key, err)
	}

	return decodeMembers(members, key)
}

// decodeMembers unmarshals a ZREVRANGE result (already newest-score-first)
// into candles, independent of any live Redis connection.
func decodeMembers(members []string, key string) ([]candles.Candle, error) {
	out := make([]candles.Candle, 0, len(members))
	for _, raw := range members {
		var c candles.Candle
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, fmt.Errorf("seed: decode cached candle for %s: %w", key, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *RedisSeeder) historyKey(tf candles.Timeframe) string {
	return fmt.Sprintf("history:candles:%s:%s", s.symbol, string(tf))
}
