package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"stockcaster/internal/domain"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "artifact:"

// RedisStore keeps one artifact value per ticker. Redis SET replaces the
// value atomically, satisfying the replace-on-write requirement.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(ticker string) string {
	return redisKeyPrefix + domain.NormalizeTicker(ticker)
}

func (s *RedisStore) Exists(ctx context.Context, ticker string) (bool, error) {
	n, err := s.client.Exists(ctx, redisKey(ticker)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

func (s *RedisStore) Load(ctx context.Context, ticker string) ([]byte, error) {
	b, err := s.client.Get(ctx, redisKey(ticker)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return b, nil
}

func (s *RedisStore) Save(ctx context.Context, ticker string, artifact []byte) error {
	// No expiration: artifacts live until the next retrain overwrites them.
	if err := s.client.Set(ctx, redisKey(ticker), artifact, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	var tickers []string
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, redisKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("redis scan: %w", err)
		}
		for _, k := range keys {
			tickers = append(tickers, strings.TrimPrefix(k, redisKeyPrefix))
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	sort.Strings(tickers)
	return tickers, nil
}
