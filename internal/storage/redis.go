package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"mediagrab/internal/domain"
)

// RedisStore caches finished extraction results keyed by post URL, so a
// popular post does not re-run the whole cascade on every request. Fetched
// page bodies are never cached, only the shaped result.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(addr string, ttl time.Duration) *RedisStore {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return &RedisStore{client: rdb, ttl: ttl}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func resultKey(postURL string) string {
	sum := sha256.Sum256([]byte(postURL))
	return "result:" + hex.EncodeToString(sum[:])
}

// PutResult stores a successful extraction result with the configured TTL.
func (s *RedisStore) PutResult(ctx context.Context, postURL string, res domain.ExtractResult) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, resultKey(postURL), payload, s.ttl).Err()
}

// GetResult returns a cached result for the URL, if one exists.
func (s *RedisStore) GetResult(ctx context.Context, postURL string) (domain.ExtractResult, bool, error) {
	var res domain.ExtractResult
	payload, err := s.client.Get(ctx, resultKey(postURL)).Bytes()
	if err == redis.Nil {
		return res, false, nil
	}
	if err != nil {
		return res, false, err
	}
	if err := json.Unmarshal(payload, &res); err != nil {
		return res, false, err
	}
	return res, true, nil
}
