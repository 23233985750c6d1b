package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Cache stores analysis results keyed by image content.
type Cache interface {
	Get(ctx context.Context, key string) (*Extraction, bool, error)
	Set(ctx context.Context, key string, value *Extraction, ttl time.Duration) error
}

type NoopCache struct{}

func (NoopCache) Get(_ context.Context, _ string) (*Extraction, bool, error) {
	return nil, false, nil
}

func (NoopCache) Set(_ context.Context, _ string, _ *Extraction, _ time.Duration) error {
	return nil
}

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr string, password string, db int) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisCache{client: client}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Get(ctx context.Context, key string) (*Extraction, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var e Extraction
	if err := json.Unmarshal([]byte(val), &e); err != nil {
		return nil, false, err
	}
	return &e, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value *Extraction, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

// CachedAnalyzer reuses earlier results for identical image sets.
// Cache failures are logged and never fail an analysis.
type CachedAnalyzer struct {
	Next  Analyzer
	Cache Cache
	TTL   time.Duration
	Log   zerolog.Logger
}

func (a *CachedAnalyzer) AnalyzeFloorPlan(ctx context.Context, images []Image) (Extraction, error) {
	key := CacheKey(images)

	if hit, ok, err := a.Cache.Get(ctx, key); err != nil {
		a.Log.Warn().Err(err).Str("key", key).Msg("analysis cache read failed")
	} else if ok && hit != nil {
		a.Log.Debug().Str("key", key).Msg("analysis cache hit")
		return *hit, nil
	}

	e, err := a.Next.AnalyzeFloorPlan(ctx, images)
	if err != nil {
		return Extraction{}, err
	}
	if err := a.Cache.Set(ctx, key, &e, a.TTL); err != nil {
		a.Log.Warn().Err(err).Str("key", key).Msg("analysis cache write failed")
	}
	return e, nil
}

// CacheKey digests the image bytes in order.
func CacheKey(images []Image) string {
	h := sha256.New()
	for _, img := range images {
		sum := sha256.Sum256(img.Data)
		h.Write(sum[:])
	}
	return "boxplanner:analysis:" + hex.EncodeToString(h.Sum(nil))
}
