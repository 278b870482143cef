// Package cache stores recommendation results in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gartstein/matchmaker/internal/matchmaker/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "matchmaker:rec:"

// Client is the subset of the redis client used by the cache.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

type RecommendationCache struct {
	client Client
	ttl    time.Duration
	logger *zap.Logger
}

func New(client Client, ttl time.Duration, logger *zap.Logger) *RecommendationCache {
	return &RecommendationCache{
		client: client,
		ttl:    ttl,
		logger: logger.Named("recommendation_cache"),
	}
}

// scoringInput is the part of a profile that affects scoring.
type scoringInput struct {
	Interests          []string                  `json:"i"`
	CompanyPreferences models.CompanyPreferences `json:"c"`
	Location           models.WorkLocation       `json:"l"`
}

// Key derives the cache key of a request. Profiles that differ only in
// fields scoring ignores share a key. catalogFingerprint identifies the
// catalog contents, so replicas holding the same companies share keys.
func Key(profile *models.UserProfile, limit int, catalogFingerprint uint64) (string, error) {
	var in scoringInput
	if profile != nil {
		in = scoringInput{
			Interests:          profile.Interests,
			CompanyPreferences: profile.CompanyPreferences,
			Location:           profile.WorkPreferences.Location,
		}
	}
	data, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("failed to encode profile: %w", err)
	}

	d := xxhash.New()
	_, _ = d.Write(data)
	_, _ = fmt.Fprintf(d, "|%d|%d", limit, catalogFingerprint)
	return fmt.Sprintf("%s%016x", keyPrefix, d.Sum64()), nil
}

// Get returns the cached result for key. A miss is (nil, false, nil).
func (c *RecommendationCache) Get(ctx context.Context, key string) (*models.RecommendationResult, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}

	var result models.RecommendationResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Warn("Discarding corrupt cache entry", zap.String("key", key), zap.Error(err))
		return nil, false, nil
	}
	return &result, true, nil
}

// Set stores result under key with the configured TTL.
func (c *RecommendationCache) Set(ctx context.Context, key string, result *models.RecommendationResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}
