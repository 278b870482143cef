package controller

import (
	"context"
	"fmt"

	"github.com/gartstein/matchmaker/internal/matchmaker/cache"
	e "github.com/gartstein/matchmaker/internal/matchmaker/errors"
	"github.com/gartstein/matchmaker/internal/matchmaker/events"
	"github.com/gartstein/matchmaker/internal/matchmaker/models"
	"github.com/gartstein/matchmaker/internal/matchmaker/recommend"
	"go.uber.org/zap"
)

// Recommender ranks companies for a profile.
type Recommender interface {
	Generate(profile *models.UserProfile, companies []models.Company, limit int) (*models.RecommendationResult, error)
}

// ResultCache stores computed recommendation results.
type ResultCache interface {
	Get(ctx context.Context, key string) (*models.RecommendationResult, bool, error)
	Set(ctx context.Context, key string, result *models.RecommendationResult) error
}

// RecommendationService answers recommendation requests against the current
// catalog snapshot.
type RecommendationService struct {
	catalog  Catalog
	engine   Recommender
	cache    ResultCache
	producer EventProducer
	logger   *zap.Logger
}

// NewRecommendationService constructs a RecommendationService. cache and
// producer are optional.
func NewRecommendationService(catalog Catalog, engine Recommender, cache ResultCache, producer EventProducer, logger *zap.Logger) *RecommendationService {
	return &RecommendationService{
		catalog:  catalog,
		engine:   engine,
		cache:    cache,
		producer: producer,
		logger:   logger.Named("recommendation_service"),
	}
}

// Recommend returns the best matching companies for profile. A nil limit
// means recommend.DefaultLimit.
func (s *RecommendationService) Recommend(ctx context.Context, profile *models.UserProfile, limit *int) (*models.RecommendationResult, error) {
	if profile == nil {
		return nil, fmt.Errorf("%w: user profile is required", e.ErrValidation)
	}
	n, err := recommend.ParseLimit(limit)
	if err != nil {
		return nil, err
	}

	fingerprint := s.catalog.Fingerprint()
	key := s.lookup(ctx, profile, n, fingerprint)
	if key.hit != nil {
		s.publish(key.hit)
		s.logger.Debug("Recommendations served from cache",
			zap.Int("returned", len(key.hit.Recommendations)),
		)
		return key.hit, nil
	}

	result, err := s.engine.Generate(profile, s.catalog.All(), n)
	if err != nil {
		return nil, err
	}

	// A result ranked against a newer snapshot must not be stored under the
	// older key.
	if key.value != "" && s.catalog.Fingerprint() == fingerprint {
		if err := s.cache.Set(ctx, key.value, result); err != nil {
			s.logger.Warn("Failed to cache recommendations", zap.Error(err))
		}
	}
	s.publish(result)

	s.logger.Debug("Recommendations generated",
		zap.Int("returned", len(result.Recommendations)),
		zap.Int("top_match", result.Stats.TopMatch),
		zap.Uint64("catalog_fingerprint", fingerprint),
	)
	return result, nil
}

// publish reports a served result, whether computed or cached.
func (s *RecommendationService) publish(result *models.RecommendationResult) {
	if s.producer == nil {
		return
	}
	event := events.NewEvent(events.RecommendationsServed)
	stats := result.Stats
	event.Stats = &stats
	s.producer.Produce(event)
}

type cacheLookup struct {
	value string
	hit   *models.RecommendationResult
}

// lookup consults the cache. Failures are logged and treated as a miss; an
// empty key means the result must not be stored.
func (s *RecommendationService) lookup(ctx context.Context, profile *models.UserProfile, limit int, fingerprint uint64) cacheLookup {
	if s.cache == nil {
		return cacheLookup{}
	}
	key, err := cache.Key(profile, limit, fingerprint)
	if err != nil {
		s.logger.Warn("Failed to build cache key", zap.Error(err))
		return cacheLookup{}
	}
	hit, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Cache lookup failed", zap.Error(err))
		return cacheLookup{value: key}
	}
	if ok {
		return cacheLookup{value: key, hit: hit}
	}
	return cacheLookup{value: key}
}
