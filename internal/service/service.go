package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/meronoumer/moodreads/internal/domain"
	"github.com/meronoumer/moodreads/internal/logger"
	"github.com/meronoumer/moodreads/internal/metrics"
)

const (
	defaultLimit = 6
	maxLimit     = 50
)

// Backend fetches recommendations from the external engine.
type Backend interface {
	Recommend(ctx context.Context, mood string, limit int) (*domain.RecommendationResult, error)
}

// Cache is optional; a nil Cache disables caching.
type Cache interface {
	Get(ctx context.Context, mood string, limit int) ([]domain.Book, bool, error)
	Set(ctx context.Context, mood string, limit int, books []domain.Book) error
	Clear(ctx context.Context, mood string) error
}

type Service struct {
	backend Backend
	cache   Cache
}

func NewService(backend Backend, cache Cache) *Service {
	return &Service{
		backend: backend,
		cache:   cache,
	}
}

// GetRecommendations serves from cache when possible, otherwise asks the
// backend. An empty result set is reported as domain.ErrEmptyResult and is
// never cached.
func (s *Service) GetRecommendations(ctx context.Context, mood string, limit int) (*domain.RecommendationResult, error) {
	mood = strings.TrimSpace(mood)
	if limit <= 0 {
		limit = defaultLimit
	} else if limit > maxLimit {
		limit = maxLimit
	}
	defer logger.Track(ctx, fmt.Sprintf("recommend mood=%q limit=%d", mood, limit))()

	log := logger.Component(ctx, "service")

	// Check Cache
	if s.cache != nil {
		cached, found, err := s.cache.Get(ctx, mood, limit)
		if err != nil {
			log.WithError(err).Warn("cache get failed")
		}
		if found {
			metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
			return &domain.RecommendationResult{
				Books:    cached,
				CacheHit: true,
			}, nil
		}
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
	}

	// Cache miss -> ask the backend
	res, err := s.backend.Recommend(ctx, mood, limit)
	if err != nil {
		return nil, fmt.Errorf("recommend %q: %w", mood, err)
	}

	if len(res.Books) == 0 {
		return nil, fmt.Errorf("recommend %q: %w", mood, domain.ErrEmptyResult)
	}

	if s.cache != nil {
		if cacheErr := s.cache.Set(ctx, mood, limit, res.Books); cacheErr != nil {
			log.WithError(cacheErr).Warn("cache set failed")
		}
	}

	return res, nil
}

// ClearCache drops cached recommendations for a mood at every limit so the
// next request reaches the backend. It is a no-op without a cache.
func (s *Service) ClearCache(ctx context.Context, mood string) error {
	if s.cache == nil {
		return nil
	}
	mood = strings.TrimSpace(mood)
	if err := s.cache.Clear(ctx, mood); err != nil {
		return fmt.Errorf("clear cache for %q: %w", mood, err)
	}
	logger.Component(ctx, "service").WithField("mood", mood).Info("recommendation cache cleared")
	return nil
}

// Recommend adapts the service to the view's Recommender contract.
func (s *Service) Recommend(ctx context.Context, mood string, limit int) ([]domain.Book, error) {
	res, err := s.GetRecommendations(ctx, mood, limit)
	if err != nil {
		return nil, err
	}
	return res.Books, nil
}
