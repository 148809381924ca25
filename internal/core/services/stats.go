// internal/core/services/stats.go
package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ammerola/poultry-storefront/internal/core/domain"
	"github.com/ammerola/poultry-storefront/internal/core/ports"
)

const (
	sellerStatsKey  = "stats:seller"
	DefaultStatsTTL = time.Minute
)

// StatsService serves the seller dashboard aggregates, optionally through a cache
type StatsService struct {
	api    ports.StatsAPI
	cache  ports.CacheRepository
	ttl    time.Duration
	logger *slog.Logger
}

// NewStatsService creates the service. cache may be nil.
func NewStatsService(api ports.StatsAPI, cache ports.CacheRepository, ttl time.Duration, logger *slog.Logger) *StatsService {
	if ttl <= 0 {
		ttl = DefaultStatsTTL
	}
	return &StatsService{
		api:    api,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With(slog.String("service", "stats")),
	}
}

// Stats returns the seller aggregates. Cache failures fall back to the API.
func (s *StatsService) Stats(ctx context.Context) (*domain.SellerStats, error) {
	if s.cache == nil {
		return s.api.SellerStats(ctx)
	}

	var fetchErr error
	var stats domain.SellerStats
	err := s.cache.GetOrSet(ctx, sellerStatsKey, &stats, func() (interface{}, error) {
		v, err := s.api.SellerStats(ctx)
		fetchErr = err
		return v, err
	}, s.ttl)
	if err == nil {
		return &stats, nil
	}
	if fetchErr != nil {
		return nil, fetchErr
	}

	s.logger.WarnContext(ctx, "stats cache unavailable", slog.String("error", err.Error()))
	return s.api.SellerStats(ctx)
}

// Invalidate drops the cached aggregates, e.g. after an order status change
func (s *StatsService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Delete(ctx, sellerStatsKey); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.WarnContext(ctx, "failed to invalidate stats", slog.String("error", err.Error()))
		return err
	}
	return nil
}
