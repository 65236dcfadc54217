package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/campuspulse/feedback-service/internal/analytics"
	"github.com/campuspulse/feedback-service/internal/domain/providers"
	"github.com/campuspulse/feedback-service/internal/domain/repositories"
	"github.com/campuspulse/feedback-service/internal/infrastructure/observability"
)

const dashboardKeyPrefix = "analytics:dashboard:"

// DashboardCacheKeys lists every key a dashboard can be cached under.
func DashboardCacheKeys() []string {
	return []string{
		dashboardKeyPrefix + StatusAll,
		dashboardKeyPrefix + "pending",
		dashboardKeyPrefix + "responded",
	}
}

// AnalyticsService builds the admin dashboard over stored feedback.
type AnalyticsService struct {
	repo    repositories.FeedbackRepository
	cache   providers.CacheProvider
	ttl     time.Duration
	metrics *observability.Metrics
	now     func() time.Time
}

// NewAnalyticsService creates a new analytics service. A nil cache disables caching.
func NewAnalyticsService(repo repositories.FeedbackRepository, cache providers.CacheProvider, ttl time.Duration) *AnalyticsService {
	return &AnalyticsService{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// SetMetrics enables cache hit/miss counters
func (s *AnalyticsService) SetMetrics(metrics *observability.Metrics) {
	s.metrics = metrics
}

// Dashboard returns trend, distribution, averages and status counts for the
// feedback matching status.
func (s *AnalyticsService) Dashboard(ctx context.Context, status string) (*analytics.Dashboard, error) {
	filter, err := ParseStatusFilter(status)
	if err != nil {
		return nil, err
	}

	label := string(filter.Status)
	if label == "" {
		label = StatusAll
	}
	key := dashboardKeyPrefix + label
	logger := observability.LoggerFromContext(ctx)

	if s.cache != nil {
		data, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			var cached analytics.Dashboard
			if jsonErr := json.Unmarshal(data, &cached); jsonErr == nil {
				observability.RecordCacheLookup(ctx, s.metrics, label, true)
				return &cached, nil
			}
		case !errors.Is(err, providers.ErrCacheMiss):
			logger.Warn().Err(err).Str("key", key).Msg("dashboard cache read failed")
		}
		observability.RecordCacheLookup(ctx, s.metrics, label, false)
	}

	records, err := s.repo.List(ctx, filter)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load feedback for analytics")
		return nil, err
	}

	dashboard := analytics.BuildDashboard(records, s.now())

	if s.cache != nil {
		if data, err := json.Marshal(dashboard); err == nil {
			if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
				logger.Warn().Err(err).Str("key", key).Msg("dashboard cache write failed")
			}
		}
	}

	return &dashboard, nil
}

// Invalidate drops every cached dashboard
func (s *AnalyticsService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, DashboardCacheKeys()...)
}
