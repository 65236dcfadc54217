package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/campuspulse/feedback-service/internal/application/services"
	"github.com/campuspulse/feedback-service/internal/domain/entities"
	"github.com/campuspulse/feedback-service/internal/domain/repositories"
	apperrors "github.com/campuspulse/feedback-service/pkg/errors"
)

func TestAnalyticsService_Dashboard(t *testing.T) {
	records := []*entities.Feedback{
		{CourseContent: 3, TeachingMethods: 4, CampusFacilities: 5, Status: entities.FeedbackStatusPending, CreatedAt: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)},
		{CourseContent: 5, TeachingMethods: 4, CampusFacilities: 3, Status: entities.FeedbackStatusResponded, CreatedAt: time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)},
	}

	t.Run("computes and caches", func(t *testing.T) {
		repo := new(MockFeedbackRepository)
		cache := NewMockCacheProvider()
		service := services.NewAnalyticsService(repo, cache, time.Minute)

		repo.On("List", mock.Anything, repositories.FeedbackFilter{}).Return(records, nil).Once()

		d, err := service.Dashboard(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, 4.0, d.Averages.CourseContent)
		assert.Equal(t, 4.0, d.Averages.TeachingMethods)
		assert.Equal(t, 4.0, d.Averages.CampusFacilities)
		assert.Len(t, d.Distribution, 5)
		assert.Equal(t, 1, d.Summary.Pending)
		assert.True(t, cache.Has("analytics:dashboard:all"))

		again, err := service.Dashboard(context.Background(), "all")
		require.NoError(t, err)
		assert.Equal(t, d.Averages, again.Averages)
		repo.AssertNumberOfCalls(t, "List", 1)
	})

	t.Run("works without a cache", func(t *testing.T) {
		repo := new(MockFeedbackRepository)
		service := services.NewAnalyticsService(repo, nil, time.Minute)

		repo.On("List", mock.Anything, repositories.FeedbackFilter{Status: entities.FeedbackStatusResponded}).Return(records[1:], nil)

		d, err := service.Dashboard(context.Background(), "responded")
		require.NoError(t, err)
		assert.Equal(t, 1, d.Averages.Count)
		require.NoError(t, service.Invalidate(context.Background()))
	})

	t.Run("empty store yields zeros", func(t *testing.T) {
		repo := new(MockFeedbackRepository)
		service := services.NewAnalyticsService(repo, nil, time.Minute)

		repo.On("List", mock.Anything, mock.Anything).Return([]*entities.Feedback{}, nil)

		d, err := service.Dashboard(context.Background(), "pending")
		require.NoError(t, err)
		assert.Empty(t, d.Trend)
		assert.Zero(t, d.Averages.CourseContent)
	})

	t.Run("bad status", func(t *testing.T) {
		service := services.NewAnalyticsService(new(MockFeedbackRepository), nil, time.Minute)
		_, err := service.Dashboard(context.Background(), "archived")
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("store failure", func(t *testing.T) {
		repo := new(MockFeedbackRepository)
		service := services.NewAnalyticsService(repo, NewMockCacheProvider(), time.Minute)

		repo.On("List", mock.Anything, mock.Anything).Return(nil, apperrors.NewInternalError("failed to fetch feedback", errors.New("down")))

		_, err := service.Dashboard(context.Background(), "")
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
	})
}

func TestAnalyticsService_Invalidate(t *testing.T) {
	cache := NewMockCacheProvider()
	service := services.NewAnalyticsService(new(MockFeedbackRepository), cache, time.Minute)

	for _, key := range services.DashboardCacheKeys() {
		require.NoError(t, cache.Set(context.Background(), key, []byte("{}"), time.Minute))
	}

	require.NoError(t, service.Invalidate(context.Background()))
	for _, key := range services.DashboardCacheKeys() {
		assert.False(t, cache.Has(key), key)
	}
}
