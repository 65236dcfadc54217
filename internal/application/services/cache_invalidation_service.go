package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/campuspulse/feedback-service/internal/domain/entities"
	"github.com/campuspulse/feedback-service/internal/domain/providers"
)

// DashboardInvalidator drops cached dashboards
type DashboardInvalidator interface {
	Invalidate(ctx context.Context) error
}

// CacheInvalidationService drops cached dashboards whenever feedback changes
type CacheInvalidationService struct {
	dashboards DashboardInvalidator
	eventBus   providers.EventBus
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
	started    bool
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(dashboards DashboardInvalidator, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		dashboards: dashboards,
		eventBus:   eventBus,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// Start begins listening for events and invalidating cache
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelFeedback)
	if err != nil {
		return fmt.Errorf("failed to subscribe to feedback events: %w", err)
	}

	s.started = true
	go s.processEvents(eventChan)
	log.Info().Msg("cache invalidation service started")
	return nil
}

// Stop stops the cache invalidation service and waits for the loop to exit
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	if s.started {
		<-s.done
	}
	log.Info().Msg("cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.FeedbackEvent) {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			s.handleEvent(event)
		}
	}
}

func (s *CacheInvalidationService) handleEvent(event *entities.FeedbackEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.dashboards.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Str("event_id", event.ID).Msg("failed to invalidate dashboard cache")
		return
	}
	log.Debug().
		Str("event_id", event.ID).
		Str("feedback_id", event.FeedbackID).
		Str("type", string(event.Type)).
		Msg("invalidated dashboard cache")
}
