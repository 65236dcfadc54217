package providers

import (
	"context"

	"github.com/campuspulse/feedback-service/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to feedback events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.FeedbackEvent) error

	// Subscribe subscribes to events on a channel until ctx is done
	Subscribe(ctx context.Context, channel string) (<-chan *entities.FeedbackEvent, error)

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannelFeedback carries every feedback lifecycle event
const EventChannelFeedback = "feedback:events"
