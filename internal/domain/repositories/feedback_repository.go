package repositories

import (
	"context"
	"time"

	"github.com/campuspulse/feedback-service/internal/domain/entities"
)

// FeedbackFilter narrows a feedback listing. An empty Status lists everything.
type FeedbackFilter struct {
	Status entities.FeedbackStatus
}

// ResponseUpdate is the single write applied when an administrator responds.
type ResponseUpdate struct {
	Response  string
	UpdatedAt time.Time
	// RequirePending restricts the write to records still pending.
	RequirePending bool
}

// FeedbackRepository defines the interface for feedback operations.
type FeedbackRepository interface {
	// Create persists a fully populated feedback record
	Create(ctx context.Context, feedback *entities.Feedback) error

	// GetByID retrieves a feedback record by ID
	GetByID(ctx context.Context, id string) (*entities.Feedback, error)

	// List returns matching records, newest first
	List(ctx context.Context, filter FeedbackFilter) ([]*entities.Feedback, error)

	// UpdateResponse atomically sets the response, marks the record responded
	// and returns the stored result. A missing (or, with RequirePending, an
	// already responded) record yields a not found error.
	UpdateResponse(ctx context.Context, id string, update ResponseUpdate) (*entities.Feedback, error)
}
