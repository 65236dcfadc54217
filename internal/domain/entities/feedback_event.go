package entities

import "time"

// FeedbackEventType represents the type of feedback lifecycle event
type FeedbackEventType string

const (
	FeedbackEventSubmitted FeedbackEventType = "feedback.submitted"
	FeedbackEventResponded FeedbackEventType = "feedback.responded"
)

// FeedbackEvent is published whenever a feedback record is created or answered.
type FeedbackEvent struct {
	ID         string            `json:"id"`
	Type       FeedbackEventType `json:"type"`
	FeedbackID string            `json:"feedback_id"`
	Status     FeedbackStatus    `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
}
