package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/campuspulse/feedback-service/internal/application/services"
	"github.com/campuspulse/feedback-service/internal/domain/entities"
	"github.com/campuspulse/feedback-service/internal/domain/providers"
)

// FeedbackService defines the feedback operations used by the handler.
type FeedbackService interface {
	Submit(ctx context.Context, input services.SubmitFeedbackInput) (*entities.Feedback, error)
	List(ctx context.Context, status string) ([]*entities.Feedback, error)
	Respond(ctx context.Context, id, response string) (*entities.Feedback, error)
}

// FeedbackHandler handles feedback submission, listing and admin responses.
type FeedbackHandler struct {
	service FeedbackService
	guard   *submissionGuard
}

// NewFeedbackHandler creates a new feedback handler. A nil cache keeps the
// submission guard in memory.
func NewFeedbackHandler(service FeedbackService, cache providers.CacheProvider, cfg GuardConfig) *FeedbackHandler {
	return &FeedbackHandler{
		service: service,
		guard:   newSubmissionGuard(cfg, cache),
	}
}

type respondRequest struct {
	Response string `json:"response"`
}

// SubmitFeedback handles POST /api/feedback
func (h *FeedbackHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var input services.SubmitFeedbackInput
	if err := decodeJSON(r, &input); err != nil {
		if errors.Is(err, entities.ErrInvalidRating) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := input.Validate(); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	ip := clientIP(r)
	allowed, retryAfter := h.guard.allow(r.Context(), ip)
	if !allowed {
		w.Header().Set("Retry-After", retryAfterSeconds(retryAfter))
		respondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	fingerprint := feedbackFingerprint(input, ip)
	if h.guard.claim(r.Context(), fingerprint) {
		respondWithJSON(w, http.StatusAccepted, map[string]string{
			"status": "duplicate_ignored",
		})
		return
	}

	feedback, err := h.service.Submit(r.Context(), input)
	if err != nil {
		h.guard.release(r.Context(), fingerprint)
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, feedback)
}

// ListFeedback handles GET /api/feedback?status=
func (h *FeedbackHandler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if records == nil {
		records = []*entities.Feedback{}
	}

	respondWithJSON(w, http.StatusOK, records)
}

// RespondToFeedback handles PUT /api/feedback/{id}
func (h *FeedbackHandler) RespondToFeedback(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "feedback ID is required")
		return
	}

	var payload respondRequest
	if err := decodeJSON(r, &payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	feedback, err := h.service.Respond(r.Context(), id, payload.Response)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, feedback)
}
