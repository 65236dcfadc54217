package handlers

import (
	"bytes"
	"context"
	"net/http"

	"github.com/campuspulse/feedback-service/internal/analytics"
	"github.com/campuspulse/feedback-service/internal/domain/entities"
	"github.com/campuspulse/feedback-service/internal/export"
	"github.com/campuspulse/feedback-service/internal/infrastructure/observability"
)

// AnalyticsService builds the admin dashboard.
type AnalyticsService interface {
	Dashboard(ctx context.Context, status string) (*analytics.Dashboard, error)
}

// FeedbackLister lists feedback with students resolved.
type FeedbackLister interface {
	List(ctx context.Context, status string) ([]*entities.Feedback, error)
}

// AnalyticsHandler serves the dashboard and the feedback export.
type AnalyticsHandler struct {
	analytics AnalyticsService
	feedback  FeedbackLister
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analytics AnalyticsService, feedback FeedbackLister) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, feedback: feedback}
}

// GetDashboard handles GET /api/feedback/analytics?status=
func (h *AnalyticsHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.analytics.Dashboard(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, dashboard)
}

// ExportFeedback handles GET /api/feedback/export?format=csv|xlsx&status=
func (h *AnalyticsHandler) ExportFeedback(w http.ResponseWriter, r *http.Request) {
	encoder, err := export.NewEncoder(r.URL.Query().Get("format"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "format must be one of: csv, xlsx")
		return
	}

	records, err := h.feedback.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	// Encode fully before writing so a failure still yields a JSON error.
	var buf bytes.Buffer
	if err := encoder.Encode(&buf, records); err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("failed to encode export")
		respondWithError(w, http.StatusInternalServerError, "failed to export feedback")
		return
	}

	w.Header().Set("Content-Type", encoder.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename=feedback_export."+encoder.Extension())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
