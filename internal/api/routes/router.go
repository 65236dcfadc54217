package routes

import (
	"net/http"

	"github.com/campuspulse/feedback-service/internal/api/handlers"
	"github.com/campuspulse/feedback-service/internal/api/middleware"
	"github.com/campuspulse/feedback-service/internal/domain/repositories"
	"github.com/campuspulse/feedback-service/internal/infrastructure/observability"
	"github.com/campuspulse/feedback-service/internal/loaders"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	feedbackHandler  *handlers.FeedbackHandler
	analyticsHandler *handlers.AnalyticsHandler
	studentHandler   *handlers.StudentHandler
	streamHandler    *handlers.StreamHandler

	studentRepo    repositories.StudentRepository
	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a new router. streamHandler may be nil.
func NewRouter(
	feedbackHandler *handlers.FeedbackHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	studentHandler *handlers.StudentHandler,
	streamHandler *handlers.StreamHandler,
	studentRepo repositories.StudentRepository,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:              http.NewServeMux(),
		feedbackHandler:  feedbackHandler,
		analyticsHandler: analyticsHandler,
		studentHandler:   studentHandler,
		streamHandler:    streamHandler,
		studentRepo:      studentRepo,
		allowedOrigins:   allowedOrigins,
		metrics:          metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Feedback endpoints
	r.mux.HandleFunc("POST /api/feedback", r.feedbackHandler.SubmitFeedback)
	r.mux.HandleFunc("GET /api/feedback", r.feedbackHandler.ListFeedback)
	r.mux.HandleFunc("PUT /api/feedback/{id}", r.feedbackHandler.RespondToFeedback)

	// Admin analytics and export
	r.mux.HandleFunc("GET /api/feedback/analytics", r.analyticsHandler.GetDashboard)
	r.mux.HandleFunc("GET /api/feedback/export", r.analyticsHandler.ExportFeedback)

	// Live admin feed, only when an event bus is configured
	if r.streamHandler != nil {
		r.mux.HandleFunc("GET /api/feedback/stream", r.streamHandler.StreamFeedback)
	}

	// Student accounts
	r.mux.HandleFunc("POST /api/user", r.studentHandler.Signup)
	r.mux.HandleFunc("POST /api/login", r.studentHandler.Login)

	// Logging reads the matched pattern, so it wraps the mux directly and
	// every middleware that clones the request sits outside it.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = loaders.Middleware(r.studentRepo)(handler)
	handler = middleware.Compression(handler)
	handler = middleware.NoStore(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
