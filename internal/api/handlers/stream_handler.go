package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/campuspulse/feedback-service/internal/domain/entities"
	"github.com/campuspulse/feedback-service/internal/domain/providers"
	"github.com/campuspulse/feedback-service/internal/infrastructure/observability"
)

const defaultHeartbeat = 30 * time.Second

// StreamHandler pushes feedback lifecycle events to admin dashboards over
// Server-Sent Events so they can refresh without polling.
type StreamHandler struct {
	eventBus  providers.EventBus
	heartbeat time.Duration

	mu      sync.Mutex
	clients int
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(eventBus providers.EventBus) *StreamHandler {
	return &StreamHandler{
		eventBus:  eventBus,
		heartbeat: defaultHeartbeat,
	}
}

// SetHeartbeat overrides the keep-alive interval
func (h *StreamHandler) SetHeartbeat(d time.Duration) {
	h.heartbeat = d
}

var streamTypes = map[string]entities.FeedbackEventType{
	"submitted": entities.FeedbackEventSubmitted,
	"responded": entities.FeedbackEventResponded,
}

// StreamFeedback handles GET /api/feedback/stream?type=submitted|responded
func (h *StreamHandler) StreamFeedback(w http.ResponseWriter, r *http.Request) {
	var only entities.FeedbackEventType
	if t := r.URL.Query().Get("type"); t != "" {
		eventType, ok := streamTypes[t]
		if !ok {
			respondWithError(w, http.StatusBadRequest, "type must be one of: submitted, responded")
			return
		}
		only = eventType
	}

	logger := observability.LoggerFromContext(r.Context())

	eventChan, err := h.eventBus.Subscribe(r.Context(), providers.EventChannelFeedback)
	if err != nil {
		logger.Error().Err(err).Msg("failed to subscribe to feedback events")
		respondWithError(w, http.StatusServiceUnavailable, "event stream unavailable")
		return
	}

	rc := http.NewResponseController(w)
	// The server write timeout would otherwise cut the stream.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		logger.Warn().Err(err).Msg("failed to clear write deadline")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	h.track(1)
	defer h.track(-1)

	h.sendEvent(w, "connected", map[string]interface{}{
		"timestamp": time.Now().UTC(),
	})
	if err := rc.Flush(); err != nil {
		logger.Error().Err(err).Msg("streaming not supported")
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			h.sendEvent(w, "heartbeat", map[string]interface{}{
				"timestamp": time.Now().UTC(),
			})
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil || (only != "" && event.Type != only) {
				continue
			}
			h.sendEvent(w, string(event.Type), event)
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

// ClientCount returns the number of connected stream clients
func (h *StreamHandler) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.clients
}

func (h *StreamHandler) track(delta int) {
	h.mu.Lock()
	h.clients += delta
	h.mu.Unlock()
}

func (h *StreamHandler) sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
}
