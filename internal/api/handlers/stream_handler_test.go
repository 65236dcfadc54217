package handlers_test

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuspulse/feedback-service/internal/api/handlers"
	"github.com/campuspulse/feedback-service/internal/domain/entities"
	"github.com/campuspulse/feedback-service/internal/domain/providers"
)

// fakeEventBus fans events out to in-process subscribers until their context ends.
type fakeEventBus struct {
	mu          sync.Mutex
	subscribers []chan *entities.FeedbackEvent
	failWith    error
}

func (b *fakeEventBus) Publish(ctx context.Context, channel string, event *entities.FeedbackEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (b *fakeEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.FeedbackEvent, error) {
	if b.failWith != nil {
		return nil, b.failWith
	}
	ch := make(chan *entities.FeedbackEvent, 10)
	b.mu.Lock()
	b.subscribers = append(b.subscribers, ch)
	b.mu.Unlock()
	return ch, nil
}

func (b *fakeEventBus) Close() error { return nil }

func (b *fakeEventBus) subscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

var _ providers.EventBus = (*fakeEventBus)(nil)

func readEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var name, data string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "":
			return name, data
		}
	}
}

func TestStreamHandler_StreamFeedback(t *testing.T) {
	bus := &fakeEventBus{}
	handler := handlers.NewStreamHandler(bus)
	handler.SetHeartbeat(time.Hour)

	srv := httptest.NewServer(http.HandlerFunc(handler.StreamFeedback))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "?type=responded")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	name, _ := readEvent(t, reader)
	assert.Equal(t, "connected", name)
	assert.Equal(t, 1, handler.ClientCount())
	require.Equal(t, 1, bus.subscriberCount())

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, providers.EventChannelFeedback, &entities.FeedbackEvent{
		Type: entities.FeedbackEventSubmitted, FeedbackID: "skipped",
	}))
	require.NoError(t, bus.Publish(ctx, providers.EventChannelFeedback, &entities.FeedbackEvent{
		Type: entities.FeedbackEventResponded, FeedbackID: "f1", Status: entities.FeedbackStatusResponded,
	}))

	name, data := readEvent(t, reader)
	assert.Equal(t, string(entities.FeedbackEventResponded), name)
	assert.Contains(t, data, `"feedback_id":"f1"`)
}

func TestStreamHandler_Heartbeat(t *testing.T) {
	handler := handlers.NewStreamHandler(&fakeEventBus{})
	handler.SetHeartbeat(10 * time.Millisecond)

	srv := httptest.NewServer(http.HandlerFunc(handler.StreamFeedback))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	name, _ := readEvent(t, reader)
	require.Equal(t, "connected", name)
	name, _ = readEvent(t, reader)
	assert.Equal(t, "heartbeat", name)
}

func TestStreamHandler_InvalidType(t *testing.T) {
	handler := handlers.NewStreamHandler(&fakeEventBus{})

	req := httptest.NewRequest(http.MethodGet, "/api/feedback/stream?type=deleted", nil)
	w := httptest.NewRecorder()
	handler.StreamFeedback(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStreamHandler_SubscribeFailure(t *testing.T) {
	handler := handlers.NewStreamHandler(&fakeEventBus{failWith: errors.New("redis down")})

	req := httptest.NewRequest(http.MethodGet, "/api/feedback/stream", nil)
	w := httptest.NewRecorder()
	handler.StreamFeedback(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, 0, handler.ClientCount())
}
