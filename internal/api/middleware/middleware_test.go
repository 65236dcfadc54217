package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/feedback/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"` + r.PathValue("id") + `"}`))
	})
	return mux
}

func TestCORSMiddleware(t *testing.T) {
	t.Run("configured origin is echoed", func(t *testing.T) {
		h := CORSMiddleware([]string{"https://admin.example.edu"})(newMux())

		req := httptest.NewRequest(http.MethodGet, "/api/feedback/1", nil)
		req.Header.Set("Origin", "https://admin.example.edu")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, "https://admin.example.edu", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", w.Header().Get("Vary"))
	})

	t.Run("unknown origin gets no allow header", func(t *testing.T) {
		h := CORSMiddleware([]string{"https://admin.example.edu"})(newMux())

		req := httptest.NewRequest(http.MethodGet, "/api/feedback/1", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		h := CORSMiddleware(nil)(newMux())

		req := httptest.NewRequest(http.MethodOptions, "/api/feedback/1", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestObservabilityAndLogging_NilMetrics(t *testing.T) {
	h := ObservabilityMiddleware(nil)(LoggingMiddleware(newMux()))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/feedback/42", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"42"}`, w.Body.String())
}

func TestCompression(t *testing.T) {
	h := Compression(newMux())

	req := httptest.NewRequest(http.MethodGet, "/api/feedback/7", nil)
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"7"}`, string(body))
}

func TestNoStore(t *testing.T) {
	h := NoStore(newMux())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/feedback/1", nil))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestCompression_SkipsEventStreams(t *testing.T) {
	h := Compression(newMux())

	req := httptest.NewRequest(http.MethodGet, "/api/feedback/7", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("Accept", "text/event-stream")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.JSONEq(t, `{"id":"7"}`, w.Body.String())
}

func TestWrappedWritersFlush(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /stream", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("data"))
		assert.NoError(t, http.NewResponseController(w).Flush())
	})
	h := ObservabilityMiddleware(nil)(LoggingMiddleware(mux))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stream", nil))
	assert.True(t, w.Flushed)
}
