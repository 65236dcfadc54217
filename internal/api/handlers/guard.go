package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/campuspulse/feedback-service/internal/application/services"
	"github.com/campuspulse/feedback-service/internal/domain/providers"
)

// GuardConfig bounds how often one client may submit feedback.
type GuardConfig struct {
	RateLimit   int
	RateWindow  time.Duration
	DedupWindow time.Duration
}

// DefaultGuardConfig allows five submissions per hour and ignores repeats for a day.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		RateLimit:   5,
		RateWindow:  time.Hour,
		DedupWindow: 24 * time.Hour,
	}
}

// submissionGuard rate limits and de-duplicates submissions. State lives in
// the cache when one is configured and reachable, else in process memory.
type submissionGuard struct {
	cfg     GuardConfig
	cache   providers.CacheProvider
	local   *localRateLimiter
	deduper *localDeduper
}

func newSubmissionGuard(cfg GuardConfig, cache providers.CacheProvider) *submissionGuard {
	return &submissionGuard{
		cfg:     cfg,
		cache:   cache,
		local:   newLocalRateLimiter(),
		deduper: newLocalDeduper(),
	}
}

func (g *submissionGuard) allow(ctx context.Context, ip string) (bool, time.Duration) {
	key := "feedback:rate:" + ip
	if g.cache == nil {
		return g.local.allow(key, g.cfg.RateLimit, g.cfg.RateWindow)
	}

	count, remaining, err := g.cache.Increment(ctx, key, g.cfg.RateWindow)
	if err != nil {
		log.Warn().Err(err).Msg("rate limit cache unavailable, using local limiter")
		return g.local.allow(key, g.cfg.RateLimit, g.cfg.RateWindow)
	}
	if count > int64(g.cfg.RateLimit) {
		return false, remaining
	}
	return true, remaining
}

// claim marks the fingerprint as seen and reports whether it already was.
func (g *submissionGuard) claim(ctx context.Context, fingerprint string) (duplicate bool) {
	key := "feedback:dup:" + fingerprint
	if g.cache == nil {
		return g.deduper.seen(key, g.cfg.DedupWindow)
	}

	stored, err := g.cache.SetIfAbsent(ctx, key, []byte("1"), g.cfg.DedupWindow)
	if err != nil {
		log.Warn().Err(err).Msg("dedup cache unavailable, using local deduper")
		return g.deduper.seen(key, g.cfg.DedupWindow)
	}
	return !stored
}

// release forgets a fingerprint whose submission was not stored.
func (g *submissionGuard) release(ctx context.Context, fingerprint string) {
	key := "feedback:dup:" + fingerprint
	g.deduper.forget(key)
	if g.cache != nil {
		if err := g.cache.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Msg("failed to release dedup key")
		}
	}
}

// localSweepInterval is how often the in-memory fallbacks drop expired entries.
const localSweepInterval = time.Minute

type localRateLimiter struct {
	mu        sync.Mutex
	states    map[string]*localRateState
	nextSweep time.Time
	now       func() time.Time
}

type localRateState struct {
	count   int
	resetAt time.Time
}

func newLocalRateLimiter() *localRateLimiter {
	return &localRateLimiter{
		states: make(map[string]*localRateState),
		now:    time.Now,
	}
}

func (l *localRateLimiter) allow(key string, limit int, window time.Duration) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.After(l.nextSweep) {
		for k, st := range l.states {
			if now.After(st.resetAt) {
				delete(l.states, k)
			}
		}
		l.nextSweep = now.Add(localSweepInterval)
	}

	state, ok := l.states[key]
	if !ok || now.After(state.resetAt) {
		state = &localRateState{count: 0, resetAt: now.Add(window)}
		l.states[key] = state
	}

	retryAfter := state.resetAt.Sub(now)
	if state.count >= limit {
		return false, retryAfter
	}

	state.count++
	return true, retryAfter
}

type localDeduper struct {
	mu        sync.Mutex
	entries   map[string]time.Time
	nextSweep time.Time
	now       func() time.Time
}

func newLocalDeduper() *localDeduper {
	return &localDeduper{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (d *localDeduper) seen(key string, window time.Duration) bool {
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if now.After(d.nextSweep) {
		for k, expiresAt := range d.entries {
			if !now.Before(expiresAt) {
				delete(d.entries, k)
			}
		}
		d.nextSweep = now.Add(localSweepInterval)
	}

	if expiresAt, ok := d.entries[key]; ok && now.Before(expiresAt) {
		return true
	}

	d.entries[key] = now.Add(window)
	return false
}

func (d *localDeduper) forget(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.entries, key)
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

func feedbackFingerprint(input services.SubmitFeedbackInput, ip string) string {
	normalized := []string{
		strconv.Itoa(int(input.CourseContent)),
		strconv.Itoa(int(input.TeachingMethods)),
		strconv.Itoa(int(input.CampusFacilities)),
		normalizeFeedback(input.Comments),
		strconv.FormatBool(input.IsAnonymous),
		strings.TrimSpace(input.StudentID),
		ip,
	}

	hash := sha256.Sum256([]byte(strings.Join(normalized, "|")))
	return hex.EncodeToString(hash[:])
}

func normalizeFeedback(value string) string {
	trimmed := strings.TrimSpace(strings.ToLower(value))
	if trimmed == "" {
		return ""
	}
	return strings.Join(strings.Fields(trimmed), " ")
}

func retryAfterSeconds(d time.Duration) string {
	seconds := int(d.Round(time.Second).Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}
