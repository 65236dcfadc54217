package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MongoConfig(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")
	t.Setenv("MONGODB_URI", "mongodb://test-mongo:27017")
	t.Setenv("MONGODB_DATABASE", "feedback_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverMongo, cfg.Store.Driver)
	assert.Equal(t, "mongodb://test-mongo:27017", cfg.Mongo.URI)
	assert.Equal(t, "feedback_test", cfg.Mongo.Database)
}

func TestLoad_MongoRequiresURI(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")
	t.Setenv("MONGODB_URI", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGODB_URI")
}

func TestLoad_UnsupportedDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported STORE_DRIVER")
}

func TestLoad_FeedbackDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("FEEDBACK_GUARDED_RESPONSES", "")
	t.Setenv("FEEDBACK_RATE_LIMIT", "")
	t.Setenv("FEEDBACK_RATE_WINDOW", "")
	t.Setenv("FEEDBACK_DEDUP_WINDOW", "")
	t.Setenv("ANALYTICS_CACHE_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Feedback.GuardedResponses)
	assert.Equal(t, 5, cfg.Feedback.RateLimit)
	assert.Equal(t, time.Hour, cfg.Feedback.RateWindow)
	assert.Equal(t, 24*time.Hour, cfg.Feedback.DedupWindow)
	assert.Equal(t, 5*time.Minute, cfg.Feedback.AnalyticsTTL)
}

func TestLoad_FeedbackOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("FEEDBACK_GUARDED_RESPONSES", "true")
	t.Setenv("FEEDBACK_RATE_LIMIT", "20")
	t.Setenv("FEEDBACK_RATE_WINDOW", "10m")
	t.Setenv("ALLOWED_ORIGINS", "https://admin.example.edu, https://feedback.example.edu")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Feedback.GuardedResponses)
	assert.Equal(t, 20, cfg.Feedback.RateLimit)
	assert.Equal(t, 10*time.Minute, cfg.Feedback.RateWindow)
	assert.Equal(t, []string{"https://admin.example.edu", "https://feedback.example.edu"}, cfg.Server.AllowedOrigins)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=d sslmode=disable", cfg.DatabaseDSN())
}
