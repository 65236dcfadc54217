package mongo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/campuspulse/feedback-service/pkg/config"
)

const connectTimeout = 10 * time.Second

// Client is a process-wide MongoDB handle. The connection is opened on first
// use; concurrent first callers wait on the same attempt, and a failed attempt
// is retried by the next caller.
type Client struct {
	cfg config.MongoConfig

	mu     sync.Mutex
	client *mongo.Client
	db     *mongo.Database
}

// NewClient creates a client without connecting
func NewClient(cfg *config.MongoConfig) *Client {
	return &Client{cfg: *cfg}
}

// Database returns the configured database, connecting if needed
func (c *Client) Database(ctx context.Context) (*mongo.Database, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		return c.db, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(c.cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	c.client = client
	c.db = client.Database(c.cfg.Database)
	log.Info().Str("database", c.cfg.Database).Msg("connected to MongoDB")
	return c.db, nil
}

// Collection returns a handle to the named collection, connecting if needed
func (c *Client) Collection(ctx context.Context, name string) (*mongo.Collection, error) {
	db, err := c.Database(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(name), nil
}

// Ping verifies the connection to MongoDB
func (c *Client) Ping(ctx context.Context) error {
	db, err := c.Database(ctx)
	if err != nil {
		return err
	}
	return db.Client().Ping(ctx, readpref.Primary())
}

// Close disconnects if a connection was ever opened
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return nil
	}
	err := c.client.Disconnect(ctx)
	c.client, c.db = nil, nil
	return err
}
