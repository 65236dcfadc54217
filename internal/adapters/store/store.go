// Package store opens the configured feedback store.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/campuspulse/feedback-service/internal/adapters/database"
	"github.com/campuspulse/feedback-service/internal/adapters/document"
	"github.com/campuspulse/feedback-service/internal/domain/repositories"
	"github.com/campuspulse/feedback-service/internal/infrastructure/clients/mongo"
	"github.com/campuspulse/feedback-service/internal/infrastructure/clients/postgres"
	"github.com/campuspulse/feedback-service/pkg/config"
)

// Stores bundles the repositories of one backing store.
type Stores struct {
	Feedback repositories.FeedbackRepository
	Students repositories.StudentRepository

	reset func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Open connects the store named by cfg.Store.Driver and prepares its tables
// or indexes. A Mongo index failure is logged, not returned, because the
// client reconnects on the next request.
func Open(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pgClient, err := postgres.NewClient(&cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := database.EnsureSchema(ctx, pgClient); err != nil {
			pgClient.Close()
			return nil, err
		}
		return &Stores{
			Feedback: database.NewFeedbackAdapter(pgClient),
			Students: database.NewStudentAdapter(pgClient),
			reset: func(ctx context.Context) error {
				_, err := pgClient.DB().ExecContext(ctx, `TRUNCATE TABLE feedback, students`)
				return err
			},
			close: func(context.Context) error { return pgClient.Close() },
		}, nil

	case config.StoreDriverMongo:
		mongoClient := mongo.NewClient(&cfg.Mongo)
		if err := document.EnsureIndexes(ctx, mongoClient); err != nil {
			log.Warn().Err(err).Msg("failed to ensure MongoDB indexes")
		}
		return &Stores{
			Feedback: document.NewFeedbackAdapter(mongoClient),
			Students: document.NewStudentAdapter(mongoClient),
			reset: func(ctx context.Context) error {
				for _, name := range []string{document.FeedbackCollection, document.StudentCollection} {
					coll, err := mongoClient.Collection(ctx, name)
					if err != nil {
						return err
					}
					if _, err := coll.DeleteMany(ctx, bson.D{}); err != nil {
						return fmt.Errorf("failed to clear %s: %w", name, err)
					}
				}
				return nil
			},
			close: mongoClient.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

// Reset removes every feedback record and student.
func (s *Stores) Reset(ctx context.Context) error {
	return s.reset(ctx)
}

// Close releases the store connection.
func (s *Stores) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.close(ctx)
}
