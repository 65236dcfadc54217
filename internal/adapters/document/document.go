// Package document persists feedback and students in MongoDB.
package document

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "github.com/campuspulse/feedback-service/pkg/errors"
)

// Collection names
const (
	FeedbackCollection = "feedbacks"
	StudentCollection  = "users"
)

// CollectionProvider hands out collection handles, connecting on demand.
type CollectionProvider interface {
	Collection(ctx context.Context, name string) (*mongo.Collection, error)
}

func collection(ctx context.Context, p CollectionProvider, name string) (*mongo.Collection, error) {
	coll, err := p.Collection(ctx, name)
	if err != nil {
		return nil, apperrors.NewInternalError("database unavailable", err)
	}
	return coll, nil
}

// EnsureIndexes creates the indexes the adapters rely on
func EnsureIndexes(ctx context.Context, p CollectionProvider) error {
	users, err := collection(ctx, p, StudentCollection)
	if err != nil {
		return err
	}
	if _, err := users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return apperrors.NewInternalError("failed to create student indexes", err)
	}

	feedbacks, err := collection(ctx, p, FeedbackCollection)
	if err != nil {
		return err
	}
	if _, err := feedbacks.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
	}); err != nil {
		return apperrors.NewInternalError("failed to create feedback indexes", err)
	}

	return nil
}
