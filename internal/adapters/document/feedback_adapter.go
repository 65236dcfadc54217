package document

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campuspulse/feedback-service/internal/domain/entities"
	"github.com/campuspulse/feedback-service/internal/domain/repositories"
	apperrors "github.com/campuspulse/feedback-service/pkg/errors"
)

type feedbackDocument struct {
	ID               string    `bson:"_id"`
	CourseContent    int       `bson:"courseContent"`
	TeachingMethods  int       `bson:"teachingMethods"`
	CampusFacilities int       `bson:"campusFacilities"`
	Comments         string    `bson:"comments"`
	IsAnonymous      bool      `bson:"isAnonymous"`
	StudentID        string    `bson:"studentId,omitempty"`
	Status           string    `bson:"status"`
	Response         string    `bson:"response,omitempty"`
	CreatedAt        time.Time `bson:"createdAt"`
	UpdatedAt        time.Time `bson:"updatedAt"`
}

func toFeedbackDocument(f *entities.Feedback) feedbackDocument {
	return feedbackDocument{
		ID:               f.ID,
		CourseContent:    int(f.CourseContent),
		TeachingMethods:  int(f.TeachingMethods),
		CampusFacilities: int(f.CampusFacilities),
		Comments:         f.Comments,
		IsAnonymous:      f.IsAnonymous,
		StudentID:        f.StudentID,
		Status:           string(f.Status),
		Response:         f.Response,
		CreatedAt:        f.CreatedAt,
		UpdatedAt:        f.UpdatedAt,
	}
}

func (d feedbackDocument) entity() *entities.Feedback {
	return &entities.Feedback{
		ID:               d.ID,
		CourseContent:    entities.Rating(d.CourseContent),
		TeachingMethods:  entities.Rating(d.TeachingMethods),
		CampusFacilities: entities.Rating(d.CampusFacilities),
		Comments:         d.Comments,
		IsAnonymous:      d.IsAnonymous,
		StudentID:        d.StudentID,
		Status:           entities.FeedbackStatus(d.Status),
		Response:         d.Response,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

// FeedbackAdapter implements FeedbackRepository on a MongoDB collection
type FeedbackAdapter struct {
	provider CollectionProvider
}

var _ repositories.FeedbackRepository = (*FeedbackAdapter)(nil)

// NewFeedbackAdapter creates a new feedback adapter
func NewFeedbackAdapter(provider CollectionProvider) *FeedbackAdapter {
	return &FeedbackAdapter{provider: provider}
}

// Create inserts a feedback document
func (a *FeedbackAdapter) Create(ctx context.Context, feedback *entities.Feedback) error {
	coll, err := collection(ctx, a.provider, FeedbackCollection)
	if err != nil {
		return err
	}

	if _, err := coll.InsertOne(ctx, toFeedbackDocument(feedback)); err != nil {
		return apperrors.NewInternalError("failed to create feedback", err)
	}
	return nil
}

// GetByID retrieves a feedback document by ID
func (a *FeedbackAdapter) GetByID(ctx context.Context, id string) (*entities.Feedback, error) {
	coll, err := collection(ctx, a.provider, FeedbackCollection)
	if err != nil {
		return nil, err
	}

	var doc feedbackDocument
	err = coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NewNotFoundError("feedback not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to fetch feedback", err)
	}
	return doc.entity(), nil
}

// List returns matching documents, newest first
func (a *FeedbackAdapter) List(ctx context.Context, filter repositories.FeedbackFilter) ([]*entities.Feedback, error) {
	coll, err := collection(ctx, a.provider, FeedbackCollection)
	if err != nil {
		return nil, err
	}

	query := bson.M{}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}

	cursor, err := coll.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to fetch feedback", err)
	}
	defer cursor.Close(ctx)

	var docs []feedbackDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, apperrors.NewInternalError("failed to decode feedback", err)
	}

	records := make([]*entities.Feedback, 0, len(docs))
	for _, doc := range docs {
		records = append(records, doc.entity())
	}
	return records, nil
}

// UpdateResponse sets the response with a single FindOneAndUpdate and
// returns the document as written
func (a *FeedbackAdapter) UpdateResponse(ctx context.Context, id string, update repositories.ResponseUpdate) (*entities.Feedback, error) {
	coll, err := collection(ctx, a.provider, FeedbackCollection)
	if err != nil {
		return nil, err
	}

	match := bson.M{"_id": id}
	if update.RequirePending {
		match["status"] = string(entities.FeedbackStatusPending)
	}
	set := bson.M{"$set": bson.M{
		"response":  update.Response,
		"status":    string(entities.FeedbackStatusResponded),
		"updatedAt": update.UpdatedAt,
	}}

	var doc feedbackDocument
	err = coll.FindOneAndUpdate(ctx, match, set,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NewNotFoundError("feedback not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to update feedback", err)
	}
	return doc.entity(), nil
}
