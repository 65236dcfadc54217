package document

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/campuspulse/feedback-service/internal/domain/entities"
	"github.com/campuspulse/feedback-service/internal/domain/repositories"
	apperrors "github.com/campuspulse/feedback-service/pkg/errors"
)

type studentDocument struct {
	ID        string    `bson:"_id"`
	Email     string    `bson:"email"`
	Name      string    `bson:"name"`
	DOB       time.Time `bson:"dob"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func (d studentDocument) entity() *entities.Student {
	return &entities.Student{
		ID:        d.ID,
		Email:     d.Email,
		Name:      d.Name,
		DOB:       d.DOB,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// StudentAdapter implements StudentRepository on the users collection
type StudentAdapter struct {
	provider CollectionProvider
}

var _ repositories.StudentRepository = (*StudentAdapter)(nil)

// NewStudentAdapter creates a new student adapter
func NewStudentAdapter(provider CollectionProvider) *StudentAdapter {
	return &StudentAdapter{provider: provider}
}

// Create inserts a student; the unique email index reports duplicates
func (a *StudentAdapter) Create(ctx context.Context, student *entities.Student) error {
	coll, err := collection(ctx, a.provider, StudentCollection)
	if err != nil {
		return err
	}

	_, err = coll.InsertOne(ctx, studentDocument{
		ID:        student.ID,
		Email:     student.Email,
		Name:      student.Name,
		DOB:       student.DOB,
		CreatedAt: student.CreatedAt,
		UpdatedAt: student.UpdatedAt,
	})
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.NewConflictError("email already registered")
	}
	if err != nil {
		return apperrors.NewInternalError("failed to create student", err)
	}
	return nil
}

// GetByID retrieves a student by ID
func (a *StudentAdapter) GetByID(ctx context.Context, id string) (*entities.Student, error) {
	return a.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail retrieves a student by email
func (a *StudentAdapter) GetByEmail(ctx context.Context, email string) (*entities.Student, error) {
	return a.findOne(ctx, bson.M{"email": entities.NormalizeEmail(email)})
}

// GetByIDs retrieves all students whose ID is in ids
func (a *StudentAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Student, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	coll, err := collection(ctx, a.provider, StudentCollection)
	if err != nil {
		return nil, err
	}

	cursor, err := coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, apperrors.NewInternalError("failed to fetch students", err)
	}
	defer cursor.Close(ctx)

	var docs []studentDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, apperrors.NewInternalError("failed to decode students", err)
	}

	students := make([]*entities.Student, 0, len(docs))
	for _, doc := range docs {
		students = append(students, doc.entity())
	}
	return students, nil
}

func (a *StudentAdapter) findOne(ctx context.Context, filter bson.M) (*entities.Student, error) {
	coll, err := collection(ctx, a.provider, StudentCollection)
	if err != nil {
		return nil, err
	}

	var doc studentDocument
	err = coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NewNotFoundError("student not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to fetch student", err)
	}
	return doc.entity(), nil
}
