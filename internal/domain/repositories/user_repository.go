package repositories

import (
	"context"

	"github.com/campuspulse/feedback-service/internal/domain/entities"
)

// StudentRepository defines the interface for student account operations
type StudentRepository interface {
	// Create creates a new student; a taken email yields a conflict error
	Create(ctx context.Context, student *entities.Student) error

	// GetByID retrieves a student by ID
	GetByID(ctx context.Context, id string) (*entities.Student, error)

	// GetByEmail retrieves a student by normalised email
	GetByEmail(ctx context.Context, email string) (*entities.Student, error)

	// GetByIDs retrieves every student found among ids, in no particular order
	GetByIDs(ctx context.Context, ids []string) ([]*entities.Student, error)
}
