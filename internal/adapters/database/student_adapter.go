package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"

	"github.com/campuspulse/feedback-service/internal/domain/entities"
	"github.com/campuspulse/feedback-service/internal/domain/repositories"
	"github.com/campuspulse/feedback-service/internal/infrastructure/clients/postgres"
	apperrors "github.com/campuspulse/feedback-service/pkg/errors"
)

const (
	studentsTable = "students"

	// pqUniqueViolation is the SQLSTATE for a unique constraint violation
	pqUniqueViolation = "23505"
)

var studentColumns = []interface{}{"id", "email", "name", "dob", "created_at", "updated_at"}

// StudentAdapter implements StudentRepository
type StudentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

var _ repositories.StudentRepository = (*StudentAdapter)(nil)

// NewStudentAdapter creates a new student adapter
func NewStudentAdapter(client *postgres.Client) *StudentAdapter {
	return &StudentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a student; the unique email index turns a duplicate into a conflict
func (a *StudentAdapter) Create(ctx context.Context, student *entities.Student) error {
	record := goqu.Record{
		"id":         student.ID,
		"email":      student.Email,
		"name":       student.Name,
		"dob":        student.DOB,
		"created_at": student.CreatedAt,
		"updated_at": student.UpdatedAt,
	}

	query, args, err := a.db.Insert(studentsTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return apperrors.NewConflictError("email already registered")
		}
		return apperrors.NewInternalError("failed to create student", err)
	}

	return nil
}

// GetByID retrieves a student by ID
func (a *StudentAdapter) GetByID(ctx context.Context, id string) (*entities.Student, error) {
	return a.getOne(ctx, goqu.Ex{"id": id})
}

// GetByEmail retrieves a student by email
func (a *StudentAdapter) GetByEmail(ctx context.Context, email string) (*entities.Student, error) {
	return a.getOne(ctx, goqu.Ex{"email": entities.NormalizeEmail(email)})
}

// GetByIDs retrieves all students whose ID is in ids
func (a *StudentAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Student, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := a.db.Select(studentColumns...).From(studentsTable).
		Where(goqu.Ex{"id": ids}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to fetch students", err)
	}
	defer rows.Close()

	var students []*entities.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan student", err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate students", err)
	}

	return students, nil
}

func (a *StudentAdapter) getOne(ctx context.Context, where goqu.Ex) (*entities.Student, error) {
	query, args, err := a.db.Select(studentColumns...).From(studentsTable).
		Where(where).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	s, err := scanStudent(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("student not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to fetch student", err)
	}
	return s, nil
}

func scanStudent(row rowScanner) (*entities.Student, error) {
	s := &entities.Student{}
	if err := row.Scan(&s.ID, &s.Email, &s.Name, &s.DOB, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return s, nil
}
