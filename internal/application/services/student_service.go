package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campuspulse/feedback-service/internal/domain/entities"
	"github.com/campuspulse/feedback-service/internal/domain/repositories"
	"github.com/campuspulse/feedback-service/internal/domain/validation"
	"github.com/campuspulse/feedback-service/internal/infrastructure/observability"
	apperrors "github.com/campuspulse/feedback-service/pkg/errors"
)

// SignupInput is the body of a signup request.
type SignupInput struct {
	Email string `json:"email" validate:"email"`
	Name  string `json:"name" validate:"min=2,max=50"`
	DOB   string `json:"dob"`
}

// LoginInput is the body of a login request.
type LoginInput struct {
	Email string `json:"email"`
	DOB   string `json:"dob"`
}

// StudentService handles student signup and login. Login only checks that
// the email and date of birth belong together; it issues no credential.
type StudentService struct {
	repo repositories.StudentRepository
	now  func() time.Time
}

// NewStudentService creates a new student service
func NewStudentService(repo repositories.StudentRepository) *StudentService {
	return &StudentService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Signup creates a student account
func (s *StudentService) Signup(ctx context.Context, input SignupInput) (*entities.Student, error) {
	input.Email = entities.NormalizeEmail(input.Email)
	input.Name = strings.TrimSpace(input.Name)
	input.DOB = strings.TrimSpace(input.DOB)

	if input.Email == "" || input.Name == "" || input.DOB == "" {
		return nil, apperrors.NewValidationError("all fields are required")
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	dob, err := entities.ParseDOB(input.DOB)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	now := s.now()
	if dob.After(now) {
		return nil, apperrors.NewValidationError("date of birth cannot be in the future")
	}

	if _, err := s.repo.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewConflictError("email already registered")
	} else if !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		return nil, err
	}

	student := &entities.Student{
		ID:        uuid.New().String(),
		Email:     input.Email,
		Name:      input.Name,
		DOB:       dob,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		if !apperrors.IsType(err, apperrors.ErrorTypeConflict) {
			observability.LoggerFromContext(ctx).Error().Err(err).Msg("failed to create student")
		}
		return nil, err
	}

	return student, nil
}

// Login returns the student whose email and date of birth match. Only the
// calendar date of dob is compared.
func (s *StudentService) Login(ctx context.Context, input LoginInput) (*entities.Student, error) {
	email := entities.NormalizeEmail(input.Email)
	rawDOB := strings.TrimSpace(input.DOB)
	if email == "" || rawDOB == "" {
		return nil, apperrors.NewValidationError("email and date of birth are required")
	}

	dob, err := entities.ParseDOB(rawDOB)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	student, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil, apperrors.NewUnauthorizedError("user not found")
		}
		return nil, err
	}

	if !student.MatchesDOB(dob) {
		return nil, apperrors.NewUnauthorizedError("invalid credentials")
	}
	return student, nil
}
