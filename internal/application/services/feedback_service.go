package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campuspulse/feedback-service/internal/domain/entities"
	"github.com/campuspulse/feedback-service/internal/domain/providers"
	"github.com/campuspulse/feedback-service/internal/domain/repositories"
	"github.com/campuspulse/feedback-service/internal/domain/validation"
	"github.com/campuspulse/feedback-service/internal/infrastructure/observability"
	"github.com/campuspulse/feedback-service/internal/loaders"
	apperrors "github.com/campuspulse/feedback-service/pkg/errors"
)

// StatusAll is the listing filter that matches every status.
const StatusAll = "all"

// SubmitFeedbackInput is the body of a feedback submission.
type SubmitFeedbackInput struct {
	CourseContent    entities.Rating `json:"courseContent" validate:"rating"`
	TeachingMethods  entities.Rating `json:"teachingMethods" validate:"rating"`
	CampusFacilities entities.Rating `json:"campusFacilities" validate:"rating"`
	Comments         string          `json:"comments" validate:"max=2000"`
	IsAnonymous      bool            `json:"isAnonymous"`
	StudentID        string          `json:"studentId"`
}

// Validate checks the submission without touching any store.
func (in *SubmitFeedbackInput) Validate() error {
	if in.CourseContent == 0 || in.TeachingMethods == 0 || in.CampusFacilities == 0 {
		return apperrors.NewValidationError("all rating fields are required")
	}
	in.StudentID = strings.TrimSpace(in.StudentID)
	return validation.Struct(in)
}

type statusQuery struct {
	Status entities.FeedbackStatus `json:"status" validate:"omitempty,feedback_status"`
}

// ParseStatusFilter maps a status query parameter to a store filter.
// "" and "all" match everything.
func ParseStatusFilter(status string) (repositories.FeedbackFilter, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == StatusAll {
		status = ""
	}
	q := statusQuery{Status: entities.FeedbackStatus(status)}
	if err := validation.Struct(q); err != nil {
		return repositories.FeedbackFilter{}, err
	}
	return repositories.FeedbackFilter{Status: q.Status}, nil
}

// FeedbackService handles feedback submission, listing and responses.
type FeedbackService struct {
	repo     repositories.FeedbackRepository
	students repositories.StudentRepository
	eventBus providers.EventBus
	metrics  *observability.Metrics
	guarded  bool
	now      func() time.Time
}

// NewFeedbackService creates a new feedback service. With guarded set, a
// record can be responded to only once.
func NewFeedbackService(repo repositories.FeedbackRepository, students repositories.StudentRepository, guarded bool) *FeedbackService {
	return &FeedbackService{
		repo:     repo,
		students: students,
		guarded:  guarded,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetEventBus enables lifecycle event publishing
func (s *FeedbackService) SetEventBus(eventBus providers.EventBus) {
	s.eventBus = eventBus
}

// SetMetrics enables feedback counters
func (s *FeedbackService) SetMetrics(metrics *observability.Metrics) {
	s.metrics = metrics
}

// Submit validates and stores a new pending feedback record.
func (s *FeedbackService) Submit(ctx context.Context, input SubmitFeedbackInput) (*entities.Feedback, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var student *entities.Student
	studentID := input.StudentID
	if studentID != "" {
		st, err := s.students.GetByID(ctx, studentID)
		switch {
		case err == nil:
			if !input.IsAnonymous {
				student = st
			}
		case !apperrors.IsType(err, apperrors.ErrorTypeNotFound):
			return nil, err
		case input.IsAnonymous:
			// Anonymous records never show the reference, so a stale one is dropped.
			studentID = ""
		default:
			return nil, apperrors.NewValidationError("student not found")
		}
	}

	now := s.now()
	feedback := &entities.Feedback{
		ID:               uuid.New().String(),
		CourseContent:    input.CourseContent,
		TeachingMethods:  input.TeachingMethods,
		CampusFacilities: input.CampusFacilities,
		Comments:         input.Comments,
		IsAnonymous:      input.IsAnonymous,
		StudentID:        studentID,
		Status:           entities.FeedbackStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, feedback); err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).Msg("failed to store feedback")
		return nil, err
	}

	if student != nil {
		feedback.Student = student.Summary()
	}

	observability.RecordFeedbackEvent(ctx, s.metrics, false)
	s.publish(ctx, entities.FeedbackEventSubmitted, feedback)
	return feedback, nil
}

// List returns feedback matching status, newest first, with non-anonymous
// records resolved to their student.
func (s *FeedbackService) List(ctx context.Context, status string) ([]*entities.Feedback, error) {
	filter, err := ParseStatusFilter(status)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.List(ctx, filter)
	if err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).Msg("failed to list feedback")
		return nil, err
	}

	if err := s.resolveStudents(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

// Respond records the admin response and marks the feedback responded.
func (s *FeedbackService) Respond(ctx context.Context, id, response string) (*entities.Feedback, error) {
	response = strings.TrimSpace(response)
	if response == "" {
		return nil, apperrors.NewValidationError("response is required")
	}

	feedback, err := s.repo.UpdateResponse(ctx, id, repositories.ResponseUpdate{
		Response:       response,
		UpdatedAt:      s.now(),
		RequirePending: s.guarded,
	})
	if err != nil {
		if s.guarded && apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			// The guarded write also misses responded records; tell them apart.
			if _, getErr := s.repo.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, apperrors.NewConflictError(entities.ErrAlreadyResponded.Error())
		}
		if !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			observability.LoggerFromContext(ctx).Error().Err(err).Str("feedback_id", id).Msg("failed to update feedback")
		}
		return nil, err
	}

	if err := s.resolveStudents(ctx, []*entities.Feedback{feedback}); err != nil {
		return nil, err
	}

	observability.RecordFeedbackEvent(ctx, s.metrics, true)
	s.publish(ctx, entities.FeedbackEventResponded, feedback)
	return feedback, nil
}

func (s *FeedbackService) resolveStudents(ctx context.Context, records []*entities.Feedback) error {
	var ids []string
	seen := make(map[string]struct{})
	for _, f := range records {
		if f.IsAnonymous || f.StudentID == "" {
			continue
		}
		if _, ok := seen[f.StudentID]; ok {
			continue
		}
		seen[f.StudentID] = struct{}{}
		ids = append(ids, f.StudentID)
	}
	if len(ids) == 0 {
		return nil
	}

	l := loaders.For(ctx)
	if l == nil {
		l = loaders.NewLoaders(s.students)
	}

	students, errs := l.StudentLoader.LoadMany(ctx, ids)()
	for _, err := range errs {
		if err != nil {
			return apperrors.NewInternalError("failed to resolve students", err)
		}
	}

	byID := make(map[string]*entities.Student, len(students))
	for _, st := range students {
		if st != nil {
			byID[st.ID] = st
		}
	}
	for _, f := range records {
		if f.IsAnonymous {
			continue
		}
		if st, ok := byID[f.StudentID]; ok {
			f.Student = st.Summary()
		}
	}
	return nil
}

func (s *FeedbackService) publish(ctx context.Context, eventType entities.FeedbackEventType, feedback *entities.Feedback) {
	if s.eventBus == nil {
		return
	}

	event := &entities.FeedbackEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		FeedbackID: feedback.ID,
		Status:     feedback.Status,
		Timestamp:  s.now(),
	}
	if err := s.eventBus.Publish(ctx, providers.EventChannelFeedback, event); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("feedback_id", feedback.ID).Msg("failed to publish feedback event")
	}
}
