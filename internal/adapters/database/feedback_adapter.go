package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/campuspulse/feedback-service/internal/domain/entities"
	"github.com/campuspulse/feedback-service/internal/domain/repositories"
	"github.com/campuspulse/feedback-service/internal/infrastructure/clients/postgres"
	apperrors "github.com/campuspulse/feedback-service/pkg/errors"
)

const feedbackTable = "feedback"

var feedbackColumns = []interface{}{
	"id",
	"course_content",
	"teaching_methods",
	"campus_facilities",
	"comments",
	"is_anonymous",
	"student_id",
	"status",
	"response",
	"created_at",
	"updated_at",
}

// FeedbackAdapter implements feedback persistence in Postgres.
type FeedbackAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

var _ repositories.FeedbackRepository = (*FeedbackAdapter)(nil)

// NewFeedbackAdapter creates a new feedback adapter.
func NewFeedbackAdapter(client *postgres.Client) *FeedbackAdapter {
	return &FeedbackAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a feedback record.
func (a *FeedbackAdapter) Create(ctx context.Context, feedback *entities.Feedback) error {
	if feedback == nil {
		return apperrors.NewInternalError("feedback is nil", fmt.Errorf("feedback is nil"))
	}

	record := goqu.Record{
		"id":                feedback.ID,
		"course_content":    int(feedback.CourseContent),
		"teaching_methods":  int(feedback.TeachingMethods),
		"campus_facilities": int(feedback.CampusFacilities),
		"comments":          feedback.Comments,
		"is_anonymous":      feedback.IsAnonymous,
		"student_id":        sql.NullString{String: feedback.StudentID, Valid: feedback.StudentID != ""},
		"status":            string(feedback.Status),
		"response":          sql.NullString{String: feedback.Response, Valid: feedback.Response != ""},
		"created_at":        feedback.CreatedAt,
		"updated_at":        feedback.UpdatedAt,
	}

	query, args, err := a.db.Insert(feedbackTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build feedback insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create feedback", err)
	}

	return nil
}

// GetByID retrieves a feedback record by ID
func (a *FeedbackAdapter) GetByID(ctx context.Context, id string) (*entities.Feedback, error) {
	query, args, err := a.db.Select(feedbackColumns...).From(feedbackTable).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	f, err := scanFeedback(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("feedback not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to fetch feedback", err)
	}
	return f, nil
}

// List returns feedback matching the filter, newest first
func (a *FeedbackAdapter) List(ctx context.Context, filter repositories.FeedbackFilter) ([]*entities.Feedback, error) {
	ds := a.db.Select(feedbackColumns...).From(feedbackTable)
	if filter.Status != "" {
		ds = ds.Where(goqu.Ex{"status": string(filter.Status)})
	}

	query, args, err := ds.Order(goqu.I("created_at").Desc()).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to fetch feedback", err)
	}
	defer rows.Close()

	var records []*entities.Feedback
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan feedback", err)
		}
		records = append(records, f)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate feedback", err)
	}

	return records, nil
}

// UpdateResponse writes the admin response in one UPDATE ... RETURNING
func (a *FeedbackAdapter) UpdateResponse(ctx context.Context, id string, update repositories.ResponseUpdate) (*entities.Feedback, error) {
	where := goqu.Ex{"id": id}
	if update.RequirePending {
		where["status"] = string(entities.FeedbackStatusPending)
	}

	query, args, err := a.db.Update(feedbackTable).
		Set(goqu.Record{
			"response":   update.Response,
			"status":     string(entities.FeedbackStatusResponded),
			"updated_at": update.UpdatedAt,
		}).
		Where(where).
		Returning(feedbackColumns...).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build update query", err)
	}

	f, err := scanFeedback(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("feedback not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to update feedback", err)
	}
	return f, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFeedback(row rowScanner) (*entities.Feedback, error) {
	f := &entities.Feedback{}
	var studentID, response sql.NullString
	var status string

	err := row.Scan(
		&f.ID,
		&f.CourseContent,
		&f.TeachingMethods,
		&f.CampusFacilities,
		&f.Comments,
		&f.IsAnonymous,
		&studentID,
		&status,
		&response,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	f.StudentID = studentID.String
	f.Response = response.String
	f.Status = entities.FeedbackStatus(status)
	return f, nil
}
