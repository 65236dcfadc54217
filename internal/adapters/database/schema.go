package database

import (
	"context"

	"github.com/campuspulse/feedback-service/internal/infrastructure/clients/postgres"
	apperrors "github.com/campuspulse/feedback-service/pkg/errors"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS students (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		dob DATE NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS feedback (
		id TEXT PRIMARY KEY,
		course_content SMALLINT NOT NULL CHECK (course_content BETWEEN 1 AND 5),
		teaching_methods SMALLINT NOT NULL CHECK (teaching_methods BETWEEN 1 AND 5),
		campus_facilities SMALLINT NOT NULL CHECK (campus_facilities BETWEEN 1 AND 5),
		comments TEXT NOT NULL DEFAULT '',
		is_anonymous BOOLEAN NOT NULL DEFAULT FALSE,
		student_id TEXT REFERENCES students(id),
		status TEXT NOT NULL DEFAULT 'pending'
			CHECK (status IN ('pending', 'reviewed', 'responded', 'archived')),
		response TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_feedback_created_at ON feedback (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_feedback_status ON feedback (status)`,
}

// EnsureSchema creates the feedback tables and indexes when missing
func EnsureSchema(ctx context.Context, client *postgres.Client) error {
	for _, stmt := range schemaStatements {
		if _, err := client.DB().ExecContext(ctx, stmt); err != nil {
			return apperrors.NewInternalError("failed to apply schema", err)
		}
	}
	return nil
}
