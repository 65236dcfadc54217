package entities

import (
	"fmt"
	"strings"
	"time"
)

// Student is a student account created at signup. Identity is asserted by
// email and date of birth only.
type Student struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	DOB       time.Time `json:"dob" db:"dob"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Summary returns the public view of the student.
func (s *Student) Summary() *StudentSummary {
	return &StudentSummary{ID: s.ID, Name: s.Name, Email: s.Email}
}

// MatchesDOB compares calendar dates only; time of day is ignored.
func (s *Student) MatchesDOB(dob time.Time) bool {
	y1, m1, d1 := s.DOB.UTC().Date()
	y2, m2, d2 := dob.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

var dobLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseDOB parses a date of birth and keeps the calendar date as written by
// the client, normalised to UTC midnight.
func ParseDOB(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dobLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return CalendarDate(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date format %q, please use YYYY-MM-DD", value)
}

// CalendarDate drops the time of day from t, keeping the date in t's own location.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NormalizeEmail trims and lower-cases an address the way it is stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
