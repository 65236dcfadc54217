package entities

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

// Rating bounds
const (
	MinRating = 1
	MaxRating = 5
)

// ErrInvalidRating is returned when a rating cannot be read as a whole number.
var ErrInvalidRating = errors.New("rating must be a whole number")

// Rating is a 1-5 score for one feedback category. Zero means "not supplied".
type Rating int

// Valid reports whether r lies in [MinRating, MaxRating].
func (r Rating) Valid() bool {
	return r >= MinRating && r <= MaxRating
}

// UnmarshalJSON accepts a JSON number or a numeric string ("4"), since the
// submission form posts select values as strings. Empty strings and null
// decode to zero.
func (r *Rating) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = 0
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return ErrInvalidRating
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*r = 0
			return nil
		}
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != float64(int(f)) {
			return ErrInvalidRating
		}
		n = int(f)
	}
	*r = Rating(n)
	return nil
}

// FeedbackStatus is the lifecycle stage of a feedback record
type FeedbackStatus string

const (
	FeedbackStatusPending   FeedbackStatus = "pending"
	FeedbackStatusResponded FeedbackStatus = "responded"

	// Reserved by the persisted schema; nothing produces these.
	FeedbackStatusReviewed FeedbackStatus = "reviewed"
	FeedbackStatusArchived FeedbackStatus = "archived"
)

// Valid reports whether s is a status the workflow can produce.
func (s FeedbackStatus) Valid() bool {
	return s == FeedbackStatusPending || s == FeedbackStatusResponded
}

// ErrAlreadyResponded is reported when a guarded response targets a record
// that is no longer pending.
var ErrAlreadyResponded = errors.New("feedback has already been responded to")

// StudentSummary is the resolved student reference shown to administrators.
type StudentSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Feedback is one student's rating submission plus an optional admin response.
type Feedback struct {
	ID               string          `json:"id" db:"id"`
	CourseContent    Rating          `json:"courseContent" db:"course_content"`
	TeachingMethods  Rating          `json:"teachingMethods" db:"teaching_methods"`
	CampusFacilities Rating          `json:"campusFacilities" db:"campus_facilities"`
	Comments         string          `json:"comments" db:"comments"`
	IsAnonymous      bool            `json:"isAnonymous" db:"is_anonymous"`
	StudentID        string          `json:"studentId,omitempty" db:"student_id"`
	Student          *StudentSummary `json:"student,omitempty" db:"-"`
	Status           FeedbackStatus  `json:"status" db:"status"`
	Response         string          `json:"response,omitempty" db:"response"`
	CreatedAt        time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time       `json:"updatedAt" db:"updated_at"`
}

// Ratings returns the three category ratings in display order.
func (f *Feedback) Ratings() [3]Rating {
	return [3]Rating{f.CourseContent, f.TeachingMethods, f.CampusFacilities}
}

// DisplayName is the student label used in listings and exports. Anonymous
// records never reveal the underlying student.
func (f *Feedback) DisplayName() string {
	if f.IsAnonymous {
		return "Anonymous"
	}
	if f.Student != nil && f.Student.Name != "" {
		return f.Student.Name
	}
	return "N/A"
}
