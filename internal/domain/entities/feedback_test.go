package entities_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuspulse/feedback-service/internal/domain/entities"
)

func TestRating_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    entities.Rating
		wantErr bool
	}{
		{name: "number", input: `4`, want: 4},
		{name: "numeric string", input: `"5"`, want: 5},
		{name: "padded string", input: `" 3 "`, want: 3},
		{name: "integral float", input: `2.0`, want: 2},
		{name: "empty string is missing", input: `""`, want: 0},
		{name: "null is missing", input: `null`, want: 0},
		{name: "out of range still decodes", input: `9`, want: 9},
		{name: "fraction", input: `3.5`, wantErr: true},
		{name: "word", input: `"great"`, wantErr: true},
		{name: "boolean", input: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r entities.Rating
			err := json.Unmarshal([]byte(tt.input), &r)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, r)
		})
	}
}

func TestRating_Valid(t *testing.T) {
	assert.False(t, entities.Rating(0).Valid())
	assert.True(t, entities.Rating(1).Valid())
	assert.True(t, entities.Rating(5).Valid())
	assert.False(t, entities.Rating(6).Valid())
	assert.False(t, entities.Rating(-1).Valid())
}

func TestFeedbackStatus_Valid(t *testing.T) {
	assert.True(t, entities.FeedbackStatusPending.Valid())
	assert.True(t, entities.FeedbackStatusResponded.Valid())
	assert.False(t, entities.FeedbackStatusReviewed.Valid())
	assert.False(t, entities.FeedbackStatusArchived.Valid())
}

func TestFeedback_DisplayName(t *testing.T) {
	student := &entities.StudentSummary{ID: "s1", Name: "Ada Lovelace", Email: "ada@example.edu"}

	assert.Equal(t, "Anonymous", (&entities.Feedback{IsAnonymous: true, Student: student}).DisplayName())
	assert.Equal(t, "Ada Lovelace", (&entities.Feedback{Student: student}).DisplayName())
	assert.Equal(t, "N/A", (&entities.Feedback{}).DisplayName())
}

func TestStudent_MatchesDOB(t *testing.T) {
	dob, err := entities.ParseDOB("2001-07-14")
	require.NoError(t, err)
	s := &entities.Student{DOB: dob}

	sameDayEvening, err := entities.ParseDOB("2001-07-14T22:45:00+02:00")
	require.NoError(t, err)
	assert.True(t, s.MatchesDOB(sameDayEvening))

	for _, other := range []string{"2002-07-14", "2001-08-14", "2001-07-15"} {
		d, err := entities.ParseDOB(other)
		require.NoError(t, err)
		assert.False(t, s.MatchesDOB(d), other)
	}
}

func TestParseDOB_Invalid(t *testing.T) {
	_, err := entities.ParseDOB("14/07/2001")
	assert.Error(t, err)
}
