package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/campuspulse/feedback-service/internal/domain/entities"
)

func sampleRecords() []*entities.Feedback {
	created := time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC)
	return []*entities.Feedback{
		{
			ID:               "f1",
			CourseContent:    4,
			TeachingMethods:  5,
			CampusFacilities: 2,
			Comments:         "Great labs, but \"wifi\" is slow,\nespecially in block C",
			Student:          &entities.StudentSummary{ID: "s1", Name: "Grace Hopper", Email: "grace@example.edu"},
			Status:           entities.FeedbackStatusResponded,
			Response:         "Router upgrade scheduled",
			CreatedAt:        created,
		},
		{
			ID:               "f2",
			CourseContent:    3,
			TeachingMethods:  3,
			CampusFacilities: 3,
			IsAnonymous:      true,
			StudentID:        "s2",
			Student:          &entities.StudentSummary{ID: "s2", Name: "Alan Turing", Email: "alan@example.edu"},
			Status:           entities.FeedbackStatusPending,
			CreatedAt:        created.AddDate(0, 1, 0),
		},
		{
			ID:               "f3",
			CourseContent:    1,
			TeachingMethods:  2,
			CampusFacilities: 1,
			Status:           entities.FeedbackStatusPending,
			CreatedAt:        created.AddDate(0, 0, 1),
		},
	}
}

func TestNewEncoder(t *testing.T) {
	enc, err := NewEncoder("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, enc.Extension())

	enc, err = NewEncoder("XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, enc.Extension())

	_, err = NewEncoder("pdf")
	assert.Error(t, err)
}

func TestCSVEncoder_RoundTripsFreeText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSVEncoder{}.Encode(&buf, sampleRecords()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []string{
		"3/9/2024",
		"Grace Hopper",
		"4", "5", "2",
		"Great labs, but \"wifi\" is slow,\nespecially in block C",
		"responded",
		"Router upgrade scheduled",
	}, rows[1])
	assert.Equal(t, "Anonymous", rows[2][1])
	assert.Equal(t, "No response", rows[2][7])
	assert.Equal(t, "N/A", rows[3][1])
}

func TestCSVEncoder_AnonymousNeverLeaksIdentity(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSVEncoder{}.Encode(&buf, sampleRecords()[1:2]))

	out := buf.String()
	assert.NotContains(t, out, "Alan Turing")
	assert.NotContains(t, out, "alan@example.edu")
	assert.NotContains(t, out, "s2")
}

func TestCSVEncoder_EmptyWritesHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSVEncoder{}.Encode(&buf, nil))
	assert.Equal(t, "Date,Student,Course Content,Teaching Methods,Facilities,Comments,Status,Response\n", buf.String())
}

func TestXLSXEncoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, XLSXEncoder{}.Encode(&buf, sampleRecords()))

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, Header, rows[0])
	assert.Equal(t, "Grace Hopper", rows[1][1])
	assert.Equal(t, "4", rows[1][2])
	assert.Equal(t, "Anonymous", rows[2][1])
	for _, cell := range rows[2] {
		assert.NotContains(t, cell, "Alan")
	}
}
