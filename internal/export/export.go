// Package export writes feedback listings as downloadable tables.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/campuspulse/feedback-service/internal/domain/entities"
)

// Supported formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// DateLayout renders the creation date the way an en-US locale date string does.
const DateLayout = "1/2/2006"

// Header is the fixed column order of every export.
var Header = []string{
	"Date",
	"Student",
	"Course Content",
	"Teaching Methods",
	"Facilities",
	"Comments",
	"Status",
	"Response",
}

// Encoder serializes feedback records to a tabular file format.
type Encoder interface {
	ContentType() string
	Extension() string
	Encode(w io.Writer, records []*entities.Feedback) error
}

// NewEncoder returns the encoder for format, defaulting to CSV.
func NewEncoder(format string) (Encoder, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatCSV:
		return CSVEncoder{}, nil
	case FormatXLSX:
		return XLSXEncoder{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// Row returns the export cells for one record.
func Row(f *entities.Feedback) []string {
	response := f.Response
	if response == "" {
		response = "No response"
	}
	return []string{
		f.CreatedAt.Format(DateLayout),
		f.DisplayName(),
		strconv.Itoa(int(f.CourseContent)),
		strconv.Itoa(int(f.TeachingMethods)),
		strconv.Itoa(int(f.CampusFacilities)),
		f.Comments,
		string(f.Status),
		response,
	}
}

// CSVEncoder writes RFC 4180 CSV, quoting fields that contain commas,
// quotes or line breaks.
type CSVEncoder struct{}

func (CSVEncoder) ContentType() string { return "text/csv; charset=utf-8" }

func (CSVEncoder) Extension() string { return FormatCSV }

func (CSVEncoder) Encode(w io.Writer, records []*entities.Feedback) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, f := range records {
		if err := cw.Write(Row(f)); err != nil {
			return fmt.Errorf("failed to write csv row %s: %w", f.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// XLSXEncoder writes a single-sheet Excel workbook.
type XLSXEncoder struct{}

// SheetName is the worksheet holding the export.
const SheetName = "Feedback"

func (XLSXEncoder) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (XLSXEncoder) Extension() string { return FormatXLSX }

func (XLSXEncoder) Encode(w io.Writer, records []*entities.Feedback) error {
	book := excelize.NewFile()
	defer book.Close()

	if err := book.SetSheetName(book.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := book.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("failed to open sheet writer: %w", err)
	}

	bold, err := book.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = excelize.Cell{StyleID: bold, Value: h}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, f := range records {
		cells := Row(f)
		row := make([]interface{}, len(cells))
		for j, c := range cells {
			row[j] = c
		}
		// Ratings stay numeric so the sheet can be charted directly.
		row[2], row[3], row[4] = int(f.CourseContent), int(f.TeachingMethods), int(f.CampusFacilities)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write row %s: %w", f.ID, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if _, err := book.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
