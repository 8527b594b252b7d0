package dashboard

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/minetrack/minetrack-backend-go/internal/pkg/timeutil"
	"github.com/minetrack/minetrack-backend-go/pkg/client"
)

// ErrNoRows means there is nothing to export; callers disable the action.
var ErrNoRows = errors.New("no rows to export")

var exportHeader = []string{
	"Employee No", "Full Name", "Last In", "Last Out", "Duration", "Inside",
}

func exportRecord(row client.DailySummaryRow) []string {
	inside := "no"
	if row.IsInside {
		inside = "yes"
	}
	return []string{
		row.EmployeeNo,
		row.FullName,
		FormatClock(row.LastIn),
		FormatClock(row.LastOut),
		FormatDuration(row.TotalMinutes),
		inside,
	}
}

// WriteCSV writes the full filtered row set (no pagination) as
// semicolon-delimited CSV, UTF-8 with BOM, every value quoted. The BOM and
// the forced quoting are for spreadsheet imports that otherwise guess the
// encoding and the delimiter wrong.
func WriteCSV(w io.Writer, rows []client.DailySummaryRow) error {
	if len(rows) == 0 {
		return ErrNoRows
	}
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}
	if err := writeCSVRecord(w, exportHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writeCSVRecord(w, exportRecord(row)); err != nil {
			return err
		}
	}
	return nil
}

// writeCSVRecord quotes every field unconditionally, doubling embedded
// quotes. encoding/csv quotes only when it must, which is exactly the
// behavior the spreadsheet imports choke on.
func writeCSVRecord(w io.Writer, fields []string) error {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteString("\r\n")
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write csv record: %w", err)
	}
	return nil
}

// ExportCSV renders rows to a CSV byte slice.
func ExportCSV(rows []client.DailySummaryRow) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportPDF renders the attendance table as a landscape A4 PDF with a title
// and the generation timestamp in facility-local time.
func ExportPDF(rows []client.DailySummaryRow, day string, now time.Time) ([]byte, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, tr("Daily Mine Summary — "+day), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	generated := now.In(timeutil.FacilityZone).Format("2006-01-02 15:04:05")
	pdf.CellFormat(0, 6, tr("Generated "+generated), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	widths := []float64{30, 90, 30, 30, 35, 20}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range exportHeader {
		pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range rows {
		for i, v := range exportRecord(row) {
			align := "L"
			if i >= 2 {
				align = "C"
			}
			pdf.CellFormat(widths[i], 6, tr(v), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
