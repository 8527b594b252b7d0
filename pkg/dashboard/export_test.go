package dashboard

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minetrack/minetrack-backend-go/pkg/client"
)

func exportRows(t *testing.T) []client.DailySummaryRow {
	t.Helper()
	return []client.DailySummaryRow{
		{EmployeeNo: "1042", FullName: "Karimov Aziz", TotalMinutes: 125,
			LastIn: localTime(t, "08:00"), LastOut: localTime(t, "10:05"), ExitedToday: true},
		{EmployeeNo: "1043", FullName: `Said "Usta" Rahimov`, TotalMinutes: 60,
			LastIn: localTime(t, "09:00"), IsInside: true},
	}
}

func TestExportCSV(t *testing.T) {
	data, err := ExportCSV(exportRows(t))
	require.NoError(t, err)

	// UTF-8 BOM for spreadsheet imports.
	require.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))

	body := string(data[3:])
	lines := strings.Split(strings.TrimRight(body, "\r\n"), "\r\n")
	require.Len(t, lines, 3)

	assert.Equal(t, `"Employee No";"Full Name";"Last In";"Last Out";"Duration";"Inside"`, lines[0])
	assert.Equal(t, `"1042";"Karimov Aziz";"08:00";"10:05";"2h 5m";"no"`, lines[1])
	// Embedded quotes are doubled.
	assert.Contains(t, lines[2], `"Said ""Usta"" Rahimov"`)
	// Inside row has no exit time.
	assert.Contains(t, lines[2], `"—"`)
}

func TestExportCSVRoundTrip(t *testing.T) {
	rows := exportRows(t)
	data, err := ExportCSV(rows)
	require.NoError(t, err)

	r := csv.NewReader(bytes.NewReader(data[3:]))
	r.Comma = ';'
	records, err := r.ReadAll()
	require.NoError(t, err)

	// Header plus one record per row.
	assert.Len(t, records, len(rows)+1)
	assert.Equal(t, "1042", records[1][0])
	assert.Equal(t, `Said "Usta" Rahimov`, records[2][1])
}

func TestExportEmpty(t *testing.T) {
	_, err := ExportCSV(nil)
	assert.ErrorIs(t, err, ErrNoRows)

	_, err = ExportPDF(nil, "2025-03-10", time.Now())
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestExportPDF(t *testing.T) {
	data, err := ExportPDF(exportRows(t), "2025-03-10", time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	assert.Greater(t, len(data), 500)
}
