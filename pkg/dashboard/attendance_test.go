package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minetrack/minetrack-backend-go/internal/pkg/timeutil"
	"github.com/minetrack/minetrack-backend-go/pkg/client"
)

func localTime(t *testing.T, hhmm string) *time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04", "2025-03-10 "+hhmm, timeutil.FacilityZone)
	require.NoError(t, err)
	return &ts
}

func TestSortRowsByActivity(t *testing.T) {
	// M-1 is inside since 08:00; M-2 exited at 09:00 and sorts first because
	// the exit is the later activity.
	rows := []client.DailySummaryRow{
		{EmployeeNo: "M-1", LastIn: localTime(t, "08:00"), IsInside: true},
		{EmployeeNo: "M-2", LastIn: localTime(t, "07:00"), LastOut: localTime(t, "09:00")},
	}
	SortRows(rows)

	assert.Equal(t, "M-2", rows[0].EmployeeNo)
	assert.Equal(t, "M-1", rows[1].EmployeeNo)
	assert.False(t, rows[0].IsInside)
	assert.True(t, rows[1].IsInside)
}

func TestSortRowsNoActivityLast(t *testing.T) {
	rows := []client.DailySummaryRow{
		{EmployeeNo: "idle-a"},
		{EmployeeNo: "active", LastIn: localTime(t, "08:00")},
		{EmployeeNo: "idle-b"},
	}
	SortRows(rows)

	assert.Equal(t, "active", rows[0].EmployeeNo)
	// Stable: rows without activity keep their relative order.
	assert.Equal(t, "idle-a", rows[1].EmployeeNo)
	assert.Equal(t, "idle-b", rows[2].EmployeeNo)
}

func TestSortRowsStableOnTies(t *testing.T) {
	ts := localTime(t, "08:00")
	rows := []client.DailySummaryRow{
		{EmployeeNo: "a", LastIn: ts},
		{EmployeeNo: "b", LastIn: ts},
		{EmployeeNo: "c", LastIn: ts},
	}
	SortRows(rows)
	assert.Equal(t, "a", rows[0].EmployeeNo)
	assert.Equal(t, "b", rows[1].EmployeeNo)
	assert.Equal(t, "c", rows[2].EmployeeNo)
}

func TestBuildAttendanceCounters(t *testing.T) {
	now := (*localTime(t, "12:00")).UTC()
	rows := []client.DailySummaryRow{
		{EmployeeNo: "in-1", LastIn: localTime(t, "08:00"), IsInside: true, EnteredToday: true},
		{EmployeeNo: "in-2", LastIn: localTime(t, "09:00"), IsInside: true, EnteredToday: true},
		{EmployeeNo: "out-1", LastIn: localTime(t, "07:00"), LastOut: localTime(t, "10:00"), EnteredToday: true, ExitedToday: true},
		{EmployeeNo: "idle"},
	}
	view := BuildAttendance(rows, now)

	assert.Equal(t, "2025-03-10", view.Day)
	assert.Equal(t, 2, view.InsideCount)
	assert.Equal(t, 1, view.OutsideCount)
	assert.Len(t, view.Rows, 4)
	assert.Equal(t, "out-1", view.Rows[0].EmployeeNo)
}

func TestBuildAttendanceDropsOtherDays(t *testing.T) {
	now := (*localTime(t, "00:30")).UTC()
	yesterday := time.Date(2025, 3, 9, 23, 50, 0, 0, timeutil.FacilityZone)
	rows := []client.DailySummaryRow{
		{EmployeeNo: "stale", LastIn: &yesterday, IsInside: true, EnteredToday: true},
		{EmployeeNo: "fresh", LastIn: localTime(t, "00:10"), IsInside: true, EnteredToday: true},
	}
	view := BuildAttendance(rows, now)

	require.Len(t, view.Rows, 1)
	assert.Equal(t, "fresh", view.Rows[0].EmployeeNo)
	assert.Equal(t, 1, view.InsideCount)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "2h 5m", FormatDuration(125))
	assert.Equal(t, "0h 0m", FormatDuration(0))
	assert.Equal(t, "0h 0m", FormatDuration(-7))
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "—", FormatClock(nil))

	ts := time.Date(2025, 3, 10, 3, 15, 0, 0, time.UTC) // 08:15 at UTC+5
	assert.Equal(t, "08:15", FormatClock(&ts))
}

func TestDeviceOnline(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	recent := now.Add(-9 * time.Minute)
	stale := now.Add(-11 * time.Minute)

	assert.True(t, DeviceOnline(&recent, now))
	assert.False(t, DeviceOnline(&stale, now))
	assert.False(t, DeviceOnline(nil, now))
}
