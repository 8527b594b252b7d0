package dashboard

import (
	"sort"
	"time"

	"github.com/minetrack/minetrack-backend-go/internal/pkg/timeutil"
	"github.com/minetrack/minetrack-backend-go/pkg/client"
)

// deviceOnlineWindow is the single definition of "online": a device that
// reported within this window counts as up.
const deviceOnlineWindow = 10 * time.Minute

// Placeholder rendered for a missing timestamp. Never show a zero time.
const TimePlaceholder = "—"

// Attendance is the daily view over the backend's aggregation rows, with
// the counters and ordering the main screen shows.
type Attendance struct {
	Day          string
	Rows         []client.DailySummaryRow
	InsideCount  int
	OutsideCount int
}

// BuildAttendance filters rows to today's facility-local day, orders them by
// recent activity and computes the inside/outside counters. Rows whose
// activity falls on another local day are dropped; the backend already
// buckets by day, this guards against a stale response around midnight.
func BuildAttendance(rows []client.DailySummaryRow, now time.Time) Attendance {
	day := timeutil.CurrentLocalDay(now)
	kept := make([]client.DailySummaryRow, 0, len(rows))
	inside, outside := 0, 0
	for _, row := range rows {
		if ts := activityTime(row); ts != nil && timeutil.CurrentLocalDay(*ts) != day {
			continue
		}
		kept = append(kept, row)
		if row.IsInside {
			inside++
		} else if row.EnteredToday {
			outside++
		}
	}
	SortRows(kept)
	return Attendance{Day: day, Rows: kept, InsideCount: inside, OutsideCount: outside}
}

// SortRows orders rows by most recent activity, newest first. Rows without
// any timestamp sort last. The sort is stable so equal-activity rows keep
// their fetch order.
func SortRows(rows []client.DailySummaryRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := activityTime(rows[i]), activityTime(rows[j])
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.After(*b)
	})
}

// activityTime is the later of last_in/last_out, nil when the row has none.
func activityTime(row client.DailySummaryRow) *time.Time {
	switch {
	case row.LastIn == nil:
		return row.LastOut
	case row.LastOut == nil:
		return row.LastIn
	case row.LastOut.After(*row.LastIn):
		return row.LastOut
	default:
		return row.LastIn
	}
}

// FormatDuration renders minutes as "{h}h {m}m", truncating.
func FormatDuration(minutes int) string {
	return timeutil.FormatMinutes(minutes)
}

// FormatClock renders a timestamp as facility-local HH:MM, or the
// placeholder when absent.
func FormatClock(t *time.Time) string {
	if t == nil {
		return TimePlaceholder
	}
	return t.In(timeutil.FacilityZone).Format("15:04")
}

// DeviceOnline reports whether a device's last_seen is recent enough to show
// it as up.
func DeviceOnline(lastSeen *time.Time, now time.Time) bool {
	if lastSeen == nil {
		return false
	}
	return now.Sub(*lastSeen) < deviceOnlineWindow
}
