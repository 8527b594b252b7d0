package http

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minetrack/minetrack-backend-go/internal/domain/event"
)

func filterFor(t *testing.T, rawQuery string) (event.Filter, error) {
	t.Helper()
	return parseEventFilter(httptest.NewRequest("GET", "/api/v1/events?"+rawQuery, nil))
}

func TestParseEventFilterDefaults(t *testing.T) {
	filter, err := filterFor(t, "")
	require.NoError(t, err)

	assert.Equal(t, 200, filter.Limit)
	assert.Nil(t, filter.DateFrom)
	assert.Nil(t, filter.Status)
	assert.Empty(t, filter.EmployeeNo)
}

func TestParseEventFilterFull(t *testing.T) {
	filter, err := filterFor(t,
		"employee_no=104&device_id=3&event_type=TURNSTILE_IN&status=REJECTED&limit=50")
	require.NoError(t, err)

	assert.Equal(t, "104", filter.EmployeeNo)
	require.NotNil(t, filter.DeviceID)
	assert.Equal(t, int64(3), *filter.DeviceID)
	require.NotNil(t, filter.EventType)
	assert.Equal(t, event.TypeTurnstileIn, *filter.EventType)
	require.NotNil(t, filter.Status)
	assert.Equal(t, event.StatusRejected, *filter.Status)
	assert.Equal(t, 50, filter.Limit)
}

func TestParseEventFilterDates(t *testing.T) {
	// RFC 3339 instants pass through.
	filter, err := filterFor(t, "date_from=2025-03-10T08%3A00%3A00%2B05%3A00")
	require.NoError(t, err)
	require.NotNil(t, filter.DateFrom)
	assert.Equal(t, time.Date(2025, 3, 10, 3, 0, 0, 0, time.UTC), filter.DateFrom.UTC())

	// Bare days become facility-local day bounds; date_to means end of day.
	filter, err = filterFor(t, "date_from=2025-03-10&date_to=2025-03-10")
	require.NoError(t, err)
	require.NotNil(t, filter.DateFrom)
	require.NotNil(t, filter.DateTo)
	assert.Equal(t, time.Date(2025, 3, 9, 19, 0, 0, 0, time.UTC), filter.DateFrom.UTC())
	assert.Equal(t, time.Date(2025, 3, 10, 19, 0, 0, 0, time.UTC), filter.DateTo.UTC())
}

func TestParseEventFilterRejectsBadInput(t *testing.T) {
	for _, q := range []string{
		"date_from=yesterday",
		"device_id=abc",
		"event_type=TELEPORT",
		"status=MAYBE",
		"limit=0",
		"limit=2001",
		"limit=ten",
	} {
		_, err := filterFor(t, q)
		assert.Error(t, err, "query %q", q)
	}

	// The cap itself is allowed.
	filter, err := filterFor(t, "limit=2000")
	require.NoError(t, err)
	assert.Equal(t, 2000, filter.Limit)
}
