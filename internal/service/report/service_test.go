package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minetrack/minetrack-backend-go/internal/domain/device"
	"github.com/minetrack/minetrack-backend-go/internal/domain/employee"
	"github.com/minetrack/minetrack-backend-go/internal/domain/event"
	"github.com/minetrack/minetrack-backend-go/internal/domain/medical"
	"github.com/minetrack/minetrack-backend-go/internal/domain/report"
	"github.com/minetrack/minetrack-backend-go/internal/pkg/timeutil"
)

type stubEventRepo struct {
	event.Repository

	turnstile []event.TurnstileEvent
	pairs     []event.DirectionalPair
}

func (s *stubEventRepo) ListTurnstile(_ context.Context, _, _ time.Time) ([]event.TurnstileEvent, error) {
	return s.turnstile, nil
}

func (s *stubEventRepo) LastDirectionalByEmployee(_ context.Context, _, _ event.Type) ([]event.DirectionalPair, error) {
	return s.pairs, nil
}

type stubEmployeeRepo struct {
	employee.Repository
	byID map[int64]employee.Employee
}

func (s *stubEmployeeRepo) ListByIDs(_ context.Context, ids []int64) ([]employee.Employee, error) {
	out := make([]employee.Employee, 0, len(ids))
	for _, id := range ids {
		if emp, ok := s.byID[id]; ok {
			out = append(out, emp)
		}
	}
	return out, nil
}

type stubMedicalRepo struct {
	medical.Repository
	exams []medical.Exam
}

func (s *stubMedicalRepo) ListForLatestPerEmployee(_ context.Context, _ []string, _, _ *time.Time) ([]medical.Exam, error) {
	return s.exams, nil
}

type stubDeviceRepo struct {
	device.Repository
}

func (s *stubDeviceRepo) ListByType(_ context.Context, _ device.Type) ([]device.Device, error) {
	return []device.Device{{ID: 1, Name: "ESMO-1", DeviceType: device.TypeEsmo}}, nil
}

func newReportFixture(events *stubEventRepo, medRepo *stubMedicalRepo, inHosts, outHosts []string) *ReportServiceImpl {
	if medRepo == nil {
		medRepo = &stubMedicalRepo{}
	}
	employees := &stubEmployeeRepo{byID: map[int64]employee.Employee{
		1: {ID: 1, EmployeeNo: "M-1", FirstName: "Aziz", LastName: "Karimov"},
		2: {ID: 2, EmployeeNo: "M-2", FirstName: "Nilufar", LastName: "Rashidova"},
	}}
	svc := NewReportService(events, medRepo, employees, &stubDeviceRepo{}, inHosts, outHosts)
	return svc.(*ReportServiceImpl)
}

func facility(t *testing.T, hhmm string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04", "2025-03-10 "+hhmm, timeutil.FacilityZone)
	require.NoError(t, err)
	return ts
}

func TestDailyMineSummaryFold(t *testing.T) {
	// M-1 entered at 08:00 and is still inside; M-2 did 07:00-09:00.
	events := &stubEventRepo{turnstile: []event.TurnstileEvent{
		{ID: 1, EmployeeID: 2, EventType: event.TypeTurnstileIn, EventTS: facility(t, "07:00")},
		{ID: 2, EmployeeID: 2, EventType: event.TypeTurnstileOut, EventTS: facility(t, "09:00")},
		{ID: 3, EmployeeID: 1, EventType: event.TypeTurnstileIn, EventTS: facility(t, "08:00")},
	}}
	svc := newReportFixture(events, nil, nil, nil)
	svc.now = func() time.Time { return facility(t, "10:05") }

	rows, err := svc.DailyMineSummary(context.Background(), facility(t, "12:00"))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byNo := map[string]report.DailySummaryRow{}
	for _, r := range rows {
		byNo[r.EmployeeNo] = r
	}

	m1 := byNo["M-1"]
	assert.True(t, m1.IsInside)
	assert.True(t, m1.EnteredToday)
	assert.False(t, m1.ExitedToday)
	assert.Nil(t, m1.LastOut)
	assert.Equal(t, 125, m1.TotalMinutes) // 08:00 -> 10:05
	assert.Equal(t, "Karimov Aziz", m1.FullName)

	m2 := byNo["M-2"]
	assert.False(t, m2.IsInside)
	assert.True(t, m2.EnteredToday)
	assert.True(t, m2.ExitedToday)
	require.NotNil(t, m2.LastOut)
	assert.Equal(t, 120, m2.TotalMinutes) // 07:00 -> 09:00
}

func TestDailyMineSummaryReentrySuppressesLastOut(t *testing.T) {
	// Out at 10:00, back in at 11:00: inside, and the earlier exit is not
	// reported on the row.
	events := &stubEventRepo{turnstile: []event.TurnstileEvent{
		{ID: 1, EmployeeID: 1, EventType: event.TypeTurnstileIn, EventTS: facility(t, "08:00")},
		{ID: 2, EmployeeID: 1, EventType: event.TypeTurnstileOut, EventTS: facility(t, "10:00")},
		{ID: 3, EmployeeID: 1, EventType: event.TypeTurnstileIn, EventTS: facility(t, "11:00")},
	}}
	svc := newReportFixture(events, nil, nil, nil)
	svc.now = func() time.Time { return facility(t, "12:00") }

	rows, err := svc.DailyMineSummary(context.Background(), facility(t, "12:00"))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.True(t, rows[0].IsInside)
	assert.Nil(t, rows[0].LastOut)
	require.NotNil(t, rows[0].LastIn)
	assert.Equal(t, facility(t, "11:00").Unix(), rows[0].LastIn.Unix())
	assert.Equal(t, 60, rows[0].TotalMinutes) // 11:00 -> 12:00
}

func TestDailyMineSummaryHostOverride(t *testing.T) {
	// The lane at 10.0.0.7 is wired backwards: its IN events are exits.
	events := &stubEventRepo{turnstile: []event.TurnstileEvent{
		{ID: 1, EmployeeID: 1, EventType: event.TypeTurnstileIn, EventTS: facility(t, "08:00"), DeviceHost: "10.0.0.5"},
		{ID: 2, EmployeeID: 1, EventType: event.TypeTurnstileIn, EventTS: facility(t, "16:00"), DeviceHost: "10.0.0.7"},
	}}
	svc := newReportFixture(events, nil, nil, []string{"10.0.0.7"})
	svc.now = func() time.Time { return facility(t, "17:00") }

	rows, err := svc.DailyMineSummary(context.Background(), facility(t, "12:00"))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.False(t, rows[0].IsInside)
	assert.True(t, rows[0].ExitedToday)
	assert.Equal(t, 480, rows[0].TotalMinutes) // 08:00 -> 16:00
}

func TestTotalMinutes(t *testing.T) {
	in := facility(t, "08:00")
	out := facility(t, "10:05")
	now := facility(t, "09:30")
	dayEnd := facility(t, "23:59")

	assert.Equal(t, 125, totalMinutes(&in, &out, false, now, dayEnd))
	assert.Equal(t, 90, totalMinutes(&in, nil, true, now, dayEnd))
	// Inside past the day end clamps to the day end.
	lateNow := facility(t, "23:59").Add(3 * time.Hour)
	assert.Equal(t, 959, totalMinutes(&in, nil, true, lateNow, dayEnd))
	// Outside with no exit, or no entry at all, is zero.
	assert.Equal(t, 0, totalMinutes(&in, nil, false, now, dayEnd))
	assert.Equal(t, 0, totalMinutes(nil, &out, false, now, dayEnd))
	// A clock skew making out < in never goes negative.
	early := in.Add(-10 * time.Minute)
	assert.Equal(t, 0, totalMinutes(&in, &early, false, now, dayEnd))
}

func TestInsideMineCutoff(t *testing.T) {
	now := facility(t, "12:00")
	fresh := now.Add(-2 * time.Hour)
	stale := now.Add(-30 * time.Hour)
	earlierOut := now.Add(-3 * time.Hour)
	laterOut := now.Add(-1 * time.Hour)

	events := &stubEventRepo{pairs: []event.DirectionalPair{
		{EmployeeID: 1, LastIn: &fresh},                       // inside, never left
		{EmployeeID: 2, LastIn: &stale},                       // stale entry, missed exit
		{EmployeeID: 3, LastIn: &fresh, LastOut: &earlierOut}, // re-entered after leaving
		{EmployeeID: 4, LastIn: &fresh, LastOut: &laterOut},   // left after entering
	}}
	svc := newReportFixture(events, nil, nil, nil)
	svc.now = func() time.Time { return now }

	items, err := svc.InsideMine(context.Background())
	require.NoError(t, err)

	require.Len(t, items, 2)
	ids := []int64{items[0].EmployeeID, items[1].EmployeeID}
	assert.ElementsMatch(t, []int64{1, 3}, ids)
}

func TestLatestExamPerEmployeeTieBreak(t *testing.T) {
	ts := facility(t, "07:55")
	earlier := facility(t, "07:00")
	exams := []medical.Exam{
		// Ordered newest first, as the repository returns them.
		{ID: 3, EmployeeID: 1, Result: "failed", Timestamp: ts},
		{ID: 4, EmployeeID: 1, Result: "passed", Timestamp: ts}, // same second, pass wins
		{ID: 1, EmployeeID: 1, Result: "passed", Timestamp: earlier},
		{ID: 2, EmployeeID: 2, Result: "ko'rik", Timestamp: ts},
	}

	latest := latestExamPerEmployee(exams)
	require.Len(t, latest, 2)
	assert.Equal(t, "passed", latest[1].Result)
	assert.Equal(t, "ko'rik", latest[2].Result)
}

func TestEsmoSummary24hBuckets(t *testing.T) {
	ts := facility(t, "07:55")
	med := &stubMedicalRepo{exams: []medical.Exam{
		{ID: 1, EmployeeID: 1, Result: "passed", Timestamp: ts},
		{ID: 2, EmployeeID: 2, Result: "ko'rik", Timestamp: ts},
		{ID: 3, EmployeeID: 3, Result: "failed", Timestamp: ts},
		{ID: 4, EmployeeID: 4, Result: "passed", Timestamp: ts},
	}}
	svc := newReportFixture(&stubEventRepo{}, med, nil, nil)

	summary, err := svc.EsmoSummary24h(context.Background(), facility(t, "12:00"))
	require.NoError(t, err)

	assert.Equal(t, int64(4), summary.Total)
	assert.Equal(t, int64(2), summary.Passed)
	assert.Equal(t, int64(1), summary.Review)
	assert.Equal(t, int64(1), summary.Failed)
}
