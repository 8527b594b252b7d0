package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minetrack/minetrack-backend-go/internal/domain/device"
	"github.com/minetrack/minetrack-backend-go/internal/domain/employee"
	"github.com/minetrack/minetrack-backend-go/internal/domain/event"
)

type stubEventRepo struct {
	event.Repository

	byRawID map[string]event.Event
	created []event.Event
	esmoOK  bool
	nextID  int64
}

func (s *stubEventRepo) GetByRawID(_ context.Context, _ int64, rawID string) (event.Event, error) {
	if ev, ok := s.byRawID[rawID]; ok {
		return ev, nil
	}
	return event.Event{}, event.ErrEventNotFound
}

func (s *stubEventRepo) Create(_ context.Context, ev event.Event) (event.Event, error) {
	s.nextID++
	ev.ID = s.nextID
	s.created = append(s.created, ev)
	if s.byRawID == nil {
		s.byRawID = map[string]event.Event{}
	}
	s.byRawID[ev.RawID] = ev
	return ev, nil
}

func (s *stubEventRepo) HasEsmoOKSince(_ context.Context, _ int64, _, _ time.Time) (bool, error) {
	return s.esmoOK, nil
}

type stubDeviceRepo struct {
	device.Repository
	dev device.Device
}

func (s *stubDeviceRepo) GetByAPIKey(_ context.Context, apiKey string) (device.Device, error) {
	if apiKey != s.dev.APIKey {
		return device.Device{}, device.ErrInvalidAPIKey
	}
	return s.dev, nil
}

type stubEmployeeRepo struct {
	employee.Repository
	byNo map[string]employee.Employee
}

func (s *stubEmployeeRepo) GetByEmployeeNo(_ context.Context, no string) (employee.Employee, error) {
	if emp, ok := s.byNo[no]; ok {
		return emp, nil
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (s *stubEmployeeRepo) GetByExternalID(_ context.Context, _, _ string) (employee.Employee, error) {
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func newIngestFixture(esmoOK bool) (event.Service, *stubEventRepo) {
	events := &stubEventRepo{esmoOK: esmoOK}
	devices := &stubDeviceRepo{dev: device.Device{ID: 3, DeviceCode: "GATE_1", APIKey: "key-1"}}
	employees := &stubEmployeeRepo{byNo: map[string]employee.Employee{
		"1042": {ID: 9, EmployeeNo: "1042", FirstName: "Aziz", LastName: "Karimov", IsActive: true},
	}}
	return NewEventService(events, devices, employees, 6), events
}

func ingestItem(rawID string, typ event.Type) event.IngestItem {
	no := "1042"
	return event.IngestItem{
		DeviceCode: "GATE_1",
		RawID:      rawID,
		EventType:  typ,
		EventTS:    time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC),
		EmployeeNo: &no,
	}
}

func TestIngestAccepted(t *testing.T) {
	svc, repo := newIngestFixture(false)

	results, err := svc.Ingest(context.Background(), "key-1",
		event.IngestRequest{Events: []event.IngestItem{ingestItem("r-1", event.TypeTurnstileIn)}})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "ACCEPTED", results[0].Status)
	require.NotNil(t, results[0].EventID)

	require.Len(t, repo.created, 1)
	require.NotNil(t, repo.created[0].EmployeeID)
	assert.Equal(t, int64(9), *repo.created[0].EmployeeID)
	assert.Equal(t, event.StatusAccepted, repo.created[0].Status)
}

func TestIngestWrongAPIKey(t *testing.T) {
	svc, _ := newIngestFixture(false)

	_, err := svc.Ingest(context.Background(), "nope",
		event.IngestRequest{Events: []event.IngestItem{ingestItem("r-1", event.TypeTurnstileIn)}})
	assert.ErrorIs(t, err, device.ErrInvalidAPIKey)
}

func TestIngestDuplicate(t *testing.T) {
	svc, repo := newIngestFixture(false)
	ctx := context.Background()

	first, err := svc.Ingest(ctx, "key-1",
		event.IngestRequest{Events: []event.IngestItem{ingestItem("r-1", event.TypeTurnstileIn)}})
	require.NoError(t, err)

	second, err := svc.Ingest(ctx, "key-1",
		event.IngestRequest{Events: []event.IngestItem{ingestItem("r-1", event.TypeTurnstileIn)}})
	require.NoError(t, err)

	assert.Equal(t, "DUPLICATE", second[0].Status)
	require.NotNil(t, second[0].EventID)
	assert.Equal(t, *first[0].EventID, *second[0].EventID)
	// The replay inserted nothing.
	assert.Len(t, repo.created, 1)
}

func TestIngestUnknownEmployeePersistsRejection(t *testing.T) {
	svc, repo := newIngestFixture(false)

	item := ingestItem("r-2", event.TypeTurnstileIn)
	unknown := "9999"
	item.EmployeeNo = &unknown

	results, err := svc.Ingest(context.Background(), "key-1",
		event.IngestRequest{Events: []event.IngestItem{item}})
	require.NoError(t, err)

	assert.Equal(t, "REJECTED", results[0].Status)
	require.NotNil(t, results[0].RejectReason)
	assert.Equal(t, "unknown employee", *results[0].RejectReason)

	// The rejection is stored for the blocked-attempts report, with no
	// employee attached.
	require.Len(t, repo.created, 1)
	assert.Nil(t, repo.created[0].EmployeeID)
	assert.Equal(t, event.StatusRejected, repo.created[0].Status)
}

func TestIngestMineInRequiresRecentEsmoOK(t *testing.T) {
	svc, repo := newIngestFixture(false)

	results, err := svc.Ingest(context.Background(), "key-1",
		event.IngestRequest{Events: []event.IngestItem{ingestItem("r-3", event.TypeMineIn)}})
	require.NoError(t, err)

	assert.Equal(t, "REJECTED", results[0].Status)
	require.NotNil(t, results[0].RejectReason)
	assert.Equal(t, "no recent ESMO_OK", *results[0].RejectReason)
	require.Len(t, repo.created, 1)
	require.NotNil(t, repo.created[0].EmployeeID)
	assert.Equal(t, int64(9), *repo.created[0].EmployeeID)
}

func TestIngestMineInPassesWithEsmoOK(t *testing.T) {
	svc, _ := newIngestFixture(true)

	results, err := svc.Ingest(context.Background(), "key-1",
		event.IngestRequest{Events: []event.IngestItem{
			ingestItem("r-4", event.TypeMineIn),
			ingestItem("r-5", event.TypeToolTake),
		}})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "ACCEPTED", results[0].Status)
	assert.Equal(t, "ACCEPTED", results[1].Status)
	assert.Equal(t, "r-4", results[0].RawID)
	assert.Equal(t, "r-5", results[1].RawID)
}

func TestIngestBadItemFailsValidation(t *testing.T) {
	svc, _ := newIngestFixture(false)

	item := ingestItem("", "NOT_A_TYPE")
	_, err := svc.Ingest(context.Background(), "key-1",
		event.IngestRequest{Events: []event.IngestItem{item}})
	assert.Error(t, err)
}
