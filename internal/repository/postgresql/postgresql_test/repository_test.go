package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minetrack/minetrack-backend-go/internal/domain/device"
	"github.com/minetrack/minetrack-backend-go/internal/domain/employee"
	"github.com/minetrack/minetrack-backend-go/internal/domain/event"
	"github.com/minetrack/minetrack-backend-go/internal/domain/medical"
	"github.com/minetrack/minetrack-backend-go/internal/pkg/database"
	"github.com/minetrack/minetrack-backend-go/internal/repository/postgresql"
)

var testDB *database.DB

// testMain connects once; tests are skipped entirely without a database.
func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		os.Exit(m.Run())
	}
	var err error
	testDB, err = database.NewPostgreSQLDB(dsn, true)
	if err != nil {
		panic("failed to connect to test database: " + err.Error())
	}
	code := m.Run()
	testDB.Close()
	os.Exit(code)
}

func requireDB(t *testing.T) {
	t.Helper()
	if testDB == nil {
		t.Skip("TEST_DATABASE_URL not set")
	}
}

func truncateAll(t *testing.T, ctx context.Context) {
	t.Helper()
	for _, table := range []string{"audit_logs", "medical_exams", "events", "employee_external_ids", "employees", "devices", "users"} {
		_, err := testDB.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE")
		require.NoError(t, err)
	}
}

func createTestEmployee(t *testing.T, ctx context.Context, no string) employee.Employee {
	t.Helper()
	repo := postgresql.NewEmployeeRepository(testDB)
	emp, err := repo.Create(ctx, employee.Employee{
		EmployeeNo: no,
		FirstName:  "Aziz",
		LastName:   "Karimov",
		IsActive:   true,
	})
	require.NoError(t, err)
	return emp
}

func createTestDevice(t *testing.T, ctx context.Context, code string, typ device.Type) device.Device {
	t.Helper()
	repo := postgresql.NewDeviceRepository(testDB)
	dev, err := repo.Create(ctx, device.Device{
		Name:       "Device " + code,
		DeviceCode: code,
		DeviceType: typ,
		APIKey:     "key-" + code,
		IsActive:   true,
	})
	require.NoError(t, err)
	return dev
}

func TestEmployeeRepository(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	truncateAll(t, ctx)
	repo := postgresql.NewEmployeeRepository(testDB)

	emp := createTestEmployee(t, ctx, "1042")
	require.NotZero(t, emp.ID)

	got, err := repo.GetByEmployeeNo(ctx, "1042")
	require.NoError(t, err)
	assert.Equal(t, emp.ID, got.ID)

	// Duplicate employee number is rejected.
	_, err = repo.Create(ctx, employee.Employee{EmployeeNo: "1042", FirstName: "X", LastName: "Y"})
	assert.ErrorIs(t, err, employee.ErrEmployeeNoExists)

	// External id mapping.
	require.NoError(t, repo.LinkExternalID(ctx, emp.ID, employee.SystemHikvision, "hik-1042"))
	got, err = repo.GetByExternalID(ctx, employee.SystemHikvision, "hik-1042")
	require.NoError(t, err)
	assert.Equal(t, emp.ID, got.ID)

	_, err = repo.GetByExternalID(ctx, employee.SystemEsmo, "hik-1042")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestDeviceRepository(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	truncateAll(t, ctx)
	repo := postgresql.NewDeviceRepository(testDB)

	dev := createTestDevice(t, ctx, "GATE_1", device.TypeHikvision)

	got, err := repo.GetByAPIKey(ctx, "key-GATE_1")
	require.NoError(t, err)
	assert.Equal(t, dev.ID, got.ID)

	_, err = repo.GetByAPIKey(ctx, "wrong")
	assert.ErrorIs(t, err, device.ErrInvalidAPIKey)

	seen := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.TouchLastSeen(ctx, dev.ID, seen))
	got, err = repo.GetByID(ctx, dev.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastSeen)
	assert.WithinDuration(t, seen, *got.LastSeen, time.Second)
}

func TestEventRepository(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	truncateAll(t, ctx)
	repo := postgresql.NewEventRepository(testDB)

	emp := createTestEmployee(t, ctx, "1042")
	dev := createTestDevice(t, ctx, "GATE_1", device.TypeHikvision)

	base := time.Date(2025, 3, 10, 3, 0, 0, 0, time.UTC)
	for i, typ := range []event.Type{event.TypeTurnstileIn, event.TypeTurnstileOut} {
		_, err := repo.Create(ctx, event.Event{
			DeviceID:   dev.ID,
			EmployeeID: &emp.ID,
			EventType:  typ,
			EventTS:    base.Add(time.Duration(i) * time.Hour),
			RawID:      fmt.Sprintf("raw-%d", i),
			Status:     event.StatusAccepted,
		})
		require.NoError(t, err)
	}

	got, err := repo.GetByRawID(ctx, dev.ID, "raw-0")
	require.NoError(t, err)
	assert.Equal(t, event.TypeTurnstileIn, got.EventType)

	_, err = repo.GetByRawID(ctx, dev.ID, "missing")
	assert.ErrorIs(t, err, event.ErrEventNotFound)

	// Substring filter on employee number, newest first.
	events, err := repo.List(ctx, event.Filter{EmployeeNo: "04", Limit: 10})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, event.TypeTurnstileOut, events[0].EventType)
	require.NotNil(t, events[0].EmployeeFullName)
	assert.Equal(t, "Karimov Aziz", *events[0].EmployeeFullName)

	pairs, err := repo.LastDirectionalByEmployee(ctx, event.TypeTurnstileIn, event.TypeTurnstileOut)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	require.NotNil(t, pairs[0].LastIn)
	require.NotNil(t, pairs[0].LastOut)
	assert.True(t, pairs[0].LastOut.After(*pairs[0].LastIn))
}

func TestMedicalRepository(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	truncateAll(t, ctx)
	repo := postgresql.NewMedicalRepository(testDB)

	emp := createTestEmployee(t, ctx, "1042")

	esmoID := int64(500)
	terminal := "ESMO-1"
	_, err := repo.Create(ctx, medical.Exam{
		EmployeeID:   emp.ID,
		EsmoID:       &esmoID,
		TerminalName: &terminal,
		Result:       "passed",
		Timestamp:    time.Date(2025, 3, 10, 7, 55, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	got, err := repo.GetByEsmoID(ctx, 500)
	require.NoError(t, err)
	assert.Equal(t, "passed", got.Result)

	maxID, err := repo.MaxEsmoID(ctx)
	require.NoError(t, err)
	require.NotNil(t, maxID)
	assert.Equal(t, int64(500), *maxID)
}
