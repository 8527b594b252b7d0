package medical

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/minetrack/minetrack-backend-go/internal/domain/device"
	"github.com/minetrack/minetrack-backend-go/internal/domain/employee"
	"github.com/minetrack/minetrack-backend-go/internal/domain/event"
	"github.com/minetrack/minetrack-backend-go/internal/domain/medical"
	"github.com/minetrack/minetrack-backend-go/internal/pkg/database"
	"github.com/minetrack/minetrack-backend-go/internal/pkg/esmo"
	"github.com/minetrack/minetrack-backend-go/internal/pkg/metrics"
	"github.com/minetrack/minetrack-backend-go/internal/pkg/timeutil"
	"github.com/minetrack/minetrack-backend-go/internal/repository/postgresql"
)

type MedicalServiceImpl struct {
	db           *database.DB
	medicalRepo  medical.Repository
	employeeRepo employee.Repository
	deviceRepo   device.Repository
	eventRepo    event.Repository

	portal        *esmo.Client
	backfillPages int
}

// NewMedicalService wires the portal client; a nil portal disables the sync
// endpoints but leaves the read side working.
func NewMedicalService(
	db *database.DB,
	medicalRepo medical.Repository,
	employeeRepo employee.Repository,
	deviceRepo device.Repository,
	eventRepo event.Repository,
	portal *esmo.Client,
	backfillPages int,
) medical.Service {
	return &MedicalServiceImpl{
		db:            db,
		medicalRepo:   medicalRepo,
		employeeRepo:  employeeRepo,
		deviceRepo:    deviceRepo,
		eventRepo:     eventRepo,
		portal:        portal,
		backfillPages: backfillPages,
	}
}

// ListExams implements medical.Service.
func (s *MedicalServiceImpl) ListExams(ctx context.Context, filter medical.Filter) ([]medical.ExamResponse, error) {
	exams, err := s.medicalRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list exams: %w", err)
	}

	result := make([]medical.ExamResponse, 0, len(exams))
	for _, ex := range exams {
		result = append(result, medical.ToResponse(ex))
	}
	return result, nil
}

// Stats implements medical.Service.
func (s *MedicalServiceImpl) Stats(ctx context.Context, targetDate time.Time) (medical.DayStats, error) {
	d := targetDate.In(timeutil.FacilityZone)
	from := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	total, passed, failed, err := s.medicalRepo.CountByResult(ctx, from, to)
	if err != nil {
		return medical.DayStats{}, err
	}

	return medical.DayStats{
		Date:   d.Format("2006-01-02"),
		Total:  total,
		Passed: passed,
		Failed: failed,
	}, nil
}

// SyncExams implements medical.Service. Pulls exams the portal recorded after
// the highest esmo_id we already hold, upserts them, and mirrors each into the
// event journal so the ingest gate and reports see portal exams without a
// second code path.
func (s *MedicalServiceImpl) SyncExams(ctx context.Context) (medical.SyncResult, error) {
	if s.portal == nil {
		return medical.SyncResult{}, medical.ErrSyncDisabled
	}

	sinceID, err := s.medicalRepo.MaxEsmoID(ctx)
	if err != nil {
		return medical.SyncResult{}, err
	}

	rows, err := s.portal.FetchExamsSince(ctx, sinceID, s.backfillPages)
	if err != nil {
		metrics.RecordEsmoPoll(0, 0, 0, err)
		if errors.Is(err, context.DeadlineExceeded) {
			return medical.SyncResult{}, medical.ErrSyncTimeout
		}
		return medical.SyncResult{}, fmt.Errorf("failed to fetch exams: %w", err)
	}

	esmoDevices, err := s.deviceRepo.ListByType(ctx, device.TypeEsmo)
	if err != nil {
		return medical.SyncResult{}, err
	}

	var result medical.SyncResult
	result.Fetched = len(rows)
	unmatched := 0

	for _, row := range rows {
		saved, repaired, err := s.upsertExam(ctx, row, esmoDevices)
		if err != nil {
			if errors.Is(err, employee.ErrEmployeeNotFound) {
				unmatched++
				result.Skipped++
				continue
			}
			metrics.RecordEsmoPoll(result.Fetched, result.Saved, unmatched, err)
			return result, err
		}
		if saved {
			result.Saved++
		}
		if repaired {
			result.Repaired++
		}
	}

	metrics.RecordEsmoPoll(result.Fetched, result.Saved, unmatched, nil)
	return result, nil
}

func (s *MedicalServiceImpl) upsertExam(ctx context.Context, row esmo.ExamRow, esmoDevices []device.Device) (saved, repaired bool, err error) {
	emp, err := s.employeeRepo.GetByExternalID(ctx, employee.SystemEsmo, row.EmployeePassID)
	if err != nil {
		return false, false, err
	}

	examTS := esmo.ParseLocalTime(row.Timestamp, timeutil.FacilityZone)
	terminal := row.Terminal

	existing, err := s.medicalRepo.GetByEsmoID(ctx, row.EsmoID)
	switch {
	case err == nil:
		// Already held. The portal occasionally re-exports a row with the
		// result corrected after a manual review; take the newer text.
		if existing.Result == row.Result && existing.EmployeeID == emp.ID {
			return false, false, nil
		}
		existing.EmployeeID = emp.ID
		existing.Result = row.Result
		if err := s.medicalRepo.Update(ctx, existing); err != nil {
			return false, false, err
		}
		return false, true, nil
	case errors.Is(err, medical.ErrExamNotFound):
		// New exam, fall through.
	default:
		return false, false, err
	}

	esmoID := row.EsmoID
	_, err = s.medicalRepo.Create(ctx, medical.Exam{
		EmployeeID:        emp.ID,
		EsmoID:            &esmoID,
		TerminalName:      &terminal,
		Result:            row.Result,
		PressureSystolic:  row.PressureSystolic,
		PressureDiastolic: row.PressureDiastolic,
		Pulse:             row.Pulse,
		Temperature:       row.Temperature,
		AlcoholMgL:        row.AlcoholMgL,
		Timestamp:         examTS,
	})
	if err != nil {
		return false, false, err
	}

	s.mirrorExamEvent(ctx, row, emp.ID, examTS, esmoDevices)
	return true, false, nil
}

// mirrorExamEvent writes an ESMO_OK/ESMO_FAIL event for a portal exam. Best
// effort: an exam without a matching device row is still a stored exam.
func (s *MedicalServiceImpl) mirrorExamEvent(ctx context.Context, row esmo.ExamRow, employeeID int64, examTS time.Time, esmoDevices []device.Device) {
	if len(esmoDevices) == 0 {
		return
	}

	dev := esmoDevices[0]
	for _, d := range esmoDevices {
		if d.Name == row.Terminal {
			dev = d
			break
		}
	}

	eventType := event.TypeEsmoFail
	if medical.NormalizeResult(row.Result) == medical.ResultPassed {
		eventType = event.TypeEsmoOK
	}

	// Exam timestamps are facility wall-clock; restate in the facility zone so
	// the event journal carries a real instant.
	ts := time.Date(examTS.Year(), examTS.Month(), examTS.Day(),
		examTS.Hour(), examTS.Minute(), examTS.Second(), 0, timeutil.FacilityZone)

	rawID := fmt.Sprintf("esmo:%d", row.EsmoID)
	if _, err := s.eventRepo.GetByRawID(ctx, dev.ID, rawID); err == nil {
		return
	}

	_, err := s.eventRepo.Create(ctx, event.Event{
		DeviceID:   dev.ID,
		EmployeeID: &employeeID,
		EventType:  eventType,
		EventTS:    ts,
		RawID:      rawID,
		Status:     event.StatusAccepted,
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to mirror exam event",
			slog.Int64("esmo_id", row.EsmoID), slog.Any("error", err))
	}
}

// PortalEmployees implements medical.Service.
func (s *MedicalServiceImpl) PortalEmployees(ctx context.Context) ([]medical.PortalEmployee, error) {
	if s.portal == nil {
		return nil, medical.ErrSyncDisabled
	}

	rows, err := s.portal.FetchEmployees(ctx, s.backfillPages)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch portal roster: %w", err)
	}

	result := make([]medical.PortalEmployee, 0, len(rows))
	for _, row := range rows {
		linked := true
		if _, err := s.employeeRepo.GetByExternalID(ctx, employee.SystemEsmo, row.PassID); err != nil {
			if !errors.Is(err, employee.ErrEmployeeNotFound) {
				return nil, err
			}
			linked = false
		}
		result = append(result, medical.PortalEmployee{
			PassID:   row.PassID,
			FullName: row.FullName,
			Linked:   linked,
		})
	}
	return result, nil
}

// SyncEmployees implements medical.Service. Links portal rows onto existing
// employees by pass id when one already wears that employee number, otherwise
// creates a minimal employee record to attach exams to.
func (s *MedicalServiceImpl) SyncEmployees(ctx context.Context) (medical.EmployeeSyncResult, error) {
	if s.portal == nil {
		return medical.EmployeeSyncResult{}, medical.ErrSyncDisabled
	}

	rows, err := s.portal.FetchEmployees(ctx, s.backfillPages)
	if err != nil {
		return medical.EmployeeSyncResult{}, fmt.Errorf("failed to fetch portal roster: %w", err)
	}

	var result medical.EmployeeSyncResult
	result.Listed = len(rows)

	for _, row := range rows {
		if row.PassID == "" {
			continue
		}

		if _, err := s.employeeRepo.GetByExternalID(ctx, employee.SystemEsmo, row.PassID); err == nil {
			continue
		} else if !errors.Is(err, employee.ErrEmployeeNotFound) {
			return result, err
		}

		// Create-then-link is atomic: a crash between the two would leave an
		// employee the next sync can never match by pass id.
		created := false
		err := postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
			emp, err := s.employeeRepo.GetByEmployeeNo(txCtx, row.PassID)
			if errors.Is(err, employee.ErrEmployeeNotFound) {
				emp, err = s.createFromPortal(txCtx, row)
				if err != nil {
					return err
				}
				created = true
			} else if err != nil {
				return err
			}
			return s.employeeRepo.LinkExternalID(txCtx, emp.ID, employee.SystemEsmo, row.PassID)
		})
		if err != nil {
			return result, err
		}
		if created {
			result.Created++
		}
		result.Linked++
	}
	return result, nil
}

func (s *MedicalServiceImpl) createFromPortal(ctx context.Context, row esmo.EmployeeRow) (employee.Employee, error) {
	last, first, patronymic := splitFullName(row.FullName)

	emp := employee.Employee{
		EmployeeNo: row.PassID,
		FirstName:  first,
		LastName:   last,
		IsActive:   true,
	}
	if patronymic != "" {
		emp.Patronymic = &patronymic
	}

	created, err := s.employeeRepo.Create(ctx, emp)
	if err != nil {
		return employee.Employee{}, fmt.Errorf("failed to create employee from portal row: %w", err)
	}
	return created, nil
}

// splitFullName breaks a "Last First Patronymic" string the way the portal
// prints names. Single-word names become the last name.
func splitFullName(full string) (last, first, patronymic string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "-", "-", ""
	case 1:
		return parts[0], "-", ""
	case 2:
		return parts[0], parts[1], ""
	default:
		return parts[0], parts[1], strings.Join(parts[2:], " ")
	}
}
