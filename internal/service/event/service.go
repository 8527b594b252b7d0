package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/minetrack/minetrack-backend-go/internal/domain/device"
	"github.com/minetrack/minetrack-backend-go/internal/domain/employee"
	"github.com/minetrack/minetrack-backend-go/internal/domain/event"
	"github.com/minetrack/minetrack-backend-go/internal/pkg/metrics"
)

const (
	reasonUnknownEmployee = "unknown employee"
	reasonNoRecentEsmoOK  = "no recent ESMO_OK"
)

type EventServiceImpl struct {
	eventRepo     event.Repository
	deviceRepo    device.Repository
	employeeRepo  employee.Repository
	okWindowHours int
}

func NewEventService(
	eventRepo event.Repository,
	deviceRepo device.Repository,
	employeeRepo employee.Repository,
	okWindowHours int,
) event.Service {
	return &EventServiceImpl{
		eventRepo:     eventRepo,
		deviceRepo:    deviceRepo,
		employeeRepo:  employeeRepo,
		okWindowHours: okWindowHours,
	}
}

// Ingest implements event.Service. Items are processed independently; one bad
// item never fails the batch. Results come back in request order, matched by
// raw_id.
func (s *EventServiceImpl) Ingest(ctx context.Context, apiKey string, req event.IngestRequest) ([]event.IngestResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	dev, err := s.deviceRepo.GetByAPIKey(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	results := make([]event.IngestResult, 0, len(req.Events))
	for _, item := range req.Events {
		results = append(results, s.ingestOne(ctx, dev, item))
	}
	return results, nil
}

func (s *EventServiceImpl) ingestOne(ctx context.Context, dev device.Device, item event.IngestItem) event.IngestResult {
	// Dedup by (device, raw_id). A replayed batch returns DUPLICATE with the
	// original event id, so edge boxes can retry blindly.
	if existing, err := s.eventRepo.GetByRawID(ctx, dev.ID, item.RawID); err == nil {
		metrics.IncEventIngested("DUPLICATE")
		return event.IngestResult{RawID: item.RawID, Status: "DUPLICATE", EventID: &existing.ID}
	} else if !errors.Is(err, event.ErrEventNotFound) {
		slog.ErrorContext(ctx, "ingest dedup lookup failed",
			slog.String("raw_id", item.RawID), slog.Any("error", err))
		reason := "internal error"
		return event.IngestResult{RawID: item.RawID, Status: string(event.StatusRejected), RejectReason: &reason}
	}

	emp, err := s.resolveEmployee(ctx, item)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return s.writeRejected(ctx, dev, item, nil, reasonUnknownEmployee)
		}
		slog.ErrorContext(ctx, "ingest employee lookup failed",
			slog.String("raw_id", item.RawID), slog.Any("error", err))
		reason := "internal error"
		return event.IngestResult{RawID: item.RawID, Status: string(event.StatusRejected), RejectReason: &reason}
	}

	if item.EventType == event.TypeMineIn || item.EventType == event.TypeToolTake {
		since := item.EventTS.Add(-time.Duration(s.okWindowHours) * time.Hour)
		ok, err := s.eventRepo.HasEsmoOKSince(ctx, emp.ID, since, item.EventTS)
		if err != nil {
			slog.ErrorContext(ctx, "ingest esmo window check failed",
				slog.String("raw_id", item.RawID), slog.Any("error", err))
			reason := "internal error"
			return event.IngestResult{RawID: item.RawID, Status: string(event.StatusRejected), RejectReason: &reason}
		}
		if !ok {
			return s.writeRejected(ctx, dev, item, &emp.ID, reasonNoRecentEsmoOK)
		}
	}

	created, err := s.eventRepo.Create(ctx, event.Event{
		DeviceID:      dev.ID,
		EmployeeID:    &emp.ID,
		EventType:     item.EventType,
		EventTS:       item.EventTS,
		RawID:         item.RawID,
		Status:        event.StatusAccepted,
		SourcePayload: item.Payload,
	})
	if err != nil {
		slog.ErrorContext(ctx, "ingest insert failed",
			slog.String("raw_id", item.RawID), slog.Any("error", err))
		reason := "internal error"
		return event.IngestResult{RawID: item.RawID, Status: string(event.StatusRejected), RejectReason: &reason}
	}

	metrics.IncEventIngested(string(event.StatusAccepted))
	return event.IngestResult{RawID: item.RawID, Status: string(event.StatusAccepted), EventID: &created.ID}
}

// writeRejected persists the rejection so blocked attempts show up in reports,
// then reports REJECTED to the device. A nil employeeID means the subject
// could not be resolved.
func (s *EventServiceImpl) writeRejected(ctx context.Context, dev device.Device, item event.IngestItem, employeeID *int64, reason string) event.IngestResult {
	created, err := s.eventRepo.Create(ctx, event.Event{
		DeviceID:      dev.ID,
		EmployeeID:    employeeID,
		EventType:     item.EventType,
		EventTS:       item.EventTS,
		RawID:         item.RawID,
		Status:        event.StatusRejected,
		RejectReason:  &reason,
		SourcePayload: item.Payload,
	})
	if err != nil {
		slog.ErrorContext(ctx, "ingest reject insert failed",
			slog.String("raw_id", item.RawID), slog.Any("error", err))
		return event.IngestResult{RawID: item.RawID, Status: string(event.StatusRejected), RejectReason: &reason}
	}

	metrics.IncEventIngested(string(event.StatusRejected))
	return event.IngestResult{RawID: item.RawID, Status: string(event.StatusRejected), EventID: &created.ID, RejectReason: &reason}
}

func (s *EventServiceImpl) resolveEmployee(ctx context.Context, item event.IngestItem) (employee.Employee, error) {
	if item.EmployeeNo != nil && *item.EmployeeNo != "" {
		return s.employeeRepo.GetByEmployeeNo(ctx, *item.EmployeeNo)
	}
	if item.ExternalSystem != nil && item.ExternalID != nil && *item.ExternalID != "" {
		return s.employeeRepo.GetByExternalID(ctx, *item.ExternalSystem, *item.ExternalID)
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

// List implements event.Service.
func (s *EventServiceImpl) List(ctx context.Context, filter event.Filter) ([]event.Response, error) {
	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	result := make([]event.Response, 0, len(events))
	for _, ev := range events {
		result = append(result, event.ToResponse(ev))
	}
	return result, nil
}

// ListPaged implements event.Service.
func (s *EventServiceImpl) ListPaged(ctx context.Context, filter event.Filter) ([]event.Response, int64, error) {
	items, err := s.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.eventRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}
	return items, total, nil
}
