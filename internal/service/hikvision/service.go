package hikvision

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
	"github.com/minetrack/minetrack-backend-go/internal/pkg/hikvision"
	"github.com/minetrack/minetrack-backend-go/internal/pkg/metrics"
	"github.com/minetrack/minetrack-backend-go/internal/pkg/timeutil"
)

// DeviceStatus is one configured turnstile as the status endpoint reports it.
type DeviceStatus struct {
	DeviceID   int64      `json:"device_id"`
	Name       string     `json:"name"`
	Host       string     `json:"host,omitempty"`
	IsActive   bool       `json:"is_active"`
	EventCount int64      `json:"event_count"`
	LastEvent  *time.Time `json:"last_event,omitempty"`
}

// StatusResponse wraps the configured-device list.
type StatusResponse struct {
	Configured bool           `json:"configured"`
	Mode       string         `json:"mode"`
	Total      int            `json:"total"`
	Devices    []DeviceStatus `json:"devices"`
}

// UserSyncResult reports a roster pull across all turnstiles.
type UserSyncResult struct {
	Devices int `json:"devices"`
	Listed  int `json:"listed"`
	Created int `json:"created"`
	Linked  int `json:"linked"`
}

// Service receives turnstile event pushes and exposes status/roster sync. The
// webhook is deliberately forgiving: turnstiles retry on anything but 200, so
// every failure path swallows the event rather than erroring back.
type Service struct {
	deviceRepo   device.Repository
	employeeRepo employee.Repository
	eventRepo    event.Repository
	isapi        *hikvision.ISAPIClient
}

func NewService(
	deviceRepo device.Repository,
	employeeRepo employee.Repository,
	eventRepo event.Repository,
	isapi *hikvision.ISAPIClient,
) *Service {
	return &Service{
		deviceRepo:   deviceRepo,
		employeeRepo: employeeRepo,
		eventRepo:    eventRepo,
		isapi:        isapi,
	}
}

// HandleWebhook processes one pushed notification. remoteIP is the peer
// address, used when the XML omits ipAddress. Errors are logged, never
// returned: the device gets 200 regardless.
func (s *Service) HandleWebhook(ctx context.Context, body []byte, remoteIP string) {
	n, err := hikvision.Parse(body)
	if err != nil {
		slog.WarnContext(ctx, "webhook xml parse failed", slog.Any("error", err))
		return
	}
	if !n.IsAccessEvent() {
		slog.DebugContext(ctx, "ignoring non-access event", slog.String("event_type", n.EventType))
		return
	}

	rawID := n.RawID()
	if rawID == "" {
		return
	}

	ip := n.IPAddress
	if ip == "" {
		ip = remoteIP
	}

	dev, err := s.deviceByIP(ctx, ip)
	if err != nil {
		slog.ErrorContext(ctx, "webhook device registration failed",
			slog.String("ip", ip), slog.Any("error", err))
		return
	}

	if _, err := s.eventRepo.GetByRawID(ctx, dev.ID, rawID); err == nil {
		return
	} else if !errors.Is(err, event.ErrEventNotFound) {
		slog.ErrorContext(ctx, "webhook dedup lookup failed", slog.Any("error", err))
		return
	}

	emp, err := s.findEmployee(ctx, n.SubjectID())
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			slog.DebugContext(ctx, "webhook subject unknown", slog.String("subject", n.SubjectID()))
			return
		}
		slog.ErrorContext(ctx, "webhook employee lookup failed", slog.Any("error", err))
		return
	}

	eventType := event.TypeTurnstileOut
	if n.DirectionIn() {
		eventType = event.TypeTurnstileIn
	}

	_, err = s.eventRepo.Create(ctx, event.Event{
		DeviceID:   dev.ID,
		EmployeeID: &emp.ID,
		EventType:  eventType,
		EventTS:    n.EventTime(timeutil.FacilityZone),
		RawID:      rawID,
		Status:     event.StatusAccepted,
	})
	if err != nil {
		slog.ErrorContext(ctx, "webhook event insert failed", slog.Any("error", err))
		return
	}

	metrics.IncEventIngested(string(event.StatusAccepted))
	slog.InfoContext(ctx, "turnstile event stored",
		slog.String("subject", n.SubjectID()),
		slog.String("event_type", string(eventType)),
		slog.String("device", ip))
}

// deviceByIP finds the turnstile's device row, auto-registering on first
// contact so nobody has to pre-create rows for new lanes.
func (s *Service) deviceByIP(ctx context.Context, ip string) (device.Device, error) {
	code := "HIK_" + strings.ReplaceAll(ip, ".", "_")

	dev, err := s.deviceRepo.GetByCode(ctx, code)
	if err == nil {
		if err := s.deviceRepo.TouchLastSeen(ctx, dev.ID, time.Now()); err != nil {
			slog.WarnContext(ctx, "failed to update last_seen", slog.Any("error", err))
		}
		return dev, nil
	}
	if !errors.Is(err, device.ErrDeviceNotFound) {
		return device.Device{}, err
	}

	now := time.Now()
	host := ip
	name := "Turnstile-" + ip
	created, err := s.deviceRepo.Create(ctx, device.Device{
		Name:       name,
		DeviceCode: code,
		Host:       &host,
		DeviceType: device.TypeHikvision,
		Location:   &name,
		APIKey:     "hikvision_" + code,
		IsActive:   true,
		LastSeen:   &now,
	})
	if err != nil {
		// Lost a registration race with a concurrent push from the same lane.
		if errors.Is(err, device.ErrDeviceCodeExists) {
			return s.deviceRepo.GetByCode(ctx, code)
		}
		return device.Device{}, err
	}

	slog.InfoContext(ctx, "auto-registered turnstile", slog.String("host", ip))
	return created, nil
}

func (s *Service) findEmployee(ctx context.Context, subject string) (employee.Employee, error) {
	if subject == "" {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}

	emp, err := s.employeeRepo.GetByExternalID(ctx, employee.SystemHikvision, subject)
	if err == nil {
		return emp, nil
	}
	if !errors.Is(err, employee.ErrEmployeeNotFound) {
		return employee.Employee{}, err
	}
	return s.employeeRepo.GetByEmployeeNo(ctx, subject)
}

// Status reports every registered turnstile with its journal footprint.
func (s *Service) Status(ctx context.Context) (StatusResponse, error) {
	devices, err := s.deviceRepo.ListByType(ctx, device.TypeHikvision)
	if err != nil {
		return StatusResponse{}, fmt.Errorf("failed to list turnstiles: %w", err)
	}

	resp := StatusResponse{
		Configured: len(devices) > 0,
		Mode:       "webhook (HTTP Listening)",
		Total:      len(devices),
		Devices:    make([]DeviceStatus, 0, len(devices)),
	}

	for _, dev := range devices {
		st := DeviceStatus{
			DeviceID: dev.ID,
			Name:     dev.Name,
			IsActive: dev.IsActive,
		}
		if dev.Host != nil {
			st.Host = *dev.Host
		}

		filter := event.Filter{DeviceID: &dev.ID}
		st.EventCount, err = s.eventRepo.Count(ctx, filter)
		if err != nil {
			return StatusResponse{}, fmt.Errorf("failed to count device events: %w", err)
		}

		filter.Limit = 1
		latest, err := s.eventRepo.List(ctx, filter)
		if err != nil {
			return StatusResponse{}, fmt.Errorf("failed to get latest device event: %w", err)
		}
		if len(latest) > 0 {
			ts := latest[0].EventTS
			st.LastEvent = &ts
		}

		resp.Devices = append(resp.Devices, st)
	}
	return resp, nil
}

// SyncUsers pulls the user roster off every registered turnstile and links
// each entry onto an employee by card number, creating minimal employee rows
// for entries nobody registered yet.
func (s *Service) SyncUsers(ctx context.Context) (UserSyncResult, error) {
	if s.isapi == nil {
		return UserSyncResult{}, errors.New("isapi credentials not configured")
	}

	devices, err := s.deviceRepo.ListByType(ctx, device.TypeHikvision)
	if err != nil {
		return UserSyncResult{}, fmt.Errorf("failed to list turnstiles: %w", err)
	}

	var result UserSyncResult
	for _, dev := range devices {
		if dev.Host == nil || *dev.Host == "" || !dev.IsActive {
			continue
		}
		result.Devices++

		users, err := s.isapi.FetchUsers(ctx, *dev.Host)
		if err != nil {
			slog.WarnContext(ctx, "roster fetch failed",
				slog.String("host", *dev.Host), slog.Any("error", err))
			continue
		}
		result.Listed += len(users)

		for _, u := range users {
			if u.EmployeeNo == "" {
				continue
			}

			created, linked, err := s.linkDeviceUser(ctx, u)
			if err != nil {
				return result, err
			}
			if created {
				result.Created++
			}
			if linked {
				result.Linked++
			}
		}
	}
	return result, nil
}

func (s *Service) linkDeviceUser(ctx context.Context, u hikvision.DeviceUser) (created, linked bool, err error) {
	if _, err := s.employeeRepo.GetByExternalID(ctx, employee.SystemHikvision, u.EmployeeNo); err == nil {
		return false, false, nil
	} else if !errors.Is(err, employee.ErrEmployeeNotFound) {
		return false, false, err
	}

	emp, err := s.employeeRepo.GetByEmployeeNo(ctx, u.EmployeeNo)
	if errors.Is(err, employee.ErrEmployeeNotFound) {
		last, first := splitDeviceName(u.Name)
		emp, err = s.employeeRepo.Create(ctx, employee.Employee{
			EmployeeNo: u.EmployeeNo,
			FirstName:  first,
			LastName:   last,
			IsActive:   true,
		})
		if err != nil {
			return false, false, fmt.Errorf("failed to create employee from roster: %w", err)
		}
		created = true
	} else if err != nil {
		return false, false, err
	}

	if err := s.employeeRepo.LinkExternalID(ctx, emp.ID, employee.SystemHikvision, u.EmployeeNo); err != nil {
		return created, false, err
	}
	return created, true, nil
}

func splitDeviceName(name string) (last, first string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "-", "-"
	case 1:
		return parts[0], "-"
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
