package device

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minetrack/minetrack-backend-go/internal/domain/device"
	"github.com/minetrack/minetrack-backend-go/internal/pkg/metrics"
)

const dialTimeout = 3 * time.Second

type DeviceServiceImpl struct {
	deviceRepo      device.Repository
	controlPassword string
}

func NewDeviceService(deviceRepo device.Repository, controlPassword string) device.Service {
	return &DeviceServiceImpl{
		deviceRepo:      deviceRepo,
		controlPassword: controlPassword,
	}
}

// Create implements device.Service. An API key is minted unless the caller
// brings one (edge boxes flashed with a key before the device row exists).
func (s *DeviceServiceImpl) Create(ctx context.Context, req device.CreateRequest) (device.Response, error) {
	if err := req.Validate(); err != nil {
		return device.Response{}, err
	}

	apiKey := uuid.NewString()
	if req.APIKey != nil && *req.APIKey != "" {
		apiKey = *req.APIKey
	}

	created, err := s.deviceRepo.Create(ctx, device.Device{
		Name:       req.Name,
		DeviceCode: req.DeviceCode,
		Host:       req.Host,
		DeviceType: req.DeviceType,
		Location:   req.Location,
		APIKey:     apiKey,
		IsActive:   true,
	})
	if err != nil {
		return device.Response{}, err
	}

	return device.ToResponse(created), nil
}

// List implements device.Service.
func (s *DeviceServiceImpl) List(ctx context.Context) ([]device.Response, error) {
	devices, err := s.deviceRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	result := make([]device.Response, 0, len(devices))
	for _, dev := range devices {
		result = append(result, device.ToResponse(dev))
	}
	return result, nil
}

// Update implements device.Service.
func (s *DeviceServiceImpl) Update(ctx context.Context, id int64, req device.UpdateRequest) (device.Response, error) {
	dev, err := s.deviceRepo.GetByID(ctx, id)
	if err != nil {
		return device.Response{}, err
	}

	if req.Name != nil {
		dev.Name = *req.Name
	}
	if req.Host != nil {
		dev.Host = req.Host
	}
	if req.DeviceType != nil {
		if !req.DeviceType.Valid() {
			return device.Response{}, device.ErrInvalidDeviceType
		}
		dev.DeviceType = *req.DeviceType
	}
	if req.Location != nil {
		dev.Location = req.Location
	}
	if req.IsActive != nil {
		dev.IsActive = *req.IsActive
	}

	if err := s.deviceRepo.Update(ctx, dev); err != nil {
		return device.Response{}, err
	}
	return device.ToResponse(dev), nil
}

// TogglePower implements device.Service.
func (s *DeviceServiceImpl) TogglePower(ctx context.Context, id int64, req device.PowerRequest) (device.Response, error) {
	if s.controlPassword == "" || req.Password != s.controlPassword {
		return device.Response{}, device.ErrInvalidControlPassword
	}

	dev, err := s.deviceRepo.GetByID(ctx, id)
	if err != nil {
		return device.Response{}, err
	}

	dev.IsActive = req.IsActive
	if err := s.deviceRepo.Update(ctx, dev); err != nil {
		return device.Response{}, err
	}

	slog.InfoContext(ctx, "device power toggled",
		slog.Int64("device_id", id), slog.Bool("is_active", req.IsActive))

	return device.ToResponse(dev), nil
}

// DataStatus implements device.Service.
func (s *DeviceServiceImpl) DataStatus(ctx context.Context) ([]device.DataStatus, error) {
	return s.deviceRepo.ListDataStatus(ctx)
}

// CheckReachability implements device.Service. A plain TCP dial is enough to
// tell a powered Hikvision terminal from a dead one; the web port is always up
// when the device is.
func (s *DeviceServiceImpl) CheckReachability(ctx context.Context) error {
	devices, err := s.deviceRepo.ListByType(ctx, device.TypeHikvision)
	if err != nil {
		return fmt.Errorf("failed to list hikvision devices: %w", err)
	}

	dialer := net.Dialer{Timeout: dialTimeout}
	now := time.Now()
	online := 0

	for _, dev := range devices {
		if dev.Host == nil || *dev.Host == "" {
			continue
		}

		addr := *dev.Host
		if !strings.Contains(addr, ":") {
			addr += ":80"
		}

		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			slog.DebugContext(ctx, "device unreachable",
				slog.Int64("device_id", dev.ID), slog.String("addr", addr))
			continue
		}
		conn.Close()
		online++

		if err := s.deviceRepo.TouchLastSeen(ctx, dev.ID, now); err != nil {
			slog.WarnContext(ctx, "failed to update device last_seen",
				slog.Int64("device_id", dev.ID), slog.Any("error", err))
		}
	}

	metrics.SetDevicesOnline(online)
	return nil
}
