package device

import (
	"time"

	"github.com/minetrack/minetrack-backend-go/internal/pkg/validator"
)

type CreateRequest struct {
	Name       string  `json:"name"`
	DeviceCode string  `json:"device_code"`
	Host       *string `json:"host"`
	DeviceType Type    `json:"device_type"`
	Location   *string `json:"location"`
	APIKey     *string `json:"api_key"`
}

func (r CreateRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name is required"})
	}
	if validator.IsEmpty(r.DeviceCode) || len(r.DeviceCode) > 64 {
		errs = append(errs, validator.ValidationError{Field: "device_code", Message: "device code must be 1-64 characters"})
	}
	if !r.DeviceType.Valid() {
		errs = append(errs, validator.ValidationError{Field: "device_type", Message: "unknown device type"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateRequest struct {
	Name       *string `json:"name"`
	Host       *string `json:"host"`
	DeviceType *Type   `json:"device_type"`
	Location   *string `json:"location"`
	IsActive   *bool   `json:"is_active"`
}

// PowerRequest toggles a device on/off; guarded by a shared control password
// because dispatchers without admin accounts use it from the floor.
type PowerRequest struct {
	Password string `json:"password"`
	IsActive bool   `json:"is_active"`
}

type Response struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	DeviceCode string     `json:"device_code"`
	Host       *string    `json:"host,omitempty"`
	DeviceType Type       `json:"device_type"`
	Location   *string    `json:"location,omitempty"`
	APIKey     string     `json:"api_key"`
	IsActive   bool       `json:"is_active"`
	LastSeen   *time.Time `json:"last_seen,omitempty"`
}

func ToResponse(d Device) Response {
	return Response{
		ID:         d.ID,
		Name:       d.Name,
		DeviceCode: d.DeviceCode,
		Host:       d.Host,
		DeviceType: d.DeviceType,
		Location:   d.Location,
		APIKey:     d.APIKey,
		IsActive:   d.IsActive,
		LastSeen:   d.LastSeen,
	}
}

// DataStatus reports when a device last produced data. For ESMO terminals the
// source is medical exams matched by terminal name, for everything else events.
type DataStatus struct {
	DeviceID   int64      `json:"device_id"`
	LastDataAt *time.Time `json:"last_data_at,omitempty"`
}
