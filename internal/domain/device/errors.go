package device

import "errors"

var (
	ErrDeviceNotFound         = errors.New("device not found")
	ErrDeviceCodeExists       = errors.New("device code already exists")
	ErrInvalidControlPassword = errors.New("invalid control password")
	ErrInvalidAPIKey          = errors.New("invalid device api key")
	ErrInvalidDeviceType      = errors.New("unknown device type")
)
