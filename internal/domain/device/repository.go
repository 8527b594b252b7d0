package device

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, dev Device) (Device, error)
	GetByID(ctx context.Context, id int64) (Device, error)
	GetByCode(ctx context.Context, deviceCode string) (Device, error)
	GetByAPIKey(ctx context.Context, apiKey string) (Device, error)
	List(ctx context.Context) ([]Device, error)
	ListByType(ctx context.Context, deviceType Type) ([]Device, error)
	Update(ctx context.Context, dev Device) error
	TouchLastSeen(ctx context.Context, id int64, seenAt time.Time) error

	// ListDataStatus resolves the most recent data timestamp per device:
	// max event_ts for event-producing devices, max exam timestamp matched by
	// terminal name for ESMO terminals.
	ListDataStatus(ctx context.Context) ([]DataStatus, error)
}
