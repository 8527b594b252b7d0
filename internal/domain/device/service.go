package device

import "context"

type Service interface {
	Create(ctx context.Context, req CreateRequest) (Response, error)
	List(ctx context.Context) ([]Response, error)
	Update(ctx context.Context, id int64, req UpdateRequest) (Response, error)
	TogglePower(ctx context.Context, id int64, req PowerRequest) (Response, error)
	DataStatus(ctx context.Context) ([]DataStatus, error)

	// CheckReachability dials every HIKVISION device host and updates
	// last_seen for the ones that answer. Run from the scheduler.
	CheckReachability(ctx context.Context) error
}
