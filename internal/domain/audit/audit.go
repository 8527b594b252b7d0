package audit

import (
	"context"
	"encoding/json"
	"time"
)

// Entry records who changed what in the registries. Write-only from the
// application's point of view.
type Entry struct {
	ID         int64
	UserID     *int64
	Action     string
	EntityType string
	EntityID   *string
	TS         time.Time
	Details    json.RawMessage
}

type Repository interface {
	Log(ctx context.Context, entry Entry) error
}
