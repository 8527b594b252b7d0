package event

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, ev Event) (Event, error)
	GetByRawID(ctx context.Context, deviceID int64, rawID string) (Event, error)
	ListByRawIDs(ctx context.Context, deviceID int64, rawIDs []string) ([]Event, error)
	List(ctx context.Context, filter Filter) ([]Event, error)
	Count(ctx context.Context, filter Filter) (int64, error)

	// HasEsmoOKSince reports whether the employee has an ACCEPTED ESMO_OK event
	// in [since, until]. Used by the ingest gate for MINE_IN and TOOL_TAKE.
	HasEsmoOKSince(ctx context.Context, employeeID int64, since, until time.Time) (bool, error)

	// ListTurnstile returns ACCEPTED turnstile events in [from, to) joined with
	// the device host, ordered by (employee_id, event_ts, id). Feeds the daily
	// attendance fold.
	ListTurnstile(ctx context.Context, from, to time.Time) ([]TurnstileEvent, error)

	// LastDirectionalByEmployee aggregates, per employee, the most recent
	// ACCEPTED timestamps of the two given event types.
	LastDirectionalByEmployee(ctx context.Context, inType, outType Type) ([]DirectionalPair, error)

	CountByType(ctx context.Context, from, to *time.Time) (map[Type]int64, error)
	CountRejected(ctx context.Context, from, to *time.Time) (int64, error)
	CountDistinctEmployees(ctx context.Context, eventType Type, from, to time.Time) (int64, error)
}

// TurnstileEvent is the minimal projection the attendance fold needs.
type TurnstileEvent struct {
	ID         int64
	EmployeeID int64
	EventType  Type
	EventTS    time.Time
	DeviceHost string
}

// DirectionalPair carries an employee's last "in" and last "out" timestamps
// for a pair of opposing event types (turnstile in/out, tool take/return).
type DirectionalPair struct {
	EmployeeID int64
	LastIn     *time.Time
	LastOut    *time.Time
}
