package event

import (
	"encoding/json"
	"time"
)

type Type string

const (
	TypeTurnstileIn  Type = "TURNSTILE_IN"
	TypeTurnstileOut Type = "TURNSTILE_OUT"
	TypeEsmoOK       Type = "ESMO_OK"
	TypeEsmoFail     Type = "ESMO_FAIL"
	TypeToolTake     Type = "TOOL_TAKE"
	TypeToolReturn   Type = "TOOL_RETURN"
	TypeMineIn       Type = "MINE_IN"
	TypeMineOut      Type = "MINE_OUT"
)

func (t Type) Valid() bool {
	switch t {
	case TypeTurnstileIn, TypeTurnstileOut, TypeEsmoOK, TypeEsmoFail,
		TypeToolTake, TypeToolReturn, TypeMineIn, TypeMineOut:
		return true
	}
	return false
}

type Status string

const (
	StatusAccepted Status = "ACCEPTED"
	StatusRejected Status = "REJECTED"
)

// Event is an access/medical/tool transaction. Rows are written once at ingest
// and never mutated afterwards. EmployeeID is nil for rejected events whose
// subject could not be resolved.
type Event struct {
	ID            int64
	DeviceID      int64
	EmployeeID    *int64
	EventType     Type
	EventTS       time.Time
	ReceivedTS    time.Time
	RawID         string
	Status        Status
	RejectReason  *string
	SourcePayload json.RawMessage

	// Joined for display.
	EmployeeNo       *string
	EmployeeFullName *string
}
