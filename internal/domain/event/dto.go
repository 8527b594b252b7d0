package event

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/minetrack/minetrack-backend-go/internal/pkg/validator"
)

// IngestItem is one raw event pushed by an edge device. The employee is
// identified either by employee_no or by an (external_system, external_id)
// pair known from a prior registry sync.
type IngestItem struct {
	DeviceCode     string          `json:"device_code"`
	RawID          string          `json:"raw_id"`
	EventType      Type            `json:"event_type"`
	EventTS        time.Time       `json:"event_ts"`
	EmployeeNo     *string         `json:"employee_no"`
	ExternalSystem *string         `json:"external_system"`
	ExternalID     *string         `json:"external_id"`
	Payload        json.RawMessage `json:"payload"`
}

type IngestRequest struct {
	Events []IngestItem `json:"events"`
}

func (r IngestRequest) Validate() error {
	var errs validator.ValidationErrors
	for i, item := range r.Events {
		if validator.IsEmpty(item.RawID) {
			errs = append(errs, validator.ValidationError{Field: "events[" + strconv.Itoa(i) + "].raw_id", Message: "raw id is required"})
		}
		if !item.EventType.Valid() {
			errs = append(errs, validator.ValidationError{Field: "events[" + strconv.Itoa(i) + "].event_type", Message: "unknown event type"})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// IngestResult reports the per-item outcome; clients match by raw_id.
type IngestResult struct {
	RawID        string  `json:"raw_id"`
	Status       string  `json:"status"` // ACCEPTED | REJECTED | DUPLICATE
	EventID      *int64  `json:"event_id,omitempty"`
	RejectReason *string `json:"reject_reason,omitempty"`
}

type Filter struct {
	DateFrom   *time.Time
	DateTo     *time.Time
	EmployeeNo string
	DeviceID   *int64
	EventType  *Type
	Status     *Status
	Limit      int
	Offset     int
}

type Response struct {
	ID               int64     `json:"id"`
	DeviceID         int64     `json:"device_id"`
	EmployeeID       *int64    `json:"employee_id,omitempty"`
	EventType        Type      `json:"event_type"`
	EventTS          time.Time `json:"event_ts"`
	ReceivedTS       time.Time `json:"received_ts"`
	RawID            string    `json:"raw_id"`
	Status           Status    `json:"status"`
	RejectReason     *string   `json:"reject_reason,omitempty"`
	EmployeeNo       *string   `json:"employee_no,omitempty"`
	EmployeeFullName *string   `json:"employee_full_name,omitempty"`
}

func ToResponse(e Event) Response {
	return Response{
		ID:               e.ID,
		DeviceID:         e.DeviceID,
		EmployeeID:       e.EmployeeID,
		EventType:        e.EventType,
		EventTS:          e.EventTS,
		ReceivedTS:       e.ReceivedTS,
		RawID:            e.RawID,
		Status:           e.Status,
		RejectReason:     e.RejectReason,
		EmployeeNo:       e.EmployeeNo,
		EmployeeFullName: e.EmployeeFullName,
	}
}
