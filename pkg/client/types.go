package client

import (
	"encoding/json"
	"time"
)

// DTOs mirroring the backend responses. Kept independent of the server's
// internal packages so external tools can import this package alone.

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Username    string `json:"username"`
	Role        string `json:"role"`
}

type Employee struct {
	ID         int64   `json:"id"`
	EmployeeNo string  `json:"employee_no"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Patronymic *string `json:"patronymic,omitempty"`
	Department *string `json:"department,omitempty"`
	Position   *string `json:"position,omitempty"`
	IsActive   bool    `json:"is_active"`
}

// FullName is "last first patronymic", the display form used everywhere.
func (e Employee) FullName() string {
	s := e.LastName + " " + e.FirstName
	if e.Patronymic != nil && *e.Patronymic != "" {
		s += " " + *e.Patronymic
	}
	return s
}

type Device struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	DeviceCode string     `json:"device_code"`
	Host       *string    `json:"host,omitempty"`
	DeviceType string     `json:"device_type"`
	Location   *string    `json:"location,omitempty"`
	APIKey     string     `json:"api_key"`
	IsActive   bool       `json:"is_active"`
	LastSeen   *time.Time `json:"last_seen,omitempty"`
}

type DeviceDataStatus struct {
	DeviceID   int64      `json:"device_id"`
	LastDataAt *time.Time `json:"last_data_at,omitempty"`
}

type Event struct {
	ID               int64     `json:"id"`
	DeviceID         int64     `json:"device_id"`
	EmployeeID       *int64    `json:"employee_id,omitempty"`
	EventType        string    `json:"event_type"`
	EventTS          time.Time `json:"event_ts"`
	ReceivedTS       time.Time `json:"received_ts"`
	RawID            string    `json:"raw_id"`
	Status           string    `json:"status"`
	RejectReason     *string   `json:"reject_reason,omitempty"`
	EmployeeNo       *string   `json:"employee_no,omitempty"`
	EmployeeFullName *string   `json:"employee_full_name,omitempty"`
}

type IngestItem struct {
	DeviceCode     string          `json:"device_code"`
	RawID          string          `json:"raw_id"`
	EventType      string          `json:"event_type"`
	EventTS        time.Time       `json:"event_ts"`
	EmployeeNo     *string         `json:"employee_no,omitempty"`
	ExternalSystem *string         `json:"external_system,omitempty"`
	ExternalID     *string         `json:"external_id,omitempty"`
	Payload        json.RawMessage `json:"payload,omitempty"`
}

type IngestResult struct {
	RawID        string  `json:"raw_id"`
	Status       string  `json:"status"`
	EventID      *int64  `json:"event_id,omitempty"`
	RejectReason *string `json:"reject_reason,omitempty"`
}

type Exam struct {
	ID                int64     `json:"id"`
	EmployeeID        int64     `json:"employee_id"`
	EsmoID            *int64    `json:"esmo_id,omitempty"`
	TerminalName      *string   `json:"terminal_name,omitempty"`
	Result            string    `json:"result"`
	PressureSystolic  *int      `json:"pressure_systolic,omitempty"`
	PressureDiastolic *int      `json:"pressure_diastolic,omitempty"`
	Pulse             *int      `json:"pulse,omitempty"`
	Temperature       *float64  `json:"temperature,omitempty"`
	AlcoholMgL        *float64  `json:"alcohol_mg_l,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
	EmployeeNo        *string   `json:"employee_no,omitempty"`
	EmployeeFullName  *string   `json:"employee_full_name,omitempty"`
}

type MedicalDayStats struct {
	Date   string `json:"date"`
	Total  int64  `json:"total"`
	Passed int64  `json:"passed"`
	Failed int64  `json:"failed"`
}

type Summary struct {
	TurnstileIn  int64 `json:"turnstile_in"`
	TurnstileOut int64 `json:"turnstile_out"`
	EsmoOK       int64 `json:"esmo_ok"`
	EsmoFail     int64 `json:"esmo_fail"`
	ToolTakes    int64 `json:"tool_takes"`
	ToolReturns  int64 `json:"tool_returns"`
	MineIn       int64 `json:"mine_in"`
	MineOut      int64 `json:"mine_out"`
	Blocked      int64 `json:"blocked"`
}

type InsideMineItem struct {
	EmployeeID int64      `json:"employee_id"`
	EmployeeNo string     `json:"employee_no"`
	FullName   string     `json:"full_name"`
	LastIn     *time.Time `json:"last_in"`
}

type ToolDebtItem struct {
	EmployeeID int64      `json:"employee_id"`
	EmployeeNo string     `json:"employee_no"`
	FullName   string     `json:"full_name"`
	LastTake   *time.Time `json:"last_take"`
}

type DailySummaryRow struct {
	EmployeeID   int64      `json:"employee_id"`
	EmployeeNo   string     `json:"employee_no"`
	FullName     string     `json:"full_name"`
	TotalMinutes int        `json:"total_minutes"`
	LastIn       *time.Time `json:"last_in,omitempty"`
	LastOut      *time.Time `json:"last_out,omitempty"`
	IsInside     bool       `json:"is_inside"`
	EnteredToday bool       `json:"entered_today"`
	ExitedToday  bool       `json:"exited_today"`
}

type BlockedAttempt struct {
	ID           int64     `json:"id"`
	EmployeeID   *int64    `json:"employee_id,omitempty"`
	DeviceID     int64     `json:"device_id"`
	EventType    string    `json:"event_type"`
	EventTS      time.Time `json:"event_ts"`
	RawID        string    `json:"raw_id"`
	RejectReason *string   `json:"reject_reason,omitempty"`
}

type EsmoSummary struct {
	Passed int64 `json:"passed"`
	Failed int64 `json:"failed"`
	Review int64 `json:"review"`
	Total  int64 `json:"total"`
}

type Dashboard struct {
	Summary      Summary     `json:"summary"`
	InsideCount  int64       `json:"inside_count"`
	Esmo         EsmoSummary `json:"esmo"`
	BlockedToday int64       `json:"blocked_today"`
}

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

// Meta is the pagination block the backend attaches to paged listings.
type Meta struct {
	Page       int   `json:"page,omitempty"`
	Limit      int   `json:"limit,omitempty"`
	TotalItems int64 `json:"total_items,omitempty"`
	TotalPages int   `json:"total_pages,omitempty"`
}
