package report

import "time"

// Summary counts every event type over an optional range. The on-screen table
// has only OK/FAIL columns for ESMO, so review results are folded into fail.
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

// DailySummaryRow is the attendance aggregation row: one employee's same-day
// turnstile activity in the facility timezone.
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

// Dashboard is the combined KPI payload the main screen polls.
type Dashboard struct {
	Summary      Summary     `json:"summary"`
	InsideCount  int64       `json:"inside_count"`
	Esmo         EsmoSummary `json:"esmo"`
	BlockedToday int64       `json:"blocked_today"`
}
