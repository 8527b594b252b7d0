package medical

import "time"

type Filter struct {
	EmployeeID *int64
	Result     string
	StartDate  *time.Time
	EndDate    *time.Time
	Skip       int
	Limit      int
}

type ExamResponse struct {
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

func ToResponse(e Exam) ExamResponse {
	return ExamResponse{
		ID:                e.ID,
		EmployeeID:        e.EmployeeID,
		EsmoID:            e.EsmoID,
		TerminalName:      e.TerminalName,
		Result:            e.Result,
		PressureSystolic:  e.PressureSystolic,
		PressureDiastolic: e.PressureDiastolic,
		Pulse:             e.Pulse,
		Temperature:       e.Temperature,
		AlcoholMgL:        e.AlcoholMgL,
		Timestamp:         e.Timestamp,
		EmployeeNo:        e.EmployeeNo,
		EmployeeFullName:  e.EmployeeFullName,
	}
}

type DayStats struct {
	Date   string `json:"date"`
	Total  int64  `json:"total"`
	Passed int64  `json:"passed"`
	Failed int64  `json:"failed"`
}

type SyncResult struct {
	Fetched  int `json:"fetched"`
	Saved    int `json:"saved"`
	Repaired int `json:"repaired"`
	Skipped  int `json:"skipped"`
}

// PortalEmployee is one row of the ESMO portal's own roster, used to link or
// import employees by pass id.
type PortalEmployee struct {
	PassID   string `json:"pass_id"`
	FullName string `json:"full_name"`
	Linked   bool   `json:"linked"`
}

type EmployeeSyncResult struct {
	Listed  int `json:"listed"`
	Created int `json:"created"`
	Linked  int `json:"linked"`
}
