package medical

import "time"

// Exam is one pre-shift screening taken at an ESMO terminal. Timestamps are
// stored facility-local (the portal reports local wall-clock time).
type Exam struct {
	ID                int64
	EmployeeID        int64
	EsmoID            *int64
	TerminalName      *string
	Result            string
	PressureSystolic  *int
	PressureDiastolic *int
	Pulse             *int
	Temperature       *float64
	AlcoholMgL        *float64
	Timestamp         time.Time

	EmployeeNo       *string
	EmployeeFullName *string
}
