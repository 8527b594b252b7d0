package employee

import "time"

type Employee struct {
	ID         int64
	EmployeeNo string
	FirstName  string
	LastName   string
	Patronymic *string
	Department *string
	Position   *string
	IsActive   bool
	CreatedAt  time.Time
}

// FullName joins name parts the way journals display them: last first patronymic.
func (e Employee) FullName() string {
	name := e.LastName + " " + e.FirstName
	if e.Patronymic != nil && *e.Patronymic != "" {
		name += " " + *e.Patronymic
	}
	return name
}

// ExternalID links an employee to an upstream identity (HIKVISION card no,
// ESMO pass id). Unique per (system, external_id).
type ExternalID struct {
	ID         int64
	EmployeeID int64
	System     string
	ExternalID string
}

const (
	SystemHikvision = "HIKVISION"
	SystemEsmo      = "ESMO"
)
