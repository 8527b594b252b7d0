package employee

import "github.com/minetrack/minetrack-backend-go/internal/pkg/validator"

type CreateRequest struct {
	EmployeeNo string  `json:"employee_no"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Patronymic *string `json:"patronymic"`
	Department *string `json:"department"`
	Position   *string `json:"position"`
}

func (r CreateRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.EmployeeNo) {
		errs = append(errs, validator.ValidationError{Field: "employee_no", Message: "employee number is required"})
	}
	if len(r.EmployeeNo) > 32 {
		errs = append(errs, validator.ValidationError{Field: "employee_no", Message: "employee number must be at most 32 characters"})
	}
	if validator.IsEmpty(r.FirstName) {
		errs = append(errs, validator.ValidationError{Field: "first_name", Message: "first name is required"})
	}
	if validator.IsEmpty(r.LastName) {
		errs = append(errs, validator.ValidationError{Field: "last_name", Message: "last name is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateRequest struct {
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Patronymic *string `json:"patronymic"`
	Department *string `json:"department"`
	Position   *string `json:"position"`
	IsActive   *bool   `json:"is_active"`
}

type Response struct {
	ID         int64   `json:"id"`
	EmployeeNo string  `json:"employee_no"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Patronymic *string `json:"patronymic,omitempty"`
	Department *string `json:"department,omitempty"`
	Position   *string `json:"position,omitempty"`
	IsActive   bool    `json:"is_active"`
}

func ToResponse(e Employee) Response {
	return Response{
		ID:         e.ID,
		EmployeeNo: e.EmployeeNo,
		FirstName:  e.FirstName,
		LastName:   e.LastName,
		Patronymic: e.Patronymic,
		Department: e.Department,
		Position:   e.Position,
		IsActive:   e.IsActive,
	}
}
