package employee

import (
	"context"
	"fmt"

	"github.com/minetrack/minetrack-backend-go/internal/domain/employee"
)

type EmployeeServiceImpl struct {
	employeeRepo employee.Repository
}

func NewEmployeeService(employeeRepo employee.Repository) employee.Service {
	return &EmployeeServiceImpl{employeeRepo: employeeRepo}
}

// Create implements employee.Service.
func (s *EmployeeServiceImpl) Create(ctx context.Context, req employee.CreateRequest) (employee.Response, error) {
	if err := req.Validate(); err != nil {
		return employee.Response{}, err
	}

	created, err := s.employeeRepo.Create(ctx, employee.Employee{
		EmployeeNo: req.EmployeeNo,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Patronymic: req.Patronymic,
		Department: req.Department,
		Position:   req.Position,
		IsActive:   true,
	})
	if err != nil {
		return employee.Response{}, err
	}

	return employee.ToResponse(created), nil
}

// Get implements employee.Service.
func (s *EmployeeServiceImpl) Get(ctx context.Context, id int64) (employee.Response, error) {
	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.Response{}, err
	}
	return employee.ToResponse(emp), nil
}

// List implements employee.Service.
func (s *EmployeeServiceImpl) List(ctx context.Context) ([]employee.Response, error) {
	employees, err := s.employeeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	result := make([]employee.Response, 0, len(employees))
	for _, emp := range employees {
		result = append(result, employee.ToResponse(emp))
	}
	return result, nil
}

// Update implements employee.Service. Only the fields present in the request
// change; employee_no is immutable after creation.
func (s *EmployeeServiceImpl) Update(ctx context.Context, id int64, req employee.UpdateRequest) (employee.Response, error) {
	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.Response{}, err
	}

	if req.FirstName != nil {
		emp.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		emp.LastName = *req.LastName
	}
	if req.Patronymic != nil {
		emp.Patronymic = req.Patronymic
	}
	if req.Department != nil {
		emp.Department = req.Department
	}
	if req.Position != nil {
		emp.Position = req.Position
	}
	if req.IsActive != nil {
		emp.IsActive = *req.IsActive
	}

	if err := s.employeeRepo.Update(ctx, emp); err != nil {
		return employee.Response{}, err
	}
	return employee.ToResponse(emp), nil
}
