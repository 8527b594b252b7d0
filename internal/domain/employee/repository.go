package employee

import "context"

// Repository defines data access for the employee registry. Numeric id is the
// canonical join key; employee_no and external ids are resolved here at the
// boundary and never used as join keys downstream.
type Repository interface {
	Create(ctx context.Context, emp Employee) (Employee, error)
	GetByID(ctx context.Context, id int64) (Employee, error)
	GetByEmployeeNo(ctx context.Context, employeeNo string) (Employee, error)
	GetByExternalID(ctx context.Context, system, externalID string) (Employee, error)
	List(ctx context.Context) ([]Employee, error)
	ListByIDs(ctx context.Context, ids []int64) ([]Employee, error)
	Update(ctx context.Context, emp Employee) error

	LinkExternalID(ctx context.Context, employeeID int64, system, externalID string) error
}
