package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/minetrack/minetrack-backend-go/internal/domain/employee"
	"github.com/minetrack/minetrack-backend-go/internal/pkg/database"
)

type employeeRepository struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.Repository {
	return &employeeRepository{db: db}
}

const employeeColumns = `id, employee_no, first_name, last_name, patronymic, department, position, is_active, created_at`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.EmployeeNo, &emp.FirstName, &emp.LastName, &emp.Patronymic,
		&emp.Department, &emp.Position, &emp.IsActive, &emp.CreatedAt,
	)
	return emp, err
}

// Create implements employee.Repository.
func (r *employeeRepository) Create(ctx context.Context, emp employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO employees (employee_no, first_name, last_name, patronymic, department, position, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		emp.EmployeeNo, emp.FirstName, emp.LastName, emp.Patronymic,
		emp.Department, emp.Position, emp.IsActive,
	).Scan(&emp.ID, &emp.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return employee.Employee{}, employee.ErrEmployeeNoExists
		}
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}

	return emp, nil
}

// GetByID implements employee.Repository.
func (r *employeeRepository) GetByID(ctx context.Context, id int64) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	emp, err := scanEmployee(q.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return emp, nil
}

// GetByEmployeeNo implements employee.Repository.
func (r *employeeRepository) GetByEmployeeNo(ctx context.Context, employeeNo string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	emp, err := scanEmployee(q.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE employee_no = $1`, employeeNo))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by number: %w", err)
	}
	return emp, nil
}

// GetByExternalID implements employee.Repository.
func (r *employeeRepository) GetByExternalID(ctx context.Context, system, externalID string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT e.id, e.employee_no, e.first_name, e.last_name, e.patronymic, e.department, e.position, e.is_active, e.created_at
		FROM employees e
		JOIN employee_external_ids x ON x.employee_id = e.id
		WHERE x.system = $1 AND x.external_id = $2
	`

	emp, err := scanEmployee(q.QueryRow(ctx, query, system, externalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by external id: %w", err)
	}
	return emp, nil
}

// List implements employee.Repository.
func (r *employeeRepository) List(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var result []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		result = append(result, emp)
	}
	return result, rows.Err()
}

// ListByIDs implements employee.Repository.
func (r *employeeRepository) ListByIDs(ctx context.Context, ids []int64) ([]employee.Employee, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees by ids: %w", err)
	}
	defer rows.Close()

	var result []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		result = append(result, emp)
	}
	return result, rows.Err()
}

// Update implements employee.Repository.
func (r *employeeRepository) Update(ctx context.Context, emp employee.Employee) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employees
		SET first_name = $2, last_name = $3, patronymic = $4, department = $5, position = $6, is_active = $7
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, emp.ID, emp.FirstName, emp.LastName, emp.Patronymic, emp.Department, emp.Position, emp.IsActive)
	if err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// LinkExternalID implements employee.Repository.
func (r *employeeRepository) LinkExternalID(ctx context.Context, employeeID int64, system, externalID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO employee_external_ids (employee_id, system, external_id)
		VALUES ($1, $2, $3)
		ON CONFLICT ON CONSTRAINT uq_employee_external_ids_employee_system
		DO UPDATE SET external_id = EXCLUDED.external_id
	`

	if _, err := q.Exec(ctx, query, employeeID, system, externalID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return employee.ErrExternalIDConflict
		}
		return fmt.Errorf("failed to link external id: %w", err)
	}
	return nil
}
