package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/minetrack/minetrack-backend-go/internal/domain/medical"
	"github.com/minetrack/minetrack-backend-go/internal/pkg/database"
)

type medicalRepository struct {
	db *database.DB
}

func NewMedicalRepository(db *database.DB) medical.Repository {
	return &medicalRepository{db: db}
}

const examColumns = `m.id, m.employee_id, m.esmo_id, m.terminal_name, m.result,
	m.pressure_systolic, m.pressure_diastolic, m.pulse, m.temperature, m.alcohol_mg_l, m.timestamp,
	emp.employee_no, emp.last_name, emp.first_name, emp.patronymic`

func scanExam(row pgx.Row) (medical.Exam, error) {
	var ex medical.Exam
	var empNo, lastName, firstName, patronymic *string

	err := row.Scan(
		&ex.ID, &ex.EmployeeID, &ex.EsmoID, &ex.TerminalName, &ex.Result,
		&ex.PressureSystolic, &ex.PressureDiastolic, &ex.Pulse, &ex.Temperature, &ex.AlcoholMgL, &ex.Timestamp,
		&empNo, &lastName, &firstName, &patronymic,
	)
	if err != nil {
		return medical.Exam{}, err
	}

	ex.EmployeeNo = empNo
	if lastName != nil {
		parts := make([]string, 0, 3)
		for _, p := range []*string{lastName, firstName, patronymic} {
			if p != nil && *p != "" {
				parts = append(parts, *p)
			}
		}
		full := strings.Join(parts, " ")
		ex.EmployeeFullName = &full
	}
	return ex, nil
}

// Create implements medical.Repository.
func (r *medicalRepository) Create(ctx context.Context, exam medical.Exam) (medical.Exam, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO medical_exams (employee_id, esmo_id, terminal_name, result,
			pressure_systolic, pressure_diastolic, pulse, temperature, alcohol_mg_l, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	err := q.QueryRow(ctx, query,
		exam.EmployeeID, exam.EsmoID, exam.TerminalName, exam.Result,
		exam.PressureSystolic, exam.PressureDiastolic, exam.Pulse,
		exam.Temperature, exam.AlcoholMgL, exam.Timestamp,
	).Scan(&exam.ID)
	if err != nil {
		return medical.Exam{}, fmt.Errorf("failed to create exam: %w", err)
	}
	return exam, nil
}

// Update implements medical.Repository.
func (r *medicalRepository) Update(ctx context.Context, exam medical.Exam) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE medical_exams
		SET employee_id = $2, terminal_name = $3, result = $4,
			pressure_systolic = $5, pressure_diastolic = $6, pulse = $7,
			temperature = $8, alcohol_mg_l = $9, timestamp = $10
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		exam.ID, exam.EmployeeID, exam.TerminalName, exam.Result,
		exam.PressureSystolic, exam.PressureDiastolic, exam.Pulse,
		exam.Temperature, exam.AlcoholMgL, exam.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to update exam: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return medical.ErrExamNotFound
	}
	return nil
}

// GetByEsmoID implements medical.Repository.
func (r *medicalRepository) GetByEsmoID(ctx context.Context, esmoID int64) (medical.Exam, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + examColumns + `
		FROM medical_exams m
		LEFT JOIN employees emp ON emp.id = m.employee_id
		WHERE m.esmo_id = $1
	`

	ex, err := scanExam(q.QueryRow(ctx, query, esmoID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return medical.Exam{}, medical.ErrExamNotFound
		}
		return medical.Exam{}, fmt.Errorf("failed to get exam by esmo id: %w", err)
	}
	return ex, nil
}

// List implements medical.Repository.
func (r *medicalRepository) List(ctx context.Context, filter medical.Filter) ([]medical.Exam, error) {
	q := GetQuerier(ctx, r.db)

	var conds []string
	var args []interface{}

	if filter.EmployeeID != nil {
		args = append(args, *filter.EmployeeID)
		conds = append(conds, "m.employee_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Result != "" {
		args = append(args, filter.Result)
		conds = append(conds, "m.result = $"+strconv.Itoa(len(args)))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		conds = append(conds, "m.timestamp >= $"+strconv.Itoa(len(args)))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		conds = append(conds, "m.timestamp < $"+strconv.Itoa(len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	query := `
		SELECT ` + examColumns + `
		FROM medical_exams m
		LEFT JOIN employees emp ON emp.id = m.employee_id
	` + where + `
		ORDER BY m.timestamp DESC, m.id DESC
	`

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}
	if filter.Skip > 0 {
		args = append(args, filter.Skip)
		query += " OFFSET $" + strconv.Itoa(len(args))
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list exams: %w", err)
	}
	defer rows.Close()

	return collectExams(rows)
}

func collectExams(rows pgx.Rows) ([]medical.Exam, error) {
	var result []medical.Exam
	for rows.Next() {
		ex, err := scanExam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exam: %w", err)
		}
		result = append(result, ex)
	}
	return result, rows.Err()
}

// CountByResult implements medical.Repository. Buckets are resolved in SQL the
// same way medical.NormalizeResult does in Go: everything that is not
// passed/failed counts as review, and review is not reported separately here.
func (r *medicalRepository) CountByResult(ctx context.Context, from, to time.Time) (total, passed, failed int64, err error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE LOWER(result) = 'passed'),
			COUNT(*) FILTER (WHERE LOWER(result) IN ('failed', 'fail', 'rejected'))
		FROM medical_exams
		WHERE timestamp >= $1 AND timestamp < $2
	`

	if err = q.QueryRow(ctx, query, from, to).Scan(&total, &passed, &failed); err != nil {
		return 0, 0, 0, fmt.Errorf("failed to count exams by result: %w", err)
	}
	return total, passed, failed, nil
}

// MaxEsmoID implements medical.Repository.
func (r *medicalRepository) MaxEsmoID(ctx context.Context) (*int64, error) {
	q := GetQuerier(ctx, r.db)

	var maxID *int64
	if err := q.QueryRow(ctx, `SELECT MAX(esmo_id) FROM medical_exams`).Scan(&maxID); err != nil {
		return nil, fmt.Errorf("failed to get max esmo id: %w", err)
	}
	return maxID, nil
}

// ListForLatestPerEmployee implements medical.Repository.
func (r *medicalRepository) ListForLatestPerEmployee(ctx context.Context, terminalNames []string, from, to *time.Time) ([]medical.Exam, error) {
	q := GetQuerier(ctx, r.db)

	var conds []string
	var args []interface{}

	if len(terminalNames) > 0 {
		args = append(args, terminalNames)
		conds = append(conds, "m.terminal_name = ANY($"+strconv.Itoa(len(args))+")")
	}
	if from != nil {
		args = append(args, *from)
		conds = append(conds, "m.timestamp >= $"+strconv.Itoa(len(args)))
	}
	if to != nil {
		args = append(args, *to)
		conds = append(conds, "m.timestamp < $"+strconv.Itoa(len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	query := `
		SELECT ` + examColumns + `
		FROM medical_exams m
		LEFT JOIN employees emp ON emp.id = m.employee_id
	` + where + `
		ORDER BY m.timestamp DESC, m.esmo_id DESC NULLS LAST, m.id DESC
	`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list exams for latest per employee: %w", err)
	}
	defer rows.Close()

	return collectExams(rows)
}
