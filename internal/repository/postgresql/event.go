package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/minetrack/minetrack-backend-go/internal/domain/event"
	"github.com/minetrack/minetrack-backend-go/internal/pkg/database"
)

type eventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) event.Repository {
	return &eventRepository{db: db}
}

const eventColumns = `e.id, e.device_id, e.employee_id, e.event_type, e.event_ts, e.received_ts,
	e.raw_id, e.status, e.reject_reason, e.source_payload, emp.employee_no, emp.last_name, emp.first_name, emp.patronymic`

func scanEvent(row pgx.Row) (event.Event, error) {
	var ev event.Event
	var empNo, lastName, firstName, patronymic *string

	err := row.Scan(
		&ev.ID, &ev.DeviceID, &ev.EmployeeID, &ev.EventType, &ev.EventTS, &ev.ReceivedTS,
		&ev.RawID, &ev.Status, &ev.RejectReason, &ev.SourcePayload,
		&empNo, &lastName, &firstName, &patronymic,
	)
	if err != nil {
		return event.Event{}, err
	}

	ev.EmployeeNo = empNo
	if lastName != nil {
		parts := make([]string, 0, 3)
		for _, p := range []*string{lastName, firstName, patronymic} {
			if p != nil && *p != "" {
				parts = append(parts, *p)
			}
		}
		full := strings.Join(parts, " ")
		ev.EmployeeFullName = &full
	}
	return ev, nil
}

// Create implements event.Repository.
func (r *eventRepository) Create(ctx context.Context, ev event.Event) (event.Event, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO events (device_id, employee_id, event_type, event_ts, raw_id, status, reject_reason, source_payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, received_ts
	`

	err := q.QueryRow(ctx, query,
		ev.DeviceID, ev.EmployeeID, ev.EventType, ev.EventTS,
		ev.RawID, ev.Status, ev.RejectReason, ev.SourcePayload,
	).Scan(&ev.ID, &ev.ReceivedTS)
	if err != nil {
		return event.Event{}, fmt.Errorf("failed to create event: %w", err)
	}
	return ev, nil
}

// GetByRawID implements event.Repository.
func (r *eventRepository) GetByRawID(ctx context.Context, deviceID int64, rawID string) (event.Event, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + eventColumns + `
		FROM events e
		LEFT JOIN employees emp ON emp.id = e.employee_id
		WHERE e.device_id = $1 AND e.raw_id = $2
	`

	ev, err := scanEvent(q.QueryRow(ctx, query, deviceID, rawID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return event.Event{}, event.ErrEventNotFound
		}
		return event.Event{}, fmt.Errorf("failed to get event by raw id: %w", err)
	}
	return ev, nil
}

// ListByRawIDs implements event.Repository.
func (r *eventRepository) ListByRawIDs(ctx context.Context, deviceID int64, rawIDs []string) ([]event.Event, error) {
	if len(rawIDs) == 0 {
		return nil, nil
	}

	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + eventColumns + `
		FROM events e
		LEFT JOIN employees emp ON emp.id = e.employee_id
		WHERE e.device_id = $1 AND e.raw_id = ANY($2)
	`

	rows, err := q.Query(ctx, query, deviceID, rawIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list events by raw ids: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// buildEventFilter turns an event.Filter into a WHERE clause with positional
// arguments starting at $1.
func buildEventFilter(filter event.Filter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, strings.Replace(cond, "?", "$"+strconv.Itoa(len(args)), 1))
	}

	if filter.DateFrom != nil {
		add("e.event_ts >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		add("e.event_ts < ?", *filter.DateTo)
	}
	if filter.EmployeeNo != "" {
		add("emp.employee_no ILIKE ?", "%"+filter.EmployeeNo+"%")
	}
	if filter.DeviceID != nil {
		add("e.device_id = ?", *filter.DeviceID)
	}
	if filter.EventType != nil {
		add("e.event_type = ?", *filter.EventType)
	}
	if filter.Status != nil {
		add("e.status = ?", *filter.Status)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List implements event.Repository.
func (r *eventRepository) List(ctx context.Context, filter event.Filter) ([]event.Event, error) {
	q := GetQuerier(ctx, r.db)

	where, args := buildEventFilter(filter)

	query := `
		SELECT ` + eventColumns + `
		FROM events e
		LEFT JOIN employees emp ON emp.id = e.employee_id
	` + where + `
		ORDER BY e.event_ts DESC, e.id DESC
	`

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += " OFFSET $" + strconv.Itoa(len(args))
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// Count implements event.Repository.
func (r *eventRepository) Count(ctx context.Context, filter event.Filter) (int64, error) {
	q := GetQuerier(ctx, r.db)

	where, args := buildEventFilter(filter)

	query := `
		SELECT COUNT(*)
		FROM events e
		LEFT JOIN employees emp ON emp.id = e.employee_id
	` + where

	var count int64
	if err := q.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

func collectEvents(rows pgx.Rows) ([]event.Event, error) {
	var result []event.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		result = append(result, ev)
	}
	return result, rows.Err()
}

// HasEsmoOKSince implements event.Repository.
func (r *eventRepository) HasEsmoOKSince(ctx context.Context, employeeID int64, since, until time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM events
			WHERE employee_id = $1 AND event_type = $2 AND status = $3
				AND event_ts >= $4 AND event_ts <= $5
		)
	`

	var exists bool
	err := q.QueryRow(ctx, query, employeeID, event.TypeEsmoOK, event.StatusAccepted, since, until).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check esmo window: %w", err)
	}
	return exists, nil
}

// ListTurnstile implements event.Repository.
func (r *eventRepository) ListTurnstile(ctx context.Context, from, to time.Time) ([]event.TurnstileEvent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT e.id, e.employee_id, e.event_type, e.event_ts, COALESCE(d.host, '')
		FROM events e
		JOIN devices d ON d.id = e.device_id
		WHERE e.event_type IN ($1, $2) AND e.status = $3
			AND e.event_ts >= $4 AND e.event_ts < $5
		ORDER BY e.employee_id, e.event_ts, e.id
	`

	rows, err := q.Query(ctx, query,
		event.TypeTurnstileIn, event.TypeTurnstileOut, event.StatusAccepted, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list turnstile events: %w", err)
	}
	defer rows.Close()

	var result []event.TurnstileEvent
	for rows.Next() {
		var te event.TurnstileEvent
		if err := rows.Scan(&te.ID, &te.EmployeeID, &te.EventType, &te.EventTS, &te.DeviceHost); err != nil {
			return nil, fmt.Errorf("failed to scan turnstile event: %w", err)
		}
		result = append(result, te)
	}
	return result, rows.Err()
}

// LastDirectionalByEmployee implements event.Repository.
func (r *eventRepository) LastDirectionalByEmployee(ctx context.Context, inType, outType event.Type) ([]event.DirectionalPair, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id,
			MAX(event_ts) FILTER (WHERE event_type = $1) AS last_in,
			MAX(event_ts) FILTER (WHERE event_type = $2) AS last_out
		FROM events
		WHERE event_type IN ($1, $2) AND status = $3
		GROUP BY employee_id
	`

	rows, err := q.Query(ctx, query, inType, outType, event.StatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate directional events: %w", err)
	}
	defer rows.Close()

	var result []event.DirectionalPair
	for rows.Next() {
		var pair event.DirectionalPair
		if err := rows.Scan(&pair.EmployeeID, &pair.LastIn, &pair.LastOut); err != nil {
			return nil, fmt.Errorf("failed to scan directional pair: %w", err)
		}
		result = append(result, pair)
	}
	return result, rows.Err()
}

// CountByType implements event.Repository.
func (r *eventRepository) CountByType(ctx context.Context, from, to *time.Time) (map[event.Type]int64, error) {
	q := GetQuerier(ctx, r.db)

	var conds []string
	var args []interface{}
	conds = append(conds, "status = $1")
	args = append(args, event.StatusAccepted)
	if from != nil {
		args = append(args, *from)
		conds = append(conds, "event_ts >= $"+strconv.Itoa(len(args)))
	}
	if to != nil {
		args = append(args, *to)
		conds = append(conds, "event_ts < $"+strconv.Itoa(len(args)))
	}

	query := `SELECT event_type, COUNT(*) FROM events WHERE ` + strings.Join(conds, " AND ") + ` GROUP BY event_type`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count events by type: %w", err)
	}
	defer rows.Close()

	result := make(map[event.Type]int64)
	for rows.Next() {
		var t event.Type
		var count int64
		if err := rows.Scan(&t, &count); err != nil {
			return nil, fmt.Errorf("failed to scan type count: %w", err)
		}
		result[t] = count
	}
	return result, rows.Err()
}

// CountRejected implements event.Repository.
func (r *eventRepository) CountRejected(ctx context.Context, from, to *time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var conds []string
	var args []interface{}
	conds = append(conds, "status = $1")
	args = append(args, event.StatusRejected)
	if from != nil {
		args = append(args, *from)
		conds = append(conds, "event_ts >= $"+strconv.Itoa(len(args)))
	}
	if to != nil {
		args = append(args, *to)
		conds = append(conds, "event_ts < $"+strconv.Itoa(len(args)))
	}

	query := `SELECT COUNT(*) FROM events WHERE ` + strings.Join(conds, " AND ")

	var count int64
	if err := q.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rejected events: %w", err)
	}
	return count, nil
}

// CountDistinctEmployees implements event.Repository.
func (r *eventRepository) CountDistinctEmployees(ctx context.Context, eventType event.Type, from, to time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(DISTINCT employee_id)
		FROM events
		WHERE event_type = $1 AND status = $2 AND event_ts >= $3 AND event_ts < $4
	`

	var count int64
	if err := q.QueryRow(ctx, query, eventType, event.StatusAccepted, from, to).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count distinct employees: %w", err)
	}
	return count, nil
}
