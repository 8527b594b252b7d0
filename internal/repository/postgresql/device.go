package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/minetrack/minetrack-backend-go/internal/domain/device"
	"github.com/minetrack/minetrack-backend-go/internal/pkg/database"
)

type deviceRepository struct {
	db *database.DB
}

func NewDeviceRepository(db *database.DB) device.Repository {
	return &deviceRepository{db: db}
}

const deviceColumns = `id, name, device_code, host, device_type, location, api_key, is_active, last_seen, created_at`

func scanDevice(row pgx.Row) (device.Device, error) {
	var dev device.Device
	err := row.Scan(
		&dev.ID, &dev.Name, &dev.DeviceCode, &dev.Host, &dev.DeviceType,
		&dev.Location, &dev.APIKey, &dev.IsActive, &dev.LastSeen, &dev.CreatedAt,
	)
	return dev, err
}

// Create implements device.Repository.
func (r *deviceRepository) Create(ctx context.Context, dev device.Device) (device.Device, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO devices (name, device_code, host, device_type, location, api_key, is_active, last_seen)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		dev.Name, dev.DeviceCode, dev.Host, dev.DeviceType, dev.Location,
		dev.APIKey, dev.IsActive, dev.LastSeen,
	).Scan(&dev.ID, &dev.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return device.Device{}, device.ErrDeviceCodeExists
		}
		return device.Device{}, fmt.Errorf("failed to create device: %w", err)
	}

	return dev, nil
}

// GetByID implements device.Repository.
func (r *deviceRepository) GetByID(ctx context.Context, id int64) (device.Device, error) {
	q := GetQuerier(ctx, r.db)

	dev, err := scanDevice(q.QueryRow(ctx, `SELECT `+deviceColumns+` FROM devices WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return device.Device{}, device.ErrDeviceNotFound
		}
		return device.Device{}, fmt.Errorf("failed to get device: %w", err)
	}
	return dev, nil
}

// GetByCode implements device.Repository.
func (r *deviceRepository) GetByCode(ctx context.Context, deviceCode string) (device.Device, error) {
	q := GetQuerier(ctx, r.db)

	dev, err := scanDevice(q.QueryRow(ctx, `SELECT `+deviceColumns+` FROM devices WHERE device_code = $1`, deviceCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return device.Device{}, device.ErrDeviceNotFound
		}
		return device.Device{}, fmt.Errorf("failed to get device by code: %w", err)
	}
	return dev, nil
}

// GetByAPIKey implements device.Repository.
func (r *deviceRepository) GetByAPIKey(ctx context.Context, apiKey string) (device.Device, error) {
	q := GetQuerier(ctx, r.db)

	dev, err := scanDevice(q.QueryRow(ctx, `SELECT `+deviceColumns+` FROM devices WHERE api_key = $1 AND is_active = TRUE`, apiKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return device.Device{}, device.ErrInvalidAPIKey
		}
		return device.Device{}, fmt.Errorf("failed to get device by api key: %w", err)
	}
	return dev, nil
}

// List implements device.Repository.
func (r *deviceRepository) List(ctx context.Context) ([]device.Device, error) {
	return r.list(ctx, `SELECT `+deviceColumns+` FROM devices ORDER BY id`)
}

// ListByType implements device.Repository.
func (r *deviceRepository) ListByType(ctx context.Context, deviceType device.Type) ([]device.Device, error) {
	return r.list(ctx, `SELECT `+deviceColumns+` FROM devices WHERE device_type = $1 ORDER BY id`, deviceType)
}

func (r *deviceRepository) list(ctx context.Context, query string, args ...interface{}) ([]device.Device, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	var result []device.Device
	for rows.Next() {
		dev, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		result = append(result, dev)
	}
	return result, rows.Err()
}

// Update implements device.Repository.
func (r *deviceRepository) Update(ctx context.Context, dev device.Device) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE devices
		SET name = $2, host = $3, device_type = $4, location = $5, is_active = $6
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, dev.ID, dev.Name, dev.Host, dev.DeviceType, dev.Location, dev.IsActive)
	if err != nil {
		return fmt.Errorf("failed to update device: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return device.ErrDeviceNotFound
	}
	return nil
}

// TouchLastSeen implements device.Repository.
func (r *deviceRepository) TouchLastSeen(ctx context.Context, id int64, seenAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `UPDATE devices SET last_seen = $2 WHERE id = $1`, id, seenAt); err != nil {
		return fmt.Errorf("failed to update last_seen: %w", err)
	}
	return nil
}

// ListDataStatus implements device.Repository. ESMO terminals report data
// through medical exams (matched by terminal name); everything else through
// events.
func (r *deviceRepository) ListDataStatus(ctx context.Context) ([]device.DataStatus, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT d.id,
			CASE WHEN d.device_type = 'ESMO'
				THEN (SELECT MAX(m.timestamp) FROM medical_exams m WHERE m.terminal_name = d.name)
				ELSE (SELECT MAX(e.event_ts) FROM events e WHERE e.device_id = d.id)
			END AS last_data_at
		FROM devices d
		ORDER BY d.id
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list device data status: %w", err)
	}
	defer rows.Close()

	var result []device.DataStatus
	for rows.Next() {
		var st device.DataStatus
		if err := rows.Scan(&st.DeviceID, &st.LastDataAt); err != nil {
			return nil, fmt.Errorf("failed to scan data status: %w", err)
		}
		result = append(result, st)
	}
	return result, rows.Err()
}
