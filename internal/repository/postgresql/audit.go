package postgresql

import (
	"context"
	"fmt"

	"github.com/minetrack/minetrack-backend-go/internal/domain/audit"
	"github.com/minetrack/minetrack-backend-go/internal/pkg/database"
)

type auditRepository struct {
	db *database.DB
}

func NewAuditRepository(db *database.DB) audit.Repository {
	return &auditRepository{db: db}
}

// Log implements audit.Repository.
func (r *auditRepository) Log(ctx context.Context, entry audit.Entry) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO audit_logs (user_id, action, entity_type, entity_id, details)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := q.Exec(ctx, query, entry.UserID, entry.Action, entry.EntityType, entry.EntityID, entry.Details); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
