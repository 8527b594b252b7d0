package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/minetrack/minetrack-backend-go/internal/domain/audit"
	"github.com/minetrack/minetrack-backend-go/internal/handler/http/middleware"
)

// auditLog records a registry mutation attributed to the request's user.
// Best effort: a failed audit write never fails the request that caused it.
func auditLog(r *http.Request, repo audit.Repository, action, entityType string, entityID int64, details interface{}) {
	if repo == nil {
		return
	}

	entry := audit.Entry{
		UserID:     middleware.UserID(r),
		Action:     action,
		EntityType: entityType,
	}
	if entityID != 0 {
		id := strconv.FormatInt(entityID, 10)
		entry.EntityID = &id
	}
	if details != nil {
		if raw, err := json.Marshal(details); err == nil {
			entry.Details = raw
		}
	}

	if err := repo.Log(r.Context(), entry); err != nil {
		slog.Warn("audit log write failed", "action", action, "entity_type", entityType, "error", err)
	}
}
