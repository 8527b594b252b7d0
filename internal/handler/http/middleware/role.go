package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/minetrack/minetrack-backend-go/internal/domain/user"
	"github.com/minetrack/minetrack-backend-go/internal/handler/http/response"
)

// RequireAdmin requires the superadmin or admin role. Registry and user
// management endpoints sit behind it; journals and reports stay open to every
// authenticated role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, user.ErrAdminRoleRequired)
			return
		}

		roleStr, ok := claims["role"].(string)
		if !ok {
			response.HandleError(w, user.ErrAdminRoleRequired)
			return
		}

		if !user.Role(roleStr).CanManage() {
			response.HandleError(w, user.ErrAdminRoleRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// UserID extracts the authenticated user's id from the verified token, for
// audit attribution. Zero when unauthenticated.
func UserID(r *http.Request) *int64 {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return nil
	}
	raw, ok := claims["user_id"]
	if !ok {
		return nil
	}
	// jwx decodes numeric claims as float64.
	f, ok := raw.(float64)
	if !ok {
		return nil
	}
	id := int64(f)
	return &id
}
