package response

import (
	"errors"
	"net/http"

	"github.com/minetrack/minetrack-backend-go/internal/domain/auth"
	"github.com/minetrack/minetrack-backend-go/internal/domain/device"
	"github.com/minetrack/minetrack-backend-go/internal/domain/employee"
	"github.com/minetrack/minetrack-backend-go/internal/domain/event"
	"github.com/minetrack/minetrack-backend-go/internal/domain/medical"
	"github.com/minetrack/minetrack-backend-go/internal/domain/user"
	"github.com/minetrack/minetrack-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, "Invalid username or password")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrUserInactive):
		Forbidden(w, "Account disabled")
	case errors.Is(err, auth.ErrForbidden):
		Forbidden(w, "Insufficient role")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeNoExists):
		Conflict(w, "Employee number already exists")
	case errors.Is(err, employee.ErrExternalIDConflict):
		Conflict(w, "External id already linked to another employee")

	// Device domain errors
	case errors.Is(err, device.ErrDeviceNotFound):
		NotFound(w, "Device not found")
	case errors.Is(err, device.ErrDeviceCodeExists):
		Conflict(w, "Device code already exists")
	case errors.Is(err, device.ErrInvalidControlPassword):
		Forbidden(w, "Invalid control password")
	case errors.Is(err, device.ErrInvalidAPIKey):
		Unauthorized(w, "Invalid device API key")
	case errors.Is(err, device.ErrInvalidDeviceType):
		BadRequest(w, "Unknown device type", nil)

	// Event domain errors
	case errors.Is(err, event.ErrEventNotFound):
		NotFound(w, "Event not found")

	// Medical domain errors
	case errors.Is(err, medical.ErrExamNotFound):
		NotFound(w, "Medical exam not found")
	case errors.Is(err, medical.ErrSyncTimeout):
		GatewayTimeout(w, "Medical records sync timed out")
	case errors.Is(err, medical.ErrSyncDisabled):
		Conflict(w, "ESMO sync is disabled")

	// User domain errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrUsernameExists):
		Conflict(w, "Username already exists")
	case errors.Is(err, user.ErrAdminRoleRequired):
		Forbidden(w, "Admin privileges required")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
