package auth

import "github.com/minetrack/minetrack-backend-go/internal/pkg/validator"

// LoginRequest arrives form-encoded (username/password fields), matching the
// OAuth2 password-grant shape the dashboard posts.
type LoginRequest struct {
	Username string
	Password string
}

func (r LoginRequest) Validate() error {
	var errs validator.ValidationErrors
	if len(r.Username) < 3 {
		errs = append(errs, validator.ValidationError{Field: "username", Message: "username must be at least 3 characters"})
	}
	if len(r.Password) < 6 {
		errs = append(errs, validator.ValidationError{Field: "password", Message: "password must be at least 6 characters"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Username    string `json:"username"`
	Role        string `json:"role"`
}
