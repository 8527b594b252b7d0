package user

import "github.com/minetrack/minetrack-backend-go/internal/pkg/validator"

type CreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

func (r CreateRequest) Validate() error {
	var errs validator.ValidationErrors
	if len(r.Username) < 3 || len(r.Username) > 64 {
		errs = append(errs, validator.ValidationError{Field: "username", Message: "username must be 3-64 characters"})
	}
	if len(r.Password) < 6 || len(r.Password) > 128 {
		errs = append(errs, validator.ValidationError{Field: "password", Message: "password must be 6-128 characters"})
	}
	if !r.Role.Valid() {
		errs = append(errs, validator.ValidationError{Field: "role", Message: "unknown role"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateRequest struct {
	Password *string `json:"password"`
	Role     *Role   `json:"role"`
	IsActive *bool   `json:"is_active"`
}

func (r UpdateRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.Password != nil && (len(*r.Password) < 6 || len(*r.Password) > 128) {
		errs = append(errs, validator.ValidationError{Field: "password", Message: "password must be 6-128 characters"})
	}
	if r.Role != nil && !r.Role.Valid() {
		errs = append(errs, validator.ValidationError{Field: "role", Message: "unknown role"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type Response struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	IsActive bool   `json:"is_active"`
}

func ToResponse(u User) Response {
	return Response{ID: u.ID, Username: u.Username, Role: u.Role, IsActive: u.IsActive}
}
