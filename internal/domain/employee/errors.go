package employee

import "errors"

var (
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrEmployeeNoExists   = errors.New("employee number already exists")
	ErrExternalIDConflict = errors.New("external id already linked to another employee")
)
