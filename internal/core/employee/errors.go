package employee

import "errors"

var (
	ErrInvalidID         = errors.New("employee: invalid id")
	ErrInvalidFirstName  = errors.New("employee: invalid first name")
	ErrInvalidLastName   = errors.New("employee: invalid last name")
	ErrInvalidEmail      = errors.New("employee: invalid email")
	ErrInvalidDepartment = errors.New("employee: unknown department")
	ErrInvalidStatus     = errors.New("employee: invalid status")
	ErrInvalidPageSize   = errors.New("employee: invalid page size")
	ErrInvalidPageToken  = errors.New("employee: invalid page token")
	ErrEmployeeNotFound  = errors.New("employee: not found")
)
