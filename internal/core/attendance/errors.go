package attendance

import "errors"

var (
	ErrInvalidID           = errors.New("attendance: invalid id")
	ErrInvalidEmployeeID   = errors.New("attendance: invalid employee id")
	ErrInvalidStatus       = errors.New("attendance: invalid status")
	ErrInvalidDate         = errors.New("attendance: invalid date")
	ErrInvalidDateRange    = errors.New("attendance: invalid date range")
	ErrNoEmployeesSelected = errors.New("attendance: no employees selected")
	ErrRecordNotFound      = errors.New("attendance: record not found")
)
