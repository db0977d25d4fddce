package project

import "errors"

var (
	ErrInvalidID          = errors.New("project: invalid id")
	ErrInvalidName        = errors.New("project: invalid name")
	ErrInvalidEndDate     = errors.New("project: invalid end date")
	ErrInvalidStatus      = errors.New("project: invalid status")
	ErrInvalidProgress    = errors.New("project: progress must be between 0 and 100")
	ErrInvalidEmployeeID  = errors.New("project: invalid employee id")
	ErrProjectNotFound    = errors.New("project: not found")
	ErrAssignmentNotFound = errors.New("project: assignment not found")
)
