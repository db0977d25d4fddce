package performance

import "errors"

var (
	ErrInvalidID         = errors.New("performance: invalid id")
	ErrInvalidEmployeeID = errors.New("performance: invalid employee id")
	ErrInvalidQuarter    = errors.New("performance: invalid quarter")
	ErrInvalidScore      = errors.New("performance: invalid score")
	ErrInvalidReviewDate = errors.New("performance: invalid review date")
	ErrReviewNotFound    = errors.New("performance: review not found")
)
