package handler

import (
	"context"
	"errors"

	"github.com/ogurasousui/codex-hr-attendance/internal/core/analytics"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/attendance"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/department"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/employee"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/performance"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/project"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/recordstore"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/report"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var invalidArgumentErrors = []error{
	attendance.ErrInvalidID,
	attendance.ErrInvalidEmployeeID,
	attendance.ErrInvalidStatus,
	attendance.ErrInvalidDate,
	attendance.ErrInvalidDateRange,
	attendance.ErrNoEmployeesSelected,
	analytics.ErrInvalidEmployeeID,
	employee.ErrInvalidID,
	employee.ErrInvalidFirstName,
	employee.ErrInvalidLastName,
	employee.ErrInvalidEmail,
	employee.ErrInvalidDepartment,
	employee.ErrInvalidStatus,
	employee.ErrInvalidPageSize,
	employee.ErrInvalidPageToken,
	department.ErrInvalidID,
	department.ErrInvalidName,
	department.ErrInvalidPageSize,
	department.ErrInvalidPageToken,
	performance.ErrInvalidID,
	performance.ErrInvalidEmployeeID,
	performance.ErrInvalidQuarter,
	performance.ErrInvalidScore,
	performance.ErrInvalidReviewDate,
	project.ErrInvalidID,
	project.ErrInvalidName,
	project.ErrInvalidEndDate,
	project.ErrInvalidStatus,
	project.ErrInvalidProgress,
	project.ErrInvalidEmployeeID,
	report.ErrInvalidID,
	report.ErrInvalidEmail,
	report.ErrInvalidFrequency,
}

var notFoundErrors = []error{
	attendance.ErrRecordNotFound,
	employee.ErrEmployeeNotFound,
	department.ErrDepartmentNotFound,
	performance.ErrReviewNotFound,
	project.ErrProjectNotFound,
	project.ErrAssignmentNotFound,
	report.ErrScheduleNotFound,
}

func toStatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, recordstore.ErrCorruptRecord):
		return status.Error(codes.DataLoss, err.Error())
	case matchesAny(err, invalidArgumentErrors):
		return status.Error(codes.InvalidArgument, err.Error())
	case matchesAny(err, notFoundErrors):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, department.ErrNameAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, recordstore.ErrUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
