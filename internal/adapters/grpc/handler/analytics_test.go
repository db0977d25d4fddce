package handler

import (
	"context"
	"testing"

	"github.com/ogurasousui/codex-hr-attendance/internal/core/analytics"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/attendance"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/employee"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type stubAnalyticsUseCase struct {
	dashboard *analytics.Dashboard
	summary   *analytics.EmployeeSummary
	err       error
	input     analytics.EmployeeSummaryInput
}

func (s *stubAnalyticsUseCase) Dashboard(ctx context.Context) (*analytics.Dashboard, error) {
	return s.dashboard, s.err
}

func (s *stubAnalyticsUseCase) EmployeeSummary(ctx context.Context, in analytics.EmployeeSummaryInput) (*analytics.EmployeeSummary, error) {
	s.input = in
	return s.summary, s.err
}

func TestAnalyticsGrpcHandler_Dashboard(t *testing.T) {
	t.Parallel()

	handler := NewAnalyticsGrpcHandler(&stubAnalyticsUseCase{dashboard: &analytics.Dashboard{
		Date:                  "2024-05-10",
		TotalEmployees:        3,
		AttendanceRate:        66.7,
		DepartmentPerformance: []analytics.DepartmentScore{{Department: "Engineering", Average: 4.2, Reviews: 3}},
		DepartmentAttendance:  []analytics.DepartmentAttendance{{Department: "Engineering", Rate: 75, Employees: 2}},
	}})

	resp, err := handler.Dashboard(context.Background(), nil)
	if err != nil {
		t.Fatalf("Dashboard returned error: %v", err)
	}
	fields := resp.GetFields()
	if fields["totalEmployees"].GetNumberValue() != 3 || fields["attendanceRate"].GetNumberValue() != 66.7 {
		t.Fatalf("unexpected KPIs: %v", fields)
	}
	dept := fields["departmentPerformance"].GetListValue().GetValues()[0].GetStructValue().GetFields()
	if dept["department"].GetStringValue() != "Engineering" || dept["average"].GetNumberValue() != 4.2 {
		t.Fatalf("unexpected department score: %v", dept)
	}
}

func TestAnalyticsGrpcHandler_EmployeeSummary(t *testing.T) {
	t.Parallel()

	stub := &stubAnalyticsUseCase{summary: &analytics.EmployeeSummary{
		Employee:           &employee.Employee{ID: "emp-1", FirstName: "Aiko"},
		AttendanceRate:     analytics.Metric{Value: 50, Available: true},
		PerformanceAverage: analytics.Metric{},
		Today:              attendance.Snapshot{EmployeeID: "emp-1", State: attendance.StateSignedIn, TodayStatus: attendance.StatusPresent},
		TodayHours:         analytics.InProgress,
		ProjectCount:       2,
	}}
	handler := NewAnalyticsGrpcHandler(stub)

	resp, err := handler.EmployeeSummary(context.Background(), mustStruct(t, map[string]any{"employeeId": "emp-1"}))
	if err != nil {
		t.Fatalf("EmployeeSummary returned error: %v", err)
	}
	fields := resp.GetFields()
	if fields["attendanceRate"].GetStringValue() != "50.0" || fields["performanceAverage"].GetStringValue() != "N/A" {
		t.Fatalf("unexpected metrics: %v", fields)
	}
	if fields["todayHours"].GetStringValue() != "In Progress" || fields["projectCount"].GetNumberValue() != 2 {
		t.Fatalf("unexpected summary: %v", fields)
	}

	notFound := NewAnalyticsGrpcHandler(&stubAnalyticsUseCase{err: employee.ErrEmployeeNotFound})
	if _, err := notFound.EmployeeSummary(context.Background(), mustStruct(t, map[string]any{"employeeId": "ghost"})); status.Code(err) != codes.NotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
