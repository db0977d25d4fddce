package handler

import (
	"context"

	"github.com/ogurasousui/codex-hr-attendance/internal/core/analytics"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/employee"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// AnalyticsService のサービス名です。
const AnalyticsService = "AnalyticsService"

// AnalyticsGrpcHandler は AnalyticsService の gRPC 実装です。
type AnalyticsGrpcHandler struct {
	svc analytics.UseCase
}

// NewAnalyticsGrpcHandler は AnalyticsGrpcHandler を生成します。
func NewAnalyticsGrpcHandler(svc analytics.UseCase) *AnalyticsGrpcHandler {
	return &AnalyticsGrpcHandler{svc: svc}
}

// Register は AnalyticsService をサーバーへ登録します。
func (h *AnalyticsGrpcHandler) Register(s grpc.ServiceRegistrar) {
	s.RegisterService(serviceDesc(AnalyticsService,
		method{"Dashboard", h.Dashboard},
		method{"EmployeeSummary", h.EmployeeSummary},
	), h)
}

// Dashboard は KPI を返します。
func (h *AnalyticsGrpcHandler) Dashboard(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	d, err := h.svc.Dashboard(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}

	perf := make([]any, 0, len(d.DepartmentPerformance))
	for _, p := range d.DepartmentPerformance {
		perf = append(perf, map[string]any{
			"department": p.Department,
			"average":    p.Average,
			"reviews":    p.Reviews,
		})
	}
	att := make([]any, 0, len(d.DepartmentAttendance))
	for _, a := range d.DepartmentAttendance {
		att = append(att, map[string]any{
			"department": a.Department,
			"rate":       a.Rate,
			"employees":  a.Employees,
		})
	}

	return toStruct(map[string]any{
		"date":                  d.Date,
		"totalEmployees":        d.TotalEmployees,
		"activeEmployees":       d.ActiveEmployees,
		"presentToday":          d.PresentToday,
		"attendanceRate":        d.AttendanceRate,
		"averagePerformance":    d.AveragePerformance,
		"projectCompletionRate": d.ProjectCompletionRate,
		"activeProjects":        d.ActiveProjects,
		"departmentPerformance": perf,
		"departmentAttendance":  att,
	})
}

// EmployeeSummary は社員ごとの指標を返します。率と平均は表示用の文字列 ("N/A" を含む) です。
func (h *AnalyticsGrpcHandler) EmployeeSummary(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	employeeID, err := fieldsOf(req).str("employeeId")
	if err != nil {
		return nil, err
	}

	summary, err := h.svc.EmployeeSummary(ctx, analytics.EmployeeSummaryInput{EmployeeID: employeeID})
	if err != nil {
		return nil, toStatusError(err)
	}

	return toStruct(map[string]any{
		"employee":           employeeMap(summary.Employee),
		"attendanceRate":     summary.AttendanceRate.String(),
		"performanceAverage": summary.PerformanceAverage.String(),
		"today":              snapshotMap(summary.Today),
		"todayHours":         summary.TodayHours,
		"projectCount":       summary.ProjectCount,
	})
}

func employeeMap(e *employee.Employee) any {
	if e == nil {
		return nil
	}
	return map[string]any{
		"id":         e.ID,
		"firstName":  e.FirstName,
		"lastName":   e.LastName,
		"fullName":   e.FullName(),
		"email":      e.Email,
		"department": e.Department,
		"position":   e.Position,
		"status":     string(e.Status),
		"hireDate":   datePointer(e.HireDate),
	}
}
