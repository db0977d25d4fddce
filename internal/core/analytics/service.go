package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ogurasousui/codex-hr-attendance/internal/core/attendance"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/department"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/employee"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/performance"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/project"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// AttendanceSource は勤怠レコードの取得元です。
type AttendanceSource interface {
	List(ctx context.Context, filter attendance.ListFilter) ([]*attendance.Record, error)
}

// EmployeeSource は社員の取得元です。
type EmployeeSource interface {
	FindByID(ctx context.Context, id string) (*employee.Employee, error)
	List(ctx context.Context, filter employee.ListEmployeesFilter) ([]*employee.Employee, string, error)
}

// ReviewSource はレビューの取得元です。
type ReviewSource interface {
	List(ctx context.Context, filter performance.ListReviewsFilter) ([]*performance.Review, error)
}

// ProjectSource はプロジェクトの取得元です。
type ProjectSource interface {
	List(ctx context.Context, filter project.ListProjectsFilter) ([]*project.Project, error)
}

// AssignmentSource はアサインの取得元です。
type AssignmentSource interface {
	List(ctx context.Context, filter project.ListAssignmentsFilter) ([]*project.Assignment, error)
}

// DepartmentSource は登録済み部署の取得元です。
type DepartmentSource interface {
	List(ctx context.Context, filter department.ListDepartmentsFilter) ([]*department.Department, string, error)
}

// Sources は集計に利用するレコードの取得元をまとめます。Departments は省略可能です。
type Sources struct {
	Attendance  AttendanceSource
	Employees   EmployeeSource
	Reviews     ReviewSource
	Projects    ProjectSource
	Assignments AssignmentSource
	Departments DepartmentSource
}

// Service はダッシュボード向けの集計を行います。
// 集計のたびに全件を取得し直し、キャッシュは持ちません。
type Service struct {
	src      Sources
	clock    Clock
	location *time.Location
}

// UseCase は集計ユースケースの公開インターフェースです。
type UseCase interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
	EmployeeSummary(ctx context.Context, in EmployeeSummaryInput) (*EmployeeSummary, error)
}

// NewService は Service を生成します。loc が nil の場合は UTC です。
func NewService(src Sources, clock Clock, loc *time.Location) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{src: src, clock: clock, location: loc}
}

// Dashboard は KPI タイルと部署別の内訳です。
type Dashboard struct {
	Date                  string
	TotalEmployees        int
	ActiveEmployees       int
	PresentToday          int
	AttendanceRate        float64
	AveragePerformance    float64
	ProjectCompletionRate float64
	ActiveProjects        int
	DepartmentPerformance []DepartmentScore
	DepartmentAttendance  []DepartmentAttendance
}

// EmployeeSummaryInput は社員サマリ取得の入力です。
type EmployeeSummaryInput struct {
	EmployeeID string
}

// EmployeeSummary は社員ごとの指標です。
type EmployeeSummary struct {
	Employee           *employee.Employee
	AttendanceRate     Metric
	PerformanceAverage Metric
	Today              attendance.Snapshot
	TodayHours         string
	ProjectCount       int
}

// Dashboard は全コレクションを並行に取得して KPI を再計算します。
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	var (
		records     []*attendance.Record
		employees   []*employee.Employee
		reviews     []*performance.Review
		projects    []*project.Project
		departments []*department.Department
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.src.Attendance.List(gctx, attendance.ListFilter{})
		if err != nil {
			return fmt.Errorf("analytics: fetch attendance: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		employees, _, err = s.src.Employees.List(gctx, employee.ListEmployeesFilter{})
		if err != nil {
			return fmt.Errorf("analytics: fetch employees: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		reviews, err = s.src.Reviews.List(gctx, performance.ListReviewsFilter{})
		if err != nil {
			return fmt.Errorf("analytics: fetch reviews: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		projects, err = s.src.Projects.List(gctx, project.ListProjectsFilter{})
		if err != nil {
			return fmt.Errorf("analytics: fetch projects: %w", err)
		}
		return nil
	})
	if s.src.Departments != nil {
		g.Go(func() error {
			var err error
			departments, _, err = s.src.Departments.List(gctx, department.ListDepartmentsFilter{})
			if err != nil {
				return fmt.Errorf("analytics: fetch departments: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	today := s.today()
	ids := make([]string, 0, len(employees))
	active := 0
	for _, e := range employees {
		ids = append(ids, e.ID)
		if e.IsActive() {
			active++
		}
	}

	present := 0
	for _, snap := range attendance.DeriveAll(records, ids, today) {
		if snap.TodayStatus == attendance.StatusPresent {
			present++
		}
	}

	activeProjects := 0
	for _, p := range projects {
		if p.Status == project.StatusInProgress {
			activeProjects++
		}
	}

	deptNames := departmentNames(departments, employees)

	return &Dashboard{
		Date:                  today,
		TotalEmployees:        len(employees),
		ActiveEmployees:       active,
		PresentToday:          present,
		AttendanceRate:        AttendanceRate(records),
		AveragePerformance:    PerformanceAverage(reviews),
		ProjectCompletionRate: ProjectCompletionRate(projects),
		ActiveProjects:        activeProjects,
		DepartmentPerformance: DepartmentPerformanceAverages(deptNames, employees, reviews),
		DepartmentAttendance:  DepartmentAttendanceRates(deptNames, employees, records),
	}, nil
}

// EmployeeSummary は社員 1 名分の出勤率・評価平均・当日状態を返します。
func (s *Service) EmployeeSummary(ctx context.Context, in EmployeeSummaryInput) (*EmployeeSummary, error) {
	employeeID := strings.TrimSpace(in.EmployeeID)
	if employeeID == "" {
		return nil, ErrInvalidEmployeeID
	}

	var (
		emp         *employee.Employee
		records     []*attendance.Record
		reviews     []*performance.Review
		assignments []*project.Assignment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		emp, err = s.src.Employees.FindByID(gctx, employeeID)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = s.src.Attendance.List(gctx, attendance.ListFilter{EmployeeID: employeeID})
		if err != nil {
			return fmt.Errorf("analytics: fetch attendance: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		reviews, err = s.src.Reviews.List(gctx, performance.ListReviewsFilter{EmployeeID: employeeID})
		if err != nil {
			return fmt.Errorf("analytics: fetch reviews: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		assignments, err = s.src.Assignments.List(gctx, project.ListAssignmentsFilter{EmployeeID: employeeID})
		if err != nil {
			return fmt.Errorf("analytics: fetch assignments: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	today := s.today()
	snap := attendance.Derive(records, employeeID, today)

	hours := NotAvailable
	if snap.Record != nil {
		hours = TotalHours(snap.Record.CheckIn, snap.Record.CheckOut)
	}

	projectIDs := make(map[string]struct{}, len(assignments))
	for _, a := range assignments {
		projectIDs[a.ProjectID] = struct{}{}
	}

	return &EmployeeSummary{
		Employee:           emp,
		AttendanceRate:     EmployeeAttendanceRate(records, employeeID),
		PerformanceAverage: EmployeePerformanceAverage(reviews, employeeID),
		Today:              snap,
		TodayHours:         hours,
		ProjectCount:       len(projectIDs),
	}, nil
}

func (s *Service) today() string {
	return s.clock.Now().In(s.location).Format(attendance.DateLayout)
}

// departmentNames は登録済み部署に続けて、社員にのみ現れる部署を出現順に並べます。
func departmentNames(departments []*department.Department, employees []*employee.Employee) []string {
	seen := make(map[string]struct{}, len(departments))
	names := make([]string, 0, len(departments))
	for _, d := range departments {
		if _, ok := seen[d.Name]; ok {
			continue
		}
		seen[d.Name] = struct{}{}
		names = append(names, d.Name)
	}
	for _, name := range departmentsOf(employees) {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
