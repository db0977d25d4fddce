package app

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ogurasousui/codex-hr-attendance/internal/adapters/grpc/handler"
	"github.com/ogurasousui/codex-hr-attendance/internal/adapters/recordstore/memory"
	pgstore "github.com/ogurasousui/codex-hr-attendance/internal/adapters/recordstore/postgres"
	"github.com/ogurasousui/codex-hr-attendance/internal/adapters/repository/records"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/analytics"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/attendance"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/department"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/employee"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/performance"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/project"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/recordstore"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/report"
	"github.com/ogurasousui/codex-hr-attendance/internal/platform/config"
	pg "github.com/ogurasousui/codex-hr-attendance/internal/platform/db/postgres"
)

const txMaxRetries = 3

// transactionManager は各サービスが要求するトランザクション制御です。
type transactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

// Repositories はレコードストア上のリポジトリ群です。
type Repositories struct {
	Attendance  *records.AttendanceRepository
	Employees   *records.EmployeeRepository
	Reviews     *records.ReviewRepository
	Projects    *records.ProjectRepository
	Assignments *records.AssignmentRepository
	Departments *records.DepartmentRepository
	Schedules   *records.ScheduleRepository
}

// App は設定から組み立てたサービス群を保持します。
type App struct {
	Repositories Repositories

	Attendance  *attendance.Service
	Employees   *employee.Service
	Departments *department.Service
	Performance *performance.Service
	Projects    *project.Service
	Reports     *report.Service
	Analytics   *analytics.Service

	logger *log.Logger
	pool   *pgxpool.Pool
}

// New は storage.driver に応じたレコードストアを開き、サービスを組み立てます。
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = log.Default()
	}

	a := &App{logger: logger}

	var (
		store recordstore.Store
		tx    transactionManager
	)

	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		store = memory.New()
	case config.StorageDriverPostgres:
		pool, err := pg.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("app: initialize database pool: %w", err)
		}
		a.pool = pool
		store = pgstore.NewStore(pool)
		tx = pg.NewTransactionManager(pool, pg.WithIsoLevel(pgx.Serializable), pg.WithMaxRetries(txMaxRetries))
	default:
		return nil, fmt.Errorf("app: unsupported storage driver %q", cfg.Storage.Driver)
	}

	a.Repositories = NewRepositories(store, TablesFromConfig(cfg.Tables), logger)
	a.wire(cfg, tx)

	return a, nil
}

// NewRepositories は store 上に各リポジトリを生成します。壊れたレコードは logger へ出力されます。
func NewRepositories(store recordstore.Store, tables records.Tables, logger *log.Logger) Repositories {
	withLogger := records.WithLogger(logger)
	return Repositories{
		Attendance:  records.NewAttendanceRepository(store, tables.Attendance, withLogger),
		Employees:   records.NewEmployeeRepository(store, tables.Employee, withLogger),
		Reviews:     records.NewReviewRepository(store, tables.PerformanceReview),
		Projects:    records.NewProjectRepository(store, tables.Project, withLogger),
		Assignments: records.NewAssignmentRepository(store, tables.ProjectAssignment),
		Departments: records.NewDepartmentRepository(store, tables.Department),
		Schedules:   records.NewScheduleRepository(store, tables.ReportSchedule),
	}
}

// TablesFromConfig は設定のテーブル名をリポジトリ用に変換します。
func TablesFromConfig(t config.TablesConfig) records.Tables {
	return records.Tables{
		Employee:          t.Employee,
		Attendance:        t.Attendance,
		PerformanceReview: t.PerformanceReview,
		Project:           t.Project,
		ProjectAssignment: t.ProjectAssignment,
		Department:        t.Department,
		ReportSchedule:    t.ReportSchedule,
	}
}

func (a *App) wire(cfg *config.Config, tx transactionManager) {
	repos := a.Repositories
	loc := cfg.Attendance.Location

	a.Departments = department.NewService(repos.Departments, tx)
	a.Employees = employee.NewService(repos.Employees, nil, tx, employee.WithDepartmentDirectory(a.Departments))
	a.Attendance = attendance.NewService(repos.Attendance, nil,
		attendance.WithLocation(loc),
		attendance.WithParallelism(cfg.Attendance.BulkParallelism),
		attendance.WithLogger(a.logger),
	)
	a.Performance = performance.NewService(repos.Reviews, nil)
	a.Projects = project.NewService(repos.Projects, repos.Assignments, tx)
	a.Reports = report.NewService(repos.Schedules)
	a.Analytics = analytics.NewService(analytics.Sources{
		Attendance:  repos.Attendance,
		Employees:   repos.Employees,
		Reviews:     repos.Reviews,
		Projects:    repos.Projects,
		Assignments: repos.Assignments,
		Departments: repos.Departments,
	}, nil, loc)
}

// Handlers は gRPC サーバーへ登録するハンドラ一覧を返します。
func (a *App) Handlers() []handler.Registrar {
	return []handler.Registrar{
		handler.NewAttendanceGrpcHandler(a.Attendance, a.logger),
		handler.NewAnalyticsGrpcHandler(a.Analytics),
		handler.NewEmployeeGrpcHandler(a.Employees),
		handler.NewDepartmentGrpcHandler(a.Departments),
		handler.NewPerformanceGrpcHandler(a.Performance),
		handler.NewProjectGrpcHandler(a.Projects),
		handler.NewReportGrpcHandler(a.Reports),
	}
}

// Close はデータベース接続を解放します。
func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}
