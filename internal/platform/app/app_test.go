package app

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/ogurasousui/codex-hr-attendance/internal/core/analytics"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/attendance"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/employee"
	"github.com/ogurasousui/codex-hr-attendance/internal/platform/config"
)

func loadMemoryConfig(t *testing.T) *config.Config {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
server:
  listen_addr: ":0"
storage:
  driver: memory
tables:
  attendance: attendance_test
attendance:
  timezone: Asia/Tokyo
  bulk_parallelism: 2
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	return cfg
}

func TestNew_MemoryDriver(t *testing.T) {
	t.Parallel()

	cfg := loadMemoryConfig(t)
	var buf bytes.Buffer
	a, err := New(context.Background(), cfg, log.New(&buf, "", 0))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer a.Close()

	if got := len(a.Handlers()); got != 7 {
		t.Fatalf("expected 7 handlers, got %d", got)
	}

	ctx := context.Background()
	emp, err := a.Employees.CreateEmployee(ctx, employee.CreateEmployeeInput{
		FirstName:  "Aiko",
		LastName:   "Sato",
		Email:      "aiko@example.com",
		Department: "Engineering",
	})
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}

	toggled, err := a.Attendance.Toggle(ctx, attendance.ToggleInput{EmployeeID: emp.ID})
	if err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}
	if toggled.Action != attendance.ActionSignedIn || !toggled.Snapshot.IsSignedIn {
		t.Fatalf("expected signed in snapshot, got %+v", toggled)
	}

	summary, err := a.Analytics.EmployeeSummary(ctx, analytics.EmployeeSummaryInput{EmployeeID: emp.ID})
	if err != nil {
		t.Fatalf("EmployeeSummary returned error: %v", err)
	}
	if summary.TodayHours != "In Progress" {
		t.Fatalf("expected in progress hours, got %s", summary.TodayHours)
	}
}

func TestNew_UnsupportedDriver(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Storage: config.StorageConfig{Driver: "sqlite"}}
	if _, err := New(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestNew_PostgresPoolFailure(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Storage:  config.StorageConfig{Driver: config.StorageDriverPostgres},
		Database: config.DatabaseConfig{Host: "localhost", Port: 5432, User: "hr", Name: "hr", SSLMode: "bogus"},
	}
	_, err := New(context.Background(), cfg, nil)
	if err == nil {
		t.Fatalf("expected pool error")
	}
	if errors.Unwrap(err) == nil {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestTablesFromConfig(t *testing.T) {
	t.Parallel()

	cfg := loadMemoryConfig(t)
	tables := TablesFromConfig(cfg.Tables)
	if tables.Attendance != "attendance_test" {
		t.Fatalf("expected overridden attendance table, got %s", tables.Attendance)
	}
	if tables.Employee != "employee" || tables.ReportSchedule != "report_schedule" {
		t.Fatalf("expected default table names, got %+v", tables)
	}
}
