package xlsx

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/ogurasousui/codex-hr-attendance/internal/core/analytics"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/attendance"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/employee"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/performance"
)

func sampleInput() Input {
	return Input{
		From: "2024-05-01",
		To:   "2024-05-31",
		Records: []*attendance.Record{
			{EmployeeID: "emp-2", Date: "2024-05-10", Status: attendance.StatusLate, CheckIn: "10:00"},
			{EmployeeID: "emp-1", Date: "2024-05-10", Status: attendance.StatusAbsent},
			{EmployeeID: "emp-1", Date: "2024-05-09", Status: attendance.StatusPresent, CheckIn: "09:00", CheckOut: "17:30"},
		},
		Employees: []*employee.Employee{
			{ID: "emp-1", FirstName: "Aiko", LastName: "Sato", Department: "Engineering", Status: employee.StatusActive},
			{ID: "emp-2", FirstName: "Ben", LastName: "Ito", Department: "Sales", Status: employee.StatusActive},
		},
		Reviews: []*performance.Review{
			{EmployeeID: "emp-1", Score: 4},
			{EmployeeID: "emp-1", Score: 5},
		},
		Dashboard: &analytics.Dashboard{TotalEmployees: 2, ActiveEmployees: 2, ActiveProjects: 1},
	}
}

func TestWrite_Sheets(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, sampleInput()); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader returned error: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 3 || sheets[0] != SheetAttendance || sheets[1] != SheetEmployees || sheets[2] != SheetKPI {
		t.Fatalf("unexpected sheets: %v", sheets)
	}

	rows, err := f.GetRows(SheetAttendance)
	if err != nil {
		t.Fatalf("GetRows returned error: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header and 3 rows, got %d", len(rows))
	}
	if rows[0][6] != "Total Hours" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][0] != "2024-05-09" || rows[1][2] != "Aiko Sato" || rows[1][6] != "8h 30m" {
		t.Fatalf("unexpected first row: %v", rows[1])
	}
	if rows[2][1] != "emp-1" || rows[2][6] != "N/A" {
		t.Fatalf("unexpected second row: %v", rows[2])
	}
	if rows[3][1] != "emp-2" || rows[3][6] != "In Progress" {
		t.Fatalf("unexpected third row: %v", rows[3])
	}

	employees, err := f.GetRows(SheetEmployees)
	if err != nil {
		t.Fatalf("GetRows returned error: %v", err)
	}
	if len(employees) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(employees))
	}
	if employees[1][4] != "50.0" || employees[1][5] != "4.5" {
		t.Fatalf("unexpected emp-1 summary: %v", employees[1])
	}
	if employees[2][4] != "0.0" || employees[2][5] != "N/A" {
		t.Fatalf("unexpected emp-2 summary: %v", employees[2])
	}

	kpi, err := f.GetRows(SheetKPI)
	if err != nil {
		t.Fatalf("GetRows returned error: %v", err)
	}
	if kpi[1][1] != "2024-05-01 - 2024-05-31" || kpi[2][1] != "3" {
		t.Fatalf("unexpected KPI rows: %v", kpi)
	}
	if kpi[4][0] != "Total Employees" || kpi[4][1] != "2" {
		t.Fatalf("unexpected dashboard rows: %v", kpi)
	}
}

func TestBuild_WithoutDashboard(t *testing.T) {
	t.Parallel()

	in := sampleInput()
	in.Dashboard = nil

	f, err := Build(in)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	defer f.Close()

	kpi, err := f.GetRows(SheetKPI)
	if err != nil {
		t.Fatalf("GetRows returned error: %v", err)
	}
	if len(kpi) != 4 {
		t.Fatalf("expected header and 3 period rows, got %d", len(kpi))
	}
}
