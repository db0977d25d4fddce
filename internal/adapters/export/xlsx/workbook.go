package xlsx

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/ogurasousui/codex-hr-attendance/internal/core/analytics"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/attendance"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/employee"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/performance"
)

// シート名です。
const (
	SheetAttendance = "Attendance"
	SheetEmployees  = "Employees"
	SheetKPI        = "KPI"
)

const (
	defaultSheet = "Sheet1"
	columnWidth  = 16
)

var (
	attendanceHeaders = []string{"Date", "Employee ID", "Employee", "Status", "Check In", "Check Out", "Total Hours"}
	employeeHeaders   = []string{"Employee ID", "Employee", "Department", "Status", "Attendance Rate", "Performance Average"}
	kpiHeaders        = []string{"Metric", "Value"}
)

// Input はワークブックに書き出すデータです。Records は From から To までの勤怠レコードです。
type Input struct {
	From      string
	To        string
	Records   []*attendance.Record
	Employees []*employee.Employee
	Reviews   []*performance.Review
	Dashboard *analytics.Dashboard
}

// Build は勤怠ログ・社員別サマリ・KPI の 3 シートからなるワークブックを生成します。
func Build(in Input) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(defaultSheet, SheetAttendance); err != nil {
		f.Close()
		return nil, fmt.Errorf("xlsx: rename default sheet: %w", err)
	}
	for _, name := range []string{SheetEmployees, SheetKPI} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("xlsx: create sheet %s: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6FA"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("xlsx: create header style: %w", err)
	}

	names := make(map[string]string, len(in.Employees))
	for _, e := range in.Employees {
		names[e.ID] = e.FullName()
	}

	writers := []struct {
		sheet   string
		headers []string
		rows    [][]any
	}{
		{SheetAttendance, attendanceHeaders, attendanceRows(in.Records, names)},
		{SheetEmployees, employeeHeaders, employeeRows(in)},
		{SheetKPI, kpiHeaders, kpiRows(in)},
	}
	for _, w := range writers {
		if err := writeSheet(f, w.sheet, w.headers, w.rows, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

// Write は Build したワークブックを w へ書き出します。
func Write(w io.Writer, in Input) error {
	f, err := Build(in)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]any, headerStyle int) error {
	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("xlsx: write %s header: %w", sheet, err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("xlsx: style %s header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx: write %s row %d: %w", sheet, i+2, err)
		}
	}

	last, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", last, columnWidth)
}

func attendanceRows(records []*attendance.Record, names map[string]string) [][]any {
	sorted := make([]*attendance.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date < sorted[j].Date
		}
		return sorted[i].EmployeeID < sorted[j].EmployeeID
	})

	rows := make([][]any, 0, len(sorted))
	for _, r := range sorted {
		rows = append(rows, []any{
			r.Date,
			r.EmployeeID,
			names[r.EmployeeID],
			string(r.Status),
			r.CheckIn,
			r.CheckOut,
			analytics.TotalHours(r.CheckIn, r.CheckOut),
		})
	}
	return rows
}

func employeeRows(in Input) [][]any {
	rows := make([][]any, 0, len(in.Employees))
	for _, e := range in.Employees {
		rows = append(rows, []any{
			e.ID,
			e.FullName(),
			e.Department,
			string(e.Status),
			analytics.EmployeeAttendanceRate(in.Records, e.ID).String(),
			analytics.EmployeePerformanceAverage(in.Reviews, e.ID).String(),
		})
	}
	return rows
}

func kpiRows(in Input) [][]any {
	rows := [][]any{
		{"Period", fmt.Sprintf("%s - %s", in.From, in.To)},
		{"Records", len(in.Records)},
		{"Period Attendance Rate", analytics.AttendanceRate(in.Records)},
	}
	if d := in.Dashboard; d != nil {
		rows = append(rows,
			[]any{"Total Employees", d.TotalEmployees},
			[]any{"Active Employees", d.ActiveEmployees},
			[]any{"Present Today", d.PresentToday},
			[]any{"Average Performance", d.AveragePerformance},
			[]any{"Project Completion Rate", d.ProjectCompletionRate},
			[]any{"Active Projects", d.ActiveProjects},
		)
		for _, dp := range d.DepartmentPerformance {
			rows = append(rows, []any{"Performance: " + dp.Department, dp.Average})
		}
	}
	return rows
}
