package analytics

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ogurasousui/codex-hr-attendance/internal/core/attendance"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/employee"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/performance"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/project"
)

const (
	// NotAvailable は対象レコードが存在しない場合の表示値です。
	NotAvailable = "N/A"
	// InProgress は退勤前の勤務時間の表示値です。
	InProgress = "In Progress"
)

// Metric は社員単位の指標です。Available が false の場合は "N/A" として扱います。
type Metric struct {
	Value     float64
	Available bool
}

// String は小数 1 桁の文字列、または "N/A" を返します。
func (m Metric) String() string {
	if !m.Available {
		return NotAvailable
	}
	return strconv.FormatFloat(m.Value, 'f', 1, 64)
}

// DepartmentScore は部署ごとの平均評価です。
type DepartmentScore struct {
	Department string
	Average    float64
	Reviews    int
}

// DepartmentAttendance は部署ごとの平均出勤率です。
type DepartmentAttendance struct {
	Department string
	Rate       float64
	Employees  int
}

// EmployeeAttendanceRate は社員の出勤率 (Present 件数 / 全件数 * 100) を返します。
// レコードが 1 件もない場合は N/A です。
func EmployeeAttendanceRate(records []*attendance.Record, employeeID string) Metric {
	present, total := 0, 0
	for _, r := range records {
		if r.EmployeeID != employeeID {
			continue
		}
		total++
		if r.Status == attendance.StatusPresent {
			present++
		}
	}
	if total == 0 {
		return Metric{}
	}
	return Metric{Value: round(float64(present)/float64(total)*100, 1), Available: true}
}

// AttendanceRate は全体の出勤率を返します。レコードがない場合は 0 です。
func AttendanceRate(records []*attendance.Record) float64 {
	if len(records) == 0 {
		return 0
	}
	present := 0
	for _, r := range records {
		if r.Status == attendance.StatusPresent {
			present++
		}
	}
	return round(float64(present)/float64(len(records))*100, 1)
}

// EmployeePerformanceAverage は社員の評価平均を返します。レビューがない場合は N/A です。
func EmployeePerformanceAverage(reviews []*performance.Review, employeeID string) Metric {
	sum, n := 0.0, 0
	for _, r := range reviews {
		if r.EmployeeID != employeeID {
			continue
		}
		sum += r.Score
		n++
	}
	if n == 0 {
		return Metric{}
	}
	return Metric{Value: round(sum/float64(n), 1), Available: true}
}

// PerformanceAverage は全レビューの評価平均を返します。レビューがない場合は 0 です。
func PerformanceAverage(reviews []*performance.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range reviews {
		sum += r.Score
	}
	return round(sum/float64(len(reviews)), 1)
}

// DepartmentPerformanceAverages は社員の所属部署でレビューをまとめ、部署ごとの平均を小数 2 桁で返します。
// departments が空の場合は社員の部署を出現順に使います。レビューのない部署は 0 です。
func DepartmentPerformanceAverages(departments []string, employees []*employee.Employee, reviews []*performance.Review) []DepartmentScore {
	if len(departments) == 0 {
		departments = departmentsOf(employees)
	}
	deptOf := departmentIndex(employees)

	sums := make(map[string]float64, len(departments))
	counts := make(map[string]int, len(departments))
	for _, r := range reviews {
		dept, ok := deptOf[r.EmployeeID]
		if !ok {
			continue
		}
		sums[dept] += r.Score
		counts[dept]++
	}

	out := make([]DepartmentScore, 0, len(departments))
	for _, dept := range departments {
		score := DepartmentScore{Department: dept, Reviews: counts[dept]}
		if counts[dept] > 0 {
			score.Average = round(sums[dept]/float64(counts[dept]), 2)
		}
		out = append(out, score)
	}
	return out
}

// DepartmentAttendanceRates は部署に所属する社員の出勤率を平均します。
// 勤怠レコードのない社員は平均の対象外です。
func DepartmentAttendanceRates(departments []string, employees []*employee.Employee, records []*attendance.Record) []DepartmentAttendance {
	if len(departments) == 0 {
		departments = departmentsOf(employees)
	}

	out := make([]DepartmentAttendance, 0, len(departments))
	for _, dept := range departments {
		sum, n := 0.0, 0
		for _, e := range employees {
			if e.Department != dept {
				continue
			}
			rate := EmployeeAttendanceRate(records, e.ID)
			if !rate.Available {
				continue
			}
			sum += rate.Value
			n++
		}

		item := DepartmentAttendance{Department: dept, Employees: n}
		if n > 0 {
			item.Rate = round(sum/float64(n), 1)
		}
		out = append(out, item)
	}
	return out
}

// ProjectCompletionRate はプロジェクト進捗の平均を返します。プロジェクトがない場合は 0 です。
func ProjectCompletionRate(projects []*project.Project) float64 {
	if len(projects) == 0 {
		return 0
	}
	total := 0
	for _, p := range projects {
		total += p.Progress
	}
	return round(float64(total)/float64(len(projects)), 1)
}

// TotalHours は "HH:mm" 形式の出退勤時刻から勤務時間を "{h}h {m}m" で返します。
// 出勤時刻が空または解釈できない場合は "N/A"、退勤時刻が空の場合は "In Progress" です。
// 日をまたぐ勤務は扱わず、退勤が出勤より前の場合は負の値をそのまま返します。
func TotalHours(checkIn, checkOut string) string {
	if strings.TrimSpace(checkIn) == "" {
		return NotAvailable
	}
	if strings.TrimSpace(checkOut) == "" {
		return InProgress
	}

	in, err := minutesOfDay(checkIn)
	if err != nil {
		return NotAvailable
	}
	out, err := minutesOfDay(checkOut)
	if err != nil {
		return NotAvailable
	}

	diff := out - in
	return fmt.Sprintf("%dh %dm", diff/60, diff%60)
}

func minutesOfDay(raw string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok {
		return 0, fmt.Errorf("analytics: invalid time %q", raw)
	}
	hours, err := strconv.Atoi(h)
	if err != nil {
		return 0, fmt.Errorf("analytics: invalid hour %q: %w", raw, err)
	}
	minutes, err := strconv.Atoi(m)
	if err != nil {
		return 0, fmt.Errorf("analytics: invalid minute %q: %w", raw, err)
	}
	return hours*60 + minutes, nil
}

func departmentIndex(employees []*employee.Employee) map[string]string {
	idx := make(map[string]string, len(employees))
	for _, e := range employees {
		if e.Department == "" {
			continue
		}
		idx[e.ID] = e.Department
	}
	return idx
}

func departmentsOf(employees []*employee.Employee) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, e := range employees {
		if e.Department == "" {
			continue
		}
		if _, ok := seen[e.Department]; ok {
			continue
		}
		seen[e.Department] = struct{}{}
		out = append(out, e.Department)
	}
	return out
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
