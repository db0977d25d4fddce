package records

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/ogurasousui/codex-hr-attendance/internal/adapters/recordstore/memory"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/attendance"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/department"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/employee"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/performance"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/project"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/recordstore"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/report"
)

// failingStore は指定した従業員の作成だけを失敗させます。
type failingStore struct {
	recordstore.Store
	failEmployee string
	fetchErr     error
}

func (s *failingStore) Fetch(ctx context.Context, table string, q recordstore.Query) ([]*recordstore.Record, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.Store.Fetch(ctx, table, q)
}

func (s *failingStore) Create(ctx context.Context, table string, records []*recordstore.Record) ([]recordstore.Result, error) {
	results := make([]recordstore.Result, 0, len(records))
	for _, rec := range records {
		if s.failEmployee != "" && rec.String(fieldEmployeeID) == s.failEmployee {
			results = append(results, recordstore.Result{Err: errors.New("quota exceeded")})
			continue
		}
		created, err := s.Store.Create(ctx, table, []*recordstore.Record{rec})
		if err != nil {
			return nil, err
		}
		results = append(results, created...)
	}
	return results, nil
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func TestAttendanceRepository_CRUD(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewAttendanceRepository(memory.New(), DefaultTables().Attendance)

	created, err := repo.Create(ctx, &attendance.Record{EmployeeID: "emp-1", Date: "2024-05-10", Status: attendance.StatusPresent, CheckIn: "09:00"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected generated id")
	}

	created.CheckOut = "18:00"
	updated, err := repo.Update(ctx, created)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.CheckIn != "09:00" || updated.CheckOut != "18:00" {
		t.Fatalf("unexpected record: %+v", updated)
	}

	got, err := repo.FindByID(ctx, created.ID)
	if err != nil || got.CheckOut != "18:00" {
		t.Fatalf("FindByID returned %+v, %v", got, err)
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := repo.FindByID(ctx, created.ID); !errors.Is(err, attendance.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if _, err := repo.Update(ctx, &attendance.Record{ID: "missing", Status: attendance.StatusAbsent}); !errors.Is(err, attendance.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound on update, got %v", err)
	}
	if err := repo.Delete(ctx, "missing"); !errors.Is(err, attendance.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound on delete, got %v", err)
	}
}

func TestAttendanceRepository_ListFilters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewAttendanceRepository(memory.New(), "attendance")

	seed := []*attendance.Record{
		{EmployeeID: "emp-1", Date: "2024-05-08", Status: attendance.StatusPresent},
		{EmployeeID: "emp-1", Date: "2024-05-09", Status: attendance.StatusLate},
		{EmployeeID: "emp-2", Date: "2024-05-09", Status: attendance.StatusAbsent},
		{EmployeeID: "emp-1", Date: "2024-05-10", Status: attendance.StatusPresent},
	}
	for _, rec := range seed {
		if _, err := repo.Create(ctx, rec); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	byDate, err := repo.List(ctx, attendance.ListFilter{Date: "2024-05-09"})
	if err != nil || len(byDate) != 2 {
		t.Fatalf("expected 2 records on date, got %d (%v)", len(byDate), err)
	}
	if byDate[0].EmployeeID != "emp-1" || byDate[1].EmployeeID != "emp-2" {
		t.Fatalf("expected append order, got %+v", byDate)
	}

	ranged, err := repo.List(ctx, attendance.ListFilter{EmployeeID: "emp-1", From: "2024-05-09", To: "2024-05-10"})
	if err != nil || len(ranged) != 2 {
		t.Fatalf("expected 2 ranged records, got %d (%v)", len(ranged), err)
	}
}

func TestAttendanceRepository_SkipsCorruptRows(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.New()
	seeded, err := store.Create(ctx, "attendance", []*recordstore.Record{
		recordstore.NewRecord("", map[string]any{fieldEmployeeID: "emp-1", fieldDate: "2024-05-10", fieldStatus: "Present", fieldCheckIn: "09:00"}),
		recordstore.NewRecord("", map[string]any{fieldEmployeeID: "other", fieldDate: "2024-05-10", fieldStatus: "present"}),
		recordstore.NewRecord("", map[string]any{fieldEmployeeID: "emp-2", fieldDate: "2024-05-10", fieldStatus: "Absent"}),
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	var buf bytes.Buffer
	repo := NewAttendanceRepository(store, "attendance", WithLogger(log.New(&buf, "", 0)))

	got, err := repo.List(ctx, attendance.ListFilter{Date: "2024-05-10"})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(got) != 2 || got[0].EmployeeID != "emp-1" || got[1].EmployeeID != "emp-2" {
		t.Fatalf("expected the two valid rows, got %+v", got)
	}
	if !strings.Contains(buf.String(), seeded[1].Record.ID) {
		t.Fatalf("expected skipped row to be logged, got %q", buf.String())
	}

	if _, err := repo.FindByID(ctx, seeded[1].Record.ID); !errors.Is(err, recordstore.ErrCorruptRecord) {
		t.Fatalf("expected ErrCorruptRecord, got %v", err)
	}
	if _, err := repo.FindByID(ctx, seeded[1].Record.ID); errors.Is(err, attendance.ErrInvalidStatus) {
		t.Fatalf("stored data must not be reported as invalid input: %v", err)
	}
}

func TestAttendanceService_MarkStatusWithCorruptRow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.New()
	if _, err := store.Create(ctx, "attendance", []*recordstore.Record{
		recordstore.NewRecord("", map[string]any{fieldEmployeeID: "other", fieldDate: "2024-05-10", fieldStatus: ""}),
	}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	repo := NewAttendanceRepository(store, "attendance", WithLogger(log.New(io.Discard, "", 0)))
	svc := attendance.NewService(repo, fixedClock{now: time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)})

	result, err := svc.MarkStatus(ctx, attendance.MarkStatusInput{EmployeeIDs: []string{"a", "b"}, Status: attendance.StatusLate})
	if err != nil {
		t.Fatalf("MarkStatus returned error: %v", err)
	}
	if result.Succeeded != 2 || result.Failed() != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}

	records, err := repo.List(ctx, attendance.ListFilter{EmployeeID: "a"})
	if err != nil || len(records) != 1 || records[0].Status != attendance.StatusLate {
		t.Fatalf("expected one late record for a, got %+v, %v", records, err)
	}
}

func TestEmployeeAndProjectRepository_SkipCorruptRows(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.New()
	quiet := WithLogger(log.New(io.Discard, "", 0))
	if _, err := store.Create(ctx, "employee", []*recordstore.Record{
		recordstore.NewRecord("", map[string]any{fieldFirstName: "Aiko", fieldStatus: "Active"}),
		recordstore.NewRecord("", map[string]any{fieldFirstName: "Broken", fieldStatus: "Retired"}),
		recordstore.NewRecord("", map[string]any{fieldFirstName: "Late", fieldHireDate: "10/05/2024"}),
	}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if _, err := store.Create(ctx, "project", []*recordstore.Record{
		recordstore.NewRecord("", map[string]any{fieldName: "Ok", fieldStatus: "Completed"}),
		recordstore.NewRecord("", map[string]any{fieldName: "Bad", fieldStatus: "done"}),
	}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	employees, _, err := NewEmployeeRepository(store, "employee", quiet).List(ctx, employee.ListEmployeesFilter{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(employees) != 1 || employees[0].FirstName != "Aiko" {
		t.Fatalf("expected only the valid employee, got %+v", employees)
	}

	projects, err := NewProjectRepository(store, "project", quiet).List(ctx, project.ListProjectsFilter{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(projects) != 1 || projects[0].Name != "Ok" {
		t.Fatalf("expected only the valid project, got %+v", projects)
	}
}

func TestAttendanceService_PartialFailureThroughStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := &failingStore{Store: memory.New(), failEmployee: "emp-2"}
	repo := NewAttendanceRepository(store, "attendance")
	svc := attendance.NewService(repo, fixedClock{now: time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)})

	result, err := svc.MarkStatus(ctx, attendance.MarkStatusInput{
		EmployeeIDs: []string{"emp-1", "emp-2", "emp-3"},
		Status:      attendance.StatusLate,
	})
	if err != nil {
		t.Fatalf("MarkStatus returned error: %v", err)
	}
	if result.Succeeded != 2 || result.Failed() != 1 || result.Failures[0].EmployeeID != "emp-2" {
		t.Fatalf("unexpected result: %+v", result)
	}

	states := map[string]attendance.Status{}
	for _, snap := range result.Snapshots {
		states[snap.EmployeeID] = snap.TodayStatus
	}
	if states["emp-1"] != attendance.StatusLate || states["emp-2"] != attendance.StatusNotMarked {
		t.Fatalf("unexpected snapshots: %+v", result.Snapshots)
	}

	toggled, err := svc.Toggle(ctx, attendance.ToggleInput{EmployeeID: "emp-1"})
	if err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}
	if toggled.Action != attendance.ActionSignedOut || toggled.Record.CheckOut != "09:30" {
		t.Fatalf("expected sign out of the marked record, got %+v", toggled)
	}
}

func TestEmployeeRepository_CRUDAndList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewEmployeeRepository(memory.New(), "employee")
	hired := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)

	names := []string{"Aiko", "Ben", "Aimi"}
	var ids []string
	for _, name := range names {
		created, err := repo.Create(ctx, &employee.Employee{
			FirstName:  name,
			LastName:   "Tanaka",
			Email:      name + "@example.com",
			Department: "Engineering",
			Status:     employee.StatusActive,
			HireDate:   &hired,
		})
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		ids = append(ids, created.ID)
	}

	got, err := repo.FindByID(ctx, ids[0])
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if got.FullName() != "Aiko Tanaka" || got.HireDate == nil || !got.HireDate.Equal(hired) {
		t.Fatalf("unexpected employee: %+v", got)
	}

	got.Status = employee.StatusInactive
	got.Department = "Sales"
	if _, err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	page, next, err := repo.List(ctx, employee.ListEmployeesFilter{Limit: 1})
	if err != nil || len(page) != 1 || next != "1" {
		t.Fatalf("expected first page with next token, got %d %q %v", len(page), next, err)
	}
	last, next, err := repo.List(ctx, employee.ListEmployeesFilter{Limit: 2, Offset: 1})
	if err != nil || len(last) != 2 || next != "" {
		t.Fatalf("expected final page, got %d %q %v", len(last), next, err)
	}

	active := employee.StatusActive
	filtered, _, err := repo.List(ctx, employee.ListEmployeesFilter{Status: &active, Department: "Engineering"})
	if err != nil || len(filtered) != 2 {
		t.Fatalf("expected 2 active engineers, got %d (%v)", len(filtered), err)
	}

	searched, _, err := repo.List(ctx, employee.ListEmployeesFilter{Search: "Ai"})
	if err != nil || len(searched) != 2 {
		t.Fatalf("expected 2 search hits, got %d (%v)", len(searched), err)
	}

	if err := repo.Delete(ctx, ids[1]); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := repo.FindByID(ctx, ids[1]); !errors.Is(err, employee.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestReviewRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewReviewRepository(memory.New(), "performance_review")

	created, err := repo.Create(ctx, &performance.Review{EmployeeID: "emp-1", Quarter: "Q1 2024", Score: 4.5, ReviewDate: "2024-03-31", Goals: "Ship v2"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := repo.Create(ctx, &performance.Review{EmployeeID: "emp-2", Quarter: "Q1 2024", Score: 3}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	list, err := repo.List(ctx, performance.ListReviewsFilter{EmployeeID: "emp-1"})
	if err != nil || len(list) != 1 || list[0].Score != 4.5 || list[0].Goals != "Ship v2" {
		t.Fatalf("unexpected reviews: %+v (%v)", list, err)
	}

	created.Score = 5
	updated, err := repo.Update(ctx, created)
	if err != nil || updated.Score != 5 {
		t.Fatalf("Update returned %+v, %v", updated, err)
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := repo.FindByID(ctx, created.ID); !errors.Is(err, performance.ErrReviewNotFound) {
		t.Fatalf("expected ErrReviewNotFound, got %v", err)
	}
}

func TestProjectRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewProjectRepository(memory.New(), "project")

	alpha, err := repo.Create(ctx, &project.Project{Name: "Alpha Portal", Status: project.StatusInProgress, Progress: 40, EndDate: "2024-12-31"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := repo.Create(ctx, &project.Project{Name: "Beta", Status: project.StatusPlanning}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	inProgress := project.StatusInProgress
	list, err := repo.List(ctx, project.ListProjectsFilter{Status: &inProgress})
	if err != nil || len(list) != 1 || list[0].Progress != 40 {
		t.Fatalf("unexpected projects: %+v (%v)", list, err)
	}
	searched, err := repo.List(ctx, project.ListProjectsFilter{Search: "Portal"})
	if err != nil || len(searched) != 1 || searched[0].ID != alpha.ID {
		t.Fatalf("unexpected search result: %+v (%v)", searched, err)
	}

	if _, err := repo.Update(ctx, &project.Project{ID: "missing", Name: "x", Status: project.StatusPlanning}); !errors.Is(err, project.ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestAssignmentRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := &failingStore{Store: memory.New(), failEmployee: "emp-x"}
	repo := NewAssignmentRepository(store, "project_assignment")

	created, err := repo.CreateMany(ctx, []*project.Assignment{
		{EmployeeID: "emp-1", ProjectID: "p-1"},
		{EmployeeID: "emp-x", ProjectID: "p-1"},
		{EmployeeID: "emp-2", ProjectID: "p-2"},
	})
	if err == nil {
		t.Fatalf("expected partial failure error")
	}
	if len(created) != 2 {
		t.Fatalf("expected 2 created assignments, got %d", len(created))
	}

	byProject, err := repo.List(ctx, project.ListAssignmentsFilter{ProjectID: "p-1"})
	if err != nil || len(byProject) != 1 || byProject[0].EmployeeID != "emp-1" {
		t.Fatalf("unexpected assignments: %+v (%v)", byProject, err)
	}

	err = repo.DeleteMany(ctx, []string{created[0].ID, "missing"})
	if !errors.Is(err, recordstore.ErrRecordNotFound) {
		t.Fatalf("expected not found for missing id, got %v", err)
	}
	rest, err := repo.List(ctx, project.ListAssignmentsFilter{})
	if err != nil || len(rest) != 1 || rest[0].EmployeeID != "emp-2" {
		t.Fatalf("unexpected remaining assignments: %+v (%v)", rest, err)
	}

	if created, err := repo.CreateMany(ctx, nil); created != nil || err != nil {
		t.Fatalf("expected no-op for empty input, got %v %v", created, err)
	}
}

func TestDepartmentRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewDepartmentRepository(memory.New(), "department")

	for _, name := range []string{"Engineering", "Legal", "Logistics"} {
		if _, err := repo.Create(ctx, &department.Department{Name: name}); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}

	found, err := repo.FindByName(ctx, "Legal")
	if err != nil || found.Name != "Legal" {
		t.Fatalf("FindByName returned %+v, %v", found, err)
	}
	if _, err := repo.FindByName(ctx, "Lega"); !errors.Is(err, department.ErrDepartmentNotFound) {
		t.Fatalf("expected exact name match, got %v", err)
	}

	page, next, err := repo.List(ctx, department.ListDepartmentsFilter{Search: "L", Limit: 1})
	if err != nil || len(page) != 1 || next != "1" {
		t.Fatalf("unexpected page: %+v %q %v", page, next, err)
	}

	found.Name = "Legal Affairs"
	if _, err := repo.Update(ctx, found); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if err := repo.Delete(ctx, found.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := repo.FindByID(ctx, found.ID); !errors.Is(err, department.ErrDepartmentNotFound) {
		t.Fatalf("expected ErrDepartmentNotFound, got %v", err)
	}
}

func TestScheduleRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewScheduleRepository(memory.New(), "report_schedule")

	created, err := repo.Create(ctx, &report.Schedule{Name: "weekly-hr", Frequency: report.FrequencyWeekly, Email: "hr@example.com"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	created.Enabled = true
	if _, err := repo.Update(ctx, created); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil || len(list) != 1 || !list[0].Enabled || list[0].Frequency != report.FrequencyWeekly {
		t.Fatalf("unexpected schedules: %+v (%v)", list, err)
	}

	if err := repo.Delete(ctx, "missing"); !errors.Is(err, report.ErrScheduleNotFound) {
		t.Fatalf("expected ErrScheduleNotFound, got %v", err)
	}
}

func TestRepository_FetchErrorPropagates(t *testing.T) {
	t.Parallel()

	storeErr := errors.New("store unavailable")
	store := &failingStore{Store: memory.New(), fetchErr: storeErr}

	if _, err := NewAttendanceRepository(store, "attendance").List(context.Background(), attendance.ListFilter{}); !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
	if _, _, err := NewEmployeeRepository(store, "employee").List(context.Background(), employee.ListEmployeesFilter{}); !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
}
