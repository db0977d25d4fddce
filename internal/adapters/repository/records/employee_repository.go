package records

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ogurasousui/codex-hr-attendance/internal/core/employee"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/recordstore"
)

const (
	fieldName       = "Name"
	fieldFirstName  = "firstName"
	fieldLastName   = "lastName"
	fieldEmail      = "email"
	fieldDepartment = "department"
	fieldPosition   = "position"
	fieldHireDate   = "hireDate"
)

var employeeFields = []string{fieldName, fieldFirstName, fieldLastName, fieldEmail, fieldDepartment, fieldPosition, fieldStatus, fieldHireDate}

// EmployeeRepository は社員をレコードストアへ保存します。
type EmployeeRepository struct {
	store recordstore.Store
	table string
	opts  options
}

var _ employee.Repository = (*EmployeeRepository)(nil)

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(store recordstore.Store, table string, opts ...Option) *EmployeeRepository {
	return &EmployeeRepository{store: store, table: table, opts: newOptions(opts)}
}

// Create は社員を追加します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	created, err := recordstore.Single(r.store.Create(ctx, r.table, []*recordstore.Record{employeeToRecord(e)}))
	if err != nil {
		return nil, fmt.Errorf("employee: create: %w", err)
	}
	return r.decode(created)
}

// Update は社員を更新します。
func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	if e.ID == "" {
		return nil, employee.ErrInvalidID
	}
	updated, err := recordstore.Single(r.store.Update(ctx, r.table, []*recordstore.Record{employeeToRecord(e)}))
	if err != nil {
		return nil, translateNotFound(err, employee.ErrEmployeeNotFound)
	}
	return r.decode(updated)
}

// Delete は社員を削除します。
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	_, err := recordstore.Single(r.store.Delete(ctx, r.table, []string{id}))
	return translateNotFound(err, employee.ErrEmployeeNotFound)
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	rec, err := r.store.GetByID(ctx, r.table, id, employeeFields)
	if err != nil {
		return nil, translateNotFound(err, employee.ErrEmployeeNotFound)
	}
	return r.decode(rec)
}

// List は社員を追加順で返します。Search は firstName の部分一致です。
func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListEmployeesFilter) ([]*employee.Employee, string, error) {
	var where []recordstore.Condition
	if filter.Department != "" {
		where = append(where, recordstore.Eq(fieldDepartment, filter.Department))
	}
	if filter.Status != nil {
		where = append(where, recordstore.Eq(fieldStatus, string(*filter.Status)))
	}
	if filter.Search != "" {
		where = append(where, recordstore.Contains(fieldFirstName, filter.Search))
	}

	q := recordstore.Query{Fields: employeeFields, Where: where, Offset: filter.Offset}
	if filter.Limit > 0 {
		q.Limit = filter.Limit + 1
	}

	rows, err := r.store.Fetch(ctx, r.table, q)
	if err != nil {
		return nil, "", err
	}

	nextToken := ""
	if filter.Limit > 0 && len(rows) > filter.Limit {
		rows = rows[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	out, err := decodeAll(r.opts.logger, rows, r.decode)
	if err != nil {
		return nil, "", err
	}
	return out, nextToken, nil
}

func employeeToRecord(e *employee.Employee) *recordstore.Record {
	fields := map[string]any{
		fieldName:       e.FullName(),
		fieldFirstName:  e.FirstName,
		fieldLastName:   e.LastName,
		fieldEmail:      e.Email,
		fieldDepartment: e.Department,
		fieldPosition:   e.Position,
		fieldStatus:     string(e.Status),
	}
	if e.HireDate != nil {
		fields[fieldHireDate] = e.HireDate.Format(dateLayout)
	}
	return recordstore.NewRecord(e.ID, fields)
}

func (r *EmployeeRepository) decode(row *recordstore.Record) (*employee.Employee, error) {
	status := employee.Status(row.String(fieldStatus))
	if status == "" {
		status = employee.StatusActive
	}
	if !employee.IsValidStatus(status) {
		return nil, corrupt(r.table, row.ID, "unknown status %q", status)
	}

	e := &employee.Employee{
		ID:         row.ID,
		FirstName:  row.String(fieldFirstName),
		LastName:   row.String(fieldLastName),
		Email:      row.String(fieldEmail),
		Department: row.String(fieldDepartment),
		Position:   row.String(fieldPosition),
		Status:     status,
	}
	if raw := row.String(fieldHireDate); raw != "" {
		hired, err := time.Parse(dateLayout, raw)
		if err != nil {
			return nil, corrupt(r.table, row.ID, "hire date %q", raw)
		}
		e.HireDate = &hired
	}
	return e, nil
}
