package records

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ogurasousui/codex-hr-attendance/internal/core/department"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/recordstore"
)

var departmentFields = []string{fieldName}

// DepartmentRepository は部署をレコードストアへ保存します。
type DepartmentRepository struct {
	store recordstore.Store
	table string
}

var _ department.Repository = (*DepartmentRepository)(nil)

// NewDepartmentRepository は DepartmentRepository を生成します。
func NewDepartmentRepository(store recordstore.Store, table string) *DepartmentRepository {
	return &DepartmentRepository{store: store, table: table}
}

// Create は部署を追加します。
func (r *DepartmentRepository) Create(ctx context.Context, d *department.Department) (*department.Department, error) {
	created, err := recordstore.Single(r.store.Create(ctx, r.table, []*recordstore.Record{departmentToRecord(d)}))
	if err != nil {
		return nil, fmt.Errorf("department: create: %w", err)
	}
	return departmentFromRecord(created), nil
}

// Update は部署名を更新します。
func (r *DepartmentRepository) Update(ctx context.Context, d *department.Department) (*department.Department, error) {
	if d.ID == "" {
		return nil, department.ErrInvalidID
	}
	updated, err := recordstore.Single(r.store.Update(ctx, r.table, []*recordstore.Record{departmentToRecord(d)}))
	if err != nil {
		return nil, translateNotFound(err, department.ErrDepartmentNotFound)
	}
	return departmentFromRecord(updated), nil
}

// Delete は部署を削除します。
func (r *DepartmentRepository) Delete(ctx context.Context, id string) error {
	_, err := recordstore.Single(r.store.Delete(ctx, r.table, []string{id}))
	return translateNotFound(err, department.ErrDepartmentNotFound)
}

// FindByID は ID で部署を取得します。
func (r *DepartmentRepository) FindByID(ctx context.Context, id string) (*department.Department, error) {
	rec, err := r.store.GetByID(ctx, r.table, id, departmentFields)
	if err != nil {
		return nil, translateNotFound(err, department.ErrDepartmentNotFound)
	}
	return departmentFromRecord(rec), nil
}

// FindByName は部署名の完全一致で部署を取得します。
func (r *DepartmentRepository) FindByName(ctx context.Context, name string) (*department.Department, error) {
	rows, err := r.store.Fetch(ctx, r.table, recordstore.Query{
		Fields: departmentFields,
		Where:  []recordstore.Condition{recordstore.Eq(fieldName, name)},
		Limit:  1,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, department.ErrDepartmentNotFound
	}
	return departmentFromRecord(rows[0]), nil
}

// List は部署を追加順で返します。Search は部署名の部分一致です。
func (r *DepartmentRepository) List(ctx context.Context, filter department.ListDepartmentsFilter) ([]*department.Department, string, error) {
	q := recordstore.Query{Fields: departmentFields, Offset: filter.Offset}
	if filter.Search != "" {
		q.Where = []recordstore.Condition{recordstore.Contains(fieldName, filter.Search)}
	}
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

	out := make([]*department.Department, 0, len(rows))
	for _, row := range rows {
		out = append(out, departmentFromRecord(row))
	}
	return out, nextToken, nil
}

func departmentToRecord(d *department.Department) *recordstore.Record {
	return recordstore.NewRecord(d.ID, map[string]any{fieldName: d.Name})
}

func departmentFromRecord(row *recordstore.Record) *department.Department {
	return &department.Department{ID: row.ID, Name: row.String(fieldName)}
}
