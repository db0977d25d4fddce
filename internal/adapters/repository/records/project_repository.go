package records

import (
	"context"
	"fmt"

	"github.com/ogurasousui/codex-hr-attendance/internal/core/project"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/recordstore"
)

const (
	fieldProgress    = "progress"
	fieldEndDate     = "endDate"
	fieldDescription = "description"
	fieldProjectID   = "projectId"
)

var (
	projectFields    = []string{fieldName, fieldStatus, fieldProgress, fieldEndDate, fieldDescription}
	assignmentFields = []string{fieldName, fieldEmployeeID, fieldProjectID}
)

// ProjectRepository はプロジェクトをレコードストアへ保存します。
type ProjectRepository struct {
	store recordstore.Store
	table string
	opts  options
}

var _ project.Repository = (*ProjectRepository)(nil)

// NewProjectRepository は ProjectRepository を生成します。
func NewProjectRepository(store recordstore.Store, table string, opts ...Option) *ProjectRepository {
	return &ProjectRepository{store: store, table: table, opts: newOptions(opts)}
}

// Create はプロジェクトを追加します。
func (r *ProjectRepository) Create(ctx context.Context, p *project.Project) (*project.Project, error) {
	created, err := recordstore.Single(r.store.Create(ctx, r.table, []*recordstore.Record{projectToRecord(p)}))
	if err != nil {
		return nil, fmt.Errorf("project: create: %w", err)
	}
	return r.decode(created)
}

// Update はプロジェクトを更新します。
func (r *ProjectRepository) Update(ctx context.Context, p *project.Project) (*project.Project, error) {
	if p.ID == "" {
		return nil, project.ErrInvalidID
	}
	updated, err := recordstore.Single(r.store.Update(ctx, r.table, []*recordstore.Record{projectToRecord(p)}))
	if err != nil {
		return nil, translateNotFound(err, project.ErrProjectNotFound)
	}
	return r.decode(updated)
}

// Delete はプロジェクトを削除します。
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	_, err := recordstore.Single(r.store.Delete(ctx, r.table, []string{id}))
	return translateNotFound(err, project.ErrProjectNotFound)
}

// FindByID は ID でプロジェクトを取得します。
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*project.Project, error) {
	rec, err := r.store.GetByID(ctx, r.table, id, projectFields)
	if err != nil {
		return nil, translateNotFound(err, project.ErrProjectNotFound)
	}
	return r.decode(rec)
}

// List はプロジェクトを追加順で返します。
func (r *ProjectRepository) List(ctx context.Context, filter project.ListProjectsFilter) ([]*project.Project, error) {
	var where []recordstore.Condition
	if filter.Search != "" {
		where = append(where, recordstore.Contains(fieldName, filter.Search))
	}
	if filter.Status != nil {
		where = append(where, recordstore.Eq(fieldStatus, string(*filter.Status)))
	}

	rows, err := r.store.Fetch(ctx, r.table, recordstore.Query{Fields: projectFields, Where: where})
	if err != nil {
		return nil, err
	}

	return decodeAll(r.opts.logger, rows, r.decode)
}

// AssignmentRepository はプロジェクトアサインをレコードストアへ保存します。
type AssignmentRepository struct {
	store recordstore.Store
	table string
}

var _ project.AssignmentRepository = (*AssignmentRepository)(nil)

// NewAssignmentRepository は AssignmentRepository を生成します。
func NewAssignmentRepository(store recordstore.Store, table string) *AssignmentRepository {
	return &AssignmentRepository{store: store, table: table}
}

// List はアサインを追加順で返します。
func (r *AssignmentRepository) List(ctx context.Context, filter project.ListAssignmentsFilter) ([]*project.Assignment, error) {
	var where []recordstore.Condition
	if filter.ProjectID != "" {
		where = append(where, recordstore.Eq(fieldProjectID, filter.ProjectID))
	}
	if filter.EmployeeID != "" {
		where = append(where, recordstore.Eq(fieldEmployeeID, filter.EmployeeID))
	}

	rows, err := r.store.Fetch(ctx, r.table, recordstore.Query{Fields: assignmentFields, Where: where})
	if err != nil {
		return nil, err
	}

	out := make([]*project.Assignment, 0, len(rows))
	for _, row := range rows {
		out = append(out, assignmentFromRecord(row))
	}
	return out, nil
}

// CreateMany はアサインを一括で追加します。
// 一部が失敗した場合は成功分を返しつつ、失敗をまとめたエラーを返します。
func (r *AssignmentRepository) CreateMany(ctx context.Context, assignments []*project.Assignment) ([]*project.Assignment, error) {
	if len(assignments) == 0 {
		return nil, nil
	}

	input := make([]*recordstore.Record, 0, len(assignments))
	for _, a := range assignments {
		input = append(input, recordstore.NewRecord("", map[string]any{
			fieldName:       fmt.Sprintf("%s-%s", a.ProjectID, a.EmployeeID),
			fieldEmployeeID: a.EmployeeID,
			fieldProjectID:  a.ProjectID,
		}))
	}

	results, err := r.store.Create(ctx, r.table, input)
	if err != nil {
		return nil, err
	}

	created := make([]*project.Assignment, 0, len(results))
	for _, res := range results {
		if res.Success() {
			created = append(created, assignmentFromRecord(res.Record))
		}
	}
	return created, resultErrors(results)
}

// DeleteMany はアサインを一括で削除します。
func (r *AssignmentRepository) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	results, err := r.store.Delete(ctx, r.table, ids)
	if err != nil {
		return err
	}
	return resultErrors(results)
}

func projectToRecord(p *project.Project) *recordstore.Record {
	return recordstore.NewRecord(p.ID, map[string]any{
		fieldName:        p.Name,
		fieldStatus:      string(p.Status),
		fieldProgress:    p.Progress,
		fieldEndDate:     p.EndDate,
		fieldDescription: p.Description,
	})
}

func (r *ProjectRepository) decode(row *recordstore.Record) (*project.Project, error) {
	status := project.Status(row.String(fieldStatus))
	if status == "" {
		status = project.StatusPlanning
	}
	if !project.IsValidStatus(status) {
		return nil, corrupt(r.table, row.ID, "unknown status %q", status)
	}
	return &project.Project{
		ID:          row.ID,
		Name:        row.String(fieldName),
		Status:      status,
		Progress:    row.Int(fieldProgress),
		EndDate:     row.String(fieldEndDate),
		Description: row.String(fieldDescription),
	}, nil
}

func assignmentFromRecord(row *recordstore.Record) *project.Assignment {
	return &project.Assignment{
		ID:         row.ID,
		EmployeeID: row.String(fieldEmployeeID),
		ProjectID:  row.String(fieldProjectID),
	}
}
