package project

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Service はプロジェクトとアサインのユースケースをまとめます。
type Service struct {
	repo        Repository
	assignments AssignmentRepository
	tx          TransactionManager
}

// UseCase はプロジェクトユースケースの公開インターフェースです。
type UseCase interface {
	CreateProject(ctx context.Context, in CreateProjectInput) (*Project, error)
	GetProject(ctx context.Context, in GetProjectInput) (*Project, error)
	ListProjects(ctx context.Context, in ListProjectsInput) ([]*Project, error)
	UpdateProject(ctx context.Context, in UpdateProjectInput) (*Project, error)
	DeleteProject(ctx context.Context, in DeleteProjectInput) error
	ReplaceAssignments(ctx context.Context, in ReplaceAssignmentsInput) (*Project, error)
	ListAssignments(ctx context.Context, in ListAssignmentsInput) ([]*Assignment, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, assignments AssignmentRepository, tx TransactionManager) *Service {
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, assignments: assignments, tx: tx}
}

// CreateProjectInput はプロジェクト作成の入力です。
type CreateProjectInput struct {
	Name        string
	Status      *Status
	Progress    int
	EndDate     string
	Description string
	EmployeeIDs []string
}

// UpdateProjectInput はプロジェクト更新の入力です。EmployeeIDs が nil の場合アサインは変更しません。
type UpdateProjectInput struct {
	ID          string
	Name        *string
	Status      *Status
	Progress    *int
	EndDate     *string
	Description *string
	EmployeeIDs []string
}

// GetProjectInput はプロジェクト取得の入力です。
type GetProjectInput struct {
	ID string
}

// ListProjectsInput はプロジェクト一覧の入力です。
type ListProjectsInput struct {
	Search string
	Status *Status
}

// DeleteProjectInput はプロジェクト削除の入力です。
type DeleteProjectInput struct {
	ID string
}

// ReplaceAssignmentsInput はアサイン総入れ替えの入力です。
type ReplaceAssignmentsInput struct {
	ProjectID   string
	EmployeeIDs []string
}

// ListAssignmentsInput はアサイン一覧の入力です。
type ListAssignmentsInput struct {
	ProjectID  string
	EmployeeID string
}

type projectFields struct {
	Name     string `validate:"required"`
	EndDate  string `validate:"required"`
	Progress int    `validate:"gte=0,lte=100"`
}

// CreateProject はプロジェクトを作成し、指定された社員をアサインします。
func (s *Service) CreateProject(ctx context.Context, in CreateProjectInput) (*Project, error) {
	p := &Project{
		Name:        strings.TrimSpace(in.Name),
		Status:      StatusPlanning,
		Progress:    in.Progress,
		EndDate:     strings.TrimSpace(in.EndDate),
		Description: strings.TrimSpace(in.Description),
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if err := checkProject(p); err != nil {
		return nil, err
	}

	var created *Project
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		result, err := s.repo.Create(txCtx, p)
		if err != nil {
			return err
		}

		ids, err := s.replaceAssignments(txCtx, result.ID, in.EmployeeIDs)
		if err != nil {
			return err
		}
		result.AssignedEmployeeIDs = ids

		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateProject はプロジェクトを更新します。
func (s *Service) UpdateProject(ctx context.Context, in UpdateProjectInput) (*Project, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var updated *Project
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		if in.Name != nil {
			existing.Name = strings.TrimSpace(*in.Name)
		}
		if in.Status != nil {
			existing.Status = *in.Status
		}
		if in.Progress != nil {
			existing.Progress = *in.Progress
		}
		if in.EndDate != nil {
			existing.EndDate = strings.TrimSpace(*in.EndDate)
		}
		if in.Description != nil {
			existing.Description = strings.TrimSpace(*in.Description)
		}
		if err := checkProject(existing); err != nil {
			return err
		}

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}

		if in.EmployeeIDs != nil {
			ids, err := s.replaceAssignments(txCtx, result.ID, in.EmployeeIDs)
			if err != nil {
				return err
			}
			result.AssignedEmployeeIDs = ids
		} else if err := s.attachAssignments(txCtx, result); err != nil {
			return err
		}

		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteProject はプロジェクトとそのアサインを削除します。
func (s *Service) DeleteProject(ctx context.Context, in DeleteProjectInput) error {
	if strings.TrimSpace(in.ID) == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if _, err := s.replaceAssignments(txCtx, in.ID, nil); err != nil {
			return err
		}
		return s.repo.Delete(txCtx, in.ID)
	})
}

// GetProject はアサイン済み社員を含めてプロジェクトを取得します。
func (s *Service) GetProject(ctx context.Context, in GetProjectInput) (*Project, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var found *Project
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		if err := s.attachAssignments(txCtx, result); err != nil {
			return err
		}
		found = result
		return nil
	}); err != nil {
		return nil, err
	}

	return found, nil
}

// ListProjects はプロジェクトを一覧します。アサインは全件取得して突き合わせます。
func (s *Service) ListProjects(ctx context.Context, in ListProjectsInput) ([]*Project, error) {
	if in.Status != nil && !IsValidStatus(*in.Status) {
		return nil, ErrInvalidStatus
	}

	var projects []*Project
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.List(txCtx, ListProjectsFilter{
			Search: strings.TrimSpace(in.Search),
			Status: in.Status,
		})
		if err != nil {
			return err
		}

		assignments, err := s.assignments.List(txCtx, ListAssignmentsFilter{})
		if err != nil {
			return err
		}

		byProject := make(map[string][]string)
		for _, a := range assignments {
			byProject[a.ProjectID] = append(byProject[a.ProjectID], a.EmployeeID)
		}
		for _, p := range result {
			p.AssignedEmployeeIDs = dedupe(byProject[p.ID])
		}

		projects = result
		return nil
	}); err != nil {
		return nil, err
	}

	return projects, nil
}

// ReplaceAssignments はプロジェクトのアサインを指定された社員集合に置き換えます。
// 既存のアサインを全て削除した後、重複を除いた集合を作成します。
func (s *Service) ReplaceAssignments(ctx context.Context, in ReplaceAssignmentsInput) (*Project, error) {
	if strings.TrimSpace(in.ProjectID) == "" {
		return nil, fmt.Errorf("project id: %w", ErrInvalidID)
	}
	for _, id := range in.EmployeeIDs {
		if strings.TrimSpace(id) == "" {
			return nil, ErrInvalidEmployeeID
		}
	}

	var result *Project
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		p, err := s.repo.FindByID(txCtx, in.ProjectID)
		if err != nil {
			return err
		}

		ids, err := s.replaceAssignments(txCtx, p.ID, in.EmployeeIDs)
		if err != nil {
			return err
		}
		p.AssignedEmployeeIDs = ids

		result = p
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListAssignments はアサインを一覧します。
func (s *Service) ListAssignments(ctx context.Context, in ListAssignmentsInput) ([]*Assignment, error) {
	return s.assignments.List(ctx, ListAssignmentsFilter{
		ProjectID:  strings.TrimSpace(in.ProjectID),
		EmployeeID: strings.TrimSpace(in.EmployeeID),
	})
}

func (s *Service) replaceAssignments(ctx context.Context, projectID string, employeeIDs []string) ([]string, error) {
	existing, err := s.assignments.List(ctx, ListAssignmentsFilter{ProjectID: projectID})
	if err != nil {
		return nil, err
	}

	if len(existing) > 0 {
		ids := make([]string, 0, len(existing))
		for _, a := range existing {
			ids = append(ids, a.ID)
		}
		if err := s.assignments.DeleteMany(ctx, ids); err != nil {
			return nil, fmt.Errorf("project: delete assignments: %w", err)
		}
	}

	targets := dedupe(employeeIDs)
	if len(targets) == 0 {
		return targets, nil
	}

	records := make([]*Assignment, 0, len(targets))
	for _, employeeID := range targets {
		records = append(records, &Assignment{EmployeeID: employeeID, ProjectID: projectID})
	}
	if _, err := s.assignments.CreateMany(ctx, records); err != nil {
		return nil, fmt.Errorf("project: create assignments: %w", err)
	}

	return targets, nil
}

func (s *Service) attachAssignments(ctx context.Context, p *Project) error {
	assignments, err := s.assignments.List(ctx, ListAssignmentsFilter{ProjectID: p.ID})
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.EmployeeID)
	}
	p.AssignedEmployeeIDs = dedupe(ids)
	return nil
}

func checkProject(p *Project) error {
	if !IsValidStatus(p.Status) {
		return ErrInvalidStatus
	}

	err := validate.Struct(projectFields{
		Name:     p.Name,
		EndDate:  p.EndDate,
		Progress: p.Progress,
	})
	if err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) || len(verrs) == 0 {
			return err
		}
		switch verrs[0].Field() {
		case "Name":
			return ErrInvalidName
		case "EndDate":
			return ErrInvalidEndDate
		default:
			return ErrInvalidProgress
		}
	}

	if _, err := time.Parse(DateLayout, p.EndDate); err != nil {
		return ErrInvalidEndDate
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		trimmed := strings.TrimSpace(id)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
