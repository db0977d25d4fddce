package project

import "context"

// Repository はプロジェクト永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, project *Project) (*Project, error)
	Update(ctx context.Context, project *Project) (*Project, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context, filter ListProjectsFilter) ([]*Project, error)
}

// ListProjectsFilter は一覧の条件です。Search は名前の部分一致です。
type ListProjectsFilter struct {
	Search string
	Status *Status
}

// AssignmentRepository はアサインの永続化を行います。
type AssignmentRepository interface {
	List(ctx context.Context, filter ListAssignmentsFilter) ([]*Assignment, error)
	CreateMany(ctx context.Context, assignments []*Assignment) ([]*Assignment, error)
	DeleteMany(ctx context.Context, ids []string) error
}

// ListAssignmentsFilter はアサイン一覧の条件です。空のフィールドは条件に含めません。
type ListAssignmentsFilter struct {
	ProjectID  string
	EmployeeID string
}
