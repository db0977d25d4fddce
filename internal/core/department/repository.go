package department

import "context"

// Repository は部署エンティティの永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, department *Department) (*Department, error)
	Update(ctx context.Context, department *Department) (*Department, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Department, error)
	FindByName(ctx context.Context, name string) (*Department, error)
	List(ctx context.Context, filter ListDepartmentsFilter) ([]*Department, string, error)
}

// ListDepartmentsFilter は一覧取得時の検索条件を表します。Limit が 0 の場合は全件です。
type ListDepartmentsFilter struct {
	Limit  int
	Offset int
	Search string
}
