package employee

import "context"

// Repository は社員永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, employee *Employee) (*Employee, error)
	Update(ctx context.Context, employee *Employee) (*Employee, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Employee, error)
	List(ctx context.Context, filter ListEmployeesFilter) ([]*Employee, string, error)
}

// ListEmployeesFilter は一覧取得用フィルタです。Limit が 0 の場合は全件を返します。
type ListEmployeesFilter struct {
	Department string
	Status     *Status
	Search     string
	Limit      int
	Offset     int
}

// DepartmentDirectory は登録済み部署の存在確認を行います。
type DepartmentDirectory interface {
	Exists(ctx context.Context, name string) (bool, error)
}
