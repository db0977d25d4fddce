package attendance

import "context"

// Repository は勤怠レコード永続化の抽象です。List は追加順で返却します。
type Repository interface {
	Create(ctx context.Context, record *Record) (*Record, error)
	Update(ctx context.Context, record *Record) (*Record, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]*Record, error)
}

// ListFilter は一覧取得用フィルタです。空のフィールドは条件に含めません。
type ListFilter struct {
	EmployeeID string
	Date       string
	From       string
	To         string
}
