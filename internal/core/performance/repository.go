package performance

import "context"

// Repository はレビュー永続化の抽象です。List は追加順で返します。
type Repository interface {
	Create(ctx context.Context, review *Review) (*Review, error)
	Update(ctx context.Context, review *Review) (*Review, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Review, error)
	List(ctx context.Context, filter ListReviewsFilter) ([]*Review, error)
}

// ListReviewsFilter はレビュー一覧の条件です。
type ListReviewsFilter struct {
	EmployeeID string
}
