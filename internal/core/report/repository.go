package report

import "context"

// Repository は配信設定の永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, schedule *Schedule) (*Schedule, error)
	Update(ctx context.Context, schedule *Schedule) (*Schedule, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Schedule, error)
	List(ctx context.Context) ([]*Schedule, error)
}
