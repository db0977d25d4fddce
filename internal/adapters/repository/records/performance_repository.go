package records

import (
	"context"
	"fmt"

	"github.com/ogurasousui/codex-hr-attendance/internal/core/performance"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/recordstore"
)

const (
	fieldQuarter    = "quarter"
	fieldScore      = "score"
	fieldReviewDate = "reviewDate"
	fieldGoals      = "goals"
)

var reviewFields = []string{fieldName, fieldEmployeeID, fieldQuarter, fieldScore, fieldReviewDate, fieldGoals}

// ReviewRepository はパフォーマンスレビューをレコードストアへ保存します。
type ReviewRepository struct {
	store recordstore.Store
	table string
}

var _ performance.Repository = (*ReviewRepository)(nil)

// NewReviewRepository は ReviewRepository を生成します。
func NewReviewRepository(store recordstore.Store, table string) *ReviewRepository {
	return &ReviewRepository{store: store, table: table}
}

// Create はレビューを追加します。
func (r *ReviewRepository) Create(ctx context.Context, review *performance.Review) (*performance.Review, error) {
	created, err := recordstore.Single(r.store.Create(ctx, r.table, []*recordstore.Record{reviewToRecord(review)}))
	if err != nil {
		return nil, fmt.Errorf("performance: create: %w", err)
	}
	return reviewFromRecord(created), nil
}

// Update はレビューを更新します。
func (r *ReviewRepository) Update(ctx context.Context, review *performance.Review) (*performance.Review, error) {
	if review.ID == "" {
		return nil, performance.ErrInvalidID
	}
	updated, err := recordstore.Single(r.store.Update(ctx, r.table, []*recordstore.Record{reviewToRecord(review)}))
	if err != nil {
		return nil, translateNotFound(err, performance.ErrReviewNotFound)
	}
	return reviewFromRecord(updated), nil
}

// Delete はレビューを削除します。
func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	_, err := recordstore.Single(r.store.Delete(ctx, r.table, []string{id}))
	return translateNotFound(err, performance.ErrReviewNotFound)
}

// FindByID は ID でレビューを取得します。
func (r *ReviewRepository) FindByID(ctx context.Context, id string) (*performance.Review, error) {
	rec, err := r.store.GetByID(ctx, r.table, id, reviewFields)
	if err != nil {
		return nil, translateNotFound(err, performance.ErrReviewNotFound)
	}
	return reviewFromRecord(rec), nil
}

// List はレビューを追加順で返します。
func (r *ReviewRepository) List(ctx context.Context, filter performance.ListReviewsFilter) ([]*performance.Review, error) {
	var where []recordstore.Condition
	if filter.EmployeeID != "" {
		where = append(where, recordstore.Eq(fieldEmployeeID, filter.EmployeeID))
	}

	rows, err := r.store.Fetch(ctx, r.table, recordstore.Query{Fields: reviewFields, Where: where})
	if err != nil {
		return nil, err
	}

	out := make([]*performance.Review, 0, len(rows))
	for _, row := range rows {
		out = append(out, reviewFromRecord(row))
	}
	return out, nil
}

func reviewToRecord(review *performance.Review) *recordstore.Record {
	return recordstore.NewRecord(review.ID, map[string]any{
		fieldName:       fmt.Sprintf("%s-%s", review.Quarter, review.EmployeeID),
		fieldEmployeeID: review.EmployeeID,
		fieldQuarter:    review.Quarter,
		fieldScore:      review.Score,
		fieldReviewDate: review.ReviewDate,
		fieldGoals:      review.Goals,
	})
}

func reviewFromRecord(row *recordstore.Record) *performance.Review {
	return &performance.Review{
		ID:         row.ID,
		EmployeeID: row.String(fieldEmployeeID),
		Quarter:    row.String(fieldQuarter),
		Score:      row.Float(fieldScore),
		ReviewDate: row.String(fieldReviewDate),
		Goals:      row.String(fieldGoals),
	}
}
