package performance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Service はパフォーマンスレビューのユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
}

// UseCase はレビューユースケースの公開インターフェースです。
type UseCase interface {
	CreateReview(ctx context.Context, in CreateReviewInput) (*Review, error)
	GetReview(ctx context.Context, in GetReviewInput) (*Review, error)
	ListReviews(ctx context.Context, in ListReviewsInput) ([]*Review, error)
	UpdateReview(ctx context.Context, in UpdateReviewInput) (*Review, error)
	DeleteReview(ctx context.Context, in DeleteReviewInput) error
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock) *Service {
	if clock == nil {
		clock = realClock{}
	}
	return &Service{repo: repo, clock: clock}
}

// CreateReviewInput はレビュー作成の入力です。ReviewDate 未指定時は当日です。
type CreateReviewInput struct {
	EmployeeID string
	Quarter    string
	Score      float64
	ReviewDate string
	Goals      string
}

// UpdateReviewInput はレビュー更新の入力です。
type UpdateReviewInput struct {
	ID         string
	Quarter    *string
	Score      *float64
	ReviewDate *string
	Goals      *string
}

// GetReviewInput はレビュー取得の入力です。
type GetReviewInput struct {
	ID string
}

// ListReviewsInput はレビュー一覧の入力です。EmployeeID が空の場合は全件です。
type ListReviewsInput struct {
	EmployeeID string
}

// DeleteReviewInput はレビュー削除の入力です。
type DeleteReviewInput struct {
	ID string
}

type reviewFields struct {
	EmployeeID string  `validate:"required"`
	Quarter    string  `validate:"required"`
	Score      float64 `validate:"gte=0"`
}

// CreateReview はレビューを登録します。
func (s *Service) CreateReview(ctx context.Context, in CreateReviewInput) (*Review, error) {
	review := &Review{
		EmployeeID: strings.TrimSpace(in.EmployeeID),
		Quarter:    strings.TrimSpace(in.Quarter),
		Score:      in.Score,
		Goals:      strings.TrimSpace(in.Goals),
	}
	if err := checkReview(review); err != nil {
		return nil, err
	}

	date, err := s.normalizeReviewDate(in.ReviewDate)
	if err != nil {
		return nil, err
	}
	review.ReviewDate = date

	return s.repo.Create(ctx, review)
}

// UpdateReview はレビューを更新します。
func (s *Service) UpdateReview(ctx context.Context, in UpdateReviewInput) (*Review, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	existing, err := s.repo.FindByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if in.Quarter != nil {
		existing.Quarter = strings.TrimSpace(*in.Quarter)
	}
	if in.Score != nil {
		existing.Score = *in.Score
	}
	if in.Goals != nil {
		existing.Goals = strings.TrimSpace(*in.Goals)
	}
	if err := checkReview(existing); err != nil {
		return nil, err
	}
	if in.ReviewDate != nil {
		date, err := s.normalizeReviewDate(*in.ReviewDate)
		if err != nil {
			return nil, err
		}
		existing.ReviewDate = date
	}

	return s.repo.Update(ctx, existing)
}

// GetReview はレビューを取得します。
func (s *Service) GetReview(ctx context.Context, in GetReviewInput) (*Review, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}
	return s.repo.FindByID(ctx, in.ID)
}

// ListReviews はレビューを追加順に返します。
func (s *Service) ListReviews(ctx context.Context, in ListReviewsInput) ([]*Review, error) {
	return s.repo.List(ctx, ListReviewsFilter{EmployeeID: strings.TrimSpace(in.EmployeeID)})
}

// DeleteReview はレビューを削除します。
func (s *Service) DeleteReview(ctx context.Context, in DeleteReviewInput) error {
	if strings.TrimSpace(in.ID) == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}
	return s.repo.Delete(ctx, in.ID)
}

func (s *Service) normalizeReviewDate(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return s.clock.Now().Format(DateLayout), nil
	}
	if _, err := time.Parse(DateLayout, trimmed); err != nil {
		return "", ErrInvalidReviewDate
	}
	return trimmed, nil
}

func checkReview(r *Review) error {
	if math.IsNaN(r.Score) || math.IsInf(r.Score, 0) {
		return ErrInvalidScore
	}

	err := validate.Struct(reviewFields{
		EmployeeID: r.EmployeeID,
		Quarter:    r.Quarter,
		Score:      r.Score,
	})
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	switch verrs[0].Field() {
	case "EmployeeID":
		return ErrInvalidEmployeeID
	case "Quarter":
		return ErrInvalidQuarter
	default:
		return ErrInvalidScore
	}
}
