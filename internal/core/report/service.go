package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Service はレポート配信設定のユースケースをまとめます。
type Service struct {
	repo Repository
}

// UseCase は配信設定ユースケースの公開インターフェースです。
type UseCase interface {
	CreateSchedule(ctx context.Context, in CreateScheduleInput) (*Schedule, error)
	GetSchedule(ctx context.Context, in GetScheduleInput) (*Schedule, error)
	ListSchedules(ctx context.Context) ([]*Schedule, error)
	UpdateSchedule(ctx context.Context, in UpdateScheduleInput) (*Schedule, error)
	DeleteSchedule(ctx context.Context, in DeleteScheduleInput) error
}

// NewService は Service を生成します。
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateScheduleInput は配信設定作成の入力です。
type CreateScheduleInput struct {
	Name      string
	Frequency Frequency
	Email     string
	Enabled   bool
}

// UpdateScheduleInput は配信設定更新の入力です。
type UpdateScheduleInput struct {
	ID        string
	Name      *string
	Frequency *Frequency
	Email     *string
	Enabled   *bool
}

// GetScheduleInput は配信設定取得の入力です。
type GetScheduleInput struct {
	ID string
}

// DeleteScheduleInput は配信設定削除の入力です。
type DeleteScheduleInput struct {
	ID string
}

// CreateSchedule は配信設定を作成します。Name 未指定時は "{frequency}-{email}" です。
func (s *Service) CreateSchedule(ctx context.Context, in CreateScheduleInput) (*Schedule, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if !IsValidFrequency(in.Frequency) {
		return nil, ErrInvalidFrequency
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = fmt.Sprintf("%s-%s", in.Frequency, email)
	}

	return s.repo.Create(ctx, &Schedule{
		Name:      name,
		Frequency: in.Frequency,
		Email:     email,
		Enabled:   in.Enabled,
	})
}

// UpdateSchedule は配信設定を更新します。
func (s *Service) UpdateSchedule(ctx context.Context, in UpdateScheduleInput) (*Schedule, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	existing, err := s.repo.FindByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		email, err := normalizeEmail(*in.Email)
		if err != nil {
			return nil, err
		}
		existing.Email = email
	}
	if in.Frequency != nil {
		if !IsValidFrequency(*in.Frequency) {
			return nil, ErrInvalidFrequency
		}
		existing.Frequency = *in.Frequency
	}
	if in.Name != nil {
		if name := strings.TrimSpace(*in.Name); name != "" {
			existing.Name = name
		}
	}
	if in.Enabled != nil {
		existing.Enabled = *in.Enabled
	}

	return s.repo.Update(ctx, existing)
}

// GetSchedule は配信設定を取得します。
func (s *Service) GetSchedule(ctx context.Context, in GetScheduleInput) (*Schedule, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}
	return s.repo.FindByID(ctx, in.ID)
}

// ListSchedules は配信設定を一覧します。
func (s *Service) ListSchedules(ctx context.Context) ([]*Schedule, error) {
	return s.repo.List(ctx)
}

// DeleteSchedule は配信設定を削除します。
func (s *Service) DeleteSchedule(ctx context.Context, in DeleteScheduleInput) error {
	if strings.TrimSpace(in.ID) == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}
	return s.repo.Delete(ctx, in.ID)
}

func normalizeEmail(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidEmail
	}

	if err := validate.Var(trimmed, "email"); err != nil {
		return "", ErrInvalidEmail
	}

	return strings.ToLower(trimmed), nil
}
