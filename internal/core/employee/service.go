package employee

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
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

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Service は社員に関するユースケースをまとめます。
type Service struct {
	repo        Repository
	clock       Clock
	tx          TransactionManager
	departments DepartmentDirectory
}

// UseCase は社員ユースケースの公開インターフェースです。
type UseCase interface {
	CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error)
	GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error)
	ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error)
	UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error)
	DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error
}

// Option は Service の設定を変更します。
type Option func(*Service)

// WithDepartmentDirectory は既定部署以外に登録済み部署を受け付けるようにします。
func WithDepartmentDirectory(dir DepartmentDirectory) Option {
	return func(s *Service) {
		s.departments = dir
	}
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager, opts ...Option) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	s := &Service{repo: repo, clock: clock, tx: tx}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateEmployeeInput は社員作成時の入力です。
type CreateEmployeeInput struct {
	FirstName  string
	LastName   string
	Email      string
	Department string
	Position   string
	Status     *Status
	HireDate   *time.Time
}

// UpdateEmployeeInput は社員更新時の入力です。nil のフィールドは変更しません。
type UpdateEmployeeInput struct {
	ID         string
	FirstName  *string
	LastName   *string
	Email      *string
	Department *string
	Position   *string
	Status     *Status
	HireDate   *time.Time
}

// DeleteEmployeeInput は社員削除時の入力です。
type DeleteEmployeeInput struct {
	ID string
}

// GetEmployeeInput は社員取得時の入力です。
type GetEmployeeInput struct {
	ID string
}

// ListEmployeesInput は一覧取得時の入力です。
type ListEmployeesInput struct {
	Department string
	Status     *Status
	Search     string
	PageSize   int
	PageToken  string
}

// ListEmployeesResult は一覧取得結果を表します。
type ListEmployeesResult struct {
	Employees     []*Employee
	NextPageToken string
}

type requiredFields struct {
	FirstName string `validate:"required"`
	LastName  string `validate:"required"`
	Email     string `validate:"required"`
}

// CreateEmployee は新しい社員を作成します。HireDate 未指定時は当日です。
func (s *Service) CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error) {
	emp := &Employee{
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		Email:      strings.TrimSpace(in.Email),
		Department: strings.TrimSpace(in.Department),
		Position:   strings.TrimSpace(in.Position),
		Status:     StatusActive,
	}
	if err := checkRequired(emp); err != nil {
		return nil, err
	}

	if in.Status != nil {
		if !IsValidStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		emp.Status = *in.Status
	}

	if in.HireDate != nil {
		emp.HireDate = normalizeDate(in.HireDate)
	} else {
		now := s.clock.Now()
		emp.HireDate = normalizeDate(&now)
	}

	var created *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureDepartment(txCtx, emp.Department); err != nil {
			return err
		}

		result, err := s.repo.Create(txCtx, emp)
		if err != nil {
			return err
		}

		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateEmployee は社員情報を更新します。
func (s *Service) UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var updated *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		if in.FirstName != nil {
			existing.FirstName = strings.TrimSpace(*in.FirstName)
		}
		if in.LastName != nil {
			existing.LastName = strings.TrimSpace(*in.LastName)
		}
		if in.Email != nil {
			existing.Email = strings.TrimSpace(*in.Email)
		}
		if err := checkRequired(existing); err != nil {
			return err
		}

		if in.Department != nil {
			department := strings.TrimSpace(*in.Department)
			if department != existing.Department {
				if err := s.ensureDepartment(txCtx, department); err != nil {
					return err
				}
				existing.Department = department
			}
		}

		if in.Position != nil {
			existing.Position = strings.TrimSpace(*in.Position)
		}

		if in.Status != nil {
			if !IsValidStatus(*in.Status) {
				return ErrInvalidStatus
			}
			existing.Status = *in.Status
		}

		if in.HireDate != nil {
			existing.HireDate = normalizeDate(in.HireDate)
		}

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}

		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteEmployee は社員を削除します。勤怠などの関連レコードは削除しません。
func (s *Service) DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error {
	if strings.TrimSpace(in.ID) == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, in.ID)
	})
}

// GetEmployee は社員を取得します。
func (s *Service) GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListEmployees は社員の一覧を取得します。
func (s *Service) ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	var statusPtr *Status
	if in.Status != nil {
		if !IsValidStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		status := *in.Status
		statusPtr = &status
	}

	var (
		employees []*Employee
		nextToken string
	)

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		resultEmployees, token, err := s.repo.List(txCtx, ListEmployeesFilter{
			Department: strings.TrimSpace(in.Department),
			Status:     statusPtr,
			Search:     strings.TrimSpace(in.Search),
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			return err
		}
		employees = resultEmployees
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListEmployeesResult{Employees: employees, NextPageToken: nextToken}, nil
}

func (s *Service) ensureDepartment(ctx context.Context, department string) error {
	if department == "" || slices.Contains(DefaultDepartments, department) {
		return nil
	}
	if s.departments == nil {
		return ErrInvalidDepartment
	}

	ok, err := s.departments.Exists(ctx, department)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidDepartment
	}
	return nil
}

func checkRequired(emp *Employee) error {
	err := validate.Struct(requiredFields{
		FirstName: emp.FirstName,
		LastName:  emp.LastName,
		Email:     emp.Email,
	})
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	switch verrs[0].Field() {
	case "FirstName":
		return ErrInvalidFirstName
	case "LastName":
		return ErrInvalidLastName
	default:
		return ErrInvalidEmail
	}
}

func normalizeDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	normalized := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &normalized
}

func normalizePageSize(pageSize int) (int, error) {
	if pageSize <= 0 {
		return defaultListPageSize, nil
	}
	if pageSize > maxListPageSize {
		return 0, ErrInvalidPageSize
	}
	return pageSize, nil
}

func parsePageToken(token string) (int, error) {
	if strings.TrimSpace(token) == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, ErrInvalidPageToken
	}

	return offset, nil
}
