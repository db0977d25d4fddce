package attendance

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

const defaultParallelism = 8

// Service は勤怠の打刻・ステータス設定ユースケースをまとめます。
// 変更後は必ずレコードストアから再取得して状態を導出し直します。
type Service struct {
	repo        Repository
	clock       Clock
	location    *time.Location
	parallelism int
	logger      *log.Logger
}

// UseCase は勤怠ユースケースの公開インターフェースです。
type UseCase interface {
	Toggle(ctx context.Context, in ToggleInput) (*ToggleResult, error)
	MarkStatus(ctx context.Context, in MarkStatusInput) (*BulkResult, error)
	TodayStatus(ctx context.Context, in TodayStatusInput) (*TodayStatusResult, error)
	ListRecords(ctx context.Context, in ListRecordsInput) ([]*Record, error)
	DeleteRecord(ctx context.Context, in DeleteRecordInput) error
}

// Option は Service の設定を変更します。
type Option func(*Service)

// WithLocation は「今日」「現在時刻」を判定するタイムゾーンを指定します。
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithParallelism は一括ステータス設定時の同時実行数を指定します。
func WithParallelism(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

// WithLogger はログ出力先を指定します。
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, opts ...Option) *Service {
	if clock == nil {
		clock = realClock{}
	}
	s := &Service{
		repo:        repo,
		clock:       clock,
		location:    time.UTC,
		parallelism: defaultParallelism,
		logger:      log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ToggleInput は出勤・退勤トグルの入力です。
type ToggleInput struct {
	EmployeeID string
}

// ToggleAction はトグルの結果として行われた打刻の種類です。
type ToggleAction string

const (
	ActionSignedIn  ToggleAction = "signed_in"
	ActionSignedOut ToggleAction = "signed_out"
)

// ToggleResult はトグル結果です。Snapshot は再取得後に導出した状態です。
type ToggleResult struct {
	Action   ToggleAction
	Record   *Record
	Snapshot Snapshot
}

// MarkStatusInput はステータス一括設定の入力です。
type MarkStatusInput struct {
	EmployeeIDs []string
	Status      Status
}

// Failure は社員単位の失敗です。
type Failure struct {
	EmployeeID string
	Err        error
}

// BulkResult は一括設定の結果です。失敗した社員があっても他の社員の変更は取り消されません。
type BulkResult struct {
	Date      string
	Status    Status
	Requested int
	Succeeded int
	Failures  []Failure
	Snapshots []Snapshot
}

// Failed は失敗件数を返します。
func (r *BulkResult) Failed() int {
	return len(r.Failures)
}

// TodayStatusInput は当日状態取得の入力です。EmployeeIDs が空の場合、当日レコードを持つ社員が対象です。
type TodayStatusInput struct {
	EmployeeIDs []string
}

// TodayStatusResult は当日状態の一覧です。
type TodayStatusResult struct {
	Date      string
	Snapshots []Snapshot
}

// ListRecordsInput は勤怠レコード一覧取得の入力です。
type ListRecordsInput struct {
	EmployeeID string
	From       string
	To         string
}

// DeleteRecordInput は勤怠レコード削除の入力です。
type DeleteRecordInput struct {
	ID string
}

// Toggle は当日の状態に応じて出勤または退勤を打刻します。
// 打刻後の再取得に失敗した場合は、Snapshot を持たない結果とエラーを返却します。
func (s *Service) Toggle(ctx context.Context, in ToggleInput) (*ToggleResult, error) {
	employeeID := strings.TrimSpace(in.EmployeeID)
	if employeeID == "" {
		return nil, ErrInvalidEmployeeID
	}

	today, now := s.today()
	filter := ListFilter{EmployeeID: employeeID, Date: today}

	records, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("attendance: fetch today records: %w", err)
	}

	mutation := PlanToggle(CurrentRecord(records, employeeID, today), employeeID, today, now)
	applied, err := s.apply(ctx, mutation)
	if err != nil {
		s.logger.Printf("attendance: toggle failed employee=%s kind=%s: %v", employeeID, mutation.Kind, err)
		return nil, err
	}

	action := ActionSignedIn
	if mutation.Kind == MutationUpdate {
		action = ActionSignedOut
	}
	result := &ToggleResult{Action: action, Record: applied}

	refreshed, err := s.repo.List(ctx, filter)
	if err != nil {
		return result, fmt.Errorf("attendance: refetch after toggle: %w", err)
	}
	result.Snapshot = Derive(refreshed, employeeID, today)

	return result, nil
}

// MarkStatus は指定社員の当日ステータスを一括で設定します。
// 社員ごとの変更は並行に実行され、1 件の失敗は他をキャンセルしません。
// 再取得に失敗した場合も集計済みの結果を返却します。
func (s *Service) MarkStatus(ctx context.Context, in MarkStatusInput) (*BulkResult, error) {
	employeeIDs := normalizeEmployeeIDs(in.EmployeeIDs)
	if len(employeeIDs) == 0 {
		return nil, ErrNoEmployeesSelected
	}
	if !IsValidMarkStatus(in.Status) {
		return nil, ErrInvalidStatus
	}

	today, now := s.today()
	filter := ListFilter{Date: today}

	records, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("attendance: fetch today records: %w", err)
	}

	errs := make([]error, len(employeeIDs))
	var g errgroup.Group
	g.SetLimit(s.parallelism)
	for i, employeeID := range employeeIDs {
		current := CurrentRecord(records, employeeID, today)
		g.Go(func() error {
			mutation, err := PlanMark(current, employeeID, in.Status, today, now)
			if err == nil {
				_, err = s.apply(ctx, mutation)
			}
			if err != nil {
				s.logger.Printf("attendance: mark %s failed employee=%s: %v", in.Status, employeeID, err)
				errs[i] = err
			}
			return nil
		})
	}
	_ = g.Wait()

	result := &BulkResult{
		Date:      today,
		Status:    in.Status,
		Requested: len(employeeIDs),
	}
	for i, err := range errs {
		if err != nil {
			result.Failures = append(result.Failures, Failure{EmployeeID: employeeIDs[i], Err: err})
			continue
		}
		result.Succeeded++
	}

	refreshed, err := s.repo.List(ctx, filter)
	if err != nil {
		return result, fmt.Errorf("attendance: refetch after mark: %w", err)
	}
	result.Snapshots = DeriveAll(refreshed, employeeIDs, today)

	return result, nil
}

// TodayStatus は当日の勤怠状態を導出します。
func (s *Service) TodayStatus(ctx context.Context, in TodayStatusInput) (*TodayStatusResult, error) {
	today, _ := s.today()

	records, err := s.repo.List(ctx, ListFilter{Date: today})
	if err != nil {
		return nil, fmt.Errorf("attendance: fetch today records: %w", err)
	}

	employeeIDs := normalizeEmployeeIDs(in.EmployeeIDs)
	if len(employeeIDs) == 0 {
		employeeIDs = distinctEmployeeIDs(records)
	}

	return &TodayStatusResult{
		Date:      today,
		Snapshots: DeriveAll(records, employeeIDs, today),
	}, nil
}

// ListRecords は勤怠レコードを追加順で取得します。
func (s *Service) ListRecords(ctx context.Context, in ListRecordsInput) ([]*Record, error) {
	from, err := normalizeDate(in.From)
	if err != nil {
		return nil, err
	}
	to, err := normalizeDate(in.To)
	if err != nil {
		return nil, err
	}
	if from != "" && to != "" && from > to {
		return nil, ErrInvalidDateRange
	}

	return s.repo.List(ctx, ListFilter{
		EmployeeID: strings.TrimSpace(in.EmployeeID),
		From:       from,
		To:         to,
	})
}

// DeleteRecord は勤怠レコードを削除します。
func (s *Service) DeleteRecord(ctx context.Context, in DeleteRecordInput) error {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) apply(ctx context.Context, m Mutation) (*Record, error) {
	rec := m.Record
	if m.Kind == MutationUpdate {
		return s.repo.Update(ctx, &rec)
	}
	return s.repo.Create(ctx, &rec)
}

func (s *Service) today() (date, clock string) {
	now := s.clock.Now().In(s.location)
	return now.Format(DateLayout), now.Format(TimeLayout)
}

func normalizeEmployeeIDs(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, id := range raw {
		trimmed := strings.TrimSpace(id)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func distinctEmployeeIDs(records []*Record) []string {
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.EmployeeID)
	}
	return normalizeEmployeeIDs(ids)
}

func normalizeDate(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", nil
	}
	if _, err := time.Parse(DateLayout, trimmed); err != nil {
		return "", ErrInvalidDate
	}
	return trimmed, nil
}
