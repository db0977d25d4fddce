package records

import (
	"context"
	"fmt"

	"github.com/ogurasousui/codex-hr-attendance/internal/core/recordstore"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/report"
)

const (
	fieldFrequency = "frequency"
	fieldEnabled   = "enabled"
)

var scheduleFields = []string{fieldName, fieldFrequency, fieldEmail, fieldEnabled}

// ScheduleRepository はレポート配信設定をレコードストアへ保存します。
type ScheduleRepository struct {
	store recordstore.Store
	table string
}

var _ report.Repository = (*ScheduleRepository)(nil)

// NewScheduleRepository は ScheduleRepository を生成します。
func NewScheduleRepository(store recordstore.Store, table string) *ScheduleRepository {
	return &ScheduleRepository{store: store, table: table}
}

func (r *ScheduleRepository) Create(ctx context.Context, s *report.Schedule) (*report.Schedule, error) {
	created, err := recordstore.Single(r.store.Create(ctx, r.table, []*recordstore.Record{scheduleToRecord(s)}))
	if err != nil {
		return nil, fmt.Errorf("report: create: %w", err)
	}
	return scheduleFromRecord(created), nil
}

func (r *ScheduleRepository) Update(ctx context.Context, s *report.Schedule) (*report.Schedule, error) {
	if s.ID == "" {
		return nil, report.ErrInvalidID
	}
	updated, err := recordstore.Single(r.store.Update(ctx, r.table, []*recordstore.Record{scheduleToRecord(s)}))
	if err != nil {
		return nil, translateNotFound(err, report.ErrScheduleNotFound)
	}
	return scheduleFromRecord(updated), nil
}

func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	_, err := recordstore.Single(r.store.Delete(ctx, r.table, []string{id}))
	return translateNotFound(err, report.ErrScheduleNotFound)
}

func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*report.Schedule, error) {
	rec, err := r.store.GetByID(ctx, r.table, id, scheduleFields)
	if err != nil {
		return nil, translateNotFound(err, report.ErrScheduleNotFound)
	}
	return scheduleFromRecord(rec), nil
}

func (r *ScheduleRepository) List(ctx context.Context) ([]*report.Schedule, error) {
	rows, err := r.store.Fetch(ctx, r.table, recordstore.Query{Fields: scheduleFields})
	if err != nil {
		return nil, err
	}
	out := make([]*report.Schedule, 0, len(rows))
	for _, row := range rows {
		out = append(out, scheduleFromRecord(row))
	}
	return out, nil
}

func scheduleToRecord(s *report.Schedule) *recordstore.Record {
	return recordstore.NewRecord(s.ID, map[string]any{
		fieldName:      s.Name,
		fieldFrequency: string(s.Frequency),
		fieldEmail:     s.Email,
		fieldEnabled:   s.Enabled,
	})
}

func scheduleFromRecord(row *recordstore.Record) *report.Schedule {
	return &report.Schedule{
		ID:        row.ID,
		Name:      row.String(fieldName),
		Frequency: report.Frequency(row.String(fieldFrequency)),
		Email:     row.String(fieldEmail),
		Enabled:   row.Bool(fieldEnabled),
	}
}
