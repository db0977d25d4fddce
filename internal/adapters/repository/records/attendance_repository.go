package records

import (
	"context"
	"fmt"

	"github.com/ogurasousui/codex-hr-attendance/internal/core/attendance"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/recordstore"
)

const (
	fieldEmployeeID = "employeeId"
	fieldDate       = "date"
	fieldStatus     = "status"
	fieldCheckIn    = "checkIn"
	fieldCheckOut   = "checkOut"
)

var attendanceFields = []string{fieldEmployeeID, fieldDate, fieldStatus, fieldCheckIn, fieldCheckOut}

// AttendanceRepository は勤怠レコードをレコードストアへ保存します。
type AttendanceRepository struct {
	store recordstore.Store
	table string
	opts  options
}

var _ attendance.Repository = (*AttendanceRepository)(nil)

// NewAttendanceRepository は AttendanceRepository を生成します。
func NewAttendanceRepository(store recordstore.Store, table string, opts ...Option) *AttendanceRepository {
	return &AttendanceRepository{store: store, table: table, opts: newOptions(opts)}
}

// Create は勤怠レコードを追加します。
func (r *AttendanceRepository) Create(ctx context.Context, rec *attendance.Record) (*attendance.Record, error) {
	created, err := recordstore.Single(r.store.Create(ctx, r.table, []*recordstore.Record{attendanceToRecord(rec)}))
	if err != nil {
		return nil, fmt.Errorf("attendance: create: %w", err)
	}
	return r.decode(created)
}

// Update は勤怠レコードを更新します。空文字のフィールドも上書きされます。
func (r *AttendanceRepository) Update(ctx context.Context, rec *attendance.Record) (*attendance.Record, error) {
	if rec.ID == "" {
		return nil, attendance.ErrInvalidID
	}
	updated, err := recordstore.Single(r.store.Update(ctx, r.table, []*recordstore.Record{attendanceToRecord(rec)}))
	if err != nil {
		return nil, translateNotFound(err, attendance.ErrRecordNotFound)
	}
	return r.decode(updated)
}

// Delete は勤怠レコードを削除します。
func (r *AttendanceRepository) Delete(ctx context.Context, id string) error {
	_, err := recordstore.Single(r.store.Delete(ctx, r.table, []string{id}))
	return translateNotFound(err, attendance.ErrRecordNotFound)
}

// FindByID は ID で勤怠レコードを取得します。
func (r *AttendanceRepository) FindByID(ctx context.Context, id string) (*attendance.Record, error) {
	rec, err := r.store.GetByID(ctx, r.table, id, attendanceFields)
	if err != nil {
		return nil, translateNotFound(err, attendance.ErrRecordNotFound)
	}
	return r.decode(rec)
}

// List は条件に一致する勤怠レコードを追加順で返します。
func (r *AttendanceRepository) List(ctx context.Context, filter attendance.ListFilter) ([]*attendance.Record, error) {
	var where []recordstore.Condition
	if filter.EmployeeID != "" {
		where = append(where, recordstore.Eq(fieldEmployeeID, filter.EmployeeID))
	}
	if filter.Date != "" {
		where = append(where, recordstore.Eq(fieldDate, filter.Date))
	}
	if filter.From != "" {
		where = append(where, recordstore.Gte(fieldDate, filter.From))
	}
	if filter.To != "" {
		where = append(where, recordstore.Lte(fieldDate, filter.To))
	}

	rows, err := r.store.Fetch(ctx, r.table, recordstore.Query{Fields: attendanceFields, Where: where})
	if err != nil {
		return nil, err
	}

	return decodeAll(r.opts.logger, rows, r.decode)
}

func attendanceToRecord(rec *attendance.Record) *recordstore.Record {
	return recordstore.NewRecord(rec.ID, map[string]any{
		fieldEmployeeID: rec.EmployeeID,
		fieldDate:       rec.Date,
		fieldStatus:     string(rec.Status),
		fieldCheckIn:    rec.CheckIn,
		fieldCheckOut:   rec.CheckOut,
	})
}

func (r *AttendanceRepository) decode(row *recordstore.Record) (*attendance.Record, error) {
	status := attendance.Status(row.String(fieldStatus))
	if !attendance.IsValidMarkStatus(status) {
		return nil, corrupt(r.table, row.ID, "unknown status %q", status)
	}
	return &attendance.Record{
		ID:         row.ID,
		EmployeeID: row.String(fieldEmployeeID),
		Date:       row.String(fieldDate),
		Status:     status,
		CheckIn:    row.String(fieldCheckIn),
		CheckOut:   row.String(fieldCheckOut),
	}, nil
}
