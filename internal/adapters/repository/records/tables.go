package records

import (
	"errors"
	"fmt"
	"log"

	"github.com/ogurasousui/codex-hr-attendance/internal/core/recordstore"
)

// Tables は各エンティティを格納するレコードストアのテーブル名です。
type Tables struct {
	Employee          string
	Attendance        string
	PerformanceReview string
	Project           string
	ProjectAssignment string
	Department        string
	ReportSchedule    string
}

// DefaultTables は既定のテーブル名を返します。
func DefaultTables() Tables {
	return Tables{
		Employee:          "employee",
		Attendance:        "attendance",
		PerformanceReview: "performance_review",
		Project:           "project",
		ProjectAssignment: "project_assignment",
		Department:        "department",
		ReportSchedule:    "report_schedule",
	}
}

const dateLayout = "2006-01-02"

func translateNotFound(err, notFound error) error {
	if errors.Is(err, recordstore.ErrRecordNotFound) {
		return notFound
	}
	return err
}

// resultErrors は失敗した結果をまとめて返します。全件成功の場合は nil です。
func resultErrors(results []recordstore.Result) error {
	var errs []error
	for i, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("record %d: %w", i, r.Err))
		}
	}
	return errors.Join(errs...)
}

// Option はリポジトリの設定を変更します。
type Option func(*options)

type options struct {
	logger *log.Logger
}

// WithLogger は読み飛ばした壊れたレコードの出力先を指定します。
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func newOptions(opts []Option) options {
	o := options{logger: log.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func corrupt(table, id, format string, args ...any) error {
	return fmt.Errorf("%w: %s/%s: %s", recordstore.ErrCorruptRecord, table, id, fmt.Sprintf(format, args...))
}

// decodeAll は rows を変換します。ErrCorruptRecord の行は読み飛ばしてログに残し、
// 1 件の不正データで一覧全体が読めなくなることを防ぎます。
func decodeAll[T any](logger *log.Logger, rows []*recordstore.Record, decode func(*recordstore.Record) (T, error)) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		v, err := decode(row)
		if err != nil {
			if errors.Is(err, recordstore.ErrCorruptRecord) {
				logger.Printf("records: skip %v", err)
				continue
			}
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
