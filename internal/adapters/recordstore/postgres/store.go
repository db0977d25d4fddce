package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/recordstore"
	pgdb "github.com/ogurasousui/codex-hr-attendance/internal/platform/db/postgres"
)

const (
	invalidTextRepresentationCode = "22P02"
	uniqueViolationCode           = "23505"
	adminShutdownCode             = "57P01"
	connectionExceptionClass      = "08"
)

// Store は records テーブル (jsonb) を用いた recordstore.Store の PostgreSQL 実装です。
// seq 列の昇順が追加順となります。
type Store struct {
	pool  pgdb.Queryer
	newID func() string
}

var _ recordstore.Store = (*Store)(nil)

// NewStore は Store を生成します。
func NewStore(pool pgdb.Queryer) *Store {
	return &Store{pool: pool, newID: uuid.NewString}
}

// Fetch は条件に一致するレコードを追加順で返します。
func (s *Store) Fetch(ctx context.Context, table string, q recordstore.Query) ([]*recordstore.Record, error) {
	if err := recordstore.ValidateTable(table); err != nil {
		return nil, err
	}
	if err := recordstore.ValidateQuery(q); err != nil {
		return nil, err
	}

	query, args := buildFetchQuery(table, q)

	exec := pgdb.QueryerFromContext(ctx, s.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translatePgError(err)
	}
	defer rows.Close()

	records := make([]*recordstore.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, translatePgError(err)
		}
		records = append(records, rec.Project(q.Fields))
	}
	if err := rows.Err(); err != nil {
		return nil, translatePgError(err)
	}

	return records, nil
}

// GetByID は ID でレコードを取得します。
func (s *Store) GetByID(ctx context.Context, table, id string, fields []string) (*recordstore.Record, error) {
	if err := recordstore.ValidateTable(table); err != nil {
		return nil, err
	}

	exec := pgdb.QueryerFromContext(ctx, s.pool)
	row := exec.QueryRow(ctx, `
        SELECT id::text, fields
          FROM records
         WHERE table_name = $1 AND id = $2
         LIMIT 1
    `, table, id)

	rec, err := scanRecord(row)
	if err != nil {
		return nil, translatePgError(err)
	}
	return rec.Project(fields), nil
}

// Create はレコードを 1 件ずつ追加します。失敗したレコードは Result.Err に格納されます。
func (s *Store) Create(ctx context.Context, table string, records []*recordstore.Record) ([]recordstore.Result, error) {
	if err := recordstore.ValidateTable(table); err != nil {
		return nil, err
	}

	exec := pgdb.QueryerFromContext(ctx, s.pool)
	results := make([]recordstore.Result, 0, len(records))
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		payload, err := encodeFields(rec)
		if err != nil {
			results = append(results, recordstore.Result{Err: err})
			continue
		}

		row := exec.QueryRow(ctx, `
        INSERT INTO records (id, table_name, fields)
        VALUES ($1, $2, $3::jsonb)
        RETURNING id::text, fields
    `, s.newID(), table, payload)

		created, err := scanRecord(row)
		if err != nil {
			results = append(results, recordstore.Result{Err: translatePgError(err)})
			continue
		}
		results = append(results, recordstore.Result{Record: created})
	}
	return results, nil
}

// Update は既存レコードへフィールドをマージします (jsonb の || 演算子)。
func (s *Store) Update(ctx context.Context, table string, records []*recordstore.Record) ([]recordstore.Result, error) {
	if err := recordstore.ValidateTable(table); err != nil {
		return nil, err
	}

	exec := pgdb.QueryerFromContext(ctx, s.pool)
	results := make([]recordstore.Result, 0, len(records))
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if rec == nil || rec.ID == "" {
			results = append(results, recordstore.Result{Err: recordstore.ErrMissingID})
			continue
		}

		payload, err := encodeFields(rec)
		if err != nil {
			results = append(results, recordstore.Result{Err: err})
			continue
		}

		row := exec.QueryRow(ctx, `
        UPDATE records
           SET fields = fields || $1::jsonb,
               updated_at = now()
         WHERE table_name = $2 AND id = $3
        RETURNING id::text, fields
    `, payload, table, rec.ID)

		updated, err := scanRecord(row)
		if err != nil {
			results = append(results, recordstore.Result{Err: translatePgError(err)})
			continue
		}
		results = append(results, recordstore.Result{Record: updated})
	}
	return results, nil
}

// Delete は ID を指定してレコードを削除します。
func (s *Store) Delete(ctx context.Context, table string, ids []string) ([]recordstore.Result, error) {
	if err := recordstore.ValidateTable(table); err != nil {
		return nil, err
	}

	exec := pgdb.QueryerFromContext(ctx, s.pool)
	results := make([]recordstore.Result, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		tag, err := exec.Exec(ctx, `DELETE FROM records WHERE table_name = $1 AND id = $2`, table, id)
		if err != nil {
			results = append(results, recordstore.Result{Err: translatePgError(err)})
			continue
		}
		if tag.RowsAffected() == 0 {
			results = append(results, recordstore.Result{Err: recordstore.ErrRecordNotFound})
			continue
		}
		results = append(results, recordstore.Result{Record: recordstore.NewRecord(id, nil)})
	}
	return results, nil
}

func buildFetchQuery(table string, q recordstore.Query) (string, []any) {
	args := make([]any, 0, 2+2*len(q.Where)+2)
	args = append(args, table)

	var b strings.Builder
	b.WriteString(`
        SELECT id::text, fields
          FROM records
         WHERE table_name = $1`)

	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	for _, c := range q.Where {
		column := "id::text"
		if c.Field != "Id" {
			column = "fields->>" + next(c.Field)
		}
		switch c.Operator {
		case recordstore.OpEqualTo:
			b.WriteString(" AND " + column + " = ANY(" + next(c.Values) + ")")
		case recordstore.OpContains:
			patterns := make([]string, 0, len(c.Values))
			for _, v := range c.Values {
				patterns = append(patterns, "%"+escapeLike(v)+"%")
			}
			b.WriteString(" AND " + column + " ILIKE ANY(" + next(patterns) + ")")
		case recordstore.OpGreaterThanOrEqualTo:
			b.WriteString(" AND " + column + " >= ANY(" + next(c.Values) + ")")
		case recordstore.OpLessThanOrEqualTo:
			b.WriteString(" AND " + column + " <= ANY(" + next(c.Values) + ")")
		}
	}

	b.WriteString(`
         ORDER BY seq ASC`)

	if q.Limit > 0 {
		b.WriteString(`
         LIMIT ` + next(q.Limit))
	}
	if q.Offset > 0 {
		b.WriteString(`
        OFFSET ` + next(q.Offset))
	}
	b.WriteString(`
    `)

	return b.String(), args
}

func escapeLike(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(v)
}

func encodeFields(rec *recordstore.Record) (string, error) {
	fields := map[string]any{}
	if rec != nil && rec.Fields != nil {
		fields = rec.Fields
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("postgres: encode fields: %w", err)
	}
	return string(b), nil
}

func scanRecord(row pgx.Row) (*recordstore.Record, error) {
	var (
		id     string
		fields []byte
	)
	if err := row.Scan(&id, &fields); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, recordstore.ErrRecordNotFound
		}
		return nil, err
	}

	decoded := make(map[string]any)
	if len(fields) > 0 {
		if err := json.Unmarshal(fields, &decoded); err != nil {
			return nil, fmt.Errorf("postgres: decode fields: %w", err)
		}
	}

	return recordstore.NewRecord(id, decoded), nil
}

func translatePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return recordstore.ErrRecordNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case invalidTextRepresentationCode:
			return recordstore.ErrRecordNotFound
		case uniqueViolationCode:
			return fmt.Errorf("postgres: duplicate record id: %w", err)
		case adminShutdownCode:
			return fmt.Errorf("%w: %v", recordstore.ErrUnavailable, err)
		}
		if strings.HasPrefix(pgErr.Code, connectionExceptionClass) {
			return fmt.Errorf("%w: %v", recordstore.ErrUnavailable, err)
		}
		return err
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%w: %v", recordstore.ErrUnavailable, err)
	}

	return err
}
