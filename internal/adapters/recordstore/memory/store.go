package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/recordstore"
)

// Store はプロセス内メモリにレコードを保持する recordstore.Store 実装です。
// テーブルごとに追加順を保持します。
type Store struct {
	mu     sync.RWMutex
	tables map[string][]*recordstore.Record
	newID  func() string
}

var _ recordstore.Store = (*Store)(nil)

// New は空の Store を生成します。
func New() *Store {
	return &Store{
		tables: make(map[string][]*recordstore.Record),
		newID:  uuid.NewString,
	}
}

// Fetch は条件に一致するレコードを追加順で返します。
func (s *Store) Fetch(ctx context.Context, table string, q recordstore.Query) ([]*recordstore.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := recordstore.ValidateTable(table); err != nil {
		return nil, err
	}
	if err := recordstore.ValidateQuery(q); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*recordstore.Record, 0)
	skipped := 0
	for _, rec := range s.tables[table] {
		if !recordstore.Matches(rec, q.Where) {
			continue
		}
		if skipped < q.Offset {
			skipped++
			continue
		}
		out = append(out, rec.Project(q.Fields))
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

// GetByID は ID でレコードを取得します。
func (s *Store) GetByID(ctx context.Context, table, id string, fields []string) (*recordstore.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := recordstore.ValidateTable(table); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(table, id)
	if idx < 0 {
		return nil, recordstore.ErrRecordNotFound
	}
	return s.tables[table][idx].Project(fields), nil
}

// Create はレコードを追加し、採番した ID を含むレコードを返します。
func (s *Store) Create(ctx context.Context, table string, records []*recordstore.Record) ([]recordstore.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := recordstore.ValidateTable(table); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]recordstore.Result, 0, len(records))
	for _, rec := range records {
		stored := rec.Clone()
		if stored == nil {
			stored = recordstore.NewRecord("", nil)
		}
		stored.ID = s.newID()
		s.tables[table] = append(s.tables[table], stored)
		results = append(results, recordstore.Result{Record: stored.Clone()})
	}
	return results, nil
}

// Update は既存レコードへフィールドをマージします。存在しない ID は個別に失敗します。
func (s *Store) Update(ctx context.Context, table string, records []*recordstore.Record) ([]recordstore.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := recordstore.ValidateTable(table); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]recordstore.Result, 0, len(records))
	for _, rec := range records {
		if rec == nil || rec.ID == "" {
			results = append(results, recordstore.Result{Err: recordstore.ErrMissingID})
			continue
		}
		idx := s.indexOf(table, rec.ID)
		if idx < 0 {
			results = append(results, recordstore.Result{Err: recordstore.ErrRecordNotFound})
			continue
		}
		existing := s.tables[table][idx]
		for k, v := range rec.Fields {
			existing.Fields[k] = v
		}
		results = append(results, recordstore.Result{Record: existing.Clone()})
	}
	return results, nil
}

// Delete は ID を指定してレコードを削除します。
func (s *Store) Delete(ctx context.Context, table string, ids []string) ([]recordstore.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := recordstore.ValidateTable(table); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]recordstore.Result, 0, len(ids))
	for _, id := range ids {
		idx := s.indexOf(table, id)
		if idx < 0 {
			results = append(results, recordstore.Result{Err: recordstore.ErrRecordNotFound})
			continue
		}
		rows := s.tables[table]
		s.tables[table] = append(rows[:idx:idx], rows[idx+1:]...)
		results = append(results, recordstore.Result{Record: recordstore.NewRecord(id, nil)})
	}
	return results, nil
}

func (s *Store) indexOf(table, id string) int {
	for i, rec := range s.tables[table] {
		if rec.ID == id {
			return i
		}
	}
	return -1
}
