package recordstore

import "context"

// Operator は where 条件の比較演算子です。
type Operator string

const (
	OpEqualTo              Operator = "EqualTo"
	OpContains             Operator = "Contains"
	OpGreaterThanOrEqualTo Operator = "GreaterThanOrEqualTo"
	OpLessThanOrEqualTo    Operator = "LessThanOrEqualTo"
)

// Condition は 1 つの where 条件です。Values のいずれかに一致すれば真となります。
type Condition struct {
	Field    string
	Operator Operator
	Values   []string
}

// Query はレコード取得時の条件です。Where の各条件は AND で結合されます。
// Limit が 0 の場合は件数制限を行いません。
type Query struct {
	Fields []string
	Where  []Condition
	Limit  int
	Offset int
}

// Result は一括作成・更新・削除における 1 レコード分の結果です。
type Result struct {
	Record *Record
	Err    error
}

// Success は処理が成功したかどうかを返します。
func (r Result) Success() bool {
	return r.Err == nil
}

// Store はテーブル単位でレコードを扱う永続化サービスの抽象です。
// Fetch は追加順 (append order) でレコードを返却しなければなりません。
type Store interface {
	Fetch(ctx context.Context, table string, q Query) ([]*Record, error)
	GetByID(ctx context.Context, table, id string, fields []string) (*Record, error)
	Create(ctx context.Context, table string, records []*Record) ([]Result, error)
	Update(ctx context.Context, table string, records []*Record) ([]Result, error)
	Delete(ctx context.Context, table string, ids []string) ([]Result, error)
}

// Single は 1 件だけの結果を取り出します。
func Single(results []Result, err error) (*Record, error) {
	if err != nil {
		return nil, err
	}
	if len(results) != 1 {
		return nil, ErrUnexpectedResultCount
	}
	if results[0].Err != nil {
		return nil, results[0].Err
	}
	return results[0].Record, nil
}

// Eq は EqualTo 条件を生成します。
func Eq(field string, values ...string) Condition {
	return Condition{Field: field, Operator: OpEqualTo, Values: values}
}

// Contains は Contains 条件を生成します。
func Contains(field, value string) Condition {
	return Condition{Field: field, Operator: OpContains, Values: []string{value}}
}

// Gte は GreaterThanOrEqualTo 条件を生成します。
func Gte(field, value string) Condition {
	return Condition{Field: field, Operator: OpGreaterThanOrEqualTo, Values: []string{value}}
}

// Lte は LessThanOrEqualTo 条件を生成します。
func Lte(field, value string) Condition {
	return Condition{Field: field, Operator: OpLessThanOrEqualTo, Values: []string{value}}
}
