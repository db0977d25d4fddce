package recordstore

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Record はフラットなフィールド集合を持つ 1 行分のデータです。
type Record struct {
	ID     string
	Fields map[string]any
}

// NewRecord はフィールドを指定して Record を生成します。
func NewRecord(id string, fields map[string]any) *Record {
	if fields == nil {
		fields = make(map[string]any)
	}
	return &Record{ID: id, Fields: fields}
}

// Clone はレコードの浅いコピーを返します。フィールド値はスカラーのみを想定しています。
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	fields := make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	return &Record{ID: r.ID, Fields: fields}
}

// Project は指定フィールドのみを残したコピーを返します。fields が空の場合は全フィールドを返します。
func (r *Record) Project(fields []string) *Record {
	if r == nil {
		return nil
	}
	if len(fields) == 0 {
		return r.Clone()
	}
	out := &Record{ID: r.ID, Fields: make(map[string]any, len(fields))}
	for _, f := range fields {
		if v, ok := r.Fields[f]; ok {
			out.Fields[f] = v
		}
	}
	return out
}

// String はフィールド値を文字列として返します。
func (r *Record) String(field string) string {
	if r == nil {
		return ""
	}
	return FormatValue(r.Fields[field])
}

// Float はフィールド値を数値として返します。変換できない場合は 0 を返します。
func (r *Record) Float(field string) float64 {
	if r == nil {
		return 0
	}
	switch v := r.Fields[field].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f
	default:
		return 0
	}
}

// Int はフィールド値を整数として返します。小数は切り捨てます。
func (r *Record) Int(field string) int {
	return int(r.Float(field))
}

// Bool はフィールド値を真偽値として返します。
func (r *Record) Bool(field string) bool {
	if r == nil {
		return false
	}
	switch v := r.Fields[field].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	default:
		return false
	}
}

// FormatValue はスカラー値を比較・表示用の文字列へ変換します。
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// ValidateTable はテーブル名が識別子として妥当か検証します。
func ValidateTable(table string) error {
	if !identifierPattern.MatchString(table) {
		return ErrInvalidTable
	}
	return nil
}

// ValidateQuery は where 条件のフィールド名と演算子を検証します。
func ValidateQuery(q Query) error {
	for _, f := range q.Fields {
		if !identifierPattern.MatchString(f) {
			return ErrInvalidField
		}
	}
	for _, c := range q.Where {
		if !identifierPattern.MatchString(c.Field) {
			return ErrInvalidField
		}
		switch c.Operator {
		case OpEqualTo, OpContains, OpGreaterThanOrEqualTo, OpLessThanOrEqualTo:
		default:
			return ErrInvalidOperator
		}
	}
	return nil
}

// Matches はレコードがすべての条件を満たすかを判定します。
func Matches(r *Record, conds []Condition) bool {
	for _, c := range conds {
		if !matchCondition(r, c) {
			return false
		}
	}
	return true
}

func matchCondition(r *Record, c Condition) bool {
	actual := r.String(c.Field)
	if c.Field == "Id" {
		actual = r.ID
	}
	for _, want := range c.Values {
		switch c.Operator {
		case OpEqualTo:
			if actual == want {
				return true
			}
		case OpContains:
			if strings.Contains(strings.ToLower(actual), strings.ToLower(want)) {
				return true
			}
		case OpGreaterThanOrEqualTo:
			if compareValues(actual, want) >= 0 {
				return true
			}
		case OpLessThanOrEqualTo:
			if compareValues(actual, want) <= 0 {
				return true
			}
		}
	}
	return false
}

// compareValues は両方が数値なら数値として、そうでなければ文字列として比較します。
// yyyy-MM-dd 形式の日付は文字列比較で正しく順序付けされます。
func compareValues(a, b string) int {
	af, aErr := strconv.ParseFloat(a, 64)
	bf, bErr := strconv.ParseFloat(b, 64)
	if aErr == nil && bErr == nil {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}
