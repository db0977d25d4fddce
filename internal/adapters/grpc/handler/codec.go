package handler

import (
	"fmt"
	"math"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const dateLayout = "2006-01-02"

// fields はリクエスト Struct の読み取りを補助します。
type fields struct {
	m map[string]*structpb.Value
}

func fieldsOf(req *structpb.Struct) fields {
	if req == nil {
		return fields{}
	}
	return fields{m: req.GetFields()}
}

func (f fields) has(key string) bool {
	v, ok := f.m[key]
	if !ok {
		return false
	}
	_, isNull := v.GetKind().(*structpb.Value_NullValue)
	return !isNull
}

func (f fields) str(key string) (string, error) {
	if !f.has(key) {
		return "", nil
	}
	v, ok := f.m[key].GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", invalidField(key, "must be a string")
	}
	return v.StringValue, nil
}

func (f fields) optStr(key string) (*string, error) {
	if !f.has(key) {
		return nil, nil
	}
	s, err := f.str(key)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (f fields) num(key string) (float64, error) {
	if !f.has(key) {
		return 0, nil
	}
	v, ok := f.m[key].GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, invalidField(key, "must be a number")
	}
	return v.NumberValue, nil
}

func (f fields) optNum(key string) (*float64, error) {
	if !f.has(key) {
		return nil, nil
	}
	n, err := f.num(key)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (f fields) integer(key string) (int, error) {
	n, err := f.num(key)
	if err != nil {
		return 0, err
	}
	if n != math.Trunc(n) {
		return 0, invalidField(key, "must be an integer")
	}
	return int(n), nil
}

func (f fields) optInt(key string) (*int, error) {
	if !f.has(key) {
		return nil, nil
	}
	n, err := f.integer(key)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (f fields) optBool(key string) (*bool, error) {
	if !f.has(key) {
		return nil, nil
	}
	v, ok := f.m[key].GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return nil, invalidField(key, "must be a boolean")
	}
	b := v.BoolValue
	return &b, nil
}

// strList は文字列配列を読み取ります。キーが無い場合は nil、空配列の場合は空スライスを返します。
func (f fields) strList(key string) ([]string, error) {
	if !f.has(key) {
		return nil, nil
	}
	list, ok := f.m[key].GetKind().(*structpb.Value_ListValue)
	if !ok {
		return nil, invalidField(key, "must be a list of strings")
	}
	out := make([]string, 0, len(list.ListValue.GetValues()))
	for _, v := range list.ListValue.GetValues() {
		s, ok := v.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, invalidField(key, "must be a list of strings")
		}
		out = append(out, s.StringValue)
	}
	return out, nil
}

func (f fields) optDate(key string) (*time.Time, error) {
	raw, err := f.str(key)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, trimmed, time.UTC)
	if err != nil {
		return nil, invalidField(key, "invalid format, expected YYYY-MM-DD")
	}
	return &t, nil
}

func invalidField(key, reason string) error {
	return status.Error(codes.InvalidArgument, fmt.Sprintf("%s: %s", key, reason))
}

func requireRequest(req *structpb.Struct) error {
	if req == nil {
		return status.Error(codes.InvalidArgument, "request is required")
	}
	return nil
}

// toStruct はレスポンス用の map を Struct へ変換します。
func toStruct(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	return out, nil
}

func stringsToList(values []string) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}

func datePointer(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateLayout)
}
