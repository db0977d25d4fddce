package recordstore

import "errors"

var (
	ErrRecordNotFound        = errors.New("recordstore: record not found")
	ErrInvalidTable          = errors.New("recordstore: invalid table name")
	ErrInvalidField          = errors.New("recordstore: invalid field name")
	ErrInvalidOperator       = errors.New("recordstore: invalid operator")
	ErrMissingID             = errors.New("recordstore: record id is required")
	ErrUnexpectedResultCount = errors.New("recordstore: unexpected result count")

	// ErrUnavailable はストアへ到達できない場合のエラーです。
	ErrUnavailable = errors.New("recordstore: store unavailable")
	// ErrCorruptRecord は保存済みレコードがエンティティへ変換できない場合のエラーです。
	ErrCorruptRecord = errors.New("recordstore: corrupt record")
)
