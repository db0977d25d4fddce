package report

import "errors"

var (
	// ErrScheduleNotFound は配信設定が存在しない場合に返却されます。
	ErrScheduleNotFound = errors.New("report: schedule not found")
	// ErrInvalidEmail はメールアドレスが不正な場合に返却されます。
	ErrInvalidEmail = errors.New("report: invalid email")
	// ErrInvalidFrequency は頻度が不正な場合に返却されます。
	ErrInvalidFrequency = errors.New("report: invalid frequency")
	// ErrInvalidID は ID が不正な場合に返却されます。
	ErrInvalidID = errors.New("report: invalid id")
)
