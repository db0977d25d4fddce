package analytics

import "errors"

// ErrInvalidEmployeeID は社員 ID が空の場合に返却されます。
var ErrInvalidEmployeeID = errors.New("analytics: invalid employee id")
