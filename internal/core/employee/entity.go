package employee

import (
	"strings"
	"time"
)

// Status は社員の在籍状態を表します。
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// DefaultDepartments は部署マスタが未登録の場合に受け付ける部署名です。
var DefaultDepartments = []string{"Engineering", "Design", "Marketing", "Sales", "HR", "Finance"}

// Employee は社員エンティティです。Department は未設定の場合空文字です。
type Employee struct {
	ID         string
	FirstName  string
	LastName   string
	Email      string
	Department string
	Position   string
	Status     Status
	HireDate   *time.Time
}

// FullName は表示用の氏名を返します。
func (e *Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// IsActive は在籍中かどうかを返します。
func (e *Employee) IsActive() bool {
	return e.Status == StatusActive
}

// IsValidStatus は在籍状態が既知の値かを判定します。
func IsValidStatus(status Status) bool {
	switch status {
	case StatusActive, StatusInactive:
		return true
	default:
		return false
	}
}
