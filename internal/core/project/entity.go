package project

// DateLayout は終了日の形式です。
const DateLayout = "2006-01-02"

// Status はプロジェクトの進行状態を表します。
type Status string

const (
	StatusPlanning   Status = "Planning"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
	StatusOnHold     Status = "On Hold"
)

// Project はプロジェクトエンティティです。
// AssignedEmployeeIDs は保存されず、読み込み時にアサインから組み立てられます。
type Project struct {
	ID                  string
	Name                string
	Status              Status
	Progress            int
	EndDate             string
	Description         string
	AssignedEmployeeIDs []string
}

// Assignment は社員とプロジェクトの関連です。
type Assignment struct {
	ID         string
	EmployeeID string
	ProjectID  string
}

// IsValidStatus はステータスが既知の値かを判定します。
func IsValidStatus(status Status) bool {
	switch status {
	case StatusPlanning, StatusInProgress, StatusCompleted, StatusOnHold:
		return true
	default:
		return false
	}
}
