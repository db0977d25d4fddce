package attendance

// 日付・時刻の書式です。
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Status は勤怠ステータスを表します。
type Status string

const (
	StatusPresent Status = "Present"
	StatusAbsent  Status = "Absent"
	StatusLate    Status = "Late"
	// StatusNotMarked は当日のレコードが存在しない場合に導出される値で、保存されることはありません。
	StatusNotMarked Status = "Not Marked"
)

// Record は 1 件の勤怠レコードです。CheckIn / CheckOut は HH:mm または空文字列です。
type Record struct {
	ID         string
	EmployeeID string
	Date       string
	Status     Status
	CheckIn    string
	CheckOut   string
}

// DayState は社員の当日の打刻状態です。
type DayState int

const (
	// StateNoRecord は当日のレコードが存在しない状態です。
	StateNoRecord DayState = iota
	// StateSignedIn は出勤済みで退勤していない状態です。
	StateSignedIn
	// StateSignedOut は退勤済みで、次の出勤で新しいレコードが作られる状態です。
	StateSignedOut
)

func (s DayState) String() string {
	switch s {
	case StateSignedIn:
		return "signed_in"
	case StateSignedOut:
		return "signed_out"
	default:
		return "no_record"
	}
}

// Snapshot は社員ごとの当日の勤怠状態です。
type Snapshot struct {
	EmployeeID  string
	State       DayState
	IsSignedIn  bool
	SignInTime  *string
	TodayStatus Status
	Record      *Record
}

// IsValidMarkStatus は手動で設定できるステータスかを判定します。
func IsValidMarkStatus(status Status) bool {
	switch status {
	case StatusPresent, StatusAbsent, StatusLate:
		return true
	default:
		return false
	}
}
