package report

// Frequency はレポート配信の頻度です。
type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
)

// Schedule はレポート配信設定です。設定の保存のみを行い、配信処理は持ちません。
type Schedule struct {
	ID        string
	Name      string
	Frequency Frequency
	Email     string
	Enabled   bool
}

// IsValidFrequency は頻度が既知の値かを判定します。
func IsValidFrequency(f Frequency) bool {
	switch f {
	case FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly:
		return true
	default:
		return false
	}
}
