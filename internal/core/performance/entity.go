package performance

// DateLayout はレビュー日の形式です。
const DateLayout = "2006-01-02"

// Review は四半期ごとの評価レコードです。Score はおおむね 0〜5 の範囲です。
type Review struct {
	ID         string
	EmployeeID string
	Quarter    string
	Score      float64
	ReviewDate string
	Goals      string
}
