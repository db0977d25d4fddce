package attendance

// CurrentRecord は (employeeID, today) に一致するレコードのうち、コレクション順で最後のものを返します。
// 同日の重複レコードは正当なものとして扱い、最後に追加されたものを採用します。
func CurrentRecord(records []*Record, employeeID, today string) *Record {
	var current *Record
	for _, r := range records {
		if r == nil {
			continue
		}
		if r.EmployeeID == employeeID && r.Date == today {
			current = r
		}
	}
	return current
}

// StateOf はレコードから当日の打刻状態を判定します。
func StateOf(current *Record) DayState {
	switch {
	case current == nil:
		return StateNoRecord
	case current.CheckOut == "":
		return StateSignedIn
	default:
		return StateSignedOut
	}
}

// Derive は社員の当日の勤怠状態を導出します。副作用はありません。
func Derive(records []*Record, employeeID, today string) Snapshot {
	current := CurrentRecord(records, employeeID, today)

	snap := Snapshot{
		EmployeeID:  employeeID,
		State:       StateOf(current),
		TodayStatus: StatusNotMarked,
	}
	if current == nil {
		return snap
	}

	rec := *current
	snap.Record = &rec
	snap.TodayStatus = current.Status
	if snap.State == StateSignedIn {
		snap.IsSignedIn = true
		signIn := current.CheckIn
		snap.SignInTime = &signIn
	}
	return snap
}

// DeriveAll は複数社員分の状態を employeeIDs の順で導出します。
func DeriveAll(records []*Record, employeeIDs []string, today string) []Snapshot {
	out := make([]Snapshot, 0, len(employeeIDs))
	for _, id := range employeeIDs {
		out = append(out, Derive(records, id, today))
	}
	return out
}
