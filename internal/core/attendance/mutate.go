package attendance

// MutationKind はレコードを新規作成するか既存を更新するかを表します。
type MutationKind int

const (
	MutationCreate MutationKind = iota
	MutationUpdate
)

func (k MutationKind) String() string {
	if k == MutationUpdate {
		return "update"
	}
	return "create"
}

// Mutation はレコードストアへ適用する変更です。Update の場合 Record.ID は既存レコードの ID です。
type Mutation struct {
	Kind   MutationKind
	Record Record
}

// PlanToggle は出勤・退勤トグルの変更内容を決定します。
//
//	NoRecord  -> 新規作成 (Present, checkIn=now)
//	SignedIn  -> 同じレコードの checkOut=now を更新
//	SignedOut -> 新しいサイクルとして新規作成
func PlanToggle(current *Record, employeeID, today, now string) Mutation {
	if StateOf(current) == StateSignedIn {
		rec := *current
		rec.CheckOut = now
		return Mutation{Kind: MutationUpdate, Record: rec}
	}

	return Mutation{
		Kind: MutationCreate,
		Record: Record{
			EmployeeID: employeeID,
			Date:       today,
			Status:     StatusPresent,
			CheckIn:    now,
			CheckOut:   "",
		},
	}
}

// PlanMark はステータス指定による変更内容を決定します。
// Absent の場合は checkIn / checkOut を必ず空にします。
func PlanMark(current *Record, employeeID string, status Status, today, now string) (Mutation, error) {
	if !IsValidMarkStatus(status) {
		return Mutation{}, ErrInvalidStatus
	}
	absent := status == StatusAbsent

	if current == nil {
		checkIn := now
		if absent {
			checkIn = ""
		}
		return Mutation{
			Kind: MutationCreate,
			Record: Record{
				EmployeeID: employeeID,
				Date:       today,
				Status:     status,
				CheckIn:    checkIn,
				CheckOut:   "",
			},
		}, nil
	}

	rec := *current
	rec.Status = status
	switch {
	case absent:
		rec.CheckIn = ""
		rec.CheckOut = ""
	case current.CheckIn == "":
		rec.CheckIn = now
	}

	return Mutation{Kind: MutationUpdate, Record: rec}, nil
}
