package handler

import (
	"context"
	"log"

	"github.com/ogurasousui/codex-hr-attendance/internal/core/attendance"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// AttendanceService のサービス名です。
const AttendanceService = "AttendanceService"

// AttendanceGrpcHandler は AttendanceService の gRPC 実装です。
type AttendanceGrpcHandler struct {
	svc    attendance.UseCase
	logger *log.Logger
}

// NewAttendanceGrpcHandler は AttendanceGrpcHandler を生成します。
func NewAttendanceGrpcHandler(svc attendance.UseCase, logger *log.Logger) *AttendanceGrpcHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &AttendanceGrpcHandler{svc: svc, logger: logger}
}

// Register は AttendanceService をサーバーへ登録します。
func (h *AttendanceGrpcHandler) Register(s grpc.ServiceRegistrar) {
	s.RegisterService(serviceDesc(AttendanceService,
		method{"Toggle", h.Toggle},
		method{"MarkStatus", h.MarkStatus},
		method{"TodayStatus", h.TodayStatus},
		method{"ListRecords", h.ListRecords},
		method{"DeleteRecord", h.DeleteRecord},
	), h)
}

// Toggle は出勤・退勤を打刻します。打刻後の再取得に失敗した場合は snapshot の代わりに refetchError を返します。
func (h *AttendanceGrpcHandler) Toggle(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	employeeID, err := fieldsOf(req).str("employeeId")
	if err != nil {
		return nil, err
	}

	result, err := h.svc.Toggle(ctx, attendance.ToggleInput{EmployeeID: employeeID})
	if result == nil {
		return nil, toStatusError(err)
	}

	out := map[string]any{
		"action": string(result.Action),
		"record": attendanceRecordMap(result.Record),
	}
	if err != nil {
		h.logger.Printf("attendance: toggle applied but refetch failed: %v", err)
		out["refetchError"] = err.Error()
	} else {
		out["snapshot"] = snapshotMap(result.Snapshot)
	}
	return toStruct(out)
}

// MarkStatus は複数社員の当日ステータスを一括設定します。
// 社員単位の失敗はレスポンスの failures に含め、RPC 自体は成功させます。
func (h *AttendanceGrpcHandler) MarkStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	f := fieldsOf(req)
	employeeIDs, err := f.strList("employeeIds")
	if err != nil {
		return nil, err
	}
	rawStatus, err := f.str("status")
	if err != nil {
		return nil, err
	}

	result, err := h.svc.MarkStatus(ctx, attendance.MarkStatusInput{
		EmployeeIDs: employeeIDs,
		Status:      attendance.Status(rawStatus),
	})
	if result == nil {
		return nil, toStatusError(err)
	}

	failures := make([]any, 0, len(result.Failures))
	for _, failure := range result.Failures {
		failures = append(failures, map[string]any{
			"employeeId": failure.EmployeeID,
			"error":      failure.Err.Error(),
		})
	}

	out := map[string]any{
		"date":      result.Date,
		"status":    string(result.Status),
		"requested": result.Requested,
		"succeeded": result.Succeeded,
		"failed":    result.Failed(),
		"failures":  failures,
		"snapshots": snapshotList(result.Snapshots),
	}
	if err != nil {
		h.logger.Printf("attendance: mark status applied but refetch failed: %v", err)
		out["refetchError"] = err.Error()
	}
	return toStruct(out)
}

// TodayStatus は当日の勤怠状態を返します。
func (h *AttendanceGrpcHandler) TodayStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	employeeIDs, err := fieldsOf(req).strList("employeeIds")
	if err != nil {
		return nil, err
	}

	result, err := h.svc.TodayStatus(ctx, attendance.TodayStatusInput{EmployeeIDs: employeeIDs})
	if err != nil {
		return nil, toStatusError(err)
	}

	return toStruct(map[string]any{
		"date":      result.Date,
		"snapshots": snapshotList(result.Snapshots),
	})
}

// ListRecords は勤怠レコードを一覧します。
func (h *AttendanceGrpcHandler) ListRecords(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := fieldsOf(req)
	var in attendance.ListRecordsInput
	var err error
	if in.EmployeeID, err = f.str("employeeId"); err != nil {
		return nil, err
	}
	if in.From, err = f.str("from"); err != nil {
		return nil, err
	}
	if in.To, err = f.str("to"); err != nil {
		return nil, err
	}

	records, err := h.svc.ListRecords(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	list := make([]any, 0, len(records))
	for _, rec := range records {
		list = append(list, attendanceRecordMap(rec))
	}
	return toStruct(map[string]any{"records": list})
}

// DeleteRecord は勤怠レコードを削除します。
func (h *AttendanceGrpcHandler) DeleteRecord(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	id, err := fieldsOf(req).str("id")
	if err != nil {
		return nil, err
	}
	if err := h.svc.DeleteRecord(ctx, attendance.DeleteRecordInput{ID: id}); err != nil {
		return nil, toStatusError(err)
	}
	return &structpb.Struct{}, nil
}

func attendanceRecordMap(rec *attendance.Record) any {
	if rec == nil {
		return nil
	}
	return map[string]any{
		"id":         rec.ID,
		"employeeId": rec.EmployeeID,
		"date":       rec.Date,
		"status":     string(rec.Status),
		"checkIn":    rec.CheckIn,
		"checkOut":   rec.CheckOut,
	}
}

func snapshotMap(snap attendance.Snapshot) map[string]any {
	var signInTime any
	if snap.SignInTime != nil {
		signInTime = *snap.SignInTime
	}
	return map[string]any{
		"employeeId":  snap.EmployeeID,
		"state":       snap.State.String(),
		"isSignedIn":  snap.IsSignedIn,
		"signInTime":  signInTime,
		"todayStatus": string(snap.TodayStatus),
		"record":      attendanceRecordMap(snap.Record),
	}
}

func snapshotList(snaps []attendance.Snapshot) []any {
	out := make([]any, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, snapshotMap(snap))
	}
	return out
}
