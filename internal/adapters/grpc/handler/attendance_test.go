package handler

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/ogurasousui/codex-hr-attendance/internal/core/attendance"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type stubAttendanceUseCase struct {
	toggleInput attendance.ToggleInput
	toggleOut   *attendance.ToggleResult
	toggleErr   error

	markInput attendance.MarkStatusInput
	markOut   *attendance.BulkResult
	markErr   error

	todayInput attendance.TodayStatusInput
	todayOut   *attendance.TodayStatusResult
	todayErr   error

	listInput attendance.ListRecordsInput
	listOut   []*attendance.Record
	listErr   error

	deleteInput attendance.DeleteRecordInput
	deleteErr   error
}

func (s *stubAttendanceUseCase) Toggle(ctx context.Context, in attendance.ToggleInput) (*attendance.ToggleResult, error) {
	s.toggleInput = in
	return s.toggleOut, s.toggleErr
}

func (s *stubAttendanceUseCase) MarkStatus(ctx context.Context, in attendance.MarkStatusInput) (*attendance.BulkResult, error) {
	s.markInput = in
	return s.markOut, s.markErr
}

func (s *stubAttendanceUseCase) TodayStatus(ctx context.Context, in attendance.TodayStatusInput) (*attendance.TodayStatusResult, error) {
	s.todayInput = in
	return s.todayOut, s.todayErr
}

func (s *stubAttendanceUseCase) ListRecords(ctx context.Context, in attendance.ListRecordsInput) ([]*attendance.Record, error) {
	s.listInput = in
	return s.listOut, s.listErr
}

func (s *stubAttendanceUseCase) DeleteRecord(ctx context.Context, in attendance.DeleteRecordInput) error {
	s.deleteInput = in
	return s.deleteErr
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestAttendanceGrpcHandler_Toggle(t *testing.T) {
	t.Parallel()

	signIn := "09:00"
	rec := &attendance.Record{ID: "att-1", EmployeeID: "emp-1", Date: "2024-05-10", Status: attendance.StatusPresent, CheckIn: "09:00"}
	stub := &stubAttendanceUseCase{toggleOut: &attendance.ToggleResult{
		Action: attendance.ActionSignedIn,
		Record: rec,
		Snapshot: attendance.Snapshot{
			EmployeeID:  "emp-1",
			State:       attendance.StateSignedIn,
			IsSignedIn:  true,
			SignInTime:  &signIn,
			TodayStatus: attendance.StatusPresent,
			Record:      rec,
		},
	}}
	handler := NewAttendanceGrpcHandler(stub, discardLogger())

	resp, err := handler.Toggle(context.Background(), mustStruct(t, map[string]any{"employeeId": "emp-1"}))
	if err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}
	if stub.toggleInput.EmployeeID != "emp-1" {
		t.Fatalf("expected employee id to pass through, got %q", stub.toggleInput.EmployeeID)
	}

	fields := resp.GetFields()
	if fields["action"].GetStringValue() != "signed_in" {
		t.Fatalf("unexpected action: %v", fields["action"])
	}
	snap := fields["snapshot"].GetStructValue().GetFields()
	if snap["state"].GetStringValue() != "signed_in" || !snap["isSignedIn"].GetBoolValue() || snap["signInTime"].GetStringValue() != "09:00" {
		t.Fatalf("unexpected snapshot: %v", snap)
	}
	if fields["record"].GetStructValue().GetFields()["checkOut"].GetStringValue() != "" {
		t.Fatalf("expected empty check out")
	}
}

func TestAttendanceGrpcHandler_Toggle_ErrorMapping(t *testing.T) {
	t.Parallel()

	handler := NewAttendanceGrpcHandler(&stubAttendanceUseCase{toggleErr: attendance.ErrInvalidEmployeeID}, discardLogger())
	if _, err := handler.Toggle(context.Background(), mustStruct(t, map[string]any{})); status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected invalid argument, got %v", err)
	}

	handler = NewAttendanceGrpcHandler(&stubAttendanceUseCase{toggleErr: errors.New("store unavailable")}, discardLogger())
	if _, err := handler.Toggle(context.Background(), mustStruct(t, map[string]any{"employeeId": "emp-1"})); status.Code(err) != codes.Internal {
		t.Fatalf("expected internal, got %v", err)
	}
}

func TestAttendanceGrpcHandler_Toggle_RefetchFailureKeepsResult(t *testing.T) {
	t.Parallel()

	stub := &stubAttendanceUseCase{
		toggleOut: &attendance.ToggleResult{
			Action: attendance.ActionSignedOut,
			Record: &attendance.Record{ID: "att-1", EmployeeID: "emp-1", Status: attendance.StatusPresent, CheckIn: "09:00", CheckOut: "18:00"},
		},
		toggleErr: errors.New("attendance: refetch after toggle: timeout"),
	}
	handler := NewAttendanceGrpcHandler(stub, discardLogger())

	resp, err := handler.Toggle(context.Background(), mustStruct(t, map[string]any{"employeeId": "emp-1"}))
	if err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}
	fields := resp.GetFields()
	if fields["action"].GetStringValue() != "signed_out" || fields["refetchError"].GetStringValue() == "" {
		t.Fatalf("expected action with refetch error, got %v", fields)
	}
	if _, ok := fields["snapshot"]; ok {
		t.Fatalf("did not expect snapshot")
	}
}

func TestAttendanceGrpcHandler_MarkStatus_PartialFailure(t *testing.T) {
	t.Parallel()

	stub := &stubAttendanceUseCase{markOut: &attendance.BulkResult{
		Date:      "2024-05-10",
		Status:    attendance.StatusAbsent,
		Requested: 3,
		Succeeded: 2,
		Failures:  []attendance.Failure{{EmployeeID: "emp-2", Err: errors.New("quota exceeded")}},
		Snapshots: []attendance.Snapshot{
			{EmployeeID: "emp-1", TodayStatus: attendance.StatusAbsent},
			{EmployeeID: "emp-2", TodayStatus: attendance.StatusNotMarked},
			{EmployeeID: "emp-3", TodayStatus: attendance.StatusAbsent},
		},
	}}
	handler := NewAttendanceGrpcHandler(stub, discardLogger())

	resp, err := handler.MarkStatus(context.Background(), mustStruct(t, map[string]any{
		"employeeIds": []any{"emp-1", "emp-2", "emp-3"},
		"status":      "Absent",
	}))
	if err != nil {
		t.Fatalf("MarkStatus returned error: %v", err)
	}
	if len(stub.markInput.EmployeeIDs) != 3 || stub.markInput.Status != attendance.StatusAbsent {
		t.Fatalf("unexpected input: %+v", stub.markInput)
	}

	fields := resp.GetFields()
	if fields["succeeded"].GetNumberValue() != 2 || fields["failed"].GetNumberValue() != 1 {
		t.Fatalf("unexpected counts: %v", fields)
	}
	failure := fields["failures"].GetListValue().GetValues()[0].GetStructValue().GetFields()
	if failure["employeeId"].GetStringValue() != "emp-2" || failure["error"].GetStringValue() != "quota exceeded" {
		t.Fatalf("unexpected failure: %v", failure)
	}
	if _, ok := fields["refetchError"]; ok {
		t.Fatalf("did not expect refetch error")
	}
}

func TestAttendanceGrpcHandler_MarkStatus_RefetchFailureKeepsResult(t *testing.T) {
	t.Parallel()

	stub := &stubAttendanceUseCase{
		markOut: &attendance.BulkResult{Date: "2024-05-10", Status: attendance.StatusLate, Requested: 1, Succeeded: 1},
		markErr: errors.New("attendance: refetch after mark: timeout"),
	}
	handler := NewAttendanceGrpcHandler(stub, discardLogger())

	resp, err := handler.MarkStatus(context.Background(), mustStruct(t, map[string]any{
		"employeeIds": []any{"emp-1"},
		"status":      "Late",
	}))
	if err != nil {
		t.Fatalf("MarkStatus returned error: %v", err)
	}
	if resp.GetFields()["refetchError"].GetStringValue() == "" {
		t.Fatalf("expected refetch error to be reported")
	}
}

func TestAttendanceGrpcHandler_MarkStatus_Invalid(t *testing.T) {
	t.Parallel()

	handler := NewAttendanceGrpcHandler(&stubAttendanceUseCase{markErr: attendance.ErrNoEmployeesSelected}, discardLogger())
	if _, err := handler.MarkStatus(context.Background(), mustStruct(t, map[string]any{"status": "Present"})); status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	if _, err := handler.MarkStatus(context.Background(), mustStruct(t, map[string]any{"employeeIds": "emp-1"})); status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected invalid argument for non-list ids, got %v", err)
	}
}

func TestAttendanceGrpcHandler_ListAndDelete(t *testing.T) {
	t.Parallel()

	stub := &stubAttendanceUseCase{
		listOut:   []*attendance.Record{{ID: "att-1"}, {ID: "att-2"}},
		deleteErr: attendance.ErrRecordNotFound,
	}
	handler := NewAttendanceGrpcHandler(stub, discardLogger())

	resp, err := handler.ListRecords(context.Background(), mustStruct(t, map[string]any{"employeeId": "emp-1", "from": "2024-05-01", "to": "2024-05-31"}))
	if err != nil {
		t.Fatalf("ListRecords returned error: %v", err)
	}
	if stub.listInput.From != "2024-05-01" || stub.listInput.To != "2024-05-31" {
		t.Fatalf("unexpected list input: %+v", stub.listInput)
	}
	if got := len(resp.GetFields()["records"].GetListValue().GetValues()); got != 2 {
		t.Fatalf("expected 2 records, got %d", got)
	}

	if _, err := handler.DeleteRecord(context.Background(), mustStruct(t, map[string]any{"id": "att-9"})); status.Code(err) != codes.NotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
