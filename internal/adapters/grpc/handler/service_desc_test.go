package handler

import (
	"context"
	"net"
	"testing"

	"github.com/ogurasousui/codex-hr-attendance/internal/core/attendance"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/report"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func startBufServer(t *testing.T, opts []grpc.ServerOption, registrars ...Registrar) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(opts...)
	for _, r := range registrars {
		r.Register(srv)
	}
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("failed to dial bufconn: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestServiceDesc_RoundTrip(t *testing.T) {
	t.Parallel()

	stub := &stubAttendanceUseCase{
		toggleOut: &attendance.ToggleResult{
			Action:   attendance.ActionSignedOut,
			Record:   &attendance.Record{ID: "att-1", EmployeeID: "emp-1", CheckIn: "09:00", CheckOut: "18:00"},
			Snapshot: attendance.Snapshot{EmployeeID: "emp-1", State: attendance.StateSignedOut, TodayStatus: attendance.StatusPresent},
		},
		deleteErr: attendance.ErrRecordNotFound,
	}

	var intercepted []string
	interceptor := func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		intercepted = append(intercepted, info.FullMethod)
		return next(ctx, req)
	}

	conn := startBufServer(t,
		[]grpc.ServerOption{grpc.UnaryInterceptor(interceptor)},
		NewAttendanceGrpcHandler(stub, discardLogger()),
		NewReportGrpcHandler(&stubReportUseCase{}),
	)

	req := mustStruct(t, map[string]any{"employeeId": "emp-1"})
	resp := new(structpb.Struct)
	if err := conn.Invoke(context.Background(), FullMethod(AttendanceService, "Toggle"), req, resp); err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}
	if resp.GetFields()["action"].GetStringValue() != "signed_out" {
		t.Fatalf("unexpected response: %v", resp)
	}
	if stub.toggleInput.EmployeeID != "emp-1" {
		t.Fatalf("expected request to reach the use case, got %+v", stub.toggleInput)
	}

	err := conn.Invoke(context.Background(), FullMethod(AttendanceService, "DeleteRecord"), mustStruct(t, map[string]any{"id": "x"}), new(structpb.Struct))
	if status.Code(err) != codes.NotFound {
		t.Fatalf("expected not found over the wire, got %v", err)
	}

	err = conn.Invoke(context.Background(), FullMethod(AttendanceService, "Unknown"), req, new(structpb.Struct))
	if status.Code(err) != codes.Unimplemented {
		t.Fatalf("expected unimplemented for unknown method, got %v", err)
	}

	if len(intercepted) != 2 || intercepted[0] != "/hr.v1.AttendanceService/Toggle" {
		t.Fatalf("expected interceptor to see both calls, got %v", intercepted)
	}
}

func TestFullMethod(t *testing.T) {
	t.Parallel()

	if got := FullMethod(ProjectService, "ReplaceAssignments"); got != "/hr.v1.ProjectService/ReplaceAssignments" {
		t.Fatalf("unexpected full method: %s", got)
	}
}

type stubReportUseCase struct {
	createInput report.CreateScheduleInput
	updateInput report.UpdateScheduleInput
	err         error
}

func (s *stubReportUseCase) CreateSchedule(ctx context.Context, in report.CreateScheduleInput) (*report.Schedule, error) {
	s.createInput = in
	if s.err != nil {
		return nil, s.err
	}
	return &report.Schedule{ID: "rs-1", Name: in.Name, Frequency: in.Frequency, Email: in.Email, Enabled: in.Enabled}, nil
}

func (s *stubReportUseCase) GetSchedule(ctx context.Context, in report.GetScheduleInput) (*report.Schedule, error) {
	return nil, report.ErrScheduleNotFound
}

func (s *stubReportUseCase) ListSchedules(ctx context.Context) ([]*report.Schedule, error) {
	return []*report.Schedule{{ID: "rs-1", Frequency: report.FrequencyWeekly}}, nil
}

func (s *stubReportUseCase) UpdateSchedule(ctx context.Context, in report.UpdateScheduleInput) (*report.Schedule, error) {
	s.updateInput = in
	if s.err != nil {
		return nil, s.err
	}
	return &report.Schedule{ID: in.ID}, nil
}

func (s *stubReportUseCase) DeleteSchedule(ctx context.Context, in report.DeleteScheduleInput) error {
	return s.err
}
