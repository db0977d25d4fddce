package server

import (
	"bytes"
	"context"
	"log"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ogurasousui/codex-hr-attendance/internal/adapters/grpc/handler"
	"github.com/ogurasousui/codex-hr-attendance/internal/core/report"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type memoryScheduleRepo struct {
	mu        sync.Mutex
	schedules []*report.Schedule
}

func (r *memoryScheduleRepo) Create(_ context.Context, s *report.Schedule) (*report.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *s
	clone.ID = "rs-1"
	r.schedules = append(r.schedules, &clone)
	out := clone
	return &out, nil
}

func (r *memoryScheduleRepo) Update(_ context.Context, s *report.Schedule) (*report.Schedule, error) {
	return nil, report.ErrScheduleNotFound
}

func (r *memoryScheduleRepo) Delete(_ context.Context, _ string) error {
	return report.ErrScheduleNotFound
}

func (r *memoryScheduleRepo) FindByID(_ context.Context, _ string) (*report.Schedule, error) {
	return nil, report.ErrScheduleNotFound
}

func (r *memoryScheduleRepo) List(_ context.Context) ([]*report.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*report.Schedule, 0, len(r.schedules))
	for _, s := range r.schedules {
		clone := *s
		out = append(out, &clone)
	}
	return out, nil
}

func TestServer_ServeAndGracefulStop(t *testing.T) {
	t.Parallel()

	logs := &syncBuffer{}
	logger := log.New(logs, "", 0)
	reportHandler := handler.NewReportGrpcHandler(report.NewService(&memoryScheduleRepo{}))
	srv := New("", logger, []handler.Registrar{reportHandler})

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx, lis)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	defer conn.Close()

	req, _ := structpb.NewStruct(map[string]any{"frequency": "weekly", "email": "HR@example.com"})
	resp := new(structpb.Struct)
	if err := conn.Invoke(context.Background(), handler.FullMethod(handler.ReportService, "CreateSchedule"), req, resp); err != nil {
		t.Fatalf("CreateSchedule returned error: %v", err)
	}
	if got := resp.GetFields()["schedule"].GetStructValue().GetFields()["email"].GetStringValue(); got != "hr@example.com" {
		t.Fatalf("expected normalized email, got %q", got)
	}

	getReq, _ := structpb.NewStruct(map[string]any{"id": "missing"})
	if err := conn.Invoke(context.Background(), handler.FullMethod(handler.ReportService, "GetSchedule"), getReq, new(structpb.Struct)); status.Code(err) != codes.NotFound {
		t.Fatalf("expected not found, got %v", err)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not stop after cancellation")
	}

	out := logs.String()
	if !strings.Contains(out, "method=/hr.v1.ReportService/CreateSchedule code=OK") {
		t.Fatalf("expected success log line, got %q", out)
	}
	if !strings.Contains(out, "method=/hr.v1.ReportService/GetSchedule code=NotFound") {
		t.Fatalf("expected error log line, got %q", out)
	}
}

func TestServer_RunInvalidAddress(t *testing.T) {
	t.Parallel()

	srv := New("invalid-address", log.New(&syncBuffer{}, "", 0), nil)
	if err := srv.Run(context.Background()); err == nil {
		t.Fatalf("expected listen error")
	}
}
