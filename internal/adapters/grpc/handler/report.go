package handler

import (
	"context"

	"github.com/ogurasousui/codex-hr-attendance/internal/core/report"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ReportService のサービス名です。
const ReportService = "ReportService"

// ReportGrpcHandler は ReportService の gRPC 実装です。配信設定の保存のみを扱います。
type ReportGrpcHandler struct {
	svc report.UseCase
}

// NewReportGrpcHandler は ReportGrpcHandler を生成します。
func NewReportGrpcHandler(svc report.UseCase) *ReportGrpcHandler {
	return &ReportGrpcHandler{svc: svc}
}

// Register は ReportService をサーバーへ登録します。
func (h *ReportGrpcHandler) Register(s grpc.ServiceRegistrar) {
	s.RegisterService(serviceDesc(ReportService,
		method{"CreateSchedule", h.CreateSchedule},
		method{"GetSchedule", h.GetSchedule},
		method{"ListSchedules", h.ListSchedules},
		method{"UpdateSchedule", h.UpdateSchedule},
		method{"DeleteSchedule", h.DeleteSchedule},
	), h)
}

func (h *ReportGrpcHandler) CreateSchedule(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	f := fieldsOf(req)

	var in report.CreateScheduleInput
	var err error
	if in.Name, err = f.str("name"); err != nil {
		return nil, err
	}
	frequency, err := f.str("frequency")
	if err != nil {
		return nil, err
	}
	in.Frequency = report.Frequency(frequency)
	if in.Email, err = f.str("email"); err != nil {
		return nil, err
	}
	enabled, err := f.optBool("enabled")
	if err != nil {
		return nil, err
	}
	in.Enabled = enabled != nil && *enabled

	created, err := h.svc.CreateSchedule(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(map[string]any{"schedule": scheduleMap(created)})
}

func (h *ReportGrpcHandler) GetSchedule(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	id, err := fieldsOf(req).str("id")
	if err != nil {
		return nil, err
	}

	found, err := h.svc.GetSchedule(ctx, report.GetScheduleInput{ID: id})
	if err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(map[string]any{"schedule": scheduleMap(found)})
}

func (h *ReportGrpcHandler) ListSchedules(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	schedules, err := h.svc.ListSchedules(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}

	list := make([]any, 0, len(schedules))
	for _, s := range schedules {
		list = append(list, scheduleMap(s))
	}
	return toStruct(map[string]any{"schedules": list})
}

func (h *ReportGrpcHandler) UpdateSchedule(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	f := fieldsOf(req)

	var in report.UpdateScheduleInput
	var err error
	if in.ID, err = f.str("id"); err != nil {
		return nil, err
	}
	if in.Name, err = f.optStr("name"); err != nil {
		return nil, err
	}
	frequency, err := f.optStr("frequency")
	if err != nil {
		return nil, err
	}
	if frequency != nil {
		value := report.Frequency(*frequency)
		in.Frequency = &value
	}
	if in.Email, err = f.optStr("email"); err != nil {
		return nil, err
	}
	if in.Enabled, err = f.optBool("enabled"); err != nil {
		return nil, err
	}

	updated, err := h.svc.UpdateSchedule(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(map[string]any{"schedule": scheduleMap(updated)})
}

func (h *ReportGrpcHandler) DeleteSchedule(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	id, err := fieldsOf(req).str("id")
	if err != nil {
		return nil, err
	}
	if err := h.svc.DeleteSchedule(ctx, report.DeleteScheduleInput{ID: id}); err != nil {
		return nil, toStatusError(err)
	}
	return &structpb.Struct{}, nil
}

func scheduleMap(s *report.Schedule) any {
	if s == nil {
		return nil
	}
	return map[string]any{
		"id":        s.ID,
		"name":      s.Name,
		"frequency": string(s.Frequency),
		"email":     s.Email,
		"enabled":   s.Enabled,
	}
}
