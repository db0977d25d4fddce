package handler

import (
	"context"

	"github.com/ogurasousui/codex-hr-attendance/internal/core/performance"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// PerformanceService のサービス名です。
const PerformanceService = "PerformanceService"

// PerformanceGrpcHandler は PerformanceService の gRPC 実装です。
type PerformanceGrpcHandler struct {
	svc performance.UseCase
}

// NewPerformanceGrpcHandler は PerformanceGrpcHandler を生成します。
func NewPerformanceGrpcHandler(svc performance.UseCase) *PerformanceGrpcHandler {
	return &PerformanceGrpcHandler{svc: svc}
}

// Register は PerformanceService をサーバーへ登録します。
func (h *PerformanceGrpcHandler) Register(s grpc.ServiceRegistrar) {
	s.RegisterService(serviceDesc(PerformanceService,
		method{"CreateReview", h.CreateReview},
		method{"GetReview", h.GetReview},
		method{"ListReviews", h.ListReviews},
		method{"UpdateReview", h.UpdateReview},
		method{"DeleteReview", h.DeleteReview},
	), h)
}

func (h *PerformanceGrpcHandler) CreateReview(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	f := fieldsOf(req)

	var in performance.CreateReviewInput
	var err error
	if in.EmployeeID, err = f.str("employeeId"); err != nil {
		return nil, err
	}
	if in.Quarter, err = f.str("quarter"); err != nil {
		return nil, err
	}
	if in.Score, err = f.num("score"); err != nil {
		return nil, err
	}
	if in.ReviewDate, err = f.str("reviewDate"); err != nil {
		return nil, err
	}
	if in.Goals, err = f.str("goals"); err != nil {
		return nil, err
	}

	created, err := h.svc.CreateReview(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(map[string]any{"review": reviewMap(created)})
}

func (h *PerformanceGrpcHandler) GetReview(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	id, err := fieldsOf(req).str("id")
	if err != nil {
		return nil, err
	}

	found, err := h.svc.GetReview(ctx, performance.GetReviewInput{ID: id})
	if err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(map[string]any{"review": reviewMap(found)})
}

func (h *PerformanceGrpcHandler) ListReviews(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	employeeID, err := fieldsOf(req).str("employeeId")
	if err != nil {
		return nil, err
	}

	reviews, err := h.svc.ListReviews(ctx, performance.ListReviewsInput{EmployeeID: employeeID})
	if err != nil {
		return nil, toStatusError(err)
	}

	list := make([]any, 0, len(reviews))
	for _, r := range reviews {
		list = append(list, reviewMap(r))
	}
	return toStruct(map[string]any{"reviews": list})
}

func (h *PerformanceGrpcHandler) UpdateReview(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	f := fieldsOf(req)

	var in performance.UpdateReviewInput
	var err error
	if in.ID, err = f.str("id"); err != nil {
		return nil, err
	}
	if in.Quarter, err = f.optStr("quarter"); err != nil {
		return nil, err
	}
	if in.Score, err = f.optNum("score"); err != nil {
		return nil, err
	}
	if in.ReviewDate, err = f.optStr("reviewDate"); err != nil {
		return nil, err
	}
	if in.Goals, err = f.optStr("goals"); err != nil {
		return nil, err
	}

	updated, err := h.svc.UpdateReview(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(map[string]any{"review": reviewMap(updated)})
}

func (h *PerformanceGrpcHandler) DeleteReview(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	id, err := fieldsOf(req).str("id")
	if err != nil {
		return nil, err
	}
	if err := h.svc.DeleteReview(ctx, performance.DeleteReviewInput{ID: id}); err != nil {
		return nil, toStatusError(err)
	}
	return &structpb.Struct{}, nil
}

func reviewMap(r *performance.Review) any {
	if r == nil {
		return nil
	}
	return map[string]any{
		"id":         r.ID,
		"employeeId": r.EmployeeID,
		"quarter":    r.Quarter,
		"score":      r.Score,
		"reviewDate": r.ReviewDate,
		"goals":      r.Goals,
	}
}
