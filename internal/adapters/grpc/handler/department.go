package handler

import (
	"context"

	"github.com/ogurasousui/codex-hr-attendance/internal/core/department"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// DepartmentService のサービス名です。
const DepartmentService = "DepartmentService"

// DepartmentGrpcHandler は DepartmentService の gRPC 実装です。
type DepartmentGrpcHandler struct {
	svc department.UseCase
}

// NewDepartmentGrpcHandler は DepartmentGrpcHandler を生成します。
func NewDepartmentGrpcHandler(svc department.UseCase) *DepartmentGrpcHandler {
	return &DepartmentGrpcHandler{svc: svc}
}

// Register は DepartmentService をサーバーへ登録します。
func (h *DepartmentGrpcHandler) Register(s grpc.ServiceRegistrar) {
	s.RegisterService(serviceDesc(DepartmentService,
		method{"CreateDepartment", h.CreateDepartment},
		method{"GetDepartment", h.GetDepartment},
		method{"ListDepartments", h.ListDepartments},
		method{"UpdateDepartment", h.UpdateDepartment},
		method{"DeleteDepartment", h.DeleteDepartment},
	), h)
}

// CreateDepartment は部署を作成します。
func (h *DepartmentGrpcHandler) CreateDepartment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	name, err := fieldsOf(req).str("name")
	if err != nil {
		return nil, err
	}

	created, err := h.svc.CreateDepartment(ctx, department.CreateDepartmentInput{Name: name})
	if err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(map[string]any{"department": departmentMap(created)})
}

// GetDepartment は部署を取得します。
func (h *DepartmentGrpcHandler) GetDepartment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	id, err := fieldsOf(req).str("id")
	if err != nil {
		return nil, err
	}

	found, err := h.svc.GetDepartment(ctx, department.GetDepartmentInput{ID: id})
	if err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(map[string]any{"department": departmentMap(found)})
}

// ListDepartments は部署の一覧を取得します。
func (h *DepartmentGrpcHandler) ListDepartments(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := fieldsOf(req)

	var in department.ListDepartmentsInput
	var err error
	if in.PageSize, err = f.integer("pageSize"); err != nil {
		return nil, err
	}
	if in.PageToken, err = f.str("pageToken"); err != nil {
		return nil, err
	}
	if in.Search, err = f.str("search"); err != nil {
		return nil, err
	}

	result, err := h.svc.ListDepartments(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	list := make([]any, 0, len(result.Departments))
	for _, d := range result.Departments {
		list = append(list, departmentMap(d))
	}
	return toStruct(map[string]any{
		"departments":   list,
		"nextPageToken": result.NextPageToken,
	})
}

// UpdateDepartment は部署名を更新します。
func (h *DepartmentGrpcHandler) UpdateDepartment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	f := fieldsOf(req)

	var in department.UpdateDepartmentInput
	var err error
	if in.ID, err = f.str("id"); err != nil {
		return nil, err
	}
	if in.Name, err = f.optStr("name"); err != nil {
		return nil, err
	}

	updated, err := h.svc.UpdateDepartment(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(map[string]any{"department": departmentMap(updated)})
}

// DeleteDepartment は部署を削除します。
func (h *DepartmentGrpcHandler) DeleteDepartment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	id, err := fieldsOf(req).str("id")
	if err != nil {
		return nil, err
	}
	if err := h.svc.DeleteDepartment(ctx, department.DeleteDepartmentInput{ID: id}); err != nil {
		return nil, toStatusError(err)
	}
	return &structpb.Struct{}, nil
}

func departmentMap(d *department.Department) any {
	if d == nil {
		return nil
	}
	return map[string]any{"id": d.ID, "name": d.Name}
}
