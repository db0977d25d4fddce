package handler

import (
	"context"

	"github.com/ogurasousui/codex-hr-attendance/internal/core/employee"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// EmployeeService のサービス名です。
const EmployeeService = "EmployeeService"

// EmployeeGrpcHandler は EmployeeService の gRPC 実装です。
type EmployeeGrpcHandler struct {
	svc employee.UseCase
}

// NewEmployeeGrpcHandler は EmployeeGrpcHandler を生成します。
func NewEmployeeGrpcHandler(svc employee.UseCase) *EmployeeGrpcHandler {
	return &EmployeeGrpcHandler{svc: svc}
}

// Register は EmployeeService をサーバーへ登録します。
func (h *EmployeeGrpcHandler) Register(s grpc.ServiceRegistrar) {
	s.RegisterService(serviceDesc(EmployeeService,
		method{"CreateEmployee", h.CreateEmployee},
		method{"GetEmployee", h.GetEmployee},
		method{"ListEmployees", h.ListEmployees},
		method{"UpdateEmployee", h.UpdateEmployee},
		method{"DeleteEmployee", h.DeleteEmployee},
	), h)
}

// CreateEmployee は社員を作成します。
func (h *EmployeeGrpcHandler) CreateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	f := fieldsOf(req)

	var in employee.CreateEmployeeInput
	var err error
	if in.FirstName, err = f.str("firstName"); err != nil {
		return nil, err
	}
	if in.LastName, err = f.str("lastName"); err != nil {
		return nil, err
	}
	if in.Email, err = f.str("email"); err != nil {
		return nil, err
	}
	if in.Department, err = f.str("department"); err != nil {
		return nil, err
	}
	if in.Position, err = f.str("position"); err != nil {
		return nil, err
	}
	if in.Status, err = employeeStatusField(f); err != nil {
		return nil, err
	}
	if in.HireDate, err = f.optDate("hireDate"); err != nil {
		return nil, err
	}

	created, err := h.svc.CreateEmployee(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(map[string]any{"employee": employeeMap(created)})
}

// UpdateEmployee は社員情報を更新します。指定されたフィールドのみを変更します。
func (h *EmployeeGrpcHandler) UpdateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	f := fieldsOf(req)

	var in employee.UpdateEmployeeInput
	var err error
	if in.ID, err = f.str("id"); err != nil {
		return nil, err
	}
	if in.FirstName, err = f.optStr("firstName"); err != nil {
		return nil, err
	}
	if in.LastName, err = f.optStr("lastName"); err != nil {
		return nil, err
	}
	if in.Email, err = f.optStr("email"); err != nil {
		return nil, err
	}
	if in.Department, err = f.optStr("department"); err != nil {
		return nil, err
	}
	if in.Position, err = f.optStr("position"); err != nil {
		return nil, err
	}
	if in.Status, err = employeeStatusField(f); err != nil {
		return nil, err
	}
	if in.HireDate, err = f.optDate("hireDate"); err != nil {
		return nil, err
	}

	updated, err := h.svc.UpdateEmployee(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(map[string]any{"employee": employeeMap(updated)})
}

// DeleteEmployee は社員を削除します。勤怠レコードは削除されません。
func (h *EmployeeGrpcHandler) DeleteEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	id, err := fieldsOf(req).str("id")
	if err != nil {
		return nil, err
	}
	if err := h.svc.DeleteEmployee(ctx, employee.DeleteEmployeeInput{ID: id}); err != nil {
		return nil, toStatusError(err)
	}
	return &structpb.Struct{}, nil
}

// GetEmployee は社員を取得します。
func (h *EmployeeGrpcHandler) GetEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	id, err := fieldsOf(req).str("id")
	if err != nil {
		return nil, err
	}
	found, err := h.svc.GetEmployee(ctx, employee.GetEmployeeInput{ID: id})
	if err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(map[string]any{"employee": employeeMap(found)})
}

// ListEmployees は社員の一覧を取得します。
func (h *EmployeeGrpcHandler) ListEmployees(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := fieldsOf(req)

	var in employee.ListEmployeesInput
	var err error
	if in.Department, err = f.str("department"); err != nil {
		return nil, err
	}
	if in.Search, err = f.str("search"); err != nil {
		return nil, err
	}
	if in.PageSize, err = f.integer("pageSize"); err != nil {
		return nil, err
	}
	if in.PageToken, err = f.str("pageToken"); err != nil {
		return nil, err
	}
	if in.Status, err = employeeStatusField(f); err != nil {
		return nil, err
	}

	result, err := h.svc.ListEmployees(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	list := make([]any, 0, len(result.Employees))
	for _, e := range result.Employees {
		list = append(list, employeeMap(e))
	}
	return toStruct(map[string]any{
		"employees":     list,
		"nextPageToken": result.NextPageToken,
	})
}

func employeeStatusField(f fields) (*employee.Status, error) {
	raw, err := f.str("status")
	if err != nil || raw == "" {
		return nil, err
	}
	s := employee.Status(raw)
	if !employee.IsValidStatus(s) {
		return nil, toStatusError(employee.ErrInvalidStatus)
	}
	return &s, nil
}
