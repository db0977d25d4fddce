package handler

import (
	"context"

	"github.com/ogurasousui/codex-hr-attendance/internal/core/project"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ProjectService のサービス名です。
const ProjectService = "ProjectService"

// ProjectGrpcHandler は ProjectService の gRPC 実装です。
type ProjectGrpcHandler struct {
	svc project.UseCase
}

// NewProjectGrpcHandler は ProjectGrpcHandler を生成します。
func NewProjectGrpcHandler(svc project.UseCase) *ProjectGrpcHandler {
	return &ProjectGrpcHandler{svc: svc}
}

// Register は ProjectService をサーバーへ登録します。
func (h *ProjectGrpcHandler) Register(s grpc.ServiceRegistrar) {
	s.RegisterService(serviceDesc(ProjectService,
		method{"CreateProject", h.CreateProject},
		method{"GetProject", h.GetProject},
		method{"ListProjects", h.ListProjects},
		method{"UpdateProject", h.UpdateProject},
		method{"DeleteProject", h.DeleteProject},
		method{"ReplaceAssignments", h.ReplaceAssignments},
		method{"ListAssignments", h.ListAssignments},
	), h)
}

// CreateProject はプロジェクトを作成し、employeeIds をアサインします。
func (h *ProjectGrpcHandler) CreateProject(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	f := fieldsOf(req)

	var in project.CreateProjectInput
	var err error
	if in.Name, err = f.str("name"); err != nil {
		return nil, err
	}
	if in.Status, err = projectStatusField(f); err != nil {
		return nil, err
	}
	if in.Progress, err = f.integer("progress"); err != nil {
		return nil, err
	}
	if in.EndDate, err = f.str("endDate"); err != nil {
		return nil, err
	}
	if in.Description, err = f.str("description"); err != nil {
		return nil, err
	}
	if in.EmployeeIDs, err = f.strList("employeeIds"); err != nil {
		return nil, err
	}

	created, err := h.svc.CreateProject(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(map[string]any{"project": projectMap(created)})
}

// GetProject はアサイン済み社員を含めてプロジェクトを取得します。
func (h *ProjectGrpcHandler) GetProject(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	id, err := fieldsOf(req).str("id")
	if err != nil {
		return nil, err
	}

	found, err := h.svc.GetProject(ctx, project.GetProjectInput{ID: id})
	if err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(map[string]any{"project": projectMap(found)})
}

// ListProjects はプロジェクトを一覧します。
func (h *ProjectGrpcHandler) ListProjects(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := fieldsOf(req)

	var in project.ListProjectsInput
	var err error
	if in.Search, err = f.str("search"); err != nil {
		return nil, err
	}
	if in.Status, err = projectStatusField(f); err != nil {
		return nil, err
	}

	projects, err := h.svc.ListProjects(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	list := make([]any, 0, len(projects))
	for _, p := range projects {
		list = append(list, projectMap(p))
	}
	return toStruct(map[string]any{"projects": list})
}

// UpdateProject はプロジェクトを更新します。employeeIds が指定された場合はアサインを置き換えます。
func (h *ProjectGrpcHandler) UpdateProject(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	f := fieldsOf(req)

	var in project.UpdateProjectInput
	var err error
	if in.ID, err = f.str("id"); err != nil {
		return nil, err
	}
	if in.Name, err = f.optStr("name"); err != nil {
		return nil, err
	}
	if in.Status, err = projectStatusField(f); err != nil {
		return nil, err
	}
	if in.Progress, err = f.optInt("progress"); err != nil {
		return nil, err
	}
	if in.EndDate, err = f.optStr("endDate"); err != nil {
		return nil, err
	}
	if in.Description, err = f.optStr("description"); err != nil {
		return nil, err
	}
	if in.EmployeeIDs, err = f.strList("employeeIds"); err != nil {
		return nil, err
	}

	updated, err := h.svc.UpdateProject(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(map[string]any{"project": projectMap(updated)})
}

// DeleteProject はプロジェクトとそのアサインを削除します。
func (h *ProjectGrpcHandler) DeleteProject(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	id, err := fieldsOf(req).str("id")
	if err != nil {
		return nil, err
	}
	if err := h.svc.DeleteProject(ctx, project.DeleteProjectInput{ID: id}); err != nil {
		return nil, toStatusError(err)
	}
	return &structpb.Struct{}, nil
}

// ReplaceAssignments はプロジェクトのアサインを指定の社員集合で置き換えます。
func (h *ProjectGrpcHandler) ReplaceAssignments(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	f := fieldsOf(req)

	var in project.ReplaceAssignmentsInput
	var err error
	if in.ProjectID, err = f.str("projectId"); err != nil {
		return nil, err
	}
	if in.EmployeeIDs, err = f.strList("employeeIds"); err != nil {
		return nil, err
	}

	updated, err := h.svc.ReplaceAssignments(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return toStruct(map[string]any{"project": projectMap(updated)})
}

// ListAssignments はアサインを一覧します。
func (h *ProjectGrpcHandler) ListAssignments(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := fieldsOf(req)

	var in project.ListAssignmentsInput
	var err error
	if in.ProjectID, err = f.str("projectId"); err != nil {
		return nil, err
	}
	if in.EmployeeID, err = f.str("employeeId"); err != nil {
		return nil, err
	}

	assignments, err := h.svc.ListAssignments(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	list := make([]any, 0, len(assignments))
	for _, a := range assignments {
		list = append(list, map[string]any{
			"id":         a.ID,
			"employeeId": a.EmployeeID,
			"projectId":  a.ProjectID,
		})
	}
	return toStruct(map[string]any{"assignments": list})
}

func projectStatusField(f fields) (*project.Status, error) {
	raw, err := f.str("status")
	if err != nil || raw == "" {
		return nil, err
	}
	s := project.Status(raw)
	if !project.IsValidStatus(s) {
		return nil, toStatusError(project.ErrInvalidStatus)
	}
	return &s, nil
}

func projectMap(p *project.Project) any {
	if p == nil {
		return nil
	}
	return map[string]any{
		"id":                  p.ID,
		"name":                p.Name,
		"status":              string(p.Status),
		"progress":            p.Progress,
		"endDate":             p.EndDate,
		"description":         p.Description,
		"assignedEmployeeIds": stringsToList(p.AssignedEmployeeIDs),
	}
}
