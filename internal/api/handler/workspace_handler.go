package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"iesa-portal/backend/internal/dto"
	"iesa-portal/backend/internal/service"
	pkgerrors "iesa-portal/backend/pkg/errors"
	"iesa-portal/backend/pkg/response"
)

// WorkspaceHandler 成绩工作区 HTTP 处理器
type WorkspaceHandler struct {
	workspaceSvc service.WorkspaceService
}

// NewWorkspaceHandler 创建 WorkspaceHandler
func NewWorkspaceHandler(workspaceSvc service.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaceSvc: workspaceSvc}
}

// GetWorkspace 获取工作区（含各学期 GPA 与累计 CGPA）
// GET /api/v1/grades/workspace
func (h *WorkspaceHandler) GetWorkspace(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	ws, err := h.workspaceSvc.Get(c.Request.Context(), userID)
	if err != nil {
		h.handleWorkspaceError(c, err)
		return
	}

	response.OK(c, ws)
}

// AddSemester 新增学期
// POST /api/v1/grades/workspace/semesters
func (h *WorkspaceHandler) AddSemester(c *gin.Context) {
	// 请求体可省略（名称缺省时服务端生成）
	var req dto.CreateSemesterRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	ws, err := h.workspaceSvc.AddSemester(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleWorkspaceError(c, err)
		return
	}

	response.Created(c, ws)
}

// RenameSemester 重命名学期
// PUT /api/v1/grades/workspace/semesters/:id
func (h *WorkspaceHandler) RenameSemester(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "学期ID不能为空")
		return
	}

	var req dto.RenameSemesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	ws, err := h.workspaceSvc.RenameSemester(c.Request.Context(), userID, id, &req)
	if err != nil {
		h.handleWorkspaceError(c, err)
		return
	}

	response.OK(c, ws)
}

// DuplicateSemester 复制学期（课程深拷贝，分配全新 ID）
// POST /api/v1/grades/workspace/semesters/:id/duplicate
func (h *WorkspaceHandler) DuplicateSemester(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "学期ID不能为空")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	ws, err := h.workspaceSvc.DuplicateSemester(c.Request.Context(), userID, id)
	if err != nil {
		h.handleWorkspaceError(c, err)
		return
	}

	response.Created(c, ws)
}

// DeleteSemester 删除学期（连带清理其课程的模拟覆盖）
// DELETE /api/v1/grades/workspace/semesters/:id
func (h *WorkspaceHandler) DeleteSemester(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "学期ID不能为空")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	ws, err := h.workspaceSvc.DeleteSemester(c.Request.Context(), userID, id)
	if err != nil {
		h.handleWorkspaceError(c, err)
		return
	}

	response.OK(c, ws)
}

// AddCourse 向学期新增课程
// POST /api/v1/grades/workspace/semesters/:id/courses
func (h *WorkspaceHandler) AddCourse(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "学期ID不能为空")
		return
	}

	var req dto.AddCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	ws, err := h.workspaceSvc.AddCourse(c.Request.Context(), userID, id, &req)
	if err != nil {
		h.handleWorkspaceError(c, err)
		return
	}

	response.Created(c, ws)
}

// UpdateCourse 更新课程字段（编辑即保存，字段全部可选）
// PUT /api/v1/grades/workspace/courses/:id
func (h *WorkspaceHandler) UpdateCourse(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课程ID不能为空")
		return
	}

	var req dto.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	ws, err := h.workspaceSvc.UpdateCourse(c.Request.Context(), userID, id, &req)
	if err != nil {
		h.handleWorkspaceError(c, err)
		return
	}

	response.OK(c, ws)
}

// DeleteCourse 删除课程（连带清理其模拟覆盖）
// DELETE /api/v1/grades/workspace/courses/:id
func (h *WorkspaceHandler) DeleteCourse(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课程ID不能为空")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	ws, err := h.workspaceSvc.DeleteCourse(c.Request.Context(), userID, id)
	if err != nil {
		h.handleWorkspaceError(c, err)
		return
	}

	response.OK(c, ws)
}

// SetCarryForward 设置/清除结转记录（整体覆盖，传 null 即清除）
// PUT /api/v1/grades/workspace/carry-forward
func (h *WorkspaceHandler) SetCarryForward(c *gin.Context) {
	var req dto.CarryForwardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	ws, err := h.workspaceSvc.SetCarryForward(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleWorkspaceError(c, err)
		return
	}

	response.OK(c, ws)
}

// handleWorkspaceError 统一处理工作区模块业务错误
func (h *WorkspaceHandler) handleWorkspaceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSemesterNotFound):
		response.NotFound(c, 21001, "学期不存在")
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 21002, "课程不存在")
	case errors.Is(err, pkgerrors.ErrWorkspaceConflict):
		response.Error(c, http.StatusConflict, 21003, "工作区已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/workspace_handler.go
