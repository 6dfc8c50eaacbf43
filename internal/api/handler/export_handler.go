package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"schedule-viewer/internal/service"
	"schedule-viewer/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportSchedule 导出学生课表
// GET /api/v1/students/:id/schedule/export
func (h *ExportHandler) ExportSchedule(c *gin.Context) {
	studentID, ok := MustGetStudentID(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportSchedule(c.Request.Context(), studentID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	var fetchErr *service.FetchError
	switch {
	case errors.Is(err, service.ErrInvalidStudentID):
		response.BadRequest(c, response.CodeInvalidParam, err.Error())
	case errors.As(err, &fetchErr):
		response.BadGateway(c, response.CodeScheduleFailed, fetchErr.Message)
	case errors.Is(err, service.ErrExportNoEntries):
		response.NotFound(c, response.CodeExportNoEntries, err.Error())
	default:
		response.InternalError(c)
	}
}
