package handler

import (
	"github.com/gin-gonic/gin"

	"schedule-viewer/internal/dto"
	"schedule-viewer/internal/service"
	"schedule-viewer/pkg/response"
)

// HistoryHandler 查询历史 HTTP 处理器
type HistoryHandler struct {
	historySvc service.HistoryService
}

// NewHistoryHandler 创建 HistoryHandler
func NewHistoryHandler(historySvc service.HistoryService) *HistoryHandler {
	return &HistoryHandler{historySvc: historySvc}
}

// ListHistory 最近查询的学号
// GET /api/v1/history
func (h *HistoryHandler) ListHistory(c *gin.Context) {
	ids := h.historySvc.List(c.Request.Context())
	response.OK(c, dto.HistoryResponse{StudentIDs: ids})
}

// DeleteHistory 删除一条查询历史
// DELETE /api/v1/history/:id
func (h *HistoryHandler) DeleteHistory(c *gin.Context) {
	studentID, ok := MustGetStudentID(c)
	if !ok {
		return
	}
	ids := h.historySvc.Remove(c.Request.Context(), studentID)
	response.OK(c, dto.HistoryResponse{StudentIDs: ids})
}
