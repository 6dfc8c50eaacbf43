package handler

import (
	"go.uber.org/zap"

	"schedule-viewer/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Schedule *ScheduleHandler
	History  *HistoryHandler
	Export   *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Schedule: NewScheduleHandler(svc.Schedule, svc.History, logger),
		History:  NewHistoryHandler(svc.History),
		Export:   NewExportHandler(svc.Export),
	}
}
