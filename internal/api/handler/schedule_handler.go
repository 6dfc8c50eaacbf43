package handler

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"schedule-viewer/internal/dto"
	"schedule-viewer/internal/service"
	"schedule-viewer/pkg/response"
)

// StreamInterval SSE 推送间隔
const StreamInterval = time.Second

// ScheduleHandler 课表模块 HTTP 处理器
type ScheduleHandler struct {
	scheduleSvc service.ScheduleService
	historySvc  service.HistoryService
	interval    time.Duration
	now         func() time.Time
	logger      *zap.Logger
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(scheduleSvc service.ScheduleService, historySvc service.HistoryService, logger *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleSvc: scheduleSvc,
		historySvc:  historySvc,
		interval:    StreamInterval,
		now:         time.Now,
		logger:      logger,
	}
}

// GetSchedule 查询学生课表
// GET /api/v1/students/:id/schedule?refresh=true&full=true
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	studentID, ok := MustGetStudentID(c)
	if !ok {
		return
	}

	var q dto.ScheduleQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, response.CodeInvalidParam, "Tham số không hợp lệ: "+err.Error())
		return
	}

	view, err := h.scheduleSvc.View(c.Request.Context(), studentID, &q)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	// 降级数据也记为一次成功查询
	h.historySvc.Add(c.Request.Context(), studentID)
	response.OK(c, view)
}

// StreamStatus 按秒推送课程实时状态（SSE）
// GET /api/v1/students/:id/schedule/stream
func (h *ScheduleHandler) StreamStatus(c *gin.Context) {
	studentID, ok := MustGetStudentID(c)
	if !ok {
		return
	}

	snap, err := h.scheduleSvc.Snapshot(c.Request.Context(), studentID, true)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	ctx := c.Request.Context()
	ticks := make(chan dto.StatusTick)
	go func() {
		defer close(ticks)
		err := service.WatchStatus(ctx, snap.Entries, h.interval, h.now, func(views []dto.EntryView) {
			tick := dto.StatusTick{
				StudentID:   snap.Result.StudentID,
				GeneratedAt: h.now().Format(time.RFC3339),
				Entries:     views,
			}
			select {
			case ticks <- tick:
			case <-ctx.Done():
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			h.logger.Warn("实时状态推送中断", zap.String("student_id", studentID), zap.Error(err))
		}
	}()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(_ io.Writer) bool {
		tick, ok := <-ticks
		if !ok {
			return false
		}
		c.SSEvent("status", tick)
		return true
	})
}

func (h *ScheduleHandler) handleScheduleError(c *gin.Context, err error) {
	var fetchErr *service.FetchError
	switch {
	case errors.Is(err, service.ErrInvalidStudentID):
		response.BadRequest(c, response.CodeInvalidParam, err.Error())
	case errors.As(err, &fetchErr):
		response.BadGateway(c, response.CodeScheduleFailed, fetchErr.Message)
	default:
		h.logger.Error("课表请求处理失败", zap.Error(err))
		response.InternalError(c)
	}
}
