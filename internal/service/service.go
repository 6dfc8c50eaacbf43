package service

import (
	"time"

	"go.uber.org/zap"

	"schedule-viewer/internal/apiclient"
	"schedule-viewer/internal/cache"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Schedule ScheduleService
	History  HistoryService
	Export   ExportService
}

// NewService 创建 Service 聚合
//
// store 同时承载课表缓存与查询历史。
func NewService(
	store cache.Store,
	c *cache.Cache,
	fetcher apiclient.ScheduleFetcher,
	loc *time.Location,
	logger *zap.Logger,
	opts ...Option,
) *Service {
	schedules := NewScheduleService(c, fetcher, loc, logger, opts...)
	return &Service{
		Schedule: schedules,
		History:  NewHistoryService(store, logger),
		Export:   NewExportService(schedules, logger),
	}
}
