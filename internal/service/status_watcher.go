package service

import (
	"context"
	"errors"
	"time"

	"schedule-viewer/internal/dto"
	"schedule-viewer/internal/schedule"
)

// DefaultWatchInterval 实时状态默认刷新间隔
const DefaultWatchInterval = time.Minute

var errInvalidInterval = errors.New("刷新间隔必须大于 0")

// WatchStatus 立即计算一次课程状态，之后每个 interval 重新计算并回调 fn
//
// 阻塞直到 ctx 结束，返回 ctx.Err()。fn 在调用方 goroutine 中串行执行。
func WatchStatus(
	ctx context.Context,
	entries []schedule.Entry,
	interval time.Duration,
	now func() time.Time,
	fn func([]dto.EntryView),
) error {
	if interval <= 0 {
		return errInvalidInterval
	}
	if now == nil {
		now = time.Now
	}

	fn(BuildEntryViews(entries, now()))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fn(BuildEntryViews(entries, now()))
		}
	}
}
