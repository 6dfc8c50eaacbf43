package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"schedule-viewer/internal/apiclient"
	"schedule-viewer/internal/cache"
	"schedule-viewer/internal/dto"
	"schedule-viewer/internal/model"
	"schedule-viewer/internal/schedule"
)

// ── 课表模块业务错误 ──

var (
	ErrInvalidStudentID = errors.New("Vui lòng nhập mã sinh viên")
	ErrScheduleFailed   = errors.New("Không thể tải lịch học")
)

// FetchState 一次加载流程所处的状态
type FetchState string

const (
	StateIdle          FetchState = "idle"
	StateLoading       FetchState = "loading"
	StateSuccess       FetchState = "success"
	StateStaleFallback FetchState = "stale_fallback"
	StateError         FetchState = "error"
)

// 提示文案
const (
	noticeFromCache = "Đang hiển thị dữ liệu đã lưu"
	noticeStale     = "Không thể kết nối. Đang hiển thị dữ liệu đã lưu lúc %s"
	cachedAtLayout  = "15:04 02/01/2006"
)

// FetchResult 一次加载的结果
type FetchResult struct {
	StudentID string
	State     FetchState
	Data      json.RawMessage
	FromCache bool
	CachedAt  time.Time
	Notice    string
	// Err 降级时保留网络错误，成功时为 nil
	Err error
}

// FetchError 网络失败且无可用缓存
type FetchError struct {
	StudentID string
	Message   string
	Err       error
}

func (e *FetchError) Error() string {
	return e.Message
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is 使 errors.Is(err, ErrScheduleFailed) 对所有加载失败成立
func (e *FetchError) Is(target error) bool {
	return target == ErrScheduleFailed
}

// Snapshot 解析后的课表
type Snapshot struct {
	Result   *FetchResult
	Payload  *model.ScheduleResponse
	Entries  []schedule.Entry
	Rejected []schedule.Rejected
}

// ScheduleService 课表加载业务接口
//
// 加载顺序：
//  1. useCache 且缓存新鲜 → 直接返回
//  2. 请求上游，成功后写缓存
//  3. 上游失败 → 忽略有效期读取旧缓存（STALE_FALLBACK）
//  4. 仍无数据 → FetchError
type ScheduleService interface {
	// Fetch 加载原始课表响应
	Fetch(ctx context.Context, studentID string, useCache bool) (*FetchResult, error)
	// Snapshot 加载并解析课表
	Snapshot(ctx context.Context, studentID string, useCache bool) (*Snapshot, error)
	// View 加载课表并生成展示数据
	View(ctx context.Context, studentID string, q *dto.ScheduleQuery) (*dto.ScheduleViewResponse, error)
}

// Option scheduleService 可选配置
type Option func(*scheduleService)

// WithClock 注入时钟，测试用
func WithClock(now func() time.Time) Option {
	return func(s *scheduleService) {
		if now != nil {
			s.now = now
		}
	}
}

type scheduleService struct {
	cache   *cache.Cache
	fetcher apiclient.ScheduleFetcher
	loc     *time.Location
	now     func() time.Time
	flight  singleflight.Group
	logger  *zap.Logger
}

// NewScheduleService 创建 ScheduleService 实例
func NewScheduleService(
	c *cache.Cache,
	fetcher apiclient.ScheduleFetcher,
	loc *time.Location,
	logger *zap.Logger,
	opts ...Option,
) ScheduleService {
	if loc == nil {
		loc = time.Local
	}
	s := &scheduleService{
		cache:   c,
		fetcher: fetcher,
		loc:     loc,
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ═══════════════════════════════════════════════════════════
// Fetch：缓存优先，失败降级
// ═══════════════════════════════════════════════════════════

func (s *scheduleService) Fetch(ctx context.Context, studentID string, useCache bool) (*FetchResult, error) {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, ErrInvalidStudentID
	}

	// 1. 新鲜缓存
	if useCache {
		if rec := s.cache.Get(ctx, studentID); rec != nil {
			s.logger.Debug("课表缓存命中", zap.String("student_id", studentID))
			return &FetchResult{
				StudentID: studentID,
				State:     StateSuccess,
				Data:      rec.Data,
				FromCache: true,
				CachedAt:  rec.CachedAt(),
				Notice:    noticeFromCache,
			}, nil
		}
	}

	// 2. 上游请求（同一学号并发请求合并为一次）
	raw, err := s.fetchShared(ctx, studentID)
	if err == nil {
		return &FetchResult{
			StudentID: studentID,
			State:     StateSuccess,
			Data:      raw,
			CachedAt:  s.now(),
		}, nil
	}

	// 3. 旧缓存兜底
	if rec := s.cache.GetStale(ctx, studentID); rec != nil {
		s.logger.Warn("上游请求失败，使用过期缓存",
			zap.String("student_id", studentID),
			zap.Time("cached_at", rec.CachedAt()),
			zap.Error(err),
		)
		return &FetchResult{
			StudentID: studentID,
			State:     StateStaleFallback,
			Data:      rec.Data,
			FromCache: true,
			CachedAt:  rec.CachedAt(),
			Notice:    fmt.Sprintf(noticeStale, rec.CachedAt().In(s.loc).Format(cachedAtLayout)),
			Err:       err,
		}, nil
	}

	// 4. 彻底失败
	s.logger.Error("课表加载失败且无缓存", zap.String("student_id", studentID), zap.Error(err))
	return &FetchResult{StudentID: studentID, State: StateError, Err: err},
		&FetchError{StudentID: studentID, Message: failureMessage(err), Err: err}
}

// fetchShared 合并同一学号的并发上游请求，成功后写缓存
//
// 共享请求不随单个调用方取消；调用方 ctx 结束时立即返回。
func (s *scheduleService) fetchShared(ctx context.Context, studentID string) (json.RawMessage, error) {
	ch := s.flight.DoChan(studentID, func() (interface{}, error) {
		raw, err := s.fetcher.FetchSchedule(context.WithoutCancel(ctx), studentID)
		if err != nil {
			return nil, err
		}
		s.cache.Set(context.WithoutCancel(ctx), studentID, raw)
		return raw, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", apiclient.ErrUnavailable, ctx.Err())
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(json.RawMessage), nil
	}
}

// failureMessage 面向用户的失败原因
func failureMessage(err error) string {
	var apiErr *apiclient.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, apiclient.ErrUnavailable):
		return apiclient.ErrUnavailable.Error()
	default:
		return ErrScheduleFailed.Error()
	}
}

// ═══════════════════════════════════════════════════════════
// Snapshot / View
// ═══════════════════════════════════════════════════════════

func (s *scheduleService) Snapshot(ctx context.Context, studentID string, useCache bool) (*Snapshot, error) {
	res, err := s.Fetch(ctx, studentID, useCache)
	if err != nil {
		return nil, err
	}

	var payload model.ScheduleResponse
	if err := json.Unmarshal(res.Data, &payload); err != nil {
		// 缓存中的数据结构已失效
		s.logger.Error("课表数据解析失败", zap.String("student_id", res.StudentID), zap.Error(err))
		return nil, &FetchError{StudentID: res.StudentID, Message: ErrScheduleFailed.Error(), Err: err}
	}

	entries, rejected := schedule.Ingest(payload.Items, s.loc, s.logger)
	return &Snapshot{
		Result:   res,
		Payload:  &payload,
		Entries:  entries,
		Rejected: rejected,
	}, nil
}

func (s *scheduleService) View(ctx context.Context, studentID string, q *dto.ScheduleQuery) (*dto.ScheduleViewResponse, error) {
	if q == nil {
		q = &dto.ScheduleQuery{}
	}

	snap, err := s.Snapshot(ctx, studentID, !q.Refresh)
	if err != nil {
		return nil, err
	}

	now := s.now()
	visible := snap.Entries
	if !q.Full {
		visible = upcomingWindow(snap.Entries, now, schedule.DefaultLookaheadDays)
	}

	resp := &dto.ScheduleViewResponse{
		StudentID:        snap.Result.StudentID,
		Student:          snap.Payload.Student,
		Week:             snap.Payload.Week,
		State:            string(snap.Result.State),
		Notice:           snap.Result.Notice,
		FromCache:        snap.Result.FromCache,
		GeneratedAt:      now.In(s.loc).Format(timeLayout),
		TotalEntries:     len(snap.Entries),
		HasClassesInWeek: schedule.HasClassesInNextDays(snap.Entries, now, schedule.DefaultLookaheadDays),
		Entries:          BuildEntryViews(visible, now),
		DuplicateGroups:  BuildDuplicateGroups(visible),
		Rejected:         snap.Rejected,
	}
	if snap.Result.FromCache {
		cachedAt := snap.Result.CachedAt.In(s.loc).Format(timeLayout)
		resp.CachedAt = &cachedAt
	}
	if next, ok := schedule.NextClass(snap.Entries, now); ok {
		// 重复标记以全量课表为准
		for _, v := range BuildEntryViews(snap.Entries, now) {
			if v.ID == next.ID {
				resp.NextClass = &v
				break
			}
		}
	}
	return resp, nil
}

// upcomingWindow 未结束且在 days 天内开始的课程（含进行中）
func upcomingWindow(entries []schedule.Entry, now time.Time, days int) []schedule.Entry {
	limit := now.AddDate(0, 0, days)
	out := make([]schedule.Entry, 0, len(entries))
	for _, e := range entries {
		if e.End.After(now) && e.Start.Before(limit) {
			out = append(out, e)
		}
	}
	return out
}
