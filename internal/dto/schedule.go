package dto

import (
	"schedule-viewer/internal/model"
	"schedule-viewer/internal/schedule"
)

// ── 课表查询 DTO ──

// ScheduleQuery 课表查询参数
type ScheduleQuery struct {
	Refresh bool `form:"refresh"` // true 时跳过新鲜缓存，直接请求上游
	Full    bool `form:"full"`    // false 时只返回未来 7 天内的课程
}

// ── 响应 ──

// EntryView 单条课程及其派生状态
type EntryView struct {
	ID         int    `json:"id"`
	Subject    string `json:"subject"`
	Group      string `json:"group"`
	Room       string `json:"room"`
	Instructor string `json:"instructor"`
	Campus     string `json:"campus"`
	MapLink    string `json:"map_link,omitempty"`
	OnlineLink string `json:"online_link,omitempty"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Weekday    int    `json:"weekday"`
	Session    int    `json:"session"`
	Kind       int    `json:"kind"`
	ExamType   int    `json:"exam_type"`
	Periods    int    `json:"periods"`

	RawStatus     int    `json:"raw_status"`
	RawStatusKind string `json:"raw_status_kind"`
	FlagText      string `json:"flag_text,omitempty"`
	IsCancelled   bool   `json:"is_cancelled"`

	Status      schedule.Status `json:"status"`
	StatusCode  int             `json:"status_code"`
	StatusLabel string          `json:"status_label"`
	Countdown   *string         `json:"countdown"`

	IsDuplicate    bool   `json:"is_duplicate"`
	DuplicateGroup string `json:"duplicate_group,omitempty"`
	Priority       int    `json:"priority"`
}

// DuplicateGroupView 重复课程组
type DuplicateGroupView struct {
	Key       string               `json:"key"`
	MemberIDs []int                `json:"member_ids"`
	PrimaryID int                  `json:"primary_id"`
	StartTime string               `json:"start_time"`
	EndTime   string               `json:"end_time"`
	Subject   string               `json:"subject"`
	Status    schedule.GroupStatus `json:"status"`
}

// ScheduleViewResponse 课表页面数据
type ScheduleViewResponse struct {
	StudentID string             `json:"student_id"`
	Student   *model.StudentInfo `json:"student,omitempty"`
	Week      *model.WeekInfo    `json:"week,omitempty"`

	State     string  `json:"state"` // success | stale_fallback
	Notice    string  `json:"notice,omitempty"`
	FromCache bool    `json:"from_cache"`
	CachedAt  *string `json:"cached_at,omitempty"`

	GeneratedAt      string               `json:"generated_at"`
	TotalEntries     int                  `json:"total_entries"`
	HasClassesInWeek bool                 `json:"has_classes_next_7_days"`
	Entries          []EntryView          `json:"entries"`
	NextClass        *EntryView           `json:"next_class,omitempty"`
	DuplicateGroups  []DuplicateGroupView `json:"duplicate_groups"`
	Rejected         []schedule.Rejected  `json:"rejected,omitempty"`
}

// StatusTick 实时状态推送（SSE）
type StatusTick struct {
	StudentID   string      `json:"student_id"`
	GeneratedAt string      `json:"generated_at"`
	Entries     []EntryView `json:"entries"`
}

// HistoryResponse 查询历史
type HistoryResponse struct {
	StudentIDs []string `json:"student_ids"`
}
