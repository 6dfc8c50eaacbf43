package service

import (
	"time"

	"schedule-viewer/internal/dto"
	"schedule-viewer/internal/schedule"
)

// ── 视图构建 ──
//
// 将校验后的课程转换为带实时状态、倒计时和重复标记的展示数据。
// 所有派生值都以同一个 now 计算，保证一次响应内部一致。

const timeLayout = time.RFC3339

// BuildEntryViews 按开始时间排序后生成课程视图
func BuildEntryViews(entries []schedule.Entry, now time.Time) []dto.EntryView {
	sorted := schedule.SortByStart(entries)
	annotated := schedule.Annotate(sorted)

	views := make([]dto.EntryView, 0, len(annotated))
	for _, a := range annotated {
		views = append(views, entryView(a, now))
	}
	return views
}

// BuildDuplicateGroups 生成重复组视图，主课程按优先级选出
func BuildDuplicateGroups(entries []schedule.Entry) []dto.DuplicateGroupView {
	groups := schedule.DetectDuplicates(entries)
	views := make([]dto.DuplicateGroupView, 0, len(groups))
	for _, g := range groups {
		primary, _ := schedule.PrimarySchedule(g.Entries)
		views = append(views, dto.DuplicateGroupView{
			Key:       g.Key,
			MemberIDs: g.MemberIDs(),
			PrimaryID: primary.ID,
			StartTime: g.StartTime.Format(timeLayout),
			EndTime:   g.EndTime.Format(timeLayout),
			Subject:   g.Subject,
			Status:    schedule.SummarizeGroup(g.Entries),
		})
	}
	return views
}

func entryView(a schedule.Annotated, now time.Time) dto.EntryView {
	status := schedule.DeriveStatus(a.Start, a.End, now)
	raw := schedule.ClassifyRawStatus(a.RawStatus)

	v := dto.EntryView{
		ID:         a.ID,
		Subject:    a.Subject,
		Group:      a.Group,
		Room:       a.Room,
		Instructor: a.Instructor,
		Campus:     a.Campus,
		MapLink:    a.MapLink,
		OnlineLink: a.OnlineLink,
		StartTime:  a.Start.Format(timeLayout),
		EndTime:    a.End.Format(timeLayout),
		Weekday:    a.Weekday,
		Session:    a.Session,
		Kind:       a.Kind,
		ExamType:   a.ExamType,
		Periods:    a.Periods,

		RawStatus:     a.RawStatus,
		RawStatusKind: string(raw.Kind),
		FlagText:      raw.FlagText,
		IsCancelled:   schedule.IsCancelled(a.RawStatus),

		Status:      status,
		StatusCode:  int(status),
		StatusLabel: status.Label(),

		IsDuplicate:    a.IsDuplicate,
		DuplicateGroup: a.DuplicateGroup,
		Priority:       a.Priority,
	}
	if text, ok := schedule.CountdownText(a.Start, now); ok {
		v.Countdown = &text
	}
	return v
}
