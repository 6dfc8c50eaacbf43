package schedule

import (
	"sort"
	"time"
)

// DefaultLookaheadDays 首页只展示未来 7 天内的课程
const DefaultLookaheadDays = 7

// NextClass 下一节尚未开始的课程
func NextClass(entries []Entry, now time.Time) (Entry, bool) {
	var (
		next  Entry
		found bool
	)
	for _, e := range entries {
		if !e.Start.After(now) {
			continue
		}
		if !found || e.Start.Before(next.Start) || (e.Start.Equal(next.Start) && e.ID < next.ID) {
			next, found = e, true
		}
	}
	return next, found
}

// WithinNextDays 课程是否在 (now, now+days) 内开始
func WithinNextDays(e Entry, now time.Time, days int) bool {
	limit := now.AddDate(0, 0, days)
	return e.Start.After(now) && e.Start.Before(limit)
}

// HasClassesInNextDays 未来 days 天内是否有课
func HasClassesInNextDays(entries []Entry, now time.Time, days int) bool {
	for _, e := range entries {
		if WithinNextDays(e, now, days) {
			return true
		}
	}
	return false
}

// FilterWithinNextDays 只保留未来 days 天内开始的课程
func FilterWithinNextDays(entries []Entry, now time.Time, days int) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if WithinNextDays(e, now, days) {
			out = append(out, e)
		}
	}
	return out
}

// SortByStart 按开始时间排序（同时开始按 ID），返回新切片
func SortByStart(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
