package schedule

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// DuplicateGroup 时间重叠或同时开始的一组课程（至少 2 条）
type DuplicateGroup struct {
	Key       string // 由排序后的成员 ID 生成，与输入顺序无关
	Entries   []Entry
	StartTime time.Time
	EndTime   time.Time
	Subject   string
}

// MemberIDs 组内成员 ID（升序）
func (g DuplicateGroup) MemberIDs() []int {
	ids := make([]int, len(g.Entries))
	for i, e := range g.Entries {
		ids[i] = e.ID
	}
	sort.Ints(ids)
	return ids
}

// overlaps 半开区间重叠，首尾相接不算
func overlaps(a, b Entry) bool {
	return a.Start.Before(b.End) && a.End.After(b.Start)
}

func sameStart(a, b Entry) bool {
	return a.Start.Equal(b.Start)
}

// DetectDuplicates 找出同时开始或时间重叠的课程组
//
// 以锚点课程为中心两两比较（O(n²)，一学期的课表规模可以接受），
// 已归组的课程不再参与后续分组；单独的课程不产生分组。
// 遍历前按 (开始时间, ID) 排序，保证相同集合得到相同分组。
func DetectDuplicates(entries []Entry) []DuplicateGroup {
	ordered := make([]Entry, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Start.Equal(ordered[j].Start) {
			return ordered[i].Start.Before(ordered[j].Start)
		}
		return ordered[i].ID < ordered[j].ID
	})

	var groups []DuplicateGroup
	processed := make(map[int]bool, len(ordered))

	for i, anchor := range ordered {
		if processed[anchor.ID] {
			continue
		}
		processed[anchor.ID] = true
		members := []Entry{anchor}

		for j, other := range ordered {
			if j == i || processed[other.ID] {
				continue
			}
			if sameStart(anchor, other) || overlaps(anchor, other) {
				members = append(members, other)
				processed[other.ID] = true
			}
		}

		if len(members) > 1 {
			groups = append(groups, DuplicateGroup{
				Key:       groupKey(members),
				Entries:   members,
				StartTime: anchor.Start,
				EndTime:   anchor.End,
				Subject:   anchor.Subject,
			})
		}
	}

	return groups
}

func groupKey(members []Entry) string {
	ids := make([]int, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	sort.Ints(ids)

	var b strings.Builder
	b.WriteString("group")
	for _, id := range ids {
		b.WriteByte('_')
		b.WriteString(strconv.Itoa(id))
	}
	return b.String()
}

// Priority 课程优先级，数值越小越权威
// 正常 1，调课 2，停课 3，其他 4。
func Priority(e Entry) int {
	switch e.RawStatus {
	case RawStatusNormal:
		return 1
	case RawStatusRescheduled:
		return 2
	case RawStatusCancelled:
		return 3
	default:
		return 4
	}
}

// Prioritize 按优先级排序（同级按 ID 升序），返回新切片
func Prioritize(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := Priority(out[i]), Priority(out[j])
		if pi != pj {
			return pi < pj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// PrimarySchedule 从重复组中选出代表课程；空输入返回 false
func PrimarySchedule(entries []Entry) (Entry, bool) {
	if len(entries) == 0 {
		return Entry{}, false
	}
	return Prioritize(entries)[0], true
}

// HasDuplicates 是否存在重复课程
func HasDuplicates(entries []Entry) bool {
	return len(DetectDuplicates(entries)) > 0
}

// GroupStatus 重复组内各状态的汇总
type GroupStatus struct {
	HasNormal      bool   `json:"has_normal"`
	HasRescheduled bool   `json:"has_rescheduled"`
	HasCancelled   bool   `json:"has_cancelled"`
	Text           string `json:"text"`
}

// SummarizeGroup 汇总重复组状态，文案优先提示停课，其次调课
func SummarizeGroup(entries []Entry) GroupStatus {
	var gs GroupStatus
	for _, e := range entries {
		switch e.RawStatus {
		case RawStatusNormal:
			gs.HasNormal = true
		case RawStatusRescheduled:
			gs.HasRescheduled = true
		case RawStatusCancelled:
			gs.HasCancelled = true
		}
	}

	switch {
	case gs.HasCancelled:
		gs.Text = "Có lịch báo nghỉ"
	case gs.HasRescheduled:
		gs.Text = "Có lịch dời"
	case gs.HasNormal:
		gs.Text = "Lịch bình thường"
	}
	return gs
}

// Annotated 附带重复标记与优先级的课程
type Annotated struct {
	Entry
	IsDuplicate    bool
	DuplicateGroup string
	Priority       int
}

// Annotate 为每条课程标注所属重复组与优先级，输入顺序保持不变
func Annotate(entries []Entry) []Annotated {
	membership := make(map[int]string)
	for _, g := range DetectDuplicates(entries) {
		for _, e := range g.Entries {
			membership[e.ID] = g.Key
		}
	}

	out := make([]Annotated, len(entries))
	for i, e := range entries {
		key, dup := membership[e.ID]
		out[i] = Annotated{
			Entry:          e,
			IsDuplicate:    dup,
			DuplicateGroup: key,
			Priority:       Priority(e),
		}
	}
	return out
}
