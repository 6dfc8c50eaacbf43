package schedule

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// UpcomingThreshold 开课前多久视为“即将开始”，全局唯一口径
const UpcomingThreshold = 30 * time.Minute

// Status 课程实时状态（数值与前端约定一致）
type Status int

const (
	StatusNotStarted Status = 0
	StatusInProgress Status = 1
	StatusUpcoming   Status = 2
	StatusEnded      Status = 3
)

// String 状态机器名
func (s Status) String() string {
	switch s {
	case StatusInProgress:
		return "in_progress"
	case StatusUpcoming:
		return "upcoming"
	case StatusEnded:
		return "ended"
	default:
		return "not_started"
	}
}

// Label 面向学生的状态文案
func (s Status) Label() string {
	switch s {
	case StatusInProgress:
		return "Đang diễn ra"
	case StatusUpcoming:
		return "Sắp diễn ra"
	case StatusEnded:
		return "Đã kết thúc"
	default:
		return "Chưa bắt đầu"
	}
}

// MarshalText 以机器名序列化
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText 解析机器名
func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "not_started":
		*s = StatusNotStarted
	case "in_progress":
		*s = StatusInProgress
	case "upcoming":
		*s = StatusUpcoming
	case "ended":
		*s = StatusEnded
	default:
		return fmt.Errorf("未知课程状态: %q", b)
	}
	return nil
}

// DeriveStatus 根据开始/结束时间与当前时间计算实时状态
//
// 判定顺序：now > end 为已结束；start <= now <= end 为进行中（两端闭区间）；
// 距开始不超过 UpcomingThreshold 为即将开始；其余为未开始。
// 实时状态优先于服务端 TinhTrang，后者可能滞后。
func DeriveStatus(start, end, now time.Time) Status {
	if now.After(end) {
		return StatusEnded
	}
	if !start.After(now) {
		return StatusInProgress
	}
	if start.Sub(now) <= UpcomingThreshold {
		return StatusUpcoming
	}
	return StatusNotStarted
}

// DeriveStatusFromRaw 直接对上游时间字符串计算状态
// 时间无法解析时返回未开始并记录数据质量告警，不向调用方报错。
func DeriveStatusFromRaw(startRaw, endRaw string, now time.Time, loc *time.Location, logger *zap.Logger) Status {
	start, err := ParseTimestamp(startRaw, loc)
	if err != nil {
		logger.Warn("课程开始时间无法解析", zap.String("value", startRaw), zap.Error(err))
		return StatusNotStarted
	}
	end, err := ParseTimestamp(endRaw, loc)
	if err != nil {
		logger.Warn("课程结束时间无法解析", zap.String("value", endRaw), zap.Error(err))
		return StatusNotStarted
	}
	return DeriveStatus(start, end, now)
}

// CountdownText 距开始的剩余时间文案，精度为分钟
// 已开始（start <= now）时 ok=false。
func CountdownText(start, now time.Time) (text string, ok bool) {
	if !start.After(now) {
		return "", false
	}

	totalMinutes := int(start.Sub(now) / time.Minute)
	days := totalMinutes / (60 * 24)
	hours := (totalMinutes % (60 * 24)) / 60
	minutes := totalMinutes % 60

	parts := make([]string, 0, 3)
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%d ngày", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%d giờ", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%d phút", minutes))
	}
	if len(parts) == 0 {
		return "Dưới 1 phút", true
	}
	return strings.Join(parts, " "), true
}

// 上游时间可能带时区（RFC3339）也可能不带
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp 解析上游时间；不带时区的按 loc 解释
func ParseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("时间为空")
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("无法识别的时间格式 %q", raw)
}
