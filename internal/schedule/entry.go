// Package schedule 课表领域的纯函数：实时状态、倒计时、重复课程检测与派生查询。
//
// 包内所有函数均不持有状态、不修改入参；时间一律由调用方传入，
// 刷新频率由宿主（HTTP 流、定时器）决定。
package schedule

import (
	"time"

	"schedule-viewer/internal/model"
)

// Entry 校验通过、时间已解析的课程安排
type Entry struct {
	ID        int
	Start     time.Time
	End       time.Time
	RawStatus int // 服务端 TinhTrang

	Subject    string
	Group      string
	Room       string
	Instructor string
	Campus     string
	MapLink    string
	OnlineLink string
	Session    int // Buoi
	Weekday    int // Thu
	Kind       int // Type：理论 / 实验
	ExamType   int // CalenType
	Periods    int // SoTietBuoi

	// Raw 保留原始字段，便于原样回传给前端
	Raw model.ScheduleItem
}
