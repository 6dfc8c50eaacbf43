package schedule

// RawStatusKind 服务端 TinhTrang 的展示分类
type RawStatusKind string

const (
	KindNormal    RawStatusKind = "normal"
	KindMenu      RawStatusKind = "menu"
	KindCancelled RawStatusKind = "cancelled"
	KindHoliday   RawStatusKind = "holiday"
	KindSpecial   RawStatusKind = "special"
)

// 服务端 TinhTrang 取值
const (
	RawStatusNormal      = 0
	RawStatusRescheduled = 1
	RawStatusCancelled   = 2
	RawStatusHoliday     = 6

	rawStatusMenuA = 4
	rawStatusMenuB = 5
	rawStatusMenuC = 10
)

// RawStatusInfo 分类结果与横幅文案（无横幅时为空）
type RawStatusInfo struct {
	Kind     RawStatusKind `json:"kind"`
	FlagText string        `json:"flag_text,omitempty"`
}

// ClassifyRawStatus 将 TinhTrang 映射为展示分类
// 调课后的原课次（1）与停课（2）同样展示为停课横幅；4、5、10 为菜单类；
// 其余未知取值按特殊停课处理。
func ClassifyRawStatus(code int) RawStatusInfo {
	switch code {
	case RawStatusHoliday:
		return RawStatusInfo{Kind: KindHoliday, FlagText: "Nghỉ lễ"}
	case RawStatusRescheduled, RawStatusCancelled:
		return RawStatusInfo{Kind: KindCancelled, FlagText: "Báo nghỉ"}
	case RawStatusNormal:
		return RawStatusInfo{Kind: KindNormal}
	case rawStatusMenuA, rawStatusMenuB, rawStatusMenuC:
		return RawStatusInfo{Kind: KindMenu}
	default:
		return RawStatusInfo{Kind: KindSpecial, FlagText: "Báo nghỉ"}
	}
}

// IsCancelled 课程是否实际不上（停课、节假日或特殊状态）
func IsCancelled(code int) bool {
	switch ClassifyRawStatus(code).Kind {
	case KindCancelled, KindHoliday, KindSpecial:
		return true
	}
	return false
}
