package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedPayload 上游返回的课表结构不符合 {data:[[学生],[周],[课表]]}
var ErrMalformedPayload = errors.New("课表数据格式错误")

// ScheduleRequest 上游课表接口请求体（字段名与学校接口一致）
type ScheduleRequest struct {
	Ngay      string `json:"Ngay"` // 查询基准时间，ISO 8601
	PageIndex int    `json:"PageIndex"`
	PageSize  int    `json:"PageSize"`
	StudentID string `json:"StudentID"`
}

// StudentInfo 学生基本信息
type StudentInfo struct {
	HoTen string `json:"HoTen"`
}

// WeekInfo 当前教学周信息
type WeekInfo struct {
	TuanBD      string `json:"TuanBD"`
	TuanKT      string `json:"TuanKT"`
	TotalRecord int    `json:"TotalRecord"`
}

// ScheduleItem 单次课程/考试安排（上游原始结构）
type ScheduleItem struct {
	ID         int    `json:"ID"`
	NhomID     int    `json:"NhomID"`
	ThoiGianBD string `json:"ThoiGianBD" validate:"required"` // 开始时间
	ThoiGianKT string `json:"ThoiGianKT" validate:"required"` // 结束时间
	TenPhong   string `json:"TenPhong"`                       // 教室
	TenNhom    string `json:"TenNhom"`                        // 班组
	TenMonHoc  string `json:"TenMonHoc"  validate:"required"` // 科目
	GiaoVien   string `json:"GiaoVien"`                       // 教师
	Buoi       int    `json:"Buoi"`
	Thu        int    `json:"Thu"        validate:"gte=0"`
	TinhTrang  int    `json:"TinhTrang"`                      // 服务端状态码，见 schedule.ClassifyRawStatus
	Type       int    `json:"Type"`                           // 理论 / 实验
	TenCoSo    string `json:"TenCoSo"`                        // 校区
	GoogleMap  string `json:"GoogleMap"`
	OnlineLink string `json:"OnlineLink"`
	CalenType  int    `json:"CalenType"` // 考试类型标记
	SoTietBuoi int    `json:"SoTietBuoi"`
}

// ScheduleResponse 上游课表接口响应
//
// 线上格式为异构数组 {"data": [[StudentInfo], [WeekInfo], [ScheduleItem...]]}，
// 这里拆成具名字段，序列化时还原为同样的结构。
type ScheduleResponse struct {
	Student *StudentInfo
	Week    *WeekInfo
	Items   []ScheduleItem
}

type wireScheduleResponse struct {
	Data []json.RawMessage `json:"data"`
}

// UnmarshalJSON 解析异构 data 数组；缺失的分段视为空
func (r *ScheduleResponse) UnmarshalJSON(b []byte) error {
	var wire wireScheduleResponse
	if err := json.Unmarshal(b, &wire); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if wire.Data == nil {
		return fmt.Errorf("%w: 缺少 data 字段", ErrMalformedPayload)
	}

	*r = ScheduleResponse{}

	if len(wire.Data) > 0 && !isNull(wire.Data[0]) {
		var students []StudentInfo
		if err := json.Unmarshal(wire.Data[0], &students); err != nil {
			return fmt.Errorf("%w: 学生信息: %v", ErrMalformedPayload, err)
		}
		if len(students) > 0 {
			r.Student = &students[0]
		}
	}
	if len(wire.Data) > 1 && !isNull(wire.Data[1]) {
		var weeks []WeekInfo
		if err := json.Unmarshal(wire.Data[1], &weeks); err != nil {
			return fmt.Errorf("%w: 周信息: %v", ErrMalformedPayload, err)
		}
		if len(weeks) > 0 {
			r.Week = &weeks[0]
		}
	}
	if len(wire.Data) > 2 && !isNull(wire.Data[2]) {
		if err := json.Unmarshal(wire.Data[2], &r.Items); err != nil {
			return fmt.Errorf("%w: 课表: %v", ErrMalformedPayload, err)
		}
	}
	return nil
}

// MarshalJSON 还原为上游的 data 数组格式
func (r ScheduleResponse) MarshalJSON() ([]byte, error) {
	students := []StudentInfo{}
	if r.Student != nil {
		students = append(students, *r.Student)
	}
	weeks := []WeekInfo{}
	if r.Week != nil {
		weeks = append(weeks, *r.Week)
	}
	items := r.Items
	if items == nil {
		items = []ScheduleItem{}
	}
	return json.Marshal(struct {
		Data []interface{} `json:"data"`
	}{Data: []interface{}{students, weeks, items}})
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
