package model

import (
	"encoding/json"
	"errors"
	"testing"
)

const samplePayload = `{"data":[[{"HoTen":"Nguyễn Văn A"}],[{"TuanBD":"2025-10-20T00:00:00","TuanKT":"2025-10-26T00:00:00","TotalRecord":2}],[
{"ID":11,"ThoiGianBD":"2025-10-20T07:00:00","ThoiGianKT":"2025-10-20T09:00:00","TenMonHoc":"Toán","TinhTrang":0},
{"ID":12,"ThoiGianBD":"2025-10-21T07:00:00","ThoiGianKT":"2025-10-21T09:00:00","TenMonHoc":"Lý","TinhTrang":2}]]}`

func TestScheduleResponse_Unmarshal(t *testing.T) {
	var r ScheduleResponse
	if err := json.Unmarshal([]byte(samplePayload), &r); err != nil {
		t.Fatalf("解析应成功: %v", err)
	}
	if r.Student == nil || r.Student.HoTen != "Nguyễn Văn A" {
		t.Errorf("学生信息解析错误: %+v", r.Student)
	}
	if r.Week == nil || r.Week.TotalRecord != 2 {
		t.Errorf("周信息解析错误: %+v", r.Week)
	}
	if len(r.Items) != 2 || r.Items[1].TinhTrang != 2 {
		t.Errorf("课表解析错误: %+v", r.Items)
	}
}

func TestScheduleResponse_UnmarshalPartial(t *testing.T) {
	var r ScheduleResponse
	if err := json.Unmarshal([]byte(`{"data":[[],[]]}`), &r); err != nil {
		t.Fatalf("缺失课表分段应视为空: %v", err)
	}
	if r.Student != nil || r.Week != nil || len(r.Items) != 0 {
		t.Errorf("期望空结果，实际: %+v", r)
	}
}

func TestScheduleResponse_UnmarshalMalformed(t *testing.T) {
	cases := []string{
		`{}`,
		`{"data":"oops"}`,
		`{"data":[[],[],{"ID":1}]}`,
		`not json`,
	}
	for _, c := range cases {
		var r ScheduleResponse
		err := json.Unmarshal([]byte(c), &r)
		if !errors.Is(err, ErrMalformedPayload) {
			t.Errorf("输入 %s 期望 ErrMalformedPayload，实际: %v", c, err)
		}
	}
}

func TestScheduleResponse_MarshalKeepsWireShape(t *testing.T) {
	var r ScheduleResponse
	if err := json.Unmarshal([]byte(samplePayload), &r); err != nil {
		t.Fatal(err)
	}
	out, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	var again ScheduleResponse
	if err := json.Unmarshal(out, &again); err != nil {
		t.Fatalf("重新解析失败: %v", err)
	}
	if len(again.Items) != 2 || again.Student.HoTen != r.Student.HoTen {
		t.Errorf("序列化后结构不一致: %s", out)
	}
}
