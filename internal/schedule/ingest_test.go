package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"schedule-viewer/internal/model"
)

func TestIngest(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	items := []model.ScheduleItem{
		{ID: 1, ThoiGianBD: "2025-10-20T07:00:00", ThoiGianKT: "2025-10-20T09:00:00", TenMonHoc: "Toán", TenPhong: "A101", TinhTrang: 1},
		{ID: 2, ThoiGianBD: "", ThoiGianKT: "2025-10-20T09:00:00", TenMonHoc: "Lý"},
		{ID: 3, ThoiGianBD: "hôm qua", ThoiGianKT: "2025-10-20T09:00:00", TenMonHoc: "Hóa"},
		{ID: 4, ThoiGianBD: "2025-10-20T09:00:00", ThoiGianKT: "2025-10-20T08:00:00", TenMonHoc: "Sinh"},
		{ID: 0, ThoiGianBD: "2025-10-20T07:00:00", ThoiGianKT: "2025-10-20T09:00:00", TenMonHoc: "Sử"},
	}

	entries, rejected := Ingest(items, ict, zap.New(core))
	require.Len(t, entries, 3)
	assert.Equal(t, []int{1, 4, 0}, []int{entries[0].ID, entries[1].ID, entries[2].ID})
	assert.Equal(t, "A101", entries[0].Room)
	assert.Equal(t, 1, entries[0].RawStatus)
	assert.True(t, entries[0].Start.Equal(at(7, 0)))
	assert.Equal(t, items[0], entries[0].Raw)

	// 结束早于开始的课程保留，只告警
	assert.True(t, entries[1].End.Before(entries[1].Start))

	require.Len(t, rejected, 2)
	assert.Equal(t, []int{2, 3}, []int{rejected[0].ID, rejected[1].ID})
	for _, r := range rejected {
		assert.NotEmpty(t, r.Reason)
	}
	assert.Equal(t, 2, logs.FilterMessage("课程数据未通过校验，已跳过").Len())
	assert.Equal(t, 1, logs.FilterMessage("课程结束时间不晚于开始时间").Len())
}

func TestIngest_ZeroLengthEntryJoinsSameStartGroup(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	items := []model.ScheduleItem{
		{ID: 1, ThoiGianBD: "2025-10-20T10:00:00", ThoiGianKT: "2025-10-20T10:00:00", TenMonHoc: "Toán"},
		{ID: 2, ThoiGianBD: "2025-10-20T10:00:00", ThoiGianKT: "2025-10-20T11:00:00", TenMonHoc: "Toán"},
		{ID: 0, ThoiGianBD: "2025-10-20T12:00:00", ThoiGianKT: "2025-10-20T13:00:00", TenMonHoc: "Lý"},
	}

	entries, rejected := Ingest(items, ict, zap.New(core))
	require.Len(t, entries, 3)
	assert.Empty(t, rejected)
	assert.Equal(t, 1, logs.FilterMessage("课程结束时间不晚于开始时间").Len())

	// 零时长课程在开始时刻视为进行中
	assert.Equal(t, StatusInProgress, DeriveStatus(entries[0].Start, entries[0].End, at(10, 0)))

	groups := DetectDuplicates(entries)
	require.Len(t, groups, 1)
	assert.Equal(t, "group_1_2", groups[0].Key)
	assert.Equal(t, []int{1, 2}, groups[0].MemberIDs())
}

func TestIngest_Empty(t *testing.T) {
	entries, rejected := Ingest(nil, ict, zap.NewNop())
	assert.Empty(t, entries)
	assert.Empty(t, rejected)
}
