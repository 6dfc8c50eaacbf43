package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var ict = time.FixedZone("ICT", 7*3600)

func at(hour, min int) time.Time {
	return time.Date(2025, 10, 20, hour, min, 0, 0, ict)
}

func TestDeriveStatus(t *testing.T) {
	start, end := at(10, 0), at(11, 0)

	tests := []struct {
		name string
		now  time.Time
		want Status
	}{
		{"一天前", start.AddDate(0, 0, -1), StatusNotStarted},
		{"开课前31分钟", start.Add(-31 * time.Minute), StatusNotStarted},
		{"开课前正好30分钟", start.Add(-30 * time.Minute), StatusUpcoming},
		{"开课前1秒", start.Add(-time.Second), StatusUpcoming},
		{"开课瞬间", start, StatusInProgress},
		{"上课中", at(10, 30), StatusInProgress},
		{"下课瞬间", end, StatusInProgress},
		{"下课后1纳秒", end.Add(time.Nanosecond), StatusEnded},
		{"第二天", end.AddDate(0, 0, 1), StatusEnded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(start, end, tt.now))
		})
	}
}

func TestDeriveStatus_ZeroLengthAtNow(t *testing.T) {
	now := at(9, 0)
	assert.Equal(t, StatusInProgress, DeriveStatus(now, now, now))
}

func TestDeriveStatus_EndedIgnoresRawStatus(t *testing.T) {
	// 状态只由时间决定，服务端 TinhTrang 不参与
	for _, raw := range []int{0, 1, 2, 6} {
		e := Entry{ID: raw + 1, Start: at(7, 0), End: at(9, 0), RawStatus: raw}
		assert.Equal(t, StatusEnded, DeriveStatus(e.Start, e.End, at(12, 0)))
	}
}

func TestDeriveStatusFromRaw_Malformed(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger := zap.New(core)

	got := DeriveStatusFromRaw("not-a-date", "2025-10-20T11:00:00", at(10, 30), ict, logger)
	assert.Equal(t, StatusNotStarted, got)
	assert.Equal(t, 1, logs.Len(), "应记录一条数据质量告警")

	got = DeriveStatusFromRaw("2025-10-20T10:00:00", "", at(10, 30), ict, logger)
	assert.Equal(t, StatusNotStarted, got)
	assert.Equal(t, 2, logs.Len())
}

func TestDeriveStatusFromRaw_Valid(t *testing.T) {
	got := DeriveStatusFromRaw("2025-10-20T10:00:00", "2025-10-20T11:00:00", at(10, 30), ict, zap.NewNop())
	assert.Equal(t, StatusInProgress, got)

	// 带时区的时间按自身偏移解析：03:00Z = 10:00 ICT
	got = DeriveStatusFromRaw("2025-10-20T03:00:00Z", "2025-10-20T04:00:00Z", at(10, 30), ict, zap.NewNop())
	assert.Equal(t, StatusInProgress, got)
}

func TestCountdownText(t *testing.T) {
	now := at(8, 0)

	tests := []struct {
		name   string
		start  time.Time
		want   string
		wantOK bool
	}{
		{"已开始", now, "", false},
		{"已结束", now.Add(-time.Hour), "", false},
		{"不足一分钟", now.Add(59 * time.Second), "Dưới 1 phút", true},
		{"整分钟", now.Add(5 * time.Minute), "5 phút", true},
		{"秒数向下取整", now.Add(5*time.Minute + 59*time.Second), "5 phút", true},
		{"小时和分钟", now.Add(2*time.Hour + 3*time.Minute), "2 giờ 3 phút", true},
		{"整小时", now.Add(3 * time.Hour), "3 giờ", true},
		{"天小时分钟", now.Add(26*time.Hour + 1*time.Minute), "1 ngày 2 giờ 1 phút", true},
		{"整天", now.Add(48 * time.Hour), "2 ngày", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CountdownText(tt.start, now)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	got, err := ParseTimestamp("2025-10-20T07:30:00", ict)
	require.NoError(t, err)
	assert.True(t, got.Equal(at(7, 30)))

	got, err = ParseTimestamp("2025-10-20T07:30:00.123", ict)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Hour())

	_, err = ParseTimestamp("20/10/2025", ict)
	assert.Error(t, err)

	_, err = ParseTimestamp("  ", ict)
	assert.Error(t, err)
}

func TestStatus_Text(t *testing.T) {
	b, err := StatusUpcoming.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "upcoming", string(b))
	assert.Equal(t, "Đang diễn ra", StatusInProgress.Label())
	assert.Equal(t, "Chưa bắt đầu", Status(42).Label())
}

func TestStatus_UnmarshalText(t *testing.T) {
	for _, s := range []Status{StatusNotStarted, StatusInProgress, StatusUpcoming, StatusEnded} {
		b, _ := s.MarshalText()
		var got Status
		require.NoError(t, got.UnmarshalText(b))
		assert.Equal(t, s, got)
	}

	var s Status
	assert.Error(t, s.UnmarshalText([]byte("cancelled")))
}
