package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"schedule-viewer/internal/schedule"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoEntries    = errors.New("Không có lịch học để xuất")
	ErrExportGenerateFail = errors.New("Không thể tạo tệp Excel")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出学生完整课表为 Excel (.xlsx)，优先使用缓存
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - 每行一节课，按开始时间排序；重复课程和停课行分别着色
type ExportService interface {
	// ExportSchedule 导出学生课表为 Excel
	ExportSchedule(ctx context.Context, studentID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	schedules ScheduleService
	logger    *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(schedules ScheduleService, logger *zap.Logger) ExportService {
	return &exportService{schedules: schedules, logger: logger}
}

var exportHeaders = []string{
	"Thứ", "Ngày", "Giờ", "Môn học", "Nhóm", "Phòng", "Giảng viên", "Cơ sở", "Tình trạng", "Trùng lịch",
}

var weekdayNames = map[int]string{
	2: "Thứ 2", 3: "Thứ 3", 4: "Thứ 4", 5: "Thứ 5", 6: "Thứ 6", 7: "Thứ 7", 8: "Chủ nhật",
}

// ═══════════════════════════════════════════════════════════
// ExportSchedule：导出学生课表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "Lịch học"
//   - 第 1 行：标题（姓名 + 学号）
//   - 第 2 行：表头
//   - 第 3 行起：课程
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportSchedule(ctx context.Context, studentID string) (*bytes.Buffer, string, error) {
	// 1. 加载课表（允许缓存与降级数据）
	snap, err := s.schedules.Snapshot(ctx, studentID, true)
	if err != nil {
		return nil, "", err
	}
	if len(snap.Entries) == 0 {
		return nil, "", ErrExportNoEntries
	}
	sid := snap.Result.StudentID

	title := sid
	if snap.Payload.Student != nil && snap.Payload.Student.HoTen != "" {
		title = fmt.Sprintf("%s (%s)", snap.Payload.Student.HoTen, sid)
	}

	// 2. 排序并标注重复
	annotated := schedule.Annotate(schedule.SortByStart(snap.Entries))

	// 3. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Lịch học"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	// 设置列宽
	widths := []float64{10, 12, 14, 32, 10, 12, 24, 14, 14, 14}
	for i, w := range widths {
		col := colName(i)
		f.SetColWidth(sheetName, col, col, w)
	}

	// 样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	duplicateStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFF2CC"}, Pattern: 1},
	})
	cancelledStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Strike: true, Color: "#999999"},
	})

	// 标题行
	lastCol := colName(len(exportHeaders) - 1)
	f.SetCellValue(sheetName, "A1", "Lịch học - "+title)
	f.MergeCell(sheetName, "A1", cell(lastCol, 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	row := 2
	for i, h := range exportHeaders {
		f.SetCellValue(sheetName, cell(colName(i), row), h)
	}
	f.SetCellStyle(sheetName, cell("A", row), cell(lastCol, row), headerStyle)

	// 数据行
	row = 3
	for _, a := range annotated {
		raw := schedule.ClassifyRawStatus(a.RawStatus)
		statusText := raw.FlagText
		if statusText == "" {
			statusText = "Bình thường"
		}
		dupText := ""
		if a.IsDuplicate {
			dupText = a.DuplicateGroup
		}

		weekday := fmt.Sprintf("Thứ %d", a.Weekday)
		if a.Weekday <= 0 {
			weekday = weekdayNames[isoToVietnameseWeekday(int(a.Start.Weekday()))]
		}

		values := []interface{}{
			weekday,
			a.Start.Format("02/01/2006"),
			fmt.Sprintf("%s-%s", a.Start.Format("15:04"), a.End.Format("15:04")),
			a.Subject,
			a.Group,
			a.Room,
			a.Instructor,
			a.Campus,
			statusText,
			dupText,
		}
		for i, v := range values {
			f.SetCellValue(sheetName, cell(colName(i), row), v)
		}

		switch {
		case schedule.IsCancelled(a.RawStatus):
			f.SetCellStyle(sheetName, cell("A", row), cell(lastCol, row), cancelledStyle)
		case a.IsDuplicate:
			f.SetCellStyle(sheetName, cell("A", row), cell(lastCol, row), duplicateStyle)
		}
		row++
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.String("student_id", sid), zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("LichHoc_%s.xlsx", sid)
	return buf, filename, nil
}

// ── 辅助函数 ──

// isoToVietnameseWeekday time.Weekday（周日为 0）转为越南习惯（周一为 2，周日为 8）
func isoToVietnameseWeekday(wd int) int {
	if wd == 0 {
		return 8
	}
	return wd + 1
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
