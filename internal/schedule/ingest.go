package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"schedule-viewer/internal/model"
)

var validate = validator.New()

// Rejected 未通过入口校验的课程
type Rejected struct {
	ID     int    `json:"id"`
	Reason string `json:"reason"`
}

// Ingest 在数据入口处校验并解析上游课程
//
// 必填字段缺失或时间无法解析的课程被剔除并记录告警。
// 结束时间不晚于开始时间的课程照常保留，只记录数据质量告警。
func Ingest(items []model.ScheduleItem, loc *time.Location, logger *zap.Logger) ([]Entry, []Rejected) {
	entries := make([]Entry, 0, len(items))
	var rejected []Rejected

	for _, item := range items {
		entry, err := toEntry(item, loc)
		if err != nil {
			logger.Warn("课程数据未通过校验，已跳过",
				zap.Int("id", item.ID),
				zap.String("subject", item.TenMonHoc),
				zap.Error(err),
			)
			rejected = append(rejected, Rejected{ID: item.ID, Reason: err.Error()})
			continue
		}
		if !entry.End.After(entry.Start) {
			logger.Warn("课程结束时间不晚于开始时间",
				zap.Int("id", entry.ID),
				zap.String("start", item.ThoiGianBD),
				zap.String("end", item.ThoiGianKT),
			)
		}
		entries = append(entries, entry)
	}

	return entries, rejected
}

func toEntry(item model.ScheduleItem, loc *time.Location) (Entry, error) {
	if err := validate.Struct(item); err != nil {
		return Entry{}, describeValidation(err)
	}

	start, err := ParseTimestamp(item.ThoiGianBD, loc)
	if err != nil {
		return Entry{}, fmt.Errorf("ThoiGianBD: %w", err)
	}
	end, err := ParseTimestamp(item.ThoiGianKT, loc)
	if err != nil {
		return Entry{}, fmt.Errorf("ThoiGianKT: %w", err)
	}

	return Entry{
		ID:         item.ID,
		Start:      start,
		End:        end,
		RawStatus:  item.TinhTrang,
		Subject:    item.TenMonHoc,
		Group:      item.TenNhom,
		Room:       item.TenPhong,
		Instructor: item.GiaoVien,
		Campus:     item.TenCoSo,
		MapLink:    item.GoogleMap,
		OnlineLink: item.OnlineLink,
		Session:    item.Buoi,
		Weekday:    item.Thu,
		Kind:       item.Type,
		ExamType:   item.CalenType,
		Periods:    item.SoTietBuoi,
		Raw:        item,
	}, nil
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s 不满足 %s", fe.Field(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
