package scheduling

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ── 周历 ──
//
// 工作周以周一为起点：Monday=0 .. Saturday=5，周日不参与排班。
// 所有日期值统一为 UTC 零点的“纯日期”，避免时区导致的跨日比较误差。

// WorkDays 可排班的工作日（顺序即槽位顺序）
var WorkDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// TimeSlots 固定的每日 13 个整点时段
var TimeSlots = []string{
	"6:00 AM", "7:00 AM", "8:00 AM", "9:00 AM", "10:00 AM", "11:00 AM", "12:00 PM",
	"1:00 PM", "2:00 PM", "3:00 PM", "4:00 PM", "5:00 PM", "6:00 PM",
}

var allDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// WeekStart 返回 now 所在周（偏移 offset 周）的周一日期
// 周日归属于前一个周一开始的那一周
func WeekStart(now time.Time, offset int) time.Time {
	sinceMonday := (int(now.Weekday()) + 6) % 7
	monday := now.AddDate(0, 0, -sinceMonday+offset*7)
	return DateOnly(monday)
}

// DateOnly 截取年月日，返回 UTC 零点
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayIndex 工作日序号（Monday=0），非工作日返回 -1
func DayIndex(day string) int {
	for i, d := range WorkDays {
		if strings.EqualFold(d, day) {
			return i
		}
	}
	return -1
}

// DateForDay 计算目标周内某个工作日的日期
func DateForDay(weekStart time.Time, day string) (time.Time, bool) {
	idx := DayIndex(day)
	if idx < 0 {
		return time.Time{}, false
	}
	return weekStart.AddDate(0, 0, idx), true
}

// ParseDay 把 "Mon" / "tues" / "Thursday" 等写法规范成完整英文星期名
// 至少需要三个字母，且必须是完整星期名的前缀
func ParseDay(token string) (string, bool) {
	t := strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(token), ".")))
	if len(t) < 3 {
		return "", false
	}
	for _, d := range allDays {
		if strings.HasPrefix(strings.ToLower(d), t) {
			return d, true
		}
	}
	return "", false
}

// ── 时间 ──

var (
	clockPattern = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*([AaPp])\.?\s*[Mm]\.?$`)
	hourPattern  = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
)

// NormalizeTime 统一时间写法为 "9:00 AM"；支持 "9am"、"9:30 p.m."、"14:00"
func NormalizeTime(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if m := clockPattern.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour < 1 || hour > 12 || minute > 59 {
			return "", false
		}
		return fmt.Sprintf("%d:%02d %s", hour, minute, strings.ToUpper(m[3])+"M"), true
	}
	if m := hourPattern.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour > 23 || minute > 59 {
			return "", false
		}
		suffix := "AM"
		if hour >= 12 {
			suffix = "PM"
		}
		h12 := hour % 12
		if h12 == 0 {
			h12 = 12
		}
		return fmt.Sprintf("%d:%02d %s", h12, minute, suffix), true
	}
	return "", false
}

// TimeMinutes 规范时间距零点的分钟数
func TimeMinutes(s string) (int, bool) {
	norm, ok := NormalizeTime(s)
	if !ok {
		return 0, false
	}
	var hour, minute int
	var suffix string
	if _, err := fmt.Sscanf(norm, "%d:%d %s", &hour, &minute, &suffix); err != nil {
		return 0, false
	}
	hour %= 12
	if suffix == "PM" {
		hour += 12
	}
	return hour*60 + minute, true
}

// TimeIndex 时段在固定网格中的序号，不在网格内返回 -1
func TimeIndex(s string) int {
	norm, ok := NormalizeTime(s)
	if !ok {
		return -1
	}
	for i, slot := range TimeSlots {
		if slot == norm {
			return i
		}
	}
	return -1
}

// slotOrder 槽位排序键：先按工作日，再按一天中的时刻
func slotOrder(day, clock string) int {
	idx := DayIndex(day)
	if idx < 0 {
		idx = len(WorkDays)
	}
	minutes, ok := TimeMinutes(clock)
	if !ok {
		minutes = 24 * 60
	}
	return idx*(24*60+1) + minutes
}
