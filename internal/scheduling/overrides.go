package scheduling

import (
	"regexp"
	"strings"

	"washman/backend/internal/model"
)

// ════════════════════════════════════════════════════════════
// 客户排班文本解析
//
// 客户合同中的 Days / Time / Notes 为自由文本，这里统一解析成类型化的覆盖项，
// 生成器只消费解析结果，不再直接处理字符串。
// ════════════════════════════════════════════════════════════

// SourceMode 预约来源模式（三者互斥，按优先级判定）
type SourceMode int

const (
	ModeStandard SourceMode = iota // Days × Time 的常规周期
	ModeCarTime                    // Time 字段形如 "9:00 AM Camry, 11:00 AM Patrol"
	ModeDayTime                    // Time 字段形如 "Mon@9:00 AM, Thu@2:00 PM"
)

func (m SourceMode) String() string {
	switch m {
	case ModeCarTime:
		return "car@time"
	case ModeDayTime:
		return "day@time"
	default:
		return "standard"
	}
}

// DayTimeOverride 指定某天的预约时间
type DayTimeOverride struct {
	Day  string
	Time string
}

// CarTimeOverride 指定某辆车的预约时间；Plate 为匹配到的车牌
type CarTimeOverride struct {
	Time  string
	Car   string
	Plate string
}

// NotesOverride 备注中出现的单日覆盖，替换该日已有预约
type NotesOverride struct {
	Day  string
	Time string
}

// ScheduleOverrides 单个客户解析后的排班信息
type ScheduleOverrides struct {
	Mode     SourceMode
	Days     []string // Days 字段解析出的工作日（保持录入顺序）
	Times    []string // 常规模式下的时段
	CarTimes []CarTimeOverride
	DayTimes []DayTimeOverride
	Notes    []NotesOverride
	// UnmatchedCars Time 字段中提到但匹配不到车牌的车名
	UnmatchedCars []string
}

const timeExpr = `\d{1,2}(?::\d{2})?\s*[AaPp]\.?\s*[Mm]\.?`

var (
	dayAtTimePattern = regexp.MustCompile(`^\s*([A-Za-z]{3,9}\.?)\s*@\s*(` + timeExpr + `)\s*$`)
	carAtTimePattern = regexp.MustCompile(`^\s*(` + timeExpr + `)\s+(\S.*?)\s*$`)
	notesPattern     = regexp.MustCompile(`\b([A-Za-z]{3,9})\s*[@ ]\s*(` + timeExpr + `)`)
	timeTokenPattern = regexp.MustCompile(timeExpr)
)

// ParseDays 解析 "Mon-Wed-Fri" 之类的工作日列表；去重并忽略周日与无法识别的写法
func ParseDays(s string) []string {
	tokens := strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == ',' || r == '/' || r == ' '
	})
	seen := make(map[string]bool)
	var days []string
	for _, tok := range tokens {
		day, ok := ParseDay(tok)
		if !ok || DayIndex(day) < 0 || seen[day] {
			continue
		}
		seen[day] = true
		days = append(days, day)
	}
	return days
}

// ParseTimes 解析以 & 连接的多个时段，每段取第一个可识别的时间
func ParseTimes(s string) []string {
	seen := make(map[string]bool)
	var times []string
	for _, part := range strings.Split(s, "&") {
		token := timeTokenPattern.FindString(part)
		if token == "" {
			token = part
		}
		t, ok := NormalizeTime(token)
		if !ok || seen[t] {
			continue
		}
		seen[t] = true
		times = append(times, t)
	}
	return times
}

// ParseNotes 提取备注中的 "Wed@11:00 AM" / "Saturday 10:00 AM" 覆盖；同一天以最后一次出现为准
func ParseNotes(notes string) []NotesOverride {
	var result []NotesOverride
	index := make(map[string]int)
	for _, m := range notesPattern.FindAllStringSubmatch(notes, -1) {
		day, ok := ParseDay(m[1])
		if !ok || DayIndex(day) < 0 {
			continue
		}
		t, ok := NormalizeTime(m[2])
		if !ok {
			continue
		}
		if i, exists := index[day]; exists {
			result[i].Time = t
			continue
		}
		index[day] = len(result)
		result = append(result, NotesOverride{Day: day, Time: t})
	}
	return result
}

// MatchPlate 车名与车牌互为子串（不区分大小写）即视为匹配
func MatchPlate(car string, plates []string) (string, bool) {
	c := strings.ToLower(strings.TrimSpace(car))
	if c == "" {
		return "", false
	}
	for _, p := range plates {
		lp := strings.ToLower(strings.TrimSpace(p))
		if lp == "" {
			continue
		}
		if strings.Contains(lp, c) || strings.Contains(c, lp) {
			return p, true
		}
	}
	return "", false
}

// ParseOverrides 解析客户的 Days / Time / Notes
func ParseOverrides(c *model.Customer) ScheduleOverrides {
	o := ScheduleOverrides{
		Mode:  ModeStandard,
		Days:  ParseDays(c.Days),
		Notes: ParseNotes(c.Notes),
	}

	parts := strings.Split(c.Time, ",")
	plates := c.Plates()

	// ── car@time ──
	for _, part := range parts {
		m := carAtTimePattern.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		t, ok := NormalizeTime(m[1])
		if !ok {
			continue
		}
		car := strings.TrimSpace(m[2])
		if strings.HasPrefix(car, "&") || timeTokenPattern.MatchString(car) {
			continue
		}
		plate, ok := MatchPlate(car, plates)
		if !ok {
			o.UnmatchedCars = append(o.UnmatchedCars, car)
			continue
		}
		o.CarTimes = append(o.CarTimes, CarTimeOverride{Time: t, Car: car, Plate: plate})
	}
	if len(o.CarTimes) > 0 {
		o.Mode = ModeCarTime
		return o
	}

	// ── day@time ──
	for _, part := range parts {
		m := dayAtTimePattern.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		day, ok := ParseDay(m[1])
		if !ok || DayIndex(day) < 0 {
			continue
		}
		t, ok := NormalizeTime(m[2])
		if !ok {
			continue
		}
		o.DayTimes = append(o.DayTimes, DayTimeOverride{Day: day, Time: t})
	}
	if len(o.DayTimes) > 0 {
		o.Mode = ModeDayTime
		return o
	}

	o.Times = ParseTimes(c.Time)
	return o
}

// NotesDay 该日是否有备注覆盖
func (o *ScheduleOverrides) NotesDay(day string) bool {
	for _, n := range o.Notes {
		if n.Day == day {
			return true
		}
	}
	return false
}

// VisitDays 客户自身的访问日序列：Days 字段顺序在前，覆盖项额外引入的日期按星期顺序追加
func (o *ScheduleOverrides) VisitDays() []string {
	seen := make(map[string]bool)
	days := make([]string, 0, len(o.Days))
	for _, d := range o.Days {
		seen[d] = true
		days = append(days, d)
	}
	extra := make(map[string]bool)
	for _, dt := range o.DayTimes {
		extra[dt.Day] = true
	}
	for _, n := range o.Notes {
		extra[n.Day] = true
	}
	for _, d := range WorkDays {
		if extra[d] && !seen[d] {
			days = append(days, d)
		}
	}
	return days
}
