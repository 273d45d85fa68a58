package scheduling

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekStart(t *testing.T) {
	dubai := time.FixedZone("GST", 4*3600)
	tests := []struct {
		name   string
		now    time.Time
		offset int
		want   time.Time
	}{
		{"周三", time.Date(2026, 1, 7, 10, 0, 0, 0, dubai), 0, date(2026, 1, 5)},
		{"周一零点", time.Date(2026, 1, 5, 0, 0, 0, 0, dubai), 0, date(2026, 1, 5)},
		{"周日归属前一周", time.Date(2026, 1, 11, 23, 0, 0, 0, dubai), 0, date(2026, 1, 5)},
		{"下一周", time.Date(2026, 1, 7, 10, 0, 0, 0, dubai), 1, date(2026, 1, 12)},
		{"上一周", time.Date(2026, 1, 12, 8, 0, 0, 0, dubai), -1, date(2026, 1, 5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeekStart(tt.now, tt.offset)
			if !got.Equal(tt.want) {
				t.Errorf("WeekStart = %s, 期望 %s", got, tt.want)
			}
			if got.Weekday() != time.Monday {
				t.Errorf("周起点应为周一, got %s", got.Weekday())
			}
		})
	}
}

func TestDateForDay(t *testing.T) {
	ws := date(2026, 1, 5)
	got, ok := DateForDay(ws, "Saturday")
	if !ok || !got.Equal(date(2026, 1, 10)) {
		t.Errorf("Saturday 应为 2026-01-10, got %s ok=%v", got, ok)
	}
	if _, ok := DateForDay(ws, "Sunday"); ok {
		t.Error("周日不参与排班")
	}
}

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"9:00 AM", "9:00 AM", true},
		{"9am", "9:00 AM", true},
		{" 09:30 pm ", "9:30 PM", true},
		{"9:30 p.m.", "9:30 PM", true},
		{"12:00 PM", "12:00 PM", true},
		{"14:00", "2:00 PM", true},
		{"00:30", "12:30 AM", true},
		{"13pm", "", false},
		{"noon", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeTime(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("NormalizeTime(%q) = (%q, %v), 期望 (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestTimeIndexAndMinutes(t *testing.T) {
	if idx := TimeIndex("6:00 AM"); idx != 0 {
		t.Errorf("6:00 AM 序号应为 0, got %d", idx)
	}
	if idx := TimeIndex("6pm"); idx != len(TimeSlots)-1 {
		t.Errorf("6:00 PM 序号应为 %d, got %d", len(TimeSlots)-1, idx)
	}
	if idx := TimeIndex("9:30 AM"); idx != -1 {
		t.Errorf("非整点时段不在网格内, got %d", idx)
	}
	if m, ok := TimeMinutes("12:00 PM"); !ok || m != 720 {
		t.Errorf("12:00 PM 应为 720 分钟, got %d", m)
	}
	if m, ok := TimeMinutes("12:00 AM"); !ok || m != 0 {
		t.Errorf("12:00 AM 应为 0 分钟, got %d", m)
	}
}

func TestSlotOrder(t *testing.T) {
	if slotOrder("Monday", "6:00 PM") >= slotOrder("Tuesday", "6:00 AM") {
		t.Error("周一晚应排在周二早之前")
	}
	if slotOrder("Monday", "9:00 AM") >= slotOrder("Monday", "9:30 AM") {
		t.Error("同一天按时刻排序")
	}
	if slotOrder("Saturday", "6:00 PM") >= slotOrder("Someday", "6:00 AM") {
		t.Error("无法识别的星期排在最后")
	}
}

func TestParseDay(t *testing.T) {
	tests := map[string]string{
		"Mon": "Monday", "tues": "Tuesday", "Thu": "Thursday", "thurs": "Thursday",
		"SAT": "Saturday", "Sun": "Sunday", "Wed.": "Wednesday",
	}
	for in, want := range tests {
		got, ok := ParseDay(in)
		if !ok || got != want {
			t.Errorf("ParseDay(%q) = %q, 期望 %q", in, got, want)
		}
	}
	for _, bad := range []string{"Mo", "Month", "call", ""} {
		if _, ok := ParseDay(bad); ok {
			t.Errorf("ParseDay(%q) 不应识别", bad)
		}
	}
}
