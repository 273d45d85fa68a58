package scheduling

import (
	"strings"

	"washman/backend/internal/model"
)

// FilterUnlockedAppointments 剔除已被锁定任务覆盖、或当天已完成/已取消的候选预约
//
// 锁定匹配按 (customer, day, time, carPlate)；历史匹配按 (customer, carPlate, 日期)，只比较日期。
// showAllSlots 为 true 时跳过历史过滤（容量规划视图）。
func FilterUnlockedAppointments(candidates []Appointment, locked []model.ScheduledTask, history []model.WashHistory, showAllSlots bool) []Appointment {
	lockedKeys := make(map[string]bool, len(locked))
	for i := range locked {
		t := &locked[i]
		lockedKeys[visitMatchKey(t.CustomerID, t.Day, t.Time, t.CarPlate)] = true
	}

	closed := make(map[string]bool)
	if !showAllSlots {
		for i := range history {
			h := &history[i]
			if !h.IsClosed() {
				continue
			}
			d, ok := h.Date()
			if !ok {
				continue
			}
			closed[historyMatchKey(h.CustomerID, h.CarPlate, model.FormatDate(d))] = true
		}
	}

	out := make([]Appointment, 0, len(candidates))
	for _, a := range candidates {
		if lockedKeys[visitMatchKey(a.CustomerID, a.Day, a.Time, a.CarPlate)] {
			continue
		}
		if !showAllSlots && !a.ActualDate.IsZero() &&
			closed[historyMatchKey(a.CustomerID, a.CarPlate, model.FormatDate(a.ActualDate))] {
			continue
		}
		out = append(out, a)
	}
	return out
}

func visitMatchKey(customerID, day, clock, plate string) string {
	if t, ok := NormalizeTime(clock); ok {
		clock = t
	}
	return customerID + "|" + strings.ToLower(day) + "|" + clock + "|" + strings.ToUpper(strings.TrimSpace(plate))
}

func historyMatchKey(customerID, plate, date string) string {
	return customerID + "|" + strings.ToUpper(strings.TrimSpace(plate)) + "|" + date
}
