package scheduling

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"washman/backend/internal/model"
)

// Appointment 排班候选预约（每次排班重新生成）
type Appointment struct {
	CustomerID   string
	CustomerName string
	Villa        string
	Day          string
	Time         string
	CarPlate     string
	WashType     WashType
	PackageType  string
	ActualDate   time.Time
	VisitNumber  int
	IsLocked     bool
}

// Key 去重键 customerId-day-time-carPlate
func (a *Appointment) Key() string {
	return a.CustomerID + "-" + a.Day + "-" + a.Time + "-" + a.CarPlate
}

// SlotKey 所在槽位
func (a *Appointment) SlotKey() string {
	return a.Day + "|" + a.Time
}

// AppointmentDate 预约日期文本（DD-MMM-YYYY）
func (a *Appointment) AppointmentDate() string {
	if a.ActualDate.IsZero() {
		return ""
	}
	return model.FormatDate(a.ActualDate)
}

// ManualInput 需要人工确认的客户（双周套餐周期无法推断）
type ManualInput struct {
	CustomerID   string `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	Villa        string `json:"villa"`
	PackageType  string `json:"package_type"`
	LastWashDate string `json:"last_wash_date,omitempty"`
	Reason       string `json:"reason"`
}

// GenerateInput 生成器输入
type GenerateInput struct {
	Customers        []model.Customer
	History          []model.WashHistory
	Rules            *RuleSet
	WeekStart        time.Time
	WeekOffset       int
	ShowAllSlots     bool
	UnknownAfterDays int
	Logger           *zap.Logger
}

// GenerateResult 生成器输出
type GenerateResult struct {
	Appointments        []Appointment
	ManualInputRequired []ManualInput
}

// visitSlot 某客户某天某时段需要服务的车辆
type visitSlot struct {
	day    string
	time   string
	plates []string
}

// ════════════════════════════════════════════════════════════
// GenerateAllAppointments 把客户合同展开为目标周的候选预约
// ════════════════════════════════════════════════════════════

// GenerateAllAppointments 纯函数：不读写任何外部状态
func GenerateAllAppointments(in GenerateInput) GenerateResult {
	logger := in.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	weekStart := DateOnly(in.WeekStart)

	historyByCustomer := make(map[string][]model.WashHistory)
	for _, h := range in.History {
		historyByCustomer[h.CustomerID] = append(historyByCustomer[h.CustomerID], h)
	}

	var result GenerateResult
	seen := make(map[string]bool)

	for i := range in.Customers {
		c := &in.Customers[i]
		if !c.IsSchedulable() {
			continue
		}

		rule := in.Rules.Lookup(c.WashmanPackage)
		if rule == nil {
			logger.Warn("未找到洗车套餐规则，按 EXT 处理",
				zap.String("customer_id", c.CustomerID),
				zap.String("package", c.WashmanPackage))
		}

		overrides := ParseOverrides(c)
		for _, car := range overrides.UnmatchedCars {
			logger.Warn("Time 字段中的车辆无法匹配车牌，已忽略",
				zap.String("customer_id", c.CustomerID), zap.String("car", car))
		}

		history := historyByCustomer[c.CustomerID]
		if rule.IsBiWeekly() {
			phase, last := BiWeeklyPhase(history, c.CustomerID, weekStart, in.UnknownAfterDays)
			if phase == PhaseUnknown {
				mi := ManualInput{
					CustomerID:   c.CustomerID,
					CustomerName: c.Name,
					Villa:        c.Villa,
					PackageType:  c.WashmanPackage,
					Reason:       "双周套餐距上次洗车过久，无法判断本周处于周期前半还是后半",
				}
				if !last.IsZero() {
					mi.LastWashDate = model.FormatDate(last)
				}
				result.ManualInputRequired = append(result.ManualInputRequired, mi)
				logger.Warn("双周套餐周期未知，需要人工确认",
					zap.String("customer_id", c.CustomerID), zap.String("last_wash", mi.LastWashDate))
			}
		}

		var startDate time.Time
		if !in.ShowAllSlots {
			if d, ok := model.ParseDate(c.StartDate); ok {
				startDate = d
			}
		}

		plates := c.Plates()
		visitDays := overrides.VisitDays()
		visitIndex := make(map[string]int, len(visitDays))
		for idx, d := range visitDays {
			visitIndex[d] = idx + 1
		}

		for _, slot := range expandSlots(&overrides, plates) {
			date, ok := DateForDay(weekStart, slot.day)
			if !ok {
				continue
			}
			if !startDate.IsZero() && date.Before(startDate) {
				continue
			}
			for _, plate := range slot.plates {
				appt := Appointment{
					CustomerID:   c.CustomerID,
					CustomerName: c.Name,
					Villa:        c.Villa,
					Day:          slot.day,
					Time:         slot.time,
					CarPlate:     plate,
					PackageType:  c.WashmanPackage,
					ActualDate:   date,
					VisitNumber:  visitIndex[slot.day],
				}
				if seen[appt.Key()] {
					continue
				}
				seen[appt.Key()] = true
				appt.WashType = DetermineWashType(WashTypeRequest{
					Rule:             rule,
					CustomerID:       c.CustomerID,
					VisitNumber:      appt.VisitNumber,
					CarPlates:        plates,
					CarPlate:         plate,
					History:          history,
					WeekStart:        weekStart,
					WeekOffset:       in.WeekOffset,
					VisitsPerWeek:    len(visitDays),
					UnknownAfterDays: in.UnknownAfterDays,
				})
				result.Appointments = append(result.Appointments, appt)
			}
		}
	}

	sortAppointments(result.Appointments)
	return result
}

// expandSlots 按来源模式展开 (day, time, plates)，再叠加备注中的单日覆盖
func expandSlots(o *ScheduleOverrides, plates []string) []visitSlot {
	var slots []visitSlot

	switch o.Mode {
	case ModeCarTime:
		for _, day := range o.Days {
			for _, ct := range o.CarTimes {
				slots = append(slots, visitSlot{day: day, time: ct.Time, plates: []string{ct.Plate}})
			}
		}
	case ModeDayTime:
		for _, dt := range o.DayTimes {
			slots = append(slots, visitSlot{day: dt.Day, time: dt.Time, plates: plates})
		}
	default:
		for _, day := range o.Days {
			if o.NotesDay(day) {
				continue
			}
			for _, t := range o.Times {
				slots = append(slots, visitSlot{day: day, time: t, plates: plates})
			}
		}
	}

	for _, n := range o.Notes {
		kept := slots[:0]
		for _, s := range slots {
			if s.day != n.Day {
				kept = append(kept, s)
			}
		}
		slots = append(kept, visitSlot{day: n.Day, time: n.Time, plates: plates})
	}
	return slots
}

// sortAppointments 按槽位顺序稳定排序，保证输出确定
func sortAppointments(appts []Appointment) {
	sort.SliceStable(appts, func(i, j int) bool {
		oi, oj := slotOrder(appts[i].Day, appts[i].Time), slotOrder(appts[j].Day, appts[j].Time)
		if oi != oj {
			return oi < oj
		}
		if appts[i].CustomerID != appts[j].CustomerID {
			return appts[i].CustomerID < appts[j].CustomerID
		}
		return false
	})
}
