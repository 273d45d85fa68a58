package scheduling

import (
	"time"

	"go.uber.org/zap"

	"washman/backend/internal/model"
)

// PlanInput 一次排班运行的全部输入（由服务层在运行前一次性读取）
type PlanInput struct {
	Customers        []model.Customer
	Workers          []model.Worker
	History          []model.WashHistory
	Locked           []model.ScheduledTask // 目标周的锁定任务
	Rules            *RuleSet
	WeekStart        time.Time
	WeekOffset       int
	ShowAllSlots     bool
	UnknownAfterDays int
	Counter          *RoundRobin
	Now              time.Time
	Logger           *zap.Logger
}

// Plan 排班结果
type Plan struct {
	Tasks               []model.ScheduledTask // 锁定任务 + 新分配任务（已校验）
	LockedCount         int
	NewCount            int
	CompletedCount      int // 因当天已完成/已取消而跳过的预约数
	Unassigned          []Appointment
	Conflicts           []Conflict
	ManualInputRequired []ManualInput
}

// BuildWeekPlan 生成 → 过滤 → 分配 → 合并锁定任务 → 校验
func BuildWeekPlan(in PlanInput) Plan {
	logger := in.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	generated := GenerateAllAppointments(GenerateInput{
		Customers:        in.Customers,
		History:          in.History,
		Rules:            in.Rules,
		WeekStart:        in.WeekStart,
		WeekOffset:       in.WeekOffset,
		ShowAllSlots:     in.ShowAllSlots,
		UnknownAfterDays: in.UnknownAfterDays,
		Logger:           logger,
	})

	notLocked := FilterUnlockedAppointments(generated.Appointments, in.Locked, nil, true)
	open := FilterUnlockedAppointments(generated.Appointments, in.Locked, in.History, in.ShowAllSlots)

	active := make([]model.Worker, 0, len(in.Workers))
	for _, w := range in.Workers {
		if w.IsActive() {
			active = append(active, w)
		}
	}

	assigned := AssignWorkersToTasks(AssignInput{
		Appointments: open,
		Workers:      active,
		Locked:       in.Locked,
		Counter:      in.Counter,
		Now:          in.Now,
	})

	combined := make([]model.ScheduledTask, 0, len(in.Locked)+len(assigned.Tasks))
	combined = append(combined, in.Locked...)
	combined = append(combined, assigned.Tasks...)
	tasks, conflicts := ValidateAndFixSchedule(combined)

	for _, a := range assigned.Unassigned {
		logger.Warn("槽位无可用洗车员，预约未分配",
			zap.String("customer_id", a.CustomerID),
			zap.String("day", a.Day),
			zap.String("time", a.Time),
			zap.String("car_plate", a.CarPlate))
	}
	for _, c := range conflicts {
		logger.Warn("排班冲突已修复", zap.String("kind", string(c.Kind)), zap.String("detail", c.Message))
	}

	return Plan{
		Tasks:               tasks,
		LockedCount:         len(in.Locked),
		NewCount:            len(assigned.Tasks),
		CompletedCount:      len(notLocked) - len(open),
		Unassigned:          assigned.Unassigned,
		Conflicts:           conflicts,
		ManualInputRequired: generated.ManualInputRequired,
	}
}
