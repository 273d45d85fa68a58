package scheduling

import (
	"fmt"
	"sort"
	"strings"

	"washman/backend/internal/model"
)

// ConflictKind 校验发现的冲突类型
type ConflictKind string

const (
	ConflictDuplicateVisit ConflictKind = "duplicate_visit" // 同一客户同一车辆同槽位多条
	ConflictWorkerDouble   ConflictKind = "worker_double"   // 同一洗车员同槽位服务不同客户
)

// Conflict 校验修复记录
type Conflict struct {
	Kind           ConflictKind `json:"kind"`
	SlotKey        string       `json:"slot_key"`
	CustomerID     string       `json:"customer_id"`
	CarPlate       string       `json:"car_plate"`
	Worker         string       `json:"worker,omitempty"`
	KeptTaskID     string       `json:"kept_task_id,omitempty"`
	AffectedTaskID string       `json:"affected_task_id,omitempty"`
	Message        string       `json:"message"`
}

// ════════════════════════════════════════════════════════════
// ValidateAndFixSchedule 排班结果的不变量修复
//
// 1. 同一 (客户, 车辆, 槽位) 只保留一条：优先锁定行，否则保留先出现的
// 2. 同一洗车员在同一槽位只服务一个客户：优先锁定行，冲突行清空洗车员而不删除
//
// 对自身输出再次执行不会产生任何变化。
// ════════════════════════════════════════════════════════════

func ValidateAndFixSchedule(tasks []model.ScheduledTask) ([]model.ScheduledTask, []Conflict) {
	var conflicts []Conflict

	// ── 不变量 1：去重 ──
	keep := make(map[string]int, len(tasks)) // visit key -> 结果下标
	deduped := make([]model.ScheduledTask, 0, len(tasks))
	for _, t := range tasks {
		key := VisitKey(&t)
		idx, exists := keep[key]
		if !exists {
			keep[key] = len(deduped)
			deduped = append(deduped, t)
			continue
		}
		kept := deduped[idx]
		if t.IsLocked && !kept.IsLocked {
			deduped[idx] = t
			kept, t = t, kept
		}
		conflicts = append(conflicts, Conflict{
			Kind:           ConflictDuplicateVisit,
			SlotKey:        SlotKey(&t),
			CustomerID:     t.CustomerID,
			CarPlate:       t.CarPlate,
			KeptTaskID:     kept.TaskID,
			AffectedTaskID: t.TaskID,
			Message:        fmt.Sprintf("客户 %s 车辆 %s 在 %s 重复，已合并", t.CustomerID, t.CarPlate, SlotKey(&t)),
		})
	}

	// ── 不变量 2：洗车员不重复占用 ──
	order := make([]int, 0, len(deduped))
	for i := range deduped {
		if deduped[i].IsLocked {
			order = append(order, i)
		}
	}
	for i := range deduped {
		if !deduped[i].IsLocked {
			order = append(order, i)
		}
	}

	type owner struct {
		customerID string
		taskID     string
	}
	owners := make(map[string]owner) // slot|worker -> 占用者
	for _, i := range order {
		t := &deduped[i]
		if !t.HasWorker() {
			continue
		}
		key := SlotKey(t) + "|" + t.WorkerKey()
		o, exists := owners[key]
		if !exists {
			owners[key] = owner{customerID: t.CustomerID, taskID: t.TaskID}
			continue
		}
		if o.customerID == t.CustomerID {
			continue
		}
		conflicts = append(conflicts, Conflict{
			Kind:           ConflictWorkerDouble,
			SlotKey:        SlotKey(t),
			CustomerID:     t.CustomerID,
			CarPlate:       t.CarPlate,
			Worker:         t.WorkerKey(),
			KeptTaskID:     o.taskID,
			AffectedTaskID: t.TaskID,
			Message: fmt.Sprintf("洗车员 %s 在 %s 已服务客户 %s，已取消其对客户 %s 的分配",
				t.WorkerKey(), SlotKey(t), o.customerID, t.CustomerID),
		})
		t.ClearWorker()
	}

	return deduped, conflicts
}

// SlotKey 任务所在槽位：有具体日期时按日期区分不同周，否则按星期
// 日期、星期与时间均取规范写法，"09:00 AM" 与 "9:00 AM" 视为同一槽位
func SlotKey(t *model.ScheduledTask) string {
	clock := strings.TrimSpace(t.Time)
	if norm, ok := NormalizeTime(clock); ok {
		clock = norm
	}
	if t.AppointmentDate != "" {
		if d, ok := model.ParseDate(t.AppointmentDate); ok {
			return model.FormatDate(d) + "|" + clock
		}
		return strings.TrimSpace(t.AppointmentDate) + "|" + clock
	}
	day := strings.TrimSpace(t.Day)
	if d, ok := ParseDay(day); ok {
		day = d
	}
	return day + "|" + clock
}

// VisitKey 客户某辆车在某槽位的唯一键
func VisitKey(t *model.ScheduledTask) string {
	return SlotKey(t) + "|" + t.CustomerID + "|" + strings.ToUpper(strings.TrimSpace(t.CarPlate))
}

// SortTasks 按 日期 → 星期时段 → 客户 → 车牌 排序（展示、导出与缓存使用同一顺序）
func SortTasks(tasks []model.ScheduledTask) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := &tasks[i], &tasks[j]
		da, _ := model.ParseDate(a.AppointmentDate)
		db, _ := model.ParseDate(b.AppointmentDate)
		if !da.Equal(db) {
			return da.Before(db)
		}
		oa, ob := slotOrder(a.Day, a.Time), slotOrder(b.Day, b.Time)
		if oa != ob {
			return oa < ob
		}
		if a.CustomerID != b.CustomerID {
			return a.CustomerID < b.CustomerID
		}
		return a.CarPlate < b.CarPlate
	})
}
