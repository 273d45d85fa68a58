package scheduling

import (
	"sort"
	"time"

	"washman/backend/internal/model"
)

// RoundRobin 跨槽位共享的轮询计数器（不按槽位重置）
type RoundRobin struct {
	next int
}

// NewRoundRobin 从指定位置开始轮询
func NewRoundRobin(start int) *RoundRobin {
	return &RoundRobin{next: start}
}

// pick 从当前位置起依次尝试每个洗车员一次，返回第一个可用的下标
func (r *RoundRobin) pick(n int, available func(int) bool) (int, bool) {
	if n == 0 {
		return 0, false
	}
	start := mod(r.next, n)
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		if available(idx) {
			r.next = start + i + 1
			return idx, true
		}
	}
	return 0, false
}

// AssignInput 分配输入
type AssignInput struct {
	Appointments []Appointment
	Workers      []model.Worker        // 已按状态筛选的在岗洗车员
	Locked       []model.ScheduledTask // 目标周的锁定任务
	Counter      *RoundRobin
	Now          time.Time
}

// AssignResult 分配结果；Unassigned 为槽位内无可用洗车员的预约
type AssignResult struct {
	Tasks      []model.ScheduledTask
	Unassigned []Appointment
}

// ════════════════════════════════════════════════════════════
// AssignWorkersToTasks 按槽位轮询分配洗车员
// ════════════════════════════════════════════════════════════

// AssignWorkersToTasks 为未锁定预约分配洗车员
//
//   - 槽位按 周一..周六 × 时段 顺序处理
//   - 锁定任务占用的洗车员在该槽位不可用
//   - 同一客户同槽位的多辆车复用同一名洗车员
//   - 其余按全局轮询计数器取下一个可用洗车员
func AssignWorkersToTasks(in AssignInput) AssignResult {
	counter := in.Counter
	if counter == nil {
		counter = NewRoundRobin(0)
	}

	busy := make(map[string]map[string]bool)          // slot -> worker key
	customerWorker := make(map[string]map[string]int) // slot -> customer -> worker index
	workerIndex := make(map[string]int, len(in.Workers))
	for i := range in.Workers {
		w := &in.Workers[i]
		if w.Name != "" {
			workerIndex[w.Name] = i
		}
		if w.WorkerID != "" {
			workerIndex[w.WorkerID] = i
		}
	}

	for i := range in.Locked {
		t := &in.Locked[i]
		if !t.HasWorker() {
			continue
		}
		slot := lockedSlotKey(t)
		markBusy(busy, slot, t.WorkerID, t.WorkerName)
		if idx, ok := lookupWorker(workerIndex, t); ok {
			if customerWorker[slot] == nil {
				customerWorker[slot] = make(map[string]int)
			}
			if _, exists := customerWorker[slot][t.CustomerID]; !exists {
				customerWorker[slot][t.CustomerID] = idx
			}
		}
	}

	groups := make(map[string][]Appointment)
	var slots []string
	for _, a := range in.Appointments {
		slot := a.Day + "|" + canonicalTime(a.Time)
		if _, ok := groups[slot]; !ok {
			slots = append(slots, slot)
		}
		groups[slot] = append(groups[slot], a)
	}
	sort.SliceStable(slots, func(i, j int) bool {
		ai, aj := groups[slots[i]][0], groups[slots[j]][0]
		return slotOrder(ai.Day, ai.Time) < slotOrder(aj.Day, aj.Time)
	})

	var result AssignResult
	for _, slot := range slots {
		for _, a := range groups[slot] {
			if idx, ok := customerWorker[slot][a.CustomerID]; ok {
				result.Tasks = append(result.Tasks, taskFromAppointment(a, &in.Workers[idx], in.Now))
				continue
			}
			idx, ok := counter.pick(len(in.Workers), func(i int) bool {
				return !isBusy(busy, slot, &in.Workers[i])
			})
			if !ok {
				result.Unassigned = append(result.Unassigned, a)
				continue
			}
			w := &in.Workers[idx]
			markBusy(busy, slot, w.WorkerID, w.Name)
			if customerWorker[slot] == nil {
				customerWorker[slot] = make(map[string]int)
			}
			customerWorker[slot][a.CustomerID] = idx
			result.Tasks = append(result.Tasks, taskFromAppointment(a, w, in.Now))
		}
	}
	return result
}

// TaskFromAppointment 把候选预约转成未分配洗车员的任务
func TaskFromAppointment(a Appointment, now time.Time) model.ScheduledTask {
	return model.ScheduledTask{
		CustomerID:      a.CustomerID,
		CustomerName:    a.CustomerName,
		Villa:           a.Villa,
		Day:             a.Day,
		AppointmentDate: a.AppointmentDate(),
		Time:            a.Time,
		CarPlate:        a.CarPlate,
		WashType:        string(a.WashType),
		PackageType:     a.PackageType,
		IsLocked:        a.IsLocked,
		ScheduleDate:    now,
	}
}

func taskFromAppointment(a Appointment, w *model.Worker, now time.Time) model.ScheduledTask {
	t := TaskFromAppointment(a, now)
	t.WorkerID = w.WorkerID
	t.WorkerName = w.Name
	return t
}

func lockedSlotKey(t *model.ScheduledTask) string {
	return t.Day + "|" + canonicalTime(t.Time)
}

func canonicalTime(s string) string {
	if t, ok := NormalizeTime(s); ok {
		return t
	}
	return s
}

// markBusy 同时登记 ID 与姓名，兼容只填写了姓名的历史任务
func markBusy(busy map[string]map[string]bool, slot string, keys ...string) {
	if busy[slot] == nil {
		busy[slot] = make(map[string]bool)
	}
	for _, k := range keys {
		if k != "" {
			busy[slot][k] = true
		}
	}
}

func isBusy(busy map[string]map[string]bool, slot string, w *model.Worker) bool {
	return (w.WorkerID != "" && busy[slot][w.WorkerID]) || (w.Name != "" && busy[slot][w.Name])
}

func lookupWorker(index map[string]int, t *model.ScheduledTask) (int, bool) {
	if t.WorkerID != "" {
		if idx, ok := index[t.WorkerID]; ok {
			return idx, true
		}
	}
	idx, ok := index[t.WorkerName]
	return idx, ok && t.WorkerName != ""
}
