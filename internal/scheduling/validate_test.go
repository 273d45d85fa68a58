package scheduling

import (
	"fmt"
	"math/rand"
	"reflect"
	"testing"

	"washman/backend/internal/model"
)

func task(id, customerID, day, clock, plate, worker string, locked bool) model.ScheduledTask {
	return model.ScheduledTask{
		TaskID: id, CustomerID: customerID, Day: day, Time: clock, CarPlate: plate,
		WorkerID: worker, WorkerName: worker, IsLocked: locked,
	}
}

func TestValidateAndFixSchedule_DuplicateKeepsLocked(t *testing.T) {
	in := []model.ScheduledTask{
		task("t1", "C1", "Monday", "9:00 AM", "AAA", "W1", false),
		task("t2", "C1", "Monday", "9:00 AM", "AAA", "W2", true),
		task("t3", "C1", "Monday", "9:00 AM", "AAA", "W3", false),
	}
	out, conflicts := ValidateAndFixSchedule(in)
	if len(out) != 1 || out[0].TaskID != "t2" {
		t.Fatalf("应保留锁定行 t2, got %+v", out)
	}
	if len(conflicts) != 2 {
		t.Errorf("期望 2 条冲突记录, got %d", len(conflicts))
	}
	for _, c := range conflicts {
		if c.Kind != ConflictDuplicateVisit || c.KeptTaskID != "t2" {
			t.Errorf("冲突记录异常: %+v", c)
		}
	}
}

func TestValidateAndFixSchedule_DuplicateKeepsFirstWhenNoneLocked(t *testing.T) {
	in := []model.ScheduledTask{
		task("t1", "C1", "Monday", "9:00 AM", "AAA", "W1", false),
		task("t2", "C1", "Monday", "9:00 AM", "AAA", "W2", false),
	}
	out, _ := ValidateAndFixSchedule(in)
	if len(out) != 1 || out[0].TaskID != "t1" {
		t.Errorf("应保留先出现的 t1, got %+v", out)
	}
}

func TestValidateAndFixSchedule_SameDayDifferentWeeks(t *testing.T) {
	a := task("t1", "C1", "Monday", "9:00 AM", "AAA", "W1", false)
	a.AppointmentDate = "05-Jan-2026"
	b := task("t2", "C1", "Monday", "9:00 AM", "AAA", "W1", false)
	b.AppointmentDate = "12-Jan-2026"
	out, conflicts := ValidateAndFixSchedule([]model.ScheduledTask{a, b})
	if len(out) != 2 || len(conflicts) != 0 {
		t.Errorf("不同日期的同一星期不应视为重复, got %d rows %d conflicts", len(out), len(conflicts))
	}
}

func TestValidateAndFixSchedule_WorkerDoubleBooked(t *testing.T) {
	in := []model.ScheduledTask{
		task("t1", "C1", "Monday", "9:00 AM", "AAA", "W1", false),
		task("t2", "C1", "Monday", "9:00 AM", "AAB", "W1", false),
		task("t3", "C2", "Monday", "9:00 AM", "BBB", "W1", true),
		task("t4", "C3", "Monday", "10:00 AM", "CCC", "W1", false),
	}
	out, conflicts := ValidateAndFixSchedule(in)
	if len(out) != 4 {
		t.Fatalf("修复只清空洗车员不删除行, got %d", len(out))
	}
	byID := make(map[string]*model.ScheduledTask)
	for i := range out {
		byID[out[i].TaskID] = &out[i]
	}
	if byID["t3"].WorkerID != "W1" {
		t.Error("锁定行应优先保留洗车员")
	}
	if byID["t1"].HasWorker() || byID["t2"].HasWorker() {
		t.Error("与锁定行冲突的客户行应清空洗车员")
	}
	if byID["t4"].WorkerID != "W1" {
		t.Error("其他槽位不受影响")
	}
	if len(conflicts) != 2 {
		t.Errorf("期望 2 条冲突记录, got %d", len(conflicts))
	}
}

func TestValidateAndFixSchedule_WorkerNameFallback(t *testing.T) {
	in := []model.ScheduledTask{
		{TaskID: "t1", CustomerID: "C1", Day: "Monday", Time: "9:00 AM", WorkerName: "Ali"},
		{TaskID: "t2", CustomerID: "C2", Day: "Monday", Time: "9:00 AM", WorkerName: "Ali"},
	}
	out, _ := ValidateAndFixSchedule(in)
	if out[1].HasWorker() {
		t.Error("缺少 WorkerID 时按姓名识别洗车员")
	}
}

// randomSchedule 构造带重复与冲突的随机排班
func randomSchedule(r *rand.Rand, n int) []model.ScheduledTask {
	days := []string{"Monday", "Tuesday"}
	times := []string{"9:00 AM", "10:00 AM"}
	tasks := make([]model.ScheduledTask, 0, n)
	for i := 0; i < n; i++ {
		worker := ""
		if r.Intn(5) > 0 {
			worker = fmt.Sprintf("W%d", r.Intn(3))
		}
		tasks = append(tasks, task(
			fmt.Sprintf("t%d", i),
			fmt.Sprintf("C%d", r.Intn(4)),
			days[r.Intn(len(days))],
			times[r.Intn(len(times))],
			fmt.Sprintf("P%d", r.Intn(2)),
			worker,
			r.Intn(4) == 0,
		))
	}
	return tasks
}

func TestValidateAndFixSchedule_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for round := 0; round < 200; round++ {
		in := randomSchedule(r, 3+r.Intn(20))
		once, _ := ValidateAndFixSchedule(in)

		// 幂等
		twice, conflicts := ValidateAndFixSchedule(once)
		if !reflect.DeepEqual(once, twice) || len(conflicts) != 0 {
			t.Fatalf("第 %d 轮: 二次校验产生变化 (conflicts=%d)", round, len(conflicts))
		}

		visits := make(map[string]bool)
		workerOwner := make(map[string]string)
		for _, row := range once {
			vk := VisitKey(&row)
			if visits[vk] {
				t.Fatalf("第 %d 轮: 重复访问 %s", round, vk)
			}
			visits[vk] = true

			if !row.HasWorker() {
				continue
			}
			wk := SlotKey(&row) + "|" + row.WorkerKey()
			if owner, ok := workerOwner[wk]; ok && owner != row.CustomerID {
				t.Fatalf("第 %d 轮: 洗车员重复占用 %s (%s vs %s)", round, wk, owner, row.CustomerID)
			}
			workerOwner[wk] = row.CustomerID
		}

		// 锁定行优先于未锁定行占用洗车员
		original := make(map[string]model.ScheduledTask, len(in))
		for _, row := range in {
			original[row.TaskID] = row
		}
		lockedOwner := make(map[string]string)
		for _, row := range once {
			orig := original[row.TaskID]
			if !orig.IsLocked || !orig.HasWorker() {
				continue
			}
			wk := SlotKey(&orig) + "|" + orig.WorkerKey()
			if _, ok := lockedOwner[wk]; !ok {
				lockedOwner[wk] = orig.CustomerID
			}
		}
		for wk, customerID := range lockedOwner {
			if workerOwner[wk] != customerID {
				t.Fatalf("第 %d 轮: 锁定分配 %s 未保留", round, wk)
			}
		}
	}
}

func TestSortTasks(t *testing.T) {
	dated := func(id, date, day, clock, customerID string) model.ScheduledTask {
		row := task(id, customerID, day, clock, "P-"+id, "W1", false)
		row.AppointmentDate = date
		return row
	}
	tasks := []model.ScheduledTask{
		dated("t5", "12-Jan-2026", "Monday", "9:00 AM", "C1"),
		dated("t3", "06-Jan-2026", "Tuesday", "9:00 AM", "C1"),
		dated("t2", "05-Jan-2026", "Monday", "2:00 PM", "C1"),
		dated("t4", "06-Jan-2026", "Tuesday", "9:00 AM", "C2"),
		dated("t1", "05-Jan-2026", "Monday", "9:00 AM", "C9"),
	}
	SortTasks(tasks)

	var got []string
	for _, row := range tasks {
		got = append(got, row.TaskID)
	}
	want := []string{"t1", "t2", "t3", "t4", "t5"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("排序结果 %v, want %v", got, want)
	}
}

func TestValidateAndFixSchedule_TimeSpellingsShareSlot(t *testing.T) {
	in := []model.ScheduledTask{
		task("t1", "C1", "Monday", "9:00 AM", "AAA", "W1", true),
		task("t2", "C1", "Mon", "09:00 AM", "aaa", "W2", false),
		task("t3", "C2", "Monday", "09:00", "BBB", "W1", false),
	}
	out, conflicts := ValidateAndFixSchedule(in)
	if len(out) != 2 {
		t.Fatalf("不同写法的同一预约应合并, got %d 行", len(out))
	}
	if out[0].TaskID != "t1" {
		t.Errorf("应保留锁定行 t1, got %s", out[0].TaskID)
	}
	if out[1].HasWorker() {
		t.Error("09:00 与 9:00 AM 为同一槽位，W1 不应被重复占用")
	}
	if len(conflicts) != 2 {
		t.Errorf("期望 2 条冲突记录, got %d", len(conflicts))
	}
}

func TestSlotKey_Canonical(t *testing.T) {
	a := model.ScheduledTask{AppointmentDate: "2026-01-05", Day: "Monday", Time: "09:00 AM"}
	b := model.ScheduledTask{AppointmentDate: "05-Jan-2026", Day: "Mon", Time: "9:00 am"}
	if SlotKey(&a) != SlotKey(&b) {
		t.Errorf("槽位键应规范化: %q vs %q", SlotKey(&a), SlotKey(&b))
	}
	c := model.ScheduledTask{Day: "mon", Time: "14:00"}
	if got := SlotKey(&c); got != "Monday|2:00 PM" {
		t.Errorf("got %q", got)
	}
}
