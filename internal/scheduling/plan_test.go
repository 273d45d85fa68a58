package scheduling

import (
	"testing"

	"washman/backend/internal/model"
)

func TestBuildWeekPlan_EndToEnd(t *testing.T) {
	plan := BuildWeekPlan(PlanInput{
		Customers: []model.Customer{customer("CUST-001", "Mon-Wed-Fri", "9:00 AM", "ABC123", "Basic")},
		Workers:   workers("W1"),
		Rules:     NewRuleSet(&Rule{Name: "Basic", SingleCar: []WashType{WashEXT, WashINT}}),
		WeekStart: date(2026, 1, 5),
		Now:       testNow,
	})

	if len(plan.Tasks) != 3 || plan.NewCount != 3 || plan.LockedCount != 0 {
		t.Fatalf("期望 3 个新任务, got tasks=%d new=%d locked=%d", len(plan.Tasks), plan.NewCount, plan.LockedCount)
	}
	wantDays := []string{"Monday", "Wednesday", "Friday"}
	wantTypes := []string{"EXT", "INT", "EXT"}
	for i, task := range plan.Tasks {
		if task.Day != wantDays[i] || task.WashType != wantTypes[i] || task.Time != "9:00 AM" {
			t.Errorf("第 %d 个任务 = %s %s %s", i, task.Day, task.Time, task.WashType)
		}
		if task.WorkerID != "W1" {
			t.Errorf("第 %d 个任务应分配给 W1, got %q", i, task.WorkerID)
		}
	}
	if len(plan.Unassigned) != 0 || len(plan.Conflicts) != 0 {
		t.Errorf("不应有未分配或冲突: %d / %d", len(plan.Unassigned), len(plan.Conflicts))
	}
}

func TestBuildWeekPlan_LockedTaskSurvives(t *testing.T) {
	lockedTask := model.ScheduledTask{
		TaskID: "locked-1", CustomerID: "C1", CustomerName: "Customer C1", Day: "Monday",
		AppointmentDate: "05-Jan-2026", Time: "9:00 AM", CarPlate: "AAA", WashType: "INT",
		WorkerID: "W2", WorkerName: "Worker W2", IsLocked: true,
	}
	customers := []model.Customer{
		customer("C1", "Mon-Wed", "9:00 AM", "AAA", ""),
		customer("C2", "Mon", "9:00 AM", "BBB", ""),
		customer("C3", "Mon", "9:00 AM", "CCC", ""),
	}

	for _, start := range []int{0, 1, 2, 5} {
		plan := BuildWeekPlan(PlanInput{
			Customers: customers,
			Workers:   workers("W1", "W2", "W3"),
			Locked:    []model.ScheduledTask{lockedTask},
			WeekStart: date(2026, 1, 5),
			Counter:   NewRoundRobin(start),
			Now:       testNow,
		})
		found := 0
		for _, task := range plan.Tasks {
			if task.TaskID == "locked-1" {
				found++
				if task != lockedTask {
					t.Errorf("计数器起点 %d: 锁定任务被修改 %+v", start, task)
				}
			}
			if task.CustomerID == "C1" && task.Day == "Monday" && task.TaskID != "locked-1" {
				t.Errorf("计数器起点 %d: 锁定覆盖的预约被重复生成", start)
			}
			if task.Day == "Monday" && task.CustomerID != "C1" && task.WorkerID == "W2" {
				t.Errorf("计数器起点 %d: W2 在锁定槽位被重复占用", start)
			}
		}
		if found != 1 {
			t.Errorf("计数器起点 %d: 锁定任务应恰好出现一次, got %d", start, found)
		}
		if plan.NewCount != 3 {
			t.Errorf("计数器起点 %d: 期望 3 个新任务, got %d", start, plan.NewCount)
		}
	}
}

func TestBuildWeekPlan_CountsCompletedAndInactiveWorkers(t *testing.T) {
	ws := workers("W1", "W2")
	ws[1].Status = "Inactive"
	plan := BuildWeekPlan(PlanInput{
		Customers: []model.Customer{
			customer("C1", "Mon-Tue", "9:00 AM", "AAA", ""),
			customer("C2", "Tue", "9:00 AM", "BBB", ""),
		},
		Workers:   ws,
		History:   []model.WashHistory{completed("C1", "AAA", "05-Jan-2026", "EXT")},
		WeekStart: date(2026, 1, 5),
		Now:       testNow,
	})
	if plan.CompletedCount != 1 {
		t.Errorf("期望 1 个已完成预约, got %d", plan.CompletedCount)
	}
	if plan.NewCount != 1 || len(plan.Unassigned) != 1 {
		t.Errorf("停用洗车员不参与分配: new=%d unassigned=%d", plan.NewCount, len(plan.Unassigned))
	}
}
