package jobs

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"washman/backend/config"
	"washman/backend/internal/dto"
)

// ── Mock AssignmentService ──

type mockAssignmentService struct {
	calls  int
	offset int
	err    error
}

func (m *mockAssignmentService) AssignWeek(ctx context.Context, offset int, _ *dto.AssignWeekRequest) (*dto.AssignWeekResponse, error) {
	m.calls++
	m.offset = offset
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("缺少超时")
	}
	if m.err != nil {
		return nil, m.err
	}
	return &dto.AssignWeekResponse{WeekOffset: offset, WeekStart: "2026-01-12", Summary: dto.AssignSummary{Total: 3}}, nil
}
func (m *mockAssignmentService) GetCurrent(context.Context) (*dto.CurrentScheduleResponse, error) {
	return nil, nil
}
func (m *mockAssignmentService) CreateManual(context.Context, *dto.ManualTaskRequest) (*dto.TaskResponse, error) {
	return nil, nil
}
func (m *mockAssignmentService) UpdateTask(context.Context, *dto.UpdateTaskRequest) (*dto.UpdateTaskResponse, error) {
	return nil, nil
}
func (m *mockAssignmentService) DeleteTask(context.Context, string) error { return nil }
func (m *mockAssignmentService) ClearSchedule(context.Context, bool) (*dto.ClearScheduleResponse, error) {
	return nil, nil
}
func (m *mockAssignmentService) CompleteTask(context.Context, string, *dto.CompleteTaskRequest) (*dto.HistoryResponse, error) {
	return nil, nil
}
func (m *mockAssignmentService) SyncNewCustomers(context.Context, *dto.SyncNewCustomersRequest) (*dto.SyncNewCustomersResponse, error) {
	return nil, nil
}

func testConfig(cron string) *config.SchedulerConfig {
	return &config.SchedulerConfig{
		Timezone:   "Asia/Dubai",
		AutoAssign: config.AutoAssignConfig{Enabled: true, Cron: cron, WeekOffset: 1},
	}
}

func TestAutoAssigner_RunOnce(t *testing.T) {
	mock := &mockAssignmentService{}
	a := NewAutoAssigner(testConfig("0 20 * * 6"), mock, zap.NewNop())

	result, err := a.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.calls != 1 || mock.offset != 1 {
		t.Errorf("应使用配置的周偏移: calls=%d offset=%d", mock.calls, mock.offset)
	}
	if result.Summary.Total != 3 {
		t.Errorf("expected total 3, got %d", result.Summary.Total)
	}
}

func TestAutoAssigner_RunOnce_Error(t *testing.T) {
	mock := &mockAssignmentService{err: errors.New("db down")}
	a := NewAutoAssigner(testConfig("0 20 * * 6"), mock, zap.NewNop())

	if _, err := a.RunOnce(context.Background()); err == nil {
		t.Error("持久化失败应返回错误")
	}
	// run 只记录日志，不 panic
	a.run()
	if mock.calls != 2 {
		t.Errorf("expected 2 calls, got %d", mock.calls)
	}
}

func TestAutoAssigner_StartStop(t *testing.T) {
	a := NewAutoAssigner(testConfig("0 20 * * 6"), &mockAssignmentService{}, zap.NewNop())

	if err := a.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 重复启动无副作用
	if err := a.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a.scheduler.Jobs()) != 1 {
		t.Errorf("expected 1 job, got %d", len(a.scheduler.Jobs()))
	}
	a.Stop()
	if a.ctx.Err() == nil {
		t.Error("停止后上下文应被取消")
	}
}

func TestAutoAssigner_InvalidCron(t *testing.T) {
	a := NewAutoAssigner(testConfig("not a cron"), &mockAssignmentService{}, zap.NewNop())

	if err := a.Start(); err == nil {
		t.Error("非法 cron 表达式应返回错误")
	}
	a.Stop()
}
