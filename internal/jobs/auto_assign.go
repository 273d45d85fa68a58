package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"washman/backend/config"
	"washman/backend/internal/dto"
	"washman/backend/internal/service"
)

// 单次自动排班的超时时间
const runTimeout = 2 * time.Minute

// AutoAssigner 定时自动排班：按 cron 表达式为目标周重新生成排班
type AutoAssigner struct {
	assignSvc service.AssignmentService
	cfg       config.AutoAssignConfig
	scheduler *gocron.Scheduler
	logger    *zap.Logger

	mu      sync.Mutex
	started bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewAutoAssigner 创建定时任务；cron 按排班时区解释
func NewAutoAssigner(cfg *config.SchedulerConfig, assignSvc service.AssignmentService, logger *zap.Logger) *AutoAssigner {
	loc, err := cfg.Location()
	if err != nil {
		loc = time.UTC
	}
	s := gocron.NewScheduler(loc)
	s.SingletonModeAll()

	ctx, cancel := context.WithCancel(context.Background())
	return &AutoAssigner{
		assignSvc: assignSvc,
		cfg:       cfg.AutoAssign,
		scheduler: s,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start 注册 cron 并异步启动
func (a *AutoAssigner) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.started {
		return nil
	}

	job, err := a.scheduler.Cron(a.cfg.Cron).Do(a.run)
	if err != nil {
		return fmt.Errorf("注册自动排班任务失败: %w", err)
	}

	a.scheduler.StartAsync()
	a.started = true
	a.logger.Info("自动排班任务已启动",
		zap.String("cron", a.cfg.Cron),
		zap.Int("week_offset", a.cfg.WeekOffset),
		zap.Time("next_run", job.NextRun()),
	)
	return nil
}

// Stop 停止调度并取消正在执行的排班
func (a *AutoAssigner) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cancel()
	if !a.started {
		return
	}
	a.scheduler.Stop()
	a.started = false
	a.logger.Info("自动排班任务已停止")
}

// RunOnce 立即执行一次自动排班
func (a *AutoAssigner) RunOnce(ctx context.Context) (*dto.AssignWeekResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	result, err := a.assignSvc.AssignWeek(ctx, a.cfg.WeekOffset, &dto.AssignWeekRequest{})
	if err != nil {
		return nil, err
	}

	a.logger.Info("自动排班完成",
		zap.String("week_start", result.WeekStart),
		zap.Int("total", result.Summary.Total),
		zap.Int("unassigned", result.Summary.Unassigned),
		zap.Int("conflicts", result.Summary.Conflicts),
		zap.Int("manual_input_required", len(result.ManualInputRequired)),
	)
	return result, nil
}

func (a *AutoAssigner) run() {
	if _, err := a.RunOnce(a.ctx); err != nil {
		a.logger.Error("自动排班失败", zap.Int("week_offset", a.cfg.WeekOffset), zap.Error(err))
	}
}
