package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"washman/backend/config"
	"washman/backend/internal/cache"
	"washman/backend/internal/dto"
	"washman/backend/internal/model"
	"washman/backend/internal/repository"
	"washman/backend/internal/scheduling"
)

// MaxWeekOffset 周偏移允许范围（前后各一年）
const MaxWeekOffset = 52

// ── 排班分配模块业务错误 ──

var (
	ErrTaskNotFound       = errors.New("排班任务不存在")
	ErrTaskIDInvalid      = errors.New("任务 ID 格式错误")
	ErrCustomerNotFound   = errors.New("客户不存在")
	ErrWorkerNotFound     = errors.New("洗车员不存在")
	ErrWorkerRequired     = errors.New("请指定洗车员")
	ErrInvalidDay         = errors.New("无效的星期（仅支持周一至周六）")
	ErrInvalidTime        = errors.New("无效的时间格式")
	ErrWorkerSlotConflict = errors.New("该洗车员在此时段已安排其他客户")
	ErrDuplicateTask      = errors.New("该车辆在此时段已有锁定任务")
	ErrNothingToUpdate    = errors.New("未提供任何需要修改的字段")
	ErrWeekOffsetRange    = errors.New("周偏移超出范围")
)

// AssignmentService 排班分配业务接口
//
// 所有写操作经由 commit 串行执行：同一事务内整表替换排班任务，
// 成功后统一清除当前排班缓存。
type AssignmentService interface {
	// AssignWeek 重新生成目标周排班（保留锁定任务）
	AssignWeek(ctx context.Context, weekOffset int, req *dto.AssignWeekRequest) (*dto.AssignWeekResponse, error)
	// GetCurrent 当前排班（带短期缓存）
	GetCurrent(ctx context.Context) (*dto.CurrentScheduleResponse, error)
	// CreateManual 手动新增一条锁定任务
	CreateManual(ctx context.Context, req *dto.ManualTaskRequest) (*dto.TaskResponse, error)
	// UpdateTask 移动 / 改派 / 互换 / 修改洗车类型
	UpdateTask(ctx context.Context, req *dto.UpdateTaskRequest) (*dto.UpdateTaskResponse, error)
	// DeleteTask 删除单条任务
	DeleteTask(ctx context.Context, taskID string) error
	// ClearSchedule 清空排班，keepLocked 时保留锁定任务
	ClearSchedule(ctx context.Context, keepLocked bool) (*dto.ClearScheduleResponse, error)
	// CompleteTask 完成或取消任务：写入洗车历史并移除任务
	CompleteTask(ctx context.Context, taskID string, req *dto.CompleteTaskRequest) (*dto.HistoryResponse, error)
	// SyncNewCustomers 仅为缺少排班的客户补排，已有任务全部视为占用
	SyncNewCustomers(ctx context.Context, req *dto.SyncNewCustomersRequest) (*dto.SyncNewCustomersResponse, error)
}

type assignmentService struct {
	repo   *repository.Repository
	rules  WashRuleService
	cache  cache.Cache
	cfg    *config.SchedulerConfig
	loc    *time.Location
	now    func() time.Time
	mu     sync.Mutex
	logger *zap.Logger
}

// NewAssignmentService 创建 AssignmentService 实例
func NewAssignmentService(
	cfg *config.SchedulerConfig,
	repo *repository.Repository,
	rules WashRuleService,
	c cache.Cache,
	logger *zap.Logger,
) AssignmentService {
	loc, err := cfg.Location()
	if err != nil {
		logger.Warn("排班时区无效，使用 UTC", zap.String("timezone", cfg.Timezone), zap.Error(err))
		loc = time.UTC
	}
	return &assignmentService{
		repo:   repo,
		rules:  rules,
		cache:  c,
		cfg:    cfg,
		loc:    loc,
		now:    time.Now,
		logger: logger,
	}
}

// weekInputs 一次排班运行前一次性读取的数据
type weekInputs struct {
	customers []model.Customer
	workers   []model.Worker
	history   []model.WashHistory
	tasks     []model.ScheduledTask
	rules     *scheduling.RuleSet
}

// ════════════════════════════════════════════════════════════
// AssignWeek 生成 → 过滤 → 分配 → 合并锁定 → 校验 → 整表替换
// ════════════════════════════════════════════════════════════

func (s *assignmentService) AssignWeek(ctx context.Context, weekOffset int, req *dto.AssignWeekRequest) (*dto.AssignWeekResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	showAll := req != nil && req.ShowAllSlots
	weekStart := s.weekStart(weekOffset)

	in, err := s.loadInputs(ctx)
	if err != nil {
		return nil, err
	}

	week, others := splitWeek(in.tasks, weekStart)
	locked := make([]model.ScheduledTask, 0, len(week))
	for _, t := range week {
		if t.IsLocked {
			locked = append(locked, t)
		}
	}

	now := s.now()
	plan := scheduling.BuildWeekPlan(scheduling.PlanInput{
		Customers:        in.customers,
		Workers:          in.workers,
		History:          in.history,
		Locked:           locked,
		Rules:            in.rules,
		WeekStart:        weekStart,
		WeekOffset:       weekOffset,
		ShowAllSlots:     showAll,
		UnknownAfterDays: s.cfg.BiWeeklyUnknownAfterDays,
		Counter:          scheduling.NewRoundRobin(0),
		Now:              now,
		Logger:           s.logger,
	})
	ensureTaskIDs(plan.Tasks)

	// 容量规划视图只读：包含已完成/已取消与未开始的客户，不写回排班表
	if showAll {
		s.logger.Info("容量规划视图，不写入排班", zap.Int("week_offset", weekOffset))
	} else if err := s.commit(ctx, func(tx *repository.Repository) error {
		return tx.ScheduledTask.ReplaceAll(ctx, append(others, plan.Tasks...))
	}); err != nil {
		s.logger.Error("保存排班失败", zap.Int("week_offset", weekOffset), zap.Error(err))
		return nil, err
	}

	s.logger.Info("排班生成完成",
		zap.Int("week_offset", weekOffset),
		zap.String("week_start", model.FormatDate(weekStart)),
		zap.Int("locked", plan.LockedCount),
		zap.Int("new", plan.NewCount),
		zap.Int("completed", plan.CompletedCount),
		zap.Int("unassigned", len(plan.Unassigned)),
		zap.Int("conflicts", len(plan.Conflicts)))

	scheduling.SortTasks(plan.Tasks)
	return &dto.AssignWeekResponse{
		WeekOffset:   weekOffset,
		WeekStart:    model.FormatDate(weekStart),
		ShowAllSlots: showAll,
		Summary: dto.AssignSummary{
			Locked:     plan.LockedCount,
			New:        plan.NewCount,
			Completed:  plan.CompletedCount,
			Unassigned: len(plan.Unassigned),
			Conflicts:  len(plan.Conflicts),
			Total:      len(plan.Tasks),
		},
		Assignments:         toTaskResponses(plan.Tasks),
		Unassigned:          toAppointmentBriefs(plan.Unassigned),
		Conflicts:           toConflictResponses(plan.Conflicts),
		ManualInputRequired: toManualInputResponses(plan.ManualInputRequired),
	}, nil
}

// ────────────────────── GetCurrent ──────────────────────

func (s *assignmentService) GetCurrent(ctx context.Context) (*dto.CurrentScheduleResponse, error) {
	var cached []dto.TaskResponse
	hit, err := s.cache.Get(ctx, cache.KeyCurrentSchedule, &cached)
	if err != nil {
		s.logger.Warn("读取排班缓存失败", zap.Error(err))
	}
	if hit {
		return &dto.CurrentScheduleResponse{Tasks: cached, Total: len(cached)}, nil
	}

	// 回源与写缓存需与写操作互斥，否则 commit 的失效可能被旧数据覆盖
	s.mu.Lock()
	defer s.mu.Unlock()

	if hit, err := s.cache.Get(ctx, cache.KeyCurrentSchedule, &cached); err == nil && hit {
		return &dto.CurrentScheduleResponse{Tasks: cached, Total: len(cached)}, nil
	}

	tasks, err := s.repo.ScheduledTask.List(ctx)
	if err != nil {
		s.logger.Error("查询排班任务失败", zap.Error(err))
		return nil, err
	}
	scheduling.SortTasks(tasks)
	items := toTaskResponses(tasks)

	if err := s.cache.Set(ctx, cache.KeyCurrentSchedule, items, s.cfg.ScheduleCacheTTL); err != nil {
		s.logger.Warn("写入排班缓存失败", zap.Error(err))
	}
	return &dto.CurrentScheduleResponse{Tasks: items, Total: len(items)}, nil
}

// ────────────────────── CreateManual ──────────────────────

func (s *assignmentService) CreateManual(ctx context.Context, req *dto.ManualTaskRequest) (*dto.TaskResponse, error) {
	if req.WeekOffset < -MaxWeekOffset || req.WeekOffset > MaxWeekOffset {
		return nil, ErrWeekOffsetRange
	}
	day, ok := scheduling.ParseDay(req.Day)
	if !ok || scheduling.DayIndex(day) < 0 {
		return nil, ErrInvalidDay
	}
	clock, ok := scheduling.NormalizeTime(req.Time)
	if !ok {
		return nil, ErrInvalidTime
	}

	customer, err := s.repo.Customer.GetByID(ctx, strings.TrimSpace(req.CustomerID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		s.logger.Error("查询客户失败", zap.Error(err))
		return nil, err
	}
	worker, err := s.resolveWorker(ctx, req.WorkerID, req.WorkerName)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	weekStart := s.weekStart(req.WeekOffset)
	date, _ := scheduling.DateForDay(weekStart, day)

	plate := strings.TrimSpace(req.CarPlate)
	if plate == "" {
		plate = customer.Plates()[0]
	}
	washType := strings.ToUpper(strings.TrimSpace(req.WashType))
	if washType == "" {
		washType = string(s.suggestWashType(ctx, customer, day, clock, plate, weekStart, req.WeekOffset))
	}

	tasks, err := s.repo.ScheduledTask.List(ctx)
	if err != nil {
		s.logger.Error("查询排班任务失败", zap.Error(err))
		return nil, err
	}

	task := model.ScheduledTask{
		TaskID:          uuid.New().String(),
		CustomerID:      customer.CustomerID,
		CustomerName:    customer.Name,
		Villa:           customer.Villa,
		Day:             day,
		AppointmentDate: model.FormatDate(date),
		Time:            clock,
		CarPlate:        plate,
		WashType:        washType,
		PackageType:     customer.WashmanPackage,
		WorkerID:        worker.WorkerID,
		WorkerName:      worker.Name,
		IsLocked:        true,
		ScheduleDate:    s.now(),
	}

	kept := make([]model.ScheduledTask, 0, len(tasks)+1)
	for i := range tasks {
		t := &tasks[i]
		if scheduling.SlotKey(t) == scheduling.SlotKey(&task) {
			if t.CustomerID != task.CustomerID && sameWorkerAs(t, worker) {
				return nil, ErrWorkerSlotConflict
			}
			if t.CustomerID == task.CustomerID && strings.EqualFold(t.CarPlate, task.CarPlate) {
				if t.IsLocked {
					return nil, ErrDuplicateTask
				}
				// 未锁定的同一预约由手动任务取代
				continue
			}
		}
		kept = append(kept, *t)
	}
	kept = append(kept, task)

	if _, err := s.validateAndPersist(ctx, kept, weekStart); err != nil {
		return nil, err
	}

	s.logger.Info("手动新增排班任务",
		zap.String("task_id", task.TaskID),
		zap.String("customer_id", task.CustomerID),
		zap.String("slot", scheduling.SlotKey(&task)),
		zap.String("worker", worker.Name))

	resp := toTaskResponse(&task)
	return &resp, nil
}

// ────────────────────── UpdateTask ──────────────────────

func (s *assignmentService) UpdateTask(ctx context.Context, req *dto.UpdateTaskRequest) (*dto.UpdateTaskResponse, error) {
	if _, err := uuid.Parse(req.TaskID); err != nil {
		return nil, ErrTaskIDInvalid
	}
	if req.Day == nil && req.Time == nil && req.WorkerID == nil && req.WashType == nil {
		return nil, ErrNothingToUpdate
	}

	var newDay, newTime string
	if req.Day != nil {
		d, ok := scheduling.ParseDay(*req.Day)
		if !ok || scheduling.DayIndex(d) < 0 {
			return nil, ErrInvalidDay
		}
		newDay = d
	}
	if req.Time != nil {
		t, ok := scheduling.NormalizeTime(*req.Time)
		if !ok {
			return nil, ErrInvalidTime
		}
		newTime = t
	}
	var worker *model.Worker
	unassign := false
	if req.WorkerID != nil {
		if id := strings.TrimSpace(*req.WorkerID); id == "" {
			unassign = true
		} else {
			w, err := s.resolveWorker(ctx, id, "")
			if err != nil {
				return nil, err
			}
			worker = w
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.repo.ScheduledTask.List(ctx)
	if err != nil {
		s.logger.Error("查询排班任务失败", zap.Error(err))
		return nil, err
	}
	idx := -1
	for i := range tasks {
		if tasks[i].TaskID == req.TaskID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrTaskNotFound
	}

	t := &tasks[idx]
	orig := *t
	now := s.now()

	if req.WashType != nil {
		t.WashType = strings.ToUpper(strings.TrimSpace(*req.WashType))
	}
	moved := false
	if newDay != "" && !strings.EqualFold(newDay, t.Day) {
		date, _ := scheduling.DateForDay(s.taskWeekStart(t), newDay)
		t.Day = newDay
		t.AppointmentDate = model.FormatDate(date)
		moved = true
	}
	if newTime != "" && newTime != canonicalClock(t.Time) {
		t.Time = newTime
		moved = true
	}
	if worker != nil && !sameWorkerAs(t, worker) {
		t.WorkerID = worker.WorkerID
		t.WorkerName = worker.Name
		moved = true
	}
	if unassign && t.HasWorker() {
		t.ClearWorker()
		moved = true
	}
	t.IsLocked = true
	t.ScheduleDate = now

	// 目标单元格（槽位 + 洗车员）已有其他客户时，把对方换到原单元格
	var swapped []string
	if moved && t.HasWorker() {
		for j := range tasks {
			o := &tasks[j]
			if j == idx || o.CustomerID == t.CustomerID {
				continue
			}
			if scheduling.SlotKey(o) != scheduling.SlotKey(t) || !sameWorkerTask(o, t) {
				continue
			}
			o.Day = orig.Day
			o.AppointmentDate = orig.AppointmentDate
			o.Time = orig.Time
			o.WorkerID = orig.WorkerID
			o.WorkerName = orig.WorkerName
			o.IsLocked = true
			o.ScheduleDate = now
			swapped = append(swapped, o.TaskID)
		}
	}

	weekStart := s.taskWeekStart(t)
	fixed, err := s.validateAndPersist(ctx, tasks, weekStart)
	if err != nil {
		return nil, err
	}

	resp := &dto.UpdateTaskResponse{Conflicts: toConflictResponses(fixed.conflicts)}
	for i := range fixed.week {
		ft := &fixed.week[i]
		switch {
		case ft.TaskID == t.TaskID:
			resp.Task = toTaskResponse(ft)
		case len(swapped) > 0 && ft.TaskID == swapped[0]:
			sr := toTaskResponse(ft)
			resp.Swapped = &sr
		}
	}

	s.logger.Info("排班任务已调整",
		zap.String("task_id", t.TaskID),
		zap.String("from", scheduling.SlotKey(&orig)),
		zap.String("to", scheduling.SlotKey(t)),
		zap.Int("swapped", len(swapped)))
	return resp, nil
}

// ────────────────────── DeleteTask ──────────────────────

func (s *assignmentService) DeleteTask(ctx context.Context, taskID string) error {
	if _, err := uuid.Parse(taskID); err != nil {
		return ErrTaskIDInvalid
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.commit(ctx, func(tx *repository.Repository) error {
		return tx.ScheduledTask.Delete(ctx, taskID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		s.logger.Error("删除排班任务失败", zap.String("task_id", taskID), zap.Error(err))
		return err
	}
	s.logger.Info("排班任务已删除", zap.String("task_id", taskID))
	return nil
}

// ────────────────────── ClearSchedule ──────────────────────

func (s *assignmentService) ClearSchedule(ctx context.Context, keepLocked bool) (*dto.ClearScheduleResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.repo.ScheduledTask.List(ctx)
	if err != nil {
		s.logger.Error("查询排班任务失败", zap.Error(err))
		return nil, err
	}

	kept := make([]model.ScheduledTask, 0)
	if keepLocked {
		for _, t := range tasks {
			if t.IsLocked {
				kept = append(kept, t)
			}
		}
	}

	if err := s.commit(ctx, func(tx *repository.Repository) error {
		return tx.ScheduledTask.ReplaceAll(ctx, kept)
	}); err != nil {
		s.logger.Error("清空排班失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("排班已清空", zap.Int("removed", len(tasks)-len(kept)), zap.Int("kept", len(kept)))
	return &dto.ClearScheduleResponse{Removed: len(tasks) - len(kept), Kept: len(kept)}, nil
}

// ────────────────────── CompleteTask ──────────────────────

func (s *assignmentService) CompleteTask(ctx context.Context, taskID string, req *dto.CompleteTaskRequest) (*dto.HistoryResponse, error) {
	if _, err := uuid.Parse(taskID); err != nil {
		return nil, ErrTaskIDInvalid
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var record model.WashHistory
	err := s.commit(ctx, func(tx *repository.Repository) error {
		task, err := tx.ScheduledTask.GetByID(ctx, taskID)
		if err != nil {
			return err
		}

		washDate := task.AppointmentDate
		if washDate == "" {
			washDate = model.FormatDate(now.In(s.loc))
		}
		performed := strings.ToUpper(strings.TrimSpace(req.WashTypePerformed))
		if performed == "" {
			performed = task.WashType
		}

		record = model.WashHistory{
			HistoryID:         uuid.New().String(),
			CustomerID:        task.CustomerID,
			CarPlate:          task.CarPlate,
			WashDate:          washDate,
			WashTypePerformed: performed,
			WorkerName:        task.WorkerName,
			Status:            req.Status,
			CreatedAt:         now,
		}
		if err := tx.WashHistory.Create(ctx, &record); err != nil {
			return err
		}
		return tx.ScheduledTask.Delete(ctx, taskID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		s.logger.Error("完成排班任务失败", zap.String("task_id", taskID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("排班任务已结束",
		zap.String("task_id", taskID),
		zap.String("status", record.Status),
		zap.String("wash_type", record.WashTypePerformed))
	resp := toHistoryResponse(&record)
	return &resp, nil
}

// ────────────────────── SyncNewCustomers ──────────────────────

func (s *assignmentService) SyncNewCustomers(ctx context.Context, req *dto.SyncNewCustomersRequest) (*dto.SyncNewCustomersResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	weekOffset := 0
	if req != nil {
		weekOffset = req.WeekOffset
	}
	weekStart := s.weekStart(weekOffset)

	in, err := s.loadInputs(ctx)
	if err != nil {
		return nil, err
	}
	week, others := splitWeek(in.tasks, weekStart)

	generated := scheduling.GenerateAllAppointments(scheduling.GenerateInput{
		Customers:        in.customers,
		History:          in.history,
		Rules:            in.rules,
		WeekStart:        weekStart,
		WeekOffset:       weekOffset,
		UnknownAfterDays: s.cfg.BiWeeklyUnknownAfterDays,
		Logger:           s.logger,
	})
	missing := scheduling.FilterUnlockedAppointments(generated.Appointments, week, in.history, false)

	resp := &dto.SyncNewCustomersResponse{
		WeekOffset:  weekOffset,
		Customers:   []string{},
		Assignments: []dto.TaskResponse{},
		Unassigned:  []dto.AppointmentBrief{},
	}
	if len(missing) == 0 {
		return resp, nil
	}

	need := make(map[string]bool)
	for _, a := range missing {
		if !need[a.CustomerID] {
			need[a.CustomerID] = true
			resp.Customers = append(resp.Customers, a.CustomerID)
		}
	}
	subset := make([]model.Customer, 0, len(need))
	for _, c := range in.customers {
		if need[c.CustomerID] {
			subset = append(subset, c)
		}
	}

	// 已有任务（无论是否锁定）全部作为占用传入，只追加缺失的预约
	plan := scheduling.BuildWeekPlan(scheduling.PlanInput{
		Customers:        subset,
		Workers:          in.workers,
		History:          in.history,
		Locked:           week,
		Rules:            in.rules,
		WeekStart:        weekStart,
		WeekOffset:       weekOffset,
		UnknownAfterDays: s.cfg.BiWeeklyUnknownAfterDays,
		Counter:          scheduling.NewRoundRobin(0),
		Now:              s.now(),
		Logger:           s.logger,
	})

	var added []model.ScheduledTask
	for i := range plan.Tasks {
		if plan.Tasks[i].TaskID == "" {
			plan.Tasks[i].TaskID = uuid.New().String()
			added = append(added, plan.Tasks[i])
		}
	}

	if err := s.commit(ctx, func(tx *repository.Repository) error {
		return tx.ScheduledTask.ReplaceAll(ctx, append(others, plan.Tasks...))
	}); err != nil {
		s.logger.Error("保存补排结果失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("新客户补排完成",
		zap.Int("week_offset", weekOffset),
		zap.Strings("customers", resp.Customers),
		zap.Int("added", len(added)),
		zap.Int("unassigned", len(plan.Unassigned)))

	scheduling.SortTasks(added)
	resp.Added = len(added)
	resp.Assignments = toTaskResponses(added)
	resp.Unassigned = toAppointmentBriefs(plan.Unassigned)
	return resp, nil
}

// ── 写入 ──

// commit 唯一的写入点：在事务中执行 fn，成功后清除当前排班缓存
func (s *assignmentService) commit(ctx context.Context, fn func(tx *repository.Repository) error) error {
	if err := s.repo.Transaction(ctx, fn); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, cache.KeyCurrentSchedule); err != nil {
		s.logger.Warn("清除排班缓存失败", zap.Error(err))
	}
	return nil
}

type validated struct {
	week      []model.ScheduledTask
	conflicts []scheduling.Conflict
}

// validateAndPersist 校验目标周任务后与其他周任务一起整表写回
func (s *assignmentService) validateAndPersist(ctx context.Context, tasks []model.ScheduledTask, weekStart time.Time) (*validated, error) {
	week, others := splitWeek(tasks, weekStart)
	fixed, conflicts := scheduling.ValidateAndFixSchedule(week)
	for _, c := range conflicts {
		s.logger.Warn("排班冲突已修复", zap.String("kind", string(c.Kind)), zap.String("detail", c.Message))
	}

	if err := s.commit(ctx, func(tx *repository.Repository) error {
		return tx.ScheduledTask.ReplaceAll(ctx, append(others, fixed...))
	}); err != nil {
		s.logger.Error("保存排班失败", zap.Error(err))
		return nil, err
	}
	return &validated{week: fixed, conflicts: conflicts}, nil
}

// ── 读取 ──

func (s *assignmentService) loadInputs(ctx context.Context) (*weekInputs, error) {
	var (
		in  weekInputs
		err error
	)
	if in.customers, err = s.repo.Customer.List(ctx); err != nil {
		s.logger.Error("查询客户失败", zap.Error(err))
		return nil, err
	}
	if in.workers, err = s.repo.Worker.List(ctx); err != nil {
		s.logger.Error("查询洗车员失败", zap.Error(err))
		return nil, err
	}
	if in.history, err = s.repo.WashHistory.List(ctx); err != nil {
		s.logger.Error("查询洗车历史失败", zap.Error(err))
		return nil, err
	}
	if in.tasks, err = s.repo.ScheduledTask.List(ctx); err != nil {
		s.logger.Error("查询排班任务失败", zap.Error(err))
		return nil, err
	}
	if in.rules, err = s.rules.RuleSet(ctx); err != nil {
		return nil, err
	}
	return &in, nil
}

func (s *assignmentService) resolveWorker(ctx context.Context, id, name string) (*model.Worker, error) {
	id, name = strings.TrimSpace(id), strings.TrimSpace(name)
	var (
		w   *model.Worker
		err error
	)
	switch {
	case id != "":
		w, err = s.repo.Worker.GetByID(ctx, id)
	case name != "":
		w, err = s.repo.Worker.GetByName(ctx, name)
	default:
		return nil, ErrWorkerRequired
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkerNotFound
		}
		s.logger.Error("查询洗车员失败", zap.Error(err))
		return nil, err
	}
	return w, nil
}

// suggestWashType 手动任务未指定洗车类型时按套餐规则推算
func (s *assignmentService) suggestWashType(ctx context.Context, c *model.Customer, day, clock, plate string, weekStart time.Time, weekOffset int) scheduling.WashType {
	rules, err := s.rules.RuleSet(ctx)
	if err != nil {
		s.logger.Warn("加载洗车规则失败，按 EXT 处理", zap.Error(err))
		return scheduling.WashEXT
	}
	history, err := s.repo.WashHistory.ListByCustomer(ctx, c.CustomerID)
	if err != nil {
		s.logger.Warn("查询客户洗车历史失败，按 EXT 处理", zap.Error(err))
		return scheduling.WashEXT
	}

	generated := scheduling.GenerateAllAppointments(scheduling.GenerateInput{
		Customers:        []model.Customer{*c},
		History:          history,
		Rules:            rules,
		WeekStart:        weekStart,
		WeekOffset:       weekOffset,
		ShowAllSlots:     true,
		UnknownAfterDays: s.cfg.BiWeeklyUnknownAfterDays,
	})
	for _, a := range generated.Appointments {
		if a.Day == day && canonicalClock(a.Time) == clock && strings.EqualFold(a.CarPlate, plate) {
			return a.WashType
		}
	}

	// 合同之外的时段：按星期在访问顺序中的位置推算
	overrides := scheduling.ParseOverrides(c)
	visitDays := overrides.VisitDays()
	visit := 1
	for i, d := range visitDays {
		if d == day {
			visit = i + 1
			break
		}
	}
	return scheduling.DetermineWashType(scheduling.WashTypeRequest{
		Rule:             rules.Lookup(c.WashmanPackage),
		CustomerID:       c.CustomerID,
		VisitNumber:      visit,
		CarPlates:        c.Plates(),
		CarPlate:         plate,
		History:          history,
		WeekStart:        weekStart,
		WeekOffset:       weekOffset,
		VisitsPerWeek:    len(visitDays),
		UnknownAfterDays: s.cfg.BiWeeklyUnknownAfterDays,
	})
}

// ── 周历辅助 ──

func (s *assignmentService) weekStart(offset int) time.Time {
	return scheduling.WeekStart(s.now().In(s.loc), offset)
}

// taskWeekStart 任务所在周的周一；没有日期的旧数据归入本周
func (s *assignmentService) taskWeekStart(t *model.ScheduledTask) time.Time {
	if d, ok := model.ParseDate(t.AppointmentDate); ok {
		return scheduling.WeekStart(d, 0)
	}
	return s.weekStart(0)
}

// splitWeek 按目标周拆分任务；没有日期的任务视为目标周
func splitWeek(tasks []model.ScheduledTask, weekStart time.Time) (week, others []model.ScheduledTask) {
	weekEnd := weekStart.AddDate(0, 0, 7)
	for _, t := range tasks {
		d, ok := model.ParseDate(t.AppointmentDate)
		if !ok || (!d.Before(weekStart) && d.Before(weekEnd)) {
			week = append(week, t)
		} else {
			others = append(others, t)
		}
	}
	return week, others
}

func ensureTaskIDs(tasks []model.ScheduledTask) {
	for i := range tasks {
		if tasks[i].TaskID == "" {
			tasks[i].TaskID = uuid.New().String()
		}
	}
}

func canonicalClock(s string) string {
	if t, ok := scheduling.NormalizeTime(s); ok {
		return t
	}
	return strings.TrimSpace(s)
}

func sameWorkerAs(t *model.ScheduledTask, w *model.Worker) bool {
	if t.WorkerID != "" && w.WorkerID != "" {
		return t.WorkerID == w.WorkerID
	}
	return t.WorkerName != "" && strings.EqualFold(t.WorkerName, w.Name)
}

func sameWorkerTask(a, b *model.ScheduledTask) bool {
	if a.WorkerID != "" && b.WorkerID != "" {
		return a.WorkerID == b.WorkerID
	}
	return a.WorkerName != "" && strings.EqualFold(a.WorkerName, b.WorkerName)
}
