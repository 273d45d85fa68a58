package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"washman/backend/internal/model"
	"washman/backend/internal/repository"
	"washman/backend/internal/scheduling"
)

// 每次洗车按 1 小时占用日历
const washDuration = time.Hour

// CalendarService 洗车员日历订阅
type CalendarService interface {
	// WorkerCalendar 生成洗车员已排任务的 iCalendar 内容
	WorkerCalendar(ctx context.Context, workerID string) ([]byte, string, error)
}

type calendarService struct {
	repo   *repository.Repository
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// NewCalendarService 创建 CalendarService 实例；loc 为排班时间所在时区
func NewCalendarService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) CalendarService {
	if loc == nil {
		loc = time.UTC
	}
	return &calendarService{repo: repo, loc: loc, now: time.Now, logger: logger}
}

func (s *calendarService) WorkerCalendar(ctx context.Context, workerID string) ([]byte, string, error) {
	worker, err := s.repo.Worker.GetByID(ctx, workerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrWorkerNotFound
		}
		s.logger.Error("查询洗车员失败", zap.Error(err))
		return nil, "", err
	}

	tasks, err := s.repo.ScheduledTask.ListByWorker(ctx, worker.WorkerID)
	if err != nil {
		s.logger.Error("查询洗车员任务失败", zap.String("worker_id", workerID), zap.Error(err))
		return nil, "", err
	}
	scheduling.SortTasks(tasks)

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//Washman//Wash Schedule//EN")
	cal.SetXWRCalName(fmt.Sprintf("Washman - %s", worker.Name))

	stamp := s.now().UTC()
	skipped := 0
	for i := range tasks {
		t := &tasks[i]
		start, ok := s.taskStart(t)
		if !ok {
			skipped++
			continue
		}
		event := cal.AddEvent(t.TaskID + "@washman")
		event.SetDtStampTime(stamp)
		event.SetStartAt(start)
		event.SetEndAt(start.Add(washDuration))
		event.SetSummary(fmt.Sprintf("%s %s - %s", t.WashType, t.CarPlate, t.CustomerName))
		event.SetLocation(t.Villa)
		event.SetDescription(taskDescription(t))
	}
	if skipped > 0 {
		s.logger.Warn("部分任务缺少日期或时间，未写入日历", zap.String("worker_id", workerID), zap.Int("skipped", skipped))
	}

	filename := fmt.Sprintf("washman_%s.ics", worker.WorkerID)
	return []byte(cal.Serialize()), filename, nil
}

// taskStart 任务开始时间（排班时区）
func (s *calendarService) taskStart(t *model.ScheduledTask) (time.Time, bool) {
	date, ok := model.ParseDate(t.AppointmentDate)
	if !ok {
		return time.Time{}, false
	}
	minutes, ok := scheduling.TimeMinutes(t.Time)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(date.Year(), date.Month(), date.Day(), minutes/60, minutes%60, 0, 0, s.loc), true
}

func taskDescription(t *model.ScheduledTask) string {
	lines := []string{
		"Customer: " + t.CustomerName,
		"Villa: " + t.Villa,
		"Car: " + t.CarPlate,
		"Wash: " + t.WashType,
		"Package: " + t.PackageType,
	}
	if t.IsLocked {
		lines = append(lines, "Locked")
	}
	return strings.Join(lines, "\n")
}
