package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"washman/backend/internal/model"
	"washman/backend/internal/repository"
	"washman/backend/internal/scheduling"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoTasks      = errors.New("该周暂无排班任务")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置响应头后写出。
// 工作簿包含两个 Sheet：
//   - "Schedule"：时段行 × 周一至周六列，单元格按行列出 别墅 / 客户 / 车牌 / 类型 / 洗车员
//   - "Tasks"：逐条任务明细
type ExportService interface {
	// ExportWeek 导出目标周排班
	ExportWeek(ctx context.Context, weekOffset int) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) ExportService {
	if loc == nil {
		loc = time.UTC
	}
	return &exportService{repo: repo, loc: loc, now: time.Now, logger: logger}
}

const (
	gridSheet   = "Schedule"
	detailSheet = "Tasks"
)

var detailHeaders = []string{
	"Date", "Day", "Time", "Villa", "Customer", "Car Plate", "Wash Type", "Package", "Worker", "Locked",
}

// ═══════════════════════════════════════════════════════════
// ExportWeek 导出目标周排班为 Excel
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportWeek(ctx context.Context, weekOffset int) (*bytes.Buffer, string, error) {
	weekStart := scheduling.WeekStart(s.now().In(s.loc), weekOffset)

	// 1. 查询目标周任务
	all, err := s.repo.ScheduledTask.List(ctx)
	if err != nil {
		s.logger.Error("查询排班任务失败", zap.Error(err))
		return nil, "", err
	}
	tasks, _ := splitWeek(all, weekStart)
	if len(tasks) == 0 {
		return nil, "", ErrExportNoTasks
	}
	scheduling.SortTasks(tasks)

	// 2. 构建单元格索引 "day|time" → 多行文本；收集合同之外的非整点时段
	cells := make(map[string][]string)
	times := append([]string{}, scheduling.TimeSlots...)
	seenTime := make(map[string]bool, len(times))
	for _, t := range times {
		seenTime[t] = true
	}
	for i := range tasks {
		t := &tasks[i]
		clock := canonicalClock(t.Time)
		if !seenTime[clock] {
			seenTime[clock] = true
			times = append(times, clock)
		}
		key := strings.ToLower(t.Day) + "|" + clock
		cells[key] = append(cells[key], cellText(t))
	}
	sortClocks(times)

	// 3. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	idx, _ := f.NewSheet(gridSheet)
	f.SetActiveSheet(idx)
	f.NewSheet(detailSheet)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	wrapStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})

	// 标题行
	lastCol := colName(len(scheduling.WorkDays))
	f.SetCellValue(gridSheet, "A1", fmt.Sprintf("Washman Schedule - week of %s", model.FormatDate(weekStart)))
	f.MergeCell(gridSheet, "A1", cell(lastCol, 1))
	f.SetCellStyle(gridSheet, "A1", cell(lastCol, 1), headerStyle)

	// 表头：时间 + 周一..周六（附日期）
	f.SetColWidth(gridSheet, "A", "A", 12)
	f.SetColWidth(gridSheet, "B", lastCol, 34)
	f.SetCellValue(gridSheet, cell("A", 2), "Time")
	for i, day := range scheduling.WorkDays {
		f.SetCellValue(gridSheet, cell(colName(i+1), 2),
			fmt.Sprintf("%s %s", day, model.FormatDate(weekStart.AddDate(0, 0, i))))
	}
	f.SetCellStyle(gridSheet, cell("A", 2), cell(lastCol, 2), headerStyle)

	// 数据行
	row := 3
	for _, clock := range times {
		f.SetCellValue(gridSheet, cell("A", row), clock)
		for i, day := range scheduling.WorkDays {
			lines := cells[strings.ToLower(day)+"|"+clock]
			if len(lines) == 0 {
				continue
			}
			f.SetCellValue(gridSheet, cell(colName(i+1), row), strings.Join(lines, "\n"))
		}
		f.SetCellStyle(gridSheet, cell("B", row), cell(lastCol, row), wrapStyle)
		row++
	}

	// 明细 Sheet
	for i, h := range detailHeaders {
		f.SetCellValue(detailSheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(detailSheet, "A1", cell(colName(len(detailHeaders)-1), 1), headerStyle)
	f.SetColWidth(detailSheet, "A", colName(len(detailHeaders)-1), 16)
	for i := range tasks {
		t := &tasks[i]
		locked := "No"
		if t.IsLocked {
			locked = "Yes"
		}
		values := []interface{}{
			t.AppointmentDate, t.Day, t.Time, t.Villa, t.CustomerName, t.CarPlate,
			t.WashType, t.PackageType, workerLabel(t), locked,
		}
		for j, v := range values {
			f.SetCellValue(detailSheet, cell(colName(j), i+2), v)
		}
	}

	// 4. 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	s.logger.Info("排班导出完成", zap.String("week_start", model.FormatDate(weekStart)), zap.Int("tasks", len(tasks)))
	filename := fmt.Sprintf("washman_schedule_%s.xlsx", weekStart.Format("2006-01-02"))
	return buf, filename, nil
}

// ── 辅助函数 ──

func cellText(t *model.ScheduledTask) string {
	return fmt.Sprintf("%s | %s | %s | %s | %s", t.Villa, t.CustomerName, t.CarPlate, t.WashType, workerLabel(t))
}

func workerLabel(t *model.ScheduledTask) string {
	if t.WorkerName != "" {
		return t.WorkerName
	}
	if t.WorkerID != "" {
		return t.WorkerID
	}
	return "Unassigned"
}

// sortClocks 按一天中的时刻排序，无法解析的排在最后
func sortClocks(times []string) {
	minutes := func(s string) int {
		if m, ok := scheduling.TimeMinutes(s); ok {
			return m
		}
		return 24 * 60
	}
	sort.SliceStable(times, func(i, j int) bool {
		return minutes(times[i]) < minutes(times[j])
	})
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
