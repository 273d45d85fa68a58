package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"washman/backend/internal/dto"
	"washman/backend/internal/service"
	"washman/backend/pkg/response"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	icsContentType  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器（Excel 排班表、洗车员日历）
type ExportHandler struct {
	exportSvc   service.ExportService
	calendarSvc service.CalendarService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService, calendarSvc service.CalendarService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, calendarSvc: calendarSvc}
}

// ExportSchedule 导出某周排班表
// GET /api/v1/schedule/assign/export?week_offset=0
func (h *ExportHandler) ExportSchedule(c *gin.Context) {
	var req dto.ExportScheduleRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "week_offset 必须为整数")
		return
	}
	if req.WeekOffset < -maxWeekOffset || req.WeekOffset > maxWeekOffset {
		response.BadRequest(c, 10001, "周偏移超出范围")
		return
	}

	buf, filename, err := h.exportSvc.ExportWeek(c.Request.Context(), req.WeekOffset)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	response.Attachment(c, filename, xlsxContentType, buf.Bytes())
}

// WorkerCalendar 洗车员日历订阅
// GET /api/v1/schedule/assign/workers/:workerId/calendar.ics
func (h *ExportHandler) WorkerCalendar(c *gin.Context) {
	body, filename, err := h.calendarSvc.WorkerCalendar(c.Request.Context(), c.Param("workerId"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	response.Attachment(c, filename, icsContentType, body)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoTasks):
		response.NotFound(c, 22001, "该周暂无排班任务")
	case errors.Is(err, service.ErrWorkerNotFound):
		response.NotFound(c, 20004, "洗车员不存在")
	default:
		response.InternalError(c, err)
	}
}
