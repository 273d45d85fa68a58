package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"washman/backend/internal/dto"
	"washman/backend/internal/service"
	"washman/backend/pkg/response"
)

// AssignmentHandler 排班分配模块 HTTP 处理器
type AssignmentHandler struct {
	assignSvc service.AssignmentService
}

// NewAssignmentHandler 创建 AssignmentHandler
func NewAssignmentHandler(assignSvc service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignSvc: assignSvc}
}

// AssignWeek 重新生成某周排班
// POST /api/v1/schedule/assign/:weekOffset
func (h *AssignmentHandler) AssignWeek(c *gin.Context) {
	offset, ok := parseWeekOffset(c, c.Param("weekOffset"))
	if !ok {
		return
	}
	var req dto.AssignWeekRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	result, err := h.assignSvc.AssignWeek(c.Request.Context(), offset, &req)
	if err != nil {
		h.handleAssignError(c, err)
		return
	}

	response.OK(c, result)
}

// GetCurrent 当前排班
// GET /api/v1/schedule/assign/current
func (h *AssignmentHandler) GetCurrent(c *gin.Context) {
	result, err := h.assignSvc.GetCurrent(c.Request.Context())
	if err != nil {
		h.handleAssignError(c, err)
		return
	}

	response.OK(c, result)
}

// CreateManual 手动新增锁定任务
// POST /api/v1/schedule/assign/manual
func (h *AssignmentHandler) CreateManual(c *gin.Context) {
	var req dto.ManualTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if req.WeekOffset < -maxWeekOffset || req.WeekOffset > maxWeekOffset {
		response.BadRequest(c, 10001, "周偏移超出范围")
		return
	}

	task, err := h.assignSvc.CreateManual(c.Request.Context(), &req)
	if err != nil {
		h.handleAssignError(c, err)
		return
	}

	response.Created(c, task)
}

// UpdateTask 移动 / 改派 / 互换 / 修改洗车类型
// PUT /api/v1/schedule/assign/update-task
func (h *AssignmentHandler) UpdateTask(c *gin.Context) {
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.assignSvc.UpdateTask(c.Request.Context(), &req)
	if err != nil {
		h.handleAssignError(c, err)
		return
	}

	response.OK(c, result)
}

// DeleteTask 删除单条任务
// DELETE /api/v1/schedule/assign/task/:taskId
func (h *AssignmentHandler) DeleteTask(c *gin.Context) {
	if err := h.assignSvc.DeleteTask(c.Request.Context(), c.Param("taskId")); err != nil {
		h.handleAssignError(c, err)
		return
	}

	response.OK(c, nil)
}

// ClearSchedule 清空排班
// DELETE /api/v1/schedule/assign?keep_locked=true
func (h *AssignmentHandler) ClearSchedule(c *gin.Context) {
	var req dto.ClearScheduleRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.assignSvc.ClearSchedule(c.Request.Context(), req.KeepLocked)
	if err != nil {
		h.handleAssignError(c, err)
		return
	}

	response.OK(c, result)
}

// CompleteTask 完成或取消任务
// POST /api/v1/schedule/assign/task/:taskId/complete
func (h *AssignmentHandler) CompleteTask(c *gin.Context) {
	var req dto.CompleteTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	record, err := h.assignSvc.CompleteTask(c.Request.Context(), c.Param("taskId"), &req)
	if err != nil {
		h.handleAssignError(c, err)
		return
	}

	response.Created(c, record)
}

// SyncNewCustomers 为新客户补排
// POST /api/v1/schedule/assign/sync-new-customers
func (h *AssignmentHandler) SyncNewCustomers(c *gin.Context) {
	var req dto.SyncNewCustomersRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	if req.WeekOffset < -maxWeekOffset || req.WeekOffset > maxWeekOffset {
		response.BadRequest(c, 10001, "周偏移超出范围")
		return
	}

	result, err := h.assignSvc.SyncNewCustomers(c.Request.Context(), &req)
	if err != nil {
		h.handleAssignError(c, err)
		return
	}

	response.OK(c, result)
}

// handleAssignError 统一处理排班分配模块业务错误
func (h *AssignmentHandler) handleAssignError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		response.NotFound(c, 20001, "排班任务不存在")
	case errors.Is(err, service.ErrTaskIDInvalid):
		response.BadRequest(c, 20002, "任务 ID 格式错误")
	case errors.Is(err, service.ErrCustomerNotFound):
		response.NotFound(c, 20003, "客户不存在")
	case errors.Is(err, service.ErrWorkerNotFound):
		response.NotFound(c, 20004, "洗车员不存在")
	case errors.Is(err, service.ErrWorkerRequired):
		response.BadRequest(c, 20005, "请指定洗车员")
	case errors.Is(err, service.ErrInvalidDay):
		response.BadRequest(c, 20006, "无效的星期（仅支持周一至周六）")
	case errors.Is(err, service.ErrInvalidTime):
		response.BadRequest(c, 20007, "无效的时间格式")
	case errors.Is(err, service.ErrWorkerSlotConflict):
		response.BadRequest(c, 20008, "该洗车员在此时段已安排其他客户")
	case errors.Is(err, service.ErrDuplicateTask):
		response.BadRequest(c, 20009, "该车辆在此时段已有锁定任务")
	case errors.Is(err, service.ErrNothingToUpdate):
		response.BadRequest(c, 20010, "未提供任何需要修改的字段")
	case errors.Is(err, service.ErrWeekOffsetRange):
		response.BadRequest(c, 10001, "周偏移超出范围")
	default:
		response.InternalError(c, err)
	}
}
