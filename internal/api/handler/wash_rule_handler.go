package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"washman/backend/internal/dto"
	"washman/backend/internal/service"
	"washman/backend/pkg/response"
)

// WashRuleHandler 洗车规则模块 HTTP 处理器
type WashRuleHandler struct {
	ruleSvc service.WashRuleService
}

// NewWashRuleHandler 创建 WashRuleHandler
func NewWashRuleHandler(ruleSvc service.WashRuleService) *WashRuleHandler {
	return &WashRuleHandler{ruleSvc: ruleSvc}
}

// ListRules 获取洗车套餐规则
// GET /api/v1/wash-rules
func (h *WashRuleHandler) ListRules(c *gin.Context) {
	rules, err := h.ruleSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}

	response.OK(c, dto.NewListResponse(rules))
}

// UpsertRule 新增或覆盖套餐规则
// PUT /api/v1/wash-rules/:name
func (h *WashRuleHandler) UpsertRule(c *gin.Context) {
	var req dto.UpsertWashRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	rule, err := h.ruleSvc.Upsert(c.Request.Context(), c.Param("name"), &req)
	if err != nil {
		h.handleRuleError(c, err)
		return
	}

	response.OK(c, rule)
}

// handleRuleError 统一处理洗车规则模块业务错误
func (h *WashRuleHandler) handleRuleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWashRuleNameRequired):
		response.BadRequest(c, 21001, "套餐名称不能为空")
	case errors.Is(err, service.ErrWashRuleEmpty):
		response.BadRequest(c, 21002, "单车模式与多车配置至少填写一项")
	case errors.Is(err, service.ErrWashRuleInvalid):
		response.BadRequest(c, 21003, "多车配置格式错误")
	default:
		response.InternalError(c, err)
	}
}
