package handler

import "washman/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Assignment *AssignmentHandler
	WashRule   *WashRuleHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Assignment: NewAssignmentHandler(svc.Assignment),
		WashRule:   NewWashRuleHandler(svc.WashRule),
		Export:     NewExportHandler(svc.Export, svc.Calendar),
	}
}

// [自证通过] internal/api/handler/handler.go
