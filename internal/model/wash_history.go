package model

import (
	"strings"
	"time"
)

// 洗车记录状态
const (
	HistoryStatusCompleted = "Completed"
	HistoryStatusCancelled = "Cancelled"
)

// WashHistory 洗车历史表，对应 wash_history（写入后不可修改）
type WashHistory struct {
	HistoryID         string    `gorm:"type:varchar(50);primaryKey"                 json:"history_id"`
	CustomerID        string    `gorm:"type:varchar(50);not null;index"             json:"customer_id"`
	CarPlate          string    `gorm:"type:varchar(50);not null"                   json:"car_plate"`
	WashDate          string    `gorm:"type:varchar(20);not null"                   json:"wash_date"` // DD-MMM-YYYY
	WashTypePerformed string    `gorm:"column:wash_type_performed;type:varchar(20)" json:"wash_type_performed"`
	WorkerName        string    `gorm:"type:varchar(100);not null"                  json:"worker_name,omitempty"`
	Status            string    `gorm:"type:varchar(20);not null"                   json:"status"` // Completed | Cancelled
	CreatedAt         time.Time `gorm:"not null"                                    json:"created_at"`
}

// TableName 指定表名
func (WashHistory) TableName() string { return "wash_history" }

// IsCompleted 已完成
func (h *WashHistory) IsCompleted() bool {
	return strings.EqualFold(strings.TrimSpace(h.Status), HistoryStatusCompleted)
}

// IsClosed 已完成或已取消（本周不再生成该预约）
func (h *WashHistory) IsClosed() bool {
	return h.IsCompleted() || strings.EqualFold(strings.TrimSpace(h.Status), HistoryStatusCancelled)
}

// IncludedInterior 本次是否做了内饰（"INT"、"EXT+INT" 等写法均算）
func (h *WashHistory) IncludedInterior() bool {
	return strings.Contains(strings.ToUpper(h.WashTypePerformed), "INT")
}

// Date 解析洗车日期
func (h *WashHistory) Date() (time.Time, bool) {
	return ParseDate(h.WashDate)
}
