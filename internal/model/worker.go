package model

import "strings"

// Worker 洗车员表，对应 workers
type Worker struct {
	WorkerID string `gorm:"type:varchar(50);primaryKey" json:"worker_id"`
	Name     string `gorm:"type:varchar(100);not null"  json:"name"`
	Phone    string `gorm:"type:varchar(50);not null"   json:"phone,omitempty"`
	Status   string `gorm:"type:varchar(20);not null"   json:"status"` // Active | Inactive
	Timestamps
}

// TableName 指定表名
func (Worker) TableName() string { return "workers" }

// IsActive 是否参与排班
func (w *Worker) IsActive() bool {
	return strings.EqualFold(strings.TrimSpace(w.Status), "Active")
}
