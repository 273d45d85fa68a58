package model

import "time"

// ScheduledTask 排班任务表，对应 scheduled_tasks
//
// IsLocked=true 的任务由人工创建或调整，重新排班时原样保留；
// 未锁定的任务每次排班全部重新生成。
type ScheduledTask struct {
	TaskID          string    `gorm:"type:varchar(36);primaryKey"  json:"task_id"`
	CustomerID      string    `gorm:"type:varchar(50);not null"    json:"customer_id"`
	CustomerName    string    `gorm:"type:varchar(200);not null"   json:"customer_name"`
	Villa           string    `gorm:"type:varchar(100);not null"   json:"villa"`
	Day             string    `gorm:"type:varchar(10);not null"    json:"day"`
	AppointmentDate string    `gorm:"type:varchar(20);not null"    json:"appointment_date"` // DD-MMM-YYYY
	Time            string    `gorm:"column:time;type:varchar(20)" json:"time"`
	CarPlate        string    `gorm:"type:varchar(50);not null"    json:"car_plate"`
	WashType        string    `gorm:"type:varchar(10);not null"    json:"wash_type"` // EXT | INT
	PackageType     string    `gorm:"type:varchar(100);not null"   json:"package_type"`
	WorkerID        string    `gorm:"type:varchar(50);not null"    json:"worker_id"`
	WorkerName      string    `gorm:"type:varchar(100);not null"   json:"worker_name"`
	IsLocked        bool      `gorm:"not null"                     json:"is_locked"`
	ScheduleDate    time.Time `gorm:"not null"                     json:"schedule_date"` // 最近一次写入时间
	Timestamps
}

// TableName 指定表名
func (ScheduledTask) TableName() string { return "scheduled_tasks" }

// WorkerKey 识别洗车员：优先 WorkerID，缺失时使用姓名
func (t *ScheduledTask) WorkerKey() string {
	if t.WorkerID != "" {
		return t.WorkerID
	}
	return t.WorkerName
}

// HasWorker 是否已分配洗车员
func (t *ScheduledTask) HasWorker() bool {
	return t.WorkerKey() != ""
}

// ClearWorker 清空洗车员字段，留待下一次排班补齐
func (t *ScheduledTask) ClearWorker() {
	t.WorkerID = ""
	t.WorkerName = ""
}
