package dto

// ── 排班分配模块 DTO ──

// AssignWeekRequest 重新生成某周排班
type AssignWeekRequest struct {
	ShowAllSlots bool `json:"show_all_slots"` // 容量规划视图：忽略已完成/已取消与开始日期
}

// ManualTaskRequest 手动新增锁定任务
type ManualTaskRequest struct {
	CustomerID string `json:"customer_id" binding:"required"`
	Day        string `json:"day"         binding:"required"`
	Time       string `json:"time"        binding:"required"`
	CarPlate   string `json:"car_plate"`
	WashType   string `json:"wash_type"   binding:"omitempty,oneof=EXT INT"`
	WorkerID   string `json:"worker_id"`
	WorkerName string `json:"worker_name"`
	WeekOffset int    `json:"week_offset"`
}

// UpdateTaskRequest 拖拽移动 / 改派 / 与目标槽位任务互换 / 仅修改洗车类型
// 未提供的字段保持原值
type UpdateTaskRequest struct {
	TaskID   string  `json:"task_id"   binding:"required"`
	Day      *string `json:"day"`
	Time     *string `json:"time"`
	WorkerID *string `json:"worker_id"`
	WashType *string `json:"wash_type" binding:"omitempty,oneof=EXT INT"`
}

// CompleteTaskRequest 完成或取消任务（写入洗车历史）
type CompleteTaskRequest struct {
	Status            string `json:"status"              binding:"required,oneof=Completed Cancelled"`
	WashTypePerformed string `json:"wash_type_performed" binding:"omitempty,oneof=EXT INT"`
}

// SyncNewCustomersRequest 为新客户补排
type SyncNewCustomersRequest struct {
	WeekOffset int `json:"week_offset"`
}

// ClearScheduleRequest 清空排班查询参数
type ClearScheduleRequest struct {
	KeepLocked bool `form:"keep_locked"`
}

// ExportScheduleRequest 导出查询参数
type ExportScheduleRequest struct {
	WeekOffset int `form:"week_offset"`
}

// ── 响应 ──

// TaskResponse 排班任务
type TaskResponse struct {
	TaskID          string `json:"task_id"`
	CustomerID      string `json:"customer_id"`
	CustomerName    string `json:"customer_name"`
	Villa           string `json:"villa"`
	Day             string `json:"day"`
	AppointmentDate string `json:"appointment_date"`
	Time            string `json:"time"`
	CarPlate        string `json:"car_plate"`
	WashType        string `json:"wash_type"`
	PackageType     string `json:"package_type"`
	WorkerID        string `json:"worker_id"`
	WorkerName      string `json:"worker_name"`
	IsLocked        bool   `json:"is_locked"`
	ScheduleDate    string `json:"schedule_date"`
}

// AppointmentBrief 未能分配的预约
type AppointmentBrief struct {
	CustomerID      string `json:"customer_id"`
	CustomerName    string `json:"customer_name"`
	Villa           string `json:"villa"`
	Day             string `json:"day"`
	AppointmentDate string `json:"appointment_date"`
	Time            string `json:"time"`
	CarPlate        string `json:"car_plate"`
	WashType        string `json:"wash_type"`
}

// ConflictResponse 校验修复记录
type ConflictResponse struct {
	Kind           string `json:"kind"`
	SlotKey        string `json:"slot_key"`
	CustomerID     string `json:"customer_id"`
	CarPlate       string `json:"car_plate"`
	Worker         string `json:"worker,omitempty"`
	KeptTaskID     string `json:"kept_task_id,omitempty"`
	AffectedTaskID string `json:"affected_task_id,omitempty"`
	Message        string `json:"message"`
}

// ManualInputResponse 需要人工确认周期的客户
type ManualInputResponse struct {
	CustomerID   string `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	Villa        string `json:"villa"`
	PackageType  string `json:"package_type"`
	LastWashDate string `json:"last_wash_date,omitempty"`
	Reason       string `json:"reason"`
}

// AssignSummary 排班统计
type AssignSummary struct {
	Locked     int `json:"locked"`
	New        int `json:"new"`
	Completed  int `json:"completed"`
	Unassigned int `json:"unassigned"`
	Conflicts  int `json:"conflicts"`
	Total      int `json:"total"`
}

// AssignWeekResponse 重新排班结果
type AssignWeekResponse struct {
	WeekOffset          int                   `json:"week_offset"`
	WeekStart           string                `json:"week_start"`
	ShowAllSlots        bool                  `json:"show_all_slots"`
	Summary             AssignSummary         `json:"summary"`
	Assignments         []TaskResponse        `json:"assignments"`
	Unassigned          []AppointmentBrief    `json:"unassigned"`
	Conflicts           []ConflictResponse    `json:"conflicts"`
	ManualInputRequired []ManualInputResponse `json:"manual_input_required"`
}

// CurrentScheduleResponse 当前排班
type CurrentScheduleResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Total int            `json:"total"`
}

// UpdateTaskResponse 调整结果
type UpdateTaskResponse struct {
	Task      TaskResponse       `json:"task"`
	Swapped   *TaskResponse      `json:"swapped,omitempty"`
	Conflicts []ConflictResponse `json:"conflicts"`
}

// ClearScheduleResponse 清空结果
type ClearScheduleResponse struct {
	Removed int `json:"removed"`
	Kept    int `json:"kept"`
}

// HistoryResponse 洗车记录
type HistoryResponse struct {
	HistoryID         string `json:"history_id"`
	CustomerID        string `json:"customer_id"`
	CarPlate          string `json:"car_plate"`
	WashDate          string `json:"wash_date"`
	WashTypePerformed string `json:"wash_type_performed"`
	WorkerName        string `json:"worker_name"`
	Status            string `json:"status"`
}

// SyncNewCustomersResponse 补排结果
type SyncNewCustomersResponse struct {
	WeekOffset  int                `json:"week_offset"`
	Customers   []string           `json:"customers"`
	Added       int                `json:"added"`
	Assignments []TaskResponse     `json:"assignments"`
	Unassigned  []AppointmentBrief `json:"unassigned"`
}
