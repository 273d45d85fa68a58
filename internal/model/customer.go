package model

import "strings"

// 客户状态
const (
	CustomerStatusActive   = "Active"
	CustomerStatusBooked   = "Booked"
	CustomerStatusInactive = "Inactive"
)

// Customer 客户合同表，对应 customers
//
// Days/Time/Notes 保留前端录入的原始文本，由 scheduling 包解析：
//   - Days:  "Mon-Wed-Fri"
//   - Time:  "9:00 AM" | "9:00 AM & 2:00 PM" | "Mon@9:00 AM, Thu@2:00 PM" | "9:00 AM Camry, 11:00 AM Patrol"
//   - Notes: 任意文本，其中的 "Wed@11:00 AM" / "Saturday 10:00 AM" 视为单日覆盖
type Customer struct {
	CustomerID     string `gorm:"type:varchar(50);primaryKey"        json:"customer_id"`
	Name           string `gorm:"type:varchar(200);not null"         json:"name"`
	Villa          string `gorm:"type:varchar(100);not null"         json:"villa"`
	Phone          string `gorm:"type:varchar(50);not null"          json:"phone,omitempty"`
	Days           string `gorm:"type:varchar(100);not null"         json:"days"`
	Time           string `gorm:"column:time;type:varchar(255)"      json:"time"`
	Notes          string `gorm:"type:text;not null"                 json:"notes,omitempty"`
	CarPlates      string `gorm:"type:varchar(255);not null"         json:"car_plates"`
	WashmanPackage string `gorm:"column:washman_package;type:varchar(100)" json:"washman_package"`
	Status         string `gorm:"type:varchar(20);not null"          json:"status"` // Active | Booked | Inactive
	StartDate      string `gorm:"type:varchar(20);not null"          json:"start_date,omitempty"`
	Timestamps
}

// TableName 指定表名
func (Customer) TableName() string { return "customers" }

// Plates 拆分车牌列表；未登记车牌的客户视为一辆空车牌车辆
func (c *Customer) Plates() []string {
	var plates []string
	for _, p := range strings.Split(c.CarPlates, ",") {
		if p = strings.TrimSpace(p); p != "" {
			plates = append(plates, p)
		}
	}
	if len(plates) == 0 {
		return []string{""}
	}
	return plates
}

// IsSchedulable Active/Booked 且有编号的客户才参与排班
func (c *Customer) IsSchedulable() bool {
	if strings.TrimSpace(c.CustomerID) == "" {
		return false
	}
	status := strings.TrimSpace(c.Status)
	return strings.EqualFold(status, CustomerStatusActive) || strings.EqualFold(status, CustomerStatusBooked)
}
