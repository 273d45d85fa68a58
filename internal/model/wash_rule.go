package model

import "gorm.io/datatypes"

// WashRule 洗车套餐规则表，对应 wash_rules
//
//	single_car_pattern: ["EXT","EXT","INT"]
//	multi_car_settings: {"visit1": {"car1": "INT", "car2": "EXT"}, ...}
//	bi_weekly_settings: {"enabled": true}
type WashRule struct {
	Name             string         `gorm:"type:varchar(100);primaryKey" json:"name"`
	SingleCarPattern datatypes.JSON `gorm:"type:jsonb;not null"          json:"single_car_pattern"`
	MultiCarSettings datatypes.JSON `gorm:"type:jsonb;not null"          json:"multi_car_settings"`
	BiWeeklySettings datatypes.JSON `gorm:"type:jsonb;not null"          json:"bi_weekly_settings"`
	Timestamps
}

// TableName 指定表名
func (WashRule) TableName() string { return "wash_rules" }
