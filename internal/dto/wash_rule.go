package dto

// ── 洗车规则模块 DTO ──

// BiWeeklySettings 双周设置
type BiWeeklySettings struct {
	Enabled bool `json:"enabled"`
}

// UpsertWashRuleRequest 新增/覆盖套餐规则（套餐名取自路径参数）
type UpsertWashRuleRequest struct {
	SingleCarPattern []string                     `json:"single_car_pattern" binding:"omitempty,dive,oneof=EXT INT"`
	MultiCarSettings map[string]map[string]string `json:"multi_car_settings"`
	BiWeeklySettings BiWeeklySettings             `json:"bi_weekly_settings"`
}

// WashRuleResponse 套餐规则
type WashRuleResponse struct {
	Name             string                       `json:"name"`
	SingleCarPattern []string                     `json:"single_car_pattern"`
	MultiCarSettings map[string]map[string]string `json:"multi_car_settings"`
	BiWeeklySettings BiWeeklySettings             `json:"bi_weekly_settings"`
	IsDefault        bool                         `json:"is_default"`
	UpdatedAt        string                       `json:"updated_at,omitempty"`
}
