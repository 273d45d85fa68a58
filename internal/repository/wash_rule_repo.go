package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"washman/backend/internal/model"
)

// WashRuleRepository 洗车规则数据访问接口
type WashRuleRepository interface {
	List(ctx context.Context) ([]model.WashRule, error)
	GetByName(ctx context.Context, name string) (*model.WashRule, error)
	// Upsert 按名称新增或覆盖规则
	Upsert(ctx context.Context, rule *model.WashRule) error
}

type washRuleRepo struct {
	db *gorm.DB
}

func NewWashRuleRepo(db *gorm.DB) WashRuleRepository {
	return &washRuleRepo{db: db}
}

func (r *washRuleRepo) List(ctx context.Context) ([]model.WashRule, error) {
	var rules []model.WashRule
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rules).Error
	return rules, err
}

func (r *washRuleRepo) GetByName(ctx context.Context, name string) (*model.WashRule, error) {
	var rule model.WashRule
	if err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&rule).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *washRuleRepo) Upsert(ctx context.Context, rule *model.WashRule) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"single_car_pattern", "multi_car_settings", "bi_weekly_settings", "updated_at"}),
	}).Create(rule).Error
}
