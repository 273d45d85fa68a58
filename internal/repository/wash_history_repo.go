package repository

import (
	"context"

	"gorm.io/gorm"

	"washman/backend/internal/model"
)

// WashHistoryRepository 洗车历史数据访问接口（只追加）
type WashHistoryRepository interface {
	List(ctx context.Context) ([]model.WashHistory, error)
	ListByCustomer(ctx context.Context, customerID string) ([]model.WashHistory, error)
	Create(ctx context.Context, record *model.WashHistory) error
}

type washHistoryRepo struct {
	db *gorm.DB
}

func NewWashHistoryRepo(db *gorm.DB) WashHistoryRepository {
	return &washHistoryRepo{db: db}
}

func (r *washHistoryRepo) List(ctx context.Context) ([]model.WashHistory, error) {
	var records []model.WashHistory
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&records).Error
	return records, err
}

func (r *washHistoryRepo) ListByCustomer(ctx context.Context, customerID string) ([]model.WashHistory, error) {
	var records []model.WashHistory
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at ASC").
		Find(&records).Error
	return records, err
}

func (r *washHistoryRepo) Create(ctx context.Context, record *model.WashHistory) error {
	return r.db.WithContext(ctx).Create(record).Error
}
