package repository

import (
	"context"

	"gorm.io/gorm"

	"washman/backend/internal/model"
)

// WorkerRepository 洗车员数据访问接口
type WorkerRepository interface {
	List(ctx context.Context) ([]model.Worker, error)
	ListActive(ctx context.Context) ([]model.Worker, error)
	GetByID(ctx context.Context, id string) (*model.Worker, error)
	GetByName(ctx context.Context, name string) (*model.Worker, error)
}

type workerRepo struct {
	db *gorm.DB
}

func NewWorkerRepo(db *gorm.DB) WorkerRepository {
	return &workerRepo{db: db}
}

func (r *workerRepo) List(ctx context.Context) ([]model.Worker, error) {
	var workers []model.Worker
	err := r.db.WithContext(ctx).Order("worker_id ASC").Find(&workers).Error
	return workers, err
}

func (r *workerRepo) ListActive(ctx context.Context) ([]model.Worker, error) {
	var workers []model.Worker
	err := r.db.WithContext(ctx).
		Where("LOWER(status) = ?", "active").
		Order("worker_id ASC").
		Find(&workers).Error
	return workers, err
}

func (r *workerRepo) GetByID(ctx context.Context, id string) (*model.Worker, error) {
	var worker model.Worker
	if err := r.db.WithContext(ctx).Where("worker_id = ?", id).First(&worker).Error; err != nil {
		return nil, err
	}
	return &worker, nil
}

func (r *workerRepo) GetByName(ctx context.Context, name string) (*model.Worker, error) {
	var worker model.Worker
	if err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&worker).Error; err != nil {
		return nil, err
	}
	return &worker, nil
}
