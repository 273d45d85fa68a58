package repository

import (
	"context"

	"gorm.io/gorm"

	"washman/backend/internal/model"
)

// ScheduledTaskRepository 排班任务数据访问接口
type ScheduledTaskRepository interface {
	List(ctx context.Context) ([]model.ScheduledTask, error)
	ListByWorker(ctx context.Context, workerID string) ([]model.ScheduledTask, error)
	GetByID(ctx context.Context, id string) (*model.ScheduledTask, error)
	// ReplaceAll 整表替换：删除全部任务后批量写入，任一步失败整体回滚
	ReplaceAll(ctx context.Context, tasks []model.ScheduledTask) error
	Delete(ctx context.Context, id string) error
}

type scheduledTaskRepo struct {
	db *gorm.DB
}

func NewScheduledTaskRepo(db *gorm.DB) ScheduledTaskRepository {
	return &scheduledTaskRepo{db: db}
}

func (r *scheduledTaskRepo) List(ctx context.Context) ([]model.ScheduledTask, error) {
	var tasks []model.ScheduledTask
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&tasks).Error
	return tasks, err
}

func (r *scheduledTaskRepo) ListByWorker(ctx context.Context, workerID string) ([]model.ScheduledTask, error) {
	var tasks []model.ScheduledTask
	err := r.db.WithContext(ctx).
		Where("worker_id = ?", workerID).
		Order("created_at ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *scheduledTaskRepo) GetByID(ctx context.Context, id string) (*model.ScheduledTask, error) {
	var task model.ScheduledTask
	if err := r.db.WithContext(ctx).Where("task_id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *scheduledTaskRepo) ReplaceAll(ctx context.Context, tasks []model.ScheduledTask) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.ScheduledTask{}).Error; err != nil {
			return err
		}
		if len(tasks) == 0 {
			return nil
		}
		return tx.CreateInBatches(&tasks, 200).Error
	})
}

func (r *scheduledTaskRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("task_id = ?", id).Delete(&model.ScheduledTask{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
