package repository

import (
	"context"

	"gorm.io/gorm"

	"washman/backend/internal/model"
)

// CustomerRepository 客户数据访问接口
type CustomerRepository interface {
	List(ctx context.Context) ([]model.Customer, error)
	GetByID(ctx context.Context, id string) (*model.Customer, error)
}

type customerRepo struct {
	db *gorm.DB
}

func NewCustomerRepo(db *gorm.DB) CustomerRepository {
	return &customerRepo{db: db}
}

func (r *customerRepo) List(ctx context.Context) ([]model.Customer, error) {
	var customers []model.Customer
	err := r.db.WithContext(ctx).Order("customer_id ASC").Find(&customers).Error
	return customers, err
}

func (r *customerRepo) GetByID(ctx context.Context, id string) (*model.Customer, error) {
	var customer model.Customer
	if err := r.db.WithContext(ctx).Where("customer_id = ?", id).First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}
