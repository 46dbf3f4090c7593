package repository

import (
	"context"

	"github.com/kfurusato/house-market-backend/internal/model"
	"gorm.io/gorm"
)

type OrderMessageRepository interface {
	Create(ctx context.Context, m *model.OrderMessage) error
	ListByOrder(ctx context.Context, orderID uint64) ([]model.OrderMessage, error)
	CountByOrder(ctx context.Context, orderID uint64) (int64, error)
}

type orderMessageRepository struct {
	db *gorm.DB
}

func NewOrderMessageRepository(db *gorm.DB) OrderMessageRepository {
	return &orderMessageRepository{db: db}
}

func (r *orderMessageRepository) Create(ctx context.Context, m *model.OrderMessage) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *orderMessageRepository) ListByOrder(ctx context.Context, orderID uint64) ([]model.OrderMessage, error) {
	var list []model.OrderMessage
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderMessageRepository) CountByOrder(ctx context.Context, orderID uint64) (int64, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.OrderMessage{}).
		Where("order_id = ?", orderID).
		Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}
