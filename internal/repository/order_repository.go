package repository

import (
	"context"
	"time"

	"github.com/kfurusato/house-market-backend/internal/model"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	FindByID(ctx context.Context, id uint64) (*model.Order, error)
	UpdateStatusFrom(ctx context.Context, id uint64, from model.OrderStatus, updates map[string]interface{}) (int64, error)
	ListByBuyer(ctx context.Context, buyerUID string) ([]model.Order, error)
	ListBySeller(ctx context.Context, sellerUID string) ([]model.Order, error)
	ListAutoConfirmDue(ctx context.Context, now time.Time) ([]model.Order, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, o *model.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepository) FindByID(ctx context.Context, id uint64) (*model.Order, error) {
	var o model.Order
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatusFrom writes updates only while the order still sits in the
// expected source status. A zero affected-row count means a concurrent
// transition won the race.
func (r *orderRepository) UpdateStatusFrom(ctx context.Context, id uint64, from model.OrderStatus, updates map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *orderRepository) ListByBuyer(ctx context.Context, buyerUID string) ([]model.Order, error) {
	var list []model.Order
	if err := r.db.WithContext(ctx).
		Where("buyer_uid = ?", buyerUID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepository) ListBySeller(ctx context.Context, sellerUID string) ([]model.Order, error) {
	var list []model.Order
	if err := r.db.WithContext(ctx).
		Where("seller_uid = ?", sellerUID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepository) ListAutoConfirmDue(ctx context.Context, now time.Time) ([]model.Order, error) {
	var list []model.Order
	if err := r.db.WithContext(ctx).
		Where("status = ? AND auto_confirm_at IS NOT NULL AND auto_confirm_at <= ?", model.OrderStatusDelivered, now).
		Order("auto_confirm_at ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
