package repository

import (
	"context"

	"github.com/kfurusato/house-market-backend/internal/model"
	"gorm.io/gorm"
)

type EarningRepository interface {
	Create(ctx context.Context, e *model.Earning) error
	ListByUser(ctx context.Context, userUID string) ([]model.Earning, error)
	ListByOrder(ctx context.Context, orderID uint64) ([]model.Earning, error)
	SumByUser(ctx context.Context, userUID string) (int64, error)
}

type earningRepository struct {
	db *gorm.DB
}

func NewEarningRepository(db *gorm.DB) EarningRepository {
	return &earningRepository{db: db}
}

func (r *earningRepository) Create(ctx context.Context, e *model.Earning) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *earningRepository) ListByUser(ctx context.Context, userUID string) ([]model.Earning, error) {
	var list []model.Earning
	if err := r.db.WithContext(ctx).
		Where("user_uid = ?", userUID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *earningRepository) ListByOrder(ctx context.Context, orderID uint64) ([]model.Earning, error) {
	var list []model.Earning
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *earningRepository) SumByUser(ctx context.Context, userUID string) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.Earning{}).
		Where("user_uid = ? AND status <> ?", userUID, model.EarningStatusCancelled).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
