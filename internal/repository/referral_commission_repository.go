package repository

import (
	"context"

	"github.com/kfurusato/house-market-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReferralCommissionRepository interface {
	CreateIfAbsent(ctx context.Context, rc *model.ReferralCommission) (bool, error)
	FindByReferrerAndOrder(ctx context.Context, referrerUID string, orderID uint64) (*model.ReferralCommission, error)
	ListByReferrer(ctx context.Context, referrerUID string) ([]model.ReferralCommission, error)
}

type referralCommissionRepository struct {
	db *gorm.DB
}

func NewReferralCommissionRepository(db *gorm.DB) ReferralCommissionRepository {
	return &referralCommissionRepository{db: db}
}

// CreateIfAbsent relies on the (referrer_uid, order_id) unique index: a
// duplicate insert affects zero rows and is not an error.
func (r *referralCommissionRepository) CreateIfAbsent(ctx context.Context, rc *model.ReferralCommission) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "referrer_uid"}, {Name: "order_id"}},
		DoNothing: true,
	}).Create(rc)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *referralCommissionRepository) FindByReferrerAndOrder(ctx context.Context, referrerUID string, orderID uint64) (*model.ReferralCommission, error) {
	var rc model.ReferralCommission
	if err := r.db.WithContext(ctx).
		Where("referrer_uid = ? AND order_id = ?", referrerUID, orderID).
		First(&rc).Error; err != nil {
		return nil, err
	}
	return &rc, nil
}

func (r *referralCommissionRepository) ListByReferrer(ctx context.Context, referrerUID string) ([]model.ReferralCommission, error) {
	var list []model.ReferralCommission
	if err := r.db.WithContext(ctx).
		Where("referrer_uid = ?", referrerUID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
