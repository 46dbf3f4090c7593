package repository

import (
	"context"

	"github.com/kfurusato/house-market-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReferralRepository interface {
	CreateIfAbsent(ctx context.Context, ref *model.Referral) (bool, error)
	FindByReferredUID(ctx context.Context, referredUID string) (*model.Referral, error)
}

type referralRepository struct {
	db *gorm.DB
}

func NewReferralRepository(db *gorm.DB) ReferralRepository {
	return &referralRepository{db: db}
}

// CreateIfAbsent inserts the referral unless the referred user already has
// one; returns whether a row was created.
func (r *referralRepository) CreateIfAbsent(ctx context.Context, ref *model.Referral) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "referred_uid"}},
		DoNothing: true,
	}).Create(ref)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *referralRepository) FindByReferredUID(ctx context.Context, referredUID string) (*model.Referral, error) {
	var ref model.Referral
	if err := r.db.WithContext(ctx).
		Where("referred_uid = ?", referredUID).
		First(&ref).Error; err != nil {
		return nil, err
	}
	return &ref, nil
}
