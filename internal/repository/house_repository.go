package repository

import (
	"context"

	"github.com/kfurusato/house-market-backend/internal/model"
	"gorm.io/gorm"
)

type HouseRepository interface {
	Create(ctx context.Context, h *model.House) error
	FindByID(ctx context.Context, id uint64) (*model.House, error)
	UpdateStatus(ctx context.Context, id uint64, status model.HouseStatus) error
	UpdateStatusFrom(ctx context.Context, id uint64, from, to model.HouseStatus) (int64, error)
	ListByStatus(ctx context.Context, status model.HouseStatus) ([]model.House, error)
	ListByOwner(ctx context.Context, ownerUID string) ([]model.House, error)
}

type houseRepository struct {
	db *gorm.DB
}

func NewHouseRepository(db *gorm.DB) HouseRepository {
	return &houseRepository{db: db}
}

func (r *houseRepository) Create(ctx context.Context, h *model.House) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *houseRepository) FindByID(ctx context.Context, id uint64) (*model.House, error) {
	var h model.House
	if err := r.db.WithContext(ctx).First(&h, id).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *houseRepository) UpdateStatus(ctx context.Context, id uint64, status model.HouseStatus) error {
	return r.db.WithContext(ctx).
		Model(&model.House{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// UpdateStatusFrom only applies the change when the row is still in the
// expected source status; the caller checks the affected-row count.
func (r *houseRepository) UpdateStatusFrom(ctx context.Context, id uint64, from, to model.HouseStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.House{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *houseRepository) ListByStatus(ctx context.Context, status model.HouseStatus) ([]model.House, error) {
	var list []model.House
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *houseRepository) ListByOwner(ctx context.Context, ownerUID string) ([]model.House, error) {
	var list []model.House
	if err := r.db.WithContext(ctx).
		Where("owner_uid = ?", ownerUID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
