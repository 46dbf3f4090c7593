package service

import (
	"context"
	"errors"

	"github.com/kfurusato/house-market-backend/internal/model"
	"github.com/kfurusato/house-market-backend/internal/repository"
	"gorm.io/gorm"
)

type HouseService interface {
	Create(ctx context.Context, ownerUID, title, description string, price int64) (*model.House, error)
	Get(ctx context.Context, id uint64) (*model.House, error)
	ListAvailable(ctx context.Context) ([]model.House, error)
	ListMine(ctx context.Context, ownerUID string) ([]model.House, error)
}

type houseService struct {
	repo repository.HouseRepository
}

func NewHouseService(repo repository.HouseRepository) HouseService {
	return &houseService{repo: repo}
}

func (s *houseService) Create(ctx context.Context, ownerUID, title, description string, price int64) (*model.House, error) {
	if ownerUID == "" {
		return nil, errors.New("owner is required")
	}
	if title == "" {
		return nil, errors.New("title is required")
	}
	if price <= 0 {
		return nil, errors.New("price must be positive")
	}
	h := &model.House{
		OwnerUID:    ownerUID,
		Title:       title,
		Description: description,
		Price:       price,
		Status:      model.HouseStatusAvailable,
	}
	if err := s.repo.Create(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *houseService) Get(ctx context.Context, id uint64) (*model.House, error) {
	h, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return h, nil
}

func (s *houseService) ListAvailable(ctx context.Context) ([]model.House, error) {
	return s.repo.ListByStatus(ctx, model.HouseStatusAvailable)
}

func (s *houseService) ListMine(ctx context.Context, ownerUID string) ([]model.House, error) {
	if ownerUID == "" {
		return nil, errors.New("owner is required")
	}
	return s.repo.ListByOwner(ctx, ownerUID)
}
