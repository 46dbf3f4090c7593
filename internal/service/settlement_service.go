package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/kfurusato/house-market-backend/internal/model"
	"github.com/kfurusato/house-market-backend/internal/repository"
	"gorm.io/gorm"
)

// DefaultCommissionRate is the platform referral rate in percent.
const DefaultCommissionRate = 10.00

type SettlementService interface {
	// SettleOrder runs inside the transaction that completes an order. It
	// posts the seller's house_sale earning and, when the buyer was
	// referred, creates the referral commission plus the referrer's
	// earning. Safe to call twice for the same order: the commission
	// insert is idempotent and earnings are only posted alongside a newly
	// created commission / the completing transition.
	SettleOrder(ctx context.Context, tx *gorm.DB, order *model.Order, now time.Time) ([]model.Earning, error)
	RegisterReferral(ctx context.Context, referrerUID, referredUID string) (*model.Referral, error)
	ListEarnings(ctx context.Context, userUID string) ([]model.Earning, int64, error)
	ListCommissions(ctx context.Context, referrerUID string) ([]model.ReferralCommission, error)
}

type settlementService struct {
	db *gorm.DB
}

func NewSettlementService(db *gorm.DB) SettlementService {
	return &settlementService{db: db}
}

func CommissionAmount(price int64, rate float64) int64 {
	return int64(math.Round(float64(price) * rate / 100))
}

func (s *settlementService) SettleOrder(ctx context.Context, tx *gorm.DB, order *model.Order, now time.Time) ([]model.Earning, error) {
	earnings := repository.NewEarningRepository(tx)

	posted := make([]model.Earning, 0, 2)
	sale := model.Earning{
		UserUID:  order.SellerUID,
		Type:     model.EarningTypeHouseSale,
		Amount:   order.Price,
		OrderID:  order.ID,
		HouseID:  order.HouseID,
		Status:   model.EarningStatusPending,
		EarnedAt: now,
	}
	if err := earnings.Create(ctx, &sale); err != nil {
		return nil, err
	}
	posted = append(posted, sale)

	commission, err := s.settleReferral(ctx, tx, order, now)
	if err != nil {
		return nil, err
	}
	if commission != nil {
		reward := model.Earning{
			UserUID:  commission.ReferrerUID,
			Type:     model.EarningTypeReferralCommission,
			Amount:   commission.CommissionAmount,
			OrderID:  order.ID,
			HouseID:  order.HouseID,
			Status:   model.EarningStatusPending,
			EarnedAt: now,
		}
		if err := earnings.Create(ctx, &reward); err != nil {
			return nil, err
		}
		posted = append(posted, reward)
	}
	return posted, nil
}

// settleReferral returns the commission only when this call created it; an
// existing row for the same (referrer, order) makes it a no-op.
func (s *settlementService) settleReferral(ctx context.Context, tx *gorm.DB, order *model.Order, now time.Time) (*model.ReferralCommission, error) {
	referrals := repository.NewReferralRepository(tx)
	ref, err := referrals.FindByReferredUID(ctx, order.BuyerUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	rc := &model.ReferralCommission{
		ReferrerUID:      ref.ReferrerUID,
		ReferredUID:      order.BuyerUID,
		OrderID:          order.ID,
		OrderAmount:      order.Price,
		CommissionRate:   DefaultCommissionRate,
		CommissionAmount: CommissionAmount(order.Price, DefaultCommissionRate),
		Status:           model.CommissionStatusPending,
		EarnedAt:         now,
	}
	created, err := repository.NewReferralCommissionRepository(tx).CreateIfAbsent(ctx, rc)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, nil
	}
	return rc, nil
}

func (s *settlementService) RegisterReferral(ctx context.Context, referrerUID, referredUID string) (*model.Referral, error) {
	if referrerUID == "" || referredUID == "" {
		return nil, errors.New("referrer and referred user are required")
	}
	if referrerUID == referredUID {
		return nil, errors.New("cannot refer yourself")
	}
	ref := &model.Referral{ReferrerUID: referrerUID, ReferredUID: referredUID}
	created, err := repository.NewReferralRepository(s.db).CreateIfAbsent(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, ErrAlreadyReferred
	}
	return ref, nil
}

func (s *settlementService) ListEarnings(ctx context.Context, userUID string) ([]model.Earning, int64, error) {
	repo := repository.NewEarningRepository(s.db)
	list, err := repo.ListByUser(ctx, userUID)
	if err != nil {
		return nil, 0, err
	}
	total, err := repo.SumByUser(ctx, userUID)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (s *settlementService) ListCommissions(ctx context.Context, referrerUID string) ([]model.ReferralCommission, error) {
	return repository.NewReferralCommissionRepository(s.db).ListByReferrer(ctx, referrerUID)
}
