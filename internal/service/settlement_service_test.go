package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kfurusato/house-market-backend/internal/model"
	"github.com/kfurusato/house-market-backend/internal/repository"
)

func TestCommissionAmount(t *testing.T) {
	tests := []struct {
		name  string
		price int64
		rate  float64
		want  int64
	}{
		{"default rate", 100000, 10.00, 10000},
		{"rounds up", 105, 10.00, 11},
		{"rounds down", 104, 10.00, 10},
		{"zero price", 0, 10.00, 0},
		{"fractional rate", 33333, 7.50, 2500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CommissionAmount(tt.price, tt.rate); got != tt.want {
				t.Fatalf("got=%d want=%d", got, tt.want)
			}
		})
	}
}

func TestSettleReferralIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewSettlementService(db).(*settlementService)

	if _, err := svc.RegisterReferral(ctx, testReferrer, testBuyer); err != nil {
		t.Fatalf("register referral: %v", err)
	}
	order := &model.Order{
		HouseID:   1,
		BuyerUID:  testBuyer,
		SellerUID: testSeller,
		Price:     200000,
		Status:    model.OrderStatusCompleted,
	}
	if err := repository.NewOrderRepository(db).Create(ctx, order); err != nil {
		t.Fatalf("create order: %v", err)
	}
	now := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)

	first, err := svc.settleReferral(ctx, db, order, now)
	if err != nil {
		t.Fatalf("first settle: %v", err)
	}
	if first == nil {
		t.Fatal("first settle returned nil commission")
	}
	if first.CommissionAmount != 20000 || first.CommissionRate != DefaultCommissionRate {
		t.Fatalf("commission=%+v", first)
	}

	second, err := svc.settleReferral(ctx, db, order, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("second settle: %v", err)
	}
	if second != nil {
		t.Fatalf("second settle created a commission: %+v", second)
	}

	list, err := repository.NewReferralCommissionRepository(db).ListByReferrer(ctx, testReferrer)
	if err != nil {
		t.Fatalf("list commissions: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("commissions=%d want 1", len(list))
	}
}

func TestSettleReferralNoReferrer(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewSettlementService(db).(*settlementService)

	order := &model.Order{
		HouseID:   1,
		BuyerUID:  testBuyer,
		SellerUID: testSeller,
		Price:     200000,
		Status:    model.OrderStatusCompleted,
	}
	if err := repository.NewOrderRepository(db).Create(ctx, order); err != nil {
		t.Fatalf("create order: %v", err)
	}
	rc, err := svc.settleReferral(ctx, db, order, time.Now())
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if rc != nil {
		t.Fatalf("commission created without referrer: %+v", rc)
	}
}

func TestSettleOrderPostsSellerEarning(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewSettlementService(db)

	order := &model.Order{
		HouseID:   7,
		BuyerUID:  testBuyer,
		SellerUID: testSeller,
		Price:     150000,
		Status:    model.OrderStatusCompleted,
	}
	if err := repository.NewOrderRepository(db).Create(ctx, order); err != nil {
		t.Fatalf("create order: %v", err)
	}
	now := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)

	posted, err := svc.SettleOrder(ctx, db, order, now)
	if err != nil {
		t.Fatalf("settle order: %v", err)
	}
	if len(posted) != 1 {
		t.Fatalf("posted=%d want 1", len(posted))
	}
	e := posted[0]
	if e.Type != model.EarningTypeHouseSale || e.UserUID != testSeller || e.Amount != 150000 || e.HouseID != 7 {
		t.Fatalf("earning=%+v", e)
	}
	if e.Status != model.EarningStatusPending || !e.EarnedAt.Equal(now) {
		t.Fatalf("earning status/earned_at=%+v", e)
	}
}

func TestRegisterReferral(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewSettlementService(db)

	if _, err := svc.RegisterReferral(ctx, testReferrer, testBuyer); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.RegisterReferral(ctx, "someone-else", testBuyer); !errors.Is(err, ErrAlreadyReferred) {
		t.Fatalf("duplicate register err=%v want ErrAlreadyReferred", err)
	}
	if _, err := svc.RegisterReferral(ctx, testBuyer, testBuyer); err == nil {
		t.Fatal("expected error for self referral")
	}
	if _, err := svc.RegisterReferral(ctx, "", testBuyer); err == nil {
		t.Fatal("expected error for empty referrer")
	}
}

func TestEarningsTotalExcludesCancelled(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewSettlementService(db)
	earnings := repository.NewEarningRepository(db)

	now := time.Now()
	rows := []model.Earning{
		{UserUID: testSeller, Type: model.EarningTypeHouseSale, Amount: 1000, OrderID: 1, Status: model.EarningStatusPending, EarnedAt: now},
		{UserUID: testSeller, Type: model.EarningTypeHouseSale, Amount: 2000, OrderID: 2, Status: model.EarningStatusPaid, EarnedAt: now},
		{UserUID: testSeller, Type: model.EarningTypeHouseSale, Amount: 4000, OrderID: 3, Status: model.EarningStatusCancelled, EarnedAt: now},
	}
	for i := range rows {
		if err := earnings.Create(ctx, &rows[i]); err != nil {
			t.Fatalf("create earning: %v", err)
		}
	}
	list, total, err := svc.ListEarnings(ctx, testSeller)
	if err != nil {
		t.Fatalf("list earnings: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("earnings=%d want 3", len(list))
	}
	if total != 3000 {
		t.Fatalf("total=%d want 3000", total)
	}
}
