package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/kfurusato/house-market-backend/internal/model"
	"github.com/kfurusato/house-market-backend/internal/repository"
	"gorm.io/gorm"
)

const (
	testSeller   = "seller-1"
	testBuyer    = "buyer-1"
	testReferrer = "referrer-1"
	testStranger = "stranger-1"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&model.House{},
		&model.Order{},
		&model.OrderMessage{},
		&model.Referral{},
		&model.ReferralCommission{},
		&model.Earning{},
		&model.Notification{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

type testEnv struct {
	db     *gorm.DB
	orders OrderService
	settle SettlementService
	clock  time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	env := &testEnv{
		db:     db,
		settle: NewSettlementService(db),
		clock:  time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	notify := NewNotificationService(repository.NewNotificationRepository(db))
	env.orders = NewOrderService(db, env.settle, notify, 24*time.Hour, func() time.Time { return env.clock })
	return env
}

func (env *testEnv) advance(d time.Duration) {
	env.clock = env.clock.Add(d)
}

func (env *testEnv) createHouse(t *testing.T, price int64) *model.House {
	t.Helper()
	h := &model.House{
		OwnerUID: testSeller,
		Title:    "test house",
		Price:    price,
		Status:   model.HouseStatusAvailable,
	}
	if err := repository.NewHouseRepository(env.db).Create(context.Background(), h); err != nil {
		t.Fatalf("create house: %v", err)
	}
	return h
}

// orderAt drives a fresh order to the wanted status through real transitions.
func (env *testEnv) orderAt(t *testing.T, status model.OrderStatus) *model.Order {
	t.Helper()
	ctx := context.Background()
	h := env.createHouse(t, 100000)
	o, err := env.orders.PurchaseHouse(ctx, h.ID, testBuyer)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	steps := []struct {
		action OrderAction
		actor  string
		until  model.OrderStatus
	}{
		{ActionConfirm, testSeller, model.OrderStatusConfirmed},
		{ActionShip, testSeller, model.OrderStatusDelivering},
		{ActionReceive, testBuyer, model.OrderStatusDelivered},
		{ActionComplete, testBuyer, model.OrderStatusCompleted},
	}
	if o.Status == status {
		return o
	}
	for _, step := range steps {
		env.advance(time.Hour)
		o, err = env.orders.Transition(ctx, o.ID, step.action, step.actor, TransitionPayload{})
		if err != nil {
			t.Fatalf("transition %s: %v", step.action, err)
		}
		if o.Status == status {
			return o
		}
	}
	t.Fatalf("could not reach status %s", status)
	return nil
}

func (env *testEnv) reload(t *testing.T, id uint64) *model.Order {
	t.Helper()
	o, err := repository.NewOrderRepository(env.db).FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("reload order: %v", err)
	}
	return o
}

func (env *testEnv) messageCount(t *testing.T, orderID uint64) int64 {
	t.Helper()
	cnt, err := repository.NewOrderMessageRepository(env.db).CountByOrder(context.Background(), orderID)
	if err != nil {
		t.Fatalf("count messages: %v", err)
	}
	return cnt
}

func TestPurchaseHouse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	h := env.createHouse(t, 250000)

	o, err := env.orders.PurchaseHouse(ctx, h.ID, testBuyer)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if o.Status != model.OrderStatusPending {
		t.Fatalf("status=%s want pending", o.Status)
	}
	if o.Price != 250000 {
		t.Fatalf("price=%d want 250000", o.Price)
	}
	house, err := repository.NewHouseRepository(env.db).FindByID(ctx, h.ID)
	if err != nil {
		t.Fatalf("reload house: %v", err)
	}
	if house.Status != model.HouseStatusPending {
		t.Fatalf("house status=%s want pending", house.Status)
	}
	if got := env.messageCount(t, o.ID); got != 1 {
		t.Fatalf("messages=%d want 1", got)
	}

	if _, err := env.orders.PurchaseHouse(ctx, h.ID, testStranger); !errors.Is(err, ErrHouseUnavailable) {
		t.Fatalf("second purchase err=%v want ErrHouseUnavailable", err)
	}
	if _, err := env.orders.PurchaseHouse(ctx, h.ID, testSeller); err == nil {
		t.Fatal("expected error buying own house")
	}
}

func TestSellerConfirm(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	o := env.orderAt(t, model.OrderStatusPending)

	env.advance(time.Hour)
	got, err := env.orders.Transition(ctx, o.ID, ActionConfirm, testSeller, TransitionPayload{Message: "see you at the notary"})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if got.Status != model.OrderStatusConfirmed {
		t.Fatalf("status=%s want confirmed", got.Status)
	}
	if got.ConfirmedAt == nil || !got.ConfirmedAt.Equal(env.clock) {
		t.Fatalf("confirmed_at=%v want %v", got.ConfirmedAt, env.clock)
	}
	house, err := repository.NewHouseRepository(env.db).FindByID(ctx, o.HouseID)
	if err != nil {
		t.Fatalf("reload house: %v", err)
	}
	if house.Status != model.HouseStatusConfirmed {
		t.Fatalf("house status=%s want confirmed", house.Status)
	}
	msgs, err := repository.NewOrderMessageRepository(env.db).ListByOrder(ctx, o.ID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	last := msgs[len(msgs)-1]
	if last.Action != string(ActionConfirm) || last.UserUID != testSeller {
		t.Fatalf("last message action=%s user=%s", last.Action, last.UserUID)
	}
}

func TestIllegalTransitions(t *testing.T) {
	tests := []struct {
		name   string
		status model.OrderStatus
		action OrderAction
		actor  string
	}{
		{"buyer confirms", model.OrderStatusPending, ActionConfirm, testBuyer},
		{"stranger confirms", model.OrderStatusPending, ActionConfirm, testStranger},
		{"ship before confirm", model.OrderStatusPending, ActionShip, testSeller},
		{"complete from pending", model.OrderStatusPending, ActionComplete, testBuyer},
		{"receive before ship", model.OrderStatusConfirmed, ActionReceive, testBuyer},
		{"reject after confirm", model.OrderStatusConfirmed, ActionReject, testSeller},
		{"seller receives", model.OrderStatusDelivering, ActionReceive, testSeller},
		{"cancel while delivering", model.OrderStatusDelivering, ActionCancel, testBuyer},
		{"seller completes", model.OrderStatusDelivered, ActionComplete, testSeller},
		{"seller rejects delivery", model.OrderStatusDelivered, ActionRejectDelivery, testSeller},
		{"confirm completed order", model.OrderStatusCompleted, ActionConfirm, testSeller},
		{"complete twice", model.OrderStatusCompleted, ActionComplete, testBuyer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			o := env.orderAt(t, tt.status)
			before := env.reload(t, o.ID)
			msgsBefore := env.messageCount(t, o.ID)

			_, err := env.orders.Transition(ctx, o.ID, tt.action, tt.actor, TransitionPayload{})
			if !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("err=%v want ErrInvalidTransition", err)
			}
			after := env.reload(t, o.ID)
			if after.Status != before.Status {
				t.Fatalf("status changed: %s -> %s", before.Status, after.Status)
			}
			if got := env.messageCount(t, o.ID); got != msgsBefore {
				t.Fatalf("messages=%d want %d", got, msgsBefore)
			}
		})
	}
}

func TestUnknownActionRejected(t *testing.T) {
	env := newTestEnv(t)
	o := env.orderAt(t, model.OrderStatusPending)
	if _, err := env.orders.Transition(context.Background(), o.ID, OrderAction("demolish"), testSeller, TransitionPayload{}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err=%v want ErrInvalidTransition", err)
	}
}

func TestTransitionNotFound(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.orders.Transition(context.Background(), 9999, ActionConfirm, testSeller, TransitionPayload{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v want ErrNotFound", err)
	}
}

func TestTimestampsMonotonic(t *testing.T) {
	env := newTestEnv(t)
	o := env.orderAt(t, model.OrderStatusCompleted)

	stamps := []*time.Time{o.ConfirmedAt, o.ShippedAt, o.DeliveredAt, o.CompletedAt}
	for i, ts := range stamps {
		if ts == nil {
			t.Fatalf("stamp %d is nil", i)
		}
		if i > 0 && ts.Before(*stamps[i-1]) {
			t.Fatalf("stamp %d (%v) before stamp %d (%v)", i, ts, i-1, stamps[i-1])
		}
	}
	if o.AutoConfirmAt == nil || !o.AutoConfirmAt.Equal(o.DeliveredAt.Add(24*time.Hour)) {
		t.Fatalf("auto_confirm_at=%v want delivered_at+24h", o.AutoConfirmAt)
	}
}

func TestCancelByActor(t *testing.T) {
	tests := []struct {
		name      string
		actor     string
		wantOrder model.OrderStatus
		wantHouse model.HouseStatus
	}{
		{"buyer cancels", testBuyer, model.OrderStatusUserCancelled, model.HouseStatusUserCancelled},
		{"seller cancels", testSeller, model.OrderStatusSellerCancelled, model.HouseStatusSellerCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			o := env.orderAt(t, model.OrderStatusConfirmed)

			got, err := env.orders.Transition(ctx, o.ID, ActionCancel, tt.actor, TransitionPayload{})
			if err != nil {
				t.Fatalf("cancel: %v", err)
			}
			if got.Status != tt.wantOrder {
				t.Fatalf("status=%s want %s", got.Status, tt.wantOrder)
			}
			house, err := repository.NewHouseRepository(env.db).FindByID(ctx, o.HouseID)
			if err != nil {
				t.Fatalf("reload house: %v", err)
			}
			if house.Status != tt.wantHouse {
				t.Fatalf("house status=%s want %s", house.Status, tt.wantHouse)
			}
		})
	}
}

func TestRejectDelivery(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	o := env.orderAt(t, model.OrderStatusDelivered)

	got, err := env.orders.Transition(ctx, o.ID, ActionRejectDelivery, testBuyer, TransitionPayload{Message: "severe water damage"})
	if err != nil {
		t.Fatalf("reject delivery: %v", err)
	}
	if got.Status != model.OrderStatusRejectedDelivery {
		t.Fatalf("status=%s want rejected_delivery", got.Status)
	}
	if got.CompletedAt != nil {
		t.Fatal("rejected delivery must not complete the order")
	}
	earnings, err := repository.NewEarningRepository(env.db).ListByOrder(ctx, o.ID)
	if err != nil {
		t.Fatalf("list earnings: %v", err)
	}
	if len(earnings) != 0 {
		t.Fatalf("earnings=%d want 0", len(earnings))
	}
}

func TestCompletePostsEarnings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if _, err := env.settle.RegisterReferral(ctx, testReferrer, testBuyer); err != nil {
		t.Fatalf("register referral: %v", err)
	}
	o := env.orderAt(t, model.OrderStatusCompleted)

	earnings, err := repository.NewEarningRepository(env.db).ListByOrder(ctx, o.ID)
	if err != nil {
		t.Fatalf("list earnings: %v", err)
	}
	if len(earnings) != 2 {
		t.Fatalf("earnings=%d want 2", len(earnings))
	}
	byType := map[model.EarningType]model.Earning{}
	for _, e := range earnings {
		byType[e.Type] = e
	}
	sale, ok := byType[model.EarningTypeHouseSale]
	if !ok || sale.UserUID != testSeller || sale.Amount != o.Price {
		t.Fatalf("house_sale earning=%+v", sale)
	}
	reward, ok := byType[model.EarningTypeReferralCommission]
	if !ok || reward.UserUID != testReferrer || reward.Amount != CommissionAmount(o.Price, DefaultCommissionRate) {
		t.Fatalf("referral earning=%+v", reward)
	}

	commissions, err := repository.NewReferralCommissionRepository(env.db).ListByReferrer(ctx, testReferrer)
	if err != nil {
		t.Fatalf("list commissions: %v", err)
	}
	if len(commissions) != 1 {
		t.Fatalf("commissions=%d want 1", len(commissions))
	}
	if commissions[0].CommissionAmount != o.Price/10 {
		t.Fatalf("commission amount=%d want %d", commissions[0].CommissionAmount, o.Price/10)
	}

	// A second complete must fail and must not post anything again.
	if _, err := env.orders.Transition(ctx, o.ID, ActionComplete, testBuyer, TransitionPayload{}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second complete err=%v want ErrInvalidTransition", err)
	}
	earnings, err = repository.NewEarningRepository(env.db).ListByOrder(ctx, o.ID)
	if err != nil {
		t.Fatalf("list earnings: %v", err)
	}
	if len(earnings) != 2 {
		t.Fatalf("earnings after retry=%d want 2", len(earnings))
	}
}

func TestCompleteWithoutReferrer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	o := env.orderAt(t, model.OrderStatusCompleted)

	earnings, err := repository.NewEarningRepository(env.db).ListByOrder(ctx, o.ID)
	if err != nil {
		t.Fatalf("list earnings: %v", err)
	}
	if len(earnings) != 1 || earnings[0].Type != model.EarningTypeHouseSale {
		t.Fatalf("earnings=%+v want single house_sale", earnings)
	}
}

func TestAutoConfirmSweep(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if _, err := env.settle.RegisterReferral(ctx, testReferrer, testBuyer); err != nil {
		t.Fatalf("register referral: %v", err)
	}
	o := env.orderAt(t, model.OrderStatusDelivered)
	deliveredAt := env.clock

	// Before the grace period nothing is due.
	report, err := env.orders.RunAutoConfirmSweep(ctx, deliveredAt.Add(23*time.Hour))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if report.Confirmed != 0 || report.AlreadySettled != 0 || report.Failed != 0 {
		t.Fatalf("early sweep report=%+v want empty", report)
	}

	env.advance(25 * time.Hour)
	report, err = env.orders.RunAutoConfirmSweep(ctx, env.clock)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if report.Confirmed != 1 || len(report.OrderIDs) != 1 || report.OrderIDs[0] != o.ID {
		t.Fatalf("sweep report=%+v want one confirmation for order %d", report, o.ID)
	}

	got := env.reload(t, o.ID)
	if got.Status != model.OrderStatusCompleted {
		t.Fatalf("status=%s want completed", got.Status)
	}
	earnings, err := repository.NewEarningRepository(env.db).ListByOrder(ctx, o.ID)
	if err != nil {
		t.Fatalf("list earnings: %v", err)
	}
	if len(earnings) != 2 {
		t.Fatalf("earnings=%d want 2", len(earnings))
	}
	msgs, err := repository.NewOrderMessageRepository(env.db).ListByOrder(ctx, o.ID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	last := msgs[len(msgs)-1]
	if last.UserUID != SystemActorUID || last.Action != string(ActionComplete) {
		t.Fatalf("last message=%+v want system complete", last)
	}
}

func TestSweepAfterManualConfirm(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if _, err := env.settle.RegisterReferral(ctx, testReferrer, testBuyer); err != nil {
		t.Fatalf("register referral: %v", err)
	}
	o := env.orderAt(t, model.OrderStatusDelivered)

	env.advance(time.Hour)
	if _, err := env.orders.Transition(ctx, o.ID, ActionComplete, testBuyer, TransitionPayload{Rating: 5, Message: "great seller"}); err != nil {
		t.Fatalf("manual complete: %v", err)
	}

	env.advance(24 * time.Hour)
	report, err := env.orders.RunAutoConfirmSweep(ctx, env.clock)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if report.Confirmed != 0 || report.Failed != 0 {
		t.Fatalf("sweep report=%+v want nothing confirmed", report)
	}
	earnings, err := repository.NewEarningRepository(env.db).ListByOrder(ctx, o.ID)
	if err != nil {
		t.Fatalf("list earnings: %v", err)
	}
	if len(earnings) != 2 {
		t.Fatalf("earnings=%d want 2 (no double posting)", len(earnings))
	}
}

func TestReviewRecordedOnComplete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	o := env.orderAt(t, model.OrderStatusDelivered)

	got, err := env.orders.Transition(ctx, o.ID, ActionComplete, testBuyer, TransitionPayload{Rating: 4, Message: "solid roof"})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !got.BuyerReviewed || got.BuyerRating != 4 || got.BuyerReview != "solid roof" {
		t.Fatalf("buyer review not recorded: %+v", got)
	}
	if got.SellerReviewed {
		t.Fatal("seller review must not be set")
	}
}

func TestGetOrderAuthorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	o := env.orderAt(t, model.OrderStatusPending)

	if _, err := env.orders.Get(ctx, o.ID, testBuyer); err != nil {
		t.Fatalf("buyer get: %v", err)
	}
	if _, err := env.orders.Get(ctx, o.ID, testSeller); err != nil {
		t.Fatalf("seller get: %v", err)
	}
	if _, err := env.orders.Get(ctx, o.ID, testStranger); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger get err=%v want ErrForbidden", err)
	}
	if _, err := env.orders.Get(ctx, 12345, testBuyer); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing order err=%v want ErrNotFound", err)
	}
}
