package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/kfurusato/house-market-backend/internal/model"
	"github.com/kfurusato/house-market-backend/internal/repository"
	"gorm.io/gorm"
)

// OrderAction is a verb a party (or the system) applies to an order.
type OrderAction string

const (
	ActionConfirm        OrderAction = "confirm"
	ActionReject         OrderAction = "reject"
	ActionShip           OrderAction = "ship"
	ActionReceive        OrderAction = "receive"
	ActionComplete       OrderAction = "complete"
	ActionCancel         OrderAction = "cancel"
	ActionRejectDelivery OrderAction = "reject_delivery"
)

// SystemActorUID is the synthetic actor used by the auto-confirm sweep.
const SystemActorUID = "system"

const defaultAutoConfirmGrace = 24 * time.Hour

type TransitionPayload struct {
	Message string
	Rating  uint8
}

type SweepReport struct {
	Confirmed      int
	AlreadySettled int
	Failed         int
	OrderIDs       []uint64
}

type OrderService interface {
	PurchaseHouse(ctx context.Context, houseID uint64, buyerUID string) (*model.Order, error)
	Transition(ctx context.Context, orderID uint64, action OrderAction, actorUID string, payload TransitionPayload) (*model.Order, error)
	RunAutoConfirmSweep(ctx context.Context, now time.Time) (*SweepReport, error)
	Get(ctx context.Context, orderID uint64, uid string) (*model.Order, error)
	ListMessages(ctx context.Context, orderID uint64, uid string) ([]model.OrderMessage, error)
	ListByBuyer(ctx context.Context, buyerUID string) ([]model.Order, error)
	ListBySeller(ctx context.Context, sellerUID string) ([]model.Order, error)
}

type actorRole int

const (
	roleNone actorRole = iota
	roleBuyer
	roleSeller
	roleSystem
)

type transitionRule struct {
	from  []model.OrderStatus
	roles []actorRole
	to    model.OrderStatus // empty for cancel, resolved per actor
	house model.HouseStatus
	stamp string // timestamp column set on entry
}

var transitionRules = map[OrderAction]transitionRule{
	ActionConfirm: {
		from:  []model.OrderStatus{model.OrderStatusPending},
		roles: []actorRole{roleSeller},
		to:    model.OrderStatusConfirmed,
		house: model.HouseStatusConfirmed,
		stamp: "confirmed_at",
	},
	ActionReject: {
		from:  []model.OrderStatus{model.OrderStatusPending},
		roles: []actorRole{roleSeller},
		to:    model.OrderStatusRejected,
		house: model.HouseStatusAvailable,
	},
	ActionShip: {
		from:  []model.OrderStatus{model.OrderStatusConfirmed},
		roles: []actorRole{roleSeller},
		to:    model.OrderStatusDelivering,
		house: model.HouseStatusShipped,
		stamp: "shipped_at",
	},
	ActionReceive: {
		from:  []model.OrderStatus{model.OrderStatusDelivering},
		roles: []actorRole{roleBuyer},
		to:    model.OrderStatusDelivered,
		house: model.HouseStatusReceived,
		stamp: "delivered_at",
	},
	ActionComplete: {
		from:  []model.OrderStatus{model.OrderStatusDelivered},
		roles: []actorRole{roleBuyer, roleSystem},
		to:    model.OrderStatusCompleted,
		house: model.HouseStatusSold,
		stamp: "completed_at",
	},
	ActionCancel: {
		from:  []model.OrderStatus{model.OrderStatusPending, model.OrderStatusConfirmed},
		roles: []actorRole{roleBuyer, roleSeller},
	},
	ActionRejectDelivery: {
		from:  []model.OrderStatus{model.OrderStatusDelivered},
		roles: []actorRole{roleBuyer},
		to:    model.OrderStatusRejectedDelivery,
		house: model.HouseStatusSuspended,
	},
}

func (r transitionRule) allowsFrom(status model.OrderStatus) bool {
	for _, s := range r.from {
		if s == status {
			return true
		}
	}
	return false
}

func (r transitionRule) allowsRole(role actorRole) bool {
	for _, allowed := range r.roles {
		if allowed == role {
			return true
		}
	}
	return false
}

// target resolves the destination statuses; cancel depends on who cancels.
func (r transitionRule) target(role actorRole) (model.OrderStatus, model.HouseStatus) {
	if r.to != "" {
		return r.to, r.house
	}
	if role == roleSeller {
		return model.OrderStatusSellerCancelled, model.HouseStatusSellerCancelled
	}
	return model.OrderStatusUserCancelled, model.HouseStatusUserCancelled
}

type orderService struct {
	db     *gorm.DB
	settle SettlementService
	notify NotificationService
	grace  time.Duration
	now    func() time.Time
}

// NewOrderService wires the state machine. grace <= 0 falls back to 24h;
// now == nil falls back to time.Now (tests inject a fixed clock).
func NewOrderService(db *gorm.DB, settle SettlementService, notify NotificationService, grace time.Duration, now func() time.Time) OrderService {
	if grace <= 0 {
		grace = defaultAutoConfirmGrace
	}
	if now == nil {
		now = time.Now
	}
	return &orderService{db: db, settle: settle, notify: notify, grace: grace, now: now}
}

func roleOf(o *model.Order, actorUID string) actorRole {
	switch actorUID {
	case "":
		return roleNone
	case SystemActorUID:
		return roleSystem
	case o.BuyerUID:
		return roleBuyer
	case o.SellerUID:
		return roleSeller
	}
	return roleNone
}

func (s *orderService) PurchaseHouse(ctx context.Context, houseID uint64, buyerUID string) (*model.Order, error) {
	if buyerUID == "" {
		return nil, errors.New("buyer is required")
	}
	var result *model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		houses := repository.NewHouseRepository(tx)
		h, err := houses.FindByID(ctx, houseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if h.OwnerUID == buyerUID {
			return errors.New("cannot buy your own house")
		}
		// Guarded flip available->pending keeps two buyers from racing.
		n, err := houses.UpdateStatusFrom(ctx, h.ID, model.HouseStatusAvailable, model.HouseStatusPending)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrHouseUnavailable
		}
		o := &model.Order{
			HouseID:   h.ID,
			BuyerUID:  buyerUID,
			SellerUID: h.OwnerUID,
			Price:     h.Price,
			Status:    model.OrderStatusPending,
		}
		if err := repository.NewOrderRepository(tx).Create(ctx, o); err != nil {
			return err
		}
		if err := repository.NewOrderMessageRepository(tx).Create(ctx, &model.OrderMessage{
			OrderID: o.ID,
			UserUID: buyerUID,
			Action:  "created",
		}); err != nil {
			return err
		}
		result = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.notify != nil {
		s.notify.Notify(ctx, result.SellerUID, "order_created", "New purchase request",
			"A buyer placed an order on your listing.", &result.ID, &result.HouseID)
	}
	return result, nil
}

func (s *orderService) Transition(ctx context.Context, orderID uint64, action OrderAction, actorUID string, payload TransitionPayload) (*model.Order, error) {
	rule, ok := transitionRules[action]
	if !ok {
		return nil, ErrInvalidTransition
	}
	var result *model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := repository.NewOrderRepository(tx)
		o, err := orders.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		role := roleOf(o, actorUID)
		if !rule.allowsRole(role) {
			return ErrInvalidTransition
		}
		if !rule.allowsFrom(o.Status) {
			return ErrInvalidTransition
		}

		now := s.now()
		to, houseStatus := rule.target(role)
		updates := map[string]interface{}{"status": to}
		if rule.stamp != "" {
			updates[rule.stamp] = now
		}
		if to == model.OrderStatusDelivered {
			updates["auto_confirm_at"] = now.Add(s.grace)
		}
		if payload.Rating >= 1 && payload.Rating <= 5 {
			switch role {
			case roleBuyer:
				updates["buyer_rating"] = payload.Rating
				updates["buyer_review"] = payload.Message
				updates["buyer_reviewed"] = true
			case roleSeller:
				updates["seller_rating"] = payload.Rating
				updates["seller_review"] = payload.Message
				updates["seller_reviewed"] = true
			}
		}

		n, err := orders.UpdateStatusFrom(ctx, o.ID, o.Status, updates)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrStoreConflict
		}

		if err := repository.NewOrderMessageRepository(tx).Create(ctx, &model.OrderMessage{
			OrderID: o.ID,
			UserUID: actorUID,
			Action:  string(action),
			Message: payload.Message,
			Rating:  payload.Rating,
		}); err != nil {
			return err
		}
		if err := repository.NewHouseRepository(tx).UpdateStatus(ctx, o.HouseID, houseStatus); err != nil {
			return err
		}

		// Settlement fires exactly once: only the transition that flips
		// completed_at from null runs it, inside the same transaction.
		if to == model.OrderStatusCompleted && o.CompletedAt == nil {
			if _, err := s.settle.SettleOrder(ctx, tx, o, now); err != nil {
				return err
			}
		}

		fresh, err := orders.FindByID(ctx, o.ID)
		if err != nil {
			return err
		}
		result = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifyTransition(ctx, result, action, actorUID)
	return result, nil
}

func (s *orderService) notifyTransition(ctx context.Context, o *model.Order, action OrderAction, actorUID string) {
	if s.notify == nil || o == nil {
		return
	}
	target := o.BuyerUID
	if actorUID == o.BuyerUID {
		target = o.SellerUID
	}
	s.notify.Notify(ctx, target, "order_"+string(action), "Order update",
		"Order status is now "+string(o.Status)+".", &o.ID, &o.HouseID)
}

func (s *orderService) RunAutoConfirmSweep(ctx context.Context, now time.Time) (*SweepReport, error) {
	due, err := repository.NewOrderRepository(s.db).ListAutoConfirmDue(ctx, now)
	if err != nil {
		return nil, err
	}
	report := &SweepReport{}
	for _, o := range due {
		_, err := s.Transition(ctx, o.ID, ActionComplete, SystemActorUID, TransitionPayload{
			Message: "receipt auto-confirmed after grace period",
		})
		switch {
		case err == nil:
			report.Confirmed++
			report.OrderIDs = append(report.OrderIDs, o.ID)
		case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrStoreConflict):
			// The buyer (or another sweep) confirmed first.
			report.AlreadySettled++
		default:
			report.Failed++
			log.Printf("auto-confirm order %d: %v", o.ID, err)
		}
	}
	return report, nil
}

func (s *orderService) Get(ctx context.Context, orderID uint64, uid string) (*model.Order, error) {
	o, err := repository.NewOrderRepository(s.db).FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if uid != "" && uid != o.BuyerUID && uid != o.SellerUID {
		return nil, ErrForbidden
	}
	return o, nil
}

func (s *orderService) ListMessages(ctx context.Context, orderID uint64, uid string) ([]model.OrderMessage, error) {
	if _, err := s.Get(ctx, orderID, uid); err != nil {
		return nil, err
	}
	return repository.NewOrderMessageRepository(s.db).ListByOrder(ctx, orderID)
}

func (s *orderService) ListByBuyer(ctx context.Context, buyerUID string) ([]model.Order, error) {
	if buyerUID == "" {
		return nil, errors.New("buyer is required")
	}
	return repository.NewOrderRepository(s.db).ListByBuyer(ctx, buyerUID)
}

func (s *orderService) ListBySeller(ctx context.Context, sellerUID string) ([]model.Order, error) {
	if sellerUID == "" {
		return nil, errors.New("seller is required")
	}
	return repository.NewOrderRepository(s.db).ListBySeller(ctx, sellerUID)
}
