package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kfurusato/house-market-backend/internal/model"
	"github.com/kfurusato/house-market-backend/internal/service"
)

type sweepCounter struct {
	sweeps atomic.Int32
}

func (s *sweepCounter) RunAutoConfirmSweep(ctx context.Context, now time.Time) (*service.SweepReport, error) {
	s.sweeps.Add(1)
	return &service.SweepReport{}, nil
}

func (s *sweepCounter) PurchaseHouse(ctx context.Context, houseID uint64, buyerUID string) (*model.Order, error) {
	return nil, nil
}

func (s *sweepCounter) Transition(ctx context.Context, orderID uint64, action service.OrderAction, actorUID string, payload service.TransitionPayload) (*model.Order, error) {
	return nil, nil
}

func (s *sweepCounter) Get(ctx context.Context, orderID uint64, uid string) (*model.Order, error) {
	return nil, nil
}

func (s *sweepCounter) ListMessages(ctx context.Context, orderID uint64, uid string) ([]model.OrderMessage, error) {
	return nil, nil
}

func (s *sweepCounter) ListByBuyer(ctx context.Context, buyerUID string) ([]model.Order, error) {
	return nil, nil
}

func (s *sweepCounter) ListBySeller(ctx context.Context, sellerUID string) ([]model.Order, error) {
	return nil, nil
}

func TestAutoConfirmRunsSweep(t *testing.T) {
	svc := &sweepCounter{}
	w := NewAutoConfirm(svc, "@every 100ms")
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	time.Sleep(450 * time.Millisecond)
	w.Stop()

	if got := svc.sweeps.Load(); got < 1 {
		t.Fatalf("sweeps=%d want at least 1", got)
	}
}
