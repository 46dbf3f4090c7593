package worker

import (
	"context"
	"log"
	"time"

	"github.com/kfurusato/house-market-backend/internal/service"
	"github.com/robfig/cron/v3"
)

// AutoConfirm runs the delivered->completed sweep on a schedule. Each order
// is its own transaction inside the sweep, so nothing is held across
// iterations.
type AutoConfirm struct {
	svc      service.OrderService
	schedule string
	cron     *cron.Cron
}

func NewAutoConfirm(svc service.OrderService, schedule string) *AutoConfirm {
	if schedule == "" {
		schedule = "@every 5m"
	}
	return &AutoConfirm{svc: svc, schedule: schedule, cron: cron.New()}
}

func (w *AutoConfirm) Start() error {
	if _, err := w.cron.AddFunc(w.schedule, w.sweep); err != nil {
		return err
	}
	w.cron.Start()
	log.Printf("auto-confirm worker started (%s)", w.schedule)
	return nil
}

func (w *AutoConfirm) Stop() {
	<-w.cron.Stop().Done()
}

func (w *AutoConfirm) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	report, err := w.svc.RunAutoConfirmSweep(ctx, time.Now())
	if err != nil {
		log.Printf("auto-confirm sweep failed: %v", err)
		return
	}
	if report.Confirmed > 0 || report.Failed > 0 {
		log.Printf("auto-confirm sweep: confirmed=%d already_settled=%d failed=%d",
			report.Confirmed, report.AlreadySettled, report.Failed)
	}
}
