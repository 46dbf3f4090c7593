package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/kfurusato/house-market-backend/internal/config"
	"github.com/kfurusato/house-market-backend/internal/db"
	"github.com/kfurusato/house-market-backend/internal/model"
	"github.com/kfurusato/house-market-backend/internal/server"
	"github.com/kfurusato/house-market-backend/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	conn, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	if err := conn.AutoMigrate(
		&model.House{},
		&model.Order{},
		&model.OrderMessage{},
		&model.Referral{},
		&model.ReferralCommission{},
		&model.Earning{},
		&model.Notification{},
	); err != nil {
		log.Fatalf("auto migrate error: %v", err)
	}

	srv := server.New(conn, cfg)

	sweeper := worker.NewAutoConfirm(srv.OrderSvc, cfg.AutoConfirmSchedule)
	if err := sweeper.Start(); err != nil {
		log.Fatalf("auto-confirm worker error: %v", err)
	}
	defer sweeper.Stop()

	addr := ":" + cfg.Port
	log.Printf("starting server on %s", addr)
	if err := srv.Start(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
