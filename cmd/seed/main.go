package main

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kfurusato/house-market-backend/internal/config"
	"github.com/kfurusato/house-market-backend/internal/db"
	"github.com/kfurusato/house-market-backend/internal/model"
	"github.com/kfurusato/house-market-backend/internal/repository"
)

type seedHouse struct {
	Title       string
	Description string
	Price       int64
}

var seedHouses = []seedHouse{
	{"Renovated machiya near Gion", "Two stories, small courtyard, walkable to the station.", 28_500_000_00},
	{"Compact 2LDK in Setagaya", "Quiet street, south-facing balcony, built 2009.", 41_200_000_00},
	{"Seaside cottage in Kamakura", "Ten minutes to the beach, needs some repairs.", 19_800_000_00},
	{"Farmhouse with orchard plot", "Large kitchen, storage barn, mountain views.", 12_300_000_00},
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	conn, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := conn.AutoMigrate(&model.House{}, &model.Referral{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	sellerUID := "seed-seller-" + uuid.NewString()
	referrerUID := "seed-referrer-" + uuid.NewString()
	buyerUID := "seed-buyer-" + uuid.NewString()

	houses := repository.NewHouseRepository(conn)
	for _, sh := range seedHouses {
		h := &model.House{
			OwnerUID:    sellerUID,
			Title:       sh.Title,
			Description: sh.Description,
			Price:       sh.Price,
			Status:      model.HouseStatusAvailable,
		}
		if err := houses.Create(ctx, h); err != nil {
			return fmt.Errorf("create house %q: %w", sh.Title, err)
		}
		log.Printf("seeded house %d: %s", h.ID, h.Title)
	}

	if _, err := repository.NewReferralRepository(conn).CreateIfAbsent(ctx, &model.Referral{
		ReferrerUID: referrerUID,
		ReferredUID: buyerUID,
	}); err != nil {
		return fmt.Errorf("create referral: %w", err)
	}
	log.Printf("seeded referral: %s referred %s", referrerUID, buyerUID)
	log.Printf("seller=%s buyer=%s", sellerUID, buyerUID)
	return nil
}
