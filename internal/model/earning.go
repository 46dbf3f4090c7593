package model

import "time"

type EarningType string

const (
	EarningTypeHouseSale          EarningType = "house_sale"
	EarningTypeReferralCommission EarningType = "referral_commission"
	EarningTypePlatformSale       EarningType = "platform_sale"
)

type EarningStatus string

const (
	EarningStatusPending   EarningStatus = "pending"
	EarningStatusPaid      EarningStatus = "paid"
	EarningStatusCancelled EarningStatus = "cancelled"
)

// Earning is an append-only ledger row; only Status may change after
// creation.
type Earning struct {
	ID        uint64        `gorm:"primaryKey;autoIncrement"`
	UserUID   string        `gorm:"column:user_uid;size:128;index;not null"`
	Type      EarningType   `gorm:"column:type;size:32;not null"`
	Amount    int64         `gorm:"column:amount;not null"`
	OrderID   uint64        `gorm:"column:order_id;index;not null"`
	HouseID   uint64        `gorm:"column:house_id;index"`
	Status    EarningStatus `gorm:"column:status;size:32;not null"`
	EarnedAt  time.Time     `gorm:"column:earned_at;not null"`
	CreatedAt time.Time     `gorm:"autoCreateTime"`
}

func (Earning) TableName() string {
	return "earnings"
}
