package model

import "time"

type CommissionStatus string

const (
	CommissionStatusPending   CommissionStatus = "pending"
	CommissionStatusPaid      CommissionStatus = "paid"
	CommissionStatusCancelled CommissionStatus = "cancelled"
)

// ReferralCommission is created at most once per (referrer, order); the
// composite unique index backs the idempotency of settlement.
type ReferralCommission struct {
	ID               uint64           `gorm:"primaryKey;autoIncrement"`
	ReferrerUID      string           `gorm:"column:referrer_uid;size:128;uniqueIndex:ux_referrer_order,priority:1;not null"`
	ReferredUID      string           `gorm:"column:referred_uid;size:128;index;not null"`
	OrderID          uint64           `gorm:"column:order_id;uniqueIndex:ux_referrer_order,priority:2;not null"`
	OrderAmount      int64            `gorm:"column:order_amount;not null"`
	CommissionRate   float64          `gorm:"column:commission_rate;type:decimal(5,2);not null"`
	CommissionAmount int64            `gorm:"column:commission_amount;not null"`
	Status           CommissionStatus `gorm:"column:status;size:32;not null"`
	EarnedAt         time.Time        `gorm:"column:earned_at;not null"`
	PaidAt           *time.Time       `gorm:"column:paid_at"`
	CreatedAt        time.Time        `gorm:"autoCreateTime"`
}

func (ReferralCommission) TableName() string {
	return "referral_commissions"
}
