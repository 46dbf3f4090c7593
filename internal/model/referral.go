package model

import "time"

// Referral records who referred a user at signup. A user can be referred at
// most once.
type Referral struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	ReferrerUID string    `gorm:"column:referrer_uid;size:128;index;not null"`
	ReferredUID string    `gorm:"column:referred_uid;size:128;uniqueIndex;not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (Referral) TableName() string {
	return "referrals"
}
