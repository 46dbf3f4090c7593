package model

import "time"

type HouseStatus string

const (
	HouseStatusAvailable       HouseStatus = "available"
	HouseStatusPending         HouseStatus = "pending"
	HouseStatusConfirmed       HouseStatus = "confirmed"
	HouseStatusShipped         HouseStatus = "shipped"
	HouseStatusReceived        HouseStatus = "received"
	HouseStatusSold            HouseStatus = "sold"
	HouseStatusSuspended       HouseStatus = "suspended"
	HouseStatusUserCancelled   HouseStatus = "user_cancelled"
	HouseStatusSellerCancelled HouseStatus = "seller_cancelled"
)

type House struct {
	ID          uint64      `gorm:"primaryKey;autoIncrement"`
	OwnerUID    string      `gorm:"column:owner_uid;size:128;index;not null"`
	Title       string      `gorm:"size:120;not null"`
	Description string      `gorm:"type:text"`
	Price       int64       `gorm:"not null"`
	Status      HouseStatus `gorm:"column:status;size:32;index;not null"`
	CreatedAt   time.Time   `gorm:"autoCreateTime"`
	UpdatedAt   time.Time   `gorm:"autoUpdateTime"`
}

func (House) TableName() string {
	return "houses"
}
