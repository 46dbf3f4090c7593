package model

import "time"

// OrderMessage is an append-only audit entry; one row per transition or
// review event, never updated after creation.
type OrderMessage struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	OrderID   uint64    `gorm:"column:order_id;index;not null"`
	UserUID   string    `gorm:"column:user_uid;size:128;index;not null"`
	Action    string    `gorm:"column:action;size:64;not null"`
	Message   string    `gorm:"type:text"`
	Rating    uint8     `gorm:"column:rating"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (OrderMessage) TableName() string {
	return "order_messages"
}
