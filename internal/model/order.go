package model

import "time"

type OrderStatus string

const (
	OrderStatusPending          OrderStatus = "pending"
	OrderStatusConfirmed        OrderStatus = "confirmed"
	OrderStatusRejected         OrderStatus = "rejected"
	OrderStatusDelivering       OrderStatus = "delivering"
	OrderStatusDelivered        OrderStatus = "delivered"
	OrderStatusCompleted        OrderStatus = "completed"
	OrderStatusUserCancelled    OrderStatus = "user_cancelled"
	OrderStatusSellerCancelled  OrderStatus = "seller_cancelled"
	OrderStatusRejectedDelivery OrderStatus = "rejected_delivery"
)

type Order struct {
	ID             uint64      `gorm:"primaryKey;autoIncrement"`
	HouseID        uint64      `gorm:"column:house_id;index;not null"`
	BuyerUID       string      `gorm:"column:buyer_uid;size:128;index;not null"`
	SellerUID      string      `gorm:"column:seller_uid;size:128;index;not null"`
	Price          int64       `gorm:"column:price;not null"`
	Status         OrderStatus `gorm:"column:status;size:32;index;not null"`
	ConfirmedAt    *time.Time  `gorm:"column:confirmed_at"`
	ShippedAt      *time.Time  `gorm:"column:shipped_at"`
	DeliveredAt    *time.Time  `gorm:"column:delivered_at"`
	CompletedAt    *time.Time  `gorm:"column:completed_at"`
	AutoConfirmAt  *time.Time  `gorm:"column:auto_confirm_at;index"`
	BuyerReview    string      `gorm:"column:buyer_review;type:text"`
	SellerReview   string      `gorm:"column:seller_review;type:text"`
	BuyerRating    uint8       `gorm:"column:buyer_rating"`
	SellerRating   uint8       `gorm:"column:seller_rating"`
	BuyerReviewed  bool        `gorm:"column:buyer_reviewed;not null;default:false"`
	SellerReviewed bool        `gorm:"column:seller_reviewed;not null;default:false"`
	CreatedAt      time.Time   `gorm:"autoCreateTime"`
	UpdatedAt      time.Time   `gorm:"autoUpdateTime"`
}

func (Order) TableName() string {
	return "orders"
}
