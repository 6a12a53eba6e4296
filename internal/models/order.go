package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusNew        OrderStatus = "Новый"
	OrderStatusProcessing OrderStatus = "В обработке"
	OrderStatusConfirmed  OrderStatus = "Подтвержден"
	OrderStatusFulfilled  OrderStatus = "Выполнен"
	OrderStatusCompleted  OrderStatus = "Завершен"
	OrderStatusCancelled  OrderStatus = "Отменен"
)

// OrderStatuses lists every valid status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusNew,
	OrderStatusProcessing,
	OrderStatusConfirmed,
	OrderStatusFulfilled,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// CanTransition reports whether an admin may move an order from s to next.
// Setting the current status again is allowed and changes nothing.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	return !s.Terminal()
}

// Order is a placed order. Only Status changes after creation.
type Order struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	UserID       uint            `gorm:"index;not null" json:"user_id"`
	User         *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TotalPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
	Status       OrderStatus     `gorm:"size:50;not null;default:'Новый'" json:"status"`
	ContactPhone string          `gorm:"size:20;not null" json:"contact_phone"`
	EventDate    time.Time       `gorm:"type:date;not null" json:"event_date"`
	DateCreated  time.Time       `gorm:"autoCreateTime;not null" json:"date_created"`
	Items        []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// GetUserID implements the Ownable interface for authorization.
func (o *Order) GetUserID() uint {
	return o.UserID
}

// ItemsTotal sums the price snapshots of the loaded items.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.PriceAtMoment)
	}
	return total
}

// OrderItem snapshots one service's price at checkout time.
type OrderItem struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	OrderID       uint            `gorm:"index;not null" json:"order_id"`
	ServiceID     uint            `gorm:"index;not null" json:"service_id"`
	Service       *Service        `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	PriceAtMoment decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price_at_moment"`
}
