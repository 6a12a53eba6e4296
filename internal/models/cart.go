package models

import "time"

// CartItem is one service in a logged-in user's cart.
// A user holds at most one row per service.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:unique_user_service" json:"user_id"`
	ServiceID uint      `gorm:"not null;uniqueIndex:unique_user_service" json:"service_id"`
	AddedAt   time.Time `gorm:"autoCreateTime;not null" json:"added_at"`
	Service   *Service  `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
}

// GetUserID implements the Ownable interface for authorization.
func (c *CartItem) GetUserID() uint {
	return c.UserID
}
