package models

import "time"

// User is a registered visitor. Admins manage the catalog and orders.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"uniqueIndex;size:80;not null" json:"username"`
	Email        string     `gorm:"uniqueIndex;size:120;not null" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"` // bcrypt, never exposed
	IsAdmin      bool       `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt    time.Time  `json:"created_at"`
	Orders       []Order    `gorm:"foreignKey:UserID" json:"orders,omitempty"`
	CartItems    []CartItem `gorm:"foreignKey:UserID" json:"-"`
}

// GetUserID implements the Ownable interface for authorization.
func (u *User) GetUserID() uint {
	return u.ID
}
