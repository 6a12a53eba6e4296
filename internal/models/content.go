package models

import "time"

// News is an announcement on the news page.
type News struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"size:200;not null" json:"title"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	ImageURL   string    `gorm:"size:300" json:"image_url,omitempty"`
	DatePosted time.Time `gorm:"not null;index" json:"date_posted"`
}

// Portfolio is a past event shown in the gallery.
type Portfolio struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Category  Category  `gorm:"size:50;not null" json:"category"`
	ImageURL  string    `gorm:"size:300;not null" json:"image_url"`
	EventType string    `gorm:"size:100" json:"event_type,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName keeps the singular table name used by the SQL migrations.
func (Portfolio) TableName() string { return "portfolio" }

// All lists every model in migration order.
func All() []any {
	return []any{&User{}, &Service{}, &CartItem{}, &Order{}, &OrderItem{}, &News{}, &Portfolio{}}
}
