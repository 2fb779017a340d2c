package models

import (
	"time"
)

// Related entity kinds a chat room can be attached to.
const (
	RelatedUnit    = "unit"
	RelatedService = "service"
	RelatedSell    = "sell"
)

// ChatRoom is one support conversation between exactly one end user and
// exactly one staff admin, optionally attached to a unit, service or sale.
// At most one room exists per (user, related entity) pair; rooms are never
// hard-deleted, only toggled inactive.
type ChatRoom struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  uint   `gorm:"index;not null" json:"user_id"`
	AdminID uint   `gorm:"index;not null" json:"admin_id"`
	Subject string `gorm:"not null;size:255" json:"subject"`

	// Optional tagged reference to the business entity this room is about.
	RelatedType *string `gorm:"size:20;index:idx_room_related" json:"related_type"` // unit, service, sell
	RelatedID   *uint   `gorm:"index:idx_room_related" json:"related_id"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"` // bumped on every new message

	// Relations
	User     User          `gorm:"foreignKey:UserID" json:"user"`
	Admin    User          `gorm:"foreignKey:AdminID" json:"admin"`
	Messages []ChatMessage `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// IsParticipant reports whether the given user id is one of the two
// parties of this room.
func (r *ChatRoom) IsParticipant(userID uint) bool {
	return userID == r.UserID || userID == r.AdminID
}
