package models

import (
	"time"
)

// ChatMessage belongs to exactly one ChatRoom and is cascade-deleted with
// it. The sender must be one of the room's two participants; is_read is
// flipped only by the counterpart via mark-read.
type ChatMessage struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	ChatRoomID uint `gorm:"index;not null" json:"chat_room_id"`
	SenderID   uint `gorm:"index;not null" json:"sender_id"`

	Body string `gorm:"column:message;type:text;not null" json:"message"`

	Timestamp time.Time `gorm:"autoCreateTime;index" json:"timestamp"`
	IsRead    bool      `gorm:"default:false" json:"is_read"`

	// Relations
	Sender User `gorm:"foreignKey:SenderID" json:"sender"`
}
