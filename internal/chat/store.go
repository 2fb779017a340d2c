package chat

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/nadeemmaahmud/sellingApp/models"
)

// DefaultHistoryLimit caps how many past messages a new connection gets
// replayed on connect.
const DefaultHistoryLimit = 100

// MessageStore is the append-only persistence layer for chat messages,
// scoped to rooms, with per-message read tracking.
type MessageStore struct {
	db *gorm.DB
}

func NewMessageStore(db *gorm.DB) *MessageStore {
	return &MessageStore{db: db}
}

// Append validates and persists one message and bumps the room's
// updated_at so room lists sort by last activity.
func (s *MessageStore) Append(room *models.ChatRoom, sender *models.User, body string) (*models.ChatMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: message cannot be empty", ErrValidation)
	}
	if !room.IsParticipant(sender.ID) {
		return nil, fmt.Errorf("%w: sender is not a participant of this room", ErrValidation)
	}

	msg := models.ChatMessage{
		ChatRoomID: room.ID,
		SenderID:   sender.ID,
		Body:       body,
	}
	if err := s.db.Omit("Sender").Create(&msg).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.ChatRoom{}).
		Where("id = ?", room.ID).
		Update("updated_at", time.Now()).Error; err != nil {
		return nil, err
	}

	msg.Sender = *sender
	return &msg, nil
}

// History returns the most recent limit messages of a room, presented
// oldest first. Ties on timestamp fall back to insertion order.
func (s *MessageStore) History(room *models.ChatRoom, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	var messages []models.ChatMessage
	err := s.db.Preload("Sender").
		Where("chat_room_id = ?", room.ID).
		Order("timestamp DESC").Order("id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	reverse(messages)
	return messages, nil
}

// HistoryFor returns the caller's recent messages across all their rooms,
// oldest first. This is the connect snapshot for the pairwise support
// endpoint, where a staff member has no single room.
func (s *MessageStore) HistoryFor(user *models.User, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	query := s.db.Preload("Sender").
		Joins("JOIN chat_rooms ON chat_rooms.id = chat_messages.chat_room_id").
		Order("chat_messages.timestamp DESC").Order("chat_messages.id DESC").
		Limit(limit)
	if user.IsStaff {
		query = query.Where("chat_rooms.admin_id = ?", user.ID)
	} else {
		query = query.Where("chat_rooms.user_id = ?", user.ID)
	}

	var messages []models.ChatMessage
	if err := query.Find(&messages).Error; err != nil {
		return nil, err
	}

	reverse(messages)
	return messages, nil
}

// MarkRead flags every unread message in the room that the reader did not
// write. Returns how many rows changed; calling it again returns 0.
func (s *MessageStore) MarkRead(room *models.ChatRoom, reader *models.User) (int64, error) {
	res := s.db.Model(&models.ChatMessage{}).
		Where("chat_room_id = ? AND sender_id <> ? AND is_read = ?", room.ID, reader.ID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// UnreadCount sums the messages addressed to the user that are still
// unread, over their active rooms only. Closed rooms do not count.
func (s *MessageStore) UnreadCount(user *models.User) (int64, error) {
	query := s.db.Model(&models.ChatMessage{}).
		Joins("JOIN chat_rooms ON chat_rooms.id = chat_messages.chat_room_id").
		Where("chat_rooms.is_active = ?", true).
		Where("chat_messages.sender_id <> ? AND chat_messages.is_read = ?", user.ID, false)
	if user.IsStaff {
		query = query.Where("chat_rooms.admin_id = ?", user.ID)
	} else {
		query = query.Where("chat_rooms.user_id = ?", user.ID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func reverse(messages []models.ChatMessage) {
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
}
