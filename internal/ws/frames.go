package ws

import (
	"time"

	"github.com/nadeemmaahmud/sellingApp/models"
)

// Frame types sent to clients.
const (
	FrameChatHistory = "chat_history"
	FrameChatMessage = "chat_message"
	FrameError       = "error"
)

// InboundFrame is what clients send: the message text, plus the target
// user id when a staff member is on the pairwise support endpoint.
type InboundFrame struct {
	Message    string `json:"message"`
	ReceiverID uint   `json:"receiver_id,omitempty"`
}

// MessagePayload is the wire shape of one chat message. The receiver
// block is only present in pairwise mode.
type MessagePayload struct {
	ID       uint             `json:"id"`
	Sender   models.UserInfo  `json:"sender"`
	Receiver *models.UserInfo `json:"receiver,omitempty"`
	Message  string           `json:"message"`

	Timestamp string `json:"timestamp"`
	IsRead    bool   `json:"is_read"`
}

type HistoryFrame struct {
	Type     string           `json:"type"`
	Messages []MessagePayload `json:"messages"`
}

type MessageFrame struct {
	Type    string         `json:"type"`
	Message MessagePayload `json:"message"`
}

type ErrorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewMessagePayload serializes a persisted message; receiver may be nil.
func NewMessagePayload(msg *models.ChatMessage, receiver *models.User) MessagePayload {
	payload := MessagePayload{
		ID:        msg.ID,
		Sender:    msg.Sender.PublicInfo(),
		Message:   msg.Body,
		Timestamp: msg.Timestamp.Format(time.RFC3339),
		IsRead:    msg.IsRead,
	}
	if receiver != nil {
		info := receiver.PublicInfo()
		payload.Receiver = &info
	}
	return payload
}

// NewHistoryFrame builds the snapshot frame replayed on connect.
func NewHistoryFrame(messages []models.ChatMessage) HistoryFrame {
	payloads := make([]MessagePayload, 0, len(messages))
	for i := range messages {
		payloads = append(payloads, NewMessagePayload(&messages[i], nil))
	}
	return HistoryFrame{Type: FrameChatHistory, Messages: payloads}
}
