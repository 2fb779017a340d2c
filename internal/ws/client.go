package ws

import (
	"encoding/json"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/nadeemmaahmud/sellingApp/internal/chat"
	"github.com/nadeemmaahmud/sellingApp/models"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096 // 4KB
)

// Client is a middleman between one websocket connection and the hub. It
// owns the per-connection session state: the authenticated user, the
// resolved room and the broadcast group subscription.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// Buffered channel of outbound frames.
	Send chan []byte

	// Connection id, unique per socket.
	ID string

	// Authenticated principal snapshot.
	User models.User

	// Resolved room. Nil only for staff on the pairwise endpoint, where
	// the target room depends on each frame's receiver_id.
	Room *models.ChatRoom

	// Group this connection is subscribed to.
	Group string

	// Pairwise legacy mode: every message is re-published into the
	// counterpart's independently named group.
	Pairwise bool

	Directory *chat.Directory
	Store     *chat.MessageStore

	mu     sync.Mutex
	closed bool
}

// markClosed closes the send channel exactly once. Only the hub calls
// this, when the connection leaves its group.
func (c *Client) markClosed() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
	c.mu.Unlock()
}

// TrySend queues a frame for this connection unless the hub has already
// torn it down or the buffer is full. Reports whether the frame landed.
func (c *Client) TrySend(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- payload:
		return true
	default:
		return false
	}
}

// ReadPump pumps frames from the websocket connection into the session.
// It runs on the connection's goroutine; teardown here is the single
// place the subscription is released.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unsubscribe(c.Group, c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket error: %v", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// WritePump pumps frames from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes one inbound text frame. Bad frames produce an
// error frame and leave the session subscribed; only connect-time
// failures close the socket.
func (c *Client) handleMessage(raw []byte) {
	var frame InboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		c.sendError("Invalid message payload")
		return
	}

	if strings.TrimSpace(frame.Message) == "" {
		c.sendError("Message cannot be empty")
		return
	}

	room := c.Room
	var receiver *models.User
	peerGroup := ""

	if c.Pairwise {
		if c.User.IsStaff {
			// Staff address a specific user per frame; the room for that
			// pair is auto-provisioned on first contact.
			if frame.ReceiverID == 0 {
				c.sendError("Receiver ID is required for admin")
				return
			}
			target, err := c.Directory.GetUser(frame.ReceiverID)
			if err != nil {
				c.sendError("Receiver not found")
				return
			}
			resolved, _, err := c.Directory.ResolveOrCreate(target.ID, c.User.ID, "Support", nil)
			if err != nil {
				c.sendError(reason(err))
				return
			}
			room = resolved
			receiver = target
			peerGroup = PairGroup(target.ID, c.User.ID)
		} else {
			receiver = &room.Admin
			peerGroup = AdminGroup(room.AdminID)
		}
	}

	msg, err := c.Store.Append(room, &c.User, frame.Message)
	if err != nil {
		c.sendError(reason(err))
		return
	}

	out := MessageFrame{
		Type:    FrameChatMessage,
		Message: NewMessagePayload(msg, receiver),
	}
	data, err := json.Marshal(out)
	if err != nil {
		log.Printf("Failed to marshal chat_message frame: %v", err)
		return
	}

	c.Hub.Publish(c.Group, data)
	if c.Pairwise && peerGroup != "" {
		// The pairwise scheme uses two independently named groups per
		// conversation, so the counterpart's group gets its own publish.
		c.Hub.Publish(peerGroup, data)
	}
}

func (c *Client) sendError(message string) {
	data, err := json.Marshal(ErrorFrame{Type: FrameError, Message: message})
	if err != nil {
		return
	}
	c.TrySend(data)
}

// reason strips the sentinel prefix off wrapped validation errors so the
// client sees only the human part.
func reason(err error) string {
	if errors.Is(err, chat.ErrValidation) {
		msg := err.Error()
		if idx := strings.Index(msg, ": "); idx >= 0 {
			return msg[idx+2:]
		}
		return msg
	}
	return "Failed to send message"
}
