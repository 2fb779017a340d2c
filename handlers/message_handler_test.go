package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/nadeemmaahmud/sellingApp/internal/ws"
)

func TestMessageFlow(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "admin@example.com", true)
	user := env.seedUser(t, "user@example.com", false)

	_, parsed := env.request(t, http.MethodPost, "/api/rooms/", admin, map[string]interface{}{
		"user_id": user.ID,
		"subject": "Hello",
	})
	roomID := parsed["room"].(map[string]interface{})["id"].(float64)

	// Empty body rejected, nothing persisted.
	resp, _ := env.request(t, http.MethodPost, "/api/messages/", user, map[string]interface{}{
		"chat_room_id": roomID,
		"message":      "   ",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for empty message, got %d", resp.StatusCode)
	}

	// A live room subscriber should see the REST message too.
	listener := &ws.Client{Hub: env.hub, Send: make(chan []byte, 4), ID: "listener"}
	env.hub.Subscribe(ws.RoomGroup(uint(roomID)), listener)

	resp, parsed = env.request(t, http.MethodPost, "/api/messages/", user, map[string]interface{}{
		"chat_room_id": roomID,
		"message":      "Is it still under warranty?",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%v)", resp.StatusCode, parsed)
	}
	msg := parsed["message"].(map[string]interface{})
	if msg["message"] != "Is it still under warranty?" {
		t.Errorf("unexpected message body: %v", msg["message"])
	}
	if msg["is_read"] != false {
		t.Error("new message must start unread")
	}

	select {
	case data := <-listener.Send:
		var frame ws.MessageFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			t.Fatalf("broadcast frame is not JSON: %v", err)
		}
		if frame.Type != ws.FrameChatMessage || frame.Message.Message != "Is it still under warranty?" {
			t.Errorf("unexpected broadcast frame: %+v", frame)
		}
	default:
		t.Error("expected the REST message to reach the room group")
	}

	// History lists it, oldest first.
	_, parsed = env.request(t, http.MethodGet, "/api/messages/?chat_room_id=1", admin, nil)
	messages := parsed["messages"].([]interface{})
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}

	// Admin has one unread; the sender has none.
	_, parsed = env.request(t, http.MethodGet, "/api/messages/unread-count", admin, nil)
	if parsed["unread_count"].(float64) != 1 {
		t.Errorf("admin unread count: %v", parsed["unread_count"])
	}
	_, parsed = env.request(t, http.MethodGet, "/api/messages/unread-count", user, nil)
	if parsed["unread_count"].(float64) != 0 {
		t.Errorf("sender unread count: %v", parsed["unread_count"])
	}

	// Mark read is effective, then idempotent.
	_, parsed = env.request(t, http.MethodPost, "/api/messages/mark-read", admin, map[string]interface{}{
		"chat_room_id": roomID,
	})
	if parsed["count"].(float64) != 1 {
		t.Errorf("expected 1 marked, got %v", parsed["count"])
	}
	_, parsed = env.request(t, http.MethodPost, "/api/messages/mark-read", admin, map[string]interface{}{
		"chat_room_id": roomID,
	})
	if parsed["count"].(float64) != 0 {
		t.Errorf("repeat mark-read should report 0, got %v", parsed["count"])
	}

	_, parsed = env.request(t, http.MethodGet, "/api/messages/unread-count", admin, nil)
	if parsed["unread_count"].(float64) != 0 {
		t.Errorf("admin unread count after mark-read: %v", parsed["unread_count"])
	}
}

func TestMessagesForbiddenForOutsiders(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "admin@example.com", true)
	user := env.seedUser(t, "user@example.com", false)
	outsider := env.seedUser(t, "outsider@example.com", false)

	_, parsed := env.request(t, http.MethodPost, "/api/rooms/", admin, map[string]interface{}{
		"user_id": user.ID,
		"subject": "Hello",
	})
	roomID := parsed["room"].(map[string]interface{})["id"].(float64)

	// Non-participants cannot read or write; room ids leak nothing.
	resp, _ := env.request(t, http.MethodGet, "/api/messages/?chat_room_id=1", outsider, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for outsider read, got %d", resp.StatusCode)
	}

	resp, _ = env.request(t, http.MethodPost, "/api/messages/", outsider, map[string]interface{}{
		"chat_room_id": roomID,
		"message":      "let me in",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for outsider write, got %d", resp.StatusCode)
	}

	// No token at all: 401 before any lookup.
	resp, _ = env.request(t, http.MethodGet, "/api/messages/unread-count", nil, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}
}

func TestChatUsersOverview(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "admin@example.com", true)
	user := env.seedUser(t, "user@example.com", false)

	_, parsed := env.request(t, http.MethodPost, "/api/rooms/", admin, map[string]interface{}{
		"user_id": user.ID,
		"subject": "Hello",
	})
	roomID := parsed["room"].(map[string]interface{})["id"].(float64)

	env.request(t, http.MethodPost, "/api/messages/", user, map[string]interface{}{
		"chat_room_id": roomID,
		"message":      "anyone there?",
	})

	_, parsed = env.request(t, http.MethodGet, "/api/messages/chat-users", admin, nil)
	users := parsed["users"].([]interface{})
	if len(users) != 1 {
		t.Fatalf("expected 1 chat user, got %d", len(users))
	}
	row := users[0].(map[string]interface{})
	if row["email"] != user.Email || row["unread_count"].(float64) != 1 {
		t.Errorf("unexpected overview row: %v", row)
	}

	resp, _ := env.request(t, http.MethodGet, "/api/messages/chat-users", user, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for non-staff, got %d", resp.StatusCode)
	}
}
