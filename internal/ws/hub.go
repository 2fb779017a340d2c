package ws

import (
	"fmt"
	"log"
	"sync"
)

// Group name helpers. Room-keyed connections share one group per room;
// the legacy pairwise support mode uses two independently named groups
// per conversation (the admin's own group and one per user/admin pair).
func RoomGroup(roomID uint) string {
	return fmt.Sprintf("chat_room_%d", roomID)
}

func AdminGroup(adminID uint) string {
	return fmt.Sprintf("chat_admin_%d", adminID)
}

func PairGroup(userID, adminID uint) string {
	return fmt.Sprintf("chat_user_%d_admin_%d", userID, adminID)
}

// Hub maintains the set of active clients grouped by broadcast group
// name and fans published payloads out to every connection currently
// subscribed to a group. Delivery is best effort: connections that are
// gone or too slow are dropped, never retried.
type Hub struct {
	// Mutex to protect the groups map
	mutex  sync.Mutex
	groups map[string]map[*Client]bool

	// Optional online-presence recorder (nil disables it)
	presence *Presence
}

func NewHub(presence *Presence) *Hub {
	return &Hub{
		groups:   make(map[string]map[*Client]bool),
		presence: presence,
	}
}

// Subscribe adds a connection to a group. A connection subscribes to
// exactly one group for its lifetime.
func (h *Hub) Subscribe(group string, client *Client) {
	h.mutex.Lock()
	members, ok := h.groups[group]
	if !ok {
		members = make(map[*Client]bool)
		h.groups[group] = members
	}
	members[client] = true
	count := len(members)
	h.mutex.Unlock()

	log.Printf("Connection %s (user %d) joined group %s. Members: %d", client.ID, client.User.ID, group, count)

	h.presence.Add(group, client.ID, client.User.PublicInfo())
}

// Unsubscribe removes a connection from a group and closes its send
// channel. Calling it for a connection that is already gone is a no-op,
// so double teardown never faults.
func (h *Hub) Unsubscribe(group string, client *Client) {
	h.mutex.Lock()
	members, ok := h.groups[group]
	removed := false
	if ok && members[client] {
		delete(members, client)
		client.markClosed()
		removed = true
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
	h.mutex.Unlock()

	if removed {
		log.Printf("Connection %s (user %d) left group %s", client.ID, client.User.ID, group)
		h.presence.Remove(group, client.ID)
	}
}

// Publish delivers the payload to every connection currently in the
// group, including the publisher's own. Slow consumers with a full send
// buffer are disconnected rather than blocking the rest of the group.
func (h *Hub) Publish(group string, payload []byte) {
	var dropped []*Client

	h.mutex.Lock()
	for client := range h.groups[group] {
		select {
		case client.Send <- payload:
		default:
			delete(h.groups[group], client)
			client.markClosed()
			dropped = append(dropped, client)
		}
	}
	if members, ok := h.groups[group]; ok && len(members) == 0 {
		delete(h.groups, group)
	}
	h.mutex.Unlock()

	for _, client := range dropped {
		log.Printf("Connection %s send buffer full, dropped from group %s", client.ID, group)
		h.presence.Remove(group, client.ID)
	}
}

// GroupSize reports how many connections are subscribed to a group.
func (h *Hub) GroupSize(group string) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.groups[group])
}
