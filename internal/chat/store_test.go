package chat

import (
	"errors"
	"fmt"
	"testing"

	"github.com/nadeemmaahmud/sellingApp/models"
)

func TestAppendAndHistory(t *testing.T) {
	db := newTestDB(t)
	dir := newDirectory(db)
	store := NewMessageStore(db)
	admin := seedUser(t, db, "admin@example.com", true)
	user := seedUser(t, db, "user@example.com", false)

	room, _, err := dir.ResolveOrCreate(user.ID, admin.ID, "Hello", nil)
	if err != nil {
		t.Fatalf("ResolveOrCreate failed: %v", err)
	}
	before := room.UpdatedAt

	for i := 0; i < 3; i++ {
		sender := user
		if i%2 == 1 {
			sender = admin
		}
		if _, err := store.Append(room, sender, fmt.Sprintf("message %d", i)); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
	}
	last, err := store.Append(room, user, "  final  ")
	if err != nil {
		t.Fatalf("final Append failed: %v", err)
	}
	if last.Body != "final" {
		t.Errorf("body should be trimmed, got %q", last.Body)
	}

	history, err := store.History(room, 0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(history))
	}
	if history[len(history)-1].ID != last.ID {
		t.Errorf("appended message must be the last history element")
	}
	for i := 1; i < len(history); i++ {
		if history[i].Timestamp.Before(history[i-1].Timestamp) {
			t.Errorf("history not ascending at index %d", i)
		}
	}
	if history[0].Sender.Email != user.Email {
		t.Errorf("history must preload senders, got %+v", history[0].Sender)
	}

	var fresh models.ChatRoom
	if err := db.First(&fresh, room.ID).Error; err != nil {
		t.Fatalf("failed to reload room: %v", err)
	}
	if !fresh.UpdatedAt.After(before) {
		t.Error("Append must bump the room's updated_at")
	}
}

func TestHistoryLimit(t *testing.T) {
	db := newTestDB(t)
	dir := newDirectory(db)
	store := NewMessageStore(db)
	admin := seedUser(t, db, "admin@example.com", true)
	user := seedUser(t, db, "user@example.com", false)

	room, _, err := dir.ResolveOrCreate(user.ID, admin.ID, "Hello", nil)
	if err != nil {
		t.Fatalf("ResolveOrCreate failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		if _, err := store.Append(room, user, fmt.Sprintf("message %d", i)); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	history, err := store.History(room, 3)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(history))
	}
	// The most recent 3, still presented oldest first.
	if history[0].Body != "message 2" || history[2].Body != "message 4" {
		t.Errorf("unexpected window: %q .. %q", history[0].Body, history[2].Body)
	}
}

func TestAppendRejectsOutsider(t *testing.T) {
	db := newTestDB(t)
	dir := newDirectory(db)
	store := NewMessageStore(db)
	admin := seedUser(t, db, "admin@example.com", true)
	user := seedUser(t, db, "user@example.com", false)
	outsider := seedUser(t, db, "outsider@example.com", false)

	room, _, err := dir.ResolveOrCreate(user.ID, admin.ID, "Hello", nil)
	if err != nil {
		t.Fatalf("ResolveOrCreate failed: %v", err)
	}

	if _, err := store.Append(room, outsider, "let me in"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}

	var count int64
	db.Model(&models.ChatMessage{}).Count(&count)
	if count != 0 {
		t.Errorf("no message should be persisted, found %d", count)
	}
}

func TestAppendRejectsEmptyBody(t *testing.T) {
	db := newTestDB(t)
	dir := newDirectory(db)
	store := NewMessageStore(db)
	admin := seedUser(t, db, "admin@example.com", true)
	user := seedUser(t, db, "user@example.com", false)

	room, _, err := dir.ResolveOrCreate(user.ID, admin.ID, "Hello", nil)
	if err != nil {
		t.Fatalf("ResolveOrCreate failed: %v", err)
	}

	for _, body := range []string{"", "   ", "\n\t"} {
		if _, err := store.Append(room, user, body); !errors.Is(err, ErrValidation) {
			t.Errorf("body %q: expected ErrValidation, got %v", body, err)
		}
	}
}

func TestMarkReadIsIdempotentAndDirectional(t *testing.T) {
	db := newTestDB(t)
	dir := newDirectory(db)
	store := NewMessageStore(db)
	admin := seedUser(t, db, "admin@example.com", true)
	user := seedUser(t, db, "user@example.com", false)

	room, _, err := dir.ResolveOrCreate(user.ID, admin.ID, "Hello", nil)
	if err != nil {
		t.Fatalf("ResolveOrCreate failed: %v", err)
	}

	// Two from the admin, one from the user.
	for i := 0; i < 2; i++ {
		if _, err := store.Append(room, admin, "from admin"); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	if _, err := store.Append(room, user, "from user"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	count, err := store.MarkRead(room, user)
	if err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 messages marked, got %d", count)
	}

	count, err = store.MarkRead(room, user)
	if err != nil {
		t.Fatalf("second MarkRead failed: %v", err)
	}
	if count != 0 {
		t.Errorf("repeat call must mark 0, got %d", count)
	}

	// The user's own message is still unread from the admin's side.
	unread, err := store.UnreadCount(admin)
	if err != nil {
		t.Fatalf("UnreadCount failed: %v", err)
	}
	if unread != 1 {
		t.Errorf("admin should still have 1 unread, got %d", unread)
	}
}

func TestUnreadCountExcludesClosedRooms(t *testing.T) {
	db := newTestDB(t)
	dir := newDirectory(db)
	store := NewMessageStore(db)
	admin := seedUser(t, db, "admin@example.com", true)
	user := seedUser(t, db, "user@example.com", false)

	room, _, err := dir.ResolveOrCreate(user.ID, admin.ID, "Hello", nil)
	if err != nil {
		t.Fatalf("ResolveOrCreate failed: %v", err)
	}
	if _, err := store.Append(room, admin, "are you there?"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	unread, err := store.UnreadCount(user)
	if err != nil {
		t.Fatalf("UnreadCount failed: %v", err)
	}
	if unread != 1 {
		t.Fatalf("expected 1 unread, got %d", unread)
	}

	if _, err := dir.SetActive(room.ID, admin, false); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}

	unread, err = store.UnreadCount(user)
	if err != nil {
		t.Fatalf("UnreadCount failed: %v", err)
	}
	if unread != 0 {
		t.Errorf("closed rooms must not count, got %d", unread)
	}
}

func TestHistoryForSpansRooms(t *testing.T) {
	db := newTestDB(t)
	dir := newDirectory(db)
	store := NewMessageStore(db)
	admin := seedUser(t, db, "admin@example.com", true)
	alice := seedUser(t, db, "alice@example.com", false)
	bob := seedUser(t, db, "bob@example.com", false)

	aliceRoom, _, err := dir.ResolveOrCreate(alice.ID, admin.ID, "Alice", nil)
	if err != nil {
		t.Fatalf("ResolveOrCreate failed: %v", err)
	}
	bobRoom, _, err := dir.ResolveOrCreate(bob.ID, admin.ID, "Bob", nil)
	if err != nil {
		t.Fatalf("ResolveOrCreate failed: %v", err)
	}

	if _, err := store.Append(aliceRoom, alice, "hi from alice"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if _, err := store.Append(bobRoom, bob, "hi from bob"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	// The admin's snapshot spans both conversations.
	history, err := store.HistoryFor(admin, 0)
	if err != nil {
		t.Fatalf("HistoryFor failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 messages for admin, got %d", len(history))
	}

	// Alice only sees her own room.
	history, err = store.HistoryFor(alice, 0)
	if err != nil {
		t.Fatalf("HistoryFor failed: %v", err)
	}
	if len(history) != 1 || history[0].Body != "hi from alice" {
		t.Errorf("unexpected history for alice: %+v", history)
	}
}
