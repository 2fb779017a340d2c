package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nadeemmaahmud/sellingApp/config"
	"github.com/nadeemmaahmud/sellingApp/internal/chat"
	"github.com/nadeemmaahmud/sellingApp/internal/ws"
	"github.com/nadeemmaahmud/sellingApp/models"
	"github.com/nadeemmaahmud/sellingApp/utils"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
	hub *ws.Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	hub := ws.NewHub(nil)
	directory := chat.NewDirectory(db, chat.NewGormEntityStore(db))
	store := chat.NewMessageStore(db)

	roomHandler := NewRoomHandler(db, directory, nil)
	messageHandler := NewMessageHandler(db, directory, store, hub)

	app := fiber.New()
	api := app.Group("/api", utils.AuthMiddleware)

	rooms := api.Group("/rooms")
	rooms.Post("/", roomHandler.CreateRoom)
	rooms.Get("/", roomHandler.ListRooms)
	rooms.Patch("/:id", roomHandler.UpdateRoom)
	rooms.Get("/:id/online", roomHandler.OnlineUsers)

	messages := api.Group("/messages")
	messages.Get("/", messageHandler.ListMessages)
	messages.Post("/", messageHandler.CreateMessage)
	messages.Post("/mark-read", messageHandler.MarkRead)
	messages.Get("/unread-count", messageHandler.UnreadCount)
	messages.Get("/chat-users", messageHandler.ChatUsers)

	return &testEnv{app: app, db: db, hub: hub}
}

func (e *testEnv) seedUser(t *testing.T, email string, staff bool) *models.User {
	t.Helper()
	user := models.User{
		Email:     email,
		Password:  "x",
		FirstName: "Test",
		LastName:  "User",
		IsActive:  true,
		IsStaff:   staff,
	}
	if err := e.db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", email, err)
	}
	return &user
}

func (e *testEnv) seedUnit(t *testing.T, owner *models.User, vin string) *models.Unit {
	t.Helper()
	unit := models.Unit{UserID: owner.ID, VIN: vin, Brand: "Honda", Model: "Civic", Year: "2019"}
	if err := e.db.Create(&unit).Error; err != nil {
		t.Fatalf("failed to seed unit %s: %v", vin, err)
	}
	return &unit
}

func (e *testEnv) request(t *testing.T, method, path string, as *models.User, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if as != nil {
		token, err := utils.GenerateToken(as)
		if err != nil {
			t.Fatalf("failed to sign token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}

	var parsed map[string]interface{}
	data, _ := io.ReadAll(resp.Body)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &parsed); err != nil {
			t.Fatalf("response to %s %s is not JSON: %v (%s)", method, path, err, data)
		}
	}
	return resp, parsed
}
