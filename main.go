package main

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/nadeemmaahmud/sellingApp/config"
	"github.com/nadeemmaahmud/sellingApp/handlers"
	"github.com/nadeemmaahmud/sellingApp/internal/chat"
	"github.com/nadeemmaahmud/sellingApp/internal/ws"
	"github.com/nadeemmaahmud/sellingApp/middleware"
	"github.com/nadeemmaahmud/sellingApp/utils"
)

func main() {
	cfg := config.LoadConfig()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	if len(os.Args) > 1 && os.Args[1] == "reset" {
		if err := config.ResetAndMigrate(db); err != nil {
			log.Fatal("Failed to reset database: ", err)
		}
		return
	}

	if err := config.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database: ", err)
	}
	config.SeedUsers(db)

	// Presence is optional; without Redis the chat still works, only the
	// online-user lists are empty.
	var presence *ws.Presence
	if cfg.RedisAddr != "" {
		presence = ws.NewPresence(redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}))
	}

	hub := ws.NewHub(presence)
	directory := chat.NewDirectory(db, chat.NewGormEntityStore(db))
	store := chat.NewMessageStore(db)

	authHandler := handlers.NewAuthHandler(db)
	roomHandler := handlers.NewRoomHandler(db, directory, presence)
	messageHandler := handlers.NewMessageHandler(db, directory, store, hub)
	chatHandler := handlers.NewChatHandler(hub, db, directory, store)
	unitHandler := handlers.NewUnitHandler(db)
	userHandler := handlers.NewUserHandler(db)

	app := fiber.New(fiber.Config{
		AppName:      "SellnService Chat",
		ServerHeader: "SellnService Server/1.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Default 500 statuscode
			code := fiber.StatusInternalServerError
			msg := "Internal Server Error"

			// Retrieve the custom statuscode if it's a *fiber.Error
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				msg = e.Message
			}

			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": msg,
			})
		},
	})

	middleware.SetupMiddleware(app, cfg)

	// Health Check Endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "success",
			"message": "API is healthy",
		})
	})

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	protected := api.Group("", utils.AuthMiddleware)
	protected.Get("/user", authHandler.GetCurrentUser)
	protected.Get("/users/search", userHandler.SearchUsers)

	units := protected.Group("/units")
	units.Post("/", unitHandler.CreateUnit)
	units.Get("/", unitHandler.ListUnits)
	units.Get("/:id", unitHandler.GetUnit)

	rooms := protected.Group("/rooms")
	rooms.Post("/", roomHandler.CreateRoom)
	rooms.Get("/", roomHandler.ListRooms)
	rooms.Patch("/:id", roomHandler.UpdateRoom)
	rooms.Get("/:id/online", roomHandler.OnlineUsers)

	messages := protected.Group("/messages")
	messages.Get("/", messageHandler.ListMessages)
	messages.Post("/", messageHandler.CreateMessage)
	messages.Post("/mark-read", messageHandler.MarkRead)
	messages.Get("/unread-count", messageHandler.UnreadCount)
	messages.Get("/chat-users", messageHandler.ChatUsers)

	// WebSocket endpoints: room-keyed primary, pairwise legacy support.
	wsGroup := app.Group("/ws", utils.AuthMiddleware, chatHandler.WebSocketUpgradeMiddleware)
	wsGroup.Get("/chat/:roomID", chatHandler.RoomHandler())
	wsGroup.Get("/support", chatHandler.SupportHandler())

	middleware.SetupErrorHandler(app)

	log.Printf("Server starting on host %s in port %s", cfg.HOST, cfg.AppPort)

	if err := app.Listen(cfg.HOST + ":" + cfg.AppPort); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
