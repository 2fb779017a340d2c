package config

import (
	"log"

	"gorm.io/gorm"

	"github.com/nadeemmaahmud/sellingApp/models"
)

func Migrate(db *gorm.DB) error {
	// Migrate the schema
	err := db.AutoMigrate(
		&models.User{},
		&models.Unit{},
		&models.Service{},
		&models.Sell{},
		&models.ChatRoom{},
		&models.ChatMessage{},
	)

	if err != nil {
		log.Printf("Failed to migrate database schema: %v", err)
		return err
	}

	// At most one room per (user, related entity). COALESCE folds the
	// NULL "no related entity" key into a single value so concurrent
	// creates for the same pair collide instead of duplicating the room.
	err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_chat_rooms_room_key
		ON chat_rooms (user_id, COALESCE(related_type, ''), COALESCE(related_id, 0))`).Error
	if err != nil {
		log.Printf("Failed to create room key index: %v", err)
		return err
	}

	log.Println("Database Migrations completed succesfully...")
	return nil
}

func ResetAndMigrate(db *gorm.DB) error {
	// Drop all tables
	all := []interface{}{
		&models.ChatMessage{},
		&models.ChatRoom{},
		&models.Sell{},
		&models.Service{},
		&models.Unit{},
		&models.User{},
	}

	if err := db.Migrator().DropTable(all...); err != nil {
		log.Printf("Failed to drop tables: %v", err)
		return err
	}

	log.Println("All tables dropped successfully.")

	if err := Migrate(db); err != nil {
		return err
	}

	SeedUsers(db)
	SeedUnits(db)

	log.Println("Database reset and migration completed successfully.")
	return nil
}
