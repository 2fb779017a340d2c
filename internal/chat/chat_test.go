package chat

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nadeemmaahmud/sellingApp/config"
	"github.com/nadeemmaahmud/sellingApp/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache database keeps gorm's pooled connections on
	// the same in-memory store, isolated per test by name.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := config.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string, staff bool) *models.User {
	t.Helper()

	user := models.User{
		Email:     email,
		Password:  "x",
		FirstName: "Test",
		LastName:  "User",
		IsActive:  true,
		IsStaff:   staff,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", email, err)
	}
	return &user
}

func seedUnit(t *testing.T, db *gorm.DB, owner *models.User, vin string) *models.Unit {
	t.Helper()

	unit := models.Unit{
		UserID: owner.ID,
		VIN:    vin,
		Brand:  "Honda",
		Model:  "Civic",
		Year:   "2019",
	}
	if err := db.Create(&unit).Error; err != nil {
		t.Fatalf("failed to seed unit %s: %v", vin, err)
	}
	return &unit
}

func newDirectory(db *gorm.DB) *Directory {
	return NewDirectory(db, NewGormEntityStore(db))
}
