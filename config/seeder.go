package config

import (
	"log"

	"gorm.io/gorm"

	"github.com/nadeemmaahmud/sellingApp/models"
	"github.com/nadeemmaahmud/sellingApp/utils"
)

func SeedUsers(db *gorm.DB) {
	log.Println("Seeding users...")

	password, _ := utils.HashPassword("password123")

	users := []models.User{
		{
			Email:     "admin@sellnservice.com",
			Password:  password,
			FirstName: "Support",
			LastName:  "Admin",
			IsActive:  true,
			IsStaff:   true,
		},
		{
			Email:     "user1@example.com",
			Password:  password,
			FirstName: "User",
			LastName:  "One",
			IsActive:  true,
		},
		{
			Email:     "user2@example.com",
			Password:  password,
			FirstName: "User",
			LastName:  "Two",
			IsActive:  true,
		},
	}

	for _, user := range users {
		var existing models.User
		if err := db.Where("email = ?", user.Email).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				if err := db.Create(&user).Error; err != nil {
					log.Printf("Failed to seed user %s: %v", user.Email, err)
				} else {
					log.Printf("User seeded: %s (ID: %d)", user.Email, user.ID)
				}
			}
		} else {
			log.Printf("User already exists: %s", user.Email)
		}
	}

	log.Println("User seeding complete.")
}

func SeedUnits(db *gorm.DB) {
	log.Println("Seeding units...")

	var owner models.User
	if err := db.Where("email = ?", "user1@example.com").First(&owner).Error; err != nil {
		log.Printf("Skipping unit seeding, no owner user: %v", err)
		return
	}

	units := []models.Unit{
		{
			UserID: owner.ID,
			VIN:    "1HGBH41JXMN109186",
			Brand:  "Honda",
			Model:  "Civic",
			Year:   "2019",
		},
		{
			UserID: owner.ID,
			VIN:    "2T1BURHE5JC014906",
			Brand:  "Toyota",
			Model:  "Corolla",
			Year:   "2018",
		},
	}

	for _, unit := range units {
		var existing models.Unit
		if err := db.Where("vin = ?", unit.VIN).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				if err := db.Create(&unit).Error; err != nil {
					log.Printf("Failed to seed unit %s: %v", unit.VIN, err)
				}
			}
		}
	}

	log.Println("Unit seeding complete.")
}
