package models

import (
	"time"
)

// Unit is a vehicle owned by a user. Rooms can be keyed to a unit, and
// staff browse units when opening a support conversation about one.
type Unit struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"index;not null" json:"user_id"`
	VIN    string `gorm:"column:vin;unique;not null;size:17" json:"vin"`
	Brand  string `gorm:"size:50" json:"brand"`
	Model  string `gorm:"size:50" json:"model"`
	Year   string `gorm:"size:4" json:"year"`

	Mileage *int   `json:"mileage"`
	Status  string `gorm:"default:'active';size:20" json:"status"` // active, sold, in_service, inactive

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}
