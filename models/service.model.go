package models

import (
	"time"
)

// Service is a maintenance/repair ticket for a unit.
type Service struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UnitID uint `gorm:"index;not null" json:"unit_id"`

	Description string     `gorm:"type:text" json:"description"`
	Location    string     `gorm:"size:100" json:"location"`
	Appointment *time.Time `json:"appointment"`
	Cost        *float64   `json:"cost"`
	Status      string     `gorm:"default:'scheduled';size:20" json:"status"` // scheduled, in_progress, completed, cancelled

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Unit Unit `gorm:"foreignKey:UnitID;constraint:OnDelete:CASCADE" json:"-"`
}
