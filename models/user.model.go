package models

import (
	"time"
)

type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Login information
	Email    string `gorm:"unique;not null;size:100" json:"email"`
	Password string `gorm:"not null" json:"-"`

	// Profile
	FirstName string  `gorm:"not null;size:30" json:"first_name"`
	LastName  string  `gorm:"not null;size:30" json:"last_name"`
	Phone     *string `gorm:"size:15" json:"phone"`
	Address   string  `gorm:"type:text" json:"address"`
	ZipCode   string  `gorm:"size:10" json:"zip_code"`

	// Role & Status
	IsActive bool `gorm:"default:true" json:"is_active"`
	IsStaff  bool `gorm:"default:false" json:"is_staff"` // operators administer chat rooms

	// System Timestamps
	CreatedAt time.Time `json:"date_joined"`
	UpdatedAt time.Time `json:"-"`
}

// UserInfo is the compact sender/receiver block embedded in chat frames.
type UserInfo struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (u *User) PublicInfo() UserInfo {
	return UserInfo{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
