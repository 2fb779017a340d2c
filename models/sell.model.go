package models

import (
	"time"
)

// Sell records the sale of a unit.
type Sell struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UnitID uint `gorm:"index;not null" json:"unit_id"`

	SalePrice  float64   `gorm:"not null" json:"sale_price"`
	SaleDate   time.Time `json:"sale_date"`
	BuyerName  string    `gorm:"size:100" json:"buyer_name"`
	BuyerEmail string    `gorm:"size:100" json:"buyer_email"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Unit Unit `gorm:"foreignKey:UnitID;constraint:OnDelete:CASCADE" json:"-"`
}
