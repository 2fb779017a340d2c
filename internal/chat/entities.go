package chat

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/nadeemmaahmud/sellingApp/models"
)

// EntityRef is a tagged reference to the business entity a chat room is
// about: a unit, a service ticket or a sale.
type EntityRef struct {
	Kind string `json:"kind"`
	ID   uint   `json:"id"`
}

func (r EntityRef) Valid() bool {
	switch r.Kind {
	case models.RelatedUnit, models.RelatedService, models.RelatedSell:
		return true
	}
	return false
}

// EntityStore answers ownership questions about fleet entities so the
// room directory never joins against their tables itself.
type EntityStore interface {
	// OwnedBy reports whether the referenced entity exists and belongs
	// to the given user.
	OwnedBy(ref EntityRef, userID uint) (bool, error)
}

// GormEntityStore resolves entity ownership against the fleet tables.
type GormEntityStore struct {
	db *gorm.DB
}

func NewGormEntityStore(db *gorm.DB) *GormEntityStore {
	return &GormEntityStore{db: db}
}

func (s *GormEntityStore) OwnedBy(ref EntityRef, userID uint) (bool, error) {
	var count int64
	var err error

	switch ref.Kind {
	case models.RelatedUnit:
		err = s.db.Model(&models.Unit{}).
			Where("id = ? AND user_id = ?", ref.ID, userID).
			Count(&count).Error
	case models.RelatedService:
		err = s.db.Model(&models.Service{}).
			Joins("JOIN units ON units.id = services.unit_id").
			Where("services.id = ? AND units.user_id = ?", ref.ID, userID).
			Count(&count).Error
	case models.RelatedSell:
		err = s.db.Model(&models.Sell{}).
			Joins("JOIN units ON units.id = sells.unit_id").
			Where("sells.id = ? AND units.user_id = ?", ref.ID, userID).
			Count(&count).Error
	default:
		return false, fmt.Errorf("%w: unknown related type %q", ErrValidation, ref.Kind)
	}

	if err != nil {
		return false, err
	}
	return count > 0, nil
}
