package chat

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/nadeemmaahmud/sellingApp/models"
)

// Directory owns the mapping between a (user, related entity) pair and a
// chat room. Rooms are created by an operator action or auto-provisioned
// by the pairwise support endpoint; they are reactivated instead of
// duplicated, and soft-closed instead of deleted.
type Directory struct {
	db       *gorm.DB
	entities EntityStore
}

func NewDirectory(db *gorm.DB, entities EntityStore) *Directory {
	return &Directory{db: db, entities: entities}
}

// ResolveOrCreate returns the room for (userID, related), creating it if
// absent. An existing room is reactivated and its admin and subject are
// updated to the provided values, so repeating the call is an idempotent
// upsert. The returned bool reports whether a new room was created.
func (d *Directory) ResolveOrCreate(userID, adminID uint, subject string, related *EntityRef) (*models.ChatRoom, bool, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, false, fmt.Errorf("%w: subject is required", ErrValidation)
	}

	var user models.User
	if err := d.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, fmt.Errorf("%w: user %d does not exist", ErrValidation, userID)
		}
		return nil, false, err
	}
	if user.IsStaff {
		return nil, false, fmt.Errorf("%w: cannot open a support room for a staff user", ErrValidation)
	}

	if related != nil && !related.Valid() {
		return nil, false, fmt.Errorf("%w: unknown related type %q", ErrValidation, related.Kind)
	}

	room, err := d.lookupRoom(userID, related)
	if err == nil {
		return d.reactivate(room, adminID, subject)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	if related != nil {
		owned, err := d.entities.OwnedBy(*related, userID)
		if err != nil {
			return nil, false, err
		}
		if !owned {
			return nil, false, fmt.Errorf("%w: %s %d does not belong to user %d", ErrValidation, related.Kind, related.ID, userID)
		}
	}

	fresh := models.ChatRoom{
		UserID:  userID,
		AdminID: adminID,
		Subject: subject,
	}
	if related != nil {
		kind := related.Kind
		id := related.ID
		fresh.RelatedType = &kind
		fresh.RelatedID = &id
	}
	fresh.IsActive = true
	if createErr := d.db.Create(&fresh).Error; createErr != nil {
		// The unique room-key index rejects a concurrent create for the
		// same (user, entity) pair. Resolve to whichever row won.
		winner, lookupErr := d.lookupRoom(userID, related)
		if lookupErr != nil {
			return nil, false, createErr
		}
		return d.reactivate(winner, adminID, subject)
	}

	loaded, _, err := d.reload(&fresh)
	return loaded, true, err
}

func (d *Directory) lookupRoom(userID uint, related *EntityRef) (*models.ChatRoom, error) {
	query := d.db.Where("user_id = ?", userID)
	if related == nil {
		query = query.Where("related_type IS NULL AND related_id IS NULL")
	} else {
		query = query.Where("related_type = ? AND related_id = ?", related.Kind, related.ID)
	}

	var room models.ChatRoom
	if err := query.First(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// reactivate reopens an existing room and takes over its admin and
// subject, keeping the upsert idempotent.
func (d *Directory) reactivate(room *models.ChatRoom, adminID uint, subject string) (*models.ChatRoom, bool, error) {
	room.IsActive = true
	room.AdminID = adminID
	room.Subject = subject
	if err := d.db.Save(room).Error; err != nil {
		return nil, false, err
	}
	return d.reload(room)
}

func (d *Directory) reload(room *models.ChatRoom) (*models.ChatRoom, bool, error) {
	var out models.ChatRoom
	if err := d.db.Preload("User").Preload("Admin").First(&out, room.ID).Error; err != nil {
		return nil, false, err
	}
	return &out, false, nil
}

// ListFor returns the caller's active rooms, most recently updated first.
// Staff see the rooms they administer, everyone else the rooms they own.
func (d *Directory) ListFor(user *models.User) ([]models.ChatRoom, error) {
	query := d.db.Preload("User").Preload("Admin").
		Where("is_active = ?", true).
		Order("updated_at DESC")
	if user.IsStaff {
		query = query.Where("admin_id = ?", user.ID)
	} else {
		query = query.Where("user_id = ?", user.ID)
	}

	var rooms []models.ChatRoom
	if err := query.Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

// GetAuthorized loads a room for one of its participants. Non-participants
// get the same not-found answer as a missing room, so room ids reveal
// nothing.
func (d *Directory) GetAuthorized(roomID uint, user *models.User) (*models.ChatRoom, error) {
	var room models.ChatRoom
	if err := d.db.Preload("User").Preload("Admin").First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	if !room.IsParticipant(user.ID) {
		return nil, ErrRoomNotFound
	}
	return &room, nil
}

// SetActive toggles a room open or closed. Only the room's admin may do
// this.
func (d *Directory) SetActive(roomID uint, user *models.User, active bool) (*models.ChatRoom, error) {
	var room models.ChatRoom
	if err := d.db.First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	if room.AdminID != user.ID {
		return nil, ErrForbidden
	}

	room.IsActive = active
	if err := d.db.Save(&room).Error; err != nil {
		return nil, err
	}

	loaded, _, err := d.reload(&room)
	return loaded, err
}

// GetUser loads an active user by id.
func (d *Directory) GetUser(id uint) (*models.User, error) {
	var user models.User
	err := d.db.Where("id = ? AND is_active = ?", id, true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FirstAvailableAdmin picks an arbitrary active staff user for the
// pairwise support mode.
func (d *Directory) FirstAvailableAdmin() (*models.User, error) {
	var admin models.User
	err := d.db.Where("is_staff = ? AND is_active = ?", true, true).
		Order("id ASC").
		First(&admin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &admin, nil
}

// ChatPartner is one row of the staff overview: a user the admin has an
// active room with, plus unread bookkeeping.
type ChatPartner struct {
	UserID        uint       `json:"user_id"`
	Email         string     `json:"email"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	RoomID        uint       `json:"room_id"`
	Subject       string     `json:"subject"`
	LastMessageAt *time.Time `json:"last_message_time"`
	UnreadCount   int64      `json:"unread_count"`
}

// ChatPartners lists the admin's active conversations ordered by last
// activity, with the count of messages still unread by the admin.
func (d *Directory) ChatPartners(admin *models.User) ([]ChatPartner, error) {
	if !admin.IsStaff {
		return nil, ErrForbidden
	}

	var partners []ChatPartner
	err := d.db.Raw(`
		SELECT
			u.id AS user_id, u.email, u.first_name, u.last_name,
			cr.id AS room_id, cr.subject, cr.updated_at AS last_message_at,
			(
				SELECT COUNT(*) FROM chat_messages m
				WHERE m.chat_room_id = cr.id
				AND m.sender_id <> ?
				AND m.is_read = ?
			) AS unread_count
		FROM chat_rooms cr
		JOIN users u ON u.id = cr.user_id
		WHERE cr.admin_id = ? AND cr.is_active = ?
		ORDER BY cr.updated_at DESC
	`, admin.ID, false, admin.ID, true).Scan(&partners).Error
	if err != nil {
		return nil, err
	}
	return partners, nil
}
