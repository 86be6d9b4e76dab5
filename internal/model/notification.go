package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an in-app message for a single user, optionally linking to
// the portal page it concerns
type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Message   string    `gorm:"type:varchar(500);not null" json:"message"`
	Link      string    `gorm:"type:varchar(255)" json:"link"`
	IsRead    bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
