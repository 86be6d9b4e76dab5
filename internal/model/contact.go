package model

import (
	"time"

	"github.com/google/uuid"
)

// Contact is an address-book entry owned by a single user
type Contact struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FirstName   string    `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName    string    `gorm:"type:varchar(100)" json:"last_name"`
	Email       string    `gorm:"type:varchar(255);index" json:"email"`
	PhoneNumber string    `gorm:"type:varchar(50)" json:"phone_number"`
	Company     string    `gorm:"type:varchar(255)" json:"company"`
	JobTitle    string    `gorm:"type:varchar(255)" json:"job_title"`
	Notes       string    `gorm:"type:text" json:"notes"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner       *User     `gorm:"foreignKey:OwnerID" json:"-"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// DailyCall schedules a contact on a user's daily call list
type DailyCall struct {
	ID                  uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID              uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	ContactID           uuid.UUID  `gorm:"type:uuid;not null;index" json:"contact_id"`
	Contact             *Contact   `gorm:"foreignKey:ContactID" json:"contact,omitempty"`
	CallFrequencyPerDay int        `gorm:"not null;default:1" json:"call_frequency_per_day"`
	NextCallAt          *time.Time `json:"next_call_at"`
	CreatedAt           time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
