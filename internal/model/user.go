package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role constants. Hierarchy is flat — authorization is an allow-list per route.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleHead    = "head"
	RolePillar  = "pillar"
	RoleAgent   = "agent"
)

// User represents a staff member of the organization
type User struct {
	ID                uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email             string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password          string         `gorm:"type:varchar(255);not null" json:"-"` // Omit password from JSON requests/responses
	FirstName         string         `gorm:"type:varchar(100)" json:"first_name"`
	Surname           string         `gorm:"type:varchar(100)" json:"surname"`
	Birthday          *time.Time     `gorm:"type:date" json:"birthday"`
	Role              string         `gorm:"type:varchar(50);not null;default:'agent'" json:"role"`
	IsActive          bool           `gorm:"not null;default:true" json:"is_active"`
	ProfilePictureURL string         `gorm:"type:varchar(500)" json:"profile_picture_url"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"` // GORM soft delete

	Groups []Group `gorm:"many2many:group_members;" json:"-"`
}

// FullName joins first name and surname, falling back to whichever is set, then email.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.Surname != "":
		return u.FirstName + " " + u.Surname
	case u.FirstName != "":
		return u.FirstName
	case u.Surname != "":
		return u.Surname
	default:
		return u.Email
	}
}

// PasswordResetToken is a single-use token mailed to users who forgot their password
type PasswordResetToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Token     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	IsUsed    bool      `gorm:"not null;default:false" json:"is_used"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
