package model

import (
	"github.com/google/uuid"
)

// Group is a named set of users; tasks can be assigned to a group instead of a single owner
type Group struct {
	ID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name    string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Members []User    `gorm:"many2many:group_members;" json:"members,omitempty"`
}
