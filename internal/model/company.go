package model

import (
	"time"

	"github.com/google/uuid"
)

// Company is a client or partner organization tracked by the portal
type Company struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	VatNumber    string     `gorm:"type:varchar(50);index" json:"vat_number"`
	Occupation   string     `gorm:"type:varchar(255)" json:"occupation"`
	CreationDate *time.Time `gorm:"type:date" json:"creation_date"`
	Description  string     `gorm:"type:text" json:"description"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
