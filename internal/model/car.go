package model

import (
	"time"

	"github.com/google/uuid"
)

// GasLevel enum constants for rental hand-over/return readings
const (
	GasLevelEmpty         = "empty"
	GasLevelQuarter       = "quarter"
	GasLevelHalf          = "half"
	GasLevelThreeQuarters = "three_quarters"
	GasLevelFull          = "full"
)

// Car is a fleet vehicle belonging to a company
type Car struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Manufacturer string    `gorm:"type:varchar(100);not null" json:"manufacturer"`
	Model        string    `gorm:"type:varchar(100);not null" json:"model"`
	LicensePlate string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"license_plate"`
	Vin          string    `gorm:"type:varchar(17);uniqueIndex;not null" json:"vin"`
	CompanyID    uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`
	Company      *Company  `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Rental tracks one hire of a car. Once the return is recorded the row is
// locked and can no longer be edited.
type Rental struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CustomerName    string    `gorm:"type:varchar(100);not null" json:"customer_name"`
	CustomerSurname string    `gorm:"type:varchar(100);not null" json:"customer_surname"`
	RentalDays      int       `gorm:"not null" json:"rental_days"`
	ReturnDatetime  time.Time `gorm:"not null" json:"return_datetime"`
	StartKilometers int       `gorm:"not null" json:"start_kilometers"`
	GasTankStart    string    `gorm:"type:varchar(20);not null" json:"gas_tank_start"`
	EndKilometers   *int      `json:"end_kilometers"`
	GasTankEnd      *string   `gorm:"type:varchar(20)" json:"gas_tank_end"`
	IsLocked        bool      `gorm:"not null;default:false;index" json:"is_locked"`
	CompanyID       uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`
	CarID           uuid.UUID `gorm:"type:uuid;not null;index" json:"car_id"`
	Car             *Car      `gorm:"foreignKey:CarID" json:"car,omitempty"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
