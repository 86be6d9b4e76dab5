package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProjectStatus enum constants
const (
	ProjectStatusPlanning   = "planning"
	ProjectStatusInProgress = "in_progress"
	ProjectStatusCompleted  = "completed"
	ProjectStatusOnHold     = "on_hold"
	ProjectStatusCancelled  = "cancelled"
)

// ProjectType enum constants
const (
	ProjectTypeNewStore    = "new_store"
	ProjectTypeRenovation  = "renovation"
	ProjectTypeMaintenance = "maintenance"
	ProjectTypeExpansion   = "expansion"
	ProjectTypeOther       = "other"
)

// Project is a store build-out or renovation engagement for a client company
type Project struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	ProjectType string    `gorm:"type:varchar(20);not null" json:"project_type"`
	Status      string    `gorm:"type:varchar(20);not null;default:'planning';index" json:"status"`

	StoreLocation string `gorm:"type:varchar(255)" json:"store_location"`
	StoreAddress  string `gorm:"type:text" json:"store_address"`

	CompanyID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"company_id"`
	Company          *Company   `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	ProjectManagerID *uuid.UUID `gorm:"type:uuid" json:"project_manager_id"`
	ProjectManager   *User      `gorm:"foreignKey:ProjectManagerID" json:"project_manager,omitempty"`

	StartDate              *time.Time `gorm:"type:date" json:"start_date"`
	ExpectedCompletionDate *time.Time `gorm:"type:date" json:"expected_completion_date"`
	ActualCompletionDate   *time.Time `gorm:"type:date" json:"actual_completion_date"`

	EstimatedBudget decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"estimated_budget"`
	ActualCost      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"actual_cost"`

	ProgressPercentage int    `gorm:"not null;default:0" json:"progress_percentage"`
	Notes              string `gorm:"type:text" json:"notes"`
	LastUpdate         string `gorm:"type:text" json:"last_update"`

	CreatedByID uuid.UUID `gorm:"type:uuid;not null" json:"created_by_id"`
	CreatedBy   *User     `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
