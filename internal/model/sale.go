package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleType enum constants
const (
	SaleTypeStoreOpening        = "store_opening"
	SaleTypeRenovation          = "renovation"
	SaleTypeMaintenanceContract = "maintenance_contract"
	SaleTypeConsulting          = "consulting"
	SaleTypeCarRental           = "car_rental"
	SaleTypeOther               = "other"
)

// SaleStatus enum constants. Progression is one-directional:
// lead -> proposal_sent -> negotiating -> closed_won | closed_lost | cancelled.
// The three closed states are terminal.
const (
	SaleStatusLead         = "lead"
	SaleStatusProposalSent = "proposal_sent"
	SaleStatusNegotiating  = "negotiating"
	SaleStatusClosedWon    = "closed_won"
	SaleStatusClosedLost   = "closed_lost"
	SaleStatusCancelled    = "cancelled"
)

// CommissionStatus enum constants
const (
	CommissionPending    = "pending"
	CommissionCalculated = "calculated"
	CommissionPaid       = "paid"
	CommissionDisputed   = "disputed"
)

// saleStatusRank orders pipeline stages; terminal states share the top rank.
var saleStatusRank = map[string]int{
	SaleStatusLead:         0,
	SaleStatusProposalSent: 1,
	SaleStatusNegotiating:  2,
	SaleStatusClosedWon:    3,
	SaleStatusClosedLost:   3,
	SaleStatusCancelled:    3,
}

// IsTerminalSaleStatus reports whether the status ends the pipeline.
func IsTerminalSaleStatus(status string) bool {
	return status == SaleStatusClosedWon || status == SaleStatusClosedLost || status == SaleStatusCancelled
}

// CanTransitionSaleStatus reports whether a sale may move from one status to
// another. Stages may be skipped but never revisited, and terminal states are final.
func CanTransitionSaleStatus(from, to string) bool {
	fromRank, ok := saleStatusRank[from]
	if !ok {
		return false
	}
	toRank, ok := saleStatusRank[to]
	if !ok {
		return false
	}
	if IsTerminalSaleStatus(from) {
		return false
	}
	return toRank > fromRank
}

// Sale is a pipeline opportunity. Only closed_won sales are eligible for
// commission; commission_amount is meaningless in any other status.
type Sale struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	SaleType    string    `gorm:"type:varchar(30);not null;index" json:"sale_type"`
	Status      string    `gorm:"type:varchar(20);not null;default:'lead';index" json:"status"`

	SaleAmount decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"sale_amount"`
	Currency   string          `gorm:"type:varchar(3);not null;default:'EUR'" json:"currency"`

	ClientName    string `gorm:"type:varchar(255);not null" json:"client_name"`
	ClientCompany string `gorm:"type:varchar(255)" json:"client_company"`
	ClientEmail   string `gorm:"type:varchar(255)" json:"client_email"`
	ClientPhone   string `gorm:"type:varchar(50)" json:"client_phone"`

	SalespersonID uuid.UUID  `gorm:"type:uuid;not null;index" json:"salesperson_id"`
	Salesperson   *User      `gorm:"foreignKey:SalespersonID" json:"salesperson,omitempty"`
	CompanyID     *uuid.UUID `gorm:"type:uuid;index" json:"company_id"`
	Company       *Company   `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	ProjectID     *uuid.UUID `gorm:"type:uuid;index" json:"project_id"`
	Project       *Project   `gorm:"foreignKey:ProjectID" json:"project,omitempty"`

	LeadDate          time.Time  `gorm:"type:date;not null" json:"lead_date"`
	ProposalDate      *time.Time `gorm:"type:date" json:"proposal_date"`
	CloseDate         *time.Time `gorm:"type:date;index" json:"close_date"`
	ExpectedCloseDate *time.Time `gorm:"type:date" json:"expected_close_date"`

	CommissionRate   decimal.Decimal  `gorm:"type:decimal(10,4);not null;default:10" json:"commission_rate"`
	CommissionAmount *decimal.Decimal `gorm:"type:decimal(18,4)" json:"commission_amount"`
	CommissionStatus string           `gorm:"type:varchar(20);not null;default:'pending'" json:"commission_status"`

	Notes  string `gorm:"type:text" json:"notes"`
	Source string `gorm:"type:varchar(100)" json:"source"`

	CreatedByID uuid.UUID `gorm:"type:uuid;not null" json:"created_by_id"`
	CreatedBy   *User     `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
