package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentType enum constants
const (
	PaymentTypeCommission      = "commission_payment"
	PaymentTypeBaseSalary      = "base_salary"
	PaymentTypeBonus           = "bonus"
	PaymentTypeCarRentalIncome = "car_rental_income"
	PaymentTypeBusinessExpense = "business_expense"
	PaymentTypeOfficeRent      = "office_rent"
	PaymentTypeUtilityBill     = "utility_bill"
	PaymentTypeEquipment       = "equipment_purchase"
	PaymentTypeOtherIncome     = "other_income"
	PaymentTypeOtherExpense    = "other_expense"
)

// PaymentStatus enum constants
const (
	PaymentPending   = "pending"
	PaymentApproved  = "approved"
	PaymentPaid      = "paid"
	PaymentOverdue   = "overdue"
	PaymentCancelled = "cancelled"
	PaymentDisputed  = "disputed"
)

// Payment is a money movement in or out: payroll-style payouts, rental income,
// office expenses. Commission payments reference the summary they pay out;
// at most one payment may reference a given summary.
type Payment struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title       string          `gorm:"type:varchar(255);not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Currency    string          `gorm:"type:varchar(3);not null;default:'EUR'" json:"currency"`

	PaymentType string `gorm:"type:varchar(30);not null;index" json:"payment_type"`
	Status      string `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	DueDate  time.Time  `gorm:"type:date;not null" json:"due_date"`
	PaidDate *time.Time `gorm:"type:date" json:"paid_date"`

	EmployeeID          *uuid.UUID                `gorm:"type:uuid;index" json:"employee_id"`
	Employee            *User                     `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
	CommissionSummaryID *uuid.UUID                `gorm:"type:uuid;index" json:"commission_summary_id"`
	CommissionSummary   *MonthlyCommissionSummary `gorm:"foreignKey:CommissionSummaryID" json:"commission_summary,omitempty"`
	CompanyID           *uuid.UUID                `gorm:"type:uuid;index" json:"company_id"`
	Company             *Company                  `gorm:"foreignKey:CompanyID" json:"company,omitempty"`

	Category   string `gorm:"type:varchar(100)" json:"category"`
	ReceiptURL string `gorm:"type:varchar(500)" json:"receipt_url"`
	Notes      string `gorm:"type:text" json:"notes"`

	ApprovedByID *uuid.UUID `gorm:"type:uuid" json:"approved_by_id"`
	ApprovedBy   *User      `gorm:"foreignKey:ApprovedByID" json:"approved_by,omitempty"`
	ApprovedAt   *time.Time `json:"approved_at"`

	CreatedByID uuid.UUID `gorm:"type:uuid;not null" json:"created_by_id"`
	CreatedBy   *User     `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsIncome reports whether the payment represents money coming in.
func (p *Payment) IsIncome() bool {
	return p.PaymentType == PaymentTypeCarRentalIncome || p.PaymentType == PaymentTypeOtherIncome
}

// IsExpense reports whether the payment represents money going out.
func (p *Payment) IsExpense() bool {
	return !p.IsIncome()
}
