package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommissionRule configures how one employee earns commission. A nil SaleType
// is a wildcard matching every sale type. Rules are matched in Priority order
// (lowest first); the first matching rule wins per sale. Tier thresholds are
// evaluated independently for every active rule and stack.
type CommissionRule struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index" json:"employee_id"`
	Employee   *User     `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`

	SaleType           *string         `gorm:"type:varchar(30)" json:"sale_type"` // nil = applies to all sale types
	BaseCommissionRate decimal.Decimal `gorm:"type:decimal(10,4);not null;default:10" json:"base_commission_rate"`
	MinSaleAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"min_sale_amount"`

	Tier1Threshold *decimal.Decimal `gorm:"type:decimal(18,4)" json:"tier1_threshold"`
	Tier1BonusRate decimal.Decimal  `gorm:"type:decimal(10,4);not null;default:0" json:"tier1_bonus_rate"`
	Tier2Threshold *decimal.Decimal `gorm:"type:decimal(18,4)" json:"tier2_threshold"`
	Tier2BonusRate decimal.Decimal  `gorm:"type:decimal(10,4);not null;default:0" json:"tier2_bonus_rate"`
	Tier3Threshold *decimal.Decimal `gorm:"type:decimal(18,4)" json:"tier3_threshold"`
	Tier3BonusRate decimal.Decimal  `gorm:"type:decimal(10,4);not null;default:0" json:"tier3_bonus_rate"`

	// Priority makes the first-match-wins order an explicit contract instead
	// of relying on insertion order.
	Priority int `gorm:"not null;default:0;index" json:"priority"`

	IsActive       bool       `gorm:"not null;default:true;index" json:"is_active"`
	EffectiveFrom  time.Time  `gorm:"type:date;not null" json:"effective_from"`
	EffectiveUntil *time.Time `gorm:"type:date" json:"effective_until"` // nil = open-ended

	CreatedByID uuid.UUID `gorm:"type:uuid;not null" json:"created_by_id"`
	CreatedBy   *User     `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Tiers returns the rule's configured bonus tiers in order.
func (r *CommissionRule) Tiers() []CommissionTier {
	tiers := make([]CommissionTier, 0, 3)
	if r.Tier1Threshold != nil {
		tiers = append(tiers, CommissionTier{Threshold: *r.Tier1Threshold, BonusRate: r.Tier1BonusRate})
	}
	if r.Tier2Threshold != nil {
		tiers = append(tiers, CommissionTier{Threshold: *r.Tier2Threshold, BonusRate: r.Tier2BonusRate})
	}
	if r.Tier3Threshold != nil {
		tiers = append(tiers, CommissionTier{Threshold: *r.Tier3Threshold, BonusRate: r.Tier3BonusRate})
	}
	return tiers
}

// CommissionTier is one (threshold, bonus rate) pair of a rule.
type CommissionTier struct {
	Threshold decimal.Decimal
	BonusRate decimal.Decimal
}

// BreakdownEntry aggregates the matched sales of one sale type within a month.
type BreakdownEntry struct {
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Commission  decimal.Decimal `json:"commission"`
}

// SalesBreakdown maps sale type to its aggregated figures. Stored as jsonb so
// the structure round-trips without string parsing on the caller's side.
type SalesBreakdown map[string]BreakdownEntry

// Value implements driver.Valuer for the jsonb column.
func (b SalesBreakdown) Value() (driver.Value, error) {
	if b == nil {
		b = SalesBreakdown{}
	}
	return json.Marshal(b)
}

// Scan implements sql.Scanner for the jsonb column.
func (b *SalesBreakdown) Scan(src interface{}) error {
	if src == nil {
		*b = SalesBreakdown{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for SalesBreakdown: %T", src)
	}
	return json.Unmarshal(data, b)
}

// MonthlyCommissionSummary is the single persisted result of a commission
// calculation for one employee-month. (employee_id, year, month) is unique;
// recalculation updates the row in place.
type MonthlyCommissionSummary struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_summary_period" json:"employee_id"`
	Employee   *User     `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
	Year       int       `gorm:"not null;uniqueIndex:idx_summary_period" json:"year"`
	Month      int       `gorm:"not null;uniqueIndex:idx_summary_period" json:"month"` // 1-12

	TotalSalesAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total_sales_amount"`
	ClosedDealsCount int             `gorm:"not null;default:0" json:"closed_deals_count"`
	ActiveLeadsCount int             `gorm:"not null;default:0" json:"active_leads_count"`

	BaseCommission  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"base_commission"`
	TierBonus       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"tier_bonus"`
	TotalCommission decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total_commission"`

	PaymentStatus string     `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	PaymentDate   *time.Time `gorm:"type:date" json:"payment_date"`
	PaymentNotes  string     `gorm:"type:text" json:"payment_notes"`

	SalesBreakdown SalesBreakdown `gorm:"type:jsonb" json:"sales_breakdown"`

	CalculatedAt   time.Time `gorm:"not null" json:"calculated_at"`
	CalculatedByID uuid.UUID `gorm:"type:uuid;not null" json:"calculated_by_id"`
	CalculatedBy   *User     `gorm:"foreignKey:CalculatedByID" json:"calculated_by,omitempty"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
