package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"portal/internal/model"
	"portal/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

// --- DTOs ---

type CreateCommissionRuleRequest struct {
	EmployeeID         string  `json:"employee_id" binding:"required,uuid"`
	SaleType           *string `json:"sale_type" binding:"omitempty,oneof=store_opening renovation maintenance_contract consulting car_rental other"`
	BaseCommissionRate string  `json:"base_commission_rate" binding:"required"` // Decimal string, e.g. "10.00"
	MinSaleAmount      string  `json:"min_sale_amount"`
	Tier1Threshold     string  `json:"tier1_threshold"`
	Tier1BonusRate     string  `json:"tier1_bonus_rate"`
	Tier2Threshold     string  `json:"tier2_threshold"`
	Tier2BonusRate     string  `json:"tier2_bonus_rate"`
	Tier3Threshold     string  `json:"tier3_threshold"`
	Tier3BonusRate     string  `json:"tier3_bonus_rate"`
	Priority           int     `json:"priority"`
	EffectiveFrom      string  `json:"effective_from" binding:"required"` // YYYY-MM-DD
	EffectiveUntil     string  `json:"effective_until"`                   // YYYY-MM-DD, empty = open-ended
}

type CalculateCommissionRequest struct {
	EmployeeID  string `json:"employee_id" binding:"required,uuid"`
	Year        int    `json:"year" binding:"required"`
	Month       int    `json:"month" binding:"required"`
	Recalculate bool   `json:"recalculate"`
}

// --- Interface ---

// CommissionService owns commission rules, the monthly calculation and the
// resulting summaries.
type CommissionService interface {
	CreateRule(ctx context.Context, req CreateCommissionRuleRequest, createdBy uuid.UUID) (*model.CommissionRule, error)
	ListRules(ctx context.Context, employeeID *uuid.UUID) ([]model.CommissionRule, error)
	DeactivateRule(ctx context.Context, id uuid.UUID) (*model.CommissionRule, error)
	Calculate(ctx context.Context, req CalculateCommissionRequest, calculatedBy uuid.UUID) (*model.MonthlyCommissionSummary, error)
	ListSummaries(ctx context.Context, filter repository.SummaryFilter) ([]model.MonthlyCommissionSummary, error)
	GetSummary(ctx context.Context, id uuid.UUID) (*model.MonthlyCommissionSummary, error)
}

type commissionService struct {
	users     repository.UserRepository
	rules     repository.CommissionRuleRepository
	sales     repository.SaleRepository
	summaries repository.CommissionSummaryRepository
	tx        repository.TransactionManager
}

func NewCommissionService(
	users repository.UserRepository,
	rules repository.CommissionRuleRepository,
	sales repository.SaleRepository,
	summaries repository.CommissionSummaryRepository,
	tx repository.TransactionManager,
) CommissionService {
	return &commissionService{users: users, rules: rules, sales: sales, summaries: summaries, tx: tx}
}

// --- Rules ---

func (s *commissionService) CreateRule(ctx context.Context, req CreateCommissionRuleRequest, createdBy uuid.UUID) (*model.CommissionRule, error) {
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid employee id", ErrValidation)
	}

	if _, err := s.users.GetByID(ctx, employeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: employee", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch employee: %w", err)
	}

	baseRate, err := parseRate("base_commission_rate", req.BaseCommissionRate)
	if err != nil {
		return nil, err
	}
	minAmount, err := parseOptionalAmount("min_sale_amount", req.MinSaleAmount)
	if err != nil {
		return nil, err
	}

	effectiveFrom, err := time.Parse("2006-01-02", req.EffectiveFrom)
	if err != nil {
		return nil, fmt.Errorf("%w: effective_from must be YYYY-MM-DD", ErrValidation)
	}
	var effectiveUntil *time.Time
	if req.EffectiveUntil != "" {
		t, err := time.Parse("2006-01-02", req.EffectiveUntil)
		if err != nil {
			return nil, fmt.Errorf("%w: effective_until must be YYYY-MM-DD", ErrValidation)
		}
		effectiveUntil = &t
	}

	rule := model.CommissionRule{
		EmployeeID:         employeeID,
		SaleType:           req.SaleType,
		BaseCommissionRate: baseRate,
		MinSaleAmount:      minAmount,
		Priority:           req.Priority,
		IsActive:           true,
		EffectiveFrom:      effectiveFrom,
		EffectiveUntil:     effectiveUntil,
		CreatedByID:        createdBy,
	}

	type tierInput struct {
		name      string
		threshold string
		bonusRate string
		outThresh **decimal.Decimal
		outBonus  *decimal.Decimal
	}
	tiers := []tierInput{
		{"tier1", req.Tier1Threshold, req.Tier1BonusRate, &rule.Tier1Threshold, &rule.Tier1BonusRate},
		{"tier2", req.Tier2Threshold, req.Tier2BonusRate, &rule.Tier2Threshold, &rule.Tier2BonusRate},
		{"tier3", req.Tier3Threshold, req.Tier3BonusRate, &rule.Tier3Threshold, &rule.Tier3BonusRate},
	}
	for _, t := range tiers {
		if t.threshold == "" {
			continue
		}
		threshold, err := parseOptionalAmount(t.name+"_threshold", t.threshold)
		if err != nil {
			return nil, err
		}
		bonus, err := parseRate(t.name+"_bonus_rate", t.bonusRate)
		if err != nil {
			return nil, err
		}
		*t.outThresh = &threshold
		*t.outBonus = bonus
	}

	if err := s.rules.Create(ctx, &rule); err != nil {
		return nil, fmt.Errorf("failed to create commission rule: %w", err)
	}
	return &rule, nil
}

func (s *commissionService) ListRules(ctx context.Context, employeeID *uuid.UUID) ([]model.CommissionRule, error) {
	rules, err := s.rules.List(ctx, employeeID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list commission rules: %w", err)
	}
	return rules, nil
}

// DeactivateRule soft-disables a rule; the calculator never hard-deletes rules.
func (s *commissionService) DeactivateRule(ctx context.Context, id uuid.UUID) (*model.CommissionRule, error) {
	rule, err := s.rules.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: commission rule", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch commission rule: %w", err)
	}
	rule.IsActive = false
	if err := s.rules.Update(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to deactivate commission rule: %w", err)
	}
	return rule, nil
}

// --- Calculation ---

// Calculate computes the monthly commission for one employee-month and upserts
// the summary row. If a summary already exists and recalculate is false the
// stored row is returned unchanged with no side effects. The whole computation
// runs in one transaction: either every matched sale carries its commission
// and the summary row exists, or nothing changed.
func (s *commissionService) Calculate(ctx context.Context, req CalculateCommissionRequest, calculatedBy uuid.UUID) (*model.MonthlyCommissionSummary, error) {
	if req.Month < 1 || req.Month > 12 {
		return nil, fmt.Errorf("%w: month must be between 1 and 12", ErrValidation)
	}
	if req.Year < 2000 || req.Year > 2100 {
		return nil, fmt.Errorf("%w: year out of range", ErrValidation)
	}
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid employee id", ErrValidation)
	}

	var result *model.MonthlyCommissionSummary
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.users.GetByID(txCtx, employeeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: employee", ErrNotFound)
			}
			return fmt.Errorf("failed to fetch employee: %w", err)
		}

		existing, err := s.summaries.GetByPeriod(txCtx, employeeID, req.Year, req.Month)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to fetch summary: %w", err)
		}
		if existing != nil && !req.Recalculate {
			result = existing
			return nil
		}

		rules, err := s.rules.FindActiveByEmployee(txCtx, employeeID)
		if err != nil {
			return fmt.Errorf("failed to fetch commission rules: %w", err)
		}
		if len(rules) == 0 {
			return fmt.Errorf("%w: no active commission rules for this employee", ErrInvalidState)
		}

		firstDay, lastDay := monthRange(req.Year, req.Month)

		closedSales, err := s.sales.FindClosedWonInRange(txCtx, employeeID, firstDay, lastDay)
		if err != nil {
			return fmt.Errorf("failed to fetch closed sales: %w", err)
		}
		activeLeads, err := s.sales.CountActiveLeads(txCtx, employeeID)
		if err != nil {
			return fmt.Errorf("failed to count active leads: %w", err)
		}

		totalSales := decimal.Zero
		for _, sale := range closedSales {
			totalSales = totalSales.Add(sale.SaleAmount)
		}

		baseCommission := decimal.Zero
		breakdown := model.SalesBreakdown{}
		for _, sale := range closedSales {
			rule := firstMatchingRule(rules, sale)
			if rule == nil {
				// Counted in the totals above, earns nothing, left untouched.
				continue
			}

			commission := sale.SaleAmount.Mul(rule.BaseCommissionRate).Div(hundred)
			baseCommission = baseCommission.Add(commission)

			if err := s.sales.UpdateCommission(txCtx, sale.ID, commission, model.CommissionCalculated); err != nil {
				return fmt.Errorf("failed to update sale commission: %w", err)
			}

			entry := breakdown[sale.SaleType]
			entry.Count++
			entry.TotalAmount = entry.TotalAmount.Add(sale.SaleAmount)
			entry.Commission = entry.Commission.Add(commission)
			breakdown[sale.SaleType] = entry
		}

		// Tier bonuses stack: every reached tier of every active rule pays out.
		tierBonus := decimal.Zero
		for _, rule := range rules {
			for _, tier := range rule.Tiers() {
				if totalSales.GreaterThanOrEqual(tier.Threshold) {
					tierBonus = tierBonus.Add(totalSales.Mul(tier.BonusRate).Div(hundred))
				}
			}
		}

		summary := existing
		if summary == nil {
			summary = &model.MonthlyCommissionSummary{
				EmployeeID: employeeID,
				Year:       req.Year,
				Month:      req.Month,
			}
		}
		summary.TotalSalesAmount = totalSales
		summary.ClosedDealsCount = len(closedSales)
		summary.ActiveLeadsCount = int(activeLeads)
		summary.BaseCommission = baseCommission
		summary.TierBonus = tierBonus
		summary.TotalCommission = baseCommission.Add(tierBonus)
		summary.SalesBreakdown = breakdown
		summary.CalculatedAt = time.Now().UTC()
		summary.CalculatedByID = calculatedBy

		if existing != nil {
			if err := s.summaries.Update(txCtx, summary); err != nil {
				return fmt.Errorf("failed to update summary: %w", err)
			}
		} else {
			if err := s.summaries.Create(txCtx, summary); err != nil {
				return err
			}
		}

		result = summary
		return nil
	})

	// A concurrent caller won the insert race: the transaction rolled back,
	// so read and return the winner's row.
	if errors.Is(err, repository.ErrDuplicateSummary) {
		winner, readErr := s.summaries.GetByPeriod(ctx, employeeID, req.Year, req.Month)
		if readErr != nil {
			return nil, fmt.Errorf("failed to fetch summary after conflict: %w", readErr)
		}
		return winner, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *commissionService) ListSummaries(ctx context.Context, filter repository.SummaryFilter) ([]model.MonthlyCommissionSummary, error) {
	summaries, err := s.summaries.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}
	return summaries, nil
}

func (s *commissionService) GetSummary(ctx context.Context, id uuid.UUID) (*model.MonthlyCommissionSummary, error) {
	summary, err := s.summaries.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: commission summary", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch summary: %w", err)
	}
	return summary, nil
}

// --- Helpers ---

// monthRange returns the first and last calendar day of (year, month) in UTC.
// AddDate(0, 1, -1) handles variable month lengths and the December rollover.
func monthRange(year, month int) (time.Time, time.Time) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first, last
}

// firstMatchingRule walks rules in their stored priority order and returns the
// first whose sale-type filter (nil = wildcard) and minimum amount both match.
func firstMatchingRule(rules []model.CommissionRule, sale model.Sale) *model.CommissionRule {
	for i := range rules {
		rule := &rules[i]
		if rule.SaleType != nil && *rule.SaleType != sale.SaleType {
			continue
		}
		if sale.SaleAmount.LessThan(rule.MinSaleAmount) {
			continue
		}
		return rule
	}
	return nil
}

func parseRate(field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	rate, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid %s", ErrValidation, field)
	}
	if rate.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s must not be negative", ErrValidation, field)
	}
	return rate, nil
}

func parseOptionalAmount(field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid %s", ErrValidation, field)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s must not be negative", ErrValidation, field)
	}
	return amount, nil
}
