package repository

import (
	"context"

	"portal/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommissionRuleRepository defines data access for per-employee commission rules.
// Every listing orders by priority then creation time: first-match-wins in the
// calculator depends on this order being stable.
type CommissionRuleRepository interface {
	Create(ctx context.Context, rule *model.CommissionRule) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.CommissionRule, error)
	List(ctx context.Context, employeeID *uuid.UUID, activeOnly bool) ([]model.CommissionRule, error)
	FindActiveByEmployee(ctx context.Context, employeeID uuid.UUID) ([]model.CommissionRule, error)
	Update(ctx context.Context, rule *model.CommissionRule) error
}

type commissionRuleRepository struct {
	db *gorm.DB
}

func NewCommissionRuleRepository(db *gorm.DB) CommissionRuleRepository {
	return &commissionRuleRepository{db: db}
}

func (r *commissionRuleRepository) Create(ctx context.Context, rule *model.CommissionRule) error {
	return GetDB(ctx, r.db).Create(rule).Error
}

func (r *commissionRuleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CommissionRule, error) {
	var rule model.CommissionRule
	if err := GetDB(ctx, r.db).Preload("Employee").First(&rule, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *commissionRuleRepository) List(ctx context.Context, employeeID *uuid.UUID, activeOnly bool) ([]model.CommissionRule, error) {
	var rules []model.CommissionRule
	db := GetDB(ctx, r.db).Preload("Employee").Preload("CreatedBy")
	if employeeID != nil {
		db = db.Where("employee_id = ?", *employeeID)
	}
	if activeOnly {
		db = db.Where("is_active = true")
	}
	if err := db.Order("priority, created_at").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *commissionRuleRepository) FindActiveByEmployee(ctx context.Context, employeeID uuid.UUID) ([]model.CommissionRule, error) {
	var rules []model.CommissionRule
	if err := GetDB(ctx, r.db).
		Where("employee_id = ? AND is_active = true", employeeID).
		Order("priority, created_at").
		Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *commissionRuleRepository) Update(ctx context.Context, rule *model.CommissionRule) error {
	return GetDB(ctx, r.db).Save(rule).Error
}
