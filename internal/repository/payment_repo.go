package repository

import (
	"context"
	"time"

	"portal/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentFilter narrows and orders payment listings. SortBy must be
// pre-validated against the handler's whitelist.
type PaymentFilter struct {
	PaymentType string
	Status      string
	EmployeeID  *uuid.UUID
	CompanyID   *uuid.UUID
	FromDueDate *time.Time
	ToDueDate   *time.Time
	Search      string
	SortBy      string
	SortDesc    bool
}

// PaymentRepository defines data access for payments.
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	GetBySummaryID(ctx context.Context, summaryID uuid.UUID) (*model.Payment, error)
	List(ctx context.Context, filter PaymentFilter, offset, limit int) ([]model.Payment, int64, error)
	Update(ctx context.Context, payment *model.Payment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	return GetDB(ctx, r.db).Create(payment).Error
}

func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	if err := GetDB(ctx, r.db).
		Preload("Employee").Preload("Company").Preload("CommissionSummary").
		Preload("CreatedBy").Preload("ApprovedBy").
		First(&payment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) GetBySummaryID(ctx context.Context, summaryID uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	if err := GetDB(ctx, r.db).
		First(&payment, "commission_summary_id = ?", summaryID).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) List(ctx context.Context, filter PaymentFilter, offset, limit int) ([]model.Payment, int64, error) {
	var payments []model.Payment
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Payment{})

	if filter.PaymentType != "" {
		db = db.Where("payment_type = ?", filter.PaymentType)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.EmployeeID != nil {
		db = db.Where("employee_id = ?", *filter.EmployeeID)
	}
	if filter.CompanyID != nil {
		db = db.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.FromDueDate != nil {
		db = db.Where("due_date >= ?", *filter.FromDueDate)
	}
	if filter.ToDueDate != nil {
		db = db.Where("due_date <= ?", *filter.ToDueDate)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		db = db.Where("title ILIKE ? OR description ILIKE ? OR category ILIKE ?", pattern, pattern, pattern)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	order := sortBy
	if filter.SortDesc {
		order += " DESC"
	}

	if err := db.Preload("Employee").Preload("Company").
		Order(order).Offset(offset).Limit(limit).Find(&payments).Error; err != nil {
		return nil, 0, err
	}

	return payments, total, nil
}

func (r *paymentRepository) Update(ctx context.Context, payment *model.Payment) error {
	return GetDB(ctx, r.db).Save(payment).Error
}

func (r *paymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Payment{}).Error
}
