package repository

import (
	"context"
	"errors"

	"portal/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicateSummary signals the (employee, year, month) unique constraint
// fired on insert: a concurrent caller computed the same period first. The
// caller retries as a read.
var ErrDuplicateSummary = errors.New("summary already exists for this period")

// SummaryFilter narrows summary listings.
type SummaryFilter struct {
	EmployeeID *uuid.UUID
	Year       *int
	Month      *int
}

// CommissionSummaryRepository defines data access for monthly commission summaries.
type CommissionSummaryRepository interface {
	Create(ctx context.Context, summary *model.MonthlyCommissionSummary) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.MonthlyCommissionSummary, error)
	GetByPeriod(ctx context.Context, employeeID uuid.UUID, year, month int) (*model.MonthlyCommissionSummary, error)
	List(ctx context.Context, filter SummaryFilter) ([]model.MonthlyCommissionSummary, error)
	Update(ctx context.Context, summary *model.MonthlyCommissionSummary) error
}

type commissionSummaryRepository struct {
	db *gorm.DB
}

func NewCommissionSummaryRepository(db *gorm.DB) CommissionSummaryRepository {
	return &commissionSummaryRepository{db: db}
}

func (r *commissionSummaryRepository) Create(ctx context.Context, summary *model.MonthlyCommissionSummary) error {
	if err := GetDB(ctx, r.db).Create(summary).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateSummary
		}
		return err
	}
	return nil
}

func (r *commissionSummaryRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.MonthlyCommissionSummary, error) {
	var summary model.MonthlyCommissionSummary
	if err := GetDB(ctx, r.db).
		Preload("Employee").Preload("CalculatedBy").
		First(&summary, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &summary, nil
}

// GetByPeriod carries the same preloads as GetByID so callers returning the
// row directly produce the same shape either way.
func (r *commissionSummaryRepository) GetByPeriod(ctx context.Context, employeeID uuid.UUID, year, month int) (*model.MonthlyCommissionSummary, error) {
	var summary model.MonthlyCommissionSummary
	if err := GetDB(ctx, r.db).
		Preload("Employee").Preload("CalculatedBy").
		Where("employee_id = ? AND year = ? AND month = ?", employeeID, year, month).
		First(&summary).Error; err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *commissionSummaryRepository) List(ctx context.Context, filter SummaryFilter) ([]model.MonthlyCommissionSummary, error) {
	var summaries []model.MonthlyCommissionSummary
	db := GetDB(ctx, r.db).Preload("Employee").Preload("CalculatedBy")
	if filter.EmployeeID != nil {
		db = db.Where("employee_id = ?", *filter.EmployeeID)
	}
	if filter.Year != nil {
		db = db.Where("year = ?", *filter.Year)
	}
	if filter.Month != nil {
		db = db.Where("month = ?", *filter.Month)
	}
	if err := db.Order("year DESC, month DESC").Find(&summaries).Error; err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *commissionSummaryRepository) Update(ctx context.Context, summary *model.MonthlyCommissionSummary) error {
	return GetDB(ctx, r.db).Save(summary).Error
}
