package repository

import (
	"context"
	"time"

	"portal/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleFilter narrows and orders sale listings. SortBy must be pre-validated
// against the handler's whitelist before it reaches the repository.
type SaleFilter struct {
	Status        string
	SaleType      string
	SalespersonID *uuid.UUID
	CompanyID     *uuid.UUID
	FromLeadDate  *time.Time
	ToLeadDate    *time.Time
	Search        string
	SortBy        string
	SortDesc      bool
}

// SaleRepository defines data access for the sales pipeline, including the
// queries the commission calculator depends on.
type SaleRepository interface {
	Create(ctx context.Context, sale *model.Sale) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	List(ctx context.Context, filter SaleFilter, offset, limit int) ([]model.Sale, int64, error)
	Update(ctx context.Context, sale *model.Sale) error
	Delete(ctx context.Context, id uuid.UUID) error

	// FindClosedWonInRange returns the employee's closed_won sales with a
	// close date inside [from, to], both bounds inclusive.
	FindClosedWonInRange(ctx context.Context, employeeID uuid.UUID, from, to time.Time) ([]model.Sale, error)
	// CountActiveLeads counts the employee's open pipeline (lead,
	// proposal_sent, negotiating) regardless of date.
	CountActiveLeads(ctx context.Context, employeeID uuid.UUID) (int64, error)
	// UpdateCommission stamps the calculated commission on a single sale.
	UpdateCommission(ctx context.Context, saleID uuid.UUID, amount decimal.Decimal, status string) error
}

type saleRepository struct {
	db *gorm.DB
}

func NewSaleRepository(db *gorm.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) Create(ctx context.Context, sale *model.Sale) error {
	return GetDB(ctx, r.db).Create(sale).Error
}

func (r *saleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	if err := GetDB(ctx, r.db).
		Preload("Salesperson").Preload("Company").Preload("CreatedBy").
		First(&sale, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepository) List(ctx context.Context, filter SaleFilter, offset, limit int) ([]model.Sale, int64, error) {
	var sales []model.Sale
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Sale{})

	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.SaleType != "" {
		db = db.Where("sale_type = ?", filter.SaleType)
	}
	if filter.SalespersonID != nil {
		db = db.Where("salesperson_id = ?", *filter.SalespersonID)
	}
	if filter.CompanyID != nil {
		db = db.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.FromLeadDate != nil {
		db = db.Where("lead_date >= ?", *filter.FromLeadDate)
	}
	if filter.ToLeadDate != nil {
		db = db.Where("lead_date <= ?", *filter.ToLeadDate)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		db = db.Where("title ILIKE ? OR client_name ILIKE ? OR client_company ILIKE ?", pattern, pattern, pattern)
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

	if err := db.Preload("Salesperson").Preload("Company").
		Order(order).Offset(offset).Limit(limit).Find(&sales).Error; err != nil {
		return nil, 0, err
	}

	return sales, total, nil
}

func (r *saleRepository) Update(ctx context.Context, sale *model.Sale) error {
	return GetDB(ctx, r.db).Save(sale).Error
}

func (r *saleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Sale{}).Error
}

func (r *saleRepository) FindClosedWonInRange(ctx context.Context, employeeID uuid.UUID, from, to time.Time) ([]model.Sale, error) {
	var sales []model.Sale
	if err := GetDB(ctx, r.db).
		Where("salesperson_id = ? AND status = ? AND close_date >= ? AND close_date <= ?",
			employeeID, model.SaleStatusClosedWon, from, to).
		Order("close_date, created_at").
		Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *saleRepository) CountActiveLeads(ctx context.Context, employeeID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Sale{}).
		Where("salesperson_id = ? AND status IN ?", employeeID,
			[]string{model.SaleStatusLead, model.SaleStatusProposalSent, model.SaleStatusNegotiating}).
		Count(&count).Error
	return count, err
}

func (r *saleRepository) UpdateCommission(ctx context.Context, saleID uuid.UUID, amount decimal.Decimal, status string) error {
	return GetDB(ctx, r.db).Model(&model.Sale{}).
		Where("id = ?", saleID).
		Updates(map[string]interface{}{
			"commission_amount": amount,
			"commission_status": status,
		}).Error
}
