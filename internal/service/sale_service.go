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

// --- DTOs ---

type CreateSaleRequest struct {
	Title             string  `json:"title" binding:"required"`
	Description       string  `json:"description"`
	SaleType          string  `json:"sale_type" binding:"required,oneof=store_opening renovation maintenance_contract consulting car_rental other"`
	SaleAmount        string  `json:"sale_amount" binding:"required"` // Decimal string
	Currency          string  `json:"currency"`
	ClientName        string  `json:"client_name" binding:"required"`
	ClientCompany     string  `json:"client_company"`
	ClientEmail       string  `json:"client_email"`
	ClientPhone       string  `json:"client_phone"`
	SalespersonID     string  `json:"salesperson_id" binding:"required,uuid"`
	CompanyID         *string `json:"company_id"`
	ProjectID         *string `json:"project_id"`
	LeadDate          string  `json:"lead_date" binding:"required"` // YYYY-MM-DD
	ExpectedCloseDate *string `json:"expected_close_date"`
	CommissionRate    string  `json:"commission_rate"`
	Notes             string  `json:"notes"`
	Source            string  `json:"source"`
}

type UpdateSaleRequest struct {
	Title             *string `json:"title"`
	Description       *string `json:"description"`
	SaleAmount        *string `json:"sale_amount"`
	ClientName        *string `json:"client_name"`
	ClientCompany     *string `json:"client_company"`
	ClientEmail       *string `json:"client_email"`
	ClientPhone       *string `json:"client_phone"`
	ExpectedCloseDate *string `json:"expected_close_date"`
	CommissionRate    *string `json:"commission_rate"`
	Notes             *string `json:"notes"`
	Source            *string `json:"source"`
}

type UpdateSaleStatusRequest struct {
	Status    string  `json:"status" binding:"required,oneof=lead proposal_sent negotiating closed_won closed_lost cancelled"`
	CloseDate *string `json:"close_date"` // YYYY-MM-DD, defaults to today when closing
}

// --- Interface ---

// SaleService owns the sales pipeline from lead to close.
type SaleService interface {
	Create(ctx context.Context, req CreateSaleRequest, createdBy uuid.UUID) (*model.Sale, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	List(ctx context.Context, filter repository.SaleFilter, offset, limit int) ([]model.Sale, int64, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateSaleRequest) (*model.Sale, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateSaleStatusRequest) (*model.Sale, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type saleService struct {
	sales repository.SaleRepository
	users repository.UserRepository
}

func NewSaleService(sales repository.SaleRepository, users repository.UserRepository) SaleService {
	return &saleService{sales: sales, users: users}
}

func (s *saleService) Create(ctx context.Context, req CreateSaleRequest, createdBy uuid.UUID) (*model.Sale, error) {
	amount, err := decimal.NewFromString(req.SaleAmount)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid sale_amount", ErrValidation)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: sale_amount must not be negative", ErrValidation)
	}

	salespersonID, err := uuid.Parse(req.SalespersonID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid salesperson id", ErrValidation)
	}
	if _, err := s.users.GetByID(ctx, salespersonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: salesperson", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch salesperson: %w", err)
	}

	leadDate, err := time.Parse("2006-01-02", req.LeadDate)
	if err != nil {
		return nil, fmt.Errorf("%w: lead_date must be YYYY-MM-DD", ErrValidation)
	}

	sale := model.Sale{
		Title:         req.Title,
		Description:   req.Description,
		SaleType:      req.SaleType,
		Status:        model.SaleStatusLead,
		SaleAmount:    amount,
		ClientName:    req.ClientName,
		ClientCompany: req.ClientCompany,
		ClientEmail:   req.ClientEmail,
		ClientPhone:   req.ClientPhone,
		SalespersonID: salespersonID,
		LeadDate:      leadDate,
		Notes:         req.Notes,
		Source:        req.Source,
		CreatedByID:   createdBy,
	}
	if req.Currency != "" {
		sale.Currency = req.Currency
	}
	if req.CommissionRate != "" {
		rate, err := decimal.NewFromString(req.CommissionRate)
		if err != nil || rate.IsNegative() {
			return nil, fmt.Errorf("%w: invalid commission_rate", ErrValidation)
		}
		sale.CommissionRate = rate
	}
	if req.CompanyID != nil {
		id, err := uuid.Parse(*req.CompanyID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid company id", ErrValidation)
		}
		sale.CompanyID = &id
	}
	if req.ProjectID != nil {
		id, err := uuid.Parse(*req.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid project id", ErrValidation)
		}
		sale.ProjectID = &id
	}
	if req.ExpectedCloseDate != nil {
		t, err := time.Parse("2006-01-02", *req.ExpectedCloseDate)
		if err != nil {
			return nil, fmt.Errorf("%w: expected_close_date must be YYYY-MM-DD", ErrValidation)
		}
		sale.ExpectedCloseDate = &t
	}

	if err := s.sales.Create(ctx, &sale); err != nil {
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}
	return &sale, nil
}

func (s *saleService) GetByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	sale, err := s.sales.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: sale", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch sale: %w", err)
	}
	return sale, nil
}

func (s *saleService) List(ctx context.Context, filter repository.SaleFilter, offset, limit int) ([]model.Sale, int64, error) {
	sales, total, err := s.sales.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sales: %w", err)
	}
	return sales, total, nil
}

func (s *saleService) Update(ctx context.Context, id uuid.UUID, req UpdateSaleRequest) (*model.Sale, error) {
	sale, err := s.sales.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: sale", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch sale: %w", err)
	}
	if model.IsTerminalSaleStatus(sale.Status) {
		return nil, fmt.Errorf("%w: closed sales cannot be edited", ErrInvalidState)
	}

	if req.Title != nil {
		sale.Title = *req.Title
	}
	if req.Description != nil {
		sale.Description = *req.Description
	}
	if req.SaleAmount != nil {
		amount, err := decimal.NewFromString(*req.SaleAmount)
		if err != nil || amount.IsNegative() {
			return nil, fmt.Errorf("%w: invalid sale_amount", ErrValidation)
		}
		sale.SaleAmount = amount
	}
	if req.ClientName != nil {
		sale.ClientName = *req.ClientName
	}
	if req.ClientCompany != nil {
		sale.ClientCompany = *req.ClientCompany
	}
	if req.ClientEmail != nil {
		sale.ClientEmail = *req.ClientEmail
	}
	if req.ClientPhone != nil {
		sale.ClientPhone = *req.ClientPhone
	}
	if req.ExpectedCloseDate != nil {
		t, err := time.Parse("2006-01-02", *req.ExpectedCloseDate)
		if err != nil {
			return nil, fmt.Errorf("%w: expected_close_date must be YYYY-MM-DD", ErrValidation)
		}
		sale.ExpectedCloseDate = &t
	}
	if req.CommissionRate != nil {
		rate, err := decimal.NewFromString(*req.CommissionRate)
		if err != nil || rate.IsNegative() {
			return nil, fmt.Errorf("%w: invalid commission_rate", ErrValidation)
		}
		sale.CommissionRate = rate
	}
	if req.Notes != nil {
		sale.Notes = *req.Notes
	}
	if req.Source != nil {
		sale.Source = *req.Source
	}

	if err := s.sales.Update(ctx, sale); err != nil {
		return nil, fmt.Errorf("failed to update sale: %w", err)
	}
	return sale, nil
}

// UpdateStatus advances a sale through the pipeline. Stages may be skipped but
// never revisited; reaching proposal_sent or a closed state stamps the
// corresponding date.
func (s *saleService) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateSaleStatusRequest) (*model.Sale, error) {
	sale, err := s.sales.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: sale", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch sale: %w", err)
	}

	if !model.CanTransitionSaleStatus(sale.Status, req.Status) {
		return nil, fmt.Errorf("%w: cannot move sale from %s to %s", ErrInvalidState, sale.Status, req.Status)
	}

	now := time.Now().UTC()
	if req.Status == model.SaleStatusProposalSent && sale.ProposalDate == nil {
		sale.ProposalDate = &now
	}
	if model.IsTerminalSaleStatus(req.Status) {
		closeDate := now
		if req.CloseDate != nil {
			t, err := time.Parse("2006-01-02", *req.CloseDate)
			if err != nil {
				return nil, fmt.Errorf("%w: close_date must be YYYY-MM-DD", ErrValidation)
			}
			closeDate = t
		}
		sale.CloseDate = &closeDate
	}
	if req.Status == model.SaleStatusClosedWon {
		// Estimate from the sale's own rate; the monthly calculation later
		// replaces it with the rule-based figure and flips the status.
		estimate := sale.SaleAmount.Mul(sale.CommissionRate).Div(hundred)
		sale.CommissionAmount = &estimate
	}
	sale.Status = req.Status

	if err := s.sales.Update(ctx, sale); err != nil {
		return nil, fmt.Errorf("failed to update sale status: %w", err)
	}
	return sale, nil
}

func (s *saleService) Delete(ctx context.Context, id uuid.UUID) error {
	sale, err := s.sales.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: sale", ErrNotFound)
		}
		return fmt.Errorf("failed to fetch sale: %w", err)
	}
	if sale.Status == model.SaleStatusClosedWon && sale.CommissionStatus != model.CommissionPending {
		return fmt.Errorf("%w: sale already entered a commission calculation", ErrInvalidState)
	}
	if err := s.sales.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}
	return nil
}
