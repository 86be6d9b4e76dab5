package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"portal/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateCompanyRequest struct {
	Name         string `json:"name" binding:"required"`
	VatNumber    string `json:"vat_number"`
	Occupation   string `json:"occupation"`
	CreationDate string `json:"creation_date"` // YYYY-MM-DD
	Description  string `json:"description"`
}

type UpdateCompanyRequest struct {
	Name         *string `json:"name"`
	VatNumber    *string `json:"vat_number"`
	Occupation   *string `json:"occupation"`
	CreationDate *string `json:"creation_date"`
	Description  *string `json:"description"`
}

// CompanyService manages the client and partner company register.
type CompanyService interface {
	Create(ctx context.Context, req CreateCompanyRequest) (*model.Company, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Company, error)
	List(ctx context.Context, search string) ([]model.Company, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateCompanyRequest) (*model.Company, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type companyService struct {
	db *gorm.DB
}

func NewCompanyService(db *gorm.DB) CompanyService {
	return &companyService{db: db}
}

func (s *companyService) Create(ctx context.Context, req CreateCompanyRequest) (*model.Company, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Company{}).
		Where("name = ?", req.Name).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check company name: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: company name already exists", ErrValidation)
	}

	company := model.Company{
		Name:        req.Name,
		VatNumber:   req.VatNumber,
		Occupation:  req.Occupation,
		Description: req.Description,
	}
	if req.CreationDate != "" {
		creationDate, err := time.Parse("2006-01-02", req.CreationDate)
		if err != nil {
			return nil, fmt.Errorf("%w: creation_date must be YYYY-MM-DD", ErrValidation)
		}
		company.CreationDate = &creationDate
	}

	if err := s.db.WithContext(ctx).Create(&company).Error; err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}
	return &company, nil
}

func (s *companyService) GetByID(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	var company model.Company
	if err := s.db.WithContext(ctx).First(&company, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: company", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch company: %w", err)
	}
	return &company, nil
}

func (s *companyService) List(ctx context.Context, search string) ([]model.Company, error) {
	var companies []model.Company
	db := s.db.WithContext(ctx)
	if search != "" {
		pattern := "%" + search + "%"
		db = db.Where("name ILIKE ? OR vat_number ILIKE ? OR occupation ILIKE ?", pattern, pattern, pattern)
	}
	if err := db.Order("name").Find(&companies).Error; err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return companies, nil
}

func (s *companyService) Update(ctx context.Context, id uuid.UUID, req UpdateCompanyRequest) (*model.Company, error) {
	company, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != company.Name {
		var count int64
		if err := s.db.WithContext(ctx).Model(&model.Company{}).
			Where("name = ?", *req.Name).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to check company name: %w", err)
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: company name already exists", ErrValidation)
		}
		company.Name = *req.Name
	}
	if req.VatNumber != nil {
		company.VatNumber = *req.VatNumber
	}
	if req.Occupation != nil {
		company.Occupation = *req.Occupation
	}
	if req.CreationDate != nil {
		creationDate, err := time.Parse("2006-01-02", *req.CreationDate)
		if err != nil {
			return nil, fmt.Errorf("%w: creation_date must be YYYY-MM-DD", ErrValidation)
		}
		company.CreationDate = &creationDate
	}
	if req.Description != nil {
		company.Description = *req.Description
	}

	if err := s.db.WithContext(ctx).Save(company).Error; err != nil {
		return nil, fmt.Errorf("failed to update company: %w", err)
	}
	return company, nil
}

func (s *companyService) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Company{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete company: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: company", ErrNotFound)
	}
	return nil
}
