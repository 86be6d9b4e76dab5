package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"portal/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateProjectRequest struct {
	Name                   string  `json:"name" binding:"required"`
	Description            string  `json:"description"`
	ProjectType            string  `json:"project_type" binding:"required,oneof=new_store renovation maintenance expansion other"`
	StoreLocation          string  `json:"store_location"`
	StoreAddress           string  `json:"store_address"`
	CompanyID              string  `json:"company_id" binding:"required,uuid"`
	ProjectManagerID       *string `json:"project_manager_id"`
	StartDate              *string `json:"start_date"`                // YYYY-MM-DD
	ExpectedCompletionDate *string `json:"expected_completion_date"`  // YYYY-MM-DD
	EstimatedBudget        string  `json:"estimated_budget"`          // Decimal string
	Notes                  string  `json:"notes"`
}

type UpdateProjectRequest struct {
	Name                   *string `json:"name"`
	Description            *string `json:"description"`
	Status                 *string `json:"status" binding:"omitempty,oneof=planning in_progress completed on_hold cancelled"`
	StoreLocation          *string `json:"store_location"`
	StoreAddress           *string `json:"store_address"`
	ProjectManagerID       *string `json:"project_manager_id"`
	StartDate              *string `json:"start_date"`
	ExpectedCompletionDate *string `json:"expected_completion_date"`
	EstimatedBudget        *string `json:"estimated_budget"`
	ActualCost             *string `json:"actual_cost"`
	ProgressPercentage     *int    `json:"progress_percentage" binding:"omitempty,min=0,max=100"`
	Notes                  *string `json:"notes"`
	LastUpdate             *string `json:"last_update"`
}

// ProjectService manages store build-out and renovation projects.
type ProjectService interface {
	Create(ctx context.Context, req CreateProjectRequest, createdBy uuid.UUID) (*model.Project, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
	List(ctx context.Context, status string, companyID *uuid.UUID) ([]model.Project, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateProjectRequest) (*model.Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type projectService struct {
	db *gorm.DB
}

func NewProjectService(db *gorm.DB) ProjectService {
	return &projectService{db: db}
}

func parseOptionalDate(field string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrValidation, field)
	}
	return &t, nil
}

func (s *projectService) Create(ctx context.Context, req CreateProjectRequest, createdBy uuid.UUID) (*model.Project, error) {
	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid company id", ErrValidation)
	}
	if err := s.db.WithContext(ctx).First(&model.Company{}, "id = ?", companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: company", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch company: %w", err)
	}

	project := model.Project{
		Name:          req.Name,
		Description:   req.Description,
		ProjectType:   req.ProjectType,
		Status:        model.ProjectStatusPlanning,
		StoreLocation: req.StoreLocation,
		StoreAddress:  req.StoreAddress,
		CompanyID:     companyID,
		Notes:         req.Notes,
		CreatedByID:   createdBy,
	}
	if req.ProjectManagerID != nil {
		managerID, err := uuid.Parse(*req.ProjectManagerID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid project manager id", ErrValidation)
		}
		project.ProjectManagerID = &managerID
	}
	if project.StartDate, err = parseOptionalDate("start_date", req.StartDate); err != nil {
		return nil, err
	}
	if project.ExpectedCompletionDate, err = parseOptionalDate("expected_completion_date", req.ExpectedCompletionDate); err != nil {
		return nil, err
	}
	if req.EstimatedBudget != "" {
		budget, err := decimal.NewFromString(req.EstimatedBudget)
		if err != nil || budget.IsNegative() {
			return nil, fmt.Errorf("%w: invalid estimated_budget", ErrValidation)
		}
		project.EstimatedBudget = budget
	}

	if err := s.db.WithContext(ctx).Create(&project).Error; err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return &project, nil
}

func (s *projectService) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := s.db.WithContext(ctx).
		Preload("Company").Preload("ProjectManager").Preload("CreatedBy").
		First(&project, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: project", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch project: %w", err)
	}
	return &project, nil
}

func (s *projectService) List(ctx context.Context, status string, companyID *uuid.UUID) ([]model.Project, error) {
	var projects []model.Project
	db := s.db.WithContext(ctx).Preload("Company").Preload("ProjectManager")
	if status != "" {
		db = db.Where("status = ?", status)
	}
	if companyID != nil {
		db = db.Where("company_id = ?", *companyID)
	}
	if err := db.Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (s *projectService) Update(ctx context.Context, id uuid.UUID, req UpdateProjectRequest) (*model.Project, error) {
	project, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Status != nil {
		project.Status = *req.Status
		if *req.Status == model.ProjectStatusCompleted && project.ActualCompletionDate == nil {
			now := time.Now().UTC()
			project.ActualCompletionDate = &now
			project.ProgressPercentage = 100
		}
	}
	if req.StoreLocation != nil {
		project.StoreLocation = *req.StoreLocation
	}
	if req.StoreAddress != nil {
		project.StoreAddress = *req.StoreAddress
	}
	if req.ProjectManagerID != nil {
		managerID, err := uuid.Parse(*req.ProjectManagerID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid project manager id", ErrValidation)
		}
		project.ProjectManagerID = &managerID
	}
	if req.StartDate != nil {
		if project.StartDate, err = parseOptionalDate("start_date", req.StartDate); err != nil {
			return nil, err
		}
	}
	if req.ExpectedCompletionDate != nil {
		if project.ExpectedCompletionDate, err = parseOptionalDate("expected_completion_date", req.ExpectedCompletionDate); err != nil {
			return nil, err
		}
	}
	if req.EstimatedBudget != nil {
		budget, err := decimal.NewFromString(*req.EstimatedBudget)
		if err != nil || budget.IsNegative() {
			return nil, fmt.Errorf("%w: invalid estimated_budget", ErrValidation)
		}
		project.EstimatedBudget = budget
	}
	if req.ActualCost != nil {
		cost, err := decimal.NewFromString(*req.ActualCost)
		if err != nil || cost.IsNegative() {
			return nil, fmt.Errorf("%w: invalid actual_cost", ErrValidation)
		}
		project.ActualCost = cost
	}
	if req.ProgressPercentage != nil {
		project.ProgressPercentage = *req.ProgressPercentage
	}
	if req.Notes != nil {
		project.Notes = *req.Notes
	}
	if req.LastUpdate != nil {
		project.LastUpdate = *req.LastUpdate
	}

	if err := s.db.WithContext(ctx).Save(project).Error; err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return project, nil
}

func (s *projectService) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Project{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete project: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: project", ErrNotFound)
	}
	return nil
}
