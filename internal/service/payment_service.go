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

type CreatePaymentRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Amount      string  `json:"amount" binding:"required"` // Decimal string
	Currency    string  `json:"currency"`
	PaymentType string  `json:"payment_type" binding:"required"`
	DueDate     string  `json:"due_date" binding:"required"` // YYYY-MM-DD
	EmployeeID  *string `json:"employee_id"`
	CompanyID   *string `json:"company_id"`
	Category    string  `json:"category"`
	ReceiptURL  string  `json:"receipt_url"`
	Notes       string  `json:"notes"`
}

type UpdatePaymentRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Amount      *string `json:"amount"`
	DueDate     *string `json:"due_date"`
	Category    *string `json:"category"`
	ReceiptURL  *string `json:"receipt_url"`
	Notes       *string `json:"notes"`
}

type GenerateCommissionPaymentRequest struct {
	SummaryID string `json:"summary_id" binding:"required,uuid"`
	DueDate   string `json:"due_date" binding:"required"` // YYYY-MM-DD
	Notes     string `json:"notes"`
}

var validPaymentTypes = map[string]bool{
	model.PaymentTypeCommission:      true,
	model.PaymentTypeBaseSalary:      true,
	model.PaymentTypeBonus:           true,
	model.PaymentTypeCarRentalIncome: true,
	model.PaymentTypeBusinessExpense: true,
	model.PaymentTypeOfficeRent:      true,
	model.PaymentTypeUtilityBill:     true,
	model.PaymentTypeEquipment:       true,
	model.PaymentTypeOtherIncome:     true,
	model.PaymentTypeOtherExpense:    true,
}

var validPaymentStatuses = map[string]bool{
	model.PaymentPending:   true,
	model.PaymentApproved:  true,
	model.PaymentPaid:      true,
	model.PaymentOverdue:   true,
	model.PaymentCancelled: true,
	model.PaymentDisputed:  true,
}

// --- Interface ---

// PaymentService owns the money ledger: ad-hoc income and expense entries plus
// commission payouts generated from monthly summaries.
type PaymentService interface {
	Create(ctx context.Context, req CreatePaymentRequest, createdBy uuid.UUID) (*model.Payment, error)
	GenerateFromSummary(ctx context.Context, req GenerateCommissionPaymentRequest, createdBy uuid.UUID) (*model.Payment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	List(ctx context.Context, filter repository.PaymentFilter, offset, limit int) ([]model.Payment, int64, error)
	Update(ctx context.Context, id uuid.UUID, req UpdatePaymentRequest) (*model.Payment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, actor uuid.UUID) (*model.Payment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type paymentService struct {
	payments  repository.PaymentRepository
	summaries repository.CommissionSummaryRepository
	tx        repository.TransactionManager
}

func NewPaymentService(
	payments repository.PaymentRepository,
	summaries repository.CommissionSummaryRepository,
	tx repository.TransactionManager,
) PaymentService {
	return &paymentService{payments: payments, summaries: summaries, tx: tx}
}

func (s *paymentService) Create(ctx context.Context, req CreatePaymentRequest, createdBy uuid.UUID) (*model.Payment, error) {
	if !validPaymentTypes[req.PaymentType] {
		return nil, fmt.Errorf("%w: unknown payment type %q", ErrValidation, req.PaymentType)
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid amount", ErrValidation)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must not be negative", ErrValidation)
	}
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return nil, fmt.Errorf("%w: due_date must be YYYY-MM-DD", ErrValidation)
	}

	payment := model.Payment{
		Title:       req.Title,
		Description: req.Description,
		Amount:      amount,
		PaymentType: req.PaymentType,
		Status:      model.PaymentPending,
		DueDate:     dueDate,
		Category:    req.Category,
		ReceiptURL:  req.ReceiptURL,
		Notes:       req.Notes,
		CreatedByID: createdBy,
	}
	if req.Currency != "" {
		payment.Currency = req.Currency
	}
	if req.EmployeeID != nil {
		id, err := uuid.Parse(*req.EmployeeID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid employee id", ErrValidation)
		}
		payment.EmployeeID = &id
	}
	if req.CompanyID != nil {
		id, err := uuid.Parse(*req.CompanyID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid company id", ErrValidation)
		}
		payment.CompanyID = &id
	}

	if err := s.payments.Create(ctx, &payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	return &payment, nil
}

// GenerateFromSummary turns a calculated monthly summary into a pending
// commission payment. A summary can be paid out at most once.
func (s *paymentService) GenerateFromSummary(ctx context.Context, req GenerateCommissionPaymentRequest, createdBy uuid.UUID) (*model.Payment, error) {
	summaryID, err := uuid.Parse(req.SummaryID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid summary id", ErrValidation)
	}
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return nil, fmt.Errorf("%w: due_date must be YYYY-MM-DD", ErrValidation)
	}

	var payment *model.Payment
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		summary, err := s.summaries.GetByID(txCtx, summaryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: commission summary", ErrNotFound)
			}
			return fmt.Errorf("failed to fetch summary: %w", err)
		}

		if _, err := s.payments.GetBySummaryID(txCtx, summaryID); err == nil {
			return fmt.Errorf("%w: a payment already exists for this summary", ErrInvalidState)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check existing payment: %w", err)
		}

		employee := ""
		if summary.Employee != nil {
			employee = summary.Employee.FullName()
		}
		payment = &model.Payment{
			Title:               fmt.Sprintf("Commission %d-%02d %s", summary.Year, summary.Month, employee),
			Amount:              summary.TotalCommission,
			PaymentType:         model.PaymentTypeCommission,
			Status:              model.PaymentPending,
			DueDate:             dueDate,
			EmployeeID:          &summary.EmployeeID,
			CommissionSummaryID: &summary.ID,
			Notes:               req.Notes,
			CreatedByID:         createdBy,
		}
		if err := s.payments.Create(txCtx, payment); err != nil {
			return fmt.Errorf("failed to create commission payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: payment", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch payment: %w", err)
	}
	return payment, nil
}

func (s *paymentService) List(ctx context.Context, filter repository.PaymentFilter, offset, limit int) ([]model.Payment, int64, error) {
	payments, total, err := s.payments.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, total, nil
}

func (s *paymentService) Update(ctx context.Context, id uuid.UUID, req UpdatePaymentRequest) (*model.Payment, error) {
	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: payment", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch payment: %w", err)
	}
	if payment.Status == model.PaymentPaid {
		return nil, fmt.Errorf("%w: paid payments cannot be edited", ErrInvalidState)
	}

	if req.Title != nil {
		payment.Title = *req.Title
	}
	if req.Description != nil {
		payment.Description = *req.Description
	}
	if req.Amount != nil {
		amount, err := decimal.NewFromString(*req.Amount)
		if err != nil || amount.IsNegative() {
			return nil, fmt.Errorf("%w: invalid amount", ErrValidation)
		}
		payment.Amount = amount
	}
	if req.DueDate != nil {
		dueDate, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			return nil, fmt.Errorf("%w: due_date must be YYYY-MM-DD", ErrValidation)
		}
		payment.DueDate = dueDate
	}
	if req.Category != nil {
		payment.Category = *req.Category
	}
	if req.ReceiptURL != nil {
		payment.ReceiptURL = *req.ReceiptURL
	}
	if req.Notes != nil {
		payment.Notes = *req.Notes
	}

	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}
	return payment, nil
}

// UpdateStatus moves a payment through its lifecycle. Marking a commission
// payment as paid also stamps the linked summary as paid, in one transaction.
func (s *paymentService) UpdateStatus(ctx context.Context, id uuid.UUID, status string, actor uuid.UUID) (*model.Payment, error) {
	if !validPaymentStatuses[status] {
		return nil, fmt.Errorf("%w: unknown payment status %q", ErrValidation, status)
	}

	var payment *model.Payment
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		payment, err = s.payments.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: payment", ErrNotFound)
			}
			return fmt.Errorf("failed to fetch payment: %w", err)
		}
		if payment.Status == model.PaymentPaid && status != model.PaymentDisputed {
			return fmt.Errorf("%w: payment is already paid", ErrInvalidState)
		}

		now := time.Now().UTC()
		payment.Status = status
		switch status {
		case model.PaymentApproved:
			payment.ApprovedByID = &actor
			payment.ApprovedAt = &now
		case model.PaymentPaid:
			payment.PaidDate = &now
		}
		if err := s.payments.Update(txCtx, payment); err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}

		if status == model.PaymentPaid && payment.CommissionSummaryID != nil {
			summary, err := s.summaries.GetByID(txCtx, *payment.CommissionSummaryID)
			if err != nil {
				return fmt.Errorf("failed to fetch linked summary: %w", err)
			}
			summary.PaymentStatus = model.PaymentPaid
			summary.PaymentDate = &now
			if err := s.summaries.Update(txCtx, summary); err != nil {
				return fmt.Errorf("failed to update linked summary: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) Delete(ctx context.Context, id uuid.UUID) error {
	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: payment", ErrNotFound)
		}
		return fmt.Errorf("failed to fetch payment: %w", err)
	}
	if payment.Status == model.PaymentPaid {
		return fmt.Errorf("%w: paid payments cannot be deleted", ErrInvalidState)
	}
	if err := s.payments.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	return nil
}
