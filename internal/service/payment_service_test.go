package service

import (
	"context"
	"errors"
	"testing"

	"portal/internal/model"
	"portal/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakePaymentRepo struct {
	repository.PaymentRepository
	payments map[uuid.UUID]*model.Payment
	deleted  []uuid.UUID
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[uuid.UUID]*model.Payment)}
}

func (f *fakePaymentRepo) Create(_ context.Context, payment *model.Payment) error {
	payment.ID = uuid.New()
	copied := *payment
	f.payments[payment.ID] = &copied
	return nil
}

func (f *fakePaymentRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Payment, error) {
	if p, ok := f.payments[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePaymentRepo) GetBySummaryID(_ context.Context, summaryID uuid.UUID) (*model.Payment, error) {
	for _, p := range f.payments {
		if p.CommissionSummaryID != nil && *p.CommissionSummaryID == summaryID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePaymentRepo) Update(_ context.Context, payment *model.Payment) error {
	copied := *payment
	f.payments[payment.ID] = &copied
	return nil
}

func (f *fakePaymentRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.payments, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeSummaryRepo) GetByID(_ context.Context, id uuid.UUID) (*model.MonthlyCommissionSummary, error) {
	for _, row := range f.rows {
		if row.ID == id {
			copied := *row
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type paymentFixture struct {
	svc       PaymentService
	payments  *fakePaymentRepo
	summaries *fakeSummaryRepo
	actor     uuid.UUID
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		payments:  newFakePaymentRepo(),
		summaries: newFakeSummaryRepo(),
		actor:     uuid.New(),
	}
	f.svc = NewPaymentService(f.payments, f.summaries, fakeTxManager{})
	return f
}

func (f *paymentFixture) seedSummary() *model.MonthlyCommissionSummary {
	summary := &model.MonthlyCommissionSummary{
		ID:              uuid.New(),
		EmployeeID:      uuid.New(),
		Year:            2025,
		Month:           6,
		TotalCommission: dec("1250.50"),
		PaymentStatus:   model.PaymentPending,
		Employee:        &model.User{FirstName: "Ana", Surname: "Costa"},
	}
	f.summaries.rows[summaryKey{summary.EmployeeID, summary.Year, summary.Month}] = summary
	return summary
}

func TestGenerateFromSummary(t *testing.T) {
	f := newPaymentFixture()
	summary := f.seedSummary()

	payment, err := f.svc.GenerateFromSummary(context.Background(), GenerateCommissionPaymentRequest{
		SummaryID: summary.ID.String(),
		DueDate:   "2025-07-10",
	}, f.actor)
	if err != nil {
		t.Fatal(err)
	}

	if payment.PaymentType != model.PaymentTypeCommission {
		t.Errorf("payment type = %s, want commission_payment", payment.PaymentType)
	}
	if payment.Status != model.PaymentPending {
		t.Errorf("status = %s, want pending", payment.Status)
	}
	if !payment.Amount.Equal(summary.TotalCommission) {
		t.Errorf("amount = %s, want %s", payment.Amount, summary.TotalCommission)
	}
	if payment.CommissionSummaryID == nil || *payment.CommissionSummaryID != summary.ID {
		t.Error("payment must reference the summary")
	}
	if payment.Title != "Commission 2025-06 Ana Costa" {
		t.Errorf("title = %q", payment.Title)
	}
}

func TestGenerateFromSummaryRejectsSecondPayout(t *testing.T) {
	f := newPaymentFixture()
	summary := f.seedSummary()

	req := GenerateCommissionPaymentRequest{SummaryID: summary.ID.String(), DueDate: "2025-07-10"}
	if _, err := f.svc.GenerateFromSummary(context.Background(), req, f.actor); err != nil {
		t.Fatal(err)
	}

	_, err := f.svc.GenerateFromSummary(context.Background(), req, f.actor)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on second payout, got %v", err)
	}
}

func TestGenerateFromSummaryUnknownSummary(t *testing.T) {
	f := newPaymentFixture()
	_, err := f.svc.GenerateFromSummary(context.Background(), GenerateCommissionPaymentRequest{
		SummaryID: uuid.NewString(),
		DueDate:   "2025-07-10",
	}, f.actor)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateStatusPaidStampsLinkedSummary(t *testing.T) {
	f := newPaymentFixture()
	summary := f.seedSummary()

	payment, err := f.svc.GenerateFromSummary(context.Background(), GenerateCommissionPaymentRequest{
		SummaryID: summary.ID.String(),
		DueDate:   "2025-07-10",
	}, f.actor)
	if err != nil {
		t.Fatal(err)
	}

	paid, err := f.svc.UpdateStatus(context.Background(), payment.ID, model.PaymentPaid, f.actor)
	if err != nil {
		t.Fatal(err)
	}
	if paid.PaidDate == nil {
		t.Error("paid payment must carry a paid date")
	}

	stored := f.summaries.rows[summaryKey{summary.EmployeeID, summary.Year, summary.Month}]
	if stored.PaymentStatus != model.PaymentPaid {
		t.Errorf("summary payment status = %s, want paid", stored.PaymentStatus)
	}
	if stored.PaymentDate == nil {
		t.Error("summary must carry a payment date")
	}
}

func TestUpdateStatusApprovedRecordsApprover(t *testing.T) {
	f := newPaymentFixture()
	payment, err := f.svc.Create(context.Background(), CreatePaymentRequest{
		Title:       "Office rent July",
		Amount:      "900",
		PaymentType: model.PaymentTypeOfficeRent,
		DueDate:     "2025-07-01",
	}, f.actor)
	if err != nil {
		t.Fatal(err)
	}

	approver := uuid.New()
	approved, err := f.svc.UpdateStatus(context.Background(), payment.ID, model.PaymentApproved, approver)
	if err != nil {
		t.Fatal(err)
	}
	if approved.ApprovedByID == nil || *approved.ApprovedByID != approver {
		t.Error("approved payment must record the approver")
	}
	if approved.ApprovedAt == nil {
		t.Error("approved payment must record the approval time")
	}
}

func TestPaidPaymentsAreImmutable(t *testing.T) {
	f := newPaymentFixture()
	payment, err := f.svc.Create(context.Background(), CreatePaymentRequest{
		Title:       "Consulting fee",
		Amount:      "500",
		PaymentType: model.PaymentTypeOtherExpense,
		DueDate:     "2025-07-01",
	}, f.actor)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.UpdateStatus(context.Background(), payment.ID, model.PaymentPaid, f.actor); err != nil {
		t.Fatal(err)
	}

	newTitle := "edited"
	if _, err := f.svc.Update(context.Background(), payment.ID, UpdatePaymentRequest{Title: &newTitle}); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState on edit, got %v", err)
	}
	if err := f.svc.Delete(context.Background(), payment.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState on delete, got %v", err)
	}
	// Disputing a paid payment stays possible.
	if _, err := f.svc.UpdateStatus(context.Background(), payment.ID, model.PaymentDisputed, f.actor); err != nil {
		t.Errorf("disputing a paid payment should be allowed, got %v", err)
	}
}

func TestCreatePaymentValidation(t *testing.T) {
	f := newPaymentFixture()

	tests := []struct {
		name string
		req  CreatePaymentRequest
	}{
		{"unknown type", CreatePaymentRequest{Title: "x", Amount: "10", PaymentType: "lottery", DueDate: "2025-07-01"}},
		{"bad amount", CreatePaymentRequest{Title: "x", Amount: "ten", PaymentType: model.PaymentTypeBonus, DueDate: "2025-07-01"}},
		{"negative amount", CreatePaymentRequest{Title: "x", Amount: "-5", PaymentType: model.PaymentTypeBonus, DueDate: "2025-07-01"}},
		{"bad due date", CreatePaymentRequest{Title: "x", Amount: "10", PaymentType: model.PaymentTypeBonus, DueDate: "07/01/2025"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.Create(context.Background(), tt.req, f.actor); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}
