package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"portal/internal/model"
	"portal/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- in-memory fakes ---
// Embedding the interface keeps the fakes small; calling an unimplemented
// method panics, which is exactly what a test should do.

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeUserRepo struct {
	repository.UserRepository
	users map[uuid.UUID]*model.User
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeRuleRepo struct {
	repository.CommissionRuleRepository
	rules []model.CommissionRule
}

func (f *fakeRuleRepo) FindActiveByEmployee(_ context.Context, employeeID uuid.UUID) ([]model.CommissionRule, error) {
	var out []model.CommissionRule
	for _, r := range f.rules {
		if r.IsActive && r.EmployeeID == employeeID {
			out = append(out, r)
		}
	}
	return out, nil
}

type commissionWrite struct {
	amount decimal.Decimal
	status string
}

type fakeSaleRepo struct {
	repository.SaleRepository
	sales            []model.Sale
	activeLeads      int64
	commissionWrites map[uuid.UUID]commissionWrite
}

func (f *fakeSaleRepo) FindClosedWonInRange(_ context.Context, employeeID uuid.UUID, from, to time.Time) ([]model.Sale, error) {
	var out []model.Sale
	for _, s := range f.sales {
		if s.SalespersonID != employeeID || s.Status != model.SaleStatusClosedWon || s.CloseDate == nil {
			continue
		}
		if s.CloseDate.Before(from) || s.CloseDate.After(to) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSaleRepo) CountActiveLeads(_ context.Context, _ uuid.UUID) (int64, error) {
	return f.activeLeads, nil
}

func (f *fakeSaleRepo) UpdateCommission(_ context.Context, saleID uuid.UUID, amount decimal.Decimal, status string) error {
	if f.commissionWrites == nil {
		f.commissionWrites = make(map[uuid.UUID]commissionWrite)
	}
	f.commissionWrites[saleID] = commissionWrite{amount: amount, status: status}
	return nil
}

type summaryKey struct {
	employee uuid.UUID
	year     int
	month    int
}

type fakeSummaryRepo struct {
	repository.CommissionSummaryRepository
	rows map[summaryKey]*model.MonthlyCommissionSummary
	// hideFirstGet makes the first GetByPeriod miss, simulating a concurrent
	// caller inserting the row between the read and the insert.
	hideFirstGet bool
	createCalls  int
	updateCalls  int
}

func newFakeSummaryRepo() *fakeSummaryRepo {
	return &fakeSummaryRepo{rows: make(map[summaryKey]*model.MonthlyCommissionSummary)}
}

func (f *fakeSummaryRepo) Create(_ context.Context, summary *model.MonthlyCommissionSummary) error {
	f.createCalls++
	key := summaryKey{summary.EmployeeID, summary.Year, summary.Month}
	if _, exists := f.rows[key]; exists {
		return repository.ErrDuplicateSummary
	}
	summary.ID = uuid.New()
	copied := *summary
	f.rows[key] = &copied
	return nil
}

func (f *fakeSummaryRepo) GetByPeriod(_ context.Context, employeeID uuid.UUID, year, month int) (*model.MonthlyCommissionSummary, error) {
	if f.hideFirstGet {
		f.hideFirstGet = false
		return nil, gorm.ErrRecordNotFound
	}
	if row, ok := f.rows[summaryKey{employeeID, year, month}]; ok {
		copied := *row
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSummaryRepo) Update(_ context.Context, summary *model.MonthlyCommissionSummary) error {
	f.updateCalls++
	copied := *summary
	f.rows[summaryKey{summary.EmployeeID, summary.Year, summary.Month}] = &copied
	return nil
}

// --- helpers ---

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func closedSale(employee uuid.UUID, saleType, amount string, closeDate time.Time) model.Sale {
	return model.Sale{
		ID:            uuid.New(),
		SaleType:      saleType,
		Status:        model.SaleStatusClosedWon,
		SaleAmount:    dec(amount),
		SalespersonID: employee,
		CloseDate:     &closeDate,
	}
}

func wildcardRule(employee uuid.UUID, rate, minAmount string, priority int) model.CommissionRule {
	return model.CommissionRule{
		ID:                 uuid.New(),
		EmployeeID:         employee,
		BaseCommissionRate: dec(rate),
		MinSaleAmount:      dec(minAmount),
		Priority:           priority,
		IsActive:           true,
	}
}

type calcFixture struct {
	svc       CommissionService
	users     *fakeUserRepo
	rules     *fakeRuleRepo
	sales     *fakeSaleRepo
	summaries *fakeSummaryRepo
	employee  uuid.UUID
	actor     uuid.UUID
}

func newCalcFixture() *calcFixture {
	employee := uuid.New()
	f := &calcFixture{
		users:     &fakeUserRepo{users: map[uuid.UUID]*model.User{employee: {ID: employee, Email: "seller@example.com"}}},
		rules:     &fakeRuleRepo{},
		sales:     &fakeSaleRepo{},
		summaries: newFakeSummaryRepo(),
		employee:  employee,
		actor:     uuid.New(),
	}
	f.svc = NewCommissionService(f.users, f.rules, f.sales, f.summaries, fakeTxManager{})
	return f
}

func (f *calcFixture) calculate(t *testing.T, year, month int, recalc bool) (*model.MonthlyCommissionSummary, error) {
	t.Helper()
	return f.svc.Calculate(context.Background(), CalculateCommissionRequest{
		EmployeeID:  f.employee.String(),
		Year:        year,
		Month:       month,
		Recalculate: recalc,
	}, f.actor)
}

// --- tests ---

func TestCalculateValidation(t *testing.T) {
	f := newCalcFixture()

	tests := []struct {
		name  string
		year  int
		month int
	}{
		{"month zero", 2025, 0},
		{"month thirteen", 2025, 13},
		{"year too early", 1999, 6},
		{"year too late", 2101, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.calculate(t, tt.year, tt.month, false)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestCalculateUnknownEmployee(t *testing.T) {
	f := newCalcFixture()
	_, err := f.svc.Calculate(context.Background(), CalculateCommissionRequest{
		EmployeeID: uuid.NewString(),
		Year:       2025,
		Month:      6,
	}, f.actor)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCalculateNoActiveRules(t *testing.T) {
	f := newCalcFixture()
	f.sales.sales = []model.Sale{
		closedSale(f.employee, model.SaleTypeConsulting, "1000", time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)),
	}

	_, err := f.calculate(t, 2025, 6, false)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if len(f.sales.commissionWrites) != 0 {
		t.Fatalf("no sale should be touched, got %d writes", len(f.sales.commissionWrites))
	}
	if f.summaries.createCalls != 0 {
		t.Fatalf("no summary should be created, got %d creates", f.summaries.createCalls)
	}
}

func TestCalculateBasicCommission(t *testing.T) {
	f := newCalcFixture()
	f.rules.rules = []model.CommissionRule{wildcardRule(f.employee, "10", "500", 0)}
	sale := closedSale(f.employee, model.SaleTypeConsulting, "1000", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))
	f.sales.sales = []model.Sale{sale}
	f.sales.activeLeads = 3

	summary, err := f.calculate(t, 2025, 6, false)
	if err != nil {
		t.Fatal(err)
	}

	if !summary.BaseCommission.Equal(dec("100")) {
		t.Errorf("base commission = %s, want 100", summary.BaseCommission)
	}
	if !summary.TotalCommission.Equal(dec("100")) {
		t.Errorf("total commission = %s, want 100", summary.TotalCommission)
	}
	if !summary.TotalSalesAmount.Equal(dec("1000")) {
		t.Errorf("total sales = %s, want 1000", summary.TotalSalesAmount)
	}
	if summary.ClosedDealsCount != 1 || summary.ActiveLeadsCount != 3 {
		t.Errorf("counts = (%d, %d), want (1, 3)", summary.ClosedDealsCount, summary.ActiveLeadsCount)
	}

	write, ok := f.sales.commissionWrites[sale.ID]
	if !ok {
		t.Fatal("sale commission was not stamped")
	}
	if !write.amount.Equal(dec("100")) || write.status != model.CommissionCalculated {
		t.Errorf("sale write = (%s, %s), want (100, calculated)", write.amount, write.status)
	}

	entry, ok := summary.SalesBreakdown[model.SaleTypeConsulting]
	if !ok {
		t.Fatal("breakdown missing consulting entry")
	}
	if entry.Count != 1 || !entry.TotalAmount.Equal(dec("1000")) || !entry.Commission.Equal(dec("100")) {
		t.Errorf("breakdown entry = %+v", entry)
	}
}

func TestCalculateBelowMinimumEarnsNothing(t *testing.T) {
	f := newCalcFixture()
	f.rules.rules = []model.CommissionRule{wildcardRule(f.employee, "10", "500", 0)}
	sale := closedSale(f.employee, model.SaleTypeOther, "499.99", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))
	f.sales.sales = []model.Sale{sale}

	summary, err := f.calculate(t, 2025, 6, false)
	if err != nil {
		t.Fatal(err)
	}

	// Counted in the month's totals but no commission and no stamp.
	if !summary.TotalSalesAmount.Equal(dec("499.99")) || summary.ClosedDealsCount != 1 {
		t.Errorf("totals = (%s, %d), want (499.99, 1)", summary.TotalSalesAmount, summary.ClosedDealsCount)
	}
	if !summary.BaseCommission.IsZero() {
		t.Errorf("base commission = %s, want 0", summary.BaseCommission)
	}
	if len(f.sales.commissionWrites) != 0 {
		t.Error("unmatched sale must not be stamped")
	}
}

func TestCalculateFirstMatchWins(t *testing.T) {
	f := newCalcFixture()
	consulting := model.SaleTypeConsulting
	specific := wildcardRule(f.employee, "20", "0", 0)
	specific.SaleType = &consulting
	fallback := wildcardRule(f.employee, "5", "0", 1)
	f.rules.rules = []model.CommissionRule{specific, fallback}

	f.sales.sales = []model.Sale{
		closedSale(f.employee, model.SaleTypeConsulting, "1000", time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)),
		closedSale(f.employee, model.SaleTypeRenovation, "1000", time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC)),
	}

	summary, err := f.calculate(t, 2025, 6, false)
	if err != nil {
		t.Fatal(err)
	}

	// Consulting hits the 20% rule, renovation falls through to the 5% one.
	if !summary.BaseCommission.Equal(dec("250")) {
		t.Errorf("base commission = %s, want 250", summary.BaseCommission)
	}
}

func TestCalculateTierBonusesStack(t *testing.T) {
	f := newCalcFixture()
	rule := wildcardRule(f.employee, "10", "0", 0)
	rule.Tier1Threshold = decPtr("10000")
	rule.Tier1BonusRate = dec("2")
	rule.Tier2Threshold = decPtr("20000")
	rule.Tier2BonusRate = dec("3")
	rule.Tier3Threshold = decPtr("30000")
	rule.Tier3BonusRate = dec("5")
	f.rules.rules = []model.CommissionRule{rule}

	f.sales.sales = []model.Sale{
		closedSale(f.employee, model.SaleTypeStoreOpening, "25000", time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)),
	}

	summary, err := f.calculate(t, 2025, 6, false)
	if err != nil {
		t.Fatal(err)
	}

	// 25000 reaches tiers 1 and 2 but not 3: 25000*2% + 25000*3% = 1250.
	if !summary.TierBonus.Equal(dec("1250")) {
		t.Errorf("tier bonus = %s, want 1250", summary.TierBonus)
	}
	if !summary.TotalCommission.Equal(dec("3750")) {
		t.Errorf("total commission = %s, want 3750", summary.TotalCommission)
	}
}

func TestCalculateIsIdempotentWithoutRecalculate(t *testing.T) {
	f := newCalcFixture()
	f.rules.rules = []model.CommissionRule{wildcardRule(f.employee, "10", "0", 0)}
	f.sales.sales = []model.Sale{
		closedSale(f.employee, model.SaleTypeConsulting, "1000", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)),
	}

	first, err := f.calculate(t, 2025, 6, false)
	if err != nil {
		t.Fatal(err)
	}

	// New sale lands after the first run; the stored row now also carries its
	// loaded employee relation.
	f.sales.sales = append(f.sales.sales,
		closedSale(f.employee, model.SaleTypeConsulting, "9000", time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)))
	f.sales.commissionWrites = nil
	f.summaries.rows[summaryKey{f.employee, 2025, 6}].Employee = &model.User{ID: f.employee, Email: "seller@example.com"}

	second, err := f.calculate(t, 2025, 6, false)
	if err != nil {
		t.Fatal(err)
	}
	if !second.TotalCommission.Equal(first.TotalCommission) {
		t.Errorf("stored summary changed without recalculate: %s != %s", second.TotalCommission, first.TotalCommission)
	}
	if len(f.sales.commissionWrites) != 0 {
		t.Error("idempotent read must not touch sales")
	}
	if second.Employee == nil {
		t.Error("early return must hand back the row as the repository loads it, relations included")
	}

	// With recalculate the new sale is picked up and the row is updated in place.
	third, err := f.calculate(t, 2025, 6, true)
	if err != nil {
		t.Fatal(err)
	}
	if !third.TotalCommission.Equal(dec("1000")) {
		t.Errorf("recalculated total = %s, want 1000", third.TotalCommission)
	}
	if third.ID != first.ID {
		t.Error("recalculation must update the existing row, not insert a new one")
	}
	if len(f.summaries.rows) != 1 {
		t.Fatalf("expected a single summary row, got %d", len(f.summaries.rows))
	}
}

func TestCalculateDecemberBoundary(t *testing.T) {
	f := newCalcFixture()
	f.rules.rules = []model.CommissionRule{wildcardRule(f.employee, "10", "0", 0)}
	f.sales.sales = []model.Sale{
		closedSale(f.employee, model.SaleTypeConsulting, "1000", time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)),
		closedSale(f.employee, model.SaleTypeConsulting, "5000", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
	}

	summary, err := f.calculate(t, 2024, 12, false)
	if err != nil {
		t.Fatal(err)
	}

	// December 31 is in, January 1 of the next year is out.
	if summary.ClosedDealsCount != 1 {
		t.Errorf("closed deals = %d, want 1", summary.ClosedDealsCount)
	}
	if !summary.TotalSalesAmount.Equal(dec("1000")) {
		t.Errorf("total sales = %s, want 1000", summary.TotalSalesAmount)
	}
}

func TestCalculateInsertRaceFallsBackToRead(t *testing.T) {
	f := newCalcFixture()
	f.rules.rules = []model.CommissionRule{wildcardRule(f.employee, "10", "0", 0)}
	f.sales.sales = []model.Sale{
		closedSale(f.employee, model.SaleTypeConsulting, "1000", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)),
	}

	// A concurrent caller inserted the period's row between this caller's
	// read and insert: the first GetByPeriod misses, Create hits the unique
	// constraint, and the conflict resolves to the winner's row.
	winner := &model.MonthlyCommissionSummary{
		ID:              uuid.New(),
		EmployeeID:      f.employee,
		Year:            2025,
		Month:           6,
		TotalCommission: dec("42"),
	}
	f.summaries.rows[summaryKey{f.employee, 2025, 6}] = winner
	f.summaries.hideFirstGet = true

	result, err := f.calculate(t, 2025, 6, false)
	if err != nil {
		t.Fatal(err)
	}
	if result.ID != winner.ID {
		t.Error("expected the concurrent winner's row to be returned")
	}
}
