package service

import (
	"context"
	"fmt"
	"time"

	"portal/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SalesDashboard aggregates pipeline and revenue figures for a date window.
type SalesDashboard struct {
	TimeRangeStartDate time.Time `json:"time_range_start_date"`
	TimeRangeEndDate   time.Time `json:"time_range_end_date"`

	TotalClosedWonAmount decimal.Decimal `json:"total_closed_won_amount"`
	ClosedWonCount       int64           `json:"closed_won_count"`
	ActivePipelineCount  int64           `json:"active_pipeline_count"`
	ActivePipelineValue  decimal.Decimal `json:"active_pipeline_value"`

	TotalCommissionPaid    decimal.Decimal `json:"total_commission_paid"`
	TotalCommissionPending decimal.Decimal `json:"total_commission_pending"`

	// Same-length window immediately before the requested one, for trend lines.
	PreviousClosedWonAmount decimal.Decimal `json:"previous_closed_won_amount"`
	PreviousClosedWonCount  int64           `json:"previous_closed_won_count"`
	GrowthPercent           decimal.Decimal `json:"growth_percent"`

	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetCashFlow   decimal.Decimal `json:"net_cash_flow"`

	OverduePaymentsCount int64 `json:"overdue_payments_count"`

	TopSellers []SellerRanking `json:"top_sellers"`
	ByType     []TypeBreakdown `json:"by_type"`
}

// SellerRanking is one row of the closed-won leaderboard.
type SellerRanking struct {
	EmployeeID   uuid.UUID       `json:"employee_id"`
	EmployeeName string          `json:"employee_name"`
	DealCount    int64           `json:"deal_count"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// TypeBreakdown aggregates closed-won revenue per sale type.
type TypeBreakdown struct {
	SaleType    string          `json:"sale_type"`
	DealCount   int64           `json:"deal_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// CompanyTaskCount is the open-task workload of one company.
type CompanyTaskCount struct {
	CompanyID   uuid.UUID `json:"company_id"`
	CompanyName string    `json:"company_name"`
	OpenTasks   int64     `json:"open_tasks"`
}

// DayCount is one day of the completed-task timeline.
type DayCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int64  `json:"count"`
}

// OperationsReport covers the non-sales side of the business: task workload,
// fleet utilisation and the recent completion timeline.
type OperationsReport struct {
	TasksPerCompany []CompanyTaskCount `json:"tasks_per_company"`

	FleetTotal     int64 `json:"fleet_total"`
	FleetRented    int64 `json:"fleet_rented"`
	FleetAvailable int64 `json:"fleet_available"`

	// Last 30 days of completed tasks, zero-filled, oldest first.
	CompletedTimeline []DayCount `json:"completed_timeline"`
}

type ReportService interface {
	GetSalesDashboard(ctx context.Context, startDate, endDate time.Time) (SalesDashboard, error)
	GetOperationsReport(ctx context.Context) (OperationsReport, error)
}

type reportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) ReportService {
	return &reportService{db: db}
}

// GetSalesDashboard builds the back-office dashboard from closed deals,
// the open pipeline, commission summaries and the payment ledger.
func (s *reportService) GetSalesDashboard(ctx context.Context, startDate, endDate time.Time) (SalesDashboard, error) {
	var dashboard SalesDashboard
	dashboard.TimeRangeStartDate = startDate
	dashboard.TimeRangeEndDate = endDate

	var closedWon struct {
		Value decimal.Decimal
		Count int64
	}
	if err := s.db.WithContext(ctx).Model(&model.Sale{}).
		Select("COALESCE(SUM(sale_amount), 0) as value, COUNT(*) as count").
		Where("status = ? AND close_date >= ? AND close_date <= ?", model.SaleStatusClosedWon, startDate, endDate).
		Scan(&closedWon).Error; err != nil {
		return dashboard, fmt.Errorf("failed to aggregate closed sales: %w", err)
	}
	dashboard.TotalClosedWonAmount = closedWon.Value
	dashboard.ClosedWonCount = closedWon.Count

	// Previous window: same length, ending the day before startDate.
	windowDays := int(endDate.Sub(startDate).Hours()/24) + 1
	prevEnd := startDate.AddDate(0, 0, -1)
	prevStart := prevEnd.AddDate(0, 0, -(windowDays - 1))

	var prevClosedWon struct {
		Value decimal.Decimal
		Count int64
	}
	if err := s.db.WithContext(ctx).Model(&model.Sale{}).
		Select("COALESCE(SUM(sale_amount), 0) as value, COUNT(*) as count").
		Where("status = ? AND close_date >= ? AND close_date <= ?", model.SaleStatusClosedWon, prevStart, prevEnd).
		Scan(&prevClosedWon).Error; err != nil {
		return dashboard, fmt.Errorf("failed to aggregate previous period: %w", err)
	}
	dashboard.PreviousClosedWonAmount = prevClosedWon.Value
	dashboard.PreviousClosedWonCount = prevClosedWon.Count
	if prevClosedWon.Value.IsPositive() {
		dashboard.GrowthPercent = closedWon.Value.Sub(prevClosedWon.Value).
			Div(prevClosedWon.Value).Mul(decimal.NewFromInt(100)).Round(2)
	}

	var pipeline struct {
		Value decimal.Decimal
		Count int64
	}
	if err := s.db.WithContext(ctx).Model(&model.Sale{}).
		Select("COALESCE(SUM(sale_amount), 0) as value, COUNT(*) as count").
		Where("status IN ?", []string{model.SaleStatusLead, model.SaleStatusProposalSent, model.SaleStatusNegotiating}).
		Scan(&pipeline).Error; err != nil {
		return dashboard, fmt.Errorf("failed to aggregate pipeline: %w", err)
	}
	dashboard.ActivePipelineValue = pipeline.Value
	dashboard.ActivePipelineCount = pipeline.Count

	var commissions struct {
		Paid    decimal.Decimal
		Pending decimal.Decimal
	}
	if err := s.db.WithContext(ctx).Model(&model.MonthlyCommissionSummary{}).
		Select(`COALESCE(SUM(CASE WHEN payment_status = 'paid' THEN total_commission ELSE 0 END), 0) as paid,
			COALESCE(SUM(CASE WHEN payment_status <> 'paid' THEN total_commission ELSE 0 END), 0) as pending`).
		Scan(&commissions).Error; err != nil {
		return dashboard, fmt.Errorf("failed to aggregate commissions: %w", err)
	}
	dashboard.TotalCommissionPaid = commissions.Paid
	dashboard.TotalCommissionPending = commissions.Pending

	var cash struct {
		Income   decimal.Decimal
		Expenses decimal.Decimal
	}
	if err := s.db.WithContext(ctx).Model(&model.Payment{}).
		Select(`COALESCE(SUM(CASE WHEN payment_type IN ? THEN amount ELSE 0 END), 0) as income,
			COALESCE(SUM(CASE WHEN payment_type NOT IN ? THEN amount ELSE 0 END), 0) as expenses`,
			[]string{model.PaymentTypeCarRentalIncome, model.PaymentTypeOtherIncome},
			[]string{model.PaymentTypeCarRentalIncome, model.PaymentTypeOtherIncome}).
		Where("status = ? AND paid_date >= ? AND paid_date <= ?", model.PaymentPaid, startDate, endDate).
		Scan(&cash).Error; err != nil {
		return dashboard, fmt.Errorf("failed to aggregate cash flow: %w", err)
	}
	dashboard.TotalIncome = cash.Income
	dashboard.TotalExpenses = cash.Expenses
	dashboard.NetCashFlow = cash.Income.Sub(cash.Expenses)

	if err := s.db.WithContext(ctx).Model(&model.Payment{}).
		Where("status IN ? AND due_date < ?", []string{model.PaymentPending, model.PaymentApproved, model.PaymentOverdue}, time.Now().UTC()).
		Count(&dashboard.OverduePaymentsCount).Error; err != nil {
		return dashboard, fmt.Errorf("failed to count overdue payments: %w", err)
	}

	var topSellers []SellerRanking
	if err := s.db.WithContext(ctx).Table("sales").
		Select(`sales.salesperson_id as employee_id,
			CONCAT(users.first_name, ' ', users.surname) as employee_name,
			COUNT(*) as deal_count,
			COALESCE(SUM(sales.sale_amount), 0) as total_amount`).
		Joins("JOIN users ON users.id = sales.salesperson_id").
		Where("sales.status = ? AND sales.close_date >= ? AND sales.close_date <= ?", model.SaleStatusClosedWon, startDate, endDate).
		Group("sales.salesperson_id, users.first_name, users.surname").
		Order("total_amount DESC").
		Limit(5).
		Scan(&topSellers).Error; err != nil {
		return dashboard, fmt.Errorf("failed to rank sellers: %w", err)
	}
	dashboard.TopSellers = topSellers

	var byType []TypeBreakdown
	if err := s.db.WithContext(ctx).Model(&model.Sale{}).
		Select("sale_type, COUNT(*) as deal_count, COALESCE(SUM(sale_amount), 0) as total_amount").
		Where("status = ? AND close_date >= ? AND close_date <= ?", model.SaleStatusClosedWon, startDate, endDate).
		Group("sale_type").
		Order("total_amount DESC").
		Scan(&byType).Error; err != nil {
		return dashboard, fmt.Errorf("failed to aggregate by sale type: %w", err)
	}
	dashboard.ByType = byType

	return dashboard, nil
}

// GetOperationsReport aggregates task workload per company, fleet utilisation
// and a zero-filled 30-day completed-task timeline.
func (s *reportService) GetOperationsReport(ctx context.Context) (OperationsReport, error) {
	var report OperationsReport

	if err := s.db.WithContext(ctx).Table("tasks").
		Select("tasks.company_id as company_id, companies.name as company_name, COUNT(*) as open_tasks").
		Joins("JOIN companies ON companies.id = tasks.company_id").
		Where("tasks.completed = false AND tasks.company_id IS NOT NULL").
		Group("tasks.company_id, companies.name").
		Order("open_tasks DESC").
		Scan(&report.TasksPerCompany).Error; err != nil {
		return report, fmt.Errorf("failed to aggregate tasks per company: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&model.Car{}).Count(&report.FleetTotal).Error; err != nil {
		return report, fmt.Errorf("failed to count fleet: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&model.Rental{}).
		Where("is_locked = false").
		Distinct("car_id").
		Count(&report.FleetRented).Error; err != nil {
		return report, fmt.Errorf("failed to count rented cars: %w", err)
	}
	report.FleetAvailable = report.FleetTotal - report.FleetRented

	today := time.Now().UTC().Truncate(24 * time.Hour)
	windowStart := today.AddDate(0, 0, -29)

	var rows []struct {
		Day   time.Time
		Count int64
	}
	if err := s.db.WithContext(ctx).Model(&model.Task{}).
		Select("DATE(status_updated_at) as day, COUNT(*) as count").
		Where("completed = true AND status_updated_at >= ?", windowStart).
		Group("DATE(status_updated_at)").
		Scan(&rows).Error; err != nil {
		return report, fmt.Errorf("failed to build completion timeline: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Day.Format("2006-01-02")] = row.Count
	}
	report.CompletedTimeline = make([]DayCount, 0, 30)
	for day := windowStart; !day.After(today); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		report.CompletedTimeline = append(report.CompletedTimeline, DayCount{Date: key, Count: counts[key]})
	}

	return report, nil
}
