package service

import (
	"context"
	"fmt"
	"strings"

	"yarey/backend/internal/domain"
	"yarey/backend/internal/export"
	"yarey/backend/internal/payroll"
	"yarey/backend/internal/store"
)

type PayrollView struct {
	Report  payroll.Report  `json:"report"`
	Summary payroll.Summary `json:"summary"`
}

func (s *Service) MonthlyPayroll(ctx context.Context, month string) (PayrollView, error) {
	month = strings.TrimSpace(month)
	if !domain.ValidMonth(month) {
		return PayrollView{}, fmt.Errorf("%w: month %q, want YYYY-MM", ErrInvalidRequest, month)
	}

	snap, err := s.load(ctx, domain.CollectionBookings, domain.CollectionStaff, domain.CollectionExpenses)
	if err != nil {
		return PayrollView{}, err
	}

	report := payroll.Monthly(snap.bookings, snap.staff, month, s.today())
	return PayrollView{Report: report, Summary: payroll.Summarize(report, snap.expenses)}, nil
}

func (s *Service) PayrollWorkbook(ctx context.Context, month string) ([]byte, error) {
	view, err := s.MonthlyPayroll(ctx, month)
	if err != nil {
		return nil, err
	}
	return export.PayrollWorkbook(view.Report, view.Summary)
}

// Payslip renders the PDF payslip of one active staff member for month.
func (s *Service) Payslip(ctx context.Context, month string, staffID string) ([]byte, error) {
	view, err := s.MonthlyPayroll(ctx, month)
	if err != nil {
		return nil, err
	}
	row, ok := view.Report.Row(strings.TrimSpace(staffID))
	if !ok {
		return nil, fmt.Errorf("payroll row %s: %w", staffID, store.ErrNotFound)
	}
	return export.Payslip(view.Report.Month, row)
}

// DailyClosing defaults to today when date is empty.
func (s *Service) DailyClosing(ctx context.Context, date string) (payroll.DailyClosing, error) {
	today := s.today()
	if strings.TrimSpace(date) == "" {
		date = today
	}
	date = domain.NormalizeDate(date, today)
	if !domain.ValidDate(date) {
		return payroll.DailyClosing{}, fmt.Errorf("%w: date %q, want YYYY-MM-DD", ErrInvalidRequest, date)
	}

	bookings, err := store.ListRecords[domain.Booking](ctx, s.repo, domain.CollectionBookings)
	if err != nil {
		return payroll.DailyClosing{}, err
	}
	return payroll.Daily(bookings, date, today), nil
}

// ListExpenses filters to month when given.
func (s *Service) ListExpenses(ctx context.Context, month string) ([]domain.Expense, error) {
	month = strings.TrimSpace(month)
	if month != "" && !domain.ValidMonth(month) {
		return nil, fmt.Errorf("%w: month %q, want YYYY-MM", ErrInvalidRequest, month)
	}
	expenses, err := store.ListRecords[domain.Expense](ctx, s.repo, domain.CollectionExpenses)
	if err != nil {
		return nil, err
	}
	if month == "" {
		return expenses, nil
	}
	return payroll.MonthExpenses(expenses, month), nil
}

func (s *Service) CreateExpense(ctx context.Context, req domain.ExpenseCreateRequest) (domain.Expense, error) {
	expense := domain.Expense{
		Month:    strings.TrimSpace(req.Month),
		Title:    strings.TrimSpace(req.Title),
		Amount:   req.Amount,
		Category: strings.TrimSpace(req.Category),
	}
	if !domain.ValidMonth(expense.Month) || expense.Title == "" {
		return domain.Expense{}, fmt.Errorf("%w: expense needs a YYYY-MM month and a title", ErrInvalidRequest)
	}
	if expense.Amount.IsNegative() {
		return domain.Expense{}, fmt.Errorf("%w: amount must not be negative", ErrInvalidRequest)
	}

	id, err := store.CreateRecord(ctx, s.repo, domain.CollectionExpenses, expense)
	if err != nil {
		return domain.Expense{}, err
	}
	expense.ID = id
	return expense, nil
}

func (s *Service) DeleteExpense(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, domain.CollectionExpenses, strings.TrimSpace(id))
}
