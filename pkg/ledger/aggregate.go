package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finboard/finboard/pkg/models"
)

// LoanSummary is the per-loan fold over its schedule records.
type LoanSummary struct {
	LoanID            uuid.UUID         `json:"loan_id"`
	PaidInstallments  int               `json:"paid_installments"`
	TotalInstallments int               `json:"total_installments"`
	ProgressPercent   int               `json:"progress_percent"`
	PaidAmount        decimal.Decimal   `json:"paid_amount"`
	RemainingAmount   decimal.Decimal   `json:"remaining_amount"`
	Status            models.LoanStatus `json:"status"`
}

// PortfolioStats folds every loan into dashboard-level figures.
type PortfolioStats struct {
	ActiveRemaining  decimal.Decimal `json:"active_remaining"`  // Remaining balance across active loans
	ActivePaid       decimal.Decimal `json:"active_paid"`       // Paid amount across active loans
	OverdueLoans     int             `json:"overdue_loans"`     // Loans currently flagged overdue
	TotalThisMonth   decimal.Decimal `json:"total_this_month"`  // Unpaid installments due in the current calendar month
	UpcomingPayments int             `json:"upcoming_payments"` // Unpaid installments with a future due date, unbounded
	DueSoonPayments  int             `json:"due_soon_payments"` // Unpaid installments due within 30 days
}

// SummarizeLoan folds a loan's schedule into summary figures. Pure.
func SummarizeLoan(loan *models.Loan, records []*models.ScheduleRecord) LoanSummary {
	summary := LoanSummary{
		LoanID:            loan.ID,
		TotalInstallments: len(records),
		PaidAmount:        loan.PaidAmount,
		RemainingAmount:   loan.RemainingAmount,
		Status:            loan.Status,
	}
	for _, rec := range records {
		if rec.Paid {
			summary.PaidInstallments++
		}
	}
	if summary.TotalInstallments > 0 {
		summary.ProgressPercent = summary.PaidInstallments * 100 / summary.TotalInstallments
	}
	return summary
}

// AggregatePortfolio folds all loans and their schedules into portfolio
// statistics for a given day. Pure, deterministic given today.
func AggregatePortfolio(loans []*models.Loan, schedulesByLoan map[uuid.UUID][]*models.ScheduleRecord, today time.Time) PortfolioStats {
	stats := PortfolioStats{
		ActiveRemaining: decimal.Zero,
		ActivePaid:      decimal.Zero,
		TotalThisMonth:  decimal.Zero,
	}
	currentMonth := today.Format("2006-01")
	day := dateOf(today)

	for _, loan := range loans {
		switch loan.Status {
		case models.LoanStatusActive:
			stats.ActiveRemaining = stats.ActiveRemaining.Add(loan.RemainingAmount)
			stats.ActivePaid = stats.ActivePaid.Add(loan.PaidAmount)
		case models.LoanStatusOverdue:
			stats.OverdueLoans++
		}

		for _, rec := range schedulesByLoan[loan.ID] {
			if rec.Paid {
				continue
			}
			if rec.Month == currentMonth {
				stats.TotalThisMonth = stats.TotalThisMonth.Add(rec.Amount)
			}
			if dateOf(rec.DueDate).After(day) {
				stats.UpcomingPayments++
			}
			if DueSoon(rec, today) {
				stats.DueSoonPayments++
			}
		}
	}
	return stats
}

// Summary returns the fold of one loan's schedule.
func (l *Ledger) Summary(loanID uuid.UUID) (LoanSummary, error) {
	loan, err := l.GetLoan(loanID)
	if err != nil {
		return LoanSummary{}, err
	}
	records, err := l.storage.GetSchedulesForLoan(loanID)
	if err != nil {
		return LoanSummary{}, err
	}
	return SummarizeLoan(loan, records), nil
}

// Portfolio loads every loan and schedule and folds them into portfolio
// statistics as of the current day.
func (l *Ledger) Portfolio() (PortfolioStats, error) {
	loans, err := l.storage.GetAllLoans()
	if err != nil {
		return PortfolioStats{}, fmt.Errorf("failed to get loans: %w", err)
	}
	schedulesByLoan := make(map[uuid.UUID][]*models.ScheduleRecord, len(loans))
	for _, loan := range loans {
		records, err := l.storage.GetSchedulesForLoan(loan.ID)
		if err != nil {
			return PortfolioStats{}, fmt.Errorf("failed to get schedule for loan %s: %w", loan.ID, err)
		}
		schedulesByLoan[loan.ID] = records
	}
	return AggregatePortfolio(loans, schedulesByLoan, l.now()), nil
}

// MonthlyDebt sums the installment amounts every loan owes for the given
// calendar month (YYYY-MM), paid or not. Feeds the health scorer's debt ratio.
func (l *Ledger) MonthlyDebt(month string) (decimal.Decimal, error) {
	loans, err := l.storage.GetAllLoans()
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get loans: %w", err)
	}
	total := decimal.Zero
	for _, loan := range loans {
		records, err := l.storage.GetSchedulesForLoan(loan.ID)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to get schedule for loan %s: %w", loan.ID, err)
		}
		for _, rec := range records {
			if rec.Month == month {
				total = total.Add(rec.Amount)
			}
		}
	}
	return total, nil
}
