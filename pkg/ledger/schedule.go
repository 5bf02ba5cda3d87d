package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finboard/finboard/pkg/models"
)

const (
	minDueDay = 1
	maxDueDay = 31
)

var (
	hundred      = decimal.NewFromInt(100)
	monthsInYear = decimal.NewFromInt(12)
)

// GenerateSchedule produces the full installment schedule for a loan using
// flat-rate amortization: interest is computed once on the original principal
// and applied identically to every month, never recalculated against a
// shrinking balance.
//
// Principal and interest are rounded to whole currency units independently and
// the installment amount is their sum, so amount == principal + interest holds
// exactly on every record.
func GenerateSchedule(loanID uuid.UUID, principal, annualRatePercent decimal.Decimal, termMonths int, startDate time.Time, dueDay int) ([]*models.ScheduleRecord, error) {
	if principal.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: principal must be positive, got %s", ErrInvalidLoanTerms, principal)
	}
	if termMonths <= 0 {
		return nil, fmt.Errorf("%w: term must be positive, got %d months", ErrInvalidLoanTerms, termMonths)
	}
	if annualRatePercent.IsNegative() {
		return nil, fmt.Errorf("%w: interest rate must not be negative, got %s", ErrInvalidLoanTerms, annualRatePercent)
	}
	if dueDay < minDueDay || dueDay > maxDueDay {
		return nil, fmt.Errorf("%w: due day must be between %d and %d, got %d", ErrInvalidLoanTerms, minDueDay, maxDueDay, dueDay)
	}

	monthlyPrincipal := principal.Div(decimal.NewFromInt(int64(termMonths))).Round(0)
	monthlyInterest := principal.Mul(annualRatePercent).Div(hundred).Div(monthsInYear).Round(0)
	monthlyAmount := monthlyPrincipal.Add(monthlyInterest)

	firstMonth := time.Date(startDate.Year(), startDate.Month(), 1, 0, 0, 0, 0, time.UTC)

	schedule := make([]*models.ScheduleRecord, 0, termMonths)
	for i := 0; i < termMonths; i++ {
		covered := firstMonth.AddDate(0, i, 0)
		schedule = append(schedule, &models.ScheduleRecord{
			ID:        uuid.New(),
			LoanID:    loanID,
			Month:     covered.Format("2006-01"),
			Amount:    monthlyAmount,
			Principal: monthlyPrincipal,
			Interest:  monthlyInterest,
			DueDate:   dueDateIn(covered, dueDay),
			Paid:      false,
			Status:    models.SchedulePending,
		})
	}
	return schedule, nil
}

// dueDateIn places the due day inside the covered month, clamping to the last
// day when the month is shorter (dueDay 31 in February lands on Feb 28/29).
func dueDateIn(month time.Time, dueDay int) time.Time {
	lastDay := month.AddDate(0, 1, -1).Day()
	day := dueDay
	if day > lastDay {
		day = lastDay
	}
	return time.Date(month.Year(), month.Month(), day, 0, 0, 0, 0, time.UTC)
}

// Classify derives the display status of a schedule record for a given day.
// Paid always wins over the date comparison.
func Classify(rec *models.ScheduleRecord, today time.Time) models.ScheduleStatus {
	if rec.Paid {
		return models.SchedulePaid
	}
	if dateOf(rec.DueDate).Before(dateOf(today)) {
		return models.ScheduleOverdue
	}
	return models.SchedulePending
}

// DueSoon reports whether an unpaid record falls due within the next 30 days.
// Both window endpoints count: a record due today or due exactly 30 days out
// is still due soon.
func DueSoon(rec *models.ScheduleRecord, today time.Time) bool {
	if rec.Paid {
		return false
	}
	due := dateOf(rec.DueDate)
	day := dateOf(today)
	return !due.Before(day) && !due.After(day.AddDate(0, 0, 30))
}

// dateOf truncates a timestamp to its calendar date in UTC.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
