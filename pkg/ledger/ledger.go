package ledger

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finboard/finboard/pkg/models"
	"github.com/finboard/finboard/pkg/store"
)

// Ledger handles the business logic for loans, installment schedules and
// payment history.
type Ledger struct {
	storage store.Storage    // Use the Storage interface
	now     func() time.Time // Injected clock so date-sensitive logic is testable
}

// NewLedger creates a new Ledger with a given Storage implementation.
func NewLedger(s store.Storage) *Ledger {
	return &Ledger{
		storage: s,
		now:     time.Now,
	}
}

// SetClock replaces the time source. Tests use this to pin "today".
func (l *Ledger) SetClock(now func() time.Time) {
	l.now = now
}

// CreateLoanParams carries the terms a new loan is generated from.
type CreateLoanParams struct {
	Name              string
	Principal         decimal.Decimal
	AnnualRatePercent decimal.Decimal
	TermMonths        int
	StartDate         time.Time
	DueDay            int
	Category          models.LoanCategory
	Lender            string
	Note              string
}

// CreateLoan validates the terms, generates the full installment schedule and
// persists the loan together with every schedule record in one atomic write.
// The loan's total is the sum of the generated installments, i.e. principal
// plus total flat interest.
func (l *Ledger) CreateLoan(p CreateLoanParams) (*models.Loan, []*models.ScheduleRecord, error) {
	loanID := uuid.New()
	schedule, err := GenerateSchedule(loanID, p.Principal, p.AnnualRatePercent, p.TermMonths, p.StartDate, p.DueDay)
	if err != nil {
		return nil, nil, err
	}

	total := decimal.Zero
	for _, rec := range schedule {
		total = total.Add(rec.Amount)
	}
	endDate := schedule[len(schedule)-1].DueDate

	category := p.Category
	if category == "" {
		category = models.LoanCategoryOther
	}

	loan := &models.Loan{
		ID:              loanID,
		Name:            p.Name,
		DueDay:          p.DueDay,
		Status:          models.LoanStatusActive,
		TotalAmount:     total,
		PaidAmount:      decimal.Zero,
		RemainingAmount: total,
		StartDate:       p.StartDate,
		EndDate:         &endDate,
		InterestRate:    p.AnnualRatePercent,
		Category:        category,
		Lender:          p.Lender,
		Note:            p.Note,
		CreatedAt:       l.now(),
	}

	if err := l.storage.CreateLoan(loan, schedule); err != nil {
		return nil, nil, fmt.Errorf("failed to store loan: %w", err)
	}
	return loan, schedule, nil
}

// GetLoan retrieves a loan by its ID.
func (l *Ledger) GetLoan(id uuid.UUID) (*models.Loan, error) {
	loan, err := l.storage.GetLoan(id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrLoanNotFound
	}
	return loan, err
}

// GetAllLoans retrieves all loans.
func (l *Ledger) GetAllLoans() ([]*models.Loan, error) {
	return l.storage.GetAllLoans()
}

// GetSchedule retrieves the full installment schedule of a loan, with each
// record's status derived against the current day.
func (l *Ledger) GetSchedule(loanID uuid.UUID) ([]*models.ScheduleRecord, error) {
	if _, err := l.GetLoan(loanID); err != nil {
		return nil, err
	}
	records, err := l.storage.GetSchedulesForLoan(loanID)
	if err != nil {
		return nil, err
	}
	today := l.now()
	for _, rec := range records {
		rec.Status = Classify(rec, today)
	}
	return records, nil
}

// GetPayments retrieves the payment history of a loan, oldest first.
func (l *Ledger) GetPayments(loanID uuid.UUID) ([]*models.PaymentRecord, error) {
	if _, err := l.GetLoan(loanID); err != nil {
		return nil, err
	}
	return l.storage.GetPaymentsForLoan(loanID)
}

// DeleteLoan removes a loan with its schedule and payment history.
func (l *Ledger) DeleteLoan(id uuid.UUID) error {
	err := l.storage.DeleteLoan(id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrLoanNotFound
	}
	return err
}

// MarkPaid settles one installment: the record flips to paid exactly once, a
// payment history entry is appended, and the parent loan's totals move by the
// installment amount. A second call on the same record fails with
// ErrAlreadyPaid instead of double-crediting the loan.
func (l *Ledger) MarkPaid(scheduleID uuid.UUID, method models.PaymentMethod, note string) (*models.ScheduleRecord, error) {
	rec, err := l.storage.GetSchedule(scheduleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	if rec.Paid {
		return nil, ErrAlreadyPaid
	}

	now := l.now()
	rec.Paid = true
	rec.PaidAt = &now
	rec.Status = models.SchedulePaid
	if err := l.storage.UpdateSchedule(rec); err != nil {
		return nil, fmt.Errorf("failed to update schedule record: %w", err)
	}

	loan, err := l.storage.GetLoan(rec.LoanID)
	if err != nil {
		return nil, fmt.Errorf("failed to load parent loan: %w", err)
	}
	loan.PaidAmount = loan.PaidAmount.Add(rec.Amount)
	loan.RemainingAmount = loan.RemainingAmount.Sub(rec.Amount)
	if loan.RemainingAmount.LessThanOrEqual(decimal.Zero) {
		loan.RemainingAmount = decimal.Zero
		loan.Status = models.LoanStatusPaid
	}
	loan.UpdatedAt = &now
	if err := l.storage.UpdateLoan(loan); err != nil {
		return nil, fmt.Errorf("failed to update loan totals: %w", err)
	}

	if method == "" {
		method = models.PaymentMethodCash
	}
	payment := &models.PaymentRecord{
		ID:          uuid.New(),
		LoanID:      rec.LoanID,
		ScheduleID:  rec.ID,
		Amount:      rec.Amount,
		PaymentDate: now,
		Method:      method,
		Note:        note,
		CreatedAt:   now,
	}
	// The audit entry is an optional side effect: a failed append must not
	// roll back the settled installment.
	if err := l.storage.CreatePayment(payment); err != nil {
		log.Printf("Failed to append payment history for schedule %s: %v", rec.ID, err)
	}

	return rec, nil
}

// EditScheduleAmount changes one installment's amount, re-splitting principal
// and interest at the record's original ratio. The principal component is
// rounded and interest takes the remainder so amount == principal + interest
// stays exact. The delta moves the parent loan's paid amount when the record
// was already settled, otherwise its remaining amount.
func (l *Ledger) EditScheduleAmount(scheduleID uuid.UUID, newAmount decimal.Decimal) (*models.ScheduleRecord, error) {
	if newAmount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: installment amount must be positive, got %s", ErrInvalidAmount, newAmount)
	}

	rec, err := l.storage.GetSchedule(scheduleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}

	oldAmount := rec.Amount
	var newPrincipal decimal.Decimal
	if oldAmount.IsPositive() {
		newPrincipal = newAmount.Mul(rec.Principal).Div(oldAmount).Round(0)
	} else {
		newPrincipal = newAmount
	}
	rec.Amount = newAmount
	rec.Principal = newPrincipal
	rec.Interest = newAmount.Sub(newPrincipal)
	if err := l.storage.UpdateSchedule(rec); err != nil {
		return nil, fmt.Errorf("failed to update schedule record: %w", err)
	}

	loan, err := l.storage.GetLoan(rec.LoanID)
	if err != nil {
		return nil, fmt.Errorf("failed to load parent loan: %w", err)
	}
	delta := newAmount.Sub(oldAmount)
	loan.TotalAmount = loan.TotalAmount.Add(delta)
	if rec.Paid {
		loan.PaidAmount = loan.PaidAmount.Add(delta)
	} else {
		loan.RemainingAmount = loan.RemainingAmount.Add(delta)
	}
	if loan.RemainingAmount.LessThanOrEqual(decimal.Zero) {
		loan.RemainingAmount = decimal.Zero
		loan.Status = models.LoanStatusPaid
	} else if loan.Status == models.LoanStatusPaid {
		loan.Status = models.LoanStatusActive
	}
	now := l.now()
	loan.UpdatedAt = &now
	if err := l.storage.UpdateLoan(loan); err != nil {
		return nil, fmt.Errorf("failed to update loan totals: %w", err)
	}

	return rec, nil
}

// RefreshOverdueStatuses walks active and overdue loans and reconciles their
// lifecycle status against the calendar: a loan with any past-due unpaid
// installment becomes overdue, and flips back to active once none remain.
func (l *Ledger) RefreshOverdueStatuses() error {
	active, err := l.storage.GetLoansByStatus(models.LoanStatusActive)
	if err != nil {
		return fmt.Errorf("failed to get active loans: %w", err)
	}
	overdue, err := l.storage.GetLoansByStatus(models.LoanStatusOverdue)
	if err != nil {
		return fmt.Errorf("failed to get overdue loans: %w", err)
	}
	loans := append(active, overdue...)

	today := l.now()
	for _, loan := range loans {
		records, err := l.storage.GetSchedulesForLoan(loan.ID)
		if err != nil {
			return fmt.Errorf("failed to get schedule for loan %s: %w", loan.ID, err)
		}
		anyOverdue := false
		for _, rec := range records {
			if Classify(rec, today) == models.ScheduleOverdue {
				anyOverdue = true
				break
			}
		}

		want := models.LoanStatusActive
		if anyOverdue {
			want = models.LoanStatusOverdue
		}
		if loan.Status == want {
			continue
		}
		loan.Status = want
		now := l.now()
		loan.UpdatedAt = &now
		if err := l.storage.UpdateLoan(loan); err != nil {
			return fmt.Errorf("failed to update loan %s status: %w", loan.ID, err)
		}
	}
	return nil
}
