package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanStatus is the lifecycle state of a loan.
type LoanStatus string

const (
	LoanStatusActive  LoanStatus = "active"
	LoanStatusPaid    LoanStatus = "paid"
	LoanStatusOverdue LoanStatus = "overdue"
)

// LoanCategory classifies what the loan was taken for.
type LoanCategory string

const (
	LoanCategoryPersonal  LoanCategory = "personal"
	LoanCategoryMortgage  LoanCategory = "mortgage"
	LoanCategoryVehicle   LoanCategory = "vehicle"
	LoanCategoryEducation LoanCategory = "education"
	LoanCategoryOther     LoanCategory = "other"
)

type Loan struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	DueDay          int             `json:"due_day"` // Day of the month (1-31) each installment is due
	Status          LoanStatus      `json:"status"`
	TotalAmount     decimal.Decimal `json:"total_amount"` // Principal plus total flat interest
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         *time.Time      `json:"end_date,omitempty"`
	InterestRate    decimal.Decimal `json:"interest_rate"` // Annual rate in percent, zero for interest-free
	Category        LoanCategory    `json:"category"`
	Lender          string          `json:"lender,omitempty"`
	Note            string          `json:"note,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       *time.Time      `json:"updated_at,omitempty"`
}

// ScheduleStatus is the derived state of a single installment.
type ScheduleStatus string

const (
	SchedulePending ScheduleStatus = "pending"
	SchedulePaid    ScheduleStatus = "paid"
	ScheduleOverdue ScheduleStatus = "overdue"
)

// ScheduleRecord is one monthly installment of a loan.
// Amount is always exactly Principal + Interest.
type ScheduleRecord struct {
	ID        uuid.UUID       `json:"id"`
	LoanID    uuid.UUID       `json:"loan_id"`
	Month     string          `json:"month"` // Covered calendar month as YYYY-MM
	Amount    decimal.Decimal `json:"amount"`
	Principal decimal.Decimal `json:"principal"`
	Interest  decimal.Decimal `json:"interest"`
	DueDate   time.Time       `json:"due_date"`
	Paid      bool            `json:"paid"`
	PaidAt    *time.Time      `json:"paid_at,omitempty"`
	Status    ScheduleStatus  `json:"status"`
}

// PaymentMethod records how an installment was settled.
type PaymentMethod string

const (
	PaymentMethodCash      PaymentMethod = "cash"
	PaymentMethodTransfer  PaymentMethod = "transfer"
	PaymentMethodAutoDebit PaymentMethod = "auto-debit"
)

// PaymentRecord is an append-only audit entry written every time an
// installment is marked paid. Never edited or deleted.
type PaymentRecord struct {
	ID          uuid.UUID       `json:"id"`
	LoanID      uuid.UUID       `json:"loan_id"`
	ScheduleID  uuid.UUID       `json:"schedule_id"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"payment_date"`
	Method      PaymentMethod   `json:"method"`
	Note        string          `json:"note,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CategoryType distinguishes income from expense categories.
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

type Category struct {
	ID      uuid.UUID    `json:"id"`
	Name    string       `json:"name"`
	Type    CategoryType `json:"type"`
	Color   string       `json:"color"`
	Icon    string       `json:"icon"`
	TxCount int          `json:"tx_count"`
}

// Budget is a monthly spending cap tied one-to-one with an expense category.
type Budget struct {
	ID         uuid.UUID       `json:"id"`
	CategoryID uuid.UUID       `json:"category_id"`
	Limit      decimal.Decimal `json:"limit"`
	CreatedAt  time.Time       `json:"created_at"`
}

// TransactionType is the kind of money movement a transaction records.
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

type Transaction struct {
	ID         uuid.UUID       `json:"id"`
	WalletID   uuid.UUID       `json:"wallet_id"`
	CategoryID uuid.UUID       `json:"category_id"`
	Type       TransactionType `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	Date       time.Time       `json:"date"`
	Note       string          `json:"note,omitempty"`
	ToWalletID *uuid.UUID      `json:"to_wallet_id,omitempty"` // Transfers only
	Fee        decimal.Decimal `json:"fee"`                    // Transfers only, zero otherwise
	CreatedAt  time.Time       `json:"created_at"`
}

type Wallet struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}
