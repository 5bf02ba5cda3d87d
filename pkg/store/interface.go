package store

import (
	"errors"

	"github.com/google/uuid"

	"github.com/finboard/finboard/pkg/models"
)

// ErrNotFound is returned when a record id does not resolve.
var ErrNotFound = errors.New("record not found")

// Collection names used by the change feed.
const (
	CollectionLoans        = "loans"
	CollectionSchedules    = "schedules"
	CollectionPayments     = "payments"
	CollectionCategories   = "categories"
	CollectionBudgets      = "budgets"
	CollectionTransactions = "transactions"
	CollectionWallets      = "wallets"
)

// Storage defines the persistence operations the core depends on.
type Storage interface {
	// CreateLoan persists the loan together with its full installment
	// schedule as a single atomic write.
	CreateLoan(loan *models.Loan, schedule []*models.ScheduleRecord) error
	GetLoan(id uuid.UUID) (*models.Loan, error)
	UpdateLoan(loan *models.Loan) error
	// DeleteLoan cascades: payment history and schedule records are removed
	// before the loan itself, all in one transaction.
	DeleteLoan(id uuid.UUID) error
	GetAllLoans() ([]*models.Loan, error)
	GetLoansByStatus(status models.LoanStatus) ([]*models.Loan, error)

	GetSchedule(id uuid.UUID) (*models.ScheduleRecord, error)
	GetSchedulesForLoan(loanID uuid.UUID) ([]*models.ScheduleRecord, error)
	UpdateSchedule(record *models.ScheduleRecord) error

	CreatePayment(payment *models.PaymentRecord) error
	GetPaymentsForLoan(loanID uuid.UUID) ([]*models.PaymentRecord, error)

	CreateCategory(category *models.Category) error
	GetCategory(id uuid.UUID) (*models.Category, error)
	UpdateCategory(category *models.Category) error
	GetAllCategories() ([]*models.Category, error)

	CreateBudget(budget *models.Budget) error
	GetBudgetByCategory(categoryID uuid.UUID) (*models.Budget, error)
	GetAllBudgets() ([]*models.Budget, error)
	DeleteBudget(id uuid.UUID) error

	CreateTransaction(tx *models.Transaction) error
	GetTransaction(id uuid.UUID) (*models.Transaction, error)
	GetAllTransactions() ([]*models.Transaction, error)
	// GetTransactionsInMonth returns transactions dated inside the given
	// calendar month (YYYY-MM).
	GetTransactionsInMonth(month string) ([]*models.Transaction, error)
	DeleteTransaction(id uuid.UUID) error

	CreateWallet(wallet *models.Wallet) error
	GetWallet(id uuid.UUID) (*models.Wallet, error)
	UpdateWallet(wallet *models.Wallet) error
	GetAllWallets() ([]*models.Wallet, error)

	// Subscribe registers a callback for change deltas on a collection
	// (empty string for all collections).
	Subscribe(collection string, fn func(Event)) *Subscription

	Close() error
}
