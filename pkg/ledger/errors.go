package ledger

import "errors"

var (
	// ErrInvalidLoanTerms is returned when a loan is created with a
	// non-positive principal or term, or a due day outside 1-31.
	ErrInvalidLoanTerms = errors.New("invalid loan terms")
	// ErrInvalidAmount is returned when an edited installment amount is not
	// positive.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrLoanNotFound is returned when a loan id does not resolve.
	ErrLoanNotFound = errors.New("loan not found")
	// ErrScheduleNotFound is returned when a schedule record id does not
	// resolve.
	ErrScheduleNotFound = errors.New("schedule record not found")
	// ErrAlreadyPaid is returned when marking an installment that has
	// already been settled; without this guard the payment would be
	// double-counted against the loan.
	ErrAlreadyPaid = errors.New("schedule record already paid")
	// ErrTransactionNotFound is returned when a transaction id does not
	// resolve.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrWalletNotFound is returned when a wallet id does not resolve.
	ErrWalletNotFound = errors.New("wallet not found")
)
