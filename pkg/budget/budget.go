package budget

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finboard/finboard/pkg/models"
)

var (
	// ErrInvalidBudgetLimit is returned when a budget is created with a zero
	// or negative limit. Rejecting it here keeps the usage math free of
	// division-by-zero checks.
	ErrInvalidBudgetLimit = errors.New("invalid budget limit")
	// ErrDuplicateBudget is returned when a category already has a budget.
	ErrDuplicateBudget = errors.New("category already has a budget")
)

// Band is the severity classification of a budget's consumption.
type Band string

const (
	BandUnused  Band = "unused"
	BandSafe    Band = "safe"
	BandWarning Band = "warning"
	BandDanger  Band = "danger"
)

var hundred = decimal.NewFromInt(100)

// New validates the limit and builds a budget record for a category.
func New(categoryID uuid.UUID, limit decimal.Decimal, createdAt time.Time) (*models.Budget, error) {
	if limit.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: limit must be positive, got %s", ErrInvalidBudgetLimit, limit)
	}
	return &models.Budget{
		ID:         uuid.New(),
		CategoryID: categoryID,
		Limit:      limit,
		CreatedAt:  createdAt,
	}, nil
}

// UsageByCategory sums expense transactions dated inside the target month
// (YYYY-MM), grouped by category. Income and transfers do not count against
// a budget.
func UsageByCategory(txs []*models.Transaction, targetMonth string) map[uuid.UUID]decimal.Decimal {
	usage := make(map[uuid.UUID]decimal.Decimal)
	for _, tx := range txs {
		if tx.Type != models.TransactionTypeExpense {
			continue
		}
		if tx.Date.Format("2006-01") != targetMonth {
			continue
		}
		usage[tx.CategoryID] = usage[tx.CategoryID].Add(tx.Amount)
	}
	return usage
}

// UsagePercent is how much of the limit has been consumed, capped at 100.
// The limit is assumed positive; New rejects anything else at creation time.
func UsagePercent(limit, used decimal.Decimal) int {
	percent := used.Div(limit).Mul(hundred).Round(0).IntPart()
	if percent > 100 {
		percent = 100
	}
	if percent < 0 {
		percent = 0
	}
	return int(percent)
}

// Status maps consumption to a severity band: unused at exactly zero, safe
// below 70%, warning below 90%, danger at or above.
func Status(limit, used decimal.Decimal) Band {
	percent := UsagePercent(limit, used)
	switch {
	case percent == 0:
		return BandUnused
	case percent < 70:
		return BandSafe
	case percent < 90:
		return BandWarning
	default:
		return BandDanger
	}
}
