package budget

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finboard/finboard/pkg/models"
)

func tx(categoryID uuid.UUID, txType models.TransactionType, amount int64, date time.Time) *models.Transaction {
	return &models.Transaction{
		ID:         uuid.New(),
		WalletID:   uuid.New(),
		CategoryID: categoryID,
		Type:       txType,
		Amount:     decimal.NewFromInt(amount),
		Date:       date,
	}
}

func TestNewRejectsInvalidLimit(t *testing.T) {
	for _, limit := range []int64{0, -1000} {
		_, err := New(uuid.New(), decimal.NewFromInt(limit), time.Now())
		if !errors.Is(err, ErrInvalidBudgetLimit) {
			t.Errorf("Limit %d: expected ErrInvalidBudgetLimit, got %v", limit, err)
		}
	}

	b, err := New(uuid.New(), decimal.NewFromInt(1_000_000), time.Now())
	if err != nil {
		t.Fatalf("Valid limit rejected: %v", err)
	}
	if !b.Limit.Equal(decimal.NewFromInt(1_000_000)) {
		t.Errorf("Expected limit 1000000, got %s", b.Limit)
	}
}

func TestUsageByCategory(t *testing.T) {
	food := uuid.New()
	transport := uuid.New()
	march := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	april := time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC)

	txs := []*models.Transaction{
		tx(food, models.TransactionTypeExpense, 150_000, march),
		tx(food, models.TransactionTypeExpense, 50_000, march),
		tx(transport, models.TransactionTypeExpense, 30_000, march),
		// Wrong month and non-expense types must not count.
		tx(food, models.TransactionTypeExpense, 999_000, april),
		tx(food, models.TransactionTypeIncome, 500_000, march),
		tx(food, models.TransactionTypeTransfer, 500_000, march),
	}

	usage := UsageByCategory(txs, "2024-03")

	if !usage[food].Equal(decimal.NewFromInt(200_000)) {
		t.Errorf("Expected food usage 200000, got %s", usage[food])
	}
	if !usage[transport].Equal(decimal.NewFromInt(30_000)) {
		t.Errorf("Expected transport usage 30000, got %s", usage[transport])
	}
	if len(usage) != 2 {
		t.Errorf("Expected 2 categories, got %d", len(usage))
	}
}

func TestStatusBands(t *testing.T) {
	limit := decimal.NewFromInt(1_000_000)

	cases := []struct {
		used int64
		want Band
	}{
		{0, BandUnused},
		{100_000, BandSafe},
		{690_000, BandSafe},
		{700_000, BandWarning},
		{850_000, BandWarning},
		{900_000, BandDanger},
		{950_000, BandDanger},
		{1_200_000, BandDanger},
	}

	for _, tc := range cases {
		if got := Status(limit, decimal.NewFromInt(tc.used)); got != tc.want {
			t.Errorf("Used %d of %s: expected %s, got %s", tc.used, limit, tc.want, got)
		}
	}
}

// Increasing usage against a fixed limit never lowers the severity.
func TestStatusMonotonic(t *testing.T) {
	limit := decimal.NewFromInt(1_000_000)
	rank := map[Band]int{BandUnused: 0, BandSafe: 1, BandWarning: 2, BandDanger: 3}

	prev := -1
	for used := int64(0); used <= 1_500_000; used += 10_000 {
		band := Status(limit, decimal.NewFromInt(used))
		if rank[band] < prev {
			t.Fatalf("Severity dropped from %d to %d at used=%d", prev, rank[band], used)
		}
		prev = rank[band]
	}
}

func TestUsagePercentCapped(t *testing.T) {
	limit := decimal.NewFromInt(1_000_000)

	if got := UsagePercent(limit, decimal.NewFromInt(2_500_000)); got != 100 {
		t.Errorf("Expected percent capped at 100, got %d", got)
	}
	if got := UsagePercent(limit, decimal.NewFromInt(950_000)); got != 95 {
		t.Errorf("Expected 95 percent, got %d", got)
	}
	if got := UsagePercent(limit, decimal.Zero); got != 0 {
		t.Errorf("Expected 0 percent, got %d", got)
	}
}
