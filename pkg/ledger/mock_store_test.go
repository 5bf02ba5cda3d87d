package ledger

import (
	"sort"

	"github.com/google/uuid"

	"github.com/finboard/finboard/pkg/models"
	"github.com/finboard/finboard/pkg/store"
)

// MockStore is a simple in-memory implementation of the Storage interface for
// testing.
type MockStore struct {
	*store.Feed
	loans        map[uuid.UUID]*models.Loan
	schedules    map[uuid.UUID]*models.ScheduleRecord
	payments     []*models.PaymentRecord
	categories   map[uuid.UUID]*models.Category
	budgets      map[uuid.UUID]*models.Budget
	transactions map[uuid.UUID]*models.Transaction
	wallets      map[uuid.UUID]*models.Wallet
}

func NewMockStore() *MockStore {
	return &MockStore{
		Feed:         store.NewFeed(),
		loans:        make(map[uuid.UUID]*models.Loan),
		schedules:    make(map[uuid.UUID]*models.ScheduleRecord),
		payments:     []*models.PaymentRecord{},
		categories:   make(map[uuid.UUID]*models.Category),
		budgets:      make(map[uuid.UUID]*models.Budget),
		transactions: make(map[uuid.UUID]*models.Transaction),
		wallets:      make(map[uuid.UUID]*models.Wallet),
	}
}

func (m *MockStore) CreateLoan(loan *models.Loan, schedule []*models.ScheduleRecord) error {
	m.loans[loan.ID] = loan
	for _, rec := range schedule {
		m.schedules[rec.ID] = rec
	}
	return nil
}

func (m *MockStore) GetLoan(id uuid.UUID) (*models.Loan, error) {
	loan, ok := m.loans[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return loan, nil
}

func (m *MockStore) UpdateLoan(loan *models.Loan) error {
	if _, ok := m.loans[loan.ID]; !ok {
		return store.ErrNotFound
	}
	m.loans[loan.ID] = loan
	return nil
}

func (m *MockStore) DeleteLoan(id uuid.UUID) error {
	if _, ok := m.loans[id]; !ok {
		return store.ErrNotFound
	}
	for recID, rec := range m.schedules {
		if rec.LoanID == id {
			delete(m.schedules, recID)
		}
	}
	kept := m.payments[:0]
	for _, p := range m.payments {
		if p.LoanID != id {
			kept = append(kept, p)
		}
	}
	m.payments = kept
	delete(m.loans, id)
	return nil
}

func (m *MockStore) GetAllLoans() ([]*models.Loan, error) {
	loans := []*models.Loan{}
	for _, l := range m.loans {
		loans = append(loans, l)
	}
	sort.Slice(loans, func(i, j int) bool { return loans[i].CreatedAt.Before(loans[j].CreatedAt) })
	return loans, nil
}

func (m *MockStore) GetLoansByStatus(status models.LoanStatus) ([]*models.Loan, error) {
	loans := []*models.Loan{}
	for _, l := range m.loans {
		if l.Status == status {
			loans = append(loans, l)
		}
	}
	return loans, nil
}

func (m *MockStore) GetSchedule(id uuid.UUID) (*models.ScheduleRecord, error) {
	rec, ok := m.schedules[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return rec, nil
}

func (m *MockStore) GetSchedulesForLoan(loanID uuid.UUID) ([]*models.ScheduleRecord, error) {
	records := []*models.ScheduleRecord{}
	for _, rec := range m.schedules {
		if rec.LoanID == loanID {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Month < records[j].Month })
	return records, nil
}

func (m *MockStore) UpdateSchedule(rec *models.ScheduleRecord) error {
	if _, ok := m.schedules[rec.ID]; !ok {
		return store.ErrNotFound
	}
	m.schedules[rec.ID] = rec
	return nil
}

func (m *MockStore) CreatePayment(p *models.PaymentRecord) error {
	m.payments = append(m.payments, p)
	return nil
}

func (m *MockStore) GetPaymentsForLoan(loanID uuid.UUID) ([]*models.PaymentRecord, error) {
	payments := []*models.PaymentRecord{}
	for _, p := range m.payments {
		if p.LoanID == loanID {
			payments = append(payments, p)
		}
	}
	return payments, nil
}

func (m *MockStore) CreateCategory(c *models.Category) error {
	m.categories[c.ID] = c
	return nil
}

func (m *MockStore) GetCategory(id uuid.UUID) (*models.Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return c, nil
}

func (m *MockStore) UpdateCategory(c *models.Category) error {
	if _, ok := m.categories[c.ID]; !ok {
		return store.ErrNotFound
	}
	m.categories[c.ID] = c
	return nil
}

func (m *MockStore) GetAllCategories() ([]*models.Category, error) {
	categories := []*models.Category{}
	for _, c := range m.categories {
		categories = append(categories, c)
	}
	return categories, nil
}

func (m *MockStore) CreateBudget(b *models.Budget) error {
	m.budgets[b.ID] = b
	return nil
}

func (m *MockStore) GetBudgetByCategory(categoryID uuid.UUID) (*models.Budget, error) {
	for _, b := range m.budgets {
		if b.CategoryID == categoryID {
			return b, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *MockStore) GetAllBudgets() ([]*models.Budget, error) {
	budgets := []*models.Budget{}
	for _, b := range m.budgets {
		budgets = append(budgets, b)
	}
	return budgets, nil
}

func (m *MockStore) DeleteBudget(id uuid.UUID) error {
	if _, ok := m.budgets[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.budgets, id)
	return nil
}

func (m *MockStore) CreateTransaction(t *models.Transaction) error {
	m.transactions[t.ID] = t
	return nil
}

func (m *MockStore) GetTransaction(id uuid.UUID) (*models.Transaction, error) {
	t, ok := m.transactions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return t, nil
}

func (m *MockStore) GetAllTransactions() ([]*models.Transaction, error) {
	txs := []*models.Transaction{}
	for _, t := range m.transactions {
		txs = append(txs, t)
	}
	return txs, nil
}

func (m *MockStore) GetTransactionsInMonth(month string) ([]*models.Transaction, error) {
	txs := []*models.Transaction{}
	for _, t := range m.transactions {
		if t.Date.Format("2006-01") == month {
			txs = append(txs, t)
		}
	}
	return txs, nil
}

func (m *MockStore) DeleteTransaction(id uuid.UUID) error {
	if _, ok := m.transactions[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.transactions, id)
	return nil
}

func (m *MockStore) CreateWallet(w *models.Wallet) error {
	m.wallets[w.ID] = w
	return nil
}

func (m *MockStore) GetWallet(id uuid.UUID) (*models.Wallet, error) {
	w, ok := m.wallets[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return w, nil
}

func (m *MockStore) UpdateWallet(w *models.Wallet) error {
	if _, ok := m.wallets[w.ID]; !ok {
		return store.ErrNotFound
	}
	m.wallets[w.ID] = w
	return nil
}

func (m *MockStore) GetAllWallets() ([]*models.Wallet, error) {
	wallets := []*models.Wallet{}
	for _, w := range m.wallets {
		wallets = append(wallets, w)
	}
	return wallets, nil
}

func (m *MockStore) Close() error {
	return nil
}

var _ store.Storage = (*MockStore)(nil)
