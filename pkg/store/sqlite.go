package store

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/finboard/finboard/pkg/models"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore manages the database connection and operations for SQLite.
// Decimal fields are stored as TEXT so no precision is lost.
type SQLiteStore struct {
	db   *sql.DB
	feed *Feed
}

// NewSQLiteStore creates a new SQLiteStore and initializes the database.
func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON;")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	_, err = db.Exec("PRAGMA journal_mode = WAL;")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	s := &SQLiteStore{db: db, feed: NewFeed()}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("could not initialize schema: %w", err)
	}
	log.Println("Database connection established and schema initialized.")
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS loans (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		due_day INTEGER NOT NULL,
		status TEXT NOT NULL,
		total_amount TEXT NOT NULL,
		paid_amount TEXT NOT NULL DEFAULT '0',
		remaining_amount TEXT NOT NULL,
		start_date DATETIME NOT NULL,
		end_date DATETIME,
		interest_rate TEXT NOT NULL DEFAULT '0',
		category TEXT NOT NULL DEFAULT 'other',
		lender TEXT NOT NULL DEFAULT '',
		note TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME
	);
	CREATE TABLE IF NOT EXISTS schedules (
		id TEXT PRIMARY KEY,
		loan_id TEXT NOT NULL,
		month TEXT NOT NULL,
		amount TEXT NOT NULL,
		principal TEXT NOT NULL,
		interest TEXT NOT NULL,
		due_date DATETIME NOT NULL,
		paid INTEGER NOT NULL DEFAULT 0,
		paid_at DATETIME,
		status TEXT NOT NULL DEFAULT 'pending',
		FOREIGN KEY(loan_id) REFERENCES loans(id)
	);
	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		loan_id TEXT NOT NULL,
		schedule_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		payment_date DATETIME NOT NULL,
		method TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		FOREIGN KEY(loan_id) REFERENCES loans(id)
	);
	CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		color TEXT NOT NULL DEFAULT '',
		icon TEXT NOT NULL DEFAULT '',
		tx_count INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS budgets (
		id TEXT PRIMARY KEY,
		category_id TEXT NOT NULL,
		limit_amount TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		wallet_id TEXT NOT NULL,
		category_id TEXT NOT NULL,
		type TEXT NOT NULL,
		amount TEXT NOT NULL,
		date DATETIME NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		to_wallet_id TEXT,
		fee TEXT NOT NULL DEFAULT '0',
		created_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS wallets (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		balance TEXT NOT NULL DEFAULT '0',
		created_at DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Subscribe registers a change-feed callback.
func (s *SQLiteStore) Subscribe(collection string, fn func(Event)) *Subscription {
	return s.feed.Subscribe(collection, fn)
}

// CreateLoan inserts the loan and its full schedule in one transaction, so a
// failure partway through leaves no partially-written loan behind.
func (s *SQLiteStore) CreateLoan(loan *models.Loan, schedule []*models.ScheduleRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO loans (id, name, due_day, status, total_amount, paid_amount, remaining_amount, start_date, end_date, interest_rate, category, lender, note, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		loan.ID.String(), loan.Name, loan.DueDay, string(loan.Status), loan.TotalAmount, loan.PaidAmount, loan.RemainingAmount, loan.StartDate, loan.EndDate, loan.InterestRate, string(loan.Category), loan.Lender, loan.Note, loan.CreatedAt, loan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create loan: %w", err)
	}

	for _, rec := range schedule {
		_, err = tx.Exec(
			`INSERT INTO schedules (id, loan_id, month, amount, principal, interest, due_date, paid, paid_at, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID.String(), rec.LoanID.String(), rec.Month, rec.Amount, rec.Principal, rec.Interest, rec.DueDate, rec.Paid, rec.PaidAt, string(rec.Status),
		)
		if err != nil {
			return fmt.Errorf("failed to create schedule record for %s: %w", rec.Month, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit loan creation: %w", err)
	}

	s.feed.Publish(Event{Collection: CollectionLoans, Op: OpCreate, ID: loan.ID})
	for _, rec := range schedule {
		s.feed.Publish(Event{Collection: CollectionSchedules, Op: OpCreate, ID: rec.ID})
	}
	return nil
}

const loanColumns = `id, name, due_day, status, total_amount, paid_amount, remaining_amount, start_date, end_date, interest_rate, category, lender, note, created_at, updated_at`

// GetLoan retrieves a loan by its ID.
func (s *SQLiteStore) GetLoan(id uuid.UUID) (*models.Loan, error) {
	row := s.db.QueryRow(`SELECT `+loanColumns+` FROM loans WHERE id = ?`, id.String())
	loan, err := scanLoan(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}
	return loan, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanLoan is the single deserialization point for loan rows; defaults for
// absent fields are applied here and nowhere else.
func scanLoan(row rowScanner) (*models.Loan, error) {
	var loan models.Loan
	var idStr, status, category string
	var endDate, updatedAt sql.NullTime
	err := row.Scan(&idStr, &loan.Name, &loan.DueDay, &status, &loan.TotalAmount, &loan.PaidAmount, &loan.RemainingAmount, &loan.StartDate, &endDate, &loan.InterestRate, &category, &loan.Lender, &loan.Note, &loan.CreatedAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	loan.ID = uuid.MustParse(idStr)
	loan.Status = models.LoanStatus(status)
	if loan.Status == "" {
		loan.Status = models.LoanStatusActive
	}
	loan.Category = models.LoanCategory(category)
	if loan.Category == "" {
		loan.Category = models.LoanCategoryOther
	}
	if endDate.Valid {
		loan.EndDate = &endDate.Time
	}
	if updatedAt.Valid {
		loan.UpdatedAt = &updatedAt.Time
	}
	return &loan, nil
}

// UpdateLoan updates an existing loan in the database.
func (s *SQLiteStore) UpdateLoan(loan *models.Loan) error {
	result, err := s.db.Exec(
		`UPDATE loans SET name = ?, due_day = ?, status = ?, total_amount = ?, paid_amount = ?, remaining_amount = ?, start_date = ?, end_date = ?, interest_rate = ?, category = ?, lender = ?, note = ?, updated_at = ? WHERE id = ?`,
		loan.Name, loan.DueDay, string(loan.Status), loan.TotalAmount, loan.PaidAmount, loan.RemainingAmount, loan.StartDate, loan.EndDate, loan.InterestRate, string(loan.Category), loan.Lender, loan.Note, loan.UpdatedAt, loan.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update loan: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	s.feed.Publish(Event{Collection: CollectionLoans, Op: OpUpdate, ID: loan.ID})
	return nil
}

// DeleteLoan removes a loan, its schedule records and its payment history
// within a single transaction.
func (s *SQLiteStore) DeleteLoan(id uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`DELETE FROM payments WHERE loan_id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete payment history: %w", err)
	}

	_, err = tx.Exec(`DELETE FROM schedules WHERE loan_id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete schedule records: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM loans WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete loan: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit loan deletion: %w", err)
	}
	s.feed.Publish(Event{Collection: CollectionLoans, Op: OpDelete, ID: id})
	return nil
}

// GetAllLoans retrieves all loans.
func (s *SQLiteStore) GetAllLoans() ([]*models.Loan, error) {
	rows, err := s.db.Query(`SELECT ` + loanColumns + ` FROM loans ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all loans: %w", err)
	}
	defer rows.Close()
	return collectLoans(rows)
}

// GetLoansByStatus retrieves loans with the given lifecycle status.
func (s *SQLiteStore) GetLoansByStatus(status models.LoanStatus) ([]*models.Loan, error) {
	rows, err := s.db.Query(`SELECT `+loanColumns+` FROM loans WHERE status = ?`, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to get loans by status: %w", err)
	}
	defer rows.Close()
	return collectLoans(rows)
}

func collectLoans(rows *sql.Rows) ([]*models.Loan, error) {
	var loans []*models.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan row: %w", err)
		}
		loans = append(loans, loan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return loans, nil
}

const scheduleColumns = `id, loan_id, month, amount, principal, interest, due_date, paid, paid_at, status`

// GetSchedule retrieves one schedule record by its ID.
func (s *SQLiteStore) GetSchedule(id uuid.UUID) (*models.ScheduleRecord, error) {
	row := s.db.QueryRow(`SELECT `+scheduleColumns+` FROM schedules WHERE id = ?`, id.String())
	rec, err := scanSchedule(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get schedule record: %w", err)
	}
	return rec, nil
}

func scanSchedule(row rowScanner) (*models.ScheduleRecord, error) {
	var rec models.ScheduleRecord
	var idStr, loanIDStr, status string
	var paidAt sql.NullTime
	err := row.Scan(&idStr, &loanIDStr, &rec.Month, &rec.Amount, &rec.Principal, &rec.Interest, &rec.DueDate, &rec.Paid, &paidAt, &status)
	if err != nil {
		return nil, err
	}
	rec.ID = uuid.MustParse(idStr)
	rec.LoanID = uuid.MustParse(loanIDStr)
	rec.Status = models.ScheduleStatus(status)
	if rec.Status == "" {
		rec.Status = models.SchedulePending
	}
	if paidAt.Valid {
		rec.PaidAt = &paidAt.Time
	}
	return &rec, nil
}

// GetSchedulesForLoan retrieves all schedule records for a loan, ordered by
// covered month.
func (s *SQLiteStore) GetSchedulesForLoan(loanID uuid.UUID) ([]*models.ScheduleRecord, error) {
	rows, err := s.db.Query(`SELECT `+scheduleColumns+` FROM schedules WHERE loan_id = ? ORDER BY month ASC`, loanID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule for loan %s: %w", loanID, err)
	}
	defer rows.Close()

	var records []*models.ScheduleRecord
	for rows.Next() {
		rec, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return records, nil
}

// UpdateSchedule updates an existing schedule record.
func (s *SQLiteStore) UpdateSchedule(rec *models.ScheduleRecord) error {
	result, err := s.db.Exec(
		`UPDATE schedules SET month = ?, amount = ?, principal = ?, interest = ?, due_date = ?, paid = ?, paid_at = ?, status = ? WHERE id = ?`,
		rec.Month, rec.Amount, rec.Principal, rec.Interest, rec.DueDate, rec.Paid, rec.PaidAt, string(rec.Status), rec.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update schedule record: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	s.feed.Publish(Event{Collection: CollectionSchedules, Op: OpUpdate, ID: rec.ID})
	return nil
}

// CreatePayment appends a payment history entry.
func (s *SQLiteStore) CreatePayment(p *models.PaymentRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO payments (id, loan_id, schedule_id, amount, payment_date, method, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID.String(), p.LoanID.String(), p.ScheduleID.String(), p.Amount, p.PaymentDate, string(p.Method), p.Note, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment record: %w", err)
	}
	s.feed.Publish(Event{Collection: CollectionPayments, Op: OpCreate, ID: p.ID})
	return nil
}

// GetPaymentsForLoan retrieves the payment history of a loan, oldest first.
func (s *SQLiteStore) GetPaymentsForLoan(loanID uuid.UUID) ([]*models.PaymentRecord, error) {
	rows, err := s.db.Query(`SELECT id, loan_id, schedule_id, amount, payment_date, method, note, created_at FROM payments WHERE loan_id = ? ORDER BY payment_date ASC`, loanID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get payments for loan %s: %w", loanID, err)
	}
	defer rows.Close()

	var payments []*models.PaymentRecord
	for rows.Next() {
		var p models.PaymentRecord
		var idStr, loanStr, schedStr, method string
		if err := rows.Scan(&idStr, &loanStr, &schedStr, &p.Amount, &p.PaymentDate, &method, &p.Note, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment row: %w", err)
		}
		p.ID = uuid.MustParse(idStr)
		p.LoanID = uuid.MustParse(loanStr)
		p.ScheduleID = uuid.MustParse(schedStr)
		p.Method = models.PaymentMethod(method)
		payments = append(payments, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return payments, nil
}

// CreateCategory inserts a new category.
func (s *SQLiteStore) CreateCategory(c *models.Category) error {
	_, err := s.db.Exec(
		`INSERT INTO categories (id, name, type, color, icon, tx_count) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID.String(), c.Name, string(c.Type), c.Color, c.Icon, c.TxCount,
	)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	s.feed.Publish(Event{Collection: CollectionCategories, Op: OpCreate, ID: c.ID})
	return nil
}

// GetCategory retrieves a category by its ID.
func (s *SQLiteStore) GetCategory(id uuid.UUID) (*models.Category, error) {
	var c models.Category
	var idStr, catType string
	row := s.db.QueryRow(`SELECT id, name, type, color, icon, tx_count FROM categories WHERE id = ?`, id.String())
	if err := row.Scan(&idStr, &c.Name, &catType, &c.Color, &c.Icon, &c.TxCount); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	c.ID = uuid.MustParse(idStr)
	c.Type = models.CategoryType(catType)
	if c.Type == "" {
		c.Type = models.CategoryTypeExpense
	}
	return &c, nil
}

// UpdateCategory updates an existing category.
func (s *SQLiteStore) UpdateCategory(c *models.Category) error {
	result, err := s.db.Exec(
		`UPDATE categories SET name = ?, type = ?, color = ?, icon = ?, tx_count = ? WHERE id = ?`,
		c.Name, string(c.Type), c.Color, c.Icon, c.TxCount, c.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	s.feed.Publish(Event{Collection: CollectionCategories, Op: OpUpdate, ID: c.ID})
	return nil
}

// GetAllCategories retrieves all categories.
func (s *SQLiteStore) GetAllCategories() ([]*models.Category, error) {
	rows, err := s.db.Query(`SELECT id, name, type, color, icon, tx_count FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		var c models.Category
		var idStr, catType string
		if err := rows.Scan(&idStr, &c.Name, &catType, &c.Color, &c.Icon, &c.TxCount); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		c.ID = uuid.MustParse(idStr)
		c.Type = models.CategoryType(catType)
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return categories, nil
}

// CreateBudget inserts a new budget.
func (s *SQLiteStore) CreateBudget(b *models.Budget) error {
	_, err := s.db.Exec(
		`INSERT INTO budgets (id, category_id, limit_amount, created_at) VALUES (?, ?, ?, ?)`,
		b.ID.String(), b.CategoryID.String(), b.Limit, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create budget: %w", err)
	}
	s.feed.Publish(Event{Collection: CollectionBudgets, Op: OpCreate, ID: b.ID})
	return nil
}

// GetBudgetByCategory retrieves the budget configured for a category.
func (s *SQLiteStore) GetBudgetByCategory(categoryID uuid.UUID) (*models.Budget, error) {
	var b models.Budget
	var idStr, catStr string
	row := s.db.QueryRow(`SELECT id, category_id, limit_amount, created_at FROM budgets WHERE category_id = ?`, categoryID.String())
	if err := row.Scan(&idStr, &catStr, &b.Limit, &b.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	b.ID = uuid.MustParse(idStr)
	b.CategoryID = uuid.MustParse(catStr)
	return &b, nil
}

// GetAllBudgets retrieves all budgets.
func (s *SQLiteStore) GetAllBudgets() ([]*models.Budget, error) {
	rows, err := s.db.Query(`SELECT id, category_id, limit_amount, created_at FROM budgets`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all budgets: %w", err)
	}
	defer rows.Close()

	var budgets []*models.Budget
	for rows.Next() {
		var b models.Budget
		var idStr, catStr string
		if err := rows.Scan(&idStr, &catStr, &b.Limit, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan budget row: %w", err)
		}
		b.ID = uuid.MustParse(idStr)
		b.CategoryID = uuid.MustParse(catStr)
		budgets = append(budgets, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return budgets, nil
}

// DeleteBudget removes a budget.
func (s *SQLiteStore) DeleteBudget(id uuid.UUID) error {
	result, err := s.db.Exec(`DELETE FROM budgets WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	s.feed.Publish(Event{Collection: CollectionBudgets, Op: OpDelete, ID: id})
	return nil
}

// CreateTransaction inserts a new transaction.
func (s *SQLiteStore) CreateTransaction(t *models.Transaction) error {
	var toWallet interface{}
	if t.ToWalletID != nil {
		toWallet = t.ToWalletID.String()
	}
	_, err := s.db.Exec(
		`INSERT INTO transactions (id, wallet_id, category_id, type, amount, date, note, to_wallet_id, fee, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID.String(), t.WalletID.String(), t.CategoryID.String(), string(t.Type), t.Amount, t.Date, t.Note, toWallet, t.Fee, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	s.feed.Publish(Event{Collection: CollectionTransactions, Op: OpCreate, ID: t.ID})
	return nil
}

const transactionColumns = `id, wallet_id, category_id, type, amount, date, note, to_wallet_id, fee, created_at`

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var t models.Transaction
	var idStr, walletStr, catStr, txType string
	var toWallet sql.NullString
	err := row.Scan(&idStr, &walletStr, &catStr, &txType, &t.Amount, &t.Date, &t.Note, &toWallet, &t.Fee, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	t.ID = uuid.MustParse(idStr)
	t.WalletID = uuid.MustParse(walletStr)
	t.CategoryID = uuid.MustParse(catStr)
	t.Type = models.TransactionType(txType)
	if t.Type == "" {
		t.Type = models.TransactionTypeExpense
	}
	if toWallet.Valid {
		id := uuid.MustParse(toWallet.String)
		t.ToWalletID = &id
	}
	return &t, nil
}

// GetTransaction retrieves a transaction by its ID.
func (s *SQLiteStore) GetTransaction(id uuid.UUID) (*models.Transaction, error) {
	row := s.db.QueryRow(`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id.String())
	t, err := scanTransaction(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

// GetAllTransactions retrieves all transactions, newest first.
func (s *SQLiteStore) GetAllTransactions() ([]*models.Transaction, error) {
	rows, err := s.db.Query(`SELECT ` + transactionColumns + ` FROM transactions ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all transactions: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// GetTransactionsInMonth retrieves transactions dated inside the given
// calendar month (YYYY-MM).
func (s *SQLiteStore) GetTransactionsInMonth(month string) ([]*models.Transaction, error) {
	rows, err := s.db.Query(`SELECT `+transactionColumns+` FROM transactions WHERE strftime('%Y-%m', date) = ? ORDER BY date ASC`, month)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions for month %s: %w", month, err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func collectTransactions(rows *sql.Rows) ([]*models.Transaction, error) {
	var txs []*models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return txs, nil
}

// DeleteTransaction removes a transaction.
func (s *SQLiteStore) DeleteTransaction(id uuid.UUID) error {
	result, err := s.db.Exec(`DELETE FROM transactions WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	s.feed.Publish(Event{Collection: CollectionTransactions, Op: OpDelete, ID: id})
	return nil
}

// CreateWallet inserts a new wallet.
func (s *SQLiteStore) CreateWallet(w *models.Wallet) error {
	_, err := s.db.Exec(
		`INSERT INTO wallets (id, name, balance, created_at) VALUES (?, ?, ?, ?)`,
		w.ID.String(), w.Name, w.Balance, w.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	s.feed.Publish(Event{Collection: CollectionWallets, Op: OpCreate, ID: w.ID})
	return nil
}

// GetWallet retrieves a wallet by its ID.
func (s *SQLiteStore) GetWallet(id uuid.UUID) (*models.Wallet, error) {
	var w models.Wallet
	var idStr string
	row := s.db.QueryRow(`SELECT id, name, balance, created_at FROM wallets WHERE id = ?`, id.String())
	if err := row.Scan(&idStr, &w.Name, &w.Balance, &w.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	w.ID = uuid.MustParse(idStr)
	return &w, nil
}

// UpdateWallet updates an existing wallet.
func (s *SQLiteStore) UpdateWallet(w *models.Wallet) error {
	result, err := s.db.Exec(
		`UPDATE wallets SET name = ?, balance = ? WHERE id = ?`,
		w.Name, w.Balance, w.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update wallet: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	s.feed.Publish(Event{Collection: CollectionWallets, Op: OpUpdate, ID: w.ID})
	return nil
}

// GetAllWallets retrieves all wallets.
func (s *SQLiteStore) GetAllWallets() ([]*models.Wallet, error) {
	rows, err := s.db.Query(`SELECT id, name, balance, created_at FROM wallets ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all wallets: %w", err)
	}
	defer rows.Close()

	var wallets []*models.Wallet
	for rows.Next() {
		var w models.Wallet
		var idStr string
		if err := rows.Scan(&idStr, &w.Name, &w.Balance, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wallet row: %w", err)
		}
		w.ID = uuid.MustParse(idStr)
		wallets = append(wallets, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return wallets, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
