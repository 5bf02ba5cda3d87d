package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/finboard/finboard/pkg/budget"
	"github.com/finboard/finboard/pkg/health"
	"github.com/finboard/finboard/pkg/ledger"
	"github.com/finboard/finboard/pkg/models"
	"github.com/finboard/finboard/pkg/money"
	"github.com/finboard/finboard/pkg/store"
)

// Server holds the ledger instance.
type Server struct {
	ledger  *ledger.Ledger
	storage store.Storage // Keep a reference to the storage to close it
}

func NewServer(s store.Storage) *Server {
	return &Server{
		ledger:  ledger.NewLedger(s),
		storage: s,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the domain error taxonomy to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrLoanNotFound),
		errors.Is(err, ledger.ErrScheduleNotFound),
		errors.Is(err, ledger.ErrTransactionNotFound),
		errors.Is(err, ledger.ErrWalletNotFound),
		errors.Is(err, store.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ledger.ErrInvalidLoanTerms),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, budget.ErrInvalidBudgetLimit):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ledger.ErrAlreadyPaid),
		errors.Is(err, budget.ErrDuplicateBudget):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func pathID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)["id"])
}

func (s *Server) createLoanHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string          `json:"name"`
		Principal  decimal.Decimal `json:"principal"`
		AnnualRate decimal.Decimal `json:"annual_rate"`
		TermMonths int             `json:"term_months"`
		StartDate  time.Time       `json:"start_date"`
		DueDay     int             `json:"due_day"`
		Category   string          `json:"category"`
		Lender     string          `json:"lender"`
		Note       string          `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	loan, schedule, err := s.ledger.CreateLoan(ledger.CreateLoanParams{
		Name:              req.Name,
		Principal:         req.Principal,
		AnnualRatePercent: req.AnnualRate,
		TermMonths:        req.TermMonths,
		StartDate:         req.StartDate,
		DueDay:            req.DueDay,
		Category:          models.LoanCategory(req.Category),
		Lender:            req.Lender,
		Note:              req.Note,
	})
	if err != nil {
		log.Printf("Error creating loan: %v", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"loan":     loan,
		"schedule": schedule,
	})
}

func (s *Server) listLoansHandler(w http.ResponseWriter, r *http.Request) {
	loans, err := s.ledger.GetAllLoans()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loans)
}

func (s *Server) getLoanHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid loan ID", http.StatusBadRequest)
		return
	}
	loan, err := s.ledger.GetLoan(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

func (s *Server) deleteLoanHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid loan ID", http.StatusBadRequest)
		return
	}
	if err := s.ledger.DeleteLoan(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getScheduleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid loan ID", http.StatusBadRequest)
		return
	}
	records, err := s.ledger.GetSchedule(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) loanSummaryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid loan ID", http.StatusBadRequest)
		return
	}
	summary, err := s.ledger.Summary(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) getPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid loan ID", http.StatusBadRequest)
		return
	}
	payments, err := s.ledger.GetPayments(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

func (s *Server) markPaidHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid schedule ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Method string `json:"method"`
		Note   string `json:"note"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	rec, err := s.ledger.MarkPaid(id, models.PaymentMethod(req.Method), req.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) editScheduleAmountHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid schedule ID", http.StatusBadRequest)
		return
	}

	// The amount arrives as the user typed it, grouping separators included.
	var req struct {
		Amount string `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	amount, err := money.Parse(req.Amount)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rec, err := s.ledger.EditScheduleAmount(id, amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) portfolioHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := s.ledger.Portfolio()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) createBudgetHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CategoryID uuid.UUID       `json:"category_id"`
		Limit      decimal.Decimal `json:"limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// One budget per category.
	if _, err := s.storage.GetBudgetByCategory(req.CategoryID); err == nil {
		writeError(w, budget.ErrDuplicateBudget)
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		writeError(w, err)
		return
	}

	b, err := budget.New(req.CategoryID, req.Limit, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.storage.CreateBudget(b); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) listBudgetsHandler(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.storage.GetAllBudgets()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (s *Server) deleteBudgetHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid budget ID", http.StatusBadRequest)
		return
	}
	if err := s.storage.DeleteBudget(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// budgetUsageHandler reports per-budget consumption for a month.
func (s *Server) budgetUsageHandler(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		month = time.Now().Format("2006-01")
	}

	budgets, err := s.storage.GetAllBudgets()
	if err != nil {
		writeError(w, err)
		return
	}
	txs, err := s.storage.GetTransactionsInMonth(month)
	if err != nil {
		writeError(w, err)
		return
	}
	usage := budget.UsageByCategory(txs, month)

	type budgetUsage struct {
		BudgetID   uuid.UUID       `json:"budget_id"`
		CategoryID uuid.UUID       `json:"category_id"`
		Limit      decimal.Decimal `json:"limit"`
		Used       decimal.Decimal `json:"used"`
		Percent    int             `json:"percent"`
		Status     budget.Band     `json:"status"`
	}
	report := make([]budgetUsage, 0, len(budgets))
	for _, b := range budgets {
		used := usage[b.CategoryID]
		report = append(report, budgetUsage{
			BudgetID:   b.ID,
			CategoryID: b.CategoryID,
			Limit:      b.Limit,
			Used:       used,
			Percent:    budget.UsagePercent(b.Limit, used),
			Status:     budget.Status(b.Limit, used),
		})
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) createTransactionHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WalletID   uuid.UUID       `json:"wallet_id"`
		CategoryID uuid.UUID       `json:"category_id"`
		Type       string          `json:"type"`
		Amount     decimal.Decimal `json:"amount"`
		Date       time.Time       `json:"date"`
		Note       string          `json:"note"`
		ToWalletID *uuid.UUID      `json:"to_wallet_id"`
		Fee        decimal.Decimal `json:"fee"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx, err := s.ledger.RecordTransaction(ledger.RecordTransactionParams{
		WalletID:   req.WalletID,
		CategoryID: req.CategoryID,
		Type:       models.TransactionType(req.Type),
		Amount:     req.Amount,
		Date:       req.Date,
		Note:       req.Note,
		ToWalletID: req.ToWalletID,
		Fee:        req.Fee,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) listTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	if month := r.URL.Query().Get("month"); month != "" {
		txs, err := s.storage.GetTransactionsInMonth(month)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, txs)
		return
	}
	txs, err := s.storage.GetAllTransactions()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) deleteTransactionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid transaction ID", http.StatusBadRequest)
		return
	}
	if err := s.ledger.DeleteTransaction(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) createCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Type  string `json:"type"`
		Color string `json:"color"`
		Icon  string `json:"icon"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	category := &models.Category{
		ID:    uuid.New(),
		Name:  req.Name,
		Type:  models.CategoryType(req.Type),
		Color: req.Color,
		Icon:  req.Icon,
	}
	if category.Type == "" {
		category.Type = models.CategoryTypeExpense
	}
	if err := s.storage.CreateCategory(category); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (s *Server) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := s.storage.GetAllCategories()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) createWalletHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string          `json:"name"`
		Balance decimal.Decimal `json:"balance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	wallet := &models.Wallet{
		ID:        uuid.New(),
		Name:      req.Name,
		Balance:   req.Balance,
		CreatedAt: time.Now(),
	}
	if err := s.storage.CreateWallet(wallet); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, wallet)
}

func (s *Server) listWalletsHandler(w http.ResponseWriter, r *http.Request) {
	wallets, err := s.storage.GetAllWallets()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wallets)
}

// healthScoreHandler assesses a month: income and expense totals come from
// transactions, the debt figure from installments due that month.
func (s *Server) healthScoreHandler(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		month = time.Now().Format("2006-01")
	}

	txs, err := s.storage.GetTransactionsInMonth(month)
	if err != nil {
		writeError(w, err)
		return
	}
	income := decimal.Zero
	expense := decimal.Zero
	for _, tx := range txs {
		switch tx.Type {
		case models.TransactionTypeIncome:
			income = income.Add(tx.Amount)
		case models.TransactionTypeExpense:
			expense = expense.Add(tx.Amount)
		}
	}

	debtDue, err := s.ledger.MonthlyDebt(month)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, health.Assess(income, expense, debtDue))
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/loans", s.listLoansHandler).Methods("GET")
	router.HandleFunc("/loans", s.createLoanHandler).Methods("POST")
	router.HandleFunc("/loans/{id}", s.getLoanHandler).Methods("GET")
	router.HandleFunc("/loans/{id}", s.deleteLoanHandler).Methods("DELETE")
	router.HandleFunc("/loans/{id}/schedule", s.getScheduleHandler).Methods("GET")
	router.HandleFunc("/loans/{id}/summary", s.loanSummaryHandler).Methods("GET")
	router.HandleFunc("/loans/{id}/payments", s.getPaymentsHandler).Methods("GET")
	router.HandleFunc("/schedules/{id}/pay", s.markPaidHandler).Methods("POST")
	router.HandleFunc("/schedules/{id}/amount", s.editScheduleAmountHandler).Methods("PUT")
	router.HandleFunc("/portfolio", s.portfolioHandler).Methods("GET")

	router.HandleFunc("/budgets", s.listBudgetsHandler).Methods("GET")
	router.HandleFunc("/budgets", s.createBudgetHandler).Methods("POST")
	router.HandleFunc("/budgets/usage", s.budgetUsageHandler).Methods("GET")
	router.HandleFunc("/budgets/{id}", s.deleteBudgetHandler).Methods("DELETE")

	router.HandleFunc("/transactions", s.listTransactionsHandler).Methods("GET")
	router.HandleFunc("/transactions", s.createTransactionHandler).Methods("POST")
	router.HandleFunc("/transactions/{id}", s.deleteTransactionHandler).Methods("DELETE")

	router.HandleFunc("/categories", s.listCategoriesHandler).Methods("GET")
	router.HandleFunc("/categories", s.createCategoryHandler).Methods("POST")
	router.HandleFunc("/wallets", s.listWalletsHandler).Methods("GET")
	router.HandleFunc("/wallets", s.createWalletHandler).Methods("POST")

	router.HandleFunc("/health-score", s.healthScoreHandler).Methods("GET")

	return router
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	sqliteStore, err := store.NewSQLiteStore(envOr("FINBOARD_DB", "finboard.db"))
	if err != nil {
		log.Fatalf("Failed to initialize SQLite store: %v", err)
	}
	defer sqliteStore.Close()

	server := NewServer(sqliteStore)
	router := server.routes()

	// Log every change delta the store emits.
	sub := sqliteStore.Subscribe("", func(ev store.Event) {
		log.Printf("Change: %s %s %s", ev.Collection, ev.Op, ev.ID)
	})
	defer sub.Cancel()

	// Periodically reconcile loan statuses against the calendar.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			log.Println("Refreshing overdue loan statuses...")
			if err := server.ledger.RefreshOverdueStatuses(); err != nil {
				log.Printf("Overdue status refresh failed: %v", err)
			}
		}
	}()

	addr := envOr("FINBOARD_ADDR", ":8080")
	log.Printf("Server starting on %s", addr)
	log.Fatal(http.ListenAndServe(addr, router))
}
