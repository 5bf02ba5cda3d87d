package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/finboard/finboard/pkg/models"
	"github.com/finboard/finboard/pkg/store"
)

func setupTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test_api.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	server := NewServer(s)
	return server, server.routes()
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func createLoanViaAPI(t *testing.T, router http.Handler) (models.Loan, []models.ScheduleRecord) {
	t.Helper()
	rr := doJSON(t, router, "POST", "/loans", map[string]interface{}{
		"name":        "Motorbike",
		"principal":   12000000,
		"annual_rate": 0,
		"term_months": 12,
		"start_date":  "2024-01-01T00:00:00Z",
		"due_day":     25,
		"category":    "vehicle",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d. Body: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Loan     models.Loan             `json:"loan"`
		Schedule []models.ScheduleRecord `json:"schedule"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return resp.Loan, resp.Schedule
}

func TestAPI_CreateLoanAndPayInstallment(t *testing.T) {
	_, router := setupTestServer(t)

	loan, schedule := createLoanViaAPI(t, router)
	if len(schedule) != 12 {
		t.Fatalf("Expected 12 schedule records, got %d", len(schedule))
	}
	if !loan.TotalAmount.Equal(decimal.NewFromInt(12_000_000)) {
		t.Errorf("Expected total 12000000, got %s", loan.TotalAmount)
	}

	// Pay the January installment.
	rr := doJSON(t, router, "POST", "/schedules/"+schedule[0].ID.String()+"/pay", map[string]interface{}{
		"method": "transfer",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, router, "GET", "/loans/"+loan.ID.String(), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	var fetched models.Loan
	json.Unmarshal(rr.Body.Bytes(), &fetched)
	if !fetched.PaidAmount.Equal(decimal.NewFromInt(1_000_000)) {
		t.Errorf("Expected paid amount 1000000, got %s", fetched.PaidAmount)
	}
	if !fetched.RemainingAmount.Equal(decimal.NewFromInt(11_000_000)) {
		t.Errorf("Expected remaining 11000000, got %s", fetched.RemainingAmount)
	}

	// Paying the same installment again must conflict, not double-count.
	rr = doJSON(t, router, "POST", "/schedules/"+schedule[0].ID.String()+"/pay", nil)
	if rr.Code != http.StatusConflict {
		t.Errorf("Expected status 409 on duplicate payment, got %d", rr.Code)
	}

	rr = doJSON(t, router, "GET", "/loans/"+loan.ID.String()+"/payments", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	var payments []models.PaymentRecord
	json.Unmarshal(rr.Body.Bytes(), &payments)
	if len(payments) != 1 {
		t.Errorf("Expected 1 payment history entry, got %d", len(payments))
	}
}

func TestAPI_EditScheduleAmountGroupedInput(t *testing.T) {
	_, router := setupTestServer(t)
	_, schedule := createLoanViaAPI(t, router)

	rr := doJSON(t, router, "PUT", "/schedules/"+schedule[0].ID.String()+"/amount", map[string]interface{}{
		"amount": "1.250.000",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", rr.Code, rr.Body.String())
	}

	var rec models.ScheduleRecord
	json.Unmarshal(rr.Body.Bytes(), &rec)
	if !rec.Amount.Equal(decimal.NewFromInt(1_250_000)) {
		t.Errorf("Expected amount 1250000, got %s", rec.Amount)
	}
	if !rec.Principal.Add(rec.Interest).Equal(rec.Amount) {
		t.Errorf("Split broken: %s + %s != %s", rec.Principal, rec.Interest, rec.Amount)
	}
}

func TestAPI_CreateLoanInvalidTerms(t *testing.T) {
	_, router := setupTestServer(t)

	rr := doJSON(t, router, "POST", "/loans", map[string]interface{}{
		"name":        "Bad",
		"principal":   0,
		"term_months": 12,
		"start_date":  "2024-01-01T00:00:00Z",
		"due_day":     25,
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}
}

func TestAPI_BudgetValidation(t *testing.T) {
	_, router := setupTestServer(t)

	// Zero limit is rejected at creation time.
	rr := doJSON(t, router, "POST", "/budgets", map[string]interface{}{
		"category_id": "7f8d9a74-6aeb-46b9-9f5a-cfca624fea85",
		"limit":       0,
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for zero limit, got %d. Body: %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, router, "POST", "/budgets", map[string]interface{}{
		"category_id": "7f8d9a74-6aeb-46b9-9f5a-cfca624fea85",
		"limit":       1000000,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d. Body: %s", rr.Code, rr.Body.String())
	}

	// One budget per category.
	rr = doJSON(t, router, "POST", "/budgets", map[string]interface{}{
		"category_id": "7f8d9a74-6aeb-46b9-9f5a-cfca624fea85",
		"limit":       2000000,
	})
	if rr.Code != http.StatusConflict {
		t.Errorf("Expected status 409 for duplicate budget, got %d", rr.Code)
	}
}

func TestAPI_HealthScore(t *testing.T) {
	_, router := setupTestServer(t)

	// A wallet plus income and expense in a fixed month.
	rr := doJSON(t, router, "POST", "/wallets", map[string]interface{}{
		"name":    "Main",
		"balance": 0,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rr.Code)
	}
	var wallet models.Wallet
	json.Unmarshal(rr.Body.Bytes(), &wallet)

	for _, tx := range []map[string]interface{}{
		{"wallet_id": wallet.ID, "category_id": "7f8d9a74-6aeb-46b9-9f5a-cfca624fea85", "type": "income", "amount": 10000000, "date": "2024-03-01T00:00:00Z"},
		{"wallet_id": wallet.ID, "category_id": "8a1d9a74-6aeb-46b9-9f5a-cfca624fea85", "type": "expense", "amount": 4500000, "date": "2024-03-15T00:00:00Z"},
	} {
		rr := doJSON(t, router, "POST", "/transactions", tx)
		if rr.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d. Body: %s", rr.Code, rr.Body.String())
		}
	}

	rr = doJSON(t, router, "GET", "/health-score?month=2024-03", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", rr.Code, rr.Body.String())
	}

	var report struct {
		Score int    `json:"score"`
		Label string `json:"label"`
	}
	json.Unmarshal(rr.Body.Bytes(), &report)
	// 45% expenses, 55% saved, no loans, strong positive cash flow.
	if report.Score != 100 {
		t.Errorf("Expected score 100, got %d", report.Score)
	}
	if report.Label != "Excellent" {
		t.Errorf("Expected label Excellent, got %s", report.Label)
	}
}

func TestAPI_DeleteLoanLeavesNoOrphans(t *testing.T) {
	server, router := setupTestServer(t)
	loan, schedule := createLoanViaAPI(t, router)

	rr := doJSON(t, router, "DELETE", "/loans/"+loan.ID.String(), nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", rr.Code)
	}

	records, err := server.storage.GetSchedulesForLoan(loan.ID)
	if err != nil {
		t.Fatalf("Failed to query schedule: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected zero orphaned schedule records, got %d", len(records))
	}
	if len(schedule) != 12 {
		t.Errorf("Expected the deleted loan to have had 12 records, got %d", len(schedule))
	}
}
