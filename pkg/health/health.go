// Package health derives a 0-100 financial health score from monthly ratios.
package health

import "github.com/shopspring/decimal"

// Labels for the fixed score bands.
const (
	LabelExcellent = "Excellent"
	LabelGood      = "Good"
	LabelFair      = "Fair"
	LabelNeedsWork = "Needs Improvement"
)

// Point ceilings per component.
const (
	expensePoints  = 30
	savingPoints   = 25
	debtPoints     = 30
	cashFlowPoints = 15
)

// Score allocates weighted points across four bands: expense ratio (up to 30),
// saving rate (up to 25), debt ratio (up to 30) and cash-flow sign (up to 15).
// Ratios are fractions of monthly income. The result is clamped to [0, 100].
func Score(expenseRatio, savingRate, debtRatio float64, cashFlow, income decimal.Decimal) int {
	points := 0

	switch {
	case expenseRatio <= 0.5:
		points += expensePoints
	case expenseRatio <= 0.6:
		points += 24
	case expenseRatio <= 0.7:
		points += 16
	case expenseRatio <= 0.8:
		points += 8
	}

	switch {
	case savingRate >= 0.2:
		points += savingPoints
	case savingRate >= 0.15:
		points += 20
	case savingRate >= 0.1:
		points += 14
	case savingRate >= 0.05:
		points += 7
	}

	switch {
	case debtRatio <= 0.2:
		points += debtPoints
	case debtRatio <= 0.3:
		points += 24
	case debtRatio <= 0.4:
		points += 16
	case debtRatio <= 0.5:
		points += 8
	}

	switch {
	case income.IsPositive() && cashFlow.Div(income).GreaterThan(decimal.NewFromFloat(0.1)):
		points += cashFlowPoints
	case cashFlow.IsPositive():
		points += 10
	case cashFlow.IsZero():
		points += 5
	}

	if points > 100 {
		points = 100
	}
	if points < 0 {
		points = 0
	}
	return points
}

// Label maps a score to its qualitative band.
func Label(score int) string {
	switch {
	case score >= 80:
		return LabelExcellent
	case score >= 65:
		return LabelGood
	case score >= 50:
		return LabelFair
	default:
		return LabelNeedsWork
	}
}

// Report is the assessed health of one month.
type Report struct {
	Score        int             `json:"score"`
	Label        string          `json:"label"`
	ExpenseRatio float64         `json:"expense_ratio"`
	SavingRate   float64         `json:"saving_rate"`
	DebtRatio    float64         `json:"debt_ratio"`
	CashFlow     decimal.Decimal `json:"cash_flow"`
	Income       decimal.Decimal `json:"income"`
	Expense      decimal.Decimal `json:"expense"`
}

// Assess derives the component ratios from monthly totals and scores them.
// With no income every ratio degenerates: expenses count fully against the
// score and saving is treated as zero.
func Assess(income, expense, debtDue decimal.Decimal) Report {
	cashFlow := income.Sub(expense)
	r := Report{
		CashFlow: cashFlow,
		Income:   income,
		Expense:  expense,
	}
	if income.IsPositive() {
		r.ExpenseRatio = expense.Div(income).InexactFloat64()
		r.SavingRate = cashFlow.Div(income).InexactFloat64()
		r.DebtRatio = debtDue.Div(income).InexactFloat64()
	} else {
		if expense.IsPositive() {
			r.ExpenseRatio = 1
		}
		if debtDue.IsPositive() {
			r.DebtRatio = 1
		}
	}
	r.Score = Score(r.ExpenseRatio, r.SavingRate, r.DebtRatio, cashFlow, income)
	r.Label = Label(r.Score)
	return r
}
