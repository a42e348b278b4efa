package core

// AccountBalance is an account together with its derived balance:
// opening balance plus the signed sum of non-voided transactions.
type AccountBalance struct {
	Account Account
	Balance Money
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// MonthlySummary aggregates income and expense for one year+month.
type MonthlySummary struct {
	Year    int
	Month   int // 1-12
	Income  Money
	Expense Money
}

// Net returns income minus expense.
func (m MonthlySummary) Net() Money {
	return Money{Cents: m.Income.Cents - m.Expense.Cents}
}

// BudgetProgress compares a budget against actual spend in its month.
// Advisory only: nothing is enforced when Remaining goes negative.
type BudgetProgress struct {
	Budget    Budget
	Spent     Money
	Remaining Money
}

// Overview is the dashboard aggregate, recomputed per request.
type Overview struct {
	Total         Money
	Accounts      []AccountBalance
	Months        []MonthlySummary
	TopCategories []CategoryAmount
}

// DateRange is a half-open interval [From, To).
type DateRange struct {
	From Date
	To   Date
}

// CurrentMonth returns the range covering the month of d.
func CurrentMonth(d Date) DateRange {
	from, to := MonthRange(d.Year(), int(d.Month()))
	return DateRange{From: from, To: to}
}

// TransactionFilter narrows transaction listings and CSV exports.
// Zero values mean "no constraint".
type TransactionFilter struct {
	Kind          TransactionKind
	AccountID     int64
	Category      string
	Range         DateRange
	IncludeVoided bool
}
