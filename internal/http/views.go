package http

import (
	"fmt"

	"cashflow/internal/core"
)

// View types carry pre-formatted strings so templates stay dumb.

type accountView struct {
	ID       int64
	Name     string
	Type     string
	Currency string
	Opening  string
	Balance  string
}

type transactionView struct {
	ID         int64
	Date       string
	Kind       string
	Account    string
	Amount     string
	Category   string
	Merchant   string
	Memo       string
	TransferTo string
	Voided     bool
}

type budgetView struct {
	ID       int64
	Year     int
	Month    int
	Category string
	Limit    string
}

type budgetProgressView struct {
	Category  string
	Limit     string
	Spent     string
	Remaining string
	Percent   int
	Over      bool
}

type monthView struct {
	Label   string
	Income  string
	Expense string
	Net     string
}

type categoryView struct {
	Name   string
	Amount string
}

type overviewView struct {
	Total         string
	Accounts      []accountView
	Months        []monthView
	TopCategories []categoryView
	From          string
	To            string
}

func newAccountView(a core.Account, balance core.Money) accountView {
	return accountView{
		ID:       a.ID,
		Name:     a.Name,
		Type:     string(a.Type),
		Currency: a.Currency,
		Opening:  core.FormatCents(a.Opening.Cents),
		Balance:  core.FormatCents(balance.Cents),
	}
}

func newOverviewView(ov core.Overview, rng core.DateRange) overviewView {
	v := overviewView{
		Total: core.FormatCents(ov.Total.Cents),
		From:  rng.From.String(),
		To:    rng.To.String(),
	}
	for _, ab := range ov.Accounts {
		v.Accounts = append(v.Accounts, newAccountView(ab.Account, ab.Balance))
	}
	for _, m := range ov.Months {
		v.Months = append(v.Months, monthView{
			Label:   fmt.Sprintf("%s %d", monthName(m.Month), m.Year),
			Income:  core.FormatCents(m.Income.Cents),
			Expense: core.FormatCents(m.Expense.Cents),
			Net:     core.FormatCents(m.Net().Cents),
		})
	}
	for _, c := range ov.TopCategories {
		v.TopCategories = append(v.TopCategories, categoryView{
			Name:   c.Name,
			Amount: core.FormatCents(c.Amount.Cents),
		})
	}
	return v
}

func newBudgetProgressView(p core.BudgetProgress) budgetProgressView {
	percent := 0
	if p.Budget.Limit.Cents > 0 {
		percent = int(p.Spent.Cents * 100 / p.Budget.Limit.Cents)
	}
	if percent > 100 {
		percent = 100
	}
	return budgetProgressView{
		Category:  p.Budget.Category,
		Limit:     core.FormatCents(p.Budget.Limit.Cents),
		Spent:     core.FormatCents(p.Spent.Cents),
		Remaining: core.FormatCents(p.Remaining.Cents),
		Percent:   percent,
		Over:      p.Remaining.Cents < 0,
	}
}

func newTransactionView(t core.Transaction, names map[int64]string) transactionView {
	v := transactionView{
		ID:       t.ID,
		Date:     t.BookedAt.String(),
		Kind:     string(t.Kind),
		Account:  names[t.AccountID],
		Amount:   core.FormatCents(t.Amount.Cents),
		Category: t.Category,
		Merchant: t.Merchant,
		Memo:     t.Memo,
		Voided:   t.Voided,
	}
	if t.TransferTo != nil {
		v.TransferTo = names[*t.TransferTo]
	}
	return v
}
