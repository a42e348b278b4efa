package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"cashflow/internal/core"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustCreateAccount(t *testing.T, repo *Repository, name string, opening int64) int64 {
	t.Helper()
	id, err := repo.CreateAccount(context.Background(), core.Account{
		Name:     name,
		Type:     core.AccountBank,
		Currency: "USD",
		Opening:  core.Money{Cents: opening},
	})
	if err != nil {
		t.Fatalf("CreateAccount(%s) error = %v", name, err)
	}
	return id
}

func mustCreateTransaction(t *testing.T, repo *Repository, tx core.Transaction) int64 {
	t.Helper()
	id, err := repo.CreateTransaction(context.Background(), tx)
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	return id
}

func date(s string) core.Date {
	d, err := core.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRepository_AccountCRUD(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	id := mustCreateAccount(t, repo, "Checking", 10000)

	got, err := repo.GetAccount(ctx, id)
	if err != nil {
		t.Fatalf("GetAccount() error = %v", err)
	}
	if got.Name != "Checking" || got.Opening.Cents != 10000 {
		t.Errorf("GetAccount() = %+v, want Checking with 10000 cents", got)
	}

	got.Name = "Main checking"
	got.Type = core.AccountWallet
	if err := repo.UpdateAccount(ctx, got); err != nil {
		t.Fatalf("UpdateAccount() error = %v", err)
	}
	updated, _ := repo.GetAccount(ctx, id)
	if updated.Name != "Main checking" || updated.Type != core.AccountWallet {
		t.Errorf("UpdateAccount() not applied: %+v", updated)
	}

	if err := repo.DeleteAccount(ctx, id); err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}
	if _, err := repo.GetAccount(ctx, id); !errors.Is(err, core.ErrAccountNotFound) {
		t.Errorf("GetAccount() after delete error = %v, want ErrAccountNotFound", err)
	}

	if err := repo.UpdateAccount(ctx, updated); !errors.Is(err, core.ErrAccountNotFound) {
		t.Errorf("UpdateAccount() on missing account error = %v, want ErrAccountNotFound", err)
	}
}

func TestRepository_BalanceFormula(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	bank := mustCreateAccount(t, repo, "Bank", 10000)
	wallet := mustCreateAccount(t, repo, "Wallet", 0)

	mustCreateTransaction(t, repo, core.Transaction{
		AccountID: bank, Kind: core.KindIncome,
		Amount: core.Money{Cents: 5000}, Category: "Salary", BookedAt: date("2026-03-02"),
	})
	mustCreateTransaction(t, repo, core.Transaction{
		AccountID: bank, Kind: core.KindExpense,
		Amount: core.Money{Cents: 3000}, Category: "Food", BookedAt: date("2026-03-05"),
	})
	mustCreateTransaction(t, repo, core.Transaction{
		AccountID: bank, Kind: core.KindTransfer,
		Amount: core.Money{Cents: 2000}, BookedAt: date("2026-03-10"), TransferTo: &wallet,
	})

	balances, err := repo.AccountBalances(ctx, 0)
	if err != nil {
		t.Fatalf("AccountBalances() error = %v", err)
	}
	if len(balances) != 2 {
		t.Fatalf("AccountBalances() returned %d rows, want 2", len(balances))
	}

	// Bank: 100.00 + 50.00 - 30.00 - 20.00 = 100.00
	if balances[0].Balance.Cents != 10000 {
		t.Errorf("bank balance = %d, want 10000", balances[0].Balance.Cents)
	}
	// Wallet: 0 + incoming 20.00
	if balances[1].Balance.Cents != 2000 {
		t.Errorf("wallet balance = %d, want 2000", balances[1].Balance.Cents)
	}

	// A transfer never changes the combined total.
	total := balances[0].Balance.Cents + balances[1].Balance.Cents
	if total != 12000 {
		t.Errorf("combined balance = %d, want 12000", total)
	}
}

func TestRepository_VoidExcludesFromAggregates(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	bank := mustCreateAccount(t, repo, "Bank", 10000)
	txID := mustCreateTransaction(t, repo, core.Transaction{
		AccountID: bank, Kind: core.KindExpense,
		Amount: core.Money{Cents: 3000}, Category: "Food", BookedAt: date("2026-03-05"),
	})

	if err := repo.VoidTransaction(ctx, txID); err != nil {
		t.Fatalf("VoidTransaction() error = %v", err)
	}

	balances, err := repo.AccountBalances(ctx, bank)
	if err != nil {
		t.Fatalf("AccountBalances() error = %v", err)
	}
	if balances[0].Balance.Cents != 10000 {
		t.Errorf("balance after void = %d, want 10000", balances[0].Balance.Cents)
	}

	// Voiding twice reports not found: the row is no longer voidable.
	if err := repo.VoidTransaction(ctx, txID); !errors.Is(err, core.ErrTransactionNotFound) {
		t.Errorf("second VoidTransaction() error = %v, want ErrTransactionNotFound", err)
	}

	// Updates to voided rows are rejected the same way.
	tx, err := repo.GetTransaction(ctx, txID)
	if err != nil {
		t.Fatalf("GetTransaction() error = %v", err)
	}
	if !tx.Voided {
		t.Error("GetTransaction() Voided = false after void")
	}
	tx.Amount.Cents = 100
	if err := repo.UpdateTransaction(ctx, tx); !errors.Is(err, core.ErrTransactionNotFound) {
		t.Errorf("UpdateTransaction() on voided row error = %v, want ErrTransactionNotFound", err)
	}
}

func TestRepository_ListTransactionsFilter(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	bank := mustCreateAccount(t, repo, "Bank", 0)
	wallet := mustCreateAccount(t, repo, "Wallet", 0)

	mustCreateTransaction(t, repo, core.Transaction{
		AccountID: bank, Kind: core.KindExpense,
		Amount: core.Money{Cents: 1000}, Category: "Food", BookedAt: date("2026-01-15"),
	})
	mustCreateTransaction(t, repo, core.Transaction{
		AccountID: bank, Kind: core.KindIncome,
		Amount: core.Money{Cents: 2000}, Category: "Salary", BookedAt: date("2026-02-01"),
	})
	mustCreateTransaction(t, repo, core.Transaction{
		AccountID: wallet, Kind: core.KindExpense,
		Amount: core.Money{Cents: 500}, Category: "Food", BookedAt: date("2026-02-10"),
	})
	voided := mustCreateTransaction(t, repo, core.Transaction{
		AccountID: bank, Kind: core.KindExpense,
		Amount: core.Money{Cents: 900}, Category: "Food", BookedAt: date("2026-02-11"),
	})
	if err := repo.VoidTransaction(ctx, voided); err != nil {
		t.Fatalf("VoidTransaction() error = %v", err)
	}

	tests := []struct {
		name   string
		filter core.TransactionFilter
		want   int
	}{
		{"no filter excludes voided", core.TransactionFilter{}, 3},
		{"include voided", core.TransactionFilter{IncludeVoided: true}, 4},
		{"by kind", core.TransactionFilter{Kind: core.KindExpense}, 2},
		{"by account", core.TransactionFilter{AccountID: wallet}, 1},
		{"by category", core.TransactionFilter{Category: "Salary"}, 1},
		{
			"by range",
			core.TransactionFilter{Range: core.DateRange{From: date("2026-02-01"), To: date("2026-03-01")}},
			2,
		},
		{
			"range upper bound is exclusive",
			core.TransactionFilter{Range: core.DateRange{From: date("2026-01-01"), To: date("2026-02-01")}},
			1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs, err := repo.ListTransactions(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListTransactions() error = %v", err)
			}
			if len(txs) != tt.want {
				t.Errorf("ListTransactions() returned %d rows, want %d", len(txs), tt.want)
			}
		})
	}
}

func TestRepository_Overview(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	bank := mustCreateAccount(t, repo, "Bank", 10000)
	mustCreateTransaction(t, repo, core.Transaction{
		AccountID: bank, Kind: core.KindIncome,
		Amount: core.Money{Cents: 5000}, Category: "Salary", BookedAt: date("2026-03-02"),
	})
	mustCreateTransaction(t, repo, core.Transaction{
		AccountID: bank, Kind: core.KindExpense,
		Amount: core.Money{Cents: 3000}, Category: "Food", BookedAt: date("2026-03-05"),
	})

	rng := core.DateRange{From: date("2026-03-01"), To: date("2026-04-01")}
	ov, err := repo.Overview(ctx, rng, 0, 5)
	if err != nil {
		t.Fatalf("Overview() error = %v", err)
	}

	if ov.Total.Cents != 12000 {
		t.Errorf("Total = %d, want 12000", ov.Total.Cents)
	}
	if len(ov.Months) != 1 {
		t.Fatalf("Months = %d entries, want 1", len(ov.Months))
	}
	m := ov.Months[0]
	if m.Year != 2026 || m.Month != 3 {
		t.Errorf("month = %d-%d, want 2026-3", m.Year, m.Month)
	}
	if m.Income.Cents != 5000 || m.Expense.Cents != 3000 || m.Net().Cents != 2000 {
		t.Errorf("summary = income %d expense %d, want 5000/3000", m.Income.Cents, m.Expense.Cents)
	}
	if len(ov.TopCategories) != 1 || ov.TopCategories[0].Name != "Food" || ov.TopCategories[0].Amount.Cents != 3000 {
		t.Errorf("TopCategories = %+v, want [Food 3000]", ov.TopCategories)
	}
}

func TestRepository_TopCategoriesOrdering(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	bank := mustCreateAccount(t, repo, "Bank", 0)
	add := func(category string, cents int64) {
		mustCreateTransaction(t, repo, core.Transaction{
			AccountID: bank, Kind: core.KindExpense,
			Amount: core.Money{Cents: cents}, Category: category, BookedAt: date("2026-03-05"),
		})
	}
	add("Travel", 4000)
	add("Food", 2000)
	add("Clothes", 2000)
	add("", 1000)

	rng := core.DateRange{From: date("2026-03-01"), To: date("2026-04-01")}
	ov, err := repo.Overview(ctx, rng, 0, 3)
	if err != nil {
		t.Fatalf("Overview() error = %v", err)
	}

	// Ties break alphabetically; blank category groups as Uncategorized.
	want := []string{"Travel", "Clothes", "Food"}
	if len(ov.TopCategories) != len(want) {
		t.Fatalf("TopCategories = %d entries, want %d", len(ov.TopCategories), len(want))
	}
	for i, name := range want {
		if ov.TopCategories[i].Name != name {
			t.Errorf("TopCategories[%d] = %s, want %s", i, ov.TopCategories[i].Name, name)
		}
	}

	ov, err = repo.Overview(ctx, rng, 0, 10)
	if err != nil {
		t.Fatalf("Overview() error = %v", err)
	}
	if len(ov.TopCategories) != 4 || ov.TopCategories[3].Name != "Uncategorized" {
		t.Errorf("TopCategories with topN=10 = %+v, want Uncategorized last", ov.TopCategories)
	}
}

func TestRepository_Budgets(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	budget := core.Budget{Year: 2026, Month: 3, Category: "Food", Limit: core.Money{Cents: 30000}}
	id, err := repo.CreateBudget(ctx, budget)
	if err != nil {
		t.Fatalf("CreateBudget() error = %v", err)
	}

	if _, err := repo.CreateBudget(ctx, budget); !errors.Is(err, core.ErrBudgetExists) {
		t.Errorf("duplicate CreateBudget() error = %v, want ErrBudgetExists", err)
	}

	// Same category in another month is a different budget.
	other := budget
	other.Month = 4
	if _, err := repo.CreateBudget(ctx, other); err != nil {
		t.Errorf("CreateBudget() for other month error = %v", err)
	}

	bank := mustCreateAccount(t, repo, "Bank", 0)
	mustCreateTransaction(t, repo, core.Transaction{
		AccountID: bank, Kind: core.KindExpense,
		Amount: core.Money{Cents: 12000}, Category: "Food", BookedAt: date("2026-03-10"),
	})
	// Outside the month, must not count.
	mustCreateTransaction(t, repo, core.Transaction{
		AccountID: bank, Kind: core.KindExpense,
		Amount: core.Money{Cents: 5000}, Category: "Food", BookedAt: date("2026-04-01"),
	})

	progress, err := repo.BudgetProgress(ctx, 2026, 3)
	if err != nil {
		t.Fatalf("BudgetProgress() error = %v", err)
	}
	if len(progress) != 1 {
		t.Fatalf("BudgetProgress() = %d entries, want 1", len(progress))
	}
	p := progress[0]
	if p.Spent.Cents != 12000 || p.Remaining.Cents != 18000 {
		t.Errorf("progress = spent %d remaining %d, want 12000/18000", p.Spent.Cents, p.Remaining.Cents)
	}

	if err := repo.UpdateBudget(ctx, core.Budget{ID: id, Limit: core.Money{Cents: 10000}}); err != nil {
		t.Fatalf("UpdateBudget() error = %v", err)
	}
	progress, _ = repo.BudgetProgress(ctx, 2026, 3)
	if progress[0].Remaining.Cents != -2000 {
		t.Errorf("remaining after limit cut = %d, want -2000 (overspend allowed)", progress[0].Remaining.Cents)
	}

	if err := repo.DeleteBudget(ctx, id); err != nil {
		t.Fatalf("DeleteBudget() error = %v", err)
	}
	if err := repo.DeleteBudget(ctx, id); !errors.Is(err, core.ErrBudgetNotFound) {
		t.Errorf("DeleteBudget() twice error = %v, want ErrBudgetNotFound", err)
	}
}

func TestRepository_CountAccountTransactions(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	bank := mustCreateAccount(t, repo, "Bank", 0)
	wallet := mustCreateAccount(t, repo, "Wallet", 0)

	// Destination-side references count too.
	mustCreateTransaction(t, repo, core.Transaction{
		AccountID: bank, Kind: core.KindTransfer,
		Amount: core.Money{Cents: 1000}, BookedAt: date("2026-03-01"), TransferTo: &wallet,
	})
	// Voided rows still block deletion.
	voided := mustCreateTransaction(t, repo, core.Transaction{
		AccountID: wallet, Kind: core.KindExpense,
		Amount: core.Money{Cents: 200}, BookedAt: date("2026-03-02"),
	})
	if err := repo.VoidTransaction(ctx, voided); err != nil {
		t.Fatalf("VoidTransaction() error = %v", err)
	}

	n, err := repo.CountAccountTransactions(ctx, wallet)
	if err != nil {
		t.Fatalf("CountAccountTransactions() error = %v", err)
	}
	if n != 2 {
		t.Errorf("CountAccountTransactions(wallet) = %d, want 2", n)
	}
}
