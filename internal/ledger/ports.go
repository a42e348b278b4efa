// Package ledger defines the narrow store interfaces the HTTP layer
// depends on. The concrete implementations live in internal/services
// (write paths with referential policy) and internal/storage.
package ledger

import (
	"context"

	"cashflow/internal/core"
)

// AccountStore manages money containers.
type AccountStore interface {
	CreateAccount(ctx context.Context, a core.Account) (int64, error)
	GetAccount(ctx context.Context, id int64) (core.Account, error)
	ListAccounts(ctx context.Context) ([]core.Account, error)
	UpdateAccount(ctx context.Context, a core.Account) error
	// DeleteAccount rejects with core.ErrAccountInUse when any
	// transaction references the account.
	DeleteAccount(ctx context.Context, id int64) error
}

// TransactionStore manages dated money movements.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, t core.Transaction) (int64, error)
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	ListTransactions(ctx context.Context, f core.TransactionFilter) ([]core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) error
	// VoidTransaction marks a transaction as voided so balances and
	// aggregates no longer include it.
	VoidTransaction(ctx context.Context, id int64) error
}

// BudgetStore manages advisory per-category monthly limits.
type BudgetStore interface {
	CreateBudget(ctx context.Context, b core.Budget) (int64, error)
	ListBudgets(ctx context.Context, year, month int) ([]core.Budget, error)
	UpdateBudget(ctx context.Context, b core.Budget) error
	DeleteBudget(ctx context.Context, id int64) error
}

// DashboardReader computes the aggregate views. Results are always
// recomputed from the transaction set; there is no cache to refresh.
type DashboardReader interface {
	Overview(ctx context.Context, r core.DateRange, accountID int64, topN int) (core.Overview, error)
	AccountBalances(ctx context.Context, accountID int64) ([]core.AccountBalance, error)
	BudgetProgress(ctx context.Context, year, month int) ([]core.BudgetProgress, error)
}
