// Package services holds the write-path orchestration between the HTTP
// handlers and the repository: domain validation plus the referential
// rules that need more than one table to check.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"cashflow/internal/core"
	"cashflow/internal/storage"
)

// Ledger wraps the repository with validation and referential policy.
// It implements ledger.AccountStore, ledger.TransactionStore and
// ledger.BudgetStore.
type Ledger struct {
	storage *storage.Repository
}

func NewLedger(storage *storage.Repository) *Ledger {
	return &Ledger{storage: storage}
}

// ---- accounts ----

func (s *Ledger) CreateAccount(ctx context.Context, a core.Account) (int64, error) {
	if a.Currency == "" {
		a.Currency = "USD"
	}
	if err := a.Validate(); err != nil {
		return 0, err
	}
	id, err := s.storage.CreateAccount(ctx, a)
	if err != nil {
		return 0, fmt.Errorf("create account: %w", err)
	}
	return id, nil
}

func (s *Ledger) GetAccount(ctx context.Context, id int64) (core.Account, error) {
	return s.storage.GetAccount(ctx, id)
}

func (s *Ledger) ListAccounts(ctx context.Context) ([]core.Account, error) {
	return s.storage.ListAccounts(ctx)
}

func (s *Ledger) UpdateAccount(ctx context.Context, a core.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if err := s.storage.UpdateAccount(ctx, a); err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return nil
}

// DeleteAccount applies the documented policy: accounts referenced by
// any transaction, voided included, are rejected rather than cascaded.
func (s *Ledger) DeleteAccount(ctx context.Context, id int64) error {
	n, err := s.storage.CountAccountTransactions(ctx, id)
	if err != nil {
		return fmt.Errorf("check account references: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Account deletion rejected", "id", id, "transactions", n)
		return core.ErrAccountInUse
	}
	if err := s.storage.DeleteAccount(ctx, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

// ---- transactions ----

func (s *Ledger) CreateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	if err := s.checkTransaction(ctx, t); err != nil {
		return 0, err
	}
	id, err := s.storage.CreateTransaction(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}
	return id, nil
}

func (s *Ledger) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	return s.storage.GetTransaction(ctx, id)
}

func (s *Ledger) ListTransactions(ctx context.Context, f core.TransactionFilter) ([]core.Transaction, error) {
	return s.storage.ListTransactions(ctx, f)
}

func (s *Ledger) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	if err := s.checkTransaction(ctx, t); err != nil {
		return err
	}
	if err := s.storage.UpdateTransaction(ctx, t); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return nil
}

func (s *Ledger) VoidTransaction(ctx context.Context, id int64) error {
	return s.storage.VoidTransaction(ctx, id)
}

// checkTransaction runs domain validation and confirms the referenced
// accounts exist before anything is written.
func (s *Ledger) checkTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if _, err := s.storage.GetAccount(ctx, t.AccountID); err != nil {
		if err == core.ErrAccountNotFound {
			return core.ErrUnknownAccount
		}
		return fmt.Errorf("check account: %w", err)
	}
	if t.TransferTo != nil {
		if _, err := s.storage.GetAccount(ctx, *t.TransferTo); err != nil {
			if err == core.ErrAccountNotFound {
				return core.ErrUnknownAccount
			}
			return fmt.Errorf("check destination account: %w", err)
		}
	}
	return nil
}

// ---- budgets ----

func (s *Ledger) CreateBudget(ctx context.Context, b core.Budget) (int64, error) {
	if err := b.Validate(); err != nil {
		return 0, err
	}
	id, err := s.storage.CreateBudget(ctx, b)
	if err != nil {
		if err == core.ErrBudgetExists {
			return 0, err
		}
		return 0, fmt.Errorf("create budget: %w", err)
	}
	return id, nil
}

func (s *Ledger) ListBudgets(ctx context.Context, year, month int) ([]core.Budget, error) {
	return s.storage.ListBudgets(ctx, year, month)
}

func (s *Ledger) UpdateBudget(ctx context.Context, b core.Budget) error {
	if err := b.Limit.Validate(); err != nil {
		return err
	}
	if err := s.storage.UpdateBudget(ctx, b); err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	return nil
}

func (s *Ledger) DeleteBudget(ctx context.Context, id int64) error {
	return s.storage.DeleteBudget(ctx, id)
}

func (s *Ledger) Close() error {
	if s.storage != nil {
		return s.storage.Close()
	}
	return nil
}
