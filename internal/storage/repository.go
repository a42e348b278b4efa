package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cashflow/internal/core"

	_ "modernc.org/sqlite"
)

// Repository is the SQLite-backed store for accounts, transactions and
// budgets. A single *sql.DB serializes writers at the file level; the
// application adds no locking of its own.
type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ---- accounts ----

func (r *Repository) CreateAccount(ctx context.Context, a core.Account) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (name, type, currency, opening_balance_cents) VALUES (?, ?, ?, ?)`,
		a.Name, string(a.Type), a.Currency, a.Opening.Cents)
	if err != nil {
		return 0, fmt.Errorf("insert account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("account insert id: %w", err)
	}

	slog.InfoContext(ctx, "Account saved",
		"id", id,
		"name", a.Name,
		"type", a.Type,
		"currency", a.Currency)
	return id, nil
}

func (r *Repository) GetAccount(ctx context.Context, id int64) (core.Account, error) {
	var a core.Account
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, type, currency, opening_balance_cents FROM accounts WHERE id = ?`, id).
		Scan(&a.ID, &a.Name, (*string)(&a.Type), &a.Currency, &a.Opening.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, core.ErrAccountNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account %d: %w", id, err)
	}
	return a, nil
}

func (r *Repository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, type, currency, opening_balance_cents FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		var a core.Account
		if err := rows.Scan(&a.ID, &a.Name, (*string)(&a.Type), &a.Currency, &a.Opening.Cents); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *Repository) UpdateAccount(ctx context.Context, a core.Account) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET name = ?, type = ?, currency = ?, opening_balance_cents = ? WHERE id = ?`,
		a.Name, string(a.Type), a.Currency, a.Opening.Cents, a.ID)
	if err != nil {
		return fmt.Errorf("update account %d: %w", a.ID, err)
	}
	return affectedOr(res, core.ErrAccountNotFound)
}

func (r *Repository) DeleteAccount(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete account %d: %w", id, err)
	}
	return affectedOr(res, core.ErrAccountNotFound)
}

// CountAccountTransactions counts rows referencing the account as
// owner or as transfer destination, voided included. The deletion
// policy treats voided history as a reason to keep the account.
func (r *Repository) CountAccountTransactions(ctx context.Context, id int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE account_id = ? OR transfer_account_id = ?`, id, id).
		Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count account transactions: %w", err)
	}
	return n, nil
}

// ---- transactions ----

func (r *Repository) CreateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (account_id, kind, amount_cents, category, merchant, memo, booked_at, transfer_account_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.AccountID, string(t.Kind), t.Amount.Cents,
		nullString(t.Category), nullString(t.Merchant), nullString(t.Memo),
		t.BookedAt.String(), nullInt64(t.TransferTo))
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("transaction insert id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"kind", t.Kind,
		"account_id", t.AccountID,
		"amount_cents", t.Amount.Cents,
		"booked_at", t.BookedAt.String())
	return id, nil
}

const txColumns = `id, account_id, kind, amount_cents, category, merchant, memo, booked_at, transfer_account_id, voided`

func (r *Repository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+txColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrTransactionNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return t, nil
}

func (r *Repository) ListTransactions(ctx context.Context, f core.TransactionFilter) ([]core.Transaction, error) {
	q := `SELECT ` + txColumns + ` FROM transactions WHERE 1=1`
	var args []any
	if !f.IncludeVoided {
		q += ` AND voided = 0`
	}
	if f.Kind != "" {
		q += ` AND kind = ?`
		args = append(args, string(f.Kind))
	}
	if f.AccountID != 0 {
		q += ` AND (account_id = ? OR transfer_account_id = ?)`
		args = append(args, f.AccountID, f.AccountID)
	}
	if f.Category != "" {
		q += ` AND category = ?`
		args = append(args, f.Category)
	}
	if !f.Range.From.IsZero() {
		q += ` AND booked_at >= ?`
		args = append(args, f.Range.From.String())
	}
	if !f.Range.To.IsZero() {
		q += ` AND booked_at < ?`
		args = append(args, f.Range.To.String())
	}
	q += ` ORDER BY booked_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (r *Repository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET account_id = ?, kind = ?, amount_cents = ?, category = ?, merchant = ?, memo = ?, booked_at = ?, transfer_account_id = ?
		 WHERE id = ? AND voided = 0`,
		t.AccountID, string(t.Kind), t.Amount.Cents,
		nullString(t.Category), nullString(t.Merchant), nullString(t.Memo),
		t.BookedAt.String(), nullInt64(t.TransferTo), t.ID)
	if err != nil {
		return fmt.Errorf("update transaction %d: %w", t.ID, err)
	}
	return affectedOr(res, core.ErrTransactionNotFound)
}

func (r *Repository) VoidTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET voided = 1, voided_at = datetime('now') WHERE id = ? AND voided = 0`, id)
	if err != nil {
		return fmt.Errorf("void transaction %d: %w", id, err)
	}
	if err := affectedOr(res, core.ErrTransactionNotFound); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Transaction voided", "id", id)
	return nil
}

// ---- budgets ----

func (r *Repository) CreateBudget(ctx context.Context, b core.Budget) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (year, month, category, limit_cents) VALUES (?, ?, ?, ?)`,
		b.Year, b.Month, b.Category, b.Limit.Cents)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return 0, core.ErrBudgetExists
		}
		return 0, fmt.Errorf("insert budget: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("budget insert id: %w", err)
	}
	return id, nil
}

func (r *Repository) ListBudgets(ctx context.Context, year, month int) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, year, month, category, limit_cents FROM budgets WHERE year = ? AND month = ? ORDER BY category`,
		year, month)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.ID, &b.Year, &b.Month, &b.Category, &b.Limit.Cents); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (r *Repository) UpdateBudget(ctx context.Context, b core.Budget) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE budgets SET limit_cents = ? WHERE id = ?`, b.Limit.Cents, b.ID)
	if err != nil {
		return fmt.Errorf("update budget %d: %w", b.ID, err)
	}
	return affectedOr(res, core.ErrBudgetNotFound)
}

func (r *Repository) DeleteBudget(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete budget %d: %w", id, err)
	}
	return affectedOr(res, core.ErrBudgetNotFound)
}

// ---- aggregation ----

// balanceQuery derives each account's balance in one pass: opening
// balance, plus signed non-voided movements on the account, plus
// incoming transfers.
const balanceQuery = `
SELECT a.id, a.name, a.type, a.currency, a.opening_balance_cents,
       a.opening_balance_cents
       + COALESCE((SELECT SUM(CASE t.kind WHEN 'INCOME' THEN t.amount_cents ELSE -t.amount_cents END)
                   FROM transactions t WHERE t.account_id = a.id AND t.voided = 0), 0)
       + COALESCE((SELECT SUM(t.amount_cents)
                   FROM transactions t WHERE t.transfer_account_id = a.id AND t.kind = 'TRANSFER' AND t.voided = 0), 0)
FROM accounts a`

// AccountBalances returns every account with its derived balance,
// ordered by id. When accountID is non-zero only that account is
// returned.
func (r *Repository) AccountBalances(ctx context.Context, accountID int64) ([]core.AccountBalance, error) {
	q := balanceQuery
	var args []any
	if accountID != 0 {
		q += ` WHERE a.id = ?`
		args = append(args, accountID)
	}
	q += ` ORDER BY a.id`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("account balances: %w", err)
	}
	defer rows.Close()

	var balances []core.AccountBalance
	for rows.Next() {
		var ab core.AccountBalance
		if err := rows.Scan(&ab.Account.ID, &ab.Account.Name, (*string)(&ab.Account.Type),
			&ab.Account.Currency, &ab.Account.Opening.Cents, &ab.Balance.Cents); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		balances = append(balances, ab)
	}
	return balances, rows.Err()
}

// Overview computes the dashboard aggregate for the given range. All
// numbers come straight from the transaction set on every call.
func (r *Repository) Overview(ctx context.Context, rng core.DateRange, accountID int64, topN int) (core.Overview, error) {
	var ov core.Overview

	balances, err := r.AccountBalances(ctx, accountID)
	if err != nil {
		return ov, err
	}
	ov.Accounts = balances
	for _, ab := range balances {
		ov.Total.Cents += ab.Balance.Cents
	}

	months, err := r.monthlySummaries(ctx, rng, accountID)
	if err != nil {
		return ov, err
	}
	ov.Months = months

	top, err := r.topCategories(ctx, rng, accountID, topN)
	if err != nil {
		return ov, err
	}
	ov.TopCategories = top

	return ov, nil
}

func (r *Repository) monthlySummaries(ctx context.Context, rng core.DateRange, accountID int64) ([]core.MonthlySummary, error) {
	q := `SELECT substr(booked_at, 1, 4), substr(booked_at, 6, 2),
	             SUM(CASE WHEN kind = 'INCOME' THEN amount_cents ELSE 0 END),
	             SUM(CASE WHEN kind = 'EXPENSE' THEN amount_cents ELSE 0 END)
	      FROM transactions
	      WHERE voided = 0 AND kind IN ('INCOME', 'EXPENSE') AND booked_at >= ? AND booked_at < ?`
	args := []any{rng.From.String(), rng.To.String()}
	if accountID != 0 {
		q += ` AND account_id = ?`
		args = append(args, accountID)
	}
	q += ` GROUP BY substr(booked_at, 1, 7) ORDER BY substr(booked_at, 1, 7)`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("monthly summaries: %w", err)
	}
	defer rows.Close()

	var months []core.MonthlySummary
	for rows.Next() {
		var m core.MonthlySummary
		if err := rows.Scan(&m.Year, &m.Month, &m.Income.Cents, &m.Expense.Cents); err != nil {
			return nil, fmt.Errorf("scan monthly summary: %w", err)
		}
		months = append(months, m)
	}
	return months, rows.Err()
}

func (r *Repository) topCategories(ctx context.Context, rng core.DateRange, accountID int64, topN int) ([]core.CategoryAmount, error) {
	// Stable ordering: total descending, then category name ascending.
	q := `SELECT COALESCE(NULLIF(category, ''), 'Uncategorized') AS cat, SUM(amount_cents) AS total
	      FROM transactions
	      WHERE kind = 'EXPENSE' AND voided = 0 AND booked_at >= ? AND booked_at < ?`
	args := []any{rng.From.String(), rng.To.String()}
	if accountID != 0 {
		q += ` AND account_id = ?`
		args = append(args, accountID)
	}
	q += ` GROUP BY cat ORDER BY total DESC, cat ASC LIMIT ?`
	args = append(args, topN)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("top categories: %w", err)
	}
	defer rows.Close()

	var cats []core.CategoryAmount
	for rows.Next() {
		var c core.CategoryAmount
		if err := rows.Scan(&c.Name, &c.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// BudgetProgress pairs every budget of the month with the non-voided
// expense total of its category.
func (r *Repository) BudgetProgress(ctx context.Context, year, month int) ([]core.BudgetProgress, error) {
	from, to := core.MonthRange(year, month)
	rows, err := r.db.QueryContext(ctx,
		`SELECT b.id, b.year, b.month, b.category, b.limit_cents,
		        COALESCE((SELECT SUM(t.amount_cents) FROM transactions t
		                  WHERE t.kind = 'EXPENSE' AND t.voided = 0 AND t.category = b.category
		                    AND t.booked_at >= ? AND t.booked_at < ?), 0)
		 FROM budgets b
		 WHERE b.year = ? AND b.month = ?
		 ORDER BY b.category`,
		from.String(), to.String(), year, month)
	if err != nil {
		return nil, fmt.Errorf("budget progress: %w", err)
	}
	defer rows.Close()

	var progress []core.BudgetProgress
	for rows.Next() {
		var p core.BudgetProgress
		if err := rows.Scan(&p.Budget.ID, &p.Budget.Year, &p.Budget.Month, &p.Budget.Category,
			&p.Budget.Limit.Cents, &p.Spent.Cents); err != nil {
			return nil, fmt.Errorf("scan budget progress: %w", err)
		}
		p.Remaining.Cents = p.Budget.Limit.Cents - p.Spent.Cents
		progress = append(progress, p)
	}
	return progress, rows.Err()
}

// ---- helpers ----

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t        core.Transaction
		category sql.NullString
		merchant sql.NullString
		memo     sql.NullString
		transfer sql.NullInt64
		booked   string
		voided   int64
	)
	err := row.Scan(&t.ID, &t.AccountID, (*string)(&t.Kind), &t.Amount.Cents,
		&category, &merchant, &memo, &booked, &transfer, &voided)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Category = category.String
	t.Merchant = merchant.String
	t.Memo = memo.String
	t.Voided = voided != 0
	if transfer.Valid {
		id := transfer.Int64
		t.TransferTo = &id
	}
	d, err := core.ParseDate(booked)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse booked_at %q: %w", booked, err)
	}
	t.BookedAt = d
	return t, nil
}

func affectedOr(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}
