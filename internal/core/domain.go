package core

import (
	"errors"
	"strings"
	"time"
)

const (
	AccountBank   AccountType = "BANK"
	AccountWallet AccountType = "WALLET"
	AccountStash  AccountType = "STASH"
	AccountCredit AccountType = "CREDIT"
	AccountOther  AccountType = "OTHER"
)

const (
	KindExpense  TransactionKind = "EXPENSE"
	KindIncome   TransactionKind = "INCOME"
	KindTransfer TransactionKind = "TRANSFER"
)

type (
	AccountType     string
	TransactionKind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Account struct {
		ID       int64
		Name     string
		Type     AccountType
		Currency string // free-text label, never converted
		Opening  Money  // signed; CREDIT accounts may start below zero
	}

	Transaction struct {
		ID        int64
		AccountID int64
		Kind      TransactionKind
		Amount    Money // always positive; Kind decides the sign
		Category  string
		Merchant  string
		Memo      string
		BookedAt  Date
		// TransferTo is the destination account for TRANSFER rows
		// and nil for everything else.
		TransferTo *int64
		Voided     bool
	}

	Budget struct {
		ID       int64
		Year     int
		Month    int // 1-12
		Category string
		Limit    Money
	}
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidMonth        = errors.New("invalid month")
	ErrEmptyName           = errors.New("empty name")
	ErrEmptyCategory       = errors.New("empty category")
	ErrInvalidAccountType  = errors.New("invalid account type")
	ErrInvalidKind         = errors.New("invalid transaction kind")
	ErrUnknownAccount      = errors.New("unknown account")
	ErrAccountInUse        = errors.New("account has transactions")
	ErrMissingTransferTo   = errors.New("transfer requires a destination account")
	ErrUnexpectedTransfer  = errors.New("destination account only allowed for transfers")
	ErrSameAccountTransfer = errors.New("transfer source and destination must differ")
	ErrBudgetExists        = errors.New("budget already exists for category and month")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrBudgetNotFound      = errors.New("budget not found")
)

// NewDate creates a Date at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current date at UTC midnight.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(s), time.UTC)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// String renders the date in the form persisted to SQLite. The ISO
// layout keeps lexicographic and chronological order identical, which
// the range queries rely on.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// MonthRange returns the half-open interval [first day of month, first
// day of the next month).
func MonthRange(year, month int) (Date, Date) {
	start := NewDate(year, month, 1)
	if month == 12 {
		return start, NewDate(year+1, 1, 1)
	}
	return start, NewDate(year, month+1, 1)
}

func (t AccountType) Valid() bool {
	switch t {
	case AccountBank, AccountWallet, AccountStash, AccountCredit, AccountOther:
		return true
	}
	return false
}

func (k TransactionKind) Valid() bool {
	switch k {
	case KindExpense, KindIncome, KindTransfer:
		return true
	}
	return false
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (a Account) Validate() error {
	if len(strings.TrimSpace(a.Name)) == 0 {
		return ErrEmptyName
	}
	if len(a.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	if !a.Type.Valid() {
		return ErrInvalidAccountType
	}
	if len(a.Currency) > 10 {
		return errors.New("currency label too long (max 10 characters)")
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.AccountID <= 0 {
		return ErrUnknownAccount
	}
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.BookedAt.Validate(); err != nil {
		return err
	}
	if len(t.Memo) > 200 {
		return errors.New("memo too long (max 200 characters)")
	}
	switch t.Kind {
	case KindTransfer:
		if t.TransferTo == nil {
			return ErrMissingTransferTo
		}
		if *t.TransferTo == t.AccountID {
			return ErrSameAccountTransfer
		}
	default:
		if t.TransferTo != nil {
			return ErrUnexpectedTransfer
		}
	}
	return nil
}

// Signed returns the amount with the sign it carries for the owning
// account: INCOME adds, EXPENSE and outgoing TRANSFER subtract.
func (t Transaction) Signed() int64 {
	if t.Kind == KindIncome {
		return t.Amount.Cents
	}
	return -t.Amount.Cents
}

func (b Budget) Validate() error {
	if b.Month < 1 || b.Month > 12 {
		return ErrInvalidMonth
	}
	if b.Year < 1970 || b.Year > 9999 {
		return errors.New("invalid year")
	}
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	return b.Limit.Validate()
}
