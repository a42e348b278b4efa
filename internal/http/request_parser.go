package http

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"cashflow/internal/core"
)

var errMissingID = errors.New("missing or invalid id")

func parseID(r *http.Request, field string) (int64, error) {
	raw := sanitizeInput(r.FormValue(field))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errMissingID
	}
	return id, nil
}

func parseAccountForm(r *http.Request) (core.Account, error) {
	var a core.Account
	a.Name = sanitizeInput(r.FormValue("name"))
	a.Type = core.AccountType(sanitizeInput(r.FormValue("type")))
	a.Currency = sanitizeInput(r.FormValue("currency"))

	opening, err := core.ParseSignedDecimalToCents(r.FormValue("opening"))
	if err != nil {
		return a, err
	}
	a.Opening = core.Money{Cents: opening}

	return a, a.Validate()
}

func parseTransactionForm(r *http.Request) (core.Transaction, error) {
	var t core.Transaction

	accountID, err := strconv.ParseInt(sanitizeInput(r.FormValue("account_id")), 10, 64)
	if err != nil {
		return t, core.ErrUnknownAccount
	}
	t.AccountID = accountID
	t.Kind = core.TransactionKind(sanitizeInput(r.FormValue("kind")))
	t.Category = sanitizeInput(r.FormValue("category"))
	t.Merchant = sanitizeInput(r.FormValue("merchant"))
	t.Memo = sanitizeInput(r.FormValue("memo"))

	cents, err := core.ParseDecimalToCents(r.FormValue("amount"))
	if err != nil {
		return t, err
	}
	t.Amount = core.Money{Cents: cents}

	bookedAt := sanitizeInput(r.FormValue("booked_at"))
	if bookedAt == "" {
		t.BookedAt = core.Today()
	} else {
		d, err := core.ParseDate(bookedAt)
		if err != nil {
			return t, err
		}
		t.BookedAt = d
	}

	if t.Kind == core.KindTransfer {
		dest, err := strconv.ParseInt(sanitizeInput(r.FormValue("transfer_to")), 10, 64)
		if err != nil {
			return t, core.ErrMissingTransferTo
		}
		t.TransferTo = &dest
	}

	return t, t.Validate()
}

func parseBudgetForm(r *http.Request) (core.Budget, error) {
	var b core.Budget

	b.Year, _ = strconv.Atoi(sanitizeInput(r.FormValue("year")))
	b.Month, _ = strconv.Atoi(sanitizeInput(r.FormValue("month")))
	b.Category = sanitizeInput(r.FormValue("category"))

	cents, err := core.ParseDecimalToCents(r.FormValue("limit"))
	if err != nil {
		return b, err
	}
	b.Limit = core.Money{Cents: cents}

	return b, b.Validate()
}

// parseDateRange reads optional from/to query parameters. Missing
// bounds default to the current month.
func parseDateRange(q url.Values) (core.DateRange, error) {
	var rng core.DateRange

	if raw := sanitizeInput(q.Get("from")); raw != "" {
		d, err := core.ParseDate(raw)
		if err != nil {
			return rng, err
		}
		rng.From = d
	}
	if raw := sanitizeInput(q.Get("to")); raw != "" {
		d, err := core.ParseDate(raw)
		if err != nil {
			return rng, err
		}
		rng.To = d
	}

	month := core.CurrentMonth(core.Today())
	if rng.From.IsZero() {
		rng.From = month.From
	}
	if rng.To.IsZero() {
		rng.To = month.To
	}
	return rng, nil
}

// parseYearMonth reads year/month query parameters, defaulting to the
// current month.
func parseYearMonth(q url.Values) (int, int, error) {
	today := core.Today()
	year, month := today.Year(), int(today.Month())

	if raw := sanitizeInput(q.Get("year")); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 1970 || y > 9999 {
			return 0, 0, core.ErrInvalidDate
		}
		year = y
	}
	if raw := sanitizeInput(q.Get("month")); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil || m < 1 || m > 12 {
			return 0, 0, core.ErrInvalidMonth
		}
		month = m
	}
	return year, month, nil
}

func parseAccountID(q url.Values) int64 {
	id, err := strconv.ParseInt(sanitizeInput(q.Get("account")), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// monthName avoids pulling time formatting into templates.
func monthName(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return time.Month(m).String()
}
