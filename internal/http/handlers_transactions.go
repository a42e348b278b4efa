package http

import (
	"net/http"
	"sync/atomic"

	"cashflow/internal/core"
	applog "cashflow/internal/log"
)

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderTransactionsPage(w, r)
	case http.MethodPost:
		s.handleCreateTransaction(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// transactionQueryFilter builds the listing filter from query
// parameters: kind, account, category, from, to, voided=1.
func transactionQueryFilter(r *http.Request) (core.TransactionFilter, error) {
	q := r.URL.Query()
	var f core.TransactionFilter

	if raw := sanitizeInput(q.Get("kind")); raw != "" {
		kind := core.TransactionKind(raw)
		if !kind.Valid() {
			return f, core.ErrInvalidKind
		}
		f.Kind = kind
	}
	f.AccountID = parseAccountID(q)
	f.Category = sanitizeInput(q.Get("category"))
	f.IncludeVoided = q.Get("voided") == "1"

	if raw := sanitizeInput(q.Get("from")); raw != "" {
		d, err := core.ParseDate(raw)
		if err != nil {
			return f, err
		}
		f.Range.From = d
	}
	if raw := sanitizeInput(q.Get("to")); raw != "" {
		d, err := core.ParseDate(raw)
		if err != nil {
			return f, err
		}
		f.Range.To = d
	}
	return f, nil
}

func (s *Server) renderTransactionsPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := transactionQueryFilter(r)
	if err != nil {
		status, msg := validationStatus(err)
		http.Error(w, msg, status)
		return
	}

	txs, err := s.txs.ListTransactions(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list transactions", applog.FieldError, err.Error())
		http.Error(w, "Failed to load transactions", http.StatusInternalServerError)
		return
	}

	names, accounts, err := s.listAccountNames(r)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list accounts", applog.FieldError, err.Error())
		http.Error(w, "Failed to load accounts", http.StatusInternalServerError)
		return
	}

	views := make([]transactionView, 0, len(txs))
	for _, t := range txs {
		views = append(views, newTransactionView(t, names))
	}

	s.render(w, r, "transactions.html", map[string]any{
		"Transactions":  views,
		"Accounts":      accounts,
		"Kinds":         []string{"EXPENSE", "INCOME", "TRANSFER"},
		"Filter":        r.URL.Query().Encode(),
		"IncludeVoided": filter.IncludeVoided,
	})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tx, err := parseTransactionForm(r)
	if err != nil {
		s.writeFragmentError(w, r, err)
		return
	}

	id, err := s.txs.CreateTransaction(ctx, tx)
	if err != nil {
		s.writeFragmentError(w, r, err)
		return
	}

	atomic.AddInt64(&s.metrics.totalTransactions, 1)
	s.logger.InfoContext(ctx, "Transaction created",
		"transaction_id", id, "kind", tx.Kind, "account_id", tx.AccountID,
		"amount_cents", tx.Amount.Cents)
	s.writeFragmentOK(w, "transaction-saved", "Transaction recorded.")
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()

	id, err := parseID(r, "id")
	if err != nil {
		s.writeFragmentError(w, r, err)
		return
	}
	tx, err := parseTransactionForm(r)
	if err != nil {
		s.writeFragmentError(w, r, err)
		return
	}
	tx.ID = id

	if err := s.txs.UpdateTransaction(ctx, tx); err != nil {
		s.writeFragmentError(w, r, err)
		return
	}

	s.logger.InfoContext(ctx, "Transaction updated", "transaction_id", id)
	s.writeFragmentOK(w, "transaction-saved", "Transaction updated.")
}

// handleVoidTransaction soft-deletes: the row stays for the record but
// drops out of balances and aggregates.
func (s *Server) handleVoidTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()

	id, err := parseID(r, "id")
	if err != nil {
		s.writeFragmentError(w, r, err)
		return
	}

	if err := s.txs.VoidTransaction(ctx, id); err != nil {
		s.writeFragmentError(w, r, err)
		return
	}

	s.logger.InfoContext(ctx, "Transaction voided", "transaction_id", id)
	s.writeFragmentOK(w, "transaction-saved", "Transaction voided.")
}
