package http

import (
	"net/http"

	"cashflow/internal/core"
	applog "cashflow/internal/log"
)

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderAccountsPage(w, r)
	case http.MethodPost:
		s.handleCreateAccount(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) renderAccountsPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	balances, err := s.dash.AccountBalances(ctx, 0)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load account balances", applog.FieldError, err.Error())
		http.Error(w, "Failed to load accounts", http.StatusInternalServerError)
		return
	}

	var views []accountView
	for _, ab := range balances {
		views = append(views, newAccountView(ab.Account, ab.Balance))
	}

	s.render(w, r, "accounts.html", map[string]any{
		"Accounts":     views,
		"AccountTypes": []string{"BANK", "WALLET", "STASH", "CREDIT", "OTHER"},
	})
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	account, err := parseAccountForm(r)
	if err != nil {
		s.writeFragmentError(w, r, err)
		return
	}

	id, err := s.accounts.CreateAccount(ctx, account)
	if err != nil {
		s.writeFragmentError(w, r, err)
		return
	}

	s.logger.InfoContext(ctx, "Account created",
		"account_id", id, "name", account.Name, "type", account.Type)
	s.writeFragmentOK(w, "account-saved", "Account created.")
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
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
	account, err := parseAccountForm(r)
	if err != nil {
		s.writeFragmentError(w, r, err)
		return
	}
	account.ID = id

	if err := s.accounts.UpdateAccount(ctx, account); err != nil {
		s.writeFragmentError(w, r, err)
		return
	}

	s.logger.InfoContext(ctx, "Account updated", "account_id", id)
	s.writeFragmentOK(w, "account-saved", "Account updated.")
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
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

	if err := s.accounts.DeleteAccount(ctx, id); err != nil {
		s.writeFragmentError(w, r, err)
		return
	}

	s.logger.InfoContext(ctx, "Account deleted", "account_id", id)
	s.writeFragmentOK(w, "account-saved", "Account deleted.")
}

// listAccountNames builds the id-to-name map used when rendering
// transactions.
func (s *Server) listAccountNames(r *http.Request) (map[int64]string, []core.Account, error) {
	accounts, err := s.accounts.ListAccounts(r.Context())
	if err != nil {
		return nil, nil, err
	}
	names := make(map[int64]string, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.Name
	}
	return names, accounts, nil
}
