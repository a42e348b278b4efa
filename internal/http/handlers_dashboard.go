package http

import (
	"net/http"

	applog "cashflow/internal/log"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()

	rng, err := parseDateRange(r.URL.Query())
	if err != nil {
		status, msg := validationStatus(err)
		http.Error(w, msg, status)
		return
	}
	accountID := parseAccountID(r.URL.Query())

	ov, err := s.dash.Overview(ctx, rng, accountID, s.topN)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to compute overview", applog.FieldError, err.Error())
		http.Error(w, "Failed to load dashboard", http.StatusInternalServerError)
		return
	}

	// Budget progress tracks the month the range starts in.
	year, month := rng.From.Year(), int(rng.From.Month())
	progress, err := s.dash.BudgetProgress(ctx, year, month)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to compute budget progress", applog.FieldError, err.Error())
		http.Error(w, "Failed to load dashboard", http.StatusInternalServerError)
		return
	}

	progressViews := make([]budgetProgressView, 0, len(progress))
	for _, p := range progress {
		progressViews = append(progressViews, newBudgetProgressView(p))
	}

	accounts, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list accounts", applog.FieldError, err.Error())
		http.Error(w, "Failed to load dashboard", http.StatusInternalServerError)
		return
	}

	s.render(w, r, "dashboard.html", map[string]any{
		"Overview":   newOverviewView(ov, rng),
		"Progress":   progressViews,
		"Accounts":   accounts,
		"SelectedID": accountID,
		"Year":       year,
		"Month":      month,
		"MonthName":  monthName(month),
		"TopN":       s.topN,
	})
}

// handleOverviewPartial serves the overview fragment HTMX swaps in
// after mutations or filter changes.
func (s *Server) handleOverviewPartial(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()

	rng, err := parseDateRange(r.URL.Query())
	if err != nil {
		s.writeFragmentError(w, r, err)
		return
	}
	accountID := parseAccountID(r.URL.Query())

	ov, err := s.dash.Overview(ctx, rng, accountID, s.topN)
	if err != nil {
		s.writeFragmentError(w, r, err)
		return
	}

	s.render(w, r, "overview.html", newOverviewView(ov, rng))
}

// handleBudgetProgressPartial serves the budget progress fragment for
// a given month.
func (s *Server) handleBudgetProgressPartial(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()

	year, month, err := parseYearMonth(r.URL.Query())
	if err != nil {
		s.writeFragmentError(w, r, err)
		return
	}

	progress, err := s.dash.BudgetProgress(ctx, year, month)
	if err != nil {
		s.writeFragmentError(w, r, err)
		return
	}

	views := make([]budgetProgressView, 0, len(progress))
	for _, p := range progress {
		views = append(views, newBudgetProgressView(p))
	}

	s.render(w, r, "budget_progress.html", map[string]any{
		"Year":      year,
		"Month":     month,
		"MonthName": monthName(month),
		"Progress":  views,
	})
}
