package http

import (
	"net/http"

	"cashflow/internal/core"
	applog "cashflow/internal/log"
)

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderBudgetsPage(w, r)
	case http.MethodPost:
		s.handleCreateBudget(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) renderBudgetsPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	year, month, err := parseYearMonth(r.URL.Query())
	if err != nil {
		status, msg := validationStatus(err)
		http.Error(w, msg, status)
		return
	}

	progress, err := s.dash.BudgetProgress(ctx, year, month)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load budget progress", applog.FieldError, err.Error())
		http.Error(w, "Failed to load budgets", http.StatusInternalServerError)
		return
	}

	budgets, err := s.budgets.ListBudgets(ctx, year, month)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list budgets", applog.FieldError, err.Error())
		http.Error(w, "Failed to load budgets", http.StatusInternalServerError)
		return
	}

	budgetViews := make([]budgetView, 0, len(budgets))
	for _, b := range budgets {
		budgetViews = append(budgetViews, budgetView{
			ID:       b.ID,
			Year:     b.Year,
			Month:    b.Month,
			Category: b.Category,
			Limit:    core.FormatCents(b.Limit.Cents),
		})
	}

	progressViews := make([]budgetProgressView, 0, len(progress))
	for _, p := range progress {
		progressViews = append(progressViews, newBudgetProgressView(p))
	}

	s.render(w, r, "budgets.html", map[string]any{
		"Year":      year,
		"Month":     month,
		"MonthName": monthName(month),
		"Budgets":   budgetViews,
		"Progress":  progressViews,
	})
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	budget, err := parseBudgetForm(r)
	if err != nil {
		s.writeFragmentError(w, r, err)
		return
	}

	id, err := s.budgets.CreateBudget(ctx, budget)
	if err != nil {
		s.writeFragmentError(w, r, err)
		return
	}

	s.logger.InfoContext(ctx, "Budget created",
		"budget_id", id, "category", budget.Category,
		"year", budget.Year, "month", budget.Month)
	s.writeFragmentOK(w, "budget-saved", "Budget created.")
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
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
	cents, err := core.ParseDecimalToCents(r.FormValue("limit"))
	if err != nil {
		s.writeFragmentError(w, r, err)
		return
	}

	budget := core.Budget{ID: id, Limit: core.Money{Cents: cents}}
	if err := s.budgets.UpdateBudget(ctx, budget); err != nil {
		s.writeFragmentError(w, r, err)
		return
	}

	s.logger.InfoContext(ctx, "Budget updated", "budget_id", id)
	s.writeFragmentOK(w, "budget-saved", "Budget updated.")
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
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

	if err := s.budgets.DeleteBudget(ctx, id); err != nil {
		s.writeFragmentError(w, r, err)
		return
	}

	s.logger.InfoContext(ctx, "Budget deleted", "budget_id", id)
	s.writeFragmentOK(w, "budget-saved", "Budget deleted.")
}
