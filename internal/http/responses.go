package http

import (
	"errors"
	"fmt"
	"html"
	"net/http"

	"cashflow/internal/core"
	applog "cashflow/internal/log"
)

// validationStatus maps domain errors to an HTTP status and a message
// safe to show the user. Unknown errors stay opaque.
func validationStatus(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrAccountNotFound),
		errors.Is(err, core.ErrTransactionNotFound),
		errors.Is(err, core.ErrBudgetNotFound):
		return http.StatusNotFound, "Not found."
	case errors.Is(err, core.ErrInvalidAmount):
		return http.StatusUnprocessableEntity, "Amount must be a positive number."
	case errors.Is(err, core.ErrInvalidDate):
		return http.StatusUnprocessableEntity, "Date must be in YYYY-MM-DD format."
	case errors.Is(err, core.ErrInvalidMonth):
		return http.StatusUnprocessableEntity, "Month must be between 1 and 12."
	case errors.Is(err, core.ErrEmptyName):
		return http.StatusUnprocessableEntity, "Name cannot be empty."
	case errors.Is(err, core.ErrEmptyCategory):
		return http.StatusUnprocessableEntity, "Category cannot be empty."
	case errors.Is(err, core.ErrInvalidAccountType):
		return http.StatusUnprocessableEntity, "Unknown account type."
	case errors.Is(err, core.ErrInvalidKind):
		return http.StatusUnprocessableEntity, "Unknown transaction kind."
	case errors.Is(err, core.ErrUnknownAccount):
		return http.StatusUnprocessableEntity, "Account does not exist."
	case errors.Is(err, core.ErrAccountInUse):
		return http.StatusUnprocessableEntity, "Account still has transactions and cannot be deleted."
	case errors.Is(err, core.ErrMissingTransferTo):
		return http.StatusUnprocessableEntity, "Transfers need a destination account."
	case errors.Is(err, core.ErrUnexpectedTransfer):
		return http.StatusUnprocessableEntity, "Only transfers may have a destination account."
	case errors.Is(err, core.ErrSameAccountTransfer):
		return http.StatusUnprocessableEntity, "Transfer source and destination must differ."
	case errors.Is(err, core.ErrBudgetExists):
		return http.StatusUnprocessableEntity, "A budget for this category and month already exists."
	case errors.Is(err, errMissingID):
		return http.StatusBadRequest, "Missing or invalid id."
	default:
		return http.StatusInternalServerError, "Something went wrong. Please try again."
	}
}

// writeFragmentError renders an inline error fragment for HTMX targets.
func (s *Server) writeFragmentError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := validationStatus(err)
	if status >= 500 {
		s.logger.ErrorContext(r.Context(), "Handler failed",
			applog.FieldPath, r.URL.Path, applog.FieldError, err.Error())
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<div class="message error">%s</div>`, html.EscapeString(msg))
}

// writeFragmentOK renders a success fragment and fires an HX-Trigger
// event so dependent panels refresh themselves.
func (s *Server) writeFragmentOK(w http.ResponseWriter, trigger, msg string) {
	if trigger != "" {
		w.Header().Set("HX-Trigger", trigger)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `<div class="message success">%s</div>`, html.EscapeString(msg))
}
