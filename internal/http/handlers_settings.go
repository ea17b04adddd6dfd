package http

import (
	"errors"
	"log/slog"
	"net/http"

	"finch/internal/core"
	"finch/internal/services"
)

// settingsPageData feeds the settings page and tabs templates.
type settingsPageData struct {
	Locale       string
	View         services.SettingsView
	Currencies   []string
	AccountTypes []core.AccountType
	Kinds        []core.CategoryKind
}

// handleSettingsPage renders the settings page for an authenticated user.
// The three resources are fetched concurrently and joined before anything
// is written; a failed fetch fails the whole request, never a partial page.
func (s *Server) handleSettingsPage(w http.ResponseWriter, r *http.Request, userID int64) {
	view, err := s.settings.Assemble(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Settings assembly failed", "error", err, "user_id", userID)
		http.Error(w, "settings unavailable", http.StatusInternalServerError)
		return
	}

	s.appMetrics.addSettingsRender()

	s.renderPage(w, r, "settings_page", settingsPageData{
		Locale:       s.translator.ResolveLocale(r, view.Locale),
		View:         view,
		Currencies:   core.SupportedCurrencies,
		AccountTypes: []core.AccountType{core.AccountChecking, core.AccountSavings, core.AccountCreditCard, core.AccountCash, core.AccountInvestment},
		Kinds:        []core.CategoryKind{core.CategoryExpense, core.CategoryIncome},
	})
}

// handleSettingsTabs re-renders the tabs partial after a mutation. Same
// assembly path as the full page, same all-or-nothing join.
func (s *Server) handleSettingsTabs(w http.ResponseWriter, r *http.Request, userID int64) {
	view, err := s.settings.Assemble(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Settings assembly failed", "error", err, "user_id", userID)
		http.Error(w, "settings unavailable", http.StatusInternalServerError)
		return
	}

	s.appMetrics.addSettingsRender()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	s.render(w, r, "settings_tabs", settingsPageData{
		Locale:       s.translator.ResolveLocale(r, view.Locale),
		View:         view,
		Currencies:   core.SupportedCurrencies,
		AccountTypes: []core.AccountType{core.AccountChecking, core.AccountSavings, core.AccountCreditCard, core.AccountCash, core.AccountInvestment},
		Kinds:        []core.CategoryKind{core.CategoryExpense, core.CategoryIncome},
	})
}

func (s *Server) handleUpdateCurrency(w http.ResponseWriter, r *http.Request, userID int64) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	currency := sanitizeInput(r.Form.Get("currency"))

	if err := s.settings.UpdateCurrency(r.Context(), userID, currency); err != nil {
		if errors.Is(err, core.ErrInvalidCurrency) {
			http.Error(w, "unsupported currency", http.StatusUnprocessableEntity)
			return
		}
		slog.ErrorContext(r.Context(), "Currency update failed", "error", err, "user_id", userID)
		http.Error(w, "update failed", http.StatusInternalServerError)
		return
	}

	s.appMetrics.addSettingsMutation()

	if err := NewHTMXResponse().
		TriggerSettingsChanged().
		Notify("success", s.translator.T(s.translator.ResolveLocale(r, ""), "settings.currency.saved")).
		Write(w); err != nil {
		slog.ErrorContext(r.Context(), "Response write failed", "error", err)
	}
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request, userID int64) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	name := sanitizeInput(r.Form.Get("name"))
	kind := core.CategoryKind(sanitizeInput(r.Form.Get("kind")))

	if _, err := s.settings.CreateCategory(r.Context(), userID, name, kind); err != nil {
		switch {
		case errors.Is(err, core.ErrEmptyName), errors.Is(err, core.ErrNameTooLong), errors.Is(err, core.ErrInvalidKind):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			slog.ErrorContext(r.Context(), "Category creation failed", "error", err, "user_id", userID)
			http.Error(w, "create failed", http.StatusInternalServerError)
		}
		return
	}

	s.appMetrics.addSettingsMutation()

	if err := NewHTMXResponse().TriggerSettingsChanged().Write(w); err != nil {
		slog.ErrorContext(r.Context(), "Response write failed", "error", err)
	}
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request, userID int64) {
	categoryID, ok := parsePathID(r, "id")
	if !ok {
		http.Error(w, "invalid category id", http.StatusBadRequest)
		return
	}

	if err := s.settings.DeleteCategory(r.Context(), userID, categoryID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			http.Error(w, "category not found", http.StatusNotFound)
			return
		}
		slog.ErrorContext(r.Context(), "Category deletion failed", "error", err, "user_id", userID)
		http.Error(w, "delete failed", http.StatusInternalServerError)
		return
	}

	s.appMetrics.addSettingsMutation()

	if err := NewHTMXResponse().TriggerSettingsChanged().Write(w); err != nil {
		slog.ErrorContext(r.Context(), "Response write failed", "error", err)
	}
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request, userID int64) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	name := sanitizeInput(r.Form.Get("name"))
	accountType := core.AccountType(sanitizeInput(r.Form.Get("type")))

	var openingCents int64
	if raw := sanitizeInput(r.Form.Get("opening_balance")); raw != "" {
		cents, err := core.ParseDecimalToCents(raw)
		if err != nil {
			http.Error(w, "invalid opening balance", http.StatusUnprocessableEntity)
			return
		}
		openingCents = cents
	}

	if _, err := s.settings.CreateAccount(r.Context(), userID, name, accountType, openingCents); err != nil {
		switch {
		case errors.Is(err, core.ErrEmptyName), errors.Is(err, core.ErrNameTooLong), errors.Is(err, core.ErrInvalidType):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			slog.ErrorContext(r.Context(), "Account creation failed", "error", err, "user_id", userID)
			http.Error(w, "create failed", http.StatusInternalServerError)
		}
		return
	}

	s.appMetrics.addSettingsMutation()

	if err := NewHTMXResponse().TriggerSettingsChanged().Write(w); err != nil {
		slog.ErrorContext(r.Context(), "Response write failed", "error", err)
	}
}
