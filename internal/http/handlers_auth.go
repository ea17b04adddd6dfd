package http

import (
	"errors"
	"log/slog"
	"net/http"

	"finch/internal/auth"
)

// signInPageData feeds the sign-in and sign-up templates.
type signInPageData struct {
	Locale string
	Email  string
	Error  string
}

func (s *Server) handleSignInPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.auth.Identify(r); ok {
		http.Redirect(w, r, "/settings", http.StatusSeeOther)
		return
	}
	s.renderPage(w, r, "sign_in_page", signInPageData{
		Locale: s.translator.ResolveLocale(r, ""),
	})
}

func (s *Server) handleSignUpPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.auth.Identify(r); ok {
		http.Redirect(w, r, "/settings", http.StatusSeeOther)
		return
	}
	s.renderPage(w, r, "sign_up_page", signInPageData{
		Locale: s.translator.ResolveLocale(r, ""),
	})
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	locale := s.translator.ResolveLocale(r, "")

	clientIP := extractClientIP(r)
	if !s.signInLimiter.Allow(clientIP) {
		slog.WarnContext(r.Context(), "Rate limit exceeded on sign-in", "client_ip", clientIP)
		w.Header().Set("Retry-After", "60")
		http.Error(w, "Too many attempts. Please try again later.", http.StatusTooManyRequests)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	email := sanitizeInput(r.Form.Get("email"))
	password := r.Form.Get("password")

	user, err := s.auth.Authenticate(r.Context(), email, password)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			slog.ErrorContext(r.Context(), "Sign-in lookup failed", "error", err)
			http.Error(w, "sign-in unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusUnauthorized)
		s.render(w, r, "sign_in_page", signInPageData{
			Locale: locale,
			Email:  email,
			Error:  s.translator.T(locale, "signin.failed"),
		})
		return
	}

	token, expiresAt, err := s.auth.IssueSession(r.Context(), user.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to issue session", "error", err, "user_id", user.ID)
		http.Error(w, "sign-in unavailable", http.StatusInternalServerError)
		return
	}

	s.appMetrics.addSignIn()
	slog.InfoContext(r.Context(), "User signed in", "user_id", user.ID)

	http.SetCookie(w, s.auth.SessionCookie(token, expiresAt))
	http.Redirect(w, r, "/settings", http.StatusSeeOther)
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	locale := s.translator.ResolveLocale(r, "")

	clientIP := extractClientIP(r)
	if !s.signInLimiter.Allow(clientIP) {
		slog.WarnContext(r.Context(), "Rate limit exceeded on sign-up", "client_ip", clientIP)
		w.Header().Set("Retry-After", "60")
		http.Error(w, "Too many attempts. Please try again later.", http.StatusTooManyRequests)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	email := sanitizeInput(r.Form.Get("email"))
	password := r.Form.Get("password")

	userID, err := s.auth.Register(r.Context(), email, password)
	if err != nil {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.render(w, r, "sign_up_page", signInPageData{
			Locale: locale,
			Email:  email,
			Error:  err.Error(),
		})
		return
	}

	token, expiresAt, err := s.auth.IssueSession(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to issue session", "error", err, "user_id", userID)
		http.Error(w, "sign-up unavailable", http.StatusInternalServerError)
		return
	}

	slog.InfoContext(r.Context(), "User registered", "user_id", userID)

	http.SetCookie(w, s.auth.SessionCookie(token, expiresAt))
	http.Redirect(w, r, "/settings", http.StatusSeeOther)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.RevokeSession(r.Context(), r); err != nil {
		slog.ErrorContext(r.Context(), "Failed to revoke session", "error", err)
	}
	http.SetCookie(w, s.auth.ClearedSessionCookie())
	http.Redirect(w, r, "/sign-in", http.StatusSeeOther)
}

// renderPage writes a full page with a 200 status.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	s.render(w, r, name, data)
}

// render executes a template, logging failures. Callers set status first.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded")
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "template", name, "error", err)
	}
}
