package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"finch/internal/auth"
	"finch/internal/core"
	"finch/internal/i18n"
	"finch/internal/services"
	"finch/internal/storage"
	appweb "finch/web"
)

type Server struct {
	http.Server
	templates  *template.Template
	auth       *auth.Service
	settings   *services.SettingsService
	translator *i18n.Translator
	store      storage.Pinger

	// Rate limiter for credential endpoints
	signInLimiter *clientLimiter

	appMetrics   *appMetrics
	shutdownOnce sync.Once
}

// appMetrics tracks application counters exposed on /metrics.
type appMetrics struct {
	uptime            time.Time
	totalRequests     int64
	settingsRenders   int64
	settingsMutations int64
	signIns           int64
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, authSvc *auth.Service, settingsSvc *services.SettingsService, translator *i18n.Translator, store storage.Pinger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		auth:          authSvc,
		settings:      settingsSvc,
		translator:    translator,
		store:         store,
		signInLimiter: newClientLimiter(10, 5), // 10/min with burst 5 per client
		appMetrics:    &appMetrics{uptime: time.Now()},
	}

	// Parse embedded templates at startup.
	funcs := template.FuncMap{
		"t": translator.T,
		"money": func(m core.Money, currency string) string {
			return m.Format(currency)
		},
	}
	t, err := template.New("").Funcs(funcs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /{$}", s.instrument(s.handleRoot))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /sign-in", s.instrument(s.handleSignInPage))
	mux.HandleFunc("POST /sign-in", s.instrument(s.handleSignIn))
	mux.HandleFunc("GET /sign-up", s.instrument(s.handleSignUpPage))
	mux.HandleFunc("POST /sign-up", s.instrument(s.handleSignUp))
	mux.HandleFunc("POST /sign-out", s.instrument(s.handleSignOut))

	mux.HandleFunc("GET /settings", s.instrument(s.requireUser(s.handleSettingsPage)))
	// UI partials
	mux.HandleFunc("GET /ui/settings-tabs", s.instrument(s.requireUser(s.handleSettingsTabs)))

	mux.HandleFunc("POST /settings/currency", s.instrument(s.requireUser(s.handleUpdateCurrency)))
	mux.HandleFunc("POST /settings/categories", s.instrument(s.requireUser(s.handleCreateCategory)))
	mux.HandleFunc("DELETE /settings/categories/{id}", s.instrument(s.requireUser(s.handleDeleteCategory)))
	mux.HandleFunc("POST /settings/accounts", s.instrument(s.requireUser(s.handleCreateAccount)))

	return s
}

// handleRoot sends visitors to the settings page, which sorts out auth.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/settings", http.StatusSeeOther)
}

// instrument adds security headers, request IDs, and request logging.
func (s *Server) instrument(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDContextKey, requestID)
		r = r.WithContext(ctx)

		setSecurityHeaders(w)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.appMetrics.addRequest()

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

// requireUser resolves the authenticated identity and redirects to the
// sign-in page when there is none. No data is fetched for anonymous
// requests; the redirect is the whole response.
func (s *Server) requireUser(next func(http.ResponseWriter, *http.Request, int64)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.auth.Identify(r)
		if !ok {
			// HTMX can't render a redirect into a partial; tell it to
			// navigate instead.
			if r.Header.Get("HX-Request") == "true" {
				w.Header().Set("HX-Redirect", "/sign-in")
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			http.Redirect(w, r, "/sign-in", http.StatusSeeOther)
			return
		}
		next(w, r, userID)
	}
}

type contextKey string

const requestIDContextKey contextKey = "request_id"

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.signInLimiter != nil {
			s.signInLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
