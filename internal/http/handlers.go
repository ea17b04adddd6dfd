package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

func (m *appMetrics) addRequest()          { atomic.AddInt64(&m.totalRequests, 1) }
func (m *appMetrics) addSettingsRender()   { atomic.AddInt64(&m.settingsRenders, 1) }
func (m *appMetrics) addSettingsMutation() { atomic.AddInt64(&m.settingsMutations, 1) }
func (m *appMetrics) addSignIn()           { atomic.AddInt64(&m.signIns, 1) }

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).String(),
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(health)
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if s.templates == nil || s.templates.Lookup("settings_page") == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if s.store != nil {
		if err := s.store.Ping(ctx); err != nil {
			checks["storage"] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["storage"] = "ok"
		}
	} else {
		checks["storage"] = "not_configured"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}

	if locales := s.translator.Locales(); len(locales) > 0 {
		checks["i18n"] = map[string]interface{}{"locales": locales, "status": "ok"}
	} else {
		checks["i18n"] = "failed: no locales loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}

	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}

	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(response)
}

// handleMetrics provides application metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	totalRequests := atomic.LoadInt64(&s.appMetrics.totalRequests)
	settingsRenders := atomic.LoadInt64(&s.appMetrics.settingsRenders)
	settingsMutations := atomic.LoadInt64(&s.appMetrics.settingsMutations)
	signIns := atomic.LoadInt64(&s.appMetrics.signIns)
	uptime := time.Since(s.appMetrics.uptime)
	activeClients := s.signInLimiter.ActiveClients()

	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", totalRequests)

	fmt.Fprintf(w, "# HELP settings_renders_total Total settings page assemblies\n")
	fmt.Fprintf(w, "# TYPE settings_renders_total counter\n")
	fmt.Fprintf(w, "settings_renders_total %d\n\n", settingsRenders)

	fmt.Fprintf(w, "# HELP settings_mutations_total Total settings changes applied\n")
	fmt.Fprintf(w, "# TYPE settings_mutations_total counter\n")
	fmt.Fprintf(w, "settings_mutations_total %d\n\n", settingsMutations)

	fmt.Fprintf(w, "# HELP sign_ins_total Total successful sign-ins\n")
	fmt.Fprintf(w, "# TYPE sign_ins_total counter\n")
	fmt.Fprintf(w, "sign_ins_total %d\n\n", signIns)

	fmt.Fprintf(w, "# HELP rate_limit_clients Currently tracked rate limit clients\n")
	fmt.Fprintf(w, "# TYPE rate_limit_clients gauge\n")
	fmt.Fprintf(w, "rate_limit_clients %d\n\n", activeClients)

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", uptime.Seconds())
}
