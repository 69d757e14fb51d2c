package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vitalpath/VitalPath/internal/metrics"
	"github.com/vitalpath/VitalPath/internal/middleware"
	"github.com/vitalpath/VitalPath/internal/services"
)

// clientCookie is the long-lived cookie that stands in for the browser's
// local storage: it keys the submitter store.
const clientCookie = "vp_client"

type Router struct {
	store      Store
	submitters services.SubmitterStore
	metrics    *metrics.Metrics

	wizards       *wizardRegistry
	assessments   *services.AssessmentService
	submit        *services.SubmitService
	notify        *services.NotifyCenter
	auth          *services.AuthService
	dashboard     *services.DashboardService
	export        *services.ExportService
	submitterData *services.SubmitterDataService
}

func NewRouter(store Store, submitters services.SubmitterStore, m *metrics.Metrics, pollInterval time.Duration) *Router {
	assessments := services.NewAssessmentService(store)
	var observe func(error)
	if m != nil {
		observe = m.ObservePoll
	}
	rt := &Router{
		store:         store,
		submitters:    submitters,
		metrics:       m,
		wizards:       newWizardRegistry(m),
		assessments:   assessments,
		submit:        services.NewSubmitService(assessments, submitters),
		notify:        services.NewNotifyCenter(assessments, pollInterval, observe),
		auth:          services.NewAuthService(store, middleware.SignToken),
		dashboard:     services.NewDashboardService(store),
		export:        services.NewExportService(store),
		submitterData: services.NewSubmitterDataService(store),
	}
	return rt
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/wizard", rt.handleWizardCreate)        // POST
	mux.HandleFunc("/api/wizard/", rt.handleWizardScoped)       // GET/POST /api/wizard/{id}/...
	mux.HandleFunc("/api/assessments", rt.handleSearch)         // GET ?email=
	mux.HandleFunc("/api/assessments/", rt.handleGetAssessment) // GET /api/assessments/{id}
	mux.HandleFunc("/api/notifications", rt.handleNotification) // GET
	mux.HandleFunc("/api/notifications/dismiss", rt.handleNotificationDismiss) // POST
	mux.HandleFunc("/api/recent", rt.handleRecent)              // GET
	mux.HandleFunc("/api/auth/register", rt.handleRegister)     // POST
	mux.HandleFunc("/api/auth/login", rt.handleLogin)           // POST
	mux.HandleFunc("/api/admin/assessments", rt.handleAdminList)         // GET
	mux.HandleFunc("/api/admin/assessments/", rt.handleAdminAssessment)  // POST {id}/status
	mux.HandleFunc("/api/admin/summary", rt.handleAdminSummary)          // GET
	mux.HandleFunc("/api/admin/export", rt.handleAdminExport)            // GET ?format=csv|xlsx
	mux.HandleFunc("/api/admin/audit", rt.handleAdminAudit)              // GET
	mux.HandleFunc("/api/admin/submitters/export", rt.handleAdminSubmitterExport) // GET ?email=
	mux.HandleFunc("/api/admin/submitters/delete", rt.handleAdminSubmitterDelete) // POST
}

// Close stops background pollers; called on server shutdown.
func (rt *Router) Close() { rt.notify.Stop() }

// clientID reads the client cookie, minting one when absent so the
// submitter store has a stable key from the first visit on.
func (rt *Router) clientID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(clientCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	http.SetCookie(w, &http.Cookie{
		Name:     clientCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps the services error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	if se, ok := services.AsServiceError(err); ok {
		status := http.StatusInternalServerError
		switch se.Code {
		case services.ErrorInvalid:
			status = http.StatusBadRequest
		case services.ErrorForbidden:
			status = http.StatusForbidden
		case services.ErrorNotFound:
			status = http.StatusNotFound
		case services.ErrorConflict:
			status = http.StatusConflict
		case services.ErrorUnauthorized:
			status = http.StatusUnauthorized
		}
		http.Error(w, se.Message, status)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// staff returns the authenticated staff identity or writes 401.
func (rt *Router) staff(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.StaffFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return claims.Email, true
}

// GET /api/assessments?email=...
func (rt *Router) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	list, err := rt.assessments.SearchAssessments(r.URL.Query().Get("email"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"assessments": list})
}

// GET /api/assessments/{id}
func (rt *Router) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/assessments/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	a, err := rt.assessments.GetAssessment(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// GET /api/recent — the client's bounded recent-submissions list.
func (rt *Router) handleRecent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	recent, err := rt.submitters.Recent(rt.clientID(w, r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"recent": recent})
}

// POST /api/auth/register
func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := rt.auth.Register(req.Email, req.Password, req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": res.Token, "user_id": res.UserID, "email": res.Email})
}

// POST /api/auth/login
func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := rt.auth.Login(req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": res.Token, "user_id": res.UserID, "email": res.Email})
}
