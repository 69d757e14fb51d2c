package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// GET /api/admin/assessments?status=...
func (rt *Router) handleAdminList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := rt.staff(w, r); !ok {
		return
	}
	list, err := rt.assessments.ListAssessments(r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"assessments": list})
}

// POST /api/admin/assessments/{id}/status
func (rt *Router) handleAdminAssessment(w http.ResponseWriter, r *http.Request) {
	actor, ok := rt.staff(w, r)
	if !ok {
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/admin/assessments/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] != "status" || r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := rt.assessments.Review(parts[0], req.Status, actor); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": parts[0], "status": req.Status})
}

// GET /api/admin/summary
func (rt *Router) handleAdminSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := rt.staff(w, r); !ok {
		return
	}
	summary, err := rt.dashboard.Summary()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// GET /api/admin/export?format=csv|xlsx&status=...
func (rt *Router) handleAdminExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	actor, ok := rt.staff(w, r)
	if !ok {
		return
	}
	status := r.URL.Query().Get("status")
	stamp := time.Now().UTC().Format("20060102")
	switch r.URL.Query().Get("format") {
	case "", "csv":
		data, err := rt.export.ExportCSV(status, actor)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="assessments-`+stamp+`.csv"`)
		_, _ = w.Write(data)
	case "xlsx":
		data, err := rt.export.ExportXLSX(status, actor)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="assessments-`+stamp+`.xlsx"`)
		_, _ = w.Write(data)
	default:
		http.Error(w, "unknown format", http.StatusBadRequest)
	}
}

// GET /api/admin/audit
func (rt *Router) handleAdminAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := rt.staff(w, r); !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"audit": rt.store.ListAudit()})
}

// GET /api/admin/submitters/export?email=...
func (rt *Router) handleAdminSubmitterExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	actor, ok := rt.staff(w, r)
	if !ok {
		return
	}
	out, err := rt.submitterData.ExportByEmail(r.URL.Query().Get("email"), actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// POST /api/admin/submitters/delete
func (rt *Router) handleAdminSubmitterDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	actor, ok := rt.staff(w, r)
	if !ok {
		return
	}
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	removed, err := rt.submitterData.DeleteByEmail(req.Email, actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": removed})
}
