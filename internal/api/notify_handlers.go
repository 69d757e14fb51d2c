package api

import (
	"net/http"

	"github.com/vitalpath/VitalPath/internal/services"
)

// GET /api/notifications — the status notice for the remembered submitter.
// Visitors with no remembered email get an empty (invisible) notification
// and no poller is started for them.
func (rt *Router) handleNotification(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	email, err := rt.submitters.CurrentEmail(rt.clientID(w, r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	n := rt.notify.For(email)
	if n == nil {
		writeJSON(w, http.StatusOK, services.Notification{})
		return
	}
	writeJSON(w, http.StatusOK, n.State())
}

// POST /api/notifications/dismiss
func (rt *Router) handleNotificationDismiss(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	email, err := rt.submitters.CurrentEmail(rt.clientID(w, r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if n := rt.notify.For(email); n != nil {
		n.Dismiss()
	}
	w.WriteHeader(http.StatusNoContent)
}
