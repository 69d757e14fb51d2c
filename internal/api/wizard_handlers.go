package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vitalpath/VitalPath/internal/metrics"
	"github.com/vitalpath/VitalPath/internal/services"
)

// wizardSession is one in-flight assessment form, owned by the client that
// created it.
type wizardSession struct {
	id        string
	clientID  string
	wizard    *services.Wizard
	createdAt time.Time
}

// wizardRegistry holds open wizard sessions in memory. Sessions are
// ephemeral; an abandoned form dies with the process, like the page reload
// it replaces. The registry mutex also serializes access to each wizard,
// which is not safe for concurrent use on its own.
type wizardRegistry struct {
	mu       sync.Mutex
	sessions map[string]*wizardSession
	metrics  *metrics.Metrics
}

func newWizardRegistry(m *metrics.Metrics) *wizardRegistry {
	return &wizardRegistry{sessions: map[string]*wizardSession{}, metrics: m}
}

func (reg *wizardRegistry) create(clientID string) *wizardSession {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	s := &wizardSession{
		id:        strings.ReplaceAll(uuid.NewString(), "-", "")[:12],
		clientID:  clientID,
		wizard:    services.NewWizard(),
		createdAt: time.Now().UTC(),
	}
	reg.sessions[s.id] = s
	if reg.metrics != nil {
		reg.metrics.WizardSessions.Inc()
	}
	return s
}

// with runs fn against the named session while holding the registry lock.
// It returns not_found for unknown ids and forbidden when the session
// belongs to a different client.
func (reg *wizardRegistry) with(id, clientID string, fn func(*wizardSession) error) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	s, ok := reg.sessions[id]
	if !ok {
		return services.NewNotFoundError("wizard session not found")
	}
	if s.clientID != clientID {
		return services.NewForbiddenError("not your wizard session")
	}
	return fn(s)
}

func (reg *wizardRegistry) drop(id string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, ok := reg.sessions[id]; ok {
		delete(reg.sessions, id)
		if reg.metrics != nil {
			reg.metrics.WizardSessions.Dec()
		}
	}
}

// wizardState is the view of a session returned by most wizard endpoints.
type wizardState struct {
	WizardID string         `json:"wizard_id"`
	Step     int            `json:"step"`
	StepName string         `json:"step_name"`
	Fields   []string       `json:"fields"`
	Progress float64        `json:"progress"`
	Draft    services.Draft `json:"draft"`
}

func stateOf(s *wizardSession) wizardState {
	spec, _ := services.Step(s.wizard.Step())
	return wizardState{
		WizardID: s.id,
		Step:     s.wizard.Step(),
		StepName: spec.Name,
		Fields:   spec.Fields,
		Progress: s.wizard.Progress(),
		Draft:    s.wizard.Draft(),
	}
}

// POST /api/wizard
func (rt *Router) handleWizardCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s := rt.wizards.create(rt.clientID(w, r))
	writeJSON(w, http.StatusCreated, stateOf(s))
}

// handleWizardScoped dispatches /api/wizard/{id} and /api/wizard/{id}/{op}.
func (rt *Router) handleWizardScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/wizard/")
	parts := strings.SplitN(rest, "/", 2)
	id := parts[0]
	op := ""
	if len(parts) == 2 {
		op = parts[1]
	}
	if id == "" {
		http.NotFound(w, r)
		return
	}

	clientID := rt.clientID(w, r)
	switch {
	case op == "" && r.Method == http.MethodGet:
		rt.wizardView(w, id, clientID)
	case op == "fields" && r.Method == http.MethodPost:
		rt.wizardSetField(w, r, id, clientID)
	case op == "conditions" && r.Method == http.MethodPost:
		rt.wizardToggleCondition(w, r, id, clientID)
	case op == "next" && r.Method == http.MethodPost:
		rt.wizardMove(w, id, clientID, true)
	case op == "previous" && r.Method == http.MethodPost:
		rt.wizardMove(w, id, clientID, false)
	case op == "bmi" && r.Method == http.MethodGet:
		rt.wizardBMI(w, id, clientID)
	case op == "submit" && r.Method == http.MethodPost:
		rt.wizardSubmit(w, id, clientID)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (rt *Router) wizardView(w http.ResponseWriter, id, clientID string) {
	var state wizardState
	err := rt.wizards.with(id, clientID, func(s *wizardSession) error {
		state = stateOf(s)
		return nil
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (rt *Router) wizardSetField(w http.ResponseWriter, r *http.Request, id, clientID string) {
	var req struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var state wizardState
	err := rt.wizards.with(id, clientID, func(s *wizardSession) error {
		if err := s.wizard.SetField(req.Name, req.Value); err != nil {
			return err
		}
		state = stateOf(s)
		return nil
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (rt *Router) wizardToggleCondition(w http.ResponseWriter, r *http.Request, id, clientID string) {
	var req struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Value) == "" {
		http.Error(w, "value required", http.StatusBadRequest)
		return
	}
	var state wizardState
	err := rt.wizards.with(id, clientID, func(s *wizardSession) error {
		s.wizard.ToggleCondition(req.Value)
		state = stateOf(s)
		return nil
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (rt *Router) wizardMove(w http.ResponseWriter, id, clientID string, forward bool) {
	var state wizardState
	var moved bool
	err := rt.wizards.with(id, clientID, func(s *wizardSession) error {
		if forward {
			moved = s.wizard.Next()
		} else {
			moved = s.wizard.Previous()
		}
		state = stateOf(s)
		return nil
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"moved": moved, "state": state})
}

func (rt *Router) wizardBMI(w http.ResponseWriter, id, clientID string) {
	var bmi float64
	var ok bool
	err := rt.wizards.with(id, clientID, func(s *wizardSession) error {
		bmi, ok = s.wizard.BMI()
		return nil
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := map[string]any{"ok": ok}
	if ok {
		resp["bmi"] = bmi
		resp["category_percent"] = services.BMICategoryPercent(bmi)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (rt *Router) wizardSubmit(w http.ResponseWriter, id, clientID string) {
	var result *services.SubmitResult
	err := rt.wizards.with(id, clientID, func(s *wizardSession) error {
		res, err := rt.submit.Submit(clientID, s.wizard)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		if rt.metrics != nil {
			rt.metrics.SubmissionErrors.Inc()
		}
		writeServiceError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.SubmissionsTotal.Inc()
	}
	rt.wizards.drop(id)
	writeJSON(w, http.StatusCreated, result)
}
