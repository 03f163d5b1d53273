// v5
// internal/httpapi/handlers.go
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"urbantech/twin/internal/analytics"
	"urbantech/twin/internal/control"
	"urbantech/twin/internal/model"
	"urbantech/twin/internal/sim"
)

// Handlers bundles dependencies for HTTP endpoints.
type Handlers struct {
	Log       *slog.Logger
	Sim       *sim.Simulator
	Engine    *control.Engine
	Analytics *analytics.Aggregator
}

// Root describes the service (GET only).
func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"name":    "Urban Infrastructure Twin",
		"version": "1.0.0",
		"status":  "operational",
		"categories": []string{
			"Emergency Infrastructure Response",
			"Adaptive Smart Mobility",
			"Energy Efficiency & Ecological Control",
		},
	})
}

// Health is a lightweight liveness endpoint (GET only).
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// Status reports the live system state (GET only).
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"timestamp":      time.Now(),
		"active_sensors": h.Sim.SensorCount(),
		"engine_status":  h.Engine.Status(),
		"alerts":         h.Engine.ActiveAlerts(),
		"uptime_seconds": h.Analytics.Uptime().Seconds(),
	})
}

// Sensors returns the full device snapshot (GET only).
func (h *Handlers) Sensors(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.Sim.Snapshot())
}

// KPIs returns the current indicator set (GET only).
func (h *Handlers) KPIs(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, struct {
		analytics.KPIs
		Timestamp time.Time `json:"timestamp"`
	}{h.Analytics.KPIs(), time.Now()})
}

// AnalyticsDetail returns the detailed drill-down view (GET only).
func (h *Handlers) AnalyticsDetail(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.Analytics.DetailedAnalytics())
}

// Report renders the plain-text operator report (GET only).
func (h *Handlers) Report(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(h.Analytics.Report()))
}

// ControlTrafficLight acknowledges a manual intersection override (POST only).
func (h *Handlers) ControlTrafficLight(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["intersectionId"]
	var action map[string]any
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	respondJSON(w, http.StatusOK, h.Engine.ManualTrafficControl(id, action))
}

// ControlPowerGrid acknowledges a manual grid override (POST only).
func (h *Handlers) ControlPowerGrid(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["gridId"]
	var action map[string]any
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	respondJSON(w, http.StatusOK, h.Engine.ManualGridControl(id, action))
}

type triggerRequest struct {
	EmergencyType string         `json:"emergency_type"`
	Location      model.Location `json:"location"`
}

// TriggerEmergency raises a test incident in the simulator (POST only).
func (h *Handlers) TriggerEmergency(w http.ResponseWriter, r *http.Request) {
	var req triggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.EmergencyType == "" {
		h.respondError(w, http.StatusBadRequest, "emergency_type is required")
		return
	}
	em := h.Sim.TriggerEmergency(model.EmergencyType(req.EmergencyType), req.Location)
	h.Log.Info("emergency triggered via api", "id", em.ID, "type", em.Type)
	respondJSON(w, http.StatusOK, em)
}

// SimulationConfig returns the live simulation settings (GET only).
func (h *Handlers) SimulationConfig(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.Sim.Settings())
}

// UpdateSimulationConfig patches the simulation settings (POST only).
// Unknown keys are ignored, matching the simulator contract.
func (h *Handlers) UpdateSimulationConfig(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	settings := h.Sim.UpdateSettings(patch)
	respondJSON(w, http.StatusOK, map[string]any{"status": "updated", "config": settings})
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]any{"error": msg})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
