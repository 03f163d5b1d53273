// v3
// internal/httpapi/router.go
package httpapi

import (
	"net/http"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"urbantech/twin/internal/observability"
)

// NewRouter wires all API routes. The websocket handler and metrics
// handler are passed in so this package stays free of their
// dependencies.
func NewRouter(h *Handlers, wsHandler http.HandlerFunc, metrics *observability.Metrics) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", h.Root).Methods("GET")
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/api/status", h.Status).Methods("GET")
	r.HandleFunc("/api/sensors", h.Sensors).Methods("GET")
	r.HandleFunc("/api/kpis", h.KPIs).Methods("GET")
	r.HandleFunc("/api/analytics", h.AnalyticsDetail).Methods("GET")
	r.HandleFunc("/api/analytics/report", h.Report).Methods("GET")
	r.HandleFunc("/api/control/traffic-light/{intersectionId}", h.ControlTrafficLight).Methods("POST")
	r.HandleFunc("/api/control/power-grid/{gridId}", h.ControlPowerGrid).Methods("POST")
	r.HandleFunc("/api/emergency/trigger", h.TriggerEmergency).Methods("POST")
	r.HandleFunc("/api/simulation/config", h.SimulationConfig).Methods("GET")
	r.HandleFunc("/api/simulation/config", h.UpdateSimulationConfig).Methods("POST")

	if wsHandler != nil {
		r.HandleFunc("/ws", wsHandler)
	}
	if metrics != nil {
		r.Handle("/metrics", metrics.Handler()).Methods("GET")
	}

	cors := gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins([]string{"*"}),
		gorillahandlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type"}),
	)

	return metrics.WrapHandler("api", cors(r))
}
