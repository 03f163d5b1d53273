// v3
// internal/httpapi/handlers_test.go
package httpapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"urbantech/twin/internal/analytics"
	"urbantech/twin/internal/control"
	"urbantech/twin/internal/model"
	"urbantech/twin/internal/sim"
)

func newTestServer(t *testing.T) (*httptest.Server, *Handlers) {
	t.Helper()
	lg := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := sim.New(lg, rand.New(rand.NewSource(11)), sim.DefaultSettings(), 0.5)
	e := control.NewEngine(lg, 0.5, nil)
	a := analytics.New(lg, rand.New(rand.NewSource(12)), 0.5)

	// Seed one tick so the read endpoints have data behind them.
	snap := s.Advance(time.Now())
	batch := e.Process(snap)
	a.Update(snap.Timestamp, snap, batch)

	h := &Handlers{Log: lg, Sim: s, Engine: e, Analytics: a}
	srv := httptest.NewServer(NewRouter(h, nil, nil))
	t.Cleanup(srv.Close)
	return srv, h
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestRootAndHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	var root map[string]any
	resp := getJSON(t, srv.URL+"/", &root)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "operational", root["status"])

	var health map[string]any
	getJSON(t, srv.URL+"/health", &health)
	assert.Equal(t, "ok", health["status"])
}

func TestStatusReportsFleetAndEngine(t *testing.T) {
	srv, _ := newTestServer(t)

	var status struct {
		ActiveSensors int                  `json:"active_sensors"`
		EngineStatus  control.EngineStatus `json:"engine_status"`
		UptimeSeconds float64              `json:"uptime_seconds"`
	}
	getJSON(t, srv.URL+"/api/status", &status)
	assert.Equal(t, 85, status.ActiveSensors)
	assert.True(t, status.EngineStatus.Active)
	assert.Len(t, status.EngineStatus.Algorithms, 4)
}

func TestSensorsReturnsFullSnapshot(t *testing.T) {
	srv, _ := newTestServer(t)

	var snap model.Snapshot
	getJSON(t, srv.URL+"/api/sensors", &snap)
	assert.Len(t, snap.PowerGrids, 5)
	assert.Len(t, snap.SmartMeters, 20)
	assert.Equal(t, 85, snap.SensorCount())
}

func TestKPIsCarryTimestamp(t *testing.T) {
	srv, _ := newTestServer(t)

	var kpis struct {
		ResilienceScore float64   `json:"resilience_score"`
		Timestamp       time.Time `json:"timestamp"`
	}
	getJSON(t, srv.URL+"/api/kpis", &kpis)
	assert.False(t, kpis.Timestamp.IsZero())
	assert.GreaterOrEqual(t, kpis.ResilienceScore, 0.93)
	assert.LessOrEqual(t, kpis.ResilienceScore, 0.98)
}

func TestAnalyticsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	var detail analytics.Detailed
	getJSON(t, srv.URL+"/api/analytics", &detail)
	assert.Equal(t, 1, detail.HistoryLength)
	assert.Contains(t, detail.BaselineComparison, "wait_time_improvement")
}

func TestManualTrafficControl(t *testing.T) {
	srv, _ := newTestServer(t)

	body := strings.NewReader(`{"phase": "EW_GREEN"}`)
	resp, err := http.Post(srv.URL+"/api/control/traffic-light/INT_2", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()

	var result control.OverrideResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "applied", result.Status)
	assert.Equal(t, "INT_2", result.TargetID)
}

func TestTriggerEmergency(t *testing.T) {
	srv, h := newTestServer(t)

	body := strings.NewReader(`{"emergency_type": "fire", "location": {"x": 3, "y": 4}}`)
	resp, err := http.Post(srv.URL+"/api/emergency/trigger", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var em model.ActiveEmergency
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&em))
	assert.Equal(t, model.EmergencyFire, em.Type)
	assert.True(t, strings.HasPrefix(em.ID, "EMG-"))

	snap := h.Sim.Snapshot()
	assert.Len(t, snap.ActiveEmergencies, 1)
}

func TestTriggerEmergencyRejectsMissingType(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/emergency/trigger", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSimulationConfigRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)

	var before sim.Settings
	getJSON(t, srv.URL+"/api/simulation/config", &before)
	assert.Equal(t, 0.1, before.NoiseLevel)

	body := strings.NewReader(`{"noise_level": 0.3, "bogus_key": 42}`)
	resp, err := http.Post(srv.URL+"/api/simulation/config", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()

	var update struct {
		Status string       `json:"status"`
		Config sim.Settings `json:"config"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&update))
	assert.Equal(t, "updated", update.Status)
	assert.Equal(t, 0.3, update.Config.NoiseLevel)
	// Unrelated settings keep their values.
	assert.True(t, update.Config.RushHourEnabled)
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/sensors", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
