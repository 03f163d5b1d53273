// v5
// internal/control/engine.go
package control

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"urbantech/twin/internal/model"
)

const decisionHistoryCap = 1000

// DecisionRecord is one archived engine pass.
type DecisionRecord struct {
	Timestamp time.Time           `json:"timestamp"`
	Decisions model.DecisionBatch `json:"decisions"`
}

// PerformanceMetrics summarises the engine's most recent pass.
type PerformanceMetrics struct {
	TrafficEfficiency     float64 `json:"traffic_efficiency"`
	PowerStability        float64 `json:"power_stability"`
	EmergencyResponseTime float64 `json:"emergency_response_time"`
	AirQualityScore       float64 `json:"air_quality_score"`
}

// EngineStatus is the diagnostic view exposed over HTTP.
type EngineStatus struct {
	Active             bool               `json:"active"`
	Algorithms         []string           `json:"algorithms"`
	PerformanceMetrics PerformanceMetrics `json:"performance_metrics"`
	DecisionsMade      int                `json:"decisions_made"`
}

// OverrideResult echoes a manual override request. Overrides are
// acknowledged but do not reach the simulator; actuation is out of
// scope and the endpoints exist for operator-console compatibility.
type OverrideResult struct {
	Status   string         `json:"status"`
	TargetID string         `json:"target_id"`
	Action   map[string]any `json:"action"`
}

// Engine runs the four sub-controllers against a snapshot each tick
// and owns the recomputed alert set plus the bounded decision history.
// Process is called only by the tick driver; the mutex exists so the
// HTTP layer can read alerts, history and status concurrently.
type Engine struct {
	lg *slog.Logger

	traffic   *TrafficController
	power     *GridBalancer
	emergency *Dispatcher
	air       *AirAdvisor

	mu      sync.RWMutex
	alerts  []model.Alert
	history *model.Ring[DecisionRecord]
	metrics PerformanceMetrics
}

func NewEngine(lg *slog.Logger, stepSec float64, protocols ProtocolTable) *Engine {
	return &Engine{
		lg:        lg,
		traffic:   NewTrafficController(lg),
		power:     NewGridBalancer(lg, stepSec),
		emergency: NewDispatcher(lg, protocols),
		air:       NewAirAdvisor(lg),
		history:   model.NewRing[DecisionRecord](decisionHistoryCap),
	}
}

// Process runs all sub-controllers against the snapshot, recomputes
// the active alert set from scratch and archives the batch.
func (e *Engine) Process(snap model.Snapshot) model.DecisionBatch {
	now := snap.Timestamp

	batch := model.DecisionBatch{
		Traffic:    e.traffic.Optimize(snap.TrafficIntersections),
		Power:      e.power.Balance(now, snap.PowerGrids, snap.SolarPanels, snap.SmartMeters),
		Emergency:  e.emergency.DetectAndRespond(now, snap.EmergencyDetectors, snap.PowerGrids, snap.WaterSystems),
		AirQuality: e.air.Advise(now, snap.AirQualitySensors),
	}

	e.mu.Lock()
	e.alerts = buildAlerts(snap)
	e.updateMetrics(batch)
	e.history.Append(DecisionRecord{Timestamp: now, Decisions: batch})
	e.mu.Unlock()

	return batch
}

// Apply counts the actions in the batch. Decisions are advisory in
// this twin; nothing is actuated.
func (e *Engine) Apply(batch model.DecisionBatch) model.ApplyResults {
	r := model.ApplyResults{
		TrafficActionsApplied:       len(batch.Traffic),
		PowerActionsApplied:         len(batch.Power),
		EmergencyResponsesInitiated: len(batch.Emergency),
		AirQualityActions:           len(batch.AirQuality),
	}
	r.TotalActions = r.TrafficActionsApplied + r.PowerActionsApplied +
		r.EmergencyResponsesInitiated + r.AirQualityActions
	return r
}

// ActiveAlerts returns the alert set computed by the last Process
// call. Alerts never linger past the condition that raised them.
func (e *Engine) ActiveAlerts() []model.Alert {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]model.Alert(nil), e.alerts...)
}

// DecisionHistory returns archived passes, oldest first.
func (e *Engine) DecisionHistory() []DecisionRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.history.Items()
}

// LoadHistory exposes the power balancer's bounded demand history.
func (e *Engine) LoadHistory() []LoadSample {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.power.LoadHistory()
}

func (e *Engine) Status() EngineStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return EngineStatus{
		Active: true,
		Algorithms: []string{
			"Traffic Optimization (adaptive thresholds)",
			"Power Grid Balancing (PID control)",
			"Emergency Response (rule-based dispatch)",
			"Air Quality Advisory (threshold)",
		},
		PerformanceMetrics: e.metrics,
		DecisionsMade:      e.history.Len(),
	}
}

// ManualTrafficControl acknowledges an operator override for an
// intersection. Echo only; see OverrideResult.
func (e *Engine) ManualTrafficControl(intersectionID string, action map[string]any) OverrideResult {
	e.lg.Info("manual traffic override", "intersection", intersectionID)
	return OverrideResult{Status: "applied", TargetID: intersectionID, Action: action}
}

// ManualGridControl acknowledges an operator override for a grid.
// Echo only; see OverrideResult.
func (e *Engine) ManualGridControl(gridID string, action map[string]any) OverrideResult {
	e.lg.Info("manual grid override", "grid", gridID)
	return OverrideResult{Status: "applied", TargetID: gridID, Action: action}
}

func (e *Engine) updateMetrics(batch model.DecisionBatch) {
	if len(batch.Traffic) > 0 {
		var sum float64
		for _, d := range batch.Traffic {
			sum += d.EfficiencyScore
		}
		e.metrics.TrafficEfficiency = sum / float64(len(batch.Traffic))
	}
	if len(batch.Power) > 0 {
		var sum float64
		for _, d := range batch.Power {
			sum += d.Efficiency
		}
		e.metrics.PowerStability = sum / float64(len(batch.Power))
	}
	e.metrics.EmergencyResponseTime = 1.0 / (1.0 + float64(len(batch.Emergency)))
	e.metrics.AirQualityScore = 1.0 / (1.0 + float64(len(batch.AirQuality))*0.1)
}

// buildAlerts recomputes the full alert set from the snapshot.
func buildAlerts(snap model.Snapshot) []model.Alert {
	var alerts []model.Alert

	for _, g := range snap.PowerGrids {
		if g.Status == model.GridOverloadWarn || g.Status == model.GridFailure {
			alerts = append(alerts, model.Alert{
				Type:     "power_critical",
				Severity: model.SeverityHigh,
				Message:  fmt.Sprintf("Power grid %s status: %s", g.ID, g.Status),
				Location: g.Location,
			})
		}
	}
	for _, ws := range snap.WaterSystems {
		if ws.LeakDetected {
			alerts = append(alerts, model.Alert{
				Type:     "water_leak",
				Severity: model.SeverityMedium,
				Message:  fmt.Sprintf("Water leak detected in %s", ws.ID),
				Location: ws.Location,
			})
		}
	}
	for _, in := range snap.TrafficIntersections {
		if in.QueueLengthNS > criticalQueue || in.QueueLengthEW > criticalQueue {
			alerts = append(alerts, model.Alert{
				Type:     "traffic_congestion",
				Severity: model.SeverityMedium,
				Message:  fmt.Sprintf("Heavy congestion at %s", in.ID),
				Location: in.Location,
			})
		}
	}
	for _, a := range snap.AirQualitySensors {
		if a.AQI > aqiUrgentThreshold {
			alerts = append(alerts, model.Alert{
				Type:     "air_quality",
				Severity: model.SeverityHigh,
				Message:  fmt.Sprintf("Unhealthy air quality at %s: AQI %d", a.ID, a.AQI),
				Location: a.Location,
			})
		}
	}

	return alerts
}
