// v2
// internal/control/engine_test.go
package control

import (
	"testing"
	"time"

	"urbantech/twin/internal/model"
)

func testSnapshot() model.Snapshot {
	return model.Snapshot{
		Timestamp: time.Now(),
		PowerGrids: []model.PowerGrid{
			{ID: "GRID_1", CapacityMW: 100, CurrentLoadMW: 96, Status: model.GridOverloadWarn},
		},
		WaterSystems: []model.WaterSystem{
			{ID: "WATER_1", LeakDetected: true},
		},
		EmergencyDetectors: []model.EmergencyDetector{
			{ID: "EMG_1", Type: model.EmergencyFire, Status: model.DetectorAlert},
		},
		TrafficIntersections: []model.TrafficIntersection{
			{ID: "INT_1", CurrentPhase: model.PhaseNSGreen, PhaseTimeRemaining: 15, QueueLengthNS: 45, QueueLengthEW: 10},
		},
		AirQualitySensors: []model.AirQualitySensor{
			{ID: "AIR_1", AQI: 160, QualityLevel: model.AirUnhealthy},
		},
	}
}

func TestProcessProducesAllDecisionKinds(t *testing.T) {
	e := NewEngine(discard(), 0.5, nil)
	batch := e.Process(testSnapshot())

	if len(batch.Traffic) != 1 {
		t.Fatalf("traffic decisions %d, want 1", len(batch.Traffic))
	}
	if len(batch.Power) != 1 || batch.Power[0].Action != model.PowerActionLoadShedding {
		t.Fatalf("expected a load_shedding power decision, got %+v", batch.Power)
	}
	// Fire detector + leaking water system both dispatch.
	if len(batch.Emergency) != 2 {
		t.Fatalf("emergency responses %d, want 2", len(batch.Emergency))
	}
	if len(batch.AirQuality) != 1 || batch.AirQuality[0].Urgency != "high" {
		t.Fatalf("expected one high-urgency air recommendation, got %+v", batch.AirQuality)
	}
}

func TestAlertsRecomputedEachTick(t *testing.T) {
	e := NewEngine(discard(), 0.5, nil)

	e.Process(testSnapshot())
	types := map[string]bool{}
	for _, a := range e.ActiveAlerts() {
		types[a.Type] = true
	}
	for _, want := range []string{"power_critical", "water_leak", "traffic_congestion", "air_quality"} {
		if !types[want] {
			t.Fatalf("missing %s alert; got %v", want, types)
		}
	}

	// A calm snapshot must clear every alert.
	calm := model.Snapshot{
		Timestamp:  time.Now(),
		PowerGrids: []model.PowerGrid{{ID: "GRID_1", CapacityMW: 100, CurrentLoadMW: 50, Status: model.GridOperational}},
	}
	e.Process(calm)
	if got := e.ActiveAlerts(); len(got) != 0 {
		t.Fatalf("alerts must not linger, got %d", len(got))
	}
}

func TestApplyCountsBatch(t *testing.T) {
	e := NewEngine(discard(), 0.5, nil)
	batch := e.Process(testSnapshot())
	r := e.Apply(batch)
	want := len(batch.Traffic) + len(batch.Power) + len(batch.Emergency) + len(batch.AirQuality)
	if r.TotalActions != want {
		t.Fatalf("total actions %d, want %d", r.TotalActions, want)
	}
	if r.EmergencyResponsesInitiated != len(batch.Emergency) {
		t.Fatalf("emergency count %d, want %d", r.EmergencyResponsesInitiated, len(batch.Emergency))
	}
}

func TestDecisionHistoryBounded(t *testing.T) {
	e := NewEngine(discard(), 0.5, nil)
	snap := model.Snapshot{Timestamp: time.Now()}
	for i := 0; i < decisionHistoryCap+10; i++ {
		e.Process(snap)
	}
	if got := len(e.DecisionHistory()); got != decisionHistoryCap {
		t.Fatalf("history length %d, want %d", got, decisionHistoryCap)
	}
	if e.Status().DecisionsMade != decisionHistoryCap {
		t.Fatalf("status decision count %d, want %d", e.Status().DecisionsMade, decisionHistoryCap)
	}
}

func TestManualOverridesEcho(t *testing.T) {
	e := NewEngine(discard(), 0.5, nil)
	action := map[string]any{"phase": "EW_GREEN"}
	r := e.ManualTrafficControl("INT_3", action)
	if r.Status != "applied" || r.TargetID != "INT_3" {
		t.Fatalf("unexpected override result %+v", r)
	}
	r = e.ManualGridControl("GRID_2", map[string]any{"action": "load_shedding"})
	if r.TargetID != "GRID_2" {
		t.Fatalf("unexpected override result %+v", r)
	}
}
