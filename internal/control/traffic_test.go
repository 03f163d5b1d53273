// v2
// internal/control/traffic_test.go
package control

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"urbantech/twin/internal/model"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestEarlySwitchFiresUnderPressure(t *testing.T) {
	tc := NewTrafficController(discard())
	in := model.TrafficIntersection{
		ID:                 "INT_1",
		CurrentPhase:       model.PhaseNSGreen,
		PhaseTimeRemaining: 5,
		QueueLengthNS:      2,
		QueueLengthEW:      28, // EW holds >70% of total pressure
	}
	got := tc.Optimize([]model.TrafficIntersection{in})
	if len(got) != 1 {
		t.Fatalf("expected 1 decision, got %d", len(got))
	}
	d := got[0]
	if d.Action != model.TrafficActionSwitchPhase {
		t.Fatalf("expected switch_phase, got %s", d.Action)
	}
	ewRatio := 28.0 / 30.0 / (2.0/30.0 + 28.0/30.0)
	want := 20 + math.Min(8, (ewRatio-0.5)*16)
	if math.Abs(d.NewDuration-want) > 1e-9 {
		t.Fatalf("new duration %.3f, want %.3f", d.NewDuration, want)
	}
	if d.NewDuration < 20 || d.NewDuration > 28 {
		t.Fatalf("early-switch duration %.3f outside [20,28]", d.NewDuration)
	}
}

func TestNoSwitchWhenPhaseTimeHigh(t *testing.T) {
	tc := NewTrafficController(discard())
	in := model.TrafficIntersection{
		ID:                 "INT_2",
		CurrentPhase:       model.PhaseNSGreen,
		PhaseTimeRemaining: 25, // plenty of green left
		QueueLengthNS:      0,
		QueueLengthEW:      30,
	}
	d := tc.Optimize([]model.TrafficIntersection{in})[0]
	if d.Action != model.TrafficActionMaintain {
		t.Fatalf("expected maintain, got %s", d.Action)
	}
	if d.NewDuration != 25 {
		t.Fatalf("maintain must carry the remaining time, got %.2f", d.NewDuration)
	}
}

func TestEmergencyExtensionOverridesEarlySwitch(t *testing.T) {
	tc := NewTrafficController(discard())
	in := model.TrafficIntersection{
		ID:                 "INT_3",
		CurrentPhase:       model.PhaseNSGreen,
		PhaseTimeRemaining: 5,
		QueueLengthNS:      2,
		QueueLengthEW:      45, // critical queue
	}
	d := tc.Optimize([]model.TrafficIntersection{in})[0]
	if d.Action != model.TrafficActionSwitchPhase {
		t.Fatalf("expected switch_phase, got %s", d.Action)
	}
	ewRatio := 45.0 / 30.0 / (2.0/30.0 + 45.0/30.0)
	base := 20 + math.Min(8, (ewRatio-0.5)*16)
	want := math.Min(60, base*1.5)
	if math.Abs(d.NewDuration-want) > 1e-9 {
		t.Fatalf("extended duration %.3f, want %.3f", d.NewDuration, want)
	}
}

func TestEmergencyExtensionCappedAt60(t *testing.T) {
	tc := NewTrafficController(discard())
	in := model.TrafficIntersection{
		ID:                 "INT_4",
		CurrentPhase:       model.PhaseEWGreen,
		PhaseTimeRemaining: 55,
		QueueLengthNS:      50,
		QueueLengthEW:      50,
	}
	d := tc.Optimize([]model.TrafficIntersection{in})[0]
	if d.NewDuration != 60 {
		t.Fatalf("expected cap at 60, got %.2f", d.NewDuration)
	}
}

func TestIdleJunctionSplitsPressureEvenly(t *testing.T) {
	tc := NewTrafficController(discard())
	in := model.TrafficIntersection{
		ID:                 "INT_5",
		CurrentPhase:       model.PhaseNSGreen,
		PhaseTimeRemaining: 5,
	}
	d := tc.Optimize([]model.TrafficIntersection{in})[0]
	if d.Action != model.TrafficActionMaintain {
		t.Fatalf("idle junction must not switch, got %s", d.Action)
	}
	if d.EfficiencyScore != 1.0 {
		t.Fatalf("idle junction efficiency %.2f, want 1.0", d.EfficiencyScore)
	}
}

func TestEfficiencyScoreFromPressures(t *testing.T) {
	tc := NewTrafficController(discard())
	in := model.TrafficIntersection{
		ID:                 "INT_6",
		CurrentPhase:       model.PhaseNSGreen,
		PhaseTimeRemaining: 30,
		QueueLengthNS:      15,
		QueueLengthEW:      30,
	}
	d := tc.Optimize([]model.TrafficIntersection{in})[0]
	want := 1.0 - (0.5+1.0)/2
	if math.Abs(d.EfficiencyScore-want) > 1e-9 {
		t.Fatalf("efficiency %.3f, want %.3f", d.EfficiencyScore, want)
	}
	if d.NSPressure != 0.5 || d.EWPressure != 1.0 {
		t.Fatalf("pressures (%.2f, %.2f), want (0.5, 1.0)", d.NSPressure, d.EWPressure)
	}
}
