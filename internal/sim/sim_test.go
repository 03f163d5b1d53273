// v2
// internal/sim/sim_test.go
package sim

import (
	"io"
	"log/slog"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"urbantech/twin/internal/model"
)

func newTestSim(seed int64) *Simulator {
	lg := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(lg, rand.New(rand.NewSource(seed)), DefaultSettings(), 0.5)
}

func TestSnapshotIdempotentRead(t *testing.T) {
	s := newTestSim(1)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	s.Advance(now)

	a := s.Snapshot()
	b := s.Snapshot()
	a.Timestamp = time.Time{}
	b.Timestamp = time.Time{}
	if !reflect.DeepEqual(a, b) {
		t.Fatal("two snapshots without an intervening tick differ")
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := newTestSim(2)
	now := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	snap := s.Advance(now)

	snap.PowerGrids[0].CurrentLoadMW = -999
	snap.TrafficIntersections[0].QueueLengthNS = -999

	after := s.Snapshot()
	if after.PowerGrids[0].CurrentLoadMW == -999 {
		t.Fatal("mutating a snapshot leaked into simulator state")
	}
	if after.TrafficIntersections[0].QueueLengthNS == -999 {
		t.Fatal("mutating a snapshot leaked into simulator state")
	}
}

func TestBoundedFieldsStayInRange(t *testing.T) {
	s := newTestSim(3)
	base := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 2000; i++ {
		snap := s.Advance(base.Add(time.Duration(i) * 500 * time.Millisecond))
		for _, g := range snap.PowerGrids {
			if g.CurrentLoadMW < 0 || g.CurrentLoadMW > g.CapacityMW {
				t.Fatalf("tick %d: grid %s load %.2f outside [0, %.2f]", i, g.ID, g.CurrentLoadMW, g.CapacityMW)
			}
		}
		for _, w := range snap.WaterSystems {
			if w.TankLevelPercent < 0 || w.TankLevelPercent > 100 {
				t.Fatalf("tick %d: tank level %.2f outside [0,100]", i, w.TankLevelPercent)
			}
			if w.QualityIndex < 0 || w.QualityIndex > 1 {
				t.Fatalf("tick %d: quality index %.3f outside [0,1]", i, w.QualityIndex)
			}
		}
		for _, r := range snap.RoadSensors {
			if r.OccupancyPercent < 0 || r.OccupancyPercent > 100 {
				t.Fatalf("tick %d: occupancy %.2f outside [0,100]", i, r.OccupancyPercent)
			}
		}
		for _, m := range snap.SmartMeters {
			if m.PowerFactor < 0.8 || m.PowerFactor > 1.0 {
				t.Fatalf("tick %d: power factor %.3f outside [0.8,1]", i, m.PowerFactor)
			}
		}
		for _, p := range snap.ParkingZones {
			if p.Occupied < 0 || p.Occupied > p.Capacity {
				t.Fatalf("tick %d: parking occupancy %d outside [0,%d]", i, p.Occupied, p.Capacity)
			}
		}
	}
}

func TestPhaseCountdownAndAdaptiveDuration(t *testing.T) {
	s := newTestSim(4)
	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	prev := s.Snapshot().TrafficIntersections
	for i := 0; i < 400; i++ {
		snap := s.Advance(base.Add(time.Duration(i) * 500 * time.Millisecond))
		for j, in := range snap.TrafficIntersections {
			if in.PhaseTimeRemaining <= 0 {
				t.Fatalf("tick %d: phase time remaining %.2f not reset to positive", i, in.PhaseTimeRemaining)
			}
			if in.CurrentPhase != prev[j].CurrentPhase {
				// Fresh adaptive duration must land in [20, 60].
				if in.PhaseTimeRemaining < 20 || in.PhaseTimeRemaining > 60 {
					t.Fatalf("tick %d: adaptive duration %.2f outside [20,60]", i, in.PhaseTimeRemaining)
				}
			} else if in.PhaseTimeRemaining >= prev[j].PhaseTimeRemaining {
				t.Fatalf("tick %d: phase time remaining did not decrease (%.2f -> %.2f)",
					i, prev[j].PhaseTimeRemaining, in.PhaseTimeRemaining)
			}
		}
		prev = snap.TrafficIntersections
	}
}

func TestTriggerEmergencyAppends(t *testing.T) {
	s := newTestSim(5)
	em := s.TriggerEmergency(model.EmergencyFire, model.Location{X: 10, Y: 20})
	if em.ID == "" || em.Status != "active" {
		t.Fatalf("unexpected emergency record: %+v", em)
	}
	snap := s.Snapshot()
	if len(snap.ActiveEmergencies) != 1 {
		t.Fatalf("expected 1 active emergency, got %d", len(snap.ActiveEmergencies))
	}
	if snap.ActiveEmergencies[0].Type != model.EmergencyFire {
		t.Fatalf("unexpected type %s", snap.ActiveEmergencies[0].Type)
	}
}

func TestUpdateSettingsIgnoresUnknownKeys(t *testing.T) {
	s := newTestSim(6)
	got := s.UpdateSettings(map[string]any{
		"noise_level":       0.25,
		"rush_hour_enabled": false,
		"bogus_key":         "whatever",
	})
	if got.NoiseLevel != 0.25 {
		t.Fatalf("noise_level not merged: %+v", got)
	}
	if got.RushHourEnabled {
		t.Fatal("rush_hour_enabled not merged")
	}
	if got.FailureProbability != DefaultSettings().FailureProbability {
		t.Fatal("untouched key changed")
	}
}

func TestPoissonNonNegativeAndZeroRate(t *testing.T) {
	s := newTestSim(7)
	if got := s.poisson(0); got != 0 {
		t.Fatalf("poisson(0) = %d, want 0", got)
	}
	for i := 0; i < 1000; i++ {
		if got := s.poisson(4); got < 0 {
			t.Fatalf("poisson draw negative: %d", got)
		}
	}
}

func TestRushHourWindows(t *testing.T) {
	want := map[int]bool{7: true, 8: true, 9: true, 17: true, 18: true, 19: true}
	for h := 0; h < 24; h++ {
		if isRushHour(h) != want[h] {
			t.Fatalf("hour %d: rush=%v want %v", h, isRushHour(h), want[h])
		}
	}
}
