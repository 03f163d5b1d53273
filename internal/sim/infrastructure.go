// v3
// internal/sim/infrastructure.go
package sim

import (
	"math"
	"time"

	"urbantech/twin/internal/model"
)

func (s *Simulator) updatePowerGrids(night bool, w Weather) {
	for i := range s.grids {
		g := &s.grids[i]

		baseLoadFactor := 0.8
		if night {
			baseLoadFactor = 0.5
		}
		g.CurrentLoadMW = g.CapacityMW * (baseLoadFactor + s.gauss(s.settings.NoiseLevel))
		g.CurrentLoadMW = clamp(g.CurrentLoadMW, 0, g.CapacityMW)

		g.Voltage = 220 + s.gauss(2)
		g.Frequency = 50 + s.gauss(0.05)

		loadFactor := 0.0
		if g.CapacityMW > 0 {
			loadFactor = g.CurrentLoadMW / g.CapacityMW
		}
		g.TransformerTemp = 30 + loadFactor*40 + w.TempC*0.3

		switch {
		case loadFactor > 0.95:
			g.Status = model.GridOverloadWarn
		case g.TransformerTemp > 80:
			g.Status = model.GridOverheatWarn
		default:
			g.Status = model.GridOperational
		}
	}
}

func (s *Simulator) updateWaterSystems() {
	for i := range s.waterSystems {
		ws := &s.waterSystems[i]

		ws.PressureBar = 4.5 + s.gauss(0.2)

		baseFlow := 200 + 100*math.Sin(float64(s.tick)*0.01)
		ws.FlowRateM3H = math.Max(0, baseFlow+s.gauss(20))

		ws.TankLevelPercent -= ws.FlowRateM3H * 0.001
		ws.TankLevelPercent = clamp(ws.TankLevelPercent, 0, 100)
		if ws.TankLevelPercent < 20 {
			ws.TankLevelPercent += 5
		}

		ws.QualityIndex = clamp(0.95+s.gauss(0.02), 0, 1)

		switch {
		case s.rng.Float64() < 0.0001:
			ws.LeakDetected = true
			ws.Status = model.WaterLeakDetected
		case ws.PressureBar < 3.0:
			ws.LeakDetected = false
			ws.Status = model.WaterLowPressure
		default:
			ws.LeakDetected = false
			ws.Status = model.WaterOperational
		}
	}
}

func (s *Simulator) updateDetectors(now time.Time) {
	for i := range s.detectors {
		d := &s.detectors[i]
		if s.rng.Float64() < 0.9999 {
			d.Status = model.DetectorNormal
			continue
		}
		d.Status = model.DetectorAlert
		t := now
		d.LastTrigger = &t
	}
}

// triggerRandomFailure knocks out one random device: a grid goes dark,
// a water district springs a leak, or a road reports an incident.
func (s *Simulator) triggerRandomFailure() {
	switch s.rng.Intn(3) {
	case 0:
		g := &s.grids[s.rng.Intn(len(s.grids))]
		g.Status = model.GridFailure
		g.CurrentLoadMW = 0
		s.log.Warn("random failure injected", "kind", "power", "id", g.ID)
	case 1:
		ws := &s.waterSystems[s.rng.Intn(len(s.waterSystems))]
		ws.LeakDetected = true
		ws.Status = model.WaterLeakDetected
		s.log.Warn("random failure injected", "kind", "water", "id", ws.ID)
	default:
		r := &s.roadSensors[s.rng.Intn(len(s.roadSensors))]
		r.IncidentDetected = true
		s.log.Warn("random failure injected", "kind", "traffic", "id", r.ID)
	}
}
