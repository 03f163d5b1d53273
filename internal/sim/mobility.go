// v4
// internal/sim/mobility.go
package sim

import (
	"math"

	"urbantech/twin/internal/model"
)

const (
	// greenDepartureCap bounds how many queued vehicles clear the
	// intersection per tick on the green approach.
	greenDepartureCap = 10
	basePhaseSeconds  = 20
	fixedPhaseSeconds = 30
)

func (s *Simulator) updateTraffic(rush bool) {
	arrivalRate := 3.0
	if rush {
		arrivalRate = 8.0
	}

	for i := range s.intersections {
		in := &s.intersections[i]

		in.VehicleCountNS += s.poisson(arrivalRate * 0.5)
		in.VehicleCountEW += s.poisson(arrivalRate * 0.5)

		switch in.CurrentPhase {
		case model.PhaseNSGreen:
			departed := min(in.VehicleCountNS, greenDepartureCap)
			in.VehicleCountNS -= departed
			in.Throughput += departed
		case model.PhaseEWGreen:
			departed := min(in.VehicleCountEW, greenDepartureCap)
			in.VehicleCountEW -= departed
			in.Throughput += departed
		}

		in.QueueLengthNS = in.VehicleCountNS
		in.QueueLengthEW = in.VehicleCountEW

		total := in.VehicleCountNS + in.VehicleCountEW
		if total > 0 {
			in.AvgWaitTime = float64(in.QueueLengthNS*2+in.QueueLengthEW*2) / float64(total)
		} else {
			in.AvgWaitTime = 0
		}

		in.PhaseTimeRemaining -= s.stepSec
		if in.PhaseTimeRemaining <= 0 {
			s.switchPhase(in)
		}
	}
}

// switchPhase flips the green direction and computes the next phase
// duration from the queue ratio of the approach that just turned green
// (other approach floored at 1 to keep the ratio defined).
func (s *Simulator) switchPhase(in *model.TrafficIntersection) {
	if in.CurrentPhase == model.PhaseNSGreen {
		in.CurrentPhase = model.PhaseEWGreen
	} else {
		in.CurrentPhase = model.PhaseNSGreen
	}

	if !in.AdaptiveMode {
		in.PhaseTimeRemaining = fixedPhaseSeconds
		return
	}

	var ratio float64
	if in.CurrentPhase == model.PhaseNSGreen {
		ratio = float64(in.QueueLengthNS) / math.Max(1, float64(in.QueueLengthEW))
	} else {
		ratio = float64(in.QueueLengthEW) / math.Max(1, float64(in.QueueLengthNS))
	}
	in.PhaseTimeRemaining = basePhaseSeconds + basePhaseSeconds*math.Min(ratio, 2)
}

func (s *Simulator) updateRoads(rush bool) {
	for i := range s.roadSensors {
		r := &s.roadSensors[i]

		if rush {
			r.VehicleCount = 20 + s.rng.Intn(31)
			r.VehicleSpeedKMH = 20 + s.rng.Float64()*20
			r.OccupancyPercent = 60 + s.rng.Float64()*30
		} else {
			r.VehicleCount = 5 + s.rng.Intn(16)
			r.VehicleSpeedKMH = 40 + s.rng.Float64()*30
			r.OccupancyPercent = 20 + s.rng.Float64()*30
		}
		r.OccupancyPercent = clamp(r.OccupancyPercent, 0, 100)

		switch {
		case r.OccupancyPercent > 80:
			r.CongestionLevel = model.CongestionHigh
		case r.OccupancyPercent > 50:
			r.CongestionLevel = model.CongestionMedium
		default:
			r.CongestionLevel = model.CongestionLow
		}

		r.IncidentDetected = s.rng.Float64() < 0.0001
	}
}

func (s *Simulator) updateParking() {
	for i := range s.parkingZones {
		z := &s.parkingZones[i]

		change := s.rng.Intn(9) - 3 // -3..+5
		z.Occupied += change
		if z.Occupied < 0 {
			z.Occupied = 0
		}
		if z.Occupied > z.Capacity {
			z.Occupied = z.Capacity
		}

		maxCharging := min(z.EVChargingStations, z.Occupied)
		z.EVChargingAvailable = z.EVChargingStations - s.rng.Intn(maxCharging+1)
	}
}
