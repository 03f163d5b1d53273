// v4
// internal/sim/sim.go
package sim

import (
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"urbantech/twin/internal/model"
)

// Settings is the runtime-tunable simulation surface. Unknown keys in
// an update payload are ignored; known keys merge over the current
// values.
type Settings struct {
	NoiseLevel         float64 `json:"noise_level"`
	FailureProbability float64 `json:"failure_probability"`
	RushHourEnabled    bool    `json:"rush_hour_enabled"`
	WeatherSimulation  bool    `json:"weather_simulation"`
}

func DefaultSettings() Settings {
	return Settings{
		NoiseLevel:         0.1,
		FailureProbability: 0.001,
		RushHourEnabled:    true,
		WeatherSimulation:  true,
	}
}

// Simulator owns the mutable state of the whole device fleet and
// advances it one tick at a time. All state is guarded by mu: the tick
// driver is the only writer during a tick, but manual triggers and
// config updates arrive from HTTP handlers concurrently.
type Simulator struct {
	log *slog.Logger

	mu       sync.Mutex
	rng      *rand.Rand
	settings Settings
	stepSec  float64
	tick     int64
	startAt  time.Time

	grids         []model.PowerGrid
	waterSystems  []model.WaterSystem
	detectors     []model.EmergencyDetector
	intersections []model.TrafficIntersection
	roadSensors   []model.RoadSensor
	parkingZones  []model.ParkingZone
	airSensors    []model.AirQualitySensor
	solarPanels   []model.SolarPanel
	smartMeters   []model.SmartMeter
	emergencies   []model.ActiveEmergency
}

// New seeds the full fleet from the supplied random source. The source
// must be dedicated to the simulator; it is used from behind mu only.
func New(log *slog.Logger, rng *rand.Rand, settings Settings, stepSec float64) *Simulator {
	if stepSec <= 0 {
		stepSec = 0.5
	}
	s := &Simulator{
		log:      log,
		rng:      rng,
		settings: settings,
		stepSec:  stepSec,
		startAt:  time.Now(),
	}
	s.seedFleet()
	s.log.Info("fleet seeded",
		"grids", len(s.grids), "water", len(s.waterSystems), "detectors", len(s.detectors),
		"intersections", len(s.intersections), "roads", len(s.roadSensors), "parking", len(s.parkingZones),
		"air", len(s.airSensors), "solar", len(s.solarPanels), "meters", len(s.smartMeters))
	return s
}

// Advance runs one simulation tick at the supplied wall-clock instant
// and returns the resulting snapshot.
func (s *Simulator) Advance(now time.Time) model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tick++
	hour := now.Hour()
	rush := s.settings.RushHourEnabled && isRushHour(hour)
	night := hour < 6 || hour > 22

	var w Weather
	if s.settings.WeatherSimulation {
		w = s.simulateWeather(hour)
	} else {
		w = Weather{Condition: "clear", TempC: 20, SolarIntensity: 0.8}
	}

	s.updatePowerGrids(night, w)
	s.updateWaterSystems()
	s.updateDetectors(now)
	s.updateTraffic(rush)
	s.updateRoads(rush)
	s.updateParking()
	s.updateAirQuality(rush, w)
	s.updateSolarPanels(w)
	s.updateSmartMeters(night)

	if s.rng.Float64() < s.settings.FailureProbability {
		s.triggerRandomFailure()
	}

	return s.snapshotLocked(now)
}

// Snapshot returns a deep copy of the current fleet without advancing
// it. Two calls with no intervening tick return identical state.
func (s *Simulator) Snapshot() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(time.Now())
}

func (s *Simulator) snapshotLocked(now time.Time) model.Snapshot {
	return model.Snapshot{
		Timestamp:            now,
		PowerGrids:           append([]model.PowerGrid(nil), s.grids...),
		WaterSystems:         append([]model.WaterSystem(nil), s.waterSystems...),
		EmergencyDetectors:   copyDetectors(s.detectors),
		TrafficIntersections: append([]model.TrafficIntersection(nil), s.intersections...),
		RoadSensors:          append([]model.RoadSensor(nil), s.roadSensors...),
		ParkingZones:         append([]model.ParkingZone(nil), s.parkingZones...),
		AirQualitySensors:    append([]model.AirQualitySensor(nil), s.airSensors...),
		SolarPanels:          append([]model.SolarPanel(nil), s.solarPanels...),
		SmartMeters:          append([]model.SmartMeter(nil), s.smartMeters...),
		ActiveEmergencies:    copyEmergencies(s.emergencies),
	}
}

func copyDetectors(in []model.EmergencyDetector) []model.EmergencyDetector {
	out := append([]model.EmergencyDetector(nil), in...)
	for i := range out {
		if out[i].LastTrigger != nil {
			t := *out[i].LastTrigger
			out[i].LastTrigger = &t
		}
	}
	return out
}

func copyEmergencies(in []model.ActiveEmergency) []model.ActiveEmergency {
	return append([]model.ActiveEmergency(nil), in...)
}

// TriggerEmergency raises a new city-wide incident. Unlike the manual
// traffic and grid overrides this does mutate simulator state.
func (s *Simulator) TriggerEmergency(typ model.EmergencyType, loc model.Location) model.ActiveEmergency {
	s.mu.Lock()
	defer s.mu.Unlock()
	em := model.ActiveEmergency{
		ID:        "EMG-" + uuid.NewString(),
		Type:      typ,
		Location:  loc,
		Timestamp: time.Now(),
		Status:    "active",
	}
	s.emergencies = append(s.emergencies, em)
	s.log.Info("emergency triggered", "id", em.ID, "type", em.Type)
	return em
}

// Settings returns the current simulation settings.
func (s *Simulator) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings merges recognised keys over the current settings and
// ignores everything else. Values arrive as decoded JSON, so numbers
// are float64 and flags are bool.
func (s *Simulator) UpdateSettings(patch map[string]any) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range patch {
		switch k {
		case "noise_level":
			if f, ok := toFloat(v); ok {
				s.settings.NoiseLevel = f
			}
		case "failure_probability":
			if f, ok := toFloat(v); ok {
				s.settings.FailureProbability = f
			}
		case "rush_hour_enabled":
			if b, ok := v.(bool); ok {
				s.settings.RushHourEnabled = b
			}
		case "weather_simulation":
			if b, ok := v.(bool); ok {
				s.settings.WeatherSimulation = b
			}
		default:
			s.log.Warn("unknown config key ignored", "key", k)
		}
	}
	return s.settings
}

// ApplySettings replaces the whole settings block (config reload path).
func (s *Simulator) ApplySettings(settings Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	s.log.Info("settings applied",
		"noise_level", settings.NoiseLevel,
		"failure_probability", settings.FailureProbability,
		"rush_hour_enabled", settings.RushHourEnabled,
		"weather_simulation", settings.WeatherSimulation)
}

// SensorCount reports the fixed fleet size.
func (s *Simulator) SensorCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.grids) + len(s.waterSystems) + len(s.detectors) +
		len(s.intersections) + len(s.roadSensors) + len(s.parkingZones) +
		len(s.airSensors) + len(s.solarPanels) + len(s.smartMeters)
}

func (s *Simulator) StartedAt() time.Time { return s.startAt }

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

func isRushHour(hour int) bool {
	switch hour {
	case 7, 8, 9, 17, 18, 19:
		return true
	}
	return false
}

// gauss draws from N(0, stddev).
func (s *Simulator) gauss(stddev float64) float64 {
	return s.rng.NormFloat64() * stddev
}

// poisson draws from a Poisson distribution with the given rate
// (Knuth's multiplication method; rates here are single digit).
func (s *Simulator) poisson(lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	l := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		k++
		p *= s.rng.Float64()
		if p <= l {
			return k - 1
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
