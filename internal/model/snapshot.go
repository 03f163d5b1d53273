// v1
// internal/model/snapshot.go
package model

import "time"

// Snapshot is a full, read-only copy of the device fleet taken at the
// end of a simulation tick. It is safe to read until the next tick
// begins; fan-out consumers must copy or serialize it synchronously.
type Snapshot struct {
	Timestamp             time.Time             `json:"timestamp"`
	PowerGrids            []PowerGrid           `json:"power_grids"`
	WaterSystems          []WaterSystem         `json:"water_systems"`
	EmergencyDetectors    []EmergencyDetector   `json:"emergency_detectors"`
	TrafficIntersections  []TrafficIntersection `json:"traffic_intersections"`
	RoadSensors           []RoadSensor          `json:"road_sensors"`
	ParkingZones          []ParkingZone         `json:"parking_zones"`
	AirQualitySensors     []AirQualitySensor    `json:"air_quality_sensors"`
	SolarPanels           []SolarPanel          `json:"solar_panels"`
	SmartMeters           []SmartMeter          `json:"smart_meters"`
	ActiveEmergencies     []ActiveEmergency     `json:"active_emergencies"`
}

// SensorCount reports the fixed fleet size (active emergencies excluded).
func (s *Snapshot) SensorCount() int {
	return len(s.PowerGrids) + len(s.WaterSystems) + len(s.EmergencyDetectors) +
		len(s.TrafficIntersections) + len(s.RoadSensors) + len(s.ParkingZones) +
		len(s.AirQualitySensors) + len(s.SolarPanels) + len(s.SmartMeters)
}

// TickOutput is the combined per-tick object handed to fan-out sinks
// (WebSocket hub, Kafka exporter). KPIs carries the analytics KPI set;
// it is typed loosely here to keep this package free of an analytics
// dependency.
type TickOutput struct {
	Timestamp time.Time     `json:"timestamp"`
	Sensors   Snapshot      `json:"sensors"`
	Decisions DecisionBatch `json:"decisions"`
	Results   ApplyResults  `json:"results"`
	KPIs      any           `json:"kpis"`
	Alerts    []Alert       `json:"alerts"`
}
