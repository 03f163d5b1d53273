// v2
// internal/model/devices.go
package model

import "time"

// Location is a flat 2-D city coordinate on the 0..100 grid.
type Location struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type GridStatus string

const (
	GridOperational    GridStatus = "operational"
	GridOverloadWarn   GridStatus = "overload_warning"
	GridOverheatWarn   GridStatus = "overheat_warning"
	GridFailure        GridStatus = "failure"
)

// PowerGrid is one grid zone. CurrentLoadMW never exceeds CapacityMW.
type PowerGrid struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Location        Location   `json:"location"`
	CapacityMW      float64    `json:"capacity_mw"`
	CurrentLoadMW   float64    `json:"current_load_mw"`
	Voltage         float64    `json:"voltage"`
	Frequency       float64    `json:"frequency"`
	Status          GridStatus `json:"status"`
	BackupAvailable bool       `json:"backup_available"`
	TransformerTemp float64    `json:"transformer_temp"`
}

type WaterStatus string

const (
	WaterOperational  WaterStatus = "operational"
	WaterLowPressure  WaterStatus = "low_pressure"
	WaterLeakDetected WaterStatus = "leak_detected"
)

type WaterSystem struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Location         Location    `json:"location"`
	PressureBar      float64     `json:"pressure_bar"`
	FlowRateM3H      float64     `json:"flow_rate_m3h"`
	QualityIndex     float64     `json:"quality_index"`
	TankLevelPercent float64     `json:"tank_level_percent"`
	Status           WaterStatus `json:"status"`
	LeakDetected     bool        `json:"leak_detected"`
}

type DetectorStatus string

const (
	DetectorNormal DetectorStatus = "normal"
	DetectorAlert  DetectorStatus = "alert"
)

// EmergencyType is the closed vocabulary recognised by the dispatch
// protocol table. Detectors are seeded with the first four only.
type EmergencyType string

const (
	EmergencyFire         EmergencyType = "fire"
	EmergencyFlood        EmergencyType = "flood"
	EmergencyGas          EmergencyType = "gas"
	EmergencyStructural   EmergencyType = "structural"
	EmergencyPowerFailure EmergencyType = "power_failure"
	EmergencyWaterLeak    EmergencyType = "water_leak"
)

type EmergencyDetector struct {
	ID          string         `json:"id"`
	Type        EmergencyType  `json:"type"`
	Location    Location       `json:"location"`
	Status      DetectorStatus `json:"status"`
	LastTrigger *time.Time     `json:"last_trigger"`
	Sensitivity float64        `json:"sensitivity"`
}

type TrafficPhase string

const (
	PhaseNSGreen TrafficPhase = "NS_GREEN"
	PhaseEWGreen TrafficPhase = "EW_GREEN"
)

type TrafficIntersection struct {
	ID                 string       `json:"id"`
	Name               string       `json:"name"`
	Location           Location     `json:"location"`
	CurrentPhase       TrafficPhase `json:"current_phase"`
	PhaseTimeRemaining float64      `json:"phase_time_remaining"`
	VehicleCountNS     int          `json:"vehicle_count_ns"`
	VehicleCountEW     int          `json:"vehicle_count_ew"`
	QueueLengthNS      int          `json:"queue_length_ns"`
	QueueLengthEW      int          `json:"queue_length_ew"`
	AvgWaitTime        float64      `json:"avg_wait_time"`
	Throughput         int          `json:"throughput"`
	AdaptiveMode       bool         `json:"adaptive_mode"`
}

type CongestionLevel string

const (
	CongestionLow    CongestionLevel = "low"
	CongestionMedium CongestionLevel = "medium"
	CongestionHigh   CongestionLevel = "high"
)

type RoadSensor struct {
	ID               string          `json:"id"`
	Location         Location        `json:"location"`
	VehicleSpeedKMH  float64         `json:"vehicle_speed_kmh"`
	VehicleCount     int             `json:"vehicle_count"`
	OccupancyPercent float64         `json:"occupancy_percent"`
	CongestionLevel  CongestionLevel `json:"congestion_level"`
	SurfaceCondition string          `json:"surface_condition"`
	IncidentDetected bool            `json:"incident_detected"`
}

type ParkingZone struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Location            Location `json:"location"`
	Capacity            int      `json:"capacity"`
	Occupied            int      `json:"occupied"`
	EVChargingStations  int      `json:"ev_charging_stations"`
	EVChargingAvailable int      `json:"ev_charging_available"`
}

type AirQualityLevel string

const (
	AirGood               AirQualityLevel = "good"
	AirModerate           AirQualityLevel = "moderate"
	AirUnhealthySensitive AirQualityLevel = "unhealthy_sensitive"
	AirUnhealthy          AirQualityLevel = "unhealthy"
)

type AirQualitySensor struct {
	ID           string          `json:"id"`
	Location     Location        `json:"location"`
	PM25         float64         `json:"pm25"`
	PM10         float64         `json:"pm10"`
	CO2PPM       float64         `json:"co2_ppm"`
	NO2          float64         `json:"no2"`
	O3           float64         `json:"o3"`
	AQI          int             `json:"aqi"`
	QualityLevel AirQualityLevel `json:"quality_level"`
}

type PanelStatus string

const PanelOperational PanelStatus = "operational"

type SolarPanel struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Location        Location    `json:"location"`
	CapacityKW      float64     `json:"capacity_kw"`
	CurrentOutputKW float64     `json:"current_output_kw"`
	Efficiency      float64     `json:"efficiency"`
	PanelTemp       float64     `json:"panel_temp"`
	Status          PanelStatus `json:"status"`
}

type MeterType string

const (
	MeterResidential MeterType = "residential"
	MeterCommercial  MeterType = "commercial"
	MeterIndustrial  MeterType = "industrial"
)

type SmartMeter struct {
	ID                  string    `json:"id"`
	Type                MeterType `json:"type"`
	Location            Location  `json:"location"`
	CurrentConsumptionKW float64  `json:"current_consumption_kw"`
	DailyConsumptionKWH float64   `json:"daily_consumption_kwh"`
	PeakDemandKW        float64   `json:"peak_demand_kw"`
	PowerFactor         float64   `json:"power_factor"`
}

// ActiveEmergency is a manually or automatically raised city-wide
// incident, distinct from the fixed detector fleet.
type ActiveEmergency struct {
	ID        string        `json:"id"`
	Type      EmergencyType `json:"type"`
	Location  Location      `json:"location"`
	Timestamp time.Time     `json:"timestamp"`
	Status    string        `json:"status"`
}
