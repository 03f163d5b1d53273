// v3
// internal/model/decision.go
package model

import "time"

// Traffic-phase actions.
const (
	TrafficActionMaintain    = "maintain"
	TrafficActionSwitchPhase = "switch_phase"
)

type TrafficDecision struct {
	IntersectionID  string  `json:"intersection_id"`
	Action          string  `json:"action"`
	NewDuration     float64 `json:"new_duration"`
	NSPressure      float64 `json:"ns_pressure"`
	EWPressure      float64 `json:"ew_pressure"`
	EfficiencyScore float64 `json:"efficiency_score"`
}

// Power-balance actions.
const (
	PowerActionMaintain     = "maintain"
	PowerActionLoadShedding = "load_shedding"
	PowerActionIncreaseLoad = "increase_load"
)

type PowerDecision struct {
	GridID               string  `json:"grid_id"`
	Action               string  `json:"action"`
	TargetLoadMW         float64 `json:"target_load_mw"`
	Correction           float64 `json:"correction"`
	BackupActivated      bool    `json:"backup_activated"`
	LoadReductionMW      float64 `json:"load_reduction_mw"`
	Efficiency           float64 `json:"efficiency"`
	RenewableIntegration float64 `json:"renewable_integration"`
}

// EmergencyResponse is one dispatch record. Every matching source
// (detector, failed grid, leaking water system) produces its own
// record; overlapping physical events are not deduplicated.
type EmergencyResponse struct {
	SourceID        string        `json:"source_id"`
	Type            EmergencyType `json:"type"`
	Location        Location      `json:"location"`
	Priority        int           `json:"priority"`
	ResponseTimeMin float64       `json:"response_time_min"`
	Actions         []string      `json:"actions"`
	Status          string        `json:"status"`
	Timestamp       time.Time     `json:"timestamp"`
}

type AirQualityRecommendation struct {
	SensorID     string          `json:"sensor_id"`
	Location     Location        `json:"location"`
	AQI          int             `json:"aqi"`
	QualityLevel AirQualityLevel `json:"quality_level"`
	Actions      []string        `json:"actions"`
	Urgency      string          `json:"urgency"`
}

// DecisionBatch is the full output of one DecisionEngine pass. Records
// are produced fresh each tick; none persist across ticks.
type DecisionBatch struct {
	Traffic    []TrafficDecision          `json:"traffic"`
	Power      []PowerDecision            `json:"power"`
	Emergency  []EmergencyResponse        `json:"emergency"`
	AirQuality []AirQualityRecommendation `json:"air_quality"`
}

type ApplyResults struct {
	TrafficActionsApplied       int `json:"traffic_actions_applied"`
	PowerActionsApplied         int `json:"power_actions_applied"`
	EmergencyResponsesInitiated int `json:"emergency_responses_initiated"`
	AirQualityActions           int `json:"air_quality_actions"`
	TotalActions                int `json:"total_actions"`
}

type AlertSeverity string

const (
	SeverityLow    AlertSeverity = "low"
	SeverityMedium AlertSeverity = "medium"
	SeverityHigh   AlertSeverity = "high"
)

// Alert is recomputed from scratch every tick; an alert never outlives
// the condition that raised it.
type Alert struct {
	Type     string        `json:"type"`
	Severity AlertSeverity `json:"severity"`
	Message  string        `json:"message"`
	Location Location      `json:"location"`
}
