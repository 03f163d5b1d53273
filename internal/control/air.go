// v2
// internal/control/air.go
package control

import (
	"log/slog"
	"time"

	"urbantech/twin/internal/model"
)

const (
	aqiAlertThreshold  = 100
	aqiUrgentThreshold = 150
	aqiHistoryCap      = 100
)

// AQISample is a rolling average-AQI history entry.
type AQISample struct {
	Timestamp time.Time `json:"timestamp"`
	AvgAQI    float64   `json:"avg_aqi"`
}

var airQualityActions = []string{
	"reduce_traffic_speed_limits",
	"encourage_public_transport",
	"activate_air_filtration",
	"alert_sensitive_groups",
}

// AirAdvisor flags sensors above the AQI alert threshold. Stateless
// per tick apart from the rolling average history.
type AirAdvisor struct {
	lg      *slog.Logger
	history *model.Ring[AQISample]
}

func NewAirAdvisor(lg *slog.Logger) *AirAdvisor {
	return &AirAdvisor{lg: lg, history: model.NewRing[AQISample](aqiHistoryCap)}
}

func (a *AirAdvisor) Advise(now time.Time, sensors []model.AirQualitySensor) []model.AirQualityRecommendation {
	var recs []model.AirQualityRecommendation
	var sum float64

	for _, s := range sensors {
		sum += float64(s.AQI)
		if s.AQI <= aqiAlertThreshold {
			continue
		}
		urgency := "medium"
		if s.AQI > aqiUrgentThreshold {
			urgency = "high"
		}
		recs = append(recs, model.AirQualityRecommendation{
			SensorID:     s.ID,
			Location:     s.Location,
			AQI:          s.AQI,
			QualityLevel: s.QualityLevel,
			Actions:      append([]string(nil), airQualityActions...),
			Urgency:      urgency,
		})
	}

	avg := 0.0
	if len(sensors) > 0 {
		avg = sum / float64(len(sensors))
	}
	a.history.Append(AQISample{Timestamp: now, AvgAQI: avg})

	return recs
}

// History returns the rolling average-AQI samples, oldest first.
func (a *AirAdvisor) History() []AQISample { return a.history.Items() }
