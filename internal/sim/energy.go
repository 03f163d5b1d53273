// v2
// internal/sim/energy.go
package sim

import (
	"math"

	"urbantech/twin/internal/model"
)

func (s *Simulator) updateAirQuality(rush bool, w Weather) {
	trafficFactor := 1.0
	if rush {
		trafficFactor = 1.5
	}

	weatherFactor := 1.0
	switch {
	case w.Condition == "rainy":
		weatherFactor = 0.7
	case w.WindSpeed > 10:
		weatherFactor = 0.8
	}

	for i := range s.airSensors {
		a := &s.airSensors[i]

		a.PM25 = math.Max(0, 10+15*trafficFactor*weatherFactor+s.gauss(3))
		a.PM10 = a.PM25*1.5 + s.gauss(5)
		a.CO2PPM = 400 + 100*trafficFactor + s.gauss(20)
		a.NO2 = 15 + 25*trafficFactor*weatherFactor + s.gauss(5)
		a.O3 = 50 + s.gauss(10)

		// Simplified composite AQI: worst normalized pollutant wins.
		aqi := math.Max(a.PM25*2, a.PM10)
		aqi = math.Max(aqi, (a.CO2PPM-400)*0.1)
		aqi = math.Max(aqi, a.NO2*1.5)
		a.AQI = int(aqi)

		switch {
		case a.AQI < 50:
			a.QualityLevel = model.AirGood
		case a.AQI < 100:
			a.QualityLevel = model.AirModerate
		case a.AQI < 150:
			a.QualityLevel = model.AirUnhealthySensitive
		default:
			a.QualityLevel = model.AirUnhealthy
		}
	}
}

func (s *Simulator) updateSolarPanels(w Weather) {
	intensityFactor := 1.0
	switch w.Condition {
	case "rainy":
		intensityFactor = 0.2
	case "cloudy":
		intensityFactor = 0.5
	}

	for i := range s.solarPanels {
		p := &s.solarPanels[i]

		p.CurrentOutputKW = p.CapacityKW * p.Efficiency * w.SolarIntensity * intensityFactor
		p.PanelTemp = w.TempC + w.SolarIntensity*30

		// Cell efficiency degrades above 25C.
		if p.PanelTemp > 25 {
			tempLoss := (p.PanelTemp - 25) * 0.004
			p.Efficiency = math.Max(0.10, 0.18-tempLoss)
		}
	}
}

func (s *Simulator) updateSmartMeters(night bool) {
	for i := range s.smartMeters {
		m := &s.smartMeters[i]

		var base float64
		switch m.Type {
		case model.MeterResidential:
			if night {
				base = 0.5 + s.rng.Float64()*1.5
			} else {
				base = 2 + s.rng.Float64()*3
			}
		case model.MeterCommercial:
			if night {
				base = 1 + s.rng.Float64()*2
			} else {
				base = 10 + s.rng.Float64()*20
			}
		default: // industrial runs around the clock
			base = 50 + s.rng.Float64()*100
		}

		m.CurrentConsumptionKW = base
		m.DailyConsumptionKWH += base * s.stepSec / 3600

		if m.CurrentConsumptionKW > m.PeakDemandKW {
			m.PeakDemandKW = m.CurrentConsumptionKW
		}

		m.PowerFactor = clamp(0.95+s.gauss(0.02), 0.8, 1.0)
	}
}
