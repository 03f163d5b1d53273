// v1
// internal/sim/weather.go
package sim

import "math"

// Weather is the per-tick ambient condition affecting grids, air
// quality and solar output.
type Weather struct {
	Condition      string
	TempC          float64
	SolarIntensity float64
	Humidity       float64
	WindSpeed      float64
}

// simulateWeather derives a diurnal weather sample: solar intensity
// follows a half-sine between 06:00 and 18:00, temperature a full-day
// sine around 15C.
func (s *Simulator) simulateWeather(hour int) Weather {
	var base float64
	if hour >= 6 && hour <= 18 {
		base = math.Sin(float64(hour-6) * math.Pi / 12)
	}

	conditions := []string{"clear", "clear", "clear", "cloudy", "rainy"}
	return Weather{
		Condition:      conditions[s.rng.Intn(len(conditions))],
		TempC:          15 + 10*math.Sin(float64(hour)*math.Pi/12) + s.gauss(2),
		SolarIntensity: math.Max(0, base+s.gauss(0.1)),
		Humidity:       40 + s.rng.Float64()*40,
		WindSpeed:      s.rng.Float64() * 15,
	}
}
