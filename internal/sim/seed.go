// v2
// internal/sim/seed.go
package sim

import (
	"fmt"

	"urbantech/twin/internal/model"
)

// Fleet sizes match the reference deployment of one city district.
const (
	numGrids         = 5
	numWaterSystems  = 4
	numDetectors     = 10
	numIntersections = 8
	numRoadSensors   = 15
	numParkingZones  = 6
	numAirSensors    = 12
	numSolarPanels   = 5
	numSmartMeters   = 20
)

func (s *Simulator) seedFleet() {
	s.grids = make([]model.PowerGrid, 0, numGrids)
	for i := 0; i < numGrids; i++ {
		s.grids = append(s.grids, model.PowerGrid{
			ID:              fmt.Sprintf("GRID_%d", i+1),
			Name:            fmt.Sprintf("Power Grid Zone %d", i+1),
			Location:        s.randomLocation(),
			CapacityMW:      50 + s.rng.Float64()*150,
			Voltage:         220.0,
			Frequency:       50.0,
			Status:          model.GridOperational,
			BackupAvailable: true,
			TransformerTemp: 45.0,
		})
	}

	s.waterSystems = make([]model.WaterSystem, 0, numWaterSystems)
	for i := 0; i < numWaterSystems; i++ {
		s.waterSystems = append(s.waterSystems, model.WaterSystem{
			ID:               fmt.Sprintf("WATER_%d", i+1),
			Name:             fmt.Sprintf("Water District %d", i+1),
			Location:         s.randomLocation(),
			PressureBar:      4.5,
			FlowRateM3H:      100 + s.rng.Float64()*400,
			QualityIndex:     0.95,
			TankLevelPercent: 80.0,
			Status:           model.WaterOperational,
		})
	}

	detectorTypes := []model.EmergencyType{
		model.EmergencyFire, model.EmergencyFlood, model.EmergencyGas, model.EmergencyStructural,
	}
	s.detectors = make([]model.EmergencyDetector, 0, numDetectors)
	for i := 0; i < numDetectors; i++ {
		s.detectors = append(s.detectors, model.EmergencyDetector{
			ID:          fmt.Sprintf("EMG_%d", i+1),
			Type:        detectorTypes[s.rng.Intn(len(detectorTypes))],
			Location:    s.randomLocation(),
			Status:      model.DetectorNormal,
			Sensitivity: 0.8,
		})
	}

	s.intersections = make([]model.TrafficIntersection, 0, numIntersections)
	for i := 0; i < numIntersections; i++ {
		s.intersections = append(s.intersections, model.TrafficIntersection{
			ID:                 fmt.Sprintf("INT_%d", i+1),
			Name:               fmt.Sprintf("Intersection %d", i+1),
			Location:           s.randomLocation(),
			CurrentPhase:       model.PhaseNSGreen,
			PhaseTimeRemaining: 30,
			AdaptiveMode:       true,
		})
	}

	s.roadSensors = make([]model.RoadSensor, 0, numRoadSensors)
	for i := 0; i < numRoadSensors; i++ {
		s.roadSensors = append(s.roadSensors, model.RoadSensor{
			ID:               fmt.Sprintf("ROAD_%d", i+1),
			Location:         s.randomLocation(),
			VehicleSpeedKMH:  50.0,
			CongestionLevel:  model.CongestionLow,
			SurfaceCondition: "dry",
		})
	}

	s.parkingZones = make([]model.ParkingZone, 0, numParkingZones)
	for i := 0; i < numParkingZones; i++ {
		capacity := 50 + s.rng.Intn(151)
		s.parkingZones = append(s.parkingZones, model.ParkingZone{
			ID:                 fmt.Sprintf("PARK_%d", i+1),
			Name:               fmt.Sprintf("Parking Zone %d", i+1),
			Location:           s.randomLocation(),
			Capacity:           capacity,
			Occupied:           s.rng.Intn(capacity + 1),
			EVChargingStations: 2 + s.rng.Intn(9),
		})
	}

	s.airSensors = make([]model.AirQualitySensor, 0, numAirSensors)
	for i := 0; i < numAirSensors; i++ {
		s.airSensors = append(s.airSensors, model.AirQualitySensor{
			ID:           fmt.Sprintf("AIR_%d", i+1),
			Location:     s.randomLocation(),
			PM25:         15.0,
			PM10:         25.0,
			CO2PPM:       400.0,
			NO2:          20.0,
			O3:           50.0,
			AQI:          50,
			QualityLevel: model.AirGood,
		})
	}

	s.solarPanels = make([]model.SolarPanel, 0, numSolarPanels)
	for i := 0; i < numSolarPanels; i++ {
		s.solarPanels = append(s.solarPanels, model.SolarPanel{
			ID:         fmt.Sprintf("SOLAR_%d", i+1),
			Name:       fmt.Sprintf("Solar Array %d", i+1),
			Location:   s.randomLocation(),
			CapacityKW: 100 + s.rng.Float64()*400,
			Efficiency: 0.18,
			PanelTemp:  25.0,
			Status:     model.PanelOperational,
		})
	}

	meterTypes := []model.MeterType{model.MeterResidential, model.MeterCommercial, model.MeterIndustrial}
	s.smartMeters = make([]model.SmartMeter, 0, numSmartMeters)
	for i := 0; i < numSmartMeters; i++ {
		s.smartMeters = append(s.smartMeters, model.SmartMeter{
			ID:          fmt.Sprintf("METER_%d", i+1),
			Type:        meterTypes[s.rng.Intn(len(meterTypes))],
			Location:    s.randomLocation(),
			PowerFactor: 0.95,
		})
	}
}

func (s *Simulator) randomLocation() model.Location {
	return model.Location{X: s.rng.Float64() * 100, Y: s.rng.Float64() * 100}
}
