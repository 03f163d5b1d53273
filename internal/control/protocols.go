// v2
// internal/control/protocols.go
package control

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"urbantech/twin/internal/model"
)

// Protocol is one row of the dispatch table.
type Protocol struct {
	Priority        int     `yaml:"priority"`
	ResponseTimeMin float64 `yaml:"response_time_min"`
}

// ProtocolTable maps emergency types to their dispatch parameters.
type ProtocolTable map[model.EmergencyType]Protocol

// Fallback for types missing from the table.
const (
	fallbackPriority        = 3
	fallbackResponseTimeMin = 15
)

// DefaultProtocols returns the built-in dispatch table.
func DefaultProtocols() ProtocolTable {
	return ProtocolTable{
		model.EmergencyFire:         {Priority: 1, ResponseTimeMin: 3},
		model.EmergencyGas:          {Priority: 1, ResponseTimeMin: 2},
		model.EmergencyFlood:        {Priority: 2, ResponseTimeMin: 5},
		model.EmergencyStructural:   {Priority: 2, ResponseTimeMin: 10},
		model.EmergencyPowerFailure: {Priority: 3, ResponseTimeMin: 15},
		model.EmergencyWaterLeak:    {Priority: 3, ResponseTimeMin: 20},
	}
}

// LoadProtocols overlays entries from a YAML file onto the defaults.
// Types absent from the file keep their built-in parameters.
func LoadProtocols(path string) (ProtocolTable, error) {
	table := DefaultProtocols()
	if path == "" {
		return table, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read protocols %s: %w", path, err)
	}
	overlay := map[string]Protocol{}
	if err := yaml.Unmarshal(b, &overlay); err != nil {
		return nil, fmt.Errorf("parse protocols %s: %w", path, err)
	}
	for typ, p := range overlay {
		if p.Priority < 1 || p.ResponseTimeMin <= 0 {
			return nil, fmt.Errorf("protocol %s: priority and response_time_min must be positive", typ)
		}
		table[model.EmergencyType(typ)] = p
	}
	return table, nil
}

// Lookup resolves a type against the table, falling back to generic
// dispatch parameters for unrecognised types.
func (t ProtocolTable) Lookup(typ model.EmergencyType) Protocol {
	if p, ok := t[typ]; ok {
		return p
	}
	return Protocol{Priority: fallbackPriority, ResponseTimeMin: fallbackResponseTimeMin}
}

// responseActions holds the fixed per-type action checklists. The fire
// checklist is exactly five actions; anything unrecognised gets the
// generic two-step fallback.
var responseActions = map[model.EmergencyType][]string{
	model.EmergencyFire: {
		"alert_fire_department",
		"evacuate_area",
		"activate_sprinklers",
		"cut_power_supply",
		"establish_perimeter",
	},
	model.EmergencyFlood: {
		"alert_authorities",
		"activate_pumps",
		"close_water_valves",
		"evacuate_low_areas",
		"monitor_water_levels",
	},
	model.EmergencyGas: {
		"alert_hazmat_team",
		"evacuate_immediate_area",
		"shut_off_gas_supply",
		"establish_exclusion_zone",
		"monitor_air_quality",
	},
	model.EmergencyStructural: {
		"alert_engineering_team",
		"evacuate_building",
		"establish_safety_perimeter",
		"assess_stability",
		"deploy_monitoring_equipment",
	},
}

func actionsFor(typ model.EmergencyType) []string {
	if actions, ok := responseActions[typ]; ok {
		return append([]string(nil), actions...)
	}
	return []string{"alert_authorities", "assess_situation"}
}
