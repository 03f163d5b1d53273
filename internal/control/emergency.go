// v3
// internal/control/emergency.go
package control

import (
	"log/slog"
	"time"

	"urbantech/twin/internal/model"
)

const respondingStatus = "responding"

// Fixed dispatch records for sources that bypass the detector table.
var (
	powerFailureActions = []string{
		"activate_backup_power",
		"isolate_failed_section",
		"redistribute_load",
		"dispatch_repair_team",
	}
	waterLeakActions = []string{
		"isolate_affected_section",
		"activate_backup_supply",
		"dispatch_maintenance_team",
		"monitor_pressure",
	}
)

// Dispatcher turns raw emergency signals into response records. Pure
// rule-based dispatch against a static protocol table; there is no
// learned component. Three sources are scanned independently each tick
// and every match yields its own record — two sources describing the
// same physical event are intentionally not merged.
type Dispatcher struct {
	lg        *slog.Logger
	protocols ProtocolTable
}

func NewDispatcher(lg *slog.Logger, protocols ProtocolTable) *Dispatcher {
	if protocols == nil {
		protocols = DefaultProtocols()
	}
	return &Dispatcher{lg: lg, protocols: protocols}
}

func (d *Dispatcher) DetectAndRespond(now time.Time, detectors []model.EmergencyDetector, grids []model.PowerGrid, waterSystems []model.WaterSystem) []model.EmergencyResponse {
	var responses []model.EmergencyResponse

	for _, det := range detectors {
		if det.Status != model.DetectorAlert {
			continue
		}
		p := d.protocols.Lookup(det.Type)
		responses = append(responses, model.EmergencyResponse{
			SourceID:        det.ID,
			Type:            det.Type,
			Location:        det.Location,
			Priority:        p.Priority,
			ResponseTimeMin: p.ResponseTimeMin,
			Actions:         actionsFor(det.Type),
			Status:          respondingStatus,
			Timestamp:       now,
		})
		d.lg.Warn("detector alert dispatched", "detector", det.ID, "type", det.Type, "priority", p.Priority)
	}

	for _, g := range grids {
		if g.Status != model.GridFailure {
			continue
		}
		responses = append(responses, model.EmergencyResponse{
			SourceID:        g.ID,
			Type:            model.EmergencyPowerFailure,
			Location:        g.Location,
			Priority:        2,
			ResponseTimeMin: 15,
			Actions:         append([]string(nil), powerFailureActions...),
			Status:          respondingStatus,
			Timestamp:       now,
		})
		d.lg.Warn("grid failure dispatched", "grid", g.ID)
	}

	for _, ws := range waterSystems {
		if !ws.LeakDetected {
			continue
		}
		responses = append(responses, model.EmergencyResponse{
			SourceID:        ws.ID,
			Type:            model.EmergencyWaterLeak,
			Location:        ws.Location,
			Priority:        3,
			ResponseTimeMin: 20,
			Actions:         append([]string(nil), waterLeakActions...),
			Status:          respondingStatus,
			Timestamp:       now,
		})
		d.lg.Warn("water leak dispatched", "system", ws.ID)
	}

	return responses
}
