// v3
// internal/control/traffic.go
package control

import (
	"log/slog"
	"math"

	"urbantech/twin/internal/model"
)

const (
	// queueNorm normalizes a queue length into a [0,1] pressure.
	queueNorm = 30.0
	// earlySwitchShare is the pressure share of the waiting approach
	// above which an early phase switch is considered.
	earlySwitchShare = 0.7
	// earlySwitchWindow is the remaining-phase-time threshold below
	// which an early switch may fire.
	earlySwitchWindow = 10.0
	// criticalQueue triggers the emergency green extension.
	criticalQueue = 40
	baseGreen     = 20.0
	maxGreen      = 60.0
)

// TrafficController computes per-intersection phase decisions from
// queue pressure. Deterministic threshold logic; the upstream naming
// suggested a learned policy but no Q-table ever existed, so this is
// implemented (and named) as plain rule-based control.
type TrafficController struct {
	lg *slog.Logger
}

func NewTrafficController(lg *slog.Logger) *TrafficController {
	return &TrafficController{lg: lg}
}

func (t *TrafficController) Optimize(intersections []model.TrafficIntersection) []model.TrafficDecision {
	decisions := make([]model.TrafficDecision, 0, len(intersections))

	for _, in := range intersections {
		nsPressure := float64(in.QueueLengthNS) / queueNorm
		ewPressure := float64(in.QueueLengthEW) / queueNorm

		// Share of total pressure per approach; an idle junction
		// splits evenly rather than dividing by zero.
		nsRatio, ewRatio := 0.5, 0.5
		if total := nsPressure + ewPressure; total > 0 {
			nsRatio = nsPressure / total
			ewRatio = ewPressure / total
		}

		shouldSwitch := false
		newDuration := in.PhaseTimeRemaining

		switch {
		case in.CurrentPhase == model.PhaseNSGreen && ewRatio > earlySwitchShare && in.PhaseTimeRemaining < earlySwitchWindow:
			shouldSwitch = true
			newDuration = baseGreen + math.Min(8, (ewRatio-0.5)*16)
		case in.CurrentPhase == model.PhaseEWGreen && nsRatio > earlySwitchShare && in.PhaseTimeRemaining < earlySwitchWindow:
			shouldSwitch = true
			newDuration = baseGreen + math.Min(8, (nsRatio-0.5)*16)
		}

		// Critical congestion overrides the early-switch duration:
		// extend the green by half, capped at the maximum.
		if in.QueueLengthNS > criticalQueue || in.QueueLengthEW > criticalQueue {
			newDuration = math.Min(maxGreen, newDuration*1.5)
		}

		action := model.TrafficActionMaintain
		if shouldSwitch {
			action = model.TrafficActionSwitchPhase
			t.lg.Debug("early phase switch", "intersection", in.ID, "duration", newDuration)
		}

		decisions = append(decisions, model.TrafficDecision{
			IntersectionID:  in.ID,
			Action:          action,
			NewDuration:     newDuration,
			NSPressure:      nsPressure,
			EWPressure:      ewPressure,
			EfficiencyScore: 1.0 - (nsPressure+ewPressure)/2,
		})
	}

	return decisions
}
