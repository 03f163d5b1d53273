// v4
// internal/control/power.go
package control

import (
	"log/slog"
	"math"
	"time"

	"urbantech/twin/internal/model"
)

const (
	// targetLoadShare is the per-grid PID setpoint as a share of
	// capacity.
	targetLoadShare = 0.75
	sheddingShare   = 0.95
	sheddingTarget  = 0.85
	underloadShare  = 0.30

	pidKp = 0.5
	pidKi = 0.1
	pidKd = 0.2

	loadHistoryCap = 100
)

// LoadSample is one tick of system-wide demand recorded in the
// balancer's bounded history.
type LoadSample struct {
	Timestamp  time.Time `json:"timestamp"`
	TotalLoad  float64   `json:"total_load"`
	LoadFactor float64   `json:"load_factor"`
}

// GridBalancer distributes demand across grids. One PID per grid,
// created lazily on first sight and kept for the balancer's lifetime.
type GridBalancer struct {
	lg      *slog.Logger
	stepSec float64

	pids    map[string]*PID
	history *model.Ring[LoadSample]
}

func NewGridBalancer(lg *slog.Logger, stepSec float64) *GridBalancer {
	if stepSec <= 0 {
		stepSec = 0.5
	}
	return &GridBalancer{
		lg:      lg,
		stepSec: stepSec,
		pids:    make(map[string]*PID),
		history: model.NewRing[LoadSample](loadHistoryCap),
	}
}

func (b *GridBalancer) Balance(now time.Time, grids []model.PowerGrid, panels []model.SolarPanel, meters []model.SmartMeter) []model.PowerDecision {
	var totalGeneration, totalSolar, totalConsumption float64
	for _, g := range grids {
		totalGeneration += g.CapacityMW
	}
	for _, p := range panels {
		totalSolar += p.CurrentOutputKW / 1000
	}
	for _, m := range meters {
		totalConsumption += m.CurrentConsumptionKW / 1000
	}

	availablePower := totalGeneration + totalSolar
	loadFactor := 0.0
	if availablePower > 0 {
		loadFactor = totalConsumption / availablePower
	}

	renewable := 0.0
	if totalConsumption > 0 {
		renewable = totalSolar / totalConsumption
	}

	decisions := make([]model.PowerDecision, 0, len(grids))
	for _, g := range grids {
		pid, ok := b.pids[g.ID]
		if !ok {
			pid = NewPID(pidKp, pidKi, pidKd, g.CapacityMW*targetLoadShare)
			b.pids[g.ID] = pid
			b.lg.Info("pid created", "grid", g.ID, "setpoint_mw", pid.Setpoint)
		}

		targetLoad := g.CapacityMW * loadFactor
		correction, err := pid.Update(g.CurrentLoadMW, b.stepSec)
		if err != nil {
			// stepSec is validated at construction; treat as a
			// zero correction if it ever slips through.
			b.lg.Error("pid update failed", "grid", g.ID, "error", err)
			correction = 0
		}

		action := model.PowerActionMaintain
		targetReduction := 0.0
		switch {
		case g.CurrentLoadMW > g.CapacityMW*sheddingShare:
			action = model.PowerActionLoadShedding
			targetReduction = g.CurrentLoadMW - g.CapacityMW*sheddingTarget
		case g.CurrentLoadMW < g.CapacityMW*underloadShare:
			action = model.PowerActionIncreaseLoad
		}

		efficiency := 1.0
		if g.CapacityMW > 0 {
			efficiency = 1.0 - math.Abs(targetLoad-g.CurrentLoadMW)/g.CapacityMW
		}

		decisions = append(decisions, model.PowerDecision{
			GridID:               g.ID,
			Action:               action,
			TargetLoadMW:         targetLoad,
			Correction:           correction,
			BackupActivated:      g.Status == model.GridOverloadWarn || g.Status == model.GridFailure,
			LoadReductionMW:      targetReduction,
			Efficiency:           efficiency,
			RenewableIntegration: renewable,
		})
	}

	b.history.Append(LoadSample{Timestamp: now, TotalLoad: totalConsumption, LoadFactor: loadFactor})
	return decisions
}

// LoadHistory returns the bounded demand history, oldest first.
func (b *GridBalancer) LoadHistory() []LoadSample { return b.history.Items() }
