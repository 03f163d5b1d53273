// v4
// internal/loop/driver.go
package loop

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"urbantech/twin/internal/analytics"
	"urbantech/twin/internal/control"
	"urbantech/twin/internal/model"
	"urbantech/twin/internal/observability"
	"urbantech/twin/internal/sim"
)

const (
	// DefaultInterval is the tick cadence.
	DefaultInterval = 500 * time.Millisecond
	// errorBackoff is the pause after a failed tick before the loop
	// resumes.
	errorBackoff = 2 * time.Second
)

// Sink receives the combined output of a completed tick. Sinks must
// serialize or copy the payload before returning; the snapshot inside
// is only guaranteed stable until the next tick begins.
type Sink interface {
	Publish(ctx context.Context, out model.TickOutput) error
	Name() string
}

// Driver owns the tick pipeline: advance the simulator, run the
// decision engine, fold analytics and fan the result out. All pipeline
// state is single-writer from here.
type Driver struct {
	lg *slog.Logger

	sim       *sim.Simulator
	engine    *control.Engine
	analytics *analytics.Aggregator
	metrics   *observability.Metrics

	interval time.Duration
	sinks    []Sink

	lastOut model.TickOutput
	ticks   uint64
}

func NewDriver(lg *slog.Logger, s *sim.Simulator, e *control.Engine, a *analytics.Aggregator, m *observability.Metrics, interval time.Duration) *Driver {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Driver{lg: lg, sim: s, engine: e, analytics: a, metrics: m, interval: interval}
}

// AddSink registers a fan-out consumer. Not safe once Run has started.
func (d *Driver) AddSink(s Sink) { d.sinks = append(d.sinks, s) }

// Run drives ticks at the configured cadence until the context is
// cancelled. A failed tick is logged and followed by a short backoff;
// the loop itself survives any per-tick error.
func (d *Driver) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.lg.Info("tick driver started", "interval", d.interval, "sinks", len(d.sinks))

	for {
		select {
		case <-ctx.Done():
			d.lg.Info("tick driver stopped", "ticks", d.ticks)
			return ctx.Err()
		case now := <-ticker.C:
			if err := d.runTick(ctx, now); err != nil {
				d.lg.Error("tick failed", "tick", d.ticks, "error", err)
				d.metrics.TickError()
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(errorBackoff):
				}
			}
		}
	}
}

// runTick executes one full pipeline pass. Panics from any stage are
// converted into an error so a subsystem bug cannot take the loop down.
func (d *Driver) runTick(ctx context.Context, now time.Time) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tick panic: %v", r)
		}
	}()

	start := time.Now()

	snap := d.sim.Advance(now)
	batch := d.engine.Process(snap)
	results := d.engine.Apply(batch)
	d.analytics.Update(now, snap, batch)

	out := model.TickOutput{
		Timestamp: now,
		Sensors:   snap,
		Decisions: batch,
		Results:   results,
		KPIs:      d.analytics.KPIs(),
		Alerts:    d.engine.ActiveAlerts(),
	}
	d.lastOut = out
	d.ticks++

	for _, sink := range d.sinks {
		if perr := sink.Publish(ctx, out); perr != nil {
			// A dead sink must not stall the pipeline or the
			// remaining sinks.
			d.lg.Warn("sink publish failed", "sink", sink.Name(), "error", perr)
			d.metrics.SinkError(sink.Name())
		}
	}

	d.metrics.ObserveTick(time.Since(start), results.TotalActions, len(out.Alerts))
	return nil
}

// LastOutput returns the most recent tick output. Only meaningful from
// the driver goroutine or after Run has returned.
func (d *Driver) LastOutput() model.TickOutput { return d.lastOut }

// Ticks reports how many ticks completed successfully.
func (d *Driver) Ticks() uint64 { return d.ticks }
