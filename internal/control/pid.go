// v2
// internal/control/pid.go
package control

import "errors"

// ErrNonPositiveStep is returned when a caller passes dt <= 0; the
// derivative term divides by dt, so a zero step would poison the
// output with Inf/NaN instead of failing loudly.
var ErrNonPositiveStep = errors.New("pid: time step must be positive")

// PID is a proportional-integral-derivative feedback controller. One
// instance regulates one target for the lifetime of its owner; state
// is never reset implicitly. The integral term is deliberately
// unclamped: sustained error accumulates without bound (windup), which
// matches the behavior the rest of the pipeline was tuned against.
type PID struct {
	Kp       float64
	Ki       float64
	Kd       float64
	Setpoint float64

	integral float64
	lastErr  float64
}

func NewPID(kp, ki, kd, setpoint float64) *PID {
	return &PID{Kp: kp, Ki: ki, Kd: kd, Setpoint: setpoint}
}

// Update advances the controller by dt seconds against the measured
// value and returns the control output.
func (p *PID) Update(measured, dt float64) (float64, error) {
	if dt <= 0 {
		return 0, ErrNonPositiveStep
	}
	err := p.Setpoint - measured
	p.integral += err * dt
	derivative := (err - p.lastErr) / dt
	out := p.Kp*err + p.Ki*p.integral + p.Kd*derivative
	p.lastErr = err
	return out, nil
}

// Integral exposes the accumulated integral error for diagnostics.
func (p *PID) Integral() float64 { return p.integral }
