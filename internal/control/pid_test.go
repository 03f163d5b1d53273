// v1
// internal/control/pid_test.go
package control

import (
	"math"
	"testing"
)

func TestPIDZeroErrorProducesZeroOutput(t *testing.T) {
	p := NewPID(0.5, 0.1, 0.2, 75)
	for i := 0; i < 50; i++ {
		out, err := p.Update(75, 0.5)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if out != 0 {
			t.Fatalf("call %d: expected 0 output at setpoint, got %g", i, out)
		}
	}
	if p.Integral() != 0 {
		t.Fatalf("integral accumulated at setpoint: %g", p.Integral())
	}
}

func TestPIDRejectsNonPositiveStep(t *testing.T) {
	p := NewPID(0.5, 0.1, 0.2, 10)
	for _, dt := range []float64{0, -0.5} {
		out, err := p.Update(5, dt)
		if err != ErrNonPositiveStep {
			t.Fatalf("dt=%g: expected ErrNonPositiveStep, got out=%g err=%v", dt, out, err)
		}
	}
	// A failed call must not have mutated controller state.
	out, err := p.Update(10, 0.5)
	if err != nil || out != 0 {
		t.Fatalf("state mutated by rejected call: out=%g err=%v", out, err)
	}
}

func TestPIDSingleStepComposition(t *testing.T) {
	p := NewPID(0.5, 0.1, 0.2, 100)
	// error = 20, integral = 20*0.5 = 10, derivative = (20-0)/0.5 = 40
	out, err := p.Update(80, 0.5)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	want := 0.5*20 + 0.1*10 + 0.2*40
	if math.Abs(out-want) > 1e-9 {
		t.Fatalf("output %g, want %g", out, want)
	}
}

func TestPIDIntegralWindupUnbounded(t *testing.T) {
	p := NewPID(0, 1, 0, 10)
	var last float64
	for i := 0; i < 100; i++ {
		out, err := p.Update(0, 1)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if out <= last {
			t.Fatalf("integral-only output stopped growing at call %d: %g <= %g", i, out, last)
		}
		last = out
	}
}

func TestPIDNeverProducesNaN(t *testing.T) {
	p := NewPID(0.5, 0.1, 0.2, 50)
	for i := 0; i < 10; i++ {
		out, err := p.Update(float64(i*13%60), 0.5)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if math.IsNaN(out) || math.IsInf(out, 0) {
			t.Fatalf("non-finite output %g", out)
		}
	}
}
