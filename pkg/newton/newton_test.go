package newton

import (
	"math"
	"testing"

	"github.com/halvorsen-eng/mnatran/pkg/circuit"
	"github.com/halvorsen-eng/mnatran/pkg/device"
	"github.com/halvorsen-eng/mnatran/pkg/waveform"
)

func buildLinearCircuit(t *testing.T) *circuit.Circuit {
	t.Helper()
	src := device.NewVoltageSource("V1", []int{1, 0}, waveform.DC, waveform.Params{DCValue: 5})
	r := device.NewResistor("R1", []int{1, 0}, 1000)

	c := circuit.New("t", 1)
	if err := c.Build([]device.Device{src, r}, []string{"n1"}, device.BackwardEuler); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return c
}

func TestSolveLinearCircuitOneIteration(t *testing.T) {
	c := buildLinearCircuit(t)
	d := NewDriver(1)
	ctx := &device.Context{FirstStep: true, Method: device.BackwardEuler, Dt: 1e-6, BaseDt: 1e-6}

	sol, err := d.Solve(c, ctx)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if math.Abs(sol[1]-5.0) > 1e-9 {
		t.Errorf("V(1) = %g, want 5", sol[1])
	}
}

func TestSolveReusesIterateBufferAcrossSteps(t *testing.T) {
	c := buildLinearCircuit(t)
	d := NewDriver(1)
	ctx := &device.Context{FirstStep: true, Method: device.BackwardEuler, Dt: 1e-6, BaseDt: 1e-6}

	if _, err := d.Solve(c, ctx); err != nil {
		t.Fatalf("first Solve: %v", err)
	}
	first := d.iterate

	ctx.FirstStep = false
	if _, err := d.Solve(c, ctx); err != nil {
		t.Fatalf("second Solve: %v", err)
	}
	if &d.iterate[0] != &first[0] {
		t.Error("iterate buffer was reallocated across steps; expected reuse")
	}
}

func buildDiodeCircuit(t *testing.T) *circuit.Circuit {
	t.Helper()
	src := device.NewVoltageSource("V1", []int{1, 0}, waveform.DC, waveform.Params{DCValue: 5})
	r := device.NewResistor("R1", []int{1, 2}, 1000)
	dd := device.NewDiode("D1", []int{2, 0}, device.DefaultDiodeIs, device.DefaultDiodeN)

	c := circuit.New("t", 2)
	if err := c.Build([]device.Device{src, r, dd}, []string{"n1", "n2"}, device.BackwardEuler); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return c
}

func TestSolveNonlinearCircuitConverges(t *testing.T) {
	c := buildDiodeCircuit(t)
	d := NewDriver(1)
	ctx := &device.Context{FirstStep: true, Method: device.BackwardEuler, Dt: 1e-6, BaseDt: 1e-6}

	sol, err := d.Solve(c, ctx)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	// A forward-biased diode clamps V(2) well below the 5V rail.
	if sol[2] <= 0 || sol[2] >= 5 {
		t.Errorf("V(2) = %g, expected a diode drop strictly between 0 and 5", sol[2])
	}
}
