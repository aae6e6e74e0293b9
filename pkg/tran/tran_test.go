package tran_test

import (
	"math"
	"testing"

	"github.com/halvorsen-eng/mnatran/pkg/circuit"
	"github.com/halvorsen-eng/mnatran/pkg/device"
	"github.com/halvorsen-eng/mnatran/pkg/newton"
	"github.com/halvorsen-eng/mnatran/pkg/tran"
	"github.com/halvorsen-eng/mnatran/pkg/waveform"
)

func TestIntegratorEmitsExpectedRowCount(t *testing.T) {
	src := device.NewVoltageSource("V1", []int{1, 0}, waveform.DC, waveform.Params{DCValue: 5})
	r := device.NewResistor("R1", []int{1, 0}, 1000)

	c := circuit.New("t", 1)
	if err := c.Build([]device.Device{src, r}, []string{"n1"}, device.BackwardEuler); err != nil {
		t.Fatalf("Build: %v", err)
	}

	driver := newton.NewDriver(1)
	const nPoints, nSubsteps = 10, 2
	it := tran.New(c, driver, device.BackwardEuler, 1e-3, nPoints, nSubsteps)

	var rows int
	var lastT float64
	err := it.Run(func(t float64, solution []float64) error {
		rows++
		lastT = t
		if math.Abs(solution[1]-5.0) > 1e-9 {
			return nil
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rows != nPoints+1 {
		t.Errorf("rows = %d, want %d", rows, nPoints+1)
	}
	if math.Abs(lastT-1e-3) > 1e-12 {
		t.Errorf("final emitted t = %g, want 1e-3", lastT)
	}
}

func TestIntegratorPropagatesEmitError(t *testing.T) {
	src := device.NewVoltageSource("V1", []int{1, 0}, waveform.DC, waveform.Params{DCValue: 5})
	r := device.NewResistor("R1", []int{1, 0}, 1000)

	c := circuit.New("t", 1)
	if err := c.Build([]device.Device{src, r}, []string{"n1"}, device.BackwardEuler); err != nil {
		t.Fatalf("Build: %v", err)
	}

	driver := newton.NewDriver(1)
	it := tran.New(c, driver, device.BackwardEuler, 1e-3, 5, 1)

	var wantErr error = errSentinel{}
	err := it.Run(func(t float64, solution []float64) error { return wantErr })
	if err != wantErr {
		t.Errorf("Run err = %v, want %v propagated from emit", err, wantErr)
	}
}

type errSentinel struct{}

func (errSentinel) Error() string { return "mock emit error" }
