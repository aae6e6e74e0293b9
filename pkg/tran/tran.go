// Package tran implements the Time Integrator (spec.md §4.5): fixed-step
// backward/forward Euler or trapezoidal integration driven by the Newton
// solver in pkg/newton, emitting an accepted-solution callback at the
// requested trace cadence.
package tran

import (
	"github.com/halvorsen-eng/mnatran/pkg/circuit"
	"github.com/halvorsen-eng/mnatran/pkg/device"
	"github.com/halvorsen-eng/mnatran/pkg/newton"
)

// Emit is called once per traced step with the accepted solution vector
// (owned by the driver; copy it if retaining beyond the call).
type Emit func(t float64, solution []float64) error

// Integrator runs a fixed-step transient analysis over a built circuit.
type Integrator struct {
	Circuit   *circuit.Circuit
	Driver    *newton.Driver
	Method    device.Method
	TotalTime float64
	NPoints   int
	NSubsteps int
}

// New builds an Integrator for one .TRAN directive's parameters.
func New(c *circuit.Circuit, driver *newton.Driver, method device.Method, totalTime float64, nPoints, nSubsteps int) *Integrator {
	return &Integrator{
		Circuit:   c,
		Driver:    driver,
		Method:    method,
		TotalTime: totalTime,
		NPoints:   nPoints,
		NSubsteps: nSubsteps,
	}
}

// Run executes every step, calling emit at the n_substeps cadence. It
// returns the first error the Non-linear Driver or the linear solver
// raises (spec.md §7), identifying the failing simulation time.
func (it *Integrator) Run(emit Emit) error {
	dtNominal := it.TotalTime / float64(it.NPoints*it.NSubsteps)
	totalSteps := it.NPoints * it.NSubsteps

	ctx := &device.Context{Method: it.Method, BaseDt: dtNominal, FirstStep: true}

	// First step uses a ramped-down dt to soften the transient from an
	// all-zero initial guess (spec.md §4.5); every later step uses
	// dt_nominal.
	dt := dtNominal * 1e-3
	var dtPrev float64
	t := 0.0

	for n := 0; n <= totalSteps; n++ {
		ctx.Time = t
		ctx.Dt = dt
		ctx.DtPrev = dtPrev

		solution, err := it.Driver.Solve(it.Circuit, ctx)
		if err != nil {
			return err
		}

		it.Circuit.UpdateHistory(solution, ctx)

		if n%it.NSubsteps == 0 {
			if err := emit(t, solution); err != nil {
				return err
			}
		}

		dtPrev = dt
		dt = dtNominal
		t += dt
		ctx.FirstStep = false
	}
	return nil
}
