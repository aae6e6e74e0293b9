// Package newton implements the Non-linear Driver (spec.md §4.4): the
// Newton-Raphson loop that resolves a circuit's non-linear devices each
// time step, with randomized-restart recovery from slow convergence.
package newton

import (
	"math"
	"math/rand"

	"github.com/halvorsen-eng/mnatran/pkg/circuit"
	"github.com/halvorsen-eng/mnatran/pkg/device"
	"github.com/halvorsen-eng/mnatran/pkg/simerr"
)

const (
	ConvergenceTol   = 1e-7
	RestartAfterIter = 20
	MaxRestarts      = 10
	FatalIter        = 100

	// RestartRangeHalf is the half-width of the uniform restart guess
	// range [-5, 5] (spec.md §4.4).
	RestartRangeHalf = 5
)

// Driver owns the reused Newton iterate buffer across time steps
// (spec.md §5's no-per-step-allocation invariant) and the restart RNG. The
// seed is accepted explicitly, not read from a package-level source,
// because spec.md §9 asks for reproducible runs under test.
type Driver struct {
	rng     *rand.Rand
	iterate []float64 // 1-indexed, size Size()+1
}

// NewDriver builds a driver seeded for reproducible randomized restarts.
// Pass time.Now().UnixNano() (or similar) for a non-deterministic run.
func NewDriver(seed int64) *Driver {
	return &Driver{rng: rand.New(rand.NewSource(seed))}
}

func (d *Driver) ensureSized(n int) {
	if len(d.iterate) != n+1 {
		d.iterate = make([]float64, n+1)
	}
}

// Solve runs Newton-Raphson for one time step. On success it returns the
// converged iterate — a slice owned by the Driver, valid until the next
// Solve call — ready to pass to Circuit.UpdateHistory.
func (d *Driver) Solve(c *circuit.Circuit, ctx *device.Context) ([]float64, error) {
	n := c.Size()
	d.ensureSized(n)
	if ctx.FirstStep {
		for i := range d.iterate {
			d.iterate[i] = 0
		}
	}

	iter := 0
	restarts := 0
	ctx.FirstIterOfStep = true

	for {
		c.UpdateNonlinearVoltages(d.iterate)
		if err := c.Stamp(c.Sys, ctx); err != nil {
			return nil, err
		}
		if err := c.Sys.Solve(ctx.Time); err != nil {
			return nil, err
		}
		solution := c.Sys.Solution()

		errMax := 0.0
		for i := 1; i <= n; i++ {
			if diff := math.Abs(solution[i] - d.iterate[i]); diff > errMax {
				errMax = diff
			}
		}
		copy(d.iterate, solution)
		ctx.FirstIterOfStep = false
		iter++

		// A purely linear circuit's single solve is exact; no non-linear
		// device means there is nothing left to relinearize (spec.md §4.4:
		// "for purely linear circuits the loop runs exactly once").
		if !c.HasNonlinear() {
			return d.iterate, nil
		}
		if errMax <= ConvergenceTol {
			return d.iterate, nil
		}

		if iter > FatalIter {
			return nil, &simerr.NoConvergence{Time: ctx.Time, Restarts: restarts}
		}

		if iter > RestartAfterIter && restarts <= MaxRestarts {
			for i := 1; i <= n; i++ {
				d.iterate[i] = (d.rng.Float64()*2 - 1) * RestartRangeHalf
			}
			restarts++
			iter = 0
			ctx.FirstIterOfStep = true
		}
	}
}
