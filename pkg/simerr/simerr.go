// Package simerr defines the typed failures the simulation core can raise.
//
// Stamp assembly and the linear solver fail fast; the Newton-Raphson driver
// recovers from slow convergence internally via randomized restart. Every
// other failure surfaces up to the time integrator, which stops the run and
// reports the simulation time at which it happened.
package simerr

import "fmt"

// SingularSystem is raised by the linear solver when a pivot candidate's
// magnitude falls below the solver's singularity threshold.
type SingularSystem struct {
	Time  float64
	Pivot int // 1-based variable index where elimination failed
}

func (e *SingularSystem) Error() string {
	return fmt.Sprintf("singular system at t=%g: no usable pivot for variable %d", e.Time, e.Pivot)
}

// NoConvergence is raised by the Newton-Raphson driver when the iteration
// count exceeds the fatal bound even after exhausting randomized restarts.
type NoConvergence struct {
	Time     float64
	Restarts int
}

func (e *NoConvergence) Error() string {
	return fmt.Sprintf("no convergence at t=%g after %d restarts", e.Time, e.Restarts)
}

// CouplingReferencesUnknownInductor is raised when a K device names an L
// device that has not been declared earlier in the netlist.
type CouplingReferencesUnknownInductor struct {
	Name string // name of the missing inductor
}

func (e *CouplingReferencesUnknownInductor) Error() string {
	return fmt.Sprintf("mutual coupling references unknown inductor %q", e.Name)
}

// TooManyVariables is raised when extra-variable allocation would exceed the
// configured bound on total unknowns.
type TooManyVariables struct {
	Limit int
}

func (e *TooManyVariables) Error() string {
	return fmt.Sprintf("variable count exceeds configured limit of %d", e.Limit)
}

// UnknownDevice is raised by the netlist reader when a line's leading token
// does not name a recognized device or directive.
type UnknownDevice struct {
	Token string
}

func (e *UnknownDevice) Error() string {
	return fmt.Sprintf("unknown device token %q", e.Token)
}
