// Package device models the circuit elements named in spec.md §3: a tagged
// variant per kind, each implementing Device and, where applicable,
// ExtraOwner, Reactive, or NonLinear. Stamp dispatch is by interface method,
// never a discriminator switch, so "which slot means what" ambiguity never
// arises (spec.md §9's design note).
package device

import "github.com/halvorsen-eng/mnatran/pkg/mna"

// Method selects which companion model a reactive device stamps.
type Method int

const (
	BackwardEuler Method = iota
	ForwardEuler
	Trapezoidal
)

// NoNode marks an absent optional terminal. It is distinct from ground (0)
// per spec.md §9's note that reusing 0 as a "not used" sentinel collides
// with the ground node index.
const NoNode = -1

// Context is threaded through every Stamp/UpdateVoltages/UpdateHistory call
// instead of living in package-level mutable globals (spec.md §9).
type Context struct {
	Time   float64
	Dt     float64
	DtPrev float64
	// BaseDt is dt_nominal, the integrator's undiscounted step size. Source
	// waveforms substitute it for a zero Tr/Tf (spec.md §4.2); it is never
	// ramped the way Dt is on the first step.
	BaseDt float64
	Method Method

	// FirstIterOfStep is true only for the first Newton iteration of the
	// current time step. History-derived terms (e.g. the trapezoidal
	// V* update, §4.6) must be recomputed exactly once per step, not once
	// per iteration — later iterations change the iterate, not the past.
	FirstIterOfStep bool

	// FirstStep is true for the very first accepted step, whose dt is
	// ramped down (spec.md §4.5) and whose non-linear devices seed their
	// initial guess since there is no prior accepted solution.
	FirstStep bool
}

// Device is the minimal contract every circuit element satisfies.
type Device interface {
	Name() string
	Nodes() []int // node/control indices in device-specific fixed order; 0 is ground
	Stamp(sys *mna.System, ctx *Context) error
}

// ExtraOwner is implemented by devices that need one or more extra MNA
// variables (branch currents or constraint multipliers). The allocation pass
// in pkg/circuit assigns indices once, post-parse, and calls
// SetExtraIndices; the device never allocates its own index.
type ExtraOwner interface {
	Device
	NumExtras() int
	SetExtraIndices(idx []int)
	ExtraIndices() []int
}

// Reactive is implemented by devices with history state that the time
// integrator updates only on accepted steps (spec.md §4.5). The Newton loop
// must never call UpdateHistory — it treats history as read-only.
type Reactive interface {
	Device
	UpdateHistory(iterate []float64, ctx *Context)
}

// NonLinear is implemented by devices whose stamp depends on the current
// Newton iterate. UpdateVoltages runs once per Newton iteration, immediately
// before Stamp, so the device can linearize around the latest guess.
type NonLinear interface {
	Device
	UpdateVoltages(iterate []float64)
}

// Base is embedded by every device kind for the Name/Nodes boilerplate.
type Base struct {
	DeviceName string
	NodeIdx    []int
}

func (b *Base) Name() string     { return b.DeviceName }
func (b *Base) Nodes() []int     { return b.NodeIdx }
func (b *Base) SetNodes(n []int) { b.NodeIdx = n }

// ExtraBase is embedded by devices implementing ExtraOwner. count is fixed
// at construction (1 for most extra-owning devices, 2 for CCVS).
type ExtraBase struct {
	count int
	idx   []int
}

func NewExtraBase(count int) ExtraBase { return ExtraBase{count: count} }

func (e *ExtraBase) NumExtras() int            { return e.count }
func (e *ExtraBase) SetExtraIndices(idx []int) { e.idx = idx }
func (e *ExtraBase) ExtraIndices() []int       { return e.idx }

// Extra returns the single extra-variable index for a single-extra owner, or
// 0 if none has been assigned yet.
func (e *ExtraBase) Extra() int {
	if len(e.idx) == 0 {
		return 0
	}
	return e.idx[0]
}

func at(v []float64, idx int) float64 {
	if idx <= 0 || idx >= len(v) {
		return 0
	}
	return v[idx]
}
