// Package circuit owns the Circuit model (spec.md's C1): the device
// registry, the post-parse extra-variable allocation pass, and the
// orchestration of stamp/solve/history cycles against the system in
// pkg/mna. It holds no simulation-globals-as-package-state — every call
// that needs "when" or "which method" takes a *device.Context explicitly
// (spec.md §9's redesign of the source's global mutable CircuitStatus).
package circuit

import (
	"fmt"

	"github.com/halvorsen-eng/mnatran/pkg/device"
	"github.com/halvorsen-eng/mnatran/pkg/mna"
	"github.com/halvorsen-eng/mnatran/pkg/simerr"
)

// DefaultMaxVariables bounds total unknown count (nodes plus extras)
// absent an explicit override; it is a configured safety bound
// (spec.md §7's TooManyVariables), not a hard architectural limit.
const DefaultMaxVariables = 10000

// NamedVariable associates a trace column name with the variable index it
// reads from the solution vector.
type NamedVariable struct {
	Name  string
	Index int
}

// Circuit is built once from a parsed netlist and mutated only by history
// updates for the lifetime of a run (spec.md §3).
type Circuit struct {
	Name         string
	NumNodes     int
	NumExtras    int
	MaxVariables int

	devices   []device.Device
	reactive  []device.Reactive
	nonlinear []device.NonLinear

	Sys *mna.System

	// Variables lists every trace column in variable-index order: node
	// voltages first, then extra (branch-current-like) variables.
	Variables []NamedVariable
}

// New creates an unbuilt circuit with numNodes non-ground node variables
// already known (assigned by the netlist reader during parsing).
func New(name string, numNodes int) *Circuit {
	return &Circuit{Name: name, NumNodes: numNodes, MaxVariables: DefaultMaxVariables}
}

// ExtraNamer is implemented by devices that can label the extra variable(s)
// they own for trace output (e.g. "I(V1)"). Devices that don't implement it
// get a generic "I(<name>)" label when they own exactly one extra.
type ExtraNamer interface {
	ExtraNames() []string
}

// Build runs the extra-variable allocation pass over devices in netlist
// order (spec.md §9: "an allocation pass that runs once post-parse and
// attaches the allocated index back to the owning Device"), constructs the
// dense system, and validates method/device compatibility.
func (c *Circuit) Build(devices []device.Device, nodeNames []string, method device.Method) error {
	c.devices = devices

	next := c.NumNodes + 1
	for _, d := range devices {
		if owner, ok := d.(device.ExtraOwner); ok {
			n := owner.NumExtras()
			idx := make([]int, n)
			for i := range idx {
				idx[i] = next
				next++
			}
			owner.SetExtraIndices(idx)
		}
		if r, ok := d.(device.Reactive); ok {
			c.reactive = append(c.reactive, r)
		}
		if nl, ok := d.(device.NonLinear); ok {
			c.nonlinear = append(c.nonlinear, nl)
		}
	}
	c.NumExtras = next - c.NumNodes - 1

	total := c.NumNodes + c.NumExtras
	if c.MaxVariables > 0 && total > c.MaxVariables {
		return &simerr.TooManyVariables{Limit: c.MaxVariables}
	}

	if method == device.ForwardEuler {
		for _, d := range devices {
			if _, ok := d.(*device.Mutual); ok {
				return fmt.Errorf("forward Euler does not support mutual inductor coupling (device %s)", d.Name())
			}
		}
	}

	c.Sys = mna.NewSystem(total)
	c.buildVariableNames(devices, nodeNames)
	return nil
}

func (c *Circuit) buildVariableNames(devices []device.Device, nodeNames []string) {
	c.Variables = make([]NamedVariable, 0, c.NumNodes+c.NumExtras)
	for i, name := range nodeNames {
		c.Variables = append(c.Variables, NamedVariable{Name: "V(" + name + ")", Index: i + 1})
	}

	for _, d := range devices {
		owner, ok := d.(device.ExtraOwner)
		if !ok {
			continue
		}
		idx := owner.ExtraIndices()
		if namer, ok := d.(ExtraNamer); ok {
			names := namer.ExtraNames()
			for i, n := range names {
				c.Variables = append(c.Variables, NamedVariable{Name: n, Index: idx[i]})
			}
			continue
		}
		for i, x := range idx {
			label := "I(" + d.Name() + ")"
			if len(idx) > 1 {
				label = fmt.Sprintf("I(%s.%d)", d.Name(), i+1)
			}
			c.Variables = append(c.Variables, NamedVariable{Name: label, Index: x})
		}
	}
}

// Size is the total unknown count: nodes plus extras.
func (c *Circuit) Size() int { return c.NumNodes + c.NumExtras }

// HasNonlinear reports whether any device in the circuit linearizes around
// the Newton iterate (spec.md §4.4's convergence short-circuit for purely
// linear circuits).
func (c *Circuit) HasNonlinear() bool { return len(c.nonlinear) > 0 }

// Stamp rebuilds (A, b) from scratch for the given iterate/context.
func (c *Circuit) Stamp(sys *mna.System, ctx *device.Context) error {
	sys.Reset()
	for _, d := range c.devices {
		if err := d.Stamp(sys, ctx); err != nil {
			return fmt.Errorf("stamping %s: %w", d.Name(), err)
		}
	}
	return nil
}

// UpdateNonlinearVoltages relinearizes every non-linear device around the
// current Newton iterate. Must run before Stamp each iteration.
func (c *Circuit) UpdateNonlinearVoltages(iterate []float64) {
	for _, nl := range c.nonlinear {
		nl.UpdateVoltages(iterate)
	}
}

// UpdateHistory commits the accepted solution into every reactive device's
// history state. Must run only once per accepted step, never per Newton
// iteration (spec.md §4.5, §9).
func (c *Circuit) UpdateHistory(iterate []float64, ctx *device.Context) {
	for _, r := range c.reactive {
		r.UpdateHistory(iterate, ctx)
	}
}
