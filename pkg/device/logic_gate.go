package device

import "github.com/halvorsen-eng/mnatran/pkg/mna"

// GateKind selects a logic gate's controlling-node rule and transfer
// polarity (spec.md §4.1).
type GateKind int

const (
	GateAND GateKind = iota
	GateNAND
	GateOR
	GateNOR
	GateXOR
	GateXNOR
	GateNOT
)

func (k GateKind) inverting() bool {
	switch k {
	case GateNAND, GateNOR, GateXNOR, GateNOT:
		return true
	default:
		return false
	}
}

// LogicGate is a behavioral analog macromodel of a digital gate (netlist
// types `>()(){}][` in the grammar this was distilled from, spec.md §3):
// each input node sees a capacitor to ground, and the output is a
// piecewise-linear voltage-controlled current source into a fixed output
// resistor. It implements both NonLinear (the output stage relinearizes
// each Newton iteration) and Reactive (it forwards history updates to its
// input capacitors).
type LogicGate struct {
	DeviceName string
	Inputs     []int // one node for NOT, two otherwise
	Output     int

	V, R, A float64 // logic-high level, output resistance, transfer steepness
	inputCaps []*Capacitor

	Kind GateKind

	// ctrlGrad[i] is d(controllingVoltage)/d(Inputs[i]) at the latest
	// linearization point; AND/OR-family gates are driven by exactly one
	// input at a time (a 0/1 selector), while XOR/XNOR's min+max-based
	// controlling voltage depends on both inputs simultaneously and needs
	// both partials stamped for the companion current to be exact rather
	// than merely convergent.
	ctrlGrad []float64
	g, ieq   float64
}

// NewLogicGate builds a gate. inputICs supplies one initial-condition value
// per input node, parallel to inputs.
func NewLogicGate(name string, kind GateKind, inputs []int, output int, v, r, a float64, inputICs []float64, farads float64) *LogicGate {
	caps := make([]*Capacitor, len(inputs))
	for i, n := range inputs {
		ic := 0.0
		if i < len(inputICs) {
			ic = inputICs[i]
		}
		caps[i] = NewCapacitor(name, []int{n, 0}, farads, ic)
	}
	return &LogicGate{
		DeviceName: name,
		Inputs:     inputs,
		Output:     output,
		V:          v, R: r, A: a,
		inputCaps: caps,
		Kind:      kind,
		ctrlGrad:  make([]float64, len(inputs)),
	}
}

func (g *LogicGate) Name() string { return g.DeviceName }

func (g *LogicGate) Nodes() []int {
	nodes := append(append([]int{}, g.Inputs...), g.Output)
	return nodes
}

var (
	_ NonLinear = (*LogicGate)(nil)
	_ Reactive  = (*LogicGate)(nil)
)

// thresholds returns VM, VIL, VIH (spec.md §4.1).
func (g *LogicGate) thresholds() (vm, vil, vih float64) {
	vm = g.V / 2
	vil = vm - vm/g.A
	vih = vm + vm/g.A
	return
}

// transfer is the non-inverting three-segment PWL characteristic: 0 below
// VIL, V above VIH, linear between.
func (g *LogicGate) transfer(v float64) (out, slope float64) {
	_, vil, vih := g.thresholds()
	switch {
	case v <= vil:
		return 0, 0
	case v >= vih:
		return g.V, 0
	default:
		slope = g.V / (vih - vil)
		return slope * (v - vil), slope
	}
}

// controllingVoltage returns the scalar that drives the output transfer,
// per spec.md §4.1's per-kind rule, and fills grad with its partial
// derivative with respect to each of g.Inputs at the current iterate.
// AND/OR-family gates are driven by exactly one input at a time (grad is a
// 0/1 selector); XOR/XNOR's controlling voltage is a genuine function of
// both inputs together, so both partials are non-zero there.
func (g *LogicGate) controllingVoltage(iterate []float64, grad []float64) float64 {
	if len(g.Inputs) == 1 {
		grad[0] = 1
		return at(iterate, g.Inputs[0])
	}

	v1, v2 := at(iterate, g.Inputs[0]), at(iterate, g.Inputs[1])

	switch g.Kind {
	case GateAND, GateNAND:
		if v1 <= v2 {
			grad[0], grad[1] = 1, 0
			return v1
		}
		grad[0], grad[1] = 0, 1
		return v2
	case GateOR, GateNOR:
		if v1 >= v2 {
			grad[0], grad[1] = 1, 0
			return v1
		}
		grad[0], grad[1] = 0, 1
		return v2
	default: // XOR, XNOR
		// Differing inputs sum to ~V (one high, one low); matching inputs
		// sum to ~0 or ~2V. d = v1+v2-V is therefore near 0 when the
		// inputs differ and near -V or +V when they match; ctrl = V - |d|
		// is high exactly when the inputs differ. Both inputs contribute to d equally, so
		// d(ctrl)/d(v1) = d(ctrl)/d(v2) = -sign(d).
		d := v1 + v2 - g.V
		s := -1.0
		if d < 0 {
			s = 1
		}
		grad[0], grad[1] = s, s
		return g.V - abs(d)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func (g *LogicGate) UpdateVoltages(iterate []float64) {
	vctrl := g.controllingVoltage(iterate, g.ctrlGrad)
	out, slope := g.transfer(vctrl)
	if g.Kind.inverting() {
		out = g.V - out
		slope = -slope
	}

	iTarget := out / g.R
	gVal := slope / g.R

	g.g = gVal

	// ieq is the companion current's constant term: the linearized output
	// current is iTarget + gVal*sum_i(ctrlGrad[i]*(v_i - v_i0)), and Stamp
	// contributes the gVal*ctrlGrad[i]*v_i part via Gtrans per input, so
	// ieq must carry iTarget minus the full multi-input offset, not just
	// gVal*vctrl (that would only be correct for a single controlling node).
	var offset float64
	for i, n := range g.Inputs {
		offset += g.ctrlGrad[i] * at(iterate, n)
	}
	g.ieq = iTarget - gVal*offset
}

func (g *LogicGate) Stamp(sys *mna.System, ctx *Context) error {
	for _, c := range g.inputCaps {
		if err := c.Stamp(sys, ctx); err != nil {
			return err
		}
	}

	sys.G(g.Output, 0, 1/g.R)
	for i, n := range g.Inputs {
		if g.ctrlGrad[i] == 0 || n == 0 {
			continue
		}
		sys.Gtrans(0, g.Output, n, 0, g.g*g.ctrlGrad[i])
	}
	// The source drives its current into the output node, so the output
	// settles at +R*iTarget: 0 for logic low, V for logic high.
	sys.I(0, g.Output, g.ieq)
	return nil
}

func (g *LogicGate) UpdateHistory(iterate []float64, ctx *Context) {
	for _, c := range g.inputCaps {
		c.UpdateHistory(iterate, ctx)
	}
}
