package device

import "github.com/halvorsen-eng/mnatran/pkg/mna"

// PWLBreakpoint is one (voltage, current) coordinate of a PWL resistor's
// curve.
type PWLBreakpoint struct {
	V, I float64
}

// PWLResistor is a piecewise-linear two-terminal resistor (netlist type N)
// defined by an ordered list of (V,I) breakpoints; segments between
// consecutive breakpoints are linear, and the curve extrapolates the
// boundary segment's slope beyond the first and last breakpoint. This
// generalizes spec.md §4.1's two-breakpoint/three-segment description
// (select segment by V2,V3; stamp the segment's conductance and
// intercept) to N breakpoints, needed by the Chua-diode scenario in
// spec.md §8 whose netlist supplies four breakpoints.
type PWLResistor struct {
	Base
	Breakpoints []PWLBreakpoint // sorted ascending by V

	started bool
	g, ieq  float64
}

func NewPWLResistor(name string, nodes []int, breakpoints []PWLBreakpoint) *PWLResistor {
	return &PWLResistor{Base: Base{DeviceName: name, NodeIdx: nodes}, Breakpoints: breakpoints}
}

var _ NonLinear = (*PWLResistor)(nil)

// eval returns (current, local slope) at voltage v.
func (p *PWLResistor) eval(v float64) (float64, float64) {
	bp := p.Breakpoints
	n := len(bp)

	if v <= bp[0].V {
		slope := segmentSlope(bp[0], bp[1])
		return bp[0].I + slope*(v-bp[0].V), slope
	}
	if v >= bp[n-1].V {
		slope := segmentSlope(bp[n-2], bp[n-1])
		return bp[n-1].I + slope*(v-bp[n-1].V), slope
	}

	for k := 0; k < n-1; k++ {
		if v <= bp[k+1].V {
			slope := segmentSlope(bp[k], bp[k+1])
			return bp[k].I + slope*(v-bp[k].V), slope
		}
	}
	// Unreachable given the boundary checks above.
	slope := segmentSlope(bp[n-2], bp[n-1])
	return bp[n-1].I, slope
}

func segmentSlope(a, b PWLBreakpoint) float64 {
	return (b.I - a.I) / (b.V - a.V)
}

func (p *PWLResistor) UpdateVoltages(iterate []float64) {
	var v float64
	if !p.started {
		v = 0
		p.started = true
	} else {
		v = at(iterate, p.NodeIdx[0]) - at(iterate, p.NodeIdx[1])
	}

	i, slope := p.eval(v)
	p.g = slope
	p.ieq = i - slope*v
}

func (p *PWLResistor) Stamp(sys *mna.System, ctx *Context) error {
	a, b := p.NodeIdx[0], p.NodeIdx[1]
	sys.G(a, b, p.g)
	sys.I(a, b, p.ieq)
	return nil
}
