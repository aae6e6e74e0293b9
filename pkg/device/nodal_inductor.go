package device

import "github.com/halvorsen-eng/mnatran/pkg/mna"

// InductorNodal is the nodal-conductance form of an inductor (netlist type
// X): unlike InductorBranch it owns no extra MNA variable, trading an exact
// branch current for a pure two-terminal conductance-plus-history-source
// stamp (spec.md §4.1).
type InductorNodal struct {
	Base
	Henries float64
	IC      float64

	iHist     float64 // accumulated history current source, seeded from IC
	vAccepted float64 // v(t): accepted terminal voltage from the last step
}

func NewInductorNodal(name string, nodes []int, henries, ic float64) *InductorNodal {
	return &InductorNodal{
		Base:    Base{DeviceName: name, NodeIdx: nodes},
		Henries: henries,
		IC:      ic,
		iHist:   ic,
	}
}

var _ Reactive = (*InductorNodal)(nil)

func (x *InductorNodal) Stamp(sys *mna.System, ctx *Context) error {
	n1, n2 := x.NodeIdx[0], x.NodeIdx[1]

	g := ctx.Dt / x.Henries
	if ctx.Method == Trapezoidal {
		g = ctx.Dt / (2 * x.Henries)
	}
	sys.G(n1, n2, g)

	if ctx.FirstIterOfStep && !ctx.FirstStep {
		switch ctx.Method {
		case Trapezoidal:
			x.iHist += (ctx.DtPrev + ctx.Dt) / (2 * x.Henries) * x.vAccepted
		case ForwardEuler:
			x.iHist += ctx.Dt / x.Henries * x.vAccepted
		default:
			x.iHist += ctx.DtPrev / x.Henries * x.vAccepted
		}
	}

	sys.I(n1, n2, x.iHist)
	return nil
}

// UpdateHistory records the accepted terminal voltage used by the next
// step's history-current increment.
func (x *InductorNodal) UpdateHistory(iterate []float64, ctx *Context) {
	n1, n2 := x.NodeIdx[0], x.NodeIdx[1]
	x.vAccepted = at(iterate, n1) - at(iterate, n2)
}
