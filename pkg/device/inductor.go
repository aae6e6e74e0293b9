package device

import "github.com/halvorsen-eng/mnatran/pkg/mna"

// InductorBranch is the branch-current form of an inductor (netlist type L):
// it owns one extra MNA variable, its own branch current, and couples to its
// two terminal nodes with ±1 entries (spec.md §4.1): +1/-1 in the node rows
// n1/n2 and -1/+1 in the branch row, so that row reads
// (L/dt)(i - i_prev) = v(n1) - v(n2) with a positive diagonal.
type InductorBranch struct {
	Base
	ExtraBase
	Henries float64
	IC      float64

	iAccepted float64 // i(t): accepted branch current from the last step, or IC before the first
	vAccepted float64 // v(t): accepted terminal voltage from the last step; used by the FE and TR companion models
}

func NewInductorBranch(name string, nodes []int, henries, ic float64) *InductorBranch {
	return &InductorBranch{
		Base:      Base{DeviceName: name, NodeIdx: nodes},
		ExtraBase: NewExtraBase(1),
		Henries:   henries,
		IC:        ic,
		iAccepted: ic,
	}
}

var (
	_ ExtraOwner      = (*InductorBranch)(nil)
	_ Reactive        = (*InductorBranch)(nil)
	_ CoupledInductor = (*InductorBranch)(nil)
)

func (l *InductorBranch) Stamp(sys *mna.System, ctx *Context) error {
	n1, n2 := l.NodeIdx[0], l.NodeIdx[1]
	x := l.Extra()

	// Node-row-to-branch coupling is present for every method: the branch
	// current leaves n1 and enters n2, the same sense as v = v(n1) - v(n2)
	// in the branch row below.
	sys.AddElement(n1, x, 1)
	sys.AddElement(n2, x, -1)

	if ctx.Method == ForwardEuler {
		// v(t+dt) in the constitutive equation is replaced by v(t): the
		// branch row drops its dependence on the current iterate's node
		// voltages entirely (spec.md §4.6), so the branch-to-node columns
		// are omitted.
		g := l.Henries / ctx.Dt
		sys.AddElement(x, x, g)
		sys.AddRHS(x, g*l.iAccepted+l.vAccepted)
		return nil
	}

	sys.AddElement(x, n1, -1)
	sys.AddElement(x, n2, 1)

	if ctx.Method == Trapezoidal {
		// (2L/dt)(i(t+dt) - i(t)) = v(t+dt) + v(t): v(t) joins the RHS.
		g := 2 * l.Henries / ctx.Dt
		sys.AddElement(x, x, g)
		sys.AddRHS(x, g*l.iAccepted+l.vAccepted)
		return nil
	}

	g := l.Henries / ctx.Dt
	sys.AddElement(x, x, g)
	sys.AddRHS(x, g*l.iAccepted)
	return nil
}

// UpdateHistory records the accepted branch current and terminal voltage.
func (l *InductorBranch) UpdateHistory(iterate []float64, ctx *Context) {
	l.iAccepted = at(iterate, l.Extra())
	n1, n2 := l.NodeIdx[0], l.NodeIdx[1]
	l.vAccepted = at(iterate, n1) - at(iterate, n2)
}

// Current satisfies CoupledInductor: the accepted branch current a Mutual
// (K) device reads when stamping its coupling term.
func (l *InductorBranch) Current() float64 { return l.iAccepted }

// Inductance satisfies CoupledInductor.
func (l *InductorBranch) Inductance() float64 { return l.Henries }
