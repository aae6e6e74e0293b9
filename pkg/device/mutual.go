package device

import (
	"math"

	"github.com/halvorsen-eng/mnatran/pkg/mna"
)

// CoupledInductor is the narrow view of InductorBranch that Mutual needs: it
// borrows another device's extra-variable index and inductance rather than
// owning any state of its own (spec.md §3's "K never owns, only
// references" invariant). Only the branch-current inductor form (L)
// satisfies it — the nodal form (X) has no branch current to couple to.
type CoupledInductor interface {
	Extra() int
	Inductance() float64
	Current() float64
}

// Mutual is the K device: a coefficient-of-coupling link between two
// previously declared L inductors. It owns no extra variables itself; it
// stamps cross terms directly into the two inductors' existing branch rows.
//
// Forward Euler has no defined mutual-coupling companion model (spec.md
// §9); circuits pairing Mutual with ForwardEuler are rejected when the
// circuit is built, not here.
type Mutual struct {
	DeviceName string
	L1, L2     CoupledInductor
	K          float64 // coefficient of coupling, 0 < K <= 1
}

func NewMutual(name string, l1, l2 CoupledInductor, k float64) *Mutual {
	return &Mutual{DeviceName: name, L1: l1, L2: l2, K: k}
}

func (m *Mutual) Name() string { return m.DeviceName }

// Nodes returns no node indices: Mutual couples two branch variables, not
// terminal nodes.
func (m *Mutual) Nodes() []int { return nil }

func (m *Mutual) mutualInductance() float64 {
	return m.K * math.Sqrt(m.L1.Inductance()*m.L2.Inductance())
}

func (m *Mutual) Stamp(sys *mna.System, ctx *Context) error {
	x1, x2 := m.L1.Extra(), m.L2.Extra()
	mh := m.mutualInductance()

	scale := 1 / ctx.Dt
	if ctx.Method == Trapezoidal {
		scale = 2 / ctx.Dt
	}
	coeff := mh * scale

	// Matches the sign of each inductor's own self term (spec.md §4.1's
	// "±M/dt"): v1 = L1 di1/dt + M di2/dt couples into L1's branch row
	// with the same polarity as its own L1/dt diagonal.
	sys.AddElement(x1, x2, coeff)
	sys.AddElement(x2, x1, coeff)

	sys.AddRHS(x1, coeff*m.L2.Current())
	sys.AddRHS(x2, coeff*m.L1.Current())
	return nil
}
