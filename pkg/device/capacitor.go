package device

import "github.com/halvorsen-eng/mnatran/pkg/mna"

// Capacitor is a reactive two-terminal device with a Backward-Euler and a
// Trapezoidal companion model (spec.md §4.1, §4.6). Forward Euler has no
// defined capacitor formula in spec.md (it names FE only as the inductor
// alternative), so a circuit run with ForwardEuler stamps the capacitor with
// the Backward-Euler companion model.
type Capacitor struct {
	Base
	Farads float64
	IC     float64

	vAccepted float64 // v(t): accepted voltage from the last completed step, or IC before the first
	vStar     float64 // V*_n, the Trapezoidal companion source; held across a step's Newton iterations
}

func NewCapacitor(name string, nodes []int, farads, ic float64) *Capacitor {
	return &Capacitor{
		Base:      Base{DeviceName: name, NodeIdx: nodes},
		Farads:    farads,
		IC:        ic,
		vAccepted: ic,
		vStar:     ic,
	}
}

var (
	_ Reactive = (*Capacitor)(nil)
)

func (c *Capacitor) Stamp(sys *mna.System, ctx *Context) error {
	n1, n2 := c.NodeIdx[0], c.NodeIdx[1]

	if ctx.Method == Trapezoidal {
		g := 2 * c.Farads / ctx.Dt
		sys.G(n1, n2, g)

		if ctx.FirstIterOfStep {
			if ctx.FirstStep {
				c.vStar = c.IC
			} else {
				iPrev := (2 * c.Farads / ctx.DtPrev) * (c.vAccepted - c.vStar)
				c.vStar = c.vAccepted + iPrev/g
			}
		}
		sys.I(n2, n1, g*c.vStar)
		return nil
	}

	g := c.Farads / ctx.Dt
	sys.G(n1, n2, g)
	sys.I(n2, n1, g*c.vAccepted)
	return nil
}

// UpdateHistory records the accepted terminal voltage for use as v(t) in the
// next step's companion model. Called only on accepted steps (spec.md §4.5).
func (c *Capacitor) UpdateHistory(iterate []float64, ctx *Context) {
	n1, n2 := c.NodeIdx[0], c.NodeIdx[1]
	c.vAccepted = at(iterate, n1) - at(iterate, n2)
}

// Voltage reports the last recorded terminal voltage, used by property tests
// checking the history round-trip invariant (spec.md §8).
func (c *Capacitor) Voltage() float64 { return c.vAccepted }
