package device

import "github.com/halvorsen-eng/mnatran/pkg/mna"

// Default square-law MOSFET parameters (spec.md §3, §4.1): every M device
// uses these constants unless a bound .MODEL supplies KP, VTO or LAMBDA.
const (
	MosfetLambda = 0.05
	MosfetVt0    = 1.0
	mosfetK0Base = 1e-4
)

// MosfetK0 computes K0 = 1e-4 * W/L for a device's declared geometry.
func MosfetK0(w, l float64) float64 { return mosfetK0Base * w / l }

// MOSFET is the square-law model (netlist type M). Nodes are ordered
// [drain, gate, source, bulk]; bulk is accepted for netlist compatibility
// but unused by the simplified stamp (spec.md §4.1 never references it).
// Drain and source are re-sorted by instantaneous voltage every iteration,
// so the declared terminal order need not match the conducting direction.
type MOSFET struct {
	Base
	K0     float64
	Vt0    float64
	Lambda float64
	IsPMOS bool

	started    bool
	g, gds     float64
	vgs, vds   float64
	effD, effS int // resolved conducting-direction terminals for this iteration
}

func NewMOSFET(name string, nodes []int, k0 float64, isPMOS bool) *MOSFET {
	return &MOSFET{Base: Base{DeviceName: name, NodeIdx: nodes}, K0: k0, Vt0: MosfetVt0, Lambda: MosfetLambda, IsPMOS: isPMOS}
}

// NewMOSFETModel builds a MOSFET from a .MODEL-bound parameter set: VTO and
// LAMBDA override the fixed defaults when present, matching spec.md §6.1's
// "absence of a .MODEL line falls back to the fixed constants" rule.
func NewMOSFETModel(name string, nodes []int, k0 float64, isPMOS bool, params map[string]float64) *MOSFET {
	m := NewMOSFET(name, nodes, k0, isPMOS)
	if v, ok := params["VTO"]; ok {
		m.Vt0 = v
	}
	if v, ok := params["LAMBDA"]; ok {
		m.Lambda = v
	}
	return m
}

var _ NonLinear = (*MOSFET)(nil)

func (m *MOSFET) pol() float64 {
	if m.IsPMOS {
		return -1
	}
	return 1
}

func (m *MOSFET) UpdateVoltages(iterate []float64) {
	d0, g0, s0 := m.NodeIdx[0], m.NodeIdx[1], m.NodeIdx[2]
	pol := m.pol()

	vd0, vs0 := at(iterate, d0), at(iterate, s0)
	// NMOS: drain is the higher-voltage terminal. PMOS inverts the
	// comparison (spec.md §4.1).
	higherIsD0 := vd0 >= vs0
	if m.IsPMOS {
		higherIsD0 = vd0 <= vs0
	}
	if higherIsD0 {
		m.effD, m.effS = d0, s0
	} else {
		m.effD, m.effS = s0, d0
	}

	var vgs, vds float64
	if !m.started {
		vgs = m.Vt0 + 0.1 // seed a small overdrive so the device conducts
		vds = 0.1
		m.started = true
	} else {
		vgs = pol * (at(iterate, g0) - at(iterate, m.effS))
		vds = pol * (at(iterate, m.effD) - at(iterate, m.effS))
	}
	m.vgs, m.vds = vgs, vds

	if vgs <= m.Vt0 {
		m.g, m.gds = 0, 0
		return
	}

	overdrive := vgs - m.Vt0
	if vds > overdrive {
		// Saturation.
		m.g = 2 * m.K0 * overdrive * (1 + m.Lambda*vds)
		m.gds = m.K0 * overdrive * overdrive * m.Lambda
	} else {
		// Triode/linear region.
		m.g = 2 * m.K0 * vds
		m.gds = 2 * m.K0 * (overdrive - vds)
	}
}

func (m *MOSFET) id() float64 {
	overdrive := m.vgs - m.Vt0
	if overdrive <= 0 {
		return 0
	}
	if m.vds > overdrive {
		return m.K0 * overdrive * overdrive * (1 + m.Lambda*m.vds)
	}
	return m.K0 * (2*overdrive*m.vds - m.vds*m.vds)
}

func (m *MOSFET) Stamp(sys *mna.System, ctx *Context) error {
	g0 := m.NodeIdx[1]
	d, s := m.effD, m.effS

	ctrlA, ctrlB := g0, s
	if m.IsPMOS {
		ctrlA, ctrlB = s, g0
	}
	outA, outB := d, s
	if m.IsPMOS {
		outA, outB = s, d
	}

	sys.Gtrans(outA, outB, ctrlA, ctrlB, m.g)
	sys.G(d, s, m.gds)
	sys.I(outA, outB, m.id()-m.g*m.vgs-m.gds*m.vds)
	return nil
}
