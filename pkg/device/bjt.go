package device

import (
	"math"

	"github.com/halvorsen-eng/mnatran/internal/consts"
	"github.com/halvorsen-eng/mnatran/pkg/mna"
)

// DefaultAlphaF and DefaultAlphaR are the fixed Ebers-Moll current-transfer
// ratios used when a device has no bound model (spec.md §4.1, §9): a
// simplified two-diode model rather than the teacher's full Gummel-Poon.
const (
	DefaultAlphaF = 0.99
	DefaultAlphaR = 0.5

	// DefaultBJTIs is used for every Q device whose .MODEL gives no IS (or
	// that names no model): like D, the netlist grammar (spec.md §6)
	// carries no per-instance saturation current.
	DefaultBJTIs = 1e-16
)

// BJT is the simplified Ebers-Moll bipolar transistor (netlist type Q):
// forward base-emitter and reverse base-collector diodes, each with a
// current-transfer dependent source to the opposite terminal. Nodes are
// ordered [collector, base, emitter].
type BJT struct {
	Base
	Is     float64
	AlphaF float64
	AlphaR float64
	IsPNP  bool

	started  bool
	gpi, gmu float64
	gmf, gmr float64
	vbe, vbc float64 // effective (polarity-adjusted) junction voltages
	ibe, ibc float64
}

func NewBJT(name string, nodes []int, is, alphaF, alphaR float64, isPNP bool) *BJT {
	return &BJT{Base: Base{DeviceName: name, NodeIdx: nodes}, Is: is, AlphaF: alphaF, AlphaR: alphaR, IsPNP: isPNP}
}

// NewBJTModel builds a BJT from a .MODEL-bound parameter set: IS, ALPHAF,
// and ALPHAR override the fixed defaults when present (spec.md §6.1). isPNP
// is taken from the model's own NPN/PNP kind, not a netlist-line literal.
func NewBJTModel(name string, nodes []int, isPNP bool, params map[string]float64) *BJT {
	is, alphaF, alphaR := DefaultBJTIs, DefaultAlphaF, DefaultAlphaR
	if v, ok := params["IS"]; ok {
		is = v
	}
	if v, ok := params["ALPHAF"]; ok {
		alphaF = v
	}
	if v, ok := params["ALPHAR"]; ok {
		alphaR = v
	}
	return NewBJT(name, nodes, is, alphaF, alphaR, isPNP)
}

var _ NonLinear = (*BJT)(nil)

func (q *BJT) pol() float64 {
	if q.IsPNP {
		return -1
	}
	return 1
}

func (q *BJT) UpdateVoltages(iterate []float64) {
	c, b, e := q.NodeIdx[0], q.NodeIdx[1], q.NodeIdx[2]
	pol := q.pol()

	var vbeRaw, vbcRaw float64
	if !q.started {
		vbeRaw, vbcRaw = diodeSeedVoltage, diodeSeedVoltage
		q.started = true
	} else {
		vbeRaw = pol * (at(iterate, b) - at(iterate, e))
		vbcRaw = pol * (at(iterate, b) - at(iterate, c))
		if vbeRaw > diodeVoltageClamp {
			vbeRaw = diodeVoltageClamp
		}
		if vbcRaw > diodeVoltageClamp {
			vbcRaw = diodeVoltageClamp
		}
	}
	q.vbe, q.vbc = vbeRaw, vbcRaw

	vt := consts.ThermalVoltage(consts.NominalTempC)
	exBE := math.Exp(q.vbe / vt)
	exBC := math.Exp(q.vbc / vt)

	q.ibe = q.Is * (exBE - 1)
	q.gpi = (q.Is / vt) * exBE
	q.ibc = q.Is * (exBC - 1)
	q.gmu = (q.Is / vt) * exBC

	q.gmf = q.AlphaF * q.gpi
	q.gmr = q.AlphaR * q.gmu
}

func (q *BJT) Stamp(sys *mna.System, ctx *Context) error {
	c, b, e := q.NodeIdx[0], q.NodeIdx[1], q.NodeIdx[2]

	// Junction conductances are symmetric and direction-independent.
	sys.G(b, e, q.gpi)
	sys.G(b, c, q.gmu)

	// Node order for the Norton offsets and dependent sources follows the
	// physical conduction direction: NPN forward-active has base-to-
	// emitter/collector the "positive" sense; PNP reverses it.
	beFrom, beTo := b, e
	bcFrom, bcTo := b, c
	ceFrom, ceTo := c, e
	if q.IsPNP {
		beFrom, beTo = e, b
		bcFrom, bcTo = c, b
		ceFrom, ceTo = e, c
	}

	sys.I(beFrom, beTo, q.ibe-q.gpi*q.vbe)
	sys.I(bcFrom, bcTo, q.ibc-q.gmu*q.vbc)

	sys.Gtrans(ceFrom, ceTo, beFrom, beTo, q.gmf)
	sys.I(ceFrom, ceTo, q.AlphaF*q.ibe-q.gmf*q.vbe)

	ecFrom, ecTo := e, c
	if q.IsPNP {
		ecFrom, ecTo = c, e
	}
	sys.Gtrans(ecFrom, ecTo, bcFrom, bcTo, q.gmr)
	sys.I(ecFrom, ecTo, q.AlphaR*q.ibc-q.gmr*q.vbc)

	return nil
}
