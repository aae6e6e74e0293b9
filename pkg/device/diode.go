package device

import (
	"math"

	"github.com/halvorsen-eng/mnatran/internal/consts"
	"github.com/halvorsen-eng/mnatran/pkg/mna"
)

const diodeVoltageClamp = 0.9 // avoids exp() overflow at large forward bias
const diodeSeedVoltage = 0.6  // initial guess before any iterate exists

// DefaultDiodeIs and DefaultDiodeN are used for every D device that names no
// .MODEL (and for any parameter its model omits): the netlist grammar
// (spec.md §6) carries no per-instance model parameters for D, only its two
// terminal nodes and an optional model name.
const (
	DefaultDiodeIs = 1e-14
	DefaultDiodeN  = 1.0
)

// Diode is the exponential junction model (netlist type D). It is
// NonLinear: UpdateVoltages relinearizes the companion conductance and
// equivalent current around the latest Newton iterate each iteration,
// immediately before Stamp uses the cached values.
type Diode struct {
	Base
	Is float64 // saturation current
	N  float64 // emission coefficient

	started bool // true once UpdateVoltages has run at least once
	g       float64
	ieq     float64
}

func NewDiode(name string, nodes []int, is, n float64) *Diode {
	return &Diode{Base: Base{DeviceName: name, NodeIdx: nodes}, Is: is, N: n}
}

// NewDiodeModel builds a Diode from a .MODEL-bound parameter set: IS and N
// override the fixed defaults when present (spec.md §6.1).
func NewDiodeModel(name string, nodes []int, params map[string]float64) *Diode {
	is, n := DefaultDiodeIs, DefaultDiodeN
	if v, ok := params["IS"]; ok {
		is = v
	}
	if v, ok := params["N"]; ok {
		n = v
	}
	return NewDiode(name, nodes, is, n)
}

var _ NonLinear = (*Diode)(nil)

// UpdateVoltages relinearizes the diode around v = v_a - v_b. The very first
// call (before any Newton iterate exists) seeds v with diodeSeedVoltage
// rather than the circuit's all-zero initial guess (spec.md §4.1), since a
// zero guess makes g vanish and stalls convergence.
func (d *Diode) UpdateVoltages(iterate []float64) {
	var v float64
	if !d.started {
		v = diodeSeedVoltage
		d.started = true
	} else {
		v = at(iterate, d.NodeIdx[0]) - at(iterate, d.NodeIdx[1])
		if v > diodeVoltageClamp {
			v = diodeVoltageClamp
		}
	}

	vt := consts.ThermalVoltage(consts.NominalTempC) * d.N
	ex := math.Exp(v / vt)
	id := d.Is * (ex - 1)
	d.g = (d.Is / vt) * ex
	d.ieq = id - d.g*v
}

func (d *Diode) Stamp(sys *mna.System, ctx *Context) error {
	a, b := d.NodeIdx[0], d.NodeIdx[1]
	sys.G(a, b, d.g)
	sys.I(a, b, d.ieq)
	return nil
}
