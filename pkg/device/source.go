package device

import (
	"github.com/halvorsen-eng/mnatran/pkg/mna"
	"github.com/halvorsen-eng/mnatran/pkg/waveform"
)

// CurrentSource is the independent current source (netlist type I): a pure
// two-terminal current injection evaluated from its waveform each stamp
// (spec.md §4.1, §4.2). It owns no extra variable.
type CurrentSource struct {
	Base
	Kind   waveform.Kind
	Params waveform.Params
}

func NewCurrentSource(name string, nodes []int, kind waveform.Kind, params waveform.Params) *CurrentSource {
	return &CurrentSource{Base: Base{DeviceName: name, NodeIdx: nodes}, Kind: kind, Params: params}
}

func (s *CurrentSource) Stamp(sys *mna.System, ctx *Context) error {
	i := waveform.Eval(s.Kind, s.Params, ctx.Time, ctx.BaseDt)
	sys.I(s.NodeIdx[0], s.NodeIdx[1], i)
	return nil
}

// VoltageSource is the independent voltage source (netlist type V). It owns
// one extra variable: the branch current flowing from its positive to its
// negative terminal.
type VoltageSource struct {
	Base
	ExtraBase
	Kind   waveform.Kind
	Params waveform.Params
}

func NewVoltageSource(name string, nodes []int, kind waveform.Kind, params waveform.Params) *VoltageSource {
	return &VoltageSource{Base: Base{DeviceName: name, NodeIdx: nodes}, ExtraBase: NewExtraBase(1), Kind: kind, Params: params}
}

var _ ExtraOwner = (*VoltageSource)(nil)

func (s *VoltageSource) Stamp(sys *mna.System, ctx *Context) error {
	n1, n2 := s.NodeIdx[0], s.NodeIdx[1]
	x := s.Extra()

	sys.AddElement(n1, x, 1)
	sys.AddElement(x, n1, 1)
	sys.AddElement(n2, x, -1)
	sys.AddElement(x, n2, -1)

	sys.AddRHS(x, waveform.Eval(s.Kind, s.Params, ctx.Time, ctx.BaseDt))
	return nil
}

// Current reports the branch current from the last solve, for callers
// (trace output) that want I(name).
func (s *VoltageSource) Current(solution []float64) float64 { return at(solution, s.Extra()) }
