package device

import "github.com/halvorsen-eng/mnatran/pkg/mna"

// VCCS is the voltage-controlled current source (netlist type G): a pure
// transconductance stamp between an output pair and a control pair. It owns
// no extra variable.
type VCCS struct {
	Base // Nodes: [out+, out-, ctrl+, ctrl-]
	Gm   float64
}

func NewVCCS(name string, nodes []int, gm float64) *VCCS {
	return &VCCS{Base: Base{DeviceName: name, NodeIdx: nodes}, Gm: gm}
}

func (d *VCCS) Stamp(sys *mna.System, ctx *Context) error {
	sys.Gtrans(d.NodeIdx[0], d.NodeIdx[1], d.NodeIdx[2], d.NodeIdx[3], d.Gm)
	return nil
}

// VCVS is the voltage-controlled voltage source (netlist type E): an output
// branch forced to gain·(v_ctrl+ − v_ctrl−). It owns one extra variable, the
// output branch current.
type VCVS struct {
	Base // Nodes: [out+, out-, ctrl+, ctrl-]
	ExtraBase
	Gain float64
}

func NewVCVS(name string, nodes []int, gain float64) *VCVS {
	return &VCVS{Base: Base{DeviceName: name, NodeIdx: nodes}, ExtraBase: NewExtraBase(1), Gain: gain}
}

var _ ExtraOwner = (*VCVS)(nil)

func (d *VCVS) Stamp(sys *mna.System, ctx *Context) error {
	out1, out2, c1, c2 := d.NodeIdx[0], d.NodeIdx[1], d.NodeIdx[2], d.NodeIdx[3]
	x := d.Extra()

	sys.AddElement(out1, x, -1)
	sys.AddElement(x, out1, -1)
	sys.AddElement(out2, x, 1)
	sys.AddElement(x, out2, 1)

	sys.AddElement(x, c1, d.Gain)
	sys.AddElement(x, c2, -d.Gain)
	return nil
}

// CCCS is the current-controlled current source (netlist type F): output
// current proportional to the current through a sensed control branch. It
// owns one extra variable, the zero-volt control-branch current.
type CCCS struct {
	Base // Nodes: [out+, out-, ctrl+, ctrl-]
	ExtraBase
	Gain float64
}

func NewCCCS(name string, nodes []int, gain float64) *CCCS {
	return &CCCS{Base: Base{DeviceName: name, NodeIdx: nodes}, ExtraBase: NewExtraBase(1), Gain: gain}
}

var _ ExtraOwner = (*CCCS)(nil)

func (d *CCCS) Stamp(sys *mna.System, ctx *Context) error {
	out1, out2, c1, c2 := d.NodeIdx[0], d.NodeIdx[1], d.NodeIdx[2], d.NodeIdx[3]
	x := d.Extra()

	// Zero-volt sensing branch through the control terminals: forces
	// v_ctrl+ == v_ctrl- while x carries whatever current flows there.
	sys.AddElement(c1, x, 1)
	sys.AddElement(x, c1, 1)
	sys.AddElement(c2, x, -1)
	sys.AddElement(x, c2, -1)

	sys.AddElement(out1, x, d.Gain)
	sys.AddElement(out2, x, -d.Gain)
	return nil
}

// CCVS is the current-controlled voltage source (netlist type H): output
// voltage proportional to the current through a sensed control branch. It
// owns two extra variables: jx (control branch current) and jy (output
// branch current).
type CCVS struct {
	Base // Nodes: [out+, out-, ctrl+, ctrl-]
	ExtraBase
	Rm float64
}

func NewCCVS(name string, nodes []int, rm float64) *CCVS {
	return &CCVS{Base: Base{DeviceName: name, NodeIdx: nodes}, ExtraBase: NewExtraBase(2), Rm: rm}
}

var _ ExtraOwner = (*CCVS)(nil)

func (d *CCVS) Stamp(sys *mna.System, ctx *Context) error {
	out1, out2, c1, c2 := d.NodeIdx[0], d.NodeIdx[1], d.NodeIdx[2], d.NodeIdx[3]
	idx := d.ExtraIndices()
	jx, jy := idx[0], idx[1]

	sys.AddElement(c1, jx, 1)
	sys.AddElement(jx, c1, 1)
	sys.AddElement(c2, jx, -1)
	sys.AddElement(jx, c2, -1)

	sys.AddElement(out1, jy, -1)
	sys.AddElement(jy, out1, -1)
	sys.AddElement(out2, jy, 1)
	sys.AddElement(jy, out2, 1)

	// Row jy enforces v_out+ - v_out- = Rm*i_jx.
	sys.AddElement(jy, jx, d.Rm)
	return nil
}

// Opamp is the ideal operational amplifier (netlist type O): a nullor whose
// branch row forces the input pair to equality rather than carrying a gain
// equation, while the extra variable supplies whatever output current the
// rest of the circuit demands (spec.md §4.1).
type Opamp struct {
	Base // Nodes: [out+, out-, in+, in-]
	ExtraBase
}

func NewOpamp(name string, nodes []int) *Opamp {
	return &Opamp{Base: Base{DeviceName: name, NodeIdx: nodes}, ExtraBase: NewExtraBase(1)}
}

var _ ExtraOwner = (*Opamp)(nil)

func (d *Opamp) Stamp(sys *mna.System, ctx *Context) error {
	out1, out2, in1, in2 := d.NodeIdx[0], d.NodeIdx[1], d.NodeIdx[2], d.NodeIdx[3]
	x := d.Extra()

	sys.AddElement(out1, x, 1)
	sys.AddElement(out2, x, -1)

	sys.AddElement(x, in1, 1)
	sys.AddElement(x, in2, -1)
	return nil
}
