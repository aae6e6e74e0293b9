package device

import "github.com/halvorsen-eng/mnatran/pkg/mna"

// Resistor is a linear two-terminal device: G(a,b, 1/R).
type Resistor struct {
	Base
	Ohms float64
}

func NewResistor(name string, nodes []int, ohms float64) *Resistor {
	return &Resistor{Base: Base{DeviceName: name, NodeIdx: nodes}, Ohms: ohms}
}

func (r *Resistor) Stamp(sys *mna.System, ctx *Context) error {
	sys.G(r.NodeIdx[0], r.NodeIdx[1], 1.0/r.Ohms)
	return nil
}
