package circuit_test

import (
	"testing"

	"github.com/halvorsen-eng/mnatran/pkg/circuit"
	"github.com/halvorsen-eng/mnatran/pkg/device"
	"github.com/halvorsen-eng/mnatran/pkg/waveform"
)

func TestBuildAllocatesExtraVariablesInNetlistOrder(t *testing.T) {
	src := device.NewVoltageSource("V1", []int{1, 0}, waveform.DC, waveform.Params{DCValue: 1})
	l := device.NewInductorBranch("L1", []int{1, 2}, 1e-3, 0)
	r := device.NewResistor("R1", []int{2, 0}, 100)

	c := circuit.New("t", 2)
	if err := c.Build([]device.Device{src, l, r}, []string{"a", "b"}, device.BackwardEuler); err != nil {
		t.Fatalf("Build: %v", err)
	}
	// 2 nodes + 2 extras (V1's branch, L1's branch) = 4.
	if c.Size() != 4 {
		t.Errorf("Size() = %d, want 4", c.Size())
	}
	if src.Extra() != 3 || l.Extra() != 4 {
		t.Errorf("extra indices V1=%d L1=%d, want 3 and 4 in netlist order", src.Extra(), l.Extra())
	}
	if c.HasNonlinear() {
		t.Error("HasNonlinear() = true, want false for an all-linear circuit")
	}
}

func TestBuildRejectsTooManyVariables(t *testing.T) {
	src := device.NewVoltageSource("V1", []int{1, 0}, waveform.DC, waveform.Params{DCValue: 1})

	c := circuit.New("t", 1)
	c.MaxVariables = 1 // 1 node + 1 extra (V1's branch) exceeds this
	if err := c.Build([]device.Device{src}, []string{"a"}, device.BackwardEuler); err == nil {
		t.Fatal("expected TooManyVariables error")
	}
}

func TestBuildRejectsForwardEulerWithMutual(t *testing.T) {
	l1 := device.NewInductorBranch("L1", []int{1, 0}, 1e-3, 0)
	l2 := device.NewInductorBranch("L2", []int{2, 0}, 1e-3, 0)
	k := device.NewMutual("K1", l1, l2, 0.5)

	c := circuit.New("t", 2)
	if err := c.Build([]device.Device{l1, l2, k}, []string{"a", "b"}, device.ForwardEuler); err == nil {
		t.Fatal("expected Forward Euler + Mutual to be rejected")
	}
}

func TestVariableNamesLabelNodesAndBranches(t *testing.T) {
	src := device.NewVoltageSource("V1", []int{1, 0}, waveform.DC, waveform.Params{DCValue: 1})

	c := circuit.New("t", 1)
	if err := c.Build([]device.Device{src}, []string{"out"}, device.BackwardEuler); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(c.Variables) != 2 {
		t.Fatalf("Variables = %v, want 2 entries", c.Variables)
	}
	if c.Variables[0].Name != "V(out)" {
		t.Errorf("Variables[0].Name = %q, want V(out)", c.Variables[0].Name)
	}
	if c.Variables[1].Name != "I(V1)" {
		t.Errorf("Variables[1].Name = %q, want I(V1)", c.Variables[1].Name)
	}
}
