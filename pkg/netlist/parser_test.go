package netlist

import (
	"errors"
	"strings"
	"testing"

	"github.com/halvorsen-eng/mnatran/pkg/device"
	"github.com/halvorsen-eng/mnatran/pkg/simerr"
)

func TestParseValueUnits(t *testing.T) {
	cases := map[string]float64{
		"1k": 1000, "10meg": 1e7, "2.2n": 2.2e-9, "1.5m": 1.5e-3,
		"3": 3, "5T": 5e12, "100p": 100e-12,
	}
	for tok, want := range cases {
		got, err := ParseValue(tok)
		if err != nil {
			t.Errorf("ParseValue(%q): %v", tok, err)
			continue
		}
		if got != want {
			t.Errorf("ParseValue(%q) = %g, want %g", tok, got, want)
		}
	}
}

func TestParseValueRejectsBareM(t *testing.T) {
	// Bare "M" is deliberately absent from the unit table to avoid
	// ambiguity with "meg"; a value with a dangling M suffix is invalid.
	if _, err := ParseValue("1M"); err == nil {
		t.Error("expected error for bare M suffix, got none")
	}
}

const sampleNetlist = `* simple RC
3
V1 in 0 DC 5
R1 in mid 1k
C1 mid 0 1u IC=0
.TRAN 1m 100 BE 1
`

func TestParseResolvesNodesInFirstReferenceOrder(t *testing.T) {
	nl, err := Parse(strings.NewReader(sampleNetlist))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if nl.DeclaredNodeCount != 3 {
		t.Errorf("DeclaredNodeCount = %d, want 3", nl.DeclaredNodeCount)
	}
	wantNames := []string{"in", "mid"}
	if len(nl.NodeNames) != len(wantNames) {
		t.Fatalf("NodeNames = %v, want %v", nl.NodeNames, wantNames)
	}
	for i, n := range wantNames {
		if nl.NodeNames[i] != n {
			t.Errorf("NodeNames[%d] = %q, want %q", i, nl.NodeNames[i], n)
		}
	}
}

func TestParseTranDirective(t *testing.T) {
	nl, err := Parse(strings.NewReader(sampleNetlist))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if nl.Tran.TotalTime != 1e-3 {
		t.Errorf("TotalTime = %g, want 1e-3", nl.Tran.TotalTime)
	}
	if nl.Tran.NPoints != 100 {
		t.Errorf("NPoints = %d, want 100", nl.Tran.NPoints)
	}
	if nl.Tran.Method != device.BackwardEuler {
		t.Errorf("Method = %v, want BackwardEuler", nl.Tran.Method)
	}
	if nl.Tran.NSubsteps != 1 {
		t.Errorf("NSubsteps = %d, want 1", nl.Tran.NSubsteps)
	}
}

func TestBuildCircuitFromSampleNetlist(t *testing.T) {
	nl, err := Parse(strings.NewReader(sampleNetlist))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	c, err := nl.BuildCircuit("sample")
	if err != nil {
		t.Fatalf("BuildCircuit: %v", err)
	}
	// 2 nodes + 1 extra (V1's branch current).
	if c.Size() != 3 {
		t.Errorf("Size() = %d, want 3", c.Size())
	}
}

func TestMutualReferencingUnknownInductorFails(t *testing.T) {
	nl, err := Parse(strings.NewReader(`
L1 a 0 1m
K1 L1 L2 0.5
.TRAN 1m 10 BE 1
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, err = nl.BuildCircuit("bad")
	if err == nil {
		t.Fatal("expected error for unknown inductor reference")
	}
	var target *simerr.CouplingReferencesUnknownInductor
	if !errors.As(err, &target) {
		t.Fatalf("error %v is not CouplingReferencesUnknownInductor", err)
	}
	if target.Name != "L2" {
		t.Errorf("Name = %q, want L2", target.Name)
	}
}

func TestUnknownDeviceToken(t *testing.T) {
	nl, err := Parse(strings.NewReader(`
Z1 a 0 1
.TRAN 1m 10 BE 1
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, err = nl.BuildCircuit("bad")
	if err == nil {
		t.Fatal("expected unknown device error")
	}
}

func TestSeedDirectiveParsed(t *testing.T) {
	nl, err := Parse(strings.NewReader(`
V1 in 0 DC 5
R1 in 0 1k
.SEED 42
.TRAN 1m 10 BE 1
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !nl.HasSeed {
		t.Fatal("HasSeed = false, want true")
	}
	if nl.Seed != 42 {
		t.Errorf("Seed = %d, want 42", nl.Seed)
	}
}

func TestNoSeedDirectiveLeavesHasSeedFalse(t *testing.T) {
	nl, err := Parse(strings.NewReader(sampleNetlist))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if nl.HasSeed {
		t.Error("HasSeed = true, want false when no .SEED line is present")
	}
}

func TestModelDirectiveOverridesDiodeDefaults(t *testing.T) {
	nl, err := Parse(strings.NewReader(`
.MODEL DX D (IS=2e-12 N=1.8)
V1 a 0 DC 1
D1 a 0 DX
.TRAN 1m 10 BE 1
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	devices, _, err := nl.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	d, ok := devices[1].(*device.Diode)
	if !ok {
		t.Fatalf("devices[1] = %T, want *device.Diode", devices[1])
	}
	if d.Is != 2e-12 {
		t.Errorf("Is = %g, want 2e-12", d.Is)
	}
	if d.N != 1.8 {
		t.Errorf("N = %g, want 1.8", d.N)
	}
}

func TestDeviceReferencingUnknownModelFails(t *testing.T) {
	nl, err := Parse(strings.NewReader(`
D1 a 0 NOSUCHMODEL
.TRAN 1m 10 BE 1
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, _, err := nl.Build(); err == nil {
		t.Fatal("expected error for unknown model reference")
	}
}

func TestForwardEulerRejectsMutual(t *testing.T) {
	nl, err := Parse(strings.NewReader(`
L1 a 0 1m
L2 b 0 1m
K1 L1 L2 0.5
.TRAN 1m 10 FE 1
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := nl.BuildCircuit("fe-mutual"); err == nil {
		t.Fatal("expected Forward Euler + Mutual to be rejected")
	}
}
