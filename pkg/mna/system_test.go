package mna

import (
	"math"
	"testing"
)

func TestSystemSolveSimpleDivider(t *testing.T) {
	// Two 1-ohm resistors in series from node 1 to ground, with a 2A source
	// injected at node 1: node 2 should settle at 2V, node 1 at 4V.
	sys := NewSystem(2)
	sys.G(1, 2, 1.0) // R between node 1 and 2
	sys.G(2, 0, 1.0) // R from node 2 to ground
	sys.I(0, 1, 2.0) // 2A from ground into node 1

	if err := sys.Solve(0); err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}

	sol := sys.Solution()
	if math.Abs(sol[1]-4.0) > 1e-9 {
		t.Errorf("V(1) = %g, want 4", sol[1])
	}
	if math.Abs(sol[2]-2.0) > 1e-9 {
		t.Errorf("V(2) = %g, want 2", sol[2])
	}
}

func TestSystemGroundIsNoop(t *testing.T) {
	sys := NewSystem(1)
	sys.AddElement(0, 0, 5)
	sys.AddElement(0, 1, 5)
	sys.AddRHS(0, 5)
	sys.AddElement(1, 1, 1)
	sys.AddRHS(1, 3)

	if err := sys.Solve(0); err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}
	if sol := sys.Solution(); math.Abs(sol[1]-3.0) > 1e-9 {
		t.Errorf("V(1) = %g, want 3 (ground contributions must be ignored)", sol[1])
	}
}

func TestSystemResetClearsStamps(t *testing.T) {
	sys := NewSystem(1)
	sys.AddElement(1, 1, 1)
	sys.AddRHS(1, 3)
	if err := sys.Solve(0); err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}

	sys.Reset()
	sys.AddElement(1, 1, 2)
	sys.AddRHS(1, 4)
	if err := sys.Solve(0); err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}
	if sol := sys.Solution(); math.Abs(sol[1]-2.0) > 1e-9 {
		t.Errorf("V(1) = %g, want 2 after reset+restamp", sol[1])
	}
}

func TestSystemSingular(t *testing.T) {
	sys := NewSystem(1)
	// No stamp at all: the diagonal is structurally zero, so factorization
	// must fail rather than silently returning a degenerate solution.
	err := sys.Solve(1.5)
	if err == nil {
		t.Fatal("expected singular system error, got nil")
	}
}
