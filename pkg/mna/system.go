// Package mna holds the dense Modified Nodal Analysis system: the stamp
// primitives every device uses to contribute to (A, b), and the Gauss-Jordan
// solver that resolves it each Newton iteration.
//
// Variable 0 is always ground. It is never a free variable: row and column 0
// are structurally present in the indexing scheme (so device code can pass a
// raw node index straight through) but are never written to or solved.
package mna

import (
	"math"

	"github.com/halvorsen-eng/mnatran/pkg/simerr"
)

// pivotThreshold is the minimum acceptable pivot magnitude during
// elimination. Below this the system is treated as singular.
const pivotThreshold = 1e-12

// System is the dense (A, b) pair for a circuit with Size unknowns
// (node voltages followed by extra branch variables). Variables are
// 1-indexed; index 0 designates ground and is always a no-op target.
type System struct {
	Size int

	a [][]float64 // (Size+1) x (Size+1), 1-based
	b []float64   // Size+1, 1-based

	aug []float64 // reusable augmented elimination buffer, row-major, (Size+1) rows x (Size+2) cols
	x   []float64 // reusable solution buffer, 1-based
}

// NewSystem allocates a system sized for the given number of unknowns. The
// backing storage is reused for the lifetime of the run; Reset zeroes it in
// place between rebuilds instead of reallocating.
func NewSystem(size int) *System {
	s := &System{Size: size}

	s.a = make([][]float64, size+1)
	for i := range s.a {
		s.a[i] = make([]float64, size+1)
	}
	s.b = make([]float64, size+1)
	s.aug = make([]float64, (size+1)*(size+2))
	s.x = make([]float64, size+1)

	return s
}

// Reset zeroes (A, b) before a stamp rebuild. Stamp contributions are
// additive, so every Newton iteration and every time step must start from a
// clean matrix.
func (s *System) Reset() {
	for i := 1; i <= s.Size; i++ {
		row := s.a[i]
		for j := range row {
			row[j] = 0
		}
		s.b[i] = 0
	}
}

// AddElement adds value to A[i][j]. Ground (index 0) is a structural no-op
// target, matching the invariant that ground is never a free variable.
func (s *System) AddElement(i, j int, value float64) {
	if i <= 0 || j <= 0 {
		return
	}
	s.a[i][j] += value
}

// AddRHS adds value to b[i]. A no-op for ground.
func (s *System) AddRHS(i int, value float64) {
	if i <= 0 {
		return
	}
	s.b[i] += value
}

// G is the two-terminal conductance stamp: a symmetric +/-g pattern between
// nodes a and b (ground-safe on either terminal).
func (s *System) G(a, b int, g float64) {
	s.AddElement(a, a, g)
	s.AddElement(b, b, g)
	s.AddElement(a, b, -g)
	s.AddElement(b, a, -g)
}

// Gtrans is the transconductance stamp between an output pair (a,b) and a
// control pair (c,d): used by VCCS and by the MOSFET/BJT small-signal terms.
func (s *System) Gtrans(a, b, c, d int, g float64) {
	s.AddElement(a, c, g)
	s.AddElement(b, d, g)
	s.AddElement(a, d, -g)
	s.AddElement(b, c, -g)
}

// I stamps a current source of magnitude i flowing from node a to node b
// into the RHS.
func (s *System) I(a, b int, i float64) {
	s.AddRHS(a, -i)
	s.AddRHS(b, i)
}

// Solution returns the most recently solved variable vector, 1-indexed;
// index 0 is always 0 (ground).
func (s *System) Solution() []float64 {
	return s.x
}

// At reads the current (pre-elimination) value of A[i][j]. It exists for
// spec.md §8's stamp-symmetry property check: ground (index 0) always reads
// 0, matching AddElement's no-op convention there.
func (s *System) At(i, j int) float64 {
	if i <= 0 || j <= 0 {
		return 0
	}
	return s.a[i][j]
}

func (s *System) augAt(row, col int) float64 {
	return s.aug[row*(s.Size+2)+col]
}

func (s *System) setAug(row, col int, v float64) {
	s.aug[row*(s.Size+2)+col] = v
}

// Solve performs Gauss-Jordan elimination with partial (column) pivoting on
// rows 1..Size. On each pivot column i it selects the row a>=i maximizing
// |A[a][i]|; if that magnitude is below pivotThreshold it fails with a
// *simerr.SingularSystem naming the pivot variable and the simulation time t
// at which the failure occurred. Swap rows i and the chosen row, normalize
// row i by the pivot (only columns i..Size+1 need updating), and eliminate
// column i from every other row. At completion, column Size+1 holds
// x[1..Size].
func (s *System) Solve(t float64) error {
	n := s.Size
	width := n + 2

	for i := 1; i <= n; i++ {
		for c := 1; c <= n+1; c++ {
			var v float64
			if c <= n {
				v = s.a[i][c]
			} else {
				v = s.b[i]
			}
			s.setAug(i, c, v)
		}
	}

	for i := 1; i <= n; i++ {
		pivotRow := i
		maxVal := math.Abs(s.augAt(i, i))
		for r := i + 1; r <= n; r++ {
			if v := math.Abs(s.augAt(r, i)); v > maxVal {
				maxVal = v
				pivotRow = r
			}
		}
		if maxVal < pivotThreshold {
			return &simerr.SingularSystem{Time: t, Pivot: i}
		}

		if pivotRow != i {
			base, other := i*width, pivotRow*width
			for c := i; c <= n+1; c++ {
				s.aug[base+c], s.aug[other+c] = s.aug[other+c], s.aug[base+c]
			}
		}

		pivot := s.augAt(i, i)
		base := i * width
		for c := i; c <= n+1; c++ {
			s.aug[base+c] /= pivot
		}

		for r := 1; r <= n; r++ {
			if r == i {
				continue
			}
			factor := s.augAt(r, i)
			if factor == 0 {
				continue
			}
			rbase := r * width
			for c := i; c <= n+1; c++ {
				s.aug[rbase+c] -= factor * s.aug[base+c]
			}
		}
	}

	for i := 1; i <= n; i++ {
		s.x[i] = s.augAt(i, n+1)
	}
	return nil
}
