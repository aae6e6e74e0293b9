package trace_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/halvorsen-eng/mnatran/pkg/circuit"
	"github.com/halvorsen-eng/mnatran/pkg/trace"
)

func TestWriterHeaderAndRows(t *testing.T) {
	var buf bytes.Buffer
	vars := []circuit.NamedVariable{{Name: "V(n1)", Index: 1}, {Name: "I(V1)", Index: 2}}

	w, err := trace.New(&buf, vars)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Emit(0, []float64{0, 5, 0.005}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if err := w.Emit(1e-6, []float64{0, 4.9, 0.0049}); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3 (header + 2 rows)", len(lines))
	}
	if lines[0] != "time,V(n1),I(V1)" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "0,5,0.005" {
		t.Errorf("row 1 = %q", lines[1])
	}
}

func TestWriterOutOfRangeIndexDefaultsZero(t *testing.T) {
	var buf bytes.Buffer
	vars := []circuit.NamedVariable{{Name: "V(n1)", Index: 9}}
	w, err := trace.New(&buf, vars)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Emit(0, []float64{0, 1}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if lines[1] != "0,0" {
		t.Errorf("row = %q, want out-of-range index to default to 0", lines[1])
	}
}
