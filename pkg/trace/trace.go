// Package trace implements the Trace Writer (spec.md §4.7): a header row
// naming every circuit variable, followed by one data row per accepted step
// at the configured n_substeps cadence.
package trace

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/halvorsen-eng/mnatran/pkg/circuit"
)

// Writer appends rows to an underlying CSV stream. Number formatting uses
// strconv's shortest round-trip representation so every value reloads to
// its exact double-precision bit pattern (spec.md §4.7).
type Writer struct {
	csv  *csv.Writer
	vars []circuit.NamedVariable
	row  []string // reused per-call scratch buffer
}

// New wraps w and writes the header row immediately, labeling the time
// column and one column per circuit variable in index order.
func New(w io.Writer, vars []circuit.NamedVariable) (*Writer, error) {
	tw := &Writer{csv: csv.NewWriter(w), vars: vars, row: make([]string, len(vars)+1)}

	header := make([]string, len(vars)+1)
	header[0] = "time"
	for i, v := range vars {
		header[i+1] = v.Name
	}
	if err := tw.csv.Write(header); err != nil {
		return nil, err
	}
	return tw, nil
}

// Emit writes one data row for time t and the accepted solution vector.
func (tw *Writer) Emit(t float64, solution []float64) error {
	tw.row[0] = formatFloat(t)
	for i, v := range tw.vars {
		val := 0.0
		if v.Index >= 0 && v.Index < len(solution) {
			val = solution[v.Index]
		}
		tw.row[i+1] = formatFloat(val)
	}
	if err := tw.csv.Write(tw.row); err != nil {
		return err
	}
	tw.csv.Flush()
	return tw.csv.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
