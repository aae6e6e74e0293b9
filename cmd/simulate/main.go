// Command simulate is the thin CLI wrapper around the transient simulation
// core: it owns netlist file I/O, output formatting, and the process exit
// code (spec.md §6's "deliberately out of scope" list), wiring
// pkg/netlist -> pkg/tran -> pkg/trace with no simulation logic of its own.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/halvorsen-eng/mnatran/pkg/netlist"
	"github.com/halvorsen-eng/mnatran/pkg/newton"
	"github.com/halvorsen-eng/mnatran/pkg/simerr"
	"github.com/halvorsen-eng/mnatran/pkg/trace"
	"github.com/halvorsen-eng/mnatran/pkg/tran"
)

const (
	exitOK = iota
	exitFileNotFound
	exitSingular
	exitNoConvergence
	exitTooManyVariables
)

func main() {
	seed := flag.Int64("seed", 1, "seed for Newton randomized restarts (overrides a netlist .SEED line)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: simulate <netlist>")
		os.Exit(exitFileNotFound)
	}

	var seedFlagSet bool
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			seedFlagSet = true
		}
	})

	os.Exit(run(flag.Arg(0), *seed, seedFlagSet))
}

// run executes one simulation. seed is the CLI --seed value; it is only
// honored as an override of a netlist .SEED line when seedExplicit is true
// (spec.md §9's seedable-for-testability requirement applies to whichever
// source the caller actually specified, with the command line taking
// precedence since it is the more specific override).
func run(path string, seed int64, seedExplicit bool) int {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "simulate: %v\n", err)
		return exitFileNotFound
	}
	defer f.Close()

	nl, err := netlist.Parse(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "simulate: parsing %s: %v\n", path, err)
		return exitFileNotFound
	}

	if !seedExplicit && nl.HasSeed {
		seed = nl.Seed
	}

	circ, err := nl.BuildCircuit(path)
	if err != nil {
		return exitForBuildError(err)
	}

	writer, err := trace.New(os.Stdout, circ.Variables)
	if err != nil {
		fmt.Fprintf(os.Stderr, "simulate: %v\n", err)
		return exitFileNotFound
	}

	driver := newton.NewDriver(seed)
	integrator := tran.New(circ, driver, nl.Tran.Method, nl.Tran.TotalTime, nl.Tran.NPoints, nl.Tran.NSubsteps)

	if err := integrator.Run(writer.Emit); err != nil {
		return exitForRunError(err)
	}
	return exitOK
}

func exitForBuildError(err error) int {
	fmt.Fprintf(os.Stderr, "simulate: %v\n", err)

	var tooMany *simerr.TooManyVariables
	if errors.As(err, &tooMany) {
		return exitTooManyVariables
	}
	return exitFileNotFound
}

func exitForRunError(err error) int {
	fmt.Fprintf(os.Stderr, "simulate: %v\n", err)

	var singular *simerr.SingularSystem
	if errors.As(err, &singular) {
		return exitSingular
	}
	var noConv *simerr.NoConvergence
	if errors.As(err, &noConv) {
		return exitNoConvergence
	}
	return exitSingular
}
