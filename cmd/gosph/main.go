// Command gosph is the compute driver (spec §6.4): it owns N MPI ranks,
// runs the PBD-SPH step loop to completion, and optionally traces resident
// positions to a binary file each step.
//
// Usage: gosph [-steps N] [-workers N] [-trace path] params.ini
//
// Rank 0 of this process's own MPI world doubles as the snapshot gather
// target (DESIGN.md "compute/renderer split"): gosl/mpi's wrapper exposes
// only a flat communicator with no verified Comm_split, so rather than
// fabricate one, the live renderer-facing split described in spec §6.2 is
// approximated by reusing the compute Transport itself as the snap.World,
// and the cross-job hand-off promised by having a separate snapshot-consumer
// executable (spec §6.4) goes through the binary trace file instead of a
// second communicator.
package main

import (
	"flag"
	"os"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/mpi"
	"github.com/cpmech/gosl/utl"

	"github.com/cpmech/gosph/algo"
	"github.com/cpmech/gosph/distr"
	"github.com/cpmech/gosph/grid"
	"github.com/cpmech/gosph/params"
	"github.com/cpmech/gosph/prt"
	"github.com/cpmech/gosph/snap"
	"github.com/cpmech/gosph/solver"
)

func main() {
	exitCode := 0

	defer func() {
		if err := recover(); err != nil {
			if mpi.Rank() == 0 {
				chk.Verbose = true
				for i := 8; i > 3; i-- {
					chk.CallerInfo(i)
				}
				io.PfRed("ERROR: %v\n", err)
			}
			exitCode = 1
		}
		mpi.Stop(false)
		os.Exit(exitCode)
	}()
	mpi.Start(false)

	if mpi.Rank() == 0 {
		io.PfWhite("\ngosph -- distributed PBD-SPH fluid solver\n\n")
	}

	steps := flag.Int("steps", 0, "stop after this many steps (0 = run until Ctrl-C)")
	workers := flag.Int("workers", 4, "CPU thread-team width")
	tracePath := flag.String("trace", "", "binary trace output path (empty disables tracing)")
	flag.Parse()

	if len(flag.Args()) == 0 {
		chk.Panic("Please provide a parameters filename. Ex.: cylinder.ini")
	}
	fnamepath := flag.Arg(0)
	if io.FnExt(fnamepath) == "" {
		fnamepath += ".ini"
	}

	defer utl.DoProf(false)()

	p, err := params.Load(fnamepath)
	if err != nil {
		chk.Panic("%v", err)
	}
	p.DeriveDefaults()
	p.Validate()

	transport := distr.NewMPITransport()
	distributor := distr.New(transport)

	store := prt.New(p.MaxParticlesLocal)
	distributor.InitializeFluid(store, p)

	backend := algo.NewThreadPool(*workers)
	index := grid.New(backend, p.Boundary, p.NeighborBinSpacing, p.MaxParticlesLocal)
	sim := solver.New(backend, store, index, p, solver.DefaultConfig())

	var sink snap.Sink
	var traceFile *os.File
	if *tracePath != "" {
		traceFile, err = os.Create(*tracePath)
		if err != nil {
			chk.Panic("cannot create trace file %q: %v", *tracePath, err)
		}
		sink = snap.NewTraceSink(transport, traceFile)
	}

	for step := uint64(0); *steps == 0 || step < uint64(*steps); step++ {
		distributor.SyncFromRenderer(transport, p)
		distributor.ProcessParameters(p, store)

		sim.ApplyExternalForces(distributor.ResidentSpan())
		sim.PredictPositions(distributor.ResidentSpan())

		distributor.BalanceDomains()

		distributor.InvalidateHalo(store)
		distributor.DomainSync(store)

		sim.Step(distributor.ResidentSpan(), distributor.LocalSpan(), distributor)

		if sink != nil {
			if err := sink.Emit(step, store.Position[:distributor.ResidentCount()]); err != nil {
				chk.Panic("trace emit failed: %v", err)
			}
		}
	}

	if traceFile != nil {
		if err := traceFile.Close(); err != nil {
			chk.Panic("closing trace file: %v", err)
		}
	}
}
