// Command gosph-snap is the snapshot consumer (spec §6.4): a single
// process that reads a binary trace file written by gosph's TraceSink and
// prints a header line (run id, dimension stride) followed by one line per
// step (step, rank count, particle count, byte count) so a viewer or
// analysis script has a human-checkable record to diff against.
//
// Usage: gosph-snap trace.bin
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/cpmech/gosph/snap"
)

func main() {
	exitCode := 0
	defer func() {
		if err := recover(); err != nil {
			chk.Verbose = true
			chk.CallerInfo(5)
			io.PfRed("ERROR: %v\n", err)
			exitCode = 1
		}
		os.Exit(exitCode)
	}()

	flag.Parse()
	if len(flag.Args()) == 0 {
		chk.Panic("Please provide a trace filename. Ex.: run.trace")
	}
	fnamepath := flag.Arg(0)
	if io.FnExt(fnamepath) == "" {
		fnamepath += ".trace"
	}

	f, err := os.Open(fnamepath)
	if err != nil {
		chk.Panic("cannot open trace file %q: %v", fnamepath, err)
	}
	defer f.Close()

	reader, err := snap.NewTraceReader(f)
	if err != nil {
		chk.Panic("cannot read trace header: %v", err)
	}

	io.PfWhite("\ngosph-snap -- run %s, dimension stride %d\n\n", reader.RunID, reader.Stride)

	for {
		rec, err := reader.Next()
		if err == snap.ErrTraceEOF {
			break
		}
		if err != nil {
			chk.Panic("reading trace record: %v", err)
		}
		fmt.Printf("step %6d  ranks %2d  particles %6d  bytes %d\n",
			rec.Step, len(rec.RankByteCounts), len(rec.Positions), rec.GlobalBytes)
	}
}
