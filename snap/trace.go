package snap

import (
	"encoding/binary"
	"io"

	"github.com/google/uuid"

	"github.com/cpmech/gosph/vec"
)

// traceMagic identifies a trace file, the same role VOXMagicNumber plays in
// a .vox file: a fixed 4-byte tag checked before anything else is trusted.
const traceMagic = "GSPH"

const traceVersion uint32 = 1

// TraceSink implements Sink by writing one binary record per step: the
// per-rank payload offsets (an exclusive scan of each rank's local byte
// count) followed by the gathered positions themselves (spec §6.3). Only
// world rank 0 touches Out; every rank must still call Emit so the
// underlying gather collectives complete.
//
// Every TraceSink gets a fresh UUID stamped into the file header, so trace
// files written by different runs can be told apart during offline
// analysis.
type TraceSink struct {
	World World
	Out   io.Writer

	runID         string
	headerWritten bool
}

// NewTraceSink wires a fresh run identifier into the header of out.
func NewTraceSink(world World, out io.Writer) *TraceSink {
	return &TraceSink{World: world, Out: out, runID: uuid.NewString()}
}

func (t *TraceSink) Emit(step uint64, positions []vec.Vec) error {
	localBytes := uint64(len(positions) * vec.Stride() * 8)
	counts := t.World.GatherUint64(localBytes, 0)
	gathered := t.World.GatherVarReals(vec.Flatten(positions), 0)

	if t.World.Rank() != 0 {
		return nil
	}

	if !t.headerWritten {
		if err := t.writeHeader(); err != nil {
			return err
		}
		t.headerWritten = true
	}

	offsets := make([]uint64, len(counts))
	var globalBytes uint64
	for i, c := range counts {
		offsets[i] = globalBytes
		globalBytes += c
	}

	if err := binary.Write(t.Out, binary.LittleEndian, step); err != nil {
		return err
	}
	if err := binary.Write(t.Out, binary.LittleEndian, globalBytes); err != nil {
		return err
	}
	if err := binary.Write(t.Out, binary.LittleEndian, uint32(len(counts))); err != nil {
		return err
	}
	for i := range counts {
		if err := binary.Write(t.Out, binary.LittleEndian, counts[i]); err != nil {
			return err
		}
		if err := binary.Write(t.Out, binary.LittleEndian, offsets[i]); err != nil {
			return err
		}
	}

	payload := make([]float64, len(gathered))
	for i, r := range gathered {
		payload[i] = float64(r)
	}
	return binary.Write(t.Out, binary.LittleEndian, payload)
}

func (t *TraceSink) writeHeader() error {
	if _, err := io.WriteString(t.Out, traceMagic); err != nil {
		return err
	}
	if err := binary.Write(t.Out, binary.LittleEndian, traceVersion); err != nil {
		return err
	}
	if _, err := io.WriteString(t.Out, t.runID); err != nil {
		return err
	}
	return binary.Write(t.Out, binary.LittleEndian, uint32(vec.Stride()))
}
