package snap

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/cpmech/gosph/vec"
)

// ErrTraceEOF is returned by TraceReader.Next once every record has been
// consumed, distinct from io.EOF so a truncated record (a real corruption)
// still surfaces as an ordinary error.
var ErrTraceEOF = errors.New("snap: trace exhausted")

// TraceRecord is one step's worth of gathered positions, as written by
// TraceSink.
type TraceRecord struct {
	Step           uint64
	GlobalBytes    uint64
	RankByteCounts []uint64
	RankOffsets    []uint64
	Positions      []vec.Vec
}

// TraceReader reads records back out of a file written by TraceSink.
type TraceReader struct {
	RunID  string
	Stride int

	r io.Reader
}

// NewTraceReader validates the header and positions r at the first record.
func NewTraceReader(r io.Reader) (*TraceReader, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, err
	}
	if string(magic[:]) != traceMagic {
		return nil, errors.New("snap: bad trace magic")
	}
	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, err
	}
	if version != traceVersion {
		return nil, errors.New("snap: unsupported trace version")
	}
	runIDBuf := make([]byte, 36)
	if _, err := io.ReadFull(r, runIDBuf); err != nil {
		return nil, err
	}
	var stride uint32
	if err := binary.Read(r, binary.LittleEndian, &stride); err != nil {
		return nil, err
	}
	return &TraceReader{RunID: string(runIDBuf), Stride: int(stride), r: r}, nil
}

// Next reads the following record, or ErrTraceEOF once the stream is
// cleanly exhausted (no bytes left before a record's step field).
func (t *TraceReader) Next() (TraceRecord, error) {
	var rec TraceRecord

	var step [8]byte
	n, err := io.ReadFull(t.r, step[:])
	if n == 0 && err == io.EOF {
		return TraceRecord{}, ErrTraceEOF
	}
	if err != nil {
		return TraceRecord{}, err
	}
	rec.Step = binary.LittleEndian.Uint64(step[:])

	if err := binary.Read(t.r, binary.LittleEndian, &rec.GlobalBytes); err != nil {
		return TraceRecord{}, err
	}
	var rankCount uint32
	if err := binary.Read(t.r, binary.LittleEndian, &rankCount); err != nil {
		return TraceRecord{}, err
	}

	rec.RankByteCounts = make([]uint64, rankCount)
	rec.RankOffsets = make([]uint64, rankCount)
	for i := 0; i < int(rankCount); i++ {
		if err := binary.Read(t.r, binary.LittleEndian, &rec.RankByteCounts[i]); err != nil {
			return TraceRecord{}, err
		}
		if err := binary.Read(t.r, binary.LittleEndian, &rec.RankOffsets[i]); err != nil {
			return TraceRecord{}, err
		}
	}

	numReals := int(rec.GlobalBytes/8)
	payload := make([]float64, numReals)
	if err := binary.Read(t.r, binary.LittleEndian, payload); err != nil {
		return TraceRecord{}, err
	}
	reals := make([]vec.Real, numReals)
	for i, v := range payload {
		reals[i] = vec.Real(v)
	}
	rec.Positions = vec.Unflatten(reals, numReals)

	return rec, nil
}
