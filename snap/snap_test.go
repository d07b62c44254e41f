package snap

import (
	"bytes"
	"encoding/binary"
	"sync"
	"testing"

	"github.com/cpmech/gosph/distr"
	"github.com/cpmech/gosph/vec"
)

// distr.Transport's method set is a superset of World, so the same
// in-process network used to test the distributor doubles as a World here
// without snap importing distr outside its tests.

func TestGatherSinkCollectsOnRootOnly(t *testing.T) {
	vec.SetDim(vec.D3)

	net := distr.NewLocalNetwork(2)
	var collected []vec.Vec
	var collectCount int

	sink0 := &GatherSink{World: net[0]}
	sink1 := &GatherSink{World: net[1]}
	sink0.Collect = func(step uint64, positions []vec.Vec) {
		collected = positions
		collectCount++
	}

	p0 := []vec.Vec{{X: 1, Y: 0, Z: 0}}
	p1 := []vec.Vec{{X: 2, Y: 0, Z: 0}, {X: 3, Y: 0, Z: 0}}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); sink0.Emit(1, p0) }()
	go func() { defer wg.Done(); sink1.Emit(1, p1) }()
	wg.Wait()

	if collectCount != 1 {
		t.Fatalf("Collect called %d times, want 1 (root only)", collectCount)
	}
	if len(collected) != 3 {
		t.Fatalf("collected %d positions, want 3", len(collected))
	}
}

func TestTraceSinkWritesHeaderAndRecordOnRootOnly(t *testing.T) {
	vec.SetDim(vec.D3)

	net := distr.NewLocalNetwork(2)
	var buf0, buf1 bytes.Buffer
	trace0 := NewTraceSink(net[0], &buf0)
	trace1 := NewTraceSink(net[1], &buf1)

	p0 := []vec.Vec{{X: 1, Y: 0, Z: 0}}
	p1 := []vec.Vec{{X: 2, Y: 0, Z: 0}}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); trace0.Emit(7, p0) }()
	go func() { defer wg.Done(); trace1.Emit(7, p1) }()
	wg.Wait()

	if buf0.Len() == 0 {
		t.Fatalf("root rank wrote nothing")
	}
	if buf1.Len() != 0 {
		t.Fatalf("non-root rank wrote %d bytes, want 0", buf1.Len())
	}

	data := buf0.Bytes()
	if string(data[:4]) != traceMagic {
		t.Fatalf("magic = %q, want %q", data[:4], traceMagic)
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	if version != traceVersion {
		t.Fatalf("version = %d, want %d", version, traceVersion)
	}
}

// TestMultiStopsOnFirstError confirms Multi fails fast rather than running
// every sink regardless of earlier errors.
func TestMultiStopsOnFirstError(t *testing.T) {
	calls := 0
	failing := sinkFunc(func(step uint64, positions []vec.Vec) error {
		calls++
		return errBoom
	})
	never := sinkFunc(func(step uint64, positions []vec.Vec) error {
		calls++
		return nil
	})

	m := Multi{failing, never}
	if err := m.Emit(1, nil); err != errBoom {
		t.Fatalf("err = %v, want errBoom", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (fail fast)", calls)
	}
}

type sinkFunc func(step uint64, positions []vec.Vec) error

func (f sinkFunc) Emit(step uint64, positions []vec.Vec) error { return f(step, positions) }

var errBoom = boomError{}

type boomError struct{}

func (boomError) Error() string { return "boom" }
