// Package snap implements the snapshot sink (spec component H, §6.3): an
// opaque per-step consumer of resident particle positions. The core commits
// only to invoking whichever Sink was configured once per step; it never
// looks inside one.
package snap

import "github.com/cpmech/gosph/vec"

// Sink receives the current resident positions once per step. Implementations
// must not retain the slice past the call: callers are free to reuse the
// backing array on the next step.
type Sink interface {
	Emit(step uint64, positions []vec.Vec) error
}

// Multi fans a single Emit out to every wrapped sink, stopping at the first
// error (mirroring the core's own fail-fast error propagation, spec §7).
type Multi []Sink

func (m Multi) Emit(step uint64, positions []vec.Vec) error {
	for _, s := range m {
		if err := s.Emit(step, positions); err != nil {
			return err
		}
	}
	return nil
}
