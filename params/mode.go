package params

// Mode is the simulation-mode bitset (spec §3, §9: "model as an enum of
// named bits plus explicit set/clear/toggle/test operations; do not
// overload numeric operators on the type implicitly").
type Mode uint32

const (
	EditView Mode = 1 << iota
	EmitterActive
	EditEmitter
	EditMover
	PauseCompute
	Exit
)

func (m Mode) Has(bit Mode) bool { return m&bit != 0 }

func (m *Mode) Set(bit Mode) { *m |= bit }

func (m *Mode) Clear(bit Mode) { *m &^= bit }

func (m *Mode) Toggle(bit Mode) { *m ^= bit }
