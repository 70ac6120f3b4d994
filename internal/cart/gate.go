package cart

import "sync/atomic"

// Phase is the mutation state of a Manager.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseMutating
)

func (p Phase) String() string {
	if p == PhaseMutating {
		return "mutating"
	}
	return "idle"
}

// gate admits one mutation at a time. A request that arrives while another
// mutation holds the gate is refused, never queued.
type gate struct {
	phase atomic.Int32
}

// enter moves Idle -> Mutating and reports whether the caller now owns the gate.
func (g *gate) enter() bool {
	return g.phase.CompareAndSwap(int32(PhaseIdle), int32(PhaseMutating))
}

// leave moves Mutating -> Idle.
func (g *gate) leave() {
	g.phase.Store(int32(PhaseIdle))
}

func (g *gate) current() Phase {
	return Phase(g.phase.Load())
}
