package sandbox

import (
	"fmt"
	"sync/atomic"
)

// callPhase represents a state in the per-call state machine:
// Loaded → Running → {Completed, Faulted}. Both end states are
// terminal; a retry is a fresh CallRequest with a fresh guard.
type callPhase uint32

const (
	// phaseLoaded: environment assembled, script not yet started.
	phaseLoaded callPhase = iota
	// phaseRunning: the script is executing under quota.
	phaseRunning
	// phaseCompleted: the call ran to completion.
	phaseCompleted
	// phaseFaulted: the call ended in a quota or runtime fault.
	phaseFaulted
)

func (p callPhase) String() string {
	switch p {
	case phaseLoaded:
		return "Loaded"
	case phaseRunning:
		return "Running"
	case phaseCompleted:
		return "Completed"
	case phaseFaulted:
		return "Faulted"
	default:
		return fmt.Sprintf("unknown(%d)", p)
	}
}

// callGuard enforces the per-call state machine. Transitions out of
// order are engine bugs, not caller errors, so they panic.
type callGuard struct {
	phase atomic.Uint32
}

func newCallGuard() *callGuard {
	g := &callGuard{}
	g.phase.Store(uint32(phaseLoaded))
	return g
}

// Phase returns the current phase.
func (g *callGuard) Phase() string {
	return callPhase(g.phase.Load()).String()
}

// begin transitions Loaded → Running.
func (g *callGuard) begin() {
	if !g.phase.CompareAndSwap(uint32(phaseLoaded), uint32(phaseRunning)) {
		panic(fmt.Sprintf("github.com/satvm/satvm: call started in phase %s (expected Loaded)",
			callPhase(g.phase.Load())))
	}
}

// complete transitions Running → Completed.
func (g *callGuard) complete() {
	if !g.phase.CompareAndSwap(uint32(phaseRunning), uint32(phaseCompleted)) {
		panic(fmt.Sprintf("github.com/satvm/satvm: call completed in phase %s (expected Running)",
			callPhase(g.phase.Load())))
	}
}

// fault transitions Running → Faulted.
func (g *callGuard) fault() {
	if !g.phase.CompareAndSwap(uint32(phaseRunning), uint32(phaseFaulted)) {
		panic(fmt.Sprintf("github.com/satvm/satvm: call faulted in phase %s (expected Running)",
			callPhase(g.phase.Load())))
	}
}
