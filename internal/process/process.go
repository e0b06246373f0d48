// Package process implements the process table and cooperative scheduler
// described in the original kernel's process.c/kernel.c: a flat list of
// processes addressed by PID, each carrying its own CWD, namespace
// bindings and bounded message queue, scheduled one at a time in strict
// round-robin order.
package process

import (
	"sync"

	"github.com/goranb131/chthon/internal/namespace"
)

// State is a process's scheduling state.
type State int

const (
	Ready State = iota
	Running
	Blocked
	Zombie
)

func (s State) String() string {
	switch s {
	case Ready:
		return "READY"
	case Running:
		return "RUNNING"
	case Blocked:
		return "BLOCKED"
	case Zombie:
		return "ZOMBIE"
	}
	return "STATE(?)"
}

// Registers mirrors the handful of AArch64 general-purpose registers the
// trap gateway forges a Message from (x0, x1, x2, x8) and the ones EXEC
// sets up for a fresh entry point.
type Registers struct {
	R0, R1, R2, R8 uint64
	PC, SP         uint64
}

// Process is one entry in the process table. It exclusively owns its CWD,
// namespace bindings and message queue, matching spec.md's ownership summary.
type Process struct {
	mu sync.Mutex

	ID       int
	ParentID int
	State    State
	ExitStatus int

	Regs Registers
	CWD  string
	NS   *namespace.Bindings
	Queue *MessageQueue

	// program is not set by anything: EXEC and FORK pass their entry
	// points to Scheduler.Launch directly.
	program func(*Process) int
}

func newProcess(id, parent int) *Process {
	return &Process{
		ID:       id,
		ParentID: parent,
		State:    Ready,
		CWD:      "/",
		NS:       &namespace.Bindings{},
		Queue:    NewMessageQueue(),
	}
}

// Lock/Unlock let dispatch handlers (GETCWD/CHDIR) make multi-step
// read-modify-write edits to a process's own fields without another
// goroutine observing a half-updated CWD. The scheduler never holds this
// lock across a yield.
func (p *Process) Lock()   { p.mu.Lock() }
func (p *Process) Unlock() { p.mu.Unlock() }
