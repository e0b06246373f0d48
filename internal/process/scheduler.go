package process

import "sync"

// Scheduler hands a single CPU token to one process at a time, in strict
// FIFO order, the goroutine-based realization of spec.md §5's "exactly one
// RUNNING process at any instant": every process runs on its own goroutine,
// but only the one holding the token may touch shared kernel state or call
// into the dispatcher. A process gives the token back exactly at the two
// suspension points the original kernel has: a blocking receive on an
// empty queue, and WAIT with no zombie child yet (see Yield).
type Scheduler struct {
	mu    sync.Mutex
	cond  *sync.Cond
	table *Table

	ready   []int // READY pids, FIFO
	running int   // currently RUNNING pid, 0 if none
}

// NewScheduler returns a Scheduler backed by table.
func NewScheduler(table *Table) *Scheduler {
	s := &Scheduler{table: table}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Enqueue places p at the back of the ready queue and marks it READY. Used
// both for a freshly created process and for one a prior Wake reactivates.
func (s *Scheduler) Enqueue(p *Process) {
	s.mu.Lock()
	p.Lock()
	p.State = Ready
	p.Unlock()
	s.ready = append(s.ready, p.ID)
	s.cond.Broadcast()
	s.mu.Unlock()
}

// waitForTurn blocks until pid is at the front of the ready queue and no
// other process is currently running, then claims the token on pid's
// behalf. Callers must not hold s.mu.
func (s *Scheduler) waitForTurn(pid int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for !(s.running == 0 && len(s.ready) > 0 && s.ready[0] == pid) {
		s.cond.Wait()
	}
	s.ready = s.ready[1:]
	s.running = pid
	if p := s.table.Get(pid); p != nil {
		p.Lock()
		p.State = Running
		p.Unlock()
	}
}

// Launch enqueues p and starts its goroutine, which blocks until p's first
// turn, runs entry to completion (entry itself calls Yield at the
// suspension points it needs to give up the CPU), and then exits p with
// entry's return value as its exit status.
func (s *Scheduler) Launch(p *Process, entry func(*Process) int) {
	s.Enqueue(p)
	go func() {
		s.waitForTurn(p.ID)
		status := entry(p)
		s.Exit(p, status)
	}()
}

// Yield suspends the calling goroutine: it marks p BLOCKED, releases the
// token, and parks until some later Wake(p) call makes it p's turn again.
// Only call this from the goroutine that currently holds p's token.
func (s *Scheduler) Yield(p *Process) {
	s.mu.Lock()
	p.Lock()
	p.State = Blocked
	p.Unlock()
	if s.running == p.ID {
		s.running = 0
	}
	s.cond.Broadcast()
	s.mu.Unlock()

	s.waitForTurn(p.ID)
}

// Wake moves a BLOCKED process back to READY and appends it to the ready
// queue. A no-op if p is not currently BLOCKED (already ready, running, or
// a zombie).
func (s *Scheduler) Wake(p *Process) {
	p.Lock()
	blocked := p.State == Blocked
	p.Unlock()
	if !blocked {
		return
	}
	s.Enqueue(p)
}

// Exit marks p a ZOMBIE with the given exit status, releases the token if
// p was holding it, and wakes its parent if the parent is blocked in WAIT
// (there is no separate "waiting for this specific child" state; the
// parent simply rescans on every wake, matching message.c's MSG_WAIT).
func (s *Scheduler) Exit(p *Process, status int) {
	s.mu.Lock()
	p.Lock()
	p.State = Zombie
	p.ExitStatus = status
	p.Unlock()
	if s.running == p.ID {
		s.running = 0
	}
	s.cond.Broadcast()
	s.mu.Unlock()

	if parent := s.table.Get(p.ParentID); parent != nil {
		s.Wake(parent)
	}
}

// Fork creates a child of parent: a fresh PID, the parent's CWD, a deep
// copy of its namespace bindings (spec.md §4.5: namespaces are inherited,
// not shared) and an empty message queue. It does not itself schedule the
// child; the dispatcher's FORK handler calls Launch with an entry point
// that exits with status 0 the moment it is first scheduled, matching the
// original's "if (new == get_current_process()) return 0" branch being
// unreachable for a real child.
func (s *Scheduler) Fork(parent *Process) *Process {
	parent.Lock()
	cwd := parent.CWD
	ns := parent.NS.Clone()
	parent.Unlock()

	child := s.table.Create(parent.ID)
	child.CWD = cwd
	child.NS = ns
	return child
}
