package process

import "sync"

// Table is the process table: a PID-indexed map standing in for the
// original's singly linked process_list, with parent references kept as
// plain PIDs rather than pointers (spec.md §9: no pointer cycles).
type Table struct {
	mu     sync.Mutex
	procs  map[int]*Process
	nextID int
}

// NewTable returns an empty table. PIDs start at 1; PID 0 is reserved to
// mean "no parent" (the root process's ParentID).
func NewTable() *Table {
	return &Table{procs: make(map[int]*Process), nextID: 1}
}

// Create allocates a new process with the given parent PID (0 for none)
// and adds it to the table.
func (t *Table) Create(parentID int) *Process {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	p := newProcess(id, parentID)
	t.procs[id] = p
	return p
}

// Get returns the process with the given PID, or nil if none exists.
func (t *Table) Get(pid int) *Process {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.procs[pid]
}

// Remove deletes a process from the table, called once its parent has
// reaped it via WAIT (or at shutdown).
func (t *Table) Remove(pid int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.procs, pid)
}

// ZombieChild returns the first ZOMBIE process whose ParentID is parentID,
// or nil if none, matching the process_list scan in message.c's MSG_WAIT.
func (t *Table) ZombieChild(parentID int) *Process {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, p := range t.procs {
		p.mu.Lock()
		match := p.ParentID == parentID && p.State == Zombie
		p.mu.Unlock()
		if match {
			return p
		}
	}
	return nil
}

// Len reports how many processes are currently in the table.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.procs)
}
