package dispatch

import (
	"github.com/goranb131/chthon/internal/process"
	"github.com/goranb131/chthon/pkg/klog"
	"github.com/goranb131/chthon/pkg/message"
)

// fork matches MSG_FORK: a child process is created and its PID reported
// back in msg.PID, unconditionally, exactly as create_process/msg->pid
// does. The original then falls through two branches that both just
// `return 0` (an unreachable "are we the child" check, since a Message is
// always handled on the caller's own stack) — here the child still needs
// a goroutine to exist at all, so it is launched with a do-nothing entry
// point that exits immediately, matching that unreachable branch's intent
// for any child that EXEC never reaches.
func (d *Dispatcher) fork(p *process.Process, msg *message.Message) int64 {
	child := d.Sched.Fork(p)
	msg.PID = child.ID
	d.Sched.Launch(child, func(*process.Process) int { return 0 })
	return 0
}

// exec matches handle_exec_message: msg.Path names a program to load.
// Since this module has no guest address space to load an ELF-like image
// into, Programs stands in for the loader — the calling process's entry
// point is replaced and relaunched under its existing PID rather than a
// freshly forked one, matching exec's usual "same process, new image"
// contract (as opposed to FORK's "new process" one).
func (d *Dispatcher) exec(p *process.Process, msg *message.Message) int64 {
	prog, ok := d.Programs[msg.Path]
	if !ok {
		klog.Debug("dispatch: exec: no program installed for %q", msg.Path)
		return -1
	}
	d.Sched.Launch(p, prog)
	return 0
}

// wait matches MSG_WAIT: scan for an already-zombie child first, and only
// block (yield, then rescan on wake) if none is found yet. Unlike the
// original, a reaped zombie is actually removed from the table — message.c
// leaves it in process_list forever, which this module treats as a leak
// rather than a behavior to preserve.
func (d *Dispatcher) wait(p *process.Process, msg *message.Message) int64 {
	if z := d.Table.ZombieChild(p.ID); z != nil {
		msg.Status = z.ExitStatus
		msg.PID = z.ID
		d.Table.Remove(z.ID)
		return 0
	}

	for {
		d.Sched.Yield(p)
		if z := d.Table.ZombieChild(p.ID); z != nil {
			msg.Status = z.ExitStatus
			msg.PID = z.ID
			d.Table.Remove(z.ID)
			return 0
		}
	}
}
