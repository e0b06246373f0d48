// Package dispatch implements the message dispatcher at the heart of the
// kernel: one handler per message.Type, grounded case-by-case on
// send_message/receive_message/handle_message in the original kernel's
// message.c. Every path-bearing case runs the same pipeline before
// touching the filesystem: join against the calling process's CWD if
// relative, resolve through its namespace bindings, then normalize —
// after which the VFS never needs to know a namespace exists.
package dispatch

import (
	"path"
	"strings"

	"github.com/goranb131/chthon/internal/console"
	"github.com/goranb131/chthon/internal/process"
	"github.com/goranb131/chthon/internal/vfs"
	"github.com/goranb131/chthon/pkg/klog"
	"github.com/goranb131/chthon/pkg/message"
)

// Program is an installed EXEC entry point: the in-process stand-in for
// loading an AArch64 binary image at a path, since this module has no
// guest address space to load one into. See Dispatcher.exec.
type Program func(*process.Process) int

// Dispatcher wires every message.Type to the subsystem that serves it.
type Dispatcher struct {
	VFS     *vfs.VFS
	Table   *process.Table
	Sched   *process.Scheduler
	Console *console.Console

	Programs map[string]Program
}

// New returns a Dispatcher over the given kernel subsystems.
func New(v *vfs.VFS, t *process.Table, s *process.Scheduler, c *console.Console) *Dispatcher {
	return &Dispatcher{VFS: v, Table: t, Sched: s, Console: c, Programs: make(map[string]Program)}
}

// Install registers name as an EXEC target.
func (d *Dispatcher) Install(name string, prog Program) {
	d.Programs[name] = prog
}

// resolvePath implements the join-resolve-normalize pipeline every
// path-bearing case runs before reaching the VFS.
func (d *Dispatcher) resolvePath(p *process.Process, raw string) string {
	full := raw
	if !strings.HasPrefix(raw, "/") {
		p.Lock()
		cwd := p.CWD
		p.Unlock()
		full = path.Join(cwd, raw)
	}

	p.Lock()
	resolved := p.NS.Resolve(full)
	p.Unlock()

	return vfs.Normalize(resolved)
}

// Dispatch runs msg against p, filling in msg's reply fields and returning
// the same generic status the original's send_message returns: zero or
// positive on success, negative on failure. It satisfies
// internal/trap.Dispatcher.
func (d *Dispatcher) Dispatch(p *process.Process, msg *message.Message) int64 {
	msg.Reset()

	switch msg.Type {
	case message.OPEN:
		return d.open(p, msg)
	case message.READ:
		return d.read(p, msg)
	case message.WRITE:
		return d.write(p, msg)
	case message.CLOSE:
		return d.close(p, msg)
	case message.STAT:
		return d.stat(p, msg)
	case message.BIND:
		return d.bind(p, msg)
	case message.UNBIND:
		return d.unbind(p, msg)
	case message.MOUNT:
		return d.mount(p, msg)
	case message.FORK:
		return d.fork(p, msg)
	case message.EXEC:
		return d.exec(p, msg)
	case message.WAIT:
		return d.wait(p, msg)
	case message.PIPE:
		return 0 // no-op, matches MSG_PIPE in the original
	case message.READ_DIR:
		return d.readDir(p, msg)
	case message.CREATE:
		return d.create(p, msg)
	case message.MKDIR:
		return d.mkdir(p, msg)
	case message.GETCWD:
		return d.getcwd(p, msg)
	case message.CHDIR:
		return d.chdir(p, msg)
	case message.COPY:
		return d.copy(p, msg)
	case message.REMOVE:
		return d.remove(p, msg)
	case message.MOVE:
		return d.move(p, msg)
	case message.PUTC:
		return d.putc(p, msg)
	case message.GETC:
		return d.getc(p, msg)
	case message.PUTS:
		return d.puts(p, msg)
	default:
		klog.Warn("dispatch: unknown message type %v", msg.Type)
		return -1
	}
}
