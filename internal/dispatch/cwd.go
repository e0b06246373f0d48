package dispatch

import (
	"github.com/goranb131/chthon/internal/process"
	"github.com/goranb131/chthon/pkg/message"
)

// getcwd matches MSG_GETCWD: the current directory is copied into msg.Data
// only if the caller's declared Size is large enough to hold it, else the
// call fails rather than silently truncating (unlike READ's byte-limited
// copy, getcwd in the original refuses a too-small buffer outright).
func (d *Dispatcher) getcwd(p *process.Process, msg *message.Message) int64 {
	p.Lock()
	cwd := p.CWD
	p.Unlock()

	if msg.Size > 0 && msg.Size < len(cwd) {
		return -1
	}
	msg.Data = []byte(cwd)
	msg.Size = len(cwd)
	return 0
}

// chdir matches MSG_CHDIR: the requested path is resolved the same way
// every other path-bearing case is, then verified to exist and be a
// directory before the process's CWD is actually updated — a failed chdir
// must leave CWD untouched.
func (d *Dispatcher) chdir(p *process.Process, msg *message.Message) int64 {
	resolved := d.resolvePath(p, msg.Path)

	info, err := d.VFS.Stat(resolved)
	if err != nil {
		return -1
	}
	if !info.IsDir {
		return -1
	}

	p.Lock()
	p.CWD = resolved
	p.Unlock()
	return 0
}
