package dispatch

import (
	"github.com/goranb131/chthon/internal/namespace"
	"github.com/goranb131/chthon/internal/process"
	"github.com/goranb131/chthon/pkg/message"
)

// bind matches MSG_BIND: msg.Path is the target (new) prefix, msg.Str is
// the source (old) prefix, mirroring bind(target_path, source_path, flags)
// in the original's syscall wrapper. Bindings are always installed as
// Replace; spec §3 only requires that mode for conformance.
func (d *Dispatcher) bind(p *process.Process, msg *message.Message) int64 {
	p.Lock()
	err := p.NS.Bind(msg.Path, msg.Str, namespace.Replace)
	p.Unlock()
	if err != nil {
		return -1
	}
	return 0
}

// unbind matches MSG_UNBIND: msg.Path names the target prefix to remove.
func (d *Dispatcher) unbind(p *process.Process, msg *message.Message) int64 {
	p.Lock()
	p.NS.Unbind(msg.Path)
	p.Unlock()
	return 0
}
