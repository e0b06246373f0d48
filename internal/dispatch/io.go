package dispatch

import (
	"github.com/goranb131/chthon/internal/process"
	"github.com/goranb131/chthon/pkg/message"
)

// putc matches MSG_PUTC: msg.Char is written to the console verbatim.
func (d *Dispatcher) putc(p *process.Process, msg *message.Message) int64 {
	if err := d.Console.Putc(msg.Char); err != nil {
		return -1
	}
	return 0
}

// getc matches MSG_GETC: blocks until one byte of console input is
// available, returned in msg.Char.
func (d *Dispatcher) getc(p *process.Process, msg *message.Message) int64 {
	b, err := d.Console.Getc()
	if err != nil {
		return -1
	}
	msg.Char = b
	return int64(b)
}

// puts matches MSG_PUTS: msg.Str is written to the console verbatim, with
// no newline appended.
func (d *Dispatcher) puts(p *process.Process, msg *message.Message) int64 {
	if err := d.Console.Puts(msg.Str); err != nil {
		return -1
	}
	return 0
}
