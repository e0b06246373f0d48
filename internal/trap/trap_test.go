package trap

import (
	"testing"

	"github.com/goranb131/chthon/internal/process"
	"github.com/goranb131/chthon/pkg/message"
)

// fakeDispatcher records the last message it was handed and returns a
// fixed status, standing in for internal/dispatch.Dispatcher.
type fakeDispatcher struct {
	lastType message.Type
	status   int64
	getcChar byte
}

func (f *fakeDispatcher) Dispatch(p *process.Process, msg *message.Message) int64 {
	f.lastType = msg.Type
	if msg.Type == message.GETC {
		msg.Char = f.getcChar
	}
	return f.status
}

func newTestGateway() (*Gateway, *fakeDispatcher, *process.Process) {
	d := &fakeDispatcher{status: 0}
	g := NewGateway(d)
	table := process.NewTable()
	p := table.Create(0)
	return g, d, p
}

func TestHandlePutc(t *testing.T) {
	g, d, p := newTestGateway()

	res := g.Handle(p, ECSVC, Registers{X8: SysPutc, X0: uint64('x')})
	if res.Halt {
		t.Fatal("putc halted")
	}
	if d.lastType != message.PUTC {
		t.Fatalf("dispatched type = %v, want PUTC", d.lastType)
	}
}

func TestHandleGetc(t *testing.T) {
	g, d, p := newTestGateway()
	d.getcChar = 'z'

	res := g.Handle(p, ECSVC, Registers{X8: SysGetc})
	if res.Value != int64('z') {
		t.Fatalf("getc value = %d, want %d", res.Value, 'z')
	}
}

func TestHandleGetcFailure(t *testing.T) {
	g, d, p := newTestGateway()
	d.status = -1

	res := g.Handle(p, ECSVC, Registers{X8: SysGetc})
	if res.Value != -1 {
		t.Fatalf("getc value = %d, want -1", res.Value)
	}
}

func TestHandlePuts(t *testing.T) {
	g, d, p := newTestGateway()

	g.Handle(p, ECSVC, Registers{X8: SysPuts, Str: "hello"})
	if d.lastType != message.PUTS {
		t.Fatalf("dispatched type = %v, want PUTS", d.lastType)
	}
}

func TestHandleSendMessage(t *testing.T) {
	g, d, p := newTestGateway()
	d.status = 7

	msg := &message.Message{Type: message.OPEN, Path: "/x"}
	res := g.Handle(p, ECSVC, Registers{X8: SysSendMessage, Msg: msg})
	if res.Value != 7 {
		t.Fatalf("send_message value = %d, want 7", res.Value)
	}
	if d.lastType != message.OPEN {
		t.Fatalf("dispatched type = %v, want OPEN", d.lastType)
	}
}

func TestHandleSendMessageNil(t *testing.T) {
	g, _, p := newTestGateway()

	res := g.Handle(p, ECSVC, Registers{X8: SysSendMessage})
	if res.Value != -1 {
		t.Fatalf("nil send_message value = %d, want -1", res.Value)
	}
}

func TestHandleUnknownSyscall(t *testing.T) {
	g, _, p := newTestGateway()

	res := g.Handle(p, ECSVC, Registers{X8: 99})
	if res.Value != -1 {
		t.Fatalf("unknown syscall value = %d, want -1", res.Value)
	}
}

func TestHandleNonSVC(t *testing.T) {
	g, _, p := newTestGateway()

	res := g.Handle(p, ECDataAbortLowerEL, Registers{})
	if !res.Halt {
		t.Fatal("non-SVC exception did not halt")
	}
}
