// Package trap implements the SVC gateway described in the original
// kernel's handle_sync_exception: given an exception class extracted from
// ESR_EL1 and the registers a syscall trampoline saves, it either forges a
// Message and hands it to the dispatcher (EC == 0x15, an SVC) or logs and
// halts for anything else.
package trap

import (
	"github.com/goranb131/chthon/internal/process"
	"github.com/goranb131/chthon/pkg/klog"
	"github.com/goranb131/chthon/pkg/message"
)

// Exception classes, the subset of ESR_EL1[31:26] the original decodes.
const (
	ECInstructionAbortLowerEL = 0x08
	ECInstructionAbortSameEL  = 0x09
	ECDataAbortLowerEL        = 0x0C
	ECDataAbortSameEL         = 0x0D
	ECSVC                     = 0x15
	ECDataAbortLowerEL2       = 0x20
	ECDataAbortSameEL2        = 0x21
	ECPCAlignmentFault        = 0x22
)

// Syscall numbers carried in x8, the original's SYS_* constants.
const (
	SysPutc        = 1
	SysGetc        = 2
	SysPuts        = 3
	SysSendMessage = 4
)

// Registers is the subset of AArch64 general-purpose registers a syscall
// trampoline saves before trapping into the kernel. X0 carries the
// syscall's first argument for PUTC (the character); for PUTS and
// SEND_MESSAGE the original passes a guest pointer in x0 to a string or a
// Message respectively — since this module has no guest address space to
// dereference, Str and Msg carry what that pointer would have resolved to.
type Registers struct {
	X0, X8 uint64
	Str    string
	Msg    *message.Message
}

// Result is what Handle returns: either a syscall return value, or Halt set
// when the exception class was not a recognized SVC.
type Result struct {
	Value int64
	Halt  bool
}

// Dispatcher is the subset of internal/dispatch.Dispatcher the gateway
// needs: hand a Message to the per-process message pipeline and get back
// its return value.
type Dispatcher interface {
	Dispatch(p *process.Process, msg *message.Message) int64
}

// Gateway is the trap entry point; one Gateway is shared by every process.
type Gateway struct {
	Dispatch Dispatcher
}

// NewGateway returns a Gateway that hands SVC-derived messages to d.
func NewGateway(d Dispatcher) *Gateway {
	return &Gateway{Dispatch: d}
}

// Handle is the Go-hosted equivalent of handle_sync_exception: given the
// exception class and saved registers, it runs the matching syscall (or
// halts) on behalf of p.
func (g *Gateway) Handle(p *process.Process, ec uint8, regs Registers) Result {
	if ec != ECSVC {
		logFault(ec)
		return Result{Halt: true}
	}

	switch regs.X8 {
	case SysPutc:
		msg := &message.Message{Type: message.PUTC, Char: byte(regs.X0)}
		g.Dispatch.Dispatch(p, msg)
		return Result{Value: 0}

	case SysGetc:
		msg := &message.Message{Type: message.GETC}
		result := g.Dispatch.Dispatch(p, msg)
		if result >= 0 {
			return Result{Value: int64(msg.Char)}
		}
		return Result{Value: -1}

	case SysPuts:
		msg := &message.Message{Type: message.PUTS, Str: regs.Str}
		g.Dispatch.Dispatch(p, msg)
		return Result{Value: 0}

	case SysSendMessage:
		if regs.Msg == nil {
			return Result{Value: -1}
		}
		result := g.Dispatch.Dispatch(p, regs.Msg)
		return Result{Value: result}

	default:
		klog.Warn("trap: unknown syscall number %d", regs.X8)
		return Result{Value: -1}
	}
}

// logFault logs the unhandled exception the way the original's
// handle_sync_exception prints ESR/EC/ELR/FAR before halting. It does not
// terminate the process itself: the caller's run loop is responsible for
// retiring whichever process trapped (Scheduler.Exit), not the whole
// kernel, since one faulting process should not take every other process
// down with it.
func logFault(ec uint8) {
	switch ec {
	case ECInstructionAbortLowerEL, ECInstructionAbortSameEL:
		klog.Error("trap: instruction abort (ec=0x%02x)", ec)
	case ECDataAbortLowerEL, ECDataAbortSameEL, ECDataAbortLowerEL2, ECDataAbortSameEL2:
		klog.Error("trap: data abort (ec=0x%02x)", ec)
	case ECPCAlignmentFault:
		klog.Error("trap: PC alignment fault (ec=0x%02x)", ec)
	default:
		klog.Error("trap: unhandled exception class 0x%02x", ec)
	}
}
